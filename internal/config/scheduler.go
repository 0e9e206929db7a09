package config

import "time"

type Scheduler struct {
	BuffInterval       time.Duration `env:"BUFF_SCAN_INTERVAL" envDefault:"600s"`
	CSFloatInterval    time.Duration `env:"CSFLOAT_SCAN_INTERVAL" envDefault:"30s"`
	DirectionBInterval time.Duration `env:"DIRECTION_B_SCAN_INTERVAL" envDefault:"1800s"`
	CleanupInterval    time.Duration `env:"CLEANUP_INTERVAL" envDefault:"3600s"`
	Tick               time.Duration `env:"SCHEDULER_TICK" envDefault:"5s"`
	ErrorBackoff       time.Duration `env:"SCHEDULER_ERROR_BACKOFF" envDefault:"10s"`
	WatchlistPath      string        `env:"WATCHLIST_PATH" envDefault:"data/watchlist.json"`
	CommitEvery        int           `env:"INGEST_COMMIT_EVERY" envDefault:"100"`
}
