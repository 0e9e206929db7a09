package config

import "time"

type Redis struct {
	Address            string `env:"REDIS_ADDR"`
	Username           string `env:"REDIS_USERNAME"`
	Password           string `env:"REDIS_PASSWORD" json:"-"`
	DatabaseNumber     int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize           int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConnections int    `env:"REDIS_MIN_IDLE_CONNS" envDefault:"1"`
	MaxIdleConnections int    `env:"REDIS_MAX_IDLE_CONNS" envDefault:"5"`

	// CheapestTTL — сколько живёт кэш «самого дешёвого листинга» для направления B.
	CheapestTTL time.Duration `env:"REDIS_CHEAPEST_TTL" envDefault:"5m"`
	// AlertQueue включает доставку алертов через asynq.
	AlertQueue bool `env:"REDIS_ALERT_QUEUE" envDefault:"false"`
}

func (r Redis) Enabled() bool {
	return r.Address != ""
}
