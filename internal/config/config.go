package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App       App
	Postgres  Postgres
	Redis     Redis
	Buff      Buff
	CSFloat   CSFloat
	Arbitrage Arbitrage
	Scheduler Scheduler
	Server    Server
	Bot       Bot
}

type App struct {
	Name     string `env:"APP_NAME" envDefault:"cs2arb"`
	Version  string `env:"APP_VERSION" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"INFO"`
	// StoreDriver: postgres или memory (сухой прогон без БД).
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
}

type Bot struct {
	Token   string `env:"BOT_TOKEN" json:"-"`
	ChatID  int64  `env:"BOT_CHAT_ID"`
	AdminID int64  `env:"BOT_ADMIN_ID"`
}

func (b Bot) Enabled() bool {
	return b.Token != ""
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	if err := config.Arbitrage.Validate(); err != nil {
		return Config{}, fmt.Errorf("arbitrage: %w", err)
	}

	return config, nil
}
