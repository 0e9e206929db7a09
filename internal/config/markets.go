package config

import (
	"strings"
	"time"
)

type Buff struct {
	BaseURL       string        `env:"BUFF_API_BASE_URL" envDefault:"https://buff.163.com"`
	APIKey        string        `env:"BUFF_API_KEY" json:"-"`
	SessionCookie string        `env:"BUFF_SESSION_COOKIE" json:"-"`
	Game          string        `env:"BUFF_GAME" envDefault:"cs2"`
	PageSize      int           `env:"BUFF_PAGE_SIZE" envDefault:"80"`
	MinInterval   time.Duration `env:"BUFF_MIN_INTERVAL" envDefault:"500ms"`
	Timeout       time.Duration `env:"BUFF_TIMEOUT" envDefault:"30s"`
}

// Token убирает кавычки, которые часто остаются в .env.
func (b Buff) Token() string {
	return strings.Trim(b.APIKey, `"'`)
}

type CSFloat struct {
	BaseURL      string        `env:"CSFLOAT_API_BASE_URL" envDefault:"https://csfloat.com"`
	APIKey       string        `env:"CSFLOAT_API_KEY" json:"-"`
	PagesToFetch int           `env:"CSFLOAT_PAGES_TO_FETCH" envDefault:"10"`
	MinDiscount  float64       `env:"CSFLOAT_MIN_DISCOUNT" envDefault:"0"`
	MinInterval  time.Duration `env:"CSFLOAT_MIN_INTERVAL" envDefault:"300ms"`
	Timeout      time.Duration `env:"CSFLOAT_TIMEOUT" envDefault:"30s"`
}

func (c CSFloat) Token() string {
	return strings.Trim(c.APIKey, `"'`)
}
