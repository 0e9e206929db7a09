// Package market содержит общий HTTP-клиент площадок: resty поверх
// логирующего транспорта, ограничитель частоты и предохранитель.
package market

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"cs2arb/internal/metrics"
	"cs2arb/pkg/httpx"
	"cs2arb/pkg/logx"
)

const (
	defaultTimeout     = 30 * time.Second
	breakerTripAfter   = 5
	breakerOpenTimeout = time.Minute
	userAgent          = "cs2arb/1.0"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

// ErrUnavailable — предохранитель разомкнут, площадка временно не опрашивается.
var ErrUnavailable = errors.New("market is temporarily unavailable")

// StatusError — ответ площадки с кодом вне 2xx.
type StatusError struct {
	Market string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s responded with %d: %s", e.Market, e.Code, e.Body)
}

type Options struct {
	Market         string
	BaseURL        string
	Timeout        time.Duration
	MinInterval    time.Duration
	LogFieldMaxLen int
	Headers        map[string]string
	Cookies        []*http.Cookie
	// Wrap оборачивает логирующий транспорт, например для авторизации.
	Wrap func(http.RoundTripper) http.RoundTripper
	// Transport — базовый транспорт; по умолчанию http.DefaultTransport.
	Transport http.RoundTripper
}

// Client выполняет GET-запросы к одной площадке не чаще MinInterval.
type Client struct {
	market  string
	http    *resty.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func NewClient(opts Options) *Client {
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	var transport http.RoundTripper = httpx.NewLoggingRoundTripper(
		base,
		httpx.WithSensitiveDataMasker(logx.NewSensitiveDataMasker()),
		httpx.WithLogFieldMaxLen(opts.LogFieldMaxLen),
	)
	if opts.Wrap != nil {
		transport = opts.Wrap(transport)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := resty.New().
		SetTransport(transport).
		SetBaseURL(opts.BaseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetHeaders(opts.Headers).
		SetCookies(opts.Cookies)

	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}

	return &Client{
		market:  opts.Market,
		http:    client,
		limiter: rate.NewLimiter(limit, 1),
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:    opts.Market,
			Timeout: breakerOpenTimeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= breakerTripAfter
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger(context.Background()).Warn("circuit breaker state changed",
					"market", name, "from", from.String(), "to", to.String())
			},
		}),
	}
}

// GetJSON выполняет GET и декодирует тело ответа в out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("limiter.Wait: %w", err)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParamsFromValues(query).
			Get(path)
		if err != nil {
			return nil, fmt.Errorf("GET %s: %w", path, err)
		}

		if resp.IsError() {
			return nil, &StatusError{Market: c.market, Code: resp.StatusCode(), Body: truncate(resp.String())}
		}

		return resp.Body(), nil
	})

	status := metrics.StatusOK
	defer func() {
		metrics.FeedRequests.WithLabelValues(c.market, status).Inc()
	}()

	if err != nil {
		status = metrics.StatusError
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%s: %w", c.market, ErrUnavailable)
		}
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		status = metrics.StatusError
		return fmt.Errorf("decode %s response: %w", c.market, err)
	}

	return nil
}

func truncate(s string) string {
	const maxLen = 500
	if len(s) > maxLen {
		return s[:maxLen]
	}
	return s
}
