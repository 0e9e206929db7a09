package notifier

import (
	"context"
	"fmt"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"cs2arb/internal/domain/entity"
	"cs2arb/pkg/contextx"
	"cs2arb/pkg/logx"
)

const defaultDedupWindow = time.Hour

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// Sender доставляет один алерт.
type Sender interface {
	SendSignal(ctx context.Context, sig entity.Signal) error
}

// Alerts подавляет повторные алерты по одной идентичности сигнала
// в пределах окна и передаёт остальные отправителю.
type Alerts struct {
	sender Sender
	sent   *gocache.Cache
}

func NewAlerts(sender Sender) *Alerts {
	return &Alerts{
		sender: sender,
		sent:   gocache.New(defaultDedupWindow, 2*defaultDedupWindow),
	}
}

func (a *Alerts) WithDedupWindow(window time.Duration) *Alerts {
	a.sent = gocache.New(window, 2*window)
	return a
}

func (a *Alerts) NotifySignal(ctx context.Context, sig entity.Signal) error {
	key := dedupKey(sig)

	if err := a.sent.Add(key, struct{}{}, gocache.DefaultExpiration); err != nil {
		logger(ctx).Debug("duplicate alert suppressed", "key", key)
		return nil
	}

	if err := a.sender.SendSignal(ctx, sig); err != nil {
		a.sent.Delete(key)
		return fmt.Errorf("send alert: %w", err)
	}

	return nil
}

func dedupKey(sig entity.Signal) string {
	if sig.ListingID != nil {
		return sig.Direction.String() + ":" + strconv.FormatInt(*sig.ListingID, 10)
	}
	return sig.Direction.String() + ":" + sig.MarketHashName
}

// LogSender пишет алерт в лог, когда бот не настроен.
type LogSender struct{}

func (LogSender) SendSignal(ctx context.Context, sig entity.Signal) error {
	logger(ctx).Info("signal alert",
		"id", sig.ID,
		"direction", sig.Direction.Short(),
		"name", sig.MarketHashName,
		"roi", sig.ROI,
	)
	return nil
}

// Fanout отправляет алерт всем получателям и возвращает первую ошибку.
type Fanout []Sender

func (f Fanout) SendSignal(ctx context.Context, sig entity.Signal) error {
	var first error
	for _, s := range f {
		if err := s.SendSignal(ctx, sig); err != nil {
			logger(ctx).Error("alert delivery failed", logx.Error(err))
			if first == nil {
				first = err
			}
		}
	}
	return first
}
