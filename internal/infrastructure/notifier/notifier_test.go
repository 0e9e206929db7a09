package notifier_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"cs2arb/internal/domain/entity"
	"cs2arb/internal/domain/value"
	"cs2arb/internal/infrastructure/notifier"
)

type senderStub struct {
	sent []entity.Signal
	err  error
}

func (s *senderStub) SendSignal(_ context.Context, sig entity.Signal) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sig)
	return nil
}

type enqueuerStub struct {
	tasks []*asynq.Task
}

func (e *enqueuerStub) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	e.tasks = append(e.tasks, task)
	return &asynq.TaskInfo{ID: "t1"}, nil
}

func signalA(listingID int64) entity.Signal {
	return entity.Signal{
		ID:              listingID,
		Direction:       value.DirectionCSFloatToBuff,
		MarketHashName:  "AK-47 | Redline (Field-Tested)",
		ListingID:       lo.ToPtr(listingID),
		CSFloatPriceUSD: 100,
		BuffFloorUSD:    130,
		ROI:             0.25,
	}
}

func TestAlertsSuppressDuplicates(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	sender := &senderStub{}
	alerts := notifier.NewAlerts(sender)

	rq.NoError(alerts.NotifySignal(ctx, signalA(1)))
	rq.NoError(alerts.NotifySignal(ctx, signalA(1)))
	rq.NoError(alerts.NotifySignal(ctx, signalA(2)))

	b := entity.Signal{Direction: value.DirectionBuffToCSFloat, MarketHashName: "AK-47 | Redline (Field-Tested)"}
	rq.NoError(alerts.NotifySignal(ctx, b))
	rq.NoError(alerts.NotifySignal(ctx, b))

	rq.Len(sender.sent, 3)
}

func TestAlertsRetryAfterFailure(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	sender := &senderStub{err: errors.New("telegram is down")}
	alerts := notifier.NewAlerts(sender)

	rq.Error(alerts.NotifySignal(ctx, signalA(1)))

	sender.err = nil
	rq.NoError(alerts.NotifySignal(ctx, signalA(1)))
	rq.Len(sender.sent, 1)
}

func TestQueueRoundTrip(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	enqueuer := &enqueuerStub{}
	queue := notifier.NewQueue(enqueuer)

	rq.NoError(queue.SendSignal(ctx, signalA(7)))
	rq.Len(enqueuer.tasks, 1)
	rq.Equal(notifier.TaskSignalAlert, enqueuer.tasks[0].Type())

	sender := &senderStub{}
	rq.NoError(notifier.Handler(sender)(ctx, enqueuer.tasks[0]))
	rq.Len(sender.sent, 1)
	rq.Equal(int64(7), *sender.sent[0].ListingID)
	rq.InDelta(0.25, sender.sent[0].ROI, 1e-9)

	err := notifier.Handler(sender)(ctx, asynq.NewTask(notifier.TaskSignalAlert, []byte("{")))
	rq.ErrorIs(err, asynq.SkipRetry)
}

func TestFanoutAndFormat(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	failing := &senderStub{err: errors.New("boom")}
	ok := &senderStub{}

	err := notifier.Fanout{failing, ok, notifier.LogSender{}}.SendSignal(ctx, signalA(1))
	rq.Error(err)
	rq.Len(ok.sent, 1)

	sig := signalA(1)
	sig.MarketHashName = "<script>"
	text := notifier.FormatSignal(sig)
	rq.Contains(text, "&lt;script&gt;")
	rq.Contains(text, "25.0%")
	rq.Contains(text, "$100.00")
	rq.Contains(text, "$130.00")
}
