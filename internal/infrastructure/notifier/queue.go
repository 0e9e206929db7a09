package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	jsoniter "github.com/json-iterator/go"

	"cs2arb/internal/domain/entity"
)

const (
	TaskSignalAlert = "alert:signal"
	QueueAlerts     = "alerts"

	alertMaxRetry = 5
	alertTimeout  = 30 * time.Second
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Queue ставит алерты в очередь asynq; доставку выполняет Handle на стороне воркера.
type Queue struct {
	client enqueuer
}

func NewQueue(client enqueuer) *Queue {
	return &Queue{client: client}
}

func (q *Queue) SendSignal(ctx context.Context, sig entity.Signal) error {
	payload, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}

	task := asynq.NewTask(TaskSignalAlert, payload)

	info, err := q.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueAlerts),
		asynq.MaxRetry(alertMaxRetry),
		asynq.Timeout(alertTimeout),
	)
	if err != nil {
		return fmt.Errorf("enqueue alert: %w", err)
	}

	logger(ctx).Debug("alert enqueued", "task_id", info.ID, "signal_id", sig.ID)

	return nil
}

// Handler возвращает обработчик задачи, который передаёт алерт отправителю.
func Handler(sender Sender) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		var sig entity.Signal
		if err := json.Unmarshal(task.Payload(), &sig); err != nil {
			return fmt.Errorf("decode alert: %w: %w", err, asynq.SkipRetry)
		}

		return sender.SendSignal(ctx, sig)
	}
}
