// Package worker запускает периодические задачи сканирования.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"cs2arb/internal/metrics"
	"cs2arb/pkg/contextx"
	"cs2arb/pkg/logx"
)

const (
	defaultTick    = 5 * time.Second
	defaultBackoff = 10 * time.Second
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// Task — задача, которая запускается не чаще Interval.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

type scheduledTask struct {
	Task
	lastRun time.Time
}

// Scheduler выполняет задачи по одной в едином цикле. Успешный запуск
// сдвигает время следующего; неудачный повторяется после паузы.
type Scheduler struct {
	tasks   []*scheduledTask
	initial []string
	tick    time.Duration
	backoff time.Duration
	now     func() time.Time

	// runMu держит задачи строго по одной, включая RunOnce.
	runMu sync.Mutex

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	isRunning  bool
	wg         sync.WaitGroup
}

func NewScheduler(tasks ...Task) *Scheduler {
	s := &Scheduler{
		tick:    defaultTick,
		backoff: defaultBackoff,
		now:     time.Now,
	}

	for _, t := range tasks {
		s.tasks = append(s.tasks, &scheduledTask{Task: t})
	}

	return s
}

func (s *Scheduler) WithTick(tick time.Duration) *Scheduler {
	if tick > 0 {
		s.tick = tick
	}
	return s
}

func (s *Scheduler) WithErrorBackoff(backoff time.Duration) *Scheduler {
	if backoff >= 0 {
		s.backoff = backoff
	}
	return s
}

// WithInitialRun задаёт задачи, которые выполняются сразу при старте в указанном порядке.
func (s *Scheduler) WithInitialRun(names ...string) *Scheduler {
	s.initial = names
	return s
}

func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return errors.New("scheduler is already running")
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelFunc = cancel
	s.isRunning = true

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.cancelFunc = nil
			s.mu.Unlock()
		}()

		if err := s.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger(ctx).Error("scheduler stopped with error", logx.Error(err))
		}
	}()

	return nil
}

func (s *Scheduler) Stop() {
	s.mu.Lock()

	if !s.isRunning {
		s.mu.Unlock()
		return
	}

	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Run блокирует до отмены ctx.
func (s *Scheduler) Run(ctx context.Context) error {
	logger(ctx).Info("scheduler started", "tasks", len(s.tasks))
	defer logger(ctx).Info("scheduler stopped")

	for _, name := range s.initial {
		if t := s.find(name); t != nil {
			s.execute(ctx, t)
		}
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		wait := s.tick
		for _, t := range s.tasks {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			if !s.due(t) {
				continue
			}

			if err := s.execute(ctx, t); err != nil {
				wait = s.backoff
			}
		}

		timer.Reset(wait)
	}
}

// RunOnce выполняет задачу по имени вне расписания.
func (s *Scheduler) RunOnce(ctx context.Context, name string) error {
	t := s.find(name)
	if t == nil {
		return errors.New("unknown task " + name)
	}
	return s.execute(ctx, t)
}

func (s *Scheduler) due(t *scheduledTask) bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	return t.lastRun.IsZero() || s.now().Sub(t.lastRun) >= t.Interval
}

func (s *Scheduler) execute(ctx context.Context, t *scheduledTask) (err error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	started := time.Now()

	defer func() {
		if p := recover(); p != nil {
			err = errors.New("task panicked")
			logger(ctx).Error("task panicked", "task", t.Name, "panic", p)
		}

		metrics.ObserveTask(t.Name, started, err)

		if err != nil {
			logger(ctx).Error("task failed", "task", t.Name, logx.Error(err))
			return
		}

		t.lastRun = s.now()
		logger(ctx).Debug("task completed", "task", t.Name, "took", time.Since(started))
	}()

	return t.Run(ctx)
}

func (s *Scheduler) find(name string) *scheduledTask {
	for _, t := range s.tasks {
		if t.Name == name {
			return t
		}
	}
	return nil
}
