package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/metrics"
)

type job struct {
	kind string
	ctx  context.Context
	fn   func(ctx context.Context) error
}

// Pool runs detached side effects on a fixed set of workers. Go never blocks
// and never reports the outcome to the caller: failures are logged and
// counted, and a full queue drops the job.
type Pool struct {
	workerCount int
	timeout     time.Duration
	logger      *zap.Logger

	queue      chan job
	shutdownCh chan struct{}
	once       sync.Once
	startOnce  sync.Once
	wg         sync.WaitGroup
}

func NewPool(workerCount, queueSize int, timeout time.Duration, logger *zap.Logger) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{
		workerCount: workerCount,
		timeout:     timeout,
		logger:      logger.Named("notify"),
		queue:       make(chan job, queueSize),
		shutdownCh:  make(chan struct{}),
	}
}

func (p *Pool) Start() {
	p.startOnce.Do(func() {
		for i := 0; i < p.workerCount; i++ {
			p.wg.Add(1)
			go p.runWorker(i)
		}
	})
}

// Go launches fn and forgets about it. The job keeps ctx's values but not its
// cancellation, so a finished request does not abort its notifications.
func (p *Pool) Go(ctx context.Context, kind string, fn func(ctx context.Context) error) {
	j := job{kind: kind, ctx: context.WithoutCancel(ctx), fn: fn}
	select {
	case <-p.shutdownCh:
		p.drop(j, "pool shut down")
		return
	default:
	}
	select {
	case p.queue <- j:
	default:
		p.drop(j, "queue full")
	}
}

func (p *Pool) drop(j job, reason string) {
	metrics.NotificationFailuresTotal.WithLabelValues(j.kind).Inc()
	p.logger.Warn("notification dropped", zap.String("kind", j.kind), zap.String("reason", reason))
}

func (p *Pool) runWorker(id int) {
	defer p.wg.Done()
	for {
		select {
		case j := <-p.queue:
			p.run(id, j)
		case <-p.shutdownCh:
			// drain what was accepted before shutdown
			for {
				select {
				case j := <-p.queue:
					p.run(id, j)
				default:
					return
				}
			}
		}
	}
}

func (p *Pool) run(worker int, j job) {
	ctx := j.ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			metrics.NotificationFailuresTotal.WithLabelValues(j.kind).Inc()
			p.logger.Error("notification panicked", zap.String("kind", j.kind), zap.Any("panic", r))
		}
	}()

	if err := j.fn(ctx); err != nil {
		metrics.NotificationFailuresTotal.WithLabelValues(j.kind).Inc()
		p.logger.Warn("notification failed",
			zap.Int("worker", worker), zap.String("kind", j.kind), zap.Error(err))
	}
}

// Shutdown stops accepting jobs and waits for the workers to drain the queue
// or for ctx to expire.
func (p *Pool) Shutdown(ctx context.Context) {
	p.once.Do(func() {
		close(p.shutdownCh)

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			p.logger.Info("notification pool stopped")
		case <-ctx.Done():
			p.logger.Warn("notification pool shutdown interrupted")
		}
	})
}
