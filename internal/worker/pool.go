package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/queue"
)

// Handler processes one job. Errors wrapped as permanent are not retried.
type Handler interface {
	Process(ctx context.Context, job model.ThumbnailJob) error
}

// PoolConfig holds worker pool configuration.
type PoolConfig struct {
	Concurrency    int
	MaxAttempts    int
	ProcessTimeout time.Duration
}

// DefaultPoolConfig returns the default pool configuration.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Concurrency:    1,
		MaxAttempts:    3,
		ProcessTimeout: 2 * time.Minute,
	}
}

// Pool runs Concurrency workers over a shared delivery channel.
type Pool struct {
	config   PoolConfig
	consumer queue.Consumer
	handler  Handler
	wg       sync.WaitGroup
	cancel   context.CancelFunc
	mu       sync.Mutex
	running  bool
}

func NewPool(cfg PoolConfig, consumer queue.Consumer, handler Handler) *Pool {
	def := DefaultPoolConfig()
	if cfg.Concurrency < 1 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.ProcessTimeout <= 0 {
		cfg.ProcessTimeout = def.ProcessTimeout
	}
	return &Pool{config: cfg, consumer: consumer, handler: handler}
}

// Start subscribes and launches the workers. It returns once they run.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return fmt.Errorf("pool is already running")
	}

	workerCtx, cancel := context.WithCancel(ctx)
	deliveries, err := p.consumer.Deliveries(workerCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to jobs: %w", err)
	}
	p.cancel = cancel
	p.running = true

	for i := 0; i < p.config.Concurrency; i++ {
		id := fmt.Sprintf("worker-%d", i+1)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.run(workerCtx, id, deliveries)
		}()
	}

	slog.Info("worker pool started", "workers", p.config.Concurrency)
	return nil
}

// Stop cancels the workers and waits for in-flight jobs, up to ctx.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	p.cancel()
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("worker pool stopped")
		return nil
	case <-ctx.Done():
		slog.Warn("timeout waiting for workers to stop")
		return ctx.Err()
	}
}

// Wait blocks until every worker has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) run(ctx context.Context, id string, deliveries <-chan queue.Delivery) {
	log := slog.With("worker", id)
	log.Debug("worker started")

	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				log.Debug("delivery channel closed")
				return
			}
			p.handle(ctx, log, d)
		}
	}
}

func (p *Pool) handle(ctx context.Context, log *slog.Logger, d queue.Delivery) {
	job := d.Job()
	log = log.With("file_id", job.FileID, "attempt", d.Attempt())

	// Stopping the pool does not abort a job already started
	processCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.config.ProcessTimeout)
	defer cancel()

	start := time.Now()
	err := p.handler.Process(processCtx, job)

	switch {
	case err == nil:
		if err := d.Ack(); err != nil {
			log.Error("failed to ack job", "error", err)
		}
		log.Info("job completed", "duration", time.Since(start))

	case IsPermanent(err):
		if err := d.Term(); err != nil {
			log.Error("failed to terminate job", "error", err)
		}
		log.Error("job rejected", "error", err)

	case d.Attempt() >= p.config.MaxAttempts:
		if err := d.Term(); err != nil {
			log.Error("failed to terminate job", "error", err)
		}
		log.Error("job failed, attempts exhausted", "error", err)

	default:
		if err := d.Nak(); err != nil {
			log.Error("failed to nak job", "error", err)
		}
		log.Warn("job failed, will retry", "error", err)
	}
}
