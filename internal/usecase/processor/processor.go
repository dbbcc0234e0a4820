// Package processor decouples transfer submission from execution: a
// single background worker drains an unbounded FIFO queue and invokes
// the transfer engine serially, so producers are never blocked by lock
// contention or storage latency.
package processor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mazebank/mazebank-backend/internal/events"
	"github.com/mazebank/mazebank-backend/internal/observability"
	"github.com/mazebank/mazebank-backend/internal/usecase/transfer"
)

var (
	// ErrProcessorStopped is returned by Submit once shutdown has begun.
	// Requests are never accepted silently after that point.
	ErrProcessorStopped = errors.New("processor is stopped")

	// ErrAbandoned is delivered to the callback of a queued request that
	// was discarded because shutdown ran out of time.
	ErrAbandoned = errors.New("request abandoned during shutdown")
)

const publishTimeout = 5 * time.Second

// Engine executes one transfer synchronously.
type Engine interface {
	Transfer(ctx context.Context, req transfer.Request) error
}

type state int

const (
	stateRunning state = iota
	stateShuttingDown
	stateStopped
)

type item struct {
	req  transfer.Request
	done func(error)
}

// Processor owns one worker goroutine and an unbounded FIFO queue.
// Lifecycle: Running from construction, ShuttingDown once Shutdown is
// called, Stopped when the worker has exited.
type Processor struct {
	engine    Engine
	logger    *slog.Logger
	metrics   *observability.Metrics
	publisher events.Publisher

	mu    sync.Mutex
	cond  *sync.Cond
	queue []item
	state state

	workerDone chan struct{}
}

// New creates a Processor and starts its worker. metrics and publisher
// may be nil.
func New(engine Engine, logger *slog.Logger, metrics *observability.Metrics, publisher events.Publisher) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		engine:     engine,
		logger:     logger,
		metrics:    metrics,
		publisher:  publisher,
		state:      stateRunning,
		workerDone: make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)
	go p.run()
	return p
}

// Submit enqueues a request fire-and-forget style. It never blocks and
// never reports the eventual outcome; failures are only observable
// through logs, metrics and the event publisher.
func (p *Processor) Submit(req transfer.Request) error {
	return p.SubmitWithCallback(req, nil)
}

// SubmitWithCallback enqueues a request and arranges for done to be
// invoked on the worker goroutine once the engine has returned (or with
// ErrAbandoned if shutdown discards the request first). done may be nil.
func (p *Processor) SubmitWithCallback(req transfer.Request, done func(error)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != stateRunning {
		return ErrProcessorStopped
	}
	p.queue = append(p.queue, item{req: req, done: done})
	if p.metrics != nil {
		p.metrics.QueuedTotal.Inc()
		p.metrics.QueueDepth.Set(float64(len(p.queue)))
	}
	p.cond.Signal()
	return nil
}

// Shutdown stops intake and drains the queue to empty before the worker
// exits. If ctx expires first, every still-queued request is abandoned:
// its callback receives ErrAbandoned and the count is logged. The
// in-flight request, if any, always runs to completion. Shutdown is
// idempotent.
func (p *Processor) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.state == stateRunning {
		p.state = stateShuttingDown
		p.cond.Broadcast()
	}
	p.mu.Unlock()

	select {
	case <-p.workerDone:
		return nil
	case <-ctx.Done():
		p.mu.Lock()
		abandoned := p.queue
		p.queue = nil
		p.cond.Broadcast()
		p.mu.Unlock()

		for _, it := range abandoned {
			if it.done != nil {
				it.done(ErrAbandoned)
			}
		}
		if len(abandoned) > 0 {
			p.logger.Warn("abandoned queued transfers on shutdown", "count", len(abandoned))
			if p.metrics != nil {
				p.metrics.AbandonedShutdowns.Add(float64(len(abandoned)))
			}
		}
		return ctx.Err()
	}
}

func (p *Processor) run() {
	defer close(p.workerDone)
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && p.state == stateRunning {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			// Shutting down with an empty queue: drain complete.
			p.state = stateStopped
			p.mu.Unlock()
			return
		}
		it := p.queue[0]
		p.queue = p.queue[1:]
		if p.metrics != nil {
			p.metrics.QueueDepth.Set(float64(len(p.queue)))
		}
		p.mu.Unlock()

		p.execute(it)
	}
}

// execute runs one request. Engine errors are recorded and never kill
// the worker loop.
func (p *Processor) execute(it item) {
	err := p.engine.Transfer(context.Background(), it.req)
	if err != nil {
		p.logger.Error("async transfer failed",
			"from_account_id", it.req.FromAccountID,
			"to_account_id", it.req.ToAccountID,
			"amount", it.req.Amount,
			"error", err)
	} else {
		p.logger.Info("async transfer completed",
			"from_account_id", it.req.FromAccountID,
			"to_account_id", it.req.ToAccountID,
			"amount", it.req.Amount)
	}

	p.publish(it.req, err)

	if it.done != nil {
		it.done(err)
	}
}

func (p *Processor) publish(req transfer.Request, execErr error) {
	if p.publisher == nil {
		return
	}

	event := events.TransferEvent{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		Description:   req.Description,
		Reference:     req.Reference,
		Status:        events.StatusCompleted,
		Timestamp:     time.Now(),
	}
	if execErr != nil {
		event.Status = events.StatusFailed
		event.Reason = execErr.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := p.publisher.PublishTransferResult(ctx, event); err != nil {
		p.logger.Error("failed to publish transfer event", "error", err)
	}
}
