package queue

import (
	"context"
	"sync"

	"github.com/templui/filesmanager/internal/model"
)

// MemoryQueue is an in-process Queue and Consumer. Nak puts the job back
// at the end of the queue. It is meant for tests and single-process setups.
type MemoryQueue struct {
	mu      sync.Mutex
	jobs    chan memoryItem
	acked   []model.ThumbnailJob
	termed  []model.ThumbnailJob
	failing error
}

type memoryItem struct {
	job     model.ThumbnailJob
	attempt int
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	return &MemoryQueue{jobs: make(chan memoryItem, capacity)}
}

// FailWith makes every subsequent Enqueue return err (nil restores).
func (q *MemoryQueue) FailWith(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failing = err
}

func (q *MemoryQueue) Enqueue(ctx context.Context, job model.ThumbnailJob) error {
	q.mu.Lock()
	err := q.failing
	q.mu.Unlock()
	if err != nil {
		return err
	}

	select {
	case q.jobs <- memoryItem{job: job, attempt: 1}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of jobs waiting for a worker.
func (q *MemoryQueue) Pending() int {
	return len(q.jobs)
}

func (q *MemoryQueue) Acked() []model.ThumbnailJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]model.ThumbnailJob(nil), q.acked...)
}

func (q *MemoryQueue) Terminated() []model.ThumbnailJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]model.ThumbnailJob(nil), q.termed...)
}

func (q *MemoryQueue) Deliveries(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case item := <-q.jobs:
				select {
				case out <- &memoryDelivery{q: q, item: item}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

type memoryDelivery struct {
	q    *MemoryQueue
	item memoryItem
}

func (d *memoryDelivery) Job() model.ThumbnailJob { return d.item.job }
func (d *memoryDelivery) Attempt() int            { return d.item.attempt }

func (d *memoryDelivery) Ack() error {
	d.q.mu.Lock()
	defer d.q.mu.Unlock()
	d.q.acked = append(d.q.acked, d.item.job)
	return nil
}

func (d *memoryDelivery) Nak() error {
	next := d.item
	next.attempt++
	select {
	case d.q.jobs <- next:
	default:
		// Full: the job is lost, as with a broker that ran out of space
	}
	return nil
}

func (d *memoryDelivery) Term() error {
	d.q.mu.Lock()
	defer d.q.mu.Unlock()
	d.q.termed = append(d.q.termed, d.item.job)
	return nil
}
