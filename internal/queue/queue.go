// Package queue carries thumbnail jobs from the API process to workers.
package queue

import (
	"context"
	"errors"

	"github.com/templui/filesmanager/internal/model"
)

// ErrUnavailable is returned when the queue connection is not established.
var ErrUnavailable = errors.New("queue unavailable")

// Queue is the producer side.
type Queue interface {
	Enqueue(ctx context.Context, job model.ThumbnailJob) error
}

// Consumer is the worker side. Deliveries are at-least-once: a delivery
// that is neither acked nor terminated is redelivered.
type Consumer interface {
	Deliveries(ctx context.Context) (<-chan Delivery, error)
}

// Delivery is one received job plus its acknowledgement controls.
type Delivery interface {
	Job() model.ThumbnailJob
	// Attempt is 1 on first delivery.
	Attempt() int
	Ack() error
	// Nak asks for redelivery.
	Nak() error
	// Term drops the message for good.
	Term() error
}
