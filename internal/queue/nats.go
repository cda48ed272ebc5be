package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/templui/filesmanager/internal/model"
)

const (
	// StreamName is the JetStream stream holding thumbnail jobs.
	StreamName = "THUMBNAILS"
	// SubjectThumbnails is the subject jobs are published on.
	SubjectThumbnails = "thumbnails.generate"
	// ConsumerName is the durable consumer shared by all workers.
	ConsumerName = "thumbnail-workers"
)

// NATSConfig holds NATS client configuration.
type NATSConfig struct {
	URL        string
	MaxDeliver int
	AckWait    time.Duration
}

// NATSQueue implements Queue and Consumer on a JetStream work queue.
type NATSQueue struct {
	cfg NATSConfig
	nc  *nats.Conn
	js  jetstream.JetStream

	mu     sync.Mutex
	stream jetstream.Stream
}

func NewNATSQueue(cfg NATSConfig) *NATSQueue {
	if cfg.MaxDeliver <= 0 {
		cfg.MaxDeliver = 3
	}
	if cfg.AckWait <= 0 {
		cfg.AckWait = 30 * time.Second
	}
	return &NATSQueue{cfg: cfg}
}

// Connect establishes the connection and makes sure the stream exists.
// The client keeps reconnecting forever, so a failed stream setup is
// retried by later Enqueue and Deliveries calls.
func (q *NATSQueue) Connect(ctx context.Context) error {
	nc, err := nats.Connect(q.cfg.URL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("queue disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("queue reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	q.nc = nc

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}
	q.js = js

	if _, err := q.ensureStream(ctx); err != nil {
		return err
	}

	slog.Info("queue connected", "url", q.cfg.URL, "stream", StreamName)
	return nil
}

// ensureStream returns the stream, creating it on first success.
func (q *NATSQueue) ensureStream(ctx context.Context) (jetstream.Stream, error) {
	if q.js == nil {
		return nil, ErrUnavailable
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stream != nil {
		return q.stream, nil
	}
	if !q.nc.IsConnected() {
		return nil, ErrUnavailable
	}

	stream, err := q.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Description: "Image thumbnail generation jobs",
		Subjects:    []string{SubjectThumbnails},
		Retention:   jetstream.WorkQueuePolicy,
		MaxAge:      24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}
	q.stream = stream
	return stream, nil
}

// Enqueue publishes job. It fails fast with ErrUnavailable while the
// connection is down instead of buffering until ctx expires.
func (q *NATSQueue) Enqueue(ctx context.Context, job model.ThumbnailJob) error {
	if !q.Alive() {
		return ErrUnavailable
	}
	if _, err := q.ensureStream(ctx); err != nil {
		return err
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	ack, err := q.js.Publish(ctx, SubjectThumbnails, data)
	if err != nil {
		// The server may have lost the stream; recreate it next time
		q.mu.Lock()
		q.stream = nil
		q.mu.Unlock()
		return fmt.Errorf("failed to publish job: %w", err)
	}

	slog.Debug("job enqueued", "file_id", job.FileID, "sequence", ack.Sequence)
	return nil
}

// Deliveries starts consuming with the durable consumer. The channel is
// closed when ctx is cancelled or the iterator fails permanently.
func (q *NATSQueue) Deliveries(ctx context.Context) (<-chan Delivery, error) {
	stream, err := q.ensureStream(ctx)
	if err != nil {
		return nil, err
	}

	consumer, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Name:          ConsumerName,
		Durable:       ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       q.cfg.AckWait,
		MaxDeliver:    q.cfg.MaxDeliver,
		FilterSubject: SubjectThumbnails,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	iter, err := consumer.Messages(jetstream.PullMaxMessages(1))
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	out := make(chan Delivery)

	// Next blocks; stopping the iterator is the only way to unblock it
	go func() {
		<-ctx.Done()
		iter.Stop()
	}()

	go func() {
		defer close(out)

		for {
			msg, err := iter.Next()
			if err != nil {
				if errors.Is(err, jetstream.ErrMsgIteratorClosed) || ctx.Err() != nil {
					return
				}
				slog.Warn("queue fetch failed", "error", err)
				continue
			}

			d := &natsDelivery{msg: msg, attempt: 1}
			if err := json.Unmarshal(msg.Data(), &d.job); err != nil {
				// Zero job: the worker rejects it as permanently invalid
				slog.Warn("queue message is not a job", "error", err)
			}
			if meta, err := msg.Metadata(); err == nil {
				d.attempt = int(meta.NumDelivered)
			}

			select {
			case out <- d:
			case <-ctx.Done():
				// Unacked; JetStream redelivers after AckWait
				return
			}
		}
	}()

	return out, nil
}

// Alive reports whether the NATS connection is up.
func (q *NATSQueue) Alive() bool {
	return q.nc != nil && q.nc.IsConnected()
}

func (q *NATSQueue) Close() error {
	if q.nc != nil {
		q.nc.Close()
	}
	return nil
}

type natsDelivery struct {
	msg     jetstream.Msg
	job     model.ThumbnailJob
	attempt int
}

func (d *natsDelivery) Job() model.ThumbnailJob { return d.job }
func (d *natsDelivery) Attempt() int            { return d.attempt }
func (d *natsDelivery) Ack() error              { return d.msg.Ack() }
func (d *natsDelivery) Nak() error              { return d.msg.Nak() }
func (d *natsDelivery) Term() error             { return d.msg.Term() }
