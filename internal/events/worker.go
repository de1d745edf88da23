package events

import (
	"context"
	"log/slog"
	"time"
)

// Worker drains events from a channel into a publisher. It decouples the
// serialized registry core from a slow downstream sink (Kafka) while the
// channel preserves emission order.
type Worker struct {
	publisher Publisher
	inbox     <-chan Event
	logger    *slog.Logger
}

func NewWorker(publisher Publisher, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{publisher: publisher, inbox: inbox, logger: logger}
}

// flushTimeout bounds how long shutdown waits on the downstream sink while
// draining already-accepted events.
const flushTimeout = 5 * time.Second

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain(ctx)
			return ctx.Err()
		case event := <-w.inbox:
			w.publish(ctx, event)
		}
	}
}

// drain ships events that were accepted before shutdown. The cancelled
// context has already stopped the send side, so the buffered backlog is all
// that remains.
func (w *Worker) drain(ctx context.Context) {
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()
	for {
		select {
		case event := <-w.inbox:
			w.publish(flushCtx, event)
		default:
			return
		}
	}
}

func (w *Worker) publish(ctx context.Context, event Event) {
	if err := w.publisher.Emit(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "publish event failed",
			"type", event.Type,
			"parcel_id", event.ParcelID,
			"error", err,
		)
	}
}

// ChannelPublisher feeds the worker from synchronous domain code. Emit never
// blocks domain operations longer than the channel send.
type ChannelPublisher struct {
	outbox chan<- Event
}

func NewChannelPublisher(outbox chan<- Event) *ChannelPublisher {
	return &ChannelPublisher{outbox: outbox}
}

func (p *ChannelPublisher) Emit(ctx context.Context, event Event) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case p.outbox <- stamp(event):
		return nil
	}
}
