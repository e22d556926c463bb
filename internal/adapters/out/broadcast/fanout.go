package broadcast

import (
	"context"
	"errors"
	"log/slog"

	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/ports"
)

// FanoutPublisher hands every batch of events to all sinks: the hub, the Kafka order-events
// topic and the notification exchange. A failing sink never stops the others.
type FanoutPublisher struct {
	sinks  []ports.EventPublisher
	logger *slog.Logger
}

func NewFanoutPublisher(logger *slog.Logger, sinks ...ports.EventPublisher) *FanoutPublisher {
	return &FanoutPublisher{sinks: sinks, logger: logger.With("component", "event_fanout")}
}

func (p *FanoutPublisher) Publish(ctx context.Context, events ...kernel.DomainEvent) error {
	var errs []error
	for _, sink := range p.sinks {
		if err := sink.Publish(ctx, events...); err != nil {
			p.logger.WarnContext(ctx, "event sink failed", "count", len(events), "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
