package kernel

import "time"

// DomainEvent is something that happened to an aggregate and is published after commit.
type DomainEvent interface {
	EventName() string
	AggregateID() UUID
	OccurredAt() time.Time
}
