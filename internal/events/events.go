package events

import "context"

// StreamMutations carries audit feed events for connected ops consoles.
const StreamMutations = "events:mutations"

// Event types
const (
	EventMutationCaptured   = "mutation_captured"
	EventMutationRolledBack = "mutation_rolled_back"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
