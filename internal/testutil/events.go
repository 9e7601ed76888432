package testutil

import (
	"context"
	"sync"

	"github.com/membersonly/forum/types"
)

// RecordingPublisher keeps every published activity event.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []types.ActivityEvent
}

func (p *RecordingPublisher) Publish(ctx context.Context, event types.ActivityEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

// Events returns a copy of the recorded events.
func (p *RecordingPublisher) Events() []types.ActivityEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]types.ActivityEvent, len(p.events))
	copy(out, p.events)
	return out
}
