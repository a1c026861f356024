// Package events fans task change notifications out to realtime clients and
// the message bus.
package events

import (
	"context"

	"task_tracker/internal/domain"
)

// Publisher delivers an event. Implementations log failures instead of
// returning them.
type Publisher interface {
	Publish(ctx context.Context, e domain.Event)
}

// Multi publishes every event to each of its publishers in order.
type Multi []Publisher

func NewMulti(pubs ...Publisher) Multi {
	res := make(Multi, 0, len(pubs))
	for _, p := range pubs {
		if p != nil {
			res = append(res, p)
		}
	}
	return res
}

func (m Multi) Publish(ctx context.Context, e domain.Event) {
	for _, p := range m {
		p.Publish(ctx, e)
	}
}
