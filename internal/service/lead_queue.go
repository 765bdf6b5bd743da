package service

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// leadQueue runs mutations of one lead one at a time, so two quick toggles of
// the same tag cannot both read "absent" and both add. Different leads run in parallel.
type leadQueue struct {
	mu    sync.Mutex
	slots map[primitive.ObjectID]*leadSlot
}

type leadSlot struct {
	turn  chan struct{} // capacity 1; holding the token means owning the lead
	users int           // callers holding or waiting for this slot
}

func newLeadQueue() *leadQueue {
	return &leadQueue{slots: make(map[primitive.ObjectID]*leadSlot)}
}

// Do waits for the lead's turn, then runs fn. It gives up if ctx ends while waiting.
func (q *leadQueue) Do(ctx context.Context, leadID primitive.ObjectID, fn func() error) error {
	q.mu.Lock()
	slot, ok := q.slots[leadID]
	if !ok {
		slot = &leadSlot{turn: make(chan struct{}, 1)}
		q.slots[leadID] = slot
	}
	slot.users++
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		slot.users--
		if slot.users == 0 {
			delete(q.slots, leadID)
		}
		q.mu.Unlock()
	}()

	select {
	case slot.turn <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-slot.turn }()

	return fn()
}

// pending reports how many leads currently have a caller holding or waiting.
func (q *leadQueue) pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.slots)
}
