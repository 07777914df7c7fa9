package memory

import (
	"context"
	"time"

	appoutbox "signature/internal/app/outbox"
)

const (
	stateNew     = "NEW"
	stateClaimed = "CLAIMED"
	stateSent    = "SENT"
	stateFailed  = "FAILED"
)

type outboxEntry struct {
	record    appoutbox.EventRecord
	state     string
	attempts  int
	next      time.Time
	claimedBy string
	lastError string
}

// Outbox stores event records next to the aggregates and serves them to the
// relay worker. Records added inside a unit disappear if the unit rolls back.
type Outbox struct {
	store *Store
	now   func() time.Time
}

func NewOutbox(store *Store) *Outbox {
	return &Outbox{store: store, now: time.Now}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.store.mu.Lock()
	defer o.store.mu.Unlock()
	entry := &outboxEntry{record: record, state: stateNew, next: o.now().UTC()}
	o.store.outbox = append(o.store.outbox, entry)
	if u := unitFrom(ctx); u != nil {
		u.onRollback(func() { o.store.outbox = removeEntry(o.store.outbox, entry) })
	}
	return nil
}

func (o *Outbox) Claim(_ context.Context, workerID string) (*appoutbox.PendingRecord, error) {
	now := o.now().UTC()
	o.store.mu.Lock()
	defer o.store.mu.Unlock()
	for _, e := range o.store.outbox {
		if (e.state == stateNew || e.state == stateFailed) && !e.next.After(now) {
			e.state = stateClaimed
			e.claimedBy = workerID
			return &appoutbox.PendingRecord{EventRecord: e.record, Attempts: e.attempts}, nil
		}
	}
	return nil, nil
}

func (o *Outbox) MarkSent(_ context.Context, id string) error {
	o.store.mu.Lock()
	defer o.store.mu.Unlock()
	if e := o.find(id); e != nil {
		e.state = stateSent
	}
	return nil
}

func (o *Outbox) MarkFailed(_ context.Context, id string, next time.Time, errMsg string) error {
	o.store.mu.Lock()
	defer o.store.mu.Unlock()
	if e := o.find(id); e != nil {
		e.state = stateFailed
		e.attempts++
		e.next = next
		e.lastError = errMsg
	}
	return nil
}

// Records lists stored records in insertion order with their relay state.
func (o *Outbox) Records() []OutboxRecord {
	o.store.mu.RLock()
	defer o.store.mu.RUnlock()
	out := make([]OutboxRecord, 0, len(o.store.outbox))
	for _, e := range o.store.outbox {
		out = append(out, OutboxRecord{EventRecord: e.record, State: e.state, Attempts: e.attempts, LastError: e.lastError})
	}
	return out
}

type OutboxRecord struct {
	appoutbox.EventRecord
	State     string
	Attempts  int
	LastError string
}

func (o *Outbox) find(id string) *outboxEntry {
	for _, e := range o.store.outbox {
		if e.record.ID == id {
			return e
		}
	}
	return nil
}

func removeEntry(entries []*outboxEntry, target *outboxEntry) []*outboxEntry {
	for i, e := range entries {
		if e == target {
			return append(entries[:i], entries[i+1:]...)
		}
	}
	return entries
}

var (
	_ appoutbox.Outbox     = (*Outbox)(nil)
	_ appoutbox.RelayStore = (*Outbox)(nil)
)
