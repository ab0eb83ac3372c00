// Package trace keeps the append-only, ordered record of every engine
// decision in a negotiation session. Events are never rewritten or
// dropped; even a failed append leaves a marker.
package trace

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Event kinds recorded by the negotiation engine.
const (
	KindDomainDetected      = "domain_detected"
	KindFacetsDiscovered    = "facets_discovered"
	KindDiscoveryFallback   = "discovery_fallback"
	KindFacetsRanked        = "facets_ranked"
	KindSelectionsMerged    = "selections_merged"
	KindPromptCompiled      = "prompt_compiled"
	KindCompileFailed       = "compile_failed"
	KindGenerationInvoked   = "generation_invoked"
	KindGenerationCompleted = "generation_completed"
	KindGenerationFailed    = "generation_failed"

	// KindLedgerGap marks a spot where a durable append failed. The
	// negotiation still completed; the gap is surfaced, never hidden.
	KindLedgerGap = "ledger_gap"
)

// Event is one entry in a session's trace. Seq is the ordering key;
// the timestamp is informational only, since coarse clock resolution
// could collide.
type Event struct {
	Seq       int64                  `json:"seq"`
	Kind      string                 `json:"kind"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// Store is the durable backing for trace events.
type Store interface {
	Append(ctx context.Context, requestId string, event *Event) error
	List(ctx context.Context, requestId string) ([]*Event, error)
}

// Logger is the slice of the system logger the ledger needs.
type Logger interface {
	Error(module, message string, details map[string]interface{})
}

// Ledger assigns sequence numbers and appends events to the store.
// When the store is unavailable the event's slot becomes an in-memory
// gap marker so the read-back still accounts for everything that
// happened. The per-session lock held by the negotiation service makes
// each session single-writer; the ledger itself only guards its maps.
type Ledger struct {
	store Store
	log   Logger

	mu   sync.Mutex
	seqs map[string]int64
	gaps map[string][]*Event
}

func NewLedger(store Store, log Logger) *Ledger {
	return &Ledger{
		store: store,
		log:   log,
		seqs:  make(map[string]int64),
		gaps:  make(map[string][]*Event),
	}
}

// Append records one event and returns it. Never fails: a store error
// is logged and replaced by a gap marker at the same sequence slot.
func (l *Ledger) Append(ctx context.Context, requestId, kind string, data map[string]interface{}) *Event {
	seq := l.nextSeq(ctx, requestId)

	event := &Event{
		Seq:       seq,
		Kind:      kind,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	if err := l.store.Append(ctx, requestId, event); err != nil {
		if l.log != nil {
			l.log.Error("trace", "ledger append failed", map[string]interface{}{
				"request_id": requestId,
				"kind":       kind,
				"error":      err.Error(),
			})
		}
		gap := &Event{
			Seq:       seq,
			Kind:      KindLedgerGap,
			Timestamp: event.Timestamp,
			Data: map[string]interface{}{
				"failed_kind": kind,
				"error":       err.Error(),
			},
		}
		l.mu.Lock()
		l.gaps[requestId] = append(l.gaps[requestId], gap)
		l.mu.Unlock()
		return gap
	}
	return event
}

// nextSeq claims the next sequence slot for a request. The first claim
// in this process resumes after whatever the store already holds, so a
// counter lost to a restart (or held by another instance) never reissues
// a taken seq. If the seeding read fails the counter starts at zero and
// the colliding appends surface as gap markers, same as any store fault.
func (l *Ledger) nextSeq(ctx context.Context, requestId string) int64 {
	l.mu.Lock()
	seeded, ok := l.seqs[requestId]
	l.mu.Unlock()

	if !ok {
		if stored, err := l.store.List(ctx, requestId); err == nil {
			for _, e := range stored {
				if e.Seq > seeded {
					seeded = e.Seq
				}
			}
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if cur := l.seqs[requestId]; cur > seeded {
		seeded = cur
	}
	seq := seeded + 1
	l.seqs[requestId] = seq
	return seq
}

// Events returns the session's trace in total append order, gap markers
// included. A store read failure still returns the in-memory gaps.
func (l *Ledger) Events(ctx context.Context, requestId string) ([]*Event, error) {
	stored, err := l.store.List(ctx, requestId)

	l.mu.Lock()
	gaps := make([]*Event, len(l.gaps[requestId]))
	copy(gaps, l.gaps[requestId])
	l.mu.Unlock()

	merged := make([]*Event, 0, len(stored)+len(gaps))
	merged = append(merged, stored...)
	merged = append(merged, gaps...)
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Seq < merged[j].Seq })

	if err != nil {
		return merged, err
	}
	return merged, nil
}

// Forget releases in-memory bookkeeping for a finished session.
func (l *Ledger) Forget(requestId string) {
	l.mu.Lock()
	delete(l.seqs, requestId)
	delete(l.gaps, requestId)
	l.mu.Unlock()
}
