// Package audit keeps a hash-chained trail of ledger mutations so a statement
// dispute can be traced back to the exact sequence of recorded events.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"
)

// EventKind identifies what was mutated.
type EventKind string

const (
	EventTransaction EventKind = "transaction"
	EventRule        EventKind = "interest_rule"
)

// Event is one link in the trail. Hash covers the previous hash, timestamp,
// kind and detail, so editing any recorded event breaks every later link.
type Event struct {
	Seq      int       `json:"seq"`
	At       string    `json:"at"`
	Kind     EventKind `json:"kind"`
	Detail   string    `json:"detail"`
	PrevHash string    `json:"prev_hash"`
	Hash     string    `json:"hash"`
}

// Trail is an append-only in-memory event chain.
type Trail struct {
	mu     sync.Mutex
	events []Event
	prev   string
}

// NewTrail returns an empty trail anchored on a zero hash.
func NewTrail() *Trail {
	return &Trail{prev: strings.Repeat("0", 64)}
}

// Record appends an event and returns it.
func (t *Trail) Record(kind EventKind, detail string) Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	ev := Event{
		Seq:      len(t.events) + 1,
		At:       time.Now().UTC().Format(time.RFC3339),
		Kind:     kind,
		Detail:   detail,
		PrevHash: t.prev,
	}
	ev.Hash = eventHash(ev)

	t.events = append(t.events, ev)
	t.prev = ev.Hash
	return ev
}

// Events returns a copy of the recorded chain.
func (t *Trail) Events() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}

// Verify reports whether the events form an unbroken, untampered chain.
func Verify(events []Event) bool {
	for i, ev := range events {
		if i > 0 && ev.PrevHash != events[i-1].Hash {
			return false
		}
		if eventHash(ev) != ev.Hash {
			return false
		}
	}
	return true
}

func eventHash(ev Event) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%s", ev.PrevHash, ev.At, ev.Kind, ev.Detail)))
	return hex.EncodeToString(sum[:])
}
