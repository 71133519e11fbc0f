package ledger

import (
	"context"
	"sort"
	"sync"
)

// Store holds per-account ordered transactions and date-keyed interest rules.
// ListTransactions returns entries ordered by date, with recording order
// preserved on ties; ListRules returns rules ascending by effective date with
// at most one rule per date. Ordering and uniqueness are enforced on write,
// not re-checked on read.
type Store interface {
	AddTransaction(ctx context.Context, txn Transaction) error
	ListTransactions(ctx context.Context, account string) ([]Transaction, error)
	PutRule(ctx context.Context, rule InterestRule) error
	ListRules(ctx context.Context) ([]InterestRule, error)
}

// MemoryStore is the default in-process store. A single mutex serializes all
// access so a rule upsert can never interleave with an in-flight statement
// read.
type MemoryStore struct {
	mu    sync.Mutex
	txns  map[string][]Transaction
	rules []InterestRule
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{txns: make(map[string][]Transaction)}
}

func (m *MemoryStore) AddTransaction(ctx context.Context, txn Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns[txn.Account] = append(m.txns[txn.Account], txn)
	return nil
}

func (m *MemoryStore) ListTransactions(ctx context.Context, account string) ([]Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := m.txns[account]
	out := make([]Transaction, len(stored))
	copy(out, stored)
	// Recording order is the tiebreak for same-date entries.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (m *MemoryStore) PutRule(ctx context.Context, rule InterestRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = upsertRule(m.rules, rule)
	return nil
}

func (m *MemoryStore) ListRules(ctx context.Context) ([]InterestRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]InterestRule, len(m.rules))
	copy(out, m.rules)
	return out, nil
}
