package ledger

import (
	"context"
	"fmt"

	"github.com/example/bankledger/pkg/audit"
)

// Service applies the ledger's business rules on top of a Store: transaction
// identifiers, the first-transaction and sufficient-funds checks, and the
// rule upsert policy. It never caches balances; they are recomputed from
// history on every check.
type Service struct {
	store Store
	trail *audit.Trail
}

// NewService wires a service to its store. The audit trail may be nil.
func NewService(store Store, trail *audit.Trail) *Service {
	return &Service{store: store, trail: trail}
}

// Record validates and appends a transaction, returning it with its derived
// identifier. A withdrawal is rejected when the account has no history or
// when it would drive the balance negative.
func (s *Service) Record(ctx context.Context, req TransactionRequest) (Transaction, error) {
	txns, err := s.store.ListTransactions(ctx, req.Account)
	if err != nil {
		return Transaction{}, fmt.Errorf("list transactions: %w", err)
	}

	if req.Kind == Withdrawal {
		if len(txns) == 0 {
			return Transaction{}, ErrFirstTransactionWithdrawal
		}
		if Balance(txns).LessThan(req.Amount) {
			return Transaction{}, ErrInsufficientFunds
		}
	}

	seq := 1
	for _, t := range txns {
		if t.Date.Equal(req.Date) {
			seq++
		}
	}

	txn := Transaction{
		ID:      TransactionID(req.Date, seq),
		Date:    req.Date,
		Account: req.Account,
		Kind:    req.Kind,
		Amount:  req.Amount,
	}
	if err := s.store.AddTransaction(ctx, txn); err != nil {
		return Transaction{}, fmt.Errorf("add transaction: %w", err)
	}

	if s.trail != nil {
		s.trail.Record(audit.EventTransaction,
			fmt.Sprintf("%s %s %s %s", txn.Account, txn.ID, txn.Kind, txn.Amount.StringFixed(2)))
	}
	return txn, nil
}

// DefineRule inserts or replaces the interest rule for its effective date.
func (s *Service) DefineRule(ctx context.Context, req RuleRequest) (InterestRule, error) {
	rule := InterestRule{
		EffectiveDate: req.EffectiveDate,
		RuleID:        req.RuleID,
		AnnualRate:    req.AnnualRate,
	}
	if err := s.store.PutRule(ctx, rule); err != nil {
		return InterestRule{}, fmt.Errorf("put rule: %w", err)
	}

	if s.trail != nil {
		s.trail.Record(audit.EventRule,
			fmt.Sprintf("%s %s %s%%", rule.EffectiveDate.Format(DateLayout), rule.RuleID, rule.AnnualRate.StringFixed(2)))
	}
	return rule, nil
}

// History returns the account's full transaction list, ordered by date.
func (s *Service) History(ctx context.Context, account string) ([]Transaction, error) {
	txns, err := s.store.ListTransactions(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if len(txns) == 0 {
		return nil, ErrAccountNotFound
	}
	return txns, nil
}

// Rules returns all interest rules ascending by effective date.
func (s *Service) Rules(ctx context.Context) ([]InterestRule, error) {
	rules, err := s.store.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	return rules, nil
}
