// Package statement reconstructs an account's balance timeline and produces
// monthly statements with a single rolled-up interest line.
package statement

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/bankledger/internal/ledger"
)

// InterestKind marks the synthetic monthly interest line. Transaction lines
// reuse the ledger's D/W kinds.
const InterestKind = "I"

var (
	oneHundred  = decimal.NewFromInt(100)
	daysPerYear = decimal.NewFromInt(365)
)

// Line is one row of a statement: either a recorded transaction or the
// interest posting. Balance is the end-of-day balance after the line applied.
type Line struct {
	Date    time.Time       `json:"date"`
	Ref     string          `json:"ref"`
	Kind    string          `json:"kind"`
	Amount  decimal.Decimal `json:"amount"`
	Balance decimal.Decimal `json:"balance"`
}

// Statement is the ordered line sequence for one account and month. It is
// derived fresh on every request and never persisted.
type Statement struct {
	Account string     `json:"account"`
	Year    int        `json:"year"`
	Month   time.Month `json:"month"`
	Lines   []Line     `json:"lines"`
}

// Reader is the slice of the store the engine needs.
type Reader interface {
	ListTransactions(ctx context.Context, account string) ([]ledger.Transaction, error)
	ListRules(ctx context.Context) ([]ledger.InterestRule, error)
}

// Engine generates statements. It holds no state of its own; output is a pure
// function of the store's contents.
type Engine struct {
	store Reader
}

// NewEngine wires an engine to its store.
func NewEngine(store Reader) *Engine {
	return &Engine{store: store}
}

// Generate produces the statement for one account and month. It returns
// ledger.ErrAccountNotFound when the account has no history at all and
// ledger.ErrNoDataForPeriod when it has no transactions in the month.
func (e *Engine) Generate(ctx context.Context, account string, year int, month time.Month) (*Statement, error) {
	all, err := e.store.ListTransactions(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if len(all) == 0 {
		return nil, ledger.ErrAccountNotFound
	}

	var monthTxns []ledger.Transaction
	for _, t := range all {
		if t.Date.Year() == year && t.Date.Month() == month {
			monthTxns = append(monthTxns, t)
		}
	}
	if len(monthTxns) == 0 {
		return nil, ledger.ErrNoDataForPeriod
	}

	rules, err := e.store.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}

	lastDay := daysInMonth(year, month)
	monthEnd := time.Date(year, month, lastDay, 0, 0, 0, 0, time.UTC)

	// Rules effective after the month's last day can never apply.
	applicable := rules[:0:0]
	for _, r := range rules {
		if !r.EffectiveDate.After(monthEnd) {
			applicable = append(applicable, r)
		}
	}

	balance := BalanceBeforeMonth(all, year, month)
	interest := decimal.Zero
	cursor := 1

	lines := make([]Line, 0, len(monthTxns)+1)
	for _, txn := range monthTxns {
		// The span before this transaction accrues on the balance as it stood
		// at the start of the span, not yet including the transaction itself.
		interest = interest.Add(AccrueInterest(balance, applicable, year, month, cursor, txn.Date.Day()-1))
		balance = balance.Add(txn.Signed())
		lines = append(lines, Line{
			Date:    txn.Date,
			Ref:     txn.ID,
			Kind:    string(txn.Kind),
			Amount:  txn.Amount,
			Balance: balance,
		})
		cursor = txn.Date.Day()
	}
	interest = interest.Add(AccrueInterest(balance, applicable, year, month, cursor, lastDay))

	if interest.IsPositive() {
		lines = append(lines, Line{
			Date:    monthEnd,
			Kind:    InterestKind,
			Amount:  interest,
			Balance: balance.Add(interest),
		})
	}

	return &Statement{Account: account, Year: year, Month: month, Lines: lines}, nil
}

// BalanceBeforeMonth folds every transaction dated strictly before the first
// of the month into a signed balance. An account with no prior history yields
// zero.
func BalanceBeforeMonth(txns []ledger.Transaction, year int, month time.Month) decimal.Decimal {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	balance := decimal.Zero
	for _, t := range txns {
		if t.Date.Before(monthStart) {
			balance = balance.Add(t.Signed())
		}
	}
	return balance
}

// AccrueInterest sums simple daily interest over the closed day range
// [startDay, endDay] of the given month. Each day uses the rule with the
// greatest effective date on or before it; a day no rule covers contributes
// nothing. Daily amounts are balance * rate/100 / 365, accumulated unrounded;
// the partial total is rounded to two decimals per call with banker's
// rounding, and callers sum these already-rounded contributions. A reversed
// range is a no-op.
func AccrueInterest(balance decimal.Decimal, rules []ledger.InterestRule, year int, month time.Month, startDay, endDay int) decimal.Decimal {
	if startDay > endDay {
		return decimal.Zero
	}

	total := decimal.Zero
	for day := startDay; day <= endDay; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		rate, ok := rateFor(rules, date)
		if !ok {
			continue
		}
		total = total.Add(balance.Mul(rate).Div(oneHundred).Div(daysPerYear))
	}
	return total.RoundBank(2)
}

// rateFor scans the ascending rule set from the most recent rule backward and
// returns the rate of the latest rule effective on or before date.
func rateFor(rules []ledger.InterestRule, date time.Time) (decimal.Decimal, bool) {
	for i := len(rules) - 1; i >= 0; i-- {
		if !rules[i].EffectiveDate.After(date) {
			return rules[i].AnnualRate, true
		}
	}
	return decimal.Zero, false
}

// ParsePeriod parses a yyyyMM period such as "202405".
func ParsePeriod(s string) (int, time.Month, error) {
	t, err := time.Parse("200601", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid period %q: expected yyyyMM", s)
	}
	return t.Year(), t.Month(), nil
}

// daysInMonth counts the calendar days of a month; day zero of the following
// month normalizes to its last day.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
