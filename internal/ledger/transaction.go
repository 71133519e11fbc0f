package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and console format for calendar dates.
const DateLayout = "20060102"

// Kind distinguishes deposits from withdrawals.
type Kind string

const (
	Deposit    Kind = "D"
	Withdrawal Kind = "W"
)

// Transaction is a single validated ledger entry. Transactions are immutable
// once recorded; balances are always recomputed from history rather than
// stored alongside the account.
type Transaction struct {
	ID      string          `json:"id"`
	Date    time.Time       `json:"date"`
	Account string          `json:"account"`
	Kind    Kind            `json:"kind"`
	Amount  decimal.Decimal `json:"amount"`
}

// Signed returns the amount with the sign the kind implies: positive for a
// deposit, negative for a withdrawal.
func (t Transaction) Signed() decimal.Decimal {
	if t.Kind == Withdrawal {
		return t.Amount.Neg()
	}
	return t.Amount
}

// TransactionID derives the identifier for the n-th transaction recorded for
// an account on a given date, e.g. "20240505-02".
func TransactionID(date time.Time, n int) string {
	return fmt.Sprintf("%s-%02d", date.Format(DateLayout), n)
}

// Balance folds a transaction sequence into a signed balance.
func Balance(txns []Transaction) decimal.Decimal {
	balance := decimal.Zero
	for _, t := range txns {
		balance = balance.Add(t.Signed())
	}
	return balance
}
