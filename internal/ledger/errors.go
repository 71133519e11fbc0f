package ledger

import "errors"

// Domain errors surfaced to callers. The HTTP and console layers translate
// these into status codes and messages; none of them is fatal.
var (
	ErrAccountNotFound            = errors.New("account not found")
	ErrNoDataForPeriod            = errors.New("no transactions in requested period")
	ErrInsufficientFunds          = errors.New("insufficient funds")
	ErrFirstTransactionWithdrawal = errors.New("first transaction cannot be a withdrawal")
)
