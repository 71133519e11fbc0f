package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// TransactionRequest is a parsed, validated request to record a transaction.
// It carries no ID: identifiers are derived at recording time.
type TransactionRequest struct {
	Date    time.Time
	Account string
	Kind    Kind
	Amount  decimal.Decimal
}

// RuleRequest is a parsed, validated request to define an interest rule.
type RuleRequest struct {
	EffectiveDate time.Time
	RuleID        string
	AnnualRate    decimal.Decimal
}

// ParseTransactionInput validates a raw "<yyyyMMdd> <account> <D|W> <amount>"
// line. The type is case-insensitive; the amount must be positive with at
// most two decimal places.
func ParseTransactionInput(raw string) (TransactionRequest, error) {
	parts := strings.Fields(raw)
	if len(parts) != 4 {
		return TransactionRequest{}, fmt.Errorf("expected <date> <account> <type> <amount>, got %d fields", len(parts))
	}

	date, err := time.Parse(DateLayout, parts[0])
	if err != nil {
		return TransactionRequest{}, fmt.Errorf("invalid date %q: expected yyyyMMdd", parts[0])
	}

	kind, err := ParseKind(parts[2])
	if err != nil {
		return TransactionRequest{}, err
	}

	amount, err := ParseAmount(parts[3])
	if err != nil {
		return TransactionRequest{}, err
	}

	return TransactionRequest{Date: date, Account: parts[1], Kind: kind, Amount: amount}, nil
}

// ParseRuleInput validates a raw "<yyyyMMdd> <ruleId> <rate>" line. The rate
// must be strictly between 0 and 100 with at most two decimal places.
func ParseRuleInput(raw string) (RuleRequest, error) {
	parts := strings.Fields(raw)
	if len(parts) != 3 {
		return RuleRequest{}, fmt.Errorf("expected <date> <ruleId> <rate>, got %d fields", len(parts))
	}

	date, err := time.Parse(DateLayout, parts[0])
	if err != nil {
		return RuleRequest{}, fmt.Errorf("invalid date %q: expected yyyyMMdd", parts[0])
	}

	rate, err := ParseRate(parts[2])
	if err != nil {
		return RuleRequest{}, err
	}

	return RuleRequest{EffectiveDate: date, RuleID: parts[1], AnnualRate: rate}, nil
}

// ParseKind maps "D"/"W" (any case) to a transaction kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(s) {
	case "D":
		return Deposit, nil
	case "W":
		return Withdrawal, nil
	}
	return "", fmt.Errorf("invalid transaction type %q: expected D or W", s)
}

// ParseRate validates an annual interest rate in percent.
func ParseRate(s string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid rate %q: %w", s, err)
	}
	if !rate.Equal(rate.Round(2)) {
		return decimal.Zero, fmt.Errorf("rate %s has more than two decimal places", s)
	}
	if !rate.IsPositive() || rate.GreaterThanOrEqual(oneHundred) {
		return decimal.Zero, fmt.Errorf("rate must be between 0 and 100 exclusive, got %s", s)
	}
	return rate, nil
}

// ParseAmount validates a positive amount with at most two decimal places.
func ParseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !amount.Equal(amount.Round(2)) {
		return decimal.Zero, fmt.Errorf("amount %s has more than two decimal places", s)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be greater than zero, got %s", s)
	}
	return amount, nil
}
