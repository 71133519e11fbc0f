package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS transactions (
	seq BIGSERIAL PRIMARY KEY,
	txn_id TEXT NOT NULL,
	account TEXT NOT NULL,
	txn_date DATE NOT NULL,
	kind TEXT NOT NULL,
	amount NUMERIC(20,2) NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_account_date ON transactions(account, txn_date);

CREATE TABLE IF NOT EXISTS interest_rules (
	effective_date DATE PRIMARY KEY,
	rule_id TEXT NOT NULL,
	rate NUMERIC(5,2) NOT NULL
);
`

// PostgresStore persists the ledger in postgres through a pgx pool. Amounts
// and rates travel as text on both sides of the wire to stay exact.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the ledger tables if they do not exist.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := p.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("apply postgres schema: %w", err)
	}
	return nil
}

func (p *PostgresStore) AddTransaction(ctx context.Context, txn Transaction) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := p.pool.Exec(ctx,
		`INSERT INTO transactions (txn_id, account, txn_date, kind, amount) VALUES ($1, $2, $3, $4, $5::numeric)`,
		txn.ID, txn.Account, txn.Date, string(txn.Kind), txn.Amount.String())
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (p *PostgresStore) ListTransactions(ctx context.Context, account string) ([]Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := p.pool.Query(ctx,
		`SELECT txn_id, txn_date, kind, amount::text FROM transactions WHERE account = $1 ORDER BY txn_date, seq`,
		account)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txns []Transaction
	for rows.Next() {
		var (
			id, kind, amount string
			date             time.Time
		)
		if err := rows.Scan(&id, &date, &kind, &amount); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		amt, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("stored amount %q: %w", amount, err)
		}
		txns = append(txns, Transaction{
			ID:      id,
			Date:    date.UTC(),
			Account: account,
			Kind:    Kind(kind),
			Amount:  amt,
		})
	}
	return txns, rows.Err()
}

func (p *PostgresStore) PutRule(ctx context.Context, rule InterestRule) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := p.pool.Exec(ctx,
		`INSERT INTO interest_rules (effective_date, rule_id, rate) VALUES ($1, $2, $3::numeric)
		 ON CONFLICT (effective_date) DO UPDATE SET rule_id = EXCLUDED.rule_id, rate = EXCLUDED.rate`,
		rule.EffectiveDate, rule.RuleID, rule.AnnualRate.String())
	if err != nil {
		return fmt.Errorf("upsert rule: %w", err)
	}
	return nil
}

func (p *PostgresStore) ListRules(ctx context.Context) ([]InterestRule, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := p.pool.Query(ctx,
		`SELECT effective_date, rule_id, rate::text FROM interest_rules ORDER BY effective_date`)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	var rules []InterestRule
	for rows.Next() {
		var (
			date     time.Time
			id, rate string
		)
		if err := rows.Scan(&date, &id, &rate); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		r, err := decimal.NewFromString(rate)
		if err != nil {
			return nil, fmt.Errorf("stored rate %q: %w", rate, err)
		}
		rules = append(rules, InterestRule{EffectiveDate: date.UTC(), RuleID: id, AnnualRate: r})
	}
	return rules, rows.Err()
}
