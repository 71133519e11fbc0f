package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS transactions (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	txn_id TEXT NOT NULL,
	account TEXT NOT NULL,
	txn_date TEXT NOT NULL,
	kind TEXT NOT NULL,
	amount TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_account_date ON transactions(account, txn_date);

CREATE TABLE IF NOT EXISTS interest_rules (
	effective_date TEXT PRIMARY KEY,
	rule_id TEXT NOT NULL,
	rate TEXT NOT NULL
);
`

// SQLiteStore persists the ledger in a local sqlite database. Dates are kept
// as yyyyMMdd text and amounts as decimal strings so nothing is ever round-
// tripped through floats.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed creates) the database at path and applies
// the schema. Use ":memory:" for an ephemeral store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AddTransaction(ctx context.Context, txn Transaction) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (txn_id, account, txn_date, kind, amount) VALUES (?, ?, ?, ?, ?)`,
		txn.ID, txn.Account, txn.Date.Format(DateLayout), string(txn.Kind), txn.Amount.String())
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListTransactions(ctx context.Context, account string) ([]Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT txn_id, txn_date, kind, amount FROM transactions WHERE account = ? ORDER BY txn_date, seq`,
		account)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txns []Transaction
	for rows.Next() {
		var id, date, kind, amount string
		if err := rows.Scan(&id, &date, &kind, &amount); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txn, err := decodeTransaction(id, account, date, kind, amount)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

func (s *SQLiteStore) PutRule(ctx context.Context, rule InterestRule) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO interest_rules (effective_date, rule_id, rate) VALUES (?, ?, ?)
		 ON CONFLICT(effective_date) DO UPDATE SET rule_id = excluded.rule_id, rate = excluded.rate`,
		rule.EffectiveDate.Format(DateLayout), rule.RuleID, rule.AnnualRate.String())
	if err != nil {
		return fmt.Errorf("upsert rule: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListRules(ctx context.Context) ([]InterestRule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT effective_date, rule_id, rate FROM interest_rules ORDER BY effective_date`)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	var rules []InterestRule
	for rows.Next() {
		var date, id, rate string
		if err := rows.Scan(&date, &id, &rate); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rule, err := decodeRule(date, id, rate)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func decodeTransaction(id, account, date, kind, amount string) (Transaction, error) {
	d, err := parseStoredDate(date)
	if err != nil {
		return Transaction{}, err
	}
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return Transaction{}, fmt.Errorf("stored amount %q: %w", amount, err)
	}
	return Transaction{ID: id, Date: d, Account: account, Kind: Kind(kind), Amount: amt}, nil
}

func parseStoredDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("stored date %q: %w", s, err)
	}
	return d, nil
}

func decodeRule(date, id, rate string) (InterestRule, error) {
	d, err := parseStoredDate(date)
	if err != nil {
		return InterestRule{}, err
	}
	r, err := decimal.NewFromString(rate)
	if err != nil {
		return InterestRule{}, fmt.Errorf("stored rate %q: %w", rate, err)
	}
	return InterestRule{EffectiveDate: d, RuleID: id, AnnualRate: r}, nil
}
