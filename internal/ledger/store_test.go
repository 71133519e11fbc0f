package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreOrdersByDateWithStableTies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	// Recorded out of date order, with two entries sharing a date.
	for _, txn := range []Transaction{
		{ID: "20240510-01", Date: testDate(t, "20240510"), Account: "AC001", Kind: Deposit, Amount: testAmount("1.00")},
		{ID: "20240505-01", Date: testDate(t, "20240505"), Account: "AC001", Kind: Deposit, Amount: testAmount("2.00")},
		{ID: "20240505-02", Date: testDate(t, "20240505"), Account: "AC001", Kind: Deposit, Amount: testAmount("3.00")},
	} {
		require.NoError(t, store.AddTransaction(ctx, txn))
	}

	txns, err := store.ListTransactions(ctx, "AC001")
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.Equal(t, "20240505-01", txns[0].ID)
	assert.Equal(t, "20240505-02", txns[1].ID)
	assert.Equal(t, "20240510-01", txns[2].ID)
}

func TestMemoryStoreIsolatesAccounts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.AddTransaction(ctx, Transaction{
		ID: "20240505-01", Date: testDate(t, "20240505"), Account: "AC001", Kind: Deposit, Amount: testAmount("1.00"),
	}))

	other, err := store.ListTransactions(ctx, "AC002")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestMemoryStoreListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.AddTransaction(ctx, Transaction{
		ID: "20240505-01", Date: testDate(t, "20240505"), Account: "AC001", Kind: Deposit, Amount: testAmount("1.00"),
	}))

	txns, err := store.ListTransactions(ctx, "AC001")
	require.NoError(t, err)
	txns[0].ID = "mutated"

	again, err := store.ListTransactions(ctx, "AC001")
	require.NoError(t, err)
	assert.Equal(t, "20240505-01", again[0].ID)
}

func TestUpsertRuleReplacesAndSorts(t *testing.T) {
	var rules []InterestRule
	rules = upsertRule(rules, InterestRule{EffectiveDate: testDate(t, "20240305"), RuleID: "R2", AnnualRate: testAmount("4.00")})
	rules = upsertRule(rules, InterestRule{EffectiveDate: testDate(t, "20240301"), RuleID: "R1", AnnualRate: testAmount("5.00")})
	rules = upsertRule(rules, InterestRule{EffectiveDate: testDate(t, "20240305"), RuleID: "R2b", AnnualRate: testAmount("3.50")})

	require.Len(t, rules, 2)
	assert.Equal(t, "R1", rules[0].RuleID)
	assert.Equal(t, "R2b", rules[1].RuleID)
	assert.Equal(t, "3.50", rules[1].AnnualRate.StringFixed(2))
}
