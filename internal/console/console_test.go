package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/bankledger/internal/ledger"
	"github.com/example/bankledger/internal/statement"
)

func runSession(t *testing.T, script string) string {
	t.Helper()
	store := ledger.NewMemoryStore()
	svc := ledger.NewService(store, nil)
	engine := statement.NewEngine(store)

	var out bytes.Buffer
	session := New(strings.NewReader(script), &out, svc, engine)
	require.NoError(t, session.Run(context.Background()))
	return out.String()
}

func TestSessionRecordsTransactionAndPrintsHistory(t *testing.T) {
	out := runSession(t, strings.Join([]string{
		"T",
		"20240505 AC001 D 100.00",
		"Q",
	}, "\n")+"\n")

	assert.Contains(t, out, "Account: AC001")
	assert.Contains(t, out, "| 20240505 | 20240505-01  | D    |   100.00 |")
	assert.Contains(t, out, "Have a nice day!")
}

func TestSessionDefinesRules(t *testing.T) {
	out := runSession(t, strings.Join([]string{
		"I",
		"20240305 R2 4.00",
		"I",
		"20240301 R1 5.00",
		"Q",
	}, "\n")+"\n")

	// The final listing shows both rules sorted ascending by effective date.
	last := strings.LastIndex(out, "Interest rules:")
	require.GreaterOrEqual(t, last, 0)
	tail := out[last:]
	r1 := strings.Index(tail, "| 20240301 | R1")
	r2 := strings.Index(tail, "| 20240305 | R2")
	require.GreaterOrEqual(t, r1, 0)
	require.GreaterOrEqual(t, r2, 0)
	assert.Less(t, r1, r2)
}

func TestSessionPrintsStatementWithInterestLine(t *testing.T) {
	out := runSession(t, strings.Join([]string{
		"T",
		"20240505 AC001 D 100.00",
		"I",
		"20240101 RULE01 5.00",
		"P",
		"AC001 202405",
		"Q",
	}, "\n")+"\n")

	assert.Contains(t, out, "Account: AC001, statement for 202405")
	assert.Contains(t, out, "| 20240505 | 20240505-01  | D    |   100.00 |    100.00 |")
	assert.Contains(t, out, "| 20240531 |              | I    |     0.37 |    100.37 |")
}

func TestSessionReportsValidationErrors(t *testing.T) {
	out := runSession(t, strings.Join([]string{
		"T",
		"20240505 AC001 W 10.00",
		"Q",
	}, "\n")+"\n")

	assert.Contains(t, out, "first transaction cannot be a withdrawal")
}

func TestSessionReportsUnknownAccount(t *testing.T) {
	out := runSession(t, strings.Join([]string{
		"P",
		"NOPE 202405",
		"Q",
	}, "\n")+"\n")

	assert.Contains(t, out, "account not found")
}

func TestSessionRejectsUnknownOption(t *testing.T) {
	out := runSession(t, "X\nQ\n")
	assert.Contains(t, out, "Invalid option. Try again.")
}

func TestSessionEndsCleanlyOnEOF(t *testing.T) {
	out := runSession(t, "")
	assert.Contains(t, out, "What would you like to do?")
}
