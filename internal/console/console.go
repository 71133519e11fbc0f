// Package console implements the interactive banking session: a menu loop
// that records transactions, defines interest rules and prints statements.
// All rendering lives here; the engine only ever produces structured lines.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/example/bankledger/internal/ledger"
	"github.com/example/bankledger/internal/statement"
)

// Session drives one interactive run over a reader/writer pair, which keeps
// the loop testable with plain buffers.
type Session struct {
	in     *bufio.Scanner
	out    io.Writer
	ledger *ledger.Service
	engine *statement.Engine
}

// New builds a session.
func New(r io.Reader, w io.Writer, svc *ledger.Service, engine *statement.Engine) *Session {
	return &Session{in: bufio.NewScanner(r), out: w, ledger: svc, engine: engine}
}

// Run loops over the menu until the user quits or input ends.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Welcome to the bank! What would you like to do?")
	for {
		fmt.Fprintln(s.out, "[T] Input transactions")
		fmt.Fprintln(s.out, "[I] Define interest rules")
		fmt.Fprintln(s.out, "[P] Print statement")
		fmt.Fprintln(s.out, "[Q] Quit")
		fmt.Fprint(s.out, "> ")

		line, ok := s.readLine()
		if !ok {
			return nil
		}

		switch strings.ToUpper(strings.TrimSpace(line)) {
		case "T":
			s.inputTransaction(ctx)
		case "I":
			s.defineRule(ctx)
		case "P":
			s.printStatement(ctx)
		case "Q":
			fmt.Fprintln(s.out, "Thank you for banking with us.")
			fmt.Fprintln(s.out, "Have a nice day!")
			return nil
		default:
			fmt.Fprintln(s.out, "Invalid option. Try again.")
		}
		fmt.Fprintln(s.out)
		fmt.Fprintln(s.out, "Is there anything else you'd like to do?")
	}
}

func (s *Session) inputTransaction(ctx context.Context) {
	fmt.Fprintln(s.out, "Please enter transaction details in <Date> <Account> <Type> <Amount> format:")
	line, ok := s.readLine()
	if !ok || strings.TrimSpace(line) == "" {
		return
	}

	req, err := ledger.ParseTransactionInput(line)
	if err != nil {
		fmt.Fprintln(s.out, err)
		return
	}
	txn, err := s.ledger.Record(ctx, req)
	if err != nil {
		fmt.Fprintln(s.out, err)
		return
	}

	txns, err := s.ledger.History(ctx, txn.Account)
	if err != nil {
		fmt.Fprintln(s.out, err)
		return
	}
	s.renderTransactions(txn.Account, txns)
}

func (s *Session) defineRule(ctx context.Context) {
	fmt.Fprintln(s.out, "Please enter interest rule details in <Date> <RuleId> <Rate in %> format:")
	line, ok := s.readLine()
	if !ok || strings.TrimSpace(line) == "" {
		return
	}

	req, err := ledger.ParseRuleInput(line)
	if err != nil {
		fmt.Fprintln(s.out, err)
		return
	}
	if _, err := s.ledger.DefineRule(ctx, req); err != nil {
		fmt.Fprintln(s.out, err)
		return
	}

	rules, err := s.ledger.Rules(ctx)
	if err != nil {
		fmt.Fprintln(s.out, err)
		return
	}
	s.renderRules(rules)
}

func (s *Session) printStatement(ctx context.Context) {
	fmt.Fprintln(s.out, "Please enter account and month to generate the statement <Account> <Year><Month>:")
	line, ok := s.readLine()
	if !ok || strings.TrimSpace(line) == "" {
		return
	}

	parts := strings.Fields(line)
	if len(parts) != 2 {
		fmt.Fprintln(s.out, "expected <account> <yyyyMM>")
		return
	}
	year, month, err := statement.ParsePeriod(parts[1])
	if err != nil {
		fmt.Fprintln(s.out, err)
		return
	}

	st, err := s.engine.Generate(ctx, parts[0], year, month)
	if err != nil {
		fmt.Fprintln(s.out, err)
		return
	}
	s.renderStatement(st)
}

func (s *Session) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return s.in.Text(), true
}

func (s *Session) renderTransactions(account string, txns []ledger.Transaction) {
	fmt.Fprintf(s.out, "Account: %s\n", account)
	fmt.Fprintln(s.out, "| Date     | Txn Id       | Type | Amount   |")
	for _, t := range txns {
		fmt.Fprintf(s.out, "| %s | %-12s | %-4s | %8s |\n",
			t.Date.Format(ledger.DateLayout), t.ID, string(t.Kind), t.Amount.StringFixed(2))
	}
}

func (s *Session) renderRules(rules []ledger.InterestRule) {
	fmt.Fprintln(s.out, "Interest rules:")
	fmt.Fprintln(s.out, "| Date     | RuleId | Rate (%) |")
	for _, r := range rules {
		fmt.Fprintf(s.out, "| %s | %-6s | %8s |\n",
			r.EffectiveDate.Format(ledger.DateLayout), r.RuleID, r.AnnualRate.StringFixed(2))
	}
}

func (s *Session) renderStatement(st *statement.Statement) {
	period := time.Date(st.Year, st.Month, 1, 0, 0, 0, 0, time.UTC).Format("200601")
	fmt.Fprintf(s.out, "Account: %s, statement for %s\n", st.Account, period)
	fmt.Fprintln(s.out, "| Date     | Txn Id       | Type | Amount   | Balance   |")
	for _, line := range st.Lines {
		fmt.Fprintf(s.out, "| %s | %-12s | %-4s | %8s | %9s |\n",
			line.Date.Format(ledger.DateLayout), line.Ref, line.Kind,
			line.Amount.StringFixed(2), line.Balance.StringFixed(2))
	}
}
