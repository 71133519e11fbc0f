package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/bankledger/internal/ledger"
	"github.com/example/bankledger/internal/security"
	"github.com/example/bankledger/internal/statement"
)

type transactionPayload struct {
	Date    string `json:"date"`
	Account string `json:"account"`
	Type    string `json:"type"`
	Amount  string `json:"amount"`
}

type rulePayload struct {
	Date   string `json:"date"`
	RuleID string `json:"rule_id"`
	Rate   string `json:"rate"`
}

type transactionLineJSON struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Account string `json:"account"`
	Type    string `json:"type"`
	Amount  string `json:"amount"`
}

type ruleJSON struct {
	Date   string `json:"date"`
	RuleID string `json:"rule_id"`
	Rate   string `json:"rate"`
}

type statementLineJSON struct {
	Date    string `json:"date"`
	Ref     string `json:"ref,omitempty"`
	Type    string `json:"type"`
	Amount  string `json:"amount"`
	Balance string `json:"balance"`
}

type statementJSON struct {
	Account string              `json:"account"`
	Period  string              `json:"period"`
	Lines   []statementLineJSON `json:"lines"`
}

func handleRecordTransaction(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p transactionPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		req, err := buildTransactionRequest(p)
		if err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "validation_error")
			return
		}

		txn, err := deps.Ledger.Record(r.Context(), req)
		if err != nil {
			writeDomainError(w, r, deps, err)
			return
		}
		writeJSON(w, r, http.StatusCreated, encodeTransaction(txn))
	}
}

func handleHistory(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account := chi.URLParam(r, "account")
		txns, err := deps.Ledger.History(r.Context(), account)
		if err != nil {
			writeDomainError(w, r, deps, err)
			return
		}

		out := make([]transactionLineJSON, 0, len(txns))
		for _, t := range txns {
			out = append(out, encodeTransaction(t))
		}
		writeJSON(w, r, http.StatusOK, map[string]any{"account": account, "transactions": out})
	}
}

func handleDefineRule(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p rulePayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		req, err := buildRuleRequest(p)
		if err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "validation_error")
			return
		}

		rule, err := deps.Ledger.DefineRule(r.Context(), req)
		if err != nil {
			writeDomainError(w, r, deps, err)
			return
		}
		writeJSON(w, r, http.StatusCreated, encodeRule(rule))
	}
}

func handleListRules(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rules, err := deps.Ledger.Rules(r.Context())
		if err != nil {
			writeDomainError(w, r, deps, err)
			return
		}

		out := make([]ruleJSON, 0, len(rules))
		for _, rule := range rules {
			out = append(out, encodeRule(rule))
		}
		writeJSON(w, r, http.StatusOK, map[string]any{"rules": out})
	}
}

func handleStatement(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account := chi.URLParam(r, "account")
		year, month, err := statement.ParsePeriod(r.URL.Query().Get("period"))
		if err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_period")
			return
		}

		st, err := deps.Statements.Generate(r.Context(), account, year, month)
		if err != nil {
			writeDomainError(w, r, deps, err)
			return
		}

		out := statementJSON{
			Account: st.Account,
			Period:  time.Date(st.Year, st.Month, 1, 0, 0, 0, 0, time.UTC).Format("200601"),
			Lines:   make([]statementLineJSON, 0, len(st.Lines)),
		}
		for _, line := range st.Lines {
			out.Lines = append(out.Lines, statementLineJSON{
				Date:    line.Date.Format(ledger.DateLayout),
				Ref:     line.Ref,
				Type:    line.Kind,
				Amount:  line.Amount.StringFixed(2),
				Balance: line.Balance.StringFixed(2),
			})
		}
		writeJSON(w, r, http.StatusOK, out)
	}
}

func buildTransactionRequest(p transactionPayload) (ledger.TransactionRequest, error) {
	date, err := time.Parse(ledger.DateLayout, p.Date)
	if err != nil {
		return ledger.TransactionRequest{}, err
	}
	kind, err := ledger.ParseKind(p.Type)
	if err != nil {
		return ledger.TransactionRequest{}, err
	}
	amount, err := ledger.ParseAmount(p.Amount)
	if err != nil {
		return ledger.TransactionRequest{}, err
	}
	return ledger.TransactionRequest{Date: date, Account: p.Account, Kind: kind, Amount: amount}, nil
}

func buildRuleRequest(p rulePayload) (ledger.RuleRequest, error) {
	date, err := time.Parse(ledger.DateLayout, p.Date)
	if err != nil {
		return ledger.RuleRequest{}, err
	}
	rate, err := ledger.ParseRate(p.Rate)
	if err != nil {
		return ledger.RuleRequest{}, err
	}
	return ledger.RuleRequest{EffectiveDate: date, RuleID: p.RuleID, AnnualRate: rate}, nil
}

func encodeTransaction(t ledger.Transaction) transactionLineJSON {
	return transactionLineJSON{
		ID:      t.ID,
		Date:    t.Date.Format(ledger.DateLayout),
		Account: t.Account,
		Type:    string(t.Kind),
		Amount:  t.Amount.StringFixed(2),
	}
}

func encodeRule(r ledger.InterestRule) ruleJSON {
	return ruleJSON{
		Date:   r.EffectiveDate.Format(ledger.DateLayout),
		RuleID: r.RuleID,
		Rate:   r.AnnualRate.StringFixed(2),
	}
}

func writeDomainError(w http.ResponseWriter, r *http.Request, deps Dependencies, err error) {
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound):
		security.WriteJSONError(w, r, http.StatusNotFound, "account_not_found")
	case errors.Is(err, ledger.ErrNoDataForPeriod):
		security.WriteJSONError(w, r, http.StatusNotFound, "no_data_for_period")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		security.WriteJSONError(w, r, http.StatusConflict, "insufficient_funds")
	case errors.Is(err, ledger.ErrFirstTransactionWithdrawal):
		security.WriteJSONError(w, r, http.StatusConflict, "first_transaction_withdrawal")
	default:
		deps.Logger.Error("internal error", "error", err)
		security.WriteJSONError(w, r, http.StatusInternalServerError, "internal_error")
	}
}
