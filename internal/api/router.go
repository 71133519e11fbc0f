package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/bankledger/internal/ledger"
	"github.com/example/bankledger/internal/security"
	"github.com/example/bankledger/internal/statement"
)

// Dependencies wires the router to the ledger and statement engine through
// narrow interfaces so tests can substitute fakes.
type Dependencies struct {
	Logger *slog.Logger

	Ledger interface {
		Record(ctx context.Context, req ledger.TransactionRequest) (ledger.Transaction, error)
		DefineRule(ctx context.Context, req ledger.RuleRequest) (ledger.InterestRule, error)
		History(ctx context.Context, account string) ([]ledger.Transaction, error)
		Rules(ctx context.Context) ([]ledger.InterestRule, error)
	}
	Statements interface {
		Generate(ctx context.Context, account string, year int, month time.Month) (*statement.Statement, error)
	}

	RateLimiter  *security.TokenBucket
	MaxBodyBytes int64
}

// NewRouter assembles the HTTP surface: correlation IDs, request logging,
// body limits, schema validation, and per-client rate limiting on statement
// generation.
func NewRouter(deps Dependencies) (http.Handler, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	transactionV, err := security.NewJSONSchemaValidator(transactionSchema)
	if err != nil {
		return nil, err
	}
	ruleV, err := security.NewJSONSchemaValidator(ruleSchema)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(security.CorrelationID)
	r.Use(RequestLogger(deps.Logger))
	if deps.MaxBodyBytes > 0 {
		r.Use(maxBody(deps.MaxBodyBytes))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.With(transactionV.Middleware).Post("/transactions", handleRecordTransaction(deps))
		r.With(ruleV.Middleware).Post("/interest-rules", handleDefineRule(deps))
		r.Get("/interest-rules", handleListRules(deps))
		r.Get("/accounts/{account}/transactions", handleHistory(deps))
		r.With(security.RateLimit(deps.RateLimiter, statementRateKey)).
			Get("/accounts/{account}/statement", handleStatement(deps))
	})

	return r, nil
}

func statementRateKey(r *http.Request) string {
	return chi.URLParam(r, "account")
}

func maxBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
