package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/bankledger/internal/ledger"
	"github.com/example/bankledger/internal/security"
	"github.com/example/bankledger/internal/statement"
)

func newTestServer(t *testing.T, limiter *security.TokenBucket) *httptest.Server {
	t.Helper()
	store := ledger.NewMemoryStore()
	router, err := NewRouter(Dependencies{
		Ledger:       ledger.NewService(store, nil),
		Statements:   statement.NewEngine(store),
		RateLimiter:  limiter,
		MaxBodyBytes: 1 << 20,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	return resp
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(security.CorrelationIDHeader))
}

func TestRecordTransaction(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/v1/transactions", map[string]string{
		"date": "20240505", "account": "AC001", "type": "D", "amount": "100.00",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		ID     string `json:"id"`
		Amount string `json:"amount"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "20240505-01", out.ID)
	assert.Equal(t, "100.00", out.Amount)
}

func TestRecordTransactionSchemaRejectsMissingFields(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/v1/transactions", map[string]string{
		"date": "20240505", "account": "AC001",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRecordTransactionRejectsOverdraft(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/v1/transactions", map[string]string{
		"date": "20240505", "account": "AC001", "type": "W", "amount": "10.00",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var out security.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "first_transaction_withdrawal", out.Error)
}

func TestDefineAndListRules(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/v1/interest-rules", map[string]string{
		"date": "20240101", "rule_id": "RULE01", "rate": "5.00",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	listResp, err := http.Get(srv.URL + "/v1/interest-rules")
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var out struct {
		Rules []struct {
			RuleID string `json:"rule_id"`
			Rate   string `json:"rate"`
		} `json:"rules"`
	}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&out))
	require.Len(t, out.Rules, 1)
	assert.Equal(t, "RULE01", out.Rules[0].RuleID)
	assert.Equal(t, "5.00", out.Rules[0].Rate)
}

func TestStatementEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/v1/transactions", map[string]string{
		"date": "20240505", "account": "AC001", "type": "D", "amount": "100.00",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/v1/interest-rules", map[string]string{
		"date": "20240101", "rule_id": "RULE01", "rate": "5.00",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	stResp, err := http.Get(srv.URL + "/v1/accounts/AC001/statement?period=202405")
	require.NoError(t, err)
	defer stResp.Body.Close()
	require.Equal(t, http.StatusOK, stResp.StatusCode)

	var out struct {
		Account string `json:"account"`
		Period  string `json:"period"`
		Lines   []struct {
			Date    string `json:"date"`
			Type    string `json:"type"`
			Amount  string `json:"amount"`
			Balance string `json:"balance"`
		} `json:"lines"`
	}
	require.NoError(t, json.NewDecoder(stResp.Body).Decode(&out))
	assert.Equal(t, "AC001", out.Account)
	assert.Equal(t, "202405", out.Period)
	require.Len(t, out.Lines, 2)
	assert.Equal(t, "D", out.Lines[0].Type)
	assert.Equal(t, "100.00", out.Lines[0].Balance)
	assert.Equal(t, "I", out.Lines[1].Type)
	assert.Equal(t, "20240531", out.Lines[1].Date)
	assert.Equal(t, "0.37", out.Lines[1].Amount)
	assert.Equal(t, "100.37", out.Lines[1].Balance)
}

func TestStatementUnknownAccount(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/v1/accounts/NOPE/statement?period=202405")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var out security.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "account_not_found", out.Error)
}

func TestStatementInvalidPeriod(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/v1/accounts/AC001/statement?period=May2024")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatementRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter := &security.TokenBucket{
		Redis:      redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		Prefix:     "test",
		Capacity:   2,
		RefillRate: 0.001,
	}
	srv := newTestServer(t, limiter)

	resp := postJSON(t, srv.URL+"/v1/transactions", map[string]string{
		"date": "20240505", "account": "AC001", "type": "D", "amount": "100.00",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		r, err := http.Get(srv.URL + "/v1/accounts/AC001/statement?period=202405")
		require.NoError(t, err)
		r.Body.Close()
		statuses = append(statuses, r.StatusCode)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)
}
