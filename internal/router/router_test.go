package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tokenvault/config"
	"tokenvault/internal/auth"
	"tokenvault/internal/domain"
	"tokenvault/internal/repository"
	"tokenvault/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

const (
	aliceID = "11111111-aaaa-4aaa-8aaa-000000000001"
	bobbyID = "22222222-bbbb-4bbb-8bbb-000000000002"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	engine  *gin.Engine
	workers *Workers
	db      *gorm.DB
	cfg     *config.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Env: "test", AllowedOrigins: []string{"*"}},
		JWT:    config.JWTConfig{AccessSecret: "test-secret", AccessExpiry: time.Hour, Issuer: "tokenvault"},
		Ledger: config.LedgerConfig{
			Currency:           "TKN",
			PlatformFeeUserID:  "platform-fee-wallet",
			FeeWaiverThreshold: "20",
			ReadTimeout:        time.Second,
		},
		Fees:      config.FeeConfig{RefreshInterval: time.Minute},
		Outbox:    config.OutboxConfig{PollInterval: time.Second, BatchSize: 100, MaxAttempts: 3, BaseBackoff: time.Second},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000, MutationsPerSecond: 1000, MutationBurst: 1000},
	}
	db := testutil.NewDB(t)
	engine, workers := Setup(cfg, db, zaptest.NewLogger(t))
	t.Cleanup(workers.Stop)
	return &testServer{engine: engine, workers: workers, db: db, cfg: cfg}
}

func (s *testServer) token(t *testing.T, userID, email string) string {
	t.Helper()
	tok, err := auth.GenerateAccessToken(&s.cfg.JWT, userID, email)
	require.NoError(t, err)
	return tok
}

func (s *testServer) fund(t *testing.T, userID, email, amount string) {
	t.Helper()
	ctx := context.Background()
	_, err := repository.NewUserRepository(s.db).EnsureUser(ctx, userID, email)
	require.NoError(t, err)
	wallets := repository.NewWalletRepository(s.db)
	_, err = wallets.GetOrCreate(ctx, userID, "TKN")
	require.NoError(t, err)
	require.NoError(t, wallets.AdjustBalance(ctx, userID, domain.BalanceFieldPrimary, decimal.RequireFromString(amount)))
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w.Code, out
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok", body["status"])

	code, _ = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/v1/stakes", "/api/v1/transfers"} {
		code, body := s.do(t, http.MethodPost, path, "", map[string]interface{}{"amount": 1})
		require.Equal(t, http.StatusUnauthorized, code, path)
		require.Equal(t, false, body["success"])
	}
	code, _ := s.do(t, http.MethodGet, "/api/v1/wallet", "not-a-jwt", nil)
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestStakeEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.fund(t, aliceID, "alice@example.com", "150")
	tok := s.token(t, aliceID, "alice@example.com")

	code, body := s.do(t, http.MethodPost, "/api/v1/stakes", tok, map[string]interface{}{"amount": 100, "durationDays": 30})
	require.Equal(t, http.StatusCreated, code, body)
	require.Equal(t, true, body["success"])
	staking := body["staking"].(map[string]interface{})
	require.Equal(t, 100.0, staking["amountStaked"])
	require.Equal(t, 15.0, staking["rewardPercent"])
	require.Equal(t, domain.StakingStatusActive, staking["status"])
	require.NotContains(t, body, "referralBonus")

	code, body = s.do(t, http.MethodPost, "/api/v1/stakes", tok, map[string]interface{}{"amount": "100", "durationDays": 30})
	require.Equal(t, http.StatusPaymentRequired, code)
	require.Equal(t, false, body["success"])
	require.Equal(t, "required 100.00, available 50.00", body["details"])
	meta := body["meta"].(map[string]interface{})
	require.Equal(t, 50.0, meta["available"])

	code, body = s.do(t, http.MethodPost, "/api/v1/stakes", tok, map[string]interface{}{"amount": 10, "durationDays": 45})
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, body["error"], "durationDays")
	require.Equal(t, "got 45", body["details"])

	code, _ = s.do(t, http.MethodPost, "/api/v1/stakes", tok, map[string]interface{}{"amount": "0.0000004", "durationDays": 15})
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/stakes", tok, "not an object")
	require.Equal(t, http.StatusBadRequest, code)

	code, body = s.do(t, http.MethodGet, "/api/v1/stakes", tok, nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, body["stakes"], 1)
}

func TestTransferEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.fund(t, aliceID, "alice@example.com", "200")
	s.fund(t, bobbyID, "bobby@example.com", "0")
	tok := s.token(t, aliceID, "alice@example.com")

	code, body := s.do(t, http.MethodPost, "/api/v1/transfers", tok, map[string]interface{}{
		"recipientId": "bobb-2222-2222",
		"amount":      100,
		"note":        "dinner",
	})
	require.Equal(t, http.StatusOK, code, body)
	transfer := body["transfer"].(map[string]interface{})
	require.Equal(t, 100.0, transfer["amount"])
	require.Equal(t, 5.0, transfer["fee"])
	require.Equal(t, 95.0, transfer["netAmount"])
	require.Equal(t, "bobby@example.com", transfer["recipientEmail"])
	balances := body["balances"].(map[string]interface{})
	require.Equal(t, 95.0, balances["senderBalance"])
	require.Equal(t, 100.0, balances["recipientBalance"])

	code, body = s.do(t, http.MethodPost, "/api/v1/transfers", tok, map[string]interface{}{"recipientId": "ZZZZ-99999999", "amount": 1})
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "recipient not found", body["error"])

	code, _ = s.do(t, http.MethodPost, "/api/v1/transfers", tok, map[string]interface{}{"recipientId": "ALIC-11111111", "amount": 1})
	require.Equal(t, http.StatusBadRequest, code)

	_, err := s.workers.Dispatcher.DispatchOnce(context.Background())
	require.NoError(t, err)
	code, body = s.do(t, http.MethodGet, "/api/v1/wallet/transactions", tok, nil)
	require.Equal(t, http.StatusOK, code)
	txs := body["transactions"].([]interface{})
	require.Len(t, txs, 1)
	require.Equal(t, domain.TxTypeTransferOut, txs[0].(map[string]interface{})["type"])

	code, body = s.do(t, http.MethodGet, "/api/v1/notifications", tok, nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, body["notifications"], 1)
}

func TestWalletEndpoint(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, bobbyID, "bobby@example.com")

	code, body := s.do(t, http.MethodGet, "/api/v1/wallet", tok, nil)
	require.Equal(t, http.StatusOK, code)
	wallet := body["wallet"].(map[string]interface{})
	require.Equal(t, "BOBB-22222222", wallet["identifier"])
	require.Equal(t, 0.0, wallet["balance"])
	require.Equal(t, "TKN", wallet["currency"])

	code, body = s.do(t, http.MethodGet, "/api/v1/referrals/earnings", tok, nil)
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, body["earnings"])
}

func TestFeeQuoteEndpoint(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(t, http.MethodGet, "/api/v1/fees/quote?amount=100", "", nil)
	require.Equal(t, http.StatusOK, code)
	quote := body["quote"].(map[string]interface{})
	require.Equal(t, 5.0, quote["fee"])
	require.Equal(t, "95.00", quote["netDisplay"])

	code, body = s.do(t, http.MethodGet, "/api/v1/fees/quote?amount=100&type=withdraw", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 10.0, body["quote"].(map[string]interface{})["fee"])

	code, _ = s.do(t, http.MethodGet, "/api/v1/fees/quote?amount=-1", "", nil)
	require.Equal(t, http.StatusBadRequest, code)

	code, body = s.do(t, http.MethodGet, "/api/v1/fees/quote?amount=1.0000005", "", nil)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "amount must have at most 6 decimal places", body["error"])
}

func TestRegisterFCMTokenEndpoint(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, aliceID, "alice@example.com")

	code, _ := s.do(t, http.MethodPut, "/api/v1/me/fcm-token", tok, map[string]string{})
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPut, "/api/v1/me/fcm-token", tok, map[string]string{"token": "device-1"})
	require.Equal(t, http.StatusOK, code)
}
