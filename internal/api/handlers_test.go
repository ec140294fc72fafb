package api

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/wallet-store/internal/constants"
	"github.com/quantumauth-io/wallet-store/internal/provider/providertest"
	"github.com/quantumauth-io/wallet-store/internal/store"
)

const alice = "0x1111111111111111111111111111111111111111"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, w *providertest.Wallet) *gin.Engine {
	t.Helper()
	s, err := store.New(context.Background(), store.Options{Provider: providertest.NewFake(w)})
	require.NoError(t, err)
	return NewRouter(NewHandler(s), []string{"http://localhost:3000"})
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func TestHealthAndRequestID(t *testing.T) {
	r := newTestRouter(t, providertest.NewWallet("0x1"))

	rec, body := do(t, r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, rec.Header().Get(constants.RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(constants.RequestIDHeader, "abc")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(constants.RequestIDHeader))
}

func TestInitializeStatusAndReset(t *testing.T) {
	r := newTestRouter(t, providertest.NewWallet("0x38", alice))

	rec, body := do(t, r, http.MethodGet, "/wallet/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["connected"])
	assert.Equal(t, "0", body["balance"])
	assert.Equal(t, "any", body["ledgerNetwork"])

	rec, body = do(t, r, http.MethodPost, "/wallet/initialize", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, alice, body["address"])
	assert.Equal(t, "BSC - MainNet", body["network"])
	assert.NotContains(t, body, "chainIdError")

	rec, body = do(t, r, http.MethodPost, "/wallet/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["connected"])
	assert.Equal(t, "0x38", body["chainId"])
}

func TestInitialize_ChainIDFailureIsReported(t *testing.T) {
	w := providertest.NewWallet("0x1", alice)
	w.Set(func(w *providertest.Wallet) { w.ChainIDErr = assert.AnError })
	r := newTestRouter(t, w)

	rec, body := do(t, r, http.MethodPost, "/wallet/initialize", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, alice, body["address"])
	assert.NotEmpty(t, body["chainIdError"])

	rec, _ = do(t, r, http.MethodPost, "/wallet/chainId/refresh", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRefreshAccounts_Rejected(t *testing.T) {
	w := providertest.NewWallet("0x1", alice)
	w.Set(func(w *providertest.Wallet) { w.AccountsErr = providertest.ErrUserRejected })
	r := newTestRouter(t, w)

	rec, body := do(t, r, http.MethodPost, "/wallet/accounts/refresh", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, body["error"], "user rejected")
}

func TestBalance(t *testing.T) {
	w := providertest.NewWallet("0x1", alice)
	w.SetBalance(alice, big.NewInt(1_500_000_000_000_000_000))
	r := newTestRouter(t, w)

	rec, _ := do(t, r, http.MethodGet, "/wallet/balance", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = do(t, r, http.MethodPost, "/wallet/accounts/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := do(t, r, http.MethodGet, "/wallet/balance", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, alice, body["address"])
	assert.Equal(t, "1500000000000000000", body["wei"])
	assert.Equal(t, "1.5", body["ether"])

	_, body = do(t, r, http.MethodGet, "/wallet/status", "")
	assert.Equal(t, "1.5", body["balance"])
}

func TestSetDefaultNetwork(t *testing.T) {
	r := newTestRouter(t, providertest.NewWallet("0x1"))

	rec, body := do(t, r, http.MethodPut, "/wallet/defaultNetwork", `{"name":" Ropsten "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ropsten", body["defaultNetwork"])

	rec, _ = do(t, r, http.MethodPut, "/wallet/defaultNetwork", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnits(t *testing.T) {
	r := newTestRouter(t, providertest.NewWallet("0x1"))

	rec, body := do(t, r, http.MethodGet, "/units/toWei?amount=0.25", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "250000000000000000", body["wei"])

	rec, body = do(t, r, http.MethodGet, "/units/toEther?amount=250000000000000000", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0.25", body["ether"])

	rec, _ = do(t, r, http.MethodGet, "/units/toWei?amount=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, r, http.MethodGet, "/units/toEther?amount=1.5", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNetworkName(t *testing.T) {
	r := newTestRouter(t, providertest.NewWallet("0x1"))

	rec, body := do(t, r, http.MethodGet, "/networks/56", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "BSC - MainNet", body["name"])
	assert.Equal(t, "0x38", body["chainIdHex"])

	rec, body = do(t, r, http.MethodGet, "/networks/999", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", body["name"])

	rec, _ = do(t, r, http.MethodGet, "/networks/xyz", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t, providertest.NewWallet("0x1"))

	req := httptest.NewRequest(http.MethodOptions, "/wallet/status", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
