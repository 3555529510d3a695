package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpHandler "mercafacil/internal/adapter/http/handler"
	redisStorage "mercafacil/internal/adapter/storage/redis"
	"mercafacil/internal/core/domain"
	"mercafacil/internal/service"
	"mercafacil/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testServiceKey = "test-service-key"

// testApp builds a full application stack: real HTTP layer, middleware,
// handlers and services over the in-memory ledger store and a miniredis
// payout cache. Only PostgreSQL is faked.
type testApp struct {
	server   *httptest.Server
	redis    *miniredis.Miniredis
	rdb      *goredis.Client
	store    *ledgerStore
	tokenSvc *service.JWTTokenService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	store := newLedgerStore()
	walletRepo := newInMemoryWalletRepo(store)
	movementRepo := newInMemoryMovementRepo(store)
	txRepo := newInMemoryTransactionRepo(store)
	payoutRepo := newInMemoryPayoutRepo(store)
	revenueRepo := newInMemoryRevenueRepo(store)
	transactor := newInMemoryTransactor(store)

	payoutCache := redisStorage.NewPayoutCache(rdb)

	log := logger.New("error", false)
	rates, err := domain.NewSplitRates(0.80, 0.10, 0.10, 0.05)
	require.NoError(t, err)

	tokenSvc := service.NewJWTTokenService("test-jwt-secret-key-32bytes!!", 24*time.Hour, "test-issuer")
	transactionSvc := service.NewTransactionService(txRepo, log)
	ledgerSvc := service.NewLedgerService(walletRepo, movementRepo, transactor, log)
	extractSvc := service.NewExtractService(walletRepo, movementRepo)
	settlementSvc := service.NewSettlementService(
		payoutRepo, revenueRepo, txRepo, walletRepo, movementRepo,
		payoutCache, transactor, rates, 5*time.Second, log,
	)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		SettlementSvc:  settlementSvc,
		TransactionSvc: transactionSvc,
		ExtractSvc:     extractSvc,
		LedgerSvc:      ledgerSvc,
		TokenSvc:       tokenSvc,
		ServiceKey:     testServiceKey,
		Logger:         log,
	})

	return &testApp{
		server:   httptest.NewServer(router),
		redis:    mr,
		rdb:      rdb,
		store:    store,
		tokenSvc: tokenSvc,
	}
}

func (a *testApp) close() {
	a.server.Close()
	a.rdb.Close()
	a.redis.Close()
}

// doServiceRequest performs an authenticated service-to-service call.
func (a *testApp) doServiceRequest(t *testing.T, method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Key", testServiceKey)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var parsed map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp, parsed
}

// doOwnerRequest performs a JWT-authenticated dashboard call for the owner.
func (a *testApp) doOwnerRequest(t *testing.T, method, path string, ownerType domain.OwnerType, ownerID uuid.UUID, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	token, _, err := a.tokenSvc.Generate(ownerType, ownerID)
	require.NoError(t, err)

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var parsed map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp, parsed
}

func (a *testApp) recordTransaction(t *testing.T, orderID, customerID uuid.UUID, amount int64) {
	t.Helper()
	resp, _ := a.doServiceRequest(t, http.MethodPost, "/api/v1/transactions", map[string]interface{}{
		"order_id":       orderID.String(),
		"customer_id":    customerID.String(),
		"amount":         amount,
		"payment_method": "pix",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func (a *testApp) settleBody(orderID, customerID, vendorID, driverID uuid.UUID, total int64) map[string]interface{} {
	return map[string]interface{}{
		"order_id":     orderID.String(),
		"customer_id":  customerID.String(),
		"vendor_id":    vendorID.String(),
		"driver_id":    driverID.String(),
		"status":       "delivered",
		"total_amount": total,
	}
}

func (a *testApp) ownerBalance(t *testing.T, ownerType domain.OwnerType, ownerID uuid.UUID) int64 {
	t.Helper()
	resp, parsed := a.doOwnerRequest(t, http.MethodGet, "/api/v1/wallets/balance", ownerType, ownerID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := parsed["data"].(map[string]interface{})
	return int64(data["balance"].(float64))
}

func TestSettlementFlow_EndToEnd(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	orderID := uuid.New()
	customerID := uuid.New()
	vendorID := uuid.New()
	driverID := uuid.New()

	// Payment collaborator confirms a R$ 100,00 payment.
	app.recordTransaction(t, orderID, customerID, 10000)

	// Order subsystem triggers settlement on delivery.
	resp, parsed := app.doServiceRequest(t, http.MethodPost, "/api/v1/settlements",
		app.settleBody(orderID, customerID, vendorID, driverID, 10000))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	data := parsed["data"].(map[string]interface{})
	assert.Equal(t, orderID.String(), data["order_id"])
	assert.Equal(t, float64(8000), data["amount_vendor"])
	assert.Equal(t, float64(1000), data["amount_driver"])
	assert.Equal(t, float64(1000), data["amount_platform"])
	assert.Equal(t, "paid", data["status"])

	// Each party sees the credit on their dashboard.
	assert.Equal(t, int64(8000), app.ownerBalance(t, domain.OwnerTypeVendor, vendorID))
	assert.Equal(t, int64(1000), app.ownerBalance(t, domain.OwnerTypeDriver, driverID))
	assert.Equal(t, int64(500), app.ownerBalance(t, domain.OwnerTypeCustomer, customerID))

	// The payout is queryable by order.
	resp, parsed = app.doServiceRequest(t, http.MethodGet, "/api/v1/settlements/"+orderID.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data = parsed["data"].(map[string]interface{})
	assert.Equal(t, orderID.String(), data["order_id"])
}

func TestSettlementFlow_Idempotent(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	orderID := uuid.New()
	customerID := uuid.New()
	vendorID := uuid.New()
	driverID := uuid.New()

	app.recordTransaction(t, orderID, customerID, 10000)
	body := app.settleBody(orderID, customerID, vendorID, driverID, 10000)

	resp, first := app.doServiceRequest(t, http.MethodPost, "/api/v1/settlements", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Settling the same order again is a no-op success returning the same
	// payout, with no double credit.
	resp, second := app.doServiceRequest(t, http.MethodPost, "/api/v1/settlements", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	firstData := first["data"].(map[string]interface{})
	secondData := second["data"].(map[string]interface{})
	assert.Equal(t, firstData["id"], secondData["id"])

	assert.Equal(t, int64(8000), app.ownerBalance(t, domain.OwnerTypeVendor, vendorID))
	assert.Equal(t, int64(1000), app.ownerBalance(t, domain.OwnerTypeDriver, driverID))
	assert.Equal(t, int64(500), app.ownerBalance(t, domain.OwnerTypeCustomer, customerID))

	// Exactly one payout row exists.
	app.store.mu.RLock()
	assert.Len(t, app.store.payouts, 1)
	app.store.mu.RUnlock()
}

func TestSettlementFlow_IdempotentAfterCacheExpiry(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	orderID := uuid.New()
	customerID := uuid.New()
	vendorID := uuid.New()
	driverID := uuid.New()

	app.recordTransaction(t, orderID, customerID, 10000)
	body := app.settleBody(orderID, customerID, vendorID, driverID, 10000)

	resp, _ := app.doServiceRequest(t, http.MethodPost, "/api/v1/settlements", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Expire the Redis fast path; the DB check must still dedupe.
	app.redis.FastForward(48 * time.Hour)

	resp, _ = app.doServiceRequest(t, http.MethodPost, "/api/v1/settlements", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	assert.Equal(t, int64(8000), app.ownerBalance(t, domain.OwnerTypeVendor, vendorID))
}

func TestSettlement_RejectedWithoutConfirmedPayment(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	body := app.settleBody(uuid.New(), uuid.New(), uuid.New(), uuid.New(), 10000)

	resp, parsed := app.doServiceRequest(t, http.MethodPost, "/api/v1/settlements", body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "LED_003", parsed["error_code"])
}

func TestSettlement_RejectedForUndeliveredOrder(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	orderID := uuid.New()
	customerID := uuid.New()
	app.recordTransaction(t, orderID, customerID, 10000)

	body := app.settleBody(orderID, customerID, uuid.New(), uuid.New(), 10000)
	body["status"] = "pending"

	resp, parsed := app.doServiceRequest(t, http.MethodPost, "/api/v1/settlements", body)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "SET_003", parsed["error_code"])
}

func TestSettlement_RollsBackOnMidFlightFailure(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	orderID := uuid.New()
	customerID := uuid.New()
	vendorID := uuid.New()
	driverID := uuid.New()

	app.recordTransaction(t, orderID, customerID, 10000)

	// Fail the commission insert, which runs after both wallet credits.
	app.store.failRevenueCreate = fmt.Errorf("disk full")
	body := app.settleBody(orderID, customerID, vendorID, driverID, 10000)

	resp, parsed := app.doServiceRequest(t, http.MethodPost, "/api/v1/settlements", body)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "SET_002", parsed["error_code"])

	// Nothing stuck: no payout, no credits, no stray movements.
	app.store.mu.RLock()
	assert.Empty(t, app.store.payouts)
	assert.Empty(t, app.store.movements)
	for _, w := range app.store.wallets {
		assert.Equal(t, int64(0), w.Balance)
	}
	app.store.mu.RUnlock()

	// The order stays eligible: clearing the fault lets settlement succeed.
	app.store.failRevenueCreate = nil
	resp, _ = app.doServiceRequest(t, http.MethodPost, "/api/v1/settlements", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, int64(8000), app.ownerBalance(t, domain.OwnerTypeVendor, vendorID))
}

func TestTransactionRecording_IdempotentAndConflicting(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	orderID := uuid.New()
	customerID := uuid.New()

	payload := map[string]interface{}{
		"order_id":       orderID.String(),
		"customer_id":    customerID.String(),
		"amount":         5000,
		"payment_method": "pix",
	}

	resp, first := app.doServiceRequest(t, http.MethodPost, "/api/v1/transactions", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Same fact again: idempotent.
	resp, second := app.doServiceRequest(t, http.MethodPost, "/api/v1/transactions", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, first["data"].(map[string]interface{})["id"], second["data"].(map[string]interface{})["id"])

	// Different amount under the same order: conflict.
	payload["amount"] = 6000
	resp, parsed := app.doServiceRequest(t, http.MethodPost, "/api/v1/transactions", payload)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "SET_001", parsed["error_code"])
}

func TestWalletFlow_DepositWithdrawExtract(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	driverID := uuid.New()

	resp, _ := app.doOwnerRequest(t, http.MethodPost, "/api/v1/wallets/deposit",
		domain.OwnerTypeDriver, driverID, map[string]interface{}{"amount": 10000, "description": "top-up"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = app.doOwnerRequest(t, http.MethodPost, "/api/v1/wallets/withdraw",
		domain.OwnerTypeDriver, driverID, map[string]interface{}{"amount": 4000})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	assert.Equal(t, int64(6000), app.ownerBalance(t, domain.OwnerTypeDriver, driverID))

	// Over-withdrawal is rejected and the balance stays put.
	resp, parsed := app.doOwnerRequest(t, http.MethodPost, "/api/v1/wallets/withdraw",
		domain.OwnerTypeDriver, driverID, map[string]interface{}{"amount": 6001})
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	assert.Equal(t, "LED_002", parsed["error_code"])
	assert.Equal(t, int64(6000), app.ownerBalance(t, domain.OwnerTypeDriver, driverID))

	// The extract lists both movements.
	resp, parsed = app.doOwnerRequest(t, http.MethodGet, "/api/v1/wallets/extract",
		domain.OwnerTypeDriver, driverID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := parsed["data"].(map[string]interface{})
	assert.Equal(t, float64(6000), data["balance"])
	assert.Len(t, data["movements"].([]interface{}), 2)
}

func TestAuth_ServiceEndpointsRejectBadKey(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	req, err := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/settlements", bytes.NewReader([]byte("{}")))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Key", "wrong-key")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_WalletEndpointsRequireJWT(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/api/v1/wallets/balance")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
