package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpHandler "invoicing-backend/internal/adapter/http/handler"
	redisStorage "invoicing-backend/internal/adapter/storage/redis"
	"invoicing-backend/internal/service"
	"invoicing-backend/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp builds a full application stack wired to in-memory repositories and
// a real miniredis instance, exercising the HTTP layer, middleware, handlers
// and services end-to-end without a real Postgres/Redis deployment.

type testApp struct {
	server *httptest.Server
	redis  *miniredis.Miniredis
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	encSvc, err := service.NewAESEncryptionService("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService("test-jwt-secret-key-32bytes!!!!", 24*time.Hour, "test-issuer")

	merchantRepo := newInMemoryMerchantRepo()
	settingsRepo := newInMemoryBusinessSettingsRepo()
	methodRepo := newInMemoryPaymentMethodRepo()
	productRepo := newInMemoryProductRepo()
	customerRepo := newInMemoryCustomerRepo()
	invoiceRepo := newInMemoryInvoiceRepo()
	orderRepo := newInMemoryOrderRepo()
	auditLogRepo := newInMemoryAuditLogRepo()
	transactor := newInMemoryTransactor()

	log := logger.New("debug", false)
	auditSvc := service.NewAuditService(auditLogRepo, log)
	authSvc := service.NewAuthService(merchantRepo, hashSvc, tokenSvc, nil, auditSvc)
	idMinter := service.NewIdMinterService(invoiceRepo, orderRepo)
	matcher := service.NewCustomerMatcherService(customerRepo)
	gatewaySvc := service.NewGatewayService("", nil, service.NewHMACSignatureService(), log)
	metricsSvc := service.NewMetricsService(nil)

	invoiceSvc := service.NewInvoiceLifecycleService(
		invoiceRepo, orderRepo, productRepo, settingsRepo, methodRepo, merchantRepo,
		idMinter, matcher, gatewaySvc, nil, auditSvc, transactor, encSvc, log,
	)
	orderSvc := service.NewOrderService(orderRepo)
	productSvc := service.NewProductService(productRepo)
	customerSvc := service.NewCustomerService(customerRepo)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		InvoiceSvc:     invoiceSvc,
		OrderSvc:       orderSvc,
		ProductSvc:     productSvc,
		CustomerSvc:    customerSvc,
		ProfileSvc:     nil,
		AuditSvc:       auditSvc,
		MetricsSvc:     metricsSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: nil,
		AllowedOrigins: []string{"*"},
		ReleaseMode:    false,
		Logger:         zerolog.Nop(),
	})

	server := httptest.NewServer(router)

	return &testApp{server: server, redis: mr}
}

func (a *testApp) close() {
	a.server.Close()
	a.redis.Close()
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIntegration_RegisterAndLogin(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	regBody, _ := json.Marshal(map[string]string{
		"email":        "merchant1@example.com",
		"password":     "StrongPass123!",
		"businessName": "Test Merchant",
		"contactName":  "Jane Doe",
	})
	resp, err := http.Post(app.server.URL+"/api/v1/auth/register", "application/json", bytes.NewReader(regBody))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var regResp map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&regResp))
	assert.NotEmpty(t, regResp["id"])
	assert.Equal(t, "merchant1@example.com", regResp["email"])

	loginBody, _ := json.Marshal(map[string]string{
		"email":    "merchant1@example.com",
		"password": "StrongPass123!",
	})
	resp2, err := http.Post(app.server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(loginBody))
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	var loginResp map[string]interface{}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&loginResp))
	assert.NotEmpty(t, loginResp["token"])
}

func TestIntegration_LoginWrongCredentials(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	loginBody, _ := json.Marshal(map[string]string{
		"email":    "nobody@example.com",
		"password": "wrong",
	})
	resp, err := http.Post(app.server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(loginBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIntegration_DuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	regBody, _ := json.Marshal(map[string]string{
		"email":        "dup@example.com",
		"password":     "StrongPass123!",
		"businessName": "First",
		"contactName":  "Jane Doe",
	})

	resp, err := http.Post(app.server.URL+"/api/v1/auth/register", "application/json", bytes.NewReader(regBody))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp2, err := http.Post(app.server.URL+"/api/v1/auth/register", "application/json", bytes.NewReader(regBody))
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusConflict, resp2.StatusCode)
}

func TestIntegration_JWT_Unauthorized(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	req, _ := http.NewRequest(http.MethodGet, app.server.URL+"/api/v1/invoices", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIntegration_CreateAndListInvoice(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := registerAndLogin(t, app, "invoicer@example.com")

	invBody, _ := json.Marshal(map[string]interface{}{
		"customerName": "Acme Corp",
		"customerEmail": "ap@acme.test",
		"dueDate":      time.Now().Add(14 * 24 * time.Hour).Format(time.RFC3339),
		"items": []map[string]interface{}{
			{"sku": "WIDGET-1", "name": "Widget", "quantity": 2, "unitPrice": 1500},
		},
	})
	req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/invoices", bytes.NewReader(invBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "draft", created["status"])
	assert.Equal(t, float64(3000), created["grandTotal"])

	listReq, _ := http.NewRequest(http.MethodGet, app.server.URL+"/api/v1/invoices?page=1&pageSize=10", nil)
	listReq.Header.Set("Authorization", "Bearer "+token)
	listResp, err := http.DefaultClient.Do(listReq)
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var listBody map[string]interface{}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&listBody))
	assert.EqualValues(t, 1, listBody["total"])
}

// --- Helpers ---

func registerAndLogin(t *testing.T, app *testApp, email string) string {
	t.Helper()
	regBody, _ := json.Marshal(map[string]string{
		"email":        email,
		"password":     "StrongPass123!",
		"businessName": "Test Merchant",
		"contactName":  "Jane Doe",
	})
	resp, err := http.Post(app.server.URL+"/api/v1/auth/register", "application/json", bytes.NewReader(regBody))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	return loginAndGetToken(t, app, email, "StrongPass123!")
}

func loginAndGetToken(t *testing.T, app *testApp, email, password string) string {
	t.Helper()
	loginBody, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	resp, err := http.Post(app.server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(loginBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	var loginResp map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&loginResp))
	return loginResp["token"].(string)
}
