package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lumiforge/adpilot-backend/internal/addon"
	"github.com/lumiforge/adpilot-backend/internal/audit"
	"github.com/lumiforge/adpilot-backend/internal/auth"
	"github.com/lumiforge/adpilot-backend/internal/billing"
	"github.com/lumiforge/adpilot-backend/internal/config"
	"github.com/lumiforge/adpilot-backend/internal/entitlement"
	"github.com/lumiforge/adpilot-backend/internal/flags"
	"github.com/lumiforge/adpilot-backend/internal/jwt"
	"github.com/lumiforge/adpilot-backend/internal/override"
	"github.com/lumiforge/adpilot-backend/internal/plan"
	"github.com/lumiforge/adpilot-backend/internal/rbac"
	"github.com/lumiforge/adpilot-backend/internal/subscription"
	"github.com/lumiforge/adpilot-backend/internal/ydb"
	ydbmocks "github.com/lumiforge/adpilot-backend/internal/ydb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupTestRouter() (http.Handler, *ydbmocks.Database, *jwt.JWTManager) {
	mockDB := new(ydbmocks.Database)

	realRBAC := rbac.NewRBAC()
	cfg := &config.Config{
		JWTSecretKey:            "secret",
		WebhookSecret:           "test-secret",
		TrialDays:               14,
		GraceDays:               7,
		DailyActionLimit:        50,
		AutomationCooldownMin:   30,
		FlagsRefreshIntervalSec: 60,
	}
	jwtManager := jwt.NewJWTManager(cfg)

	// Настраиваем мок для InsertAuditLog глобально для всех тестов, использующих этот роутер
	// Используем .Maybe(), чтобы тест не падал, если метод не вызван
	mockDB.On("InsertAuditLog", mock.Anything, mock.Anything).Return(nil).Maybe()

	auditService := audit.NewService(mockDB, nil)
	authService := auth.NewService(mockDB, jwtManager, realRBAC)
	planService := plan.NewService(mockDB, cfg)
	subscriptionService := subscription.NewService(mockDB, auditService, cfg, nil)
	addonService := addon.NewService(mockDB, auditService, nil)
	overrideService := override.NewService(mockDB, auditService, nil)
	flagsService := flags.NewService(mockDB, auditService, cfg, nil)
	entitlementService := entitlement.NewService(mockDB, addonService, flagsService, cfg, nil)
	billingService := billing.NewService(mockDB, subscriptionService, addonService, nil, nil, auditService, cfg, nil)

	server := NewServer(authService, planService, subscriptionService, entitlementService,
		addonService, overrideService, billingService, flagsService, auditService, cfg)
	router := SetupRouter(server, jwtManager)

	return router, mockDB, jwtManager
}

func bearerToken(t *testing.T, jwtManager *jwt.JWTManager, userID, role string) string {
	t.Helper()
	token, err := jwtManager.GenerateToken(userID, userID+"@example.com", role)
	assert.NoError(t, err)
	return "Bearer " + token
}

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestHandler_Health(t *testing.T) {
	router, _, _ := setupTestRouter()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestHandler_Login_InvalidJSON(t *testing.T) {
	router, _, _ := setupTestRouter()

	jsonBody := `{"email": "test@example.com", "password": "123"`
	req := httptest.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request format")
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	router, _, _ := setupTestRouter()

	req := httptest.NewRequest("POST", "/api/v1/plans", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandler_Webhook_InvalidSignature(t *testing.T) {
	router, mockDB, _ := setupTestRouter()

	body := `{"event":"payment.captured","payload":{"payment":{"id":"rzp-1","order_id":"order-1"}}}`
	req := httptest.NewRequest("POST", "/api/v1/billing/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", "deadbeef")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// Подпись не сошлась, до парсинга и стораджа дело не дошло
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockDB.AssertNotCalled(t, "GetPaymentByProviderOrderID", mock.Anything, mock.Anything)
}

func TestHandler_Webhook_MissingSignature(t *testing.T) {
	router, _, _ := setupTestRouter()

	body := `{"event":"payment.captured","payload":{}}`
	req := httptest.NewRequest("POST", "/api/v1/billing/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_Webhook_UnknownEventIgnored(t *testing.T) {
	router, _, _ := setupTestRouter()

	body := `{"event":"promo.created","payload":{}}`
	req := httptest.NewRequest("POST", "/api/v1/billing/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", signBody("test-secret", []byte(body)))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ignored"`)
}

func TestHandler_CheckEntitlement_Unauthorized(t *testing.T) {
	router, _, _ := setupTestRouter()

	req := httptest.NewRequest("POST", "/api/v1/entitlement/check", strings.NewReader(`{"campaign_id":"camp-1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_CheckEntitlement_CapacityExhausted(t *testing.T) {
	router, mockDB, jwtManager := setupTestRouter()

	mockDB.On("GetRuntimeFlags", mock.Anything).Return(&ydb.RuntimeFlags{
		AIAutomationEnabled: true,
	}, nil)
	mockDB.On("GetDailyActionCount", mock.Anything, "user-1", mock.AnythingOfType("string")).Return(int64(0), nil)
	mockDB.On("GetCampaign", mock.Anything, "camp-1").Return(&ydb.Campaign{
		CampaignID: "camp-1",
		UserID:     "user-1",
	}, nil)
	mockDB.On("GetCurrentSubscription", mock.Anything, "user-1").Return(&ydb.Subscription{
		SubscriptionID:  "sub-1",
		UserID:          "user-1",
		PlanID:          "pro",
		Status:          ydb.SubscriptionStatusActive,
		AICampaignLimit: 10,
	}, nil)
	mockDB.On("GetUsageOverride", mock.Anything, "user-1", "campaigns").Return(nil, nil)
	mockDB.On("CountActiveAICampaigns", mock.Anything, "user-1").Return(int64(10), nil)
	mockDB.On("ReserveAddonSlotTx", mock.Anything, "user-1", "camp-1", mock.AnythingOfType("time.Time")).Return(nil, nil)

	req := httptest.NewRequest("POST", "/api/v1/entitlement/check", strings.NewReader(`{"campaign_id":"camp-1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, jwtManager, "user-1", "user"))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// Лимит исчерпан, пул слотов пуст: платный план получает предложение купить слоты
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), `"action":"buy_slots"`)
}

func TestHandler_UpsertOverride_MissingReason(t *testing.T) {
	router, _, jwtManager := setupTestRouter()

	body := `{"key":"campaigns","value":25}`
	req := httptest.NewRequest("PUT", "/api/v1/admin/users/user-2/overrides", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, jwtManager, "admin-1", "admin"))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "reason")
}

func TestHandler_UpdateFlags_ForbiddenForManager(t *testing.T) {
	router, _, jwtManager := setupTestRouter()

	body := `{"kill_switch":true,"ai_automation_enabled":false,"reason":"incident"}`
	req := httptest.NewRequest("PUT", "/api/v1/admin/flags", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, jwtManager, "mgr-1", "manager"))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandler_ExpireGraceSweep_RunsAsAdmin(t *testing.T) {
	router, mockDB, jwtManager := setupTestRouter()

	mockDB.On("ExpireGraceSweep", mock.Anything, mock.AnythingOfType("time.Time")).
		Return([]string{"sub-1", "sub-2"}, nil)

	req := httptest.NewRequest("POST", "/api/v1/admin/subscriptions/expire-grace", nil)
	req.Header.Set("Authorization", bearerToken(t, jwtManager, "admin-1", "admin"))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":2`)
	mockDB.AssertExpectations(t)
}
