package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"testing"
	"time"

	"github.com/lumiforge/adpilot-backend/internal/addon"
	"github.com/lumiforge/adpilot-backend/internal/audit"
	"github.com/lumiforge/adpilot-backend/internal/config"
	app_errors "github.com/lumiforge/adpilot-backend/internal/errors"
	"github.com/lumiforge/adpilot-backend/internal/models"
	"github.com/lumiforge/adpilot-backend/internal/subscription"
	"github.com/lumiforge/adpilot-backend/internal/ydb"
	ydbmocks "github.com/lumiforge/adpilot-backend/internal/ydb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupService() (*Service, *ydbmocks.Database) {
	mockDB := new(ydbmocks.Database)
	auditSvc := audit.NewService(mockDB, nil)
	cfg := &config.Config{
		WebhookSecret: "test-secret",
		TrialDays:     14,
		GraceDays:     7,
	}
	subSvc := subscription.NewService(mockDB, auditSvc, cfg, nil)
	slotSvc := addon.NewService(mockDB, auditSvc, nil)

	mockDB.On("InsertAuditLog", mock.Anything, mock.Anything).Return(nil).Maybe()

	service := NewService(mockDB, subSvc, slotSvc, nil, nil, auditSvc, cfg, nil)
	return service, mockDB
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestService_Verify_ValidSignature(t *testing.T) {
	service, _ := setupService()

	body := []byte(`{"event":"payment.captured"}`)
	err := service.Verify(body, sign("test-secret", body))

	assert.NoError(t, err)
}

func TestService_Verify_Mismatch(t *testing.T) {
	service, _ := setupService()

	body := []byte(`{"event":"payment.captured"}`)
	err := service.Verify(body, sign("wrong-secret", body))

	assert.ErrorIs(t, err, app_errors.ErrSignatureMismatch)
}

func TestService_Verify_MismatchOnTamperedBody(t *testing.T) {
	service, _ := setupService()

	body := []byte(`{"event":"payment.captured"}`)
	signature := sign("test-secret", body)

	err := service.Verify([]byte(`{"event":"payment.captured" }`), signature)

	assert.ErrorIs(t, err, app_errors.ErrSignatureMismatch)
}

func TestService_Verify_NoSecretConfigured(t *testing.T) {
	service, _ := setupService()
	service.cfg = &config.Config{}

	err := service.Verify([]byte("{}"), "deadbeef")

	assert.ErrorIs(t, err, app_errors.ErrWebhookSecretNotConfigured)
}

func TestService_Dispatch_UnknownEventIgnored(t *testing.T) {
	service, _ := setupService()

	resp, err := service.Dispatch(context.Background(), "refund.speculative", json.RawMessage(`{}`))

	assert.NoError(t, err)
	assert.Equal(t, models.WebhookStatusIgnored, resp.Status)
}

func TestService_Dispatch_PaymentCaptured_DuplicateDelivery(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	planID := "pro"
	mockDB.On("GetPaymentByProviderOrderID", ctx, "order-1").Return(&ydb.Payment{
		PaymentID:          "pay-1",
		UserID:             "user-1",
		ProviderOrderID:    "order-1",
		Status:             ydb.PaymentStatusCaptured,
		PaymentFor:         ydb.PaymentForSubscription,
		RelatedReferenceID: &planID,
	}, nil)
	mockDB.On("GetSubscriptionByPaymentID", ctx, "pay-1").Return(&ydb.Subscription{
		SubscriptionID: "sub-1",
		UserID:         "user-1",
		Status:         ydb.SubscriptionStatusActive,
	}, nil)

	payload := json.RawMessage(`{"payment":{"id":"rzp-1","order_id":"order-1"}}`)
	resp, err := service.Dispatch(ctx, "payment.captured", payload)

	assert.NoError(t, err)
	assert.Equal(t, models.WebhookStatusProcessed, resp.Status)
	mockDB.AssertNotCalled(t, "MarkPaymentCaptured", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockDB.AssertNotCalled(t, "ActivatePaidTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Dispatch_PaymentCaptured_RetryResumesActivation(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	planID := "pro"
	created := &ydb.Payment{
		PaymentID:          "pay-1",
		UserID:             "user-1",
		ProviderOrderID:    "order-1",
		AmountRub:          1990,
		Status:             ydb.PaymentStatusCreated,
		PaymentFor:         ydb.PaymentForSubscription,
		RelatedReferenceID: &planID,
	}
	capturedAt := time.Now()
	captured := &ydb.Payment{
		PaymentID:          "pay-1",
		UserID:             "user-1",
		ProviderOrderID:    "order-1",
		AmountRub:          1990,
		Status:             ydb.PaymentStatusCaptured,
		PaymentFor:         ydb.PaymentForSubscription,
		RelatedReferenceID: &planID,
		CapturedAt:         &capturedAt,
	}

	// Первая доставка: захват коммитится, транзакция активации падает
	mockDB.On("GetPaymentByProviderOrderID", ctx, "order-1").Return(created, nil).Once()
	mockDB.On("MarkPaymentCaptured", ctx, "pay-1", "rzp-1", mock.AnythingOfType("time.Time")).Return(nil).Once()
	mockDB.On("GetSubscriptionByPaymentID", ctx, "pay-1").Return(nil, app_errors.ErrSubscriptionNotFound)
	mockDB.On("GetPlanByID", ctx, "pro").Return(&ydb.Plan{
		PlanID:          "pro",
		AICampaignLimit: 10,
		AdAccountLimit:  5,
		BillingCycle:    "monthly",
	}, nil)
	mockDB.On("GetPaymentByID", ctx, "pay-1").Return(captured, nil)
	mockDB.On("ActivatePaidTx", ctx, mock.AnythingOfType("*ydb.Subscription"), mock.AnythingOfType("*ydb.Invoice")).
		Return(app_errors.ErrFailedToConnectYDB).Once()

	payload := json.RawMessage(`{"payment":{"id":"rzp-1","order_id":"order-1"}}`)
	_, err := service.Dispatch(ctx, "payment.captured", payload)
	assert.Error(t, err)

	// Ретрай провайдера: платеж уже захвачен, подписки нет,
	// активация перезапускается и доходит до конца
	mockDB.On("GetPaymentByProviderOrderID", ctx, "order-1").Return(captured, nil).Once()
	mockDB.On("ActivatePaidTx", ctx, mock.AnythingOfType("*ydb.Subscription"), mock.AnythingOfType("*ydb.Invoice")).
		Return(nil).Once()
	mockDB.On("GetInvoiceByPaymentID", ctx, "pay-1").Return(nil, nil)

	resp, err := service.Dispatch(ctx, "payment.captured", payload)

	assert.NoError(t, err)
	assert.Equal(t, models.WebhookStatusProcessed, resp.Status)
	mockDB.AssertNumberOfCalls(t, "ActivatePaidTx", 2)
	mockDB.AssertNumberOfCalls(t, "MarkPaymentCaptured", 1)
}

func TestService_Dispatch_PaymentCaptured_ActivatesSubscription(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	planID := "pro"
	mockDB.On("GetPaymentByProviderOrderID", ctx, "order-1").Return(&ydb.Payment{
		PaymentID:          "pay-1",
		UserID:             "user-1",
		ProviderOrderID:    "order-1",
		AmountRub:          1990,
		Status:             ydb.PaymentStatusCreated,
		PaymentFor:         ydb.PaymentForSubscription,
		RelatedReferenceID: &planID,
	}, nil)
	mockDB.On("MarkPaymentCaptured", ctx, "pay-1", "rzp-1", mock.AnythingOfType("time.Time")).Return(nil)

	// Активация внутри subscription сервиса
	mockDB.On("GetSubscriptionByPaymentID", ctx, "pay-1").Return(nil, app_errors.ErrSubscriptionNotFound)
	mockDB.On("GetPlanByID", ctx, "pro").Return(&ydb.Plan{
		PlanID:          "pro",
		AICampaignLimit: 10,
		AdAccountLimit:  5,
		BillingCycle:    "monthly",
	}, nil)
	capturedAt := time.Now()
	mockDB.On("GetPaymentByID", ctx, "pay-1").Return(&ydb.Payment{
		PaymentID:  "pay-1",
		UserID:     "user-1",
		AmountRub:  1990,
		Status:     ydb.PaymentStatusCaptured,
		CapturedAt: &capturedAt,
	}, nil)
	mockDB.On("ActivatePaidTx", ctx, mock.AnythingOfType("*ydb.Subscription"), mock.AnythingOfType("*ydb.Invoice")).Return(nil)

	// Пост-коммитные эффекты: архиватор и почта не сконфигурированы
	mockDB.On("GetInvoiceByPaymentID", ctx, "pay-1").Return(nil, nil)

	payload := json.RawMessage(`{"payment":{"id":"rzp-1","order_id":"order-1"}}`)
	resp, err := service.Dispatch(ctx, "payment.captured", payload)

	assert.NoError(t, err)
	assert.Equal(t, models.WebhookStatusProcessed, resp.Status)
	mockDB.AssertExpectations(t)
}

func TestService_Dispatch_PaymentCaptured_AllocatesSlots(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("GetPaymentByProviderOrderID", ctx, "order-2").Return(&ydb.Payment{
		PaymentID:       "pay-2",
		UserID:          "user-1",
		ProviderOrderID: "order-2",
		AmountRub:       addonSlotPriceRub * 3,
		Status:          ydb.PaymentStatusCreated,
		PaymentFor:      ydb.PaymentForAddonSlots,
	}, nil)
	mockDB.On("MarkPaymentCaptured", ctx, "pay-2", "rzp-2", mock.AnythingOfType("time.Time")).Return(nil)
	mockDB.On("ListAddonSlotsByUser", ctx, "user-1").Return([]*ydb.AddonSlot{}, nil)
	mockDB.On("CreateAddonSlots", ctx, mock.MatchedBy(func(slots []*ydb.AddonSlot) bool {
		return len(slots) == 3
	})).Return(nil)

	payload := json.RawMessage(`{"payment":{"id":"rzp-2","order_id":"order-2"}}`)
	resp, err := service.Dispatch(ctx, "payment.captured", payload)

	assert.NoError(t, err)
	assert.Equal(t, models.WebhookStatusProcessed, resp.Status)
	mockDB.AssertExpectations(t)
}

func TestService_Dispatch_PaymentCaptured_DuplicateSlotDelivery(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	paymentID := "pay-2"
	mockDB.On("GetPaymentByProviderOrderID", ctx, "order-2").Return(&ydb.Payment{
		PaymentID:       "pay-2",
		UserID:          "user-1",
		ProviderOrderID: "order-2",
		AmountRub:       addonSlotPriceRub * 2,
		Status:          ydb.PaymentStatusCaptured,
		PaymentFor:      ydb.PaymentForAddonSlots,
	}, nil)
	mockDB.On("ListAddonSlotsByUser", ctx, "user-1").Return([]*ydb.AddonSlot{
		{SlotID: "slot-1", UserID: "user-1", PaymentID: &paymentID},
		{SlotID: "slot-2", UserID: "user-1", PaymentID: &paymentID},
	}, nil)

	payload := json.RawMessage(`{"payment":{"id":"rzp-2","order_id":"order-2"}}`)
	resp, err := service.Dispatch(ctx, "payment.captured", payload)

	assert.NoError(t, err)
	assert.Equal(t, models.WebhookStatusProcessed, resp.Status)
	mockDB.AssertNotCalled(t, "MarkPaymentCaptured", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockDB.AssertNotCalled(t, "CreateAddonSlots", mock.Anything, mock.Anything)
}

func TestService_Dispatch_PaymentFailed_EntersGrace(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("GetPaymentByProviderOrderID", ctx, "order-1").Return(&ydb.Payment{
		PaymentID:       "pay-1",
		UserID:          "user-1",
		ProviderOrderID: "order-1",
		Status:          ydb.PaymentStatusCreated,
		PaymentFor:      ydb.PaymentForSubscription,
	}, nil)
	mockDB.On("MarkPaymentFailed", ctx, "pay-1", mock.AnythingOfType("time.Time")).Return(nil)

	endsAt := time.Now().AddDate(0, 1, 0)
	mockDB.On("GetCurrentSubscription", ctx, "user-1").Return(&ydb.Subscription{
		SubscriptionID: "sub-1",
		UserID:         "user-1",
		Status:         ydb.SubscriptionStatusActive,
		EndsAt:         endsAt,
	}, nil)
	mockDB.On("GetSubscriptionByID", ctx, "sub-1").Return(&ydb.Subscription{
		SubscriptionID: "sub-1",
		UserID:         "user-1",
		Status:         ydb.SubscriptionStatusActive,
		EndsAt:         endsAt,
	}, nil)
	mockDB.On("UpdateSubscriptionStatus", ctx, "sub-1", ydb.SubscriptionStatusGrace, mock.AnythingOfType("*time.Time")).Return(nil)

	payload := json.RawMessage(`{"payment":{"id":"rzp-1","order_id":"order-1","error_code":"card_declined"}}`)
	resp, err := service.Dispatch(ctx, "payment.failed", payload)

	assert.NoError(t, err)
	assert.Equal(t, models.WebhookStatusProcessed, resp.Status)
	mockDB.AssertExpectations(t)
}

func TestService_Dispatch_PaymentCaptured_StoreErrorPropagates(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("GetPaymentByProviderOrderID", ctx, "order-1").
		Return(nil, app_errors.ErrFailedToConnectYDB)

	payload := json.RawMessage(`{"payment":{"id":"rzp-1","order_id":"order-1"}}`)
	resp, err := service.Dispatch(ctx, "payment.captured", payload)

	// Транзиентная ошибка стораджа уходит провайдеру, он ретраит
	assert.Error(t, err)
	assert.Nil(t, resp)
}

func TestService_Dispatch_SubscriptionCancelled(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("GetPaymentByProviderOrderID", ctx, "order-1").Return(&ydb.Payment{
		PaymentID: "pay-1",
		UserID:    "user-1",
	}, nil)
	mockDB.On("GetSubscriptionByPaymentID", ctx, "pay-1").Return(&ydb.Subscription{
		SubscriptionID: "sub-1",
		UserID:         "user-1",
		Status:         ydb.SubscriptionStatusActive,
	}, nil)
	mockDB.On("GetSubscriptionByID", ctx, "sub-1").Return(&ydb.Subscription{
		SubscriptionID: "sub-1",
		UserID:         "user-1",
		Status:         ydb.SubscriptionStatusActive,
	}, nil)
	mockDB.On("UpdateSubscriptionStatus", ctx, "sub-1", ydb.SubscriptionStatusCanceled, mock.Anything).Return(nil)

	payload := json.RawMessage(`{"subscription":{"id":"rzp-sub-1","order_id":"order-1"}}`)
	resp, err := service.Dispatch(ctx, "subscription.cancelled", payload)

	assert.NoError(t, err)
	assert.Equal(t, models.WebhookStatusProcessed, resp.Status)
	mockDB.AssertExpectations(t)
}

func TestService_CreateSubscriptionOrder(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("GetPlanByID", ctx, "pro").Return(&ydb.Plan{
		PlanID:   "pro",
		PriceRub: 1990,
	}, nil)
	mockDB.On("CreatePayment", ctx, mock.MatchedBy(func(p *ydb.Payment) bool {
		return p.UserID == "user-1" &&
			p.Status == ydb.PaymentStatusCreated &&
			p.PaymentFor == ydb.PaymentForSubscription &&
			p.AmountRub == 1990
	})).Return(nil)

	payment, err := service.CreateSubscriptionOrder(ctx, "user-1", "pro")

	assert.NoError(t, err)
	assert.NotEmpty(t, payment.ProviderOrderID)
	mockDB.AssertExpectations(t)
}
