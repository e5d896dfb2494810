package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/lumiforge/adpilot-backend/internal/audit"
	"github.com/lumiforge/adpilot-backend/internal/config"
	app_errors "github.com/lumiforge/adpilot-backend/internal/errors"
	"github.com/lumiforge/adpilot-backend/internal/ydb"
	ydbmocks "github.com/lumiforge/adpilot-backend/internal/ydb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// setupService создает сервис с моками
func setupService() (*Service, *ydbmocks.Database) {
	mockDB := new(ydbmocks.Database)
	auditSvc := audit.NewService(mockDB, nil)
	cfg := &config.Config{TrialDays: 14, GraceDays: 7}

	// Аудит пишется асинхронно и не проверяется в этих тестах
	mockDB.On("InsertAuditLog", mock.Anything, mock.Anything).Return(nil).Maybe()

	service := NewService(mockDB, auditSvc, cfg, nil)
	return service, mockDB
}

func TestService_EnsureTrial_ReturnsExisting(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	existing := &ydb.Subscription{
		SubscriptionID: "sub-1",
		UserID:         "user-1",
		Status:         ydb.SubscriptionStatusActive,
	}
	mockDB.On("GetCurrentSubscription", ctx, "user-1").Return(existing, nil)

	sub, err := service.EnsureTrial(ctx, "user-1")

	assert.NoError(t, err)
	assert.Equal(t, "sub-1", sub.SubscriptionID)
	mockDB.AssertNotCalled(t, "CreateSubscription", mock.Anything, mock.Anything)
}

func TestService_EnsureTrial_CreatesTrial(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("GetCurrentSubscription", ctx, "user-1").Return(nil, app_errors.ErrSubscriptionNotFound)
	mockDB.On("GetPlanByID", ctx, "free").Return(&ydb.Plan{
		PlanID:          "free",
		AICampaignLimit: 1,
		AdAccountLimit:  1,
		BillingCycle:    "monthly",
		TrialDays:       14,
	}, nil)
	mockDB.On("CreateSubscription", ctx, mock.MatchedBy(func(sub *ydb.Subscription) bool {
		return sub.UserID == "user-1" &&
			sub.Status == ydb.SubscriptionStatusTrial &&
			sub.IsTrial &&
			sub.AICampaignLimit == 1
	})).Return(nil)

	sub, err := service.EnsureTrial(ctx, "user-1")

	assert.NoError(t, err)
	assert.Equal(t, ydb.SubscriptionStatusTrial, sub.Status)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 14), sub.EndsAt, time.Minute)
	mockDB.AssertExpectations(t)
}

func TestService_ActivatePaid_IdempotentOnPaymentID(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	existing := &ydb.Subscription{
		SubscriptionID: "sub-1",
		UserID:         "user-1",
		Status:         ydb.SubscriptionStatusActive,
	}
	mockDB.On("GetSubscriptionByPaymentID", ctx, "pay-1").Return(existing, nil)

	sub, err := service.ActivatePaid(ctx, "user-1", "pro", "pay-1")

	assert.NoError(t, err)
	assert.Equal(t, "sub-1", sub.SubscriptionID)
	mockDB.AssertNotCalled(t, "ActivatePaidTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_ActivatePaid_SnapshotsPlanLimits(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	capturedAt := time.Now()
	mockDB.On("GetSubscriptionByPaymentID", ctx, "pay-1").Return(nil, app_errors.ErrSubscriptionNotFound)
	mockDB.On("GetPlanByID", ctx, "pro").Return(&ydb.Plan{
		PlanID:          "pro",
		AICampaignLimit: 10,
		AdAccountLimit:  5,
		PriceRub:        1990,
		BillingCycle:    "monthly",
	}, nil)
	mockDB.On("GetPaymentByID", ctx, "pay-1").Return(&ydb.Payment{
		PaymentID:  "pay-1",
		UserID:     "user-1",
		AmountRub:  1990,
		Status:     ydb.PaymentStatusCaptured,
		CapturedAt: &capturedAt,
	}, nil)
	mockDB.On("ActivatePaidTx", ctx,
		mock.MatchedBy(func(sub *ydb.Subscription) bool {
			return sub.Status == ydb.SubscriptionStatusActive &&
				sub.AICampaignLimit == 10 &&
				sub.AdAccountLimit == 5 &&
				sub.PaymentID != nil && *sub.PaymentID == "pay-1"
		}),
		mock.MatchedBy(func(inv *ydb.Invoice) bool {
			return inv.PaymentID == "pay-1" && inv.Status == ydb.InvoiceStatusPaid && inv.AmountRub == 1990
		}),
	).Return(nil)

	sub, err := service.ActivatePaid(ctx, "user-1", "pro", "pay-1")

	assert.NoError(t, err)
	assert.Equal(t, int64(10), sub.AICampaignLimit)
	mockDB.AssertExpectations(t)
}

func TestService_ActivatePaid_ConcurrentDeliveryCollapses(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	// Проверка до транзакции подписку еще не видит
	mockDB.On("GetSubscriptionByPaymentID", ctx, "pay-1").
		Return(nil, app_errors.ErrSubscriptionNotFound).Once()
	mockDB.On("GetPlanByID", ctx, "pro").Return(&ydb.Plan{
		PlanID:       "pro",
		BillingCycle: "monthly",
	}, nil)
	capturedAt := time.Now()
	mockDB.On("GetPaymentByID", ctx, "pay-1").Return(&ydb.Payment{
		PaymentID:  "pay-1",
		UserID:     "user-1",
		Status:     ydb.PaymentStatusCaptured,
		CapturedAt: &capturedAt,
	}, nil)

	// Конкурентная активация того же платежа закоммитила первой
	mockDB.On("ActivatePaidTx", ctx, mock.AnythingOfType("*ydb.Subscription"), mock.AnythingOfType("*ydb.Invoice")).
		Return(app_errors.ErrSubscriptionAlreadyActivated)
	mockDB.On("GetSubscriptionByPaymentID", ctx, "pay-1").Return(&ydb.Subscription{
		SubscriptionID: "sub-winner",
		UserID:         "user-1",
		Status:         ydb.SubscriptionStatusActive,
	}, nil).Once()

	sub, err := service.ActivatePaid(ctx, "user-1", "pro", "pay-1")

	assert.NoError(t, err)
	assert.Equal(t, "sub-winner", sub.SubscriptionID)
	mockDB.AssertExpectations(t)
}

func TestService_ActivatePaid_RejectsUncapturedPayment(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("GetSubscriptionByPaymentID", ctx, "pay-1").Return(nil, app_errors.ErrSubscriptionNotFound)
	mockDB.On("GetPlanByID", ctx, "pro").Return(&ydb.Plan{PlanID: "pro"}, nil)
	mockDB.On("GetPaymentByID", ctx, "pay-1").Return(&ydb.Payment{
		PaymentID: "pay-1",
		Status:    ydb.PaymentStatusCreated,
	}, nil)

	sub, err := service.ActivatePaid(ctx, "user-1", "pro", "pay-1")

	assert.Error(t, err)
	assert.Nil(t, sub)
	var invariantErr *app_errors.InvariantError
	assert.ErrorAs(t, err, &invariantErr)
	mockDB.AssertNotCalled(t, "ActivatePaidTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_AssignByAdmin_ReplacesCurrentSubscription(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("GetPlanByID", ctx, "pro").Return(&ydb.Plan{
		PlanID:          "pro",
		AICampaignLimit: 10,
		AdAccountLimit:  5,
		BillingCycle:    "monthly",
	}, nil)
	mockDB.On("GetCurrentSubscription", ctx, "user-1").Return(&ydb.Subscription{
		SubscriptionID: "sub-old",
		UserID:         "user-1",
		Status:         ydb.SubscriptionStatusTrial,
	}, nil)
	mockDB.On("UpdateSubscriptionStatus", ctx, "sub-old", ydb.SubscriptionStatusCanceled, mock.Anything).Return(nil)
	mockDB.On("CreateSubscription", ctx, mock.MatchedBy(func(sub *ydb.Subscription) bool {
		return sub.UserID == "user-1" &&
			sub.Status == ydb.SubscriptionStatusActive &&
			sub.CreatedByAdmin &&
			sub.AssignedByAdmin != nil && *sub.AssignedByAdmin == "admin-1" &&
			sub.AICampaignLimit == 10
	})).Return(nil)

	sub, err := service.AssignByAdmin(ctx, "admin-1", "user-1", "pro", "partner agreement")

	assert.NoError(t, err)
	assert.Equal(t, ydb.SubscriptionStatusActive, sub.Status)
	mockDB.AssertExpectations(t)
}

func TestService_AssignByAdmin_RequiresReason(t *testing.T) {
	service, mockDB := setupService()

	sub, err := service.AssignByAdmin(context.Background(), "admin-1", "user-1", "pro", "")

	assert.Nil(t, sub)
	var validationErr app_errors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	mockDB.AssertNotCalled(t, "CreateSubscription", mock.Anything, mock.Anything)
}

func TestService_EnterGrace_ComputesWindowFromEndsAt(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	endsAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mockDB.On("GetSubscriptionByID", ctx, "sub-1").Return(&ydb.Subscription{
		SubscriptionID: "sub-1",
		UserID:         "user-1",
		Status:         ydb.SubscriptionStatusActive,
		EndsAt:         endsAt,
	}, nil)

	wantGraceEnd := endsAt.AddDate(0, 0, 7)
	mockDB.On("UpdateSubscriptionStatus", ctx, "sub-1", ydb.SubscriptionStatusGrace,
		mock.MatchedBy(func(at *time.Time) bool {
			return at != nil && at.Equal(wantGraceEnd)
		})).Return(nil)

	sub, err := service.EnterGrace(ctx, "sub-1")

	assert.NoError(t, err)
	assert.Equal(t, ydb.SubscriptionStatusGrace, sub.Status)
	assert.Equal(t, wantGraceEnd, *sub.GraceEndsAt)
	mockDB.AssertExpectations(t)
}

func TestService_EnterGrace_AlreadyInGrace(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	graceEnd := time.Now().AddDate(0, 0, 3)
	mockDB.On("GetSubscriptionByID", ctx, "sub-1").Return(&ydb.Subscription{
		SubscriptionID: "sub-1",
		Status:         ydb.SubscriptionStatusGrace,
		GraceEndsAt:    &graceEnd,
	}, nil)

	sub, err := service.EnterGrace(ctx, "sub-1")

	assert.NoError(t, err)
	assert.Equal(t, ydb.SubscriptionStatusGrace, sub.Status)
	mockDB.AssertNotCalled(t, "UpdateSubscriptionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_EnterGrace_TerminalRejected(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("GetSubscriptionByID", ctx, "sub-1").Return(&ydb.Subscription{
		SubscriptionID: "sub-1",
		Status:         ydb.SubscriptionStatusExpired,
	}, nil)

	sub, err := service.EnterGrace(ctx, "sub-1")

	assert.Nil(t, sub)
	assert.ErrorIs(t, err, app_errors.ErrSubscriptionTerminal)
}

func TestService_ExpireGraceSweep_ReturnsExpiredIDs(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()
	now := time.Now()

	mockDB.On("ExpireGraceSweep", ctx, now).Return([]string{"sub-1", "sub-2"}, nil)

	resp, err := service.ExpireGraceSweep(ctx, now)

	assert.NoError(t, err)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, []string{"sub-1", "sub-2"}, resp.ExpiredSubscriptionIDs)
}

func TestService_ExpireGraceSweep_SecondRunEmpty(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()
	now := time.Now()

	mockDB.On("ExpireGraceSweep", ctx, now).Return([]string{}, nil)

	resp, err := service.ExpireGraceSweep(ctx, now)

	assert.NoError(t, err)
	assert.Equal(t, 0, resp.Count)
}

func TestService_Cancel_TerminalRejected(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("GetSubscriptionByID", ctx, "sub-1").Return(&ydb.Subscription{
		SubscriptionID: "sub-1",
		Status:         ydb.SubscriptionStatusCanceled,
	}, nil)

	err := service.Cancel(ctx, "sub-1")

	assert.ErrorIs(t, err, app_errors.ErrSubscriptionTerminal)
	mockDB.AssertNotCalled(t, "UpdateSubscriptionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
