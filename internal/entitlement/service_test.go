package entitlement

import (
	"context"
	"testing"
	"time"

	"github.com/lumiforge/adpilot-backend/internal/addon"
	"github.com/lumiforge/adpilot-backend/internal/audit"
	"github.com/lumiforge/adpilot-backend/internal/config"
	app_errors "github.com/lumiforge/adpilot-backend/internal/errors"
	"github.com/lumiforge/adpilot-backend/internal/flags"
	"github.com/lumiforge/adpilot-backend/internal/models"
	"github.com/lumiforge/adpilot-backend/internal/ydb"
	ydbmocks "github.com/lumiforge/adpilot-backend/internal/ydb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupService() (*Service, *ydbmocks.Database) {
	mockDB := new(ydbmocks.Database)
	auditSvc := audit.NewService(mockDB, nil)
	cfg := &config.Config{
		DailyActionLimit:        50,
		AutomationCooldownMin:   30,
		FlagsRefreshIntervalSec: 60,
	}
	addonSvc := addon.NewService(mockDB, auditSvc, nil)
	flagsSvc := flags.NewService(mockDB, auditSvc, cfg, nil)

	mockDB.On("InsertAuditLog", mock.Anything, mock.Anything).Return(nil).Maybe()

	return NewService(mockDB, addonSvc, flagsSvc, cfg, nil), mockDB
}

func enabledFlags() *ydb.RuntimeFlags {
	return &ydb.RuntimeFlags{KillSwitch: false, AIAutomationEnabled: true, Version: 1}
}

func TestService_GetEffectiveLimit_OverrideWins(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("GetUsageOverride", ctx, "user-1", "campaigns").Return(&ydb.UsageOverride{
		UserID:        "user-1",
		OverrideKey:   "campaigns",
		OverrideValue: 25,
	}, nil)

	limit, err := service.GetEffectiveLimit(ctx, "user-1", "campaigns")

	assert.NoError(t, err)
	assert.Equal(t, int64(25), limit.Value)
	assert.Equal(t, models.LimitSourceOverride, limit.Source)
	mockDB.AssertNotCalled(t, "GetCurrentSubscription", mock.Anything, mock.Anything)
}

func TestService_GetEffectiveLimit_ExpiredOverrideFallsThrough(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	expired := time.Now().Add(-time.Hour)
	mockDB.On("GetUsageOverride", ctx, "user-1", "campaigns").Return(&ydb.UsageOverride{
		OverrideValue: 25,
		ExpiresAt:     &expired,
	}, nil)
	mockDB.On("GetCurrentSubscription", ctx, "user-1").Return(&ydb.Subscription{
		Status:          ydb.SubscriptionStatusActive,
		AICampaignLimit: 10,
	}, nil)

	limit, err := service.GetEffectiveLimit(ctx, "user-1", "campaigns")

	assert.NoError(t, err)
	assert.Equal(t, int64(10), limit.Value)
	assert.Equal(t, models.LimitSourceSubscription, limit.Source)
}

func TestService_GetEffectiveLimit_NoSubscriptionZero(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("GetUsageOverride", ctx, "user-1", "campaigns").Return(nil, nil)
	mockDB.On("GetCurrentSubscription", ctx, "user-1").Return(nil, app_errors.ErrSubscriptionNotFound)

	limit, err := service.GetEffectiveLimit(ctx, "user-1", "campaigns")

	assert.NoError(t, err)
	assert.Equal(t, int64(0), limit.Value)
	assert.Equal(t, models.LimitSourceNone, limit.Source)
}

func TestService_AssertAllowed_KillSwitchFirst(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("GetRuntimeFlags", ctx).Return(&ydb.RuntimeFlags{KillSwitch: true}, nil)

	decision, err := service.AssertAllowed(ctx, "user-1", "camp-1")

	assert.Nil(t, decision)
	assert.ErrorIs(t, err, app_errors.ErrKillSwitchEnabled)
	mockDB.AssertNotCalled(t, "GetDailyActionCount", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_AssertAllowed_AutomationDisabled(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("GetRuntimeFlags", ctx).Return(&ydb.RuntimeFlags{AIAutomationEnabled: false}, nil)

	decision, err := service.AssertAllowed(ctx, "user-1", "camp-1")

	assert.Nil(t, decision)
	assert.ErrorIs(t, err, app_errors.ErrAutomationDisabled)
}

func TestService_AssertAllowed_DailyLimitExhausted(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("GetRuntimeFlags", ctx).Return(enabledFlags(), nil)
	mockDB.On("GetDailyActionCount", ctx, "user-1", mock.AnythingOfType("string")).Return(int64(50), nil)

	decision, err := service.AssertAllowed(ctx, "user-1", "camp-1")

	assert.Nil(t, decision)
	var rateErr *app_errors.RateLimitError
	assert.ErrorAs(t, err, &rateErr)
	assert.Equal(t, int64(50), rateErr.Limit)
}

func TestService_AssertAllowed_CooldownActive(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	lastAction := time.Now().Add(-10 * time.Minute)
	mockDB.On("GetRuntimeFlags", ctx).Return(enabledFlags(), nil)
	mockDB.On("GetDailyActionCount", ctx, "user-1", mock.AnythingOfType("string")).Return(int64(0), nil)
	mockDB.On("GetCampaign", ctx, "camp-1").Return(&ydb.Campaign{
		CampaignID:       "camp-1",
		UserID:           "user-1",
		LastAutoActionAt: &lastAction,
	}, nil)

	decision, err := service.AssertAllowed(ctx, "user-1", "camp-1")

	assert.Nil(t, decision)
	var cooldownErr *app_errors.CooldownError
	assert.ErrorAs(t, err, &cooldownErr)
	assert.Greater(t, cooldownErr.RetryAfterSec, int64(0))
}

func TestService_AssertAllowed_UnderLimit(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("GetRuntimeFlags", ctx).Return(enabledFlags(), nil)
	mockDB.On("GetDailyActionCount", ctx, "user-1", mock.AnythingOfType("string")).Return(int64(3), nil)
	mockDB.On("GetCampaign", ctx, "camp-1").Return(&ydb.Campaign{
		CampaignID: "camp-1",
		UserID:     "user-1",
	}, nil)
	mockDB.On("GetCurrentSubscription", ctx, "user-1").Return(&ydb.Subscription{
		Status:          ydb.SubscriptionStatusActive,
		PlanID:          "pro",
		AICampaignLimit: 10,
	}, nil)
	mockDB.On("GetUsageOverride", ctx, "user-1", "campaigns").Return(nil, nil)
	mockDB.On("CountActiveAICampaigns", ctx, "user-1").Return(int64(4), nil)
	mockDB.On("EnableCampaignAI", ctx, "camp-1", mock.AnythingOfType("time.Time")).Return(nil)
	mockDB.On("IncrementDailyActionCount", ctx, "user-1", mock.AnythingOfType("string")).Return(nil)

	decision, err := service.AssertAllowed(ctx, "user-1", "camp-1")

	assert.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Empty(t, decision.UsedSlotID)
	assert.Equal(t, int64(5), decision.CurrentUsage)
	mockDB.AssertExpectations(t)
}

func TestService_AssertAllowed_SlotConsumedAtLimit(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	campaignID := "camp-4"
	mockDB.On("GetRuntimeFlags", ctx).Return(enabledFlags(), nil)
	mockDB.On("GetDailyActionCount", ctx, "user-1", mock.AnythingOfType("string")).Return(int64(0), nil)
	mockDB.On("GetCampaign", ctx, campaignID).Return(&ydb.Campaign{
		CampaignID: campaignID,
		UserID:     "user-1",
	}, nil)
	mockDB.On("GetCurrentSubscription", ctx, "user-1").Return(&ydb.Subscription{
		Status:          ydb.SubscriptionStatusActive,
		PlanID:          "pro",
		AICampaignLimit: 3,
	}, nil)
	mockDB.On("GetUsageOverride", ctx, "user-1", "campaigns").Return(nil, nil)
	mockDB.On("CountActiveAICampaigns", ctx, "user-1").Return(int64(3), nil)
	mockDB.On("ReserveAddonSlotTx", ctx, "user-1", campaignID, mock.AnythingOfType("time.Time")).
		Return(&ydb.AddonSlot{SlotID: "slot-1", UserID: "user-1", ConsumedByResourceID: &campaignID}, nil)
	mockDB.On("IncrementDailyActionCount", ctx, "user-1", mock.AnythingOfType("string")).Return(nil)

	decision, err := service.AssertAllowed(ctx, "user-1", campaignID)

	assert.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, "slot-1", decision.UsedSlotID)
	mockDB.AssertNotCalled(t, "EnableCampaignAI", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_AssertAllowed_PoolExhaustedCapacityError(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("GetRuntimeFlags", ctx).Return(enabledFlags(), nil)
	mockDB.On("GetDailyActionCount", ctx, "user-1", mock.AnythingOfType("string")).Return(int64(0), nil)
	mockDB.On("GetCampaign", ctx, "camp-5").Return(&ydb.Campaign{
		CampaignID: "camp-5",
		UserID:     "user-1",
	}, nil)
	mockDB.On("GetCurrentSubscription", ctx, "user-1").Return(&ydb.Subscription{
		Status:          ydb.SubscriptionStatusActive,
		PlanID:          "pro",
		AICampaignLimit: 3,
	}, nil)
	mockDB.On("GetUsageOverride", ctx, "user-1", "campaigns").Return(nil, nil)
	mockDB.On("CountActiveAICampaigns", ctx, "user-1").Return(int64(4), nil)
	mockDB.On("ReserveAddonSlotTx", ctx, "user-1", "camp-5", mock.AnythingOfType("time.Time")).
		Return(nil, nil)

	decision, err := service.AssertAllowed(ctx, "user-1", "camp-5")

	assert.Nil(t, decision)
	var capErr *app_errors.CapacityError
	assert.ErrorAs(t, err, &capErr)
	assert.Equal(t, app_errors.ActionBuySlots, capErr.Action)
}

func TestService_AssertAllowed_TrialGetsUpgradeAction(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("GetRuntimeFlags", ctx).Return(enabledFlags(), nil)
	mockDB.On("GetDailyActionCount", ctx, "user-1", mock.AnythingOfType("string")).Return(int64(0), nil)
	mockDB.On("GetCampaign", ctx, "camp-2").Return(&ydb.Campaign{
		CampaignID: "camp-2",
		UserID:     "user-1",
	}, nil)
	mockDB.On("GetCurrentSubscription", ctx, "user-1").Return(&ydb.Subscription{
		Status:          ydb.SubscriptionStatusTrial,
		PlanID:          "free",
		IsTrial:         true,
		AICampaignLimit: 1,
	}, nil)
	mockDB.On("GetUsageOverride", ctx, "user-1", "campaigns").Return(nil, nil)
	mockDB.On("CountActiveAICampaigns", ctx, "user-1").Return(int64(1), nil)
	mockDB.On("ReserveAddonSlotTx", ctx, "user-1", "camp-2", mock.AnythingOfType("time.Time")).
		Return(nil, nil)

	decision, err := service.AssertAllowed(ctx, "user-1", "camp-2")

	assert.Nil(t, decision)
	var capErr *app_errors.CapacityError
	assert.ErrorAs(t, err, &capErr)
	assert.Equal(t, app_errors.ActionUpgradePlan, capErr.Action)
}

func TestService_AssertAllowed_ForeignCampaignRejected(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("GetRuntimeFlags", ctx).Return(enabledFlags(), nil)
	mockDB.On("GetDailyActionCount", ctx, "user-1", mock.AnythingOfType("string")).Return(int64(0), nil)
	mockDB.On("GetCampaign", ctx, "camp-1").Return(&ydb.Campaign{
		CampaignID: "camp-1",
		UserID:     "user-2",
	}, nil)

	decision, err := service.AssertAllowed(ctx, "user-1", "camp-1")

	assert.Nil(t, decision)
	assert.ErrorIs(t, err, app_errors.ErrCampaignNotFound)
}
