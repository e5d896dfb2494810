package addon

import (
	"context"
	"testing"
	"time"

	"github.com/lumiforge/adpilot-backend/internal/audit"
	app_errors "github.com/lumiforge/adpilot-backend/internal/errors"
	"github.com/lumiforge/adpilot-backend/internal/ydb"
	ydbmocks "github.com/lumiforge/adpilot-backend/internal/ydb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupService() (*Service, *ydbmocks.Database) {
	mockDB := new(ydbmocks.Database)
	auditSvc := audit.NewService(mockDB, nil)
	mockDB.On("InsertAuditLog", mock.Anything, mock.Anything).Return(nil).Maybe()
	return NewService(mockDB, auditSvc, nil), mockDB
}

func TestService_Purchase_CreatesSlots(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("ListAddonSlotsByUser", ctx, "user-1").Return([]*ydb.AddonSlot{}, nil)
	mockDB.On("CreateAddonSlots", ctx, mock.MatchedBy(func(slots []*ydb.AddonSlot) bool {
		if len(slots) != 3 {
			return false
		}
		for _, slot := range slots {
			if slot.UserID != "user-1" || slot.ExtraCapacity != 1 ||
				slot.PaymentID == nil || *slot.PaymentID != "pay-1" {
				return false
			}
		}
		return true
	})).Return(nil)

	slots, err := service.Purchase(ctx, "user-1", "pay-1", 3, 1)

	assert.NoError(t, err)
	assert.Len(t, slots, 3)
	mockDB.AssertExpectations(t)
}

func TestService_Purchase_IdempotentOnPaymentID(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	paymentID := "pay-1"
	otherPayment := "pay-0"
	mockDB.On("ListAddonSlotsByUser", ctx, "user-1").Return([]*ydb.AddonSlot{
		{SlotID: "slot-0", UserID: "user-1", PaymentID: &otherPayment},
		{SlotID: "slot-1", UserID: "user-1", PaymentID: &paymentID},
		{SlotID: "slot-2", UserID: "user-1", PaymentID: &paymentID},
	}, nil)

	slots, err := service.Purchase(ctx, "user-1", "pay-1", 2, 1)

	assert.NoError(t, err)
	assert.Len(t, slots, 2)
	assert.Equal(t, "slot-1", slots[0].SlotID)
	mockDB.AssertNotCalled(t, "CreateAddonSlots", mock.Anything, mock.Anything)
}

func TestService_Purchase_RejectsZeroCount(t *testing.T) {
	service, mockDB := setupService()

	slots, err := service.Purchase(context.Background(), "user-1", "pay-1", 0, 1)

	assert.Error(t, err)
	assert.Nil(t, slots)
	mockDB.AssertNotCalled(t, "CreateAddonSlots", mock.Anything, mock.Anything)
}

func TestService_Reserve_ExhaustedPoolReturnsNil(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("ReserveAddonSlotTx", ctx, "user-1", "camp-1", mock.AnythingOfType("time.Time")).
		Return(nil, nil)

	slot, err := service.Reserve(ctx, "user-1", "camp-1")

	assert.NoError(t, err)
	assert.Nil(t, slot)
}

func TestService_Reserve_ConsumesOldestSlot(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	campaignID := "camp-1"
	mockDB.On("ReserveAddonSlotTx", ctx, "user-1", campaignID, mock.AnythingOfType("time.Time")).
		Return(&ydb.AddonSlot{
			SlotID:               "slot-1",
			UserID:               "user-1",
			ConsumedByResourceID: &campaignID,
		}, nil)

	slot, err := service.Reserve(ctx, "user-1", campaignID)

	assert.NoError(t, err)
	assert.Equal(t, "slot-1", slot.SlotID)
	assert.Equal(t, campaignID, *slot.ConsumedByResourceID)
}

func TestService_CountAvailable_SkipsConsumedAndExpired(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	campaignID := "camp-1"
	mockDB.On("ListAddonSlotsByUser", ctx, "user-1").Return([]*ydb.AddonSlot{
		{SlotID: "slot-1", ExpiresAt: time.Now().AddDate(0, 0, 10)},
		{SlotID: "slot-2", ExpiresAt: time.Now().AddDate(0, 0, 10), ConsumedByResourceID: &campaignID},
		{SlotID: "slot-3", ExpiresAt: time.Now().AddDate(0, 0, -1)},
	}, nil)

	available, err := service.CountAvailable(ctx, "user-1")

	assert.NoError(t, err)
	assert.Equal(t, int64(1), available)
}

func TestService_Extend_RequiresReason(t *testing.T) {
	service, mockDB := setupService()

	slot, err := service.Extend(context.Background(), "admin-1", "slot-1", time.Now().AddDate(0, 1, 0), "  ")

	assert.Error(t, err)
	assert.Nil(t, slot)
	var validationErr app_errors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	mockDB.AssertNotCalled(t, "GetAddonSlot", mock.Anything, mock.Anything)
}

func TestService_Extend_RejectsEarlierExpiry(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("GetAddonSlot", ctx, "slot-1").Return(&ydb.AddonSlot{
		SlotID:    "slot-1",
		UserID:    "user-1",
		ExpiresAt: time.Now().AddDate(0, 0, 30),
	}, nil)

	slot, err := service.Extend(ctx, "admin-1", "slot-1", time.Now(), "support request")

	assert.Error(t, err)
	assert.Nil(t, slot)
	mockDB.AssertNotCalled(t, "UpdateAddonSlot", mock.Anything, mock.Anything)
}

func TestService_ForceExpire_KeepsConsumption(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	campaignID := "camp-1"
	mockDB.On("GetAddonSlot", ctx, "slot-1").Return(&ydb.AddonSlot{
		SlotID:               "slot-1",
		UserID:               "user-1",
		ExpiresAt:            time.Now().AddDate(0, 0, 30),
		ConsumedByResourceID: &campaignID,
	}, nil)
	mockDB.On("UpdateAddonSlot", ctx, mock.MatchedBy(func(slot *ydb.AddonSlot) bool {
		// Потребление не сбрасывается при принудительном истечении
		return slot.ConsumedByResourceID != nil && *slot.ConsumedByResourceID == campaignID
	})).Return(nil)

	slot, err := service.ForceExpire(ctx, "admin-1", "slot-1", "refund issued")

	assert.NoError(t, err)
	assert.True(t, slot.ExpiresAt.Before(time.Now().Add(time.Second)))
	mockDB.AssertExpectations(t)
}

func TestService_AdjustCapacity_AuditsBeforeAfter(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("GetAddonSlot", ctx, "slot-1").Return(&ydb.AddonSlot{
		SlotID:        "slot-1",
		UserID:        "user-1",
		ExtraCapacity: 1,
		ExpiresAt:     time.Now().AddDate(0, 0, 30),
	}, nil)
	mockDB.On("UpdateAddonSlot", ctx, mock.MatchedBy(func(slot *ydb.AddonSlot) bool {
		return slot.ExtraCapacity == 5
	})).Return(nil)

	slot, err := service.AdjustCapacity(ctx, "admin-1", "slot-1", 5, "enterprise upgrade")

	assert.NoError(t, err)
	assert.Equal(t, int64(5), slot.ExtraCapacity)
	mockDB.AssertExpectations(t)
}
