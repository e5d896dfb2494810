package override

import (
	"context"
	"testing"
	"time"

	"github.com/lumiforge/adpilot-backend/internal/audit"
	app_errors "github.com/lumiforge/adpilot-backend/internal/errors"
	"github.com/lumiforge/adpilot-backend/internal/models"
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

func TestService_Upsert_Success(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("GetUsageOverride", ctx, "user-1", "campaigns").Return(nil, nil)
	mockDB.On("UpsertUsageOverride", ctx, mock.MatchedBy(func(o *ydb.UsageOverride) bool {
		return o.UserID == "user-1" && o.OverrideKey == "campaigns" &&
			o.OverrideValue == 25 && o.UpdatedBy == "admin-1"
	})).Return(nil)

	override, err := service.Upsert(ctx, "admin-1", "user-1", &models.UpsertOverrideRequest{
		Key:    "campaigns",
		Value:  25,
		Reason: "enterprise pilot",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(25), override.OverrideValue)
	assert.Nil(t, override.ExpiresAt)
	mockDB.AssertExpectations(t)
}

func TestService_Upsert_ReplacesExisting(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("GetUsageOverride", ctx, "user-1", "campaigns").Return(&ydb.UsageOverride{
		UserID:        "user-1",
		OverrideKey:   "campaigns",
		OverrideValue: 10,
	}, nil)
	mockDB.On("UpsertUsageOverride", ctx, mock.AnythingOfType("*ydb.UsageOverride")).Return(nil)

	expiresAt := time.Now().AddDate(0, 1, 0).Unix()
	override, err := service.Upsert(ctx, "admin-1", "user-1", &models.UpsertOverrideRequest{
		Key:       "campaigns",
		Value:     50,
		ExpiresAt: expiresAt,
		Reason:    "temporary bump",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(50), override.OverrideValue)
	assert.NotNil(t, override.ExpiresAt)
	assert.Equal(t, expiresAt, override.ExpiresAt.Unix())
}

func TestService_Upsert_RejectsUnknownKey(t *testing.T) {
	service, mockDB := setupService()

	override, err := service.Upsert(context.Background(), "admin-1", "user-1", &models.UpsertOverrideRequest{
		Key:    "videos",
		Value:  10,
		Reason: "test",
	})

	assert.Error(t, err)
	assert.Nil(t, override)
	var validationErr app_errors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	mockDB.AssertNotCalled(t, "UpsertUsageOverride", mock.Anything, mock.Anything)
}

func TestService_Upsert_RequiresReason(t *testing.T) {
	service, mockDB := setupService()

	override, err := service.Upsert(context.Background(), "admin-1", "user-1", &models.UpsertOverrideRequest{
		Key:   "campaigns",
		Value: 10,
	})

	assert.Error(t, err)
	assert.Nil(t, override)
	mockDB.AssertNotCalled(t, "UpsertUsageOverride", mock.Anything, mock.Anything)
}

func TestService_Delete_MissingRecordIsNoop(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("DeleteUsageOverride", ctx, "user-1", "campaigns").Return(false, nil)

	err := service.Delete(ctx, "admin-1", "user-1", "campaigns", "cleanup")

	assert.NoError(t, err)
	mockDB.AssertExpectations(t)
}

func TestService_Delete_RequiresReason(t *testing.T) {
	service, mockDB := setupService()

	err := service.Delete(context.Background(), "admin-1", "user-1", "campaigns", "")

	assert.Error(t, err)
	mockDB.AssertNotCalled(t, "DeleteUsageOverride", mock.Anything, mock.Anything, mock.Anything)
}
