package flags

import (
	"context"
	"testing"

	"github.com/lumiforge/adpilot-backend/internal/audit"
	"github.com/lumiforge/adpilot-backend/internal/config"
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
	cfg := &config.Config{FlagsRefreshIntervalSec: 60}

	mockDB.On("InsertAuditLog", mock.Anything, mock.Anything).Return(nil).Maybe()

	service := NewService(mockDB, auditSvc, cfg, nil)
	return service, mockDB
}

func TestService_Get_CachesWithinTTL(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("GetRuntimeFlags", ctx).Return(&ydb.RuntimeFlags{
		AIAutomationEnabled: true,
		Version:             3,
	}, nil).Once()

	first, err := service.Get(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), first.Version)

	// Второе чтение в пределах TTL не ходит в базу
	second, err := service.Get(ctx)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
	mockDB.AssertNumberOfCalls(t, "GetRuntimeFlags", 1)
}

func TestService_Get_ServesStaleOnRefreshError(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("GetRuntimeFlags", ctx).Return(&ydb.RuntimeFlags{
		AIAutomationEnabled: true,
		Version:             1,
	}, nil).Once()

	_, err := service.Get(ctx)
	assert.NoError(t, err)

	// Протухший кэш и ошибка базы: отдаем последнюю известную версию
	service.ttl = 0
	mockDB.On("GetRuntimeFlags", ctx).Return(nil, app_errors.ErrFailedToConnectYDB)

	stale, err := service.Get(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), stale.Version)
}

func TestService_Update_BumpsVersionAndInvalidatesCache(t *testing.T) {
	service, mockDB := setupService()
	ctx := context.Background()

	mockDB.On("GetRuntimeFlags", ctx).Return(&ydb.RuntimeFlags{
		AIAutomationEnabled: true,
		Version:             5,
	}, nil)
	mockDB.On("UpdateRuntimeFlags", ctx, mock.MatchedBy(func(f *ydb.RuntimeFlags) bool {
		return f.Version == 6 && f.KillSwitch && f.UpdatedBy == "admin-1"
	})).Return(nil)

	updated, err := service.Update(ctx, &models.UpdateFlagsRequest{
		KillSwitch:          true,
		AIAutomationEnabled: false,
		Reason:              "incident mitigation",
	}, "admin-1")

	assert.NoError(t, err)
	assert.Equal(t, int64(6), updated.Version)

	// Кэш обновлен записью, чтение не ходит в базу
	current, err := service.Get(ctx)
	assert.NoError(t, err)
	assert.True(t, current.KillSwitch)
	mockDB.AssertExpectations(t)
}

func TestService_Update_RequiresReason(t *testing.T) {
	service, mockDB := setupService()

	updated, err := service.Update(context.Background(), &models.UpdateFlagsRequest{
		KillSwitch: true,
	}, "admin-1")

	assert.Nil(t, updated)
	var validationErr app_errors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	mockDB.AssertNotCalled(t, "UpdateRuntimeFlags", mock.Anything, mock.Anything)
}
