package auth

import (
	"context"
	"testing"
	"time"

	app_errors "github.com/lumiforge/adpilot-backend/internal/errors"
	jwtmocks "github.com/lumiforge/adpilot-backend/internal/jwt/mocks"
	"github.com/lumiforge/adpilot-backend/internal/models"
	"github.com/lumiforge/adpilot-backend/internal/rbac"
	"github.com/lumiforge/adpilot-backend/internal/ydb"
	ydbmocks "github.com/lumiforge/adpilot-backend/internal/ydb/mocks"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

// setupAuthService создает сервис с моками
func setupAuthService() (*Service, *ydbmocks.Database, *jwtmocks.TokenManager) {
	mockDB := new(ydbmocks.Database)
	mockJWT := new(jwtmocks.TokenManager)

	// Используем реальный RBAC, так как это чистая логика
	realRBAC := rbac.NewRBAC()

	service := NewService(mockDB, mockJWT, realRBAC)
	return service, mockDB, mockJWT
}

func TestService_Login_Success(t *testing.T) {
	service, mockDB, mockJWT := setupAuthService()
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	mockDB.On("GetUserByEmail", ctx, "admin@example.com").Return(&ydb.User{
		UserID:       "user-1",
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		FullName:     "Admin",
		Role:         "admin",
		IsActive:     true,
	}, nil)
	mockJWT.On("GenerateToken", "user-1", "admin@example.com", "admin").Return("token-123", nil)
	mockJWT.On("GetTokenExpiry").Return(24 * time.Hour)

	resp, err := service.Login(ctx, &models.LoginRequest{
		Email:    "admin@example.com",
		Password: "password123",
	})

	assert.NoError(t, err)
	assert.Equal(t, "token-123", resp.AccessToken)
	assert.Equal(t, "admin", resp.User.Role)
	mockDB.AssertExpectations(t)
}

func TestService_Login_WrongPassword(t *testing.T) {
	service, mockDB, _ := setupAuthService()
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	mockDB.On("GetUserByEmail", ctx, "admin@example.com").Return(&ydb.User{
		UserID:       "user-1",
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
	}, nil)

	resp, err := service.Login(ctx, &models.LoginRequest{
		Email:    "admin@example.com",
		Password: "wrong",
	})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, app_errors.ErrInvalidCredentials)
}

func TestService_Login_DeactivatedUser(t *testing.T) {
	service, mockDB, _ := setupAuthService()
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	mockDB.On("GetUserByEmail", ctx, "admin@example.com").Return(&ydb.User{
		UserID:       "user-1",
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		IsActive:     false,
	}, nil)

	resp, err := service.Login(ctx, &models.LoginRequest{
		Email:    "admin@example.com",
		Password: "password123",
	})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, app_errors.ErrInvalidCredentials)
}

func TestService_CheckPermission_RoleMatrix(t *testing.T) {
	service, _, _ := setupAuthService()

	assert.True(t, service.CheckPermission("admin", rbac.PermissionAdminManageFlags))
	assert.False(t, service.CheckPermission("manager", rbac.PermissionAdminManageFlags))
	assert.True(t, service.CheckPermission("manager", rbac.PermissionAdminManageOverrides))
	assert.False(t, service.CheckPermission("user", rbac.PermissionAdminViewLogs))
}
