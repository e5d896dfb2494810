package auth

import (
	"context"
	"time"

	app_errors "github.com/lumiforge/adpilot-backend/internal/errors"
	"github.com/lumiforge/adpilot-backend/internal/jwt"
	"github.com/lumiforge/adpilot-backend/internal/models"
	"github.com/lumiforge/adpilot-backend/internal/rbac"
	"github.com/lumiforge/adpilot-backend/internal/validation"
	"github.com/lumiforge/adpilot-backend/internal/ydb"
	"golang.org/x/crypto/bcrypt"
)

// Service реализует аутентификацию
type Service struct {
	db         ydb.Database
	jwtManager jwt.TokenManager
	rbac       *rbac.RBAC
}

// NewService создает новый auth сервис
func NewService(db ydb.Database, jwtManager jwt.TokenManager, rbacManager *rbac.RBAC) *Service {
	return &Service{
		db:         db,
		jwtManager: jwtManager,
		rbac:       rbacManager,
	}
}

// Login аутентифицирует пользователя и выдает access токен
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	if !validation.ValidateEmail(req.Email) {
		return nil, app_errors.ErrInvalidCredentials
	}

	user, err := s.db.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, app_errors.ErrInvalidCredentials
	}

	// Проверка пароля
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, app_errors.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, app_errors.ErrInvalidCredentials
	}

	accessToken, err := s.jwtManager.GenerateToken(user.UserID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	return &models.LoginResponse{
		AccessToken: accessToken,
		ExpiresAt:   time.Now().Add(s.jwtManager.GetTokenExpiry()).Unix(),
		User: &models.UserInfo{
			UserID:   user.UserID,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     user.Role,
		},
	}, nil
}

// ValidateToken проверяет access токен
func (s *Service) ValidateToken(tokenString string) (*jwt.Claims, error) {
	return s.jwtManager.ValidateToken(tokenString)
}

// CheckPermission проверяет разрешение для роли
func (s *Service) CheckPermission(role string, permission rbac.Permission) bool {
	return s.rbac.CheckPermissionWithRole(rbac.Role(role), permission)
}
