package rbac

import (
	"context"

	app_errors "github.com/lumiforge/adpilot-backend/internal/errors"
)

// Permission представляет разрешение в системе
type Permission string

const (
	// Кампании
	PermissionCampaignView   Permission = "campaign:view"
	PermissionCampaignManage Permission = "campaign:manage"

	// Биллинг
	PermissionBillingView   Permission = "billing:view"
	PermissionBillingManage Permission = "billing:manage"

	// Пользовательские разрешения
	PermissionUserViewProfile Permission = "user:view_profile"
	PermissionUserEditProfile Permission = "user:edit_profile"

	// Административные разрешения
	PermissionAdminViewLogs        Permission = "admin:view_logs"
	PermissionAdminManageOverrides Permission = "admin:manage_overrides"
	PermissionAdminManageSlots     Permission = "admin:manage_slots"
	PermissionAdminManageFlags     Permission = "admin:manage_flags"
	PermissionAdminManageSubs      Permission = "admin:manage_subscriptions"
)

// Role представляет роль в системе
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// RBAC управляет ролями и разрешениями
type RBAC struct {
	rolePermissions map[Role][]Permission
}

// NewRBAC создает новый RBAC менеджер
func NewRBAC() *RBAC {
	rbac := &RBAC{
		rolePermissions: make(map[Role][]Permission),
	}

	rbac.initializeRolePermissions()

	return rbac
}

// initializeRolePermissions инициализирует разрешения для каждой роли
func (r *RBAC) initializeRolePermissions() {
	// Admin - все разрешения
	r.rolePermissions[RoleAdmin] = []Permission{
		PermissionCampaignView,
		PermissionCampaignManage,
		PermissionBillingView,
		PermissionBillingManage,
		PermissionUserViewProfile,
		PermissionUserEditProfile,
		PermissionAdminViewLogs,
		PermissionAdminManageOverrides,
		PermissionAdminManageSlots,
		PermissionAdminManageFlags,
		PermissionAdminManageSubs,
	}

	// Manager - операции поддержки без управления флагами
	r.rolePermissions[RoleManager] = []Permission{
		PermissionCampaignView,
		PermissionCampaignManage,
		PermissionBillingView,
		PermissionUserViewProfile,
		PermissionUserEditProfile,
		PermissionAdminViewLogs,
		PermissionAdminManageOverrides,
		PermissionAdminManageSlots,
	}

	// User - базовые разрешения
	r.rolePermissions[RoleUser] = []Permission{
		PermissionCampaignView,
		PermissionCampaignManage,
		PermissionBillingView,
		PermissionUserViewProfile,
		PermissionUserEditProfile,
	}
}

// CheckPermission проверяет, имеет ли пользователь указанное разрешение.
// Роль берется из контекста запроса.
func (r *RBAC) CheckPermission(ctx context.Context, permission Permission) (bool, error) {
	if roleValue := ctx.Value("user_role"); roleValue != nil {
		if role, ok := roleValue.(Role); ok {
			return r.hasPermission(role, permission), nil
		}
	}

	return false, app_errors.ErrUserRoleNotFoundInContext
}

// CheckPermissionWithRole проверяет разрешение для указанной роли
func (r *RBAC) CheckPermissionWithRole(role Role, permission Permission) bool {
	return r.hasPermission(role, permission)
}

// hasPermission проверяет, имеет ли роль указанное разрешение
func (r *RBAC) hasPermission(role Role, permission Permission) bool {
	permissions, exists := r.rolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}

// GetRolePermissions возвращает все разрешения для роли
func (r *RBAC) GetRolePermissions(role Role) []Permission {
	permissions, exists := r.rolePermissions[role]
	if !exists {
		return []Permission{}
	}

	// Возвращаем копию среза для безопасности
	result := make([]Permission, len(permissions))
	copy(result, permissions)
	return result
}

// GetAllRoles возвращает все доступные роли
func (r *RBAC) GetAllRoles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleUser}
}

// RoleHierarchy определяет иерархию ролей
var RoleHierarchy = map[Role]int{
	RoleUser:    1,
	RoleManager: 2,
	RoleAdmin:   3,
}

// CanManageRole проверяет, может ли пользователь с ролью userRole управлять ролью targetRole
func (r *RBAC) CanManageRole(userRole Role, targetRole Role) bool {
	userLevel, userExists := RoleHierarchy[userRole]
	targetLevel, targetExists := RoleHierarchy[targetRole]

	if !userExists || !targetExists {
		return false
	}

	return userLevel > targetLevel
}
