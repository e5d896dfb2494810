package errors

import (
	"errors"
	"fmt"
)

// Инфраструктурные ошибки
var (
	ErrFailedToConnectYDB         = errors.New("failed to connect to YDB")
	ErrFailedToInitStorageClient  = errors.New("failed to initialize storage client")
	ErrJWTSecretKeyNotConfigured  = errors.New("JWT secret key is not configured")
	ErrWebhookSecretNotConfigured = errors.New("webhook secret is not configured")
)

// JWT ошибки
var (
	ErrFailedToGenerateAccessToken  = errors.New("failed to generate access token")
	ErrFailedToGenerateRefreshToken = errors.New("failed to generate refresh token")
	ErrUnexpectedSigningMethod      = errors.New("unexpected signing method")
	ErrFailedToParseToken           = errors.New("failed to parse token")
	ErrInvalidToken                 = errors.New("invalid token")
)

// Ошибки биллинга и подписок
var (
	ErrSignatureMismatch            = errors.New("webhook signature mismatch")
	ErrSubscriptionAlreadyActivated = errors.New("subscription already activated for this payment")
	ErrPlanNotFound                 = errors.New("plan not found")
	ErrSubscriptionNotFound         = errors.New("subscription not found")
	ErrPaymentNotFound              = errors.New("payment not found")
	ErrSlotNotFound                 = errors.New("addon slot not found")
	ErrCampaignNotFound             = errors.New("campaign not found")
	ErrUserNotFound                 = errors.New("user not found")
	ErrInvalidCredentials           = errors.New("invalid credentials")
	ErrSubscriptionTerminal         = errors.New("subscription is in a terminal state")
	ErrAutomationDisabled           = errors.New("AI automation is disabled")
	ErrKillSwitchEnabled            = errors.New("service is temporarily disabled by administrator")
)

// Ошибки авторизации
var (
	ErrUserRoleNotFoundInContext = errors.New("user role not found in context")
	ErrPermissionDenied          = errors.New("permission denied")
	ErrAuthHeaderEmpty           = errors.New("authorization header is empty")
	ErrAuthHeaderWrongFormat     = errors.New("authorization header has wrong format")
)

// RemediationAction tells the client how to get out of a capacity denial.
type RemediationAction string

const (
	ActionUpgradePlan RemediationAction = "upgrade_plan"
	ActionBuySlots    RemediationAction = "buy_slots"
	ActionWait        RemediationAction = "wait"
)

// CapacityError is returned when an account has no remaining capacity for a
// gated resource. It is a business denial, not an infrastructure fault.
type CapacityError struct {
	Resource string
	Limit    int64
	Action   RemediationAction
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("capacity exceeded for %s (limit %d)", e.Resource, e.Limit)
}

// CooldownError is returned while a per-resource cooldown window is open.
type CooldownError struct {
	Resource      string
	RetryAfterSec int64
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown active for %s, retry after %ds", e.Resource, e.RetryAfterSec)
}

// RateLimitError is returned when the periodic action counter is exhausted.
type RateLimitError struct {
	Limit int64
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("daily action limit reached (%d)", e.Limit)
}

// ValidationError описывает ошибку валидации входных данных
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// InvariantError marks a configuration or programming defect. It must be
// logged and surfaced as an internal error, never swallowed.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "invariant violation: " + e.Message
}

// Invariant формирует InvariantError с форматированием
func Invariant(format string, args ...any) *InvariantError {
	return &InvariantError{Message: fmt.Sprintf(format, args...)}
}
