package http

import "time"

// Auth Request/Response Models

// LoginRequest represents a login request
// @Description	Login request with email and password
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a login response
// @Description	Login response with access token and user info
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   int64     `json:"expires_at"`
	User        *UserInfo `json:"user"`
}

// UserInfo represents user information
// @Description	User profile information
type UserInfo struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Billing Request/Response Models

// CreateSubscriptionOrderRequest represents a subscription order request
// @Description	Subscription order creation request
type CreateSubscriptionOrderRequest struct {
	PlanID string `json:"plan_id" validate:"required"`
}

// CreateSlotOrderRequest represents an addon slot order request
// @Description	Addon slot order creation request
type CreateSlotOrderRequest struct {
	Count int `json:"count" validate:"required,min=1"`
}

// AssignSubscriptionRequest represents an admin subscription assignment request
// @Description	Admin request to grant a subscription without payment
type AssignSubscriptionRequest struct {
	PlanID string `json:"plan_id" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

// OrderResponse represents a created payment order awaiting provider capture
// @Description	Created payment order
type OrderResponse struct {
	PaymentID       string  `json:"payment_id"`
	ProviderOrderID string  `json:"provider_order_id"`
	AmountRub       float64 `json:"amount_rub"`
	PaymentFor      string  `json:"payment_for"`
}

// Common Response Models

// ErrorResponse represents an error response
// @Description	Error response with details and optional remediation action
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message,omitempty"`
	Code          int    `json:"code"`
	Action        string `json:"action,omitempty"`
	RetryAfterSec int64  `json:"retry_after_sec,omitempty"`
}

// SuccessResponse represents a generic success response
// @Description	Generic success response
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// HealthResponse represents a health check response
// @Description	Health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
}
