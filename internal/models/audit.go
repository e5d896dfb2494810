package models

import (
	"encoding/json"
	"time"
)

// AuditLog представляет запись аудита в системе
// @Description	Audit log entry for billing and admin actions
type AuditLog struct {
	ID           string          `json:"id"`
	Timestamp    time.Time       `json:"timestamp"`
	UserID       string          `json:"user_id"`
	ActorID      string          `json:"actor_id"`
	ActionType   string          `json:"action_type"`
	ActionResult string          `json:"action_result"`
	IPAddress    string          `json:"ip_address"`
	UserAgent    string          `json:"user_agent"`
	Details      json.RawMessage `json:"details"`
}

// AuditActionType содержит константы для типов действий
type AuditActionType string

const (
	// Subscription lifecycle
	AuditSubscriptionTrialStarted AuditActionType = "subscription_trial_started"
	AuditSubscriptionActivated    AuditActionType = "subscription_activated"
	AuditSubscriptionGraceEntered AuditActionType = "subscription_grace_entered"
	AuditSubscriptionExpired      AuditActionType = "subscription_expired"
	AuditSubscriptionCanceled     AuditActionType = "subscription_canceled"
	AuditSubscriptionAssigned     AuditActionType = "subscription_assigned"
	AuditGraceSweepCompleted      AuditActionType = "grace_sweep_completed"

	// Webhook actions
	AuditWebhookProcessed AuditActionType = "webhook_processed"
	AuditWebhookIgnored   AuditActionType = "webhook_ignored"
	AuditWebhookRejected  AuditActionType = "webhook_rejected"

	// Addon slot actions
	AuditSlotPurchased    AuditActionType = "slot_purchased"
	AuditSlotReserved     AuditActionType = "slot_reserved"
	AuditSlotExtended     AuditActionType = "slot_extended"
	AuditSlotForceExpired AuditActionType = "slot_force_expired"
	AuditSlotAdjusted     AuditActionType = "slot_adjusted"

	// Override actions
	AuditOverrideUpserted AuditActionType = "override_upserted"
	AuditOverrideDeleted  AuditActionType = "override_deleted"

	// Runtime flags
	AuditFlagsUpdated AuditActionType = "flags_updated"
)

// AuditActionResult содержит константы для результатов действий
type AuditActionResult string

const (
	AuditResultSuccess AuditActionResult = "success"
	AuditResultFailure AuditActionResult = "failure"
)

// GetAuditLogs request model
// @Description	Request filters for audit logs listing
type GetAuditLogsRequest struct {
	UserID     string `query:"user_id"`
	ActorID    string `query:"actor_id"`
	ActionType string `query:"action_type"`
	Result     string `query:"result"`
	From       string `query:"from"`
	To         string `query:"to"`
	Limit      int    `query:"limit"`
	Offset     int    `query:"offset"`
}

// GetAuditLogsResponse response for audit logs listing
// @Description	Audit logs list with pagination
type GetAuditLogsResponse struct {
	Logs   []*AuditLog `json:"logs"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}
