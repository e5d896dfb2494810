package models

// Admin Request/Response Models

// UpsertOverrideRequest represents an override create/replace request
// @Description	Limit override upsert with mandatory reason
type UpsertOverrideRequest struct {
	Key       string `json:"key" validate:"required"`
	Value     int64  `json:"value" validate:"min=0"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
	Reason    string `json:"reason" validate:"required"`
}

// DeleteOverrideRequest represents an override delete request
type DeleteOverrideRequest struct {
	Key    string `json:"key" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

// OverrideResponse represents a limit override
type OverrideResponse struct {
	UserID    string `json:"user_id"`
	Key       string `json:"key"`
	Value     int64  `json:"value"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
	UpdatedBy string `json:"updated_by"`
}

// ExtendSlotRequest represents a slot expiry extension request
// @Description	Extend addon slot expiry, reason is mandatory
type ExtendSlotRequest struct {
	NewExpiresAt int64  `json:"new_expires_at" validate:"required"`
	Reason       string `json:"reason" validate:"required"`
}

// ForceExpireSlotRequest represents a forced slot expiry request
type ForceExpireSlotRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// AdjustSlotCapacityRequest represents a slot capacity adjustment request
type AdjustSlotCapacityRequest struct {
	ExtraCapacity int64  `json:"extra_capacity" validate:"min=0"`
	Reason        string `json:"reason" validate:"required"`
}

// SlotResponse represents an addon slot
type SlotResponse struct {
	SlotID               string `json:"slot_id"`
	UserID               string `json:"user_id"`
	ExtraCapacity        int64  `json:"extra_capacity"`
	PurchasedAt          int64  `json:"purchased_at"`
	ExpiresAt            int64  `json:"expires_at"`
	ConsumedByResourceID string `json:"consumed_by_resource_id,omitempty"`
	ConsumedAt           int64  `json:"consumed_at,omitempty"`
}

// UpdateFlagsRequest represents a runtime flags update request
// @Description	Runtime flags update, full record replacement
type UpdateFlagsRequest struct {
	KillSwitch          bool   `json:"kill_switch"`
	AIAutomationEnabled bool   `json:"ai_automation_enabled"`
	Reason              string `json:"reason" validate:"required"`
}

// FlagsResponse represents the current runtime flags record
type FlagsResponse struct {
	KillSwitch          bool   `json:"kill_switch"`
	AIAutomationEnabled bool   `json:"ai_automation_enabled"`
	Version             int64  `json:"version"`
	UpdatedBy           string `json:"updated_by"`
	UpdatedAt           int64  `json:"updated_at"`
}
