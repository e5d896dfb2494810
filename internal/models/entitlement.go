package models

// Entitlement Request/Response Models

// Limit sources in precedence order
const (
	LimitSourceOverride     = "override"
	LimitSourceSubscription = "subscription"
	LimitSourceNone         = "none"
)

// EffectiveLimit represents a resolved limit with its source
// @Description	Resolved limit value and where it came from
type EffectiveLimit struct {
	Key    string `json:"key"`
	Value  int64  `json:"value"`
	Source string `json:"source"`
}

// EntitlementDecision represents the outcome of an automation entitlement check
// @Description	Entitlement check decision
type EntitlementDecision struct {
	Allowed      bool   `json:"allowed"`
	Reason       string `json:"reason,omitempty"`
	Action       string `json:"action,omitempty"`
	UsedSlotID   string `json:"used_slot_id,omitempty"`
	Limit        int64  `json:"limit,omitempty"`
	CurrentUsage int64  `json:"current_usage,omitempty"`
}

// CheckEntitlementRequest represents an entitlement check request
// @Description	Entitlement check request for enabling AI on a campaign
type CheckEntitlementRequest struct {
	CampaignID string `json:"campaign_id" validate:"required"`
}
