package models

// SubscriptionDetails represents subscription information
type SubscriptionDetails struct {
	SubscriptionID  string `json:"subscription_id"`
	PlanID          string `json:"plan_id"`
	Status          string `json:"status"`
	AICampaignLimit int64  `json:"ai_campaign_limit"`
	AdAccountLimit  int64  `json:"ad_account_limit"`
	IsTrial         bool   `json:"is_trial"`
	StartsAt        int64  `json:"starts_at"`
	EndsAt          int64  `json:"ends_at"`
	GraceEndsAt     int64  `json:"grace_ends_at,omitempty"`
	BillingCycle    string `json:"billing_cycle"`
}

// CapacityUsage represents AI campaign capacity usage
type CapacityUsage struct {
	AICampaignsActive   int64 `json:"ai_campaigns_active"`
	AICampaignLimit     int64 `json:"ai_campaign_limit"`
	AddonSlotsAvailable int64 `json:"addon_slots_available"`
	DailyActionsUsed    int64 `json:"daily_actions_used"`
	DailyActionsLimit   int64 `json:"daily_actions_limit"`
}

// GetSubscriptionResponse represents the response for getting subscription details
type GetSubscriptionResponse struct {
	Subscription *SubscriptionDetails `json:"subscription"`
	Usage        *CapacityUsage       `json:"usage"`
}

// ExpireGraceSweepResponse represents the result of a grace expiry sweep
type ExpireGraceSweepResponse struct {
	ExpiredSubscriptionIDs []string `json:"expired_subscription_ids"`
	Count                  int      `json:"count"`
}
