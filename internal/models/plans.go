package models

type PlanResponse struct {
	PlanID          string  `json:"plan_id"`
	Name            string  `json:"name"`
	AICampaignLimit int64   `json:"ai_campaign_limit"`
	AdAccountLimit  int64   `json:"ad_account_limit"`
	PriceRub        float64 `json:"price_rub"`
	BillingCycle    string  `json:"billing_cycle"`
	TrialDays       int64   `json:"trial_days"`
}
