package models

import "encoding/json"

// Billing webhook Request/Response Models

// WebhookEvent represents a parsed payment provider event envelope
// @Description	Payment provider webhook event
type WebhookEvent struct {
	Event     string          `json:"event"`
	CreatedAt int64           `json:"created_at"`
	Payload   json.RawMessage `json:"payload"`
}

// WebhookPaymentEntity represents the payment entity inside a webhook payload
type WebhookPaymentEntity struct {
	ProviderPaymentID string  `json:"id"`
	ProviderOrderID   string  `json:"order_id"`
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
	Status            string  `json:"status"`
	ErrorCode         string  `json:"error_code,omitempty"`
	ErrorDescription  string  `json:"error_description,omitempty"`
}

// WebhookSubscriptionEntity represents the subscription entity inside a webhook payload
type WebhookSubscriptionEntity struct {
	ProviderSubscriptionID string `json:"id"`
	ProviderOrderID        string `json:"order_id"`
	PlanID                 string `json:"plan_id"`
	Status                 string `json:"status"`
}

// WebhookPayload объединяет возможные сущности события
type WebhookPayload struct {
	Payment      *WebhookPaymentEntity      `json:"payment,omitempty"`
	Subscription *WebhookSubscriptionEntity `json:"subscription,omitempty"`
	Invoice      *WebhookInvoiceEntity      `json:"invoice,omitempty"`
}

// WebhookInvoiceEntity represents the invoice entity inside a webhook payload
type WebhookInvoiceEntity struct {
	ProviderInvoiceID string  `json:"id"`
	ProviderOrderID   string  `json:"order_id"`
	Amount            float64 `json:"amount"`
	Status            string  `json:"status"`
}

// WebhookResponse represents the webhook processing result
// @Description	Webhook processing acknowledgement
type WebhookResponse struct {
	Status string `json:"status"`
	Event  string `json:"event,omitempty"`
}

// Webhook processing outcomes
const (
	WebhookStatusProcessed = "processed"
	WebhookStatusIgnored   = "ignored"
)

// InvoiceResponse represents an invoice
type InvoiceResponse struct {
	InvoiceID      string  `json:"invoice_id"`
	PaymentID      string  `json:"payment_id"`
	SubscriptionID string  `json:"subscription_id"`
	AmountRub      float64 `json:"amount_rub"`
	Status         string  `json:"status"`
	IssuedAt       int64   `json:"issued_at"`
}
