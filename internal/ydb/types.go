package ydb

import (
	"time"
)

// Статусы подписки. Терминальные статусы (expired, canceled) необратимы.
const (
	SubscriptionStatusPending  = "pending"
	SubscriptionStatusTrial    = "trial"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusGrace    = "grace"
	SubscriptionStatusExpired  = "expired"
	SubscriptionStatusCanceled = "canceled"
)

// Статусы платежа
const (
	PaymentStatusCreated  = "created"
	PaymentStatusCaptured = "captured"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Назначение платежа
const (
	PaymentForSubscription = "subscription"
	PaymentForAddonSlots   = "addon_slots"
)

// Статусы счета
const (
	InvoiceStatusPaid     = "paid"
	InvoiceStatusRefunded = "refunded"
	InvoiceStatusVoid     = "void"
)

// User представляет пользователя в системе
type User struct {
	UserID       string    `db:"user_id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FullName     string    `db:"full_name"`
	Role         string    `db:"role"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Plan представляет тарифный план
type Plan struct {
	PlanID          string    `db:"plan_id"`
	Name            string    `db:"name"`
	AICampaignLimit int64     `db:"ai_campaign_limit"`
	AdAccountLimit  int64     `db:"ad_account_limit"`
	PriceRub        float64   `db:"price_rub"`
	BillingCycle    string    `db:"billing_cycle"`
	TrialDays       int64     `db:"trial_days"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// Subscription представляет подписку.
// Лимиты копируются из тарифного плана в момент активации и после этого
// не перечитываются из живого плана.
type Subscription struct {
	SubscriptionID  string     `db:"subscription_id"`
	UserID          string     `db:"user_id"`
	PlanID          string     `db:"plan_id"`
	Status          string     `db:"status"`
	BillingCycle    string     `db:"billing_cycle"`
	StartsAt        time.Time  `db:"starts_at"`
	EndsAt          time.Time  `db:"ends_at"`
	GraceEndsAt     *time.Time `db:"grace_ends_at"`
	AICampaignLimit int64      `db:"ai_campaign_limit"`
	AdAccountLimit  int64      `db:"ad_account_limit"`
	IsTrial         bool       `db:"is_trial"`
	CreatedByAdmin  bool       `db:"created_by_admin"`
	AssignedByAdmin *string    `db:"assigned_by_admin"`
	PaymentID       *string    `db:"payment_id"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

// IsTerminal сообщает, находится ли подписка в терминальном статусе
func (s *Subscription) IsTerminal() bool {
	return s.Status == SubscriptionStatusExpired || s.Status == SubscriptionStatusCanceled
}

// AddonSlot представляет купленную единицу дополнительной ёмкости.
// consumed_by_resource_id выставляется не более одного раза и автоматически
// никогда не очищается.
type AddonSlot struct {
	SlotID               string     `db:"slot_id"`
	UserID               string     `db:"user_id"`
	ExtraCapacity        int64      `db:"extra_capacity"`
	PurchasedAt          time.Time  `db:"purchased_at"`
	ExpiresAt            time.Time  `db:"expires_at"`
	ConsumedByResourceID *string    `db:"consumed_by_resource_id"`
	ConsumedAt           *time.Time `db:"consumed_at"`
	PaymentID            *string    `db:"payment_id"`
	CreatedAt            time.Time  `db:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at"`
}

// UsageOverride представляет административный оверрайд лимита.
// Уникален по паре (user_id, override_key).
type UsageOverride struct {
	UserID        string     `db:"user_id"`
	OverrideKey   string     `db:"override_key"`
	OverrideValue int64      `db:"override_value"`
	ExpiresAt     *time.Time `db:"expires_at"`
	UpdatedBy     string     `db:"updated_by"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// Payment представляет платеж у внешнего провайдера
type Payment struct {
	PaymentID          string     `db:"payment_id"`
	UserID             string     `db:"user_id"`
	ProviderOrderID    string     `db:"provider_order_id"`
	ProviderPaymentID  *string    `db:"provider_payment_id"`
	AmountRub          float64    `db:"amount_rub"`
	Status             string     `db:"status"`
	PaymentFor         string     `db:"payment_for"`
	RelatedReferenceID *string    `db:"related_reference_id"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
	CapturedAt         *time.Time `db:"captured_at"`
}

// Invoice представляет счет. Создается ровно один раз на каждый успешно
// захваченный платеж подписки; изменяется только поле статуса.
type Invoice struct {
	InvoiceID      string    `db:"invoice_id"`
	PaymentID      string    `db:"payment_id"`
	UserID         string    `db:"user_id"`
	SubscriptionID string    `db:"subscription_id"`
	AmountRub      float64   `db:"amount_rub"`
	Status         string    `db:"status"`
	IssuedAt       time.Time `db:"issued_at"`
	UpdatedAt      time.Time `db:"updated_at"`
	ArchiveKey     *string   `db:"archive_key"`
}

// Campaign представляет рекламную кампанию (минимальный срез для
// проверки ёмкости и кулдауна автоматизации)
type Campaign struct {
	CampaignID       string     `db:"campaign_id"`
	UserID           string     `db:"user_id"`
	AdAccountID      string     `db:"ad_account_id"`
	Name             string     `db:"name"`
	AIEnabled        bool       `db:"ai_enabled"`
	LastAutoActionAt *time.Time `db:"last_auto_action_at"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

// RuntimeFlags представляет единственную версионируемую запись
// административных флагов
type RuntimeFlags struct {
	FlagID              string    `db:"flag_id"`
	KillSwitch          bool      `db:"kill_switch"`
	AIAutomationEnabled bool      `db:"ai_automation_enabled"`
	Version             int64     `db:"version"`
	UpdatedBy           string    `db:"updated_by"`
	UpdatedAt           time.Time `db:"updated_at"`
}

// AuditLog представляет запись аудита
type AuditLog struct {
	ID           string    `db:"id"`
	Timestamp    time.Time `db:"timestamp"`
	UserID       *string   `db:"user_id"`
	ActorID      *string   `db:"actor_id"`
	ActionType   string    `db:"action_type"`
	ActionResult string    `db:"action_result"`
	IPAddress    *string   `db:"ip_address"`
	UserAgent    *string   `db:"user_agent"`
	DetailsJSON  string    `db:"details"`
}

// AuditLogFilter описывает параметры выборки записей аудита
type AuditLogFilter struct {
	UserID     string
	ActorID    string
	ActionType string
	Result     string
	From       *time.Time
	To         *time.Time
	Limit      int
}

// EmailLog представляет лог отправленного email
type EmailLog struct {
	EmailID          string     `db:"email_id"`
	UserID           string     `db:"user_id"`
	EmailType        string     `db:"email_type"`
	Recipient        string     `db:"recipient"`
	Status           string     `db:"status"`
	PostboxMessageID string     `db:"postbox_message_id"`
	SentAt           time.Time  `db:"sent_at"`
	DeliveredAt      *time.Time `db:"delivered_at"`
	ErrorMessage     *string    `db:"error_message"`
}
