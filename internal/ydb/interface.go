package ydb

import (
	"context"
	"time"
)

// Database определяет интерфейс для работы с базой данных
type Database interface {
	// Пользователи
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, userID string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// Тарифные планы
	UpsertPlan(ctx context.Context, plan *Plan) error
	GetPlanByID(ctx context.Context, planID string) (*Plan, error)
	GetAllPlans(ctx context.Context) ([]*Plan, error)

	// Подписки
	CreateSubscription(ctx context.Context, subscription *Subscription) error
	GetSubscriptionByID(ctx context.Context, subscriptionID string) (*Subscription, error)
	// GetCurrentSubscription возвращает подписку пользователя в нетерминальном
	// статусе (trial/active/grace) или ErrSubscriptionNotFound
	GetCurrentSubscription(ctx context.Context, userID string) (*Subscription, error)
	GetSubscriptionByPaymentID(ctx context.Context, paymentID string) (*Subscription, error)
	UpdateSubscriptionStatus(ctx context.Context, subscriptionID, status string, graceEndsAt *time.Time) error
	// ActivatePaidTx атомарно переводит текущую нетерминальную подписку
	// пользователя в expired, вставляет новую активную подписку и счет
	ActivatePaidTx(ctx context.Context, subscription *Subscription, invoice *Invoice) error
	// ExpireGraceSweep переводит в expired все подписки в статусе grace с
	// истекшим grace_ends_at; возвращает идентификаторы затронутых строк
	ExpireGraceSweep(ctx context.Context, now time.Time) ([]string, error)

	// Слоты дополнительной ёмкости
	CreateAddonSlots(ctx context.Context, slots []*AddonSlot) error
	GetAddonSlot(ctx context.Context, slotID string) (*AddonSlot, error)
	ListAddonSlotsByUser(ctx context.Context, userID string) ([]*AddonSlot, error)
	// ReserveAddonSlotTx в одной транзакции выбирает самый старый
	// неистекший непотребленный слот пользователя, помечает его потребленным
	// кампанией и включает на кампании AI. Возвращает (nil, nil), если
	// доступных слотов нет.
	ReserveAddonSlotTx(ctx context.Context, userID, campaignID string, now time.Time) (*AddonSlot, error)
	UpdateAddonSlot(ctx context.Context, slot *AddonSlot) error

	// Лимитные оверрайды
	UpsertUsageOverride(ctx context.Context, override *UsageOverride) error
	GetUsageOverride(ctx context.Context, userID, key string) (*UsageOverride, error)
	ListUsageOverridesByUser(ctx context.Context, userID string) ([]*UsageOverride, error)
	// DeleteUsageOverride возвращает true, если запись существовала
	DeleteUsageOverride(ctx context.Context, userID, key string) (bool, error)

	// Платежи
	CreatePayment(ctx context.Context, payment *Payment) error
	GetPaymentByID(ctx context.Context, paymentID string) (*Payment, error)
	GetPaymentByProviderOrderID(ctx context.Context, providerOrderID string) (*Payment, error)
	MarkPaymentCaptured(ctx context.Context, paymentID, providerPaymentID string, at time.Time) error
	MarkPaymentFailed(ctx context.Context, paymentID string, at time.Time) error
	MarkPaymentRefunded(ctx context.Context, paymentID string, at time.Time) error

	// Счета
	GetInvoiceByPaymentID(ctx context.Context, paymentID string) (*Invoice, error)
	ListInvoicesByUser(ctx context.Context, userID string) ([]*Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, invoiceID, status string) error
	SetInvoiceArchiveKey(ctx context.Context, invoiceID, archiveKey string) error

	// Кампании
	CreateCampaign(ctx context.Context, campaign *Campaign) error
	GetCampaign(ctx context.Context, campaignID string) (*Campaign, error)
	CountActiveAICampaigns(ctx context.Context, userID string) (int64, error)
	EnableCampaignAI(ctx context.Context, campaignID string, at time.Time) error
	DisableCampaignAI(ctx context.Context, campaignID string) error

	// Счетчики действий
	GetDailyActionCount(ctx context.Context, userID, day string) (int64, error)
	IncrementDailyActionCount(ctx context.Context, userID, day string) error

	// Административные флаги
	GetRuntimeFlags(ctx context.Context) (*RuntimeFlags, error)
	UpdateRuntimeFlags(ctx context.Context, flags *RuntimeFlags) error

	// Аудит
	InsertAuditLog(ctx context.Context, auditLog *AuditLog) error
	ListAuditLogs(ctx context.Context, filter *AuditLogFilter) ([]*AuditLog, error)

	// Email логи
	CreateEmailLog(ctx context.Context, log *EmailLog) error

	// Инициализация и миграции
	Initialize(ctx context.Context) error
	Close() error
}
