package subscription

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lumiforge/adpilot-backend/internal/audit"
	"github.com/lumiforge/adpilot-backend/internal/config"
	app_errors "github.com/lumiforge/adpilot-backend/internal/errors"
	"github.com/lumiforge/adpilot-backend/internal/models"
	"github.com/lumiforge/adpilot-backend/internal/validation"
	"github.com/lumiforge/adpilot-backend/internal/ydb"
)

// defaultTrialPlanID — план, лимиты которого копируются в триальную подписку
const defaultTrialPlanID = "free"

// Service реализует жизненный цикл подписок.
// Лимиты снимаются с тарифного плана в момент активации; последующие правки
// плана действующие подписки не затрагивают.
type Service struct {
	db       ydb.Database
	auditSvc *audit.Service
	cfg      *config.Config
	log      *slog.Logger
}

// NewService создает новый subscription сервис
func NewService(db ydb.Database, auditSvc *audit.Service, cfg *config.Config, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		db:       db,
		auditSvc: auditSvc,
		cfg:      cfg,
		log:      log,
	}
}

// EnsureTrial возвращает текущую нетерминальную подписку пользователя,
// создавая триальную, если подписки нет. Повторные вызовы идемпотентны.
func (s *Service) EnsureTrial(ctx context.Context, userID string) (*ydb.Subscription, error) {
	current, err := s.db.GetCurrentSubscription(ctx, userID)
	if err == nil {
		return current, nil
	}
	if !errors.Is(err, app_errors.ErrSubscriptionNotFound) {
		return nil, err
	}

	plan, err := s.db.GetPlanByID(ctx, defaultTrialPlanID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	trialDays := plan.TrialDays
	if trialDays <= 0 {
		trialDays = int64(s.cfg.TrialDays)
	}

	sub := &ydb.Subscription{
		SubscriptionID:  uuid.New().String(),
		UserID:          userID,
		PlanID:          plan.PlanID,
		Status:          ydb.SubscriptionStatusTrial,
		BillingCycle:    plan.BillingCycle,
		StartsAt:        now,
		EndsAt:          now.AddDate(0, 0, int(trialDays)),
		AICampaignLimit: plan.AICampaignLimit,
		AdAccountLimit:  plan.AdAccountLimit,
		IsTrial:         true,
	}

	if err := s.db.CreateSubscription(ctx, sub); err != nil {
		return nil, err
	}

	s.auditSvc.LogActionAsync(audit.Record{
		UserID:     &userID,
		ActionType: string(models.AuditSubscriptionTrialStarted),
		Details: map[string]any{
			"subscription_id": sub.SubscriptionID,
			"plan_id":         sub.PlanID,
			"ends_at":         sub.EndsAt.Unix(),
		},
	})

	s.log.Info("trial subscription created", "user_id", userID, "subscription_id", sub.SubscriptionID)
	return sub, nil
}

// ActivatePaid активирует платную подписку по захваченному платежу.
// Идемпотентна по payment_id: если подписка с этим платежом уже есть,
// возвращается она и никаких записей не делается.
func (s *Service) ActivatePaid(ctx context.Context, userID, planID, paymentID string) (*ydb.Subscription, error) {
	existing, err := s.db.GetSubscriptionByPaymentID(ctx, paymentID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, app_errors.ErrSubscriptionNotFound) {
		return nil, err
	}

	plan, err := s.db.GetPlanByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	payment, err := s.db.GetPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != ydb.PaymentStatusCaptured {
		return nil, app_errors.Invariant("activation requested for payment %s in status %s", paymentID, payment.Status)
	}

	now := time.Now()
	sub := &ydb.Subscription{
		SubscriptionID:  uuid.New().String(),
		UserID:          userID,
		PlanID:          plan.PlanID,
		Status:          ydb.SubscriptionStatusActive,
		BillingCycle:    plan.BillingCycle,
		StartsAt:        now,
		EndsAt:          addBillingCycle(now, plan.BillingCycle),
		AICampaignLimit: plan.AICampaignLimit,
		AdAccountLimit:  plan.AdAccountLimit,
		PaymentID:       &paymentID,
	}

	invoice := &ydb.Invoice{
		InvoiceID:      uuid.New().String(),
		PaymentID:      paymentID,
		UserID:         userID,
		SubscriptionID: sub.SubscriptionID,
		AmountRub:      payment.AmountRub,
		Status:         ydb.InvoiceStatusPaid,
		IssuedAt:       now,
	}

	// Экспирация старой подписки, вставка новой и счета выполняются одной
	// транзакцией: обрыв посередине не оставляет пользователя без подписки.
	if err := s.db.ActivatePaidTx(ctx, sub, invoice); err != nil {
		if errors.Is(err, app_errors.ErrSubscriptionAlreadyActivated) {
			// Конкурентная доставка того же payment.captured закоммитила
			// активацию первой, возвращаем её результат
			return s.db.GetSubscriptionByPaymentID(ctx, paymentID)
		}
		return nil, err
	}

	s.auditSvc.LogActionAsync(audit.Record{
		UserID:     &userID,
		ActionType: string(models.AuditSubscriptionActivated),
		Details: map[string]any{
			"subscription_id": sub.SubscriptionID,
			"plan_id":         sub.PlanID,
			"payment_id":      paymentID,
			"invoice_id":      invoice.InvoiceID,
		},
	})

	s.log.Info("paid subscription activated",
		"user_id", userID,
		"subscription_id", sub.SubscriptionID,
		"plan_id", planID,
		"payment_id", paymentID)
	return sub, nil
}

// AssignByAdmin выдает пользователю активную подписку без платежа.
// Текущая нетерминальная подписка отменяется, новая помечается как выданная
// администратором. Причина обязательна и попадает в аудит.
func (s *Service) AssignByAdmin(ctx context.Context, adminID, userID, planID, reason string) (*ydb.Subscription, error) {
	if err := validation.ValidateReason(reason); err != nil {
		return nil, err
	}

	plan, err := s.db.GetPlanByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	var prevSubscriptionID *string
	current, err := s.db.GetCurrentSubscription(ctx, userID)
	switch {
	case err == nil:
		if err := s.db.UpdateSubscriptionStatus(ctx, current.SubscriptionID, ydb.SubscriptionStatusCanceled, current.GraceEndsAt); err != nil {
			return nil, err
		}
		prevSubscriptionID = &current.SubscriptionID
	case !errors.Is(err, app_errors.ErrSubscriptionNotFound):
		return nil, err
	}

	now := time.Now()
	sub := &ydb.Subscription{
		SubscriptionID:  uuid.New().String(),
		UserID:          userID,
		PlanID:          plan.PlanID,
		Status:          ydb.SubscriptionStatusActive,
		BillingCycle:    plan.BillingCycle,
		StartsAt:        now,
		EndsAt:          addBillingCycle(now, plan.BillingCycle),
		AICampaignLimit: plan.AICampaignLimit,
		AdAccountLimit:  plan.AdAccountLimit,
		CreatedByAdmin:  true,
		AssignedByAdmin: &adminID,
	}

	if err := s.db.CreateSubscription(ctx, sub); err != nil {
		return nil, err
	}

	details := map[string]any{
		"subscription_id": sub.SubscriptionID,
		"plan_id":         sub.PlanID,
		"reason":          reason,
	}
	if prevSubscriptionID != nil {
		details["replaced_subscription_id"] = *prevSubscriptionID
	}
	s.auditSvc.LogActionAsync(audit.Record{
		UserID:     &userID,
		ActorID:    &adminID,
		ActionType: string(models.AuditSubscriptionAssigned),
		Details:    details,
	})

	s.log.Info("subscription assigned by admin",
		"user_id", userID,
		"subscription_id", sub.SubscriptionID,
		"plan_id", planID,
		"admin_id", adminID)
	return sub, nil
}

// EnterGrace переводит подписку в grace. Окно считается от ends_at в момент
// входа и фиксируется в строке; дальше авторитетно значение в строке.
func (s *Service) EnterGrace(ctx context.Context, subscriptionID string) (*ydb.Subscription, error) {
	sub, err := s.db.GetSubscriptionByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.IsTerminal() {
		return nil, app_errors.ErrSubscriptionTerminal
	}
	if sub.Status == ydb.SubscriptionStatusGrace {
		return sub, nil
	}

	graceEndsAt := sub.EndsAt.AddDate(0, 0, s.cfg.GraceDays)
	if err := s.db.UpdateSubscriptionStatus(ctx, subscriptionID, ydb.SubscriptionStatusGrace, &graceEndsAt); err != nil {
		return nil, err
	}

	sub.Status = ydb.SubscriptionStatusGrace
	sub.GraceEndsAt = &graceEndsAt

	s.auditSvc.LogActionAsync(audit.Record{
		UserID:     &sub.UserID,
		ActionType: string(models.AuditSubscriptionGraceEntered),
		Details: map[string]any{
			"subscription_id": subscriptionID,
			"grace_ends_at":   graceEndsAt.Unix(),
		},
	})

	s.log.Info("subscription entered grace", "subscription_id", subscriptionID, "grace_ends_at", graceEndsAt)
	return sub, nil
}

// ExpireGraceSweep пакетно переводит в expired все подписки с истекшим
// grace окном. Повторный запуск над тем же состоянием ничего не меняет.
func (s *Service) ExpireGraceSweep(ctx context.Context, now time.Time) (*models.ExpireGraceSweepResponse, error) {
	expired, err := s.db.ExpireGraceSweep(ctx, now)
	if err != nil {
		return nil, err
	}

	if len(expired) > 0 {
		s.auditSvc.LogActionAsync(audit.Record{
			ActionType: string(models.AuditGraceSweepCompleted),
			Details: map[string]any{
				"expired_count":            len(expired),
				"expired_subscription_ids": expired,
			},
		})
	}

	s.log.Info("grace sweep completed", "expired_count", len(expired))
	return &models.ExpireGraceSweepResponse{
		ExpiredSubscriptionIDs: expired,
		Count:                  len(expired),
	}, nil
}

// Cancel переводит нетерминальную подписку в canceled
func (s *Service) Cancel(ctx context.Context, subscriptionID string) error {
	sub, err := s.db.GetSubscriptionByID(ctx, subscriptionID)
	if err != nil {
		return err
	}
	if sub.IsTerminal() {
		return app_errors.ErrSubscriptionTerminal
	}

	if err := s.db.UpdateSubscriptionStatus(ctx, subscriptionID, ydb.SubscriptionStatusCanceled, sub.GraceEndsAt); err != nil {
		return err
	}

	s.auditSvc.LogActionAsync(audit.Record{
		UserID:     &sub.UserID,
		ActionType: string(models.AuditSubscriptionCanceled),
		Details: map[string]any{
			"subscription_id": subscriptionID,
			"prev_status":     sub.Status,
		},
	})

	s.log.Info("subscription canceled", "subscription_id", subscriptionID)
	return nil
}

// GetCurrent возвращает детали текущей подписки пользователя
func (s *Service) GetCurrent(ctx context.Context, userID string) (*models.SubscriptionDetails, error) {
	sub, err := s.db.GetCurrentSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}

	details := &models.SubscriptionDetails{
		SubscriptionID:  sub.SubscriptionID,
		PlanID:          sub.PlanID,
		Status:          sub.Status,
		AICampaignLimit: sub.AICampaignLimit,
		AdAccountLimit:  sub.AdAccountLimit,
		IsTrial:         sub.IsTrial,
		StartsAt:        sub.StartsAt.Unix(),
		EndsAt:          sub.EndsAt.Unix(),
		BillingCycle:    sub.BillingCycle,
	}
	if sub.GraceEndsAt != nil {
		details.GraceEndsAt = sub.GraceEndsAt.Unix()
	}
	return details, nil
}

// addBillingCycle возвращает конец оплаченного периода
func addBillingCycle(from time.Time, cycle string) time.Time {
	switch cycle {
	case "yearly":
		return from.AddDate(1, 0, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}
