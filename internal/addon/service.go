package addon

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lumiforge/adpilot-backend/internal/audit"
	app_errors "github.com/lumiforge/adpilot-backend/internal/errors"
	"github.com/lumiforge/adpilot-backend/internal/models"
	"github.com/lumiforge/adpilot-backend/internal/validation"
	"github.com/lumiforge/adpilot-backend/internal/ydb"
)

// slotValidityDays — срок жизни купленного слота
const slotValidityDays = 30

// Service управляет слотами дополнительной ёмкости.
// Слот потребляется не более одного раза; consumed_by_resource_id после
// установки не очищается никакими операциями, включая административные.
type Service struct {
	db       ydb.Database
	auditSvc *audit.Service
	log      *slog.Logger
}

// NewService создает новый addon сервис
func NewService(db ydb.Database, auditSvc *audit.Service, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		db:       db,
		auditSvc: auditSvc,
		log:      log,
	}
}

// Purchase создает count слотов, привязанных к захваченному платежу.
// Идемпотентен по payment_id: повторная доставка вебхука по тому же
// платежу возвращает уже созданные слоты без новых записей.
func (s *Service) Purchase(ctx context.Context, userID, paymentID string, count int, extraCapacity int64) ([]*ydb.AddonSlot, error) {
	if count <= 0 {
		return nil, app_errors.ValidationError{Field: "count", Message: "must be positive"}
	}
	if extraCapacity <= 0 {
		return nil, app_errors.ValidationError{Field: "extra_capacity", Message: "must be positive"}
	}

	existing, err := s.db.ListAddonSlotsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var purchased []*ydb.AddonSlot
	for _, slot := range existing {
		if slot.PaymentID != nil && *slot.PaymentID == paymentID {
			purchased = append(purchased, slot)
		}
	}
	if len(purchased) > 0 {
		s.log.Info("duplicate slot purchase for payment", "user_id", userID, "payment_id", paymentID)
		return purchased, nil
	}

	now := time.Now()
	slots := make([]*ydb.AddonSlot, 0, count)
	for i := 0; i < count; i++ {
		slots = append(slots, &ydb.AddonSlot{
			SlotID:        uuid.New().String(),
			UserID:        userID,
			ExtraCapacity: extraCapacity,
			PurchasedAt:   now,
			ExpiresAt:     now.AddDate(0, 0, slotValidityDays),
			PaymentID:     &paymentID,
		})
	}

	if err := s.db.CreateAddonSlots(ctx, slots); err != nil {
		return nil, err
	}

	s.auditSvc.LogActionAsync(audit.Record{
		UserID:     &userID,
		ActionType: string(models.AuditSlotPurchased),
		Details: map[string]any{
			"payment_id":     paymentID,
			"count":          count,
			"extra_capacity": extraCapacity,
		},
	})

	s.log.Info("addon slots purchased", "user_id", userID, "count", count, "payment_id", paymentID)
	return slots, nil
}

// Reserve потребляет самый старый доступный слот пользователя под кампанию.
// Возвращает (nil, nil), если пул исчерпан.
func (s *Service) Reserve(ctx context.Context, userID, campaignID string) (*ydb.AddonSlot, error) {
	slot, err := s.db.ReserveAddonSlotTx(ctx, userID, campaignID, time.Now())
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, nil
	}

	s.auditSvc.LogActionAsync(audit.Record{
		UserID:     &userID,
		ActionType: string(models.AuditSlotReserved),
		Details: map[string]any{
			"slot_id":     slot.SlotID,
			"campaign_id": campaignID,
		},
	})

	s.log.Info("addon slot reserved", "user_id", userID, "slot_id", slot.SlotID, "campaign_id", campaignID)
	return slot, nil
}

// CountAvailable возвращает число доступных (непотребленных, неистекших) слотов
func (s *Service) CountAvailable(ctx context.Context, userID string) (int64, error) {
	slots, err := s.db.ListAddonSlotsByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	var available int64
	for _, slot := range slots {
		if slot.ConsumedByResourceID == nil && slot.ExpiresAt.After(now) {
			available++
		}
	}
	return available, nil
}

// Extend продлевает срок жизни слота. Причина обязательна, прежнее и новое
// значения фиксируются в аудите.
func (s *Service) Extend(ctx context.Context, actorID, slotID string, newExpiresAt time.Time, reason string) (*ydb.AddonSlot, error) {
	if err := validation.ValidateReason(reason); err != nil {
		return nil, err
	}

	slot, err := s.db.GetAddonSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if !newExpiresAt.After(slot.ExpiresAt) {
		return nil, app_errors.ValidationError{Field: "new_expires_at", Message: "must be later than current expiry"}
	}

	prevExpiresAt := slot.ExpiresAt
	slot.ExpiresAt = newExpiresAt
	if err := s.db.UpdateAddonSlot(ctx, slot); err != nil {
		return nil, err
	}

	s.auditSvc.LogActionAsync(audit.Record{
		UserID:     &slot.UserID,
		ActorID:    &actorID,
		ActionType: string(models.AuditSlotExtended),
		Details: map[string]any{
			"slot_id":         slotID,
			"reason":          reason,
			"prev_expires_at": prevExpiresAt.Unix(),
			"new_expires_at":  newExpiresAt.Unix(),
		},
	})

	s.log.Info("addon slot extended", "slot_id", slotID, "actor_id", actorID)
	return slot, nil
}

// ForceExpire немедленно истекает слот. Поле потребления не трогается:
// уже потребленный слот остается потребленным.
func (s *Service) ForceExpire(ctx context.Context, actorID, slotID, reason string) (*ydb.AddonSlot, error) {
	if err := validation.ValidateReason(reason); err != nil {
		return nil, err
	}

	slot, err := s.db.GetAddonSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}

	prevExpiresAt := slot.ExpiresAt
	slot.ExpiresAt = time.Now()
	if err := s.db.UpdateAddonSlot(ctx, slot); err != nil {
		return nil, err
	}

	s.auditSvc.LogActionAsync(audit.Record{
		UserID:     &slot.UserID,
		ActorID:    &actorID,
		ActionType: string(models.AuditSlotForceExpired),
		Details: map[string]any{
			"slot_id":         slotID,
			"reason":          reason,
			"prev_expires_at": prevExpiresAt.Unix(),
		},
	})

	s.log.Info("addon slot force expired", "slot_id", slotID, "actor_id", actorID)
	return slot, nil
}

// AdjustCapacity меняет ёмкость слота
func (s *Service) AdjustCapacity(ctx context.Context, actorID, slotID string, extraCapacity int64, reason string) (*ydb.AddonSlot, error) {
	if err := validation.ValidateReason(reason); err != nil {
		return nil, err
	}
	if err := validation.ValidateLimitValue(extraCapacity); err != nil {
		return nil, err
	}

	slot, err := s.db.GetAddonSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}

	prevCapacity := slot.ExtraCapacity
	slot.ExtraCapacity = extraCapacity
	if err := s.db.UpdateAddonSlot(ctx, slot); err != nil {
		return nil, err
	}

	s.auditSvc.LogActionAsync(audit.Record{
		UserID:     &slot.UserID,
		ActorID:    &actorID,
		ActionType: string(models.AuditSlotAdjusted),
		Details: map[string]any{
			"slot_id":       slotID,
			"reason":        reason,
			"prev_capacity": prevCapacity,
			"new_capacity":  extraCapacity,
		},
	})

	s.log.Info("addon slot capacity adjusted", "slot_id", slotID, "actor_id", actorID)
	return slot, nil
}

// ListByUser возвращает слоты пользователя
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*ydb.AddonSlot, error) {
	return s.db.ListAddonSlotsByUser(ctx, userID)
}
