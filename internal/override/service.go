package override

import (
	"context"
	"log/slog"
	"time"

	"github.com/lumiforge/adpilot-backend/internal/audit"
	"github.com/lumiforge/adpilot-backend/internal/models"
	"github.com/lumiforge/adpilot-backend/internal/validation"
	"github.com/lumiforge/adpilot-backend/internal/ydb"
)

// Service управляет административными оверрайдами лимитов.
// Оверрайд уникален по паре (user_id, key), повторный Upsert заменяет
// запись целиком.
type Service struct {
	db       ydb.Database
	auditSvc *audit.Service
	log      *slog.Logger
}

// NewService создает новый override сервис
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

// Upsert создает или заменяет оверрайд. Причина обязательна, прежнее
// значение попадает в аудит.
func (s *Service) Upsert(ctx context.Context, actorID, userID string, req *models.UpsertOverrideRequest) (*ydb.UsageOverride, error) {
	if err := validation.ValidateOverrideKey(req.Key); err != nil {
		return nil, err
	}
	if err := validation.ValidateLimitValue(req.Value); err != nil {
		return nil, err
	}
	if err := validation.ValidateReason(req.Reason); err != nil {
		return nil, err
	}

	prior, err := s.db.GetUsageOverride(ctx, userID, req.Key)
	if err != nil {
		return nil, err
	}

	override := &ydb.UsageOverride{
		UserID:        userID,
		OverrideKey:   req.Key,
		OverrideValue: req.Value,
		UpdatedBy:     actorID,
	}
	if req.ExpiresAt > 0 {
		expiresAt := time.Unix(req.ExpiresAt, 0)
		override.ExpiresAt = &expiresAt
	}

	if err := s.db.UpsertUsageOverride(ctx, override); err != nil {
		return nil, err
	}

	details := map[string]any{
		"key":    req.Key,
		"value":  req.Value,
		"reason": req.Reason,
	}
	if prior != nil {
		details["prev_value"] = prior.OverrideValue
	}
	s.auditSvc.LogActionAsync(audit.Record{
		UserID:     &userID,
		ActorID:    &actorID,
		ActionType: string(models.AuditOverrideUpserted),
		Details:    details,
	})

	s.log.Info("usage override upserted", "user_id", userID, "key", req.Key, "value", req.Value, "actor_id", actorID)
	return override, nil
}

// Delete удаляет оверрайд. Удаление несуществующей записи не ошибка,
// но факт фиксируется в аудите с пометкой.
func (s *Service) Delete(ctx context.Context, actorID, userID, key, reason string) error {
	if err := validation.ValidateOverrideKey(key); err != nil {
		return err
	}
	if err := validation.ValidateReason(reason); err != nil {
		return err
	}

	existed, err := s.db.DeleteUsageOverride(ctx, userID, key)
	if err != nil {
		return err
	}

	s.auditSvc.LogActionAsync(audit.Record{
		UserID:     &userID,
		ActorID:    &actorID,
		ActionType: string(models.AuditOverrideDeleted),
		Details: map[string]any{
			"key":     key,
			"reason":  reason,
			"existed": existed,
		},
	})

	s.log.Info("usage override deleted", "user_id", userID, "key", key, "existed", existed, "actor_id", actorID)
	return nil
}

// ListByUser возвращает все оверрайды пользователя
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*models.OverrideResponse, error) {
	overrides, err := s.db.ListUsageOverridesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]*models.OverrideResponse, 0, len(overrides))
	for _, o := range overrides {
		resp := &models.OverrideResponse{
			UserID:    o.UserID,
			Key:       o.OverrideKey,
			Value:     o.OverrideValue,
			UpdatedBy: o.UpdatedBy,
		}
		if o.ExpiresAt != nil {
			resp.ExpiresAt = o.ExpiresAt.Unix()
		}
		result = append(result, resp)
	}
	return result, nil
}
