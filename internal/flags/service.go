package flags

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lumiforge/adpilot-backend/internal/audit"
	"github.com/lumiforge/adpilot-backend/internal/config"
	"github.com/lumiforge/adpilot-backend/internal/models"
	"github.com/lumiforge/adpilot-backend/internal/validation"
	"github.com/lumiforge/adpilot-backend/internal/ydb"
)

// Service читает и обновляет административные флаги. Чтения обслуживаются
// из кэша с периодическим обновлением, чтобы проверка entitlement не ходила
// в базу на каждый запрос. Запись инвалидирует кэш сразу.
type Service struct {
	db       ydb.Database
	auditSvc *audit.Service
	log      *slog.Logger
	ttl      time.Duration

	mu        sync.RWMutex
	cached    *ydb.RuntimeFlags
	fetchedAt time.Time
}

// NewService создает новый flags сервис
func NewService(db ydb.Database, auditSvc *audit.Service, cfg *config.Config, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		db:       db,
		auditSvc: auditSvc,
		log:      log,
		ttl:      time.Duration(cfg.FlagsRefreshIntervalSec) * time.Second,
	}
}

// Get возвращает текущие флаги, при протухшем кэше перечитывает из базы.
// При ошибке чтения возвращается последняя известная версия, если она есть.
func (s *Service) Get(ctx context.Context) (*ydb.RuntimeFlags, error) {
	s.mu.RLock()
	cached := s.cached
	fresh := cached != nil && time.Since(s.fetchedAt) < s.ttl
	s.mu.RUnlock()

	if fresh {
		return cached, nil
	}

	flags, err := s.db.GetRuntimeFlags(ctx)
	if err != nil {
		if cached != nil {
			s.log.Warn("flags refresh failed, serving stale version", "error", err, "version", cached.Version)
			return cached, nil
		}
		return nil, err
	}

	s.mu.Lock()
	s.cached = flags
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	return flags, nil
}

// Update записывает новую версию флагов целиком. Версия монотонно растет,
// последняя запись побеждает.
func (s *Service) Update(ctx context.Context, req *models.UpdateFlagsRequest, actorID string) (*ydb.RuntimeFlags, error) {
	if err := validation.ValidateReason(req.Reason); err != nil {
		return nil, err
	}

	current, err := s.db.GetRuntimeFlags(ctx)
	if err != nil {
		return nil, err
	}

	next := &ydb.RuntimeFlags{
		KillSwitch:          req.KillSwitch,
		AIAutomationEnabled: req.AIAutomationEnabled,
		Version:             current.Version + 1,
		UpdatedBy:           actorID,
	}

	if err := s.db.UpdateRuntimeFlags(ctx, next); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cached = next
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	s.auditSvc.LogActionAsync(audit.Record{
		ActorID:    &actorID,
		ActionType: string(models.AuditFlagsUpdated),
		Details: map[string]any{
			"reason":                req.Reason,
			"kill_switch":           next.KillSwitch,
			"ai_automation_enabled": next.AIAutomationEnabled,
			"version":               next.Version,
			"prev_kill_switch":      current.KillSwitch,
			"prev_ai_automation":    current.AIAutomationEnabled,
			"prev_version":          current.Version,
		},
	})

	s.log.Info("runtime flags updated",
		"version", next.Version,
		"kill_switch", next.KillSwitch,
		"ai_automation_enabled", next.AIAutomationEnabled,
		"updated_by", actorID)

	return next, nil
}
