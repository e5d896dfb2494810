package entitlement

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lumiforge/adpilot-backend/internal/addon"
	"github.com/lumiforge/adpilot-backend/internal/config"
	app_errors "github.com/lumiforge/adpilot-backend/internal/errors"
	"github.com/lumiforge/adpilot-backend/internal/flags"
	"github.com/lumiforge/adpilot-backend/internal/models"
	"github.com/lumiforge/adpilot-backend/internal/ydb"
)

// Ключ лимита AI кампаний
const KeyCampaigns = "campaigns"

// Service отвечает на вопрос "можно ли включить AI на этой кампании".
// Все проверки читающие; единственная запись — потребление слота вместе с
// включением кампании, и она выполняется одной транзакцией в сторадже.
type Service struct {
	db       ydb.Database
	addonSvc *addon.Service
	flagsSvc *flags.Service
	cfg      *config.Config
	log      *slog.Logger
}

// NewService создает новый entitlement сервис
func NewService(db ydb.Database, addonSvc *addon.Service, flagsSvc *flags.Service, cfg *config.Config, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		db:       db,
		addonSvc: addonSvc,
		flagsSvc: flagsSvc,
		cfg:      cfg,
		log:      log,
	}
}

// GetEffectiveLimit разрешает действующий лимит по ключу.
// Неистекший оверрайд побеждает снапшот подписки; без подписки лимит 0.
func (s *Service) GetEffectiveLimit(ctx context.Context, userID, key string) (*models.EffectiveLimit, error) {
	override, err := s.db.GetUsageOverride(ctx, userID, key)
	if err != nil {
		return nil, err
	}
	if override != nil && (override.ExpiresAt == nil || override.ExpiresAt.After(time.Now())) {
		return &models.EffectiveLimit{
			Key:    key,
			Value:  override.OverrideValue,
			Source: models.LimitSourceOverride,
		}, nil
	}

	sub, err := s.db.GetCurrentSubscription(ctx, userID)
	if err != nil {
		if errors.Is(err, app_errors.ErrSubscriptionNotFound) {
			return &models.EffectiveLimit{Key: key, Value: 0, Source: models.LimitSourceNone}, nil
		}
		return nil, err
	}

	var value int64
	switch key {
	case KeyCampaigns:
		value = sub.AICampaignLimit
	case "ad_accounts":
		value = sub.AdAccountLimit
	default:
		value = 0
	}

	return &models.EffectiveLimit{
		Key:    key,
		Value:  value,
		Source: models.LimitSourceSubscription,
	}, nil
}

// GetUsage собирает текущую картину потребления емкости пользователя
func (s *Service) GetUsage(ctx context.Context, userID string) (*models.CapacityUsage, error) {
	limit, err := s.GetEffectiveLimit(ctx, userID, KeyCampaigns)
	if err != nil {
		return nil, err
	}
	active, err := s.db.CountActiveAICampaigns(ctx, userID)
	if err != nil {
		return nil, err
	}
	slots, err := s.addonSvc.CountAvailable(ctx, userID)
	if err != nil {
		return nil, err
	}
	day := time.Now().UTC().Format("2006-01-02")
	used, err := s.db.GetDailyActionCount(ctx, userID, day)
	if err != nil {
		return nil, err
	}

	return &models.CapacityUsage{
		AICampaignsActive:   active,
		AICampaignLimit:     limit.Value,
		AddonSlotsAvailable: slots,
		DailyActionsUsed:    used,
		DailyActionsLimit:   s.cfg.DailyActionLimit,
	}, nil
}

// AssertAllowed выполняет упорядоченную цепочку проверок для включения AI
// на кампании. Порядок фиксирован: глобальный kill switch, флаг
// автоматизации, дневной счетчик, кулдаун кампании, живая подписка, лимит,
// затем попытка потребить слот.
func (s *Service) AssertAllowed(ctx context.Context, userID, campaignID string) (*models.EntitlementDecision, error) {
	runtimeFlags, err := s.flagsSvc.Get(ctx)
	if err != nil {
		return nil, err
	}
	if runtimeFlags.KillSwitch {
		return nil, app_errors.ErrKillSwitchEnabled
	}
	if !runtimeFlags.AIAutomationEnabled {
		return nil, app_errors.ErrAutomationDisabled
	}

	day := time.Now().UTC().Format("2006-01-02")
	actionCount, err := s.db.GetDailyActionCount(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if actionCount >= s.cfg.DailyActionLimit {
		return nil, &app_errors.RateLimitError{Limit: s.cfg.DailyActionLimit}
	}

	campaign, err := s.db.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.UserID != userID {
		return nil, app_errors.ErrCampaignNotFound
	}
	if campaign.LastAutoActionAt != nil {
		cooldown := time.Duration(s.cfg.AutomationCooldownMin) * time.Minute
		elapsed := time.Since(*campaign.LastAutoActionAt)
		if elapsed < cooldown {
			return nil, &app_errors.CooldownError{
				Resource:      campaignID,
				RetryAfterSec: int64((cooldown - elapsed).Seconds()),
			}
		}
	}

	sub, err := s.db.GetCurrentSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub.IsTerminal() {
		return nil, app_errors.ErrSubscriptionTerminal
	}

	limit, err := s.GetEffectiveLimit(ctx, userID, KeyCampaigns)
	if err != nil {
		return nil, err
	}
	activeCount, err := s.db.CountActiveAICampaigns(ctx, userID)
	if err != nil {
		return nil, err
	}

	if activeCount < limit.Value {
		if err := s.db.EnableCampaignAI(ctx, campaignID, time.Now()); err != nil {
			return nil, err
		}
		if err := s.db.IncrementDailyActionCount(ctx, userID, day); err != nil {
			s.log.Warn("failed to increment daily action counter", "error", err, "user_id", userID)
		}
		return &models.EntitlementDecision{
			Allowed:      true,
			Limit:        limit.Value,
			CurrentUsage: activeCount + 1,
		}, nil
	}

	// Лимит исчерпан: пробуем потребить слот. Потребление и включение
	// кампании выполняются одной транзакцией.
	slot, err := s.addonSvc.Reserve(ctx, userID, campaignID)
	if err != nil {
		return nil, err
	}
	if slot != nil {
		if err := s.db.IncrementDailyActionCount(ctx, userID, day); err != nil {
			s.log.Warn("failed to increment daily action counter", "error", err, "user_id", userID)
		}
		return &models.EntitlementDecision{
			Allowed:      true,
			UsedSlotID:   slot.SlotID,
			Limit:        limit.Value,
			CurrentUsage: activeCount + 1,
		}, nil
	}

	action := app_errors.ActionBuySlots
	if sub.IsTrial || sub.PlanID == "free" {
		action = app_errors.ActionUpgradePlan
	}
	return nil, &app_errors.CapacityError{
		Resource: KeyCampaigns,
		Limit:    limit.Value,
		Action:   action,
	}
}
