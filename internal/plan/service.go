package plan

import (
	"context"
	"time"

	"github.com/lumiforge/adpilot-backend/internal/config"
	"github.com/lumiforge/adpilot-backend/internal/models"
	"github.com/lumiforge/adpilot-backend/internal/ydb"
)

// Service реализует бизнес-логику для тарифных планов
type Service struct {
	db  ydb.Database
	cfg *config.Config
}

// NewService создает новый plan сервис
func NewService(db ydb.Database, cfg *config.Config) *Service {
	return &Service{
		db:  db,
		cfg: cfg,
	}
}

// GetAllPlans возвращает список всех доступных тарифных планов
func (s *Service) GetAllPlans(ctx context.Context) ([]*models.PlanResponse, error) {
	plans, err := s.db.GetAllPlans(ctx)
	if err != nil {
		return nil, err
	}

	response := make([]*models.PlanResponse, 0, len(plans))
	for _, plan := range plans {
		response = append(response, &models.PlanResponse{
			PlanID:          plan.PlanID,
			Name:            plan.Name,
			AICampaignLimit: plan.AICampaignLimit,
			AdAccountLimit:  plan.AdAccountLimit,
			PriceRub:        plan.PriceRub,
			BillingCycle:    plan.BillingCycle,
			TrialDays:       plan.TrialDays,
		})
	}

	return response, nil
}

// GetPlan возвращает тарифный план по идентификатору
func (s *Service) GetPlan(ctx context.Context, planID string) (*ydb.Plan, error) {
	return s.db.GetPlanByID(ctx, planID)
}

// SeedPlans записывает тарифы из конфигурации. Вызывается на старте,
// существующие записи перезаписываются.
func (s *Service) SeedPlans(ctx context.Context) error {
	now := time.Now()
	plans := []*ydb.Plan{
		{
			PlanID:          "free",
			Name:            "Free",
			AICampaignLimit: s.cfg.AICampaignLimitFree,
			AdAccountLimit:  s.cfg.AdAccountLimitFree,
			PriceRub:        s.cfg.PriceRubFree,
			BillingCycle:    "monthly",
			TrialDays:       int64(s.cfg.TrialDays),
			CreatedAt:       now,
		},
		{
			PlanID:          "pro",
			Name:            "Pro",
			AICampaignLimit: s.cfg.AICampaignLimitPro,
			AdAccountLimit:  s.cfg.AdAccountLimitPro,
			PriceRub:        s.cfg.PriceRubPro,
			BillingCycle:    "monthly",
			TrialDays:       int64(s.cfg.TrialDays),
			CreatedAt:       now,
		},
		{
			PlanID:          "enterprise",
			Name:            "Enterprise",
			AICampaignLimit: s.cfg.AICampaignLimitEnterprise,
			AdAccountLimit:  s.cfg.AdAccountLimitEnterprise,
			PriceRub:        s.cfg.PriceRubEnterprise,
			BillingCycle:    "monthly",
			TrialDays:       int64(s.cfg.TrialDays),
			CreatedAt:       now,
		},
	}

	for _, p := range plans {
		if err := s.db.UpsertPlan(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
