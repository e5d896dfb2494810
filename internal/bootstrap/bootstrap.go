package bootstrap

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/lumiforge/adpilot-backend/internal/addon"
	"github.com/lumiforge/adpilot-backend/internal/audit"
	"github.com/lumiforge/adpilot-backend/internal/auth"
	"github.com/lumiforge/adpilot-backend/internal/billing"
	"github.com/lumiforge/adpilot-backend/internal/config"
	"github.com/lumiforge/adpilot-backend/internal/email"
	"github.com/lumiforge/adpilot-backend/internal/entitlement"
	app_errors "github.com/lumiforge/adpilot-backend/internal/errors"
	"github.com/lumiforge/adpilot-backend/internal/flags"
	httpserver "github.com/lumiforge/adpilot-backend/internal/http"
	"github.com/lumiforge/adpilot-backend/internal/jwt"
	"github.com/lumiforge/adpilot-backend/internal/logger"
	"github.com/lumiforge/adpilot-backend/internal/override"
	"github.com/lumiforge/adpilot-backend/internal/plan"
	"github.com/lumiforge/adpilot-backend/internal/rbac"
	"github.com/lumiforge/adpilot-backend/internal/storage"
	"github.com/lumiforge/adpilot-backend/internal/subscription"
	"github.com/lumiforge/adpilot-backend/internal/telegram"
	"github.com/lumiforge/adpilot-backend/internal/ydb"
)

// App собирает готовые к работе компоненты приложения
type App struct {
	Router        http.Handler
	Subscriptions *subscription.Service
	Config        *config.Config
	DB            *ydb.YDBClient
}

// Initialize настраивает все зависимости и возвращает собранное приложение
func Initialize(ctx context.Context) (*App, error) {
	// Загрузка конфигурации
	cfg := config.Load()

	// Инициализация Telegram клиента
	tgClient := telegram.NewClient(cfg)

	// Инициализация логгера
	log := logger.New(tgClient)
	slog.SetDefault(log)

	// Инициализация YDB
	db, err := ydb.NewYDBClient(ctx, cfg)
	if err != nil {
		return nil, app_errors.ErrFailedToConnectYDB
	}

	// Создание таблиц и сидинг каталога планов
	if err := db.Initialize(ctx); err != nil {
		return nil, err
	}

	// Инициализация JWT менеджера
	jwtManager := jwt.NewJWTManager(cfg)
	if jwtManager == nil {
		return nil, app_errors.ErrJWTSecretKeyNotConfigured
	}

	// Инициализация RBAC
	rbacManager := rbac.NewRBAC()

	// Инициализация email клиента
	emailClient := email.NewClient(cfg)

	// Инициализация сервисов
	auditService := audit.NewService(db, log)
	authService := auth.NewService(db, jwtManager, rbacManager)
	planService := plan.NewService(db, cfg)
	subscriptionService := subscription.NewService(db, auditService, cfg, log)
	addonService := addon.NewService(db, auditService, log)
	overrideService := override.NewService(db, auditService, log)
	flagsService := flags.NewService(db, auditService, cfg, log)
	entitlementService := entitlement.NewService(db, addonService, flagsService, cfg, log)

	if err := planService.SeedPlans(ctx); err != nil {
		return nil, err
	}

	// S3 архив счетов опционален: без бакета работаем без архивирования
	var archiver billing.InvoiceArchiver
	if cfg.APInvoiceBucket != "" {
		storageClient, err := storage.NewClient(ctx, cfg)
		if err != nil {
			return nil, app_errors.ErrFailedToInitStorageClient
		}
		archiver = storageClient
	} else {
		slog.Warn("Invoice bucket is not configured, invoice archiving is disabled")
	}

	billingService := billing.NewService(db, subscriptionService, addonService, archiver, emailClient, auditService, cfg, log)

	// Инициализация HTTP сервера
	server := httpserver.NewServer(authService, planService, subscriptionService,
		entitlementService, addonService, overrideService, billingService,
		flagsService, auditService, cfg)

	// Настройка роутера
	router := httpserver.SetupRouter(server, jwtManager)

	slog.Info("Application initialized successfully")
	return &App{
		Router:        router,
		Subscriptions: subscriptionService,
		Config:        cfg,
		DB:            db,
	}, nil
}
