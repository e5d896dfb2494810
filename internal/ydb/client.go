package ydb

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lumiforge/adpilot-backend/internal/config"
	app_errors "github.com/lumiforge/adpilot-backend/internal/errors"
	"github.com/ydb-platform/ydb-go-sdk/v3"
	"github.com/ydb-platform/ydb-go-sdk/v3/table"
	"github.com/ydb-platform/ydb-go-sdk/v3/table/result/named"
	"github.com/ydb-platform/ydb-go-sdk/v3/table/types"
	yc "github.com/ydb-platform/ydb-go-yc"
)

// YDBClient реализация интерфейса Database
type YDBClient struct {
	driver       *ydb.Driver
	databasePath string
}

// NewYDBClient создает новый клиент YDB
func NewYDBClient(ctx context.Context, cfg *config.Config) (*YDBClient, error) {
	endpoint := cfg.APYDBEndpoint
	database := cfg.APYDBDatabasePath

	if endpoint == "" || database == "" {
		return nil, fmt.Errorf("YDB credentials not provided. Please set AP_YDB_ENDPOINT and AP_YDB_DATABASE_PATH environment variables")
	}

	driver, err := ydb.Open(ctx, endpoint,
		ydb.WithDatabase(database),
		yc.WithMetadataCredentials(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to YDB: %w", err)
	}

	log.Println("Successfully connected to YDB")

	client := &YDBClient{
		driver:       driver,
		databasePath: database,
	}

	// Создаём таблицы только если флаг установлен
	if cfg.APYDBAutoCreateTables > 0 {
		log.Println("AP_YDB_AUTO_CREATE_TABLES is enabled, checking and creating tables...")
		err = client.createTables(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
	}

	return client, nil
}

// Close закрывает соединение с базой данных
func (c *YDBClient) Close() error {
	if c.driver != nil {
		return c.driver.Close(context.Background())
	}
	return nil
}

// Initialize создает таблицы в базе данных
func (c *YDBClient) Initialize(ctx context.Context) error {
	// Таблицы уже создаются в createTables
	return nil
}

// tableSchemas описывает таблицы подсистемы биллинга и контроля лимитов
var tableSchemas = []struct {
	name  string
	query string
}{
	{"users", `
		CREATE TABLE users (
			user_id Text NOT NULL,
			email Text NOT NULL,
			password_hash Text NOT NULL,
			full_name Text,
			role Text,
			is_active Bool,
			created_at Timestamp,
			updated_at Timestamp,
			PRIMARY KEY (user_id),
			INDEX email_idx GLOBAL UNIQUE ON (email) COVER (password_hash, full_name, role, is_active)
		)
	`},
	{"plans", `
		CREATE TABLE plans (
			plan_id Text NOT NULL,
			name Text,
			ai_campaign_limit Int64,
			ad_account_limit Int64,
			price_rub Double,
			billing_cycle Text,
			trial_days Int64,
			created_at Timestamp,
			updated_at Timestamp,
			PRIMARY KEY (plan_id)
		)
	`},
	{"subscriptions", `
		CREATE TABLE subscriptions (
			subscription_id Text NOT NULL,
			user_id Text NOT NULL,
			plan_id Text NOT NULL,
			status Text NOT NULL,
			billing_cycle Text,
			starts_at Timestamp,
			ends_at Timestamp,
			grace_ends_at Optional<Timestamp>,
			ai_campaign_limit Int64,
			ad_account_limit Int64,
			is_trial Bool,
			created_by_admin Bool,
			assigned_by_admin Optional<Text>,
			payment_id Optional<Text>,
			created_at Timestamp,
			updated_at Timestamp,
			PRIMARY KEY (subscription_id),
			INDEX user_status_idx GLOBAL ON (user_id, status),
			INDEX payment_idx GLOBAL ON (payment_id)
		)
	`},
	{"addon_slots", `
		CREATE TABLE addon_slots (
			slot_id Text NOT NULL,
			user_id Text NOT NULL,
			extra_capacity Int64,
			purchased_at Timestamp,
			expires_at Timestamp,
			consumed_by_resource_id Optional<Text>,
			consumed_at Optional<Timestamp>,
			payment_id Optional<Text>,
			created_at Timestamp,
			updated_at Timestamp,
			PRIMARY KEY (slot_id),
			INDEX owner_idx GLOBAL ON (user_id, purchased_at)
		)
	`},
	{"usage_overrides", `
		CREATE TABLE usage_overrides (
			user_id Text NOT NULL,
			override_key Text NOT NULL,
			override_value Int64,
			expires_at Optional<Timestamp>,
			updated_by Text,
			created_at Timestamp,
			updated_at Timestamp,
			PRIMARY KEY (user_id, override_key)
		)
	`},
	{"payments", `
		CREATE TABLE payments (
			payment_id Text NOT NULL,
			user_id Text NOT NULL,
			provider_order_id Text NOT NULL,
			provider_payment_id Optional<Text>,
			amount_rub Double,
			status Text NOT NULL,
			payment_for Text,
			related_reference_id Optional<Text>,
			created_at Timestamp,
			updated_at Timestamp,
			captured_at Optional<Timestamp>,
			PRIMARY KEY (payment_id),
			INDEX provider_order_idx GLOBAL UNIQUE ON (provider_order_id)
		)
	`},
	{"invoices", `
		CREATE TABLE invoices (
			invoice_id Text NOT NULL,
			payment_id Text NOT NULL,
			user_id Text NOT NULL,
			subscription_id Text NOT NULL,
			amount_rub Double,
			status Text NOT NULL,
			issued_at Timestamp,
			updated_at Timestamp,
			archive_key Optional<Text>,
			PRIMARY KEY (invoice_id),
			INDEX payment_idx GLOBAL UNIQUE ON (payment_id),
			INDEX user_idx GLOBAL ON (user_id)
		)
	`},
	{"campaigns", `
		CREATE TABLE campaigns (
			campaign_id Text NOT NULL,
			user_id Text NOT NULL,
			ad_account_id Text,
			name Text,
			ai_enabled Bool,
			last_auto_action_at Optional<Timestamp>,
			created_at Timestamp,
			updated_at Timestamp,
			PRIMARY KEY (campaign_id),
			INDEX user_idx GLOBAL ON (user_id)
		)
	`},
	{"action_counters", `
		CREATE TABLE action_counters (
			user_id Text NOT NULL,
			day Text NOT NULL,
			action_count Int64,
			updated_at Timestamp,
			PRIMARY KEY (user_id, day)
		)
	`},
	{"runtime_flags", `
		CREATE TABLE runtime_flags (
			flag_id Text NOT NULL,
			kill_switch Bool,
			ai_automation_enabled Bool,
			version Int64,
			updated_by Text,
			updated_at Timestamp,
			PRIMARY KEY (flag_id)
		)
	`},
	{"audit_logs", `
		CREATE TABLE audit_logs (
			id Text NOT NULL,
			timestamp Timestamp,
			user_id Optional<Text>,
			actor_id Optional<Text>,
			action_type Text NOT NULL,
			action_result Text NOT NULL,
			ip_address Optional<Text>,
			user_agent Optional<Text>,
			details Json,
			PRIMARY KEY (id),
			INDEX user_idx GLOBAL ON (user_id),
			INDEX actor_idx GLOBAL ON (actor_id)
		)
	`},
	{"email_logs", `
		CREATE TABLE email_logs (
			email_id Text NOT NULL,
			user_id Text NOT NULL,
			email_type Text,
			recipient Text,
			status Text,
			postbox_message_id Text,
			sent_at Timestamp,
			delivered_at Optional<Timestamp>,
			error_message Optional<Text>,
			PRIMARY KEY (email_id),
			INDEX user_idx GLOBAL ON (user_id)
		)
	`},
}

// createTables создает таблицы в базе данных
func (c *YDBClient) createTables(ctx context.Context) error {
	log.Println("Starting table creation...")
	for _, schema := range tableSchemas {
		log.Printf("Creating table: %s", schema.name)
		exists, err := c.tableExists(ctx, schema.name)
		if err != nil {
			return fmt.Errorf("failed to check %s table existence: %w", schema.name, err)
		}
		if exists {
			log.Printf("Table %s already exists, skipping creation", schema.name)
			continue
		}
		if err := c.executeSchemeQuery(ctx, schema.query); err != nil {
			return fmt.Errorf("failed to create %s table: %w", schema.name, err)
		}
		// Небольшая задержка между созданием таблиц для избежания лимита schema operations
		time.Sleep(500 * time.Millisecond)
	}
	return nil
}

// tableExists проверяет существование таблицы
func (c *YDBClient) tableExists(ctx context.Context, tableName string) (bool, error) {
	exists := false
	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, err := session.DescribeTable(ctx, c.databasePath+"/"+tableName)
		if err == nil {
			exists = true
		}
		return nil
	})
	return exists, err
}

// executeSchemeQuery выполняет DDL запрос
func (c *YDBClient) executeSchemeQuery(ctx context.Context, query string) error {
	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		return session.ExecuteSchemeQuery(ctx, query)
	})
}

// executeQuery выполняет запрос без параметров
func (c *YDBClient) executeQuery(ctx context.Context, query string) error {
	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query, table.NewQueryParameters())
		return err
	})
}

func optionalText(name string, v *string) table.ParameterOption {
	if v == nil {
		return table.ValueParam(name, types.NullValue(types.TypeText))
	}
	return table.ValueParam(name, types.OptionalValue(types.TextValue(*v)))
}

func optionalTimestamp(name string, v *time.Time) table.ParameterOption {
	if v == nil {
		return table.ValueParam(name, types.NullValue(types.TypeTimestamp))
	}
	return table.ValueParam(name, types.OptionalValue(types.TimestampValueFromTime(*v)))
}

// CreateUser создает нового пользователя
func (c *YDBClient) CreateUser(ctx context.Context, user *User) error {
	query := `
		DECLARE $user_id AS Text;
		DECLARE $email AS Text;
		DECLARE $password_hash AS Text;
		DECLARE $full_name AS Text;
		DECLARE $role AS Text;
		DECLARE $is_active AS Bool;
		DECLARE $created_at AS Timestamp;
		DECLARE $updated_at AS Timestamp;

		UPSERT INTO users (
			user_id, email, password_hash, full_name, role, is_active, created_at, updated_at
		) VALUES ($user_id, $email, $password_hash, $full_name, $role, $is_active, $created_at, $updated_at)
	`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$user_id", types.TextValue(user.UserID)),
				table.ValueParam("$email", types.TextValue(user.Email)),
				table.ValueParam("$password_hash", types.TextValue(user.PasswordHash)),
				table.ValueParam("$full_name", types.TextValue(user.FullName)),
				table.ValueParam("$role", types.TextValue(user.Role)),
				table.ValueParam("$is_active", types.BoolValue(user.IsActive)),
				table.ValueParam("$created_at", types.TimestampValueFromTime(user.CreatedAt)),
				table.ValueParam("$updated_at", types.TimestampValueFromTime(user.UpdatedAt)),
			),
		)
		return err
	})
}

func (c *YDBClient) scanUser(ctx context.Context, query string, params *table.QueryParameters) (*User, error) {
	var user User
	var found bool

	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query, params)
		if err != nil {
			return err
		}
		defer res.Close()

		if res.NextResultSet(ctx) && res.NextRow() {
			found = true
			err := res.ScanNamed(
				named.Required("user_id", &user.UserID),
				named.Required("email", &user.Email),
				named.Required("password_hash", &user.PasswordHash),
				named.OptionalWithDefault("full_name", &user.FullName),
				named.OptionalWithDefault("role", &user.Role),
				named.OptionalWithDefault("is_active", &user.IsActive),
				named.OptionalWithDefault("created_at", &user.CreatedAt),
				named.OptionalWithDefault("updated_at", &user.UpdatedAt),
			)
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
		}
		return res.Err()
	})

	if err != nil {
		return nil, err
	}
	if !found {
		return nil, app_errors.ErrUserNotFound
	}
	return &user, nil
}

// GetUserByID получает пользователя по идентификатору
func (c *YDBClient) GetUserByID(ctx context.Context, userID string) (*User, error) {
	query := `
		DECLARE $user_id AS Text;
		SELECT user_id, email, password_hash, full_name, role, is_active, created_at, updated_at
		FROM users
		WHERE user_id = $user_id
	`
	return c.scanUser(ctx, query, table.NewQueryParameters(
		table.ValueParam("$user_id", types.TextValue(userID)),
	))
}

// GetUserByEmail получает пользователя по email
func (c *YDBClient) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		DECLARE $email AS Text;
		SELECT user_id, email, password_hash, full_name, role, is_active, created_at, updated_at
		FROM users VIEW email_idx
		WHERE email = $email
	`
	return c.scanUser(ctx, query, table.NewQueryParameters(
		table.ValueParam("$email", types.TextValue(email)),
	))
}

// UpsertPlan создает или обновляет тарифный план
func (c *YDBClient) UpsertPlan(ctx context.Context, plan *Plan) error {
	query := `
		DECLARE $plan_id AS Text;
		DECLARE $name AS Text;
		DECLARE $ai_campaign_limit AS Int64;
		DECLARE $ad_account_limit AS Int64;
		DECLARE $price_rub AS Double;
		DECLARE $billing_cycle AS Text;
		DECLARE $trial_days AS Int64;
		DECLARE $created_at AS Timestamp;
		DECLARE $updated_at AS Timestamp;

		UPSERT INTO plans (
			plan_id, name, ai_campaign_limit, ad_account_limit, price_rub, billing_cycle, trial_days, created_at, updated_at
		) VALUES ($plan_id, $name, $ai_campaign_limit, $ad_account_limit, $price_rub, $billing_cycle, $trial_days, $created_at, $updated_at)
	`

	now := time.Now()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = now
	}
	plan.UpdatedAt = now

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$plan_id", types.TextValue(plan.PlanID)),
				table.ValueParam("$name", types.TextValue(plan.Name)),
				table.ValueParam("$ai_campaign_limit", types.Int64Value(plan.AICampaignLimit)),
				table.ValueParam("$ad_account_limit", types.Int64Value(plan.AdAccountLimit)),
				table.ValueParam("$price_rub", types.DoubleValue(plan.PriceRub)),
				table.ValueParam("$billing_cycle", types.TextValue(plan.BillingCycle)),
				table.ValueParam("$trial_days", types.Int64Value(plan.TrialDays)),
				table.ValueParam("$created_at", types.TimestampValueFromTime(plan.CreatedAt)),
				table.ValueParam("$updated_at", types.TimestampValueFromTime(plan.UpdatedAt)),
			),
		)
		return err
	})
}

func scanPlanRow(res interface {
	ScanNamed(...named.Value) error
}, plan *Plan) error {
	return res.ScanNamed(
		named.Required("plan_id", &plan.PlanID),
		named.OptionalWithDefault("name", &plan.Name),
		named.OptionalWithDefault("ai_campaign_limit", &plan.AICampaignLimit),
		named.OptionalWithDefault("ad_account_limit", &plan.AdAccountLimit),
		named.OptionalWithDefault("price_rub", &plan.PriceRub),
		named.OptionalWithDefault("billing_cycle", &plan.BillingCycle),
		named.OptionalWithDefault("trial_days", &plan.TrialDays),
		named.OptionalWithDefault("created_at", &plan.CreatedAt),
		named.OptionalWithDefault("updated_at", &plan.UpdatedAt),
	)
}

// GetPlanByID получает тарифный план по идентификатору
func (c *YDBClient) GetPlanByID(ctx context.Context, planID string) (*Plan, error) {
	query := `
		DECLARE $plan_id AS Text;
		SELECT plan_id, name, ai_campaign_limit, ad_account_limit, price_rub, billing_cycle, trial_days, created_at, updated_at
		FROM plans
		WHERE plan_id = $plan_id
	`

	var plan Plan
	var found bool

	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$plan_id", types.TextValue(planID)),
			),
		)
		if err != nil {
			return err
		}
		defer res.Close()

		if res.NextResultSet(ctx) && res.NextRow() {
			found = true
			if err := scanPlanRow(res, &plan); err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
		}
		return res.Err()
	})

	if err != nil {
		return nil, err
	}
	if !found {
		return nil, app_errors.ErrPlanNotFound
	}
	return &plan, nil
}

// GetAllPlans возвращает все тарифные планы
func (c *YDBClient) GetAllPlans(ctx context.Context) ([]*Plan, error) {
	query := `
		SELECT plan_id, name, ai_campaign_limit, ad_account_limit, price_rub, billing_cycle, trial_days, created_at, updated_at
		FROM plans
		ORDER BY price_rub ASC
	`

	var plans []*Plan

	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query, table.NewQueryParameters())
		if err != nil {
			return err
		}
		defer res.Close()

		for res.NextResultSet(ctx) {
			for res.NextRow() {
				var plan Plan
				if err := scanPlanRow(res, &plan); err != nil {
					return fmt.Errorf("scan failed: %w", err)
				}
				plans = append(plans, &plan)
			}
		}
		return res.Err()
	})

	if err != nil {
		return nil, err
	}
	return plans, nil
}

const subscriptionColumns = `subscription_id, user_id, plan_id, status, billing_cycle, starts_at, ends_at, grace_ends_at,
			ai_campaign_limit, ad_account_limit, is_trial, created_by_admin, assigned_by_admin, payment_id, created_at, updated_at`

func scanSubscriptionRow(res interface {
	ScanNamed(...named.Value) error
}, sub *Subscription) error {
	return res.ScanNamed(
		named.Required("subscription_id", &sub.SubscriptionID),
		named.Required("user_id", &sub.UserID),
		named.Required("plan_id", &sub.PlanID),
		named.Required("status", &sub.Status),
		named.OptionalWithDefault("billing_cycle", &sub.BillingCycle),
		named.OptionalWithDefault("starts_at", &sub.StartsAt),
		named.OptionalWithDefault("ends_at", &sub.EndsAt),
		named.Optional("grace_ends_at", &sub.GraceEndsAt),
		named.OptionalWithDefault("ai_campaign_limit", &sub.AICampaignLimit),
		named.OptionalWithDefault("ad_account_limit", &sub.AdAccountLimit),
		named.OptionalWithDefault("is_trial", &sub.IsTrial),
		named.OptionalWithDefault("created_by_admin", &sub.CreatedByAdmin),
		named.Optional("assigned_by_admin", &sub.AssignedByAdmin),
		named.Optional("payment_id", &sub.PaymentID),
		named.OptionalWithDefault("created_at", &sub.CreatedAt),
		named.OptionalWithDefault("updated_at", &sub.UpdatedAt),
	)
}

func subscriptionParams(sub *Subscription) *table.QueryParameters {
	return table.NewQueryParameters(
		table.ValueParam("$subscription_id", types.TextValue(sub.SubscriptionID)),
		table.ValueParam("$user_id", types.TextValue(sub.UserID)),
		table.ValueParam("$plan_id", types.TextValue(sub.PlanID)),
		table.ValueParam("$status", types.TextValue(sub.Status)),
		table.ValueParam("$billing_cycle", types.TextValue(sub.BillingCycle)),
		table.ValueParam("$starts_at", types.TimestampValueFromTime(sub.StartsAt)),
		table.ValueParam("$ends_at", types.TimestampValueFromTime(sub.EndsAt)),
		optionalTimestamp("$grace_ends_at", sub.GraceEndsAt),
		table.ValueParam("$ai_campaign_limit", types.Int64Value(sub.AICampaignLimit)),
		table.ValueParam("$ad_account_limit", types.Int64Value(sub.AdAccountLimit)),
		table.ValueParam("$is_trial", types.BoolValue(sub.IsTrial)),
		table.ValueParam("$created_by_admin", types.BoolValue(sub.CreatedByAdmin)),
		optionalText("$assigned_by_admin", sub.AssignedByAdmin),
		optionalText("$payment_id", sub.PaymentID),
		table.ValueParam("$created_at", types.TimestampValueFromTime(sub.CreatedAt)),
		table.ValueParam("$updated_at", types.TimestampValueFromTime(sub.UpdatedAt)),
	)
}

const subscriptionDeclares = `
		DECLARE $subscription_id AS Text;
		DECLARE $user_id AS Text;
		DECLARE $plan_id AS Text;
		DECLARE $status AS Text;
		DECLARE $billing_cycle AS Text;
		DECLARE $starts_at AS Timestamp;
		DECLARE $ends_at AS Timestamp;
		DECLARE $grace_ends_at AS Optional<Timestamp>;
		DECLARE $ai_campaign_limit AS Int64;
		DECLARE $ad_account_limit AS Int64;
		DECLARE $is_trial AS Bool;
		DECLARE $created_by_admin AS Bool;
		DECLARE $assigned_by_admin AS Optional<Text>;
		DECLARE $payment_id AS Optional<Text>;
		DECLARE $created_at AS Timestamp;
		DECLARE $updated_at AS Timestamp;
`

// CreateSubscription создает новую подписку
func (c *YDBClient) CreateSubscription(ctx context.Context, sub *Subscription) error {
	query := subscriptionDeclares + `
		UPSERT INTO subscriptions (` + subscriptionColumns + `)
		VALUES ($subscription_id, $user_id, $plan_id, $status, $billing_cycle, $starts_at, $ends_at, $grace_ends_at,
			$ai_campaign_limit, $ad_account_limit, $is_trial, $created_by_admin, $assigned_by_admin, $payment_id, $created_at, $updated_at)
	`

	now := time.Now()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query, subscriptionParams(sub))
		return err
	})
}

func (c *YDBClient) scanSubscription(ctx context.Context, query string, params *table.QueryParameters) (*Subscription, error) {
	var sub Subscription
	var found bool

	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query, params)
		if err != nil {
			return err
		}
		defer res.Close()

		if res.NextResultSet(ctx) && res.NextRow() {
			found = true
			if err := scanSubscriptionRow(res, &sub); err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
		}
		return res.Err()
	})

	if err != nil {
		return nil, err
	}
	if !found {
		return nil, app_errors.ErrSubscriptionNotFound
	}
	return &sub, nil
}

// GetSubscriptionByID получает подписку по идентификатору
func (c *YDBClient) GetSubscriptionByID(ctx context.Context, subscriptionID string) (*Subscription, error) {
	query := `
		DECLARE $subscription_id AS Text;
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE subscription_id = $subscription_id
	`
	return c.scanSubscription(ctx, query, table.NewQueryParameters(
		table.ValueParam("$subscription_id", types.TextValue(subscriptionID)),
	))
}

// GetCurrentSubscription получает нетерминальную подписку пользователя
func (c *YDBClient) GetCurrentSubscription(ctx context.Context, userID string) (*Subscription, error) {
	query := `
		DECLARE $user_id AS Text;
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE user_id = $user_id AND status IN ('trial', 'active', 'grace')
		ORDER BY created_at DESC
		LIMIT 1
	`
	return c.scanSubscription(ctx, query, table.NewQueryParameters(
		table.ValueParam("$user_id", types.TextValue(userID)),
	))
}

// GetSubscriptionByPaymentID получает подписку, ссылающуюся на платеж
func (c *YDBClient) GetSubscriptionByPaymentID(ctx context.Context, paymentID string) (*Subscription, error) {
	query := `
		DECLARE $payment_id AS Text;
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE payment_id = $payment_id
		LIMIT 1
	`
	return c.scanSubscription(ctx, query, table.NewQueryParameters(
		table.ValueParam("$payment_id", types.TextValue(paymentID)),
	))
}

// UpdateSubscriptionStatus обновляет статус подписки
func (c *YDBClient) UpdateSubscriptionStatus(ctx context.Context, subscriptionID, status string, graceEndsAt *time.Time) error {
	query := `
		DECLARE $subscription_id AS Text;
		DECLARE $status AS Text;
		DECLARE $grace_ends_at AS Optional<Timestamp>;
		DECLARE $updated_at AS Timestamp;

		UPDATE subscriptions
		SET status = $status, grace_ends_at = $grace_ends_at, updated_at = $updated_at
		WHERE subscription_id = $subscription_id
	`

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$subscription_id", types.TextValue(subscriptionID)),
				table.ValueParam("$status", types.TextValue(status)),
				optionalTimestamp("$grace_ends_at", graceEndsAt),
				table.ValueParam("$updated_at", types.TimestampValueFromTime(time.Now())),
			),
		)
		return err
	})
}

// ActivatePaidTx атомарно деактивирует текущую нетерминальную подписку
// пользователя, вставляет новую активную подписку и счет. Все шаги
// выполняются в одной serializable транзакции: сбой в любом месте
// откатывает всё. Перед записью транзакция перечитывает ссылку на платеж:
// если подписка с этим payment_id уже есть, возвращается
// ErrSubscriptionAlreadyActivated и ничего не пишется. Из двух
// конкурентных активаций одного платежа коммитит ровно одна.
func (c *YDBClient) ActivatePaidTx(ctx context.Context, sub *Subscription, invoice *Invoice) error {
	checkQuery := `
		DECLARE $payment_id AS Text;
		SELECT subscription_id
		FROM subscriptions
		WHERE payment_id = $payment_id
		LIMIT 1
	`
	query := subscriptionDeclares + `
		DECLARE $invoice_id AS Text;
		DECLARE $invoice_amount AS Double;
		DECLARE $invoice_status AS Text;
		DECLARE $issued_at AS Timestamp;
		DECLARE $inv_payment_id AS Text;

		UPDATE subscriptions
		SET status = 'expired', updated_at = $updated_at
		WHERE user_id = $user_id AND status IN ('trial', 'active', 'grace');

		UPSERT INTO subscriptions (` + subscriptionColumns + `)
		VALUES ($subscription_id, $user_id, $plan_id, $status, $billing_cycle, $starts_at, $ends_at, $grace_ends_at,
			$ai_campaign_limit, $ad_account_limit, $is_trial, $created_by_admin, $assigned_by_admin, $payment_id, $created_at, $updated_at);

		UPSERT INTO invoices (invoice_id, payment_id, user_id, subscription_id, amount_rub, status, issued_at, updated_at)
		VALUES ($invoice_id, $inv_payment_id, $user_id, $subscription_id, $invoice_amount, $invoice_status, $issued_at, $updated_at);
	`

	now := time.Now()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now

	params := subscriptionParams(sub)
	params.Add(
		table.ValueParam("$invoice_id", types.TextValue(invoice.InvoiceID)),
		table.ValueParam("$invoice_amount", types.DoubleValue(invoice.AmountRub)),
		table.ValueParam("$invoice_status", types.TextValue(invoice.Status)),
		table.ValueParam("$issued_at", types.TimestampValueFromTime(invoice.IssuedAt)),
		table.ValueParam("$inv_payment_id", types.TextValue(invoice.PaymentID)),
	)

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		tx, err := session.BeginTransaction(ctx, table.TxSettings(table.WithSerializableReadWrite()))
		if err != nil {
			return err
		}
		defer func() {
			_ = tx.Rollback(ctx)
		}()

		res, err := tx.Execute(ctx, checkQuery, table.NewQueryParameters(
			table.ValueParam("$payment_id", types.TextValue(invoice.PaymentID)),
		))
		if err != nil {
			return err
		}
		exists := res.NextResultSet(ctx) && res.NextRow()
		if err := res.Err(); err != nil {
			res.Close()
			return err
		}
		res.Close()
		if exists {
			return app_errors.ErrSubscriptionAlreadyActivated
		}

		if _, err := tx.Execute(ctx, query, params); err != nil {
			return err
		}
		_, err = tx.CommitTx(ctx)
		return err
	})
}

// ExpireGraceSweep переводит в expired все подписки в статусе grace с
// истекшим grace_ends_at. Выборка и обновление идут в одной транзакции,
// поэтому повторный запуск на том же состоянии не затрагивает ни одной строки.
func (c *YDBClient) ExpireGraceSweep(ctx context.Context, now time.Time) ([]string, error) {
	selectQuery := `
		DECLARE $now AS Timestamp;
		SELECT subscription_id
		FROM subscriptions
		WHERE status = 'grace' AND grace_ends_at < $now
	`
	updateQuery := `
		DECLARE $now AS Timestamp;
		UPDATE subscriptions
		SET status = 'expired', updated_at = $now
		WHERE status = 'grace' AND grace_ends_at < $now
	`

	var expired []string

	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		expired = expired[:0]

		tx, err := session.BeginTransaction(ctx, table.TxSettings(table.WithSerializableReadWrite()))
		if err != nil {
			return err
		}
		defer func() {
			_ = tx.Rollback(ctx)
		}()

		params := table.NewQueryParameters(
			table.ValueParam("$now", types.TimestampValueFromTime(now)),
		)

		res, err := tx.Execute(ctx, selectQuery, params)
		if err != nil {
			return err
		}
		for res.NextResultSet(ctx) {
			for res.NextRow() {
				var id string
				if err := res.ScanNamed(named.Required("subscription_id", &id)); err != nil {
					res.Close()
					return fmt.Errorf("scan failed: %w", err)
				}
				expired = append(expired, id)
			}
		}
		if err := res.Err(); err != nil {
			res.Close()
			return err
		}
		res.Close()

		if len(expired) > 0 {
			if _, err := tx.Execute(ctx, updateQuery, params); err != nil {
				return err
			}
		}

		_, err = tx.CommitTx(ctx)
		return err
	})

	if err != nil {
		return nil, err
	}
	return expired, nil
}
