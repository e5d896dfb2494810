package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	// YDB configuration
	APYDBEndpoint         string
	APYDBDatabasePath     string
	APYDBAutoCreateTables int

	// S3/Storage configuration (invoice archive)
	S3Endpoint         string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	APInvoiceBucket    string

	// Telegram configuration
	TelegramBotToken    string
	TelegramAdminChatID string

	// JWT configuration
	JWTSecretKey string

	// Payment provider webhook configuration
	WebhookSecret          string
	WebhookSignatureHeader string

	// Email/Postbox configuration
	SESEndpoint        string
	SESRegion          string
	SESAccessKeyID     string
	SESSecretAccessKey string
	EmailFrom          string
	AppBillingURL      string

	// Plan configuration
	AICampaignLimitFree       int64
	AICampaignLimitPro        int64
	AICampaignLimitEnterprise int64
	AdAccountLimitFree        int64
	AdAccountLimitPro         int64
	AdAccountLimitEnterprise  int64
	PriceRubFree              float64
	PriceRubPro               float64
	PriceRubEnterprise        float64

	// Lifecycle windows
	TrialDays int
	GraceDays int

	// Enforcement configuration
	DailyActionLimit        int64
	AutomationCooldownMin   int
	FlagsRefreshIntervalSec int

	// HTTP configuration
	HTTPPort string
}

func Load() *Config {
	s3Endpoint := getEnv("S3_ENDPOINT", "https://storage.yandexcloud.net")
	// If the env var is set but is an empty string, it will override the default.
	// We must fall back to the default in that case to prevent errors.
	if s3Endpoint == "" {
		s3Endpoint = "https://storage.yandexcloud.net"
	}
	if !strings.HasPrefix(s3Endpoint, "http://") && !strings.HasPrefix(s3Endpoint, "https://") {
		s3Endpoint = "https://" + s3Endpoint
		log.Printf("WARN: S3_ENDPOINT was missing a protocol scheme. Prepending 'https://'. New endpoint: %s", s3Endpoint)
	}

	return &Config{
		// YDB configuration
		APYDBEndpoint:         getEnv("AP_YDB_ENDPOINT", ""),
		APYDBDatabasePath:     getEnv("AP_YDB_DATABASE_PATH", ""),
		APYDBAutoCreateTables: getEnvInt("AP_YDB_AUTO_CREATE_TABLES", 0, 0, 1),

		// S3/Storage configuration
		S3Endpoint:         s3Endpoint,
		AWSAccessKeyID:     getEnv("AP_SA_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AP_SA_KEY", ""),
		APInvoiceBucket:    getEnv("AP_INVOICE_BUCKET", "adpilot-invoices"),

		// Telegram configuration
		TelegramBotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramAdminChatID: getEnv("TELEGRAM_CHAT_ID", ""),

		// JWT configuration
		JWTSecretKey: getEnv("AP_JWT_SECRET_KEY", ""),

		// Payment provider webhook configuration
		WebhookSecret:          getEnv("AP_WEBHOOK_SECRET", ""),
		WebhookSignatureHeader: getEnv("AP_WEBHOOK_SIGNATURE_HEADER", "X-Webhook-Signature"),

		// Email/Postbox configuration
		SESEndpoint:        getEnv("AP_POSTBOX_ENDPOINT", ""),
		SESRegion:          getEnv("AP_POSTBOX_REGION", ""),
		SESAccessKeyID:     getEnv("AP_POSTBOX_ACCESS_KEY_ID", ""),
		SESSecretAccessKey: getEnv("AP_POSTBOX_SECRET_ACCESS_KEY", ""),
		EmailFrom:          getEnv("AP_EMAIL_FROM", ""),
		AppBillingURL:      getEnv("AP_APP_BILLING_URL", "https://app.adpilot.ru/billing"),

		// Plan configuration
		AICampaignLimitFree:       int64(getEnvInt("ai_campaign_limit_free", 1, 0, 10)),
		AICampaignLimitPro:        int64(getEnvInt("ai_campaign_limit_pro", 10, 0, 100)),
		AICampaignLimitEnterprise: int64(getEnvInt("ai_campaign_limit_enterprise", 100, 0, 1000)),
		AdAccountLimitFree:        int64(getEnvInt("ad_account_limit_free", 1, 0, 5)),
		AdAccountLimitPro:         int64(getEnvInt("ad_account_limit_pro", 5, 0, 50)),
		AdAccountLimitEnterprise:  int64(getEnvInt("ad_account_limit_enterprise", 50, 0, 500)),
		PriceRubFree:              float64(getEnvInt("price_rub_free", 0, 0, 1)),
		PriceRubPro:               float64(getEnvInt("price_rub_pro", 1990, 0, 1990)),
		PriceRubEnterprise:        float64(getEnvInt("price_rub_enterprise", 9990, 0, 9990)),

		// Lifecycle windows
		TrialDays: getEnvInt("AP_TRIAL_DAYS", 14, 1, 90),
		GraceDays: getEnvInt("AP_GRACE_DAYS", 7, 1, 30),

		// Enforcement configuration
		DailyActionLimit:        int64(getEnvInt("AP_DAILY_ACTION_LIMIT", 50, 1, 10000)),
		AutomationCooldownMin:   getEnvInt("AP_AUTOMATION_COOLDOWN_MIN", 30, 0, 1440),
		FlagsRefreshIntervalSec: getEnvInt("AP_FLAGS_REFRESH_SEC", 60, 5, 3600),

		// HTTP configuration
		HTTPPort: getEnv("AP_HTTP_PORT", "8080"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback, min, max int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			if n < min {
				return min
			}
			if n > max {
				return max
			}
			return n
		}
		log.Printf("WARN: %s=%q is not an integer, using default %d", key, v, fallback)
	}

	if fallback < min {
		return min
	}
	if fallback > max {
		return max
	}
	return fallback
}
