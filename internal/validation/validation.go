package validation

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	app_errors "github.com/lumiforge/adpilot-backend/internal/errors"
)

// OverrideKeys перечисляет допустимые ключи лимитных оверрайдов
var OverrideKeys = map[string]bool{
	"campaigns":    true,
	"ad_accounts":  true,
	"team_members": true,
	"credits":      true,
}

// ValidateOverrideKey проверяет ключ оверрайда
func ValidateOverrideKey(key string) error {
	if !OverrideKeys[key] {
		return app_errors.ValidationError{
			Field:   "key",
			Message: "must be one of: campaigns, ad_accounts, team_members, credits",
		}
	}
	return nil
}

// ValidateReason проверяет, что административное действие сопровождается причиной
func ValidateReason(reason string) error {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return app_errors.ValidationError{
			Field:   "reason",
			Message: "is required",
		}
	}
	if utf8.RuneCountInString(trimmed) > 500 {
		return app_errors.ValidationError{
			Field:   "reason",
			Message: "must be less than 500 characters",
		}
	}
	return nil
}

// ValidateEmail проверяет корректность email адреса
func ValidateEmail(email string) bool {
	if len(email) < 5 || len(email) > 254 {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}

// ValidateLimitValue проверяет значение лимита
func ValidateLimitValue(value int64) error {
	if value < 0 {
		return app_errors.ValidationError{
			Field:   "value",
			Message: "must be non-negative",
		}
	}
	if value > 1_000_000 {
		return app_errors.ValidationError{
			Field:   "value",
			Message: "must be less than 1000000",
		}
	}
	return nil
}
