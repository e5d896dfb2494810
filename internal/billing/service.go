package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lumiforge/adpilot-backend/internal/audit"
	"github.com/lumiforge/adpilot-backend/internal/config"
	"github.com/lumiforge/adpilot-backend/internal/email"
	app_errors "github.com/lumiforge/adpilot-backend/internal/errors"
	"github.com/lumiforge/adpilot-backend/internal/models"
	"github.com/lumiforge/adpilot-backend/internal/storage"
	"github.com/lumiforge/adpilot-backend/internal/subscription"
	"github.com/lumiforge/adpilot-backend/internal/ydb"
)

// addonSlotPriceRub — цена одного слота, по ней считается число купленных
// слотов из суммы платежа
const addonSlotPriceRub = 490

// InvoiceArchiver кладет снапшот счета в объектное хранилище
type InvoiceArchiver interface {
	PutInvoice(ctx context.Context, invoiceID string, payload []byte) (string, error)
}

var _ InvoiceArchiver = (*storage.Client)(nil)

// Notifier отправляет биллинговые письма
type Notifier interface {
	IsConfigured() bool
	SendActivationEmail(ctx context.Context, toEmail, planName string) (*email.EmailMessage, error)
	SendPaymentFailedEmail(ctx context.Context, toEmail string, graceEndsAt time.Time) (*email.EmailMessage, error)
}

// SlotAllocator создает слоты при захвате addon платежа
type SlotAllocator interface {
	Purchase(ctx context.Context, userID, paymentID string, count int, extraCapacity int64) ([]*ydb.AddonSlot, error)
}

// Service обрабатывает вебхуки платежного провайдера.
// Подпись проверяется над сырыми байтами тела до любого парсинга; все
// обработчики идемпотентны по идентификаторам провайдера, потому что
// провайдер не гарантирует ни порядок, ни единственность доставки.
type Service struct {
	db       ydb.Database
	subSvc   *subscription.Service
	slots    SlotAllocator
	archiver InvoiceArchiver
	notifier Notifier
	auditSvc *audit.Service
	cfg      *config.Config
	log      *slog.Logger
}

// NewService создает новый billing сервис
func NewService(
	db ydb.Database,
	subSvc *subscription.Service,
	slots SlotAllocator,
	archiver InvoiceArchiver,
	notifier Notifier,
	auditSvc *audit.Service,
	cfg *config.Config,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		db:       db,
		subSvc:   subSvc,
		slots:    slots,
		archiver: archiver,
		notifier: notifier,
		auditSvc: auditSvc,
		cfg:      cfg,
		log:      log,
	}
}

// Verify проверяет HMAC-SHA256 подпись над точными байтами тела запроса.
// Сравнение константное по времени; вызывается строго до парсинга JSON.
func (s *Service) Verify(rawBody []byte, signature string) error {
	if s.cfg.WebhookSecret == "" {
		return app_errors.ErrWebhookSecretNotConfigured
	}

	mac := hmac.New(sha256.New, []byte(s.cfg.WebhookSecret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return app_errors.ErrSignatureMismatch
	}
	return nil
}

// Dispatch маршрутизирует событие по фиксированной таблице. Неизвестный тип
// события не ошибка: провайдер вводит новые типы раньше, чем мы их моделируем.
func (s *Service) Dispatch(ctx context.Context, eventType string, payload json.RawMessage) (*models.WebhookResponse, error) {
	var handler func(ctx context.Context, payload json.RawMessage) error

	switch eventType {
	case "payment.captured":
		handler = s.handlePaymentCaptured
	case "payment.failed":
		handler = s.handlePaymentFailed
	case "invoice.paid":
		handler = s.handleInvoicePaid
	case "subscription.pending",
		"subscription.activated",
		"subscription.charged",
		"subscription.paused",
		"subscription.cancelled",
		"subscription.completed":
		handler = s.handleSubscriptionEvent(eventType)
	default:
		s.auditSvc.LogActionAsync(audit.Record{
			ActionType: string(models.AuditWebhookIgnored),
			Details:    map[string]any{"event": eventType},
		})
		s.log.Info("webhook event ignored", "event", eventType)
		return &models.WebhookResponse{Status: models.WebhookStatusIgnored, Event: eventType}, nil
	}

	if err := handler(ctx, payload); err != nil {
		return nil, err
	}

	s.auditSvc.LogActionAsync(audit.Record{
		ActionType: string(models.AuditWebhookProcessed),
		Details:    map[string]any{"event": eventType},
	})
	return &models.WebhookResponse{Status: models.WebhookStatusProcessed, Event: eventType}, nil
}

// CreateSubscriptionOrder регистрирует платеж за подписку перед походом
// пользователя на страницу оплаты провайдера
func (s *Service) CreateSubscriptionOrder(ctx context.Context, userID, planID string) (*ydb.Payment, error) {
	plan, err := s.db.GetPlanByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	payment := &ydb.Payment{
		PaymentID:          uuid.New().String(),
		UserID:             userID,
		ProviderOrderID:    "order_" + uuid.New().String(),
		AmountRub:          plan.PriceRub,
		Status:             ydb.PaymentStatusCreated,
		PaymentFor:         ydb.PaymentForSubscription,
		RelatedReferenceID: &plan.PlanID,
	}
	if err := s.db.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	s.log.Info("subscription order created", "user_id", userID, "plan_id", planID, "payment_id", payment.PaymentID)
	return payment, nil
}

// CreateSlotOrder регистрирует платеж за пакет слотов
func (s *Service) CreateSlotOrder(ctx context.Context, userID string, count int) (*ydb.Payment, error) {
	if count <= 0 {
		return nil, app_errors.ValidationError{Field: "count", Message: "must be positive"}
	}

	payment := &ydb.Payment{
		PaymentID:       uuid.New().String(),
		UserID:          userID,
		ProviderOrderID: "order_" + uuid.New().String(),
		AmountRub:       float64(count * addonSlotPriceRub),
		Status:          ydb.PaymentStatusCreated,
		PaymentFor:      ydb.PaymentForAddonSlots,
	}
	if err := s.db.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	s.log.Info("addon slot order created", "user_id", userID, "count", count, "payment_id", payment.PaymentID)
	return payment, nil
}

// handlePaymentCaptured помечает платеж захваченным и активирует то, за что
// он был. Повторная доставка по тому же provider_order_id безопасна: захват
// не повторяется, а активация доводится до конца, если прошлый ретрай упал
// между захватом и активацией.
func (s *Service) handlePaymentCaptured(ctx context.Context, payload json.RawMessage) error {
	var body models.WebhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return app_errors.ValidationError{Field: "payload", Message: "malformed payment entity"}
	}
	if body.Payment == nil || body.Payment.ProviderOrderID == "" {
		return app_errors.ValidationError{Field: "payment.order_id", Message: "is required"}
	}

	payment, err := s.db.GetPaymentByProviderOrderID(ctx, body.Payment.ProviderOrderID)
	if err != nil {
		return err
	}

	alreadyCaptured := payment.Status == ydb.PaymentStatusCaptured
	if alreadyCaptured {
		s.log.Info("duplicate payment.captured delivery",
			"payment_id", payment.PaymentID,
			"provider_order_id", payment.ProviderOrderID)
	} else {
		if err := s.db.MarkPaymentCaptured(ctx, payment.PaymentID, body.Payment.ProviderPaymentID, time.Now()); err != nil {
			return err
		}
	}

	switch payment.PaymentFor {
	case ydb.PaymentForSubscription:
		if alreadyCaptured {
			// Обычный дубликат выходит здесь. Захваченный платеж без
			// подписки означает, что активация не дошла до коммита,
			// тогда она перезапускается ниже.
			if _, err := s.db.GetSubscriptionByPaymentID(ctx, payment.PaymentID); err == nil {
				return nil
			} else if !errors.Is(err, app_errors.ErrSubscriptionNotFound) {
				return err
			}
		}
		planID := "pro"
		if payment.RelatedReferenceID != nil {
			planID = *payment.RelatedReferenceID
		}
		sub, err := s.subSvc.ActivatePaid(ctx, payment.UserID, planID, payment.PaymentID)
		if err != nil {
			return err
		}
		// Архив счета и письмо идут после коммита активации и не
		// откатывают её при сбое
		s.archiveAndNotify(ctx, payment, sub)

	case ydb.PaymentForAddonSlots:
		count := int(payment.AmountRub / addonSlotPriceRub)
		if count < 1 {
			count = 1
		}
		// Purchase идемпотентен по payment_id и доводит выдачу слотов
		// до конца на ретрае после частичного сбоя
		if _, err := s.slots.Purchase(ctx, payment.UserID, payment.PaymentID, count, 1); err != nil {
			return err
		}

	default:
		return app_errors.Invariant("payment %s has unknown payment_for %q", payment.PaymentID, payment.PaymentFor)
	}

	return nil
}

// handlePaymentFailed переводит подписку в grace и уведомляет пользователя
func (s *Service) handlePaymentFailed(ctx context.Context, payload json.RawMessage) error {
	var body models.WebhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return app_errors.ValidationError{Field: "payload", Message: "malformed payment entity"}
	}
	if body.Payment == nil || body.Payment.ProviderOrderID == "" {
		return app_errors.ValidationError{Field: "payment.order_id", Message: "is required"}
	}

	payment, err := s.db.GetPaymentByProviderOrderID(ctx, body.Payment.ProviderOrderID)
	if err != nil {
		return err
	}
	if payment.Status != ydb.PaymentStatusCreated {
		s.log.Info("duplicate payment.failed delivery", "payment_id", payment.PaymentID)
		return nil
	}

	if err := s.db.MarkPaymentFailed(ctx, payment.PaymentID, time.Now()); err != nil {
		return err
	}

	if payment.PaymentFor != ydb.PaymentForSubscription {
		return nil
	}

	sub, err := s.db.GetCurrentSubscription(ctx, payment.UserID)
	if err != nil {
		// Нечего переводить в grace: платеж за первую подписку не прошел
		s.log.Warn("payment failed with no current subscription", "user_id", payment.UserID)
		return nil
	}

	graced, err := s.subSvc.EnterGrace(ctx, sub.SubscriptionID)
	if err != nil {
		return err
	}

	if s.notifier != nil && s.notifier.IsConfigured() && graced.GraceEndsAt != nil {
		user, err := s.db.GetUserByID(ctx, payment.UserID)
		if err == nil {
			if _, err := s.notifier.SendPaymentFailedEmail(ctx, user.Email, *graced.GraceEndsAt); err != nil {
				s.log.Warn("failed to send payment failed email", "error", err, "user_id", payment.UserID)
			} else {
				s.logEmail(ctx, payment.UserID, user.Email, email.EmailTypePaymentFailed)
			}
		}
	}

	return nil
}

// handleInvoicePaid помечает счет оплаченным. Счет создается транзакцией
// активации, здесь только согласование статуса.
func (s *Service) handleInvoicePaid(ctx context.Context, payload json.RawMessage) error {
	var body models.WebhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return app_errors.ValidationError{Field: "payload", Message: "malformed invoice entity"}
	}
	if body.Invoice == nil || body.Invoice.ProviderOrderID == "" {
		return app_errors.ValidationError{Field: "invoice.order_id", Message: "is required"}
	}

	payment, err := s.db.GetPaymentByProviderOrderID(ctx, body.Invoice.ProviderOrderID)
	if err != nil {
		return err
	}

	invoice, err := s.db.GetInvoiceByPaymentID(ctx, payment.PaymentID)
	if err != nil {
		return err
	}
	if invoice == nil || invoice.Status == ydb.InvoiceStatusPaid {
		return nil
	}

	return s.db.UpdateInvoiceStatus(ctx, invoice.InvoiceID, ydb.InvoiceStatusPaid)
}

// handleSubscriptionEvent обрабатывает события жизненного цикла подписки
// на стороне провайдера. Источником истины остается наша таблица: события
// только синхронизируют статус.
func (s *Service) handleSubscriptionEvent(eventType string) func(ctx context.Context, payload json.RawMessage) error {
	return func(ctx context.Context, payload json.RawMessage) error {
		var body models.WebhookPayload
		if err := json.Unmarshal(payload, &body); err != nil {
			return app_errors.ValidationError{Field: "payload", Message: "malformed subscription entity"}
		}
		if body.Subscription == nil || body.Subscription.ProviderOrderID == "" {
			return app_errors.ValidationError{Field: "subscription.order_id", Message: "is required"}
		}

		payment, err := s.db.GetPaymentByProviderOrderID(ctx, body.Subscription.ProviderOrderID)
		if err != nil {
			return err
		}

		switch eventType {
		case "subscription.cancelled", "subscription.completed":
			sub, err := s.db.GetSubscriptionByPaymentID(ctx, payment.PaymentID)
			if err != nil {
				return err
			}
			if sub.IsTerminal() {
				return nil
			}
			return s.subSvc.Cancel(ctx, sub.SubscriptionID)

		case "subscription.paused":
			sub, err := s.db.GetSubscriptionByPaymentID(ctx, payment.PaymentID)
			if err != nil {
				return err
			}
			if sub.Status == ydb.SubscriptionStatusGrace || sub.IsTerminal() {
				return nil
			}
			_, err = s.subSvc.EnterGrace(ctx, sub.SubscriptionID)
			return err

		default:
			// pending/activated/charged подтверждают состояние, которое
			// payment.captured уже материализовал
			s.log.Info("subscription event acknowledged", "event", eventType, "payment_id", payment.PaymentID)
			return nil
		}
	}
}

// archiveAndNotify выполняет пост-коммитные побочные эффекты первого захвата:
// архив счета в объектное хранилище и письмо об активации. Сбои логируются
// и не влияют на результат обработки вебхука.
func (s *Service) archiveAndNotify(ctx context.Context, payment *ydb.Payment, sub *ydb.Subscription) {
	invoice, err := s.db.GetInvoiceByPaymentID(ctx, payment.PaymentID)
	if err != nil || invoice == nil {
		s.log.Warn("invoice lookup failed after activation", "error", err, "payment_id", payment.PaymentID)
		return
	}

	if s.archiver != nil && invoice.ArchiveKey == nil {
		snapshot, err := json.Marshal(invoice)
		if err == nil {
			key, err := s.archiver.PutInvoice(ctx, invoice.InvoiceID, snapshot)
			if err != nil {
				s.log.Warn("invoice archive failed", "error", err, "invoice_id", invoice.InvoiceID)
			} else if err := s.db.SetInvoiceArchiveKey(ctx, invoice.InvoiceID, key); err != nil {
				s.log.Warn("failed to persist archive key", "error", err, "invoice_id", invoice.InvoiceID)
			}
		}
	}

	if s.notifier != nil && s.notifier.IsConfigured() {
		user, err := s.db.GetUserByID(ctx, payment.UserID)
		if err != nil {
			return
		}
		if _, err := s.notifier.SendActivationEmail(ctx, user.Email, sub.PlanID); err != nil {
			s.log.Warn("failed to send activation email", "error", err, "user_id", payment.UserID)
			return
		}
		s.logEmail(ctx, payment.UserID, user.Email, email.EmailTypeActivation)
	}
}

func (s *Service) logEmail(ctx context.Context, userID, recipient string, emailType email.EmailType) {
	if err := s.db.CreateEmailLog(ctx, &ydb.EmailLog{
		EmailID:   uuid.New().String(),
		UserID:    userID,
		EmailType: string(emailType),
		Recipient: recipient,
		Status:    string(email.EmailStatusSent),
		SentAt:    time.Now(),
	}); err != nil {
		s.log.Warn("failed to write email log", "error", err, "user_id", userID)
	}
}
