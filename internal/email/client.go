package email

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	appconfig "github.com/lumiforge/adpilot-backend/internal/config"
)

// EmailType представляет тип email
type EmailType string

const (
	EmailTypeActivation    EmailType = "subscription_activated"
	EmailTypePaymentFailed EmailType = "payment_failed"
	EmailTypeGraceEntered  EmailType = "grace_entered"
	EmailTypeExpired       EmailType = "subscription_expired"
)

// EmailStatus представляет статус email
type EmailStatus string

const (
	EmailStatusSent   EmailStatus = "sent"
	EmailStatusFailed EmailStatus = "failed"
)

// EmailMessage представляет email сообщение
type EmailMessage struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Type      EmailType   `json:"type"`
	Recipient string      `json:"recipient"`
	Subject   string      `json:"subject"`
	Body      string      `json:"body"`
	Status    EmailStatus `json:"status"`
	SentAt    time.Time   `json:"sent_at"`
	MessageID string      `json:"message_id"`
	Error     string      `json:"error,omitempty"`
}

type Client struct {
	SESClient  *sesv2.Client
	Sender     string
	BillingURL string
}

func NewClient(appCfg *appconfig.Config) *Client {
	if appCfg.SESEndpoint == "" || appCfg.SESRegion == "" {
		return &Client{Sender: appCfg.EmailFrom, BillingURL: appCfg.AppBillingURL}
	}

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL:           appCfg.SESEndpoint,
			SigningRegion: appCfg.SESRegion,
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(appCfg.SESAccessKeyID, appCfg.SESSecretAccessKey, "")),
		config.WithRegion(appCfg.SESRegion),
	)
	if err != nil {
		log.Fatalf("failed to load SES config: %v", err)
	}

	sesClient := sesv2.NewFromConfig(cfg)

	return &Client{
		SESClient:  sesClient,
		Sender:     appCfg.EmailFrom,
		BillingURL: appCfg.AppBillingURL,
	}
}

// IsConfigured проверяет, настроен ли email сервис
func (c *Client) IsConfigured() bool {
	return c.Sender != "" && c.SESClient != nil
}

// SendActivationEmail отправляет подтверждение активации подписки
func (c *Client) SendActivationEmail(ctx context.Context, toEmail, planName string) (*EmailMessage, error) {
	subject := "Подписка активирована - AdPilot"
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Подписка активирована</h2>
			<p>Ваш тариф <strong>%s</strong> оплачен и активирован.</p>
			<p>Счет доступен в личном кабинете: <a href="%s">%s</a></p>
			<p>Это письмо сгенерировано автоматически, пожалуйста, не отвечайте на него.</p>
		</body>
		</html>
	`, planName, c.BillingURL, c.BillingURL)

	return c.send(ctx, EmailTypeActivation, toEmail, subject, body)
}

// SendPaymentFailedEmail уведомляет о неуспешном списании и grace периоде
func (c *Client) SendPaymentFailedEmail(ctx context.Context, toEmail string, graceEndsAt time.Time) (*EmailMessage, error) {
	subject := "Не удалось списать оплату - AdPilot"
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Платеж не прошел</h2>
			<p>Мы не смогли списать оплату за подписку. Автоматизация продолжит работать до <strong>%s</strong>.</p>
			<p>Обновите платежные данные: <a href="%s">%s</a></p>
			<p>Это письмо сгенерировано автоматически, пожалуйста, не отвечайте на него.</p>
		</body>
		</html>
	`, graceEndsAt.Format("02.01.2006"), c.BillingURL, c.BillingURL)

	return c.send(ctx, EmailTypePaymentFailed, toEmail, subject, body)
}

// SendExpiredEmail уведомляет об окончании подписки
func (c *Client) SendExpiredEmail(ctx context.Context, toEmail string) (*EmailMessage, error) {
	subject := "Подписка завершена - AdPilot"
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Подписка завершена</h2>
			<p>Срок действия подписки истек, AI автоматизация приостановлена.</p>
			<p>Возобновить подписку: <a href="%s">%s</a></p>
			<p>Это письмо сгенерировано автоматически, пожалуйста, не отвечайте на него.</p>
		</body>
		</html>
	`, c.BillingURL, c.BillingURL)

	return c.send(ctx, EmailTypeExpired, toEmail, subject, body)
}

func (c *Client) send(ctx context.Context, emailType EmailType, toEmail, subject, body string) (*EmailMessage, error) {
	message := &EmailMessage{
		Type:      emailType,
		Recipient: toEmail,
		Subject:   subject,
		Body:      body,
		Status:    EmailStatusSent,
		SentAt:    time.Now(),
	}

	if err := c.sendHTMLEmail(ctx, toEmail, subject, body); err != nil {
		message.Status = EmailStatusFailed
		message.Error = err.Error()
		return message, err
	}

	return message, nil
}

// sendHTMLEmail отправляет HTML email через SES
func (c *Client) sendHTMLEmail(ctx context.Context, toEmail, subject, htmlBody string) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: &c.Sender,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data: &subject,
				},
				Body: &types.Body{
					Html: &types.Content{
						Data: &htmlBody,
					},
				},
			},
		},
	}

	_, err := c.SESClient.SendEmail(ctx, input)
	return err
}
