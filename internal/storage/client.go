package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lumiforge/adpilot-backend/internal/config"
)

// Client обертка над S3 клиентом для архива счетов
type Client struct {
	s3Client      *s3.Client
	presignClient *s3.PresignClient
	invoiceBucket string
	endpoint      string
}

// NewClient создает новый S3 клиент
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	accessKey := cfg.AWSAccessKeyID
	secretKey := cfg.AWSSecretAccessKey
	invoiceBucket := cfg.APInvoiceBucket
	endpoint := cfg.S3Endpoint
	region := "ru-central1"

	if accessKey == "" || secretKey == "" || invoiceBucket == "" {
		return nil, fmt.Errorf("AWS credentials and bucket name must be set")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	presignClient := s3.NewPresignClient(client)

	return &Client{
		s3Client:      client,
		presignClient: presignClient,
		invoiceBucket: invoiceBucket,
		endpoint:      endpoint,
	}, nil
}

// PutInvoice кладет снапшот счета в архивный бакет и возвращает ключ объекта
func (c *Client) PutInvoice(ctx context.Context, invoiceID string, payload []byte) (string, error) {
	if invoiceID == "" {
		return "", errors.New("invoice id is required")
	}

	key := fmt.Sprintf("invoices/%s/%s.json", time.Now().UTC().Format("2006/01"), invoiceID)
	contentType := "application/json"

	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.invoiceBucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}

	return key, nil
}

// GeneratePresignedDownloadURL генерирует временную ссылку на архивную копию
func (c *Client) GeneratePresignedDownloadURL(ctx context.Context, key string, lifetime time.Duration) (string, error) {
	if key == "" {
		return "", errors.New("object key is required")
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(c.invoiceBucket),
		Key:    aws.String(key),
	}

	resp, err := c.presignClient.PresignGetObject(ctx, input, s3.WithPresignExpires(lifetime))
	if err != nil {
		return "", err
	}

	return resp.URL, nil
}

// DeleteObject удаляет объект из архива
func (c *Client) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("object key is required")
	}

	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.invoiceBucket),
		Key:    aws.String(key),
	})
	return err
}

// GetInvoiceBucket возвращает имя архивного бакета
func (c *Client) GetInvoiceBucket() string {
	return c.invoiceBucket
}
