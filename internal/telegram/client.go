package telegram

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/lumiforge/adpilot-backend/internal/config"
)

// alertPrefix отличает алерты биллингового бэкенда от остальных ботов
// в общем админском чате
const alertPrefix = "🚨 AdPilot billing: "

type Client struct {
	token  string
	chatID string
	client *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		token:  cfg.TelegramBotToken,
		chatID: cfg.TelegramAdminChatID,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// SendAlert отправляет сообщение об ошибке в админский чат.
// Без настроенного токена или chat_id вызов молча пропускается.
func (c *Client) SendAlert(msg string) error {
	if c.token == "" || c.chatID == "" {
		return nil
	}
	apiURL := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", c.token)
	vals := url.Values{}
	vals.Set("chat_id", c.chatID)
	vals.Set("text", alertPrefix+msg)
	vals.Set("disable_web_page_preview", "true")

	resp, err := c.client.PostForm(apiURL, vals)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}
	return nil
}
