package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"farm-platform/internal/domain/farm"
)

// TelegramClient 以 Bot API sendMessage 推送平台警報。
type TelegramClient struct {
	token      string
	chatID     int64
	prefix     string
	baseURL    string
	httpClient *http.Client
}

func NewTelegramClient(token string, chatID int64, prefix string) *TelegramClient {
	return &TelegramClient{
		token:   token,
		chatID:  chatID,
		prefix:  prefix,
		baseURL: "https://api.telegram.org",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Enabled 回傳是否已設定 token 與 chat。
func (c *TelegramClient) Enabled() bool {
	return c != nil && c.token != "" && c.chatID != 0
}

// NotifyAlert 將警報格式化後推送。
func (c *TelegramClient) NotifyAlert(ctx context.Context, alert farm.Alert) error {
	return c.SendMessage(ctx, FormatAlert(alert))
}

// FormatAlert 產生警報訊息文字。
func FormatAlert(a farm.Alert) string {
	return fmt.Sprintf("%s alert (%s) at %s: %s",
		a.Type, a.Severity, a.Date.UTC().Format("2006-01-02 15:04"), a.Message)
}

// SendMessage 將文字訊息推送到指定 chat。
func (c *TelegramClient) SendMessage(ctx context.Context, text string) error {
	if c == nil {
		return fmt.Errorf("telegram client is nil")
	}
	if !c.Enabled() {
		return fmt.Errorf("telegram token or chat_id missing")
	}

	fullText := text
	if c.prefix != "" {
		fullText = fmt.Sprintf("[%s] %s", c.prefix, text)
	}
	body, err := json.Marshal(map[string]interface{}{
		"chat_id": c.chatID,
		"text":    fullText,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("telegram send failed status=%d body=%s", resp.StatusCode, string(raw))
	}
	return nil
}
