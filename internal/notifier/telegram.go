package notifier

import (
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/blunavi/trader/internal/utils"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramNotifier posts messages to a Telegram chat. Delivery is fire
// and forget: send errors are logged and swallowed, never retried.
type TelegramNotifier struct {
	token  string
	chatID string
	client *resty.Client
}

// NewTelegram creates a Telegram notifier, or a Noop when either the
// token or the chat ID is unset.
func NewTelegram(token, chatID string) Notifier {
	if token == "" || chatID == "" {
		return Noop{}
	}
	return &TelegramNotifier{
		token:  token,
		chatID: chatID,
		client: resty.New().
			SetBaseURL(telegramAPIBase).
			SetTimeout(10 * time.Second),
	}
}

// WithClient overrides the HTTP client (tests).
func (t *TelegramNotifier) WithClient(c *resty.Client) *TelegramNotifier {
	t.client = c
	return t
}

func (t *TelegramNotifier) Notify(msg string) {
	resp, err := t.client.R().
		SetFormData(map[string]string{
			"chat_id": t.chatID,
			"text":    msg,
		}).
		Post("/bot" + t.token + "/sendMessage")
	if err != nil {
		utils.GetLogger().Printf("Notifier | telegram send failed: %v", err)
		return
	}
	if resp.StatusCode() != 200 {
		utils.GetLogger().Printf("Notifier | telegram send failed: %s", resp.Status())
	}
}
