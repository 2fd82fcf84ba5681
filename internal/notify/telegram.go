package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/artur/tiksaver/internal/batch"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram sends batch summaries to a single chat
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram authorizes token against the Bot API
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	return NewTelegramWithEndpoint(token, chatID, tgbotapi.APIEndpoint)
}

// NewTelegramWithEndpoint is NewTelegram against a custom Bot API endpoint,
// e.g. a self-hosted server. endpoint is a format with token and method verbs.
func NewTelegramWithEndpoint(token string, chatID int64, endpoint string) (*Telegram, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("telegram chat id is not set")
	}

	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	log.Printf("[NOTIFY] Authorized on account %s", api.Self.UserName)

	return &Telegram{
		api:    api,
		chatID: chatID,
	}, nil
}

// Notify sends the summary of a finished run
func (t *Telegram) Notify(ctx context.Context, summary *batch.Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(t.chatID, FormatSummary(summary))
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	log.Printf("[NOTIFY] Summary sent to chat %d", t.chatID)
	return nil
}

// FormatSummary renders the message text for a run
func FormatSummary(summary *batch.Summary) string {
	header := "📥 Download batch finished"
	if summary.Total > 0 && summary.Failed == 0 {
		header = "✅ Download batch finished"
	} else if summary.Total > 0 && summary.Succeeded == 0 {
		header = "❌ Download batch failed"
	}
	return header + "\n\n" + summary.Text()
}
