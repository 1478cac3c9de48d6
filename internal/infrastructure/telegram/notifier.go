package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ArticleHistoryBot/internal/ports"
)

// Notifier sends run digests to a Telegram chat via the bot API.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier authenticates the bot token up front.
func NewNotifier(botToken string, chatID int64) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return &Notifier{bot: bot, chatID: chatID}, nil
}

// PublishDigest posts a plain-text message to the configured chat.
func (n *Notifier) PublishDigest(_ context.Context, digest string) error {
	if n.bot == nil || n.chatID == 0 {
		return fmt.Errorf("telegram notifier misconfigured")
	}
	if _, err := n.bot.Send(tgbotapi.NewMessage(n.chatID, digest)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
