package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier delivers due-review reminders over a Telegram bot.
// It is the push channel behind the reminder scheduler's Notifier
// interface.
type TelegramNotifier struct {
	api *tgbotapi.BotAPI
}

// NewTelegramNotifier creates a notifier from a bot token
func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &TelegramNotifier{api: api}, nil
}

// SendReminder sends a short due-summary message to the chat
func (n *TelegramNotifier) SendReminder(chatID int64, dueCount int) error {
	text := fmt.Sprintf("📚 You have %d topics due for review today. A few minutes now keeps the streak alive!", dueCount)
	if dueCount == 1 {
		text = "📚 You have 1 topic due for review today. A few minutes now keeps the streak alive!"
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send reminder to chat %d: %w", chatID, err)
	}
	return nil
}
