package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// StopPoll закрывает опрос в чате. Голосовать в нём больше нельзя.
func (t *TelegramTransport) StopPoll(chatID int64, messageID int) error {
	if _, err := t.api.StopPoll(tgbotapi.NewStopPoll(chatID, messageID)); err != nil {
		return fmt.Errorf("ошибка закрытия опроса: %w", err)
	}
	t.log.Info("🛑 Опрос закрыт", zap.Int64("chat_id", chatID), zap.Int("message_id", messageID))
	return nil
}

func (t *TelegramTransport) DeleteMessage(chatID int64, messageID int) error {
	if _, err := t.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("ошибка удаления сообщения %d: %w", messageID, err)
	}
	return nil
}
