package bot

import (
	"context"

	"github.com/MonsieurPatate/daily-tender-bot/internal/constants"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// SetCommands публикует меню команд бота.
func (h *Handler) SetCommands() error {
	commands := make([]tgbotapi.BotCommand, 0, len(constants.Commands))
	for _, c := range constants.Commands {
		commands = append(commands, tgbotapi.BotCommand{Command: c[0], Description: c[1]})
	}
	_, err := h.api.Request(tgbotapi.NewSetMyCommands(commands...))
	return err
}

// Run обрабатывает обновления до закрытия канала или отмены ctx.
func (h *Handler) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			h.log.Info("Остановка обработки обновлений")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			h.safeHandle(ctx, update)
		}
	}
}

// safeHandle не даёт панике в одном обновлении уронить бота.
func (h *Handler) safeHandle(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("❌ Паника при обработке обновления", zap.Int("update_id", update.UpdateID), zap.Any("panic", r))
		}
	}()
	h.HandleUpdate(ctx, update)
}
