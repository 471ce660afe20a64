package bot

import (
	"context"
	"strings"

	"github.com/MonsieurPatate/daily-tender-bot/internal/apperrors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (h *Handler) HandleCallbackQuery(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil || cq.Message.Chat == nil {
		return
	}
	data := cq.Data

	switch {
	case data == callbackEndPoll:
		h.handleEndPollInline(ctx, cq)
	case strings.HasPrefix(data, repollPrefix):
		h.handleRepollShortID(ctx, cq, strings.TrimPrefix(data, repollPrefix))
	default:
		// не обрабатываем
		h.answer(cq, "")
	}
}

func (h *Handler) handleEndPollInline(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	chatID := cq.Message.Chat.ID
	if _, err := h.engine.EndPoll(ctx, chatID); err != nil {
		h.alert(chatID, cq, err)
		return
	}
	h.answer(cq, "Опрос завершён!")
}

func (h *Handler) handleRepollShortID(ctx context.Context, cq *tgbotapi.CallbackQuery, shortID string) {
	choice, ok := h.takeRepollChoice(shortID)
	if !ok {
		h.answerAlert(cq, "Данные не найдены, повторите /repoll")
		return
	}

	// клавиатура больше не нужна при любом исходе
	if choice.KeyboardMsgID != 0 {
		if _, err := h.api.Request(tgbotapi.NewDeleteMessage(choice.ChatID, choice.KeyboardMsgID)); err != nil {
			h.log.Warn("⚠️ Ошибка удаления клавиатуры", zap.Int64("chat_id", choice.ChatID), zap.Error(err))
		}
	}

	if err := h.repoll(ctx, choice.ChatID, choice.Name); err != nil {
		h.alert(choice.ChatID, cq, err)
		return
	}
	h.answer(cq, "Участник заменён!")
}

// alert показывает ошибку всплывающим окном; внутренние ошибки логируются.
func (h *Handler) alert(chatID int64, cq *tgbotapi.CallbackQuery, err error) {
	if apperrors.KindOf(err) == apperrors.KindInternal {
		h.log.Error("❌ Ошибка обработки кнопки", zap.Int64("chat_id", chatID), zap.String("data", cq.Data), zap.Error(err))
	}
	h.answerAlert(cq, apperrors.UserMessage(err))
}

// answer убирает "спиннер" с кнопки
func (h *Handler) answer(cq *tgbotapi.CallbackQuery, text string) {
	if _, err := h.api.Request(tgbotapi.NewCallback(cq.ID, text)); err != nil {
		h.log.Debug("Не удалось ответить на callback", zap.Error(err))
	}
}

func (h *Handler) answerAlert(cq *tgbotapi.CallbackQuery, text string) {
	if _, err := h.api.Request(tgbotapi.NewCallbackWithAlert(cq.ID, text)); err != nil {
		h.log.Debug("Не удалось ответить на callback", zap.Error(err))
	}
}
