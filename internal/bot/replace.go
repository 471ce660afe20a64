package bot

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/MonsieurPatate/daily-tender-bot/internal/constants"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const repollPrefix = "rp|"

// repollChoice — кнопка клавиатуры /repoll: кого заменить и где клавиатура.
type repollChoice struct {
	ChatID        int64
	Name          string
	KeyboardMsgID int
}

// Callback data ограничена 64 байтами, поэтому в кнопке только короткий id.
func generateShortID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:6])
}

func (h *Handler) handleRepoll(ctx context.Context, chatID int64, args string) error {
	name := strings.TrimSpace(args)
	if name == "" {
		return h.sendRepollKeyboard(ctx, chatID)
	}
	return h.repoll(ctx, chatID, name)
}

func (h *Handler) repoll(ctx context.Context, chatID int64, name string) error {
	res, err := h.engine.Repoll(ctx, chatID, name)
	if err != nil {
		return err
	}
	if res.SoleWinner == "" {
		h.sendNormalMessage(chatID, fmt.Sprintf(constants.MsgRepolled, res.Dropped))
	}
	return nil
}

// sendRepollKeyboard шлёт одно сообщение с кнопкой на каждого кандидата текущего опроса.
func (h *Handler) sendRepollKeyboard(ctx context.Context, chatID int64) error {
	names, err := h.engine.CurrentCandidates(ctx, chatID)
	if err != nil {
		return err
	}
	h.forgetRepollChoices(chatID)

	var rows [][]tgbotapi.InlineKeyboardButton
	choices := make([]*repollChoice, 0, len(names))
	for _, name := range names {
		sid := generateShortID()
		choice := &repollChoice{ChatID: chatID, Name: name}
		h.repolls.Store(sid, choice)
		choices = append(choices, choice)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(name, repollPrefix+sid),
		))
	}

	msg := tgbotapi.NewMessage(chatID, constants.MsgChooseRepoll)
	msg.DisableNotification = true
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	sent, err := h.api.Send(msg)
	if err != nil {
		h.forgetRepollChoices(chatID)
		return fmt.Errorf("отправка клавиатуры замены: %w", err)
	}

	// MessageID известен только после отправки
	h.mu.Lock()
	for _, c := range choices {
		c.KeyboardMsgID = sent.MessageID
	}
	h.mu.Unlock()
	h.log.Debug("Отправлена клавиатура замены", zap.Int64("chat_id", chatID), zap.Int("message_id", sent.MessageID))
	return nil
}

// forgetRepollChoices удаляет из кэша кнопки прошлых клавиатур чата.
func (h *Handler) forgetRepollChoices(chatID int64) {
	h.repolls.Range(func(key, val any) bool {
		if c, ok := val.(*repollChoice); ok && c.ChatID == chatID {
			h.repolls.Delete(key)
		}
		return true
	})
}

func (h *Handler) takeRepollChoice(sid string) (*repollChoice, bool) {
	val, ok := h.repolls.Load(sid)
	if !ok {
		return nil, false
	}
	choice, ok := val.(*repollChoice)
	if !ok {
		return nil, false
	}
	h.forgetRepollChoices(choice.ChatID)

	h.mu.Lock()
	cp := *choice
	h.mu.Unlock()
	return &cp, true
}
