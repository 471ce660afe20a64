package bot

import (
	"fmt"

	"github.com/MonsieurPatate/daily-tender-bot/internal/constants"
	"github.com/MonsieurPatate/daily-tender-bot/internal/tender"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// callbackEndPoll — данные кнопки досрочного завершения под опросом
const callbackEndPoll = "endpoll"

// API — методы tgbotapi.BotAPI, которыми пользуется бот.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	StopPoll(config tgbotapi.StopPollConfig) (tgbotapi.Poll, error)
}

// TelegramTransport отправляет сообщения и опросы тендера через Telegram.
type TelegramTransport struct {
	api API
	log *zap.Logger
}

var _ tender.Transport = (*TelegramTransport)(nil)

func NewTelegramTransport(api API, log *zap.Logger) *TelegramTransport {
	return &TelegramTransport{api: api, log: log}
}

func (t *TelegramTransport) SendMessage(chatID int64, text string) error {
	if _, err := t.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("отправка сообщения: %w", err)
	}
	return nil
}

// SendPoll создаёт неанонимный опрос с одним ответом и кнопкой "Завершить опрос".
func (t *TelegramTransport) SendPoll(chatID int64, question string, options []string) (tender.PollRef, error) {
	cfg := tgbotapi.NewPoll(chatID, question, options...)
	cfg.AllowsMultipleAnswers = false
	cfg.IsAnonymous = false
	cfg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(constants.BtnEndPoll, callbackEndPoll),
		),
	)

	sent, err := t.api.Send(cfg)
	if err != nil {
		return tender.PollRef{}, fmt.Errorf("отправка опроса: %w", err)
	}
	if sent.Poll == nil {
		return tender.PollRef{}, fmt.Errorf("telegram не вернул опрос (message_id=%d)", sent.MessageID)
	}

	t.log.Info("✅ Опрос отправлен",
		zap.Int64("chat_id", chatID),
		zap.String("poll_id", sent.Poll.ID),
		zap.Int("message_id", sent.MessageID))
	return tender.PollRef{PollID: sent.Poll.ID, MessageID: sent.MessageID}, nil
}
