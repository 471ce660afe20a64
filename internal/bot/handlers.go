package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MonsieurPatate/daily-tender-bot/config"
	"github.com/MonsieurPatate/daily-tender-bot/internal/apperrors"
	"github.com/MonsieurPatate/daily-tender-bot/internal/constants"
	"github.com/MonsieurPatate/daily-tender-bot/internal/db"
	"github.com/MonsieurPatate/daily-tender-bot/internal/tender"
	"github.com/MonsieurPatate/daily-tender-bot/internal/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Tender — операции движка, доступные командам чата.
type Tender interface {
	InitChat(ctx context.Context, chatID int64) error
	AddMember(ctx context.Context, chatID int64, fullName string) (*db.Member, error)
	RemoveMember(ctx context.Context, chatID int64, identity string) (*db.Member, error)
	ListMembers(ctx context.Context, chatID int64) ([]db.Member, error)
	ExemptMember(ctx context.Context, chatID int64, fullName string, until time.Time) error
	StartTender(ctx context.Context, chatID int64, at time.Time) (*tender.StartResult, error)
	Repoll(ctx context.Context, chatID int64, dropped string) (*tender.RepollResult, error)
	EndPoll(ctx context.Context, chatID int64) (*tender.Resolution, error)
	CurrentCandidates(ctx context.Context, chatID int64) ([]string, error)
	HandleVoteCounts(ctx context.Context, pollID string, options []tender.OptionVotes) (int, error)
	Now() time.Time
	Today() time.Time
}

type Handler struct {
	api    API
	engine Tender
	cfg    config.TenderConfig
	log    *zap.Logger

	mu        sync.Mutex
	lastQuiet map[int64]int

	// shortID -> *repollChoice
	repolls sync.Map
}

func NewHandler(api API, engine Tender, cfg config.TenderConfig, log *zap.Logger) *Handler {
	return &Handler{
		api:       api,
		engine:    engine,
		cfg:       cfg,
		log:       log,
		lastQuiet: make(map[int64]int),
	}
}

// HandleUpdate разбирает входящее обновление Telegram.
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Poll != nil:
		h.HandlePoll(ctx, update.Poll)
	case update.CallbackQuery != nil:
		h.HandleCallbackQuery(ctx, update.CallbackQuery)
	case update.Message != nil:
		h.HandleMessage(ctx, update.Message)
	}
}

func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		return
	}
	chatID := msg.Chat.ID
	defer h.deleteUserCommand(msg)

	// Удаляем предыдущее "тихое" сообщение (help/unknown/ошибки)
	h.dropQuietMessage(chatID)

	args := msg.CommandArguments()
	h.log.Debug("Команда", zap.Int64("chat_id", chatID), zap.String("command", msg.Command()), zap.String("args", args))

	var err error
	switch msg.Command() {
	case "start":
		err = h.handleStart(ctx, chatID)
	case "help":
		h.sendQuietMessage(chatID, constants.MsgHelp)
	case "add":
		err = h.handleAdd(ctx, chatID, args)
	case "delete":
		err = h.handleDelete(ctx, chatID, args)
	case "info":
		err = h.handleInfo(ctx, chatID)
	case "skip":
		err = h.handleSkip(ctx, chatID, args)
	case "poll":
		err = h.handlePoll(ctx, chatID, args)
	case "repoll":
		err = h.handleRepoll(ctx, chatID, args)
	case "endpoll":
		_, err = h.engine.EndPoll(ctx, chatID)
	default:
		h.sendQuietMessage(chatID, constants.MsgUnknownCommand)
	}
	if err != nil {
		h.reportError(chatID, err)
	}
}

func (h *Handler) handleStart(ctx context.Context, chatID int64) error {
	if err := h.engine.InitChat(ctx, chatID); err != nil {
		return err
	}
	h.sendNormalMessage(chatID, constants.MsgChatInitialized+"\n\n"+constants.MsgStart)
	return nil
}

func (h *Handler) handleAdd(ctx context.Context, chatID int64, args string) error {
	m, err := h.engine.AddMember(ctx, chatID, args)
	if err != nil {
		return err
	}
	h.sendNormalMessage(chatID, fmt.Sprintf(constants.MsgMemberAdded, m.FullName))
	return nil
}

func (h *Handler) handleDelete(ctx context.Context, chatID int64, args string) error {
	m, err := h.engine.RemoveMember(ctx, chatID, args)
	if err != nil {
		return err
	}
	h.sendNormalMessage(chatID, fmt.Sprintf(constants.MsgMemberDeleted, m.FullName))
	return nil
}

func (h *Handler) handleInfo(ctx context.Context, chatID int64) error {
	members, err := h.engine.ListMembers(ctx, chatID)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		h.sendQuietMessage(chatID, constants.MsgNoMembers)
		return nil
	}
	h.sendNormalMessage(chatID, renderRoster(members, h.engine.Today()))
	return nil
}

func (h *Handler) handleSkip(ctx context.Context, chatID int64, args string) error {
	name, until, err := parseSkipArgs(args)
	if err != nil {
		return err
	}
	if err := h.engine.ExemptMember(ctx, chatID, name, until); err != nil {
		return err
	}
	h.sendNormalMessage(chatID, fmt.Sprintf(constants.MsgMemberExempted, name, utils.FormatDate(until)))
	return nil
}

func (h *Handler) handlePoll(ctx context.Context, chatID int64, args string) error {
	at, defaulted, err := pollTime(args, h.engine.Now(), h.cfg)
	if err != nil {
		return err
	}
	res, err := h.engine.StartTender(ctx, chatID, at)
	if err != nil {
		return err
	}
	if res.SoleWinner != "" {
		return nil
	}
	if defaulted {
		h.sendQuietMessage(chatID, fmt.Sprintf(constants.MsgDefaultTimeUsed, at.Hour(), at.Minute()))
	}
	h.sendNormalMessage(chatID, fmt.Sprintf(constants.MsgPollStarted, at.Format("15:04")))
	return nil
}

// reportError показывает ошибку в чате. Внутренние ошибки дополнительно логируются.
func (h *Handler) reportError(chatID int64, err error) {
	if apperrors.KindOf(err) == apperrors.KindInternal {
		h.log.Error("❌ Ошибка обработки команды", zap.Int64("chat_id", chatID), zap.Error(err))
	} else {
		h.log.Info("Команда отклонена", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	h.sendQuietMessage(chatID, fmt.Sprintf(constants.MsgErrorPrefix, apperrors.UserMessage(err)))
}

func (h *Handler) deleteUserCommand(msg *tgbotapi.Message) {
	if _, err := h.api.Request(tgbotapi.NewDeleteMessage(msg.Chat.ID, msg.MessageID)); err != nil {
		h.log.Debug("Не удалось удалить команду", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
	}
}

func (h *Handler) sendNormalMessage(chatID int64, text string) {
	if _, err := h.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		h.log.Warn("⚠️ Ошибка отправки сообщения", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// sendQuietMessage отправляет сообщение без уведомления; следующая команда его удалит.
func (h *Handler) sendQuietMessage(chatID int64, text string) {
	m := tgbotapi.NewMessage(chatID, text)
	m.DisableNotification = true
	sent, err := h.api.Send(m)
	if err != nil {
		h.log.Warn("⚠️ Ошибка отправки тихого сообщения", zap.Int64("chat_id", chatID), zap.Error(err))
		return
	}
	h.mu.Lock()
	h.lastQuiet[chatID] = sent.MessageID
	h.mu.Unlock()
}

func (h *Handler) dropQuietMessage(chatID int64) {
	h.mu.Lock()
	oldMsgID, ok := h.lastQuiet[chatID]
	delete(h.lastQuiet, chatID)
	h.mu.Unlock()
	if ok {
		_, _ = h.api.Request(tgbotapi.NewDeleteMessage(chatID, oldMsgID))
	}
}
