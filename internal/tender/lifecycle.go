package tender

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MonsieurPatate/daily-tender-bot/internal/apperrors"
	"github.com/MonsieurPatate/daily-tender-bot/internal/constants"
	"github.com/MonsieurPatate/daily-tender-bot/internal/db"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type StartResult struct {
	Candidates []string
	PollID     string
	ResolveAt  time.Time
	// SoleWinner заполнен, если кандидат был один и опрос не создавался
	SoleWinner string
}

type Resolution struct {
	ChatID int64
	PollID string
	Winner string
	Votes  int
}

type RepollResult struct {
	Dropped     string
	Replacement string
	Candidates  []string
	PollID      string
	SoleWinner  string
}

// StartTender открывает опрос на проведение дейли и назначает подведение итогов на at.
func (e *Engine) StartTender(ctx context.Context, chatID int64, at time.Time) (*StartResult, error) {
	today := e.Today()
	result := &StartResult{ResolveAt: at}
	var sent *PollRef
	var stale *int

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cfg, err := db.GetConfig(tx, chatID)
		if err != nil {
			return err
		}
		if !canOrganize(cfg, today) {
			return apperrors.ErrAlreadyOrganizedToday
		}
		if pollIsRelevant(cfg, today) {
			if pollOpenedOn(cfg, today) {
				return apperrors.ErrAlreadyOrganizedToday.WithDetail("опрос уже открыт")
			}
			// опрос прошлого дня так и не закрыли
			stale = cfg.CurrentPollMessageID
		}

		candidates, err := e.candidatesWithReset(tx, chatID, today)
		if err != nil {
			return err
		}
		result.Candidates = memberNames(candidates)

		if len(candidates) == 1 {
			winner := candidates[0]
			if err := db.SetCanParticipate(tx, winner.ID, false); err != nil {
				return err
			}
			result.SoleWinner = winner.FullName
			return db.MarkResolved(tx, chatID, today)
		}

		ref, err := e.transport.SendPoll(chatID, constants.MsgPollQuestion, result.Candidates)
		if err != nil {
			return apperrors.Internal(err, "Не удалось отправить опрос")
		}
		sent = &ref
		result.PollID = ref.PollID

		if _, err := db.DeleteChatParticipants(tx, chatID); err != nil {
			return err
		}
		if err := db.AddParticipants(tx, ref.PollID, candidates); err != nil {
			return err
		}
		return db.SetCurrentPoll(tx, chatID, ref.PollID, ref.MessageID, today, &at)
	})
	if err != nil {
		if sent != nil {
			e.bestEffort("delete_orphan_poll", chatID, e.transport.DeleteMessage(chatID, sent.MessageID))
		}
		if apperrors.KindOf(err) == apperrors.KindInternal {
			e.log.Error("❌ Ошибка запуска тендера", zap.Int64("chat_id", chatID), zap.Error(err))
		}
		return nil, err
	}

	if stale != nil {
		e.bestEffort("stop_stale_poll", chatID, e.transport.StopPoll(chatID, *stale))
	}

	if result.SoleWinner != "" {
		e.scheduler.Cancel(chatID)
		e.log.Info("🏆 Единственный кандидат", zap.Int64("chat_id", chatID), zap.String("winner", result.SoleWinner))
		e.bestEffort("announce", chatID, e.transport.SendMessage(chatID, fmt.Sprintf(constants.MsgSoleWinner, result.SoleWinner)))
		return result, nil
	}

	e.scheduler.Arm(chatID, at, func() { e.ScheduledResolve(chatID) })
	e.log.Info("✅ Тендер запущен",
		zap.Int64("chat_id", chatID),
		zap.String("poll_id", result.PollID),
		zap.Strings("candidates", result.Candidates),
		zap.Time("resolve_at", at))
	return result, nil
}

// Resolve подводит итоги текущего опроса: побеждает кандидат с наибольшим числом голосов,
// при равенстве стоящий в опросе раньше.
func (e *Engine) Resolve(ctx context.Context, chatID int64) (*Resolution, error) {
	today := e.Today()
	var res *Resolution
	var messageID *int

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cfg, err := db.GetConfig(tx, chatID)
		if err != nil {
			return err
		}
		if !pollIsRelevant(cfg, today) {
			return apperrors.ErrNoOpenPoll
		}

		winner, err := db.MostVoted(tx, *cfg.CurrentPollID)
		if err != nil {
			return err
		}
		if err := db.SetCanParticipate(tx, winner.MemberID, false); err != nil {
			return err
		}
		if err := db.MarkResolved(tx, chatID, today); err != nil {
			return err
		}

		messageID = cfg.CurrentPollMessageID
		res = &Resolution{
			ChatID: chatID,
			PollID: *cfg.CurrentPollID,
			Winner: winner.Member.FullName,
			Votes:  winner.VoteCount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if messageID != nil {
		e.bestEffort("stop_poll", chatID, e.transport.StopPoll(chatID, *messageID))
	}
	e.bestEffort("announce", chatID, e.transport.SendMessage(chatID, fmt.Sprintf(constants.MsgWinner, res.Winner)))
	e.log.Info("🏆 Итоги подведены",
		zap.Int64("chat_id", chatID),
		zap.String("poll_id", res.PollID),
		zap.String("winner", res.Winner),
		zap.Int("votes", res.Votes))
	return res, nil
}

// ScheduledResolve — тело отложенной задачи: итоги подводятся, ошибка сообщается в чат.
func (e *Engine) ScheduledResolve(chatID int64) {
	_, err := e.Resolve(context.Background(), chatID)
	if err == nil {
		return
	}
	if errors.Is(err, apperrors.ErrNoOpenPoll) {
		e.log.Warn("⚠️ Нечего подводить: опрос уже закрыт", zap.Int64("chat_id", chatID))
		return
	}
	e.log.Error("❌ Ошибка при подведении итогов", zap.Int64("chat_id", chatID), zap.Error(err))
	e.bestEffort("report_error", chatID, e.transport.SendMessage(chatID, fmt.Sprintf(constants.MsgResolveFailed, apperrors.UserMessage(err))))
}

// Repoll заменяет одного кандидата открытого опроса. Время подведения итогов не меняется.
func (e *Engine) Repoll(ctx context.Context, chatID int64, dropped string) (*RepollResult, error) {
	today := e.Today()
	result := &RepollResult{Dropped: dropped}
	var sent *PollRef
	var oldMessageID *int

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cfg, err := db.GetConfig(tx, chatID)
		if err != nil {
			return err
		}
		if !pollIsRelevant(cfg, today) {
			return apperrors.ErrNoRelevantPoll
		}
		oldMessageID = cfg.CurrentPollMessageID

		rows, err := db.FindParticipants(tx, *cfg.CurrentPollID)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return apperrors.ErrNoParticipants.WithDetail("опрос %s", *cfg.CurrentPollID)
		}

		var droppedID uint
		current := make([]string, 0, len(rows))
		remaining := make([]db.Member, 0, len(rows))
		for _, r := range rows {
			current = append(current, r.Member.FullName)
			if r.Member.FullName == dropped {
				droppedID = r.MemberID
				continue
			}
			remaining = append(remaining, r.Member)
		}
		if droppedID == 0 {
			return apperrors.ErrNotAParticipant.WithDetail("%q", dropped)
		}

		if err := db.SetSkipUntil(tx, droppedID, today.AddDate(0, 0, 1)); err != nil {
			return err
		}

		replacement, err := e.pickCandidates(tx, chatID, 1, current, today)
		switch {
		case err == nil:
			remaining = append(remaining, replacement...)
			result.Replacement = replacement[0].FullName
		case errors.Is(err, apperrors.ErrNoEligibleMembers):
			e.log.Info("Замены нет", zap.Int64("chat_id", chatID), zap.String("dropped", dropped))
		default:
			return err
		}
		result.Candidates = memberNames(remaining)

		if len(remaining) == 1 {
			winner := remaining[0]
			if err := db.SetCanParticipate(tx, winner.ID, false); err != nil {
				return err
			}
			result.SoleWinner = winner.FullName
			return db.MarkResolved(tx, chatID, today)
		}

		ref, err := e.transport.SendPoll(chatID, constants.MsgPollQuestion, result.Candidates)
		if err != nil {
			return apperrors.Internal(err, "Не удалось отправить опрос")
		}
		sent = &ref
		result.PollID = ref.PollID

		if _, err := db.DeleteChatParticipants(tx, chatID); err != nil {
			return err
		}
		if err := db.AddParticipants(tx, ref.PollID, remaining); err != nil {
			return err
		}
		return db.SetCurrentPoll(tx, chatID, ref.PollID, ref.MessageID, today, nil)
	})
	if err != nil {
		if sent != nil {
			e.bestEffort("delete_orphan_poll", chatID, e.transport.DeleteMessage(chatID, sent.MessageID))
		}
		return nil, err
	}

	if result.SoleWinner != "" {
		e.scheduler.Cancel(chatID)
		if oldMessageID != nil {
			e.bestEffort("stop_poll", chatID, e.transport.StopPoll(chatID, *oldMessageID))
		}
		e.bestEffort("announce", chatID, e.transport.SendMessage(chatID, fmt.Sprintf(constants.MsgSoleWinner, result.SoleWinner)))
		e.log.Info("🏆 После замены остался один кандидат", zap.Int64("chat_id", chatID), zap.String("winner", result.SoleWinner))
		return result, nil
	}

	if oldMessageID != nil {
		e.bestEffort("delete_old_poll", chatID, e.transport.DeleteMessage(chatID, *oldMessageID))
	}
	e.log.Info("🔁 Кандидат заменён",
		zap.Int64("chat_id", chatID),
		zap.String("dropped", dropped),
		zap.String("replacement", result.Replacement),
		zap.String("poll_id", result.PollID))
	return result, nil
}

// EndPoll досрочно завершает опрос: снимает отложенную задачу и сразу подводит итоги.
func (e *Engine) EndPoll(ctx context.Context, chatID int64) (*Resolution, error) {
	cfg, err := db.GetConfig(e.db.WithContext(ctx), chatID)
	if err != nil {
		return nil, err
	}
	if !pollIsRelevant(cfg, e.Today()) {
		return nil, apperrors.ErrNoRelevantPoll
	}
	e.scheduler.Cancel(chatID)
	return e.Resolve(ctx, chatID)
}
