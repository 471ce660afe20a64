package tender

import (
	"context"

	"github.com/MonsieurPatate/daily-tender-bot/internal/apperrors"
	"github.com/MonsieurPatate/daily-tender-bot/internal/db"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OptionVotes — число голосов за вариант опроса (имя кандидата).
type OptionVotes struct {
	Text       string
	VoterCount int
}

// RecordVote перезаписывает число голосов за кандидата. Повторный отчёт с теми же данными ничего не меняет.
func (e *Engine) RecordVote(ctx context.Context, pollID, memberName string, voteCount int) error {
	if voteCount < 0 {
		return apperrors.ErrInvalidArgument.WithDetail("отрицательное число голосов %d", voteCount)
	}
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		chatID, err := db.PollChatID(tx, pollID)
		if err != nil {
			return err
		}
		member, err := db.FindMemberByName(tx, chatID, memberName)
		if err != nil {
			return err
		}
		return db.UpdateVoteCount(tx, pollID, member.ID, voteCount)
	})
}

// HandleVoteCounts применяет отчёт о голосах по всем вариантам опроса.
// Вариант, для которого не нашлось участника, пропускается, остальные обрабатываются.
func (e *Engine) HandleVoteCounts(ctx context.Context, pollID string, options []OptionVotes) (int, error) {
	applied := 0
	for _, o := range options {
		err := e.RecordVote(ctx, pollID, o.Text, o.VoterCount)
		if err == nil {
			applied++
			continue
		}
		switch apperrors.KindOf(err) {
		case apperrors.KindNotFound, apperrors.KindValidation:
			e.log.Warn("⚠️ Голоса не учтены",
				zap.String("poll_id", pollID),
				zap.String("option", o.Text),
				zap.Int("votes", o.VoterCount),
				zap.Error(err))
		default:
			return applied, err
		}
	}
	e.log.Debug("📩 Голоса обновлены", zap.String("poll_id", pollID), zap.Int("applied", applied))
	return applied, nil
}
