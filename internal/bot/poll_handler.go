package bot

import (
	"context"

	"github.com/MonsieurPatate/daily-tender-bot/internal/tender"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// HandlePoll получает новое состояние опроса: число голосов по каждому варианту.
func (h *Handler) HandlePoll(ctx context.Context, poll *tgbotapi.Poll) {
	if poll.IsClosed {
		h.log.Debug("Опрос закрыт, голоса не учитываются", zap.String("poll_id", poll.ID))
		return
	}

	options := make([]tender.OptionVotes, 0, len(poll.Options))
	for _, o := range poll.Options {
		options = append(options, tender.OptionVotes{Text: o.Text, VoterCount: o.VoterCount})
	}

	h.log.Info("📩 Получены голоса", zap.String("poll_id", poll.ID), zap.Int("total", poll.TotalVoterCount))
	if _, err := h.engine.HandleVoteCounts(ctx, poll.ID, options); err != nil {
		h.log.Error("❌ Ошибка сохранения голосов", zap.String("poll_id", poll.ID), zap.Error(err))
	}
}
