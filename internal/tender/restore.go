package tender

import (
	"context"

	"github.com/MonsieurPatate/daily-tender-bot/internal/db"

	"go.uber.org/zap"
)

// RestorePending снова ставит в планировщик подведение итогов открытых опросов
// (задачи живут только в памяти процесса). Просроченные срабатывают сразу.
func (e *Engine) RestorePending(ctx context.Context) (int, error) {
	configs, err := db.FindConfigsWithPendingResolution(e.db.WithContext(ctx))
	if err != nil {
		return 0, err
	}

	today := e.Today()
	now := e.Now()
	restored := 0
	for _, cfg := range configs {
		if !pollIsRelevant(&cfg, today) {
			continue
		}
		at := cfg.ResolveAt.UTC()
		if at.Before(now) {
			at = now
		}
		chatID := cfg.ChatID
		e.scheduler.Arm(chatID, at, func() { e.ScheduledResolve(chatID) })
		restored++
	}
	if restored > 0 {
		e.log.Info("⏰ Восстановлены отложенные подведения итогов", zap.Int("count", restored))
	}
	return restored, nil
}
