package tender

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MonsieurPatate/daily-tender-bot/internal/apperrors"
	"github.com/MonsieurPatate/daily-tender-bot/internal/db"
	"github.com/MonsieurPatate/daily-tender-bot/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Ограничение Telegram на длину варианта ответа в опросе
const maxNameLength = 100

// InitChat создаёт конфигурацию чата. Повторный вызов ничего не меняет.
func (e *Engine) InitChat(ctx context.Context, chatID int64) error {
	if err := db.EnsureConfig(e.db.WithContext(ctx), chatID); err != nil {
		return err
	}
	e.log.Info("✅ Конфигурация чата сохранена", zap.Int64("chat_id", chatID))
	return nil
}

func (e *Engine) AddMember(ctx context.Context, chatID int64, fullName string) (*db.Member, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, apperrors.ErrInvalidArgument.WithDetail("после команды нужно указать имя")
	}
	if utf8.RuneCountInString(fullName) > maxNameLength {
		return nil, apperrors.ErrInvalidArgument.WithDetail("имя длиннее %d символов", maxNameLength)
	}

	var m *db.Member
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		m, err = db.CreateMember(tx, chatID, fullName)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("Добавлен участник", zap.Int64("chat_id", chatID), zap.String("name", fullName), zap.Uint("id", m.ID))
	return m, nil
}

// RemoveMember удаляет участника по id или имени.
func (e *Engine) RemoveMember(ctx context.Context, chatID int64, identity string) (*db.Member, error) {
	if strings.TrimSpace(identity) == "" {
		return nil, apperrors.ErrInvalidArgument.WithDetail("после команды нужно указать имя или id")
	}

	var m *db.Member
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		m, err = db.FindMemberByIdentity(tx, chatID, identity)
		if err != nil {
			return err
		}
		return db.DeleteMember(tx, m)
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("Участник удалён", zap.Int64("chat_id", chatID), zap.String("name", m.FullName))
	return m, nil
}

func (e *Engine) ListMembers(ctx context.Context, chatID int64) ([]db.Member, error) {
	return db.FindMembers(e.db.WithContext(ctx), chatID)
}

// ExemptMember освобождает участника от тендеров до указанной даты включительно.
func (e *Engine) ExemptMember(ctx context.Context, chatID int64, fullName string, until time.Time) error {
	until = utils.DateOf(until)
	if utils.BeforeDate(until, e.Today()) {
		return apperrors.ErrInvalidDate.WithDetail("дата %s уже прошла", utils.FormatDate(until))
	}
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := db.FindMemberByName(tx, chatID, strings.TrimSpace(fullName))
		if err != nil {
			return err
		}
		return db.SetSkipUntil(tx, m.ID, until)
	})
	if err != nil {
		return err
	}
	e.log.Info("Участник освобождён", zap.Int64("chat_id", chatID), zap.String("name", fullName), zap.Time("until", until))
	return nil
}

// CurrentCandidates — имена кандидатов открытого опроса.
func (e *Engine) CurrentCandidates(ctx context.Context, chatID int64) ([]string, error) {
	conn := e.db.WithContext(ctx)
	cfg, err := db.GetConfig(conn, chatID)
	if err != nil {
		return nil, err
	}
	if !pollIsRelevant(cfg, e.Today()) {
		return nil, apperrors.ErrNoRelevantPoll
	}
	rows, err := db.FindParticipants(conn, *cfg.CurrentPollID)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Member.FullName)
	}
	return out, nil
}
