package tender

import (
	"errors"
	"math/rand"
	"time"

	"github.com/MonsieurPatate/daily-tender-bot/internal/apperrors"
	"github.com/MonsieurPatate/daily-tender-bot/internal/db"
	"github.com/MonsieurPatate/daily-tender-bot/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const DefaultCandidatesCount = 3

// PollRef — идентификаторы отправленного опроса.
type PollRef struct {
	PollID    string
	MessageID int
}

// Transport — отправка сообщений и опросов в чат.
type Transport interface {
	SendMessage(chatID int64, text string) error
	SendPoll(chatID int64, question string, options []string) (PollRef, error)
	DeleteMessage(chatID int64, messageID int) error
	StopPoll(chatID int64, messageID int) error
}

// Scheduler — отложенное подведение итогов, не больше одной задачи на чат.
type Scheduler interface {
	Arm(chatID int64, at time.Time, fn func()) uuid.UUID
	Cancel(chatID int64) bool
}

type Settings struct {
	CandidatesCount int
	// Now: источник текущего времени, "сегодня" считается по UTC
	Now  func() time.Time
	Rand *rand.Rand
}

// Engine проводит тендер: отбор кандидатов, опрос, голоса, подведение итогов.
// Каждая изменяющая операция выполняется в одной транзакции.
type Engine struct {
	db        *gorm.DB
	transport Transport
	scheduler Scheduler
	selector  *Selector
	log       *zap.Logger
	now       func() time.Time
	count     int
}

func NewEngine(conn *gorm.DB, transport Transport, scheduler Scheduler, log *zap.Logger, settings Settings) *Engine {
	if settings.CandidatesCount <= 0 {
		settings.CandidatesCount = DefaultCandidatesCount
	}
	if settings.Now == nil {
		settings.Now = time.Now
	}
	return &Engine{
		db:        conn,
		transport: transport,
		scheduler: scheduler,
		selector:  NewSelector(settings.Rand),
		log:       log,
		now:       settings.Now,
		count:     settings.CandidatesCount,
	}
}

func (e *Engine) Now() time.Time {
	return e.now().UTC()
}

// Today — текущая дата по UTC.
func (e *Engine) Today() time.Time {
	return utils.DateOf(e.now())
}

func canOrganize(cfg *db.ChatConfig, today time.Time) bool {
	return cfg.LastResolutionDate == nil || utils.BeforeDate(*cfg.LastResolutionDate, today)
}

// pollIsRelevant — опрос открыт: он есть, и итоги сегодня ещё не подводились.
// Подведение итогов сбрасывает CurrentPollID, поэтому закрытый опрос не оживает на следующий день.
func pollIsRelevant(cfg *db.ChatConfig, today time.Time) bool {
	if cfg.CurrentPollID == nil {
		return false
	}
	return cfg.LastResolutionDate == nil || !utils.SameDate(*cfg.LastResolutionDate, today)
}

// pollOpenedOn — текущий опрос открыт в указанный день.
func pollOpenedOn(cfg *db.ChatConfig, day time.Time) bool {
	return cfg.PollOpenedDate != nil && utils.SameDate(*cfg.PollOpenedDate, day)
}

func (e *Engine) pickCandidates(tx *gorm.DB, chatID int64, count int, excluded []string, today time.Time) ([]db.Member, error) {
	members, err := db.FindMembersExcept(tx, chatID, excluded)
	if err != nil {
		return nil, err
	}
	return e.selector.Select(members, count, excluded, today)
}

// candidatesWithReset отбирает кандидатов; если доступных нет, сбрасывает статусы и пробует ещё раз.
func (e *Engine) candidatesWithReset(tx *gorm.DB, chatID int64, today time.Time) ([]db.Member, error) {
	candidates, err := e.pickCandidates(tx, chatID, e.count, nil, today)
	if !errors.Is(err, apperrors.ErrNoEligibleMembers) {
		return candidates, err
	}

	e.log.Warn("⚠️ Нет доступных участников, сбрасываем статусы", zap.Int64("chat_id", chatID))
	n, err := db.ResetParticipation(tx, chatID)
	if err != nil {
		return nil, err
	}
	e.log.Info("Статусы участников сброшены", zap.Int64("chat_id", chatID), zap.Int64("rows", n))

	candidates, err = e.pickCandidates(tx, chatID, e.count, nil, today)
	if errors.Is(err, apperrors.ErrNoEligibleMembers) {
		return nil, apperrors.ErrNoCandidatesAvailable.WithDetail("chat_id=%d", chatID)
	}
	return candidates, err
}

// bestEffort логирует ошибку транспорта; зафиксированное состояние не откатывается.
func (e *Engine) bestEffort(action string, chatID int64, err error) {
	if err != nil {
		e.log.Warn("⚠️ Ошибка транспорта", zap.String("action", action), zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func memberNames(members []db.Member) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.FullName)
	}
	return out
}
