package db

import (
	"errors"
	"time"

	"github.com/MonsieurPatate/daily-tender-bot/internal/apperrors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnsureConfig создаёт конфигурацию чата, если её ещё нет.
func EnsureConfig(tx *gorm.DB, chatID int64) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}},
		DoNothing: true,
	}).Create(&ChatConfig{ChatID: chatID}).Error
}

func GetConfig(tx *gorm.DB, chatID int64) (*ChatConfig, error) {
	var c ChatConfig
	err := tx.Where("chat_id = ?", chatID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrConfigNotFound.WithDetail("chat_id=%d", chatID)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindConfigsWithPendingResolution — чаты, у которых назначено подведение итогов.
func FindConfigsWithPendingResolution(tx *gorm.DB) ([]ChatConfig, error) {
	var configs []ChatConfig
	err := tx.Where("resolve_at IS NOT NULL AND current_poll_id IS NOT NULL").
		Order("chat_id ASC").Find(&configs).Error
	return configs, err
}

// SetCurrentPoll запоминает открытый опрос, день его открытия и время подведения итогов.
func SetCurrentPoll(tx *gorm.DB, chatID int64, pollID string, messageID int, openedOn time.Time, resolveAt *time.Time) error {
	updates := map[string]any{
		"current_poll_id":         pollID,
		"current_poll_message_id": messageID,
		"poll_opened_date":        openedOn,
	}
	if resolveAt != nil {
		updates["resolve_at"] = *resolveAt
	}
	return updateConfig(tx, chatID, updates)
}

// MarkResolved фиксирует дату подведения итогов и закрывает текущий опрос:
// после этого у чата нет открытого опроса.
func MarkResolved(tx *gorm.DB, chatID int64, day time.Time) error {
	return updateConfig(tx, chatID, map[string]any{
		"last_resolution_date":    day,
		"current_poll_id":         nil,
		"current_poll_message_id": nil,
		"poll_opened_date":        nil,
		"resolve_at":              nil,
	})
}

func updateConfig(tx *gorm.DB, chatID int64, updates map[string]any) error {
	res := tx.Model(&ChatConfig{}).Where("chat_id = ?", chatID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrConfigNotFound.WithDetail("chat_id=%d", chatID)
	}
	return nil
}
