package db

import (
	"errors"

	"github.com/MonsieurPatate/daily-tender-bot/internal/apperrors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AddParticipants записывает кандидатов опроса в порядке вариантов ответа.
func AddParticipants(tx *gorm.DB, pollID string, members []Member) error {
	if len(members) == 0 {
		return nil
	}
	rows := make([]TenderParticipant, 0, len(members))
	for _, m := range members {
		rows = append(rows, TenderParticipant{PollID: pollID, ChatID: m.ChatID, MemberID: m.ID})
	}
	return tx.Omit(clause.Associations).Create(&rows).Error
}

// FindParticipants — кандидаты опроса в порядке добавления, с пользователями.
func FindParticipants(tx *gorm.DB, pollID string) ([]TenderParticipant, error) {
	var rows []TenderParticipant
	err := tx.Preload("Member").Where("poll_id = ?", pollID).Order("id ASC").Find(&rows).Error
	return rows, err
}

// PollChatID — чат, которому принадлежит опрос.
func PollChatID(tx *gorm.DB, pollID string) (int64, error) {
	var row TenderParticipant
	err := tx.Select("chat_id").Where("poll_id = ?", pollID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperrors.ErrParticipantNotFound.WithDetail("опрос %s", pollID)
	}
	if err != nil {
		return 0, err
	}
	return row.ChatID, nil
}

// UpdateVoteCount перезаписывает число голосов за кандидата.
func UpdateVoteCount(tx *gorm.DB, pollID string, memberID uint, voteCount int) error {
	res := tx.Model(&TenderParticipant{}).
		Where("poll_id = ? AND member_id = ?", pollID, memberID).
		Update("vote_count", voteCount)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrParticipantNotFound.WithDetail("опрос %s, участник #%d", pollID, memberID)
	}
	return nil
}

// MostVoted — кандидат с максимумом голосов.
// При равенстве побеждает тот, кто раньше добавлен в опрос (меньший id строки).
func MostVoted(tx *gorm.DB, pollID string) (*TenderParticipant, error) {
	var row TenderParticipant
	err := tx.Preload("Member").
		Where("poll_id = ?", pollID).
		Order("vote_count DESC").Order("id ASC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNoParticipants.WithDetail("опрос %s", pollID)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// DeleteChatParticipants удаляет кандидатов всех прошлых опросов чата.
func DeleteChatParticipants(tx *gorm.DB, chatID int64) (int64, error) {
	res := tx.Where("chat_id = ?", chatID).Delete(&TenderParticipant{})
	return res.RowsAffected, res.Error
}
