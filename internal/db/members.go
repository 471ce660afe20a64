package db

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/MonsieurPatate/daily-tender-bot/internal/apperrors"

	"gorm.io/gorm"
)

// CreateMember добавляет пользователя для участия в будущих голосованиях.
func CreateMember(tx *gorm.DB, chatID int64, fullName string) (*Member, error) {
	var existing int64
	if err := tx.Model(&Member{}).
		Where("chat_id = ? AND full_name = ?", chatID, fullName).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, apperrors.ErrMemberAlreadyExists.WithDetail("%q", fullName)
	}

	m := &Member{ChatID: chatID, FullName: fullName, CanParticipate: true}
	if err := tx.Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// FindMembers — все пользователи чата в порядке добавления.
func FindMembers(tx *gorm.DB, chatID int64) ([]Member, error) {
	var members []Member
	err := tx.Where("chat_id = ?", chatID).Order("id ASC").Find(&members).Error
	return members, err
}

// FindMembersExcept — пользователи чата, кроме перечисленных по имени.
func FindMembersExcept(tx *gorm.DB, chatID int64, excludedNames []string) ([]Member, error) {
	q := tx.Where("chat_id = ?", chatID)
	if len(excludedNames) > 0 {
		q = q.Where("full_name NOT IN ?", excludedNames)
	}
	var members []Member
	err := q.Order("id ASC").Find(&members).Error
	return members, err
}

func FindMemberByName(tx *gorm.DB, chatID int64, fullName string) (*Member, error) {
	var m Member
	err := tx.Where("chat_id = ? AND full_name = ?", chatID, fullName).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrMemberNotFound.WithDetail("имя %q", fullName)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindMemberByIdentity ищет по числовому id, иначе по имени.
func FindMemberByIdentity(tx *gorm.DB, chatID int64, identity string) (*Member, error) {
	identity = strings.TrimSpace(identity)
	id, convErr := strconv.ParseUint(identity, 10, 64)
	if convErr != nil {
		return FindMemberByName(tx, chatID, identity)
	}

	var m Member
	err := tx.Where("chat_id = ? AND id = ?", chatID, id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrMemberNotFound.WithDetail("идентификатор %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteMember удаляет пользователя вместе с его строками в текущем опросе.
func DeleteMember(tx *gorm.DB, m *Member) error {
	if err := tx.Where("member_id = ?", m.ID).Delete(&TenderParticipant{}).Error; err != nil {
		return err
	}
	return tx.Delete(m).Error
}

func SetCanParticipate(tx *gorm.DB, memberID uint, canParticipate bool) error {
	return tx.Model(&Member{}).Where("id = ?", memberID).
		Update("can_participate", canParticipate).Error
}

// SetSkipUntil — до какой даты (включительно) пользователь не участвует.
func SetSkipUntil(tx *gorm.DB, memberID uint, until time.Time) error {
	return tx.Model(&Member{}).Where("id = ?", memberID).
		Update("skip_until_date", until).Error
}

// ResetParticipation возвращает всем пользователям чата статус "готов провести дейли".
// skip_until_date не трогается.
func ResetParticipation(tx *gorm.DB, chatID int64) (int64, error) {
	res := tx.Model(&Member{}).Where("chat_id = ?", chatID).Update("can_participate", true)
	return res.RowsAffected, res.Error
}
