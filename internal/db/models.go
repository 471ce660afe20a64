package db

import (
	"time"
)

// Member — участник будущих тендеров на проведение дейли.
// Имя уникально в пределах чата.
type Member struct {
	ID             uint   `gorm:"primaryKey"`
	ChatID         int64  `gorm:"not null;uniqueIndex:idx_members_chat_name"`
	FullName       string `gorm:"not null;uniqueIndex:idx_members_chat_name"`
	CanParticipate bool   `gorm:"not null;default:true"`
	SkipUntilDate  *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ChatConfig — состояние чата: когда последний раз подводились итоги и какой опрос текущий.
type ChatConfig struct {
	ID                   uint  `gorm:"primaryKey"`
	ChatID               int64 `gorm:"not null;uniqueIndex"`
	LastResolutionDate   *time.Time
	CurrentPollID        *string
	CurrentPollMessageID *int
	// PollOpenedDate — день, когда открыт текущий опрос
	PollOpenedDate *time.Time
	// ResolveAt — на когда назначено подведение итогов текущего опроса
	ResolveAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TenderParticipant — кандидат текущего опроса и его голоса.
type TenderParticipant struct {
	ID        uint   `gorm:"primaryKey"`
	PollID    string `gorm:"not null;index;uniqueIndex:idx_participants_poll_member"`
	ChatID    int64  `gorm:"not null;index"`
	MemberID  uint   `gorm:"not null;uniqueIndex:idx_participants_poll_member"`
	Member    Member `gorm:"constraint:OnDelete:CASCADE"`
	VoteCount int    `gorm:"not null;default:0"`
}
