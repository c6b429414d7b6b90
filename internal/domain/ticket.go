package domain

import "time"

type TicketStatus string

const (
	TicketPending    TicketStatus = "pending"
	TicketInProgress TicketStatus = "in_progress"
	TicketResolved   TicketStatus = "resolved"
)

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketPending, TicketInProgress, TicketResolved:
		return true
	}
	return false
}

// MaxReplyLen 回复长度上限（字符数），reply 用 varchar 以便 MySQL 允许默认值
const MaxReplyLen = 2000

// Ticket 投诉/工单。只保存联系邮箱，不直接引用用户 id。
type Ticket struct {
	ID        string       `gorm:"primaryKey;size:36" json:"id"`
	Email     string       `gorm:"size:191;not null;index" json:"email"`
	Title     string       `gorm:"size:191;not null" json:"title"`
	Content   string       `gorm:"type:text" json:"content"`
	Status    TicketStatus `gorm:"size:16;not null;default:pending;index" json:"status"`
	Reply     string       `gorm:"size:2000;not null;default:''" json:"reply"`
	RepliedAt *time.Time   `json:"repliedAt,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func (Ticket) TableName() string { return "complaints" }
