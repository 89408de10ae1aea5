package domain

import (
	"time"
)

type Channel struct {
	ID          int64     `json:"channel_id"`
	CompanyID   int64     `json:"company_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	IsDefault   bool      `json:"is_default"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChannelSummary — канал с метаданными для списков (счетчики, курсор чтения)
type ChannelSummary struct {
	Channel
	LastReadAt  *time.Time `json:"last_read_at,omitempty"`
	UnreadCount int        `json:"unread_count"`
	MemberCount int        `json:"member_count"`
}

type ChannelMember struct {
	ChannelID  int64     `json:"channel_id"`
	EmpID      int64     `json:"emp_id"`
	JoinedAt   time.Time `json:"joined_at"`
	LastReadAt time.Time `json:"last_read_at"`
}

// MemberProfile — участник канала с данными из справочника сотрудников
type MemberProfile struct {
	EmpID      int64     `json:"emp_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Department *string   `json:"department,omitempty"`
	JoinedAt   time.Time `json:"joined_at"`
}
