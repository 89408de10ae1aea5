package domain

import (
	"time"
)

type Message struct {
	ID              int64     `json:"message_id"`
	ChannelID       int64     `json:"channel_id"`
	SenderEmpID     int64     `json:"sender_emp_id"`
	Content         string    `json:"content"`
	ParentMessageID *int64    `json:"parent_message_id,omitempty"`
	IsEdited        bool      `json:"is_edited"`
	IsDeleted       bool      `json:"is_deleted"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Поля отправителя из справочника сотрудников (заполняются при выборке)
	SenderName  string `json:"sender_name,omitempty"`
	SenderEmail string `json:"sender_email,omitempty"`

	// Упоминания, извлеченные из content (не хранятся в строке сообщения)
	Mentions []Mention `json:"mentions,omitempty"`
}

const (
	MentionTypeEmployee = "EMPLOYEE"
	MentionTypeDeal     = "DEAL"
)

type Mention struct {
	Type  string `json:"type"`
	RefID int64  `json:"ref_id"`
}

// ResolvedMention — упоминание с именем целевой сущности
type ResolvedMention struct {
	ID      int64   `json:"mention_id"`
	Type    string  `json:"mention_type"`
	RefID   int64   `json:"ref_id"`
	RefName *string `json:"ref_name,omitempty"`
}

// MentionFeedItem — элемент ленты «мои упоминания» / результатов поиска
type MentionFeedItem struct {
	MessageID   int64     `json:"message_id"`
	ChannelID   int64     `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	SenderName  string    `json:"sender_name"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}
