package ws

import (
	"encoding/json"
	"fmt"
)

// Клиентские события
const (
	EventChannelJoin   = "channel:join"
	EventChannelLeave  = "channel:leave"
	EventMessageSend   = "message:send"
	EventMessageEdit   = "message:edit"
	EventMessageDelete = "message:delete"
	EventTypingStart   = "typing:start"
	EventTypingStop    = "typing:stop"
)

// Серверные события
const (
	EventAck            = "ack"
	EventError          = "error"
	EventMessageNew     = "message:new"
	EventMessageEdited  = "message:edited"
	EventMessageDeleted = "message:deleted"
	EventMentionNew     = "mention:new"
	EventUserJoined     = "channel:user_joined"
	EventUserLeft       = "channel:user_left"
)

// Envelope — конверт входящего события; id — корреляционный идентификатор
// для подтверждения (аналог socket.io ack callback)
type Envelope struct {
	Event string          `json:"event"`
	ID    string          `json:"id,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outEnvelope struct {
	Event string `json:"event"`
	ID    string `json:"id,omitempty"`
	Data  any    `json:"data,omitempty"`
}

type channelPayload struct {
	ChannelID int64 `json:"channel_id"`
}

type sendPayload struct {
	ChannelID       int64  `json:"channel_id"`
	Content         string `json:"content"`
	ParentMessageID *int64 `json:"parent_message_id,omitempty"`
}

type editPayload struct {
	MessageID int64  `json:"message_id"`
	Content   string `json:"content"`
}

type deletePayload struct {
	MessageID int64 `json:"message_id"`
}

type ackData struct {
	OK        bool   `json:"ok,omitempty"`
	MessageID int64  `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

type errorData struct {
	Message string `json:"message"`
}

type presenceData struct {
	ChannelID int64 `json:"channel_id"`
	EmpID     int64 `json:"emp_id"`
}

type mentionNotification struct {
	MessageID  int64  `json:"message_id"`
	ChannelID  int64  `json:"channel_id"`
	SenderName string `json:"sender_name"`
	Content    string `json:"content"`
}

type deletedNotice struct {
	MessageID int64 `json:"message_id"`
	ChannelID int64 `json:"channel_id"`
}

// Ключи комнат

func UserRoom(empID int64) string {
	return fmt.Sprintf("user:%d", empID)
}

func CompanyRoom(companyID int64) string {
	return fmt.Sprintf("company:%d", companyID)
}

func ChannelRoom(channelID int64) string {
	return fmt.Sprintf("channel:%d", channelID)
}
