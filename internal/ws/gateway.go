package ws

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"
	"sales_crm/internal/config"
	"sales_crm/internal/domain"
	"sales_crm/internal/service"
	"sales_crm/pkg/logger"
)

// Gateway — realtime-шлюз чата: комнаты, лимитер, диспетчеризация
// событий в DiscussService и рассылка результатов. Зеркалирует REST,
// ничего не хранит дольше жизни соединения.
type Gateway struct {
	hub     *Hub
	discuss service.DiscussService
	limiter *MessageLimiter
	cfg     config.ChatConfig
	log     logger.Logger
}

func NewGateway(hub *Hub, discuss service.DiscussService, limiter *MessageLimiter, cfg config.ChatConfig, log logger.Logger) *Gateway {
	return &Gateway{
		hub:     hub,
		discuss: discuss,
		limiter: limiter,
		cfg:     cfg,
		log:     log,
	}
}

// HandleConnection обслуживает уже аутентифицированное соединение до разрыва
func (g *Gateway) HandleConnection(conn *websocket.Conn, identity domain.Identity) {
	client := newClient(g, conn, identity)

	// Постоянные комнаты: личная (адресные уведомления) и комната компании
	g.hub.Join(UserRoom(identity.EmpID), client)
	g.hub.Join(CompanyRoom(identity.CompanyID), client)

	g.log.Info("WS connected", "conn_id", client.ID, "emp_id", identity.EmpID, "company_id", identity.CompanyID)

	go client.writePump()
	client.readPump()
}

func (g *Gateway) disconnect(c *Client) {
	g.hub.LeaveAll(c)
	g.limiter.Forget(c.ID.String())
	c.close()
	g.log.Info("WS disconnected", "conn_id", c.ID, "emp_id", c.Identity.EmpID)
}

// dispatch разбирает событие и выполняет обработчик. Прикладные ошибки
// уходят в ack или событие error — соединение не рвется никогда.
func (g *Gateway) dispatch(c *Client, env *Envelope) {
	ctx := context.Background()

	switch env.Event {
	case EventChannelJoin:
		g.handleChannelJoin(ctx, c, env)
	case EventChannelLeave:
		g.handleChannelLeave(c, env)
	case EventMessageSend:
		g.handleMessageSend(ctx, c, env)
	case EventMessageEdit:
		g.handleMessageEdit(ctx, c, env)
	case EventMessageDelete:
		g.handleMessageDelete(ctx, c, env)
	case EventTypingStart, EventTypingStop:
		g.handleTyping(c, env)
	default:
		c.sendEvent(EventError, env.ID, errorData{Message: "unknown event: " + env.Event})
	}
}

func (g *Gateway) handleChannelJoin(ctx context.Context, c *Client, env *Envelope) {
	var p channelPayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		c.sendEvent(EventError, env.ID, errorData{Message: "malformed payload"})
		return
	}

	member, err := g.discuss.IsMember(ctx, p.ChannelID, c.Identity.EmpID)
	if err != nil {
		c.sendEvent(EventError, env.ID, errorData{Message: err.Error()})
		return
	}
	if !member {
		c.sendEvent(EventError, env.ID, errorData{Message: "not a member"})
		return
	}

	room := ChannelRoom(p.ChannelID)
	g.hub.Join(room, c)

	// Открытие канала сдвигает курсор чтения; при сбое клиент получает
	// error, presence остальным не рассылается (в комнате он уже состоит)
	if err := g.discuss.MarkRead(ctx, p.ChannelID, c.Identity.EmpID); err != nil {
		g.log.Warn("Failed to mark read on join", "channel_id", p.ChannelID, "error", err)
		c.sendEvent(EventError, env.ID, errorData{Message: "failed to mark channel read"})
		return
	}

	g.hub.BroadcastExcept(room, c, EventUserJoined, presenceData{ChannelID: p.ChannelID, EmpID: c.Identity.EmpID})
}

// handleChannelLeave не проверяет членство: выход из комнаты,
// в которой не состоял — безвредный no-op
func (g *Gateway) handleChannelLeave(c *Client, env *Envelope) {
	var p channelPayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		c.sendEvent(EventError, env.ID, errorData{Message: "malformed payload"})
		return
	}

	room := ChannelRoom(p.ChannelID)
	g.hub.Leave(room, c)
	g.hub.BroadcastExcept(room, c, EventUserLeft, presenceData{ChannelID: p.ChannelID, EmpID: c.Identity.EmpID})
}

func (g *Gateway) handleMessageSend(ctx context.Context, c *Client, env *Envelope) {
	var p sendPayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		c.ack(env.ID, ackData{Error: "malformed payload"})
		return
	}

	if !g.limiter.Allow(c.ID.String()) {
		c.ack(env.ID, ackData{Error: "rate limit exceeded"})
		return
	}

	message, err := g.discuss.SendMessage(ctx, p.ChannelID, c.Identity.EmpID, p.Content, p.ParentMessageID)
	if err != nil {
		c.ack(env.ID, ackData{Error: err.Error()})
		return
	}

	// Всем в канале, включая отправителя — его другие вкладки тоже должны увидеть
	g.hub.Broadcast(ChannelRoom(p.ChannelID), EventMessageNew, message)

	for _, mention := range message.Mentions {
		if mention.Type != domain.MentionTypeEmployee || mention.RefID == c.Identity.EmpID {
			continue
		}
		g.hub.Broadcast(UserRoom(mention.RefID), EventMentionNew, mentionNotification{
			MessageID:  message.ID,
			ChannelID:  p.ChannelID,
			SenderName: message.SenderName,
			Content:    truncateRunes(message.Content, 100),
		})
	}

	c.ack(env.ID, ackData{OK: true, MessageID: message.ID})
}

func (g *Gateway) handleMessageEdit(ctx context.Context, c *Client, env *Envelope) {
	var p editPayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		c.ack(env.ID, ackData{Error: "malformed payload"})
		return
	}

	updated, err := g.discuss.EditMessage(ctx, p.MessageID, c.Identity.EmpID, p.Content)
	if err != nil {
		c.ack(env.ID, ackData{Error: err.Error()})
		return
	}

	g.hub.Broadcast(ChannelRoom(updated.ChannelID), EventMessageEdited, updated)
	c.ack(env.ID, ackData{OK: true, MessageID: updated.ID})
}

func (g *Gateway) handleMessageDelete(ctx context.Context, c *Client, env *Envelope) {
	var p deletePayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		c.ack(env.ID, ackData{Error: "malformed payload"})
		return
	}

	deleted, err := g.discuss.DeleteMessage(ctx, p.MessageID, c.Identity.EmpID, c.Identity.Role)
	if err != nil {
		c.ack(env.ID, ackData{Error: err.Error()})
		return
	}

	g.hub.Broadcast(ChannelRoom(deleted.ChannelID), EventMessageDeleted, deletedNotice{
		MessageID: deleted.ID,
		ChannelID: deleted.ChannelID,
	})
	c.ack(env.ID, ackData{OK: true})
}

// handleTyping ретранслирует индикатор набора остальным в комнате:
// без персистентности, без подтверждения, без лимитера
func (g *Gateway) handleTyping(c *Client, env *Envelope) {
	var p channelPayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		return
	}

	g.hub.BroadcastExcept(ChannelRoom(p.ChannelID), c, env.Event, presenceData{
		ChannelID: p.ChannelID,
		EmpID:     c.Identity.EmpID,
	})
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
