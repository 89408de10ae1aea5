package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"sales_crm/internal/domain"
)

const sendBufferSize = 64

// Client — одно websocket-соединение аутентифицированного сотрудника
type Client struct {
	ID       uuid.UUID
	Identity domain.Identity

	conn    *websocket.Conn
	send    chan []byte
	gateway *Gateway

	// набор комнат; защищен мьютексом хаба
	rooms map[string]struct{}

	closeOnce sync.Once
}

func newClient(gateway *Gateway, conn *websocket.Conn, identity domain.Identity) *Client {
	return &Client{
		ID:       uuid.New(),
		Identity: identity,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		gateway:  gateway,
		rooms:    make(map[string]struct{}),
	}
}

// enqueue кладет кадр в очередь отправки; медленный клиент кадр теряет —
// realtime-доставка best-effort, источник истины остается в БД
func (c *Client) enqueue(payload []byte) {
	select {
	case c.send <- payload:
	default:
		c.gateway.log.Warn("Send buffer full, dropping frame", "conn_id", c.ID, "emp_id", c.Identity.EmpID)
	}
}

func (c *Client) sendEvent(event, id string, data any) {
	payload, err := json.Marshal(outEnvelope{Event: event, ID: id, Data: data})
	if err != nil {
		c.gateway.log.Error("Failed to marshal event", "event", event, "error", err)
		return
	}
	c.enqueue(payload)
}

func (c *Client) ack(id string, data ackData) {
	c.sendEvent(EventAck, id, data)
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// readPump читает входящие конверты; на выходе соединение вычищается
func (c *Client) readPump() {
	defer func() {
		c.gateway.disconnect(c)
		c.conn.Close()
	}()

	cfg := c.gateway.cfg
	c.conn.SetReadLimit(cfg.MaxPayloadBytes)
	c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.gateway.log.Warn("Unexpected close", "conn_id", c.ID, "error", err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.sendEvent(EventError, "", errorData{Message: "malformed envelope"})
			continue
		}

		c.gateway.dispatch(c, &env)
	}
}

// writePump пишет кадры из очереди и поддерживает соединение пингами
func (c *Client) writePump() {
	cfg := c.gateway.cfg
	pingPeriod := cfg.PongWait * 9 / 10
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
