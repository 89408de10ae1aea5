package ws

import (
	"encoding/json"
	"testing"

	"sales_crm/internal/domain"
	"sales_crm/pkg/logger"
)

func newTestClient(empID int64) *Client {
	// Без conn и gateway: пампы в тестах не запускаются, а очередь
	// отправки читается напрямую
	c := newClient(nil, nil, domain.Identity{EmpID: empID, CompanyID: 1, Role: domain.RoleSales})
	return c
}

// recvEvent снимает один кадр из очереди клиента без блокировки
func recvEvent(t *testing.T, c *Client) *outFrame {
	t.Helper()
	select {
	case payload := <-c.send:
		var frame outFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			t.Fatalf("unmarshal frame: %v", err)
		}
		return &frame
	default:
		t.Fatal("expected a queued frame, send buffer is empty")
		return nil
	}
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case payload := <-c.send:
		t.Fatalf("unexpected frame: %s", payload)
	default:
	}
}

type outFrame struct {
	Event string          `json:"event"`
	ID    string          `json:"id"`
	Data  json.RawMessage `json:"data"`
}

func TestHubBroadcastReachesAllOccupants(t *testing.T) {
	hub := NewHub(logger.New("error"))
	a, b := newTestClient(1), newTestClient(2)
	outsider := newTestClient(3)

	hub.Join(ChannelRoom(5), a)
	hub.Join(ChannelRoom(5), b)
	hub.Join(ChannelRoom(6), outsider)

	hub.Broadcast(ChannelRoom(5), EventMessageNew, map[string]int64{"message_id": 42})

	for _, c := range []*Client{a, b} {
		frame := recvEvent(t, c)
		if frame.Event != EventMessageNew {
			t.Fatalf("event=%q want %q", frame.Event, EventMessageNew)
		}
	}
	assertNoEvent(t, outsider)
}

func TestHubBroadcastExceptSkipsSender(t *testing.T) {
	hub := NewHub(logger.New("error"))
	sender, other := newTestClient(1), newTestClient(2)

	hub.Join(ChannelRoom(5), sender)
	hub.Join(ChannelRoom(5), other)

	hub.BroadcastExcept(ChannelRoom(5), sender, EventTypingStart, presenceData{ChannelID: 5, EmpID: 1})

	recvEvent(t, other)
	assertNoEvent(t, sender)
}

func TestHubLeaveAllCleansEveryRoom(t *testing.T) {
	hub := NewHub(logger.New("error"))
	c := newTestClient(1)

	hub.Join(UserRoom(1), c)
	hub.Join(CompanyRoom(1), c)
	hub.Join(ChannelRoom(5), c)

	hub.LeaveAll(c)

	for _, room := range []string{UserRoom(1), CompanyRoom(1), ChannelRoom(5)} {
		if hub.InRoom(room, c) {
			t.Fatalf("client must have left %s", room)
		}
		if hub.Occupants(room) != 0 {
			t.Fatalf("empty room %s must be dropped", room)
		}
	}
	if len(c.rooms) != 0 {
		t.Fatalf("client room set must be empty, got %v", c.rooms)
	}
}

func TestHubLeaveIsIdempotent(t *testing.T) {
	hub := NewHub(logger.New("error"))
	c := newTestClient(1)

	hub.Join(ChannelRoom(5), c)
	hub.Leave(ChannelRoom(5), c)
	hub.Leave(ChannelRoom(5), c) // повторный выход безвреден

	if hub.InRoom(ChannelRoom(5), c) {
		t.Fatal("client must not remain in the room")
	}
}
