package ws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"sales_crm/internal/config"
	"sales_crm/internal/domain"
	apperrors "sales_crm/pkg/errors"
	"sales_crm/pkg/logger"
)

// fakeDiscuss покрывает только нужные шлюзу методы; остальное — заглушки
type fakeDiscuss struct {
	members map[int64]map[int64]bool // channel → emp → членство

	sendResult   *domain.Message
	sendErr      error
	editResult   *domain.Message
	editErr      error
	deleteResult *domain.Message
	deleteErr    error

	markErr error

	sendCalls int
	marked    []int64
}

func (f *fakeDiscuss) IsMember(_ context.Context, channelID, empID int64) (bool, error) {
	return f.members[channelID][empID], nil
}

func (f *fakeDiscuss) MarkRead(_ context.Context, channelID, _ int64) error {
	f.marked = append(f.marked, channelID)
	return f.markErr
}

func (f *fakeDiscuss) SendMessage(_ context.Context, _, _ int64, _ string, _ *int64) (*domain.Message, error) {
	f.sendCalls++
	return f.sendResult, f.sendErr
}

func (f *fakeDiscuss) EditMessage(_ context.Context, _, _ int64, _ string) (*domain.Message, error) {
	return f.editResult, f.editErr
}

func (f *fakeDiscuss) DeleteMessage(_ context.Context, _, _ int64, _ string) (*domain.Message, error) {
	return f.deleteResult, f.deleteErr
}

func (f *fakeDiscuss) CreateChannel(context.Context, int64, int64, string, *string, bool) (*domain.Channel, error) {
	return nil, nil
}
func (f *fakeDiscuss) GetMyChannels(context.Context, int64, int64) ([]*domain.ChannelSummary, error) {
	return nil, nil
}
func (f *fakeDiscuss) BrowseChannels(context.Context, int64) ([]*domain.ChannelSummary, error) {
	return nil, nil
}
func (f *fakeDiscuss) GetChannel(context.Context, int64, int64) (*domain.ChannelSummary, error) {
	return nil, nil
}
func (f *fakeDiscuss) UpdateChannel(context.Context, int64, int64, *string, *string) error {
	return nil
}
func (f *fakeDiscuss) DeleteChannel(context.Context, int64, int64) error { return nil }
func (f *fakeDiscuss) JoinChannel(context.Context, int64, int64) error   { return nil }
func (f *fakeDiscuss) LeaveChannel(context.Context, int64, int64) error  { return nil }
func (f *fakeDiscuss) GetMembers(context.Context, int64) ([]*domain.MemberProfile, error) {
	return nil, nil
}
func (f *fakeDiscuss) GetMessages(context.Context, int64, int64, int, *int64) ([]*domain.Message, error) {
	return nil, nil
}
func (f *fakeDiscuss) GetThread(context.Context, int64, int64, int) ([]*domain.Message, error) {
	return nil, nil
}
func (f *fakeDiscuss) GetMyMentions(context.Context, int64, int) ([]*domain.MentionFeedItem, error) {
	return nil, nil
}
func (f *fakeDiscuss) SearchMessages(context.Context, int64, int64, string, int) ([]*domain.MentionFeedItem, error) {
	return nil, nil
}

func newTestGateway(discuss *fakeDiscuss, limit int) *Gateway {
	log := logger.New("error")
	cfg := config.ChatConfig{
		RateLimitWindow: 10 * time.Second,
		RateLimitMax:    limit,
		MaxPayloadBytes: 1 << 20,
		PongWait:        time.Minute,
		WriteWait:       10 * time.Second,
	}
	return NewGateway(NewHub(log), discuss, NewMessageLimiter(cfg.RateLimitWindow, cfg.RateLimitMax), cfg, log)
}

func gatewayClient(g *Gateway, empID int64, role string) *Client {
	c := newClient(g, nil, domain.Identity{EmpID: empID, CompanyID: 1, Role: role})
	g.hub.Join(UserRoom(empID), c)
	g.hub.Join(CompanyRoom(1), c)
	return c
}

func envelope(t *testing.T, event, id string, payload any) *Envelope {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return &Envelope{Event: event, ID: id, Data: raw}
}

func decodeAck(t *testing.T, frame *outFrame) ackData {
	t.Helper()
	if frame.Event != EventAck {
		t.Fatalf("event=%q want %q", frame.Event, EventAck)
	}
	var ack ackData
	if err := json.Unmarshal(frame.Data, &ack); err != nil {
		t.Fatalf("unmarshal ack: %v", err)
	}
	return ack
}

func TestGatewayChannelJoin(t *testing.T) {
	discuss := &fakeDiscuss{members: map[int64]map[int64]bool{5: {1: true, 2: true}}}
	g := newTestGateway(discuss, 30)

	member := gatewayClient(g, 1, domain.RoleSales)
	peer := gatewayClient(g, 2, domain.RoleSales)
	g.hub.Join(ChannelRoom(5), peer)

	g.dispatch(member, envelope(t, EventChannelJoin, "j1", channelPayload{ChannelID: 5}))

	if !g.hub.InRoom(ChannelRoom(5), member) {
		t.Fatal("member must be in the channel room after join")
	}
	if len(discuss.marked) != 1 || discuss.marked[0] != 5 {
		t.Fatalf("join must mark channel read, marked=%v", discuss.marked)
	}

	// Остальные в комнате получают presence, сам вошедший — нет
	frame := recvEvent(t, peer)
	if frame.Event != EventUserJoined {
		t.Fatalf("event=%q want %q", frame.Event, EventUserJoined)
	}
	assertNoEvent(t, member)
}

func TestGatewayChannelJoinMarkReadFailure(t *testing.T) {
	discuss := &fakeDiscuss{
		members: map[int64]map[int64]bool{5: {1: true, 2: true}},
		markErr: errors.New("db down"),
	}
	g := newTestGateway(discuss, 30)

	member := gatewayClient(g, 1, domain.RoleSales)
	peer := gatewayClient(g, 2, domain.RoleSales)
	g.hub.Join(ChannelRoom(5), peer)

	g.dispatch(member, envelope(t, EventChannelJoin, "j1", channelPayload{ChannelID: 5}))

	// Сбой курсора: вошедшему — error, остальным presence не уходит
	frame := recvEvent(t, member)
	if frame.Event != EventError || frame.ID != "j1" {
		t.Fatalf("want correlated error event, got %+v", frame)
	}
	assertNoEvent(t, peer)

	// Вход в комнату состоялся до сбоя
	if !g.hub.InRoom(ChannelRoom(5), member) {
		t.Fatal("member stays in the room")
	}
}

func TestGatewayChannelJoinDeniedForNonMember(t *testing.T) {
	discuss := &fakeDiscuss{members: map[int64]map[int64]bool{}}
	g := newTestGateway(discuss, 30)

	c := gatewayClient(g, 1, domain.RoleSales)
	g.dispatch(c, envelope(t, EventChannelJoin, "j1", channelPayload{ChannelID: 5}))

	frame := recvEvent(t, c)
	if frame.Event != EventError || frame.ID != "j1" {
		t.Fatalf("want correlated error event, got %+v", frame)
	}
	if g.hub.InRoom(ChannelRoom(5), c) {
		t.Fatal("non-member must not enter the room")
	}
}

func TestGatewayMessageSendBroadcastAndAck(t *testing.T) {
	discuss := &fakeDiscuss{
		members:    map[int64]map[int64]bool{5: {1: true}},
		sendResult: &domain.Message{ID: 42, ChannelID: 5, SenderEmpID: 1, Content: "hello"},
	}
	g := newTestGateway(discuss, 30)

	c := gatewayClient(g, 1, domain.RoleSales)
	g.hub.Join(ChannelRoom(5), c)

	g.dispatch(c, envelope(t, EventMessageSend, "m1", sendPayload{ChannelID: 5, Content: "hello"}))

	// Сначала рассылка в комнату (отправитель включен), затем подтверждение
	frame := recvEvent(t, c)
	if frame.Event != EventMessageNew {
		t.Fatalf("event=%q want %q", frame.Event, EventMessageNew)
	}

	ackFrame := recvEvent(t, c)
	if ackFrame.ID != "m1" {
		t.Fatalf("ack id=%q want %q", ackFrame.ID, "m1")
	}
	ack := decodeAck(t, ackFrame)
	if !ack.OK || ack.MessageID != 42 {
		t.Fatalf("ack=%+v want ok with message_id=42", ack)
	}
}

func TestGatewayMessageSendRateLimited(t *testing.T) {
	discuss := &fakeDiscuss{
		sendResult: &domain.Message{ID: 1, ChannelID: 5, SenderEmpID: 1, Content: "x"},
	}
	g := newTestGateway(discuss, 1)

	c := gatewayClient(g, 1, domain.RoleSales)

	g.dispatch(c, envelope(t, EventMessageSend, "m1", sendPayload{ChannelID: 5, Content: "x"}))
	recvEvent(t, c) // ack первой отправки

	g.dispatch(c, envelope(t, EventMessageSend, "m2", sendPayload{ChannelID: 5, Content: "x"}))

	ack := decodeAck(t, recvEvent(t, c))
	if ack.OK || ack.Error != "rate limit exceeded" {
		t.Fatalf("ack=%+v want rate limit rejection", ack)
	}
	if discuss.sendCalls != 1 {
		t.Fatalf("rejected send must not reach the service, calls=%d", discuss.sendCalls)
	}
}

func TestGatewayMentionFanout(t *testing.T) {
	content := "ping @[B](emp:9) and @[self](emp:1) on #[Deal](deal:3)"
	discuss := &fakeDiscuss{
		sendResult: &domain.Message{
			ID: 42, ChannelID: 5, SenderEmpID: 1, Content: content, SenderName: "Alice",
			Mentions: []domain.Mention{
				{Type: domain.MentionTypeEmployee, RefID: 9},
				{Type: domain.MentionTypeEmployee, RefID: 1},
				{Type: domain.MentionTypeDeal, RefID: 3},
			},
		},
	}
	g := newTestGateway(discuss, 30)

	sender := gatewayClient(g, 1, domain.RoleSales)
	mentioned := gatewayClient(g, 9, domain.RoleSales)

	g.dispatch(sender, envelope(t, EventMessageSend, "m1", sendPayload{ChannelID: 5, Content: content}))

	frame := recvEvent(t, mentioned)
	if frame.Event != EventMentionNew {
		t.Fatalf("event=%q want %q", frame.Event, EventMentionNew)
	}
	var note mentionNotification
	if err := json.Unmarshal(frame.Data, &note); err != nil {
		t.Fatalf("unmarshal notification: %v", err)
	}
	if note.MessageID != 42 || note.ChannelID != 5 || note.SenderName != "Alice" {
		t.Fatalf("notification=%+v", note)
	}
	assertNoEvent(t, mentioned)

	// Отправителю — только ack, без уведомления о самоупоминании
	ack := decodeAck(t, recvEvent(t, sender))
	if !ack.OK {
		t.Fatalf("ack=%+v", ack)
	}
	assertNoEvent(t, sender)
}

func TestGatewayMessageSendErrorAck(t *testing.T) {
	discuss := &fakeDiscuss{sendErr: apperrors.ErrNotChannelMember}
	g := newTestGateway(discuss, 30)

	c := gatewayClient(g, 1, domain.RoleSales)
	g.dispatch(c, envelope(t, EventMessageSend, "m1", sendPayload{ChannelID: 5, Content: "x"}))

	ack := decodeAck(t, recvEvent(t, c))
	if ack.OK || ack.Error == "" {
		t.Fatalf("ack=%+v want error", ack)
	}
}

func TestGatewayTypingRelay(t *testing.T) {
	g := newTestGateway(&fakeDiscuss{}, 30)

	typist := gatewayClient(g, 1, domain.RoleSales)
	watcher := gatewayClient(g, 2, domain.RoleSales)
	g.hub.Join(ChannelRoom(5), typist)
	g.hub.Join(ChannelRoom(5), watcher)

	g.dispatch(typist, envelope(t, EventTypingStart, "", channelPayload{ChannelID: 5}))

	frame := recvEvent(t, watcher)
	if frame.Event != EventTypingStart {
		t.Fatalf("event=%q want %q", frame.Event, EventTypingStart)
	}
	// Набор не подтверждается и не возвращается отправителю
	assertNoEvent(t, typist)
}

func TestGatewayUnknownEvent(t *testing.T) {
	g := newTestGateway(&fakeDiscuss{}, 30)

	c := gatewayClient(g, 1, domain.RoleSales)
	g.dispatch(c, &Envelope{Event: "bogus", ID: "x1"})

	frame := recvEvent(t, c)
	if frame.Event != EventError || frame.ID != "x1" {
		t.Fatalf("want correlated error event, got %+v", frame)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("привет мир", 6); got != "привет" {
		t.Fatalf("got %q", got)
	}
	if got := truncateRunes("short", 100); got != "short" {
		t.Fatalf("got %q", got)
	}
}
