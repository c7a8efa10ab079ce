package handler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leowang3268/puzzle-chat-ai/internal/config"
	"github.com/leowang3268/puzzle-chat-ai/internal/domain"
	"github.com/leowang3268/puzzle-chat-ai/internal/hub"
)

// recordingSession counts which operations the dispatcher invoked.
type recordingSession struct {
	connects    int
	chats       int
	aiChats     int
	suggestions int
	thumbs      int
	typings     int
	stopTypings int
	reads       int

	lastChat *domain.ChatInbound
}

func (s *recordingSession) HandleConnect(context.Context, *hub.Client) error {
	s.connects++
	return nil
}

func (s *recordingSession) HandleChat(_ context.Context, _ *hub.Client, in *domain.ChatInbound) error {
	s.chats++
	s.lastChat = in
	return nil
}

func (s *recordingSession) HandleAIChat(context.Context, *hub.Client, *domain.AIChatInbound) error {
	s.aiChats++
	return nil
}

func (s *recordingSession) HandleSuggestionResponse(context.Context, *hub.Client, uint, domain.SuggestionResponse) error {
	s.suggestions++
	return nil
}

func (s *recordingSession) HandleThumbPress(context.Context, *hub.Client, int, string) error {
	s.thumbs++
	return nil
}

func (s *recordingSession) HandleTyping(context.Context, *hub.Client, string) error {
	s.typings++
	return nil
}

func (s *recordingSession) HandleStopTyping(context.Context, *hub.Client) error {
	s.stopTypings++
	return nil
}

func (s *recordingSession) HandleMarkAllRead(context.Context, *hub.Client) error {
	s.reads++
	return nil
}

func newTestDispatcher(t *testing.T) (*WSHandler, *recordingSession, *hub.Client) {
	t.Helper()

	session := &recordingSession{}
	h := hub.NewHub(config.WebSocketConfig{})
	handler := NewWSHandler(h, session)
	client := hub.NewClient("id-alice", "alice", "room1", h, nil)
	return handler, session, client
}

func recvError(t *testing.T, c *hub.Client) string {
	t.Helper()
	select {
	case raw := <-c.Send:
		var event domain.ErrorEvent
		require.NoError(t, json.Unmarshal(raw, &event))
		require.Equal(t, domain.MsgTypeError, event.Type)
		return event.Message
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for error event")
		return ""
	}
}

func assertNoEvent(t *testing.T, c *hub.Client) {
	t.Helper()
	select {
	case raw := <-c.Send:
		t.Fatalf("unexpected event: %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHandleMessageMalformedJSON(t *testing.T) {
	handler, session, client := newTestDispatcher(t)

	handler.handleMessage(client, []byte(`{"type": "chat", "message":`))

	assert.Equal(t, "Invalid JSON format", recvError(t, client))
	assert.Zero(t, session.chats)
}

func TestHandleMessageUnknownType(t *testing.T) {
	handler, session, client := newTestDispatcher(t)

	handler.handleMessage(client, []byte(`{"type": "teleport"}`))

	assert.Equal(t, "Unknown message type", recvError(t, client))
	assert.Equal(t, &recordingSession{}, session)
}

func TestHandleMessageBadPayloadForKnownType(t *testing.T) {
	handler, session, client := newTestDispatcher(t)

	handler.handleMessage(client, []byte(`{"type": "chat", "message": 42}`))

	assert.Equal(t, "Invalid chat message", recvError(t, client))
	assert.Zero(t, session.chats)
}

func TestHandleMessageSuggestionAckRequiresMessageID(t *testing.T) {
	handler, session, client := newTestDispatcher(t)

	handler.handleMessage(client, []byte(`{"type": "suggestion_sent"}`))

	assert.Equal(t, "Invalid suggestion acknowledgment", recvError(t, client))
	assert.Zero(t, session.suggestions)
}

func TestHandleMessageRecoversAfterProtocolError(t *testing.T) {
	handler, session, client := newTestDispatcher(t)

	// A bad frame produces an error event, then the connection keeps
	// dispatching as if nothing happened.
	handler.handleMessage(client, []byte(`not json at all`))
	assert.Equal(t, "Invalid JSON format", recvError(t, client))

	handler.handleMessage(client, []byte(`{"type": "chat", "message": "still here"}`))
	require.Equal(t, 1, session.chats)
	assert.Equal(t, "still here", session.lastChat.Message)
	assertNoEvent(t, client)
}

func TestHandleMessageDispatchesEveryInboundType(t *testing.T) {
	handler, session, client := newTestDispatcher(t)

	frames := []string{
		`{"type": "user_connect"}`,
		`{"type": "chat", "message": "hi"}`,
		`{"type": "ai_chat", "message": "他是名人嗎？", "mode": "A"}`,
		`{"type": "suggestion_sent", "ai_message_id": 7}`,
		`{"type": "suggestion_dismissed", "ai_message_id": 7}`,
		`{"type": "thumb_press", "index": 0, "userName": "alice"}`,
		`{"type": "typing", "message": "他..."}`,
		`{"type": "stop_typing"}`,
		`{"type": "mark_all_read"}`,
	}
	for _, frame := range frames {
		handler.handleMessage(client, []byte(frame))
	}

	assert.Equal(t, 1, session.connects)
	assert.Equal(t, 1, session.chats)
	assert.Equal(t, 1, session.aiChats)
	assert.Equal(t, 2, session.suggestions)
	assert.Equal(t, 1, session.thumbs)
	assert.Equal(t, 1, session.typings)
	assert.Equal(t, 1, session.stopTypings)
	assert.Equal(t, 1, session.reads)
	assertNoEvent(t, client)
}
