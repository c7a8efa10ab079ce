package hub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leowang3268/puzzle-chat-ai/internal/config"
)

func testWSConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		PingInterval:   30 * time.Second,
		PongWait:       60 * time.Second,
		WriteWait:      10 * time.Second,
		MaxMessageSize: 4096,
	}
}

func newTestClient(h *Hub, id, name, room string) *Client {
	return NewClient(id, name, room, h, nil)
}

func TestNewClientInheritsHubConfig(t *testing.T) {
	h := NewHub(testWSConfig())
	c := newTestClient(h, "c1", "alice", "room1")
	assert.Equal(t, testWSConfig(), c.config)
}

func recvEvent(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case payload := <-c.Send:
		var event map[string]interface{}
		require.NoError(t, json.Unmarshal(payload, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case payload := <-c.Send:
		t.Fatalf("unexpected event delivered: %s", payload)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPublishReachesAllRoomMembers(t *testing.T) {
	h := NewHub(testWSConfig())
	go h.Run()

	alice := newTestClient(h, "c1", "alice", "room1")
	bob := newTestClient(h, "c2", "bob", "room1")
	h.Register(alice)
	h.Register(bob)
	h.Subscribe("room1", alice)
	h.Subscribe("room1", bob)

	require.NoError(t, h.Publish("room1", map[string]string{"type": "chat", "message": "hi"}, ""))

	for _, c := range []*Client{alice, bob} {
		event := recvEvent(t, c)
		assert.Equal(t, "chat", event["type"])
		assert.Equal(t, "hi", event["message"])
	}
}

func TestPublishExcludesByUserName(t *testing.T) {
	h := NewHub(testWSConfig())
	go h.Run()

	alice := newTestClient(h, "c1", "alice", "room1")
	bob := newTestClient(h, "c2", "bob", "room1")
	h.Register(alice)
	h.Register(bob)
	h.Subscribe("room1", alice)
	h.Subscribe("room1", bob)

	require.NoError(t, h.Publish("room1", map[string]string{"type": "typing", "userName": "alice"}, "alice"))

	event := recvEvent(t, bob)
	assert.Equal(t, "typing", event["type"])
	assertNoEvent(t, alice)
}

func TestPublishDoesNotLeakAcrossRooms(t *testing.T) {
	h := NewHub(testWSConfig())
	go h.Run()

	alice := newTestClient(h, "c1", "alice", "foo")
	carol := newTestClient(h, "c3", "carol", "bar")
	h.Register(alice)
	h.Register(carol)
	h.Subscribe("foo", alice)
	h.Subscribe("bar", carol)

	require.NoError(t, h.Publish("foo", map[string]string{"type": "chat"}, ""))

	recvEvent(t, alice)
	assertNoEvent(t, carol)
}

func TestDeliveryOrderMatchesPublishOrder(t *testing.T) {
	h := NewHub(testWSConfig())
	go h.Run()

	alice := newTestClient(h, "c1", "alice", "room1")
	h.Register(alice)
	h.Subscribe("room1", alice)

	for i := 0; i < 5; i++ {
		require.NoError(t, h.Publish("room1", map[string]int{"seq": i}, ""))
	}

	for i := 0; i < 5; i++ {
		event := recvEvent(t, alice)
		assert.Equal(t, float64(i), event["seq"])
	}
}

func TestUnregisterRemovesFromAllRooms(t *testing.T) {
	h := NewHub(testWSConfig())
	go h.Run()

	alice := newTestClient(h, "c1", "alice", "room1")
	bob := newTestClient(h, "c2", "bob", "room1")
	h.Register(alice)
	h.Register(bob)
	h.Subscribe("room1", alice)
	h.Subscribe("room1", bob)

	h.Unregister(alice)

	// Wait until the run loop has processed the unregister.
	require.Eventually(t, func() bool {
		return h.RoomClientCount("room1") == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, h.Publish("room1", map[string]string{"type": "chat"}, ""))
	event := recvEvent(t, bob)
	assert.Equal(t, "chat", event["type"])
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub(testWSConfig())
	go h.Run()

	alice := newTestClient(h, "c1", "alice", "room1")
	h.Register(alice)
	h.Subscribe("room1", alice)
	h.Unsubscribe("room1", alice)

	require.NoError(t, h.Publish("room1", map[string]string{"type": "chat"}, ""))
	assertNoEvent(t, alice)
}
