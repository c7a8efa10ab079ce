package hub

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/leowang3268/puzzle-chat-ai/internal/config"
	"github.com/leowang3268/puzzle-chat-ai/pkg/log"
)

// Client is one live WebSocket connection. Name and Room are fixed at connect
// time from the query parameters; the client owns its Send channel until the
// hub closes it on unregister.
type Client struct {
	ID     string
	Name   string
	Room   string
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	config config.WebSocketConfig
}

func NewClient(id, name, room string, hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		ID:     id,
		Name:   name,
		Room:   room,
		Hub:    hub,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		config: hub.config,
	}
}

// ReadPump reads frames until the connection drops and hands each one to
// handler. Unregistering in the defer guarantees the room subscription is
// released even on abnormal closure.
func (c *Client) ReadPump(handler func(*Client, []byte)) {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.L().Warn().Err(err).Str(log.FieldClientID, c.ID).Msg("websocket read error")
			}
			break
		}

		handler(c, message)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendEvent marshals the event and queues it for this connection only.
// A full send buffer blocks until the write pump drains it, so direct
// sends (history replay in particular) are never truncated.
func (c *Client) SendEvent(event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	c.Send <- data
	return nil
}
