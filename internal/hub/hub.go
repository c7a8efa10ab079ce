package hub

import (
	"encoding/json"
	"sync"

	"github.com/leowang3268/puzzle-chat-ai/internal/config"
	"github.com/leowang3268/puzzle-chat-ai/pkg/log"
)

// GroupRegistry is the room fan-out primitive: connections subscribe to a
// named room group and events published to the group reach every subscriber.
// ExcludeUser suppresses delivery to subscribers whose display name matches
// (typing and read-receipt events are never echoed to their originator).
type GroupRegistry interface {
	Subscribe(room string, c *Client)
	Unsubscribe(room string, c *Client)
	Publish(room string, event interface{}, excludeUser string) error
}

// Hub is the in-memory GroupRegistry. A single run loop owns delivery, so
// events published to one room arrive at each subscriber in publish order.
type Hub struct {
	clients    map[string]*Client            // clientID -> client
	rooms      map[string]map[string]*Client // room name -> clientID -> client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *groupMessage
	mu         sync.RWMutex
	config     config.WebSocketConfig
}

type groupMessage struct {
	Room        string
	Payload     []byte
	ExcludeUser string
}

func NewHub(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *groupMessage, 256),
		config:     cfg,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			log.L().Debug().Str(log.FieldClientID, client.ID).Msg("client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				for room, members := range h.rooms {
					delete(members, client.ID)
					if len(members) == 0 {
						delete(h.rooms, room)
					}
				}
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()
			log.L().Debug().Str(log.FieldClientID, client.ID).Msg("client unregistered")

		case msg := <-h.broadcast:
			h.mu.RLock()
			if members, ok := h.rooms[msg.Room]; ok {
				for _, client := range members {
					if msg.ExcludeUser != "" && client.Name == msg.ExcludeUser {
						continue
					}
					select {
					case client.Send <- msg.Payload:
					default:
						go h.removeClient(client)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) Subscribe(room string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[string]*Client)
	}
	h.rooms[room][client.ID] = client
	log.L().Info().
		Str(log.FieldClientID, client.ID).
		Str(log.FieldUserName, client.Name).
		Str(log.FieldRoom, room).
		Msg("client joined room")
}

func (h *Hub) Unsubscribe(room string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[room]; ok {
		delete(members, client.ID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	log.L().Info().
		Str(log.FieldClientID, client.ID).
		Str(log.FieldRoom, room).
		Msg("client left room")
}

// Publish marshals the event once and queues it for delivery to every
// subscriber of the room except excludeUser (empty string excludes no one).
func (h *Hub) Publish(room string, event interface{}, excludeUser string) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.broadcast <- &groupMessage{
		Room:        room,
		Payload:     payload,
		ExcludeUser: excludeUser,
	}
	return nil
}

func (h *Hub) RoomClientCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if members, ok := h.rooms[room]; ok {
		return len(members)
	}
	return 0
}

func (h *Hub) removeClient(client *Client) {
	h.unregister <- client
}
