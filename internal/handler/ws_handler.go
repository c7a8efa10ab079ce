package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/leowang3268/puzzle-chat-ai/internal/domain"
	"github.com/leowang3268/puzzle-chat-ai/internal/hub"
	"github.com/leowang3268/puzzle-chat-ai/internal/service"
	"github.com/leowang3268/puzzle-chat-ai/pkg/log"
)

const defaultRoomName = "default_room"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSHandler struct {
	hub     *hub.Hub
	service service.SessionService
}

func NewWSHandler(h *hub.Hub, svc service.SessionService) *WSHandler {
	return &WSHandler{
		hub:     h,
		service: svc,
	}
}

// HandleWebSocket upgrades the connection and joins the client to its room.
// A missing userName rejects the connection before the upgrade.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userName := r.URL.Query().Get("userName")
	if userName == "" {
		http.Error(w, "userName is required", http.StatusBadRequest)
		return
	}
	roomName := r.URL.Query().Get("roomName")
	if roomName == "" {
		roomName = defaultRoomName
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.L().Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), userName, roomName, h.hub, conn)

	h.hub.Register(client)
	h.hub.Subscribe(roomName, client)

	log.L().Info().
		Str(log.FieldUserName, userName).
		Str(log.FieldRoom, roomName).
		Str(log.FieldClientID, client.ID).
		Msg("user connected")

	go client.WritePump()
	go client.ReadPump(h.handleMessage)
}

func (h *WSHandler) handleMessage(client *hub.Client, message []byte) {
	var base domain.BaseMessage
	if err := json.Unmarshal(message, &base); err != nil {
		client.SendEvent(domain.NewErrorEvent("Invalid JSON format"))
		return
	}

	ctx := context.Background()

	switch base.Type {
	case domain.MsgTypeUserConnect:
		if err := h.service.HandleConnect(ctx, client); err != nil {
			log.L().Error().Err(err).Str(log.FieldClientID, client.ID).Msg("replay failed")
		}

	case domain.MsgTypeChat:
		var msg domain.ChatInbound
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendEvent(domain.NewErrorEvent("Invalid chat message"))
			return
		}
		if err := h.service.HandleChat(ctx, client, &msg); err != nil {
			log.L().Error().Err(err).Str(log.FieldClientID, client.ID).Msg("chat message failed")
		}

	case domain.MsgTypeAIChat:
		var msg domain.AIChatInbound
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendEvent(domain.NewErrorEvent("Invalid ai_chat message"))
			return
		}
		if err := h.service.HandleAIChat(ctx, client, &msg); err != nil {
			log.L().Error().Err(err).Str(log.FieldClientID, client.ID).Msg("ai chat failed")
		}

	case domain.MsgTypeSuggestionSent, domain.MsgTypeSuggestionDismissed:
		var msg domain.SuggestionAckInbound
		if err := json.Unmarshal(message, &msg); err != nil || msg.AIMessageID == 0 {
			client.SendEvent(domain.NewErrorEvent("Invalid suggestion acknowledgment"))
			return
		}
		status := domain.SuggestionSent
		if base.Type == domain.MsgTypeSuggestionDismissed {
			status = domain.SuggestionDismissed
		}
		if err := h.service.HandleSuggestionResponse(ctx, client, msg.AIMessageID, status); err != nil {
			log.L().Error().Err(err).Str(log.FieldClientID, client.ID).Msg("suggestion response failed")
		}

	case domain.MsgTypeThumbPress:
		var msg domain.ThumbPressInbound
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendEvent(domain.NewErrorEvent("Invalid thumb_press message"))
			return
		}
		if err := h.service.HandleThumbPress(ctx, client, msg.Index, msg.UserName); err != nil {
			log.L().Error().Err(err).Str(log.FieldClientID, client.ID).Msg("thumb press failed")
		}

	case domain.MsgTypeTyping:
		var msg domain.TypingInbound
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendEvent(domain.NewErrorEvent("Invalid typing message"))
			return
		}
		if err := h.service.HandleTyping(ctx, client, msg.Message); err != nil {
			log.L().Error().Err(err).Str(log.FieldClientID, client.ID).Msg("typing broadcast failed")
		}

	case domain.MsgTypeStopTyping:
		if err := h.service.HandleStopTyping(ctx, client); err != nil {
			log.L().Error().Err(err).Str(log.FieldClientID, client.ID).Msg("stop typing broadcast failed")
		}

	case domain.MsgTypeMarkAllRead:
		if err := h.service.HandleMarkAllRead(ctx, client); err != nil {
			log.L().Error().Err(err).Str(log.FieldClientID, client.ID).Msg("read receipt broadcast failed")
		}

	default:
		client.SendEvent(domain.NewErrorEvent("Unknown message type"))
	}
}
