package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leowang3268/puzzle-chat-ai/internal/repository"
	"github.com/leowang3268/puzzle-chat-ai/pkg/log"
	"github.com/leowang3268/puzzle-chat-ai/pkg/response"
)

// HTTPHandler serves the small HTTP surface next to the WebSocket endpoint:
// health, username availability, and per-room admin tooling.
type HTTPHandler struct {
	store repository.HistoryStore
}

func NewHTTPHandler(store repository.HistoryStore) *HTTPHandler {
	return &HTTPHandler{store: store}
}

func (h *HTTPHandler) RegisterRoutes(r *gin.Engine, ws *WSHandler) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	r.GET("/ws/socket-server/", func(c *gin.Context) {
		ws.HandleWebSocket(c.Writer, c.Request)
	})

	api := r.Group("/api")
	{
		api.GET("/username/check", h.CheckUsername)

		rooms := api.Group("/rooms")
		{
			rooms.GET("/:room/export", h.ExportRoom)
			rooms.DELETE("/:room", h.DeleteRoom)
		}
	}
}

// CheckUsername reports whether a display name is still free.
func (h *HTTPHandler) CheckUsername(c *gin.Context) {
	ctx := c.Request.Context()

	userName := strings.TrimSpace(c.Query("userName"))
	if userName == "" {
		response.Success(c, gin.H{"valid": false, "message": "Username cannot be empty."})
		return
	}

	exists, err := h.store.UserExists(ctx, userName)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to check username")
		response.InternalError(c, "failed to check username")
		return
	}
	if exists {
		response.Success(c, gin.H{
			"valid":   false,
			"message": "The name has already been used. Please enter a different name.",
		})
		return
	}

	response.Success(c, gin.H{"valid": true})
}

// ExportRoom streams a room's history as CSV. model=chat (default) or model=ai.
func (h *HTTPHandler) ExportRoom(c *gin.Context) {
	ctx := c.Request.Context()
	room := c.Param("room")
	model := c.DefaultQuery("model", "chat")
	if model != "chat" && model != "ai" {
		response.BadRequest(c, "model must be chat or ai")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_%s.csv", room, model))

	w := csv.NewWriter(c.Writer)
	defer w.Flush()

	switch model {
	case "chat":
		msgs, err := h.store.ListChat(ctx, room)
		if err != nil {
			response.InternalError(c, "failed to export room")
			return
		}
		w.Write([]string{"id", "room_name", "user_name", "message", "reply_text", "reply_author", "liked_by", "timestamp"})
		for _, m := range msgs {
			w.Write([]string{
				strconv.FormatUint(uint64(m.ID), 10),
				m.RoomName,
				m.UserName,
				m.Message,
				m.ReplyText,
				m.ReplyAuthor,
				strings.Join(m.LikedBy, "|"),
				m.Timestamp.Format(time.RFC3339),
			})
		}

	case "ai":
		msgs, err := h.store.ListAI(ctx, room)
		if err != nil {
			response.InternalError(c, "failed to export room")
			return
		}
		w.Write([]string{"id", "room_name", "user_name", "user_message", "judge_reply", "mode", "suggestion", "suggestion_response", "timestamp"})
		for _, m := range msgs {
			w.Write([]string{
				strconv.FormatUint(uint64(m.ID), 10),
				m.RoomName,
				m.UserName,
				m.UserMessage,
				m.JudgeReply,
				m.Mode,
				m.Suggestion,
				string(m.SuggestionResponse),
				m.Timestamp.Format(time.RFC3339),
			})
		}
	}
}

// DeleteRoom wipes a room's chat and AI histories.
func (h *HTTPHandler) DeleteRoom(c *gin.Context) {
	ctx := c.Request.Context()
	room := c.Param("room")

	if err := h.store.DeleteRoom(ctx, room); err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldRoom, room).Msg("failed to delete room data")
		response.InternalError(c, "failed to delete room data")
		return
	}

	response.Success(c, gin.H{"room": room, "deleted": true})
}
