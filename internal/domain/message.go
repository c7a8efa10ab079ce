package domain

import (
	"time"

	"github.com/leowang3268/puzzle-chat-ai/pkg/database"
)

// SuggestionResponse tracks what the player did with an AI-drafted suggestion.
type SuggestionResponse string

const (
	SuggestionNoAction  SuggestionResponse = "no_action"
	SuggestionSent      SuggestionResponse = "sent"
	SuggestionDismissed SuggestionResponse = "dismissed"
)

// ChatMessage is one player-to-player message in a room.
type ChatMessage struct {
	ID          uint      `json:"id"`
	RoomName    string    `json:"room_name"`
	UserName    string    `json:"user_name"`
	Message     string    `json:"message"`
	ReplyText   string    `json:"reply_text,omitempty"`
	ReplyAuthor string    `json:"reply_author,omitempty"`
	LikedBy     []string  `json:"liked_by"`
	Timestamp   time.Time `json:"timestamp"`
}

// AIChatMessage is one player-to-judge exchange, including the suggestion the
// prompt composer drafted for the player afterwards.
type AIChatMessage struct {
	ID                 uint               `json:"id"`
	RoomName           string             `json:"room_name"`
	UserName           string             `json:"user_name"`
	UserMessage        string             `json:"user_message"`
	JudgeReply         string             `json:"judge_reply"`
	Mode               string             `json:"mode"`
	Suggestion         string             `json:"suggestion"`
	SuggestionResponse SuggestionResponse `json:"suggestion_response"`
	Timestamp          time.Time          `json:"timestamp"`
}

// ChatMessageModel is the GORM model for the chat_messages table.
type ChatMessageModel struct {
	ID          uint                 `gorm:"primaryKey;autoIncrement"`
	RoomName    string               `gorm:"type:varchar(100);index;not null;default:'default_room'"`
	UserName    string               `gorm:"type:varchar(100);not null"`
	Message     string               `gorm:"type:text;not null"`
	ReplyText   string               `gorm:"type:text"`
	ReplyAuthor string               `gorm:"type:varchar(100)"`
	LikedBy     database.StringArray `gorm:"type:text"`
	Timestamp   time.Time            `gorm:"autoCreateTime;index"`
}

func (ChatMessageModel) TableName() string {
	return "chat_messages"
}

func (m *ChatMessageModel) ToDomain() *ChatMessage {
	return &ChatMessage{
		ID:          m.ID,
		RoomName:    m.RoomName,
		UserName:    m.UserName,
		Message:     m.Message,
		ReplyText:   m.ReplyText,
		ReplyAuthor: m.ReplyAuthor,
		LikedBy:     []string(m.LikedBy),
		Timestamp:   m.Timestamp,
	}
}

func ChatMessageToModel(c *ChatMessage) *ChatMessageModel {
	return &ChatMessageModel{
		ID:          c.ID,
		RoomName:    c.RoomName,
		UserName:    c.UserName,
		Message:     c.Message,
		ReplyText:   c.ReplyText,
		ReplyAuthor: c.ReplyAuthor,
		LikedBy:     database.StringArray(c.LikedBy),
		Timestamp:   c.Timestamp,
	}
}

// AIChatMessageModel is the GORM model for the ai_chat_messages table.
type AIChatMessageModel struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement"`
	RoomName           string    `gorm:"type:varchar(100);index;not null;default:'default_room'"`
	UserName           string    `gorm:"type:varchar(100);not null"`
	UserMessage        string    `gorm:"type:text;not null"`
	JudgeReply         string    `gorm:"type:text"`
	Mode               string    `gorm:"type:varchar(1);not null;default:'A'"`
	Suggestion         string    `gorm:"type:text"`
	SuggestionResponse string    `gorm:"type:varchar(10);not null;default:'no_action'"`
	Timestamp          time.Time `gorm:"autoCreateTime;index"`
}

func (AIChatMessageModel) TableName() string {
	return "ai_chat_messages"
}

func (m *AIChatMessageModel) ToDomain() *AIChatMessage {
	return &AIChatMessage{
		ID:                 m.ID,
		RoomName:           m.RoomName,
		UserName:           m.UserName,
		UserMessage:        m.UserMessage,
		JudgeReply:         m.JudgeReply,
		Mode:               m.Mode,
		Suggestion:         m.Suggestion,
		SuggestionResponse: SuggestionResponse(m.SuggestionResponse),
		Timestamp:          m.Timestamp,
	}
}

func AIChatMessageToModel(a *AIChatMessage) *AIChatMessageModel {
	return &AIChatMessageModel{
		ID:                 a.ID,
		RoomName:           a.RoomName,
		UserName:           a.UserName,
		UserMessage:        a.UserMessage,
		JudgeReply:         a.JudgeReply,
		Mode:               a.Mode,
		Suggestion:         a.Suggestion,
		SuggestionResponse: string(a.SuggestionResponse),
		Timestamp:          a.Timestamp,
	}
}

// ChatUserModel records every display name that has connected.
type ChatUserModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	UserName  string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ChatUserModel) TableName() string {
	return "chat_users"
}
