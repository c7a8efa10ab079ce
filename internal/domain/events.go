package domain

// WebSocket message types from client.
const (
	MsgTypeUserConnect         = "user_connect"
	MsgTypeChat                = "chat"
	MsgTypeAIChat              = "ai_chat"
	MsgTypeSuggestionSent      = "suggestion_sent"
	MsgTypeSuggestionDismissed = "suggestion_dismissed"
	MsgTypeThumbPress          = "thumb_press"
	MsgTypeTyping              = "typing"
	MsgTypeStopTyping          = "stop_typing"
	MsgTypeMarkAllRead         = "mark_all_read"
)

// WebSocket message types to client.
const (
	MsgTypeLoadAIChat        = "load_ai_chat"
	MsgTypeGameInfo          = "game_info"
	MsgTypeDisplaySuggestion = "display_suggestion"
	MsgTypeUpdateThumbCount  = "update_thumb_count"
	MsgTypeNotifyHaveRead    = "notify_have_read"
	MsgTypeGameOver          = "game_over"
	MsgTypeError             = "error"
)

// BaseMessage is the base structure for all inbound WebSocket messages.
type BaseMessage struct {
	Type string `json:"type"`
}

// Client -> Server messages

type ChatInbound struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	ReplyText   string `json:"replyText"`
	ReplyAuthor string `json:"replyAuthor"`
}

type AIChatInbound struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Mode    string `json:"mode"`
}

type SuggestionAckInbound struct {
	Type        string `json:"type"`
	AIMessageID uint   `json:"ai_message_id"`
}

type ThumbPressInbound struct {
	Type     string `json:"type"`
	Index    int    `json:"index"`
	UserName string `json:"userName"`
}

type TypingInbound struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Server -> Client messages

type ChatEvent struct {
	Type        string   `json:"type"`
	UserName    string   `json:"userName"`
	Message     string   `json:"message"`
	ReplyText   string   `json:"replyText,omitempty"`
	ReplyAuthor string   `json:"replyAuthor,omitempty"`
	LikedBy     []string `json:"liked_by"`
	Timestamp   string   `json:"timestamp"`
	MessageID   uint     `json:"message_id"`
}

type AIChatEvent struct {
	Type           string `json:"type"`
	UserName       string `json:"userName"`
	UserMessage    string `json:"user_message"`
	AIReplyContent string `json:"ai_reply_content"`
	Mode           string `json:"mode,omitempty"`
	Suggestion     string `json:"suggestion,omitempty"`
	Timestamp      string `json:"timestamp"`
	MessageID      uint   `json:"message_id"`
}

type GameInfoEvent struct {
	Type           string `json:"type"`
	PuzzleQuestion string `json:"puzzle_question"`
}

type DisplaySuggestionEvent struct {
	Type        string `json:"type"`
	Suggestion  string `json:"suggestion"`
	AIMessageID uint   `json:"ai_message_id"`
}

type ThumbCountEvent struct {
	Type         string   `json:"type"`
	MessageIndex int      `json:"message_index"`
	ThumbCount   int      `json:"thumb_count"`
	Likers       []string `json:"likers"`
}

type TypingEvent struct {
	Type     string `json:"type"`
	UserName string `json:"userName"`
	Message  string `json:"message,omitempty"`
}

type ReadReceiptEvent struct {
	Type     string `json:"type"`
	UserName string `json:"userName"`
}

type GameOverEvent struct {
	Type        string `json:"type"`
	Winner      string `json:"winner"`
	FinalAnswer string `json:"final_answer"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewErrorEvent(message string) *ErrorEvent {
	return &ErrorEvent{
		Type:    MsgTypeError,
		Message: message,
	}
}
