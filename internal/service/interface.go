package service

import (
	"context"

	"github.com/leowang3268/puzzle-chat-ai/internal/ai"
	"github.com/leowang3268/puzzle-chat-ai/internal/domain"
	"github.com/leowang3268/puzzle-chat-ai/internal/hub"
)

// SessionService routes decoded inbound frames for one connection.
type SessionService interface {
	HandleConnect(ctx context.Context, c *hub.Client) error
	HandleChat(ctx context.Context, c *hub.Client, in *domain.ChatInbound) error
	HandleAIChat(ctx context.Context, c *hub.Client, in *domain.AIChatInbound) error
	HandleSuggestionResponse(ctx context.Context, c *hub.Client, id uint, status domain.SuggestionResponse) error
	HandleThumbPress(ctx context.Context, c *hub.Client, index int, userName string) error
	HandleTyping(ctx context.Context, c *hub.Client, draft string) error
	HandleStopTyping(ctx context.Context, c *hub.Client) error
	HandleMarkAllRead(ctx context.Context, c *hub.Client) error
}

// Judge classifies a player question against the fixed puzzle.
type Judge interface {
	Evaluate(ctx context.Context, playerQuestion string, recentHistory []domain.AIChatMessage) ai.Verdict
}

// Suggester drafts the partner-facing suggestion for a judged question.
type Suggester interface {
	Compose(ctx context.Context, mode ai.Mode, in ai.SuggestionInput) string
}
