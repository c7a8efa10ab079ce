package repository

import (
	"context"
	"errors"

	"github.com/leowang3268/puzzle-chat-ai/internal/domain"
)

var (
	ErrMessageNotFound = errors.New("message not found")
)

// HistoryStore is the append-only message log per room. Both message kinds
// are permanently bound to exactly one room; listings are always ascending
// by creation time with insertion order breaking ties.
type HistoryStore interface {
	CreateUser(ctx context.Context, userName string) error
	UserExists(ctx context.Context, userName string) (bool, error)

	AppendChat(ctx context.Context, msg *domain.ChatMessage) error
	AppendAI(ctx context.Context, msg *domain.AIChatMessage) error
	ListChat(ctx context.Context, room string) ([]domain.ChatMessage, error)
	ListAI(ctx context.Context, room string) ([]domain.AIChatMessage, error)

	// ToggleLike flips userName's presence in the message's liker set and
	// returns the new set. Concurrent toggles on one message serialize.
	ToggleLike(ctx context.Context, messageID uint, userName string) ([]string, error)

	// UpdateSuggestionResponse transitions no_action -> status. A message
	// that already left no_action is left untouched (first response wins).
	UpdateSuggestionResponse(ctx context.Context, id uint, status domain.SuggestionResponse) error

	DeleteRoom(ctx context.Context, room string) error
}
