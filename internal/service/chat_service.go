package service

import (
	"context"
	"strings"
	"time"

	"github.com/leowang3268/puzzle-chat-ai/internal/ai"
	"github.com/leowang3268/puzzle-chat-ai/internal/domain"
	"github.com/leowang3268/puzzle-chat-ai/internal/hub"
	"github.com/leowang3268/puzzle-chat-ai/internal/repository"
	"github.com/leowang3268/puzzle-chat-ai/pkg/log"
)

const (
	errMsgEmptyMessage  = "Message cannot be empty"
	errMsgInvalidFormat = "Invalid message format"
	errMsgStoreFailed   = "Failed to save message"
	errMsgLikeFailed    = "Failed to update like"
	errMsgBadIndex      = "Message index out of range"
	errMsgUnknownMode   = "Unknown suggestion mode"
)

type sessionService struct {
	groups       hub.GroupRegistry
	store        repository.HistoryStore
	judge        Judge
	suggester    Suggester
	puzzle       domain.Puzzle
	historyLimit int
}

func NewSessionService(
	groups hub.GroupRegistry,
	store repository.HistoryStore,
	judge Judge,
	suggester Suggester,
	puzzle domain.Puzzle,
	historyLimit int,
) SessionService {
	if historyLimit <= 0 {
		historyLimit = 10
	}
	return &sessionService{
		groups:       groups,
		store:        store,
		judge:        judge,
		suggester:    suggester,
		puzzle:       puzzle,
		historyLimit: historyLimit,
	}
}

// HandleConnect replays the room's full history to the new connection:
// every chat message, then every AI exchange, then the puzzle question.
func (s *sessionService) HandleConnect(ctx context.Context, c *hub.Client) error {
	// Failing to record the user never blocks the replay.
	if err := s.store.CreateUser(ctx, c.Name); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str(log.FieldUserName, c.Name).Msg("failed to record chat user")
	}

	chats, err := s.store.ListChat(ctx, c.Room)
	if err != nil {
		c.SendEvent(domain.NewErrorEvent(errMsgStoreFailed))
		return err
	}
	for i := range chats {
		c.SendEvent(chatEvent(&chats[i]))
	}

	aiChats, err := s.store.ListAI(ctx, c.Room)
	if err != nil {
		c.SendEvent(domain.NewErrorEvent(errMsgStoreFailed))
		return err
	}
	for i := range aiChats {
		c.SendEvent(aiChatEvent(domain.MsgTypeLoadAIChat, &aiChats[i]))
	}

	return c.SendEvent(&domain.GameInfoEvent{
		Type:           domain.MsgTypeGameInfo,
		PuzzleQuestion: s.puzzle.Question,
	})
}

func (s *sessionService) HandleChat(ctx context.Context, c *hub.Client, in *domain.ChatInbound) error {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return c.SendEvent(domain.NewErrorEvent(errMsgEmptyMessage))
	}

	msg := &domain.ChatMessage{
		RoomName:    c.Room,
		UserName:    c.Name,
		Message:     message,
		ReplyText:   in.ReplyText,
		ReplyAuthor: in.ReplyAuthor,
		LikedBy:     []string{},
	}
	if err := s.store.AppendChat(ctx, msg); err != nil {
		// Unsaved state is never broadcast.
		c.SendEvent(domain.NewErrorEvent(errMsgStoreFailed))
		return err
	}

	return s.groups.Publish(c.Room, chatEvent(msg), "")
}

// HandleAIChat runs the judge, drafts the mode-specific suggestion, persists
// the exchange, and fans the result out. The suggestion itself goes only to
// the asking connection.
func (s *sessionService) HandleAIChat(ctx context.Context, c *hub.Client, in *domain.AIChatInbound) error {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return c.SendEvent(domain.NewErrorEvent(errMsgEmptyMessage))
	}

	modeStr := in.Mode
	if modeStr == "" {
		modeStr = string(ai.ModeBaseline)
	}
	mode, ok := ai.ParseMode(modeStr)
	if !ok {
		return c.SendEvent(domain.NewErrorEvent(errMsgUnknownMode))
	}

	recentAI, err := s.store.ListAI(ctx, c.Room)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str(log.FieldRoom, c.Room).Msg("judging without history context")
		recentAI = nil
	}
	verdict := s.judge.Evaluate(ctx, message, tailAI(recentAI, s.historyLimit))

	log.Ctx(ctx).Info().
		Str(log.FieldRoom, c.Room).
		Str(log.FieldUserName, c.Name).
		Str(log.FieldClassification, string(verdict.Classification)).
		Msg("judge verdict")

	if verdict.Classification == ai.ClassificationSolved {
		return s.handleGameOver(ctx, c, message, verdict, mode)
	}

	chats, err := s.store.ListChat(ctx, c.Room)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str(log.FieldRoom, c.Room).Msg("composing without chat context")
		chats = nil
	}
	suggestion := s.suggester.Compose(ctx, mode, ai.SuggestionInput{
		UserName:       c.Name,
		PlayerQuestion: message,
		JudgeAnswer:    verdict.Answer,
		Classification: verdict.Classification,
		ChatHistory:    tailChat(chats, s.historyLimit),
	})

	aiMsg := &domain.AIChatMessage{
		RoomName:           c.Room,
		UserName:           c.Name,
		UserMessage:        message,
		JudgeReply:         verdict.Answer,
		Mode:               string(mode),
		Suggestion:         suggestion,
		SuggestionResponse: domain.SuggestionNoAction,
	}
	if err := s.store.AppendAI(ctx, aiMsg); err != nil {
		c.SendEvent(domain.NewErrorEvent(errMsgStoreFailed))
		return err
	}

	if err := s.groups.Publish(c.Room, aiChatEvent(domain.MsgTypeAIChat, aiMsg), ""); err != nil {
		return err
	}

	return c.SendEvent(&domain.DisplaySuggestionEvent{
		Type:        domain.MsgTypeDisplaySuggestion,
		Suggestion:  suggestion,
		AIMessageID: aiMsg.ID,
	})
}

func (s *sessionService) handleGameOver(ctx context.Context, c *hub.Client, message string, verdict ai.Verdict, mode ai.Mode) error {
	// Record the winning exchange; a store failure must not swallow the win.
	aiMsg := &domain.AIChatMessage{
		RoomName:           c.Room,
		UserName:           c.Name,
		UserMessage:        message,
		JudgeReply:         verdict.Answer,
		Mode:               string(mode),
		SuggestionResponse: domain.SuggestionNoAction,
	}
	if err := s.store.AppendAI(ctx, aiMsg); err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldRoom, c.Room).Msg("failed to record winning message")
	}

	return s.groups.Publish(c.Room, &domain.GameOverEvent{
		Type:        domain.MsgTypeGameOver,
		Winner:      c.Name,
		FinalAnswer: s.puzzle.FullAnswer,
	}, "")
}

func (s *sessionService) HandleSuggestionResponse(ctx context.Context, c *hub.Client, id uint, status domain.SuggestionResponse) error {
	if err := s.store.UpdateSuggestionResponse(ctx, id, status); err != nil {
		c.SendEvent(domain.NewErrorEvent(errMsgInvalidFormat))
		return err
	}
	return nil
}

// HandleThumbPress toggles a like on the room-relative message index and
// broadcasts the new count to everyone, presser included.
func (s *sessionService) HandleThumbPress(ctx context.Context, c *hub.Client, index int, userName string) error {
	if userName == "" {
		userName = c.Name
	}

	chats, err := s.store.ListChat(ctx, c.Room)
	if err != nil {
		c.SendEvent(domain.NewErrorEvent(errMsgLikeFailed))
		return err
	}
	if index < 0 || index >= len(chats) {
		return c.SendEvent(domain.NewErrorEvent(errMsgBadIndex))
	}

	likers, err := s.store.ToggleLike(ctx, chats[index].ID, userName)
	if err != nil {
		c.SendEvent(domain.NewErrorEvent(errMsgLikeFailed))
		return err
	}

	return s.groups.Publish(c.Room, &domain.ThumbCountEvent{
		Type:         domain.MsgTypeUpdateThumbCount,
		MessageIndex: index,
		ThumbCount:   len(likers),
		Likers:       likers,
	}, "")
}

func (s *sessionService) HandleTyping(ctx context.Context, c *hub.Client, draft string) error {
	return s.groups.Publish(c.Room, &domain.TypingEvent{
		Type:     domain.MsgTypeTyping,
		UserName: c.Name,
		Message:  draft,
	}, c.Name)
}

func (s *sessionService) HandleStopTyping(ctx context.Context, c *hub.Client) error {
	return s.groups.Publish(c.Room, &domain.TypingEvent{
		Type:     domain.MsgTypeStopTyping,
		UserName: c.Name,
	}, c.Name)
}

func (s *sessionService) HandleMarkAllRead(ctx context.Context, c *hub.Client) error {
	return s.groups.Publish(c.Room, &domain.ReadReceiptEvent{
		Type:     domain.MsgTypeNotifyHaveRead,
		UserName: c.Name,
	}, c.Name)
}

func chatEvent(msg *domain.ChatMessage) *domain.ChatEvent {
	return &domain.ChatEvent{
		Type:        domain.MsgTypeChat,
		UserName:    msg.UserName,
		Message:     msg.Message,
		ReplyText:   msg.ReplyText,
		ReplyAuthor: msg.ReplyAuthor,
		LikedBy:     msg.LikedBy,
		Timestamp:   msg.Timestamp.Format(time.RFC3339),
		MessageID:   msg.ID,
	}
}

func aiChatEvent(eventType string, msg *domain.AIChatMessage) *domain.AIChatEvent {
	event := &domain.AIChatEvent{
		Type:           eventType,
		UserName:       msg.UserName,
		UserMessage:    msg.UserMessage,
		AIReplyContent: msg.JudgeReply,
		Timestamp:      msg.Timestamp.Format(time.RFC3339),
		MessageID:      msg.ID,
	}
	// Replay carries the drafted suggestion so a rejoining client can
	// reconstruct its panel; the live event does not, the suggestion is
	// delivered separately to the asking connection only.
	if eventType == domain.MsgTypeLoadAIChat {
		event.Mode = msg.Mode
		event.Suggestion = msg.Suggestion
	}
	return event
}

func tailChat(msgs []domain.ChatMessage, n int) []domain.ChatMessage {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}

func tailAI(msgs []domain.AIChatMessage, n int) []domain.AIChatMessage {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}
