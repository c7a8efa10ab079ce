package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/leowang3268/puzzle-chat-ai/internal/domain"
)

func newTestStore(t *testing.T) *GormHistoryStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single in-memory sqlite connection, shared by all goroutines.
	sqlDB.SetMaxOpenConns(1)

	store := NewGormHistoryStore(db)
	require.NoError(t, store.Migrate())
	return store
}

func TestAppendAndListChatOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, text := range []string{"first", "second", "third"} {
		require.NoError(t, store.AppendChat(ctx, &domain.ChatMessage{
			RoomName: "foo",
			UserName: "alice",
			Message:  text,
		}))
	}

	msgs, err := store.ListChat(ctx, "foo")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Message)
	assert.Equal(t, "second", msgs[1].Message)
	assert.Equal(t, "third", msgs[2].Message)
}

func TestListChatNoCrossRoomLeakage(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.AppendChat(ctx, &domain.ChatMessage{
			RoomName: "foo", UserName: "alice", Message: "foo msg",
		}))
	}
	require.NoError(t, store.AppendChat(ctx, &domain.ChatMessage{
		RoomName: "bar", UserName: "bob", Message: "bar msg",
	}))

	fooMsgs, err := store.ListChat(ctx, "foo")
	require.NoError(t, err)
	assert.Len(t, fooMsgs, 3)

	barMsgs, err := store.ListChat(ctx, "bar")
	require.NoError(t, err)
	require.Len(t, barMsgs, 1)
	assert.Equal(t, "bar msg", barMsgs[0].Message)
}

func TestToggleLikeNeverDuplicates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	msg := &domain.ChatMessage{RoomName: "foo", UserName: "alice", Message: "like me"}
	require.NoError(t, store.AppendChat(ctx, msg))

	likers, err := store.ToggleLike(ctx, msg.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, likers)

	likers, err = store.ToggleLike(ctx, msg.ID, "bob")
	require.NoError(t, err)
	assert.Empty(t, likers)

	likers, err = store.ToggleLike(ctx, msg.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, likers)
}

func TestToggleLikeConcurrentTogglesSerialize(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	msg := &domain.ChatMessage{RoomName: "foo", UserName: "alice", Message: "popular"}
	require.NoError(t, store.AppendChat(ctx, msg))

	users := []string{"u1", "u2", "u3", "u4", "u5"}
	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_, err := store.ToggleLike(ctx, msg.ID, name)
			assert.NoError(t, err)
		}(u)
	}
	wg.Wait()

	likers, err := store.ToggleLike(ctx, msg.ID, "u6")
	require.NoError(t, err)
	// All five toggles landed exactly once, plus u6.
	assert.Len(t, likers, 6)
}

func TestToggleLikeUnknownMessage(t *testing.T) {
	store := newTestStore(t)

	_, err := store.ToggleLike(context.Background(), 9999, "bob")
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestSuggestionResponseFirstWins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	msg := &domain.AIChatMessage{
		RoomName:    "foo",
		UserName:    "alice",
		UserMessage: "他是名人嗎？",
		JudgeReply:  "是的。",
		Mode:        "A",
		Suggestion:  "跟夥伴說說看吧",
	}
	require.NoError(t, store.AppendAI(ctx, msg))

	require.NoError(t, store.UpdateSuggestionResponse(ctx, msg.ID, domain.SuggestionSent))

	// Second response is ignored, not an error.
	require.NoError(t, store.UpdateSuggestionResponse(ctx, msg.ID, domain.SuggestionDismissed))

	msgs, err := store.ListAI(ctx, "foo")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.SuggestionSent, msgs[0].SuggestionResponse)
}

func TestSuggestionResponseUnknownMessage(t *testing.T) {
	store := newTestStore(t)

	err := store.UpdateSuggestionResponse(context.Background(), 9999, domain.SuggestionSent)
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestAppendAIDefaultsSuggestionResponse(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	msg := &domain.AIChatMessage{
		RoomName: "foo", UserName: "alice", UserMessage: "q", JudgeReply: "a", Mode: "B",
	}
	require.NoError(t, store.AppendAI(ctx, msg))

	msgs, err := store.ListAI(ctx, "foo")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.SuggestionNoAction, msgs[0].SuggestionResponse)
}

func TestCreateUserAndExists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	exists, err := store.UserExists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.CreateUser(ctx, "alice"))
	// Re-connecting with the same name is not an error.
	require.NoError(t, store.CreateUser(ctx, "alice"))

	exists, err = store.UserExists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDeleteRoomRemovesBothHistories(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AppendChat(ctx, &domain.ChatMessage{RoomName: "foo", UserName: "a", Message: "m"}))
	require.NoError(t, store.AppendAI(ctx, &domain.AIChatMessage{RoomName: "foo", UserName: "a", UserMessage: "q", JudgeReply: "r"}))
	require.NoError(t, store.AppendChat(ctx, &domain.ChatMessage{RoomName: "bar", UserName: "b", Message: "keep"}))

	require.NoError(t, store.DeleteRoom(ctx, "foo"))

	chats, err := store.ListChat(ctx, "foo")
	require.NoError(t, err)
	assert.Empty(t, chats)

	ais, err := store.ListAI(ctx, "foo")
	require.NoError(t, err)
	assert.Empty(t, ais)

	kept, err := store.ListChat(ctx, "bar")
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}
