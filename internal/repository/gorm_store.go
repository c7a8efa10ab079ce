package repository

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"

	"github.com/leowang3268/puzzle-chat-ai/internal/domain"
	"github.com/leowang3268/puzzle-chat-ai/pkg/database"
	"github.com/leowang3268/puzzle-chat-ai/pkg/log"
)

// GormHistoryStore implements HistoryStore using GORM.
type GormHistoryStore struct {
	db *gorm.DB

	// Serializes like-set read-modify-write so concurrent toggles on the
	// same message never lose updates.
	likeMu sync.Mutex
}

func NewGormHistoryStore(db *gorm.DB) *GormHistoryStore {
	return &GormHistoryStore{db: db}
}

// Migrate creates the chat tables.
func (s *GormHistoryStore) Migrate() error {
	return database.AutoMigrate(s.db,
		&domain.ChatMessageModel{},
		&domain.AIChatMessageModel{},
		&domain.ChatUserModel{},
	)
}

func (s *GormHistoryStore) CreateUser(ctx context.Context, userName string) error {
	model := &domain.ChatUserModel{UserName: userName}
	result := s.db.WithContext(ctx).Where("user_name = ?", userName).FirstOrCreate(model)
	if result.Error != nil {
		log.Ctx(ctx).Error().Err(result.Error).Str(log.FieldUserName, userName).Msg("failed to create chat user")
		return result.Error
	}
	return nil
}

func (s *GormHistoryStore) UserExists(ctx context.Context, userName string) (bool, error) {
	var count int64
	result := s.db.WithContext(ctx).Model(&domain.ChatUserModel{}).
		Where("user_name = ?", userName).Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

func (s *GormHistoryStore) AppendChat(ctx context.Context, msg *domain.ChatMessage) error {
	l := log.Ctx(ctx)

	model := domain.ChatMessageToModel(msg)
	if model.LikedBy == nil {
		model.LikedBy = database.StringArray{}
	}
	result := s.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldRoom, msg.RoomName).Msg("failed to append chat message")
		return result.Error
	}

	msg.ID = model.ID
	msg.Timestamp = model.Timestamp
	return nil
}

func (s *GormHistoryStore) AppendAI(ctx context.Context, msg *domain.AIChatMessage) error {
	l := log.Ctx(ctx)

	if msg.SuggestionResponse == "" {
		msg.SuggestionResponse = domain.SuggestionNoAction
	}
	model := domain.AIChatMessageToModel(msg)
	result := s.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldRoom, msg.RoomName).Msg("failed to append ai message")
		return result.Error
	}

	msg.ID = model.ID
	msg.Timestamp = model.Timestamp
	return nil
}

func (s *GormHistoryStore) ListChat(ctx context.Context, room string) ([]domain.ChatMessage, error) {
	var models []domain.ChatMessageModel
	result := s.db.WithContext(ctx).
		Where("room_name = ?", room).
		Order("timestamp ASC, id ASC").
		Find(&models)
	if result.Error != nil {
		log.Ctx(ctx).Error().Err(result.Error).Str(log.FieldRoom, room).Msg("failed to list chat messages")
		return nil, result.Error
	}

	messages := make([]domain.ChatMessage, len(models))
	for i := range models {
		messages[i] = *models[i].ToDomain()
	}
	return messages, nil
}

func (s *GormHistoryStore) ListAI(ctx context.Context, room string) ([]domain.AIChatMessage, error) {
	var models []domain.AIChatMessageModel
	result := s.db.WithContext(ctx).
		Where("room_name = ?", room).
		Order("timestamp ASC, id ASC").
		Find(&models)
	if result.Error != nil {
		log.Ctx(ctx).Error().Err(result.Error).Str(log.FieldRoom, room).Msg("failed to list ai messages")
		return nil, result.Error
	}

	messages := make([]domain.AIChatMessage, len(models))
	for i := range models {
		messages[i] = *models[i].ToDomain()
	}
	return messages, nil
}

func (s *GormHistoryStore) ToggleLike(ctx context.Context, messageID uint, userName string) ([]string, error) {
	s.likeMu.Lock()
	defer s.likeMu.Unlock()

	var model domain.ChatMessageModel
	result := s.db.WithContext(ctx).First(&model, messageID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, result.Error
	}

	likedBy := []string(model.LikedBy)
	found := false
	for i, name := range likedBy {
		if name == userName {
			likedBy = append(likedBy[:i], likedBy[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		likedBy = append(likedBy, userName)
	}

	update := s.db.WithContext(ctx).Model(&model).
		Update("liked_by", database.StringArray(likedBy))
	if update.Error != nil {
		log.Ctx(ctx).Error().Err(update.Error).Uint("message_id", messageID).Msg("failed to update likes")
		return nil, update.Error
	}

	return likedBy, nil
}

func (s *GormHistoryStore) UpdateSuggestionResponse(ctx context.Context, id uint, status domain.SuggestionResponse) error {
	result := s.db.WithContext(ctx).Model(&domain.AIChatMessageModel{}).
		Where("id = ? AND suggestion_response = ?", id, string(domain.SuggestionNoAction)).
		Update("suggestion_response", string(status))
	if result.Error != nil {
		log.Ctx(ctx).Error().Err(result.Error).Uint("ai_message_id", id).Msg("failed to update suggestion response")
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&domain.AIChatMessageModel{}).
			Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrMessageNotFound
		}
		// Already responded; first response wins.
		log.Ctx(ctx).Debug().Uint("ai_message_id", id).Msg("suggestion response already recorded")
	}
	return nil
}

func (s *GormHistoryStore) DeleteRoom(ctx context.Context, room string) error {
	l := log.Ctx(ctx)

	if err := s.db.WithContext(ctx).Where("room_name = ?", room).
		Delete(&domain.ChatMessageModel{}).Error; err != nil {
		l.Error().Err(err).Str(log.FieldRoom, room).Msg("failed to delete chat messages")
		return err
	}
	if err := s.db.WithContext(ctx).Where("room_name = ?", room).
		Delete(&domain.AIChatMessageModel{}).Error; err != nil {
		l.Error().Err(err).Str(log.FieldRoom, room).Msg("failed to delete ai messages")
		return err
	}

	l.Info().Str(log.FieldRoom, room).Msg("room history deleted")
	return nil
}
