package repository

import (
	"context"
	"errors"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// GetOrCreateRoom returns the project's chat room, creating it on first use
func (r *ChatRepository) GetOrCreateRoom(ctx context.Context, projectID uuid.UUID) (*domain.ChatRoom, error) {
	var room domain.ChatRoom
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		room = domain.ChatRoom{ProjectID: projectID}
		if err := r.db.WithContext(ctx).Create(&room).Error; err != nil {
			return nil, err
		}
		return &room, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *ChatRepository) CreateMessage(ctx context.Context, msg *domain.ChatMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListMessages returns a room's messages oldest first
func (r *ChatRepository) ListMessages(ctx context.Context, roomID uuid.UUID, p Pagination) ([]domain.ChatMessage, int64, error) {
	var messages []domain.ChatMessage
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.ChatMessage{}).Where("room_id = ?", roomID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Offset(p.Offset()).Limit(p.PageSize).Order("created_at ASC").Find(&messages).Error
	return messages, total, err
}
