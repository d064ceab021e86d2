package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/poster-threads/internal/model"
)

type ConversationRepository interface {
	Create(ctx context.Context, c *model.Conversation) error
	SetResponse(ctx context.Context, id string, payload model.Payload) error
	GetOwned(ctx context.Context, userID, id string) (*model.Conversation, error)
	ListByThread(ctx context.Context, threadID string) ([]*model.Conversation, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*model.Conversation, error)
}

type conversationRepository struct{ db *gorm.DB }

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(ctx context.Context, c *model.Conversation) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// SetResponse 无条件覆盖 response
func (r *conversationRepository) SetResponse(ctx context.Context, id string, payload model.Payload) error {
	res := r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("id = ?", id).
		UpdateColumn("response", payload)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *conversationRepository) GetOwned(ctx context.Context, userID, id string) (*model.Conversation, error) {
	var c model.Conversation
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *conversationRepository) ListByThread(ctx context.Context, threadID string) ([]*model.Conversation, error) {
	res := make([]*model.Conversation, 0)
	err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at ASC").
		Find(&res).Error
	return res, err
}

func (r *conversationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*model.Conversation, error) {
	res := make([]*model.Conversation, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&res).Error
	return res, err
}
