package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/poster-threads/internal/model"
)

type PosterRepository interface {
	Create(ctx context.Context, p *model.Poster) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*model.Poster, error)
	ListByThread(ctx context.Context, userID, threadID string) ([]*model.Poster, error)
}

type posterRepository struct{ db *gorm.DB }

func NewPosterRepository(db *gorm.DB) PosterRepository { return &posterRepository{db: db} }

func (r *posterRepository) Create(ctx context.Context, p *model.Poster) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *posterRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*model.Poster, error) {
	res := make([]*model.Poster, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&res).Error
	return res, err
}

// ListByThread 经由对话关联到主题的海报，按创建时间正序。
// conversation_id 是软关联，只取主题所有者自己的海报。
func (r *posterRepository) ListByThread(ctx context.Context, userID, threadID string) ([]*model.Poster, error) {
	res := make([]*model.Poster, 0)
	sub := r.db.WithContext(ctx).Model(&model.Conversation{}).Select("id").Where("thread_id = ?", threadID)
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND conversation_id IN (?)", userID, sub).
		Order("created_at ASC").
		Find(&res).Error
	return res, err
}
