package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/poster-threads/internal/model"
)

type ThreadRepository interface {
	Create(ctx context.Context, thread *model.Thread, first *model.Conversation) error
	GetOwned(ctx context.Context, userID, threadID string) (*model.Thread, error)
	ListSummaries(ctx context.Context, userID string) ([]model.ThreadSummary, error)
	UpdateTitle(ctx context.Context, userID, threadID, title string, at time.Time) (*model.Thread, error)
	Touch(ctx context.Context, threadID string, at time.Time) error
	Delete(ctx context.Context, userID, threadID string) error
}

type threadRepository struct {
	db *gorm.DB
}

func NewThreadRepository(db *gorm.DB) ThreadRepository { return &threadRepository{db: db} }

// Create 创建主题；first 非空时在同一事务内写入首条对话
func (r *threadRepository) Create(ctx context.Context, thread *model.Thread, first *model.Conversation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(thread).Error; err != nil {
			return err
		}
		if first == nil {
			return nil
		}
		return tx.Create(first).Error
	})
}

// GetOwned 按 (id, user_id) 查询，不属于该用户时返回 gorm.ErrRecordNotFound
func (r *threadRepository) GetOwned(ctx context.Context, userID, threadID string) (*model.Thread, error) {
	var t model.Thread
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", threadID, userID).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListSummaries 按 updated_at 倒序，message_count 为 LEFT JOIN 计数
func (r *threadRepository) ListSummaries(ctx context.Context, userID string) ([]model.ThreadSummary, error) {
	res := make([]model.ThreadSummary, 0)
	err := r.db.WithContext(ctx).
		Table("conversation_threads AS t").
		Select("t.id, t.title, t.created_at, t.updated_at, COUNT(c.id) AS message_count").
		Joins("LEFT JOIN conversations c ON c.thread_id = t.id").
		Where("t.user_id = ?", userID).
		Group("t.id, t.title, t.created_at, t.updated_at").
		Order("t.updated_at DESC, t.created_at DESC").
		Scan(&res).Error
	return res, err
}

func (r *threadRepository) UpdateTitle(ctx context.Context, userID, threadID, title string, at time.Time) (*model.Thread, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Thread{}).
		Where("id = ? AND user_id = ?", threadID, userID).
		Updates(map[string]any{"title": title, "updated_at": at})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetOwned(ctx, userID, threadID)
}

// Touch 刷新 updated_at（最近活跃排序依据）
func (r *threadRepository) Touch(ctx context.Context, threadID string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.Thread{}).
		Where("id = ?", threadID).
		UpdateColumn("updated_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete 删除主题及其对话；海报保留（conversation_id 变为悬空软链接）
func (r *threadRepository) Delete(ctx context.Context, userID, threadID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", threadID, userID).Delete(&model.Thread{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("thread_id = ?", threadID).Delete(&model.Conversation{}).Error
	})
}

// IsNotFound 判断是否为记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
