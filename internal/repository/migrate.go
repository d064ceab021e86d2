package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/d60-Lab/poster-threads/internal/model"
)

// AutoMigrate 初始化表结构
func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&model.Thread{}, &model.Conversation{}, &model.Poster{}); err != nil {
		return fmt.Errorf("failed to migrate tables: %w", err)
	}
	return nil
}
