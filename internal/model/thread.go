package model

import "time"

// Thread 对话主题，归属单个用户
type Thread struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"-" gorm:"type:varchar(64);index:idx_thread_user_updated,priority:1;not null"`
	Title     string    `json:"title" gorm:"type:varchar(200);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"index:idx_thread_user_updated,priority:2"`
}

func (Thread) TableName() string { return "conversation_threads" }

// ThreadSummary 列表项，MessageCount 为读时聚合
type ThreadSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int64     `json:"message_count"`
}
