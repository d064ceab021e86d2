package model

import "time"

// Conversation 一轮对话：用户消息 + 可选的生成结果
type Conversation struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"-" gorm:"type:varchar(64);index:idx_conv_user_created,priority:1;not null"`
	ThreadID  string    `json:"thread_id" gorm:"type:varchar(36);index:idx_conv_thread;not null"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	Response  *Payload  `json:"response"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_conv_user_created,priority:2"`
}

func (Conversation) TableName() string { return "conversations" }
