package model

import "time"

// Poster 生成的海报。ConversationID 为软关联，对话不一定反向引用海报。
type Poster struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID         string    `json:"-" gorm:"type:varchar(64);index:idx_poster_user_created,priority:1;not null"`
	ConversationID *string   `json:"conversation_id" gorm:"type:varchar(36);index:idx_poster_conversation"`
	Prompt         string    `json:"prompt" gorm:"type:text;not null"`
	PosterURL      string    `json:"poster_url" gorm:"type:text;not null"`
	PosterData     Payload   `json:"poster_data"`
	CreatedAt      time.Time `json:"created_at" gorm:"index:idx_poster_user_created,priority:2"`
}

func (Poster) TableName() string { return "posters" }
