package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/poster-threads/internal/cache"
	"github.com/d60-Lab/poster-threads/internal/model"
	"github.com/d60-Lab/poster-threads/internal/repository"
	"github.com/d60-Lab/poster-threads/pkg/database"
)

const DefaultHistoryLimit = 50

// ConversationService 对话记录
type ConversationService interface {
	Append(ctx context.Context, userID, threadID, message string) (*model.Conversation, error)
	RecordResponse(ctx context.Context, conversationID string, payload model.Payload) error
	History(ctx context.Context, userID string, limit int) ([]*model.Conversation, error)
}

type conversationService struct {
	gw         *database.Gateway
	threadRepo repository.ThreadRepository
	convRepo   repository.ConversationRepository
	cache      *cache.ThreadSummaryCache
	now        func() time.Time
}

func NewConversationService(
	gw *database.Gateway,
	threadRepo repository.ThreadRepository,
	convRepo repository.ConversationRepository,
	summaries *cache.ThreadSummaryCache,
	opts ...Option,
) ConversationService {
	o := buildOptions(opts)
	return &conversationService{gw: gw, threadRepo: threadRepo, convRepo: convRepo, cache: summaries, now: o.now}
}

// Append 追加用户消息。不刷新主题 updated_at：最近活跃只跟随生成结果写入。
func (s *conversationService) Append(ctx context.Context, userID, threadID, message string) (*model.Conversation, error) {
	if !s.gw.Available(ctx) {
		return nil, ErrServiceUnavailable
	}
	msg, err := ValidateMessage(message)
	if err != nil {
		return nil, err
	}
	if _, err := s.threadRepo.GetOwned(ctx, userID, threadID); err != nil {
		return nil, notFoundOr(err, "get thread")
	}

	c := &model.Conversation{ID: uuid.NewString(), UserID: userID, ThreadID: threadID, Message: msg, CreatedAt: s.now()}
	if err := s.convRepo.Create(ctx, c); err != nil {
		return nil, notFoundOr(err, "create conversation")
	}
	// message_count 变化
	s.cache.Invalidate(ctx, userID)
	return c, nil
}

// RecordResponse 无条件覆盖；归属已在创建对话时校验
func (s *conversationService) RecordResponse(ctx context.Context, conversationID string, payload model.Payload) error {
	if !s.gw.Available(ctx) {
		return ErrServiceUnavailable
	}
	if err := s.convRepo.SetResponse(ctx, conversationID, payload); err != nil {
		return notFoundOr(err, "record response")
	}
	return nil
}

func (s *conversationService) History(ctx context.Context, userID string, limit int) ([]*model.Conversation, error) {
	if !s.gw.Available(ctx) {
		return nil, ErrServiceUnavailable
	}
	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}
	res, err := s.convRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, notFoundOr(err, "conversation history")
	}
	return res, nil
}
