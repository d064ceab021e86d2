package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/poster-threads/internal/cache"
	"github.com/d60-Lab/poster-threads/internal/model"
	"github.com/d60-Lab/poster-threads/internal/repository"
	"github.com/d60-Lab/poster-threads/pkg/database"
	"github.com/d60-Lab/poster-threads/pkg/logger"
)

// CreateThreadResult InitialMessageAccepted 为 false 表示未提供首条消息或首条消息不合法被丢弃
type CreateThreadResult struct {
	Thread                 *model.Thread `json:"thread"`
	InitialMessageAccepted bool          `json:"initial_message_accepted"`
}

// ThreadDetail 主题详情：对话正序，海报经对话关联
type ThreadDetail struct {
	Thread        *model.Thread         `json:"thread"`
	Conversations []*model.Conversation `json:"conversations"`
	Posters       []*model.Poster       `json:"posters"`
}

// ThreadService 对话主题服务，所有操作按调用方 user_id 隔离
type ThreadService interface {
	List(ctx context.Context, userID string) ([]model.ThreadSummary, error)
	Create(ctx context.Context, userID, title, initialMessage string) (*CreateThreadResult, error)
	Get(ctx context.Context, userID, threadID string) (*ThreadDetail, error)
	Update(ctx context.Context, userID, threadID, title string) (*model.Thread, error)
	Delete(ctx context.Context, userID, threadID string) error
}

type threadService struct {
	gw         *database.Gateway
	threadRepo repository.ThreadRepository
	convRepo   repository.ConversationRepository
	posterRepo repository.PosterRepository
	cache      *cache.ThreadSummaryCache
	now        func() time.Time
}

func NewThreadService(
	gw *database.Gateway,
	threadRepo repository.ThreadRepository,
	convRepo repository.ConversationRepository,
	posterRepo repository.PosterRepository,
	summaries *cache.ThreadSummaryCache,
	opts ...Option,
) ThreadService {
	o := buildOptions(opts)
	return &threadService{
		gw:         gw,
		threadRepo: threadRepo,
		convRepo:   convRepo,
		posterRepo: posterRepo,
		cache:      summaries,
		now:        o.now,
	}
}

func (s *threadService) List(ctx context.Context, userID string) ([]model.ThreadSummary, error) {
	if !s.gw.Available(ctx) {
		return nil, ErrServiceUnavailable
	}
	return s.cache.Fetch(ctx, userID, func(ctx context.Context) ([]model.ThreadSummary, error) {
		return s.threadRepo.ListSummaries(ctx, userID)
	})
}

// Create 标题不合法直接失败；首条消息不合法则静默丢弃，主题照常创建
func (s *threadService) Create(ctx context.Context, userID, title, initialMessage string) (*CreateThreadResult, error) {
	if !s.gw.Available(ctx) {
		return nil, ErrServiceUnavailable
	}
	cleanTitle, err := ValidateTitle(title)
	if err != nil {
		return nil, err
	}

	now := s.now()
	thread := &model.Thread{ID: uuid.NewString(), UserID: userID, Title: cleanTitle, CreatedAt: now, UpdatedAt: now}

	var first *model.Conversation
	if initialMessage != "" {
		msg, vErr := ValidateMessage(initialMessage)
		if vErr != nil {
			logger.Info("initial message dropped",
				zap.String("user_id", userID),
				zap.String("thread_id", thread.ID),
				zap.String("reason", vErr.Error()),
			)
		} else {
			first = &model.Conversation{ID: uuid.NewString(), UserID: userID, ThreadID: thread.ID, Message: msg, CreatedAt: now}
		}
	}

	if err := s.threadRepo.Create(ctx, thread, first); err != nil {
		return nil, notFoundOr(err, "create thread")
	}
	s.cache.Invalidate(ctx, userID)
	return &CreateThreadResult{Thread: thread, InitialMessageAccepted: first != nil}, nil
}

func (s *threadService) Get(ctx context.Context, userID, threadID string) (*ThreadDetail, error) {
	if !s.gw.Available(ctx) {
		return nil, ErrServiceUnavailable
	}
	thread, err := s.threadRepo.GetOwned(ctx, userID, threadID)
	if err != nil {
		return nil, notFoundOr(err, "get thread")
	}
	convs, err := s.convRepo.ListByThread(ctx, threadID)
	if err != nil {
		return nil, notFoundOr(err, "list conversations")
	}
	posters, err := s.posterRepo.ListByThread(ctx, userID, threadID)
	if err != nil {
		return nil, notFoundOr(err, "list thread posters")
	}
	canonicalizePosters(posters)
	return &ThreadDetail{Thread: thread, Conversations: convs, Posters: posters}, nil
}

func (s *threadService) Update(ctx context.Context, userID, threadID, title string) (*model.Thread, error) {
	if !s.gw.Available(ctx) {
		return nil, ErrServiceUnavailable
	}
	cleanTitle, err := ValidateTitle(title)
	if err != nil {
		return nil, err
	}
	thread, err := s.threadRepo.UpdateTitle(ctx, userID, threadID, cleanTitle, s.now())
	if err != nil {
		return nil, notFoundOr(err, "update thread")
	}
	s.cache.Invalidate(ctx, userID)
	return thread, nil
}

func (s *threadService) Delete(ctx context.Context, userID, threadID string) error {
	if !s.gw.Available(ctx) {
		return ErrServiceUnavailable
	}
	if err := s.threadRepo.Delete(ctx, userID, threadID); err != nil {
		return notFoundOr(err, "delete thread")
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}

// 历史数据可能早于 URL 规范化规则写入，读路径统一再做一次
func canonicalizePosters(posters []*model.Poster) {
	for _, p := range posters {
		p.PosterURL = CanonicalPosterURL(p.PosterURL)
	}
}
