package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/poster-threads/internal/algorithm"
	"github.com/d60-Lab/poster-threads/internal/cache"
	"github.com/d60-Lab/poster-threads/internal/model"
	"github.com/d60-Lab/poster-threads/internal/repository"
	"github.com/d60-Lab/poster-threads/pkg/database"
	"github.com/d60-Lab/poster-threads/pkg/logger"
	"github.com/d60-Lab/poster-threads/pkg/metrics"
)

const (
	PlaceholderPosterURL = "https://via.placeholder.com/800x1200/4A90E2/FFFFFF?text=Dummy+Poster"
	PlaceholderMessage   = "Algorithm service unavailable, returning dummy data"

	MessageGenerated           = "Poster generated successfully"
	MessageGeneratedDegradedDB = "Poster generated (database unavailable)"

	DefaultPosterListLimit = 50
)

// Generator 外部算法服务的生成接口
type Generator interface {
	Generate(ctx context.Context, prompt string) (*algorithm.Result, error)
}

type GenerateRequest struct {
	Prompt         string
	ConversationID string
}

// GenerateResult ID 为 nil 表示未落库
type GenerateResult struct {
	ID         *string       `json:"id"`
	Prompt     string        `json:"prompt"`
	PosterURL  string        `json:"poster_url"`
	PosterData model.Payload `json:"poster_data"`
	Message    string        `json:"message"`

	Outcome GenerationState `json:"-"`
}

// GenerationState 单次生成请求的状态
type GenerationState string

const (
	StateReceived       GenerationState = "received"
	StateCallingService GenerationState = "calling_service"
	StateSucceeded      GenerationState = "succeeded"
	StateDegraded       GenerationState = "degraded"
	StatePersisting     GenerationState = "persisting"
	StateResponded      GenerationState = "responded"
)

// PosterService 海报生成编排与海报列表
type PosterService interface {
	Generate(ctx context.Context, userID string, req GenerateRequest) (*GenerateResult, error)
	List(ctx context.Context, userID string) ([]*model.Poster, error)
}

type posterService struct {
	gw         *database.Gateway
	generator  Generator
	posterRepo repository.PosterRepository
	convRepo   repository.ConversationRepository
	threadRepo repository.ThreadRepository
	convLog    ConversationService
	cache      *cache.ThreadSummaryCache
	now        func() time.Time
}

func NewPosterService(
	gw *database.Gateway,
	generator Generator,
	posterRepo repository.PosterRepository,
	convRepo repository.ConversationRepository,
	threadRepo repository.ThreadRepository,
	convLog ConversationService,
	summaries *cache.ThreadSummaryCache,
	opts ...Option,
) PosterService {
	o := buildOptions(opts)
	return &posterService{
		gw:         gw,
		generator:  generator,
		posterRepo: posterRepo,
		convRepo:   convRepo,
		threadRepo: threadRepo,
		convLog:    convLog,
		cache:      summaries,
		now:        o.now,
	}
}

type generation struct {
	id     string
	userID string
	state  GenerationState
}

func (g *generation) advance(s GenerationState) {
	logger.Debug("generation state",
		zap.String("generation_id", g.id),
		zap.String("user_id", g.userID),
		zap.String("from", string(g.state)),
		zap.String("to", string(s)),
	)
	g.state = s
}

// Generate 调用算法服务生成海报。
// 算法服务失败时返回占位结果（非错误）；落库各步骤独立、失败只记日志，不影响返回。
func (s *posterService) Generate(ctx context.Context, userID string, req GenerateRequest) (*GenerateResult, error) {
	g := &generation{id: uuid.NewString(), userID: userID, state: StateReceived}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, invalid("prompt", "prompt is required")
	}

	g.advance(StateCallingService)
	posterURL, posterData, outcome := s.callService(ctx, prompt)
	g.advance(outcome)
	metrics.RecordGeneration(string(outcome))

	posterURL = CanonicalPosterURL(posterURL)
	res := &GenerateResult{
		Prompt:     prompt,
		PosterURL:  posterURL,
		PosterData: posterData,
		Outcome:    outcome,
	}

	g.advance(StatePersisting)
	if !s.gw.Available(ctx) {
		metrics.RecordPersistenceFailure("unavailable")
		logger.Warn("generation not persisted, database unavailable", zap.String("generation_id", g.id))
		res.Message = MessageGeneratedDegradedDB
		g.advance(StateResponded)
		return res, nil
	}
	res.Message = MessageGenerated
	res.ID = s.persist(ctx, g, req.ConversationID, res)

	g.advance(StateResponded)
	return res, nil
}

func (s *posterService) callService(ctx context.Context, prompt string) (string, model.Payload, GenerationState) {
	out, err := s.generator.Generate(ctx, prompt)
	if err == nil {
		data := model.Payload{}
		if len(out.PosterData) > 0 {
			if uErr := data.UnmarshalJSON(out.PosterData); uErr != nil {
				logger.Warn("poster_data is not valid json, storing as text", zap.Error(uErr))
				data = model.TextPayload(string(out.PosterData))
			}
		}
		return out.PosterURL, data, StateSucceeded
	}

	logger.Warn("algorithm service failed, returning placeholder", zap.Error(err))
	data, _ := model.StructuredPayload(map[string]string{
		"prompt":  prompt,
		"status":  "dummy",
		"message": PlaceholderMessage,
	})
	return PlaceholderPosterURL, data, StateDegraded
}

// persist 尽力落库，返回海报 id（插入失败为 nil）。
// 可接受的部分完成状态：海报已保存但对话响应或主题时间未更新。
// conversation_id 不属于调用方时海报不挂到该对话上。
func (s *posterService) persist(ctx context.Context, g *generation, conversationID string, res *GenerateResult) *string {
	var conv *model.Conversation
	if conversationID != "" {
		owned, err := s.convRepo.GetOwned(ctx, g.userID, conversationID)
		if err != nil {
			metrics.RecordPersistenceFailure("record_response")
			logger.Warn("conversation not found for user, poster saved unlinked",
				zap.String("generation_id", g.id),
				zap.String("conversation_id", conversationID),
				zap.Error(err),
			)
		} else {
			conv = owned
		}
	}

	poster := &model.Poster{
		ID:         uuid.NewString(),
		UserID:     g.userID,
		Prompt:     res.Prompt,
		PosterURL:  res.PosterURL,
		PosterData: res.PosterData,
		CreatedAt:  s.now(),
	}
	if conv != nil {
		cid := conv.ID
		poster.ConversationID = &cid
	}

	var posterID *string
	if err := s.posterRepo.Create(ctx, poster); err != nil {
		metrics.RecordPersistenceFailure("insert_poster")
		logger.Error("save poster failed", zap.String("generation_id", g.id), zap.Error(err))
	} else {
		posterID = &poster.ID
	}

	if conv == nil {
		return posterID
	}

	payload, err := model.StructuredPayload(struct {
		PosterURL  string        `json:"poster_url"`
		PosterData model.Payload `json:"poster_data"`
	}{res.PosterURL, res.PosterData})
	if err == nil {
		err = s.convLog.RecordResponse(ctx, conv.ID, payload)
	}
	if err != nil {
		metrics.RecordPersistenceFailure("record_response")
		logger.Error("record conversation response failed",
			zap.String("generation_id", g.id),
			zap.String("conversation_id", conv.ID),
			zap.Error(err),
		)
	}

	if err := s.threadRepo.Touch(ctx, conv.ThreadID, s.now()); err != nil {
		metrics.RecordPersistenceFailure("touch_thread")
		logger.Error("bump thread updated_at failed",
			zap.String("generation_id", g.id),
			zap.String("thread_id", conv.ThreadID),
			zap.Error(err),
		)
	}
	s.cache.Invalidate(ctx, g.userID)
	return posterID
}

func (s *posterService) List(ctx context.Context, userID string) ([]*model.Poster, error) {
	if !s.gw.Available(ctx) {
		return nil, ErrServiceUnavailable
	}
	posters, err := s.posterRepo.ListByUser(ctx, userID, DefaultPosterListLimit)
	if err != nil {
		return nil, notFoundOr(err, "list posters")
	}
	canonicalizePosters(posters)
	return posters, nil
}
