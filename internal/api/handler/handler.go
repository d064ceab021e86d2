package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/poster-threads/internal/service"
	"github.com/d60-Lab/poster-threads/pkg/database"
	"github.com/d60-Lab/poster-threads/pkg/response"
)

// Handler HTTP 处理器，持有各业务服务
type Handler struct {
	threadService       service.ThreadService
	conversationService service.ConversationService
	posterService       service.PosterService
	imageRelay          service.ImageRelay
	gw                  *database.Gateway
	now                 func() string
}

func NewHandler(
	threads service.ThreadService,
	conversations service.ConversationService,
	posters service.PosterService,
	relay service.ImageRelay,
	gw *database.Gateway,
) *Handler {
	return &Handler{
		threadService:       threads,
		conversationService: conversations,
		posterService:       posters,
		imageRelay:          relay,
		gw:                  gw,
		now:                 nowRFC3339,
	}
}

// handleError 业务错误到 HTTP 状态码的统一映射，notFound 为 404 时的提示
func handleError(c *gin.Context, err error, notFound string) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		response.BadRequest(c, ve.Reason)
	case errors.Is(err, service.ErrValidation):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, notFound)
	case errors.Is(err, service.ErrServiceUnavailable):
		response.ServiceUnavailable(c, "Database service unavailable")
	case errors.Is(err, service.ErrUpstream):
		response.BadGateway(c, "Failed to fetch image from algorithm service")
	default:
		response.InternalError(c, err)
	}
}
