package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/d60-Lab/poster-threads/internal/algorithm"
	"github.com/d60-Lab/poster-threads/pkg/logger"
	"github.com/d60-Lab/poster-threads/pkg/metrics"
)

const DefaultImageContentType = "image/png"

// ImageFetcher 外部算法服务的图片接口
type ImageFetcher interface {
	FetchImage(ctx context.Context, posterID string) (*algorithm.Image, error)
}

// Image 待转发的图片流，调用方负责 Close
type Image struct {
	Body        io.ReadCloser
	ContentType string
}

// ImageRelay 图片代理。没有占位兜底：失败即返回错误。
type ImageRelay interface {
	Fetch(ctx context.Context, posterID string) (*Image, error)
}

type imageRelay struct {
	fetcher ImageFetcher
}

func NewImageRelay(fetcher ImageFetcher) ImageRelay {
	return &imageRelay{fetcher: fetcher}
}

func (r *imageRelay) Fetch(ctx context.Context, posterID string) (*Image, error) {
	if posterID == "" {
		return nil, ErrNotFound
	}
	img, err := r.fetcher.FetchImage(ctx, posterID)
	switch {
	case err == nil:
	case errors.Is(err, algorithm.ErrImageNotFound):
		metrics.RecordImageRelay("not_found")
		return nil, fmt.Errorf("poster image %s: %w", posterID, ErrNotFound)
	default:
		metrics.RecordImageRelay("upstream_error")
		logger.Error("fetch poster image failed", zap.String("poster_id", posterID), zap.Error(err))
		return nil, fmt.Errorf("fetch poster image: %w", ErrUpstream)
	}

	metrics.RecordImageRelay("ok")
	ct := img.ContentType
	if ct == "" {
		ct = DefaultImageContentType
	}
	return &Image{Body: img.Body, ContentType: ct}, nil
}
