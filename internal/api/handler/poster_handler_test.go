package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/d60-Lab/poster-threads/internal/service"
)

type stubRelay struct {
	img *service.Image
	err error
}

func (s *stubRelay) Fetch(context.Context, string) (*service.Image, error) {
	return s.img, s.err
}

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func serveImage(relay service.ImageRelay) *httptest.ResponseRecorder {
	h := &Handler{imageRelay: relay}
	r := gin.New()
	r.GET("/api/poster/image/:posterId", h.PosterImage)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/poster/image/p1", nil))
	return w
}

func TestPosterImage_Streams(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader("PNGBYTES")}
	w := serveImage(&stubRelay{img: &service.Image{Body: body, ContentType: "image/png"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, imageCacheControl, w.Header().Get("Cache-Control"))
	assert.Equal(t, "PNGBYTES", w.Body.String())
	assert.True(t, body.closed)
}

func TestPosterImage_Errors(t *testing.T) {
	w := serveImage(&stubRelay{err: service.ErrNotFound})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Image not found")
	assert.Empty(t, w.Header().Get("Cache-Control"))

	w = serveImage(&stubRelay{err: service.ErrUpstream})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
