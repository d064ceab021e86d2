package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/poster-threads/internal/service"
	"github.com/d60-Lab/poster-threads/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHandleError(t *testing.T) {
	validation := &service.ValidationError{Field: "title", Reason: "thread title must not be empty"}
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"validation", validation, http.StatusBadRequest, "thread title must not be empty"},
		{"wrapped validation", fmt.Errorf("create: %w", validation), http.StatusBadRequest, "thread title must not be empty"},
		{"not found", fmt.Errorf("get thread: %w", service.ErrNotFound), http.StatusNotFound, "Thread not found"},
		{"unavailable", service.ErrServiceUnavailable, http.StatusServiceUnavailable, "Database service unavailable"},
		{"upstream", fmt.Errorf("fetch: %w", service.ErrUpstream), http.StatusBadGateway, "Failed to fetch image from algorithm service"},
		{"internal", errors.New("pq: relation does not exist"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			handleError(c, tt.err, threadNotFound)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body response.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Code)
			assert.Equal(t, tt.wantMessage, body.Message)
			assert.NotContains(t, w.Body.String(), "pq:")
		})
	}
}
