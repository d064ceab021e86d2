package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordGeneration(t *testing.T) {
	before := testutil.ToFloat64(GenerationsTotal.WithLabelValues("degraded"))
	RecordGeneration("degraded")
	assert.Equal(t, before+1, testutil.ToFloat64(GenerationsTotal.WithLabelValues("degraded")))
}

func TestRecordRequest(t *testing.T) {
	before := testutil.ToFloat64(RequestsTotal.WithLabelValues("GET", "/api/thread/list", "200"))
	RecordRequest("GET", "/api/thread/list", "200", 0.02)
	assert.Equal(t, before+1, testutil.ToFloat64(RequestsTotal.WithLabelValues("GET", "/api/thread/list", "200")))
}
