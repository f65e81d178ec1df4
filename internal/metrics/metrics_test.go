package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talk_enricher/internal/domain"
)

func TestObserveRun_Success(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRun(&domain.EnrichStats{
		Talks:            10,
		Details:          9,
		NullIDTalks:      1,
		DanglingRelated:  2,
		DuplicateRelated: 3,
		Written:          9,
		Duration:         2 * time.Second,
	}, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues(statusSuccess)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues(statusFailed)))
	assert.Equal(t, 9.0, testutil.ToFloat64(m.DocumentsWritten))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.InputRows.WithLabelValues("talks")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DroppedRows.WithLabelValues("dangling_related")))
	assert.Greater(t, testutil.ToFloat64(m.LastSuccess), 0.0)
}

func TestObserveRun_Failure(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRun(nil, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues(statusFailed)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DocumentsWritten))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.LastSuccess))
}

func TestHandler_ExposesRunMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveRun(&domain.EnrichStats{Written: 1}, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "enrich_runs_total")
	assert.Contains(t, string(body), "enrich_documents_written_total 1")
}
