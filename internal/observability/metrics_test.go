package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Counters are package globals, so tests compare deltas and run sequentially.
func TestRecordSummary(t *testing.T) {
	before := testutil.ToFloat64(summariesCounter.WithLabelValues(CacheHit))
	RecordSummary(CacheHit)
	RecordSummary(CacheHit)
	assert.Equal(t, before+2, testutil.ToFloat64(summariesCounter.WithLabelValues(CacheHit)))
}

func TestRecordDroppedIgnoresNonPositive(t *testing.T) {
	before := testutil.ToFloat64(droppedCounter.WithLabelValues("out_of_year"))
	RecordDropped("out_of_year", 0)
	RecordDropped("out_of_year", -1)
	RecordDropped("out_of_year", 3)
	assert.Equal(t, before+3, testutil.ToFloat64(droppedCounter.WithLabelValues("out_of_year")))
}

func TestRecordImport(t *testing.T) {
	beforeFiles := testutil.ToFloat64(filesCounter.WithLabelValues("csv"))
	beforeErrs := testutil.ToFloat64(importErrorCounter.WithLabelValues("csv"))

	RecordFileImported("csv")
	RecordImportErrors("csv", 2)
	RecordImportErrors("csv", 0)

	assert.Equal(t, beforeFiles+1, testutil.ToFloat64(filesCounter.WithLabelValues("csv")))
	assert.Equal(t, beforeErrs+2, testutil.ToFloat64(importErrorCounter.WithLabelValues("csv")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordComputeDuration(15 * time.Millisecond)
	RecordPublishError()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "fitness_wrapped_summary_compute_duration_seconds_bucket")
	assert.Contains(t, body, "fitness_wrapped_publish_errors_total")
}
