package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InstancesAreIndependent(t *testing.T) {
	a := New()
	b := New()

	a.AnalysesTotal.WithLabelValues("phishing").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.AnalysesTotal.WithLabelValues("phishing")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.AnalysesTotal.WithLabelValues("phishing")))
}

func TestHandler_ServesCollectors(t *testing.T) {
	m := New()
	m.SourceFallbacks.WithLabelValues("reputation", "timeout").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `phishguard_source_fallbacks_total{reason="timeout",source="reputation"} 1`)
}
