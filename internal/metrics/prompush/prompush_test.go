package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posmigrate/internal/metrics"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	require.NotNil(t, m.GetCounter())
	return m.GetCounter().GetValue()
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	_, err := NewBackend("job", "")
	require.Error(t, err)

	b, err := NewBackend("", "http://localhost:9091")
	require.NoError(t, err)
	assert.Equal(t, "posmigrate", b.jobName)
}

func TestBackend_Counters(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("pos", "http://localhost:9091")
	require.NoError(t, err)

	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"step": "decode", "status": "success"})
	b.IncCounter(metrics.RecordsTotal, 3, metrics.Labels{"table": "client", "kind": "decoded"})
	b.IncCounter(metrics.RecordsTotal, 2, metrics.Labels{"table": "client", "kind": "decoded"})
	b.IncCounter(metrics.BatchesTotal, 4, metrics.Labels{"stage": "sales"})
	b.IncCounter("unknown_metric", 100, nil)
	b.ObserveHistogram(metrics.StepDurationSeconds, 0.5, metrics.Labels{"step": "decode", "status": "success"})
	b.ObserveHistogram("unknown_metric", 1, nil)

	assert.Equal(t, 1.0, counterValue(t, b.stepCounter.WithLabelValues("decode", "success")))
	assert.Equal(t, 5.0, counterValue(t, b.recordCounter.WithLabelValues("client", "decoded")))
	assert.Equal(t, 4.0, counterValue(t, b.batchCounter.WithLabelValues("sales")))

	families, err := b.reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{metrics.StepTotal, metrics.StepDurationSeconds, metrics.RecordsTotal, metrics.BatchesTotal}, names)
}

func TestBackend_FlushPushes(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		path string
		body string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		path, body = r.URL.Path, string(b)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b, err := NewBackend("pos", srv.URL)
	require.NoError(t, err)
	b.IncCounter(metrics.BatchesTotal, 1, metrics.Labels{"stage": "clients"})
	require.NoError(t, b.Flush())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/metrics/job/pos", path)
	assert.Contains(t, body, metrics.BatchesTotal)
}

func TestBackend_FlushError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	b, err := NewBackend("pos", srv.URL)
	require.NoError(t, err)
	err = b.Flush()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompush: push")
}
