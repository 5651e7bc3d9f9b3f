package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	rec := NewRecorder()

	r := chi.NewRouter()
	r.Use(rec.Middleware)
	r.Get("/api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		req := httptest.NewRequest(http.MethodGet, "/api/products/"+id, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	got := testutil.ToFloat64(rec.httpRequests.WithLabelValues("GET", "/api/products/{id}", "404"))
	assert.Equal(t, float64(3), got)
}

func TestObserveOrder(t *testing.T) {
	rec := NewRecorder()
	rec.ObserveOrder("cod", 42000)
	rec.ObserveOrder("cod", 1000)
	rec.ObserveOrder("bank_transfer", 5000)

	assert.Equal(t, float64(2), testutil.ToFloat64(rec.ordersPlaced.WithLabelValues("cod")))
	assert.Equal(t, float64(1), testutil.ToFloat64(rec.ordersPlaced.WithLabelValues("bank_transfer")))
}

func TestResultCounters(t *testing.T) {
	rec := NewRecorder()
	rec.IncUpload(true)
	rec.IncUpload(false)
	rec.IncUpload(false)
	rec.IncImageRelay(true)
	rec.IncNotification(false)

	assert.Equal(t, float64(1), testutil.ToFloat64(rec.uploads.WithLabelValues("success")))
	assert.Equal(t, float64(2), testutil.ToFloat64(rec.uploads.WithLabelValues("error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(rec.imageRelays.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(rec.notifications.WithLabelValues("error")))
}

func TestHandler_Exposition(t *testing.T) {
	rec := NewRecorder()
	rec.IncUpload(true)

	srv := httptest.NewServer(rec.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `solarshop_uploads_total{result="success"} 1`))
}

func TestNewRecorder_Independent(t *testing.T) {
	// Separate registries must not panic on duplicate registration.
	assert.NotPanics(t, func() {
		NewRecorder()
		NewRecorder()
	})
}
