package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/articles/{slug}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/api/articles/{slug}", "404"))

	for _, slug := range []string{"one", "two"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles/"+slug, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	after := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/api/articles/{slug}", "404"))
	assert.Equal(t, 2.0, after-before)
}

func TestRecordToggle(t *testing.T) {
	before := testutil.ToFloat64(FavoriteToggles.WithLabelValues("favorite", "false"))
	RecordToggle("favorite", false)
	assert.Equal(t, 1.0, testutil.ToFloat64(FavoriteToggles.WithLabelValues("favorite", "false"))-before)
}
