package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/matbase/internal/domain/materials"
	"github.com/Spok95/matbase/internal/domain/results"
	"github.com/Spok95/matbase/internal/infra/metrics"
	"github.com/Spok95/matbase/internal/store"
	"github.com/Spok95/matbase/internal/store/storetest"
)

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

// infResults отдаёт результат, который нельзя закодировать в JSON.
type infResults struct {
	store.Querier
}

func (infResults) Results(context.Context, results.Filter) ([]results.Result, error) {
	return []results.Result{{Model: "beam", Node: "1", CalculationType: "Normal Stress", Value: math.Inf(1)}}, nil
}

func TestServerUnencodableResults(t *testing.T) {
	h := New(infResults{Querier: storetest.NewSQLite(t)}, Options{Log: slog.New(slog.NewTextHandler(io.Discard, nil))}).Handler()

	rec := get(t, h, "/api/results?model=beam")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal error")
	assert.NotContains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestServer(t *testing.T) {
	ctx := context.Background()
	s := storetest.NewSQLite(t)
	require.NoError(t, s.CreateMaterial(ctx, "Steel"))
	require.NoError(t, s.CreateMaterial(ctx, "Copper"))
	require.NoError(t, s.UpsertProperty(ctx, materials.Property{Material: "Steel", Name: "Density", Unit: "kg/m3", Value: 7850}))
	require.NoError(t, s.CreateModel(ctx, "beam"))
	require.NoError(t, s.UpsertResult(ctx, results.Result{Model: "beam", Node: "10", CalculationType: "Normal Stress", Value: 2}))
	require.NoError(t, s.UpsertResult(ctx, results.Result{Model: "beam", Node: "9", CalculationType: "Normal Stress", Value: 1}))

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.ResultRowsWritten.Add(2)

	h := New(s, Options{Gatherer: reg}).Handler()

	t.Run("health", func(t *testing.T) {
		rec := get(t, h, "/health")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
	})

	t.Run("metrics", func(t *testing.T) {
		rec := get(t, h, "/metrics")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "matbase_result_rows_written_total 2")
	})

	t.Run("materials with search", func(t *testing.T) {
		var names []string
		rec := get(t, h, "/api/materials?q=ste")
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
		assert.Equal(t, []string{"Steel"}, names)
	})

	t.Run("properties", func(t *testing.T) {
		var props []propertyDTO
		rec := get(t, h, "/api/materials/Steel/properties")
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &props))
		assert.Equal(t, []propertyDTO{{Name: "Density", Unit: "kg/m3", Value: 7850}}, props)

		rec = get(t, h, "/api/materials/Copper/properties")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())

		assert.Equal(t, http.StatusNotFound, get(t, h, "/api/materials/Ghost/properties").Code)
	})

	t.Run("results sorted by node number", func(t *testing.T) {
		var rs []resultDTO
		rec := get(t, h, "/api/results?model=beam&type=Normal+Stress")
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rs))
		require.Len(t, rs, 2)
		assert.Equal(t, "9", rs[0].Node)
		assert.Equal(t, "10", rs[1].Node)
	})

	t.Run("models and types", func(t *testing.T) {
		assert.JSONEq(t, `["beam"]`, get(t, h, "/api/models").Body.String())

		var types []calcTypeDTO
		require.NoError(t, json.Unmarshal(get(t, h, "/api/calculation-types").Body.Bytes(), &types))
		assert.Len(t, types, len(results.PredefinedTypes))
	})

	t.Run("no metrics without gatherer", func(t *testing.T) {
		bare := New(s, Options{}).Handler()
		assert.Equal(t, http.StatusNotFound, get(t, bare, "/metrics").Code)
	})
}
