package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Spok95/matbase/internal/domain/materials"
	"github.com/Spok95/matbase/internal/domain/results"
	"github.com/Spok95/matbase/internal/export"
	"github.com/Spok95/matbase/internal/store"
)

type Server struct {
	srv *http.Server
	q   store.Querier
	log *slog.Logger
}

type Options struct {
	Addr string
	// Если Gatherer не nil, отдаём /metrics.
	Gatherer prometheus.Gatherer
	Log      *slog.Logger
}

func New(q store.Querier, opts Options) *Server {
	s := &Server{q: q, log: opts.Log}
	if s.log == nil {
		s.log = slog.Default()
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if opts.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("GET /api/materials", s.materials)
	mux.HandleFunc("GET /api/materials/{name}/properties", s.properties)
	mux.HandleFunc("GET /api/models", s.models)
	mux.HandleFunc("GET /api/calculation-types", s.calculationTypes)
	mux.HandleFunc("GET /api/results", s.results)

	s.srv = &http.Server{Addr: opts.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	return s
}

func (s *Server) Handler() http.Handler { return s.srv.Handler }

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

type propertyDTO struct {
	Name  string  `json:"name"`
	Unit  string  `json:"unit"`
	Value float64 `json:"value"`
}

type resultDTO struct {
	Model           string  `json:"model"`
	Node            string  `json:"node"`
	CalculationType string  `json:"calculation_type"`
	Value           float64 `json:"value"`
}

type calcTypeDTO struct {
	Name string `json:"name"`
	Unit string `json:"unit"`
}

// ?q=: поиск по части названия.
func (s *Server) materials(w http.ResponseWriter, r *http.Request) {
	names, err := s.q.SearchMaterials(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.json(w, nonNil(names))
}

func (s *Server) properties(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	names, err := s.q.ListMaterials(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !slices.Contains(names, name) {
		http.Error(w, "material not found", http.StatusNotFound)
		return
	}

	props, err := s.q.Properties(r.Context(), name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.json(w, mapSlice(props, func(p materials.Property) propertyDTO {
		return propertyDTO{Name: p.Name, Unit: p.Unit, Value: p.Value}
	}))
}

func (s *Server) models(w http.ResponseWriter, r *http.Request) {
	names, err := s.q.ListModels(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.json(w, nonNil(names))
}

func (s *Server) calculationTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.q.ListCalculationTypes(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.json(w, mapSlice(types, func(ct results.CalculationType) calcTypeDTO {
		return calcTypeDTO{Name: ct.Name, Unit: ct.Unit}
	}))
}

func (s *Server) results(w http.ResponseWriter, r *http.Request) {
	f := results.Filter{
		Model:           r.URL.Query().Get("model"),
		CalculationType: r.URL.Query().Get("type"),
	}
	rs, err := s.q.Results(r.Context(), f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	export.SortResults(rs)
	s.json(w, mapSlice(rs, func(x results.Result) resultDTO {
		return resultDTO{Model: x.Model, Node: x.Node, CalculationType: x.CalculationType, Value: x.Value}
	}))
}

// json кодирует ответ целиком до записи заголовков; ошибка кодирования даёт 500.
func (s *Server) json(w http.ResponseWriter, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.log.Error("encode response", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(append(body, '\n')); err != nil {
		s.log.Warn("write response", "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("api request failed", "path", r.URL.Path, "err", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func mapSlice[T, D any](in []T, fn func(T) D) []D {
	out := make([]D, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
