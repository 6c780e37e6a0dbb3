// Package api serves rendered lineups over HTTP.
//
// Routes:
//
//	GET /healthz          liveness probe
//	GET /lineup           request a lineup and render it (query: game, budget,
//	                      dropout, date, scheme, captain, format, tooltips, refresh)
//	GET /renders          recent renders, newest first (query: limit)
//	GET /renders/{id}     a stored artifact (query: format)
//
// Every render failure answers with the same generic message; the details go
// to the log.
package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/palpiteiro/palpiteiro/pkg/errors"
	"github.com/palpiteiro/palpiteiro/pkg/pipeline"
	"github.com/palpiteiro/palpiteiro/pkg/storage"
)

// Renderer runs the render pipeline. *pipeline.Runner implements it.
type Renderer interface {
	Execute(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error)
}

// Handler holds the dependencies of the API routes.
type Handler struct {
	renderer Renderer
	store    storage.Store
	defaults pipeline.Options
	logger   *log.Logger
}

// New creates a handler. defaults seeds the options of every render; query
// parameters override it. A nil store keeps history in memory.
func New(renderer Renderer, store storage.Store, defaults pipeline.Options, logger *log.Logger) *Handler {
	if store == nil {
		store = storage.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{renderer: renderer, store: store, defaults: defaults, logger: logger}
}

// NewRouter creates the chi router with middleware and routes.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.logger))

	r.Get("/healthz", h.Health)
	r.Get("/lineup", h.Lineup)
	r.Route("/renders", func(r chi.Router) {
		r.Get("/", h.ListRenders)
		r.Get("/{id}", h.GetRender)
	})
	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Lineup requests a lineup, renders it in one format, stores the render and
// answers with the artifact. The render id is returned in X-Render-ID.
func (h *Handler) Lineup(w http.ResponseWriter, r *http.Request) {
	opts, format, err := h.options(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, codeOf(err), errors.UserMessage(err))
		return
	}

	res, err := h.renderer.Execute(r.Context(), opts)
	if err != nil {
		h.logger.Error("render failed", "game", opts.Game, "err", err)
		writeError(w, statusFor(err), codeOf(err), errors.PublicMessage(err))
		return
	}

	var captains []int
	if res.Layout != nil {
		captains = res.Layout.Captains
	}
	rec := storage.NewRender(res.Lineup, opts.Game, captains, res.Artifacts)
	rec.LineupHash = res.LineupHash
	if err := h.store.Save(r.Context(), rec); err != nil {
		h.logger.Warn("store render", "id", rec.ID, "err", err)
	} else {
		w.Header().Set("X-Render-ID", rec.ID)
		w.Header().Set("Location", "/renders/"+rec.ID+"?format="+format)
	}

	cacheStatus := "MISS"
	if res.CacheInfo.RenderHit {
		cacheStatus = "HIT"
	}
	w.Header().Set("X-Cache", cacheStatus)
	writeArtifact(w, format, res.Artifacts[format])
}

func (h *Handler) ListRenders(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, string(errors.ErrCodeInvalidInput), "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	renders, err := h.store.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("list renders", "err", err)
		writeError(w, http.StatusInternalServerError, string(errors.ErrCodeInternal), errors.PublicMessage(err))
		return
	}
	if renders == nil {
		renders = []storage.Render{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"renders": renders})
}

func (h *Handler) GetRender(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if storage.ValidateID(id) != nil {
		writeError(w, http.StatusNotFound, string(errors.ErrCodeNotFound), "render not found")
		return
	}

	rec, err := h.store.Get(r.Context(), id)
	if stderrors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, string(errors.ErrCodeNotFound), "render not found")
		return
	}
	if err != nil {
		h.logger.Error("get render", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, string(errors.ErrCodeInternal), errors.PublicMessage(err))
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
		if _, ok := rec.Artifacts[format]; !ok {
			if formats := rec.Formats(); len(formats) > 0 {
				format = formats[0]
			}
		}
	}
	data, ok := rec.Artifacts[format]
	if !ok {
		writeError(w, http.StatusNotFound, string(errors.ErrCodeNotFound), "render has no "+format+" artifact")
		return
	}
	writeArtifact(w, format, data)
}

// options builds the render options of a /lineup request. Lineup settings
// are validated here so that bad input answers 400 instead of the generic
// failure.
func (h *Handler) options(q url.Values) (pipeline.Options, string, error) {
	opts := h.defaults
	opts.Tooltips = true

	if v := q.Get("game"); v != "" {
		opts.Game = v
	}
	for _, name := range []string{"budget", "dropout"} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, "", errors.New(errors.ErrCodeInvalidInput, "%s must be a number, got %q", name, v)
		}
		if name == "budget" {
			opts.Budget = &f
		} else {
			opts.Dropout = f
		}
	}
	if v := q.Get("date"); v != "" {
		opts.Date = v
	}
	if v := q.Get("scheme"); v != "" {
		opts.Scheme = v
	}
	if v := q.Get("captain"); v != "" {
		opts.Captain = v
	}
	for name, dst := range map[string]*bool{"tooltips": &opts.Tooltips, "refresh": &opts.Refresh} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, "", errors.New(errors.ErrCodeInvalidInput, "%s must be a boolean, got %q", name, v)
		}
		*dst = b
	}

	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return opts, "", err
	}
	opts.Formats = []string{format}

	if err := opts.ValidateForLineup(); err != nil {
		return opts, "", err
	}
	return opts, format, nil
}

func codeOf(err error) string {
	if code := errors.GetCode(err); code != "" {
		return string(code)
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return string(errors.ErrCodeTimeout)
	}
	return string(errors.ErrCodeInternal)
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidMode, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidURL:
		return http.StatusBadRequest
	case errors.ErrCodeRemoteService:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
