package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/bentogrid/pkg/document"
	"github.com/matzehuels/bentogrid/pkg/drag"
	"github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/grid"
	"github.com/matzehuels/bentogrid/pkg/observability"
	"github.com/matzehuels/bentogrid/pkg/pipeline"
	"github.com/matzehuels/bentogrid/pkg/render"
)

// =============================================================================
// Middleware
// =============================================================================

// logRequests logs every request at debug level and reports it to the HTTP
// observability hooks under its route pattern.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, status, dur)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", dur,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// =============================================================================
// Health
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// Layout
// =============================================================================

// layoutResponse wraps a layout result with its cache status.
type layoutResponse struct {
	*pipeline.LayoutResult
	Cached bool `json:"cached"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req pipeline.LayoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.Op = chi.URLParam(r, "op")

	res, cached, err := s.runner.Layout(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, layoutResponse{LayoutResult: res, Cached: cached})
}

// =============================================================================
// Drag
// =============================================================================

// dragRequest is one pointer move. The client keeps the drag state between
// moves: Original is the layout at drag start (taken from Items when empty)
// and LastTargetID/LastPlacement come from the previous response.
type dragRequest struct {
	Viewport  grid.Viewport               `json:"viewport"`
	Items     []*grid.Item                `json:"items"`
	ID        string                      `json:"id"`
	ClientX   float64                     `json:"clientX"`
	ClientY   float64                     `json:"clientY"`
	DeltaX    float64                     `json:"deltaX"`
	DeltaY    float64                     `json:"deltaY"`
	Container drag.Container              `json:"container"`
	Original  map[string]drag.OriginalPos `json:"original,omitempty"`

	LastTargetID  string         `json:"lastTargetId,omitempty"`
	LastPlacement drag.Placement `json:"lastPlacement,omitempty"`
}

type dragResponse struct {
	Position      drag.Position               `json:"position"`
	Items         []*grid.Item                `json:"items"`
	Original      map[string]drag.OriginalPos `json:"original"`
	LastTargetID  string                      `json:"lastTargetId,omitempty"`
	LastPlacement drag.Placement              `json:"lastPlacement,omitempty"`
}

func (s *Server) handleDrag(w http.ResponseWriter, r *http.Request) {
	var req dragRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateItems(req.Items); err != nil {
		s.writeError(w, r, err)
		return
	}

	items := grid.CloneAll(req.Items)
	it := grid.Find(items, req.ID)
	if it == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeItemNotFound, "card %q not found", req.ID))
		return
	}

	st := drag.Begin(it, items, req.DeltaX, req.DeltaY)
	for id, p := range req.Original {
		st.Original[id] = p
	}
	st.LastTargetID, st.LastPlacement = req.LastTargetID, req.LastPlacement

	pos, ok := drag.GridPosition(req.ClientX, req.ClientY, req.Container, s.cfg.Metrics, st, items, req.Viewport)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "container has no usable width"))
		return
	}
	drag.Apply(items, st, pos, req.Viewport)

	writeJSON(w, http.StatusOK, dragResponse{
		Position:      pos,
		Items:         items,
		Original:      st.Original,
		LastTargetID:  st.LastTargetID,
		LastPlacement: st.LastPlacement,
	})
}

func validateItems(items []*grid.Item) error {
	seen := make(map[string]bool, len(items))
	for i, it := range items {
		if it == nil {
			return errors.New(errors.ErrCodeInvalidItem, "card %d is null", i)
		}
		if err := document.ValidateItem(it); err != nil {
			return err
		}
		if seen[it.ID] {
			return errors.New(errors.ErrCodeInvalidItem, "duplicate card id %q", it.ID)
		}
		seen[it.ID] = true
	}
	return nil
}

// =============================================================================
// Render
// =============================================================================

type renderRequest struct {
	Viewport  grid.Viewport  `json:"viewport"`
	Items     []*grid.Item   `json:"items"`
	Container drag.Container `json:"container"`
	Selected  string         `json:"selected,omitempty"`
}

func (s *Server) handleRenderSVG(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateItems(req.Items); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Container.Width <= 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "container width must be positive"))
		return
	}

	svg := render.SVG(req.Items, req.Viewport, req.Container, s.cfg.Metrics,
		render.WithRegistry(s.runner.Registry), render.WithSelected(req.Selected))
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

// =============================================================================
// Pages
// =============================================================================

func pageOptions(r *http.Request) pipeline.Options {
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	return pipeline.Options{
		Handle:  chi.URLParam(r, "handle"),
		Page:    chi.URLParam(r, "page"),
		Refresh: refresh,
	}
}

func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := s.runner.Pages(r.Context(), chi.URLParam(r, "handle"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if pages == nil {
		pages = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"pages": pages})
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	res, err := s.runner.Load(r.Context(), pageOptions(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if res.CacheHit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	writeJSON(w, http.StatusOK, res.Doc)
}

type saveResponse struct {
	Puts    int                `json:"puts"`
	Deletes int                `json:"deletes"`
	Skipped bool               `json:"skipped"`
	Doc     *document.Document `json:"document"`
}

func (s *Server) handlePutPage(w http.ResponseWriter, r *http.Request) {
	var doc document.Document
	if err := decodeJSON(w, r, &doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := pageOptions(r)
	if doc.Handle == "" {
		doc.Handle = opts.Handle
	}
	if doc.Page == "" {
		doc.Page = opts.Page
	}
	if doc.Handle != opts.Handle || doc.Page != opts.Page {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidDocument,
			"document is %s/%s but was sent to %s/%s", doc.Handle, doc.Page, opts.Handle, opts.Page))
		return
	}

	res, err := s.runner.Save(r.Context(), &doc, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saveResponse{Puts: res.Puts, Deletes: res.Deletes, Skipped: res.Skipped, Doc: &doc})
}

func (s *Server) handleDeletePage(w http.ResponseWriter, r *http.Request) {
	if err := s.runner.Delete(r.Context(), pageOptions(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
