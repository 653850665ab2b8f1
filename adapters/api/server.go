// Package api exposes treatment design over HTTP. The core stays an
// in-process library; this surface is a thin adapter around it.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gotreat/adapters/tabfile"
	"gotreat/app"
	"gotreat/domain/core"
	"gotreat/domain/frame"
	"gotreat/domain/treatment"
	"gotreat/internal"
	apperrors "gotreat/internal/errors"
	"gotreat/internal/report"
	"gotreat/ports"
)

// Server wires the designer and a design repository behind a chi router
type Server struct {
	router   *chi.Mux
	designer *app.Designer
	repo     ports.DesignRepository
	logger   *internal.Logger
}

// NewServer creates the HTTP surface over a design repository
func NewServer(repo ports.DesignRepository) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		designer: app.NewDesigner(),
		repo:     repo,
		logger:   internal.DefaultLogger,
	}
	s.setupRoutes()
	return s
}

// Router returns the configured router for mounting or serving
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.router.Route("/api/designs", func(r chi.Router) {
		r.Post("/", s.handleCreateDesign)
		r.Get("/", s.handleListDesigns)
		r.Get("/{id}", s.handleGetDesign)
		r.Delete("/{id}", s.handleDeleteDesign)
		r.Get("/{id}/report", s.handleDesignReport)
		r.Post("/{id}/prepare", s.handlePrepare)
	})
}

// designResponse is the creation payload returned to the caller
type designResponse struct {
	ID     core.DesignID        `json:"id"`
	Scores treatment.ScoreFrame `json:"scores"`
}

// handleCreateDesign accepts a multipart CSV upload plus design parameters,
// runs the design and stores the fitted result
func (s *Server) handleCreateDesign(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeError(w, apperrors.InvalidInput("expected multipart form upload"))
		return
	}
	file, _, err := r.FormFile("data")
	if err != nil {
		writeError(w, apperrors.InvalidInput("missing \"data\" file field"))
		return
	}
	defer file.Close()

	headers, rows, err := tabfile.ReadCells(file)
	if err != nil {
		writeError(w, apperrors.Wrap(err, "parse uploaded CSV"))
		return
	}
	f, err := frame.FromCells(headers, rows)
	if err != nil {
		writeError(w, apperrors.Wrap(err, "build frame from upload"))
		return
	}

	outcome := r.FormValue("outcome")
	positive := r.FormValue("target")
	inputs := splitList(r.FormValue("inputs"))
	if len(inputs) == 0 {
		for _, name := range f.Names() {
			if name != outcome {
				inputs = append(inputs, name)
			}
		}
	}

	cfg := treatment.DefaultConfig()
	if v := r.FormValue("fold_count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, apperrors.InvalidInput("fold_count must be an integer"))
			return
		}
		cfg.FoldCount = n
	}
	if v := r.FormValue("min_fraction"); v != "" {
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, apperrors.InvalidInput("min_fraction must be a number"))
			return
		}
		cfg.MinFraction = x
	}
	if v := r.FormValue("seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, apperrors.InvalidInput("seed must be an integer"))
			return
		}
		cfg.Seed = n
	}

	result, err := s.designer.Design(r.Context(), f, outcome, positive, inputs, cfg)
	if err != nil {
		writeError(w, err)
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = "design-" + result.Design.ID.String()
	}
	if err := s.repo.Save(r.Context(), name, result.Design); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, designResponse{ID: result.Design.ID, Scores: result.Scores})
}

func (s *Server) handleListDesigns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		offset, _ = strconv.Atoi(v)
	}
	summaries, err := s.repo.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetDesign(w http.ResponseWriter, r *http.Request) {
	design, ok := s.loadDesign(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, design)
}

func (s *Server) handleDeleteDesign(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseDesignID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}
	if err := s.repo.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDesignReport(w http.ResponseWriter, r *http.Request) {
	design, ok := s.loadDesign(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(report.HTML("Treatment scores for outcome "+design.OutcomeColumn, design.Scores))
}

// handlePrepare applies a stored design to an uploaded CSV and streams the
// derived frame back as CSV. Warnings travel in a response header so the
// body stays plain data.
func (s *Server) handlePrepare(w http.ResponseWriter, r *http.Request) {
	design, ok := s.loadDesign(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeError(w, apperrors.InvalidInput("expected multipart form upload"))
		return
	}
	file, _, err := r.FormFile("data")
	if err != nil {
		writeError(w, apperrors.InvalidInput("missing \"data\" file field"))
		return
	}
	defer file.Close()

	headers, rows, err := tabfile.ReadCells(file)
	if err != nil {
		writeError(w, apperrors.Wrap(err, "parse uploaded CSV"))
		return
	}
	f, err := frame.FromCells(headers, rows)
	if err != nil {
		writeError(w, apperrors.Wrap(err, "build frame from upload"))
		return
	}

	opts := app.PrepareOptions{IncludeOutcome: r.FormValue("include_outcome") == "true"}
	result, err := app.Prepare(design, f, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	if len(result.Warnings) > 0 {
		payload, _ := json.Marshal(result.Warnings)
		w.Header().Set("X-Treatment-Warnings", string(payload))
	}
	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	if err := tabfile.WriteCSV(w, result.Frame); err != nil {
		s.logger.Error("stream prepared frame: %v", err)
	}
}

func (s *Server) loadDesign(w http.ResponseWriter, r *http.Request) (*app.TreatmentDesign, bool) {
	id, err := core.ParseDesignID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apperrors.InvalidInput(err.Error()))
		return nil, false
	}
	design, err := s.repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return design, true
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps error codes onto HTTP statuses
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperrors.GetCode(err) {
	case apperrors.CodeConfigInvalid, apperrors.CodeInvalidInput:
		status = http.StatusBadRequest
	case apperrors.CodeInsufficientData:
		status = http.StatusUnprocessableEntity
	case apperrors.CodeNotFound:
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  apperrors.GetCode(err),
	})
}
