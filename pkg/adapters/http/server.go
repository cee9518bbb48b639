// Package http exposes the transcoder, the typesetter and the document store
// over a JSON HTTP API.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/mathspan/internal/logging"
	"github.com/aretw0/mathspan/pkg/adapters/markdown"
	"github.com/aretw0/mathspan/pkg/document"
	"github.com/aretw0/mathspan/pkg/domain"
	"github.com/aretw0/mathspan/pkg/pandoc"
	"github.com/aretw0/mathspan/pkg/ports"
	"github.com/aretw0/mathspan/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 8 << 20

// Engine is what the server needs from the editor.
type Engine interface {
	ports.Codec
	ports.Previewer
}

// Server serves the API.
type Server struct {
	Engine   Engine
	Sessions *session.Manager

	gatherer prometheus.Gatherer
	version  string
	logger   *slog.Logger
	importer *markdown.Importer
}

// Option configures the Server.
type Option func(*Server)

// WithSessions enables the /documents routes.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.Sessions = m
	}
}

// WithGatherer enables GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{
		Engine:   engine,
		version:  "dev",
		logger:   logging.NewNop(),
		importer: markdown.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Post("/read", s.Read)
	r.Post("/write", s.Write)
	r.Post("/import", s.Import)
	r.Post("/typeset", s.Typeset)

	if s.Sessions != nil {
		r.Route("/documents", func(r chi.Router) {
			r.Get("/", s.ListDocuments)
			r.Get("/{id}", s.GetDocument)
			r.Put("/{id}", s.PutDocument)
			r.Delete("/{id}", s.DeleteDocument)
			r.Get("/{id}/pandoc", s.GetDocumentPandoc)
		})
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "mathspan-http",
		"version": strings.TrimSpace(s.version),
	})
}

// Read handles POST /read: a Pandoc document in, the editor model out.
func (s *Server) Read(w http.ResponseWriter, r *http.Request) {
	doc, err := pandoc.Decode(body(w, r))
	if err != nil {
		s.fail(w, "Read", status(err), err)
		return
	}
	model, err := s.Engine.Load(doc)
	if err != nil {
		s.fail(w, "Read", status(err), err)
		return
	}
	s.writeModel(w, model)
}

// Write handles POST /write: the editor model in, a Pandoc document out.
func (s *Server) Write(w http.ResponseWriter, r *http.Request) {
	model, err := document.Decode(body(w, r))
	if err != nil {
		s.fail(w, "Write", status(err), err)
		return
	}
	s.writePandoc(w, model)
}

// Import handles POST /import: markdown in, the editor model out.
func (s *Server) Import(w http.ResponseWriter, r *http.Request) {
	doc, err := s.importer.ImportReader(body(w, r))
	if err != nil {
		s.fail(w, "Import", http.StatusBadRequest, err)
		return
	}
	model, err := s.Engine.Load(doc)
	if err != nil {
		s.fail(w, "Import", status(err), err)
		return
	}
	s.writeModel(w, model)
}

// TypesetRequest is the body of POST /typeset.
type TypesetRequest struct {
	Source string `json:"source"`
}

// TypesetResponse is the reply of POST /typeset.
type TypesetResponse struct {
	Output string `json:"output"`
}

// Typeset handles POST /typeset.
func (s *Server) Typeset(w http.ResponseWriter, r *http.Request) {
	var req TypesetRequest
	if err := json.NewDecoder(body(w, r)).Decode(&req); err != nil {
		s.fail(w, "Typeset", http.StatusBadRequest, err)
		return
	}
	out, err := s.Engine.Preview(r.Context(), req.Source)
	if err != nil {
		s.fail(w, "Typeset", status(err), err)
		return
	}
	writeJSON(w, http.StatusOK, TypesetResponse{Output: out})
}

// ListDocuments handles GET /documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, "ListDocuments", status(err), err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"documents": ids})
}

// GetDocument handles GET /documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.Sessions.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "GetDocument", status(err), err)
		return
	}
	s.writeModel(w, doc)
}

// GetDocumentPandoc handles GET /documents/{id}/pandoc.
func (s *Server) GetDocumentPandoc(w http.ResponseWriter, r *http.Request) {
	doc, err := s.Sessions.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "GetDocumentPandoc", status(err), err)
		return
	}
	s.writePandoc(w, doc)
}

// PutDocument handles PUT /documents/{id}. The body is a Pandoc document.
func (s *Server) PutDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := pandoc.Decode(body(w, r))
	if err != nil {
		s.fail(w, "PutDocument", status(err), err)
		return
	}
	model, err := s.Engine.Load(doc)
	if err != nil {
		s.fail(w, "PutDocument", status(err), err)
		return
	}
	if err := s.Sessions.Save(r.Context(), chi.URLParam(r, "id"), model); err != nil {
		s.fail(w, "PutDocument", status(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteDocument handles DELETE /documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, "DeleteDocument", status(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// -- Helpers --

func body(w http.ResponseWriter, r *http.Request) io.Reader {
	return http.MaxBytesReader(w, r.Body, MaxBodyBytes)
}

func (s *Server) writeModel(w http.ResponseWriter, doc *document.Document) {
	w.Header().Set("Content-Type", "application/json")
	if err := document.Encode(w, doc); err != nil {
		s.logger.Error("model encode failed", "err", err)
	}
}

func (s *Server) writePandoc(w http.ResponseWriter, doc *document.Document) {
	out, err := s.Engine.Save(doc)
	if err != nil {
		s.fail(w, "Save", status(err), err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := pandoc.Encode(w, out); err != nil {
		s.logger.Error("pandoc encode failed", "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, code int, err error) {
	if code >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Debug(op+" rejected", "err", err, "status", code)
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), code)
}

// status maps domain errors to HTTP status codes.
func status(err error) int {
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnrecognizedMathKind),
		errors.Is(err, domain.ErrMalformedToken),
		errors.Is(err, domain.ErrNoMath):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrQueueClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrTypesetTimeout):
		return http.StatusGatewayTimeout
	}

	var (
		maxErr    *http.MaxBytesError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return http.StatusBadRequest
	}
	// Anything else is a render failure reported by the typesetter.
	return http.StatusUnprocessableEntity
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
