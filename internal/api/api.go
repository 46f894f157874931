// Package api exposes notebook conversion over HTTP.
//
// The server wraps a pipeline.Runner: POST /convert accepts a raw
// notebook body and returns the rendered artifact for the requested
// format. Conversion failures map onto HTTP status codes through the
// error code taxonomy, so a truncated upload is a 400 while a schema
// version from the future is a 422.
package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/inkpath/inkpath/pkg/errors"
	"github.com/inkpath/inkpath/pkg/pipeline"
)

// MaxBodyBytes caps upload size. Real notebooks are a few megabytes;
// anything past this is rejected before parsing.
const MaxBodyBytes = 64 << 20

var contentTypes = map[string]string{
	pipeline.FormatSVG:      "image/svg+xml",
	pipeline.FormatText:     "text/plain; charset=utf-8",
	pipeline.FormatMarkdown: "text/markdown; charset=utf-8",
	pipeline.FormatJSON:     "application/json",
	pipeline.FormatBlocks:   "application/json",
	pipeline.FormatDOT:      "text/vnd.graphviz",
}

// Server handles conversion requests against a shared Runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// NewServer wires a Server around runner. A nil logger discards output.
func NewServer(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{runner: runner, logger: logger}
}

// Routes builds the HTTP routing table.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/convert", s.handleConvert)
	r.Get("/documents/{hash}", s.handleDocument)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleConvert renders the uploaded notebook. Query parameters:
//
//	to         target format (default svg)
//	text       "false" drops text from SVG output
//	fixed_page "true" forces the full page viewport
//	refresh    "true" bypasses cached artifacts
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodePayloadTooLarge, err, "request body"))
		return
	}

	format := r.URL.Query().Get("to")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, err)
		return
	}

	opts := pipeline.Options{
		Input:       body,
		Formats:     []string{format},
		ExcludeText: r.URL.Query().Get("text") == "false",
		FixedPage:   r.URL.Query().Get("fixed_page") == "true",
		Refresh:     r.URL.Query().Get("refresh") == "true",
		Logger:      s.logger,
	}
	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	artifact := result.Artifacts[format]
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact)))
	w.Header().Set("X-Content-Hash", result.ContentHash)
	if result.CacheInfo.AllHit {
		w.Header().Set("X-Cache", "hit")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(artifact)
}

// handleDocument returns the original notebook bytes previously
// submitted under the given content hash.
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")
	data, hit, err := s.runner.Lookup(r.Context(), hash)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !hit {
		s.writeError(w, errors.New(errors.ErrCodeFileNotFound, "no document with hash %s", hash))
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	if status >= 500 {
		s.logger.Error("request failed", "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"code":` + strconv.Quote(string(code)) + `,"error":` + strconv.Quote(errors.UserMessage(err)) + `}`))
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeBadMagic, errors.ErrCodeTruncated, errors.ErrCodeInvalidTree,
		errors.ErrCodeCorruptStroke, errors.ErrCodeCorruptBlock,
		errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeUnsupportedVersion, errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	case errors.ErrCodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
