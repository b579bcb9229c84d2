package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/voyagen/channelvault/internal/config"
	"github.com/voyagen/channelvault/internal/models"
	"github.com/voyagen/channelvault/internal/service"
	"github.com/voyagen/channelvault/internal/store"
)

// Server holds dependencies for the HTTP API.
type Server struct {
	svc     *service.Service
	cfg     *config.Config
	mux     *http.ServeMux
	handler http.Handler
}

// New creates a Server and registers routes.
func New(svc *service.Service, cfg *config.Config) *Server {
	srv := &Server{svc: svc, cfg: cfg, mux: http.NewServeMux()}
	srv.routes()
	srv.handler = withCORS(withLogging(srv.mux))
	return srv
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	// Countries and their channels
	s.mux.HandleFunc("GET /api/countries", s.handleListCountries)
	s.mux.HandleFunc("GET /api/countries/{code}/channels", s.handleChannelsByCountry)
	s.mux.HandleFunc("GET /api/countries/{code}/categories", s.handleCategoriesByCountry)
	s.mux.HandleFunc("GET /api/countries/{code}/categories/{category}/channels", s.handleChannelsByCategory)
	s.mux.HandleFunc("POST /api/countries/{code}/playlist", s.handleIngestPlaylist)

	// Channels
	s.mux.HandleFunc("GET /api/search", s.handleSearch)
	s.mux.HandleFunc("GET /api/channels/{id}", s.handleGetChannel)
	s.mux.HandleFunc("GET /api/channels/{id}/stream", s.handleGetStream)
	s.mux.HandleFunc("GET /api/channels/{id}/health", s.handleChannelHealth)

	// Catalog maintenance
	s.mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	s.mux.HandleFunc("POST /api/validate-hls", s.handleValidateHLS)

	// Docs
	s.mux.HandleFunc("GET /api/docs", handleSwaggerUI)
	s.mux.HandleFunc("GET /api/docs/openapi.yaml", handleOpenAPISpec)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server on the configured port.
// It blocks until the server is shut down or ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := ":" + s.cfg.ServerPort
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}()

	log.Printf("listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("ListenAndServe: %w", err)
	}
	return nil
}

// --- handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := s.svc.CountriesActive(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if countries == nil {
		countries = []models.Country{}
	}
	writeJSON(w, http.StatusOK, countries)
}

func (s *Server) handleChannelsByCountry(w http.ResponseWriter, r *http.Request) {
	code := countryCode(r)
	channels, err := s.svc.ChannelsByCountry(r.Context(), code)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if channels == nil {
		channels = []models.Channel{}
	}
	writeJSON(w, http.StatusOK, channels)
}

func (s *Server) handleCategoriesByCountry(w http.ResponseWriter, r *http.Request) {
	categories, err := s.svc.CategoriesByCountry(r.Context(), countryCode(r))
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleChannelsByCategory(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	channels, err := s.svc.ChannelsByCategory(r.Context(), countryCode(r), category)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if channels == nil {
		channels = []models.Channel{}
	}
	writeJSON(w, http.StatusOK, channels)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("query")
	if query == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("query parameter is required"))
		return
	}
	code := strings.ToUpper(q.Get("countryCode"))

	channels, err := s.svc.Search(r.Context(), query, code)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if channels == nil {
		channels = []models.Channel{}
	}
	writeJSON(w, http.StatusOK, channels)
}

func (s *Server) handleGetChannel(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}

	ch, err := s.svc.ChannelByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeErr(w, http.StatusNotFound, fmt.Errorf("channel %d not found", id))
			return
		}
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

func (s *Server) handleGetStream(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}

	streamURL, err := s.svc.StreamURLByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeErr(w, http.StatusNotFound, fmt.Errorf("channel %d not found", id))
			return
		}
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"stream_url": streamURL})
}

func (s *Server) handleChannelHealth(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}

	rep, err := s.svc.ChannelHealth(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeErr(w, http.StatusNotFound, fmt.Errorf("channel %d not found", id))
			return
		}
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Refresh(r.Context()); err != nil {
		writeErr(w, http.StatusInternalServerError, fmt.Errorf("refresh: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "channels refreshed successfully"})
}

func (s *Server) handleIngestPlaylist(w http.ResponseWriter, r *http.Request) {
	code := countryCode(r)
	count, err := s.svc.IngestPlaylist(r.Context(), code)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, fmt.Errorf("playlist ingest: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"country_code":  code,
		"channel_count": count,
	})
}

// hlsValidationResult mirrors the shape clients expect from POST /api/validate-hls.
type hlsValidationResult struct {
	StreamURL      string `json:"stream_url"`
	Valid          bool   `json:"valid"`
	Format         string `json:"format"`
	Message        string `json:"message"`
	ContentPreview string `json:"content_preview,omitempty"`
	Timestamp      int64  `json:"timestamp"`
}

func (s *Server) handleValidateHLS(w http.ResponseWriter, r *http.Request) {
	streamURL := r.URL.Query().Get("streamUrl")
	if streamURL == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("streamUrl parameter is required"))
		return
	}

	res := hlsValidationResult{
		StreamURL: streamURL,
		Timestamp: time.Now().UnixMilli(),
	}

	content, err := s.svc.ValidateHLS(r.Context(), streamURL)
	switch {
	case errors.Is(err, service.ErrUnsupportedFormat):
		res.Format = "Not HLS"
		res.Message = err.Error()
	case err != nil:
		res.Format = "HLS (.m3u8) - invalid"
		res.Message = fmt.Sprintf("HLS stream validation failed: %v", err)
	default:
		res.Valid = true
		res.Format = "HLS (.m3u8)"
		res.Message = "HLS stream is valid and accessible"
		res.ContentPreview = preview(content, 200)
	}
	writeJSON(w, http.StatusOK, res)
}

// countryCode reads the {code} path parameter, upper-cased; country codes are
// stored upper-case throughout the catalog.
func countryCode(r *http.Request) string {
	return strings.ToUpper(r.PathValue("code"))
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
