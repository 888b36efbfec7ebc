package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"stockvoice/internal/domain"
)

const (
	msgNoAudio         = "No audio file provided"
	msgInvalidFileType = "Invalid file type. Please provide an audio file."
	msgNoQuery         = "No query provided"
	msgPipelineFailed  = "Error processing voice stock analysis"

	DefaultMaxUploadBytes = 50 << 20
	maxQueryBytes         = 4096
)

// Pipeline is the analysis workflow the server exposes.
type Pipeline interface {
	ProcessAudio(ctx context.Context, audio domain.Audio) (*domain.Result, error)
	ProcessText(ctx context.Context, text string) (*domain.Result, error)
}

type Options struct {
	Addr           string
	AuthToken      string
	MaxUploadBytes int64
	RateLimit      int
	RateWindow     time.Duration
	WriteTimeout   time.Duration
}

// Server is the HTTP front of the analyst.
type Server struct {
	addr           string
	pipeline       Pipeline
	logger         *slog.Logger
	mux            *http.ServeMux
	handler        http.Handler
	rateLimiter    *RateLimiter
	authToken      string
	maxUploadBytes int64
	writeTimeout   time.Duration

	mu         sync.Mutex
	server     *http.Server
	listenAddr string
	running    bool
}

func NewServer(pipeline Pipeline, opts Options, logger *slog.Logger) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.RateWindow <= 0 {
		opts.RateWindow = time.Minute
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Minute
	}

	s := &Server{
		addr:           opts.Addr,
		pipeline:       pipeline,
		logger:         logger,
		mux:            http.NewServeMux(),
		rateLimiter:    NewRateLimiter(opts.RateLimit, opts.RateWindow),
		authToken:      opts.AuthToken,
		maxUploadBytes: opts.MaxUploadBytes,
		writeTimeout:   opts.WriteTimeout,
	}

	s.mux.HandleFunc("POST /api/chat", s.rateLimiter.Middleware(s.requireToken(s.handleChat)))
	s.mux.HandleFunc("POST /api/text", s.rateLimiter.Middleware(s.requireToken(s.handleText)))
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.handler = s.withRequestLogging(s.mux)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr is the bound address once started, so ":0" resolves to the real port.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listenAddr != "" {
		return s.listenAddr
	}
	return s.addr
}

// Start binds the listen address and serves in the background. Bind errors
// are returned; later serve errors are logged.
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	s.listenAddr = ln.Addr().String()

	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      s.writeTimeout,
		IdleTimeout:       60 * time.Second,
	}

	server := s.server
	go func() {
		s.logger.Info("HTTP server starting", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	s.running = true
	return nil
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			s.logger.Warn("graceful shutdown failed, forcing close", "error", err)
			if err := s.server.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}
	}

	s.running = false
	return nil
}

type successResponse struct {
	Success       bool     `json:"success"`
	Transcription string   `json:"transcription"`
	Symbols       []string `json:"symbols"`
	Analysis      string   `json:"analysis"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type failureResponse struct {
	Success       bool    `json:"success"`
	Error         string  `json:"error"`
	Details       string  `json:"details"`
	Transcription *string `json:"transcription"`
}

type textRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgNoAudio})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !domain.IsAudioMIMEType(contentType) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidFileType})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgNoAudio})
		return
	}

	result, err := s.pipeline.ProcessAudio(r.Context(), domain.Audio{Data: data, MIMEType: contentType})
	s.respond(w, r, result, err)
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxQueryBytes)).Decode(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgNoQuery})
		return
	}

	result, err := s.pipeline.ProcessText(r.Context(), strings.TrimSpace(req.Query))
	s.respond(w, r, result, err)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, result *domain.Result, err error) {
	if err != nil {
		loggerFrom(r.Context(), s.logger).Error("processing voice stock analysis", "error", err)

		resp := failureResponse{Error: msgPipelineFailed, Details: err.Error()}
		if result != nil && result.Transcription != "" {
			resp.Transcription = &result.Transcription
		}
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}

	symbols := result.Symbols
	if symbols == nil {
		symbols = []string{}
	}
	writeJSON(w, http.StatusOK, successResponse{
		Success:       true,
		Transcription: result.Transcription,
		Symbols:       symbols,
		Analysis:      result.Analysis,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
