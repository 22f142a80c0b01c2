package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/roshimastsensei/log-momentum/internal/models"
	"github.com/roshimastsensei/log-momentum/internal/momentum"
)

const maxQueryLimit = 1000

type MomentumComputer interface {
	Compute(ctx context.Context, id string) momentum.Outcome
}

type HistoryStore interface {
	GetHistory(ctx context.Context, tokenID string, limit int) ([]models.MomentumRecord, error)
	Ping(ctx context.Context) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Port         int
	APIKey       string
	CORSOrigin   string
	Diagnostics  bool
	Pacing       string
	WriteTimeout time.Duration
	History      HistoryStore // nil disables the history route
	Cache        Pinger       // nil reports the cache as disabled
	Logger       logrus.FieldLogger
}

type Server struct {
	momentum    MomentumComputer
	history     HistoryStore
	cache       Pinger
	diagnostics bool
	pacing      string
	apiKey      string
	log         logrus.FieldLogger
	handler     http.Handler
	httpServer  *http.Server
}

func NewServer(svc MomentumComputer, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}

	s := &Server{
		momentum:    svc,
		history:     opts.History,
		cache:       opts.Cache,
		diagnostics: opts.Diagnostics,
		pacing:      opts.Pacing,
		apiKey:      opts.APIKey,
		log:         opts.Logger.WithField("component", "api"),
	}

	mux := http.NewServeMux()

	// Momentum routes. Method checks happen in the handler so that wrong
	// methods get a JSON 405.
	mux.HandleFunc("/api/log_momentum", s.handleLogMomentum)
	mux.HandleFunc("/v1/momentum", s.handleLogMomentum)
	mux.HandleFunc("GET /v1/momentum/{id}/history", s.handleMomentumHistory)

	// Health check (no auth required)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.handler = s.requestLogger(recoverMiddleware(s.authMiddleware(corsMiddleware(mux, opts.CORSOrigin)), s.log))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: opts.WriteTimeout,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) Start() error {
	s.log.WithFields(logrus.Fields{
		"addr": s.httpServer.Addr,
		"auth": s.apiKey != "",
	}).Infof("REST API server started on http://localhost%s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- validation helpers ---

func parseLimit(r *http.Request, defaultLimit int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return defaultLimit
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultLimit
	}
	if n > maxQueryLimit {
		return maxQueryLimit
	}
	return n
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
