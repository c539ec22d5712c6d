// Package server is a small callback server that signs users in through the
// configured providers and prints the normalized user as JSON. It owns the
// custody of CSRF state tokens: each one is random, expires, and is accepted
// once.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jeremyhahn/go-social/internal/metrics"
	"github.com/jeremyhahn/go-social/internal/statestore"
	"github.com/jeremyhahn/go-social/pkg/query"
	"github.com/jeremyhahn/go-social/pkg/social"
)

// Config wires the server's dependencies. Manager and Store are required.
type Config struct {
	Manager *social.Manager
	Store   statestore.Store
	Metrics *metrics.Metrics

	// Gatherer serves /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	Logger *zap.Logger

	// StateTTL defaults to statestore.DefaultTTL.
	StateTTL time.Duration
}

// Server handles the redirect and callback routes.
type Server struct {
	manager  *social.Manager
	store    statestore.Store
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	logger   *zap.Logger
	ttl      time.Duration
}

// New validates cfg and returns a Server.
func New(cfg Config) (*Server, error) {
	if cfg.Manager == nil {
		return nil, errors.New("server: manager is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("server: state store is required")
	}
	s := &Server{
		manager:  cfg.Manager,
		store:    cfg.Store,
		metrics:  cfg.Metrics,
		gatherer: cfg.Gatherer,
		logger:   cfg.Logger,
		ttl:      cfg.StateTTL,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.ttl <= 0 {
		s.ttl = statestore.DefaultTTL
	}
	return s, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	s.Register(r)
	return r
}

// Register mounts the server's routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/providers", s.providers)
	r.Get("/auth/{provider}", s.redirect)
	r.Get("/auth/{provider}/callback", s.callback)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
}

func (s *Server) providers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"providers": s.manager.Names()})
}

func (s *Server) redirect(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")
	p, err := s.manager.Provider(name)
	if err != nil {
		writeErr(w, "unknown_provider", err.Error(), http.StatusNotFound)
		return
	}

	state := uuid.NewString()
	if err := s.store.Put(r.Context(), state, name, s.ttl); err != nil {
		s.logger.Error("state store put failed", zap.String("provider", name), zap.Error(err))
		writeErr(w, "server_error", "could not store state", http.StatusInternalServerError)
		return
	}
	if s.metrics != nil {
		s.metrics.AuthRedirects.WithLabelValues(name).Inc()
	}

	s.logger.Debug("redirecting to provider", zap.String("provider", name))
	http.Redirect(w, r, p.AuthURL(state), http.StatusFound)
}

func (s *Server) callback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "provider")
	log := s.logger.With(zap.String("provider", name), zap.String("request_id", middleware.GetReqID(r.Context())))

	p, err := s.manager.Provider(name)
	if err != nil {
		writeErr(w, "unknown_provider", err.Error(), http.StatusNotFound)
		return
	}

	// The state must have been issued by this server, for this provider.
	state, _ := query.Decode(r.URL.RequestURI()).Get("state")
	issuedFor, err := s.store.Consume(r.Context(), state)
	if err != nil || issuedFor != name {
		if err != nil && !errors.Is(err, statestore.ErrNotFound) {
			log.Error("state store consume failed", zap.Error(err))
		}
		s.observe(name, metrics.ResultInvalidState, start)
		writeErr(w, "invalid_state", social.ErrInvalidState.Error(), http.StatusBadRequest)
		return
	}

	user, err := p.GetUser(r.Context(), r.URL.RequestURI(), state)
	switch {
	case err == nil:
		s.observe(name, metrics.ResultOK, start)
		log.Info("user signed in", zap.Stringp("id", user.ID))
		writeJSON(w, http.StatusOK, user)
	case errors.Is(err, social.ErrInvalidState):
		s.observe(name, metrics.ResultInvalidState, start)
		writeErr(w, "invalid_state", err.Error(), http.StatusBadRequest)
	case errors.Is(err, social.ErrSocial):
		s.observe(name, metrics.ResultContractError, start)
		writeErr(w, "invalid_request", err.Error(), http.StatusBadRequest)
	case errors.Is(err, social.ErrProviderFailure):
		s.observe(name, metrics.ResultVendorError, start)
		log.Warn("provider rejected callback", zap.Error(err))
		writeErr(w, "provider_error", err.Error(), http.StatusBadGateway)
	default:
		s.observe(name, metrics.ResultTransport, start)
		log.Error("provider unreachable", zap.Error(err))
		writeErr(w, "provider_unreachable", "the provider could not be reached", http.StatusBadGateway)
	}
}

func (s *Server) observe(provider, result string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveCallback(provider, result, time.Since(start))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code, desc string, status int) {
	writeJSON(w, status, map[string]string{
		"error":             code,
		"error_description": desc,
	})
}
