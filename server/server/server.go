package server

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/derktes/ir-remote/emission"
	"github.com/derktes/ir-remote/ir"
	"github.com/derktes/ir-remote/store"
)

const shutdownTimeout = 5 * time.Second

// Server serves the configuration API, emission, capture decoding and the
// live event stream.
type Server struct {
	store       *store.Store
	coordinator *emission.Coordinator
	transmitter emission.Transmitter
	hub         *emission.Hub
	registry    *ir.Registry
	logger      *slog.Logger
	router      *mux.Router
	now         func() time.Time
}

// Deps are the collaborators a Server routes requests to.
type Deps struct {
	Store       *store.Store
	Coordinator *emission.Coordinator
	Transmitter emission.Transmitter
	Hub         *emission.Hub
	Registry    *ir.Registry
}

func New(deps Deps, logger *slog.Logger) *Server {
	s := &Server{
		store:       deps.Store,
		coordinator: deps.Coordinator,
		transmitter: deps.Transmitter,
		hub:         deps.Hub,
		registry:    deps.Registry,
		logger:      logger,
		now:         time.Now,
	}
	if s.registry == nil {
		s.registry = ir.DefaultRegistry()
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.Methods(http.MethodOptions).HandlerFunc(preflightHandler)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/configs", s.listConfigsHandler).Methods(http.MethodGet)
	api.HandleFunc("/configs", s.saveConfigHandler).Methods(http.MethodPost)
	api.HandleFunc("/configs/default", s.defaultConfigHandler).Methods(http.MethodGet)
	api.HandleFunc("/configs/{id}", s.getConfigHandler).Methods(http.MethodGet)
	api.HandleFunc("/configs/{id}", s.deleteConfigHandler).Methods(http.MethodDelete)
	api.HandleFunc("/configs/{id}/export", s.exportConfigHandler).Methods(http.MethodGet)
	api.HandleFunc("/emit", s.emitHandler).Methods(http.MethodPost)
	api.HandleFunc("/decode", s.decodeHandler).Methods(http.MethodPost)
	api.HandleFunc("/stream", s.eventStreamHandler).Methods(http.MethodGet)

	r.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	return r
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	srv.RegisterOnShutdown(func() {
		s.logger.Info("shutting down server")
	})

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server started", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

const corsAllowMethods = "GET,HEAD,PUT,PATCH,POST,DELETE"

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}

// preflightHandler answers CORS preflight requests for every path. Requested
// headers are reflected back.
func preflightHandler(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Methods", corsAllowMethods)
	if requested := r.Header.Get("Access-Control-Request-Headers"); requested != "" {
		h.Set("Access-Control-Allow-Headers", requested)
		h.Add("Vary", "Access-Control-Request-Headers")
	}
	w.WriteHeader(http.StatusNoContent)
}

func getSubscriberID(data string) string {
	h := sha1.Sum([]byte(data))
	return hex.EncodeToString(h[:])
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}
