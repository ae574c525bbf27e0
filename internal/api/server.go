// Package api exposes the three scheduling pathways over HTTP.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pinggolf/dockplanner/internal/audit"
	"github.com/pinggolf/dockplanner/internal/config"
	"github.com/pinggolf/dockplanner/internal/ledger"
	"github.com/pinggolf/dockplanner/internal/queue"
	"github.com/pinggolf/dockplanner/internal/solver"
	"github.com/pinggolf/dockplanner/internal/throttle"
	"github.com/rs/cors"
)

// Server wires the three ledger stores, the solver backend, the audit log
// and the NATS manager into an HTTP router.
type Server struct {
	config        *config.Config
	router        *mux.Router
	natsManager   *queue.Manager
	auditLog      *audit.Log
	backend       solver.Backend
	throttle      *throttle.Limiter
	externalStore *ledger.Store
	internalStore *ledger.Store
	dropPullStore *ledger.Store
}

// NewServer builds the server and registers its routes.
func NewServer(cfg *config.Config, natsManager *queue.Manager, auditLog *audit.Log, backend solver.Backend) *Server {
	s := &Server{
		config:        cfg,
		router:        mux.NewRouter(),
		natsManager:   natsManager,
		auditLog:      auditLog,
		backend:       backend,
		throttle:      throttle.New(cfg.ThrottleRequestsPerSecond, cfg.ThrottleBurst),
		externalStore: ledger.NewStore(cfg.LedgerExternalPath),
		internalStore: ledger.NewStore(cfg.LedgerInternalPath),
		dropPullStore: ledger.NewStore(cfg.LedgerDropPullPath),
	}

	s.setupRoutes()
	return s
}

// Router returns the CORS-wrapped HTTP handler.
func (s *Server) Router() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{s.config.CORSAllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: s.config.CORSAllowCredentials,
		MaxAge:           300,
	})
	return c.Handler(s.router)
}

func (s *Server) setupRoutes() {
	root := s.router.PathPrefix("/api").Subrouter()

	root.HandleFunc("/health", s.handleHealth).Methods("GET")

	schedule := root.PathPrefix("/schedule").Subrouter()
	schedule.HandleFunc("/external", s.handleExternal).Methods("POST")
	schedule.HandleFunc("/internal", s.handleInternal).Methods("POST")
	schedule.HandleFunc("/droppull", s.handleDropPull).Methods("POST")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{"status": "ok"}
	if s.natsManager != nil {
		data["recent_events"] = s.natsManager.Recent()
	}
	writeEnvelope(w, http.StatusOK, "ok", data)
}
