package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fortuna/victoria/internal/service"
	"github.com/fortuna/victoria/internal/store"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server
func NewServer(port string, db *store.Database, league *service.LeagueService, season *service.SeasonService, nationCall *service.NationCallService) *Server {
	handler := NewHandler(db, league, season, nationCall)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// League lifecycle
	api.HandleFunc("/league/initialize", handler.InitializeLeague).Methods("POST")
	api.HandleFunc("/gameweeks/simulate", handler.SimulateGameweek).Methods("POST")
	api.HandleFunc("/standings", handler.GetStandings).Methods("GET")

	// Managers
	api.HandleFunc("/managers/{handle}", handler.GetManagerProfile).Methods("GET")
	api.HandleFunc("/managers/{handle}/matches", handler.GetManagerMatches).Methods("GET")
	api.HandleFunc("/managers/{handle}/matches/upcoming", handler.GetUpcomingMatches).Methods("GET")
	api.HandleFunc("/managers/{handle}/roster", handler.GetRoster).Methods("GET")
	api.HandleFunc("/managers/{handle}/season-status", handler.GetSeasonStatus).Methods("GET")
	api.HandleFunc("/managers/{handle}/nation-calls", handler.TriggerNationCall).Methods("POST")
	api.HandleFunc("/managers/{handle}/nation-calls", handler.GetNationCallHistory).Methods("GET")

	// Seasons
	api.HandleFunc("/seasons/transition", handler.TransitionSeason).Methods("POST")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
