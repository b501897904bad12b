package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fortuna/victoria/internal/service"
	"github.com/fortuna/victoria/internal/store"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	db                *store.Database
	leagueService     *service.LeagueService
	seasonService     *service.SeasonService
	nationCallService *service.NationCallService
}

// NewHandler creates a new handler
func NewHandler(db *store.Database, league *service.LeagueService, season *service.SeasonService, nationCall *service.NationCallService) *Handler {
	return &Handler{
		db:                db,
		leagueService:     league,
		seasonService:     season,
		nationCallService: nationCall,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if h.db != nil {
		if err := h.db.HealthCheck(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	respondJSON(w, code, map[string]string{
		"status":  status,
		"service": "victoria",
		"version": "1.0.0",
	})
}

// InitializeLeague seeds the divisions, rosters and schedule for a
// manager, or reports the existing season
func (h *Handler) InitializeLeague(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Handle string `json:"handle"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Handle == "" {
		respondError(w, http.StatusBadRequest, "Manager handle is required", nil)
		return
	}

	result, err := h.leagueService.InitializeLeague(r.Context(), req.Handle)
	if err != nil {
		respondServiceError(w, "Failed to initialize league", err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	respondJSON(w, status, result)
}

// SimulateGameweek resolves the gameweek containing a fixture
func (h *Handler) SimulateGameweek(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FixtureID string `json:"fixture_id"`
		Handle    string `json:"handle"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.FixtureID == "" || req.Handle == "" {
		respondError(w, http.StatusBadRequest, "fixture_id and handle are required", nil)
		return
	}

	result, err := h.leagueService.SimulateGameweek(r.Context(), req.FixtureID, req.Handle)
	if err != nil {
		respondServiceError(w, "Failed to simulate gameweek", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetStandings returns the ordered table for a season and division
func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	seasonCode := r.URL.Query().Get("season")
	if seasonCode == "" {
		respondError(w, http.StatusBadRequest, "season query parameter is required", nil)
		return
	}

	division := 1
	if divStr := r.URL.Query().Get("division"); divStr != "" {
		d, err := strconv.Atoi(divStr)
		if err != nil || (d != 1 && d != 2) {
			respondError(w, http.StatusBadRequest, "division must be 1 or 2", err)
			return
		}
		division = d
	}

	rows, err := h.leagueService.GetStandings(r.Context(), seasonCode, division)
	if err != nil {
		respondServiceError(w, "Failed to fetch standings", err)
		return
	}

	respondJSON(w, http.StatusOK, rows)
}

// GetManagerMatches returns a manager's completed matches
func (h *Handler) GetManagerMatches(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]
	seasonCode := r.URL.Query().Get("season")

	matches, err := h.leagueService.GetUserMatches(r.Context(), handle, seasonCode)
	if err != nil {
		respondServiceError(w, "Failed to fetch matches", err)
		return
	}

	respondJSON(w, http.StatusOK, matches)
}

// GetUpcomingMatches returns a manager's next scheduled matches
func (h *Handler) GetUpcomingMatches(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]
	seasonCode := r.URL.Query().Get("season")

	limit := 5
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 50 {
			limit = l
		}
	}

	matches, err := h.leagueService.GetUpcomingMatches(r.Context(), handle, seasonCode, limit)
	if err != nil {
		respondServiceError(w, "Failed to fetch upcoming matches", err)
		return
	}

	respondJSON(w, http.StatusOK, matches)
}

// GetManagerProfile returns a manager's account state
func (h *Handler) GetManagerProfile(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]

	profile, err := h.leagueService.GetManagerProfile(r.Context(), handle)
	if err != nil {
		respondServiceError(w, "Failed to fetch manager profile", err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// GetRoster returns a manager's current squad
func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]

	roster, err := h.leagueService.GetRoster(r.Context(), handle)
	if err != nil {
		respondServiceError(w, "Failed to fetch roster", err)
		return
	}

	respondJSON(w, http.StatusOK, roster)
}

// GetSeasonStatus reports season completion and pending transition
func (h *Handler) GetSeasonStatus(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]

	status, err := h.seasonService.CheckSeasonEnd(r.Context(), handle)
	if err != nil {
		respondServiceError(w, "Failed to check season status", err)
		return
	}

	respondJSON(w, http.StatusOK, status)
}

// TransitionSeason processes promotion, relegation and payouts, then
// opens the next season
func (h *Handler) TransitionSeason(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SeasonCode string `json:"season_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.SeasonCode == "" {
		respondError(w, http.StatusBadRequest, "season_code is required", nil)
		return
	}

	result, err := h.seasonService.ProcessTransition(r.Context(), req.SeasonCode)
	if err != nil {
		respondServiceError(w, "Failed to transition season", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// TriggerNationCall runs an out-of-band call-up for a manager
func (h *Handler) TriggerNationCall(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]

	result, err := h.nationCallService.TriggerManually(r.Context(), handle)
	if err != nil {
		respondServiceError(w, "Failed to trigger nation call", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetNationCallHistory returns a manager's recent call-ups
func (h *Handler) GetNationCallHistory(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	records, err := h.nationCallService.History(r.Context(), handle, limit)
	if err != nil {
		respondServiceError(w, "Failed to fetch nation call history", err)
		return
	}

	respondJSON(w, http.StatusOK, records)
}

// respondServiceError maps store sentinels to HTTP status codes
func respondServiceError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, message, err)
	case errors.Is(err, store.ErrInvalidState):
		respondError(w, http.StatusConflict, message, err)
	case errors.Is(err, store.ErrContention):
		respondError(w, http.StatusServiceUnavailable, message, err)
	default:
		respondError(w, http.StatusInternalServerError, message, err)
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
