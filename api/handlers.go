package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"swiss-pairing-server/matcherrors"
	"swiss-pairing-server/pairing"
	"swiss-pairing-server/tournament"
)

const maxBodyBytes = 1 << 16

// Authorizer checks that a request may modify the tournament and returns the caller's subject.
type Authorizer interface {
	Authorize(r *http.Request) (string, error)
}

// Handler holds dependencies for API handlers.
type Handler struct {
	Service *tournament.Service
	// Auth guards write endpoints. Nil leaves them open.
	Auth Authorizer
}

// NewHandler creates a new API handler with the given dependencies.
func NewHandler(svc *tournament.Service, authz Authorizer) *Handler {
	return &Handler{Service: svc, Auth: authz}
}

// Routes registers every endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/players", h.Players)
	mux.HandleFunc("/api/players/count", h.CountPlayers)
	mux.HandleFunc("/api/matches", h.Matches)
	mux.HandleFunc("/api/matches/check", h.CheckMatch)
	mux.HandleFunc("/api/standings", h.Standings)
	mux.HandleFunc("/api/pairings", h.Pairings)
	mux.HandleFunc("/api/rounds", h.Rounds)
}

// CORS sets CORS headers on the response. Call before writing body.
func CORS(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return true
	}
	return false
}

// RegisterPlayerRequest is the body of POST /api/players.
type RegisterPlayerRequest struct {
	Name string `json:"name"`
}

// ReportMatchRequest is the body of POST /api/matches.
type ReportMatchRequest struct {
	WinnerID pairing.PlayerID `json:"winner_id"`
	LoserID  pairing.PlayerID `json:"loser_id"`
}

// Players lists (GET), registers (POST) or deletes all (DELETE) players.
// Deleting players also deletes every match.
func (h *Handler) Players(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		players, err := h.Service.Players(r.Context())
		if err != nil {
			writeError(w, "Players", err)
			return
		}
		writeJSON(w, http.StatusOK, players)
	case http.MethodPost:
		if !h.requireAdmin(w, r) {
			return
		}
		var req RegisterPlayerRequest
		if !decodeBody(w, r, &req) {
			return
		}
		p, err := h.Service.RegisterPlayer(r.Context(), req.Name)
		if err != nil {
			writeError(w, "RegisterPlayer", err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	case http.MethodDelete:
		if !h.requireAdmin(w, r) {
			return
		}
		res, err := h.Service.Reset(r.Context(), true)
		if err != nil {
			writeError(w, "Reset", err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// CountPlayers returns {"count": n}.
func (h *Handler) CountPlayers(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	n, err := h.Service.CountPlayers(r.Context())
	if err != nil {
		writeError(w, "CountPlayers", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

// Matches lists (GET), reports (POST) or deletes all (DELETE) matches.
func (h *Handler) Matches(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		matches, err := h.Service.Matches(r.Context())
		if err != nil {
			writeError(w, "Matches", err)
			return
		}
		writeJSON(w, http.StatusOK, matches)
	case http.MethodPost:
		if !h.requireAdmin(w, r) {
			return
		}
		var req ReportMatchRequest
		if !decodeBody(w, r, &req) {
			return
		}
		m, err := h.Service.ReportMatch(r.Context(), req.WinnerID, req.LoserID)
		if err != nil {
			writeError(w, "ReportMatch", err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	case http.MethodDelete:
		if !h.requireAdmin(w, r) {
			return
		}
		res, err := h.Service.Reset(r.Context(), false)
		if err != nil {
			writeError(w, "Reset", err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// CheckMatch answers whether players a and b have met: GET /api/matches/check?a=1&b=2.
func (h *Handler) CheckMatch(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	a, errA := strconv.ParseInt(r.URL.Query().Get("a"), 10, 64)
	b, errB := strconv.ParseInt(r.URL.Query().Get("b"), 10, 64)
	if errA != nil || errB != nil {
		http.Error(w, "query parameters a and b must be player ids", http.StatusBadRequest)
		return
	}
	played, err := h.Service.HasPlayed(r.Context(), pairing.PlayerID(a), pairing.PlayerID(b))
	if err != nil {
		writeError(w, "HasPlayed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"played": played})
}

// Standings returns the ranked standings table.
func (h *Handler) Standings(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rows, err := h.Service.Standings(r.Context())
	if err != nil {
		writeError(w, "Standings", err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// Pairings previews next-round pairings without announcing them.
func (h *Handler) Pairings(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	plan, err := h.Service.Pairings(r.Context())
	if err != nil {
		writeError(w, "Pairings", err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// Rounds publishes next-round pairings to spectators (POST).
func (h *Handler) Rounds(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.requireAdmin(w, r) {
		return
	}
	plan, err := h.Service.PublishRound(r.Context())
	if err != nil {
		writeError(w, "PublishRound", err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if h.Auth == nil {
		return true
	}
	sub, err := h.Auth.Authorize(r)
	if err != nil {
		slog.Info("write rejected", "tag", "api", "path", r.URL.Path, "error", err)
		writeError(w, "Authorize", err)
		return false
	}
	slog.Debug("write authorized", "tag", "api", "path", r.URL.Path, "method", r.Method, "subject", sub)
	return true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "tag", "api", "error", err)
	}
}

// writeError maps sentinel errors to status codes; anything else is a 500 and is logged.
func writeError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, matcherrors.ErrInvalidName), errors.Is(err, matcherrors.ErrSelfMatch):
		status = http.StatusBadRequest
	case errors.Is(err, matcherrors.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, matcherrors.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, matcherrors.ErrPlayerNotFound):
		status = http.StatusNotFound
	case errors.Is(err, matcherrors.ErrOddPlayerCount):
		status = http.StatusConflict
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error(op+" failed", "tag", "api", "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
