package transport

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jaminalder/gamehub/internal/hub"
)

type handlers struct {
	hub *hub.Hub
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeJSONBody decodes r.Body into dst, translating the common failure
// modes (oversized body, malformed JSON) into the external error taxonomy.
func decodeJSONBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if strings.Contains(err.Error(), "http: request body too large") {
			return errPayloadTooLarge
		}
		return newJSONError(err.Error())
	}
	return nil
}

type createGameRequest struct {
	GameType hub.GameType `json:"game_type"`
}

type createGameResponse struct {
	GameID string `json:"game_id"`
}

func (h *handlers) createGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.GameType != hub.GameTypeConnect4 && req.GameType != hub.GameTypeSnake {
		writeError(w, newJSONError("unrecognised game_type \""+string(req.GameType)+"\""))
		return
	}
	gameID, err := h.hub.Create(req.GameType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, createGameResponse{GameID: gameID})
}

type gameSummaryResponse struct {
	GameID      string       `json:"game_id"`
	GameType    hub.GameType `json:"game_type"`
	Players     int          `json:"players"`
	Stage       hub.Stage    `json:"stage"`
	LastUpdated string       `json:"last_updated"`
}

type listGamesResponse struct {
	GameSummaries []gameSummaryResponse `json:"game_summaries"`
	NumberOfGames int                   `json:"number_of_games"`
}

func (h *handlers) listGames(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := 1
	if v := q.Get("page"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeError(w, newQueryError("page must be an integer >= 1"))
			return
		}
		page = parsed
	}

	sortOrder := hub.SortDesc
	if v := q.Get("sort_order"); v != "" {
		switch hub.SortOrder(v) {
		case hub.SortAsc, hub.SortDesc:
			sortOrder = hub.SortOrder(v)
		default:
			writeError(w, newQueryError("sort_order must be \"asc\" or \"desc\""))
			return
		}
	}

	sortKey := hub.SortByLastUpdated
	if v := q.Get("sort_key"); v != "" {
		switch hub.SortKey(v) {
		case hub.SortByGameType, hub.SortByPlayers, hub.SortByStage, hub.SortByLastUpdated:
			sortKey = hub.SortKey(v)
		default:
			writeError(w, newQueryError("unrecognised sort_key \""+v+"\""))
			return
		}
	}

	var filter hub.ListFilter
	if v := q.Get("game_type"); v != "" {
		gt := hub.GameType(v)
		if gt != hub.GameTypeConnect4 && gt != hub.GameTypeSnake {
			writeError(w, newQueryError("unrecognised game_type \""+v+"\""))
			return
		}
		filter.GameType = &gt
	}
	if v := q.Get("players"); v != "" {
		players, err := strconv.Atoi(v)
		if err != nil || players < 0 {
			writeError(w, newQueryError("players must be an integer >= 0"))
			return
		}
		filter.Players = &players
	}
	if v := q.Get("stage"); v != "" {
		stage := hub.Stage(v)
		switch stage {
		case hub.StageWaiting, hub.StageInProgress, hub.StageEnded:
			filter.Stage = &stage
		default:
			writeError(w, newQueryError("unrecognised stage \""+v+"\""))
			return
		}
	}

	summaries, total := h.hub.List(filter, sortKey, sortOrder, page)
	out := make([]gameSummaryResponse, len(summaries))
	for i, s := range summaries {
		out[i] = gameSummaryResponse{
			GameID:      s.GameID,
			GameType:    s.GameType,
			Players:     s.Players,
			Stage:       s.Stage,
			LastUpdated: s.LastUpdated.UTC().Format(rfc3339Milli),
		}
	}
	writeJSON(w, http.StatusOK, listGamesResponse{GameSummaries: out, NumberOfGames: total})
}

const rfc3339Milli = "2006-01-02T15:04:05.000Z"

type joinGameRequest struct {
	Username string `json:"username"`
}

type joinGameResponse struct {
	SessionID string `json:"session_id"`
}

func (h *handlers) joinGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game_id")
	var req joinGameRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sessionID, err := h.hub.Join(gameID, req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, joinGameResponse{SessionID: sessionID})
}

type getStateResponse struct {
	Players     []string        `json:"players"`
	Stage       hub.Stage       `json:"stage"`
	CanMove     []string        `json:"can_move"`
	Winners     []string        `json:"winners"`
	GameName    hub.GameType    `json:"game_name"`
	LastUpdated string          `json:"last_updated"`
	Payload     json.RawMessage `json:"payload"`
}

func (h *handlers) getState(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game_id")
	view, err := h.hub.StateView(gameID)
	if err != nil {
		writeError(w, err)
		return
	}
	payload, err := stateJSON(view.GameName, view.Payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, getStateResponse{
		Players:     emptyIfNil(view.Players),
		Stage:       view.Stage,
		CanMove:     emptyIfNil(view.CanMove),
		Winners:     emptyIfNil(view.Winners),
		GameName:    view.GameName,
		LastUpdated: view.LastUpdated.UTC().Format(rfc3339Milli),
		Payload:     payload,
	})
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type submitMoveRequest struct {
	SessionID string          `json:"session_id"`
	Payload   json.RawMessage `json:"payload"`
}

type submitMoveResponse struct {
	Clock hub.Clock `json:"clock"`
}

func (h *handlers) submitMove(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game_id")
	var req submitMoveRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	move, err := decodeMove(req.Payload)
	if err != nil {
		writeError(w, newJSONError(err.Error()))
		return
	}
	clock, err := h.hub.SubmitMove(gameID, req.SessionID, move)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submitMoveResponse{Clock: clock})
}

type waitForUpdateResponse struct {
	Clock hub.Clock `json:"clock"`
}

func (h *handlers) waitForUpdate(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game_id")

	var since *hub.Clock
	if v := r.URL.Query().Get("since"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeError(w, newQueryError("since must be a non-negative integer"))
			return
		}
		c := hub.Clock(parsed)
		since = &c
	}

	clock, err := h.hub.WaitForUpdate(r.Context(), gameID, since)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, waitForUpdateResponse{Clock: clock})
}
