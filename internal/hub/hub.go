package hub

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jaminalder/gamehub/internal/id"
)

// Factory builds a fresh Game implementation for the given GameType. The
// hub is agnostic to which concrete games exist; callers wire the closed
// set (Connect 4, Snake) in at construction time.
type Factory func(gameType GameType) (Game, error)

type sessionRef struct {
	GameID   string
	Username string
}

// Hub is the process-wide registry of live game instances: a map from
// GameId to instance, a reverse index from SessionId to (GameId,
// Username), and an insertion-ordered key list for stable listing
// tie-breaks. The hub's own lock is held only long enough to look up or
// insert a handle; all per-game work happens under the instance's own
// lock (spec §5).
type Hub struct {
	mu       sync.RWMutex
	games    map[string]*Instance
	order    []string
	sessions map[string]sessionRef

	newGame        Factory
	longPollWindow time.Duration
}

// New constructs an empty hub. factory is invoked under no lock whenever a
// new instance is created. longPollWindow bounds WaitForUpdate.
func New(factory Factory, longPollWindow time.Duration) *Hub {
	return &Hub{
		games:          make(map[string]*Instance),
		sessions:       make(map[string]sessionRef),
		newGame:        factory,
		longPollWindow: longPollWindow,
	}
}

// Create constructs a fresh instance of gameType, assigns it a unique
// GameId, and inserts it into the registry.
func (h *Hub) Create(gameType GameType) (string, error) {
	game, err := h.newGame(gameType)
	if err != nil {
		return "", err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	gameID := id.NewGameID()
	for {
		if _, exists := h.games[gameID]; !exists {
			break
		}
		gameID = id.NewGameID()
	}
	h.games[gameID] = newInstance(gameID, gameType, game)
	h.order = append(h.order, gameID)
	return gameID, nil
}

func (h *Hub) lookup(gameID string) (*Instance, error) {
	h.mu.RLock()
	inst, ok := h.games[gameID]
	h.mu.RUnlock()
	if !ok {
		return nil, &GameNotFoundError{GameID: gameID}
	}
	return inst, nil
}

// Get returns the instance handle for gameID, or a GameNotFoundError.
func (h *Hub) Get(gameID string) (*Instance, error) {
	return h.lookup(gameID)
}

// SessionLookup resolves a SessionId to its owning (GameId, Username).
func (h *Hub) SessionLookup(sessionID string) (gameID, username string, err error) {
	h.mu.RLock()
	ref, ok := h.sessions[sessionID]
	h.mu.RUnlock()
	if !ok {
		return "", "", &SessionNotFoundError{SessionID: sessionID}
	}
	return ref.GameID, ref.Username, nil
}

// Join adds username to the game identified by gameID, minting and
// registering a session on success.
func (h *Hub) Join(gameID, username string) (string, error) {
	inst, err := h.lookup(gameID)
	if err != nil {
		return "", err
	}
	if err := inst.join(username); err != nil {
		return "", err
	}

	sessionID := h.registerSession(gameID, username)
	inst.registerSession(username, sessionID)
	return sessionID, nil
}

// registerSession mints a session ID and reserves it hub-wide, retrying on
// the astronomically unlikely collision. Only the hub lock guards the
// reverse index; this never takes an instance lock.
func (h *Hub) registerSession(gameID, username string) string {
	for {
		sessionID := id.NewSessionID()
		h.mu.Lock()
		if _, exists := h.sessions[sessionID]; exists {
			h.mu.Unlock()
			continue
		}
		h.sessions[sessionID] = sessionRef{GameID: gameID, Username: username}
		h.mu.Unlock()
		return sessionID
	}
}

// SubmitMove resolves sessionID against gameID's own instance, verifying it
// belongs there (spec §4.D), and applies move.
func (h *Hub) SubmitMove(gameID, sessionID string, move Move) (Clock, error) {
	inst, err := h.lookup(gameID)
	if err != nil {
		return 0, err
	}

	username, ok := inst.sessionUsername(sessionID)
	if !ok {
		return 0, &SessionNotFoundError{SessionID: sessionID}
	}

	return inst.submit(username, move)
}

// WaitForUpdate resolves gameID and suspends the calling goroutine per
// Instance.waitForUpdate. since is nil when the client omitted the query
// parameter, in which case it defaults to the instance's current clock
// (spec §4.F: "since defaults to the instance's current clock at entry").
func (h *Hub) WaitForUpdate(ctx context.Context, gameID string, since *Clock) (Clock, error) {
	inst, err := h.lookup(gameID)
	if err != nil {
		return 0, err
	}
	baseline := inst.currentClock()
	if since != nil {
		baseline = *since
	}
	return inst.waitForUpdate(ctx, baseline, h.longPollWindow), nil
}

// StateView resolves gameID and returns its current read-only snapshot.
func (h *Hub) StateView(gameID string) (StateView, error) {
	inst, err := h.lookup(gameID)
	if err != nil {
		return StateView{}, err
	}
	return inst.stateView(), nil
}

// ListFilter narrows List's results; a nil field means "no filter on this
// dimension".
type ListFilter struct {
	GameType *GameType
	Players  *int
	Stage    *Stage
}

// SortKey is the closed set of fields List can sort by.
type SortKey string

const (
	SortByGameType    SortKey = "game_type"
	SortByPlayers     SortKey = "players"
	SortByStage       SortKey = "stage"
	SortByLastUpdated SortKey = "last_updated"
)

// SortOrder controls the direction applied to the primary sort key.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

var secondaryChain = []SortKey{SortByGameType, SortByPlayers, SortByStage, SortByLastUpdated}

// List returns the filtered, sorted, paginated set of game summaries, plus
// the total count after filtering but before pagination.
func (h *Hub) List(filter ListFilter, sortKey SortKey, sortOrder SortOrder, page int) ([]Summary, int) {
	h.mu.RLock()
	ids := make([]string, len(h.order))
	copy(ids, h.order)
	instances := make([]*Instance, 0, len(ids))
	for _, gid := range ids {
		if inst, ok := h.games[gid]; ok {
			instances = append(instances, inst)
		}
	}
	h.mu.RUnlock()

	summaries := make([]Summary, 0, len(instances))
	for _, inst := range instances {
		s := inst.summary()
		if filter.GameType != nil && s.GameType != *filter.GameType {
			continue
		}
		if filter.Players != nil && s.Players != *filter.Players {
			continue
		}
		if filter.Stage != nil && s.Stage != *filter.Stage {
			continue
		}
		summaries = append(summaries, s)
	}

	keys := buildSortChain(sortKey)
	sort.SliceStable(summaries, func(i, j int) bool {
		return lessByChain(summaries[i], summaries[j], keys, sortOrder)
	})

	total := len(summaries)
	start := (page - 1) * PageSize
	if start < 0 || start >= total {
		return []Summary{}, total
	}
	end := start + PageSize
	if end > total {
		end = total
	}
	return summaries[start:end], total
}

// buildSortChain returns [primary, secondary-keys-minus-primary...] as the
// ordered comparator chain (spec §4.E); the final GameId tiebreak is not in
// the returned slice but is applied by lessByChain.
func buildSortChain(primary SortKey) []SortKey {
	chain := []SortKey{primary}
	for _, k := range secondaryChain {
		if k != primary {
			chain = append(chain, k)
		}
	}
	return chain
}

// lessByChain applies order only to the first (primary) key; every
// subsequent key, including the implicit GameId tiebreak, always sorts
// ascending for determinism.
func lessByChain(a, b Summary, chain []SortKey, order SortOrder) bool {
	for i, key := range chain {
		cmp := compareKey(a, b, key)
		if cmp == 0 {
			continue
		}
		if i == 0 && order == SortDesc {
			return cmp > 0
		}
		return cmp < 0
	}
	return a.GameID < b.GameID
}

func compareKey(a, b Summary, key SortKey) int {
	switch key {
	case SortByGameType:
		return stringCompare(string(a.GameType), string(b.GameType))
	case SortByPlayers:
		return intCompare(a.Players, b.Players)
	case SortByStage:
		return stringCompare(string(a.Stage), string(b.Stage))
	case SortByLastUpdated:
		switch {
		case a.LastUpdated.Before(b.LastUpdated):
			return -1
		case a.LastUpdated.After(b.LastUpdated):
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}

func stringCompare(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func intCompare(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
