package hub

import (
	"context"
	"sync"
	"time"
)

// StateView is the read-only snapshot returned by Instance.stateView,
// matching the get-state response shape of §6.
type StateView struct {
	GameID      string
	Players     []string
	Stage       Stage
	CanMove     []string
	Winners     []string
	GameName    GameType
	LastUpdated time.Time
	Payload     State
}

// Summary is the read-only snapshot returned by Instance.summary, used by
// the hub's listing operation.
type Summary struct {
	GameID      string
	GameType    GameType
	Players     int
	Stage       Stage
	LastUpdated time.Time
}

// Instance wraps one game implementation with the metadata aggregate
// described in spec §3: players, sessions, stage, clock, last-updated
// timestamp, a per-instance lock, and a waiter notifier. All mutations are
// serialized under mu; reads take the same lock but never block
// indefinitely on anything but that lock.
type Instance struct {
	id       string
	gameType GameType

	mu          sync.Mutex
	game        Game
	players     []string // insertion order, no duplicates
	sessions    map[string]string
	stage       Stage
	clock       Clock
	lastUpdated time.Time
	waitCh      chan struct{}
}

func newInstance(gameID string, gameType GameType, game Game) *Instance {
	return &Instance{
		id:          gameID,
		gameType:    gameType,
		game:        game,
		sessions:    make(map[string]string),
		stage:       StageWaiting,
		lastUpdated: time.Now(),
		waitCh:      make(chan struct{}),
	}
}

// ID returns the instance's GameId.
func (inst *Instance) ID() string { return inst.id }

// GameType returns the instance's closed-set game type.
func (inst *Instance) GameType() GameType { return inst.gameType }

// advance bumps the clock, stamps last-updated, and wakes every current
// long-poll waiter. Must be called with mu held.
func (inst *Instance) advance() {
	inst.clock++
	inst.lastUpdated = time.Now()
	closed := inst.waitCh
	inst.waitCh = make(chan struct{})
	close(closed)
}

func validateUsername(username string) error {
	switch {
	case len(username) < minUsernameLen:
		return &InvalidUsernameError{Username: username, Reason: UsernameTooShort}
	case len(username) > maxUsernameLen:
		return &InvalidUsernameError{Username: username, Reason: UsernameTooLong}
	}
	return nil
}

func contains(list []string, needle string) bool {
	for _, v := range list {
		if v == needle {
			return true
		}
	}
	return false
}

// join registers username as a new player, advancing the clock and
// starting the game if its start condition now holds. It returns only an
// error; it does not mint the session itself, since sessions are
// registered hub-wide under the hub lock (spec §5).
func (inst *Instance) join(username string) error {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	if inst.stage != StageWaiting {
		// The join endpoint's error taxonomy (spec §6) only distinguishes
		// "game-in-progress" for joins; an ended game is, from a joiner's
		// perspective, just another case of "not accepting joins anymore".
		return &GameInProgressError{GameID: inst.id}
	}
	if err := validateUsername(username); err != nil {
		return err
	}
	if contains(inst.players, username) {
		return &InvalidUsernameError{Username: username, GameID: inst.id, Reason: UsernameAlreadyInGame}
	}
	// Capacity/eligibility beyond length and duplication is enforced by the
	// stage check above: a game's Start precondition flips the stage away
	// from waiting as soon as it is met, under this same lock, so no
	// implementation ever observes more joiners than it asked for. AddPlayer
	// failing here would indicate a game-implementation bug, not a bad
	// request; it is bubbled up unwrapped rather than shoehorned into one
	// of the three well-known username-rejection reasons.
	if err := inst.game.AddPlayer(username); err != nil {
		return err
	}
	inst.players = append(inst.players, username)
	if err := inst.game.Start(); err == nil {
		inst.stage = StageInProgress
	}
	inst.advance()
	return nil
}

// registerSession records a minted session ID against username. Called
// after the hub has reserved the ID in its hub-wide reverse index.
func (inst *Instance) registerSession(username, sessionID string) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	inst.sessions[username] = sessionID
}

// submit applies a move on behalf of username, already resolved from the
// session ID by the hub. Returns the clock value after the mutation.
func (inst *Instance) submit(username string, move Move) (Clock, error) {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	switch inst.stage {
	case StageWaiting:
		return 0, &GameWaitingError{GameID: inst.id}
	case StageEnded:
		return 0, &GameEndedError{GameID: inst.id}
	}
	if !contains(inst.game.CanMove(), username) {
		return 0, &InvalidPlayerError{GameID: inst.id, Username: username}
	}
	if err := inst.game.SubmitMove(username, move); err != nil {
		return 0, &InvalidMoveError{GameID: inst.id, Detail: err.Error()}
	}
	if inst.game.Ended() {
		inst.stage = StageEnded
	}
	inst.advance()
	return inst.clock, nil
}

// summary returns a read-only listing snapshot. Does not advance the
// clock.
func (inst *Instance) summary() Summary {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return Summary{
		GameID:      inst.id,
		GameType:    inst.gameType,
		Players:     len(inst.players),
		Stage:       inst.stage,
		LastUpdated: inst.lastUpdated,
	}
}

// stateView returns a read-only full-state snapshot. Does not advance the
// clock.
func (inst *Instance) stateView() StateView {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	players := make([]string, len(inst.players))
	copy(players, inst.players)
	return StateView{
		GameID:      inst.id,
		Players:     players,
		Stage:       inst.stage,
		CanMove:     inst.game.CanMove(),
		Winners:     inst.game.Winners(),
		GameName:    inst.gameType,
		LastUpdated: inst.lastUpdated,
		Payload:     inst.game.Snapshot(),
	}
}

// currentClock returns the instance's current clock value.
func (inst *Instance) currentClock() Clock {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.clock
}

// sessionUsername resolves a session ID registered against this instance
// to its owning username, used to cross-check that a session presented to
// submit-move actually belongs here.
func (inst *Instance) sessionUsername(sessionID string) (string, bool) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	for username, sid := range inst.sessions {
		if sid == sessionID {
			return username, true
		}
	}
	return "", false
}

// waitForUpdate suspends until the clock strictly exceeds since, the
// context is cancelled, or timeout elapses, whichever happens first. It
// always returns the then-current clock value and never an error: a
// timed-out wait is a successful observation (spec §7).
func (inst *Instance) waitForUpdate(ctx context.Context, since Clock, timeout time.Duration) Clock {
	inst.mu.Lock()
	if inst.clock > since {
		cur := inst.clock
		inst.mu.Unlock()
		return cur
	}
	ch := inst.waitCh
	inst.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ch:
	case <-timer.C:
	case <-ctx.Done():
	}
	return inst.currentClock()
}
