package hub

// Move is the marker interface for a game-specific move payload. Each game
// implementation defines its own concrete type; the instance wrapper never
// inspects a Move's fields, only routes it to the owning Game.
type Move interface {
	isMove()
}

// State is the marker interface for a game-specific state snapshot, tagged
// by GameType at the JSON boundary.
type State interface {
	isState()
}

// Game is the capability set every game implementation provides. A Game is
// not safe for concurrent use on its own; the owning Instance serializes
// every call under its lock.
type Game interface {
	// GameType reports the closed-set discriminator for this implementation.
	GameType() GameType

	// AddPlayer registers a new player. Valid only before Start succeeds.
	AddPlayer(username string) error

	// Start transitions the game from its pre-start condition to active
	// play once the implementation's start condition holds (e.g. enough
	// players). Returns an error if the condition does not yet hold.
	Start() error

	// SubmitMove applies a move on behalf of username. Valid only once the
	// game has started and username is eligible per CanMove.
	SubmitMove(username string, move Move) error

	// CanMove reports the subset of players eligible to move right now.
	CanMove() []string

	// Winners reports the players who won. Only meaningful once Ended
	// returns true; empty means a draw.
	Winners() []string

	// Ended reports whether the game has reached a terminal state.
	Ended() bool

	// Snapshot returns a read-only, type-tagged view of the current state.
	Snapshot() State
}
