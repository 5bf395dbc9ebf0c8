// Package hub implements the process-wide game registry: game instances,
// their state-machine wrapper, and the long-poll coordinator that lets
// clients wait for an instance's clock to advance.
package hub

// GameType is the closed set of game implementations the hub can host.
type GameType string

const (
	GameTypeConnect4 GameType = "connect_4"
	GameTypeSnake    GameType = "snake"
)

// Stage is an instance's top-level state-machine state.
type Stage string

const (
	StageWaiting    Stage = "waiting"
	StageInProgress Stage = "in_progress"
	StageEnded      Stage = "ended"
)

// Clock is a per-instance monotonically increasing mutation counter.
type Clock uint64

// PageSize is the fixed page size for List, per the spec.
const PageSize = 20

const (
	minUsernameLen = 1
	maxUsernameLen = 12
)
