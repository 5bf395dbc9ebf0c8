// Package connect4 implements the Connect 4 hub.Game: 7 columns x 6 rows,
// alternating turns, four-in-a-row detection in every direction.
package connect4

import (
	"errors"
	"fmt"

	"github.com/jaminalder/gamehub/internal/hub"
)

const (
	Columns = 7
	Rows    = 6

	requiredPlayers = 2
)

// Move is the column a player chooses, 1-indexed per the wire schema.
type Move struct {
	Column int
}

// isMove satisfies hub.Move.
func (Move) isMove() {}

// State is the board snapshot: Cells[col] lists tokens bottom first, one
// entry per occupied cell. It carries no JSON tags; the transport layer
// renders the tagged wire form.
type State struct {
	Cells [Columns][]string
}

// isState satisfies hub.State.
func (State) isState() {}

// Game is a single Connect 4 match.
type Game struct {
	players []string
	cells   [Columns][]string
	turn    int // index into players
	ended   bool
	winners []string
}

// New returns a fresh, empty Connect 4 game awaiting its two players.
func New() *Game {
	return &Game{}
}

func (g *Game) GameType() hub.GameType { return hub.GameTypeConnect4 }

// AddPlayer appends username to the join order. The hub wrapper already
// enforces uniqueness, length, and waiting-stage; this never fails once
// those hold, but rejects a third joiner defensively.
func (g *Game) AddPlayer(username string) error {
	if len(g.players) >= requiredPlayers {
		return errors.New("connect 4 only supports two players")
	}
	g.players = append(g.players, username)
	return nil
}

// Start requires exactly two players; the first joiner moves first.
func (g *Game) Start() error {
	if len(g.players) != requiredPlayers {
		return fmt.Errorf("connect 4 requires exactly %d players to start, have %d", requiredPlayers, len(g.players))
	}
	g.turn = 0
	return nil
}

// CanMove returns the single player whose turn it is, or nil once ended.
func (g *Game) CanMove() []string {
	if g.ended || len(g.players) != requiredPlayers {
		return nil
	}
	return []string{g.players[g.turn]}
}

// Winners returns the single winning player, or an empty slice for a draw
// or an unfinished game.
func (g *Game) Winners() []string {
	return g.winners
}

// Ended reports whether the match has concluded (win or full board).
func (g *Game) Ended() bool { return g.ended }

// Snapshot returns the current board, bottom token first per column.
func (g *Game) Snapshot() hub.State {
	return State{Cells: g.cells}
}

// SubmitMove drops username's token into column (1-indexed). Only the
// player whose turn it is may move; the hub wrapper enforces that via
// CanMove before calling this.
func (g *Game) SubmitMove(username string, move hub.Move) error {
	m, ok := move.(Move)
	if !ok {
		return fmt.Errorf("expected a connect_4 move, got %T", move)
	}
	if m.Column < 1 || m.Column > Columns {
		return fmt.Errorf("column %d out of range (1-%d)", m.Column, Columns)
	}
	col := m.Column - 1
	if len(g.cells[col]) >= Rows {
		return fmt.Errorf("column %d is full", m.Column)
	}

	g.cells[col] = append(g.cells[col], username)

	if g.hasWin(col) {
		g.winners = []string{username}
		g.ended = true
		return nil
	}
	if g.isFull() {
		g.winners = nil
		g.ended = true
		return nil
	}

	g.turn = (g.turn + 1) % requiredPlayers
	return nil
}

func (g *Game) isFull() bool {
	for col := 0; col < Columns; col++ {
		if len(g.cells[col]) < Rows {
			return false
		}
	}
	return true
}

// cellAt returns the token at (col, row), or "" if empty/out of range.
func (g *Game) cellAt(col, row int) string {
	if col < 0 || col >= Columns || row < 0 {
		return ""
	}
	if row >= len(g.cells[col]) {
		return ""
	}
	return g.cells[col][row]
}

var directions = [4][2]int{
	{1, 0},  // horizontal
	{0, 1},  // vertical
	{1, 1},  // diagonal /
	{1, -1}, // diagonal \
}

// hasWin checks whether the most recent placement at the top of col
// completes four in a row in any direction.
func (g *Game) hasWin(col int) bool {
	row := len(g.cells[col]) - 1
	token := g.cellAt(col, row)
	if token == "" {
		return false
	}
	for _, d := range directions {
		count := 1
		count += countDirection(g, col, row, d[0], d[1], token)
		count += countDirection(g, col, row, -d[0], -d[1], token)
		if count >= 4 {
			return true
		}
	}
	return false
}

func countDirection(g *Game, col, row, dCol, dRow int, token string) int {
	count := 0
	c, r := col+dCol, row+dRow
	for g.cellAt(c, r) == token {
		count++
		c += dCol
		r += dRow
	}
	return count
}
