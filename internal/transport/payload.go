package transport

import (
	"encoding/json"
	"fmt"

	"github.com/jaminalder/gamehub/internal/game/connect4"
	"github.com/jaminalder/gamehub/internal/game/snake"
	"github.com/jaminalder/gamehub/internal/hub"
)

// gameTypeEnvelope peeks at the discriminator field shared by every move
// and state payload before decoding into the concrete, game-specific type.
type gameTypeEnvelope struct {
	GameType hub.GameType `json:"game_type"`
}

// decodeMove unmarshals a JSON move payload into the concrete hub.Move the
// declared game_type expects.
func decodeMove(raw json.RawMessage) (hub.Move, error) {
	var env gameTypeEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	switch env.GameType {
	case hub.GameTypeConnect4:
		var m connect4.Move
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	case hub.GameTypeSnake:
		var m snake.Move
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unrecognised game_type %q", env.GameType)
	}
}

// stateJSON renders a type-tagged JSON state payload for the HTTP response,
// since the concrete game packages never JSON-tag their own State structs
// (the hub keeps them opaque, see internal/hub/game.go).
func stateJSON(gameType hub.GameType, state hub.State) (json.RawMessage, error) {
	switch s := state.(type) {
	case connect4.State:
		return json.Marshal(struct {
			GameType hub.GameType `json:"game_type"`
			Cells    [7][]string  `json:"cells"`
		}{GameType: gameType, Cells: s.Cells})
	case snake.State:
		players := make(map[string][]snake.Point, len(s.Players))
		for username, body := range s.Players {
			players[username] = body
		}
		return json.Marshal(struct {
			GameType hub.GameType          `json:"game_type"`
			Players  map[string][]snake.Point `json:"players"`
			Fruits   []snake.Point         `json:"fruits"`
			WorldMin snake.Point           `json:"world_min"`
			WorldMax snake.Point           `json:"world_max"`
		}{GameType: gameType, Players: players, Fruits: s.Fruits, WorldMin: s.WorldMin, WorldMax: s.WorldMax})
	default:
		return nil, fmt.Errorf("unrecognised state payload %T", state)
	}
}
