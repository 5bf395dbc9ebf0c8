// Package id mints opaque, high-entropy identifiers for games and sessions.
package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// alphabet is Crockford base32 (uppercase, no I, L, O or U), a subset of
// A-Z0-9, so minted bodies satisfy the wire regex `[A-Z0-9]+` without
// translation.
const alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

const (
	// GameBodyLen keeps game IDs short; uniqueness is enforced by the hub's
	// registry, not by the ID's entropy alone.
	GameBodyLen = 7
	// SessionBodyLen gives >=128 bits of entropy (log2(32)*26 = 130 bits),
	// since a session ID is the only credential a client holds.
	SessionBodyLen = 26

	gamePrefix    = "game_"
	sessionPrefix = "session_"
)

var alphabetSize = big.NewInt(int64(len(alphabet)))

func randomBody(n int) string {
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			panic("id: reading random source failed: " + err.Error())
		}
		buf[i] = alphabet[idx.Int64()]
	}
	return string(buf)
}

// NewGameID mints a fresh game_ prefixed identifier. Callers that need
// hub-wide uniqueness must check the result against their registry and
// re-roll on collision.
func NewGameID() string {
	return fmt.Sprintf("%s%s", gamePrefix, randomBody(GameBodyLen))
}

// NewSessionID mints a fresh session_ prefixed identifier. See NewGameID
// for the collision-handling contract.
func NewSessionID() string {
	return fmt.Sprintf("%s%s", sessionPrefix, randomBody(SessionBodyLen))
}
