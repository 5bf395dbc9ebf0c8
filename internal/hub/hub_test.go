package hub_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jaminalder/gamehub/internal/game/connect4"
	"github.com/jaminalder/gamehub/internal/hub"
)

var (
	gameIDPattern    = regexp.MustCompile(`^game_[A-Z0-9]+$`)
	sessionIDPattern = regexp.MustCompile(`^session_[A-Z0-9]+$`)
)

func connect4Factory(gameType hub.GameType) (hub.Game, error) {
	if gameType != hub.GameTypeConnect4 {
		return nil, errors.New("unsupported game type")
	}
	return connect4.New(), nil
}

func TestCreateAssignsGameIDMatchingPattern(t *testing.T) {
	h := hub.New(connect4Factory, time.Second)
	gameID, err := h.Create(hub.GameTypeConnect4)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !gameIDPattern.MatchString(gameID) {
		t.Fatalf("gameID = %q, does not match expected pattern", gameID)
	}
	if _, err := h.Get(gameID); err != nil {
		t.Fatalf("Get(%q): %v", gameID, err)
	}
}

func TestGetUnknownGameReturnsNotFound(t *testing.T) {
	h := hub.New(connect4Factory, time.Second)
	_, err := h.Get("game_DOESNOTEXIST")
	var target *hub.GameNotFoundError
	if !errors.As(err, &target) {
		t.Fatalf("Get unknown = %v, want GameNotFoundError", err)
	}
}

func TestJoinMintsSessionAndSubmitMoveAppliesIt(t *testing.T) {
	h := hub.New(connect4Factory, time.Second)
	gameID, err := h.Create(hub.GameTypeConnect4)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	aliceSession, err := h.Join(gameID, "Alice")
	if err != nil {
		t.Fatalf("Join Alice: %v", err)
	}
	if !sessionIDPattern.MatchString(aliceSession) {
		t.Fatalf("sessionID = %q, does not match expected pattern", aliceSession)
	}
	bobSession, err := h.Join(gameID, "Bob")
	if err != nil {
		t.Fatalf("Join Bob: %v", err)
	}

	view, err := h.StateView(gameID)
	if err != nil {
		t.Fatalf("StateView: %v", err)
	}
	if view.Stage != hub.StageInProgress {
		t.Fatalf("stage = %v, want in_progress once two players have joined", view.Stage)
	}
	if len(view.CanMove) != 1 || view.CanMove[0] != "Alice" {
		t.Fatalf("CanMove = %v, want [Alice]", view.CanMove)
	}

	clock, err := h.SubmitMove(gameID, aliceSession, connect4.Move{Column: 1})
	if err != nil {
		t.Fatalf("SubmitMove Alice: %v", err)
	}
	if clock == 0 {
		t.Fatalf("clock = 0, want a positive value after a successful move")
	}

	if _, err := h.SubmitMove(gameID, bobSession, connect4.Move{Column: 1}); err != nil {
		t.Fatalf("SubmitMove Bob: %v", err)
	}
}

func TestSubmitMoveWithSessionFromAnotherGameFails(t *testing.T) {
	h := hub.New(connect4Factory, time.Second)
	gameOne, _ := h.Create(hub.GameTypeConnect4)
	gameTwo, _ := h.Create(hub.GameTypeConnect4)

	sessionOne, err := h.Join(gameOne, "Alice")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	_, _ = h.Join(gameOne, "Bob")
	_, _ = h.Join(gameTwo, "Carol")
	_, _ = h.Join(gameTwo, "Dave")

	var target *hub.SessionNotFoundError
	if _, err := h.SubmitMove(gameTwo, sessionOne, connect4.Move{Column: 1}); !errors.As(err, &target) {
		t.Fatalf("cross-game session submit = %v, want SessionNotFoundError", err)
	}
}

func TestSessionLookupResolvesGameAndUsername(t *testing.T) {
	h := hub.New(connect4Factory, time.Second)
	gameID, _ := h.Create(hub.GameTypeConnect4)
	sessionID, err := h.Join(gameID, "Alice")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}

	resolvedGame, resolvedUsername, err := h.SessionLookup(sessionID)
	if err != nil {
		t.Fatalf("SessionLookup: %v", err)
	}
	if resolvedGame != gameID || resolvedUsername != "Alice" {
		t.Fatalf("SessionLookup = (%q, %q), want (%q, %q)", resolvedGame, resolvedUsername, gameID, "Alice")
	}

	if _, _, err := h.SessionLookup("session_DOESNOTEXIST"); err == nil {
		t.Fatalf("expected SessionNotFoundError for an unknown session")
	}
}

func TestWaitForUpdateWakesWhenAnotherGoroutineJoins(t *testing.T) {
	h := hub.New(connect4Factory, 5*time.Second)
	gameID, _ := h.Create(hub.GameTypeConnect4)

	done := make(chan hub.Clock, 1)
	go func() {
		clock, err := h.WaitForUpdate(context.Background(), gameID, nil)
		if err != nil {
			t.Errorf("WaitForUpdate: %v", err)
		}
		done <- clock
	}()

	time.Sleep(20 * time.Millisecond)
	if _, err := h.Join(gameID, "Alice"); err != nil {
		t.Fatalf("Join: %v", err)
	}

	select {
	case clock := <-done:
		if clock == 0 {
			t.Fatalf("clock = 0, want a positive value after the join")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("WaitForUpdate did not wake on the join")
	}
}

func TestListFiltersSortsAndPaginates(t *testing.T) {
	h := hub.New(connect4Factory, time.Second)

	var single string
	for i := 0; i < 3; i++ {
		gameID, err := h.Create(hub.GameTypeConnect4)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if i == 0 {
			single = gameID
		}
		if i == 1 {
			if _, err := h.Join(gameID, "Alice"); err != nil {
				t.Fatalf("Join: %v", err)
			}
		}
	}

	players := 1
	summaries, total := h.List(hub.ListFilter{Players: &players}, hub.SortByPlayers, hub.SortAsc, 1)
	if total != 1 {
		t.Fatalf("total = %d, want 1 with Players filter = 1", total)
	}
	if len(summaries) != 1 || summaries[0].Players != 1 {
		t.Fatalf("summaries = %+v, want a single one-player game", summaries)
	}

	all, totalAll := h.List(hub.ListFilter{}, hub.SortByPlayers, hub.SortDesc, 1)
	if totalAll != 3 {
		t.Fatalf("totalAll = %d, want 3", totalAll)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3 since page size exceeds the total", len(all))
	}
	if all[0].Players < all[len(all)-1].Players {
		t.Fatalf("descending sort by players not respected: %+v", all)
	}

	_ = single
	empty, totalEmpty := h.List(hub.ListFilter{}, hub.SortByPlayers, hub.SortAsc, 2)
	if totalEmpty != 3 {
		t.Fatalf("totalEmpty = %d, want 3", totalEmpty)
	}
	if len(empty) != 0 {
		t.Fatalf("page 2 = %+v, want empty since everything fits on page 1", empty)
	}
}

func TestListBreaksTiesByLastUpdatedThenGameID(t *testing.T) {
	h := hub.New(connect4Factory, time.Second)
	var ids []string
	for i := 0; i < 3; i++ {
		gameID, err := h.Create(hub.GameTypeConnect4)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, gameID)
	}

	summaries, _ := h.List(hub.ListFilter{}, hub.SortByGameType, hub.SortAsc, 1)
	if len(summaries) != 3 {
		t.Fatalf("summaries = %+v, want 3", summaries)
	}
	for i := 1; i < len(summaries); i++ {
		prev, cur := summaries[i-1], summaries[i]
		if cur.LastUpdated.Before(prev.LastUpdated) ||
			(cur.LastUpdated.Equal(prev.LastUpdated) && prev.GameID >= cur.GameID) {
			t.Fatalf("summaries not tie-broken by ascending last_updated, then GameID: %+v", summaries)
		}
	}
}
