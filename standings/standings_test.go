package standings

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"swiss-pairing-server/pairing"
)

func players(names ...string) []Player {
	out := make([]Player, len(names))
	for i, n := range names {
		out[i] = Player{ID: pairing.PlayerID(i + 1), Name: n}
	}
	return out
}

func result(winner, loser pairing.PlayerID) Match {
	return Match{ID: uuid.New(), WinnerID: winner, LoserID: loser}
}

func ids(rows []pairing.Standing) []pairing.PlayerID {
	out := make([]pairing.PlayerID, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func pairSet(pairings []pairing.Pairing) map[[2]pairing.PlayerID]bool {
	out := make(map[[2]pairing.PlayerID]bool, len(pairings))
	for _, p := range pairings {
		a, b := p.Player1ID, p.Player2ID
		if b < a {
			a, b = b, a
		}
		out[[2]pairing.PlayerID{a, b}] = true
	}
	return out
}

func TestCompute_NewPlayersHaveNoRecord(t *testing.T) {
	rows := Compute(players("Melpomene Murray", "Randy Schwartz"), nil)

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for _, r := range rows {
		if r.Wins != 0 || r.Matches != 0 || r.OpponentWins != 0 {
			t.Errorf("expected empty record for %s, got %+v", r.Name, r)
		}
	}
	if diff := cmp.Diff([]pairing.PlayerID{1, 2}, ids(rows)); diff != "" {
		t.Errorf("expected registration order on a full tie (-want +got):\n%s", diff)
	}
}

func TestCompute_CountsWinsAndMatches(t *testing.T) {
	ps := players("Bruno Walton", "Boots O'Neal", "Cathy Burton", "Diane Grant")
	rows := Compute(ps, []Match{result(1, 2), result(3, 4)})

	for _, r := range rows {
		if r.Matches != 1 {
			t.Errorf("expected 1 match for %s, got %d", r.Name, r.Matches)
		}
		wantWins := 0
		if r.ID == 1 || r.ID == 3 {
			wantWins = 1
		}
		if r.Wins != wantWins {
			t.Errorf("expected %d wins for %s, got %d", wantWins, r.Name, r.Wins)
		}
		if r.Wins > r.Matches {
			t.Errorf("wins exceed matches for %s: %+v", r.Name, r)
		}
	}
	if diff := cmp.Diff([]pairing.PlayerID{1, 3, 2, 4}, ids(rows)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestCompute_OpponentWinsBreakTies(t *testing.T) {
	ps := players("Aaron", "Barry", "Charlie", "David", "Edward", "Frank")
	matches := []Match{result(1, 4), result(2, 5), result(3, 6), result(6, 5)}

	rows := Compute(ps, matches)

	// 3 and 6 beat or met someone who has a win; 5 lost to two winners.
	want := []pairing.PlayerID{3, 6, 1, 2, 5, 4}
	if diff := cmp.Diff(want, ids(rows)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	byID := make(map[pairing.PlayerID]pairing.Standing)
	for _, r := range rows {
		byID[r.ID] = r
	}
	if byID[5].OpponentWins != 2 {
		t.Errorf("expected opponent wins 2 for Edward, got %d", byID[5].OpponentWins)
	}
	if byID[6].Matches != 2 || byID[6].Wins != 1 {
		t.Errorf("expected Frank 1-1, got %+v", byID[6])
	}
}

func TestCompute_IgnoresUnknownAndSelfMatches(t *testing.T) {
	rows := Compute(players("a", "b"), []Match{result(1, 99), result(2, 2), result(2, 1)})

	if rows[0].ID != 2 || rows[0].Wins != 1 || rows[0].Matches != 1 {
		t.Errorf("expected b on top with 1-0, got %+v", rows[0])
	}
	if rows[1].Matches != 1 {
		t.Errorf("expected a to have 1 match, got %d", rows[1].Matches)
	}
}

func TestOpponentWinsChangePairings(t *testing.T) {
	ps := players("Aaron", "Barry", "Charlie", "David", "Edward", "Frank")
	matches := []Match{result(1, 4), result(2, 5), result(3, 6)}

	round := pairing.Swiss(Compute(ps, matches), History(matches))
	want := map[[2]pairing.PlayerID]bool{{1, 2}: true, {3, 4}: true, {5, 6}: true}
	if diff := cmp.Diff(want, pairSet(round.Pairings)); diff != "" {
		t.Fatalf("round 2 pairs (-want +got):\n%s", diff)
	}

	// Frank picks up a win, lifting Charlie (who beat him) to the top.
	matches = append(matches, result(6, 5))
	round = pairing.Swiss(Compute(ps, matches), History(matches))
	want = map[[2]pairing.PlayerID]bool{{1, 3}: true, {2, 6}: true, {4, 5}: true}
	if diff := cmp.Diff(want, pairSet(round.Pairings)); diff != "" {
		t.Errorf("after 6 beat 5 (-want +got):\n%s", diff)
	}
}

func TestHistory(t *testing.T) {
	h := History([]Match{result(1, 2), result(4, 3)})

	if !h.Played(2, 1) || !h.Played(3, 4) {
		t.Error("expected recorded pairs to have played in both directions")
	}
	if h.Played(1, 3) {
		t.Error("1 and 3 never played")
	}
}

func TestLess(t *testing.T) {
	tests := []struct {
		name string
		a, b pairing.Standing
		want bool
	}{
		{"more wins", pairing.Standing{ID: 2, Wins: 2}, pairing.Standing{ID: 1, Wins: 1}, true},
		{"fewer wins", pairing.Standing{ID: 1, Wins: 0}, pairing.Standing{ID: 2, Wins: 1}, false},
		{"opponent wins", pairing.Standing{ID: 2, Wins: 1, OpponentWins: 3}, pairing.Standing{ID: 1, Wins: 1, OpponentWins: 1}, true},
		{"registration order", pairing.Standing{ID: 1, Wins: 1}, pairing.Standing{ID: 2, Wins: 1}, true},
		{"equal", pairing.Standing{ID: 1}, pairing.Standing{ID: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Less(tt.a, tt.b); got != tt.want {
				t.Errorf("Less(%+v, %+v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
