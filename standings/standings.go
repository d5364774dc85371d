// Package standings derives the ranked standings table from raw player and match records.
package standings

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"swiss-pairing-server/pairing"
)

// Player is a registered player. Names need not be unique.
type Player struct {
	ID           pairing.PlayerID `json:"id"`
	Name         string           `json:"name"`
	RegisteredAt time.Time        `json:"registered_at"`
}

// Match is a recorded result. Draws are not modeled.
type Match struct {
	ID       uuid.UUID        `json:"id"`
	WinnerID pairing.PlayerID `json:"winner_id"`
	LoserID  pairing.PlayerID `json:"loser_id"`
	PlayedAt time.Time        `json:"played_at"`
}

// Compute aggregates matches per player and returns the standings, best first.
//
// Rows are ordered by wins, then by opponent wins (the sum, over every match the
// player took part in, of that opponent's win count), both descending, then by ID.
// Matches naming a player that is not in players, or the same player twice, are
// ignored.
func Compute(players []Player, matches []Match) []pairing.Standing {
	rows := make([]pairing.Standing, len(players))
	index := make(map[pairing.PlayerID]int, len(players))
	for i, p := range players {
		rows[i] = pairing.Standing{ID: p.ID, Name: p.Name}
		index[p.ID] = i
	}

	counted := make([]Match, 0, len(matches))
	for _, m := range matches {
		w, okW := index[m.WinnerID]
		l, okL := index[m.LoserID]
		if !okW || !okL || w == l {
			continue
		}
		rows[w].Wins++
		rows[w].Matches++
		rows[l].Matches++
		counted = append(counted, m)
	}

	// Opponent wins need every win count settled first.
	for _, m := range counted {
		w, l := index[m.WinnerID], index[m.LoserID]
		rows[w].OpponentWins += rows[l].Wins
		rows[l].OpponentWins += rows[w].Wins
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return Less(rows[i], rows[j])
	})
	return rows
}

// Less reports whether a ranks above b.
func Less(a, b pairing.Standing) bool {
	if a.Wins != b.Wins {
		return a.Wins > b.Wins
	}
	if a.OpponentWins != b.OpponentWins {
		return a.OpponentWins > b.OpponentWins
	}
	return a.ID < b.ID
}

// History builds the set of pairs that have already met.
func History(matches []Match) *pairing.PlayedSet {
	set := pairing.NewPlayedSet()
	for _, m := range matches {
		set.Add(m.WinnerID, m.LoserID)
	}
	return set
}
