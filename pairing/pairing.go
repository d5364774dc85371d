package pairing

import "github.com/samber/lo"

// PlayerID identifies a registered player. IDs are assigned in registration order.
type PlayerID int64

// Standing is one row of the standings table.
type Standing struct {
	ID           PlayerID `json:"id"`
	Name         string   `json:"name"`
	Wins         int      `json:"wins"`
	Matches      int      `json:"matches"`
	OpponentWins int      `json:"opponent_wins"`
}

// Pairing is a single match proposed for the next round.
// Repeat is true when the two players have already met (forced by the fallback pass).
type Pairing struct {
	Player1ID   PlayerID `json:"player1_id"`
	Player1Name string   `json:"player1_name"`
	Player2ID   PlayerID `json:"player2_id"`
	Player2Name string   `json:"player2_name"`
	Repeat      bool     `json:"repeat"`
}

// Round is the result of a pairing pass.
// Unpaired holds the leftover player when the number of players is odd; it is empty otherwise.
type Round struct {
	Pairings []Pairing  `json:"pairings"`
	Unpaired []Standing `json:"unpaired,omitempty"`
}

// Swiss pairs players for the next round.
//
// standings must already be ordered best first (wins, then opponent wins, then a
// deterministic tie-break). Each unmatched player is paired with the first later
// unmatched player they have not met yet. Players left over after that pass are
// paired in order regardless of history, so an even field always produces a full
// round. A nil history means no one has played.
//
// Entries repeating an ID already seen are ignored.
func Swiss(standings []Standing, history History) Round {
	players := lo.UniqBy(standings, func(s Standing) PlayerID { return s.ID })
	matched := make([]bool, len(players))
	round := Round{Pairings: []Pairing{}}

	for i, p := range players {
		if matched[i] {
			continue
		}
		for j := i + 1; j < len(players); j++ {
			if matched[j] {
				continue
			}
			q := players[j]
			if played(history, p.ID, q.ID) {
				continue
			}
			round.Pairings = append(round.Pairings, newPairing(p, q, false))
			matched[i], matched[j] = true, true
			break
		}
	}

	leftover := make([]Standing, 0, len(players))
	for i, p := range players {
		if !matched[i] {
			leftover = append(leftover, p)
		}
	}
	for len(leftover) >= 2 {
		p, q := leftover[0], leftover[1]
		round.Pairings = append(round.Pairings, newPairing(p, q, played(history, p.ID, q.ID)))
		leftover = leftover[2:]
	}
	if len(leftover) > 0 {
		round.Unpaired = leftover
	}
	return round
}

func newPairing(p, q Standing, repeat bool) Pairing {
	return Pairing{
		Player1ID:   p.ID,
		Player1Name: p.Name,
		Player2ID:   q.ID,
		Player2Name: q.Name,
		Repeat:      repeat,
	}
}

func played(h History, a, b PlayerID) bool {
	if h == nil {
		return false
	}
	return h.Played(a, b)
}
