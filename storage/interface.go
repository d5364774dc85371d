package storage

import (
	"context"

	"swiss-pairing-server/pairing"
	"swiss-pairing-server/standings"
)

// TournamentStore abstracts persistence for players and match results.
// Implementations can be swapped for testing or different backends.
type TournamentStore interface {
	// Read
	GetPlayer(ctx context.Context, id pairing.PlayerID) (*standings.Player, error)
	CountPlayers(ctx context.Context) (int, error)
	HasPlayed(ctx context.Context, a, b pairing.PlayerID) (bool, error)
	Snapshot(ctx context.Context) (*Snapshot, error)

	// Write
	RegisterPlayer(ctx context.Context, name string) (standings.Player, error)
	ReportMatch(ctx context.Context, winnerID, loserID pairing.PlayerID) (standings.Match, error)
	DeleteMatches(ctx context.Context) error
	DeletePlayers(ctx context.Context) error

	// Lifecycle
	Close()
}

// Snapshot is a consistent read of every player (in registration order) and
// every match (in the order recorded).
type Snapshot struct {
	Players []standings.Player
	Matches []standings.Match
}

// Standings returns the ranked standings table for the snapshot.
func (s *Snapshot) Standings() []pairing.Standing {
	return standings.Compute(s.Players, s.Matches)
}

// History returns the set of pairs that have met in the snapshot.
func (s *Snapshot) History() *pairing.PlayedSet {
	return standings.History(s.Matches)
}

// Ensure implementations satisfy TournamentStore at compile time.
var (
	_ TournamentStore = (*Store)(nil)
	_ TournamentStore = (*MemoryStore)(nil)
)
