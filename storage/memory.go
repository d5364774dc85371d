package storage

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"swiss-pairing-server/pairing"
	"swiss-pairing-server/standings"
)

// MemoryStore keeps players and matches in process memory. It is used when no
// database is configured and in tests. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  pairing.PlayerID
	players []standings.Player
	matches []standings.Match
	now     func() time.Time
}

// NewMemoryStore returns an empty store. IDs start at 1.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, now: time.Now}
}

func (m *MemoryStore) RegisterPlayer(_ context.Context, name string) (standings.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := standings.Player{ID: m.nextID, Name: name, RegisteredAt: m.now().UTC()}
	m.nextID++
	m.players = append(m.players, p)
	return p, nil
}

func (m *MemoryStore) GetPlayer(_ context.Context, id pairing.PlayerID) (*standings.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.players {
		if m.players[i].ID == id {
			p := m.players[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) CountPlayers(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.players), nil
}

func (m *MemoryStore) ReportMatch(_ context.Context, winnerID, loserID pairing.PlayerID) (standings.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	match := standings.Match{ID: uuid.New(), WinnerID: winnerID, LoserID: loserID, PlayedAt: m.now().UTC()}
	m.matches = append(m.matches, match)
	return match, nil
}

func (m *MemoryStore) HasPlayed(_ context.Context, a, b pairing.PlayerID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, match := range m.matches {
		if (match.WinnerID == a && match.LoserID == b) || (match.WinnerID == b && match.LoserID == a) {
			return true, nil
		}
	}
	return false, nil
}

// Snapshot returns copies; later writes do not show through.
func (m *MemoryStore) Snapshot(_ context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	players := slices.Clone(m.players)
	if players == nil {
		players = []standings.Player{}
	}
	matches := slices.Clone(m.matches)
	if matches == nil {
		matches = []standings.Match{}
	}
	return &Snapshot{Players: players, Matches: matches}, nil
}

// DeleteMatches removes every match. Player IDs keep counting up.
func (m *MemoryStore) DeleteMatches(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches = nil
	return nil
}

func (m *MemoryStore) DeletePlayers(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players = nil
	return nil
}

func (m *MemoryStore) Close() {}
