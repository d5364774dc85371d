package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"swiss-pairing-server/pairing"
	"swiss-pairing-server/standings"
)

// No foreign keys: results are appended without checking the players exist,
// and the two bulk deletes can run in either order.
const createTableSQL = `
CREATE TABLE IF NOT EXISTS players (
	id            BIGSERIAL PRIMARY KEY,
	name          TEXT NOT NULL,
	registered_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS matches (
	id        UUID PRIMARY KEY,
	winner_id BIGINT NOT NULL,
	loser_id  BIGINT NOT NULL,
	played_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_matches_winner ON matches(winner_id);
CREATE INDEX IF NOT EXISTS idx_matches_loser ON matches(loser_id);
CREATE INDEX IF NOT EXISTS idx_matches_played_at ON matches(played_at);
`

// Store persists players and matches in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres and ensures the tables exist.
// If databaseURL is empty, NewStore returns (nil, nil); callers fall back to a MemoryStore.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	for _, q := range strings.Split(strings.TrimSpace(createTableSQL), ";") {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		if _, err := pool.Exec(ctx, q); err != nil {
			pool.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	slog.Info("connected to Postgres", "tag", "storage")
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// RegisterPlayer inserts a player; the database assigns the ID.
func (s *Store) RegisterPlayer(ctx context.Context, name string) (standings.Player, error) {
	var (
		id  int64
		reg time.Time
	)
	err := s.pool.QueryRow(ctx,
		`INSERT INTO players (name) VALUES ($1) RETURNING id, registered_at`,
		name).Scan(&id, &reg)
	if err != nil {
		return standings.Player{}, err
	}
	return standings.Player{ID: pairing.PlayerID(id), Name: name, RegisteredAt: reg}, nil
}

// GetPlayer returns one player by ID, or (nil, nil) if not found.
func (s *Store) GetPlayer(ctx context.Context, id pairing.PlayerID) (*standings.Player, error) {
	var (
		p   standings.Player
		pid int64
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, registered_at FROM players WHERE id = $1`,
		int64(id)).Scan(&pid, &p.Name, &p.RegisteredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p.ID = pairing.PlayerID(pid)
	return &p, nil
}

// CountPlayers returns the number of registered players.
func (s *Store) CountPlayers(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM players`).Scan(&n)
	return n, err
}

// ReportMatch appends a result. Neither deduplication nor existence checks are done here.
func (s *Store) ReportMatch(ctx context.Context, winnerID, loserID pairing.PlayerID) (standings.Match, error) {
	m := standings.Match{ID: uuid.New(), WinnerID: winnerID, LoserID: loserID}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO matches (id, winner_id, loser_id) VALUES ($1, $2, $3) RETURNING played_at`,
		m.ID.String(), int64(winnerID), int64(loserID)).Scan(&m.PlayedAt)
	if err != nil {
		return standings.Match{}, err
	}
	return m, nil
}

// HasPlayed reports whether a and b have met, whoever won.
func (s *Store) HasPlayed(ctx context.Context, a, b pairing.PlayerID) (bool, error) {
	var played bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM matches
			WHERE (winner_id = $1 AND loser_id = $2) OR (winner_id = $2 AND loser_id = $1)
		)`,
		int64(a), int64(b)).Scan(&played)
	return played, err
}

// Snapshot reads players and matches in one read-only, repeatable-read transaction
// so standings and history agree with each other.
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	snap := &Snapshot{}
	if snap.Players, err = listPlayers(ctx, tx); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	if snap.Matches, err = listMatches(ctx, tx); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return snap, nil
}

func listPlayers(ctx context.Context, tx pgx.Tx) ([]standings.Player, error) {
	rows, err := tx.Query(ctx, `SELECT id, name, registered_at FROM players ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []standings.Player{}
	for rows.Next() {
		var (
			p  standings.Player
			id int64
		)
		if err := rows.Scan(&id, &p.Name, &p.RegisteredAt); err != nil {
			return nil, err
		}
		p.ID = pairing.PlayerID(id)
		out = append(out, p)
	}
	return out, rows.Err()
}

func listMatches(ctx context.Context, tx pgx.Tx) ([]standings.Match, error) {
	rows, err := tx.Query(ctx, `SELECT id::text, winner_id, loser_id, played_at FROM matches ORDER BY played_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []standings.Match{}
	for rows.Next() {
		var (
			m             standings.Match
			id            string
			winner, loser int64
		)
		if err := rows.Scan(&id, &winner, &loser, &m.PlayedAt); err != nil {
			return nil, err
		}
		if m.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("match %q: %w", id, err)
		}
		m.WinnerID = pairing.PlayerID(winner)
		m.LoserID = pairing.PlayerID(loser)
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteMatches removes every match record.
func (s *Store) DeleteMatches(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM matches`)
	return err
}

// DeletePlayers removes every player record.
func (s *Store) DeletePlayers(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM players`)
	return err
}
