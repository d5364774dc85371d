// Package tournament runs a Swiss tournament on top of a TournamentStore:
// registering players, recording results and producing next-round pairings.
package tournament

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
	"swiss-pairing-server/config"
	"swiss-pairing-server/matcherrors"
	"swiss-pairing-server/pairing"
	"swiss-pairing-server/standings"
	"swiss-pairing-server/storage"
)

// Event types sent to the Notifier.
const (
	EventPlayerRegistered = "player_registered"
	EventMatchReported    = "match_reported"
	EventRoundPublished   = "round_published"
	EventReset            = "tournament_reset"
)

// Notifier receives tournament events, e.g. to push them to spectators.
type Notifier interface {
	Publish(eventType string, payload any)
}

// RoundPlan is the set of pairings proposed for the next round.
type RoundPlan struct {
	Number   int                `json:"round"`
	Pairings []pairing.Pairing  `json:"pairings"`
	Unpaired []pairing.Standing `json:"unpaired,omitempty"`
	Repeats  int                `json:"repeats"`
}

// ResetResult describes what Reset removed.
type ResetResult struct {
	Matches bool `json:"matches"`
	Players bool `json:"players"`
}

// Service coordinates the store, the pairing engine and the notifier.
type Service struct {
	store    storage.TournamentStore
	config   *config.Config
	notifier Notifier
}

// NewService creates a Service. notifier may be nil.
func NewService(cfg *config.Config, store storage.TournamentStore, notifier Notifier) *Service {
	return &Service{store: store, config: cfg, notifier: notifier}
}

// RegisterPlayer adds a player. The name is trimmed and must be 1..MaxNameLength characters.
func (s *Service) RegisterPlayer(ctx context.Context, name string) (standings.Player, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < 1 || n > s.config.MaxNameLength {
		return standings.Player{}, fmt.Errorf("%w: must be between 1 and %d characters", matcherrors.ErrInvalidName, s.config.MaxNameLength)
	}
	p, err := s.store.RegisterPlayer(ctx, name)
	if err != nil {
		return standings.Player{}, fmt.Errorf("register player: %w", err)
	}
	slog.Info("player registered", "tag", "tournament", "id", p.ID, "name", p.Name)
	s.publish(EventPlayerRegistered, p)
	return p, nil
}

// ReportMatch records that winner beat loser. Both must be registered and distinct.
func (s *Service) ReportMatch(ctx context.Context, winnerID, loserID pairing.PlayerID) (standings.Match, error) {
	if winnerID == loserID {
		return standings.Match{}, matcherrors.ErrSelfMatch
	}
	for _, id := range []pairing.PlayerID{winnerID, loserID} {
		p, err := s.store.GetPlayer(ctx, id)
		if err != nil {
			return standings.Match{}, fmt.Errorf("look up player %d: %w", id, err)
		}
		if p == nil {
			return standings.Match{}, fmt.Errorf("%w: %d", matcherrors.ErrPlayerNotFound, id)
		}
	}
	m, err := s.store.ReportMatch(ctx, winnerID, loserID)
	if err != nil {
		return standings.Match{}, fmt.Errorf("report match: %w", err)
	}
	slog.Info("match reported", "tag", "tournament", "match", m.ID, "winner", winnerID, "loser", loserID)
	s.publish(EventMatchReported, m)
	return m, nil
}

// HasPlayed reports whether the two players have met.
func (s *Service) HasPlayed(ctx context.Context, a, b pairing.PlayerID) (bool, error) {
	return s.store.HasPlayed(ctx, a, b)
}

// CountPlayers returns the number of registered players.
func (s *Service) CountPlayers(ctx context.Context) (int, error) {
	return s.store.CountPlayers(ctx)
}

// Players lists registered players in registration order.
func (s *Service) Players(ctx context.Context) ([]standings.Player, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Players, nil
}

// Matches lists every recorded result.
func (s *Service) Matches(ctx context.Context) ([]standings.Match, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Matches, nil
}

// Standings returns the ranked standings table.
func (s *Service) Standings(ctx context.Context) ([]pairing.Standing, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Standings(), nil
}

// Pairings computes next-round pairings without recording or announcing anything.
// Fewer than two players yields an empty plan. An odd field is an
// ErrOddPlayerCount error unless the odd player policy allows leaving one unpaired.
func (s *Service) Pairings(ctx context.Context) (*RoundPlan, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	table := snap.Standings()
	plan := &RoundPlan{Number: nextRoundNumber(table), Pairings: []pairing.Pairing{}}
	if len(table) < 2 {
		return plan, nil
	}
	if len(table)%2 == 1 && s.config.OddPlayerPolicy != config.OddPolicyLeaveUnpaired {
		return nil, fmt.Errorf("%w: %d players registered", matcherrors.ErrOddPlayerCount, len(table))
	}

	round := pairing.Swiss(table, snap.History())
	plan.Pairings = round.Pairings
	plan.Unpaired = round.Unpaired
	plan.Repeats = lo.CountBy(round.Pairings, func(p pairing.Pairing) bool { return p.Repeat })
	return plan, nil
}

// PublishRound computes the pairings, logs them and announces them to the notifier.
func (s *Service) PublishRound(ctx context.Context) (*RoundPlan, error) {
	plan, err := s.Pairings(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("round published", "tag", "tournament", "round", plan.Number, "pairings", len(plan.Pairings), "repeats", plan.Repeats)
	for i, p := range plan.Pairings {
		slog.Debug("pairing", "tag", "tournament", "round", plan.Number, "table", i+1,
			"player1", p.Player1Name, "player2", p.Player2Name, "repeat", p.Repeat)
	}
	for _, u := range plan.Unpaired {
		slog.Warn("player left unpaired", "tag", "tournament", "round", plan.Number, "id", u.ID, "name", u.Name)
	}
	s.publish(EventRoundPublished, plan)
	return plan, nil
}

// Reset deletes every match and, if players is true, every player as well.
func (s *Service) Reset(ctx context.Context, players bool) (ResetResult, error) {
	var res ResetResult
	if err := s.store.DeleteMatches(ctx); err != nil {
		return res, fmt.Errorf("delete matches: %w", err)
	}
	res.Matches = true
	if players {
		if err := s.store.DeletePlayers(ctx); err != nil {
			return res, fmt.Errorf("delete players: %w", err)
		}
		res.Players = true
	}
	slog.Info("tournament reset", "tag", "tournament", "players", players)
	s.publish(EventReset, res)
	return res, nil
}

func (s *Service) publish(eventType string, payload any) {
	if s.notifier != nil {
		s.notifier.Publish(eventType, payload)
	}
}

// nextRoundNumber assumes every player plays once per round.
func nextRoundNumber(table []pairing.Standing) int {
	most := 0
	for _, row := range table {
		if row.Matches > most {
			most = row.Matches
		}
	}
	return most + 1
}
