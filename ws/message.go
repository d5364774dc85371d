package ws

import (
	"encoding/json"

	"swiss-pairing-server/pairing"
	"swiss-pairing-server/tournament"
)

// InboundEnvelope is the generic envelope for all client-to-server messages.
// The Type field is used for routing; Raw holds the full JSON payload.
type InboundEnvelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON implements custom unmarshaling to capture the raw payload.
func (e *InboundEnvelope) UnmarshalJSON(data []byte) error {
	type typeOnly struct {
		Type string `json:"type"`
	}
	var t typeOnly
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	e.Type = t.Type
	e.Raw = json.RawMessage(data)
	return nil
}

// Client-to-server message types. Neither carries a payload.
const (
	MsgGetStandings = "get_standings"
	MsgGetPairings  = "get_pairings"
)

// --- Server-to-Client messages ---

// ErrorMsg is sent when a client request cannot be served.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// EventMsg wraps a tournament event broadcast to every spectator.
// Type is one of the tournament.Event* constants.
type EventMsg struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// StandingsMsg answers get_standings.
type StandingsMsg struct {
	Type      string             `json:"type"`
	Standings []pairing.Standing `json:"standings"`
}

// PairingsMsg answers get_pairings with a preview of the next round.
type PairingsMsg struct {
	Type  string                `json:"type"`
	Round *tournament.RoundPlan `json:"round"`
}
