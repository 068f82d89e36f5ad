package models

import "time"

type MatchState string

const (
	MatchPending MatchState = "pending"
	MatchBye     MatchState = "bye"
	MatchDecided MatchState = "decided"
)

// Match is one bracket slot. TeamAID/TeamBID may be nil (bye), WinnerID is
// nil until the match is decided. A bye is decided at creation time.
type Match struct {
	ID           int       `json:"id"`
	TournamentID int       `json:"tournament_id"`
	Round        int       `json:"round"`
	TeamAID      *int      `json:"team_a_id,omitempty"`
	TeamBID      *int      `json:"team_b_id,omitempty"`
	WinnerID     *int      `json:"winner_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (m *Match) State() MatchState {
	if m.TeamAID == nil || m.TeamBID == nil {
		return MatchBye
	}
	if m.WinnerID != nil {
		return MatchDecided
	}
	return MatchPending
}

func (m *Match) Decided() bool {
	return m.WinnerID != nil
}

// HasSide reports whether teamID occupies one of the two slots.
func (m *Match) HasSide(teamID int) bool {
	if m.TeamAID != nil && *m.TeamAID == teamID {
		return true
	}
	return m.TeamBID != nil && *m.TeamBID == teamID
}
