package models

import "time"

type Team struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Members []TeamMember `json:"members,omitempty" db:"-"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}

// TeamMember is a roster entry attached at team creation. Teams carry
// between two and three members and are immutable after creation.
type TeamMember struct {
	ID     int     `json:"id"`
	TeamID int     `json:"team_id"`
	Name   string  `json:"name"`
	Email  *string `json:"email,omitempty"`
}
