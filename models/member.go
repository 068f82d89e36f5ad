package models

import "time"

// MemberStatus соответствует ENUM member_status в БД.
type MemberStatus string

const (
	MemberActive    MemberStatus = "active"
	MemberSuspended MemberStatus = "suspended"
	MemberExpired   MemberStatus = "expired"
)

type Member struct {
	ID        int          `json:"id" db:"id"`
	FirstName string       `json:"first_name" db:"first_name"`
	LastName  string       `json:"last_name" db:"last_name"`
	Email     string       `json:"email" db:"email"`
	Phone     *string      `json:"phone,omitempty" db:"phone"`
	BeltRank  string       `json:"belt_rank" db:"belt_rank"`
	Status    MemberStatus `json:"status" db:"status"`

	// BadgeToken is the opaque value embedded in the member's QR badge.
	// It never changes unless the badge is reissued.
	BadgeToken string `json:"badge_token" db:"badge_token"`

	// ExpiresAt is the paid-through date of the membership.
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`

	PhotoKey *string `json:"-" db:"photo_key"`
	PhotoURL *string `json:"photo_url,omitempty" db:"-"`

	JoinedAt  time.Time `json:"joined_at" db:"joined_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
