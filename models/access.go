package models

import "time"

type AccessResult string

const (
	AccessGranted      AccessResult = "granted"
	AccessUnknownBadge AccessResult = "denied_unknown_badge"
	AccessSuspended    AccessResult = "denied_suspended"
	AccessExpired      AccessResult = "denied_expired"
)

// AccessLog is one row of the door scan audit trail. MemberID is nil when
// the scanned badge token matched no member.
type AccessLog struct {
	ID         int          `json:"id"`
	MemberID   *int         `json:"member_id,omitempty"`
	BadgeToken string       `json:"badge_token"`
	Result     AccessResult `json:"result"`
	ScannedAt  time.Time    `json:"scanned_at"`

	Member *Member `json:"member,omitempty"`
}
