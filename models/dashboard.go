package models

type DashboardStats struct {
	MembersTotal       int   `json:"members_total"`
	ActiveMembers      int   `json:"active_members"`
	ClassesTotal       int   `json:"classes_total"`
	PaymentsMonthCents int64 `json:"payments_month_cents"`
	AccessGrantedToday int   `json:"access_granted_today"`
	TournamentsTotal   int   `json:"tournaments_total"`
	ActiveTournaments  int   `json:"active_tournaments"`
	MatchesTotal       int   `json:"matches_total"`
}
