package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed       = errors.New("validation failed")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrMemberNameRequired     = errors.New("member first and last name are required")
	ErrMemberEmailRequired    = errors.New("member email is required")
	ErrBadgeTokenRequired     = errors.New("badge token is required")
	ErrClassNameRequired      = errors.New("class name is required")
	ErrClassCapacityInvalid   = errors.New("class capacity must be positive")
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrTeamNameRequired       = errors.New("team name is required")
	ErrTeamRosterSize         = errors.New("a team needs two or three members")
	ErrPaymentAmountInvalid   = errors.New("payment amount must be positive")
	ErrPaymentPeriodInvalid   = errors.New("payment period must be between 1 and 24 months")
	ErrPaymentMethodInvalid   = errors.New("unknown payment method")

	// Bracket rules
	ErrInvalidMatchWinner  = errors.New("winner does not play in this match")
	ErrMatchAlreadyDecided = errors.New("match result already recorded")

	// Conflicts
	ErrUserEmailConflict   = errors.New("email address is already in use")
	ErrMemberEmailConflict = errors.New("member email is already in use")
	ErrTeamNameConflict    = errors.New("team name is already in use for this tournament")

	// Authentication / authorization
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Entity-specific not-found (более конкретный контекст, чем ErrNotFound)
	ErrUserNotFound       = errors.New("user not found")
	ErrMemberNotFound     = errors.New("member not found")
	ErrClassNotFound      = errors.New("class session not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrMatchNotFound      = errors.New("match not found")
)
