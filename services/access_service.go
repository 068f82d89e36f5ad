package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dojoverse/dojo-system/models"
	"github.com/dojoverse/dojo-system/realtime"
	"github.com/dojoverse/dojo-system/repositories"
)

type AccessService interface {
	// ValidateBadge resolves a scanned badge token to a grant/deny decision
	// and appends it to the access log. A denial is a normal outcome, not an
	// error; errors are reserved for store failures.
	ValidateBadge(ctx context.Context, badgeToken string) (*models.AccessLog, error)
	ListAccessLog(ctx context.Context, limit, offset int) ([]*models.AccessLog, error)
}

type accessService struct {
	memberRepo repositories.MemberRepository
	accessRepo repositories.AccessRepository
	hub        Broadcaster
	logger     *slog.Logger
}

func NewAccessService(
	memberRepo repositories.MemberRepository,
	accessRepo repositories.AccessRepository,
	hub Broadcaster,
	logger *slog.Logger,
) AccessService {
	return &accessService{
		memberRepo: memberRepo,
		accessRepo: accessRepo,
		hub:        hub,
		logger:     logger,
	}
}

func (s *accessService) ValidateBadge(ctx context.Context, badgeToken string) (*models.AccessLog, error) {
	if badgeToken == "" {
		return nil, ErrBadgeTokenRequired
	}

	now := time.Now().UTC()
	entry := &models.AccessLog{
		BadgeToken: badgeToken,
		ScannedAt:  now,
	}

	member, err := s.memberRepo.GetByBadgeToken(ctx, badgeToken)
	switch {
	case errors.Is(err, repositories.ErrMemberNotFound):
		entry.Result = models.AccessUnknownBadge
	case err != nil:
		return nil, fmt.Errorf("failed to resolve badge token: %w", err)
	default:
		entry.MemberID = &member.ID
		entry.Member = member
		entry.Result = decideAccess(member, now)
	}

	if err := s.accessRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to write access log: %w", err)
	}

	s.logger.Info("badge scanned",
		slog.String("result", string(entry.Result)),
		slog.Any("member_id", entry.MemberID))

	if s.hub != nil {
		s.hub.BroadcastToRoom(realtime.DashboardRoom, realtime.Message{
			Type:    EventAccessScanned,
			Payload: entry,
			Room:    realtime.DashboardRoom,
		})
	}
	return entry, nil
}

func (s *accessService) ListAccessLog(ctx context.Context, limit, offset int) ([]*models.AccessLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.accessRepo.List(ctx, limit, offset)
}

func decideAccess(member *models.Member, now time.Time) models.AccessResult {
	switch {
	case member.Status == models.MemberSuspended:
		return models.AccessSuspended
	case member.Status == models.MemberExpired || member.ExpiresAt.Before(now):
		return models.AccessExpired
	default:
		return models.AccessGranted
	}
}
