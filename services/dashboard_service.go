package services

import (
	"context"
	"time"

	"github.com/dojoverse/dojo-system/models"
	"github.com/dojoverse/dojo-system/repositories"
	"golang.org/x/sync/errgroup"
)

type DashboardService interface {
	GetStats(ctx context.Context) (*models.DashboardStats, error)
}

type dashboardService struct {
	memberRepo     repositories.MemberRepository
	classRepo      repositories.ClassRepository
	paymentRepo    repositories.PaymentRepository
	accessRepo     repositories.AccessRepository
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
}

func NewDashboardService(
	memberRepo repositories.MemberRepository,
	classRepo repositories.ClassRepository,
	paymentRepo repositories.PaymentRepository,
	accessRepo repositories.AccessRepository,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
) DashboardService {
	return &dashboardService{
		memberRepo:     memberRepo,
		classRepo:      classRepo,
		paymentRepo:    paymentRepo,
		accessRepo:     accessRepo,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
	}
}

// GetStats fans the independent counters out over an errgroup, one query per
// counter.
func (s *dashboardService) GetStats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}

	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, err := s.memberRepo.Count(gCtx, nil)
		stats.MembersTotal = count
		return err
	})
	g.Go(func() error {
		active := models.MemberActive
		count, err := s.memberRepo.Count(gCtx, &active)
		stats.ActiveMembers = count
		return err
	})
	g.Go(func() error {
		count, err := s.classRepo.Count(gCtx)
		stats.ClassesTotal = count
		return err
	})
	g.Go(func() error {
		sum, err := s.paymentRepo.SumSince(gCtx, monthStart)
		stats.PaymentsMonthCents = sum
		return err
	})
	g.Go(func() error {
		count, err := s.accessRepo.CountGrantedSince(gCtx, dayStart)
		stats.AccessGrantedToday = count
		return err
	})
	g.Go(func() error {
		count, err := s.tournamentRepo.Count(gCtx, nil)
		stats.TournamentsTotal = count
		return err
	})
	g.Go(func() error {
		active := models.TournamentActive
		count, err := s.tournamentRepo.Count(gCtx, &active)
		stats.ActiveTournaments = count
		return err
	})
	g.Go(func() error {
		count, err := s.matchRepo.Count(gCtx)
		stats.MatchesTotal = count
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
