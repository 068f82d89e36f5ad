package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dojoverse/dojo-system/brackets"
	"github.com/dojoverse/dojo-system/models"
	"github.com/dojoverse/dojo-system/realtime"
	"github.com/dojoverse/dojo-system/repositories"
)

type BracketService interface {
	// GenerateBracket wipes any existing bracket for the tournament and seeds
	// round 1 from the registered teams. Calling it again reshuffles from
	// scratch and puts the tournament back to active.
	GenerateBracket(ctx context.Context, tournamentID int) ([]*models.Match, error)
	// RecordResult writes the winner of one match. When that completes the
	// round, the next round is created from the winners in bracket order; when
	// fewer than two winners remain the tournament is marked completed. All of
	// it happens in a single transaction.
	RecordResult(ctx context.Context, matchID, winnerTeamID int) (*models.Match, error)
	GetBracket(ctx context.Context, tournamentID int) ([]*models.Match, error)
}

type bracketService struct {
	txRunner       repositories.TxRunner
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	generator      *brackets.SingleElimination
	hub            Broadcaster
	logger         *slog.Logger
}

func NewBracketService(
	txRunner repositories.TxRunner,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	generator *brackets.SingleElimination,
	hub Broadcaster,
	logger *slog.Logger,
) BracketService {
	if generator == nil {
		generator = brackets.NewSingleElimination(nil)
	}
	return &bracketService{
		txRunner:       txRunner,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		generator:      generator,
		hub:            hub,
		logger:         logger,
	}
}

func (s *bracketService) GenerateBracket(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, fmt.Errorf("%w: tournament has no teams to seed", ErrValidationFailed)
	}

	teamIDs := make([]int, len(teams))
	for i, team := range teams {
		teamIDs[i] = team.ID
	}

	pairings := s.generator.SeedRound1(teamIDs)
	matches := make([]*models.Match, 0, len(pairings))

	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.DeleteByTournament(ctx, exec, tournamentID); err != nil {
			return err
		}
		for _, p := range pairings {
			match := matchFromPairing(tournamentID, 1, p)
			if err := s.matchRepo.Create(ctx, exec, match); err != nil {
				return err
			}
			matches = append(matches, match)
		}

		// A single team seeds one bye and there is nothing left to play.
		status := models.TournamentActive
		if len(matches) == 1 && matches[0].Decided() {
			status = models.TournamentCompleted
		}
		return s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, status)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate bracket for tournament %d: %w", tournamentID, err)
	}

	s.logger.Info("bracket generated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("teams", len(teams)),
		slog.Int("matches", len(matches)))

	s.broadcastBracket(tournament.ID)
	return matches, nil
}

func (s *bracketService) RecordResult(ctx context.Context, matchID, winnerTeamID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	if match.Decided() {
		return nil, ErrMatchAlreadyDecided
	}
	if !match.HasSide(winnerTeamID) {
		return nil, ErrInvalidMatchWinner
	}

	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.UpdateWinner(ctx, exec, matchID, winnerTeamID); err != nil {
			return err
		}
		return s.advanceRound(ctx, exec, match.TournamentID, match.Round)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrMatchAlreadyDecided) {
			return nil, ErrMatchAlreadyDecided
		}
		return nil, fmt.Errorf("failed to record result for match %d: %w", matchID, err)
	}

	match.WinnerID = &winnerTeamID
	s.broadcastBracket(match.TournamentID)
	return match, nil
}

func (s *bracketService) GetBracket(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return s.matchRepo.ListByTournament(ctx, tournamentID, nil)
}

// advanceRound runs inside the result transaction. If the round still has
// undecided matches it does nothing; otherwise it either seeds the next round
// from the winners or, with fewer than two winners left, closes the
// tournament.
func (s *bracketService) advanceRound(ctx context.Context, exec repositories.SQLExecutor, tournamentID, round int) error {
	roundMatches, err := s.matchRepo.ListByRound(ctx, exec, tournamentID, round)
	if err != nil {
		return err
	}

	// Winners in match id order, the order the round was seeded in.
	winnerIDs := make([]int, 0, len(roundMatches))
	for _, m := range roundMatches {
		if !m.Decided() {
			return nil
		}
		winnerIDs = append(winnerIDs, *m.WinnerID)
	}

	pairings := s.generator.PairWinners(winnerIDs)
	if pairings == nil {
		s.logger.Info("tournament completed",
			slog.Int("tournament_id", tournamentID),
			slog.Int("final_round", round))
		return s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.TournamentCompleted)
	}

	for _, p := range pairings {
		if err := s.matchRepo.Create(ctx, exec, matchFromPairing(tournamentID, round+1, p)); err != nil {
			return err
		}
	}
	return nil
}

func (s *bracketService) broadcastBracket(tournamentID int) {
	if s.hub == nil {
		return
	}
	room := realtime.TournamentRoom(tournamentID)
	s.hub.BroadcastToRoom(room, realtime.Message{
		Type:    EventBracketUpdated,
		Payload: map[string]int{"tournament_id": tournamentID},
		Room:    room,
	})
}

func matchFromPairing(tournamentID, round int, p brackets.Pairing) *models.Match {
	teamA := p.TeamA
	return &models.Match{
		TournamentID: tournamentID,
		Round:        round,
		TeamAID:      &teamA,
		TeamBID:      p.TeamB,
		WinnerID:     p.Winner(),
	}
}
