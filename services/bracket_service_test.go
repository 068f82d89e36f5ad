package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/dojoverse/dojo-system/brackets"
	"github.com/dojoverse/dojo-system/models"
	"github.com/dojoverse/dojo-system/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTxRunner runs fn directly; the in-memory repositories ignore exec.
type fakeTxRunner struct{}

func (fakeTxRunner) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeBroadcaster struct {
	rooms    []string
	messages []interface{}
}

func (b *fakeBroadcaster) BroadcastToRoom(room string, message interface{}) {
	b.rooms = append(b.rooms, room)
	b.messages = append(b.messages, message)
}

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament)}
}

func (r *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	t.ID = len(r.tournaments) + 1
	t.CreatedAt = time.Now()
	r.tournaments[t.ID] = t
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context) ([]*models.Tournament, error) {
	out := make([]*models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		copied := *t
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeTournamentRepo) Update(ctx context.Context, t *models.Tournament) error {
	if _, ok := r.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	r.tournaments[t.ID] = t
	return nil
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTournamentRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

func (r *fakeTournamentRepo) Count(ctx context.Context, status *models.TournamentStatus) (int, error) {
	count := 0
	for _, t := range r.tournaments {
		if status == nil || t.Status == *status {
			count++
		}
	}
	return count, nil
}

type fakeTeamRepo struct {
	teams  map[int]*models.Team
	nextID int
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[int]*models.Team), nextID: 1}
}

func (r *fakeTeamRepo) Create(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
	team.ID = r.nextID
	r.nextID++
	r.teams[team.ID] = team
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	t, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTeamRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	out := make([]*models.Team, 0)
	for _, t := range r.teams {
		if t.TournamentID == tournamentID {
			copied := *t
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTeamRepo) UpdateLogoKey(ctx context.Context, id int, key *string) error {
	t, ok := r.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.LogoKey = key
	return nil
}

func (r *fakeTeamRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(r.teams, id)
	return nil
}

type fakeMatchRepo struct {
	matches map[int]*models.Match
	nextID  int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]*models.Match), nextID: 1}
}

func (r *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	match.ID = r.nextID
	match.CreatedAt = time.Now()
	r.nextID++
	copied := *match
	r.matches[match.ID] = &copied
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMatchRepo) ListByTournament(ctx context.Context, tournamentID int, round *int) ([]*models.Match, error) {
	out := make([]*models.Match, 0)
	for _, m := range r.matches {
		if m.TournamentID != tournamentID {
			continue
		}
		if round != nil && m.Round != *round {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeMatchRepo) ListByRound(ctx context.Context, exec repositories.SQLExecutor, tournamentID, round int) ([]*models.Match, error) {
	return r.ListByTournament(ctx, tournamentID, &round)
}

func (r *fakeMatchRepo) UpdateWinner(ctx context.Context, exec repositories.SQLExecutor, id int, winnerID int) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if m.WinnerID != nil {
		return repositories.ErrMatchAlreadyDecided
	}
	m.WinnerID = &winnerID
	return nil
}

func (r *fakeMatchRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	for id, m := range r.matches {
		if m.TournamentID == tournamentID {
			delete(r.matches, id)
		}
	}
	return nil
}

func (r *fakeMatchRepo) Count(ctx context.Context) (int, error) {
	return len(r.matches), nil
}

type bracketFixture struct {
	service        BracketService
	tournamentRepo *fakeTournamentRepo
	teamRepo       *fakeTeamRepo
	matchRepo      *fakeMatchRepo
	hub            *fakeBroadcaster
	tournamentID   int
}

func newBracketFixture(t *testing.T, teamCount int) *bracketFixture {
	t.Helper()

	tournamentRepo := newFakeTournamentRepo()
	teamRepo := newFakeTeamRepo()
	matchRepo := newFakeMatchRepo()
	hub := &fakeBroadcaster{}

	tournament := &models.Tournament{Name: "Spring Cup", Status: models.TournamentActive, StartDate: time.Now()}
	require.NoError(t, tournamentRepo.Create(context.Background(), tournament))

	for i := 0; i < teamCount; i++ {
		team := &models.Team{TournamentID: tournament.ID, Name: fmt.Sprintf("Team %d", i+1)}
		require.NoError(t, teamRepo.Create(context.Background(), nil, team))
	}

	generator := brackets.NewSingleElimination(rand.New(rand.NewSource(1)))
	service := NewBracketService(fakeTxRunner{}, tournamentRepo, teamRepo, matchRepo, generator, hub, testLogger())

	return &bracketFixture{
		service:        service,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		hub:            hub,
		tournamentID:   tournament.ID,
	}
}

func (f *bracketFixture) status(t *testing.T) models.TournamentStatus {
	t.Helper()
	tournament, err := f.tournamentRepo.GetByID(context.Background(), f.tournamentID)
	require.NoError(t, err)
	return tournament.Status
}

func TestGenerateBracketFourTeams(t *testing.T) {
	f := newBracketFixture(t, 4)

	matches, err := f.service.GenerateBracket(context.Background(), f.tournamentID)
	require.NoError(t, err)

	require.Len(t, matches, 2)
	seen := make(map[int]bool)
	for _, m := range matches {
		assert.Equal(t, 1, m.Round)
		assert.Equal(t, models.MatchPending, m.State())
		seen[*m.TeamAID] = true
		seen[*m.TeamBID] = true
	}
	assert.Len(t, seen, 4, "every team plays exactly once in round 1")
	assert.Equal(t, models.TournamentActive, f.status(t))
	assert.NotEmpty(t, f.hub.rooms, "bracket generation must be broadcast")
}

func TestGenerateBracketOddTeamsGetsBye(t *testing.T) {
	f := newBracketFixture(t, 5)

	matches, err := f.service.GenerateBracket(context.Background(), f.tournamentID)
	require.NoError(t, err)

	require.Len(t, matches, 3)
	byes := 0
	for _, m := range matches {
		if m.State() == models.MatchBye {
			byes++
			assert.NotNil(t, m.WinnerID, "a bye is decided at creation")
		}
	}
	assert.Equal(t, 1, byes)
	assert.Equal(t, models.TournamentActive, f.status(t))
}

func TestGenerateBracketSingleTeamCompletesImmediately(t *testing.T) {
	f := newBracketFixture(t, 1)

	matches, err := f.service.GenerateBracket(context.Background(), f.tournamentID)
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.Equal(t, models.MatchBye, matches[0].State())
	assert.Equal(t, models.TournamentCompleted, f.status(t))
}

func TestGenerateBracketNoTeams(t *testing.T) {
	f := newBracketFixture(t, 0)

	_, err := f.service.GenerateBracket(context.Background(), f.tournamentID)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestGenerateBracketUnknownTournament(t *testing.T) {
	f := newBracketFixture(t, 4)

	_, err := f.service.GenerateBracket(context.Background(), 999)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestGenerateBracketReplacesExistingMatches(t *testing.T) {
	f := newBracketFixture(t, 4)

	first, err := f.service.GenerateBracket(context.Background(), f.tournamentID)
	require.NoError(t, err)

	second, err := f.service.GenerateBracket(context.Background(), f.tournamentID)
	require.NoError(t, err)
	require.Len(t, second, 2)

	all, err := f.matchRepo.ListByTournament(context.Background(), f.tournamentID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2, "regeneration must wipe the previous bracket")
	for _, old := range first {
		_, err := f.matchRepo.GetByID(context.Background(), old.ID)
		assert.ErrorIs(t, err, repositories.ErrMatchNotFound)
	}
}

func TestRecordResultRejectsOutsideWinner(t *testing.T) {
	f := newBracketFixture(t, 4)

	matches, err := f.service.GenerateBracket(context.Background(), f.tournamentID)
	require.NoError(t, err)

	_, err = f.service.RecordResult(context.Background(), matches[0].ID, 999)
	assert.ErrorIs(t, err, ErrInvalidMatchWinner)
}

func TestRecordResultRejectsDoubleDecision(t *testing.T) {
	f := newBracketFixture(t, 4)

	matches, err := f.service.GenerateBracket(context.Background(), f.tournamentID)
	require.NoError(t, err)

	match := matches[0]
	_, err = f.service.RecordResult(context.Background(), match.ID, *match.TeamAID)
	require.NoError(t, err)

	_, err = f.service.RecordResult(context.Background(), match.ID, *match.TeamBID)
	assert.ErrorIs(t, err, ErrMatchAlreadyDecided)
}

func TestRecordResultUnknownMatch(t *testing.T) {
	f := newBracketFixture(t, 4)

	_, err := f.service.RecordResult(context.Background(), 42, 1)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestRecordResultAdvancesRound(t *testing.T) {
	f := newBracketFixture(t, 4)

	matches, err := f.service.GenerateBracket(context.Background(), f.tournamentID)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// Deciding the first match must not open round 2 yet.
	_, err = f.service.RecordResult(context.Background(), matches[0].ID, *matches[0].TeamAID)
	require.NoError(t, err)

	round2 := 2
	partial, err := f.matchRepo.ListByTournament(context.Background(), f.tournamentID, &round2)
	require.NoError(t, err)
	assert.Empty(t, partial, "round 2 must wait for the whole round to finish")

	_, err = f.service.RecordResult(context.Background(), matches[1].ID, *matches[1].TeamBID)
	require.NoError(t, err)

	final, err := f.matchRepo.ListByTournament(context.Background(), f.tournamentID, &round2)
	require.NoError(t, err)
	require.Len(t, final, 1)
	assert.Equal(t, *matches[0].TeamAID, *final[0].TeamAID, "winners pair in bracket order")
	assert.Equal(t, *matches[1].TeamBID, *final[0].TeamBID)
	assert.Equal(t, models.TournamentActive, f.status(t))
}

func TestRecordResultFinalCompletesTournament(t *testing.T) {
	f := newBracketFixture(t, 2)

	matches, err := f.service.GenerateBracket(context.Background(), f.tournamentID)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	_, err = f.service.RecordResult(context.Background(), matches[0].ID, *matches[0].TeamAID)
	require.NoError(t, err)

	assert.Equal(t, models.TournamentCompleted, f.status(t))

	all, err := f.matchRepo.ListByTournament(context.Background(), f.tournamentID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1, "no further rounds after the final")
}

func TestFiveTeamBracketRunsToCompletion(t *testing.T) {
	f := newBracketFixture(t, 5)

	_, err := f.service.GenerateBracket(context.Background(), f.tournamentID)
	require.NoError(t, err)

	// Play every pending match, always taking side A, until nothing is left.
	for rounds := 0; ; rounds++ {
		require.Less(t, rounds, 10, "bracket must terminate")

		all, err := f.matchRepo.ListByTournament(context.Background(), f.tournamentID, nil)
		require.NoError(t, err)

		pending := make([]*models.Match, 0)
		for _, m := range all {
			if m.State() == models.MatchPending {
				pending = append(pending, m)
			}
		}
		if len(pending) == 0 {
			break
		}
		for _, m := range pending {
			_, err := f.service.RecordResult(context.Background(), m.ID, *m.TeamAID)
			require.NoError(t, err)
		}
	}

	assert.Equal(t, models.TournamentCompleted, f.status(t))

	// 5 teams: 3 matches in round 1, then 3 more across later rounds at most.
	all, err := f.matchRepo.ListByTournament(context.Background(), f.tournamentID, nil)
	require.NoError(t, err)
	for _, m := range all {
		assert.True(t, m.Decided(), "match %d left undecided", m.ID)
	}

	lastRound := all[len(all)-1].Round
	finals, err := f.matchRepo.ListByTournament(context.Background(), f.tournamentID, &lastRound)
	require.NoError(t, err)
	require.Len(t, finals, 1, "the last round is a single final")
}
