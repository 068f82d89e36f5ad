package services

import (
	"context"
	"testing"
	"time"

	"github.com/dojoverse/dojo-system/models"
	"github.com/dojoverse/dojo-system/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMemberRepo struct {
	members map[int]*models.Member
	nextID  int
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: make(map[int]*models.Member), nextID: 1}
}

func (r *fakeMemberRepo) Create(ctx context.Context, member *models.Member) error {
	member.ID = r.nextID
	r.nextID++
	copied := *member
	r.members[member.ID] = &copied
	return nil
}

func (r *fakeMemberRepo) GetByID(ctx context.Context, id int) (*models.Member, error) {
	m, ok := r.members[id]
	if !ok {
		return nil, repositories.ErrMemberNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMemberRepo) GetByBadgeToken(ctx context.Context, token string) (*models.Member, error) {
	for _, m := range r.members {
		if m.BadgeToken == token {
			copied := *m
			return &copied, nil
		}
	}
	return nil, repositories.ErrMemberNotFound
}

func (r *fakeMemberRepo) List(ctx context.Context, status *models.MemberStatus) ([]*models.Member, error) {
	out := make([]*models.Member, 0)
	for _, m := range r.members {
		if status == nil || m.Status == *status {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeMemberRepo) Update(ctx context.Context, member *models.Member) error {
	if _, ok := r.members[member.ID]; !ok {
		return repositories.ErrMemberNotFound
	}
	copied := *member
	r.members[member.ID] = &copied
	return nil
}

func (r *fakeMemberRepo) UpdatePhotoKey(ctx context.Context, id int, key *string) error {
	m, ok := r.members[id]
	if !ok {
		return repositories.ErrMemberNotFound
	}
	m.PhotoKey = key
	return nil
}

func (r *fakeMemberRepo) ExtendExpiry(ctx context.Context, exec repositories.SQLExecutor, id int, until time.Time) error {
	m, ok := r.members[id]
	if !ok {
		return repositories.ErrMemberNotFound
	}
	m.ExpiresAt = until
	if m.Status == models.MemberExpired {
		m.Status = models.MemberActive
	}
	return nil
}

func (r *fakeMemberRepo) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for _, m := range r.members {
		if m.Status == models.MemberActive && m.ExpiresAt.Before(now) {
			m.Status = models.MemberExpired
			n++
		}
	}
	return n, nil
}

func (r *fakeMemberRepo) Count(ctx context.Context, status *models.MemberStatus) (int, error) {
	members, _ := r.List(ctx, status)
	return len(members), nil
}

func (r *fakeMemberRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.members[id]; !ok {
		return repositories.ErrMemberNotFound
	}
	delete(r.members, id)
	return nil
}

type fakeAccessRepo struct {
	entries []*models.AccessLog
}

func (r *fakeAccessRepo) Create(ctx context.Context, entry *models.AccessLog) error {
	entry.ID = len(r.entries) + 1
	copied := *entry
	r.entries = append(r.entries, &copied)
	return nil
}

func (r *fakeAccessRepo) List(ctx context.Context, limit, offset int) ([]*models.AccessLog, error) {
	if offset >= len(r.entries) {
		return nil, nil
	}
	end := offset + limit
	if end > len(r.entries) {
		end = len(r.entries)
	}
	return r.entries[offset:end], nil
}

func (r *fakeAccessRepo) CountGrantedSince(ctx context.Context, since time.Time) (int, error) {
	count := 0
	for _, e := range r.entries {
		if e.Result == models.AccessGranted && !e.ScannedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func seedMember(t *testing.T, repo *fakeMemberRepo, status models.MemberStatus, expiresAt time.Time) *models.Member {
	t.Helper()
	member := &models.Member{
		FirstName:  "Kenji",
		LastName:   "Sato",
		Email:      "kenji@example.com",
		Status:     status,
		BadgeToken: "badge-" + string(status),
		ExpiresAt:  expiresAt,
	}
	require.NoError(t, repo.Create(context.Background(), member))
	return member
}

func TestValidateBadgeGranted(t *testing.T) {
	memberRepo := newFakeMemberRepo()
	accessRepo := &fakeAccessRepo{}
	hub := &fakeBroadcaster{}
	member := seedMember(t, memberRepo, models.MemberActive, time.Now().Add(30*24*time.Hour))

	service := NewAccessService(memberRepo, accessRepo, hub, testLogger())

	entry, err := service.ValidateBadge(context.Background(), member.BadgeToken)
	require.NoError(t, err)

	assert.Equal(t, models.AccessGranted, entry.Result)
	require.NotNil(t, entry.MemberID)
	assert.Equal(t, member.ID, *entry.MemberID)
	require.Len(t, accessRepo.entries, 1, "every scan lands in the log")
	assert.Len(t, hub.rooms, 1, "scans are pushed to the dashboard")
}

func TestValidateBadgeUnknownToken(t *testing.T) {
	memberRepo := newFakeMemberRepo()
	accessRepo := &fakeAccessRepo{}

	service := NewAccessService(memberRepo, accessRepo, &fakeBroadcaster{}, testLogger())

	entry, err := service.ValidateBadge(context.Background(), "no-such-badge")
	require.NoError(t, err, "an unknown badge is a denial, not an error")

	assert.Equal(t, models.AccessUnknownBadge, entry.Result)
	assert.Nil(t, entry.MemberID)
	assert.Len(t, accessRepo.entries, 1, "denials are logged too")
}

func TestValidateBadgeSuspendedMember(t *testing.T) {
	memberRepo := newFakeMemberRepo()
	accessRepo := &fakeAccessRepo{}
	member := seedMember(t, memberRepo, models.MemberSuspended, time.Now().Add(30*24*time.Hour))

	service := NewAccessService(memberRepo, accessRepo, &fakeBroadcaster{}, testLogger())

	entry, err := service.ValidateBadge(context.Background(), member.BadgeToken)
	require.NoError(t, err)

	assert.Equal(t, models.AccessSuspended, entry.Result)
}

func TestValidateBadgeLapsedMembership(t *testing.T) {
	memberRepo := newFakeMemberRepo()
	accessRepo := &fakeAccessRepo{}
	// Still flagged active, but past the paid-through date. The sweep may
	// not have run yet; the scan must still deny.
	member := seedMember(t, memberRepo, models.MemberActive, time.Now().Add(-time.Hour))

	service := NewAccessService(memberRepo, accessRepo, &fakeBroadcaster{}, testLogger())

	entry, err := service.ValidateBadge(context.Background(), member.BadgeToken)
	require.NoError(t, err)

	assert.Equal(t, models.AccessExpired, entry.Result)
}

func TestValidateBadgeEmptyToken(t *testing.T) {
	service := NewAccessService(newFakeMemberRepo(), &fakeAccessRepo{}, &fakeBroadcaster{}, testLogger())

	_, err := service.ValidateBadge(context.Background(), "")
	assert.ErrorIs(t, err, ErrBadgeTokenRequired)
}

func TestListAccessLogClampsLimit(t *testing.T) {
	memberRepo := newFakeMemberRepo()
	accessRepo := &fakeAccessRepo{}
	member := seedMember(t, memberRepo, models.MemberActive, time.Now().Add(30*24*time.Hour))

	service := NewAccessService(memberRepo, accessRepo, &fakeBroadcaster{}, testLogger())

	for i := 0; i < 60; i++ {
		_, err := service.ValidateBadge(context.Background(), member.BadgeToken)
		require.NoError(t, err)
	}

	entries, err := service.ListAccessLog(context.Background(), -1, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 50, "non-positive limits fall back to the default page size")
}
