package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dojoverse/dojo-system/models"
	"github.com/lib/pq"
)

var (
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberEmailConflict = errors.New("member email already in use")
	ErrMemberBadgeConflict = errors.New("badge token already in use")
)

type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id int) (*models.Member, error)
	GetByBadgeToken(ctx context.Context, token string) (*models.Member, error)
	List(ctx context.Context, status *models.MemberStatus) ([]*models.Member, error)
	Update(ctx context.Context, member *models.Member) error
	UpdatePhotoKey(ctx context.Context, id int, key *string) error
	ExtendExpiry(ctx context.Context, exec SQLExecutor, id int, until time.Time) error
	ExpireLapsed(ctx context.Context, now time.Time) (int64, error)
	Count(ctx context.Context, status *models.MemberStatus) (int, error)
	Delete(ctx context.Context, id int) error
}

type postgresMemberRepository struct {
	db *sql.DB
}

func NewPostgresMemberRepository(db *sql.DB) MemberRepository {
	return &postgresMemberRepository{db: db}
}

const memberColumns = `id, first_name, last_name, email, phone, belt_rank, status,
	badge_token, expires_at, photo_key, joined_at, created_at`

func (r *postgresMemberRepository) Create(ctx context.Context, member *models.Member) error {
	query := `
		INSERT INTO members
			(first_name, last_name, email, phone, belt_rank, status, badge_token, expires_at, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		member.FirstName,
		member.LastName,
		member.Email,
		member.Phone,
		member.BeltRank,
		member.Status,
		member.BadgeToken,
		member.ExpiresAt,
		member.JoinedAt,
	).Scan(&member.ID, &member.CreatedAt)

	return r.handleMemberError(err)
}

func (r *postgresMemberRepository) GetByID(ctx context.Context, id int) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	return r.scanMember(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresMemberRepository) GetByBadgeToken(ctx context.Context, token string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE badge_token = $1`
	return r.scanMember(r.db.QueryRowContext(ctx, query, token))
}

func (r *postgresMemberRepository) List(ctx context.Context, status *models.MemberStatus) ([]*models.Member, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + memberColumns + ` FROM members`)

	args := []interface{}{}
	if status != nil {
		queryBuilder.WriteString(" WHERE status = $1")
		args = append(args, *status)
	}
	queryBuilder.WriteString(" ORDER BY last_name ASC, first_name ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	members := make([]*models.Member, 0)
	for rows.Next() {
		member := &models.Member{}
		if scanErr := rows.Scan(
			&member.ID,
			&member.FirstName,
			&member.LastName,
			&member.Email,
			&member.Phone,
			&member.BeltRank,
			&member.Status,
			&member.BadgeToken,
			&member.ExpiresAt,
			&member.PhotoKey,
			&member.JoinedAt,
			&member.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", scanErr)
		}
		members = append(members, member)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during member rows iteration: %w", err)
	}
	return members, nil
}

func (r *postgresMemberRepository) Update(ctx context.Context, member *models.Member) error {
	query := `
		UPDATE members
		SET first_name = $1, last_name = $2, email = $3, phone = $4,
		    belt_rank = $5, status = $6, expires_at = $7
		WHERE id = $8`

	result, err := r.db.ExecContext(ctx, query,
		member.FirstName,
		member.LastName,
		member.Email,
		member.Phone,
		member.BeltRank,
		member.Status,
		member.ExpiresAt,
		member.ID,
	)
	if err != nil {
		return r.handleMemberError(err)
	}
	return checkAffectedRows(result, ErrMemberNotFound)
}

func (r *postgresMemberRepository) UpdatePhotoKey(ctx context.Context, id int, key *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE members SET photo_key = $1 WHERE id = $2`, key, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMemberNotFound)
}

func (r *postgresMemberRepository) ExtendExpiry(ctx context.Context, exec SQLExecutor, id int, until time.Time) error {
	// A payment also reactivates an expired membership.
	query := `
		UPDATE members
		SET expires_at = $1,
		    status = CASE WHEN status = 'expired' THEN 'active' ELSE status END
		WHERE id = $2`

	result, err := exec.ExecContext(ctx, query, until, id)
	if err != nil {
		return fmt.Errorf("failed to extend expiry for member %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMemberNotFound)
}

func (r *postgresMemberRepository) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE members
		SET status = 'expired'
		WHERE status = 'active' AND expires_at < $1`

	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire lapsed members: %w", err)
	}
	return result.RowsAffected()
}

func (r *postgresMemberRepository) Count(ctx context.Context, status *models.MemberStatus) (int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT COUNT(*) FROM members`)

	args := []interface{}{}
	if status != nil {
		queryBuilder.WriteString(" WHERE status = $1")
		args = append(args, *status)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, queryBuilder.String(), args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}

func (r *postgresMemberRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMemberNotFound)
}

func (r *postgresMemberRepository) scanMember(row *sql.Row) (*models.Member, error) {
	member := &models.Member{}
	err := row.Scan(
		&member.ID,
		&member.FirstName,
		&member.LastName,
		&member.Email,
		&member.Phone,
		&member.BeltRank,
		&member.Status,
		&member.BadgeToken,
		&member.ExpiresAt,
		&member.PhotoKey,
		&member.JoinedAt,
		&member.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to scan member: %w", err)
	}
	return member, nil
}

func (r *postgresMemberRepository) handleMemberError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "members_email_key":
			return ErrMemberEmailConflict
		case "members_badge_token_key":
			return ErrMemberBadgeConflict
		}
	}
	return err
}
