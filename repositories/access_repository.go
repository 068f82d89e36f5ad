package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dojoverse/dojo-system/models"
)

type AccessRepository interface {
	Create(ctx context.Context, entry *models.AccessLog) error
	List(ctx context.Context, limit, offset int) ([]*models.AccessLog, error)
	CountGrantedSince(ctx context.Context, since time.Time) (int, error)
}

type postgresAccessRepository struct {
	db *sql.DB
}

func NewPostgresAccessRepository(db *sql.DB) AccessRepository {
	return &postgresAccessRepository{db: db}
}

func (r *postgresAccessRepository) Create(ctx context.Context, entry *models.AccessLog) error {
	query := `
		INSERT INTO access_logs (member_id, badge_token, result, scanned_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		entry.MemberID,
		entry.BadgeToken,
		entry.Result,
		entry.ScannedAt,
	).Scan(&entry.ID)
}

func (r *postgresAccessRepository) List(ctx context.Context, limit, offset int) ([]*models.AccessLog, error) {
	query := `
		SELECT id, member_id, badge_token, result, scanned_at
		FROM access_logs
		ORDER BY scanned_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query access logs: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.AccessLog, 0)
	for rows.Next() {
		entry := &models.AccessLog{}
		if scanErr := rows.Scan(
			&entry.ID,
			&entry.MemberID,
			&entry.BadgeToken,
			&entry.Result,
			&entry.ScannedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan access log row: %w", scanErr)
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during access log rows iteration: %w", err)
	}
	return entries, nil
}

func (r *postgresAccessRepository) CountGrantedSince(ctx context.Context, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM access_logs WHERE result = 'granted' AND scanned_at >= $1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count granted accesses: %w", err)
	}
	return count, nil
}
