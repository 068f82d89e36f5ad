package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dojoverse/dojo-system/models"
)

var ErrClassNotFound = errors.New("class session not found")

type ClassRepository interface {
	Create(ctx context.Context, class *models.ClassSession) error
	GetByID(ctx context.Context, id int) (*models.ClassSession, error)
	List(ctx context.Context) ([]*models.ClassSession, error)
	Update(ctx context.Context, class *models.ClassSession) error
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
}

type postgresClassRepository struct {
	db *sql.DB
}

func NewPostgresClassRepository(db *sql.DB) ClassRepository {
	return &postgresClassRepository{db: db}
}

func (r *postgresClassRepository) Create(ctx context.Context, class *models.ClassSession) error {
	query := `
		INSERT INTO class_sessions (name, instructor, starts_at, duration_min, capacity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		class.Name,
		class.Instructor,
		class.StartsAt,
		class.DurationMin,
		class.Capacity,
	).Scan(&class.ID, &class.CreatedAt)
}

func (r *postgresClassRepository) GetByID(ctx context.Context, id int) (*models.ClassSession, error) {
	query := `
		SELECT id, name, instructor, starts_at, duration_min, capacity, created_at
		FROM class_sessions
		WHERE id = $1`

	class := &models.ClassSession{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&class.ID,
		&class.Name,
		&class.Instructor,
		&class.StartsAt,
		&class.DurationMin,
		&class.Capacity,
		&class.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("failed to scan class session %d: %w", id, err)
	}
	return class, nil
}

func (r *postgresClassRepository) List(ctx context.Context) ([]*models.ClassSession, error) {
	query := `
		SELECT id, name, instructor, starts_at, duration_min, capacity, created_at
		FROM class_sessions
		ORDER BY starts_at ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query class sessions: %w", err)
	}
	defer rows.Close()

	classes := make([]*models.ClassSession, 0)
	for rows.Next() {
		class := &models.ClassSession{}
		if scanErr := rows.Scan(
			&class.ID,
			&class.Name,
			&class.Instructor,
			&class.StartsAt,
			&class.DurationMin,
			&class.Capacity,
			&class.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan class session row: %w", scanErr)
		}
		classes = append(classes, class)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during class session rows iteration: %w", err)
	}
	return classes, nil
}

func (r *postgresClassRepository) Update(ctx context.Context, class *models.ClassSession) error {
	query := `
		UPDATE class_sessions
		SET name = $1, instructor = $2, starts_at = $3, duration_min = $4, capacity = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		class.Name,
		class.Instructor,
		class.StartsAt,
		class.DurationMin,
		class.Capacity,
		class.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrClassNotFound)
}

func (r *postgresClassRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM class_sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrClassNotFound)
}

func (r *postgresClassRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM class_sessions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count class sessions: %w", err)
	}
	return count, nil
}
