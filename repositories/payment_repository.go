package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dojoverse/dojo-system/models"
	"github.com/lib/pq"
)

var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrPaymentMemberInvalid = errors.New("payment member conflict or invalid")
)

type PaymentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, payment *models.Payment) error
	ListByMember(ctx context.Context, memberID int) ([]*models.Payment, error)
	List(ctx context.Context, limit, offset int) ([]*models.Payment, error)
	SumSince(ctx context.Context, since time.Time) (int64, error)
}

type postgresPaymentRepository struct {
	db *sql.DB
}

func NewPostgresPaymentRepository(db *sql.DB) PaymentRepository {
	return &postgresPaymentRepository{db: db}
}

func (r *postgresPaymentRepository) Create(ctx context.Context, exec SQLExecutor, payment *models.Payment) error {
	query := `
		INSERT INTO payments (member_id, amount_cents, currency, method, reference, period_months, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		payment.MemberID,
		payment.AmountCents,
		payment.Currency,
		payment.Method,
		payment.Reference,
		payment.PeriodMonths,
		payment.PaidAt,
	).Scan(&payment.ID, &payment.CreatedAt)

	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Constraint == "payments_member_id_fkey" {
			return ErrPaymentMemberInvalid
		}
	}
	return err
}

func (r *postgresPaymentRepository) ListByMember(ctx context.Context, memberID int) ([]*models.Payment, error) {
	query := paymentSelect + ` WHERE member_id = $1 ORDER BY paid_at DESC`
	return r.queryPayments(ctx, query, memberID)
}

func (r *postgresPaymentRepository) List(ctx context.Context, limit, offset int) ([]*models.Payment, error) {
	query := paymentSelect + ` ORDER BY paid_at DESC LIMIT $1 OFFSET $2`
	return r.queryPayments(ctx, query, limit, offset)
}

func (r *postgresPaymentRepository) SumSince(ctx context.Context, since time.Time) (int64, error) {
	var total int64
	query := `SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE paid_at >= $1`
	if err := r.db.QueryRowContext(ctx, query, since).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum payments since %v: %w", since, err)
	}
	return total, nil
}

const paymentSelect = `
	SELECT id, member_id, amount_cents, currency, method, reference, period_months, paid_at, created_at
	FROM payments`

func (r *postgresPaymentRepository) queryPayments(ctx context.Context, query string, args ...interface{}) ([]*models.Payment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	payments := make([]*models.Payment, 0)
	for rows.Next() {
		payment := &models.Payment{}
		if scanErr := rows.Scan(
			&payment.ID,
			&payment.MemberID,
			&payment.AmountCents,
			&payment.Currency,
			&payment.Method,
			&payment.Reference,
			&payment.PeriodMonths,
			&payment.PaidAt,
			&payment.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", scanErr)
		}
		payments = append(payments, payment)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during payment rows iteration: %w", err)
	}
	return payments, nil
}
