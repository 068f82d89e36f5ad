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
	"github.com/google/uuid"
)

type RecordPaymentInput struct {
	MemberID     int                  `json:"member_id"`
	AmountCents  int64                `json:"amount_cents"`
	Currency     string               `json:"currency"`
	Method       models.PaymentMethod `json:"method"`
	PeriodMonths int                  `json:"period_months"`
}

type PaymentService interface {
	// RecordPayment stores the payment and extends the member's paid-through
	// date by the covered period, atomically.
	RecordPayment(ctx context.Context, input RecordPaymentInput) (*models.Payment, error)
	ListPayments(ctx context.Context, limit, offset int) ([]*models.Payment, error)
	ListMemberPayments(ctx context.Context, memberID int) ([]*models.Payment, error)
}

type paymentService struct {
	txRunner    repositories.TxRunner
	paymentRepo repositories.PaymentRepository
	memberRepo  repositories.MemberRepository
	email       Mailer
	hub         Broadcaster
	logger      *slog.Logger
}

func NewPaymentService(
	txRunner repositories.TxRunner,
	paymentRepo repositories.PaymentRepository,
	memberRepo repositories.MemberRepository,
	email Mailer,
	hub Broadcaster,
	logger *slog.Logger,
) PaymentService {
	return &paymentService{
		txRunner:    txRunner,
		paymentRepo: paymentRepo,
		memberRepo:  memberRepo,
		email:       email,
		hub:         hub,
		logger:      logger,
	}
}

func (s *paymentService) RecordPayment(ctx context.Context, input RecordPaymentInput) (*models.Payment, error) {
	if input.AmountCents <= 0 {
		return nil, ErrPaymentAmountInvalid
	}
	if input.PeriodMonths < 1 || input.PeriodMonths > 24 {
		return nil, ErrPaymentPeriodInvalid
	}
	switch input.Method {
	case models.PaymentCard, models.PaymentCash, models.PaymentTransfer:
	default:
		return nil, ErrPaymentMethodInvalid
	}

	member, err := s.memberRepo.GetByID(ctx, input.MemberID)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	currency := input.Currency
	if currency == "" {
		currency = "EUR"
	}

	now := time.Now().UTC()
	payment := &models.Payment{
		MemberID:     member.ID,
		AmountCents:  input.AmountCents,
		Currency:     currency,
		Method:       input.Method,
		Reference:    uuid.NewString(),
		PeriodMonths: input.PeriodMonths,
		PaidAt:       now,
	}

	// A lapsed membership restarts from today, a live one extends from its
	// current paid-through date.
	base := member.ExpiresAt
	if base.Before(now) {
		base = now
	}
	newExpiry := base.AddDate(0, input.PeriodMonths, 0)

	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.paymentRepo.Create(ctx, exec, payment); err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}
		return s.memberRepo.ExtendExpiry(ctx, exec, member.ID, newExpiry)
	})
	if err != nil {
		return nil, err
	}

	if err := s.email.SendPaymentReceipt(member.Email, payment.AmountCents, payment.Currency, payment.Reference); err != nil {
		s.logger.Error("failed to send payment receipt",
			slog.Int("member_id", member.ID), slog.Any("error", err))
	}

	if s.hub != nil {
		s.hub.BroadcastToRoom(realtime.DashboardRoom, realtime.Message{
			Type:    EventPaymentRecorded,
			Payload: payment,
			Room:    realtime.DashboardRoom,
		})
	}
	return payment, nil
}

func (s *paymentService) ListPayments(ctx context.Context, limit, offset int) ([]*models.Payment, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.paymentRepo.List(ctx, limit, offset)
}

func (s *paymentService) ListMemberPayments(ctx context.Context, memberID int) ([]*models.Payment, error) {
	if _, err := s.memberRepo.GetByID(ctx, memberID); err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return s.paymentRepo.ListByMember(ctx, memberID)
}
