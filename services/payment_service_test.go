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

type fakeMailer struct {
	welcomes int
	receipts int
}

func (m *fakeMailer) SendWelcomeEmail(to, firstName string) error {
	m.welcomes++
	return nil
}

func (m *fakeMailer) SendPaymentReceipt(to string, amountCents int64, currency, reference string) error {
	m.receipts++
	return nil
}

type fakePaymentRepo struct {
	payments []*models.Payment
}

func (r *fakePaymentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, payment *models.Payment) error {
	payment.ID = len(r.payments) + 1
	copied := *payment
	r.payments = append(r.payments, &copied)
	return nil
}

func (r *fakePaymentRepo) ListByMember(ctx context.Context, memberID int) ([]*models.Payment, error) {
	out := make([]*models.Payment, 0)
	for _, p := range r.payments {
		if p.MemberID == memberID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) List(ctx context.Context, limit, offset int) ([]*models.Payment, error) {
	if offset >= len(r.payments) {
		return nil, nil
	}
	end := offset + limit
	if end > len(r.payments) {
		end = len(r.payments)
	}
	return r.payments[offset:end], nil
}

func (r *fakePaymentRepo) SumSince(ctx context.Context, since time.Time) (int64, error) {
	var sum int64
	for _, p := range r.payments {
		if !p.PaidAt.Before(since) {
			sum += p.AmountCents
		}
	}
	return sum, nil
}

func TestRecordPaymentExtendsLiveMembership(t *testing.T) {
	memberRepo := newFakeMemberRepo()
	paymentRepo := &fakePaymentRepo{}
	mailer := &fakeMailer{}
	hub := &fakeBroadcaster{}

	paidThrough := time.Now().UTC().Add(10 * 24 * time.Hour)
	member := seedMember(t, memberRepo, models.MemberActive, paidThrough)

	service := NewPaymentService(fakeTxRunner{}, paymentRepo, memberRepo, mailer, hub, testLogger())

	payment, err := service.RecordPayment(context.Background(), RecordPaymentInput{
		MemberID:     member.ID,
		AmountCents:  5500,
		Method:       models.PaymentCard,
		PeriodMonths: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(5500), payment.AmountCents)
	assert.Equal(t, "EUR", payment.Currency, "currency defaults when omitted")
	assert.NotEmpty(t, payment.Reference)

	updated, err := memberRepo.GetByID(context.Background(), member.ID)
	require.NoError(t, err)
	want := paidThrough.AddDate(0, 2, 0)
	assert.WithinDuration(t, want, updated.ExpiresAt, time.Second,
		"a live membership extends from its current paid-through date")

	assert.Equal(t, 1, mailer.receipts)
	assert.Len(t, hub.rooms, 1)
}

func TestRecordPaymentRestartsLapsedMembership(t *testing.T) {
	memberRepo := newFakeMemberRepo()
	paymentRepo := &fakePaymentRepo{}

	member := seedMember(t, memberRepo, models.MemberExpired, time.Now().UTC().AddDate(0, -3, 0))

	service := NewPaymentService(fakeTxRunner{}, paymentRepo, memberRepo, &fakeMailer{}, &fakeBroadcaster{}, testLogger())

	_, err := service.RecordPayment(context.Background(), RecordPaymentInput{
		MemberID:     member.ID,
		AmountCents:  5500,
		Method:       models.PaymentCash,
		PeriodMonths: 1,
	})
	require.NoError(t, err)

	updated, err := memberRepo.GetByID(context.Background(), member.ID)
	require.NoError(t, err)

	want := time.Now().UTC().AddDate(0, 1, 0)
	assert.WithinDuration(t, want, updated.ExpiresAt, time.Minute,
		"a lapsed membership restarts from today, not from the old date")
	assert.Equal(t, models.MemberActive, updated.Status, "payment reactivates an expired member")
}

func TestRecordPaymentValidation(t *testing.T) {
	memberRepo := newFakeMemberRepo()
	member := seedMember(t, memberRepo, models.MemberActive, time.Now().Add(24*time.Hour))

	service := NewPaymentService(fakeTxRunner{}, &fakePaymentRepo{}, memberRepo, &fakeMailer{}, &fakeBroadcaster{}, testLogger())

	cases := []struct {
		name    string
		input   RecordPaymentInput
		wantErr error
	}{
		{
			name:    "zero amount",
			input:   RecordPaymentInput{MemberID: member.ID, AmountCents: 0, Method: models.PaymentCard, PeriodMonths: 1},
			wantErr: ErrPaymentAmountInvalid,
		},
		{
			name:    "period too long",
			input:   RecordPaymentInput{MemberID: member.ID, AmountCents: 100, Method: models.PaymentCard, PeriodMonths: 25},
			wantErr: ErrPaymentPeriodInvalid,
		},
		{
			name:    "unknown method",
			input:   RecordPaymentInput{MemberID: member.ID, AmountCents: 100, Method: "crypto", PeriodMonths: 1},
			wantErr: ErrPaymentMethodInvalid,
		},
		{
			name:    "unknown member",
			input:   RecordPaymentInput{MemberID: 999, AmountCents: 100, Method: models.PaymentCard, PeriodMonths: 1},
			wantErr: ErrMemberNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.RecordPayment(context.Background(), tc.input)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
