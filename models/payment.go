package models

import "time"

type PaymentMethod string

const (
	PaymentCard     PaymentMethod = "card"
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
)

type Payment struct {
	ID       int `json:"id"`
	MemberID int `json:"member_id"`

	// AmountCents avoids floating point money.
	AmountCents int64         `json:"amount_cents"`
	Currency    string        `json:"currency"`
	Method      PaymentMethod `json:"method"`

	// Reference is a generated UUID handed to the payment provider.
	Reference string `json:"reference"`

	// PeriodMonths is how many months of membership this payment covers.
	PeriodMonths int `json:"period_months"`

	PaidAt    time.Time `json:"paid_at"`
	CreatedAt time.Time `json:"created_at"`
}
