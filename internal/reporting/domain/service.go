package domain

import (
	"context"
	"errors"
	"time"
)

// Service exposes the back-office reporting surface.
type Service interface {
	// MonthlyPayments reports everything collected in the month holding
	// asOf, in the customer's local calendar.
	MonthlyPayments(ctx context.Context, asOf time.Time) (MonthlyPaymentsReport, error)
	// ContractExpirations bins every customer's payment method by how
	// soon it expires as of asOf.
	ContractExpirations(ctx context.Context, asOf time.Time) (ContractExpirationsReport, error)
	Overview(ctx context.Context, asOf time.Time) (Overview, error)
}

var ErrInvalidMonth = errors.New("invalid_month")
