package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// CreateInitialPaymentRequest seeds the first obligation for a customer.
type CreateInitialPaymentRequest struct {
	CustomerID    snowflake.ID
	Amount        int64
	ContractStart time.Time
	PaymentDay    int
}

// Ledger owns payment records and their state transitions.
type Ledger interface {
	CreateInitialPayment(ctx context.Context, req CreateInitialPaymentRequest) (*PaymentRecord, error)
	// CreateInitialPaymentTx runs inside a caller-owned transaction so
	// registration commits the customer, payment method and first
	// obligation atomically.
	CreateInitialPaymentTx(ctx context.Context, tx *gorm.DB, req CreateInitialPaymentRequest) (*PaymentRecord, error)
	// RecordPayment marks the outstanding obligation paid as of today
	// and opens the next cycle in the same transaction.
	RecordPayment(ctx context.Context, customerID snowflake.ID) (*PaymentRecord, error)
	// AdvanceCycle opens the next obligation for a customer whose
	// current cycle is settled. Fails when an unpaid record is still
	// outstanding.
	AdvanceCycle(ctx context.Context, customerID snowflake.ID) (*PaymentRecord, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]OverduePayment, error)
	ListDueInWindow(ctx context.Context, start, end time.Time) ([]PaymentRecord, error)
}

// Service is the package alias for Ledger.
type Service = Ledger

var (
	ErrInvalidCustomer      = errors.New("invalid_customer")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrDuplicateLedgerEntry = errors.New("duplicate_ledger_entry")
	ErrNoOutstandingPayment = errors.New("no_outstanding_payment")
	ErrInvalidWindow        = errors.New("invalid_window")
)
