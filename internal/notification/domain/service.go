package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// AppendRequest describes one event to append to the log.
type AppendRequest struct {
	CustomerID snowflake.ID
	Message    string
	Category   Category
	// DedupeKey, when set, makes the append idempotent: a second append
	// with the same (customer, key) pair is silently dropped.
	DedupeKey string
	Metadata  map[string]any
}

// Service is the append-only notification log writer and reader.
type Service interface {
	Append(ctx context.Context, req AppendRequest) error
	// AppendTx writes inside a caller-owned transaction so the event
	// commits or rolls back with the mutation that caused it.
	AppendTx(ctx context.Context, tx *gorm.DB, req AppendRequest) error
	ListRecent(ctx context.Context, limit int) ([]NotificationEvent, error)
}

var (
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidMessage  = errors.New("invalid_message")
	ErrInvalidCategory = errors.New("invalid_category")
)
