package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Tracker owns each customer's active flag.
type Tracker interface {
	// SetActive upserts the current row. Setting the same value again
	// still refreshes last_status_change; operators use the timestamp
	// to see when the switch was last touched.
	SetActive(ctx context.Context, customerID snowflake.ID, active bool) error
	// IsActive defaults to true when no row exists.
	IsActive(ctx context.Context, customerID snowflake.ID) (bool, error)
}

// Service is the package alias for Tracker.
type Service = Tracker

var ErrInvalidCustomer = errors.New("invalid_customer")
