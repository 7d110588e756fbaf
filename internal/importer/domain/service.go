package domain

import (
	"context"
	"errors"

	customerdomain "github.com/toty12222/controlo-fibra-netkamba/internal/customer/domain"
)

// RowError ties a validation failure back to the offending input row.
// Index is zero-based over the submitted batch.
type RowError struct {
	Index int    `json:"index"`
	Field string `json:"field"`
	Cause string `json:"cause"`
}

// ImportResult reports a batch outcome. Imported counts the rows that
// registered (or would have, on a rejected batch); a batch commits
// whole or not at all, so nothing is persisted whenever Errors is
// non-empty.
type ImportResult struct {
	Imported int        `json:"imported"`
	Errors   []RowError `json:"errors,omitempty"`
}

// Service loads customer batches from external systems.
type Service interface {
	// Import registers every row in a single transaction. Any invalid
	// row aborts the whole batch and nothing is persisted.
	Import(ctx context.Context, rows []customerdomain.RegisterRequest) (ImportResult, error)
}

var ErrEmptyBatch = errors.New("empty_batch")

// ErrBatchRejected marks a batch with at least one invalid row; the
// per-row detail travels in ImportResult.Errors.
var ErrBatchRejected = errors.New("batch_rejected")
