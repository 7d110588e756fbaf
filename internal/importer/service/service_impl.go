package service

import (
	"context"
	"errors"
	"strings"

	customerdomain "github.com/toty12222/controlo-fibra-netkamba/internal/customer/domain"
	importerdomain "github.com/toty12222/controlo-fibra-netkamba/internal/importer/domain"
	ledgerdomain "github.com/toty12222/controlo-fibra-netkamba/internal/ledger/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	CustomerSvc customerdomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	customerSvc customerdomain.Service
}

func NewService(p Params) importerdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("importer.service"),
		customerSvc: p.CustomerSvc,
	}
}

func (s *Service) Import(ctx context.Context, rows []customerdomain.RegisterRequest) (importerdomain.ImportResult, error) {
	if len(rows) == 0 {
		return importerdomain.ImportResult{}, importerdomain.ErrEmptyBatch
	}

	// Validate the whole batch up front so a bad row never costs a
	// transaction, then register inside one transaction so the batch
	// commits or rolls back as a unit.
	rowErrs := make([]importerdomain.RowError, 0)
	for i := range rows {
		rows[i].Name = strings.TrimSpace(rows[i].Name)
		if err := rows[i].Validate(); err != nil {
			rowErrs = append(rowErrs, rowError(i, err))
		}
	}
	if len(rowErrs) > 0 {
		s.log.Warn("import batch rejected",
			zap.Int("rows", len(rows)),
			zap.Int("invalid_rows", len(rowErrs)),
		)
		// Imported counts the rows that would have gone through, so a
		// rejected batch still tells the operator how close it was.
		return importerdomain.ImportResult{
			Imported: len(rows) - len(rowErrs),
			Errors:   rowErrs,
		}, importerdomain.ErrBatchRejected
	}

	registered := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			if _, err := s.customerSvc.RegisterTx(ctx, tx, rows[i]); err != nil {
				rowErrs = append(rowErrs, rowError(i, err))
				return err
			}
			registered++
		}
		return nil
	})
	if err != nil {
		if len(rowErrs) > 0 {
			return importerdomain.ImportResult{
				Imported: registered,
				Errors:   rowErrs,
			}, importerdomain.ErrBatchRejected
		}
		return importerdomain.ImportResult{}, err
	}

	s.log.Info("import batch committed", zap.Int("imported", len(rows)))
	return importerdomain.ImportResult{Imported: len(rows)}, nil
}

func rowError(index int, err error) importerdomain.RowError {
	field := ""
	switch {
	case errors.Is(err, customerdomain.ErrInvalidName):
		field = "name"
	case errors.Is(err, customerdomain.ErrInvalidMbps):
		field = "mbps"
	case errors.Is(err, customerdomain.ErrInvalidPaymentDay):
		field = "payment_day"
	case errors.Is(err, customerdomain.ErrInvalidContractDate):
		field = "contract_date"
	case errors.Is(err, customerdomain.ErrInvalidState):
		field = "state"
	case errors.Is(err, ledgerdomain.ErrInvalidAmount):
		field = "monthly_value"
	case errors.Is(err, ledgerdomain.ErrDuplicateLedgerEntry):
		field = "customer_id"
	}
	return importerdomain.RowError{Index: index, Field: field, Cause: err.Error()}
}
