package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/toty12222/controlo-fibra-netkamba/internal/clock"
	"github.com/toty12222/controlo-fibra-netkamba/internal/daterules"
	ledgerdomain "github.com/toty12222/controlo-fibra-netkamba/internal/ledger/domain"
	notificationdomain "github.com/toty12222/controlo-fibra-netkamba/internal/notification/domain"
	pkgdb "github.com/toty12222/controlo-fibra-netkamba/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	NotifSvc notificationdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	notifSvc notificationdomain.Service
}

func NewService(p Params) ledgerdomain.Ledger {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("ledger.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		notifSvc: p.NotifSvc,
	}
}

func (s *Service) CreateInitialPayment(ctx context.Context, req ledgerdomain.CreateInitialPaymentRequest) (*ledgerdomain.PaymentRecord, error) {
	var record *ledgerdomain.PaymentRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		record, err = s.CreateInitialPaymentTx(ctx, tx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) CreateInitialPaymentTx(ctx context.Context, tx *gorm.DB, req ledgerdomain.CreateInitialPaymentRequest) (*ledgerdomain.PaymentRecord, error) {
	if tx == nil {
		return nil, errors.New("missing_transaction")
	}
	if req.CustomerID == 0 {
		return nil, ledgerdomain.ErrInvalidCustomer
	}
	if req.Amount <= 0 {
		return nil, ledgerdomain.ErrInvalidAmount
	}

	outstanding, err := s.hasOutstanding(ctx, tx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if outstanding {
		return nil, ledgerdomain.ErrDuplicateLedgerEntry
	}

	dueDate, err := daterules.FirstDueDate(req.ContractStart, req.PaymentDay, s.clock.Now())
	if err != nil {
		return nil, err
	}

	return s.insertCycle(ctx, tx, req.CustomerID, dueDate, req.Amount)
}

func (s *Service) RecordPayment(ctx context.Context, customerID snowflake.ID) (*ledgerdomain.PaymentRecord, error) {
	if customerID == 0 {
		return nil, ledgerdomain.ErrInvalidCustomer
	}

	var paid *ledgerdomain.PaymentRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.findOutstanding(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if current == nil {
			return ledgerdomain.ErrNoOutstandingPayment
		}

		today := s.clock.Now()
		// The paid flag only ever goes false to true; the WHERE clause
		// guards against racing a concurrent settle.
		result := tx.WithContext(ctx).Exec(
			`UPDATE payments
			 SET paid = 1, paid_date = ?
			 WHERE id = ? AND paid = 0`,
			today,
			current.ID,
		)
		if result.Error != nil {
			return pkgdb.WrapError(result.Error)
		}
		if result.RowsAffected == 0 {
			return ledgerdomain.ErrNoOutstandingPayment
		}

		if err := s.notifSvc.AppendTx(ctx, tx, notificationdomain.AppendRequest{
			CustomerID: customerID,
			Message:    fmt.Sprintf("Payment of %d received for cycle due %s", current.Amount, current.DueDate.Format(dateLayout)),
			Category:   notificationdomain.CategoryInfo,
			Metadata: map[string]any{
				"payment_id": current.ID.String(),
				"amount":     current.Amount,
			},
		}); err != nil {
			return err
		}

		// Settling a cycle opens the next one right away so the
		// customer always carries exactly one outstanding obligation.
		if _, err := s.insertCycle(ctx, tx, customerID, daterules.NextDueDate(current.DueDate), current.Amount); err != nil {
			return err
		}

		current.Paid = true
		current.PaidDate = &today
		paid = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("payment recorded",
		zap.String("customer_id", customerID.String()),
		zap.String("payment_id", paid.ID.String()),
	)
	return paid, nil
}

func (s *Service) AdvanceCycle(ctx context.Context, customerID snowflake.ID) (*ledgerdomain.PaymentRecord, error) {
	if customerID == 0 {
		return nil, ledgerdomain.ErrInvalidCustomer
	}

	var next *ledgerdomain.PaymentRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		outstanding, err := s.hasOutstanding(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if outstanding {
			return ledgerdomain.ErrDuplicateLedgerEntry
		}

		last, err := s.findLastCycle(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if last == nil {
			return ledgerdomain.ErrInvalidCustomer
		}

		next, err = s.insertCycle(ctx, tx, customerID, daterules.NextDueDate(last.DueDate), last.Amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

func (s *Service) ListOverdue(ctx context.Context, asOf time.Time) ([]ledgerdomain.OverduePayment, error) {
	var rows []ledgerdomain.OverduePayment
	err := s.db.WithContext(ctx).Raw(
		`SELECT
			p.id AS payment_id,
			p.customer_id AS customer_id,
			c.name AS customer_name,
			p.due_date AS due_date,
			p.amount AS amount,
			COALESCE(s.active, 1) AS service_active
		 FROM payments p
		 JOIN customers c ON c.id = p.customer_id
		 LEFT JOIN service_status s ON s.customer_id = p.customer_id
		 WHERE p.paid = 0 AND p.due_date < ?
		 ORDER BY p.due_date ASC, p.id ASC`,
		asOf,
	).Scan(&rows).Error
	if err != nil {
		return nil, pkgdb.WrapError(err)
	}
	for i := range rows {
		rows[i].DaysOverdue = daterules.DaysBetween(rows[i].DueDate, asOf)
	}
	return rows, nil
}

func (s *Service) ListDueInWindow(ctx context.Context, start, end time.Time) ([]ledgerdomain.PaymentRecord, error) {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return nil, ledgerdomain.ErrInvalidWindow
	}
	var records []ledgerdomain.PaymentRecord
	err := s.db.WithContext(ctx).
		Where("due_date >= ? AND due_date <= ?", start, end).
		Order("due_date ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, pkgdb.WrapError(err)
	}
	return records, nil
}

func (s *Service) hasOutstanding(ctx context.Context, tx *gorm.DB, customerID snowflake.ID) (bool, error) {
	var count int64
	if err := tx.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM payments WHERE customer_id = ? AND paid = 0`,
		customerID,
	).Scan(&count).Error; err != nil {
		return false, pkgdb.WrapError(err)
	}
	return count > 0, nil
}

func (s *Service) findOutstanding(ctx context.Context, tx *gorm.DB, customerID snowflake.ID) (*ledgerdomain.PaymentRecord, error) {
	var record ledgerdomain.PaymentRecord
	err := tx.WithContext(ctx).Raw(
		`SELECT id, customer_id, due_date, paid_date, amount, paid, created_at
		 FROM payments
		 WHERE customer_id = ? AND paid = 0
		 ORDER BY due_date ASC
		 LIMIT 1`,
		customerID,
	).Scan(&record).Error
	if err != nil {
		return nil, pkgdb.WrapError(err)
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

func (s *Service) findLastCycle(ctx context.Context, tx *gorm.DB, customerID snowflake.ID) (*ledgerdomain.PaymentRecord, error) {
	var record ledgerdomain.PaymentRecord
	err := tx.WithContext(ctx).Raw(
		`SELECT id, customer_id, due_date, paid_date, amount, paid, created_at
		 FROM payments
		 WHERE customer_id = ?
		 ORDER BY due_date DESC
		 LIMIT 1`,
		customerID,
	).Scan(&record).Error
	if err != nil {
		return nil, pkgdb.WrapError(err)
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

func (s *Service) insertCycle(ctx context.Context, tx *gorm.DB, customerID snowflake.ID, dueDate time.Time, amount int64) (*ledgerdomain.PaymentRecord, error) {
	record := &ledgerdomain.PaymentRecord{
		ID:         s.genID.Generate(),
		CustomerID: customerID,
		DueDate:    dueDate,
		Amount:     amount,
		CreatedAt:  s.clock.Now(),
	}
	if err := tx.WithContext(ctx).Exec(
		`INSERT INTO payments (id, customer_id, due_date, paid_date, amount, paid, created_at)
		 VALUES (?, ?, ?, NULL, ?, 0, ?)`,
		record.ID,
		record.CustomerID,
		record.DueDate,
		record.Amount,
		record.CreatedAt,
	).Error; err != nil {
		return nil, pkgdb.WrapError(err)
	}

	// Single write path for the due notification; the original schema
	// duplicated this as an insert trigger.
	if err := s.notifSvc.AppendTx(ctx, tx, notificationdomain.AppendRequest{
		CustomerID: customerID,
		Message:    fmt.Sprintf("Payment due on %s", dueDate.Format(dateLayout)),
		Category:   notificationdomain.CategoryPending,
		DedupeKey:  fmt.Sprintf("due:%s", record.ID.String()),
		Metadata: map[string]any{
			"payment_id": record.ID.String(),
			"due_date":   dueDate.Format(dateLayout),
		},
	}); err != nil {
		return nil, err
	}
	return record, nil
}
