package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/toty12222/controlo-fibra-netkamba/internal/clock"
	customerdomain "github.com/toty12222/controlo-fibra-netkamba/internal/customer/domain"
	"github.com/toty12222/controlo-fibra-netkamba/internal/daterules"
	ledgerdomain "github.com/toty12222/controlo-fibra-netkamba/internal/ledger/domain"
	pkgdb "github.com/toty12222/controlo-fibra-netkamba/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	LedgerSvc ledgerdomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	ledgerSvc ledgerdomain.Service
}

func NewService(p Params) customerdomain.Registry {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("customer.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		ledgerSvc: p.LedgerSvc,
	}
}

func (s *Service) Register(ctx context.Context, req customerdomain.RegisterRequest) (*customerdomain.Customer, error) {
	var created *customerdomain.Customer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = s.RegisterTx(ctx, tx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("customer registered",
		zap.String("customer_id", created.ID.String()),
		zap.String("name", created.Name),
	)
	return created, nil
}

func (s *Service) RegisterTx(ctx context.Context, tx *gorm.DB, req customerdomain.RegisterRequest) (*customerdomain.Customer, error) {
	if tx == nil {
		return nil, errors.New("missing_transaction")
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := req.Validate(); err != nil {
		return nil, err
	}
	state := req.State
	if state == "" {
		state = customerdomain.CustomerStateActive
	}

	now := s.clock.Now()
	customer := &customerdomain.Customer{
		ID:           s.genID.Generate(),
		Name:         req.Name,
		Address:      strings.TrimSpace(req.Address),
		Phone:        strings.TrimSpace(req.Phone),
		Mbps:         req.Mbps,
		State:        state,
		ContractDate: req.ContractDate,
		PaymentDay:   req.PaymentDay,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, pkgdb.WrapError(err)
	}

	method := &customerdomain.PaymentMethod{
		ID:             s.genID.Generate(),
		CustomerID:     customer.ID,
		PaymentType:    strings.TrimSpace(req.PaymentType),
		Bank:           strings.TrimSpace(req.Bank),
		IBAN:           strings.TrimSpace(req.IBAN),
		ExpirationDate: req.ExpirationDate,
		CreatedAt:      now,
	}
	if err := tx.WithContext(ctx).Create(method).Error; err != nil {
		return nil, pkgdb.WrapError(err)
	}

	if _, err := s.ledgerSvc.CreateInitialPaymentTx(ctx, tx, ledgerdomain.CreateInitialPaymentRequest{
		CustomerID:    customer.ID,
		Amount:        req.MonthlyValue,
		ContractStart: req.ContractDate,
		PaymentDay:    req.PaymentDay,
	}); err != nil {
		return nil, err
	}

	return customer, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*customerdomain.Customer, error) {
	if id == 0 {
		return nil, customerdomain.ErrNotFound
	}
	var customer customerdomain.Customer
	err := s.db.WithContext(ctx).First(&customer, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customerdomain.ErrNotFound
		}
		return nil, pkgdb.WrapError(err)
	}
	return &customer, nil
}

func (s *Service) List(ctx context.Context, filter customerdomain.ListFilter) (customerdomain.ListResponse, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 || perPage > 500 {
		perPage = 100
	}
	now := s.clock.Now()

	where, args := buildListConditions(filter, now)

	query := `
		SELECT
			c.id, c.name, c.address, c.phone, c.mbps, c.state,
			c.contract_date, c.payment_day,
			COALESCE(pm.payment_type, '') AS payment_type,
			COALESCE(pm.bank, '') AS bank,
			COALESCE(p.amount, 0) AS monthly_value,
			p.due_date AS due_date,
			p.paid AS paid,
			(SELECT MAX(paid_date) FROM payments WHERE customer_id = c.id AND paid = 1) AS last_paid_date
		FROM customers c
		LEFT JOIN payment_methods pm ON pm.id = (
			SELECT id FROM payment_methods WHERE customer_id = c.id ORDER BY created_at DESC LIMIT 1
		)
		LEFT JOIN payments p ON p.id = (
			SELECT id FROM payments WHERE customer_id = c.id ORDER BY paid ASC, due_date DESC LIMIT 1
		)` + where + `
		ORDER BY c.name ASC
		LIMIT ? OFFSET ?`

	rows := make([]customerdomain.CustomerRow, 0, perPage)
	listArgs := append(append([]any{}, args...), perPage, (page-1)*perPage)
	if err := s.db.WithContext(ctx).Raw(query, listArgs...).Scan(&rows).Error; err != nil {
		return customerdomain.ListResponse{}, pkgdb.WrapError(err)
	}

	for i := range rows {
		if rows[i].DueDate == nil {
			rows[i].PaymentStatus = daterules.PaymentStateOK
			continue
		}
		rows[i].PaymentStatus = daterules.Classify(rows[i].Paid, *rows[i].DueDate, now)
	}

	countQuery := `
		SELECT COUNT(1)
		FROM customers c
		LEFT JOIN payments p ON p.id = (
			SELECT id FROM payments WHERE customer_id = c.id ORDER BY paid ASC, due_date DESC LIMIT 1
		)` + where
	var total int64
	if err := s.db.WithContext(ctx).Raw(countQuery, args...).Scan(&total).Error; err != nil {
		return customerdomain.ListResponse{}, pkgdb.WrapError(err)
	}

	return customerdomain.ListResponse{
		Customers: rows,
		Total:     total,
		Page:      page,
		PerPage:   perPage,
	}, nil
}

func (s *Service) UpdateState(ctx context.Context, id snowflake.ID, state customerdomain.CustomerState) error {
	if id == 0 {
		return customerdomain.ErrNotFound
	}
	switch state {
	case customerdomain.CustomerStateActive, customerdomain.CustomerStateInactive:
	default:
		return customerdomain.ErrInvalidState
	}

	result := s.db.WithContext(ctx).Exec(
		`UPDATE customers SET state = ?, updated_at = ? WHERE id = ?`,
		state,
		s.clock.Now(),
		id,
	)
	if result.Error != nil {
		return pkgdb.WrapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return customerdomain.ErrNotFound
	}
	return nil
}

// buildListConditions turns the typed filter into parameterized WHERE
// clauses; nothing is ever concatenated from user input.
func buildListConditions(filter customerdomain.ListFilter, now time.Time) (string, []any) {
	conditions := make([]string, 0, 3)
	args := make([]any, 0, 4)

	if name := strings.TrimSpace(filter.NameContains); name != "" {
		conditions = append(conditions, "c.name LIKE ?")
		args = append(args, "%"+name+"%")
	}
	if filter.State != "" {
		conditions = append(conditions, "c.state = ?")
		args = append(args, filter.State)
	}
	switch filter.PaymentState {
	case daterules.PaymentStatePaid:
		conditions = append(conditions, "p.paid = 1")
	case daterules.PaymentStateOverdue:
		conditions = append(conditions, "p.paid = 0 AND p.due_date < ?")
		args = append(args, now)
	case daterules.PaymentStateCritical:
		conditions = append(conditions, "p.paid = 0 AND p.due_date >= ? AND p.due_date <= ?")
		args = append(args, now, now.AddDate(0, 0, daterules.CriticalWindowDays))
	case daterules.PaymentStateOK:
		conditions = append(conditions, "p.paid = 0 AND p.due_date > ?")
		args = append(args, now.AddDate(0, 0, daterules.CriticalWindowDays))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "\n\t\tWHERE " + strings.Join(conditions, " AND "), args
}
