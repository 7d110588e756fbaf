package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/toty12222/controlo-fibra-netkamba/internal/daterules"
	"gorm.io/gorm"
)

// RegisterRequest carries everything a new contract needs: the customer
// record, its payment method and the first obligation's monthly value.
type RegisterRequest struct {
	Name         string
	Address      string
	Phone        string
	Mbps         int
	State        CustomerState
	ContractDate time.Time
	PaymentDay   int

	PaymentType    string
	Bank           string
	IBAN           string
	ExpirationDate time.Time

	// MonthlyValue is the recurring amount in cents.
	MonthlyValue int64
}

// ListFilter is the typed filter for customer queries; zero values mean
// "no constraint". PaymentState filters on the derived classification.
type ListFilter struct {
	NameContains string
	State        CustomerState
	PaymentState daterules.PaymentState
	Page         int
	PerPage      int
}

// CustomerRow is the flat listing row: customer joined with payment
// method and current obligation, payment status derived, never stored.
type CustomerRow struct {
	ID            snowflake.ID           `gorm:"column:id" json:"id"`
	Name          string                 `gorm:"column:name" json:"name"`
	Address       string                 `gorm:"column:address" json:"address"`
	Phone         string                 `gorm:"column:phone" json:"phone"`
	Mbps          int                    `gorm:"column:mbps" json:"mbps"`
	State         CustomerState          `gorm:"column:state" json:"state"`
	ContractDate  time.Time              `gorm:"column:contract_date" json:"contract_date"`
	PaymentDay    int                    `gorm:"column:payment_day" json:"payment_day"`
	PaymentType   string                 `gorm:"column:payment_type" json:"payment_type"`
	Bank          string                 `gorm:"column:bank" json:"bank"`
	MonthlyValue  int64                  `gorm:"column:monthly_value" json:"monthly_value"`
	DueDate       *time.Time             `gorm:"column:due_date" json:"due_date,omitempty"`
	LastPaidDate  *time.Time             `gorm:"column:last_paid_date" json:"last_paid_date,omitempty"`
	Paid          bool                   `gorm:"column:paid" json:"-"`
	PaymentStatus daterules.PaymentState `gorm:"-" json:"payment_status"`
}

// ListResponse pages the listing rows.
type ListResponse struct {
	Customers []CustomerRow `json:"customers"`
	Total     int64         `json:"total"`
	Page      int           `json:"page"`
	PerPage   int           `json:"per_page"`
}

// Registry is the customer identity CRUD surface.
type Registry interface {
	Register(ctx context.Context, req RegisterRequest) (*Customer, error)
	// RegisterTx is the same path inside a caller-owned transaction;
	// bulk import uses it so a batch commits or rolls back as one.
	RegisterTx(ctx context.Context, tx *gorm.DB, req RegisterRequest) (*Customer, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Customer, error)
	List(ctx context.Context, filter ListFilter) (ListResponse, error)
	UpdateState(ctx context.Context, id snowflake.ID, state CustomerState) error
}

// Service is the package alias for Registry.
type Service = Registry

var (
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidMbps         = errors.New("invalid_mbps")
	ErrInvalidPaymentDay   = errors.New("invalid_payment_day")
	ErrInvalidState        = errors.New("invalid_state")
	ErrInvalidContractDate = errors.New("invalid_contract_date")
	ErrNotFound            = errors.New("not_found")
)

// Validate checks the registration fields shared by manual entry and
// bulk import.
func (r RegisterRequest) Validate() error {
	if r.Name == "" {
		return ErrInvalidName
	}
	if r.Mbps <= 0 {
		return ErrInvalidMbps
	}
	if r.PaymentDay < 1 || r.PaymentDay > 31 {
		return ErrInvalidPaymentDay
	}
	if r.ContractDate.IsZero() {
		return ErrInvalidContractDate
	}
	switch r.State {
	case CustomerStateActive, CustomerStateInactive, "":
	default:
		return ErrInvalidState
	}
	return nil
}
