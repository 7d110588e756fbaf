package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/toty12222/controlo-fibra-netkamba/internal/daterules"
)

// PaymentRecord is one billing cycle's obligation. Records are append
// model: created at registration and at each cycle rollover, marked paid
// at most once, never deleted.
type PaymentRecord struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID snowflake.ID `gorm:"not null;index" json:"customer_id"`
	DueDate    time.Time    `gorm:"not null;index" json:"due_date"`
	PaidDate   *time.Time   `json:"paid_date,omitempty"`
	// Amount is the monthly value in cents.
	Amount    int64     `gorm:"not null" json:"amount"`
	Paid      bool      `gorm:"not null;default:false;index" json:"paid"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (PaymentRecord) TableName() string { return "payments" }

// State classifies the record relative to asOf.
func (p PaymentRecord) State(asOf time.Time) daterules.PaymentState {
	return daterules.Classify(p.Paid, p.DueDate, asOf)
}

// OverduePayment is an overdue obligation joined with the customer's
// current service status (default active when no row exists).
type OverduePayment struct {
	PaymentID     snowflake.ID `gorm:"column:payment_id" json:"payment_id"`
	CustomerID    snowflake.ID `gorm:"column:customer_id" json:"customer_id"`
	CustomerName  string       `gorm:"column:customer_name" json:"customer_name"`
	DueDate       time.Time    `gorm:"column:due_date" json:"due_date"`
	Amount        int64        `gorm:"column:amount" json:"amount"`
	ServiceActive bool         `gorm:"column:service_active" json:"service_active"`
	DaysOverdue   int          `gorm:"-" json:"days_overdue"`
}
