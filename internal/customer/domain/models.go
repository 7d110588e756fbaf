package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// CustomerState is the back-office flag on the customer record itself,
// kept separate from the service switch state in service_status.
type CustomerState string

const (
	CustomerStateActive   CustomerState = "Active"
	CustomerStateInactive CustomerState = "Inactive"
)

// Customer is a subscriber of the fibre service.
type Customer struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	Name         string        `gorm:"type:text;not null;index" json:"name"`
	Address      string        `gorm:"type:text" json:"address"`
	Phone        string        `gorm:"type:text" json:"phone"`
	Mbps         int           `gorm:"not null" json:"mbps"`
	State        CustomerState `gorm:"type:text;not null;default:'Active';index" json:"state"`
	ContractDate time.Time     `gorm:"not null" json:"contract_date"`
	PaymentDay   int           `gorm:"not null;default:1" json:"payment_day"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }

// PaymentMethod is how a customer settles the monthly value. One active
// record per customer at a time.
type PaymentMethod struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID     snowflake.ID `gorm:"not null;index" json:"customer_id"`
	PaymentType    string       `gorm:"type:text;not null" json:"payment_type"`
	Bank           string       `gorm:"type:text" json:"bank"`
	IBAN           string       `gorm:"column:iban;type:text" json:"iban"`
	ExpirationDate time.Time    `json:"expiration_date"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (PaymentMethod) TableName() string { return "payment_methods" }
