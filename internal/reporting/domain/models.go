package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// MonthlyPaymentRow is one settled obligation inside the report month.
type MonthlyPaymentRow struct {
	PaymentID    snowflake.ID `gorm:"column:payment_id" json:"payment_id"`
	CustomerID   snowflake.ID `gorm:"column:customer_id" json:"customer_id"`
	CustomerName string       `gorm:"column:customer_name" json:"customer_name"`
	PaidDate     time.Time    `gorm:"column:paid_date" json:"paid_date"`
	Amount       int64        `gorm:"column:amount" json:"amount"`
}

// MonthlyPaymentsReport sums everything collected in one calendar month.
type MonthlyPaymentsReport struct {
	Month          string              `json:"month"`
	Payments       []MonthlyPaymentRow `json:"payments"`
	TotalCollected int64               `json:"total_collected"`
	Count          int                 `json:"count"`
}

// ExpirationSeverity bins a payment method by how close its expiration
// date sits.
type ExpirationSeverity string

const (
	ExpirationExpired  ExpirationSeverity = "Expired"
	ExpirationCritical ExpirationSeverity = "Critical"
	ExpirationWarning  ExpirationSeverity = "Warning"
	ExpirationOK       ExpirationSeverity = "OK"
)

// ExpirationRow is one customer's payment method and its remaining
// lifetime. DaysLeft is negative once the method has expired.
type ExpirationRow struct {
	CustomerID     snowflake.ID       `gorm:"column:customer_id" json:"customer_id"`
	CustomerName   string             `gorm:"column:customer_name" json:"customer_name"`
	PaymentType    string             `gorm:"column:payment_type" json:"payment_type"`
	Bank           string             `gorm:"column:bank" json:"bank"`
	ExpirationDate time.Time          `gorm:"column:expiration_date" json:"expiration_date"`
	DaysLeft       int                `gorm:"-" json:"days_left"`
	Severity       ExpirationSeverity `gorm:"-" json:"severity"`
}

// ContractExpirationsReport groups payment methods by severity.
type ContractExpirationsReport struct {
	Expired  []ExpirationRow `json:"expired"`
	Critical []ExpirationRow `json:"critical"`
	Warning  []ExpirationRow `json:"warning"`
	OK       []ExpirationRow `json:"ok"`
}

// Overview is the dashboard headline block. Counts only, cheap enough
// to cache.
type Overview struct {
	Customers        int64 `json:"customers"`
	ActiveCustomers  int64 `json:"active_customers"`
	ServiceActive    int64 `json:"service_active"`
	OverduePayments  int64 `json:"overdue_payments"`
	ExpectedMonthly  int64 `json:"expected_monthly"`
	CollectedMonthly int64 `json:"collected_monthly"`
	Notifications    int64 `json:"notifications"`
}
