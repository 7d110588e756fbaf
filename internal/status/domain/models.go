package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ServiceStatus is the single current row per customer. History is
// last-write-wins; every transition is also mirrored into the
// notification log, so the full toggle history stays reconstructable.
type ServiceStatus struct {
	CustomerID       snowflake.ID `gorm:"primaryKey" json:"customer_id"`
	Active           bool         `gorm:"not null;default:true" json:"active"`
	LastStatusChange time.Time    `gorm:"not null" json:"last_status_change"`
}

// TableName sets the database table name.
func (ServiceStatus) TableName() string { return "service_status" }
