package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Category classifies a notification event.
type Category string

const (
	CategoryPending Category = "PENDING"
	CategoryInfo    Category = "INFO"
	CategoryOverdue Category = "OVERDUE"
)

// NotificationEvent is one row of the append-only audit log. Events are
// never mutated or deleted.
type NotificationEvent struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	CustomerID snowflake.ID      `gorm:"not null;index;uniqueIndex:ux_notification_dedupe,priority:1" json:"customer_id"`
	Message    string            `gorm:"type:text;not null" json:"message"`
	Category   Category          `gorm:"type:text;not null" json:"category"`
	DedupeKey  *string           `gorm:"type:text;uniqueIndex:ux_notification_dedupe,priority:2" json:"-"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	OccurredAt time.Time         `gorm:"not null;index" json:"occurred_at"`
}

// TableName sets the database table name.
func (NotificationEvent) TableName() string { return "notifications" }
