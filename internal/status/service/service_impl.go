package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/toty12222/controlo-fibra-netkamba/internal/clock"
	notificationdomain "github.com/toty12222/controlo-fibra-netkamba/internal/notification/domain"
	statusdomain "github.com/toty12222/controlo-fibra-netkamba/internal/status/domain"
	pkgdb "github.com/toty12222/controlo-fibra-netkamba/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	NotifSvc notificationdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	notifSvc notificationdomain.Service
}

func NewService(p Params) statusdomain.Tracker {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("status.service"),
		clock:    p.Clock,
		notifSvc: p.NotifSvc,
	}
}

func (s *Service) SetActive(ctx context.Context, customerID snowflake.ID, active bool) error {
	if customerID == 0 {
		return statusdomain.ErrInvalidCustomer
	}

	now := s.clock.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).Exec(
			`INSERT INTO service_status (customer_id, active, last_status_change)
			 VALUES (?, ?, ?)
			 ON CONFLICT (customer_id) DO UPDATE SET
				active = EXCLUDED.active,
				last_status_change = EXCLUDED.last_status_change`,
			customerID,
			active,
			now,
		).Error; err != nil {
			return pkgdb.WrapError(err)
		}

		verb := "deactivated"
		if active {
			verb = "activated"
		}
		return s.notifSvc.AppendTx(ctx, tx, notificationdomain.AppendRequest{
			CustomerID: customerID,
			Message:    fmt.Sprintf("Service %s", verb),
			Category:   notificationdomain.CategoryInfo,
		})
	})
	if err != nil {
		return err
	}

	s.log.Info("service status changed",
		zap.String("customer_id", customerID.String()),
		zap.Bool("active", active),
	)
	return nil
}

func (s *Service) IsActive(ctx context.Context, customerID snowflake.ID) (bool, error) {
	if customerID == 0 {
		return false, statusdomain.ErrInvalidCustomer
	}

	var row struct {
		Found  int  `gorm:"column:found"`
		Active bool `gorm:"column:active"`
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(1) AS found, COALESCE(MAX(active), 1) AS active
		 FROM service_status
		 WHERE customer_id = ?`,
		customerID,
	).Scan(&row).Error
	if err != nil {
		return false, pkgdb.WrapError(err)
	}
	if row.Found == 0 {
		return true, nil
	}
	return row.Active, nil
}
