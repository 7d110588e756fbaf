package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/toty12222/controlo-fibra-netkamba/internal/clock"
	notificationdomain "github.com/toty12222/controlo-fibra-netkamba/internal/notification/domain"
	pkgdb "github.com/toty12222/controlo-fibra-netkamba/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
}

func NewService(p Params) notificationdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("notification.service"),
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Service) Append(ctx context.Context, req notificationdomain.AppendRequest) error {
	return s.AppendTx(ctx, s.db, req)
}

func (s *Service) AppendTx(ctx context.Context, tx *gorm.DB, req notificationdomain.AppendRequest) error {
	if tx == nil {
		return errors.New("missing_transaction")
	}
	if req.CustomerID == 0 {
		return notificationdomain.ErrInvalidCustomer
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return notificationdomain.ErrInvalidMessage
	}
	switch req.Category {
	case notificationdomain.CategoryPending, notificationdomain.CategoryInfo, notificationdomain.CategoryOverdue:
	default:
		return notificationdomain.ErrInvalidCategory
	}

	metadata := datatypes.JSONMap{}
	for key, value := range req.Metadata {
		if strings.TrimSpace(key) == "" {
			continue
		}
		metadata[key] = value
	}

	dedupe := strings.TrimSpace(req.DedupeKey)
	var dedupeValue any
	if dedupe != "" {
		dedupeValue = dedupe
	}

	err := tx.WithContext(ctx).Exec(
		`INSERT INTO notifications (id, customer_id, message, category, dedupe_key, metadata, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (customer_id, dedupe_key) DO NOTHING`,
		s.genID.Generate(),
		req.CustomerID,
		message,
		req.Category,
		dedupeValue,
		metadata,
		s.clock.Now(),
	).Error
	if err != nil {
		return pkgdb.WrapError(err)
	}
	return nil
}

func (s *Service) ListRecent(ctx context.Context, limit int) ([]notificationdomain.NotificationEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []notificationdomain.NotificationEvent
	err := s.db.WithContext(ctx).
		Order("occurred_at DESC, id DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, pkgdb.WrapError(err)
	}
	return events, nil
}
