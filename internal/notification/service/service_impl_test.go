package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/toty12222/controlo-fibra-netkamba/internal/clock"
	"github.com/toty12222/controlo-fibra-netkamba/internal/migration"
	notificationdomain "github.com/toty12222/controlo-fibra-netkamba/internal/notification/domain"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBSeq int64

func setupNotificationTest(t *testing.T, today time.Time) (*gorm.DB, notificationdomain.Service) {
	t.Helper()
	dsn := fmt.Sprintf("file:notification_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	if err := migration.RunMigrations(sqlDB); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if err := db.Exec(
		`INSERT INTO customers (id, name, mbps, state, contract_date, payment_day)
		 VALUES (1, 'Amadeu Jose', 100, 'Active', ?, 20)`,
		time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
	).Error; err != nil {
		t.Fatalf("insert customer: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.Fixed(today),
	})
	return db, svc
}

func TestAppendValidates(t *testing.T) {
	today := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	_, svc := setupNotificationTest(t, today)
	ctx := context.Background()

	err := svc.Append(ctx, notificationdomain.AppendRequest{Message: "x", Category: notificationdomain.CategoryInfo})
	if !errors.Is(err, notificationdomain.ErrInvalidCustomer) {
		t.Fatalf("expected invalid_customer, got %v", err)
	}
	err = svc.Append(ctx, notificationdomain.AppendRequest{CustomerID: 1, Message: "  ", Category: notificationdomain.CategoryInfo})
	if !errors.Is(err, notificationdomain.ErrInvalidMessage) {
		t.Fatalf("expected invalid_message, got %v", err)
	}
	err = svc.Append(ctx, notificationdomain.AppendRequest{CustomerID: 1, Message: "x", Category: "URGENT"})
	if !errors.Is(err, notificationdomain.ErrInvalidCategory) {
		t.Fatalf("expected invalid_category, got %v", err)
	}
}

func TestAppendDedupesByKey(t *testing.T) {
	today := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	db, svc := setupNotificationTest(t, today)
	ctx := context.Background()

	req := notificationdomain.AppendRequest{
		CustomerID: 1,
		Message:    "Payment overdue since 2024-01-20",
		Category:   notificationdomain.CategoryOverdue,
		DedupeKey:  "overdue:42",
	}
	for i := 0; i < 3; i++ {
		if err := svc.Append(ctx, req); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	var count int64
	if err := db.Raw(`SELECT COUNT(1) FROM notifications WHERE customer_id = 1`).Scan(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected dedupe to keep 1 row, got %d", count)
	}
}

func TestAppendWithoutKeyNeverDedupes(t *testing.T) {
	today := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	db, svc := setupNotificationTest(t, today)
	ctx := context.Background()

	req := notificationdomain.AppendRequest{
		CustomerID: 1,
		Message:    "Service activated",
		Category:   notificationdomain.CategoryInfo,
	}
	for i := 0; i < 3; i++ {
		if err := svc.Append(ctx, req); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	var count int64
	if err := db.Raw(`SELECT COUNT(1) FROM notifications WHERE customer_id = 1`).Scan(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 rows without dedupe key, got %d", count)
	}
}

func TestListRecentOrdersNewestFirst(t *testing.T) {
	base := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	db, _ := setupNotificationTest(t, base)

	node, _ := snowflake.NewNode(2)
	for i := 0; i < 5; i++ {
		svc := NewService(Params{
			DB:    db,
			Log:   zap.NewNop(),
			GenID: node,
			Clock: clock.Fixed(base.Add(time.Duration(i) * time.Hour)),
		})
		if err := svc.Append(context.Background(), notificationdomain.AppendRequest{
			CustomerID: 1,
			Message:    fmt.Sprintf("event %d", i),
			Category:   notificationdomain.CategoryInfo,
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	reader := NewService(Params{DB: db, Log: zap.NewNop(), GenID: node, Clock: clock.Fixed(base)})
	events, err := reader.ListRecent(context.Background(), 3)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Message != "event 4" {
		t.Fatalf("expected newest first, got %q", events[0].Message)
	}
}
