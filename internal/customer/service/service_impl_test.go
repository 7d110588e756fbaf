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
	customerdomain "github.com/toty12222/controlo-fibra-netkamba/internal/customer/domain"
	"github.com/toty12222/controlo-fibra-netkamba/internal/daterules"
	ledgerservice "github.com/toty12222/controlo-fibra-netkamba/internal/ledger/service"
	"github.com/toty12222/controlo-fibra-netkamba/internal/migration"
	notifservice "github.com/toty12222/controlo-fibra-netkamba/internal/notification/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBSeq int64

func setupCustomerTest(t *testing.T, today time.Time) (*gorm.DB, customerdomain.Registry) {
	t.Helper()
	dsn := fmt.Sprintf("file:customer_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
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

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	fixed := clock.Fixed(today)
	notifSvc := notifservice.NewService(notifservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fixed,
	})
	ledgerSvc := ledgerservice.NewService(ledgerservice.Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    fixed,
		NotifSvc: notifSvc,
	})
	registry := NewService(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     fixed,
		LedgerSvc: ledgerSvc,
	})
	return db, registry
}

func registerReq(name string) customerdomain.RegisterRequest {
	return customerdomain.RegisterRequest{
		Name:         name,
		Address:      "Rua Principal 1",
		Phone:        "923000000",
		Mbps:         100,
		ContractDate: time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		PaymentDay:   20,
		PaymentType:  "transfer",
		Bank:         "BAI",
		IBAN:         "AO06000600000100037131174",
		MonthlyValue: 2500,
	}
}

func TestRegisterCreatesContractAtomically(t *testing.T) {
	today := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	db, registry := setupCustomerTest(t, today)

	created, err := registry.Register(context.Background(), registerReq("Amadeu Jose"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected generated customer id")
	}
	if created.State != customerdomain.CustomerStateActive {
		t.Fatalf("state defaults to Active, got %s", created.State)
	}

	for _, table := range []string{"customers", "payment_methods", "payments"} {
		var count int64
		if err := db.Raw(`SELECT COUNT(1) FROM ` + table).Scan(&count).Error; err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if count != 1 {
			t.Fatalf("expected 1 row in %s, got %d", table, count)
		}
	}
}

func TestRegisterRollsBackOnInvalidAmount(t *testing.T) {
	today := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	db, registry := setupCustomerTest(t, today)

	req := registerReq("Amadeu Jose")
	req.MonthlyValue = 0

	_, err := registry.Register(context.Background(), req)
	if err == nil {
		t.Fatalf("expected error for zero monthly value")
	}

	// The customer insert must roll back with the failed payment.
	for _, table := range []string{"customers", "payment_methods", "payments"} {
		var count int64
		if err := db.Raw(`SELECT COUNT(1) FROM ` + table).Scan(&count).Error; err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if count != 0 {
			t.Fatalf("expected empty %s after rollback, got %d", table, count)
		}
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	today := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	_, registry := setupCustomerTest(t, today)

	cases := []struct {
		name    string
		mutate  func(*customerdomain.RegisterRequest)
		wantErr error
	}{
		{"empty name", func(r *customerdomain.RegisterRequest) { r.Name = "  " }, customerdomain.ErrInvalidName},
		{"zero mbps", func(r *customerdomain.RegisterRequest) { r.Mbps = 0 }, customerdomain.ErrInvalidMbps},
		{"bad payment day", func(r *customerdomain.RegisterRequest) { r.PaymentDay = 32 }, customerdomain.ErrInvalidPaymentDay},
		{"zero contract date", func(r *customerdomain.RegisterRequest) { r.ContractDate = time.Time{} }, customerdomain.ErrInvalidContractDate},
		{"bad state", func(r *customerdomain.RegisterRequest) { r.State = "Suspended" }, customerdomain.ErrInvalidState},
	}
	for _, tc := range cases {
		req := registerReq("Amadeu Jose")
		tc.mutate(&req)
		_, err := registry.Register(context.Background(), req)
		if !errors.Is(err, tc.wantErr) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.wantErr, err)
		}
	}
}

func TestGetByIDNotFound(t *testing.T) {
	today := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	_, registry := setupCustomerTest(t, today)

	_, err := registry.GetByID(context.Background(), snowflake.ID(999))
	if !errors.Is(err, customerdomain.ErrNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestListFiltersAndClassifies(t *testing.T) {
	today := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	db, registry := setupCustomerTest(t, today)

	ctx := context.Background()
	amadeu, err := registry.Register(ctx, registerReq("Amadeu Jose"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := registry.Register(ctx, registerReq("Beatriz Neto")); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Push Amadeu's obligation into the past so it classifies overdue.
	if err := db.Exec(
		`UPDATE payments SET due_date = ? WHERE customer_id = ?`,
		today.AddDate(0, 0, -10),
		amadeu.ID,
	).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	resp, err := registry.List(ctx, customerdomain.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.Total != 2 || len(resp.Customers) != 2 {
		t.Fatalf("expected 2 customers, got total=%d rows=%d", resp.Total, len(resp.Customers))
	}
	// ORDER BY name: Amadeu first.
	if resp.Customers[0].PaymentStatus != daterules.PaymentStateOverdue {
		t.Fatalf("expected OVERDUE for backdated customer, got %s", resp.Customers[0].PaymentStatus)
	}
	if resp.Customers[1].PaymentStatus != daterules.PaymentStateCritical {
		t.Fatalf("expected CRITICAL inside the due window, got %s", resp.Customers[1].PaymentStatus)
	}

	overdueOnly, err := registry.List(ctx, customerdomain.ListFilter{PaymentState: daterules.PaymentStateOverdue})
	if err != nil {
		t.Fatalf("list overdue: %v", err)
	}
	if overdueOnly.Total != 1 || len(overdueOnly.Customers) != 1 {
		t.Fatalf("expected 1 overdue customer, got %d", overdueOnly.Total)
	}
	if overdueOnly.Customers[0].ID != amadeu.ID {
		t.Fatalf("expected Amadeu, got %s", overdueOnly.Customers[0].Name)
	}

	byName, err := registry.List(ctx, customerdomain.ListFilter{NameContains: "Beatriz"})
	if err != nil {
		t.Fatalf("list by name: %v", err)
	}
	if byName.Total != 1 || byName.Customers[0].Name != "Beatriz Neto" {
		t.Fatalf("expected name filter to match Beatriz, got %+v", byName.Customers)
	}
}

func TestUpdateState(t *testing.T) {
	today := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	_, registry := setupCustomerTest(t, today)

	created, err := registry.Register(context.Background(), registerReq("Amadeu Jose"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := registry.UpdateState(context.Background(), created.ID, customerdomain.CustomerStateInactive); err != nil {
		t.Fatalf("update state: %v", err)
	}
	loaded, err := registry.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.State != customerdomain.CustomerStateInactive {
		t.Fatalf("expected Inactive, got %s", loaded.State)
	}

	if err := registry.UpdateState(context.Background(), snowflake.ID(999), customerdomain.CustomerStateActive); !errors.Is(err, customerdomain.ErrNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
	if err := registry.UpdateState(context.Background(), created.ID, "Suspended"); !errors.Is(err, customerdomain.ErrInvalidState) {
		t.Fatalf("expected invalid_state, got %v", err)
	}
}
