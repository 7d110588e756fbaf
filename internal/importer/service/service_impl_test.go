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
	customerservice "github.com/toty12222/controlo-fibra-netkamba/internal/customer/service"
	importerdomain "github.com/toty12222/controlo-fibra-netkamba/internal/importer/domain"
	ledgerservice "github.com/toty12222/controlo-fibra-netkamba/internal/ledger/service"
	"github.com/toty12222/controlo-fibra-netkamba/internal/migration"
	notifservice "github.com/toty12222/controlo-fibra-netkamba/internal/notification/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBSeq int64

func setupImporterTest(t *testing.T, today time.Time) (*gorm.DB, importerdomain.Service) {
	t.Helper()
	dsn := fmt.Sprintf("file:importer_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
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
	customerSvc := customerservice.NewService(customerservice.Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     fixed,
		LedgerSvc: ledgerSvc,
	})
	importerSvc := NewService(Params{
		DB:          db,
		Log:         zap.NewNop(),
		CustomerSvc: customerSvc,
	})
	return db, importerSvc
}

func importRow(name string, mbps int) customerdomain.RegisterRequest {
	return customerdomain.RegisterRequest{
		Name:         name,
		Address:      "Rua Principal 1",
		Phone:        "923000000",
		Mbps:         mbps,
		ContractDate: time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		PaymentDay:   20,
		PaymentType:  "transfer",
		Bank:         "BAI",
		IBAN:         "AO06000600000100037131174",
		MonthlyValue: 2500,
	}
}

func TestImportCommitsWholeBatch(t *testing.T) {
	today := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	db, svc := setupImporterTest(t, today)

	rows := []customerdomain.RegisterRequest{
		importRow("Amadeu Jose", 100),
		importRow("Beatriz Neto", 200),
		importRow("Carlos Silva", 50),
	}

	result, err := svc.Import(context.Background(), rows)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Imported != 3 {
		t.Fatalf("expected 3 imported, got %d", result.Imported)
	}

	var customers, payments int64
	if err := db.Raw(`SELECT COUNT(1) FROM customers`).Scan(&customers).Error; err != nil {
		t.Fatalf("count customers: %v", err)
	}
	if err := db.Raw(`SELECT COUNT(1) FROM payments WHERE paid = 0`).Scan(&payments).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if customers != 3 || payments != 3 {
		t.Fatalf("expected 3 customers with 3 open obligations, got %d/%d", customers, payments)
	}
}

func TestImportRejectsBatchOnInvalidRow(t *testing.T) {
	today := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	db, svc := setupImporterTest(t, today)

	rows := []customerdomain.RegisterRequest{
		importRow("Amadeu Jose", 100),
		importRow("Beatriz Neto", 200),
		importRow("Carlos Silva", 0), // invalid mbps
		importRow("Daniela Costa", 50),
		importRow("Eduardo Gomes", 100),
	}

	result, err := svc.Import(context.Background(), rows)
	if !errors.Is(err, importerdomain.ErrBatchRejected) {
		t.Fatalf("expected batch_rejected, got %v", err)
	}
	// The result still reports how many rows would have gone through.
	if result.Imported != 4 {
		t.Fatalf("expected 4 importable rows reported, got %d", result.Imported)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 row error, got %d", len(result.Errors))
	}
	if result.Errors[0].Index != 2 || result.Errors[0].Field != "mbps" {
		t.Fatalf("expected mbps error at index 2, got %+v", result.Errors[0])
	}

	var customers int64
	if err := db.Raw(`SELECT COUNT(1) FROM customers`).Scan(&customers).Error; err != nil {
		t.Fatalf("count customers: %v", err)
	}
	if customers != 0 {
		t.Fatalf("expected rollback to leave no customers, got %d", customers)
	}
}

func TestImportRejectsEmptyBatch(t *testing.T) {
	today := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	_, svc := setupImporterTest(t, today)

	_, err := svc.Import(context.Background(), nil)
	if !errors.Is(err, importerdomain.ErrEmptyBatch) {
		t.Fatalf("expected empty_batch, got %v", err)
	}
}
