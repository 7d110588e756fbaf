package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/toty12222/controlo-fibra-netkamba/internal/cache"
	"github.com/toty12222/controlo-fibra-netkamba/internal/migration"
	reportingdomain "github.com/toty12222/controlo-fibra-netkamba/internal/reporting/domain"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBSeq int64

func setupReportingTest(t *testing.T) (*gorm.DB, *Service) {
	t.Helper()
	dsn := fmt.Sprintf("file:reporting_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
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

	svc := &Service{
		db:    db,
		log:   zap.NewNop(),
		cache: cache.NoopCache[string, reportingdomain.Overview]{},
	}
	return db, svc
}

func seedReportingCustomer(t *testing.T, db *gorm.DB, id int64, name string, expiration time.Time) {
	t.Helper()
	if err := db.Exec(
		`INSERT INTO customers (id, name, mbps, state, contract_date, payment_day)
		 VALUES (?, ?, 100, 'Active', ?, 20)`,
		id,
		name,
		time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
	).Error; err != nil {
		t.Fatalf("insert customer: %v", err)
	}
	if err := db.Exec(
		`INSERT INTO payment_methods (id, customer_id, payment_type, bank, iban, expiration_date, created_at)
		 VALUES (?, ?, 'transfer', 'BAI', 'AO06000600000100037131174', ?, ?)`,
		id*10,
		id,
		expiration,
		time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
	).Error; err != nil {
		t.Fatalf("insert payment method: %v", err)
	}
}

func seedPayment(t *testing.T, db *gorm.DB, id, customerID int64, dueDate time.Time, amount int64, paidDate *time.Time) {
	t.Helper()
	paid := 0
	if paidDate != nil {
		paid = 1
	}
	if err := db.Exec(
		`INSERT INTO payments (id, customer_id, due_date, amount, paid, paid_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		customerID,
		dueDate,
		amount,
		paid,
		paidDate,
		dueDate,
	).Error; err != nil {
		t.Fatalf("insert payment: %v", err)
	}
}

func TestMonthlyPaymentsSumsOnlySettledInsideMonth(t *testing.T) {
	db, svc := setupReportingTest(t)
	asOf := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)

	seedReportingCustomer(t, db, 1, "Amadeu Jose", asOf.AddDate(1, 0, 0))
	seedReportingCustomer(t, db, 2, "Beatriz Neto", asOf.AddDate(1, 0, 0))

	feb5 := time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC)
	feb20 := time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC)
	jan25 := time.Date(2024, time.January, 25, 0, 0, 0, 0, time.UTC)

	seedPayment(t, db, 100, 1, feb5, 2500, &feb5)
	seedPayment(t, db, 101, 2, feb20, 4000, &feb20)
	// Settled in January, outside the report month.
	seedPayment(t, db, 102, 1, jan25, 2500, &jan25)
	// Still outstanding in February.
	seedPayment(t, db, 103, 2, feb20, 4000, nil)

	report, err := svc.MonthlyPayments(context.Background(), asOf)
	if err != nil {
		t.Fatalf("monthly payments: %v", err)
	}
	if report.Month != "2024-02" {
		t.Fatalf("expected month 2024-02, got %s", report.Month)
	}
	if report.Count != 2 || len(report.Payments) != 2 {
		t.Fatalf("expected 2 settled payments, got %d", report.Count)
	}
	if report.TotalCollected != 6500 {
		t.Fatalf("expected 6500 collected, got %d", report.TotalCollected)
	}
	// Ordered by paid date.
	if report.Payments[0].CustomerName != "Amadeu Jose" {
		t.Fatalf("expected earliest settlement first, got %s", report.Payments[0].CustomerName)
	}
}

func TestContractExpirationsBinsBySeverity(t *testing.T) {
	db, svc := setupReportingTest(t)
	asOf := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)

	seedReportingCustomer(t, db, 1, "Amadeu Jose", asOf.AddDate(0, 0, -5))    // expired
	seedReportingCustomer(t, db, 2, "Beatriz Neto", asOf.AddDate(0, 0, 20))   // critical
	seedReportingCustomer(t, db, 3, "Carlos Silva", asOf.AddDate(0, 0, 60))   // warning
	seedReportingCustomer(t, db, 4, "Daniela Costa", asOf.AddDate(0, 0, 120)) // ok

	report, err := svc.ContractExpirations(context.Background(), asOf)
	if err != nil {
		t.Fatalf("contract expirations: %v", err)
	}

	if len(report.Expired) != 1 || report.Expired[0].CustomerName != "Amadeu Jose" {
		t.Fatalf("expected Amadeu expired, got %+v", report.Expired)
	}
	if report.Expired[0].DaysLeft != -5 {
		t.Fatalf("expected -5 days left, got %d", report.Expired[0].DaysLeft)
	}
	if len(report.Critical) != 1 || report.Critical[0].CustomerName != "Beatriz Neto" {
		t.Fatalf("expected Beatriz critical, got %+v", report.Critical)
	}
	if len(report.Warning) != 1 || report.Warning[0].CustomerName != "Carlos Silva" {
		t.Fatalf("expected Carlos warning, got %+v", report.Warning)
	}
	if len(report.OK) != 1 || report.OK[0].CustomerName != "Daniela Costa" {
		t.Fatalf("expected Daniela ok, got %+v", report.OK)
	}
}

func TestContractExpirationsUsesLatestMethod(t *testing.T) {
	db, svc := setupReportingTest(t)
	asOf := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)

	seedReportingCustomer(t, db, 1, "Amadeu Jose", asOf.AddDate(0, 0, -5))
	// A newer card replaces the expired one.
	if err := db.Exec(
		`INSERT INTO payment_methods (id, customer_id, payment_type, bank, iban, expiration_date, created_at)
		 VALUES (99, 1, 'card', 'BFA', 'AO06000600000100037131175', ?, ?)`,
		asOf.AddDate(2, 0, 0),
		asOf,
	).Error; err != nil {
		t.Fatalf("insert replacement method: %v", err)
	}

	report, err := svc.ContractExpirations(context.Background(), asOf)
	if err != nil {
		t.Fatalf("contract expirations: %v", err)
	}
	if len(report.Expired) != 0 {
		t.Fatalf("replaced method must not report as expired, got %+v", report.Expired)
	}
	if len(report.OK) != 1 || report.OK[0].Bank != "BFA" {
		t.Fatalf("expected the newest method, got %+v", report.OK)
	}
}

func TestOverviewCounts(t *testing.T) {
	db, svc := setupReportingTest(t)
	asOf := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)

	seedReportingCustomer(t, db, 1, "Amadeu Jose", asOf.AddDate(1, 0, 0))
	seedReportingCustomer(t, db, 2, "Beatriz Neto", asOf.AddDate(1, 0, 0))
	if err := db.Exec(`UPDATE customers SET state = 'Inactive' WHERE id = 2`).Error; err != nil {
		t.Fatalf("deactivate customer: %v", err)
	}
	if err := db.Exec(
		`INSERT INTO service_status (customer_id, active, last_status_change) VALUES (2, 0, ?)`,
		asOf,
	).Error; err != nil {
		t.Fatalf("insert status: %v", err)
	}

	jan20 := time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC)
	feb5 := time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC)
	feb20 := time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC)

	// Overdue since January, never settled.
	seedPayment(t, db, 100, 2, jan20, 4000, nil)
	// Settled inside February.
	seedPayment(t, db, 101, 1, feb5, 2500, &feb5)
	// Due later this month.
	seedPayment(t, db, 102, 1, feb20, 2500, nil)

	overview, err := svc.Overview(context.Background(), asOf)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if overview.Customers != 2 || overview.ActiveCustomers != 1 {
		t.Fatalf("expected 2 customers / 1 active, got %d/%d", overview.Customers, overview.ActiveCustomers)
	}
	// Customer 1 has no status row and defaults to active.
	if overview.ServiceActive != 1 {
		t.Fatalf("expected 1 with service on, got %d", overview.ServiceActive)
	}
	if overview.OverduePayments != 1 {
		t.Fatalf("expected 1 overdue payment, got %d", overview.OverduePayments)
	}
	if overview.ExpectedMonthly != 5000 {
		t.Fatalf("expected 5000 due this month, got %d", overview.ExpectedMonthly)
	}
	if overview.CollectedMonthly != 2500 {
		t.Fatalf("expected 2500 collected, got %d", overview.CollectedMonthly)
	}
	if overview.Notifications != 0 {
		t.Fatalf("expected no notifications, got %d", overview.Notifications)
	}
}

func TestOverviewServesFromCache(t *testing.T) {
	db, _ := setupReportingTest(t)
	asOf := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)

	cached := &Service{
		db:    db,
		log:   zap.NewNop(),
		cache: cache.NewTTLCache[string, reportingdomain.Overview](),
	}

	first, err := cached.Overview(context.Background(), asOf)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if first.Customers != 0 {
		t.Fatalf("expected empty database, got %d customers", first.Customers)
	}

	seedReportingCustomer(t, db, 1, "Amadeu Jose", asOf.AddDate(1, 0, 0))

	second, err := cached.Overview(context.Background(), asOf)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if second.Customers != 0 {
		t.Fatalf("expected cached counters inside the TTL, got %d customers", second.Customers)
	}
}
