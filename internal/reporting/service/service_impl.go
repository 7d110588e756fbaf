package service

import (
	"context"
	"time"

	"github.com/toty12222/controlo-fibra-netkamba/internal/cache"
	"github.com/toty12222/controlo-fibra-netkamba/internal/daterules"
	reportingdomain "github.com/toty12222/controlo-fibra-netkamba/internal/reporting/domain"
	pkgdb "github.com/toty12222/controlo-fibra-netkamba/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	monthLayout      = "2006-01"
	overviewCacheTTL = 30 * time.Second

	expirationWarningDays = 90
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Cache cache.Cache[string, reportingdomain.Overview] `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	cache cache.Cache[string, reportingdomain.Overview]
}

func NewService(p Params) reportingdomain.Service {
	c := p.Cache
	if c == nil {
		c = cache.NewTTLCache[string, reportingdomain.Overview]()
	}
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("reporting.service"),
		cache: c,
	}
}

func (s *Service) MonthlyPayments(ctx context.Context, asOf time.Time) (reportingdomain.MonthlyPaymentsReport, error) {
	start := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var rows []reportingdomain.MonthlyPaymentRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT p.id AS payment_id, p.customer_id, c.name AS customer_name,
		        p.paid_date, p.amount
		 FROM payments p
		 JOIN customers c ON c.id = p.customer_id
		 WHERE p.paid = 1 AND p.paid_date >= ? AND p.paid_date < ?
		 ORDER BY p.paid_date ASC, p.id ASC`,
		start,
		end,
	).Scan(&rows).Error
	if err != nil {
		return reportingdomain.MonthlyPaymentsReport{}, pkgdb.WrapError(err)
	}

	report := reportingdomain.MonthlyPaymentsReport{
		Month:    start.Format(monthLayout),
		Payments: rows,
		Count:    len(rows),
	}
	for _, row := range rows {
		report.TotalCollected += row.Amount
	}
	return report, nil
}

func (s *Service) ContractExpirations(ctx context.Context, asOf time.Time) (reportingdomain.ContractExpirationsReport, error) {
	var rows []reportingdomain.ExpirationRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT pm.customer_id, c.name AS customer_name, pm.payment_type,
		        pm.bank, pm.expiration_date
		 FROM payment_methods pm
		 JOIN customers c ON c.id = pm.customer_id
		 WHERE pm.expiration_date IS NOT NULL
		 AND pm.id = (
		 	SELECT id FROM payment_methods
		 	WHERE customer_id = pm.customer_id
		 	ORDER BY created_at DESC LIMIT 1
		 )
		 ORDER BY pm.expiration_date ASC`,
	).Scan(&rows).Error
	if err != nil {
		return reportingdomain.ContractExpirationsReport{}, pkgdb.WrapError(err)
	}

	report := reportingdomain.ContractExpirationsReport{
		Expired:  make([]reportingdomain.ExpirationRow, 0),
		Critical: make([]reportingdomain.ExpirationRow, 0),
		Warning:  make([]reportingdomain.ExpirationRow, 0),
		OK:       make([]reportingdomain.ExpirationRow, 0),
	}
	for _, row := range rows {
		row.DaysLeft = daterules.DaysBetween(asOf, row.ExpirationDate)
		row.Severity = classifyExpiration(row.DaysLeft)
		switch row.Severity {
		case reportingdomain.ExpirationExpired:
			report.Expired = append(report.Expired, row)
		case reportingdomain.ExpirationCritical:
			report.Critical = append(report.Critical, row)
		case reportingdomain.ExpirationWarning:
			report.Warning = append(report.Warning, row)
		default:
			report.OK = append(report.OK, row)
		}
	}
	return report, nil
}

func (s *Service) Overview(ctx context.Context, asOf time.Time) (reportingdomain.Overview, error) {
	cacheKey := "overview:" + asOf.Format("2006-01-02")
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached, nil
	}

	monthStart := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	var overview reportingdomain.Overview
	err := s.db.WithContext(ctx).Raw(
		`SELECT
			(SELECT COUNT(1) FROM customers) AS customers,
			(SELECT COUNT(1) FROM customers WHERE state = 'Active') AS active_customers,
			(SELECT COUNT(1) FROM customers c
			 LEFT JOIN service_status s ON s.customer_id = c.id
			 WHERE COALESCE(s.active, 1) = 1) AS service_active,
			(SELECT COUNT(1) FROM payments WHERE paid = 0 AND due_date < ?) AS overdue_payments,
			(SELECT COALESCE(SUM(amount), 0) FROM payments
			 WHERE due_date >= ? AND due_date < ?) AS expected_monthly,
			(SELECT COALESCE(SUM(amount), 0) FROM payments
			 WHERE paid = 1 AND paid_date >= ? AND paid_date < ?) AS collected_monthly,
			(SELECT COUNT(1) FROM notifications) AS notifications`,
		asOf,
		monthStart,
		monthEnd,
		monthStart,
		monthEnd,
	).Scan(&overview).Error
	if err != nil {
		return reportingdomain.Overview{}, pkgdb.WrapError(err)
	}

	s.cache.Set(cacheKey, overview, overviewCacheTTL)
	return overview, nil
}

func classifyExpiration(daysLeft int) reportingdomain.ExpirationSeverity {
	switch {
	case daysLeft < 0:
		return reportingdomain.ExpirationExpired
	case daysLeft <= daterules.CriticalWindowDays:
		return reportingdomain.ExpirationCritical
	case daysLeft <= expirationWarningDays:
		return reportingdomain.ExpirationWarning
	default:
		return reportingdomain.ExpirationOK
	}
}
