package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/toty12222/controlo-fibra-netkamba/internal/clock"
	ledgerdomain "github.com/toty12222/controlo-fibra-netkamba/internal/ledger/domain"
	notificationdomain "github.com/toty12222/controlo-fibra-netkamba/internal/notification/domain"
	"github.com/toty12222/controlo-fibra-netkamba/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type Params struct {
	fx.In

	DB              *gorm.DB
	Log             *zap.Logger
	Clock           clock.Clock
	LedgerSvc       ledgerdomain.Service
	NotificationSvc notificationdomain.Service
	Config          Config `optional:"true"`
}

// Worker sweeps the payment ledger and turns state it finds there into
// notification events. Every write is deduplicated, so overlapping or
// repeated sweeps converge on the same log.
type Worker struct {
	db              *gorm.DB
	log             *zap.Logger
	clock           clock.Clock
	ledgerSvc       ledgerdomain.Service
	notificationSvc notificationdomain.Service
	cfg             Config
	metrics         *metrics.SweepMetrics
}

func NewWorker(p Params) *Worker {
	cfg := p.Config.withDefaults()
	return &Worker{
		db:              p.DB,
		log:             p.Log.Named("monitor.worker"),
		clock:           p.Clock,
		ledgerSvc:       p.LedgerSvc,
		notificationSvc: p.NotificationSvc,
		cfg:             cfg,
		metrics:         metrics.Sweep(),
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(); err != nil {
			w.log.Warn("billing sweep failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) RunOnce() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return w.Sweep(ctx, w.clock.Now())
}

// Sweep records an OVERDUE event for every unpaid obligation past its
// due date as of asOf. Events carry a dedupe key per payment, so the
// sweep can run any number of times without duplicating the log.
func (w *Worker) Sweep(ctx context.Context, asOf time.Time) error {
	if w.db == nil || w.ledgerSvc == nil || w.notificationSvc == nil {
		return errors.New("monitor_worker_unavailable")
	}
	start := time.Now()

	overdue, err := w.ledgerSvc.ListOverdue(ctx, asOf)
	if err != nil {
		w.metrics.ObserveSweep("failed", time.Since(start))
		return err
	}
	w.metrics.SetOverdueBacklog(len(overdue))
	if len(overdue) == 0 {
		w.metrics.SetDeactivationCandidates(0)
		w.metrics.ObserveSweep("success", time.Since(start))
		return nil
	}
	if len(overdue) > w.cfg.BatchSize {
		w.log.Debug("overdue backlog exceeds batch size, remainder waits for the next tick",
			zap.Int("backlog", len(overdue)),
			zap.Int("batch_size", w.cfg.BatchSize),
		)
		overdue = overdue[:w.cfg.BatchSize]
	}

	candidates := 0
	err = w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range overdue {
			if err := w.notificationSvc.AppendTx(ctx, tx, notificationdomain.AppendRequest{
				CustomerID: row.CustomerID,
				Message:    fmt.Sprintf("Payment overdue since %s", row.DueDate.Format(dateLayout)),
				Category:   notificationdomain.CategoryOverdue,
				DedupeKey:  fmt.Sprintf("overdue:%d", row.PaymentID),
				Metadata: map[string]any{
					"payment_id":   row.PaymentID.String(),
					"due_date":     row.DueDate.Format(dateLayout),
					"amount":       row.Amount,
					"days_overdue": row.DaysOverdue,
				},
			}); err != nil {
				return err
			}

			if row.ServiceActive && row.DaysOverdue > w.cfg.GracePeriodDays {
				candidates++
				w.log.Warn("deactivation candidate",
					zap.String("customer_id", row.CustomerID.String()),
					zap.String("name", row.CustomerName),
					zap.Int("days_overdue", row.DaysOverdue),
				)
			}
		}
		return nil
	})
	if err != nil {
		w.metrics.ObserveSweep("failed", time.Since(start))
		return err
	}
	w.metrics.SetDeactivationCandidates(candidates)
	w.metrics.IncNotificationAppends(len(overdue))
	w.metrics.ObserveSweep("success", time.Since(start))

	w.log.Info("billing sweep complete",
		zap.Time("as_of", asOf),
		zap.Int("overdue", len(overdue)),
		zap.Int("deactivation_candidates", candidates),
	)
	return nil
}

// ListDeactivationCandidates returns customers whose service is still on
// while their obligation sits unpaid past the grace period.
func (w *Worker) ListDeactivationCandidates(ctx context.Context, asOf time.Time) ([]ledgerdomain.OverduePayment, error) {
	overdue, err := w.ledgerSvc.ListOverdue(ctx, asOf)
	if err != nil {
		return nil, err
	}

	candidates := make([]ledgerdomain.OverduePayment, 0)
	for _, row := range overdue {
		if row.ServiceActive && row.DaysOverdue > w.cfg.GracePeriodDays {
			candidates = append(candidates, row)
		}
	}
	return candidates, nil
}
