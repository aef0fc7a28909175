/*
sweep.go - Background delinquency sweep

PURPOSE:
  Periodically recomputes every tenant's debt summary, records a sweep
  run row for audit/UI display, and logs the totals. The sweep is
  read-only with respect to debt: the recorded totals are informational
  and debt is always recomputed from raw rows on read.

DESIGN:
  - Runs a background goroutine with configurable interval
  - Iterates all tenants, reuses the same DebtService as the endpoints
  - Records one SweepRun row per tenant per pass

CONFIGURATION:
  - Interval: How often to sweep (default: 1 hour)
  - Enabled:  Whether the sweep is active (default: true)

USAGE:
  sweep := NewDelinquencySweep(store, debtService, log)
  sweep.Start()
  // ... later
  sweep.Stop()

SEE ALSO:
  - handlers.go: GetDebtReport (on-demand computation, same service)
  - billing/service.go: TenantDebtSummary
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kurso/billing-engine/billing"
)

// DelinquencySweep periodically records tenant debt totals.
type DelinquencySweep struct {
	Store    billing.Store
	Debt     *billing.DebtService
	Log      *logrus.Logger
	Interval time.Duration
	Enabled  bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewDelinquencySweep creates a new sweep.
func NewDelinquencySweep(store billing.Store, debt *billing.DebtService, log *logrus.Logger) *DelinquencySweep {
	return &DelinquencySweep{
		Store:    store,
		Debt:     debt,
		Log:      log,
		Interval: 1 * time.Hour,
		Enabled:  true,
		stop:     make(chan struct{}),
	}
}

// Start begins the background sweep.
func (ds *DelinquencySweep) Start() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if !ds.Enabled {
		ds.Log.Info("sweep disabled, not starting")
		return
	}

	ds.ticker = time.NewTicker(ds.Interval)
	ds.wg.Add(1)

	go ds.run()

	ds.Log.WithField("interval", ds.Interval).Info("sweep started")
}

// Stop stops the sweep.
func (ds *DelinquencySweep) Stop() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.ticker != nil {
		ds.ticker.Stop()
		close(ds.stop)
		ds.wg.Wait()
		ds.Log.Info("sweep stopped")
	}
}

func (ds *DelinquencySweep) run() {
	defer ds.wg.Done()

	// Run immediately on start
	ds.sweep()

	for {
		select {
		case <-ds.ticker.C:
			ds.sweep()
		case <-ds.stop:
			return
		}
	}
}

func (ds *DelinquencySweep) sweep() {
	ctx := context.Background()

	tenants, err := ds.Store.ListTenants(ctx)
	if err != nil {
		ds.Log.WithError(err).Error("sweep: listing tenants failed")
		return
	}

	for _, tenant := range tenants {
		if err := ds.SweepTenant(ctx, tenant.ID); err != nil {
			ds.Log.WithError(err).WithField("tenant", tenant.ID).Error("sweep: tenant pass failed")
		}
	}
}

// SweepTenant recomputes one tenant's summary and records the run.
// Exported for the admin endpoint and tests.
func (ds *DelinquencySweep) SweepTenant(ctx context.Context, tenantID string) error {
	summary, err := ds.Debt.TenantDebtSummary(ctx, tenantID)
	if err != nil {
		return err
	}

	run := billing.SweepRun{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		RanAt:      ds.Debt.Now(),
		Students:   summary.Students,
		Delinquent: summary.Delinquent,
		TotalDebt:  summary.TotalDebt,
	}
	if err := ds.Store.SaveSweepRun(ctx, run); err != nil {
		return err
	}

	ds.Log.WithFields(logrus.Fields{
		"tenant":     tenantID,
		"students":   run.Students,
		"delinquent": run.Delinquent,
		"total_debt": run.TotalDebt.String(),
	}).Info("sweep: tenant pass complete")

	return nil
}

// RunNow triggers an immediate full pass (for testing/admin).
func (ds *DelinquencySweep) RunNow() {
	ds.sweep()
}
