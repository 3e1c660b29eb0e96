// workers/payment_reconcile_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"tansa-registration/services"
)

// PaymentReconcileWorker periodically backfills registrations for payments
// whose webhook was never delivered.
type PaymentReconcileWorker struct {
	reconciler *services.PaymentReconciler
	interval   time.Duration
	lookback   time.Duration
	now        func() time.Time
}

func NewPaymentReconcileWorker(reconciler *services.PaymentReconciler, interval, lookback time.Duration) *PaymentReconcileWorker {
	return &PaymentReconcileWorker{
		reconciler: reconciler,
		interval:   interval,
		lookback:   lookback,
		now:        time.Now,
	}
}

func (w *PaymentReconcileWorker) Start(ctx context.Context) {
	log.Printf("🔁 Starting payment reconcile worker (every %s, lookback %s)…", w.interval, w.lookback)
	go w.run(ctx)
}

func (w *PaymentReconcileWorker) run(ctx context.Context) {
	w.RunOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.RunOnce(ctx)
		case <-ctx.Done():
			log.Println("⏹️ Payment reconcile worker stopped")
			return
		}
	}
}

// RunOnce reconciles the lookback window ending now.
func (w *PaymentReconcileWorker) RunOnce(ctx context.Context) services.ReconcileSummary {
	since := w.now().UTC().Add(-w.lookback)
	log.Printf("[RECONCILE] 📡 Checking payments since %s", since.Format(time.RFC3339))

	sum, err := w.reconciler.Reconcile(ctx, since)
	if err != nil {
		log.Printf("[RECONCILE] ❌ Reconcile failed: %v", err)
		return sum
	}
	log.Printf("[RECONCILE] ✅ seen=%d created=%d already=%d discarded=%d failed=%d",
		sum.Seen, sum.Created, sum.AlreadyProcessed, sum.Discarded, sum.Failed)
	return sum
}
