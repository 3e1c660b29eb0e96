// services/reconcile.go
package services

import (
	"context"
	"log"
	"time"
)

type ReconcileSummary struct {
	Seen             int
	Created          int
	AlreadyProcessed int
	Discarded        int
	Failed           int
}

// PaymentReconciler replays succeeded payments through the intake pipeline
// so a webhook that never arrived still produces a registration.
type PaymentReconciler struct {
	gateway PaymentGateway
	intake  *RegistrationIntake
}

func NewPaymentReconciler(gateway PaymentGateway, intake *RegistrationIntake) *PaymentReconciler {
	return &PaymentReconciler{gateway: gateway, intake: intake}
}

// Reconcile processes every payment that succeeded at or after since.
// Individual failures are counted and logged; only a failed listing is
// returned as an error.
func (r *PaymentReconciler) Reconcile(ctx context.Context, since time.Time) (ReconcileSummary, error) {
	var sum ReconcileSummary

	payments, err := r.gateway.ListSucceededSince(ctx, since)
	if err != nil {
		return sum, err
	}
	sum.Seen = len(payments)

	for _, p := range payments {
		if ctx.Err() != nil {
			return sum, ctx.Err()
		}
		res, err := r.intake.Process(ctx, p)
		if err != nil {
			sum.Failed++
			log.Printf("[RECONCILE] ❌ Payment %s: %v", p.PaymentID, err)
			continue
		}
		switch res {
		case IntakeCreated:
			sum.Created++
			log.Printf("[RECONCILE] ✅ Recovered missed payment %s", p.PaymentID)
		case IntakeAlreadyProcessed:
			sum.AlreadyProcessed++
		case IntakeDiscarded:
			sum.Discarded++
		}
	}
	return sum, nil
}
