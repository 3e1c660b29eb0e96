// services/points_ledger.go
package services

import (
	"context"
	"errors"

	"tansa-registration/store"
)

// PointsLedger is the only writer of Registration.ReferralPoints.
type PointsLedger struct {
	store store.RecordStore
}

func NewPointsLedger(s store.RecordStore) *PointsLedger {
	return &PointsLedger{store: s}
}

// AwardReferralPoint adds exactly one point to the registration.
func (l *PointsLedger) AwardReferralPoint(ctx context.Context, registrationID uint) error {
	err := l.store.IncrementReferralPoints(ctx, registrationID, 1)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrRegistrationNotFound
	default:
		return unavailable("award referral point", err)
	}
}

// Points returns the current balance for a registration.
func (l *PointsLedger) Points(ctx context.Context, registrationID uint) (int64, error) {
	reg, err := l.store.FindByID(ctx, registrationID)
	switch {
	case err == nil:
		return reg.ReferralPoints, nil
	case errors.Is(err, store.ErrNotFound):
		return 0, ErrRegistrationNotFound
	default:
		return 0, unavailable("read referral points", err)
	}
}
