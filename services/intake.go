// services/intake.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"tansa-registration/models"
	"tansa-registration/store"
)

// IntakeResult says what Process did with a confirmed payment.
type IntakeResult int

const (
	IntakeCreated IntakeResult = iota
	IntakeAlreadyProcessed
	IntakeDiscarded
)

func (r IntakeResult) String() string {
	switch r {
	case IntakeCreated:
		return "created"
	case IntakeAlreadyProcessed:
		return "already_processed"
	case IntakeDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Write attempts before giving up on referral code collisions.
const maxCreateAttempts = 3

// RegistrationIntake turns confirmed payments into registrations.
type RegistrationIntake struct {
	store  store.RecordStore
	codes  *ReferralCodeGenerator
	notify NotificationQueue
}

func NewRegistrationIntake(s store.RecordStore, codes *ReferralCodeGenerator, notify NotificationQueue) *RegistrationIntake {
	return &RegistrationIntake{store: s, codes: codes, notify: notify}
}

// Process creates the registration for a confirmed payment, at most once per
// payment id and email. Duplicate deliveries return IntakeAlreadyProcessed
// with a nil error. Only store outages are returned as errors.
func (p *RegistrationIntake) Process(ctx context.Context, payment ConfirmedPayment) (IntakeResult, error) {
	md := payment.Metadata
	if md.FirstName == "" || md.Email == "" {
		log.Printf("[INTAKE] ⚠️ Payment %s missing required metadata, discarding", payment.PaymentID)
		return IntakeDiscarded, nil
	}

	done, err := p.alreadyProcessed(ctx, payment.PaymentID, md.Email)
	if err != nil {
		return 0, err
	}
	if done {
		log.Printf("[INTAKE] Payment %s already has a registration, skipping", payment.PaymentID)
		return IntakeAlreadyProcessed, nil
	}

	referrer, referredBy, err := p.resolveReferrer(ctx, md.ReferralCode)
	if err != nil {
		return 0, err
	}
	signedUpBy, err := resolveSignedUpBy(ctx, p.store, md.SignedUpBy)
	if err != nil {
		return 0, err
	}

	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		code, err := p.codes.Generate(ctx)
		if err != nil {
			return 0, err
		}
		reg := newRegistration(payment, code, referredBy, signedUpBy)

		err = p.create(ctx, reg, referrer)
		switch {
		case err == nil:
			log.Printf("[INTAKE] ✅ Registration %d created for payment %s with referral code %s (points=%d)",
				reg.ID, payment.PaymentID, code, reg.ReferralPoints)
			p.enqueueNotification(reg)
			return IntakeCreated, nil

		case errors.Is(err, store.ErrDuplicate):
			done, checkErr := p.alreadyProcessed(ctx, payment.PaymentID, md.Email)
			if checkErr != nil {
				return 0, checkErr
			}
			if done {
				log.Printf("[INTAKE] Payment %s was processed concurrently, skipping", payment.PaymentID)
				return IntakeAlreadyProcessed, nil
			}
			log.Printf("[INTAKE] ⚠️ Referral code %s collided on write (attempt %d/%d)", code, attempt, maxCreateAttempts)

		case errors.Is(err, ErrUnavailable):
			return 0, err

		default:
			return 0, unavailable("create registration", err)
		}
	}
	return 0, fmt.Errorf("%w: referral code collided %d times for payment %s", ErrConflict, maxCreateAttempts, payment.PaymentID)
}

// create awards the referrer and inserts the registration in one
// transaction, so a rejected insert never leaves a point behind.
func (p *RegistrationIntake) create(ctx context.Context, reg *models.Registration, referrer *models.Registration) error {
	return p.store.Transaction(ctx, func(tx store.RecordStore) error {
		if referrer != nil {
			err := NewPointsLedger(tx).AwardReferralPoint(ctx, referrer.ID)
			switch {
			case errors.Is(err, ErrRegistrationNotFound):
				log.Printf("[INTAKE] ⚠️ Referrer %d disappeared before award, ignoring referral", referrer.ID)
				reg.ReferralPoints = 0
				reg.ReferredBy = nil
			case err != nil:
				return err
			}
		}
		return tx.Create(ctx, reg)
	})
}

func (p *RegistrationIntake) alreadyProcessed(ctx context.Context, paymentID, email string) (bool, error) {
	if paymentID != "" {
		_, err := p.store.FindByPaymentID(ctx, paymentID)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return false, unavailable("find registration by payment", err)
		}
	}

	_, err := p.store.FindByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, unavailable("find registration by email", err)
	}
	return false, nil
}

// resolveReferrer looks up the code the member signed up with. Unknown codes
// are ignored here; they should already have been rejected before payment.
func (p *RegistrationIntake) resolveReferrer(ctx context.Context, raw string) (*models.Registration, *string, error) {
	code := NormalizeReferralCode(raw)
	if code == "" {
		return nil, nil, nil
	}

	referrer, err := p.store.FindByReferralCode(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		log.Printf("[INTAKE] ⚠️ Referral code %q matches no registration, ignoring", code)
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, unavailable("find referrer", err)
	}
	return referrer, &code, nil
}

func (p *RegistrationIntake) enqueueNotification(reg *models.Registration) {
	if p.notify == nil {
		return
	}
	msg := ReferralCodeEmail{
		To:           reg.Email,
		FirstName:    reg.FirstName,
		ReferralCode: reg.Code(),
	}
	if !p.notify.Enqueue(msg) {
		log.Printf("[INTAKE] ⚠️ Notification queue full, referral email for %s dropped", reg.Email)
	}
}

func newRegistration(payment ConfirmedPayment, code string, referredBy *string, signedUpBy *uint) *models.Registration {
	md := payment.Metadata
	paymentID := payment.PaymentID

	var points int64
	if referredBy != nil {
		points = 1
	}

	return &models.Registration{
		FirstName:       md.FirstName,
		LastName:        md.LastName,
		Email:           md.Email,
		PhoneNumber:     md.PhoneNumber,
		Gender:          md.Gender,
		Ethnicity:       md.Ethnicity,
		UniversityID:    md.UniversityID,
		UPI:             md.UPI,
		AreaOfStudy:     md.AreaOfStudy,
		YearLevel:       md.YearLevel,
		PaymentStatus:   models.PaymentStatusCompleted,
		StripePaymentID: &paymentID,
		Amount:          payment.AmountDollars(),
		ReferralCode:    &code,
		ReferralPoints:  points,
		ReferredBy:      referredBy,
		SignedUpByID:    signedUpBy,
	}
}
