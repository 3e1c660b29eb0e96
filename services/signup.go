// services/signup.go
package services

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	"tansa-registration/models"
	"tansa-registration/store"
)

// SignupService backs the payment form: it creates the intent, validates the
// member's details against the store and carries them on the intent until
// the payment succeeds.
type SignupService struct {
	store    store.RecordStore
	gateway  PaymentGateway
	feeCents int64
	currency string
}

func NewSignupService(s store.RecordStore, gateway PaymentGateway, feeCents int64, currency string) *SignupService {
	return &SignupService{
		store:    s,
		gateway:  gateway,
		feeCents: feeCents,
		currency: currency,
	}
}

// CreatePaymentIntent opens an intent for the membership fee.
func (s *SignupService) CreatePaymentIntent(ctx context.Context) (*PaymentIntent, error) {
	return s.gateway.CreateIntent(ctx, s.feeCents, s.currency)
}

// Validate checks the form before payment. It returns the form with the
// referral code normalized and signedUpBy resolved to an exec id or "online".
// Nothing is written.
func (s *SignupService) Validate(ctx context.Context, form SignupMetadata) (SignupMetadata, error) {
	form.FirstName = strings.TrimSpace(form.FirstName)
	form.Email = strings.TrimSpace(form.Email)
	if form.FirstName == "" || form.Email == "" {
		return form, ErrMissingIdentity
	}

	_, err := s.store.FindByEmail(ctx, form.Email)
	switch {
	case err == nil:
		return form, ErrEmailAlreadyRegistered
	case !errors.Is(err, store.ErrNotFound):
		return form, unavailable("find registration by email", err)
	}

	form.ReferralCode = NormalizeReferralCode(form.ReferralCode)
	if form.ReferralCode != "" {
		if !IsValidReferralCodeFormat(form.ReferralCode) {
			return form, ErrInvalidReferralCode
		}
		_, err := s.store.FindByReferralCode(ctx, form.ReferralCode)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return form, ErrReferralCodeNotFound
		case err != nil:
			return form, unavailable("find referral code", err)
		}
	}

	execID, err := resolveSignedUpBy(ctx, s.store, form.SignedUpBy)
	if err != nil {
		return form, err
	}
	if execID == nil {
		form.SignedUpBy = SignedUpByOnline
	} else {
		form.SignedUpBy = strconv.FormatUint(uint64(*execID), 10)
	}
	return form, nil
}

// AttachToPayment validates the form and stores it on the payment intent.
func (s *SignupService) AttachToPayment(ctx context.Context, paymentID string, form SignupMetadata) error {
	if strings.TrimSpace(paymentID) == "" {
		return ErrMissingPaymentID
	}
	form, err := s.Validate(ctx, form)
	if err != nil {
		return err
	}
	if err := s.gateway.AttachSignupMetadata(ctx, paymentID, form); err != nil {
		return err
	}
	log.Printf("[SIGNUP] 📥 Details attached to payment %s (referral=%q, signedUpBy=%s)",
		paymentID, form.ReferralCode, form.SignedUpBy)
	return nil
}

// RegistrationForPayment returns the registration the webhook created for a
// payment. ErrRegistrationNotFound means the webhook has not landed yet.
func (s *SignupService) RegistrationForPayment(ctx context.Context, paymentID string) (*models.Registration, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, ErrMissingPaymentID
	}
	reg, err := s.store.FindByPaymentID(ctx, paymentID)
	switch {
	case err == nil:
		return reg, nil
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrRegistrationNotFound
	default:
		return nil, unavailable("find registration by payment", err)
	}
}

// resolveSignedUpBy maps "" and "online" to nil, otherwise an existing exec id.
// Anything that does not resolve is recorded as online.
func resolveSignedUpBy(ctx context.Context, s store.RecordStore, raw string) (*uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, SignedUpByOnline) {
		return nil, nil
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		log.Printf("[SIGNUP] ⚠️ signedUpBy %q is not an exec id, recording as online", raw)
		return nil, nil
	}

	exec, err := s.FindExecByID(ctx, uint(id))
	if errors.Is(err, store.ErrNotFound) {
		log.Printf("[SIGNUP] ⚠️ Exec %d not found, recording as online", id)
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("find exec", err)
	}
	return &exec.ID, nil
}
