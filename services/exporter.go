// services/exporter.go
package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"strconv"
	"time"

	"tansa-registration/models"
	"tansa-registration/store"
)

// ObjectUploader stores a finished file somewhere durable.
type ObjectUploader interface {
	PutObject(ctx context.Context, key, contentType string, body []byte) (string, error)
}

var exportHeader = []string{
	"id", "firstName", "lastName", "email", "phoneNumber", "gender", "ethnicity",
	"universityId", "upi", "areaOfStudy", "yearLevel", "paymentStatus",
	"stripePaymentId", "amount", "referralCode", "referralPoints", "referredBy",
	"signedUpBy", "createdAt",
}

// RegistrationExporter snapshots the registrations table as CSV.
type RegistrationExporter struct {
	store    store.RecordStore
	uploader ObjectUploader
	now      func() time.Time
}

func NewRegistrationExporter(s store.RecordStore, uploader ObjectUploader) *RegistrationExporter {
	return &RegistrationExporter{store: s, uploader: uploader, now: time.Now}
}

// WriteCSV renders every registration, oldest first.
func (e *RegistrationExporter) WriteCSV(ctx context.Context) ([]byte, int, error) {
	regs, err := e.store.ListRegistrations(ctx)
	if err != nil {
		return nil, 0, unavailable("list registrations", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, 0, fmt.Errorf("write csv header: %w", err)
	}
	for i := range regs {
		if err := w.Write(exportRow(&regs[i])); err != nil {
			return nil, 0, fmt.Errorf("write csv row %d: %w", regs[i].ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, 0, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), len(regs), nil
}

// Export uploads today's snapshot and returns where it went.
func (e *RegistrationExporter) Export(ctx context.Context) (string, error) {
	body, count, err := e.WriteCSV(ctx)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("exports/registrations-%s.csv", e.now().UTC().Format("2006-01-02"))
	url, err := e.uploader.PutObject(ctx, key, "text/csv", body)
	if err != nil {
		return "", unavailable("upload export", err)
	}
	log.Printf("[EXPORT] ✅ Exported %d registration(s) to %s", count, key)
	return url, nil
}

func exportRow(r *models.Registration) []string {
	signedUpBy := SignedUpByOnline
	if r.SignedUpByID != nil {
		signedUpBy = strconv.FormatUint(uint64(*r.SignedUpByID), 10)
	}
	return []string{
		strconv.FormatUint(uint64(r.ID), 10),
		r.FirstName,
		r.LastName,
		r.Email,
		r.PhoneNumber,
		r.Gender,
		r.Ethnicity,
		r.UniversityID,
		r.UPI,
		r.AreaOfStudy,
		r.YearLevel,
		string(r.PaymentStatus),
		deref(r.StripePaymentID),
		r.Amount.StringFixed(2),
		deref(r.ReferralCode),
		strconv.FormatInt(r.ReferralPoints, 10),
		deref(r.ReferredBy),
		signedUpBy,
		r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
