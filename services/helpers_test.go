package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"tansa-registration/models"
	"tansa-registration/store"
)

func strPtr(s string) *string { return &s }

// seedMember inserts a completed registration directly.
func seedMember(t *testing.T, s store.RecordStore, email, code string, points int64) *models.Registration {
	t.Helper()
	reg := &models.Registration{
		FirstName:       "Member",
		LastName:        email,
		Email:           email,
		PaymentStatus:   models.PaymentStatusCompleted,
		StripePaymentID: strPtr("pi_seed_" + email),
		Amount:          decimal.NewFromInt(7),
		ReferralCode:    strPtr(code),
		ReferralPoints:  points,
	}
	require.NoError(t, s.Create(context.Background(), reg))
	return reg
}

// sequence returns a randIndex that replays idx in order, cycling.
func sequence(idx ...int) func(int) int {
	i := 0
	return func(int) int {
		v := idx[i%len(idx)]
		i++
		return v
	}
}

type recordingQueue struct {
	mu   sync.Mutex
	msgs []ReferralCodeEmail
	full bool
}

func (q *recordingQueue) Enqueue(msg ReferralCodeEmail) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.full {
		return false
	}
	q.msgs = append(q.msgs, msg)
	return true
}

func (q *recordingQueue) sent() []ReferralCodeEmail {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]ReferralCodeEmail(nil), q.msgs...)
}

type fakeGateway struct {
	mu        sync.Mutex
	intents   []int64
	currency  string
	attached  map[string]SignupMetadata
	succeeded []ConfirmedPayment
	since     time.Time
	err       error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{attached: map[string]SignupMetadata{}}
}

func (g *fakeGateway) CreateIntent(_ context.Context, amountCents int64, currency string) (*PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.intents = append(g.intents, amountCents)
	g.currency = currency
	return &PaymentIntent{ID: "pi_new", ClientSecret: "pi_new_secret"}, nil
}

func (g *fakeGateway) AttachSignupMetadata(_ context.Context, paymentID string, md SignupMetadata) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return g.err
	}
	g.attached[paymentID] = md
	return nil
}

func (g *fakeGateway) ListSucceededSince(_ context.Context, since time.Time) ([]ConfirmedPayment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.since = since
	if g.err != nil {
		return nil, g.err
	}
	return g.succeeded, nil
}

func confirmedPayment(paymentID, email, referralCode, signedUpBy string) ConfirmedPayment {
	return ConfirmedPayment{
		PaymentID:   paymentID,
		AmountCents: 700,
		Currency:    "nzd",
		Metadata: SignupMetadata{
			FirstName:    "Kiri",
			LastName:     "Chen",
			Email:        email,
			PhoneNumber:  "0211234567",
			Gender:       "female",
			Ethnicity:    "taiwanese",
			UniversityID: "123456789",
			UPI:          "kche123",
			AreaOfStudy:  "engineering",
			YearLevel:    "first-year",
			ReferralCode: referralCode,
			SignedUpBy:   signedUpBy,
		},
	}
}

func countRegistrations(t *testing.T, s store.RecordStore) int {
	t.Helper()
	regs, err := s.ListRegistrations(context.Background())
	require.NoError(t, err)
	return len(regs)
}
