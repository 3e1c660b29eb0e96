// services/payments.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"golang.org/x/text/unicode/norm"
)

const (
	metadataTypeSignup    = "signup"
	eventPaymentSucceeded = "payment_intent.succeeded"
	SignedUpByOnline      = "online"
)

// SignupMetadata is the sign-up form as carried on a payment intent.
type SignupMetadata struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phoneNumber"`
	Gender       string `json:"gender"`
	Ethnicity    string `json:"ethnicity"`
	UniversityID string `json:"universityId"`
	UPI          string `json:"upi"`
	AreaOfStudy  string `json:"areaOfStudy"`
	YearLevel    string `json:"yearLevel"`
	ReferralCode string `json:"referralCode"`
	SignedUpBy   string `json:"signedUpBy"`
}

// ToMap renders the metadata in the key layout the webhook reads back.
func (m SignupMetadata) ToMap() map[string]string {
	return map[string]string{
		"type":         metadataTypeSignup,
		"firstName":    m.FirstName,
		"lastName":     m.LastName,
		"email":        m.Email,
		"phoneNumber":  m.PhoneNumber,
		"gender":       m.Gender,
		"ethnicity":    m.Ethnicity,
		"universityId": m.UniversityID,
		"upi":          m.UPI,
		"areaOfStudy":  m.AreaOfStudy,
		"yearLevel":    m.YearLevel,
		"referralCode": m.ReferralCode,
		"signedUpBy":   m.SignedUpBy,
	}
}

// MetadataFromMap reads payment metadata back into a form. Free-text fields
// are trimmed and NFC-normalized so macrons compare consistently.
func MetadataFromMap(md map[string]string) SignupMetadata {
	clean := func(key string) string {
		return norm.NFC.String(strings.TrimSpace(md[key]))
	}
	return SignupMetadata{
		FirstName:    clean("firstName"),
		LastName:     clean("lastName"),
		Email:        clean("email"),
		PhoneNumber:  clean("phoneNumber"),
		Gender:       clean("gender"),
		Ethnicity:    clean("ethnicity"),
		UniversityID: clean("universityId"),
		UPI:          clean("upi"),
		AreaOfStudy:  clean("areaOfStudy"),
		YearLevel:    clean("yearLevel"),
		ReferralCode: clean("referralCode"),
		SignedUpBy:   clean("signedUpBy"),
	}
}

// ConfirmedPayment is a succeeded charge with its sign-up metadata.
type ConfirmedPayment struct {
	PaymentID   string
	AmountCents int64
	Currency    string
	Metadata    SignupMetadata
}

// AmountDollars converts the minor-unit amount to dollars.
func (p ConfirmedPayment) AmountDollars() decimal.Decimal {
	return decimal.New(p.AmountCents, -2)
}

// PaymentIntent is what the browser needs to complete a card payment.
type PaymentIntent struct {
	ID           string `json:"paymentIntentId"`
	ClientSecret string `json:"clientSecret"`
}

// PaymentGateway is the card processor as seen by the sign-up flow.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string) (*PaymentIntent, error)
	AttachSignupMetadata(ctx context.Context, paymentID string, md SignupMetadata) error
	ListSucceededSince(ctx context.Context, since time.Time) ([]ConfirmedPayment, error)
}

// StripeGateway implements PaymentGateway with the Stripe API.
type StripeGateway struct {
	client *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{client: client.New(secretKey, nil)}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amountCents int64, currency string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx

	pi, err := g.client.PaymentIntents.New(params)
	if err != nil {
		return nil, unavailable("create payment intent", err)
	}
	return &PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (g *StripeGateway) AttachSignupMetadata(ctx context.Context, paymentID string, md SignupMetadata) error {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	for key, value := range md.ToMap() {
		params.AddMetadata(key, value)
	}

	if _, err := g.client.PaymentIntents.Update(paymentID, params); err != nil {
		return unavailable("update payment intent", err)
	}
	return nil
}

func (g *StripeGateway) ListSucceededSince(ctx context.Context, since time.Time) ([]ConfirmedPayment, error) {
	params := &stripe.PaymentIntentListParams{
		CreatedRange: &stripe.RangeQueryParams{GreaterThanOrEqual: since.Unix()},
	}
	params.Context = ctx

	var out []ConfirmedPayment
	iter := g.client.PaymentIntents.List(params)
	for iter.Next() {
		pi := iter.PaymentIntent()
		if pi.Status != stripe.PaymentIntentStatusSucceeded {
			continue
		}
		out = append(out, confirmedFromIntent(pi))
	}
	if err := iter.Err(); err != nil {
		return nil, unavailable("list payment intents", err)
	}
	return out, nil
}

func confirmedFromIntent(pi *stripe.PaymentIntent) ConfirmedPayment {
	return ConfirmedPayment{
		PaymentID:   pi.ID,
		AmountCents: pi.Amount,
		Currency:    string(pi.Currency),
		Metadata:    MetadataFromMap(pi.Metadata),
	}
}

// ParseWebhook verifies a Stripe webhook and extracts a succeeded payment.
// ok is false for verified events of any other type.
func ParseWebhook(payload []byte, signature, secret string) (payment *ConfirmedPayment, ok bool, err error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, false, fmt.Errorf("%w: webhook signature: %w", ErrValidation, err)
	}
	if event.Type != eventPaymentSucceeded {
		return nil, false, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, false, fmt.Errorf("%w: payment intent payload: %w", ErrValidation, err)
	}
	confirmed := confirmedFromIntent(&pi)
	return &confirmed, true, nil
}
