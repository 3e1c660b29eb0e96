package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
)

const testWebhookSecret = "whsec_test_secret"

func eventPayload(t *testing.T, eventType string, metadata map[string]string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"id":          "evt_1",
		"object":      "event",
		"type":        eventType,
		"api_version": "2023-10-16",
		"data": map[string]any{
			"object": map[string]any{
				"id":       "pi_123",
				"object":   "payment_intent",
				"amount":   700,
				"currency": "nzd",
				"status":   "succeeded",
				"metadata": metadata,
			},
		},
	})
	require.NoError(t, err)
	return body
}

func signedHeader(payload []byte, secret string) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	}).Header
}

func TestParseWebhookSucceededPayment(t *testing.T) {
	md := confirmedPayment("", "kiri@example.com", "tansa-ab2c", "online").Metadata.ToMap()
	md["lastName"] = "  Ma\u0304ori  "
	payload := eventPayload(t, "payment_intent.succeeded", md)

	payment, ok, err := ParseWebhook(payload, signedHeader(payload, testWebhookSecret), testWebhookSecret)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "pi_123", payment.PaymentID)
	assert.Equal(t, int64(700), payment.AmountCents)
	assert.True(t, payment.AmountDollars().Equal(decimal.RequireFromString("7.00")))
	assert.Equal(t, "kiri@example.com", payment.Metadata.Email)
	assert.Equal(t, "tansa-ab2c", payment.Metadata.ReferralCode)
	assert.Equal(t, "online", payment.Metadata.SignedUpBy)
	assert.Equal(t, "M\u0101ori", payment.Metadata.LastName)
}

func TestParseWebhookIgnoresOtherEvents(t *testing.T) {
	payload := eventPayload(t, "payment_intent.created", nil)

	payment, ok, err := ParseWebhook(payload, signedHeader(payload, testWebhookSecret), testWebhookSecret)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, payment)
}

func TestParseWebhookRejectsBadSignature(t *testing.T) {
	payload := eventPayload(t, "payment_intent.succeeded", nil)

	_, _, err := ParseWebhook(payload, signedHeader(payload, "whsec_other"), testWebhookSecret)
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = ParseWebhook(payload, "t=1,v1=deadbeef", testWebhookSecret)
	assert.ErrorIs(t, err, ErrValidation)

	tampered := append([]byte(nil), payload...)
	header := signedHeader(payload, testWebhookSecret)
	tampered[len(tampered)-2] = ' '
	_, _, err = ParseWebhook(tampered, header, testWebhookSecret)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMetadataRoundTrip(t *testing.T) {
	form := confirmedPayment("", "kiri@example.com", "TANSA-AB2C", "7").Metadata
	md := form.ToMap()
	assert.Equal(t, "signup", md["type"])
	assert.Equal(t, form, MetadataFromMap(md))
}
