// services/notifier.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"

	"github.com/resend/resend-go/v2"
)

// ReferralCodeEmail tells a new member which code to share.
type ReferralCodeEmail struct {
	To           string
	FirstName    string
	ReferralCode string
}

// Notifier delivers member notifications.
type Notifier interface {
	SendReferralCode(ctx context.Context, msg ReferralCodeEmail) error
}

// NotificationQueue accepts notifications without waiting for delivery.
// Enqueue reports false when the message was dropped.
type NotificationQueue interface {
	Enqueue(msg ReferralCodeEmail) bool
}

var referralEmailTemplate = template.Must(template.New("referral").Parse(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:24px 16px;background-color:#F0F3F3;font-family:Arial,sans-serif;">
  <p>Hi {{.FirstName}},</p>
  <p>Welcome to TANSA! Here's your referral code. Share it with friends so they can sign up and you both earn points.</p>
  <p style="background-color:#4A9BAD;color:#ffffff;padding:16px 24px;border-radius:8px;font-size:20px;font-weight:bold;letter-spacing:0.1em;text-align:center;">{{.ReferralCode}}</p>
  <p style="color:#4a5568;font-size:14px;">Save this email to find your code anytime.</p>
  <p style="color:#4a5568;font-size:12px;">Taiwanese and New Zealand Students' Association{{if .SiteURL}} · <a href="{{.SiteURL}}">{{.SiteURL}}</a>{{end}}</p>
</body>
</html>`))

// RenderReferralEmail builds the HTML body of the referral code email.
func RenderReferralEmail(msg ReferralCodeEmail, siteURL string) (string, error) {
	var buf bytes.Buffer
	err := referralEmailTemplate.Execute(&buf, struct {
		FirstName    string
		ReferralCode string
		SiteURL      string
	}{msg.FirstName, msg.ReferralCode, siteURL})
	if err != nil {
		return "", fmt.Errorf("render referral email: %w", err)
	}
	return buf.String(), nil
}

// ResendNotifier sends email through Resend.
type ResendNotifier struct {
	client  *resend.Client
	from    string
	siteURL string
}

// NewNotifier returns a Resend-backed notifier, or one that only logs when no
// API key is configured (local development).
func NewNotifier(apiKey, from, siteURL string) Notifier {
	if apiKey == "" {
		log.Println("⚠️  RESEND_API_KEY not set, referral emails will be skipped")
		return disabledNotifier{}
	}
	return &ResendNotifier{
		client:  resend.NewClient(apiKey),
		from:    from,
		siteURL: siteURL,
	}
}

func (n *ResendNotifier) SendReferralCode(ctx context.Context, msg ReferralCodeEmail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	html, err := RenderReferralEmail(msg, n.siteURL)
	if err != nil {
		return err
	}

	_, err = n.client.Emails.Send(&resend.SendEmailRequest{
		From:    n.from,
		To:      []string{msg.To},
		Subject: "Your TANSA referral code",
		Html:    html,
	})
	if err != nil {
		return unavailable("send referral email", err)
	}
	return nil
}

type disabledNotifier struct{}

func (disabledNotifier) SendReferralCode(_ context.Context, msg ReferralCodeEmail) error {
	log.Printf("[NOTIFY] ⚠️ Email disabled, not sending code %s to %s", msg.ReferralCode, msg.To)
	return nil
}
