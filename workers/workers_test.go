package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tansa-registration/services"
	"tansa-registration/store/storetest"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []services.ReferralCodeEmail
	fail bool
}

func (n *recordingNotifier) SendReferralCode(_ context.Context, msg services.ReferralCodeEmail) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("smtp down")
	}
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

func TestDispatcherSendsQueuedMessages(t *testing.T) {
	n := &recordingNotifier{}
	d := NewNotificationDispatcher(n, 8)
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	for i := 0; i < 3; i++ {
		require.True(t, d.Enqueue(services.ReferralCodeEmail{To: "kiri@example.com", ReferralCode: "TANSA-AB2C"}))
	}
	require.Eventually(t, func() bool { return n.count() == 3 }, time.Second, 10*time.Millisecond)

	cancel()
	d.Wait()
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	d := NewNotificationDispatcher(&recordingNotifier{}, 1)

	assert.True(t, d.Enqueue(services.ReferralCodeEmail{To: "a@example.com"}))
	assert.False(t, d.Enqueue(services.ReferralCodeEmail{To: "b@example.com"}))
}

func TestDispatcherDrainsOnShutdown(t *testing.T) {
	n := &recordingNotifier{}
	d := NewNotificationDispatcher(n, 4)
	for i := 0; i < 4; i++ {
		require.True(t, d.Enqueue(services.ReferralCodeEmail{To: "kiri@example.com"}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)
	d.Wait()

	assert.Equal(t, 4, n.count())
}

func TestDispatcherSurvivesSendFailure(t *testing.T) {
	n := &recordingNotifier{fail: true}
	d := NewNotificationDispatcher(n, 2)
	require.True(t, d.Enqueue(services.ReferralCodeEmail{To: "kiri@example.com"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)
	d.Wait()

	assert.Zero(t, n.count())
}

type listGateway struct {
	since    time.Time
	payments []services.ConfirmedPayment
}

func (g *listGateway) CreateIntent(context.Context, int64, string) (*services.PaymentIntent, error) {
	return nil, errors.New("not used")
}

func (g *listGateway) AttachSignupMetadata(context.Context, string, services.SignupMetadata) error {
	return errors.New("not used")
}

func (g *listGateway) ListSucceededSince(_ context.Context, since time.Time) ([]services.ConfirmedPayment, error) {
	g.since = since
	return g.payments, nil
}

func TestReconcileWorkerRunOnce(t *testing.T) {
	s, _ := storetest.New(t)
	n := &recordingNotifier{}
	d := NewNotificationDispatcher(n, 4)

	gw := &listGateway{payments: []services.ConfirmedPayment{{
		PaymentID:   "pi_missed",
		AmountCents: 700,
		Currency:    "nzd",
		Metadata:    services.SignupMetadata{FirstName: "Kiri", LastName: "Chen", Email: "kiri@example.com"},
	}}}
	intake := services.NewRegistrationIntake(s, services.NewReferralCodeGenerator(s), d)
	w := NewPaymentReconcileWorker(services.NewPaymentReconciler(gw, intake), time.Minute, 6*time.Hour)
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	sum := w.RunOnce(context.Background())
	assert.Equal(t, 1, sum.Created)
	assert.Equal(t, now.Add(-6*time.Hour), gw.since)

	sum = w.RunOnce(context.Background())
	assert.Equal(t, 0, sum.Created)
	assert.Equal(t, 1, sum.AlreadyProcessed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)
	d.Wait()
	assert.Equal(t, 1, n.count())
}
