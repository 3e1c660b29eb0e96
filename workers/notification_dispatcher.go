// workers/notification_dispatcher.go
package workers

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"tansa-registration/services"
)

const notificationSendTimeout = 15 * time.Second

type notificationJob struct {
	id  string
	msg services.ReferralCodeEmail
}

// NotificationDispatcher sends referral emails off the request path. Jobs
// that fail are logged and dropped.
type NotificationDispatcher struct {
	notifier services.Notifier
	queue    chan notificationJob
	wg       sync.WaitGroup
}

func NewNotificationDispatcher(notifier services.Notifier, queueSize int) *NotificationDispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &NotificationDispatcher{
		notifier: notifier,
		queue:    make(chan notificationJob, queueSize),
	}
}

// Enqueue never blocks. It reports false when the queue is full.
func (d *NotificationDispatcher) Enqueue(msg services.ReferralCodeEmail) bool {
	job := notificationJob{id: uuid.NewString(), msg: msg}
	select {
	case d.queue <- job:
		return true
	default:
		log.Printf("[NOTIFY] ⚠️ Queue full, dropping job %s for %s", job.id, msg.To)
		return false
	}
}

func (d *NotificationDispatcher) Start(ctx context.Context) {
	log.Println("🔁 Starting notification dispatcher…")
	d.wg.Add(1)
	go d.run(ctx)
}

// Wait blocks until the dispatcher has stopped and drained its queue.
func (d *NotificationDispatcher) Wait() {
	d.wg.Wait()
}

func (d *NotificationDispatcher) run(ctx context.Context) {
	defer d.wg.Done()

	// Shutdown stops intake, not a send already under way.
	sendCtx := context.WithoutCancel(ctx)
	for {
		select {
		case job := <-d.queue:
			d.send(sendCtx, job)
		case <-ctx.Done():
			d.drain(sendCtx)
			log.Println("⏹️ Notification dispatcher stopped")
			return
		}
	}
}

// drain sends whatever was accepted before shutdown.
func (d *NotificationDispatcher) drain(ctx context.Context) {
	for {
		select {
		case job := <-d.queue:
			d.send(ctx, job)
		default:
			return
		}
	}
}

func (d *NotificationDispatcher) send(ctx context.Context, job notificationJob) {
	ctx, cancel := context.WithTimeout(ctx, notificationSendTimeout)
	defer cancel()

	if err := d.notifier.SendReferralCode(ctx, job.msg); err != nil {
		log.Printf("[NOTIFY] ❌ Job %s to %s failed: %v", job.id, job.msg.To, err)
		return
	}
	log.Printf("[NOTIFY] ✅ Job %s: referral code %s sent to %s", job.id, job.msg.ReferralCode, job.msg.To)
}
