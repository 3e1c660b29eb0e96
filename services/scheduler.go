// services/scheduler.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartExportScheduler uploads a registration export every interval until
// the returned scheduler is shut down.
func (e *RegistrationExporter) StartExportScheduler(ctx context.Context, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if _, err := e.Export(ctx); err != nil {
				log.Printf("[Scheduler] Export failed: %v", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("schedule export: %w", err)
	}

	sched.Start()
	log.Printf("[Scheduler] Registration export every %s", interval)
	return sched, nil
}
