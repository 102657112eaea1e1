package app

import (
	"context"
	"log"
	"time"
)

// ReconcileDueAppointments advances every accepted appointment whose
// scheduled moment has passed to completed. The update predicate re-checks
// status=accepted, so a doctor cancelling concurrently wins and the row is
// simply skipped. Malformed date/time values are logged and skipped; one
// bad row never aborts the pass. Running the sweep twice back to back
// updates nothing the second time.
func (a *App) ReconcileDueAppointments(ctx context.Context, now time.Time) (int, error) {
	appts, err := a.ListAcceptedAppointments(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, appt := range appts {
		at, err := appt.ScheduledAt()
		if err != nil {
			log.Printf("sweep: skipping appointment %s: %v", appt.ID, err)
			continue
		}
		if at.After(now) {
			continue
		}
		applied, err := a.UpdateAppointmentStatus(ctx, appt.ID, StatusAccepted, StatusCompleted)
		if err != nil {
			log.Printf("sweep: appointment %s: %v", appt.ID, err)
			continue
		}
		if applied {
			count++
		}
	}
	return count, nil
}

// Sweeper runs the reconciliation pass on a fixed interval.
type Sweeper struct {
	app      *App
	interval time.Duration
	stop     chan struct{}
}

func NewSweeper(a *App, interval time.Duration) *Sweeper {
	return &Sweeper{app: a, interval: interval, stop: make(chan struct{})}
}

// Start launches the ticker loop. Sweep errors are logged, never fatal:
// a failed pass just delays completion until the next tick.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				n, err := s.app.ReconcileDueAppointments(ctx, time.Now().UTC())
				if err != nil {
					log.Printf("sweep failed: %v", err)
					continue
				}
				log.Printf("sweep: %d appointment(s) marked completed", n)
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *Sweeper) Stop() {
	close(s.stop)
}
