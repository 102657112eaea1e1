package app

import (
	"fmt"
	"time"
)

// transitions is the complete set of legal status moves. Everything not
// listed here is rejected, so terminal states have no entry at all.
var transitions = map[Status][]Status{
	StatusPending:  {StatusAccepted, StatusRejected},
	StatusAccepted: {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status has no outgoing transitions.
func IsTerminal(s Status) bool {
	return len(transitions[s]) == 0
}

// CheckTransition is the single choke point for status changes: every
// route and the sweep go through the same table. The actor must be the
// assigned doctor regardless of the requested move.
func CheckTransition(a *Appointment, to Status, actorID string) error {
	if actorID != a.DoctorID {
		return ErrUnauthorized
	}
	if !CanTransition(a.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, to)
	}
	return nil
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// parseHHMM reads the first five chars of a time-of-day string, so values
// with seconds ("09:00:00") still parse.
func parseHHMM(s string) (time.Time, error) {
	if len(s) < 5 {
		return time.Time{}, fmt.Errorf("%w: time %q", ErrValidation, s)
	}
	tt, err := time.Parse(timeLayout, s[:5])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time %q", ErrValidation, s)
	}
	return tt, nil
}

// ScheduledAt combines an appointment's date and time-of-day into a single
// UTC instant.
func ScheduledAt(date, tod string) (time.Time, error) {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrValidation, date)
	}
	t, err := parseHHMM(tod)
	if err != nil {
		return time.Time{}, err
	}
	year, month, day := d.Date()
	return time.Date(year, month, day, t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

// ScheduledAt returns the appointment's scheduled instant.
func (a *Appointment) ScheduledAt() (time.Time, error) {
	return ScheduledAt(a.Date, a.Time)
}

// Buckets is the display partition of a set of appointments.
type Buckets struct {
	Pending             []AppointmentView `json:"pending"`
	Upcoming            []AppointmentView `json:"upcoming"`
	Completed           []AppointmentView `json:"completed"`
	RejectedOrCancelled []AppointmentView `json:"rejectedOrCancelled"`
}

// Classify partitions appointments for display. Accepted appointments whose
// scheduled time has already passed (or cannot be parsed) fall into no
// bucket: they stay invisible until the reconciliation sweep moves them to
// completed. That staleness window is expected, not an error.
func Classify(appts []AppointmentView, now time.Time) Buckets {
	var b Buckets
	for _, a := range appts {
		switch a.Status {
		case StatusPending:
			b.Pending = append(b.Pending, a)
		case StatusAccepted:
			at, err := a.ScheduledAt()
			if err == nil && !at.Before(now) {
				b.Upcoming = append(b.Upcoming, a)
			}
		case StatusCompleted:
			b.Completed = append(b.Completed, a)
		case StatusRejected, StatusCancelled:
			b.RejectedOrCancelled = append(b.RejectedOrCancelled, a)
		}
	}
	return b
}
