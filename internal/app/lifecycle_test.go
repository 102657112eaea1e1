package app

import (
	"errors"
	"testing"
	"time"
)

func TestTransitionTable(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPending, StatusAccepted},
		{StatusPending, StatusRejected},
		{StatusAccepted, StatusCompleted},
		{StatusAccepted, StatusCancelled},
	}
	for _, tt := range allowed {
		if !CanTransition(tt.from, tt.to) {
			t.Errorf("expected %s -> %s to be allowed", tt.from, tt.to)
		}
	}

	all := []Status{StatusPending, StatusAccepted, StatusRejected, StatusCancelled, StatusCompleted}
	allowedSet := map[[2]Status]bool{}
	for _, tt := range allowed {
		allowedSet[[2]Status{tt.from, tt.to}] = true
	}
	for _, from := range all {
		for _, to := range all {
			if allowedSet[[2]Status{from, to}] {
				continue
			}
			if CanTransition(from, to) {
				t.Errorf("expected %s -> %s to be rejected", from, to)
			}
		}
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []Status{StatusRejected, StatusCancelled, StatusCompleted} {
		if !IsTerminal(s) {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []Status{StatusPending, StatusAccepted} {
		if IsTerminal(s) {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestCheckTransitionAuthorization(t *testing.T) {
	appt := &Appointment{ID: "a1", DoctorID: "doc-1", Status: StatusPending}

	err := CheckTransition(appt, StatusAccepted, "doc-2")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	// authorization is checked before the table, even for illegal moves
	err = CheckTransition(appt, StatusCompleted, "doc-2")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	if err := CheckTransition(appt, StatusAccepted, "doc-1"); err != nil {
		t.Fatalf("assigned doctor should be allowed: %v", err)
	}
}

func TestCheckTransitionFromNonPending(t *testing.T) {
	for _, from := range []Status{StatusAccepted, StatusRejected, StatusCancelled, StatusCompleted} {
		appt := &Appointment{ID: "a1", DoctorID: "doc-1", Status: from}
		for _, decision := range []Status{StatusAccepted, StatusRejected} {
			err := CheckTransition(appt, decision, "doc-1")
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("%s -> %s: expected ErrInvalidTransition, got %v", from, decision, err)
			}
		}
	}
}

func TestCheckTransitionFromNonAccepted(t *testing.T) {
	for _, from := range []Status{StatusPending, StatusRejected, StatusCancelled, StatusCompleted} {
		appt := &Appointment{ID: "a1", DoctorID: "doc-1", Status: from}
		for _, outcome := range []Status{StatusCompleted, StatusCancelled} {
			err := CheckTransition(appt, outcome, "doc-1")
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("%s -> %s: expected ErrInvalidTransition, got %v", from, outcome, err)
			}
		}
	}
}

func TestScheduledAt(t *testing.T) {
	at, err := ScheduledAt("2024-01-01", "09:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	if !at.Equal(want) {
		t.Errorf("got %v want %v", at, want)
	}

	// seconds are tolerated and ignored
	at, err = ScheduledAt("2024-01-01", "09:00:00")
	if err != nil {
		t.Fatalf("parse with seconds: %v", err)
	}
	if !at.Equal(want) {
		t.Errorf("got %v want %v", at, want)
	}

	for _, tt := range []struct{ date, tod string }{
		{"not-a-date", "09:00"},
		{"2024-01-01", "9am"},
		{"2024-01-01", ""},
		{"2024-13-40", "09:00"},
	} {
		if _, err := ScheduledAt(tt.date, tt.tod); !errors.Is(err, ErrValidation) {
			t.Errorf("ScheduledAt(%q, %q): expected ErrValidation, got %v", tt.date, tt.tod, err)
		}
	}
}

func TestDuePredicate(t *testing.T) {
	at, err := ScheduledAt("2024-01-01", "09:00")
	if err != nil {
		t.Fatal(err)
	}
	if at.After(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)) {
		t.Error("appointment at 09:00 should be due at 10:00")
	}
	if !at.After(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)) {
		t.Error("appointment at 09:00 should not be due at 08:00")
	}
}

func TestClassify(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	mk := func(id string, s Status, date, tod string) AppointmentView {
		return AppointmentView{Appointment: Appointment{ID: id, Status: s, Date: date, Time: tod}}
	}
	in := []AppointmentView{
		mk("p1", StatusPending, "2024-06-02", "10:00"),
		mk("u1", StatusAccepted, "2024-06-02", "10:00"),
		mk("u2", StatusAccepted, "2024-06-01", "12:00"), // exactly now: still upcoming
		mk("c1", StatusCompleted, "2024-05-01", "10:00"),
		mk("r1", StatusRejected, "2024-06-02", "10:00"),
		mk("x1", StatusCancelled, "2024-06-02", "10:00"),
	}

	b := Classify(in, now)

	if len(b.Pending) != 1 || b.Pending[0].ID != "p1" {
		t.Errorf("pending: %+v", b.Pending)
	}
	if len(b.Upcoming) != 2 {
		t.Errorf("upcoming: %+v", b.Upcoming)
	}
	if len(b.Completed) != 1 || b.Completed[0].ID != "c1" {
		t.Errorf("completed: %+v", b.Completed)
	}
	if len(b.RejectedOrCancelled) != 2 {
		t.Errorf("rejectedOrCancelled: %+v", b.RejectedOrCancelled)
	}

	// partitions are disjoint and cover the input
	seen := map[string]int{}
	for _, bucket := range [][]AppointmentView{b.Pending, b.Upcoming, b.Completed, b.RejectedOrCancelled} {
		for _, a := range bucket {
			seen[a.ID]++
		}
	}
	if len(seen) != len(in) {
		t.Errorf("expected %d classified, got %d", len(in), len(seen))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("appointment %s appears in %d buckets", id, n)
		}
	}
}

func TestClassifyStalenessWindow(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	in := []AppointmentView{
		// accepted but past due: invisible until the sweep promotes it
		{Appointment: Appointment{ID: "stale", Status: StatusAccepted, Date: "2024-06-01", Time: "08:00"}},
		// accepted with an unparseable time: skipped, not fatal
		{Appointment: Appointment{ID: "bad", Status: StatusAccepted, Date: "2024-06-02", Time: "noon"}},
	}
	b := Classify(in, now)
	total := len(b.Pending) + len(b.Upcoming) + len(b.Completed) + len(b.RejectedOrCancelled)
	if total != 0 {
		t.Errorf("expected no buckets, got %+v", b)
	}
}

func TestParseEnums(t *testing.T) {
	if _, err := ParseRole("superuser"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for unknown role, got %v", err)
	}
	if _, err := ParseStatus("approved"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for legacy status value, got %v", err)
	}
	if _, err := ParseMode("hybrid"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for unknown mode, got %v", err)
	}
	if r, err := ParseRole("doctor"); err != nil || r != RoleDoctor {
		t.Errorf("ParseRole(doctor) = %v, %v", r, err)
	}
}
