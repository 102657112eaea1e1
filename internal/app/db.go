package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func (a *App) CreateUser(ctx context.Context, u *User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	_, err := a.DB.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, specialization, experience, doctor_status, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Specialization, u.Experience, u.DoctorStatus, now, now)
	return err
}

const userCols = `id, name, email, password_hash, role, specialization, experience, doctor_status, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.Specialization, &u.Experience, &u.DoctorStatus, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (a *App) UserByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(a.DB.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE email=$1`, email))
}

func (a *App) UserByID(ctx context.Context, id string) (*User, error) {
	return scanUser(a.DB.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE id=$1`, id))
}

func (a *App) listUsers(ctx context.Context, q string, args ...any) ([]User, error) {
	rows, err := a.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
			&u.Specialization, &u.Experience, &u.DoctorStatus, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (a *App) ListUsers(ctx context.Context) ([]User, error) {
	return a.listUsers(ctx, `SELECT `+userCols+` FROM users ORDER BY created_at`)
}

func (a *App) ListDoctors(ctx context.Context) ([]User, error) {
	return a.listUsers(ctx,
		`SELECT `+userCols+` FROM users WHERE role=$1 ORDER BY name`, RoleDoctor)
}

// UpdateUserProfile rewrites a user's display fields. The role predicate
// scopes the admin's patient management to patient accounts.
func (a *App) UpdateUserProfile(ctx context.Context, id string, role Role, name, email string) error {
	tag, err := a.DB.Exec(ctx,
		`UPDATE users SET name=$1, email=$2, updated_at=now() WHERE id=$3 AND role=$4`,
		name, email, id, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user", ErrNotFound)
	}
	return nil
}

// DeleteUser removes an account and its dependent rows. Appointment history
// is retained forever, so an account that appears on any appointment cannot
// be deleted.
func (a *App) DeleteUser(ctx context.Context, id string, role Role) error {
	var n int
	err := a.DB.QueryRow(ctx,
		`SELECT count(*) FROM appointments WHERE user_id=$1 OR doctor_id=$1`, id).Scan(&n)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: user has appointment history", ErrValidation)
	}

	tx, err := a.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM notifications WHERE user_id=$1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM doctor_availability WHERE doctor_id=$1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id=$1 AND role=$2`, id, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user", ErrNotFound)
	}
	return tx.Commit(ctx)
}

// SetDoctorApplication records a patient's request to become a doctor.
func (a *App) SetDoctorApplication(ctx context.Context, userID, specialization string, experience int) error {
	tag, err := a.DB.Exec(ctx,
		`UPDATE users SET specialization=$1, experience=$2, doctor_status='pending', updated_at=now()
		 WHERE id=$3 AND role=$4`,
		specialization, experience, userID, RolePatient)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user", ErrNotFound)
	}
	return nil
}

// ResolveDoctorApplication approves or rejects a pending application.
// Approval promotes the account to the doctor role.
func (a *App) ResolveDoctorApplication(ctx context.Context, userID string, approve bool) error {
	var (
		tag pgconn.CommandTag
		err error
	)
	if approve {
		tag, err = a.DB.Exec(ctx,
			`UPDATE users SET role=$1, doctor_status='approved', updated_at=now()
			 WHERE id=$2 AND doctor_status='pending'`, RoleDoctor, userID)
	} else {
		tag, err = a.DB.Exec(ctx,
			`UPDATE users SET doctor_status='rejected', updated_at=now()
			 WHERE id=$1 AND doctor_status='pending'`, userID)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: pending application", ErrNotFound)
	}
	return nil
}

func (a *App) InsertAppointment(ctx context.Context, appt *Appointment) error {
	now := time.Now().UTC()
	appt.CreatedAt = now
	appt.UpdatedAt = now
	_, err := a.DB.Exec(ctx,
		`INSERT INTO appointments (id, user_id, doctor_id, date, time, mode, status, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		appt.ID, appt.UserID, appt.DoctorID, appt.Date, appt.Time, appt.Mode, appt.Status, now, now)
	return err
}

const apptCols = `id, user_id, doctor_id, date, time, mode, status, created_at, updated_at`

func (a *App) AppointmentByID(ctx context.Context, id string) (*Appointment, error) {
	appt := &Appointment{}
	err := a.DB.QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE id=$1`, id,
	).Scan(&appt.ID, &appt.UserID, &appt.DoctorID, &appt.Date, &appt.Time,
		&appt.Mode, &appt.Status, &appt.CreatedAt, &appt.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: appointment", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// UpdateAppointmentStatus performs the conditional write every transition
// goes through: the status guard in the predicate re-checks the prior state
// so a concurrent writer can never be silently overwritten. Returns false
// when the row was no longer in the expected state.
func (a *App) UpdateAppointmentStatus(ctx context.Context, id string, from, to Status) (bool, error) {
	tag, err := a.DB.Exec(ctx,
		`UPDATE appointments SET status=$1, updated_at=now() WHERE id=$2 AND status=$3`,
		to, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (a *App) ListAcceptedAppointments(ctx context.Context) ([]Appointment, error) {
	rows, err := a.DB.Query(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE status=$1 ORDER BY date, time`, StatusAccepted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		var appt Appointment
		if err := rows.Scan(&appt.ID, &appt.UserID, &appt.DoctorID, &appt.Date, &appt.Time,
			&appt.Mode, &appt.Status, &appt.CreatedAt, &appt.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, appt)
	}
	return out, rows.Err()
}

func (a *App) listAppointmentViews(ctx context.Context, q string, args ...any) ([]AppointmentView, error) {
	rows, err := a.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AppointmentView
	for rows.Next() {
		var v AppointmentView
		if err := rows.Scan(&v.ID, &v.UserID, &v.DoctorID, &v.Date, &v.Time,
			&v.Mode, &v.Status, &v.CreatedAt, &v.UpdatedAt,
			&v.DoctorName, &v.Specialization, &v.PatientName, &v.PatientEmail); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

const apptViewQuery = `
	SELECT a.id, a.user_id, a.doctor_id, a.date, a.time, a.mode, a.status, a.created_at, a.updated_at,
	       d.name, d.specialization, p.name, p.email
	FROM appointments a
	JOIN users d ON d.id = a.doctor_id
	JOIN users p ON p.id = a.user_id`

func (a *App) ListAppointmentsByPatient(ctx context.Context, userID string) ([]AppointmentView, error) {
	return a.listAppointmentViews(ctx,
		apptViewQuery+` WHERE a.user_id=$1 ORDER BY a.date, a.time`, userID)
}

func (a *App) ListAppointmentsByDoctor(ctx context.Context, doctorID string) ([]AppointmentView, error) {
	return a.listAppointmentViews(ctx,
		apptViewQuery+` WHERE a.doctor_id=$1 ORDER BY a.date, a.time`, doctorID)
}

func (a *App) ListAllAppointments(ctx context.Context) ([]AppointmentView, error) {
	return a.listAppointmentViews(ctx, apptViewQuery+` ORDER BY a.created_at DESC`)
}

func (a *App) InsertNotification(ctx context.Context, n *Notification) error {
	n.CreatedAt = time.Now().UTC()
	_, err := a.DB.Exec(ctx,
		`INSERT INTO notifications (id, user_id, message, is_read, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		n.ID, n.UserID, n.Message, n.IsRead, n.CreatedAt)
	return err
}

func (a *App) ListNotifications(ctx context.Context, userID string) ([]Notification, error) {
	rows, err := a.DB.Query(ctx,
		`SELECT id, user_id, message, is_read, created_at
		 FROM notifications WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (a *App) MarkNotificationsRead(ctx context.Context, userID string) error {
	_, err := a.DB.Exec(ctx,
		`UPDATE notifications SET is_read=true WHERE user_id=$1 AND is_read=false`, userID)
	return err
}
