package app

import (
	"fmt"
	"time"
)

// Role of a user account. Closed set, checked at the authorization boundary.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePatient, RoleDoctor, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
}

// Status of an appointment. pending is the initial state; rejected,
// cancelled and completed are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusAccepted, StatusRejected, StatusCancelled, StatusCompleted:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
}

type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeOnline, ModeOffline:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrValidation, s)
}

type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Role           Role      `json:"role"`
	Specialization string    `json:"specialization,omitempty"`
	Experience     int       `json:"experience,omitempty"`
	DoctorStatus   string    `json:"doctorStatus,omitempty"`
	CreatedAt      time.Time `json:"createdAt,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt,omitempty"`
}

// Appointment links one patient and one doctor to a scheduled date/time.
// Date ("2006-01-02") and Time ("15:04") are immutable after creation;
// there is no reschedule operation.
type Appointment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	DoctorID  string    `json:"doctorId"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Mode      Mode      `json:"mode"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// AppointmentView is an appointment joined with display names for listings.
type AppointmentView struct {
	Appointment
	DoctorName     string `json:"doctorName,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	PatientName    string `json:"patientName,omitempty"`
	PatientEmail   string `json:"patientEmail,omitempty"`
}

// Availability is a doctor's weekly consultation window, one row per doctor.
type Availability struct {
	DoctorID  string    `json:"doctorId"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	Days      []int     `json:"days"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}
