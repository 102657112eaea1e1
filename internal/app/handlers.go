package app

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func okJSON(c *gin.Context, code int, body gin.H) {
	body["success"] = true
	c.JSON(code, body)
}

func failJSON(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "message": message})
}

// failErr maps the error taxonomy onto HTTP statuses at the one place that
// knows about HTTP.
func failErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		failJSON(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUnauthorized):
		failJSON(c, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrNotFound):
		failJSON(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		failJSON(c, http.StatusConflict, err.Error())
	default:
		failJSON(c, http.StatusInternalServerError, "internal error")
	}
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// POST /api/user/register
func (a *App) RegisterHandler(c *gin.Context) {
	var req registerReq
	if err := c.BindJSON(&req); err != nil {
		failJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		failJSON(c, http.StatusBadRequest, "name, email and password are required")
		return
	}
	if len(req.Password) < 8 {
		failJSON(c, http.StatusBadRequest, "password too short")
		return
	}
	role := RolePatient
	if req.Role != "" {
		var err error
		if role, err = ParseRole(req.Role); err != nil {
			failErr(c, err)
			return
		}
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		failJSON(c, http.StatusInternalServerError, "internal error")
		return
	}
	u := &User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := a.CreateUser(c.Request.Context(), u); err != nil {
		// unique violation = dup email, but don't reveal that
		failJSON(c, http.StatusConflict, "registration failed")
		return
	}
	tok, err := MakeToken(u.ID, u.Role, a.Secret)
	if err != nil {
		failJSON(c, http.StatusInternalServerError, "internal error")
		return
	}
	okJSON(c, http.StatusCreated, gin.H{"token": tok, "data": u})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/user/login
func (a *App) LoginHandler(c *gin.Context) {
	var req loginReq
	if err := c.BindJSON(&req); err != nil {
		failJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	u, err := a.UserByEmail(c.Request.Context(), req.Email)
	if err != nil || !CheckPassword(u.PasswordHash, req.Password) {
		failJSON(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	tok, err := MakeToken(u.ID, u.Role, a.Secret)
	if err != nil {
		failJSON(c, http.StatusInternalServerError, "internal error")
		return
	}
	okJSON(c, http.StatusOK, gin.H{"token": tok, "data": u})
}

// GET /api/user/profile
func (a *App) ProfileHandler(c *gin.Context) {
	u, err := a.UserByID(c.Request.Context(), actorID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	okJSON(c, http.StatusOK, gin.H{"data": u})
}

// GET /api/user/getAllDoctors
func (a *App) AllDoctorsHandler(c *gin.Context) {
	doctors, err := a.ListDoctors(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	okJSON(c, http.StatusOK, gin.H{"data": doctors})
}

type bookReq struct {
	DoctorID string `json:"doctorId"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Mode     string `json:"mode"`
}

// POST /api/user/book-appointment
// Creates the appointment in the pending state. The record is only written
// after every field validates, so a rejected booking leaves no trace.
func (a *App) BookAppointmentHandler(c *gin.Context) {
	var req bookReq
	if err := c.BindJSON(&req); err != nil {
		failJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.DoctorID == "" || req.Date == "" || req.Time == "" || req.Mode == "" {
		failJSON(c, http.StatusBadRequest, "doctorId, date, time and mode are required")
		return
	}
	mode, err := ParseMode(req.Mode)
	if err != nil {
		failErr(c, err)
		return
	}
	if _, err := ScheduledAt(req.Date, req.Time); err != nil {
		failErr(c, err)
		return
	}

	ctx := c.Request.Context()
	doctor, err := a.UserByID(ctx, req.DoctorID)
	if err != nil {
		failJSON(c, http.StatusBadRequest, "invalid doctorId")
		return
	}
	if doctor.Role != RoleDoctor {
		failJSON(c, http.StatusBadRequest, "doctorId does not reference a doctor")
		return
	}

	appt := &Appointment{
		ID:       uuid.New().String(),
		UserID:   actorID(c),
		DoctorID: req.DoctorID,
		Date:     req.Date,
		Time:     req.Time,
		Mode:     mode,
		Status:   StatusPending,
	}
	if err := a.InsertAppointment(ctx, appt); err != nil {
		failErr(c, err)
		return
	}
	a.notify(c, doctor.ID, fmt.Sprintf("New appointment request for %s %s", appt.Date, appt.Time))
	okJSON(c, http.StatusCreated, gin.H{"message": "Appointment booked successfully.", "data": appt})
}

// GET /api/user/appointments
func (a *App) UserAppointmentsHandler(c *gin.Context) {
	appts, err := a.ListAppointmentsByPatient(c.Request.Context(), actorID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	okJSON(c, http.StatusOK, gin.H{"data": appts})
}

// GET /api/user/appointments/summary
func (a *App) UserAppointmentsSummaryHandler(c *gin.Context) {
	appts, err := a.ListAppointmentsByPatient(c.Request.Context(), actorID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	okJSON(c, http.StatusOK, gin.H{"data": Classify(appts, time.Now().UTC())})
}

type applyDoctorReq struct {
	Specialization string `json:"specialization"`
	Experience     int    `json:"experience"`
}

// POST /api/user/apply-doctor
func (a *App) ApplyDoctorHandler(c *gin.Context) {
	var req applyDoctorReq
	if err := c.BindJSON(&req); err != nil {
		failJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Specialization == "" || req.Experience < 0 {
		failJSON(c, http.StatusBadRequest, "specialization and experience are required")
		return
	}
	if err := a.SetDoctorApplication(c.Request.Context(), actorID(c), req.Specialization, req.Experience); err != nil {
		failErr(c, err)
		return
	}
	okJSON(c, http.StatusOK, gin.H{"message": "Doctor application submitted."})
}

// GET /api/user/notifications
func (a *App) NotificationsHandler(c *gin.Context) {
	ns, err := a.ListNotifications(c.Request.Context(), actorID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	okJSON(c, http.StatusOK, gin.H{"data": ns})
}

// POST /api/user/notifications/mark-read
func (a *App) MarkNotificationsReadHandler(c *gin.Context) {
	if err := a.MarkNotificationsRead(c.Request.Context(), actorID(c)); err != nil {
		failErr(c, err)
		return
	}
	okJSON(c, http.StatusOK, gin.H{"message": "Notifications marked as read."})
}

// GET /api/doctor/appointments
func (a *App) DoctorAppointmentsHandler(c *gin.Context) {
	appts, err := a.ListAppointmentsByDoctor(c.Request.Context(), actorID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	okJSON(c, http.StatusOK, gin.H{"data": appts})
}

type statusReq struct {
	Status string `json:"status"`
}

// PATCH /api/doctor/appointments/:id/status
// PATCH /api/doctor/updateAppointment/:id (legacy alias)
//
// Both routes land here; the transition table and the assigned-doctor check
// run unconditionally. The final write re-checks the prior status so a
// concurrent sweep or second doctor action cannot be clobbered.
func (a *App) UpdateAppointmentStatusHandler(c *gin.Context) {
	var req statusReq
	if err := c.BindJSON(&req); err != nil {
		failJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	to, err := ParseStatus(req.Status)
	if err != nil {
		failErr(c, err)
		return
	}
	if to == StatusPending {
		failJSON(c, http.StatusBadRequest, "cannot transition to pending")
		return
	}

	ctx := c.Request.Context()
	appt, err := a.AppointmentByID(ctx, c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	if err := CheckTransition(appt, to, actorID(c)); err != nil {
		failErr(c, err)
		return
	}
	applied, err := a.UpdateAppointmentStatus(ctx, appt.ID, appt.Status, to)
	if err != nil {
		failErr(c, err)
		return
	}
	if !applied {
		// lost the race: status changed between read and write
		failJSON(c, http.StatusConflict, "appointment status changed concurrently")
		return
	}
	appt.Status = to
	a.notify(c, appt.UserID, fmt.Sprintf("Your appointment on %s %s is now %s", appt.Date, appt.Time, to))
	okJSON(c, http.StatusOK, gin.H{"message": "Appointment status updated.", "data": appt})
}

// GET /api/doctor/availability
func (a *App) GetAvailabilityHandler(c *gin.Context) {
	av, err := a.GetAvailability(c.Request.Context(), actorID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	okJSON(c, http.StatusOK, gin.H{"data": av})
}

// POST /api/doctor/availability
func (a *App) SetAvailabilityHandler(c *gin.Context) {
	var av Availability
	if err := c.BindJSON(&av); err != nil {
		failJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	av.DoctorID = actorID(c)
	if err := a.PutAvailability(c.Request.Context(), &av); err != nil {
		failErr(c, err)
		return
	}
	okJSON(c, http.StatusOK, gin.H{"data": av})
}

// GET /api/admin/getAllAppointments
func (a *App) AdminAppointmentsHandler(c *gin.Context) {
	appts, err := a.ListAllAppointments(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	okJSON(c, http.StatusOK, gin.H{"data": appts})
}

// GET /api/admin/getAllUsers
func (a *App) AdminUsersHandler(c *gin.Context) {
	users, err := a.ListUsers(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	okJSON(c, http.StatusOK, gin.H{"data": users})
}

type updateUserReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PUT /api/admin/updateUser/:id
func (a *App) AdminUpdateUserHandler(c *gin.Context) {
	var req updateUserReq
	if err := c.BindJSON(&req); err != nil {
		failJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" || req.Email == "" {
		failJSON(c, http.StatusBadRequest, "name and email are required")
		return
	}
	if err := a.UpdateUserProfile(c.Request.Context(), c.Param("id"), RolePatient, req.Name, req.Email); err != nil {
		failErr(c, err)
		return
	}
	okJSON(c, http.StatusOK, gin.H{"message": "Patient updated successfully."})
}

// DELETE /api/admin/deleteUser/:id
func (a *App) AdminDeleteUserHandler(c *gin.Context) {
	if err := a.DeleteUser(c.Request.Context(), c.Param("id"), RolePatient); err != nil {
		failErr(c, err)
		return
	}
	okJSON(c, http.StatusOK, gin.H{"message": "Patient deleted successfully."})
}

type addDoctorReq struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Specialization string `json:"specialization"`
	Experience     int    `json:"experience"`
}

// POST /api/admin/addDoctor
// Creates a doctor account directly, skipping the application flow. The
// account starts with a well-known password the doctor is expected to
// change on first login.
func (a *App) AdminAddDoctorHandler(c *gin.Context) {
	var req addDoctorReq
	if err := c.BindJSON(&req); err != nil {
		failJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" || req.Email == "" || req.Specialization == "" {
		failJSON(c, http.StatusBadRequest, "name, email and specialization are required")
		return
	}
	hash, err := HashPassword("doctor123")
	if err != nil {
		failJSON(c, http.StatusInternalServerError, "internal error")
		return
	}
	u := &User{
		ID:             uuid.New().String(),
		Name:           req.Name,
		Email:          req.Email,
		PasswordHash:   hash,
		Role:           RoleDoctor,
		Specialization: req.Specialization,
		Experience:     req.Experience,
		DoctorStatus:   "approved",
	}
	if err := a.CreateUser(c.Request.Context(), u); err != nil {
		failJSON(c, http.StatusConflict, "doctor already exists")
		return
	}
	okJSON(c, http.StatusCreated, gin.H{"message": "Doctor added successfully.", "data": u})
}

// DELETE /api/admin/removeDoctor/:id
func (a *App) AdminRemoveDoctorHandler(c *gin.Context) {
	if err := a.DeleteUser(c.Request.Context(), c.Param("id"), RoleDoctor); err != nil {
		failErr(c, err)
		return
	}
	okJSON(c, http.StatusOK, gin.H{"message": "Doctor removed successfully."})
}

type accountStatusReq struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

// POST /api/admin/changeAccountStatus
func (a *App) ChangeAccountStatusHandler(c *gin.Context) {
	var req accountStatusReq
	if err := c.BindJSON(&req); err != nil {
		failJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.UserID == "" {
		failJSON(c, http.StatusBadRequest, "userId is required")
		return
	}
	var approve bool
	switch req.Status {
	case "approved":
		approve = true
	case "rejected":
		approve = false
	default:
		failJSON(c, http.StatusBadRequest, "status must be approved or rejected")
		return
	}
	if err := a.ResolveDoctorApplication(c.Request.Context(), req.UserID, approve); err != nil {
		failErr(c, err)
		return
	}
	a.notify(c, req.UserID, fmt.Sprintf("Your doctor application was %s", req.Status))
	okJSON(c, http.StatusOK, gin.H{"message": "Account status updated."})
}

// notify inserts a notification; failures are logged and never fail the
// request that triggered them.
func (a *App) notify(c *gin.Context, userID, message string) {
	n := &Notification{ID: uuid.New().String(), UserID: userID, Message: message}
	if err := a.InsertNotification(c.Request.Context(), n); err != nil {
		log.Printf("notify %s: %v", userID, err)
	}
}
