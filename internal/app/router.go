package app

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Router builds the full route table. The status-update route and its
// legacy alias bind the same handler on purpose: there is exactly one path
// through the transition table.
func (a *App) Router() *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	rl := NewRateLimiter(5, 10)
	api := router.Group("/api")

	user := api.Group("/user")
	{
		user.POST("/register", RateLimit(rl), a.RegisterHandler)
		user.POST("/login", RateLimit(rl), a.LoginHandler)

		authed := user.Group("", a.AuthMiddleware())
		authed.GET("/profile", a.ProfileHandler)
		authed.GET("/getAllDoctors", a.AllDoctorsHandler)
		authed.POST("/book-appointment", a.BookAppointmentHandler)
		authed.GET("/appointments", a.UserAppointmentsHandler)
		authed.GET("/appointments/summary", a.UserAppointmentsSummaryHandler)
		authed.POST("/apply-doctor", a.ApplyDoctorHandler)
		authed.GET("/notifications", a.NotificationsHandler)
		authed.POST("/notifications/mark-read", a.MarkNotificationsReadHandler)
	}

	doctor := api.Group("/doctor", a.AuthMiddleware(), RequireRole(RoleDoctor))
	{
		doctor.GET("/appointments", a.DoctorAppointmentsHandler)
		doctor.PATCH("/appointments/:id/status", a.UpdateAppointmentStatusHandler)
		doctor.PATCH("/updateAppointment/:id", a.UpdateAppointmentStatusHandler)
		doctor.GET("/availability", a.GetAvailabilityHandler)
		doctor.POST("/availability", a.SetAvailabilityHandler)
	}

	admin := api.Group("/admin", a.AuthMiddleware(), RequireRole(RoleAdmin))
	{
		admin.GET("/getAllAppointments", a.AdminAppointmentsHandler)
		admin.GET("/getAllUsers", a.AdminUsersHandler)
		admin.GET("/getAllDoctors", a.AllDoctorsHandler)
		admin.POST("/changeAccountStatus", a.ChangeAccountStatusHandler)
		admin.PUT("/updateUser/:id", a.AdminUpdateUserHandler)
		admin.DELETE("/deleteUser/:id", a.AdminDeleteUserHandler)
		admin.POST("/addDoctor", a.AdminAddDoctorHandler)
		admin.DELETE("/removeDoctor/:id", a.AdminRemoveDoctorHandler)
	}

	return router
}
