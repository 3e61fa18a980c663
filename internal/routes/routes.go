package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/annfsu/internal/audit"
	"github.com/example/annfsu/internal/config"
	"github.com/example/annfsu/internal/handlers"
	"github.com/example/annfsu/internal/middleware"
	"github.com/example/annfsu/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	smsService := services.NewSMSService(cfg.SMSAPIURL, cfg.SMSAPIToken, cfg.SMSSender)
	auditLog := audit.NewLog(db)

	authHandler := handlers.NewAuthHandler(db, cfg, smsService)
	resetHandler := handlers.NewPasswordResetHandler(db, cfg, smsService)
	memberHandler := handlers.NewMemberHandler(db, auditLog)
	adminHandler := handlers.NewAdminHandler(db, auditLog, memberHandler)
	profileHandler := handlers.NewProfileHandler(db)
	contentHandler := handlers.NewContentHandler(db, auditLog)
	songHandler := handlers.NewSongHandler(db, auditLog)
	contactHandler := handlers.NewContactHandler(db, auditLog)

	authed := middleware.AuthMiddleware(db, cfg)
	adminOnly := middleware.RequireAdmin()

	api := app.Group("/api")

	api.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "ANNFSU API - अखिल नेपाल राष्ट्रिय स्वतन्त्र विद्यार्थी युनियन",
			"version": "2.0",
		})
	})

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)
	auth.Post("/login/email", authHandler.LoginEmail)
	auth.Post("/request-otp", authHandler.RequestOTP)
	auth.Post("/verify-otp", authHandler.VerifyOTP)
	auth.Post("/forgot-password", resetHandler.ForgotPassword)
	auth.Post("/verify-reset", resetHandler.VerifyResetCode)
	auth.Post("/reset-password", resetHandler.ResetPassword)
	auth.Get("/me", authed, authHandler.Me)

	// Public reads
	api.Get("/content/:type", contentHandler.ListByType)
	api.Get("/songs", songHandler.List)
	api.Get("/songs/:id/audio", songHandler.GetAudio)
	api.Get("/contacts", contactHandler.List)

	// Self-service
	api.Post("/membership/apply", authed, memberHandler.Apply)
	api.Get("/profile", authed, profileHandler.Get)
	api.Put("/profile/update", authed, profileHandler.Update)

	// Membership lifecycle
	members := api.Group("/members")
	members.Post("/", authed, adminOnly, memberHandler.Create)
	members.Get("/", authed, adminOnly, memberHandler.List)
	members.Get("/:id", authed, memberHandler.Get)
	members.Put("/:id", authed, adminOnly, memberHandler.Update)
	members.Delete("/:id", authed, adminOnly, memberHandler.Delete)
	members.Put("/:id/approve", authed, adminOnly, memberHandler.Approve)
	members.Put("/:id/reject", authed, adminOnly, memberHandler.Reject)

	// Admin-only writes on public resources
	api.Post("/content", authed, adminOnly, contentHandler.Create)
	api.Put("/content/:id", authed, adminOnly, contentHandler.Update)
	api.Delete("/content/:id", authed, adminOnly, contentHandler.Delete)
	api.Post("/songs", authed, adminOnly, songHandler.Create)
	api.Delete("/songs/:id", authed, adminOnly, songHandler.Delete)
	api.Post("/contacts", authed, adminOnly, contactHandler.Create)
	api.Put("/contacts/:id", authed, adminOnly, contactHandler.Update)
	api.Delete("/contacts/:id", authed, adminOnly, contactHandler.Delete)

	// Admin dashboard and account lifecycle
	admin := api.Group("/admin", authed, adminOnly)
	admin.Get("/dashboard/stats", adminHandler.DashboardStats)
	admin.Get("/activities", adminHandler.Activities)
	admin.Get("/users", adminHandler.ListUsers)
	admin.Put("/users/:id/approve", memberHandler.Approve)
	admin.Put("/users/:id/reject", memberHandler.Reject)
	admin.Put("/users/:id/enable", adminHandler.EnableUser)
	admin.Put("/users/:id/disable", adminHandler.DisableUser)
	admin.Put("/users/:id/role", adminHandler.UpdateUserRole)
	admin.Delete("/users/:id", memberHandler.Delete)
}
