package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

const authRequestsPerMinute = 20

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	if handler.metrics != nil {
		app.Get("/metrics", handler.metricsHandler())
	}
	registerAPIRoutes(app, handler)
	app.Use(handler.NotFound)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	authLimiter := limiter.New(limiter.Config{
		Max:        authRequestsPerMinute,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return apiError(c, fiber.StatusTooManyRequests, "too many requests")
		},
	})

	auth := api.Group("/auth")
	auth.Post("/register", authLimiter, handler.Register)
	auth.Post("/login", authLimiter, handler.Login)
	auth.Post("/logout", handler.Logout)
	auth.Get("/me", handler.AuthRequired, handler.Me)
	auth.Post("/password", handler.AuthRequired, handler.ChangePassword)

	api.Get("/profile", handler.AuthRequired, handler.GetProfile)
	api.Put("/profile", handler.AuthRequired, handler.UpdateProfile)
	api.Delete("/account", handler.AuthRequired, handler.DeleteAccount)

	cycles := api.Group("/cycles", handler.AuthRequired)
	cycles.Get("", handler.ListCycles)
	cycles.Post("", handler.CreateCycle)
	cycles.Patch("/:id/end", handler.EndCycle)
	cycles.Delete("/:id", handler.DeleteCycle)

	symptoms := api.Group("/symptoms", handler.AuthRequired)
	symptoms.Get("", handler.ListSymptoms)
	symptoms.Post("", handler.LogSymptoms)
	symptoms.Delete("/:id", handler.DeleteSymptoms)

	checkIns := api.Group("/checkins", handler.AuthRequired)
	checkIns.Get("", handler.ListCheckIns)
	checkIns.Post("", handler.CheckIn)

	forecast := api.Group("/forecast", handler.AuthRequired)
	forecast.Get("/estimate", handler.GetEstimate)
	forecast.Get("/prediction", handler.GetPrediction)

	api.Get("/calendar", handler.AuthRequired, handler.GetCalendar)
	api.Get("/dashboard", handler.AuthRequired, handler.GetDashboard)
	api.Post("/insights", handler.AuthRequired, handler.GenerateInsights)
}
