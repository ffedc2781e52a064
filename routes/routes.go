package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/Pavangowda-dev/StockIQ/auth"
	"github.com/Pavangowda-dev/StockIQ/handlers"
	"github.com/Pavangowda-dev/StockIQ/metrics"
	"github.com/Pavangowda-dev/StockIQ/middleware"
)

// SetupRoutes defines all the routes for the application. When authSvc is
// nil the data routes are open and /auth/token is not served.
func SetupRoutes(app *fiber.App, h *handlers.Handler, authSvc *auth.Service, m *metrics.Metrics) {
	app.Get("/", h.HandleRoot)
	app.Get("/healthz", h.HandleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	// --- Authentication Routes ---
	if authSvc != nil {
		app.Post("/auth/token", h.HandleToken)
	}

	// --- Data Routes ---
	var data fiber.Router
	if authSvc != nil {
		data = app.Group("/data", middleware.RequireAuth(authSvc))
	} else {
		data = app.Group("/data")
	}
	data.Post("/upload", h.HandleUpload)
	data.Get("/list", h.HandleListData)
	data.Get("/get/*", h.HandleGetData)
	data.Get("/forecast/*", h.HandleForecast)
	data.Get("/insights/*", h.HandleInsights)
}
