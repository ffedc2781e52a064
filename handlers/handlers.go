// Package handlers holds the fiber handlers for the StockIQ HTTP API.
package handlers

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Pavangowda-dev/StockIQ/auth"
	"github.com/Pavangowda-dev/StockIQ/forecast"
	"github.com/Pavangowda-dev/StockIQ/insights"
	"github.com/Pavangowda-dev/StockIQ/metrics"
	"github.com/Pavangowda-dev/StockIQ/storage"
)

// Deps are the collaborators a Handler needs. Auth and Analyst may be nil.
type Deps struct {
	Store   storage.Store
	Engine  *forecast.Engine
	Auth    *auth.Service
	Analyst *insights.Analyst
	Metrics *metrics.Metrics
	Log     *zap.Logger
}

type Handler struct {
	store   storage.Store
	engine  *forecast.Engine
	auth    *auth.Service
	analyst *insights.Analyst
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time

	// uploadMu serializes key allocation and the write that claims it.
	uploadMu sync.Mutex
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	analyst := d.Analyst
	if analyst == nil {
		analyst = insights.NewAnalyst(nil, log)
	}
	return &Handler{
		store:   d.Store,
		engine:  d.Engine,
		auth:    d.Auth,
		analyst: analyst,
		metrics: d.Metrics,
		log:     log,
		now:     time.Now,
	}
}

// HandleRoot greets API clients.
// GET /
func (h *Handler) HandleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Welcome to StockIQ API"})
}

// HandleHealth is the liveness probe.
// GET /healthz
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
