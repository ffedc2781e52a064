package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Pavangowda-dev/StockIQ/auth"
	"github.com/Pavangowda-dev/StockIQ/forecast"
	"github.com/Pavangowda-dev/StockIQ/insights"
	"github.com/Pavangowda-dev/StockIQ/salesdata"
	"github.com/Pavangowda-dev/StockIQ/storage"
)

// ErrorHandler renders every error returned by a handler as {"detail": ...}.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, detail := classify(err)
		if status >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}
		if status == fiber.StatusUnauthorized {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		}
		return c.Status(status).JSON(fiber.Map{"detail": detail})
	}
}

func classify(err error) (int, string) {
	var fe *fiber.Error
	var missing *salesdata.MissingColumnsError
	var rowErr *salesdata.RowError

	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	case errors.Is(err, salesdata.ErrEmptyFile):
		return fiber.StatusBadRequest, salesdata.ErrEmptyFile.Error()
	case errors.Is(err, salesdata.ErrMalformed):
		return fiber.StatusBadRequest, err.Error()
	case errors.As(err, &missing):
		return fiber.StatusBadRequest, missing.Error()
	case errors.As(err, &rowErr):
		return fiber.StatusBadRequest, rowErr.Error()
	case errors.Is(err, forecast.ErrNoForecastableData):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, storage.ErrInvalidKey):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, storage.ErrNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, auth.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, "Incorrect username or password"
	case errors.Is(err, auth.ErrInvalidToken):
		return fiber.StatusUnauthorized, "Could not validate credentials"
	case errors.Is(err, insights.ErrDisabled):
		return fiber.StatusServiceUnavailable, "AI insights are not configured"
	case errors.Is(err, insights.ErrBadResponse):
		return fiber.StatusBadGateway, insights.ErrBadResponse.Error()
	}
	return fiber.StatusInternalServerError, "Internal server error"
}
