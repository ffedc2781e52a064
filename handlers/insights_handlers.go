package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/Pavangowda-dev/StockIQ/insights"
)

// HandleInsights forecasts a stored table and asks the analyst to explain the
// result for one product. Nothing is written to the store.
// GET /data/insights/*?product_id=
func (h *Handler) HandleInsights(c *fiber.Ctx) error {
	if !h.analyst.Enabled() {
		return insights.ErrDisabled
	}

	productID := c.Query("product_id")
	if productID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "product_id is required")
	}

	ctx := c.UserContext()
	table, err := h.loadTable(ctx, c.Params("*"))
	if err != nil {
		return err
	}

	result, err := h.engine.Run(ctx, table)
	if err != nil {
		return err
	}

	points, rec, ok := result.ProductForecast(productID)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("No forecast for product %s", productID))
	}

	analysis, err := h.analyst.Analyze(ctx, insights.Input{
		ProductID:      productID,
		History:        table.Series(productID),
		Forecast:       points,
		Recommendation: *rec,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"analysis":  analysis,
		"inventory": rec,
	})
}
