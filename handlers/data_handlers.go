package handlers

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Pavangowda-dev/StockIQ/forecast"
	"github.com/Pavangowda-dev/StockIQ/salesdata"
	"github.com/Pavangowda-dev/StockIQ/storage"
	"github.com/Pavangowda-dev/StockIQ/utils"
)

type forecastResponse struct {
	Forecast      []forecast.Point          `json:"forecast"`
	Inventory     []forecast.Recommendation `json:"inventory"`
	ForecastPath  string                    `json:"forecast_s3_path"`
	InventoryPath string                    `json:"inventory_s3_path"`
	Warning       string                    `json:"warning,omitempty"`
}

// HandleUpload validates a sales CSV and stores it under the next free key
// for today.
// POST /data/upload
func (h *Handler) HandleUpload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		h.metrics.RecordUpload("rejected")
		return fiber.NewError(fiber.StatusBadRequest, "A CSV file is required in the 'file' field")
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".csv") {
		h.metrics.RecordUpload("rejected")
		return fiber.NewError(fiber.StatusBadRequest, "Only CSV files are supported")
	}

	f, err := fh.Open()
	if err != nil {
		h.metrics.RecordUpload("failed")
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	body, err := io.ReadAll(f)
	if err != nil {
		h.metrics.RecordUpload("failed")
		return fmt.Errorf("read upload: %w", err)
	}

	table, err := salesdata.ParseBytes(body)
	if err != nil {
		h.metrics.RecordUpload("rejected")
		return err
	}

	key, err := h.storeUpload(c.UserContext(), body)
	if err != nil {
		h.metrics.RecordUpload("failed")
		return err
	}

	h.metrics.RecordUpload("accepted")
	h.log.Info("stored sales upload",
		zap.String("filename", fh.Filename),
		zap.String("key", key),
		zap.Int("rows", len(table.Records)),
	)
	return c.JSON(fiber.Map{
		"message":     fmt.Sprintf("Uploaded %s with %d rows", fh.Filename, len(table.Records)),
		"s3_filename": key,
	})
}

func (h *Handler) storeUpload(ctx context.Context, body []byte) (string, error) {
	h.uploadMu.Lock()
	defer h.uploadMu.Unlock()

	key, err := storage.NextSalesKey(ctx, h.store, h.now().UTC())
	if err != nil {
		return "", err
	}
	if err := h.store.Put(ctx, key, body); err != nil {
		return "", fmt.Errorf("store %s: %w", key, err)
	}
	return key, nil
}

// HandleGetData returns a stored sales table as JSON records.
// GET /data/get/*
func (h *Handler) HandleGetData(c *fiber.Ctx) error {
	table, err := h.loadTable(c.UserContext(), c.Params("*"))
	if err != nil {
		return err
	}
	return c.JSON(table.JSON())
}

// HandleListData lists stored keys under a prefix, one page at a time.
// GET /data/list?prefix=&page=&page_size=
func (h *Handler) HandleListData(c *fiber.Ctx) error {
	prefix := c.Query("prefix", storage.SalesPrefix)
	if strings.Contains(prefix, "..") {
		return fmt.Errorf("%w: %q contains '..'", storage.ErrInvalidKey, prefix)
	}

	keys, err := h.store.List(c.UserContext(), prefix)
	if err != nil {
		return fmt.Errorf("list %s: %w", prefix, err)
	}

	pagination := utils.CreatePagination(len(keys), c.QueryInt("page", 1), c.QueryInt("page_size", utils.DefaultPageSize))
	start, end := pagination.Bounds()
	page := make([]string, 0, end-start)
	page = append(page, keys[start:end]...)

	return c.JSON(fiber.Map{"prefix": prefix, "keys": page, "pagination": pagination})
}

// HandleForecast forecasts a stored sales table and writes the forecast and
// inventory artifacts next to it.
// GET /data/forecast/*
func (h *Handler) HandleForecast(c *fiber.Ctx) error {
	ctx := c.UserContext()
	key := c.Params("*")

	table, err := h.loadTable(ctx, key)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := h.engine.Run(ctx, table)
	if err != nil {
		h.metrics.RecordForecast("failed", time.Since(start), 0, len(table.ProductIDs()))
		return err
	}

	forecastKey := storage.ForecastKey(key)
	inventoryKey := storage.InventoryKey(key)
	if err := h.writeArtifacts(ctx, result, forecastKey, inventoryKey); err != nil {
		h.metrics.RecordForecast("failed", time.Since(start), 0, 0)
		return err
	}

	h.metrics.RecordForecast("ok", time.Since(start), len(result.Inventory), len(result.Skipped))
	h.log.Info("forecast complete",
		zap.String("key", key),
		zap.Int("products", len(result.Inventory)),
		zap.Strings("skipped", result.Skipped),
	)
	return c.JSON(forecastResponse{
		Forecast:      result.Forecast,
		Inventory:     result.Inventory,
		ForecastPath:  forecastKey,
		InventoryPath: inventoryKey,
		Warning:       result.Warning(),
	})
}

func (h *Handler) writeArtifacts(ctx context.Context, result *forecast.Result, forecastKey, inventoryKey string) error {
	forecastCSV, err := forecast.EncodeForecastCSV(result.Forecast)
	if err != nil {
		return fmt.Errorf("encode forecast: %w", err)
	}
	inventoryCSV, err := forecast.EncodeInventoryCSV(result.Inventory)
	if err != nil {
		return fmt.Errorf("encode inventory: %w", err)
	}

	if err := h.store.Put(ctx, forecastKey, forecastCSV); err != nil {
		return fmt.Errorf("store %s: %w", forecastKey, err)
	}
	if err := h.store.Put(ctx, inventoryKey, inventoryCSV); err != nil {
		return fmt.Errorf("store %s: %w", inventoryKey, err)
	}
	return nil
}

func (h *Handler) loadTable(ctx context.Context, key string) (*salesdata.Table, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}
	body, err := h.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return salesdata.ParseBytes(body)
}
