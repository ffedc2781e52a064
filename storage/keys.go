package storage

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"
)

const (
	SalesPrefix     = "sales_data/"
	ForecastPrefix  = "forecasts/"
	InventoryPrefix = "inventory/"
)

// NextSalesKey returns the next free key for an upload made at now, in the
// form sales_data/YYYY/MM/DD_<seq>.csv. Sequence numbers start at 1 and are
// per day.
func NextSalesKey(ctx context.Context, store Store, now time.Time) (string, error) {
	dayPrefix := fmt.Sprintf("%s%04d/%02d/%02d_", SalesPrefix, now.Year(), int(now.Month()), now.Day())

	keys, err := store.List(ctx, dayPrefix)
	if err != nil {
		return "", fmt.Errorf("list %s: %w", dayPrefix, err)
	}

	maxSeq := 0
	for _, k := range keys {
		seq, ok := parseSeq(strings.TrimPrefix(k, dayPrefix))
		if ok && seq > maxSeq {
			maxSeq = seq
		}
	}
	return fmt.Sprintf("%s%d.csv", dayPrefix, maxSeq+1), nil
}

func parseSeq(rest string) (int, bool) {
	if !strings.HasSuffix(rest, ".csv") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(rest, ".csv"))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// ForecastKey derives where the forecast for a source table is written.
func ForecastKey(sourceKey string) string {
	return derivedKey(sourceKey, ForecastPrefix, "_forecast.csv")
}

// InventoryKey derives where the inventory recommendations for a source
// table are written.
func InventoryKey(sourceKey string) string {
	return derivedKey(sourceKey, InventoryPrefix, "_inventory.csv")
}

func derivedKey(sourceKey, root, suffix string) string {
	rel := strings.TrimPrefix(sourceKey, SalesPrefix)
	dir, file := path.Split(rel)
	name := strings.TrimSuffix(file, path.Ext(file))
	return root + dir + name + suffix
}
