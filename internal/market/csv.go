package market

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ImportCSV loads candles from a CSV file into the store. Expected columns:
// open_time,close_time,open,high,low,close,volume — a header row is skipped
// when the first field is not numeric. Returns the number of rows written.
func (s *Store) ImportCSV(ctx context.Context, symbol, timeframe, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	var batch []Candle
	line := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("reading %s failed: %w", path, err)
		}
		line++
		if len(rec) < 7 {
			return 0, fmt.Errorf("%s line %d: expected 7 columns, got %d", path, line, len(rec))
		}
		if line == 1 {
			if _, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64); err != nil {
				continue // header
			}
		}
		c, err := parseCandleRecord(rec)
		if err != nil {
			return 0, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		batch = append(batch, c)
	}
	return s.InsertCandles(ctx, symbol, timeframe, batch)
}

func parseCandleRecord(rec []string) (Candle, error) {
	var c Candle
	var err error
	if c.OpenTime, err = strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64); err != nil {
		return c, fmt.Errorf("open_time: %w", err)
	}
	if c.CloseTime, err = strconv.ParseInt(strings.TrimSpace(rec[1]), 10, 64); err != nil {
		return c, fmt.Errorf("close_time: %w", err)
	}
	fields := []struct {
		name string
		dst  *float64
		raw  string
	}{
		{"open", &c.Open, rec[2]},
		{"high", &c.High, rec[3]},
		{"low", &c.Low, rec[4]},
		{"close", &c.Close, rec[5]},
		{"volume", &c.Volume, rec[6]},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f.raw), 64)
		if err != nil {
			return c, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	return c, nil
}
