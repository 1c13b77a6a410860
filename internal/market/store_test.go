package market

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCandles(n int) []Candle {
	out := make([]Candle, n)
	for i := range out {
		base := 100.0 + float64(i)
		out[i] = Candle{
			OpenTime:  int64(i) * 60_000,
			CloseTime: int64(i)*60_000 + 59_999,
			Open:      base,
			High:      base + 1,
			Low:       base - 1,
			Close:     base + 0.5,
			Volume:    1000,
		}
	}
	return out
}

func TestStoreInsertAndLoadRange(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	n, err := store.InsertCandles(ctx, "btcusdt", "1m", testCandles(10))
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	got, err := store.LoadRange(ctx, "BTCUSDT", "1m", 2*60_000, 5*60_000)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, int64(2*60_000), got[0].OpenTime)
	assert.Equal(t, int64(5*60_000), got[3].OpenTime)

	// end<=0 means everything from start on
	all, err := store.LoadRange(ctx, "BTCUSDT", "1m", 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 10)
}

func TestStoreUpsertReplacesBar(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	candles := testCandles(3)
	_, err = store.InsertCandles(ctx, "ETHUSDT", "1h", candles)
	require.NoError(t, err)

	candles[1].Close = 999
	_, err = store.InsertCandles(ctx, "ETHUSDT", "1h", candles[1:2])
	require.NoError(t, err)

	got, err := store.LoadRange(ctx, "ETHUSDT", "1h", 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 999.0, got[1].Close)
}

func TestStoreManifestTracksRange(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	_, err = store.InsertCandles(ctx, "btcusdt", "1m", testCandles(5))
	require.NoError(t, err)

	m, err := store.Manifest(ctx, "BTCUSDT", "1M")
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", m.Symbol)
	assert.Equal(t, "1m", m.Timeframe)
	assert.Equal(t, int64(0), m.MinTime)
	assert.Equal(t, int64(4*60_000), m.MaxTime)
	assert.Equal(t, int64(5), m.Rows)
	assert.NotZero(t, m.LastSyncAt)
}

func TestStoreRejectsEmptyKeys(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	_, err = store.LoadRange(context.Background(), "", "1m", 0, 0)
	assert.Error(t, err)

	_, err = NewStore("")
	assert.Error(t, err)
}

func TestImportCSV(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	csvPath := filepath.Join(t.TempDir(), "bars.csv")
	data := "open_time,close_time,open,high,low,close,volume\n" +
		"0,59999,100,101,99,100.5,1000\n" +
		"60000,119999,100.5,102,100,101.5,1100\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(data), 0o644))

	n, err := store.ImportCSV(context.Background(), "BTCUSDT", "1m", csvPath)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := store.LoadRange(context.Background(), "BTCUSDT", "1m", 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 101.5, got[1].Close)
	assert.Equal(t, []float64{100.5, 101.5}, Closes(got))
}

func TestImportCSVRejectsMalformedRow(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	csvPath := filepath.Join(t.TempDir(), "bad.csv")
	data := "0,59999,100,101,99,not-a-price,1000\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(data), 0o644))

	_, err = store.ImportCSV(context.Background(), "BTCUSDT", "1m", csvPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close")
}
