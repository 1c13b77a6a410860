package replay

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"volcast/internal/market"
)

const (
	chartWidth  = "1400px"
	chartHeight = "420px"
)

// renderChart writes an HTML page with the close-price series (entries and
// exits marked) and the equity curve. Returns the written file path.
func renderChart(dir string, run Run, candles []market.Candle, equity []float64, trades []Trade) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	xAxis := make([]string, len(candles))
	closeData := make([]opts.LineData, len(candles))
	for i, c := range candles {
		xAxis[i] = time.UnixMilli(c.CloseTime).UTC().Format("2006-01-02 15:04")
		closeData[i] = opts.LineData{Value: c.Close}
	}

	price := charts.NewLine()
	price.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s %s close", run.Symbol, run.Timeframe),
			Subtitle: fmt.Sprintf("run %s, seed %d", run.ID, run.Seed),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", XAxisIndex: []int{0}}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
	)
	price.SetXAxis(xAxis)
	price.AddSeries("close", closeData,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithMarkPointNameCoordItemOpts(tradeMarks(xAxis, candles, trades)...),
	)

	equityData := make([]opts.LineData, len(equity))
	for i, eq := range equity {
		equityData[i] = opts.LineData{Value: eq}
	}
	equityLine := charts.NewLine()
	equityLine.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "equity"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
	)
	equityLine.SetXAxis(xAxis)
	equityLine.AddSeries("equity", equityData,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(price, equityLine)

	path := filepath.Join(dir, run.ID+".html")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return "", err
	}
	return path, nil
}

func tradeMarks(xAxis []string, candles []market.Candle, trades []Trade) []opts.MarkPointNameCoordItem {
	index := make(map[int64]int, len(candles))
	for i, c := range candles {
		index[c.CloseTime] = i
	}
	var marks []opts.MarkPointNameCoordItem
	for _, t := range trades {
		if i, ok := index[t.EntryTS]; ok {
			marks = append(marks, opts.MarkPointNameCoordItem{
				Name:       "entry",
				Coordinate: []interface{}{xAxis[i], t.EntryPrice},
				ItemStyle:  &opts.ItemStyle{Color: "#34d399"},
			})
		}
		if i, ok := index[t.ExitTS]; ok {
			marks = append(marks, opts.MarkPointNameCoordItem{
				Name:       "exit",
				Coordinate: []interface{}{xAxis[i], t.ExitPrice},
				ItemStyle:  &opts.ItemStyle{Color: "#f87171"},
			})
		}
	}
	return marks
}
