package replay

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"volcast/internal/analysis/indicator"
	"volcast/internal/engine"
	"volcast/internal/logger"
	"volcast/internal/market"
	"volcast/internal/pkg/trading"
)

// ReplayerConfig wires the replayer's collaborators.
type ReplayerConfig struct {
	CandleStore   *market.Store
	ResultStore   *ResultStore
	Settings      engine.Settings
	InitialEquity float64
	LotStep       float64
	ChartDir      string
	MaxConcurrent int
}

// Replayer runs replay jobs in the background, bounded by a semaphore.
type Replayer struct {
	candles  *market.Store
	results  *ResultStore
	settings engine.Settings
	equity   float64
	lotStep  float64
	chartDir string

	sem     chan struct{}
	baseCtx context.Context
}

func NewReplayer(cfg ReplayerConfig) (*Replayer, error) {
	if cfg.CandleStore == nil {
		return nil, fmt.Errorf("candle store cannot be nil")
	}
	if cfg.ResultStore == nil {
		return nil, fmt.Errorf("result store cannot be nil")
	}
	if err := cfg.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("engine settings: %w", err)
	}
	if cfg.InitialEquity <= 0 {
		return nil, fmt.Errorf("initial equity must be > 0")
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Replayer{
		candles:  cfg.CandleStore,
		results:  cfg.ResultStore,
		settings: cfg.Settings,
		equity:   cfg.InitialEquity,
		lotStep:  cfg.LotStep,
		chartDir: cfg.ChartDir,
		sem:      make(chan struct{}, maxConcurrent),
		baseCtx:  context.Background(),
	}, nil
}

func (r *Replayer) SetContext(ctx context.Context) {
	if ctx != nil {
		r.baseCtx = ctx
	}
}

// Start registers the run and returns immediately; the replay itself happens
// in the background.
func (r *Replayer) Start(req RunRequest) (Run, error) {
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	req.Timeframe = strings.ToLower(strings.TrimSpace(req.Timeframe))
	if req.Symbol == "" {
		return Run{}, fmt.Errorf("symbol cannot be empty")
	}
	if req.Timeframe == "" {
		return Run{}, fmt.Errorf("timeframe cannot be empty")
	}
	run := Run{
		ID:            uuid.NewString(),
		Symbol:        req.Symbol,
		Timeframe:     req.Timeframe,
		Status:        RunStatusPending,
		StartTS:       req.StartTS,
		EndTS:         req.EndTS,
		Seed:          req.Seed,
		InitialEquity: r.equity,
		Request:       req,
		CreatedAt:     time.Now(),
	}
	if err := r.results.SaveRun(r.baseCtx, run); err != nil {
		return Run{}, err
	}
	go r.execute(run)
	return run, nil
}

func (r *Replayer) execute(run Run) {
	r.sem <- struct{}{}
	defer func() { <-r.sem }()
	ctx := r.baseCtx

	run.Status = RunStatusRunning
	_ = r.results.SaveRun(ctx, run)

	outcome, trades, err := r.replay(ctx, run)
	if err != nil {
		run.Status = RunStatusFailed
		run.Message = err.Error()
		logger.Errorf("replay %s failed: %v", run.ID, err)
		_ = r.results.SaveRun(ctx, run)
		return
	}
	run.Stats = outcome.stats
	run.ChartPath = outcome.chartPath
	run.Status = RunStatusDone
	if err := r.results.InsertTrades(ctx, trades); err != nil {
		logger.Errorf("replay %s: persisting trades failed: %v", run.ID, err)
	}
	if err := r.results.SaveRun(ctx, run); err != nil {
		logger.Errorf("replay %s: persisting run failed: %v", run.ID, err)
	}
	logger.InfoBlock(fmt.Sprintf(
		"replay %s finished\nsymbol=%s tf=%s bars=%d trades=%d\nequity %.2f -> %.2f (%.2f%%), win rate %.1f%%, max drawdown %.2f%%",
		run.ID, run.Symbol, run.Timeframe, run.Stats.Bars, run.Stats.Trades,
		run.InitialEquity, run.Stats.FinalEquity, run.Stats.ReturnPct*100,
		run.Stats.WinRate*100, run.Stats.MaxDrawdownPct*100))
}

type outcome struct {
	stats     RunStats
	chartPath string
}

func (r *Replayer) replay(ctx context.Context, run Run) (outcome, []Trade, error) {
	candles, err := r.candles.LoadRange(ctx, run.Symbol, run.Timeframe, run.StartTS, run.EndTS)
	if err != nil {
		return outcome{}, nil, fmt.Errorf("loading candles failed: %w", err)
	}
	if len(candles) == 0 {
		return outcome{}, nil, fmt.Errorf("no candles for %s@%s in range", run.Symbol, run.Timeframe)
	}

	opts := []engine.Option{}
	if run.Seed != 0 {
		opts = append(opts, engine.WithSeed(run.Seed))
	}
	eng, err := engine.New(r.settings, opts...)
	if err != nil {
		return outcome{}, nil, err
	}

	acct := newPaperAccount(r.equity, r.settings.MaxPositionSize, r.lotStep, run.Request.MinStrength)
	equityCurve := make([]float64, 0, len(candles))
	for i, c := range candles {
		res := eng.AnalyzeBar(c.Open, c.High, c.Low, c.Close, c.Volume, i+1)
		acct.onBar(eng, c, res)
		equityCurve = append(equityCurve, acct.marked(eng))
	}
	acct.closeAtEnd(eng, candles[len(candles)-1])

	if rep, err := indicator.Compute(candles, indicator.Settings{}); err == nil {
		logger.Debugf("replay %s context: rsi=%.1f(%s) ema_fast=%s",
			run.ID, rep.Values["rsi"].Latest, rep.Values["rsi"].State, rep.Values["ema_fast"].State)
	}

	trades := acct.trades(run.ID)
	stats := acct.stats(run.InitialEquity, len(candles), equityCurve)

	var chartPath string
	if r.chartDir != "" {
		chartPath, err = renderChart(r.chartDir, run, candles, equityCurve, trades)
		if err != nil {
			logger.Warnf("replay %s: chart rendering failed: %v", run.ID, err)
			chartPath = ""
		}
	}
	return outcome{stats: stats, chartPath: chartPath}, trades, nil
}

// paperAccount books long-only round trips from the engine's signals: buys
// open when flat, sells or engine risk closes exit.
type paperAccount struct {
	cash        float64
	maxPosPct   float64
	lotStep     float64
	minStrength float64

	holding  bool
	entryTS  int64
	entry    float64
	quantity float64

	booked []Trade
	wins   int
	losses int
}

func newPaperAccount(cash, maxPosPct, lotStep, minStrength float64) *paperAccount {
	return &paperAccount{cash: cash, maxPosPct: maxPosPct, lotStep: lotStep, minStrength: minStrength}
}

func (a *paperAccount) onBar(eng *engine.Engine, c market.Candle, res engine.Result) {
	if a.holding {
		riskClosed := !eng.Position().Open // stop-loss/take-profit fired inside AnalyzeBar
		if riskClosed || res.Action == engine.ActionSell {
			reason := "signal"
			if riskClosed {
				reason = "risk"
			}
			if !riskClosed {
				eng.ResetPosition()
			}
			a.book(c, reason)
		}
		return
	}
	if res.Action != engine.ActionBuy || res.BuyStrength < a.minStrength {
		return
	}
	qty := trading.SuggestQuantity(a.cash, c.Close, a.maxPosPct, a.lotStep)
	if qty <= 0 {
		return
	}
	eng.OpenPosition(c.Close, qty)
	a.holding = true
	a.entryTS = c.CloseTime
	a.entry = c.Close
	a.quantity = qty
}

func (a *paperAccount) book(c market.Candle, reason string) {
	profit := (c.Close - a.entry) * a.quantity
	a.cash += profit
	if profit >= 0 {
		a.wins++
	} else {
		a.losses++
	}
	a.booked = append(a.booked, Trade{
		EntryTS:    a.entryTS,
		ExitTS:     c.CloseTime,
		EntryPrice: a.entry,
		ExitPrice:  c.Close,
		Quantity:   a.quantity,
		Profit:     profit,
		Reason:     reason,
	})
	a.holding = false
	a.entry = 0
	a.quantity = 0
}

func (a *paperAccount) closeAtEnd(eng *engine.Engine, last market.Candle) {
	if !a.holding {
		return
	}
	eng.ResetPosition()
	a.book(last, "end")
}

// marked is cash plus the open position's mark-to-market value delta.
func (a *paperAccount) marked(eng *engine.Engine) float64 {
	if !a.holding {
		return a.cash
	}
	return a.cash + eng.UnrealizedPnL()
}

func (a *paperAccount) trades(runID string) []Trade {
	out := make([]Trade, len(a.booked))
	for i, t := range a.booked {
		t.RunID = runID
		out[i] = t
	}
	return out
}

func (a *paperAccount) stats(initial float64, bars int, curve []float64) RunStats {
	stats := RunStats{
		FinalEquity: a.cash,
		Profit:      a.cash - initial,
		ReturnPct:   (a.cash - initial) / initial,
		Trades:      len(a.booked),
		Wins:        a.wins,
		Losses:      a.losses,
		Bars:        bars,
		FinishedAt:  time.Now(),
	}
	if stats.Trades > 0 {
		stats.WinRate = float64(a.wins) / float64(stats.Trades)
	}
	peak, valley := initial, initial
	maxDD := 0.0
	for _, eq := range curve {
		if eq > peak {
			peak = eq
		}
		if eq < valley {
			valley = eq
		}
		if peak > 0 {
			if dd := (peak - eq) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	stats.EquityPeak = peak
	stats.EquityValley = valley
	stats.MaxDrawdownPct = maxDD
	return stats
}
