package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"volcast/internal/engine"
	"volcast/internal/market"
	"volcast/internal/replay"
	"volcast/internal/trader"
)

// Router wires the JSON handlers onto a gin group.
type Router struct {
	trader   *trader.Service
	candles  *market.Store
	replayer *replay.Replayer
	results  *replay.ResultStore
}

func NewRouter(t *trader.Service, candles *market.Store, r *replay.Replayer, res *replay.ResultStore) *Router {
	return &Router{trader: t, candles: candles, replayer: r, results: res}
}

func (r *Router) Register(group *gin.RouterGroup) {
	group.POST("/bar", r.handleBar)
	group.POST("/position/open", r.handleOpenPosition)
	group.POST("/position/reset", r.handleResetPosition)
	group.GET("/position", r.handlePosition)
	group.GET("/settings", r.handleGetSettings)
	group.PUT("/settings", r.handlePutSettings)
	group.GET("/status", r.handleStatus)

	if r.candles != nil {
		group.POST("/candles", r.handleInsertCandles)
		group.POST("/candles/import", r.handleImportCSV)
		group.GET("/candles/manifest", r.handleManifest)
	}

	if r.replayer != nil && r.results != nil {
		group.POST("/replay/runs", r.handleStartRun)
		group.GET("/replay/runs", r.handleListRuns)
		group.GET("/replay/runs/:id", r.handleGetRun)
		group.GET("/replay/runs/:id/trades", r.handleRunTrades)
	}
}

type barRequest struct {
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close" binding:"required"`
	Volume   float64 `json:"volume"`
	BarIndex int     `json:"bar_index"`
}

func (r *Router) handleBar(c *gin.Context) {
	var req barRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Close <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "close must be > 0"})
		return
	}
	res := r.trader.AnalyzeBar(req.Open, req.High, req.Low, req.Close, req.Volume, req.BarIndex)
	c.JSON(http.StatusOK, gin.H{
		"action":        res.Action.String(),
		"action_code":   res.Action.LegacyInt(),
		"buy_strength":  res.BuyStrength,
		"sell_strength": res.SellStrength,
		"confidence":    res.Confidence,
	})
}

type openPositionRequest struct {
	EntryPrice float64 `json:"entry_price" binding:"required"`
	Quantity   float64 `json:"quantity" binding:"required"`
}

func (r *Router) handleOpenPosition(c *gin.Context) {
	var req openPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.EntryPrice <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entry_price must be > 0"})
		return
	}
	r.trader.OpenPosition(req.EntryPrice, req.Quantity)
	snap := r.trader.Snapshot()
	c.JSON(http.StatusOK, gin.H{"position": snap.Position})
}

func (r *Router) handleResetPosition(c *gin.Context) {
	r.trader.ResetPosition()
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

func (r *Router) handlePosition(c *gin.Context) {
	snap := r.trader.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"position":     snap.Position,
		"should_close": snap.ShouldClose,
	})
}

func (r *Router) handleGetSettings(c *gin.Context) {
	snap := r.trader.Snapshot()
	c.JSON(http.StatusOK, snap.Settings)
}

func (r *Router) handlePutSettings(c *gin.Context) {
	var settings engine.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := r.trader.ApplySettings(settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, r.trader.Snapshot().Settings)
}

func (r *Router) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, r.trader.Snapshot())
}

type insertCandlesRequest struct {
	Symbol    string          `json:"symbol" binding:"required"`
	Timeframe string          `json:"timeframe" binding:"required"`
	Candles   []market.Candle `json:"candles" binding:"required"`
}

func (r *Router) handleInsertCandles(c *gin.Context) {
	var req insertCandlesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n, err := r.candles.InsertCandles(c.Request.Context(), req.Symbol, req.Timeframe, req.Candles)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"inserted": n})
}

type importCSVRequest struct {
	Symbol    string `json:"symbol" binding:"required"`
	Timeframe string `json:"timeframe" binding:"required"`
	Path      string `json:"path" binding:"required"`
}

func (r *Router) handleImportCSV(c *gin.Context) {
	var req importCSVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n, err := r.candles.ImportCSV(c.Request.Context(), req.Symbol, req.Timeframe, req.Path)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": n})
}

func (r *Router) handleManifest(c *gin.Context) {
	symbol := c.Query("symbol")
	timeframe := c.Query("timeframe")
	if symbol == "" || timeframe == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol and timeframe query params are required"})
		return
	}
	m, err := r.candles.Manifest(c.Request.Context(), symbol, timeframe)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, m)
}

func (r *Router) handleStartRun(c *gin.Context) {
	var req replay.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	run, err := r.replayer.Start(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, run)
}

func (r *Router) handleListRuns(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}
	runs, err := r.results.ListRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (r *Router) handleGetRun(c *gin.Context) {
	run, err := r.results.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}

func (r *Router) handleRunTrades(c *gin.Context) {
	id := c.Param("id")
	if _, err := r.results.GetRun(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	trades, err := r.results.Trades(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades})
}
