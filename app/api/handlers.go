package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/brannerchinese/stockscrape/app/database"
)

func NewHandler(headlineRepo database.HeadlineRepository, quoteRepo database.QuoteRepository,
	runner PassRunner, symbols []string, lookbackDays int, version string) *Handler {
	return &Handler{
		headlineRepo: headlineRepo,
		quoteRepo:    quoteRepo,
		runner:       runner,
		symbols:      symbols,
		lookbackDays: lookbackDays,
		version:      version,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": h.now().Format(time.RFC3339),
		"version":   h.version,
		"symbols":   len(h.symbols),
	}

	if count, err := h.headlineRepo.GetHeadlineCount(c.Request.Context()); err == nil {
		health["headlines"] = count
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetSymbols(c *gin.Context) {
	stats, err := h.headlineRepo.GetSymbolStats(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "get_symbol_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	byTicker := make(map[string]database.SymbolStats, len(stats))
	for _, s := range stats {
		byTicker[s.Ticker] = s
	}

	symbols := make([]map[string]interface{}, 0, len(h.symbols))
	for _, symbol := range h.symbols {
		info := map[string]interface{}{
			"symbol":    symbol,
			"headlines": 0,
		}
		if s, ok := byTicker[symbol]; ok {
			info["headlines"] = s.Headlines
			info["latest_date"] = s.LatestDate
		}
		symbols = append(symbols, info)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"symbols": symbols,
		"total":   len(symbols),
	})
}

func (h *Handler) GetHeadlines(c *gin.Context) {
	symbol := c.Param("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing symbol parameter"})
		return
	}

	days := h.lookbackDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid days parameter"})
			return
		}
		days = parsed
	}

	today := h.now()
	from := today.AddDate(0, 0, -(days - 1))

	stored, err := h.headlineRepo.GetByDateRange(c.Request.Context(), symbol, from, today)
	if err != nil {
		slog.Error("Database error", "operation", "get_headlines", "symbol", symbol, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	headlines := make([]map[string]interface{}, 0, len(stored))
	for _, item := range stored {
		headlines = append(headlines, map[string]interface{}{
			"headline":    item.Headline,
			"url":         item.URL,
			"source":      item.Source,
			"date":        item.Date,
			"lookup_date": item.LookupDate,
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"symbol":    symbol,
		"days":      days,
		"headlines": headlines,
		"total":     len(headlines),
	})
}

func (h *Handler) APITriggerIngest(c *gin.Context) {
	summary, err := h.runner.Run(c.Request.Context(), h.symbols, h.now())
	if err != nil {
		slog.Error("Ingestion pass failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Ingestion pass failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"summary": gin.H{
			"symbols":    summary.Symbols,
			"fetched":    summary.Fetched,
			"new":        summary.Inserted,
			"duplicates": summary.AlreadyKnown,
			"skipped":    summary.Skipped,
			"failed":     summary.Failed,
		},
	})
}
