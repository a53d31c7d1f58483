package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/couchcryptid/quake-feed-service/internal/domain"
)

// isoMillis matches JavaScript's Date.toISOString, which dashboards parse.
const isoMillis = "2006-01-02T15:04:05.000Z"

const staleNotice = "Failed to fetch fresh data, serving cached data"

type listResponse struct {
	Data       []domain.SeismicRecord `json:"data"`
	Cached     bool                   `json:"cached"`
	LastUpdate string                 `json:"lastUpdate"`
	Count      *int                   `json:"count,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

type latestResponse struct {
	Data       domain.SeismicRecord `json:"data"`
	LastUpdate string               `json:"lastUpdate"`
}

type statsResponse struct {
	Data       domain.Summary `json:"data"`
	LastUpdate string         `json:"lastUpdate"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// EarthquakeController serves the record set and its derived views.
type EarthquakeController struct {
	records RecordSetProvider
	logger  *slog.Logger
	now     func() time.Time
}

func NewEarthquakeController(records RecordSetProvider, logger *slog.Logger) *EarthquakeController {
	return &EarthquakeController{records: records, logger: logger, now: time.Now}
}

func (c *EarthquakeController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", c.handleHealth)
	rg.GET("/earthquakes", c.handleList)
	rg.GET("/earthquakes/latest", c.handleLatest)
	rg.GET("/earthquakes/stats", c.handleStats)
}

func (c *EarthquakeController) handleHealth(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "OK", "timestamp": formatTime(c.now())})
}

func (c *EarthquakeController) handleList(ctx *gin.Context) {
	snap, err := c.records.GetRecordSet(ctx.Request.Context())
	if err != nil {
		c.fail(ctx, "Failed to scrape earthquake data", err)
		return
	}

	resp := listResponse{
		Data:       snap.Records,
		Cached:     snap.Cached,
		LastUpdate: formatTime(snap.LastUpdate),
	}
	if snap.Fresh() {
		n := len(snap.Records)
		resp.Count = &n
	}
	if snap.Err != nil {
		resp.Error = staleNotice
	}
	ctx.JSON(http.StatusOK, resp)
}

func (c *EarthquakeController) handleLatest(ctx *gin.Context) {
	snap, err := c.records.GetRecordSet(ctx.Request.Context())
	if err != nil {
		c.fail(ctx, "Failed to get latest earthquake data", err)
		return
	}

	latest, ok := domain.Latest(snap.Records)
	if !ok {
		ctx.JSON(http.StatusNotFound, errorResponse{Error: "No earthquake data available"})
		return
	}
	ctx.JSON(http.StatusOK, latestResponse{Data: latest, LastUpdate: formatTime(snap.LastUpdate)})
}

func (c *EarthquakeController) handleStats(ctx *gin.Context) {
	snap, err := c.records.GetRecordSet(ctx.Request.Context())
	if err != nil {
		c.fail(ctx, "Failed to calculate statistics", err)
		return
	}

	summary, ok := domain.Summarize(snap.Records)
	if !ok {
		ctx.JSON(http.StatusOK, errorResponse{Error: "No data available for statistics"})
		return
	}
	ctx.JSON(http.StatusOK, statsResponse{Data: summary, LastUpdate: formatTime(snap.LastUpdate)})
}

func (c *EarthquakeController) fail(ctx *gin.Context, msg string, err error) {
	c.logger.Error(msg, "error", err, "path", ctx.Request.URL.Path)
	ctx.JSON(http.StatusInternalServerError, errorResponse{
		Error:     msg,
		Message:   err.Error(),
		Timestamp: formatTime(c.now()),
	})
}

func formatTime(t time.Time) string {
	return t.UTC().Format(isoMillis)
}
