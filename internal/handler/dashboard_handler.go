package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/minhtran-dev/thidua-api/internal/service"
	appErrors "github.com/minhtran-dev/thidua-api/pkg/errors"
	"github.com/minhtran-dev/thidua-api/pkg/response"
)

// DashboardHandler exposes leaderboard, Hall of Fame and watchlist reads.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler constructs a dashboard handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

func windowRequest(c *gin.Context) (service.WindowRequest, error) {
	req := service.WindowRequest{Kind: c.DefaultQuery("window", "all")}
	from, err := queryTime(c, "from")
	if err != nil {
		return req, err
	}
	to, err := queryTime(c, "to")
	if err != nil {
		return req, err
	}
	req.From = from
	req.To = to
	return req, nil
}

// Leaderboard godoc
// @Summary Team and individual rankings for a window
// @Tags Dashboard
// @Produce json
// @Param window query string false "all|day|week|month|custom"
// @Param from query string false "RFC3339, custom window start"
// @Param to query string false "RFC3339, custom window end"
// @Success 200 {object} response.Envelope
// @Router /dashboard/leaderboard [get]
func (h *DashboardHandler) Leaderboard(c *gin.Context) {
	req, err := windowRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	board, err := h.service.Leaderboard(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, board, nil)
}

// HallOfFame godoc
// @Summary Positive-point podium for a window
// @Tags Dashboard
// @Produce json
// @Param window query string false "all|day|week|month|custom"
// @Param period query string false "week|month, alias for window (default week)"
// @Success 200 {object} response.Envelope
// @Router /dashboard/hall-of-fame [get]
func (h *DashboardHandler) HallOfFame(c *gin.Context) {
	req, err := windowRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	// The podium UI speaks in periods; default to the current week.
	if c.Query("window") == "" {
		req.Kind = c.DefaultQuery("period", "week")
	}
	podium, err := h.service.HallOfFame(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, podium, nil)
}

// Watchlist godoc
// @Summary Students with repeated negative incidents this week
// @Tags Dashboard
// @Produce json
// @Param date query string false "Reference date (2006-01-02), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /watchlist [get]
func (h *DashboardHandler) Watchlist(c *gin.Context) {
	var ref *time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", raw)))
			return
		}
		ref = &parsed
	}
	entries, err := h.service.Watchlist(c.Request.Context(), ref)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
