package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/minhtran-dev/thidua-api/internal/service"
	"github.com/minhtran-dev/thidua-api/pkg/response"
)

// HistoryHandler exposes the point log.
type HistoryHandler struct {
	service *service.HistoryService
	exports *service.ExportService
}

// NewHistoryHandler constructs a history handler.
func NewHistoryHandler(svc *service.HistoryService, exports *service.ExportService) *HistoryHandler {
	return &HistoryHandler{service: svc, exports: exports}
}

// List godoc
// @Summary List history entries, newest first
// @Tags History
// @Produce json
// @Param from query string false "RFC3339 lower bound"
// @Param to query string false "RFC3339 upper bound"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /history [get]
func (h *HistoryHandler) List(c *gin.Context) {
	var req service.HistoryListRequest
	from, err := queryTime(c, "from")
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := queryTime(c, "to")
	if err != nil {
		response.Error(c, err)
		return
	}
	req.From = from
	req.To = to
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		req.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		req.PageSize = size
	}

	entries, pagination, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, pagination)
}

// Export godoc
// @Summary Download the history log as CSV
// @Tags History
// @Produce text/csv
// @Param from query string false "RFC3339 lower bound"
// @Param to query string false "RFC3339 upper bound"
// @Success 200 {file} file
// @Router /history/export [get]
func (h *HistoryHandler) Export(c *gin.Context) {
	from, err := queryTime(c, "from")
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := queryTime(c, "to")
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, filename, err := h.exports.RenderHistoryCSV(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", payload)
}
