package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minhtran-dev/thidua-api/internal/service"
	appErrors "github.com/minhtran-dev/thidua-api/pkg/errors"
	"github.com/minhtran-dev/thidua-api/pkg/response"
)

// AttendanceHandler exposes per-date roll-call endpoints.
type AttendanceHandler struct {
	service *service.AttendanceService
}

// NewAttendanceHandler constructs an attendance handler.
func NewAttendanceHandler(svc *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// Sheet godoc
// @Summary Roll-call sheet for one date
// @Tags Attendance
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance/{date} [get]
func (h *AttendanceHandler) Sheet(c *gin.Context) {
	sheet, err := h.service.Sheet(c.Request.Context(), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}

// Save godoc
// @Summary Replace the roll-call sheet for one date
// @Tags Attendance
// @Accept json
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param payload body service.SaveAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Router /attendance/{date} [put]
func (h *AttendanceHandler) Save(c *gin.Context) {
	var req service.SaveAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	sheet, err := h.service.Save(c.Request.Context(), c.Param("date"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}
