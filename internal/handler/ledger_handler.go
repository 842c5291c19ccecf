package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minhtran-dev/thidua-api/internal/service"
	appErrors "github.com/minhtran-dev/thidua-api/pkg/errors"
	"github.com/minhtran-dev/thidua-api/pkg/response"
)

// LedgerHandler exposes point adjustment endpoints.
type LedgerHandler struct {
	service *service.LedgerService
}

// NewLedgerHandler constructs a ledger handler.
func NewLedgerHandler(svc *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{service: svc}
}

// ApplyPoints godoc
// @Summary Adjust a student's points
// @Tags Points
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param payload body service.ApplyPointsRequest true "Adjustment payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/points [post]
func (h *LedgerHandler) ApplyPoints(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.ApplyPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, entry, err := h.service.ApplyPoints(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"student": student, "entry": entry}, nil)
}

// ApplyPointsBatch godoc
// @Summary Adjust several students at once
// @Tags Points
// @Accept json
// @Produce json
// @Param payload body service.BatchPointsRequest true "Batch payload"
// @Success 200 {object} response.Envelope
// @Router /points/batch [post]
func (h *LedgerHandler) ApplyPointsBatch(c *gin.Context) {
	var req service.BatchPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.ApplyPointsBatch(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Reset godoc
// @Summary Reset scores and history of the active year
// @Tags Points
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /scores/reset [post]
func (h *LedgerHandler) Reset(c *gin.Context) {
	result, err := h.service.Reset(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
