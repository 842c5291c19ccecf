package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minhtran-dev/thidua-api/internal/service"
	appErrors "github.com/minhtran-dev/thidua-api/pkg/errors"
	"github.com/minhtran-dev/thidua-api/pkg/response"
)

// BehaviorHandler exposes the behavior catalog.
type BehaviorHandler struct {
	service *service.BehaviorService
}

// NewBehaviorHandler constructs a behavior handler.
func NewBehaviorHandler(svc *service.BehaviorService) *BehaviorHandler {
	return &BehaviorHandler{service: svc}
}

// List godoc
// @Summary List behavior templates
// @Tags Behaviors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /behaviors [get]
func (h *BehaviorHandler) List(c *gin.Context) {
	behaviors, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, behaviors, nil)
}

// Create godoc
// @Summary Create behavior template
// @Tags Behaviors
// @Accept json
// @Produce json
// @Param payload body service.BehaviorRequest true "Behavior payload"
// @Success 201 {object} response.Envelope
// @Router /behaviors [post]
func (h *BehaviorHandler) Create(c *gin.Context) {
	var req service.BehaviorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	behavior, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, behavior)
}

// Update godoc
// @Summary Update behavior template
// @Tags Behaviors
// @Accept json
// @Produce json
// @Param id path int true "Behavior ID"
// @Param payload body service.BehaviorRequest true "Behavior payload"
// @Success 200 {object} response.Envelope
// @Router /behaviors/{id} [put]
func (h *BehaviorHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.BehaviorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	behavior, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, behavior, nil)
}

// Delete godoc
// @Summary Delete behavior template
// @Tags Behaviors
// @Produce json
// @Param id path int true "Behavior ID"
// @Success 204
// @Router /behaviors/{id} [delete]
func (h *BehaviorHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
