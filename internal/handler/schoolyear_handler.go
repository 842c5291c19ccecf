package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minhtran-dev/thidua-api/internal/service"
	appErrors "github.com/minhtran-dev/thidua-api/pkg/errors"
	"github.com/minhtran-dev/thidua-api/pkg/response"
)

// SchoolYearHandler exposes the year registry.
type SchoolYearHandler struct {
	service *service.SchoolYearService
}

// NewSchoolYearHandler constructs a school year handler.
func NewSchoolYearHandler(svc *service.SchoolYearService) *SchoolYearHandler {
	return &SchoolYearHandler{service: svc}
}

// List godoc
// @Summary List school years with the active selection
// @Tags SchoolYears
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /school-years [get]
func (h *SchoolYearHandler) List(c *gin.Context) {
	registry, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registry, nil)
}

// Create godoc
// @Summary Create school year
// @Tags SchoolYears
// @Accept json
// @Produce json
// @Param payload body service.SchoolYearRequest true "School year payload"
// @Success 201 {object} response.Envelope
// @Router /school-years [post]
func (h *SchoolYearHandler) Create(c *gin.Context) {
	var req service.SchoolYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	year, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, year)
}

// Update godoc
// @Summary Update school year
// @Tags SchoolYears
// @Accept json
// @Produce json
// @Param id path int true "School year ID"
// @Param payload body service.SchoolYearRequest true "School year payload"
// @Success 200 {object} response.Envelope
// @Router /school-years/{id} [put]
func (h *SchoolYearHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.SchoolYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	year, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// Delete godoc
// @Summary Delete school year and its data
// @Tags SchoolYears
// @Produce json
// @Param id path int true "School year ID"
// @Success 204
// @Router /school-years/{id} [delete]
func (h *SchoolYearHandler) Delete(c *gin.Context) {
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

// Activate godoc
// @Summary Switch the active school year
// @Tags SchoolYears
// @Produce json
// @Param id path int true "School year ID"
// @Success 200 {object} response.Envelope
// @Router /school-years/{id}/activate [post]
func (h *SchoolYearHandler) Activate(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	year, err := h.service.Activate(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}
