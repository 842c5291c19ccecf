package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minhtran-dev/thidua-api/internal/service"
	appErrors "github.com/minhtran-dev/thidua-api/pkg/errors"
	"github.com/minhtran-dev/thidua-api/pkg/response"
)

// AvatarHandler exposes uploaded avatar endpoints.
type AvatarHandler struct {
	service *service.AvatarService
}

// NewAvatarHandler constructs an avatar handler.
func NewAvatarHandler(svc *service.AvatarService) *AvatarHandler {
	return &AvatarHandler{service: svc}
}

// List godoc
// @Summary List uploaded avatars
// @Tags Avatars
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /avatars [get]
func (h *AvatarHandler) List(c *gin.Context) {
	avatars, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, avatars, nil)
}

// Create godoc
// @Summary Upload avatar
// @Tags Avatars
// @Accept json
// @Produce json
// @Param payload body service.AvatarRequest true "Avatar payload"
// @Success 201 {object} response.Envelope
// @Router /avatars [post]
func (h *AvatarHandler) Create(c *gin.Context) {
	var req service.AvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	avatar, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, avatar)
}

// Delete godoc
// @Summary Delete uploaded avatar
// @Tags Avatars
// @Produce json
// @Param id path int true "Avatar ID"
// @Success 204
// @Router /avatars/{id} [delete]
func (h *AvatarHandler) Delete(c *gin.Context) {
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
