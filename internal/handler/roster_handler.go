package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minhtran-dev/thidua-api/internal/service"
	appErrors "github.com/minhtran-dev/thidua-api/pkg/errors"
	"github.com/minhtran-dev/thidua-api/pkg/response"
)

// RosterHandler exposes team and student CRUD endpoints.
type RosterHandler struct {
	service *service.RosterService
}

// NewRosterHandler constructs a roster handler.
func NewRosterHandler(svc *service.RosterService) *RosterHandler {
	return &RosterHandler{service: svc}
}

// ListTeams godoc
// @Summary List teams with rosters
// @Tags Teams
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teams [get]
func (h *RosterHandler) ListTeams(c *gin.Context) {
	teams, err := h.service.ListTeams(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teams, nil)
}

// CreateTeam godoc
// @Summary Create team
// @Tags Teams
// @Accept json
// @Produce json
// @Param payload body service.TeamRequest true "Team payload"
// @Success 201 {object} response.Envelope
// @Router /teams [post]
func (h *RosterHandler) CreateTeam(c *gin.Context) {
	var req service.TeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	team, err := h.service.CreateTeam(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, team)
}

// UpdateTeam godoc
// @Summary Update team
// @Tags Teams
// @Accept json
// @Produce json
// @Param id path int true "Team ID"
// @Param payload body service.TeamRequest true "Team payload"
// @Success 200 {object} response.Envelope
// @Router /teams/{id} [put]
func (h *RosterHandler) UpdateTeam(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.TeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	team, err := h.service.UpdateTeam(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, team, nil)
}

// DeleteTeam godoc
// @Summary Delete team and its students
// @Tags Teams
// @Produce json
// @Param id path int true "Team ID"
// @Success 204
// @Router /teams/{id} [delete]
func (h *RosterHandler) DeleteTeam(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.DeleteTeam(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateStudent godoc
// @Summary Enroll student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.StudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /students [post]
func (h *RosterHandler) CreateStudent(c *gin.Context) {
	var req service.StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.service.CreateStudent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// CreateStudents godoc
// @Summary Enroll several students into one team
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.BulkStudentsRequest true "Bulk enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /students/bulk [post]
func (h *RosterHandler) CreateStudents(c *gin.Context) {
	var req service.BulkStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	students, err := h.service.CreateStudents(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, students)
}

// UpdateStudent godoc
// @Summary Update student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param payload body service.StudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [put]
func (h *RosterHandler) UpdateStudent(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.service.UpdateStudent(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// DeleteStudent godoc
// @Summary Unenroll student
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Success 204
// @Router /students/{id} [delete]
func (h *RosterHandler) DeleteStudent(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.DeleteStudent(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
