package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/minhtran-dev/thidua-api/internal/models"
	appErrors "github.com/minhtran-dev/thidua-api/pkg/errors"
)

type teamRepository interface {
	ListWithStudents(ctx context.Context, schoolYearID int64) ([]models.Team, error)
	FindTeamByID(ctx context.Context, schoolYearID, id int64) (*models.Team, error)
	CreateTeam(ctx context.Context, team *models.Team) error
	UpdateTeam(ctx context.Context, team *models.Team) error
	DeleteTeam(ctx context.Context, schoolYearID, id int64) error
	FindStudentByID(ctx context.Context, schoolYearID, id int64) (*models.Student, error)
	CreateStudent(ctx context.Context, student *models.Student) error
	UpdateStudent(ctx context.Context, student *models.Student) error
	DeleteStudent(ctx context.Context, schoolYearID, id int64) error
}

type activeYearSource interface {
	ActiveYearID(ctx context.Context) (int64, error)
}

// RosterService manages teams and students of the active school year.
type RosterService struct {
	repo      teamRepository
	years     activeYearSource
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRosterService constructs the service.
func NewRosterService(repo teamRepository, years activeYearSource, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *RosterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{repo: repo, years: years, cache: cache, validator: validate, logger: logger}
}

// TeamRequest describes team create/update payloads.
type TeamRequest struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color" validate:"required"`
}

// StudentRequest describes student create/update payloads.
type StudentRequest struct {
	Name   string `json:"name" validate:"required"`
	TeamID int64  `json:"team_id" validate:"required"`
	Avatar string `json:"avatar"`
}

// ListTeams returns the full roster of the active year in display order.
func (s *RosterService) ListTeams(ctx context.Context) ([]models.Team, error) {
	yearID, err := s.years.ActiveYearID(ctx)
	if err != nil {
		return nil, err
	}
	teams, err := s.repo.ListWithStudents(ctx, yearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list teams")
	}
	return teams, nil
}

// CreateTeam appends a team to the active year.
func (s *RosterService) CreateTeam(ctx context.Context, req TeamRequest) (*models.Team, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	yearID, err := s.years.ActiveYearID(ctx)
	if err != nil {
		return nil, err
	}
	team := &models.Team{SchoolYearID: yearID, Name: req.Name, Color: req.Color}
	if err := s.repo.CreateTeam(ctx, team); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to create team")
	}
	team.Students = []models.Student{}
	s.invalidate(ctx)
	return team, nil
}

// UpdateTeam renames or recolors a team.
func (s *RosterService) UpdateTeam(ctx context.Context, id int64, req TeamRequest) (*models.Team, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	yearID, err := s.years.ActiveYearID(ctx)
	if err != nil {
		return nil, err
	}
	team := &models.Team{ID: id, SchoolYearID: yearID, Name: req.Name, Color: req.Color}
	if err := s.repo.UpdateTeam(ctx, team); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "team not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to update team")
	}
	s.invalidate(ctx)
	return team, nil
}

// DeleteTeam removes a team together with its students. History entries of
// those students stay behind under their name snapshots.
func (s *RosterService) DeleteTeam(ctx context.Context, id int64) error {
	yearID, err := s.years.ActiveYearID(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteTeam(ctx, yearID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "team not found")
		}
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to delete team")
	}
	s.invalidate(ctx)
	return nil
}

// CreateStudent enrolls a student at the end of a team's roster with a zero
// score.
func (s *RosterService) CreateStudent(ctx context.Context, req StudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	yearID, err := s.years.ActiveYearID(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindTeamByID(ctx, yearID, req.TeamID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "team not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load team")
	}
	student := &models.Student{TeamID: req.TeamID, SchoolYearID: yearID, Name: req.Name, Avatar: req.Avatar}
	if err := s.repo.CreateStudent(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to create student")
	}
	s.invalidate(ctx)
	return student, nil
}

// BulkStudentsRequest enrolls several students into one team at once, in the
// order the names arrive.
type BulkStudentsRequest struct {
	TeamID int64    `json:"team_id" validate:"required"`
	Names  []string `json:"names" validate:"required,min=1,dive,required"`
}

// CreateStudents appends every named student to the end of one team's roster.
func (s *RosterService) CreateStudents(ctx context.Context, req BulkStudentsRequest) ([]models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	yearID, err := s.years.ActiveYearID(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindTeamByID(ctx, yearID, req.TeamID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "team not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load team")
	}
	students := make([]models.Student, 0, len(req.Names))
	for _, name := range req.Names {
		student := &models.Student{TeamID: req.TeamID, SchoolYearID: yearID, Name: name}
		if err := s.repo.CreateStudent(ctx, student); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to create student")
		}
		students = append(students, *student)
	}
	s.invalidate(ctx)
	return students, nil
}

// UpdateStudent renames a student, swaps their avatar or moves them to
// another team. The score travels with the student; past history entries keep
// the old name snapshot.
func (s *RosterService) UpdateStudent(ctx context.Context, id int64, req StudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	yearID, err := s.years.ActiveYearID(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindTeamByID(ctx, yearID, req.TeamID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "team not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load team")
	}
	student := &models.Student{ID: id, TeamID: req.TeamID, SchoolYearID: yearID, Name: req.Name, Avatar: req.Avatar}
	if err := s.repo.UpdateStudent(ctx, student); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to update student")
	}
	updated, err := s.repo.FindStudentByID(ctx, yearID, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to reload student")
	}
	s.invalidate(ctx)
	return updated, nil
}

// DeleteStudent unenrolls a student. Their history entries remain and keep
// counting toward windowed totals under the recorded name.
func (s *RosterService) DeleteStudent(ctx context.Context, id int64) error {
	yearID, err := s.years.ActiveYearID(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteStudent(ctx, yearID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to delete student")
	}
	s.invalidate(ctx)
	return nil
}

func (s *RosterService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}
