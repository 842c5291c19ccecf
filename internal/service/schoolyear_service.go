package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/minhtran-dev/thidua-api/internal/models"
	appErrors "github.com/minhtran-dev/thidua-api/pkg/errors"
)

type schoolYearRepository interface {
	List(ctx context.Context) ([]models.SchoolYear, error)
	FindByID(ctx context.Context, id int64) (*models.SchoolYear, error)
	Create(ctx context.Context, year *models.SchoolYear) error
	Update(ctx context.Context, year *models.SchoolYear) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
	ActiveYearID(ctx context.Context) (int64, error)
	SetActiveYearID(ctx context.Context, id int64) error
}

// SchoolYearService manages the year registry and which partition is active.
type SchoolYearService struct {
	repo      schoolYearRepository
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSchoolYearService constructs the service.
func NewSchoolYearService(repo schoolYearRepository, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *SchoolYearService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchoolYearService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// SchoolYearRequest describes create/update payloads.
type SchoolYearRequest struct {
	Name      string    `json:"name" validate:"required"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
}

// List returns every year plus the active selection.
func (s *SchoolYearService) List(ctx context.Context) (*models.SchoolYearRegistry, error) {
	years, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list school years")
	}
	activeID, err := s.repo.ActiveYearID(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to resolve active school year")
	}
	return &models.SchoolYearRegistry{SchoolYears: years, ActiveYearID: activeID}, nil
}

// ActiveYearID resolves the active partition for the other services.
func (s *SchoolYearService) ActiveYearID(ctx context.Context) (int64, error) {
	id, err := s.repo.ActiveYearID(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to resolve active school year")
	}
	return id, nil
}

// Create registers a new, empty school year. The active year is unchanged.
func (s *SchoolYearService) Create(ctx context.Context, req SchoolYearRequest) (*models.SchoolYear, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must be after start_date")
	}
	year := &models.SchoolYear{Name: req.Name, StartDate: req.StartDate, EndDate: req.EndDate}
	if err := s.repo.Create(ctx, year); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to create school year")
	}
	return year, nil
}

// Update renames or re-dates an existing year.
func (s *SchoolYearService) Update(ctx context.Context, id int64, req SchoolYearRequest) (*models.SchoolYear, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must be after start_date")
	}
	year := &models.SchoolYear{ID: id, Name: req.Name, StartDate: req.StartDate, EndDate: req.EndDate}
	if err := s.repo.Update(ctx, year); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "school year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to update school year")
	}
	return year, nil
}

// Delete removes a year and its whole partition. The last remaining year and
// the active year are protected.
func (s *SchoolYearService) Delete(ctx context.Context, id int64) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to count school years")
	}
	if count <= 1 {
		return appErrors.Clone(appErrors.ErrInvariant, "cannot delete the last school year")
	}
	activeID, err := s.repo.ActiveYearID(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to resolve active school year")
	}
	if activeID == id {
		return appErrors.Clone(appErrors.ErrInvariant, "cannot delete the active school year")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "school year not found")
		}
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to delete school year")
	}
	return nil
}

// Activate switches the working partition to another year. Every read and
// write after this resolves against the newly active year.
func (s *SchoolYearService) Activate(ctx context.Context, id int64) (*models.SchoolYear, error) {
	year, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "school year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load school year")
	}
	if err := s.repo.SetActiveYearID(ctx, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to activate school year")
	}
	s.invalidateCaches(ctx)
	return year, nil
}

func (s *SchoolYearService) invalidateCaches(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}
