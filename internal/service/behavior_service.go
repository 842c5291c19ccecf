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

type behaviorRepository interface {
	List(ctx context.Context, schoolYearID int64) ([]models.Behavior, error)
	FindByID(ctx context.Context, schoolYearID, id int64) (*models.Behavior, error)
	Create(ctx context.Context, behavior *models.Behavior) error
	Update(ctx context.Context, behavior *models.Behavior) error
	Delete(ctx context.Context, schoolYearID, id int64) error
}

// BehaviorService manages the reusable behavior catalog. Templates carry a
// category and a point magnitude; the sign is derived from the category so
// positive templates always add and negative templates always deduct.
type BehaviorService struct {
	repo      behaviorRepository
	years     activeYearSource
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBehaviorService constructs the service.
func NewBehaviorService(repo behaviorRepository, years activeYearSource, validate *validator.Validate, logger *zap.Logger) *BehaviorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &BehaviorService{repo: repo, years: years, validator: validate, logger: logger}
	svc.validator.RegisterValidation("behavior_category", func(fl validator.FieldLevel) bool {
		return models.BehaviorCategory(fl.Field().String()).Valid()
	})
	return svc
}

// BehaviorRequest describes create/update payloads. Points is the magnitude;
// it must be positive regardless of category.
type BehaviorRequest struct {
	Category    string `json:"category" validate:"required,behavior_category"`
	Description string `json:"description" validate:"required"`
	Points      int    `json:"points" validate:"required,gt=0"`
}

// List returns the catalog of the active year, positive templates first.
func (s *BehaviorService) List(ctx context.Context) ([]models.Behavior, error) {
	yearID, err := s.years.ActiveYearID(ctx)
	if err != nil {
		return nil, err
	}
	behaviors, err := s.repo.List(ctx, yearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list behaviors")
	}
	return behaviors, nil
}

// Create adds a template, signing the stored points from the category.
func (s *BehaviorService) Create(ctx context.Context, req BehaviorRequest) (*models.Behavior, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	yearID, err := s.years.ActiveYearID(ctx)
	if err != nil {
		return nil, err
	}
	behavior := &models.Behavior{
		SchoolYearID: yearID,
		Category:     models.BehaviorCategory(req.Category),
		Description:  req.Description,
		Points:       signedPoints(models.BehaviorCategory(req.Category), req.Points),
	}
	if err := s.repo.Create(ctx, behavior); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to create behavior")
	}
	return behavior, nil
}

// Update modifies a template. Point adjustments already recorded from the old
// version keep their values.
func (s *BehaviorService) Update(ctx context.Context, id int64, req BehaviorRequest) (*models.Behavior, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	yearID, err := s.years.ActiveYearID(ctx)
	if err != nil {
		return nil, err
	}
	behavior := &models.Behavior{
		ID:           id,
		SchoolYearID: yearID,
		Category:     models.BehaviorCategory(req.Category),
		Description:  req.Description,
		Points:       signedPoints(models.BehaviorCategory(req.Category), req.Points),
	}
	if err := s.repo.Update(ctx, behavior); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "behavior not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to update behavior")
	}
	return behavior, nil
}

// Delete removes a template from the catalog.
func (s *BehaviorService) Delete(ctx context.Context, id int64) error {
	yearID, err := s.years.ActiveYearID(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, yearID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "behavior not found")
		}
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to delete behavior")
	}
	return nil
}

func signedPoints(category models.BehaviorCategory, magnitude int) int {
	if category == models.BehaviorNegative {
		return -magnitude
	}
	return magnitude
}
