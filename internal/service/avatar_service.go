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

type avatarRepository interface {
	List(ctx context.Context, schoolYearID int64) ([]models.CustomAvatar, error)
	Create(ctx context.Context, avatar *models.CustomAvatar) error
	Delete(ctx context.Context, schoolYearID, id int64) error
}

// AvatarService manages uploaded avatar payloads.
type AvatarService struct {
	repo      avatarRepository
	years     activeYearSource
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAvatarService constructs the service.
func NewAvatarService(repo avatarRepository, years activeYearSource, validate *validator.Validate, logger *zap.Logger) *AvatarService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvatarService{repo: repo, years: years, validator: validate, logger: logger}
}

// AvatarRequest carries one uploaded payload.
type AvatarRequest struct {
	Data string `json:"data" validate:"required"`
}

// List returns every uploaded avatar of the active year.
func (s *AvatarService) List(ctx context.Context) ([]models.CustomAvatar, error) {
	yearID, err := s.years.ActiveYearID(ctx)
	if err != nil {
		return nil, err
	}
	avatars, err := s.repo.List(ctx, yearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list avatars")
	}
	return avatars, nil
}

// Create stores an uploaded avatar.
func (s *AvatarService) Create(ctx context.Context, req AvatarRequest) (*models.CustomAvatar, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	yearID, err := s.years.ActiveYearID(ctx)
	if err != nil {
		return nil, err
	}
	avatar := &models.CustomAvatar{SchoolYearID: yearID, Data: req.Data}
	if err := s.repo.Create(ctx, avatar); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to create avatar")
	}
	return avatar, nil
}

// Delete removes an uploaded avatar. Students already assigned its data keep
// rendering it.
func (s *AvatarService) Delete(ctx context.Context, id int64) error {
	yearID, err := s.years.ActiveYearID(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, yearID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "avatar not found")
		}
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to delete avatar")
	}
	return nil
}
