package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/minhtran-dev/thidua-api/internal/models"
	"github.com/minhtran-dev/thidua-api/internal/repository"
	appErrors "github.com/minhtran-dev/thidua-api/pkg/errors"
)

type ledgerRepository interface {
	ApplyPoints(ctx context.Context, schoolYearID int64, adj repository.PointAdjustment, recordedAt time.Time) (*models.Student, *models.HistoryEntry, error)
	ApplyBatch(ctx context.Context, schoolYearID int64, adjs []repository.PointAdjustment, recordedAt time.Time) ([]models.Student, []models.HistoryEntry, error)
	ResetYear(ctx context.Context, schoolYearID int64) (int64, int64, error)
}

// LedgerService records point adjustments. Every adjustment moves a score and
// appends a history entry in one transaction, so the two never diverge.
type LedgerService struct {
	repo      ledgerRepository
	years     activeYearSource
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewLedgerService constructs the service.
func NewLedgerService(repo ledgerRepository, years activeYearSource, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *LedgerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{repo: repo, years: years, cache: cache, validator: validate, logger: logger, now: time.Now}
}

// ApplyPointsRequest describes a single adjustment payload.
type ApplyPointsRequest struct {
	Points int    `json:"points" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

// BatchPointsRequest applies the same adjustment to several students at once.
// An empty id set is a no-op, not an error.
type BatchPointsRequest struct {
	StudentIDs []int64 `json:"student_ids"`
	Points     int     `json:"points" validate:"required"`
	Reason     string  `json:"reason" validate:"required"`
}

// BatchResult pairs the updated students with the recorded entries.
type BatchResult struct {
	Students []models.Student      `json:"students"`
	Entries  []models.HistoryEntry `json:"entries"`
}

// ResetResult reports how much state a reset wiped.
type ResetResult struct {
	StudentsReset  int64 `json:"students_reset"`
	EntriesCleared int64 `json:"entries_cleared"`
}

// ApplyPoints adjusts one student and records the reason. Zero-point
// adjustments are rejected up front; they would only pollute the log.
func (s *LedgerService) ApplyPoints(ctx context.Context, studentID int64, req ApplyPointsRequest) (*models.Student, *models.HistoryEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	yearID, err := s.years.ActiveYearID(ctx)
	if err != nil {
		return nil, nil, err
	}
	adj := repository.PointAdjustment{StudentID: studentID, Points: req.Points, Reason: req.Reason}
	student, entry, err := s.repo.ApplyPoints(ctx, yearID, adj, s.now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to apply points")
	}
	s.invalidate(ctx)
	return student, entry, nil
}

// ApplyPointsBatch adjusts several students with one shared timestamp and
// reason. The whole batch lands or none of it does.
func (s *LedgerService) ApplyPointsBatch(ctx context.Context, req BatchPointsRequest) (*BatchResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if len(req.StudentIDs) == 0 {
		return &BatchResult{Students: []models.Student{}, Entries: []models.HistoryEntry{}}, nil
	}
	seen := make(map[int64]struct{}, len(req.StudentIDs))
	for _, id := range req.StudentIDs {
		if _, dup := seen[id]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, "duplicate student id in batch")
		}
		seen[id] = struct{}{}
	}
	yearID, err := s.years.ActiveYearID(ctx)
	if err != nil {
		return nil, err
	}
	adjs := make([]repository.PointAdjustment, len(req.StudentIDs))
	for i, id := range req.StudentIDs {
		adjs[i] = repository.PointAdjustment{StudentID: id, Points: req.Points, Reason: req.Reason}
	}
	students, entries, err := s.repo.ApplyBatch(ctx, yearID, adjs, s.now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to apply batch")
	}
	s.invalidate(ctx)
	return &BatchResult{Students: students, Entries: entries}, nil
}

// Reset zeroes every score of the active year and clears its history. Other
// years are untouched.
func (s *LedgerService) Reset(ctx context.Context) (*ResetResult, error) {
	yearID, err := s.years.ActiveYearID(ctx)
	if err != nil {
		return nil, err
	}
	studentsReset, entriesCleared, err := s.repo.ResetYear(ctx, yearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to reset scores")
	}
	s.logger.Info("scores reset",
		zap.Int64("school_year_id", yearID),
		zap.Int64("students_reset", studentsReset),
		zap.Int64("entries_cleared", entriesCleared))
	s.invalidate(ctx)
	return &ResetResult{StudentsReset: studentsReset, EntriesCleared: entriesCleared}, nil
}

func (s *LedgerService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}
