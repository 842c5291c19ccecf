package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/minhtran-dev/thidua-api/internal/models"
	appErrors "github.com/minhtran-dev/thidua-api/pkg/errors"
)

type historyPageReader interface {
	List(ctx context.Context, schoolYearID int64, filter models.HistoryFilter) ([]models.HistoryEntry, int, error)
	ListAll(ctx context.Context, schoolYearID int64) ([]models.HistoryEntry, error)
}

// HistoryService exposes the read side of the point log.
type HistoryService struct {
	repo   historyPageReader
	years  activeYearSource
	logger *zap.Logger
}

// NewHistoryService constructs the service.
func NewHistoryService(repo historyPageReader, years activeYearSource, logger *zap.Logger) *HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{repo: repo, years: years, logger: logger}
}

// HistoryListRequest describes filters for one log page.
type HistoryListRequest struct {
	From     *time.Time `json:"from"`
	To       *time.Time `json:"to"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

// List returns one page of the active year's log, newest first.
func (s *HistoryService) List(ctx context.Context, req HistoryListRequest) ([]models.HistoryEntry, *models.Pagination, error) {
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "time range is inverted")
	}
	filter := models.HistoryFilter{From: req.From, To: req.To, Page: req.Page, PageSize: req.PageSize}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 200 {
		filter.PageSize = 50
	}
	yearID, err := s.years.ActiveYearID(ctx)
	if err != nil {
		return nil, nil, err
	}
	entries, total, err := s.repo.List(ctx, yearID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list history")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return entries, pagination, nil
}

// ListAll returns the full log of the active year, newest first.
func (s *HistoryService) ListAll(ctx context.Context) ([]models.HistoryEntry, error) {
	yearID, err := s.years.ActiveYearID(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.ListAll(ctx, yearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list history")
	}
	return entries, nil
}
