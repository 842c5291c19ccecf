package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/minhtran-dev/thidua-api/internal/models"
	appErrors "github.com/minhtran-dev/thidua-api/pkg/errors"
	"github.com/minhtran-dev/thidua-api/pkg/export"
	"github.com/minhtran-dev/thidua-api/pkg/jobs"
	"github.com/minhtran-dev/thidua-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportDownload aggregates resolved download data.
type ExportDownload struct {
	File      *os.File
	Filename  string
	Format    models.ExportFormat
	SizeBytes int64
	ExpiresAt time.Time
}

// ExportService renders the history log to CSV or PDF, immediately for the
// inline endpoint and via the job queue for downloadable files. Job records
// are kept in memory; the files on disk carry the durable state.
type ExportService struct {
	history historyPageReader
	years   activeYearSource
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	queue   jobDispatcher
	metrics *MetricsService
	logger  *zap.Logger
	cfg     ExportConfig

	mu       sync.RWMutex
	jobsByID map[string]*models.ExportJob
}

// NewExportService constructs an ExportService. The queue is attached later
// via SetQueue because the queue handler needs the service.
func NewExportService(history historyPageReader, years activeYearSource, store fileStorage, signer *storage.SignedURLSigner, metrics *MetricsService, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		history:  history,
		years:    years,
		storage:  store,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		signer:   signer,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		jobsByID: make(map[string]*models.ExportJob),
	}
}

// SetQueue wires the dispatcher used by CreateJob.
func (s *ExportService) SetQueue(queue jobDispatcher) {
	s.queue = queue
}

// ExportJobRequest describes an async export payload.
type ExportJobRequest struct {
	Format string     `json:"format"`
	From   *time.Time `json:"from"`
	To     *time.Time `json:"to"`
}

// RenderHistoryCSV renders the active year's history inline, newest first.
// The payload starts with a UTF-8 BOM so Excel renders Vietnamese names.
func (s *ExportService) RenderHistoryCSV(ctx context.Context, from, to *time.Time) ([]byte, string, error) {
	yearID, err := s.years.ActiveYearID(ctx)
	if err != nil {
		return nil, "", err
	}
	dataset, _, err := s.buildHistoryDataset(ctx, yearID, from, to)
	if err != nil {
		return nil, "", err
	}
	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	filename := fmt.Sprintf("lich-su-diem_%s.csv", time.Now().UTC().Format("20060102_150405"))
	return payload, filename, nil
}

// CreateJob queues an async export and returns the job descriptor.
func (s *ExportService) CreateJob(ctx context.Context, req ExportJobRequest) (*models.ExportJob, error) {
	format := models.ExportFormat(req.Format)
	if req.Format == "" {
		format = models.ExportFormatCSV
	}
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "time range is inverted")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "export queue unavailable")
	}
	yearID, err := s.years.ActiveYearID(ctx)
	if err != nil {
		return nil, err
	}

	job := &models.ExportJob{
		ID:           uuid.NewString(),
		SchoolYearID: yearID,
		Format:       format,
		From:         req.From,
		To:           req.To,
		Status:       models.ExportStatusQueued,
		CreatedAt:    time.Now().UTC(),
	}
	s.mu.Lock()
	s.jobsByID[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "history_export"}); err != nil {
		s.finishJob(job.ID, models.ExportStatusFailed, "", "failed to enqueue export")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}
	return s.snapshot(job.ID), nil
}

// JobStatus returns the current state of one job.
func (s *ExportService) JobStatus(id string) (*models.ExportJob, error) {
	job := s.snapshot(id)
	if job == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	return job, nil
}

// Handle processes one queued export. It is the queue's handler.
func (s *ExportService) Handle(ctx context.Context, qj jobs.Job) error {
	s.mu.Lock()
	job, ok := s.jobsByID[qj.ID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("export job %s unknown", qj.ID)
	}
	job.Status = models.ExportStatusProcessing
	job.Progress = 10
	yearID, format, from, to := job.SchoolYearID, job.Format, job.From, job.To
	s.mu.Unlock()

	dataset, title, err := s.buildHistoryDataset(ctx, yearID, from, to)
	if err != nil {
		return s.fail(qj, err)
	}

	var payload []byte
	switch format {
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		payload, err = s.csv.Render(dataset)
	}
	if err != nil {
		return s.fail(qj, err)
	}

	filename := fmt.Sprintf("lich-su-diem_%s_%s.%s", qj.ID[:8], time.Now().UTC().Format("20060102_150405"), format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return s.fail(qj, err)
	}
	token, _, err := s.signer.Generate(qj.ID, relPath)
	if err != nil {
		return s.fail(qj, err)
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	s.finishJob(qj.ID, models.ExportStatusFinished, fmt.Sprintf("%s/exports/download/%s", prefix, token), "")
	s.metrics.RecordExportJob(string(models.ExportStatusFinished))
	return nil
}

// ResolveDownload validates a token and opens the stored file.
func (s *ExportService) ResolveDownload(token string) (*ExportDownload, error) {
	jobID, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid or expired download token")
	}
	job := s.snapshot(jobID)
	if job == nil || job.Status != models.ExportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export not ready")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export file")
	}
	return &ExportDownload{
		File:      file,
		Filename:  filepath.Base(relPath),
		Format:    job.Format,
		SizeBytes: info.Size(),
		ExpiresAt: expiresAt,
	}, nil
}

// StartCleanup boots a goroutine that purges expired export files.
func (s *ExportService) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
				if err != nil {
					s.logger.Warn("export cleanup failed", zap.Error(err))
					continue
				}
				if len(removed) > 0 {
					s.logger.Info("expired exports removed", zap.Int("count", len(removed)))
				}
			}
		}
	}()
}

func (s *ExportService) fail(qj jobs.Job, err error) error {
	s.finishJob(qj.ID, models.ExportStatusFailed, "", err.Error())
	s.metrics.RecordExportJob(string(models.ExportStatusFailed))
	return err
}

func (s *ExportService) finishJob(id string, status models.ExportStatus, resultURL, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobsByID[id]
	if !ok {
		return
	}
	now := time.Now().UTC()
	job.Status = status
	job.Progress = 100
	job.ResultURL = resultURL
	job.ErrorMessage = errMsg
	job.FinishedAt = &now
}

func (s *ExportService) snapshot(id string) *models.ExportJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobsByID[id]
	if !ok {
		return nil
	}
	copied := *job
	return &copied
}

func (s *ExportService) buildHistoryDataset(ctx context.Context, yearID int64, from, to *time.Time) (export.Dataset, string, error) {
	var entries []models.HistoryEntry
	var err error
	if from != nil || to != nil {
		entries, _, err = s.history.List(ctx, yearID, models.HistoryFilter{From: from, To: to, Page: 1, PageSize: 100000})
	} else {
		entries, err = s.history.ListAll(ctx, yearID)
	}
	if err != nil {
		return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load history")
	}

	rows := make([]map[string]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, map[string]string{
			"Học sinh":  entry.StudentName,
			"Tổ":        entry.TeamName,
			"Điểm":      strconv.Itoa(entry.Points),
			"Lý do":     entry.Reason,
			"Thời gian": entry.RecordedAt.Format("02/01/2006 15:04"),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Học sinh", "Tổ", "Điểm", "Lý do", "Thời gian"},
		Rows:    rows,
	}
	return dataset, "Lịch sử điểm thi đua", nil
}
