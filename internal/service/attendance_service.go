package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/minhtran-dev/thidua-api/internal/models"
	appErrors "github.com/minhtran-dev/thidua-api/pkg/errors"
)

type attendanceRepository interface {
	ListByDate(ctx context.Context, schoolYearID int64, dateKey time.Time) ([]models.AttendanceRecord, error)
	ReplaceDay(ctx context.Context, schoolYearID int64, dateKey time.Time, records []models.AttendanceRecord) error
}

// AttendanceService answers per-date roll-call reads and saves. Students
// without a stored status read as present; only the sheet handed to Save is
// what the date stores afterwards.
type AttendanceService struct {
	repo      attendanceRepository
	roster    rosterReader
	years     activeYearSource
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the service.
func NewAttendanceService(repo attendanceRepository, roster rosterReader, years activeYearSource, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, roster: roster, years: years, validator: validate, logger: logger}
}

const dateKeyLayout = "2006-01-02"

// SaveAttendanceRequest replaces one date wholesale.
type SaveAttendanceRequest struct {
	Statuses map[int64]string `json:"statuses" validate:"required"`
}

// Sheet returns the roll-call view of one date: every enrolled student with a
// status plus the tally.
func (s *AttendanceService) Sheet(ctx context.Context, dateKey string) (*models.AttendanceSheet, error) {
	date, err := parseDateKey(dateKey)
	if err != nil {
		return nil, err
	}
	yearID, err := s.years.ActiveYearID(ctx)
	if err != nil {
		return nil, err
	}
	teams, err := s.roster.ListWithStudents(ctx, yearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list teams")
	}
	records, err := s.repo.ListByDate(ctx, yearID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load attendance")
	}

	stored := make(map[int64]models.AttendanceStatus, len(records))
	for _, rec := range records {
		stored[rec.StudentID] = rec.Status
	}

	sheet := &models.AttendanceSheet{
		DateKey:  date.Format(dateKeyLayout),
		Statuses: make(map[int64]models.AttendanceStatus),
	}
	for _, team := range teams {
		for _, student := range team.Students {
			status, ok := stored[student.ID]
			if !ok {
				status = models.AttendancePresent
			}
			sheet.Statuses[student.ID] = status
			sheet.Summary.Total++
			switch status {
			case models.AttendanceExcused:
				sheet.Summary.Excused++
			case models.AttendanceUnexcused:
				sheet.Summary.Unexcused++
			default:
				sheet.Summary.Present++
			}
		}
	}
	return sheet, nil
}

// Save replaces the stored state of one date with the given sheet. Students
// missing from the payload fall back to present on the next read. Unknown
// student ids are rejected before anything is written.
func (s *AttendanceService) Save(ctx context.Context, dateKey string, req SaveAttendanceRequest) (*models.AttendanceSheet, error) {
	date, err := parseDateKey(dateKey)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	yearID, err := s.years.ActiveYearID(ctx)
	if err != nil {
		return nil, err
	}
	teams, err := s.roster.ListWithStudents(ctx, yearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list teams")
	}
	enrolled := make(map[int64]struct{})
	for _, team := range teams {
		for _, student := range team.Students {
			enrolled[student.ID] = struct{}{}
		}
	}

	records := make([]models.AttendanceRecord, 0, len(req.Statuses))
	for studentID, raw := range req.Statuses {
		status := models.AttendanceStatus(raw)
		if !status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported attendance status")
		}
		if _, ok := enrolled[studentID]; !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		records = append(records, models.AttendanceRecord{
			SchoolYearID: yearID,
			DateKey:      date,
			StudentID:    studentID,
			Status:       status,
		})
	}

	if err := s.repo.ReplaceDay(ctx, yearID, date, records); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to save attendance")
	}
	return s.Sheet(ctx, dateKey)
}

func parseDateKey(raw string) (time.Time, error) {
	date, err := time.Parse(dateKeyLayout, raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date must be formatted YYYY-MM-DD")
	}
	return date, nil
}
