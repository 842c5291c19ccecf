package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhtran-dev/thidua-api/internal/models"
	appErrors "github.com/minhtran-dev/thidua-api/pkg/errors"
)

type fakeAttendanceRepo struct {
	records  []models.AttendanceRecord
	replaced []models.AttendanceRecord
}

func (f *fakeAttendanceRepo) ListByDate(context.Context, int64, time.Time) ([]models.AttendanceRecord, error) {
	return f.records, nil
}

func (f *fakeAttendanceRepo) ReplaceDay(_ context.Context, _ int64, _ time.Time, records []models.AttendanceRecord) error {
	f.replaced = records
	f.records = records
	return nil
}

func attendanceRoster() []models.Team {
	return []models.Team{
		{ID: 1, Name: "Tổ 1", Students: []models.Student{
			{ID: 10, Name: "An"},
			{ID: 11, Name: "Bình"},
			{ID: 12, Name: "Chi"},
		}},
	}
}

func TestAttendanceSheetDefaultsToPresent(t *testing.T) {
	repo := &fakeAttendanceRepo{records: []models.AttendanceRecord{
		{StudentID: 11, Status: models.AttendanceExcused},
	}}
	svc := NewAttendanceService(repo, &fakeRoster{teams: attendanceRoster()}, &fakeYears{id: 1}, nil, nil)

	sheet, err := svc.Sheet(context.Background(), "2026-03-09")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-09", sheet.DateKey)
	assert.Equal(t, models.AttendancePresent, sheet.Statuses[10])
	assert.Equal(t, models.AttendanceExcused, sheet.Statuses[11])
	assert.Equal(t, models.AttendancePresent, sheet.Statuses[12])
	assert.Equal(t, models.AttendanceSummary{Total: 3, Present: 2, Excused: 1}, sheet.Summary)
}

func TestAttendanceSaveReplacesDateWholesale(t *testing.T) {
	repo := &fakeAttendanceRepo{records: []models.AttendanceRecord{
		{StudentID: 10, Status: models.AttendanceUnexcused},
	}}
	svc := NewAttendanceService(repo, &fakeRoster{teams: attendanceRoster()}, &fakeYears{id: 1}, nil, nil)

	sheet, err := svc.Save(context.Background(), "2026-03-09", SaveAttendanceRequest{
		Statuses: map[int64]string{11: "excused"},
	})
	require.NoError(t, err)
	// Student 10's old unexcused mark is gone; only the saved sheet remains.
	require.Len(t, repo.replaced, 1)
	assert.Equal(t, int64(11), repo.replaced[0].StudentID)
	assert.Equal(t, models.AttendancePresent, sheet.Statuses[10])
	assert.Equal(t, models.AttendanceExcused, sheet.Statuses[11])
}

func TestAttendanceSaveRejectsUnknownStudent(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	svc := NewAttendanceService(repo, &fakeRoster{teams: attendanceRoster()}, &fakeYears{id: 1}, nil, nil)

	_, err := svc.Save(context.Background(), "2026-03-09", SaveAttendanceRequest{
		Statuses: map[int64]string{99: "excused"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.replaced)
}

func TestAttendanceSaveRejectsUnknownStatus(t *testing.T) {
	svc := NewAttendanceService(&fakeAttendanceRepo{}, &fakeRoster{teams: attendanceRoster()}, &fakeYears{id: 1}, nil, nil)

	_, err := svc.Save(context.Background(), "2026-03-09", SaveAttendanceRequest{
		Statuses: map[int64]string{10: "late"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttendanceRejectsMalformedDate(t *testing.T) {
	svc := NewAttendanceService(&fakeAttendanceRepo{}, &fakeRoster{}, &fakeYears{id: 1}, nil, nil)

	_, err := svc.Sheet(context.Background(), "09/03/2026")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
