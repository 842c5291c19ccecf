package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhtran-dev/thidua-api/internal/models"
	"github.com/minhtran-dev/thidua-api/internal/repository"
	appErrors "github.com/minhtran-dev/thidua-api/pkg/errors"
)

type fakeYears struct {
	id  int64
	err error
}

func (f *fakeYears) ActiveYearID(context.Context) (int64, error) {
	return f.id, f.err
}

type fakeCache struct {
	invalidated []string
	stored      map[string]interface{}
}

func (f *fakeCache) Invalidate(_ context.Context, pattern string) error {
	f.invalidated = append(f.invalidated, pattern)
	return nil
}

func (f *fakeCache) Get(context.Context, string, interface{}) (bool, error) {
	return false, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if f.stored == nil {
		f.stored = make(map[string]interface{})
	}
	f.stored[key] = value
	return nil
}

type fakeLedgerRepo struct {
	student   *models.Student
	entry     *models.HistoryEntry
	err       error
	batchAdjs []repository.PointAdjustment
	batchAt   time.Time
}

func (f *fakeLedgerRepo) ApplyPoints(_ context.Context, _ int64, adj repository.PointAdjustment, recordedAt time.Time) (*models.Student, *models.HistoryEntry, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.student, f.entry, nil
}

func (f *fakeLedgerRepo) ApplyBatch(_ context.Context, _ int64, adjs []repository.PointAdjustment, recordedAt time.Time) ([]models.Student, []models.HistoryEntry, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	f.batchAdjs = adjs
	f.batchAt = recordedAt
	students := make([]models.Student, len(adjs))
	entries := make([]models.HistoryEntry, len(adjs))
	for i, adj := range adjs {
		students[i] = models.Student{ID: adj.StudentID, Score: adj.Points}
		entries[i] = models.HistoryEntry{StudentID: adj.StudentID, Points: adj.Points, RecordedAt: recordedAt}
	}
	return students, entries, nil
}

func (f *fakeLedgerRepo) ResetYear(context.Context, int64) (int64, int64, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	return 4, 17, nil
}

func TestLedgerServiceApplyPointsRejectsZero(t *testing.T) {
	svc := NewLedgerService(&fakeLedgerRepo{}, &fakeYears{id: 1}, nil, nil, nil)

	_, _, err := svc.ApplyPoints(context.Background(), 7, ApplyPointsRequest{Points: 0, Reason: "x"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestLedgerServiceApplyPointsRequiresReason(t *testing.T) {
	svc := NewLedgerService(&fakeLedgerRepo{}, &fakeYears{id: 1}, nil, nil, nil)

	_, _, err := svc.ApplyPoints(context.Background(), 7, ApplyPointsRequest{Points: 5})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestLedgerServiceApplyPointsMapsMissingStudent(t *testing.T) {
	repo := &fakeLedgerRepo{err: sql.ErrNoRows}
	svc := NewLedgerService(repo, &fakeYears{id: 1}, nil, nil, nil)

	_, _, err := svc.ApplyPoints(context.Background(), 99, ApplyPointsRequest{Points: -3, Reason: "Đi học muộn"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestLedgerServiceApplyPointsInvalidatesCache(t *testing.T) {
	cache := &fakeCache{}
	repo := &fakeLedgerRepo{
		student: &models.Student{ID: 7, Score: 10},
		entry:   &models.HistoryEntry{StudentID: 7, Points: 5},
	}
	svc := NewLedgerService(repo, &fakeYears{id: 1}, cache, nil, nil)

	student, entry, err := svc.ApplyPoints(context.Background(), 7, ApplyPointsRequest{Points: 5, Reason: "Phát biểu"})
	require.NoError(t, err)
	assert.Equal(t, 10, student.Score)
	assert.Equal(t, 5, entry.Points)
	assert.Contains(t, cache.invalidated, "dashboard:*")
}

func TestLedgerServiceBatchRejectsDuplicates(t *testing.T) {
	svc := NewLedgerService(&fakeLedgerRepo{}, &fakeYears{id: 1}, nil, nil, nil)

	_, err := svc.ApplyPointsBatch(context.Background(), BatchPointsRequest{
		StudentIDs: []int64{7, 8, 7},
		Points:     3,
		Reason:     "Trực nhật tốt",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestLedgerServiceBatchEmptyIsNoop(t *testing.T) {
	repo := &fakeLedgerRepo{}
	svc := NewLedgerService(repo, &fakeYears{id: 1}, nil, nil, nil)

	result, err := svc.ApplyPointsBatch(context.Background(), BatchPointsRequest{
		StudentIDs: nil,
		Points:     3,
		Reason:     "Trực nhật tốt",
	})
	require.NoError(t, err)
	assert.Empty(t, result.Students)
	assert.Empty(t, result.Entries)
	assert.Nil(t, repo.batchAdjs)
}

func TestLedgerServiceBatchSharesTimestamp(t *testing.T) {
	repo := &fakeLedgerRepo{}
	svc := NewLedgerService(repo, &fakeYears{id: 1}, nil, nil, nil)
	fixed := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	result, err := svc.ApplyPointsBatch(context.Background(), BatchPointsRequest{
		StudentIDs: []int64{7, 8},
		Points:     3,
		Reason:     "Trực nhật tốt",
	})
	require.NoError(t, err)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, fixed, repo.batchAt)
	assert.Equal(t, result.Entries[0].RecordedAt, result.Entries[1].RecordedAt)
	require.Len(t, repo.batchAdjs, 2)
	assert.Equal(t, int64(7), repo.batchAdjs[0].StudentID)
}

func TestLedgerServiceReset(t *testing.T) {
	cache := &fakeCache{}
	svc := NewLedgerService(&fakeLedgerRepo{}, &fakeYears{id: 1}, cache, nil, nil)

	result, err := svc.Reset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), result.StudentsReset)
	assert.Equal(t, int64(17), result.EntriesCleared)
	assert.Contains(t, cache.invalidated, "dashboard:*")
}
