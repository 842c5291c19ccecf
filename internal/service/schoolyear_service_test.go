package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhtran-dev/thidua-api/internal/models"
	appErrors "github.com/minhtran-dev/thidua-api/pkg/errors"
)

type fakeSchoolYearRepo struct {
	years    []models.SchoolYear
	activeID int64
	count    int
	deleted  []int64
	setTo    int64
}

func (f *fakeSchoolYearRepo) List(context.Context) ([]models.SchoolYear, error) {
	return f.years, nil
}

func (f *fakeSchoolYearRepo) FindByID(_ context.Context, id int64) (*models.SchoolYear, error) {
	for _, y := range f.years {
		if y.ID == id {
			year := y
			return &year, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSchoolYearRepo) Create(_ context.Context, year *models.SchoolYear) error {
	year.ID = int64(len(f.years) + 1)
	f.years = append(f.years, *year)
	return nil
}

func (f *fakeSchoolYearRepo) Update(context.Context, *models.SchoolYear) error { return nil }

func (f *fakeSchoolYearRepo) Delete(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeSchoolYearRepo) Count(context.Context) (int, error) { return f.count, nil }

func (f *fakeSchoolYearRepo) ActiveYearID(context.Context) (int64, error) { return f.activeID, nil }

func (f *fakeSchoolYearRepo) SetActiveYearID(_ context.Context, id int64) error {
	f.setTo = id
	return nil
}

func twoYears() []models.SchoolYear {
	return []models.SchoolYear{
		{ID: 1, Name: "2024-2025", StartDate: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)},
		{ID: 2, Name: "2025-2026", StartDate: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)},
	}
}

func TestSchoolYearServiceDeleteLastYearRefused(t *testing.T) {
	repo := &fakeSchoolYearRepo{years: twoYears()[:1], activeID: 1, count: 1}
	svc := NewSchoolYearService(repo, nil, nil, nil)

	err := svc.Delete(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvariant.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}

func TestSchoolYearServiceDeleteActiveYearRefused(t *testing.T) {
	repo := &fakeSchoolYearRepo{years: twoYears(), activeID: 2, count: 2}
	svc := NewSchoolYearService(repo, nil, nil, nil)

	err := svc.Delete(context.Background(), 2)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvariant.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}

func TestSchoolYearServiceDeleteInactiveYear(t *testing.T) {
	repo := &fakeSchoolYearRepo{years: twoYears(), activeID: 2, count: 2}
	svc := NewSchoolYearService(repo, nil, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), 1))
	assert.Equal(t, []int64{1}, repo.deleted)
}

func TestSchoolYearServiceActivate(t *testing.T) {
	repo := &fakeSchoolYearRepo{years: twoYears(), activeID: 1}
	cache := &fakeCache{}
	svc := NewSchoolYearService(repo, cache, nil, nil)

	year, err := svc.Activate(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "2025-2026", year.Name)
	assert.Equal(t, int64(2), repo.setTo)
	assert.Contains(t, cache.invalidated, "dashboard:*")
}

func TestSchoolYearServiceActivateUnknownYear(t *testing.T) {
	repo := &fakeSchoolYearRepo{years: twoYears(), activeID: 1}
	svc := NewSchoolYearService(repo, nil, nil, nil)

	_, err := svc.Activate(context.Background(), 9)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.setTo)
}

func TestSchoolYearServiceCreateRejectsInvertedDates(t *testing.T) {
	svc := NewSchoolYearService(&fakeSchoolYearRepo{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), SchoolYearRequest{
		Name:      "2026-2027",
		StartDate: time.Date(2027, 5, 31, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSchoolYearServiceListIncludesActiveSelection(t *testing.T) {
	repo := &fakeSchoolYearRepo{years: twoYears(), activeID: 2}
	svc := NewSchoolYearService(repo, nil, nil, nil)

	registry, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, registry.SchoolYears, 2)
	assert.Equal(t, int64(2), registry.ActiveYearID)
}
