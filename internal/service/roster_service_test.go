package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhtran-dev/thidua-api/internal/models"
	appErrors "github.com/minhtran-dev/thidua-api/pkg/errors"
)

type fakeTeamRepo struct {
	teams    map[int64]*models.Team
	students map[int64]*models.Student
	created  []models.Student
	nextID   int64
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{
		teams:    map[int64]*models.Team{1: {ID: 1, SchoolYearID: 1, Name: "Tổ 1", Color: "#ef4444"}},
		students: map[int64]*models.Student{},
		nextID:   100,
	}
}

func (f *fakeTeamRepo) ListWithStudents(context.Context, int64) ([]models.Team, error) {
	teams := make([]models.Team, 0, len(f.teams))
	for _, team := range f.teams {
		copied := *team
		copied.Students = []models.Student{}
		teams = append(teams, copied)
	}
	return teams, nil
}

func (f *fakeTeamRepo) FindTeamByID(_ context.Context, _ int64, id int64) (*models.Team, error) {
	team, ok := f.teams[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return team, nil
}

func (f *fakeTeamRepo) CreateTeam(_ context.Context, team *models.Team) error {
	f.nextID++
	team.ID = f.nextID
	f.teams[team.ID] = team
	return nil
}

func (f *fakeTeamRepo) UpdateTeam(_ context.Context, team *models.Team) error {
	if _, ok := f.teams[team.ID]; !ok {
		return sql.ErrNoRows
	}
	f.teams[team.ID] = team
	return nil
}

func (f *fakeTeamRepo) DeleteTeam(_ context.Context, _ int64, id int64) error {
	if _, ok := f.teams[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.teams, id)
	return nil
}

func (f *fakeTeamRepo) FindStudentByID(_ context.Context, _ int64, id int64) (*models.Student, error) {
	student, ok := f.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return student, nil
}

func (f *fakeTeamRepo) CreateStudent(_ context.Context, student *models.Student) error {
	f.nextID++
	student.ID = f.nextID
	student.Position = len(f.created) + 1
	f.students[student.ID] = student
	f.created = append(f.created, *student)
	return nil
}

func (f *fakeTeamRepo) UpdateStudent(_ context.Context, student *models.Student) error {
	if _, ok := f.students[student.ID]; !ok {
		return sql.ErrNoRows
	}
	f.students[student.ID] = student
	return nil
}

func (f *fakeTeamRepo) DeleteStudent(_ context.Context, _ int64, id int64) error {
	if _, ok := f.students[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.students, id)
	return nil
}

func TestRosterServiceCreateStudentUnknownTeam(t *testing.T) {
	svc := NewRosterService(newFakeTeamRepo(), &fakeYears{id: 1}, nil, nil, nil)

	_, err := svc.CreateStudent(context.Background(), StudentRequest{Name: "An", TeamID: 99})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRosterServiceCreateStudentsBulk(t *testing.T) {
	repo := newFakeTeamRepo()
	cache := &fakeCache{}
	svc := NewRosterService(repo, &fakeYears{id: 1}, cache, nil, nil)

	students, err := svc.CreateStudents(context.Background(), BulkStudentsRequest{
		TeamID: 1,
		Names:  []string{"An", "Bình", "Chi"},
	})
	require.NoError(t, err)
	require.Len(t, students, 3)
	assert.Equal(t, "An", students[0].Name)
	assert.Equal(t, "Chi", students[2].Name)
	assert.Equal(t, 0, students[0].Score)
	require.Len(t, repo.created, 3)
	assert.Equal(t, 1, repo.created[0].Position)
	assert.Equal(t, 3, repo.created[2].Position)
	assert.Contains(t, cache.invalidated, "dashboard:*")
}

func TestRosterServiceCreateStudentsRequiresNames(t *testing.T) {
	svc := NewRosterService(newFakeTeamRepo(), &fakeYears{id: 1}, nil, nil, nil)

	_, err := svc.CreateStudents(context.Background(), BulkStudentsRequest{TeamID: 1})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRosterServiceDeleteTeamUnknown(t *testing.T) {
	svc := NewRosterService(newFakeTeamRepo(), &fakeYears{id: 1}, nil, nil, nil)

	err := svc.DeleteTeam(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRosterServiceUpdateStudentMovesTeam(t *testing.T) {
	repo := newFakeTeamRepo()
	repo.teams[2] = &models.Team{ID: 2, SchoolYearID: 1, Name: "Tổ 2", Color: "#3b82f6"}
	repo.students[7] = &models.Student{ID: 7, TeamID: 1, SchoolYearID: 1, Name: "An", Score: 12}
	svc := NewRosterService(repo, &fakeYears{id: 1}, nil, nil, nil)

	updated, err := svc.UpdateStudent(context.Background(), 7, StudentRequest{Name: "An", TeamID: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.TeamID)
}
