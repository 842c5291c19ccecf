package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhtran-dev/thidua-api/internal/models"
)

func newTeamMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTeamRepositoryListWithStudents(t *testing.T) {
	db, mock, cleanup := newTeamMock(t)
	defer cleanup()
	repo := NewTeamRepository(db)

	now := time.Now()
	teamRows := sqlmock.NewRows([]string{"id", "school_year_id", "name", "color", "position", "created_at"}).
		AddRow(1, 1, "Tổ 1", "bg-red-500", 1, now).
		AddRow(2, 1, "Tổ 2", "bg-blue-500", 2, now)
	mock.ExpectQuery("SELECT id, school_year_id, name, color, position, created_at\nFROM teams").
		WithArgs(int64(1)).
		WillReturnRows(teamRows)

	studentRows := sqlmock.NewRows([]string{"id", "team_id", "school_year_id", "name", "score", "avatar", "position", "created_at"}).
		AddRow(10, 1, 1, "An", 12, "", 1, now).
		AddRow(11, 1, 1, "Bình", 7, "", 2, now)
	mock.ExpectQuery("SELECT id, team_id, school_year_id, name, score, avatar, position, created_at\nFROM students").
		WithArgs(int64(1)).
		WillReturnRows(studentRows)

	teams, err := repo.ListWithStudents(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Len(t, teams[0].Students, 2)
	assert.Equal(t, "An", teams[0].Students[0].Name)
	assert.NotNil(t, teams[1].Students)
	assert.Empty(t, teams[1].Students)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamRepositoryCreateStudentAppendsPosition(t *testing.T) {
	db, mock, cleanup := newTeamMock(t)
	defer cleanup()
	repo := NewTeamRepository(db)

	mock.ExpectQuery("INSERT INTO students").
		WithArgs(int64(1), int64(1), "Chi", 0, "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "position", "created_at"}).AddRow(12, 3, time.Now()))

	student := &models.Student{TeamID: 1, SchoolYearID: 1, Name: "Chi"}
	require.NoError(t, repo.CreateStudent(context.Background(), student))
	assert.Equal(t, int64(12), student.ID)
	assert.Equal(t, 3, student.Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamRepositoryUpdateStudentMissing(t *testing.T) {
	db, mock, cleanup := newTeamMock(t)
	defer cleanup()
	repo := NewTeamRepository(db)

	mock.ExpectExec("UPDATE students SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStudent(context.Background(), &models.Student{ID: 99, SchoolYearID: 1, TeamID: 1, Name: "Dũng"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamRepositoryDeleteTeam(t *testing.T) {
	db, mock, cleanup := newTeamMock(t)
	defer cleanup()
	repo := NewTeamRepository(db)

	mock.ExpectExec("DELETE FROM teams").
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteTeam(context.Background(), 1, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}
