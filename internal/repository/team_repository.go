package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/minhtran-dev/thidua-api/internal/models"
)

// TeamRepository manages teams and their student rosters.
type TeamRepository struct {
	db *sqlx.DB
}

// NewTeamRepository constructs a new repository.
func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// ListWithStudents returns every team of a school year with its roster
// attached, both ordered by position. Teams without students get an empty
// (non-nil) slice.
func (r *TeamRepository) ListWithStudents(ctx context.Context, schoolYearID int64) ([]models.Team, error) {
	var teams []models.Team
	teamQuery := `SELECT id, school_year_id, name, color, position, created_at
FROM teams WHERE school_year_id = $1 ORDER BY position, id`
	if err := r.db.SelectContext(ctx, &teams, teamQuery, schoolYearID); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	var students []models.Student
	studentQuery := `SELECT id, team_id, school_year_id, name, score, avatar, position, created_at
FROM students WHERE school_year_id = $1 ORDER BY position, id`
	if err := r.db.SelectContext(ctx, &students, studentQuery, schoolYearID); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	byTeam := make(map[int64][]models.Student, len(teams))
	for _, s := range students {
		byTeam[s.TeamID] = append(byTeam[s.TeamID], s)
	}
	for i := range teams {
		roster := byTeam[teams[i].ID]
		if roster == nil {
			roster = []models.Student{}
		}
		teams[i].Students = roster
	}
	return teams, nil
}

// FindTeamByID returns one team without its roster, or sql.ErrNoRows.
func (r *TeamRepository) FindTeamByID(ctx context.Context, schoolYearID, id int64) (*models.Team, error) {
	var team models.Team
	query := `SELECT id, school_year_id, name, color, position, created_at
FROM teams WHERE school_year_id = $1 AND id = $2`
	if err := r.db.GetContext(ctx, &team, query, schoolYearID, id); err != nil {
		return nil, fmt.Errorf("find team %d: %w", id, err)
	}
	return &team, nil
}

// CreateTeam appends a team at the end of the year's team order.
func (r *TeamRepository) CreateTeam(ctx context.Context, team *models.Team) error {
	query := `INSERT INTO teams (school_year_id, name, color, position)
VALUES ($1, $2, $3, (SELECT COALESCE(MAX(position), 0) + 1 FROM teams WHERE school_year_id = $1))
RETURNING id, position, created_at`
	if err := r.db.QueryRowxContext(ctx, query, team.SchoolYearID, team.Name, team.Color).
		Scan(&team.ID, &team.Position, &team.CreatedAt); err != nil {
		return fmt.Errorf("create team: %w", err)
	}
	return nil
}

// UpdateTeam modifies a team's name and color.
func (r *TeamRepository) UpdateTeam(ctx context.Context, team *models.Team) error {
	query := `UPDATE teams SET name = $1, color = $2 WHERE school_year_id = $3 AND id = $4`
	res, err := r.db.ExecContext(ctx, query, team.Name, team.Color, team.SchoolYearID, team.ID)
	if err != nil {
		return fmt.Errorf("update team %d: %w", team.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteTeam removes a team and, via ON DELETE CASCADE, its students.
func (r *TeamRepository) DeleteTeam(ctx context.Context, schoolYearID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE school_year_id = $1 AND id = $2`, schoolYearID, id)
	if err != nil {
		return fmt.Errorf("delete team %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindStudentByID returns one student scoped to a school year, or sql.ErrNoRows.
func (r *TeamRepository) FindStudentByID(ctx context.Context, schoolYearID, id int64) (*models.Student, error) {
	var student models.Student
	query := `SELECT id, team_id, school_year_id, name, score, avatar, position, created_at
FROM students WHERE school_year_id = $1 AND id = $2`
	if err := r.db.GetContext(ctx, &student, query, schoolYearID, id); err != nil {
		return nil, fmt.Errorf("find student %d: %w", id, err)
	}
	return &student, nil
}

// CreateStudent appends a student at the end of the team's roster order.
func (r *TeamRepository) CreateStudent(ctx context.Context, student *models.Student) error {
	query := `INSERT INTO students (team_id, school_year_id, name, score, avatar, position)
VALUES ($1, $2, $3, $4, $5, (SELECT COALESCE(MAX(position), 0) + 1 FROM students WHERE team_id = $1))
RETURNING id, position, created_at`
	if err := r.db.QueryRowxContext(ctx, query,
		student.TeamID, student.SchoolYearID, student.Name, student.Score, student.Avatar).
		Scan(&student.ID, &student.Position, &student.CreatedAt); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// UpdateStudent modifies a student's name, avatar and team membership. Moving
// a student to another team places them at the end of the target roster.
func (r *TeamRepository) UpdateStudent(ctx context.Context, student *models.Student) error {
	query := `UPDATE students SET
	name = $1,
	avatar = $2,
	position = CASE WHEN team_id = $3 THEN position
		ELSE (SELECT COALESCE(MAX(position), 0) + 1 FROM students s2 WHERE s2.team_id = $3) END,
	team_id = $3
WHERE school_year_id = $4 AND id = $5`
	res, err := r.db.ExecContext(ctx, query,
		student.Name, student.Avatar, student.TeamID, student.SchoolYearID, student.ID)
	if err != nil {
		return fmt.Errorf("update student %d: %w", student.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteStudent removes a student. Their history entries stay behind under
// the recorded name snapshot.
func (r *TeamRepository) DeleteStudent(ctx context.Context, schoolYearID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE school_year_id = $1 AND id = $2`, schoolYearID, id)
	if err != nil {
		return fmt.Errorf("delete student %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
