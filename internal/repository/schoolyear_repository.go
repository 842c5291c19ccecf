package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/minhtran-dev/thidua-api/internal/models"
)

// SchoolYearRepository manages the year registry and the active selection.
type SchoolYearRepository struct {
	db *sqlx.DB
}

// NewSchoolYearRepository constructs a new repository.
func NewSchoolYearRepository(db *sqlx.DB) *SchoolYearRepository {
	return &SchoolYearRepository{db: db}
}

// List returns every school year, oldest first.
func (r *SchoolYearRepository) List(ctx context.Context) ([]models.SchoolYear, error) {
	var years []models.SchoolYear
	query := `SELECT id, name, start_date, end_date, created_at FROM school_years ORDER BY start_date, id`
	if err := r.db.SelectContext(ctx, &years, query); err != nil {
		return nil, fmt.Errorf("list school years: %w", err)
	}
	return years, nil
}

// FindByID returns one school year or sql.ErrNoRows.
func (r *SchoolYearRepository) FindByID(ctx context.Context, id int64) (*models.SchoolYear, error) {
	var year models.SchoolYear
	query := `SELECT id, name, start_date, end_date, created_at FROM school_years WHERE id = $1`
	if err := r.db.GetContext(ctx, &year, query, id); err != nil {
		return nil, fmt.Errorf("find school year %d: %w", id, err)
	}
	return &year, nil
}

// Create inserts a school year and fills in its generated id.
func (r *SchoolYearRepository) Create(ctx context.Context, year *models.SchoolYear) error {
	query := `INSERT INTO school_years (name, start_date, end_date)
VALUES ($1, $2, $3) RETURNING id, created_at`
	if err := r.db.QueryRowxContext(ctx, query, year.Name, year.StartDate, year.EndDate).
		Scan(&year.ID, &year.CreatedAt); err != nil {
		return fmt.Errorf("create school year: %w", err)
	}
	return nil
}

// Update modifies name and dates of an existing year.
func (r *SchoolYearRepository) Update(ctx context.Context, year *models.SchoolYear) error {
	query := `UPDATE school_years SET name = $1, start_date = $2, end_date = $3 WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, year.Name, year.StartDate, year.EndDate, year.ID)
	if err != nil {
		return fmt.Errorf("update school year %d: %w", year.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a year. The year's entire partition (teams, students,
// history, behaviors, attendance, avatars) goes with it via ON DELETE CASCADE.
func (r *SchoolYearRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM school_years WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete school year %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Count returns the number of registered years.
func (r *SchoolYearRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM school_years`); err != nil {
		return 0, fmt.Errorf("count school years: %w", err)
	}
	return count, nil
}

// ActiveYearID reads the active selection from the single-row app_meta table.
func (r *SchoolYearRepository) ActiveYearID(ctx context.Context) (int64, error) {
	var id int64
	if err := r.db.GetContext(ctx, &id, `SELECT active_school_year_id FROM app_meta WHERE singleton = TRUE`); err != nil {
		return 0, fmt.Errorf("read active school year: %w", err)
	}
	return id, nil
}

// SetActiveYearID swaps the active partition in one statement.
func (r *SchoolYearRepository) SetActiveYearID(ctx context.Context, id int64) error {
	query := `INSERT INTO app_meta (singleton, active_school_year_id) VALUES (TRUE, $1)
ON CONFLICT (singleton) DO UPDATE SET active_school_year_id = EXCLUDED.active_school_year_id`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("set active school year %d: %w", id, err)
	}
	return nil
}
