package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/minhtran-dev/thidua-api/internal/models"
)

// BehaviorRepository manages the reusable behavior catalog.
type BehaviorRepository struct {
	db *sqlx.DB
}

// NewBehaviorRepository constructs a new repository.
func NewBehaviorRepository(db *sqlx.DB) *BehaviorRepository {
	return &BehaviorRepository{db: db}
}

// List returns every behavior of a school year, grouped by category with the
// positive catalog first.
func (r *BehaviorRepository) List(ctx context.Context, schoolYearID int64) ([]models.Behavior, error) {
	var behaviors []models.Behavior
	query := `SELECT id, school_year_id, category, description, points, created_at
FROM behaviors WHERE school_year_id = $1
ORDER BY CASE category WHEN 'positive' THEN 0 ELSE 1 END, id`
	if err := r.db.SelectContext(ctx, &behaviors, query, schoolYearID); err != nil {
		return nil, fmt.Errorf("list behaviors: %w", err)
	}
	return behaviors, nil
}

// FindByID returns one behavior scoped to a school year, or sql.ErrNoRows.
func (r *BehaviorRepository) FindByID(ctx context.Context, schoolYearID, id int64) (*models.Behavior, error) {
	var behavior models.Behavior
	query := `SELECT id, school_year_id, category, description, points, created_at
FROM behaviors WHERE school_year_id = $1 AND id = $2`
	if err := r.db.GetContext(ctx, &behavior, query, schoolYearID, id); err != nil {
		return nil, fmt.Errorf("find behavior %d: %w", id, err)
	}
	return &behavior, nil
}

// Create inserts a behavior and fills in its generated id.
func (r *BehaviorRepository) Create(ctx context.Context, behavior *models.Behavior) error {
	query := `INSERT INTO behaviors (school_year_id, category, description, points)
VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	if err := r.db.QueryRowxContext(ctx, query,
		behavior.SchoolYearID, behavior.Category, behavior.Description, behavior.Points).
		Scan(&behavior.ID, &behavior.CreatedAt); err != nil {
		return fmt.Errorf("create behavior: %w", err)
	}
	return nil
}

// Update modifies an existing behavior.
func (r *BehaviorRepository) Update(ctx context.Context, behavior *models.Behavior) error {
	query := `UPDATE behaviors SET category = $1, description = $2, points = $3
WHERE school_year_id = $4 AND id = $5`
	res, err := r.db.ExecContext(ctx, query,
		behavior.Category, behavior.Description, behavior.Points, behavior.SchoolYearID, behavior.ID)
	if err != nil {
		return fmt.Errorf("update behavior %d: %w", behavior.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a behavior from the catalog. History entries that referenced
// its description are unaffected.
func (r *BehaviorRepository) Delete(ctx context.Context, schoolYearID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM behaviors WHERE school_year_id = $1 AND id = $2`, schoolYearID, id)
	if err != nil {
		return fmt.Errorf("delete behavior %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
