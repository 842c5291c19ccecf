package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/minhtran-dev/thidua-api/internal/models"
)

// AvatarRepository stores teacher-uploaded avatar payloads.
type AvatarRepository struct {
	db *sqlx.DB
}

// NewAvatarRepository constructs a new repository.
func NewAvatarRepository(db *sqlx.DB) *AvatarRepository {
	return &AvatarRepository{db: db}
}

// List returns every custom avatar of a school year, oldest first.
func (r *AvatarRepository) List(ctx context.Context, schoolYearID int64) ([]models.CustomAvatar, error) {
	var avatars []models.CustomAvatar
	query := `SELECT id, school_year_id, data, created_at
FROM custom_avatars WHERE school_year_id = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &avatars, query, schoolYearID); err != nil {
		return nil, fmt.Errorf("list avatars: %w", err)
	}
	return avatars, nil
}

// Create inserts an avatar and fills in its generated id.
func (r *AvatarRepository) Create(ctx context.Context, avatar *models.CustomAvatar) error {
	query := `INSERT INTO custom_avatars (school_year_id, data) VALUES ($1, $2) RETURNING id, created_at`
	if err := r.db.QueryRowxContext(ctx, query, avatar.SchoolYearID, avatar.Data).
		Scan(&avatar.ID, &avatar.CreatedAt); err != nil {
		return fmt.Errorf("create avatar: %w", err)
	}
	return nil
}

// Delete removes an avatar. Students already pointing at its data keep it.
func (r *AvatarRepository) Delete(ctx context.Context, schoolYearID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM custom_avatars WHERE school_year_id = $1 AND id = $2`, schoolYearID, id)
	if err != nil {
		return fmt.Errorf("delete avatar %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
