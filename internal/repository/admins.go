package repository

import (
	"context"
	"database/sql"

	"aegis/internal/database"
	"aegis/internal/models"
)

type AdminRepository struct {
	db *database.DB
}

func NewAdminRepository(db *database.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	admin := &models.Admin{}
	query := `
		SELECT id, username, password_hash, display_name, role, created_at
		FROM admins
		WHERE username = $1`

	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&admin.ID,
		&admin.Username,
		&admin.PasswordHash,
		&admin.DisplayName,
		&admin.Role,
		&admin.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return admin, err
}

func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	query := `
		INSERT INTO admins (username, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) DO NOTHING
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		admin.Username,
		admin.PasswordHash,
		admin.DisplayName,
		admin.Role,
	).Scan(&admin.ID, &admin.CreatedAt)

	if err == sql.ErrNoRows {
		// Username already seeded
		return nil
	}

	return err
}
