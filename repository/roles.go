package repository

import (
	"context"
	"time"

	"github.com/odese/athenaeum/data"
)

type roles interface {
	SeedRoles() error
	AddRoleForUser(userID int64, role string) error
}

// SeedRoles inserts the known role records if they don't exist yet. Called
// once at startup so role grants always have rows to reference.
func (r *repository) SeedRoles() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	for _, role := range data.AllRoles {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO roles (name)
			VALUES ($1)
			ON CONFLICT (name) DO NOTHING`,
			role)
		if err != nil {
			return err
		}
	}
	return nil
}

// AddRoleForUser grants a role to a user. Granting a role the user already
// holds is a no-op.
func (r *repository) AddRoleForUser(userID int64, role string) error {
	query := `
		INSERT INTO users_roles (user_id, role_id)
		SELECT $1, roles.id FROM roles WHERE roles.name = $2
		ON CONFLICT DO NOTHING`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, query, userID, role)
	return err
}
