package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/materiku/materiku-backend/internal/model"
)

// UserRepository handles user data access, including role membership.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID retrieves a user together with their roles and capabilities.
// This is the per-request actor load: authorization always works from the
// role data as committed at the time of this call.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	user := &model.User{ID: id}
	err := r.pool.QueryRow(ctx,
		"SELECT email, name, password_hash, created_at FROM users WHERE id = $1", id,
	).Scan(&user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, err
	}

	roles, err := r.loadRoles(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Roles = roles
	return user, nil
}

// GetByEmail retrieves a user by email, with roles and capabilities.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{Email: email}
	err := r.pool.QueryRow(ctx,
		"SELECT id, name, password_hash, created_at FROM users WHERE email = $1", email,
	).Scan(&user.ID, &user.Name, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, err
	}

	roles, err := r.loadRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles
	return user, nil
}

// Create inserts a new user and returns its ID.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO users (email, name, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		user.Email, user.Name, user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt)
}

// ListPaginated retrieves users ordered by id, with role names attached.
func (r *UserRepository) ListPaginated(ctx context.Context, limit, offset int) ([]model.User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		"SELECT id, email, name, created_at FROM users ORDER BY id LIMIT $1 OFFSET $2",
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// Small page sizes; one role query per user is acceptable here.
	for i := range users {
		roles, err := r.loadRoles(ctx, users[i].ID)
		if err != nil {
			return nil, 0, err
		}
		users[i].Roles = roles
	}

	return users, total, nil
}

// UpdatePassword replaces a user's password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE users SET password_hash = $1 WHERE id = $2", passwordHash, userID)
	return err
}

// GrantRole assigns a role to a user. Granting an already-held role is a no-op.
func (r *UserRepository) GrantRole(ctx context.Context, userID, roleID int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		userID, roleID)
	return err
}

// RevokeRole removes a role from a user.
func (r *UserRepository) RevokeRole(ctx context.Context, userID, roleID int) error {
	_, err := r.pool.Exec(ctx,
		"DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2", userID, roleID)
	return err
}

// loadRoles fetches a user's roles with their capability sets.
func (r *UserRepository) loadRoles(ctx context.Context, userID int) ([]model.RoleWithCapabilities, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.name, r.created_at
		 FROM roles r
		 JOIN user_roles ur ON r.id = ur.role_id
		 WHERE ur.user_id = $1
		 ORDER BY r.id`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []model.RoleWithCapabilities
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, model.RoleWithCapabilities{Role: &role})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range roles {
		caps, err := getCapabilitiesByRoleID(ctx, r.pool, roles[i].ID)
		if err != nil {
			return nil, err
		}
		roles[i].Capabilities = caps
	}

	return roles, nil
}
