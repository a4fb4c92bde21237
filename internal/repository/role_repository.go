package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/materiku/materiku-backend/internal/model"
)

// RoleRepository handles role and capability data access.
type RoleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository creates a new RoleRepository.
func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

// getCapabilitiesByRoleID retrieves all capability codes for a given role.
// Shared with UserRepository for actor loading.
func getCapabilitiesByRoleID(ctx context.Context, pool *pgxpool.Pool, roleID int) ([]model.Capability, error) {
	rows, err := pool.Query(ctx,
		`SELECT c.code
		 FROM capabilities c
		 JOIN role_capabilities rc ON c.id = rc.capability_id
		 WHERE rc.role_id = $1
		 ORDER BY c.code`, roleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var caps []model.Capability
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		caps = append(caps, model.Capability(code))
	}
	return caps, rows.Err()
}

// GetCapabilitiesByRoleID retrieves all capability codes for a given role.
func (r *RoleRepository) GetCapabilitiesByRoleID(ctx context.Context, roleID int) ([]model.Capability, error) {
	return getCapabilitiesByRoleID(ctx, r.pool, roleID)
}

// GetRoleByID retrieves a role and its capabilities by ID.
func (r *RoleRepository) GetRoleByID(ctx context.Context, id int) (*model.RoleWithCapabilities, error) {
	role := &model.Role{ID: id}
	err := r.pool.QueryRow(ctx, "SELECT name, created_at FROM roles WHERE id = $1", id).Scan(&role.Name, &role.CreatedAt)
	if err != nil {
		return nil, err
	}

	caps, err := r.GetCapabilitiesByRoleID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &model.RoleWithCapabilities{
		Role:         role,
		Capabilities: caps,
	}, nil
}

// GetRoleByName retrieves a role by its unique name. Returns (nil, nil) when
// no such role exists, so the seed step can probe without error plumbing.
func (r *RoleRepository) GetRoleByName(ctx context.Context, name string) (*model.RoleWithCapabilities, error) {
	role := &model.Role{Name: name}
	err := r.pool.QueryRow(ctx, "SELECT id, created_at FROM roles WHERE name = $1", name).Scan(&role.ID, &role.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	caps, err := r.GetCapabilitiesByRoleID(ctx, role.ID)
	if err != nil {
		return nil, err
	}

	return &model.RoleWithCapabilities{
		Role:         role,
		Capabilities: caps,
	}, nil
}

// ListRolesWithCapabilities retrieves all roles with their capability sets.
func (r *RoleRepository) ListRolesWithCapabilities(ctx context.Context) ([]model.RoleWithCapabilities, error) {
	rows, err := r.pool.Query(ctx, "SELECT id, name, created_at FROM roles ORDER BY id")
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

	// The number of roles stays small; per-role capability queries are fine.
	for i := range roles {
		caps, err := r.GetCapabilitiesByRoleID(ctx, roles[i].ID)
		if err != nil {
			return nil, err
		}
		roles[i].Capabilities = caps
	}

	return roles, nil
}

// CreateRole inserts a new role and returns its ID.
func (r *RoleRepository) CreateRole(ctx context.Context, name string) (int, error) {
	var id int
	err := r.pool.QueryRow(ctx, "INSERT INTO roles (name) VALUES ($1) RETURNING id", name).Scan(&id)
	return id, err
}

// UpdateRole updates an existing role's name.
func (r *RoleRepository) UpdateRole(ctx context.Context, id int, name string) error {
	_, err := r.pool.Exec(ctx, "UPDATE roles SET name = $1 WHERE id = $2", name, id)
	return err
}

// DeleteRole removes a role from the database.
func (r *RoleRepository) DeleteRole(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM roles WHERE id = $1", id)
	return err
}

// DeleteAllCapabilitiesFromRole removes every capability from a role.
func (r *RoleRepository) DeleteAllCapabilitiesFromRole(ctx context.Context, roleID int) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM role_capabilities WHERE role_id = $1", roleID)
	return err
}

// AssignCapabilitiesToRole assigns a list of capability codes to a role.
// Codes are resolved against the capabilities table; codes not present there
// are ignored here; the service layer rejects unknown codes before calling.
func (r *RoleRepository) AssignCapabilitiesToRole(ctx context.Context, roleID int, caps []model.Capability) error {
	if len(caps) == 0 {
		return nil
	}

	codes := make([]string, len(caps))
	for i, c := range caps {
		codes[i] = string(c)
	}

	rows, err := r.pool.Query(ctx, "SELECT id FROM capabilities WHERE code = ANY($1)", codes)
	if err != nil {
		return err
	}
	defer rows.Close()

	var capabilityIDs []int
	for rows.Next() {
		var cid int
		if err := rows.Scan(&cid); err != nil {
			return err
		}
		capabilityIDs = append(capabilityIDs, cid)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if len(capabilityIDs) == 0 {
		return nil
	}

	_, err = r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"role_capabilities"},
		[]string{"role_id", "capability_id"},
		pgx.CopyFromSlice(len(capabilityIDs), func(i int) ([]interface{}, error) {
			return []interface{}{roleID, capabilityIDs[i]}, nil
		}),
	)

	return err
}

// SyncCapabilityCatalog inserts any catalog codes missing from the
// capabilities table. Idempotent; run at seed time and after deploys that
// introduce new codes.
func (r *RoleRepository) SyncCapabilityCatalog(ctx context.Context) error {
	for _, c := range model.AllCapabilities {
		_, err := r.pool.Exec(ctx,
			"INSERT INTO capabilities (code) VALUES ($1) ON CONFLICT (code) DO NOTHING",
			string(c))
		if err != nil {
			return err
		}
	}
	return nil
}
