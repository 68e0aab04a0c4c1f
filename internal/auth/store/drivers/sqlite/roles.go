package sqlite

import (
	"context"
	"time"

	"github.com/sellersoft/shopauth/internal/auth/domain"
	"github.com/sellersoft/shopauth/pkg/idx"
)

type rolesRepo struct {
	db dbtx
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	var role domain.Role
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM roles WHERE name = ?`,
		name,
	).Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}

	perms, err := loadRolePermissions(ctx, r.db, role.ID)
	if err != nil {
		return domain.Role{}, err
	}
	role.Permissions = perms

	return role, nil
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO roles (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		role.ID, role.Name, now, now,
	)
	if err != nil {
		return mapConstraint(err)
	}

	for _, p := range role.Permissions {
		if err := r.linkPermission(ctx, role.ID, p); err != nil {
			return err
		}
	}

	return nil
}

// linkPermission ensures the permission row exists and links it to the role.
// Permissions are shared across roles, keyed by unique name.
func (r *rolesRepo) linkPermission(ctx context.Context, roleID string, p domain.Permission) error {
	id := p.ID
	if id == "" {
		id = idx.New().String()
	}

	if _, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO permissions (id, name, created_at) VALUES (?, ?, ?)`,
		id, p.Name, time.Now().UTC(),
	); err != nil {
		return err
	}

	// The insert may have been ignored; resolve the canonical id by name.
	if err := r.db.QueryRowContext(ctx,
		`SELECT id FROM permissions WHERE name = ?`, p.Name,
	).Scan(&id); err != nil {
		return mapNotFound(err)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO role_permissions (role_id, permission_id) VALUES (?, ?)`,
		roleID, id,
	)
	return err
}

func (r *rolesRepo) ListAll(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM roles ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range roles {
		perms, err := loadRolePermissions(ctx, r.db, roles[i].ID)
		if err != nil {
			return nil, err
		}
		roles[i].Permissions = perms
	}

	return roles, nil
}
