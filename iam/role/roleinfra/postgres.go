package roleinfra

import (
	"context"
	"database/sql"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/nexaedu/campus/iam/role"
	"github.com/nexaedu/campus/pkg/kernel"
)

// ============================================================================
// RoleRepository - PostgreSQL
// ============================================================================

// PostgresRoleRepository implementação de PostgreSQL para RoleRepository
type PostgresRoleRepository struct {
	db *sqlx.DB
}

// NewPostgresRoleRepository cria uma nova instância do repositório de papéis
func NewPostgresRoleRepository(db *sqlx.DB) role.RoleRepository {
	return &PostgresRoleRepository{
		db: db,
	}
}

// FindByID busca um papel por ID
func (r *PostgresRoleRepository) FindByID(ctx context.Context, id kernel.RoleID) (*role.Role, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM roles WHERE id = $1`

	var ro role.Role
	err := r.db.GetContext(ctx, &ro, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, role.ErrRoleNotFound().WithDetail("role_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find role by id", errx.TypeInternal).
			WithDetail("role_id", id.String())
	}

	return &ro, nil
}

// FindByName busca um papel pelo nome
func (r *PostgresRoleRepository) FindByName(ctx context.Context, name string) (*role.Role, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM roles WHERE name = $1`

	var ro role.Role
	err := r.db.GetContext(ctx, &ro, query, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, role.ErrRoleNotFound().WithDetail("name", name)
		}
		return nil, errx.Wrap(err, "failed to find role by name", errx.TypeInternal).
			WithDetail("name", name)
	}

	return &ro, nil
}

// FindAll lista todos os papéis
func (r *PostgresRoleRepository) FindAll(ctx context.Context) ([]*role.Role, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM roles ORDER BY name ASC`

	var roles []*role.Role
	if err := r.db.SelectContext(ctx, &roles, query); err != nil {
		return nil, errx.Wrap(err, "failed to list roles", errx.TypeInternal)
	}
	return roles, nil
}

// Save grava ou atualiza um papel
func (r *PostgresRoleRepository) Save(ctx context.Context, ro role.Role) error {
	query := `
		INSERT INTO roles (id, name, description, created_at, updated_at)
		VALUES (:id, :name, :description, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			updated_at = EXCLUDED.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, ro); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return role.ErrRoleAlreadyExists().WithDetail("name", ro.Name)
		}
		return errx.Wrap(err, "failed to save role", errx.TypeInternal).
			WithDetail("role_id", ro.ID.String())
	}
	return nil
}

// Delete remove um papel
func (r *PostgresRoleRepository) Delete(ctx context.Context, id kernel.RoleID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM roles WHERE id = $1", id.String())
	if err != nil {
		return errx.Wrap(err, "failed to delete role", errx.TypeInternal).
			WithDetail("role_id", id.String())
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return role.ErrRoleNotFound().WithDetail("role_id", id.String())
	}
	return nil
}

// ============================================================================
// UserRoleRepository - PostgreSQL
// ============================================================================

// PostgresUserRoleRepository implementação de PostgreSQL para a relação
// usuário-papel
type PostgresUserRoleRepository struct {
	db *sqlx.DB
}

// NewPostgresUserRoleRepository cria uma nova instância do repositório usuário-papel
func NewPostgresUserRoleRepository(db *sqlx.DB) role.UserRoleRepository {
	return &PostgresUserRoleRepository{
		db: db,
	}
}

// FindRoleNamesByUser lista os nomes dos papéis do usuário. É a consulta
// quente do oráculo de papéis: só os nomes, sem hidratar a entidade.
func (r *PostgresUserRoleRepository) FindRoleNamesByUser(ctx context.Context, userID kernel.UserID) ([]string, error) {
	query := `
		SELECT r.name
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.name ASC`

	var names []string
	if err := r.db.SelectContext(ctx, &names, query, userID.String()); err != nil {
		return nil, errx.Wrap(err, "failed to list user role names", errx.TypeInternal).
			WithDetail("user_id", userID.String())
	}
	return names, nil
}

// AssignRoleToUser atribui um papel ao usuário
func (r *PostgresUserRoleRepository) AssignRoleToUser(ctx context.Context, userID kernel.UserID, roleID kernel.RoleID) error {
	query := `
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, userID.String(), roleID.String()); err != nil {
		return errx.Wrap(err, "failed to assign role to user", errx.TypeInternal).
			WithDetail("user_id", userID.String()).
			WithDetail("role_id", roleID.String())
	}
	return nil
}

// RemoveRoleFromUser remove um papel do usuário
func (r *PostgresUserRoleRepository) RemoveRoleFromUser(ctx context.Context, userID kernel.UserID, roleID kernel.RoleID) error {
	query := "DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2"

	if _, err := r.db.ExecContext(ctx, query, userID.String(), roleID.String()); err != nil {
		return errx.Wrap(err, "failed to remove role from user", errx.TypeInternal).
			WithDetail("user_id", userID.String()).
			WithDetail("role_id", roleID.String())
	}
	return nil
}

// RemoveAllUserRoles remove todos os papéis do usuário
func (r *PostgresUserRoleRepository) RemoveAllUserRoles(ctx context.Context, userID kernel.UserID) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM user_roles WHERE user_id = $1", userID.String()); err != nil {
		return errx.Wrap(err, "failed to remove user roles", errx.TypeInternal).
			WithDetail("user_id", userID.String())
	}
	return nil
}
