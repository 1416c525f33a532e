package tenantinfra

import (
	"context"
	"database/sql"
	"time"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/Abraxas-365/craftable/storex"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/nexaedu/campus/iam/tenant"
	"github.com/nexaedu/campus/pkg/kernel"
)

// ============================================================================
// TenantRepository - PostgreSQL
// ============================================================================

// PostgresTenantRepository implementação de PostgreSQL para TenantRepository
type PostgresTenantRepository struct {
	db *sqlx.DB
}

// NewPostgresTenantRepository cria uma nova instância do repositório de escolas
func NewPostgresTenantRepository(db *sqlx.DB) tenant.TenantRepository {
	return &PostgresTenantRepository{
		db: db,
	}
}

// FindByID busca uma escola por ID
func (r *PostgresTenantRepository) FindByID(ctx context.Context, id kernel.TenantID) (*tenant.Tenant, error) {
	query := `
		SELECT id, name, code, is_active, created_at, updated_at
		FROM tenants WHERE id = $1`

	var t tenant.Tenant
	err := r.db.GetContext(ctx, &t, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, tenant.ErrTenantNotFound().WithDetail("tenant_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find tenant by id", errx.TypeInternal).
			WithDetail("tenant_id", id.String())
	}

	return &t, nil
}

// FindByCode busca uma escola pelo código único
func (r *PostgresTenantRepository) FindByCode(ctx context.Context, code string) (*tenant.Tenant, error) {
	query := `
		SELECT id, name, code, is_active, created_at, updated_at
		FROM tenants WHERE code = $1`

	var t tenant.Tenant
	err := r.db.GetContext(ctx, &t, query, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, tenant.ErrTenantNotFound().WithDetail("code", code)
		}
		return nil, errx.Wrap(err, "failed to find tenant by code", errx.TypeInternal).
			WithDetail("code", code)
	}

	return &t, nil
}

// List lista escolas com paginação
func (r *PostgresTenantRepository) List(ctx context.Context, req tenant.ListTenantsRequest) (storex.Paginated[tenant.Tenant], error) {
	var empty storex.Paginated[tenant.Tenant]

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM tenants"); err != nil {
		return empty, errx.Wrap(err, "failed to count tenants", errx.TypeInternal)
	}

	query := `
		SELECT id, name, code, is_active, created_at, updated_at
		FROM tenants
		ORDER BY name ASC
		LIMIT $1 OFFSET $2`

	var tenants []tenant.Tenant
	if err := r.db.SelectContext(ctx, &tenants, query, req.PageSize, req.GetOffset()); err != nil {
		return empty, errx.Wrap(err, "failed to list tenants", errx.TypeInternal)
	}

	return storex.NewPaginated(tenants, total, req.Page, req.PageSize), nil
}

// Save grava ou atualiza uma escola
func (r *PostgresTenantRepository) Save(ctx context.Context, t tenant.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, code, is_active, created_at, updated_at)
		VALUES (:id, :name, :code, :is_active, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			code = EXCLUDED.code,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, t); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return tenant.ErrTenantAlreadyExists().WithDetail("code", t.Code)
		}
		return errx.Wrap(err, "failed to save tenant", errx.TypeInternal).
			WithDetail("tenant_id", t.ID.String())
	}
	return nil
}

// Delete remove uma escola
func (r *PostgresTenantRepository) Delete(ctx context.Context, id kernel.TenantID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM tenants WHERE id = $1", id.String())
	if err != nil {
		return errx.Wrap(err, "failed to delete tenant", errx.TypeInternal).
			WithDetail("tenant_id", id.String())
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return tenant.ErrTenantNotFound().WithDetail("tenant_id", id.String())
	}
	return nil
}

// ExistsByCode verifica se já existe escola com o código dado
func (r *PostgresTenantRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM tenants WHERE code = $1)"

	if err := r.db.GetContext(ctx, &exists, query, code); err != nil {
		return false, errx.Wrap(err, "failed to check tenant code", errx.TypeInternal).
			WithDetail("code", code)
	}
	return exists, nil
}

// ============================================================================
// MembershipRepository - PostgreSQL
// ============================================================================

// PostgresMembershipRepository implementação de PostgreSQL para o vínculo
// usuário/escola
type PostgresMembershipRepository struct {
	db *sqlx.DB
}

// NewPostgresMembershipRepository cria uma nova instância do repositório de vínculos
func NewPostgresMembershipRepository(db *sqlx.DB) tenant.MembershipRepository {
	return &PostgresMembershipRepository{
		db: db,
	}
}

// IsMember verifica se o usuário está vinculado à escola. Só conta escolas
// ativas: um vínculo com escola desativada não autentica.
func (r *PostgresMembershipRepository) IsMember(ctx context.Context, userID kernel.UserID, tenantID kernel.TenantID) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM memberships m
			JOIN tenants t ON t.id = m.tenant_id
			WHERE m.user_id = $1 AND m.tenant_id = $2 AND t.is_active = TRUE
		)`

	if err := r.db.GetContext(ctx, &exists, query, userID.String(), tenantID.String()); err != nil {
		return false, errx.Wrap(err, "failed to check membership", errx.TypeInternal).
			WithDetail("user_id", userID.String()).
			WithDetail("tenant_id", tenantID.String())
	}
	return exists, nil
}

// ListTenants lista as escolas ativas às quais o usuário está vinculado
func (r *PostgresMembershipRepository) ListTenants(ctx context.Context, userID kernel.UserID) ([]*tenant.Tenant, error) {
	query := `
		SELECT t.id, t.name, t.code, t.is_active, t.created_at, t.updated_at
		FROM tenants t
		JOIN memberships m ON m.tenant_id = t.id
		WHERE m.user_id = $1 AND t.is_active = TRUE
		ORDER BY t.name ASC`

	var tenants []*tenant.Tenant
	if err := r.db.SelectContext(ctx, &tenants, query, userID.String()); err != nil {
		return nil, errx.Wrap(err, "failed to list user tenants", errx.TypeInternal).
			WithDetail("user_id", userID.String())
	}
	return tenants, nil
}

// CountTenants conta as escolas ativas do usuário
func (r *PostgresMembershipRepository) CountTenants(ctx context.Context, userID kernel.UserID) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM memberships m
		JOIN tenants t ON t.id = m.tenant_id
		WHERE m.user_id = $1 AND t.is_active = TRUE`

	if err := r.db.GetContext(ctx, &count, query, userID.String()); err != nil {
		return 0, errx.Wrap(err, "failed to count user tenants", errx.TypeInternal).
			WithDetail("user_id", userID.String())
	}
	return count, nil
}

// AddMember vincula o usuário à escola
func (r *PostgresMembershipRepository) AddMember(ctx context.Context, userID kernel.UserID, tenantID kernel.TenantID) error {
	query := `
		INSERT INTO memberships (user_id, tenant_id, created_at)
		VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, userID.String(), tenantID.String(), time.Now()); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return tenant.ErrMembershipExists().
				WithDetail("user_id", userID.String()).
				WithDetail("tenant_id", tenantID.String())
		}
		return errx.Wrap(err, "failed to add member", errx.TypeInternal).
			WithDetail("user_id", userID.String()).
			WithDetail("tenant_id", tenantID.String())
	}
	return nil
}

// RemoveMember desfaz o vínculo usuário/escola
func (r *PostgresMembershipRepository) RemoveMember(ctx context.Context, userID kernel.UserID, tenantID kernel.TenantID) error {
	query := "DELETE FROM memberships WHERE user_id = $1 AND tenant_id = $2"

	result, err := r.db.ExecContext(ctx, query, userID.String(), tenantID.String())
	if err != nil {
		return errx.Wrap(err, "failed to remove member", errx.TypeInternal).
			WithDetail("user_id", userID.String()).
			WithDetail("tenant_id", tenantID.String())
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return tenant.ErrMembershipNotFound().
			WithDetail("user_id", userID.String()).
			WithDetail("tenant_id", tenantID.String())
	}
	return nil
}
