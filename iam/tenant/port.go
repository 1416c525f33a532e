package tenant

import (
	"context"

	"github.com/Abraxas-365/craftable/storex"
	"github.com/nexaedu/campus/pkg/kernel"
)

// ListTenantsRequest parâmetros da listagem paginada de escolas
type ListTenantsRequest struct {
	storex.PaginationOptions
}

// GetOffset calcula o offset da paginação
func (r ListTenantsRequest) GetOffset() int {
	return (r.Page - 1) * r.PageSize
}

// TenantRepository define o contrato para a persistência de escolas
type TenantRepository interface {
	FindByID(ctx context.Context, id kernel.TenantID) (*Tenant, error)
	FindByCode(ctx context.Context, code string) (*Tenant, error)
	List(ctx context.Context, req ListTenantsRequest) (storex.Paginated[Tenant], error)
	Save(ctx context.Context, t Tenant) error
	Delete(ctx context.Context, id kernel.TenantID) error
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// MembershipRepository define o contrato para o vínculo usuário/escola.
// É a fonte de verdade consultada pelo resolvedor de tenant: nenhum
// vínculo de sessão é gravado sem passar por IsMember.
type MembershipRepository interface {
	IsMember(ctx context.Context, userID kernel.UserID, tenantID kernel.TenantID) (bool, error)
	ListTenants(ctx context.Context, userID kernel.UserID) ([]*Tenant, error)
	CountTenants(ctx context.Context, userID kernel.UserID) (int, error)
	AddMember(ctx context.Context, userID kernel.UserID, tenantID kernel.TenantID) error
	RemoveMember(ctx context.Context, userID kernel.UserID, tenantID kernel.TenantID) error
}
