package tenantsrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/Abraxas-365/craftable/storex"
	"github.com/google/uuid"
	"github.com/nexaedu/campus/iam/tenant"
	"github.com/nexaedu/campus/iam/user"
	"github.com/nexaedu/campus/pkg/kernel"
)

// TenantService proporciona as operações de negócio para escolas e para o
// vínculo usuário/escola. É a superfície administrativa mínima que alimenta
// os vínculos consultados na resolução de tenant da sessão.
type TenantService struct {
	tenants     tenant.TenantRepository
	memberships tenant.MembershipRepository
	users       user.UserRepository
}

// NewTenantService cria uma nova instância do serviço de escolas
func NewTenantService(
	tenants tenant.TenantRepository,
	memberships tenant.MembershipRepository,
	users user.UserRepository,
) *TenantService {
	return &TenantService{
		tenants:     tenants,
		memberships: memberships,
		users:       users,
	}
}

// CreateTenant cadastra uma nova escola
func (s *TenantService) CreateTenant(ctx context.Context, req tenant.CreateTenantRequest) (*tenant.Tenant, error) {
	exists, err := s.tenants.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, errx.Wrap(err, "failed to check tenant code", errx.TypeInternal)
	}
	if exists {
		return nil, tenant.ErrTenantAlreadyExists().WithDetail("code", req.Code)
	}

	now := time.Now()
	newTenant := &tenant.Tenant{
		ID:        kernel.NewTenantID(uuid.NewString()),
		Name:      req.Name,
		Code:      req.Code,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.tenants.Save(ctx, *newTenant); err != nil {
		return nil, err
	}

	return newTenant, nil
}

// GetTenant busca uma escola por ID
func (s *TenantService) GetTenant(ctx context.Context, id kernel.TenantID) (*tenant.Tenant, error) {
	return s.tenants.FindByID(ctx, id)
}

// ListTenants lista escolas com paginação
func (s *TenantService) ListTenants(ctx context.Context, req tenant.ListTenantsRequest) (storex.Paginated[tenant.Tenant], error) {
	return s.tenants.List(ctx, req)
}

// ActivateTenant reativa uma escola desativada
func (s *TenantService) ActivateTenant(ctx context.Context, id kernel.TenantID) (*tenant.Tenant, error) {
	t, err := s.tenants.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	t.Activate()
	if err := s.tenants.Save(ctx, *t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeactivateTenant desativa uma escola. Sessões já vinculadas a ela deixam
// de revalidar na próxima troca ou login; o vínculo gravado não é tocado.
func (s *TenantService) DeactivateTenant(ctx context.Context, id kernel.TenantID) (*tenant.Tenant, error) {
	t, err := s.tenants.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	t.Deactivate()
	if err := s.tenants.Save(ctx, *t); err != nil {
		return nil, err
	}
	return t, nil
}

// GrantMembership vincula um usuário a uma escola ativa
func (s *TenantService) GrantMembership(ctx context.Context, tenantID kernel.TenantID, userID kernel.UserID) error {
	t, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return err
	}
	if !t.IsActive {
		return tenant.ErrTenantInactive().WithDetail("tenant_id", tenantID.String())
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return err
	}

	return s.memberships.AddMember(ctx, userID, tenantID)
}

// RevokeMembership desfaz o vínculo usuário/escola. A revogação não invalida
// a sessão em curso: ela passa a valer na próxima resolução que revalide o
// vínculo.
func (s *TenantService) RevokeMembership(ctx context.Context, tenantID kernel.TenantID, userID kernel.UserID) error {
	return s.memberships.RemoveMember(ctx, userID, tenantID)
}
