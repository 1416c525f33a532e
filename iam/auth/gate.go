package auth

import (
	"context"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/nexaedu/campus/iam/tenant"
	"github.com/nexaedu/campus/iam/user"
	"github.com/nexaedu/campus/pkg/kernel"
)

// AuthenticationGate valida identificador + senha e as condições de
// elegibilidade (conta ativa, acesso a pelo menos uma escola). É uma
// função de decisão pura: não escreve nada na sessão — promover a seleção
// pendente é trabalho do LoginCompletionHandler.
type AuthenticationGate struct {
	users       user.UserRepository
	passwords   user.PasswordService
	memberships tenant.MembershipRepository
	roles       RoleOracle
}

// NewAuthenticationGate cria um novo gate de autenticação
func NewAuthenticationGate(
	users user.UserRepository,
	passwords user.PasswordService,
	memberships tenant.MembershipRepository,
	roles RoleOracle,
) *AuthenticationGate {
	return &AuthenticationGate{
		users:       users,
		passwords:   passwords,
		memberships: memberships,
		roles:       roles,
	}
}

// Authenticate avalia uma tentativa de login. Erros de infraestrutura vêm
// pelo retorno de erro; recusas de negócio vêm como AuthResult com a razão.
func (g *AuthenticationGate) Authenticate(ctx context.Context, identifier, secret string, hint kernel.TenantID) (*AuthResult, error) {
	id := NormalizeIdentifier(identifier)

	principal, err := g.findPrincipal(ctx, id)
	if err != nil {
		if errx.IsType(err, errx.TypeNotFound) {
			return Rejected(ReasonInvalidCredentials), nil
		}
		return nil, err
	}

	if !g.passwords.VerifyPassword(principal.PasswordHash, secret) {
		return Rejected(ReasonInvalidCredentials), nil
	}

	if !principal.CanLogin() {
		return Rejected(ReasonInactiveAccount), nil
	}

	adminGeral, err := g.roles.IsAdminGeral(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	if adminGeral {
		// Administrador Geral autentica sem seleção de escola
		return Success(principal, ""), nil
	}

	count, err := g.memberships.CountTenants(ctx, principal.ID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to count user tenants", errx.TypeInternal).
			WithDetail("user_id", principal.ID.String())
	}
	if count == 0 {
		return Rejected(ReasonNoTenantAccess), nil
	}

	tenantID := hint
	if tenantID.IsEmpty() && count == 1 {
		memberships, err := g.memberships.ListTenants(ctx, principal.ID)
		if err != nil {
			return nil, errx.Wrap(err, "failed to list user tenants", errx.TypeInternal).
				WithDetail("user_id", principal.ID.String())
		}
		if len(memberships) == 1 {
			tenantID = memberships[0].ID
		}
	}
	if tenantID.IsEmpty() {
		return Rejected(ReasonTenantSelectionRequired), nil
	}

	ok, err := g.memberships.IsMember(ctx, principal.ID, tenantID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to check membership", errx.TypeInternal).
			WithDetail("user_id", principal.ID.String()).
			WithDetail("tenant_id", tenantID.String())
	}
	if !ok {
		return Rejected(ReasonInvalidTenant), nil
	}

	return Success(principal, tenantID), nil
}

func (g *AuthenticationGate) findPrincipal(ctx context.Context, id Identifier) (*user.User, error) {
	if id.IsEmail {
		return g.users.FindByEmail(ctx, id.Value)
	}
	return g.users.FindByCPF(ctx, id.Value)
}
