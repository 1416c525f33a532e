package auth

import (
	"context"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/nexaedu/campus/iam/tenant"
	"github.com/nexaedu/campus/iam/user"
	"github.com/nexaedu/campus/pkg/kernel"
)

// ============================================================================
// Payload de contexto - "quem sou eu e sob qual escola estou operando"
// ============================================================================

// UserContextDTO é a projeção do usuário para as páginas
type UserContextDTO struct {
	ID         kernel.UserID         `json:"id"`
	Name       string                `json:"name"`
	Roles      []string              `json:"roles"`
	AdminGeral bool                  `json:"admin_geral"`
	Escolas    []tenant.TenantRefDTO `json:"escolas"`
}

// ContextPayload é o payload compartilhado com toda página autenticada. É
// a única fonte que a UI consulta para contexto de autenticação; nunca
// pode divergir da visão do AccessGuard sobre o mesmo principal.
type ContextPayload struct {
	User          *UserContextDTO      `json:"user"` // null quando não autenticado
	TenantID      kernel.TenantID      `json:"escola_id,omitempty"`
	CurrentTenant *tenant.TenantRefDTO `json:"escola_atual,omitempty"`
}

// ContextProjector monta o payload de contexto de cada renderização
type ContextProjector struct {
	resolver    *TenantResolver
	roles       RoleOracle
	memberships tenant.MembershipRepository
	tenants     tenant.TenantRepository
}

// NewContextProjector cria um novo projetor de contexto
func NewContextProjector(
	resolver *TenantResolver,
	roles RoleOracle,
	memberships tenant.MembershipRepository,
	tenants tenant.TenantRepository,
) *ContextProjector {
	return &ContextProjector{
		resolver:    resolver,
		roles:       roles,
		memberships: memberships,
		tenants:     tenants,
	}
}

// Project monta o payload para o principal corrente. principal nil produz
// user: null e omite a escola atual. A chamada de Resolve aqui é sem hint:
// pode ainda fazer o auto-commit benigno do vínculo único, mas nunca uma
// troca dirigida por request.
func (p *ContextProjector) Project(ctx context.Context, principal *user.User, sess *Session) (*ContextPayload, error) {
	if principal == nil {
		return &ContextPayload{}, nil
	}

	adminGeral, err := p.roles.IsAdminGeral(ctx, principal.ID)
	if err != nil {
		return nil, err
	}

	roleNames, err := p.roles.RolesOf(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	if roleNames == nil {
		roleNames = []string{}
	}

	memberships, err := p.memberships.ListTenants(ctx, principal.ID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list user tenants", errx.TypeInternal).
			WithDetail("user_id", principal.ID.String())
	}
	escolas := make([]tenant.TenantRefDTO, 0, len(memberships))
	for _, t := range memberships {
		escolas = append(escolas, t.ToRef())
	}

	tenantID, err := p.resolver.Resolve(ctx, principal, sess, "")
	if err != nil {
		return nil, err
	}

	payload := &ContextPayload{
		User: &UserContextDTO{
			ID:         principal.ID,
			Name:       principal.Name,
			Roles:      roleNames,
			AdminGeral: adminGeral,
			Escolas:    escolas,
		},
		TenantID: tenantID,
	}

	if !adminGeral && !tenantID.IsEmpty() {
		current, err := p.tenants.FindByID(ctx, tenantID)
		if err != nil {
			if !errx.IsType(err, errx.TypeNotFound) {
				return nil, err
			}
			// Escola apagada com vínculo ainda em sessão: segue sem escola atual
		} else {
			ref := current.ToRef()
			payload.CurrentTenant = &ref
		}
	}

	return payload, nil
}
