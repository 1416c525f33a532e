package auth

import (
	"context"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/nexaedu/campus/iam/tenant"
	"github.com/nexaedu/campus/iam/user"
	"github.com/nexaedu/campus/pkg/kernel"
)

// TenantResolver decide sob qual escola o usuário está operando no
// request corrente. É chamado no pós-login e em toda renderização de
// página; o resultado vazio significa "sem vínculo".
type TenantResolver struct {
	memberships tenant.MembershipRepository
	roles       RoleOracle
}

// NewTenantResolver cria um novo resolvedor de escola
func NewTenantResolver(memberships tenant.MembershipRepository, roles RoleOracle) *TenantResolver {
	return &TenantResolver{
		memberships: memberships,
		roles:       roles,
	}
}

// Resolve aplica o fallback ordenado: vínculo durável da sessão, seleção
// pendente, hint do request e, por fim, auto-seleção quando o usuário tem
// uma única escola. O primeiro candidato que sobreviver à revalidação de
// membership vence e é promovido a vínculo durável; candidato inválido é
// descartado em silêncio e o próximo passo é tentado — membership revogado
// em pleno uso é condição normal, não defeito.
//
// O Administrador Geral nunca carrega vínculo: resolve sempre para vazio,
// mesmo que a sessão traga um vínculo antigo de um contexto anterior.
func (r *TenantResolver) Resolve(ctx context.Context, principal *user.User, sess *Session, hint kernel.TenantID) (kernel.TenantID, error) {
	adminGeral, err := r.roles.IsAdminGeral(ctx, principal.ID)
	if err != nil {
		return "", err
	}
	if adminGeral {
		sess.ClearTenantBinding()
		sess.ClearPendingTenant()
		return "", nil
	}

	// 1. Vínculo durável já existente. Confiado sem revalidar: a
	// revalidação acontece quando um candidato novo é considerado, não a
	// cada leitura. Revogação de membership só surte efeito na próxima
	// resolução completa.
	if bound := sess.BoundTenant(); !bound.IsEmpty() {
		return bound, nil
	}

	// 2. Seleção pendente do login, cobrindo a janela entre a decisão de
	// autenticação e o primeiro commit durável (inclusive a rotação do
	// identificador da sessão).
	if pending := sess.PendingTenant(); !pending.IsEmpty() {
		ok, err := r.isMember(ctx, principal.ID, pending)
		if err != nil {
			return "", err
		}
		if ok {
			sess.BindTenant(pending)
			return pending, nil
		}
		sess.ClearPendingTenant()
	}

	// 3. Hint explícito do request (campo de formulário, troca de escola)
	if !hint.IsEmpty() {
		ok, err := r.isMember(ctx, principal.ID, hint)
		if err != nil {
			return "", err
		}
		if ok {
			sess.BindTenant(hint)
			return hint, nil
		}
	}

	// 4. Auto-seleção: vínculo único dispensa escolha do usuário
	tenants, err := r.memberships.ListTenants(ctx, principal.ID)
	if err != nil {
		return "", errx.Wrap(err, "failed to list user tenants", errx.TypeInternal).
			WithDetail("user_id", principal.ID.String())
	}
	if len(tenants) == 1 {
		id := tenants[0].ID
		sess.BindTenant(id)
		return id, nil
	}

	// 5. Sem vínculo: o chamador decide se pede a seleção ao usuário
	return "", nil
}

func (r *TenantResolver) isMember(ctx context.Context, userID kernel.UserID, tenantID kernel.TenantID) (bool, error) {
	ok, err := r.memberships.IsMember(ctx, userID, tenantID)
	if err != nil {
		return false, errx.Wrap(err, "failed to check membership", errx.TypeInternal).
			WithDetail("user_id", userID.String()).
			WithDetail("tenant_id", tenantID.String())
	}
	return ok, nil
}
