package auth

import (
	"context"

	"github.com/Abraxas-365/craftable/logx"
	"github.com/nexaedu/campus/iam/user"
)

// LoginCompletionHandler roda uma única vez, de forma síncrona, logo após
// um resultado de autenticação aceito e com o principal já vinculado à
// sessão ativa. Faz o commit em duas fases da escola escolhida: grava a
// seleção como pendente e em seguida resolve sem hint, deixando o
// resolvedor revalidar e promover o valor a vínculo durável. Gravar
// primeiro sob a chave pendente garante que a escolha sobrevive à rotação
// do identificador da sessão feita no login.
type LoginCompletionHandler struct {
	users    user.UserRepository
	resolver *TenantResolver
}

// NewLoginCompletionHandler cria um novo handler de conclusão de login
func NewLoginCompletionHandler(users user.UserRepository, resolver *TenantResolver) *LoginCompletionHandler {
	return &LoginCompletionHandler{
		users:    users,
		resolver: resolver,
	}
}

// OnLoginSucceeded finaliza um login aceito: vincula o usuário à sessão,
// grava a seleção pendente, carimba o último login (fire-and-forget) e
// dispara a resolução que promove a seleção a vínculo durável.
func (h *LoginCompletionHandler) OnLoginSucceeded(ctx context.Context, result *AuthResult, sess *Session) error {
	principal := result.Principal

	sess.SetUserID(principal.ID)
	if !result.PendingTenant.IsEmpty() {
		sess.SetPendingTenant(result.PendingTenant)
	}

	// Falha ao carimbar o último login não derruba o login
	if err := h.users.StampLastLogin(ctx, principal.ID); err != nil {
		logx.Error("Erro ao gravar last_login_at do usuário %s: %v", principal.ID.String(), err)
	}

	if _, err := h.resolver.Resolve(ctx, principal, sess, ""); err != nil {
		return err
	}
	return nil
}
