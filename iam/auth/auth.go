package auth

import (
	"net/http"
	"time"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/nexaedu/campus/iam/user"
	"github.com/nexaedu/campus/pkg/kernel"
)

// ============================================================================
// Resultado da autenticação
// ============================================================================

// RejectionReason é a taxonomia interna de recusas de autenticação. O
// cliente recebe sempre a mesma mensagem genérica; a razão real fica nos
// logs e na auditoria, para não permitir enumeração de contas ou escolas.
type RejectionReason string

const (
	ReasonInvalidCredentials      RejectionReason = "invalid_credentials"
	ReasonInactiveAccount         RejectionReason = "inactive_account"
	ReasonNoTenantAccess          RejectionReason = "no_tenant_access"
	ReasonTenantSelectionRequired RejectionReason = "tenant_selection_required"
	ReasonInvalidTenant           RejectionReason = "invalid_tenant"
)

// AuthResult é o resultado de uma tentativa de autenticação: sucesso com o
// principal e a seleção pendente de escola, ou recusa com a razão.
type AuthResult struct {
	Principal     *user.User
	PendingTenant kernel.TenantID
	Reason        RejectionReason
}

// Success cria um resultado de sucesso. pendingTenant vazio significa que
// o principal é Administrador Geral e opera sem vínculo.
func Success(principal *user.User, pendingTenant kernel.TenantID) *AuthResult {
	return &AuthResult{Principal: principal, PendingTenant: pendingTenant}
}

// Rejected cria um resultado de recusa com a razão da taxonomia
func Rejected(reason RejectionReason) *AuthResult {
	return &AuthResult{Reason: reason}
}

// IsSuccess verifica se a tentativa foi aceita
func (r *AuthResult) IsSuccess() bool {
	return r.Reason == ""
}

// ============================================================================
// Auditoria de login
// ============================================================================

// LoginAttempt registra cada tentativa de autenticação. É aqui que a
// taxonomia de recusas fica preservada do lado do servidor.
type LoginAttempt struct {
	ID         string        `db:"id" json:"id"`
	Identifier string        `db:"identifier" json:"identifier"` // já normalizado
	UserID     kernel.UserID `db:"user_id" json:"user_id,omitempty"`
	Success    bool          `db:"success" json:"success"`
	Reason     string        `db:"reason" json:"reason,omitempty"`
	IPAddress  string        `db:"ip_address" json:"ip_address"`
	UserAgent  string        `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
}

// ============================================================================
// Error Registry - Erros específicos de Auth
// ============================================================================

var ErrRegistry = errx.NewRegistry("AUTH")

// Códigos de erro
var (
	// CodeLoginFailed é a resposta única para toda recusa do fluxo de
	// login, independente da razão interna.
	CodeLoginFailed    = ErrRegistry.Register("LOGIN_FAILED", errx.TypeAuthorization, http.StatusUnauthorized, "Credenciais inválidas")
	CodeTooManyLogins  = ErrRegistry.Register("TOO_MANY_LOGINS", errx.TypeAuthorization, http.StatusTooManyRequests, "Muitas tentativas. Aguarde alguns minutos")
	CodeInvalidTenant  = ErrRegistry.Register("INVALID_TENANT", errx.TypeAuthorization, http.StatusForbidden, "Escola indisponível para este usuário")
	CodeSessionFailure = ErrRegistry.Register("SESSION_FAILURE", errx.TypeInternal, http.StatusInternalServerError, "Falha ao persistir a sessão")
)

// Helper functions para criar erros
func ErrLoginFailed() *errx.Error {
	return ErrRegistry.New(CodeLoginFailed)
}

func ErrTooManyLogins() *errx.Error {
	return ErrRegistry.New(CodeTooManyLogins)
}

func ErrInvalidTenant() *errx.Error {
	return ErrRegistry.New(CodeInvalidTenant)
}

func ErrSessionFailure() *errx.Error {
	return ErrRegistry.New(CodeSessionFailure)
}
