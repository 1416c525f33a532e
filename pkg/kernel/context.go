package kernel

// ============================================================================
// Context Types - Tipos para context.Context
// ============================================================================

// AuthContext é o contexto de autenticação injetado em cada request
type AuthContext struct {
	UserID     UserID   `json:"user_id"`
	TenantID   TenantID `json:"tenant_id,omitempty"`
	AdminGeral bool     `json:"admin_geral"`
	Email      string   `json:"email"`
	Name       string   `json:"name"`
}

// IsValid verifica se o AuthContext é válido.
// O Administrador Geral opera sem vínculo de escola, então apenas o
// usuário é obrigatório.
func (a *AuthContext) IsValid() bool {
	return !a.UserID.IsEmpty()
}

// ============================================================================
// Context Keys - Chaves para context.Context
// ============================================================================

type ContextKey string

// AuthContextKey é a chave sob a qual o AuthContext viaja no request
const AuthContextKey ContextKey = "auth_context"
