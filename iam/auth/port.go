package auth

import (
	"context"
	"time"

	"github.com/Abraxas-365/craftable/storex"
	"github.com/nexaedu/campus/pkg/kernel"
)

// SessionStore define o contrato para a persistência de sessões. A sessão
// em si é um valor por request (ver session.go); o store só materializa e
// descarrega esse valor.
type SessionStore interface {
	// Load carrega a sessão pelo identificador. ID vazio ou desconhecido
	// produz uma sessão nova, nunca um erro de "não encontrado".
	Load(ctx context.Context, id kernel.SessionID) (*Session, error)
	// Commit descarrega a sessão para o armazenamento persistente. Deve ser
	// chamado em todo caminho de saída do request, inclusive nos de erro,
	// para que um vínculo calculado nunca se perca.
	Commit(ctx context.Context, s *Session) error
	// Destroy invalida a sessão (logout)
	Destroy(ctx context.Context, s *Session) error
}

// RoleOracle responde se um usuário possui a capacidade de Administrador
// Geral. Quem implementa pode consultar um conjunto de nomes de papéis;
// os consumidores nunca comparam nomes crus.
type RoleOracle interface {
	IsAdminGeral(ctx context.Context, userID kernel.UserID) (bool, error)
	RolesOf(ctx context.Context, userID kernel.UserID) ([]string, error)
}

// RateLimiter limita tentativas de login por chave normalizada
// (identificador + endereço do cliente). A política é opaca para o gate:
// aplica-se antes de chamar Authenticate.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// LoginAuditRepository define o contrato para a auditoria de tentativas
type LoginAuditRepository interface {
	Save(ctx context.Context, attempt LoginAttempt) error
	List(ctx context.Context, req LoginAuditListRequest) (storex.Paginated[LoginAttempt], error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// LoginAuditListRequest filtros para a listagem de auditoria
type LoginAuditListRequest struct {
	storex.PaginationOptions
	Identifier string `json:"identifier,omitempty"`
	OnlyFailed bool   `json:"only_failed,omitempty"`
}

// GetOffset calcula o offset da paginação
func (r LoginAuditListRequest) GetOffset() int {
	return (r.Page - 1) * r.PageSize
}
