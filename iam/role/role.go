package role

import (
	"net/http"
	"time"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/nexaedu/campus/pkg/kernel"
)

// ============================================================================
// Role Entity
// ============================================================================

// Role representa um papel global do sistema. Papéis não são escopados por
// escola: quem escopa o acesso aos dados é o vínculo de tenant resolvido
// na sessão, não o papel.
type Role struct {
	ID          kernel.RoleID `db:"id" json:"id"`
	Name        string        `db:"name" json:"name"`
	Description string        `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// Nomes de papéis reconhecidos como Administrador Geral. O papel antigo
// "super_admin" segue aceito para bases migradas do sistema anterior.
const (
	NameAdminGeral       = "administrador_geral"
	NameAdminGeralLegacy = "super_admin"
)

// ============================================================================
// Domain Methods
// ============================================================================

// IsValid verifica se o papel é válido
func (r *Role) IsValid() bool {
	return r.Name != ""
}

// GrantsAdminGeral verifica se o nome do papel concede a capacidade de
// Administrador Geral
func GrantsAdminGeral(name string) bool {
	return name == NameAdminGeral || name == NameAdminGeralLegacy
}

// ============================================================================
// DTOs
// ============================================================================

// RoleDetailsDTO contém a informação básica de um papel para outros módulos
type RoleDetailsDTO struct {
	ID          kernel.RoleID `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
}

// ToDTO converte a entidade Role em RoleDetailsDTO
func (r *Role) ToDTO() RoleDetailsDTO {
	return RoleDetailsDTO{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
	}
}

// ============================================================================
// Error Registry - Erros específicos de Role
// ============================================================================

var ErrRegistry = errx.NewRegistry("ROLE")

// Códigos de erro
var (
	CodeRoleNotFound      = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Papel não encontrado")
	CodeRoleAlreadyExists = ErrRegistry.Register("ALREADY_EXISTS", errx.TypeConflict, http.StatusConflict, "Papel já cadastrado")
)

// Helper functions para criar erros
func ErrRoleNotFound() *errx.Error {
	return ErrRegistry.New(CodeRoleNotFound)
}

func ErrRoleAlreadyExists() *errx.Error {
	return ErrRegistry.New(CodeRoleAlreadyExists)
}
