package tenant

import (
	"net/http"
	"time"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/nexaedu/campus/pkg/kernel"
)

// ============================================================================
// Tenant Entity - Escola
// ============================================================================

// Tenant representa uma escola: a unidade organizacional isolada cujos
// dados ficam separados das demais.
type Tenant struct {
	ID        kernel.TenantID `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Code      string          `db:"code" json:"code"` // código INEP ou interno, único
	IsActive  bool            `db:"is_active" json:"is_active"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// ============================================================================
// Domain Methods
// ============================================================================

// IsValid verifica se o tenant é válido
func (t *Tenant) IsValid() bool {
	return t.Name != "" && t.Code != ""
}

// Activate ativa a escola
func (t *Tenant) Activate() {
	t.IsActive = true
	t.UpdatedAt = time.Now()
}

// Deactivate desativa a escola
func (t *Tenant) Deactivate() {
	t.IsActive = false
	t.UpdatedAt = time.Now()
}

// ============================================================================
// Membership - vínculo usuário/escola
// ============================================================================

// Membership representa o vínculo muitos-para-muitos entre usuário e escola.
// Um usuário sem nenhum vínculo não consegue autenticar, exceto o
// Administrador Geral, que opera sobre todas as escolas.
type Membership struct {
	UserID    kernel.UserID   `db:"user_id" json:"user_id"`
	TenantID  kernel.TenantID `db:"tenant_id" json:"tenant_id"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// ============================================================================
// DTOs
// ============================================================================

// TenantDetailsDTO contém a informação básica de uma escola para outros módulos
type TenantDetailsDTO struct {
	ID       kernel.TenantID `json:"id"`
	Name     string          `json:"name"`
	Code     string          `json:"code"`
	IsActive bool            `json:"is_active"`
}

// ToDTO converte a entidade Tenant em TenantDetailsDTO
func (t *Tenant) ToDTO() TenantDetailsDTO {
	return TenantDetailsDTO{
		ID:       t.ID,
		Name:     t.Name,
		Code:     t.Code,
		IsActive: t.IsActive,
	}
}

// TenantRefDTO é a referência mínima {id, name} usada no payload de contexto
// e no seletor de escola da tela de login.
type TenantRefDTO struct {
	ID   kernel.TenantID `json:"id"`
	Name string          `json:"name"`
}

// ToRef converte a entidade Tenant em TenantRefDTO
func (t *Tenant) ToRef() TenantRefDTO {
	return TenantRefDTO{ID: t.ID, Name: t.Name}
}

// ============================================================================
// Service DTOs - Para operações da camada de serviço
// ============================================================================

// CreateTenantRequest representa a petição para criar uma escola
type CreateTenantRequest struct {
	Name string `json:"name" validate:"required,min=2"`
	Code string `json:"code" validate:"required"`
}

// GrantMembershipRequest vincula um usuário a uma escola
type GrantMembershipRequest struct {
	UserID kernel.UserID `json:"user_id" validate:"required"`
}

// ============================================================================
// Error Registry - Erros específicos de Tenant
// ============================================================================

var ErrRegistry = errx.NewRegistry("TENANT")

// Códigos de erro
var (
	CodeTenantNotFound      = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Escola não encontrada")
	CodeTenantAlreadyExists = ErrRegistry.Register("ALREADY_EXISTS", errx.TypeConflict, http.StatusConflict, "Escola já cadastrada")
	CodeTenantInactive      = ErrRegistry.Register("INACTIVE", errx.TypeBusiness, http.StatusForbidden, "Escola desativada")
	CodeMembershipExists    = ErrRegistry.Register("MEMBERSHIP_EXISTS", errx.TypeConflict, http.StatusConflict, "Usuário já vinculado à escola")
	CodeMembershipNotFound  = ErrRegistry.Register("MEMBERSHIP_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Vínculo não encontrado")
)

// Helper functions para criar erros
func ErrTenantNotFound() *errx.Error {
	return ErrRegistry.New(CodeTenantNotFound)
}

func ErrTenantAlreadyExists() *errx.Error {
	return ErrRegistry.New(CodeTenantAlreadyExists)
}

func ErrTenantInactive() *errx.Error {
	return ErrRegistry.New(CodeTenantInactive)
}

func ErrMembershipExists() *errx.Error {
	return ErrRegistry.New(CodeMembershipExists)
}

func ErrMembershipNotFound() *errx.Error {
	return ErrRegistry.New(CodeMembershipNotFound)
}
