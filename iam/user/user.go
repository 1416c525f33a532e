package user

import (
	"net/http"
	"time"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/nexaedu/campus/pkg/kernel"
)

// ============================================================================
// User Entity
// ============================================================================

// User é a entidade que representa um usuário no sistema. Diferente das
// entidades de domínio, o usuário é global: o vínculo com cada escola fica
// na tabela de memberships, e um mesmo usuário pode pertencer a zero, uma
// ou várias escolas.
type User struct {
	ID           kernel.UserID `db:"id" json:"id"`
	Name         string        `db:"name" json:"name"`
	Email        string        `db:"email" json:"email"`
	CPF          string        `db:"cpf" json:"cpf"` // somente dígitos
	PasswordHash string        `db:"password_hash" json:"-"`
	IsActive     bool          `db:"is_active" json:"is_active"`
	LastLoginAt  *time.Time    `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

// ============================================================================
// Domain Methods
// ============================================================================

// CanLogin verifica se o usuário pode iniciar sessão
func (u *User) CanLogin() bool {
	return u.IsActive
}

// UpdateLastLogin atualiza a data do último login
func (u *User) UpdateLastLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

// Deactivate desativa o usuário
func (u *User) Deactivate() {
	u.IsActive = false
	u.UpdatedAt = time.Now()
}

// ============================================================================
// DTOs
// ============================================================================

// UserDetailsDTO contém a informação básica de um usuário para outros módulos
type UserDetailsDTO struct {
	ID       kernel.UserID `json:"id"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	CPF      string        `json:"cpf"`
	IsActive bool          `json:"is_active"`
}

// ToDTO converte a entidade User em UserDetailsDTO
func (u *User) ToDTO() UserDetailsDTO {
	return UserDetailsDTO{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		CPF:      u.CPF,
		IsActive: u.IsActive,
	}
}

// ============================================================================
// Error Registry - Erros específicos de User
// ============================================================================

var ErrRegistry = errx.NewRegistry("USER")

// Códigos de erro
var (
	CodeUserNotFound      = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Usuário não encontrado")
	CodeUserAlreadyExists = ErrRegistry.Register("ALREADY_EXISTS", errx.TypeConflict, http.StatusConflict, "Usuário já cadastrado")
	CodeUserInactive      = ErrRegistry.Register("INACTIVE", errx.TypeBusiness, http.StatusForbidden, "Usuário desativado")
)

// Helper functions para criar erros
func ErrUserNotFound() *errx.Error {
	return ErrRegistry.New(CodeUserNotFound)
}

func ErrUserAlreadyExists() *errx.Error {
	return ErrRegistry.New(CodeUserAlreadyExists)
}

func ErrUserInactive() *errx.Error {
	return ErrRegistry.New(CodeUserInactive)
}
