package user

import (
	"context"

	"github.com/nexaedu/campus/pkg/kernel"
)

// UserRepository define o contrato para a persistência de usuários
type UserRepository interface {
	FindByID(ctx context.Context, id kernel.UserID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByCPF(ctx context.Context, cpf string) (*User, error)
	Save(ctx context.Context, u User) error
	Delete(ctx context.Context, id kernel.UserID) error
	// StampLastLogin grava last_login_at sem reescrever a entidade inteira;
	// chamado em fire-and-forget pelo fluxo pós-login.
	StampLastLogin(ctx context.Context, id kernel.UserID) error
}

// PasswordService define o contrato para o manejo de senhas
type PasswordService interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hashedPassword, password string) bool
}
