package userinfra

import (
	"context"
	"database/sql"
	"time"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/Abraxas-365/craftable/logx"
	"github.com/jmoiron/sqlx"
	"github.com/nexaedu/campus/iam/user"
	"github.com/nexaedu/campus/pkg/kernel"
)

// PostgresUserRepository implementação de PostgreSQL para UserRepository
type PostgresUserRepository struct {
	db *sqlx.DB
}

// NewPostgresUserRepository cria uma nova instância do repositório de usuários
func NewPostgresUserRepository(db *sqlx.DB) user.UserRepository {
	return &PostgresUserRepository{
		db: db,
	}
}

const userColumns = `
	id, name, email, cpf, password_hash, is_active,
	last_login_at, created_at, updated_at`

// FindByID busca um usuário por ID
func (r *PostgresUserRepository) FindByID(ctx context.Context, id kernel.UserID) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var u user.User
	err := r.db.GetContext(ctx, &u, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, user.ErrUserNotFound().WithDetail("user_id", id.String())
		}
		logx.Error("Erro ao buscar usuário por ID: %v", err)
		return nil, errx.Wrap(err, "failed to find user by id", errx.TypeInternal).
			WithDetail("user_id", id.String())
	}

	return &u, nil
}

// FindByEmail busca um usuário pelo e-mail já normalizado (minúsculas)
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var u user.User
	err := r.db.GetContext(ctx, &u, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, user.ErrUserNotFound().WithDetail("email", email)
		}
		return nil, errx.Wrap(err, "failed to find user by email", errx.TypeInternal).
			WithDetail("email", email)
	}

	return &u, nil
}

// FindByCPF busca um usuário pelo CPF já normalizado (somente dígitos)
func (r *PostgresUserRepository) FindByCPF(ctx context.Context, cpf string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE cpf = $1`

	var u user.User
	err := r.db.GetContext(ctx, &u, query, cpf)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, user.ErrUserNotFound().WithDetail("cpf", cpf)
		}
		return nil, errx.Wrap(err, "failed to find user by cpf", errx.TypeInternal).
			WithDetail("cpf", cpf)
	}

	return &u, nil
}

// Save grava ou atualiza um usuário
func (r *PostgresUserRepository) Save(ctx context.Context, u user.User) error {
	query := `
		INSERT INTO users (
			id, name, email, cpf, password_hash, is_active,
			last_login_at, created_at, updated_at
		) VALUES (
			:id, :name, :email, :cpf, :password_hash, :is_active,
			:last_login_at, :created_at, :updated_at
		)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			cpf = EXCLUDED.cpf,
			password_hash = EXCLUDED.password_hash,
			is_active = EXCLUDED.is_active,
			last_login_at = EXCLUDED.last_login_at,
			updated_at = EXCLUDED.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, u); err != nil {
		return errx.Wrap(err, "failed to save user", errx.TypeInternal).
			WithDetail("user_id", u.ID.String())
	}
	return nil
}

// Delete remove um usuário
func (r *PostgresUserRepository) Delete(ctx context.Context, id kernel.UserID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id.String())
	if err != nil {
		return errx.Wrap(err, "failed to delete user", errx.TypeInternal).
			WithDetail("user_id", id.String())
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return user.ErrUserNotFound().WithDetail("user_id", id.String())
	}
	return nil
}

// StampLastLogin grava last_login_at sem reescrever a entidade
func (r *PostgresUserRepository) StampLastLogin(ctx context.Context, id kernel.UserID) error {
	query := "UPDATE users SET last_login_at = $1, updated_at = $1 WHERE id = $2"

	if _, err := r.db.ExecContext(ctx, query, time.Now(), id.String()); err != nil {
		return errx.Wrap(err, "failed to stamp last login", errx.TypeInternal).
			WithDetail("user_id", id.String())
	}
	return nil
}
