package authinfra

import (
	"context"
	"strconv"
	"time"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/Abraxas-365/craftable/storex"
	"github.com/jmoiron/sqlx"
	"github.com/nexaedu/campus/iam/auth"
)

// PostgresLoginAuditRepository implementação de PostgreSQL para a
// auditoria de tentativas de login
type PostgresLoginAuditRepository struct {
	db *sqlx.DB
}

// NewPostgresLoginAuditRepository cria uma nova instância do repositório
// de auditoria
func NewPostgresLoginAuditRepository(db *sqlx.DB) auth.LoginAuditRepository {
	return &PostgresLoginAuditRepository{
		db: db,
	}
}

// Save grava uma tentativa de login
func (r *PostgresLoginAuditRepository) Save(ctx context.Context, attempt auth.LoginAttempt) error {
	query := `
		INSERT INTO login_attempts (
			id, identifier, user_id, success, reason, ip_address, user_agent, created_at
		) VALUES (
			:id, :identifier, NULLIF(:user_id, ''), :success, :reason, :ip_address, :user_agent, :created_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, attempt); err != nil {
		return errx.Wrap(err, "failed to save login attempt", errx.TypeInternal).
			WithDetail("identifier", attempt.Identifier)
	}
	return nil
}

// List lista tentativas de login com filtros e paginação
func (r *PostgresLoginAuditRepository) List(ctx context.Context, req auth.LoginAuditListRequest) (storex.Paginated[auth.LoginAttempt], error) {
	var empty storex.Paginated[auth.LoginAttempt]

	where := "WHERE 1=1"
	args := []interface{}{}
	argPos := 1

	if req.Identifier != "" {
		where += " AND identifier = $" + strconv.Itoa(argPos)
		args = append(args, req.Identifier)
		argPos++
	}
	if req.OnlyFailed {
		where += " AND success = FALSE"
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM login_attempts " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return empty, errx.Wrap(err, "failed to count login attempts", errx.TypeInternal)
	}

	query := `
		SELECT id, identifier, COALESCE(user_id, '') AS user_id, success, reason, ip_address, user_agent, created_at
		FROM login_attempts ` + where + `
		ORDER BY created_at DESC
		LIMIT $` + strconv.Itoa(argPos) + ` OFFSET $` + strconv.Itoa(argPos+1)
	args = append(args, req.PageSize, req.GetOffset())

	var attempts []auth.LoginAttempt
	if err := r.db.SelectContext(ctx, &attempts, query, args...); err != nil {
		return empty, errx.Wrap(err, "failed to list login attempts", errx.TypeInternal)
	}

	return storex.NewPaginated(attempts, total, req.Page, req.PageSize), nil
}

// DeleteOlderThan remove tentativas mais antigas que o corte; usado pelo
// job de manutenção noturno
func (r *PostgresLoginAuditRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM login_attempts WHERE created_at < $1", before)
	if err != nil {
		return 0, errx.Wrap(err, "failed to prune login attempts", errx.TypeInternal)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, errx.Wrap(err, "failed to read pruned rows count", errx.TypeInternal)
	}
	return deleted, nil
}
