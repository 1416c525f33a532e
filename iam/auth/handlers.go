package auth

import (
	"time"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/Abraxas-365/craftable/logx"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nexaedu/campus/iam/tenant"
	"github.com/nexaedu/campus/iam/user"
	"github.com/nexaedu/campus/pkg/kernel"
)

// AuthHandlers expõe as rotas de autenticação com Fiber
type AuthHandlers struct {
	gate        *AuthenticationGate
	completion  *LoginCompletionHandler
	projector   *ContextProjector
	resolver    *TenantResolver
	guard       *AccessGuard
	limiter     RateLimiter
	audit       LoginAuditRepository
	users       user.UserRepository
	memberships tenant.MembershipRepository
	roles       RoleOracle
}

// NewAuthHandlers cria um novo handler de autenticação
func NewAuthHandlers(
	gate *AuthenticationGate,
	completion *LoginCompletionHandler,
	projector *ContextProjector,
	resolver *TenantResolver,
	guard *AccessGuard,
	limiter RateLimiter,
	audit LoginAuditRepository,
	users user.UserRepository,
	memberships tenant.MembershipRepository,
	roles RoleOracle,
) *AuthHandlers {
	return &AuthHandlers{
		gate:        gate,
		completion:  completion,
		projector:   projector,
		resolver:    resolver,
		guard:       guard,
		limiter:     limiter,
		audit:       audit,
		users:       users,
		memberships: memberships,
		roles:       roles,
	}
}

// LoginRequest estrutura do login por identificador + senha
type LoginRequest struct {
	Identificador string          `json:"identificador"` // e-mail ou CPF
	Senha         string          `json:"senha"`
	EscolaID      kernel.TenantID `json:"escola_id,omitempty"`
}

// SwitchTenantRequest estrutura para troca de escola na sessão
type SwitchTenantRequest struct {
	EscolaID kernel.TenantID `json:"escola_id"`
}

// TenantLookupResponse resposta do seletor de escolas pré-login
type TenantLookupResponse struct {
	Escolas    []tenant.TenantRefDTO `json:"escolas"`
	AdminGeral bool                  `json:"admin_geral"`
}

// RegisterRoutes registra as rotas de autenticação no Fiber
func (ah *AuthHandlers) RegisterRoutes(app *fiber.App) {
	auth := app.Group("/auth")

	auth.Post("/login", ah.Login)
	auth.Post("/logout", ah.Logout)
	auth.Get("/contexto", ah.GetContext)
	auth.Get("/escolas", ah.LookupTenants)
	auth.Post("/escola", ah.guard.RequireAuthenticated(), ah.SwitchTenant)
	auth.Get("/auditoria", ah.guard.RequireAdminGeral(), ah.ListLoginAudit)
}

// Login autentica por identificador + senha. Toda recusa responde com a
// mesma mensagem genérica; a razão real vai só para a auditoria.
func (ah *AuthHandlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	identifier := NormalizeIdentifier(req.Identificador)
	limitKey := identifier.RateLimitKey(c.IP())

	allowed, err := ah.limiter.Allow(c.Context(), limitKey)
	if err != nil {
		// Limiter indisponível não derruba o login
		logx.Error("Rate limiter indisponível: %v", err)
		allowed = true
	}
	if !allowed {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": ErrTooManyLogins().Error(),
		})
	}

	result, err := ah.gate.Authenticate(c.Context(), req.Identificador, req.Senha, req.EscolaID)
	if err != nil {
		return err
	}

	ah.recordAttempt(c, identifier, result)

	if !result.IsSuccess() {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": ErrLoginFailed().Error(),
		})
	}

	if err := ah.limiter.Reset(c.Context(), limitKey); err != nil {
		logx.Error("Erro ao zerar rate limit de %s: %v", limitKey, err)
	}

	sess := CurrentSession(c)

	// Rotação do identificador da sessão no login; a seleção pendente
	// sobrevive porque é promovida só na resolução a seguir
	sess.Regenerate()

	if err := ah.completion.OnLoginSucceeded(c.Context(), result, sess); err != nil {
		return err
	}

	payload, err := ah.projector.Project(c.Context(), result.Principal, sess)
	if err != nil {
		return err
	}

	return c.JSON(payload)
}

// Logout encerra a sessão corrente
func (ah *AuthHandlers) Logout(c *fiber.Ctx) error {
	if sess := CurrentSession(c); sess != nil {
		sess.MarkDestroyed()
	}

	return c.JSON(fiber.Map{
		"message": "Sessão encerrada",
	})
}

// GetContext devolve o payload de contexto da sessão corrente. Sessão
// anônima responde user: null, sem escola atual.
func (ah *AuthHandlers) GetContext(c *fiber.Ctx) error {
	principal, _ := CurrentPrincipal(c)

	payload, err := ah.projector.Project(c.Context(), principal, CurrentSession(c))
	if err != nil {
		return err
	}

	return c.JSON(payload)
}

// LookupTenants é o endpoint não autenticado do seletor de escolas: dado
// um CPF, devolve a lista de escolas e o indicador de Administrador Geral.
// CPF desconhecido devolve lista vazia, nunca um 404: a resposta não pode
// revelar se a conta existe.
func (ah *AuthHandlers) LookupTenants(c *fiber.Ctx) error {
	identifier := NormalizeIdentifier(c.Query("cpf"))

	empty := TenantLookupResponse{Escolas: []tenant.TenantRefDTO{}}

	if identifier.IsEmail || identifier.Value == "" {
		return c.JSON(empty)
	}

	principal, err := ah.users.FindByCPF(c.Context(), identifier.Value)
	if err != nil {
		if errx.IsType(err, errx.TypeNotFound) {
			return c.JSON(empty)
		}
		return err
	}

	adminGeral, err := ah.roles.IsAdminGeral(c.Context(), principal.ID)
	if err != nil {
		return err
	}

	memberships, err := ah.memberships.ListTenants(c.Context(), principal.ID)
	if err != nil {
		return err
	}

	escolas := make([]tenant.TenantRefDTO, 0, len(memberships))
	for _, t := range memberships {
		escolas = append(escolas, t.ToRef())
	}

	return c.JSON(TenantLookupResponse{
		Escolas:    escolas,
		AdminGeral: adminGeral,
	})
}

// SwitchTenant troca a escola da sessão corrente via hint explícito
func (ah *AuthHandlers) SwitchTenant(c *fiber.Ctx) error {
	var req SwitchTenantRequest
	if err := c.BodyParser(&req); err != nil || req.EscolaID.IsEmpty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "escola_id is required",
		})
	}

	principal, _ := CurrentPrincipal(c)
	sess := CurrentSession(c)

	// Troca explícita: derruba o vínculo atual para o hint ser considerado
	sess.ClearTenantBinding()
	sess.ClearPendingTenant()

	resolved, err := ah.resolver.Resolve(c.Context(), principal, sess, req.EscolaID)
	if err != nil {
		return err
	}
	if resolved != req.EscolaID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": ErrInvalidTenant().Error(),
		})
	}

	payload, err := ah.projector.Project(c.Context(), principal, sess)
	if err != nil {
		return err
	}

	return c.JSON(payload)
}

// ListLoginAudit lista a auditoria de tentativas de login (paginada)
func (ah *AuthHandlers) ListLoginAudit(c *fiber.Ctx) error {
	var req LoginAuditListRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid query parameters",
		})
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 || req.PageSize > 100 {
		req.PageSize = 20
	}

	page, err := ah.audit.List(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(page)
}

// recordAttempt grava a tentativa na auditoria em fire-and-forget
func (ah *AuthHandlers) recordAttempt(c *fiber.Ctx, identifier Identifier, result *AuthResult) {
	attempt := LoginAttempt{
		ID:         uuid.NewString(),
		Identifier: identifier.Value,
		Success:    result.IsSuccess(),
		Reason:     string(result.Reason),
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
		CreatedAt:  time.Now(),
	}
	if result.Principal != nil {
		attempt.UserID = result.Principal.ID
	}

	if err := ah.audit.Save(c.Context(), attempt); err != nil {
		logx.Error("Erro ao gravar auditoria de login: %v", err)
	}
}
