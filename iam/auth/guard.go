package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nexaedu/campus/iam"
)

// AccessGuard é a checagem de autorização por request para rotas
// restritas. Só lê o contexto de autenticação publicado pelo middleware;
// nenhum estado é mutado.
type AccessGuard struct{}

// NewAccessGuard cria um novo guard de acesso
func NewAccessGuard() *AccessGuard {
	return &AccessGuard{}
}

// RequireAuthenticated exige um principal na sessão. Sem principal o
// cliente recebe 401 e redireciona para o login.
func (g *AccessGuard) RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentPrincipal(c); !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": iam.ErrUnauthorized().Error(),
			})
		}
		return c.Next()
	}
}

// RequireAdminGeral exige a capacidade de Administrador Geral. Principal
// ausente vira 401; principal sem a capacidade vira 403.
func (g *AccessGuard) RequireAdminGeral() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authCtx, ok := CurrentAuthContext(c)
		if !ok || !authCtx.IsValid() {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": iam.ErrUnauthorized().Error(),
			})
		}

		if !authCtx.AdminGeral {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": iam.ErrAccessDenied().Error(),
			})
		}

		return c.Next()
	}
}
