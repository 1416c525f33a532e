package tenantapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nexaedu/campus/iam/auth"
	"github.com/nexaedu/campus/iam/tenant"
	"github.com/nexaedu/campus/iam/tenant/tenantsrv"
	"github.com/nexaedu/campus/pkg/kernel"
)

// TenantHandlers expõe a superfície administrativa de escolas e vínculos.
// Todas as rotas exigem Administrador Geral.
type TenantHandlers struct {
	service *tenantsrv.TenantService
	guard   *auth.AccessGuard
}

// NewTenantHandlers cria um novo handler administrativo de escolas
func NewTenantHandlers(service *tenantsrv.TenantService, guard *auth.AccessGuard) *TenantHandlers {
	return &TenantHandlers{
		service: service,
		guard:   guard,
	}
}

// RegisterRoutes registra as rotas administrativas no Fiber
func (th *TenantHandlers) RegisterRoutes(app *fiber.App) {
	admin := app.Group("/admin/escolas", th.guard.RequireAdminGeral())

	admin.Get("/", th.ListTenants)
	admin.Post("/", th.CreateTenant)
	admin.Get("/:id", th.GetTenant)
	admin.Post("/:id/ativar", th.ActivateTenant)
	admin.Post("/:id/desativar", th.DeactivateTenant)
	admin.Post("/:id/membros", th.GrantMembership)
	admin.Delete("/:id/membros/:userID", th.RevokeMembership)
}

// ListTenants lista escolas com paginação
func (th *TenantHandlers) ListTenants(c *fiber.Ctx) error {
	var req tenant.ListTenantsRequest
	if err := c.QueryParser(&req.PaginationOptions); err != nil {
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

	page, err := th.service.ListTenants(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(page)
}

// CreateTenant cadastra uma nova escola
func (th *TenantHandlers) CreateTenant(c *fiber.Ctx) error {
	var req tenant.CreateTenantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Name == "" || req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name and code are required",
		})
	}

	created, err := th.service.CreateTenant(c.Context(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created.ToDTO())
}

// GetTenant busca uma escola por ID
func (th *TenantHandlers) GetTenant(c *fiber.Ctx) error {
	id := kernel.NewTenantID(c.Params("id"))

	t, err := th.service.GetTenant(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(t.ToDTO())
}

// ActivateTenant reativa uma escola
func (th *TenantHandlers) ActivateTenant(c *fiber.Ctx) error {
	id := kernel.NewTenantID(c.Params("id"))

	t, err := th.service.ActivateTenant(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(t.ToDTO())
}

// DeactivateTenant desativa uma escola
func (th *TenantHandlers) DeactivateTenant(c *fiber.Ctx) error {
	id := kernel.NewTenantID(c.Params("id"))

	t, err := th.service.DeactivateTenant(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(t.ToDTO())
}

// GrantMembership vincula um usuário à escola
func (th *TenantHandlers) GrantMembership(c *fiber.Ctx) error {
	var req tenant.GrantMembershipRequest
	if err := c.BodyParser(&req); err != nil || req.UserID.IsEmpty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}

	tenantID := kernel.NewTenantID(c.Params("id"))
	if err := th.service.GrantMembership(c.Context(), tenantID, req.UserID); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Usuário vinculado à escola",
	})
}

// RevokeMembership desfaz o vínculo usuário/escola
func (th *TenantHandlers) RevokeMembership(c *fiber.Ctx) error {
	tenantID := kernel.NewTenantID(c.Params("id"))
	userID := kernel.NewUserID(c.Params("userID"))

	if err := th.service.RevokeMembership(c.Context(), tenantID, userID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Vínculo removido",
	})
}
