package main

import (
	"log"

	"github.com/nexaedu/campus/iam/auth"
	"github.com/nexaedu/campus/iam/auth/authinfra"
	"github.com/nexaedu/campus/iam/auth/authsrv"
	"github.com/nexaedu/campus/iam/role"
	"github.com/nexaedu/campus/iam/role/roleinfra"
	"github.com/nexaedu/campus/iam/role/rolesrv"
	"github.com/nexaedu/campus/iam/tenant"
	"github.com/nexaedu/campus/iam/tenant/tenantapi"
	"github.com/nexaedu/campus/iam/tenant/tenantinfra"
	"github.com/nexaedu/campus/iam/tenant/tenantsrv"
	"github.com/nexaedu/campus/iam/user"
	"github.com/nexaedu/campus/iam/user/userinfra"
	"github.com/nexaedu/campus/pkg/config"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
)

// Container contém todas as dependências da aplicação
type Container struct {
	// =================================================================
	// CONFIGURATION & INFRASTRUCTURE
	// =================================================================
	Config      *config.Config
	DB          *sqlx.DB
	RedisClient *redis.Client

	// =================================================================
	// IAM - REPOSITORIES
	// =================================================================
	UserRepo       user.UserRepository
	TenantRepo     tenant.TenantRepository
	MembershipRepo tenant.MembershipRepository
	RoleRepo       role.RoleRepository
	UserRoleRepo   role.UserRoleRepository
	LoginAuditRepo auth.LoginAuditRepository

	// =================================================================
	// IAM - SERVICES
	// =================================================================
	PasswordService user.PasswordService
	RoleService     *rolesrv.RoleService
	TenantService   *tenantsrv.TenantService

	// =================================================================
	// AUTH - núcleo de sessão e resolução de escola
	// =================================================================
	SessionStore      auth.SessionStore
	SessionCodec      *auth.SessionCookieCodec
	SessionMiddleware *auth.SessionMiddleware
	RateLimiter       auth.RateLimiter
	Gate              *auth.AuthenticationGate
	LoginCompletion   *auth.LoginCompletionHandler
	TenantResolver    *auth.TenantResolver
	ContextProjector  *auth.ContextProjector
	AccessGuard       *auth.AccessGuard
	AuthHandlers      *auth.AuthHandlers
	TenantHandlers    *tenantapi.TenantHandlers

	// =================================================================
	// MAINTENANCE
	// =================================================================
	AuditMaintenance *authsrv.AuditMaintenance
}

// NewContainer cria um novo contêiner de dependências
func NewContainer(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client) *Container {
	c := &Container{
		Config:      cfg,
		DB:          db,
		RedisClient: redisClient,
	}

	c.initRepositories()
	c.initServices()
	c.initAuthComponents()
	c.initHandlers()
	c.initMaintenance()

	return c
}

func (c *Container) initRepositories() {
	log.Println("  Initializing repositories...")
	c.UserRepo = userinfra.NewPostgresUserRepository(c.DB)
	c.TenantRepo = tenantinfra.NewPostgresTenantRepository(c.DB)
	c.MembershipRepo = tenantinfra.NewPostgresMembershipRepository(c.DB)
	c.RoleRepo = roleinfra.NewPostgresRoleRepository(c.DB)
	c.UserRoleRepo = roleinfra.NewPostgresUserRoleRepository(c.DB)
	c.LoginAuditRepo = authinfra.NewPostgresLoginAuditRepository(c.DB)
}

func (c *Container) initServices() {
	log.Println("  Initializing services...")
	c.PasswordService = authinfra.NewBcryptPasswordService()
	c.RoleService = rolesrv.NewRoleService(c.UserRoleRepo)
	c.TenantService = tenantsrv.NewTenantService(c.TenantRepo, c.MembershipRepo, c.UserRepo)
}

func (c *Container) initAuthComponents() {
	log.Println("  Initializing auth components...")

	sessionCfg := c.Config.Auth.Session

	c.SessionStore = authinfra.NewRedisSessionStore(c.RedisClient, sessionCfg.TTL)
	c.SessionCodec = auth.NewSessionCookieCodec(sessionCfg.SecretKey, sessionCfg.TTL, sessionCfg.Issuer)
	c.SessionMiddleware = auth.NewSessionMiddleware(
		c.SessionStore,
		c.SessionCodec,
		c.UserRepo,
		c.RoleService,
		sessionCfg.CookieName,
		sessionCfg.SecureCookie,
	)

	c.RateLimiter = authinfra.NewRedisRateLimiter(
		c.RedisClient,
		c.Config.Auth.RateLimit.MaxAttempts,
		c.Config.Auth.RateLimit.Window,
	)

	c.TenantResolver = auth.NewTenantResolver(c.MembershipRepo, c.RoleService)
	c.Gate = auth.NewAuthenticationGate(c.UserRepo, c.PasswordService, c.MembershipRepo, c.RoleService)
	c.LoginCompletion = auth.NewLoginCompletionHandler(c.UserRepo, c.TenantResolver)
	c.ContextProjector = auth.NewContextProjector(c.TenantResolver, c.RoleService, c.MembershipRepo, c.TenantRepo)
	c.AccessGuard = auth.NewAccessGuard()
}

func (c *Container) initHandlers() {
	log.Println("  Initializing handlers...")

	c.AuthHandlers = auth.NewAuthHandlers(
		c.Gate,
		c.LoginCompletion,
		c.ContextProjector,
		c.TenantResolver,
		c.AccessGuard,
		c.RateLimiter,
		c.LoginAuditRepo,
		c.UserRepo,
		c.MembershipRepo,
		c.RoleService,
	)

	c.TenantHandlers = tenantapi.NewTenantHandlers(c.TenantService, c.AccessGuard)
}

func (c *Container) initMaintenance() {
	log.Println("  Initializing maintenance jobs...")
	c.AuditMaintenance = authsrv.NewAuditMaintenance(c.LoginAuditRepo, c.Config.Auth.Audit.Retention)
}

// Cleanup libera os recursos do contêiner
func (c *Container) Cleanup() {
	log.Println("Cleaning up container resources...")

	if c.AuditMaintenance != nil {
		c.AuditMaintenance.Stop()
	}

	if c.DB != nil {
		c.DB.Close()
	}

	if c.RedisClient != nil {
		c.RedisClient.Close()
	}
}

// HealthCheck verifica a saúde das dependências externas
func (c *Container) HealthCheck() map[string]bool {
	health := make(map[string]bool)

	if c.DB != nil {
		health["database"] = c.DB.Ping() == nil
	} else {
		health["database"] = false
	}

	if c.RedisClient != nil {
		health["redis"] = c.RedisClient.Ping(c.RedisClient.Context()).Err() == nil
	} else {
		health["redis"] = false
	}

	return health
}
