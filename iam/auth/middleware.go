package auth

import (
	"github.com/Abraxas-365/craftable/errx"
	"github.com/Abraxas-365/craftable/logx"
	"github.com/gofiber/fiber/v2"
	"github.com/nexaedu/campus/iam/user"
	"github.com/nexaedu/campus/pkg/kernel"
)

// SessionMiddleware carrega a sessão no início do request e garante o
// commit em todo caminho de saída, inclusive nos de erro: um vínculo
// calculado durante o request nunca se perde por uma falha posterior no
// pipeline.
type SessionMiddleware struct {
	store      SessionStore
	codec      *SessionCookieCodec
	users      user.UserRepository
	roles      RoleOracle
	cookieName string
	secure     bool
}

// NewSessionMiddleware cria um novo middleware de sessão
func NewSessionMiddleware(store SessionStore, codec *SessionCookieCodec, users user.UserRepository, roles RoleOracle, cookieName string, secure bool) *SessionMiddleware {
	if cookieName == "" {
		cookieName = "campus_sessao"
	}
	return &SessionMiddleware{
		store:      store,
		codec:      codec,
		users:      users,
		roles:      roles,
		cookieName: cookieName,
		secure:     secure,
	}
}

// Handle é a aquisição com escopo da sessão: Load antes do handler, Commit
// garantido depois. Cookie ausente, inválido ou expirado produz sessão
// nova em vez de erro.
func (m *SessionMiddleware) Handle() fiber.Handler {
	return func(c *fiber.Ctx) (handlerErr error) {
		var sid kernel.SessionID
		if raw := c.Cookies(m.cookieName); raw != "" {
			if decoded, err := m.codec.Decode(raw); err == nil {
				sid = decoded
			}
		}

		sess, err := m.store.Load(c.Context(), sid)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": ErrSessionFailure().Error(),
			})
		}

		c.Locals("session", sess)

		// Commit em defer: roda mesmo quando o handler falha ou entra em
		// panic. Um panic segue para o recover de fora depois do descarrego.
		defer func() {
			if sess.IsDestroyed() {
				if err := m.store.Destroy(c.Context(), sess); err != nil {
					logx.Error("Erro ao destruir sessão %s: %v", sess.ID().String(), err)
				}
				m.clearCookie(c)
				return
			}

			if sess.IsDirty() {
				if err := m.store.Commit(c.Context(), sess); err != nil {
					logx.Error("Erro ao persistir sessão %s: %v", sess.ID().String(), err)
					if handlerErr == nil {
						handlerErr = ErrSessionFailure()
					}
				} else if err := m.writeCookie(c, sess.ID()); err != nil {
					logx.Error("Erro ao assinar cookie de sessão: %v", err)
				}
			}
		}()

		handlerErr = c.Next()
		return handlerErr
	}
}

// WithPrincipal carrega o usuário autenticado da sessão, se houver, e o
// deixa disponível para handlers e guards. Sessão anônima segue adiante
// sem principal; quem exige autenticação é o AccessGuard.
func (m *SessionMiddleware) WithPrincipal() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := CurrentSession(c)
		if sess == nil {
			return c.Next()
		}

		userID := sess.UserID()
		if userID.IsEmpty() {
			return c.Next()
		}

		principal, err := m.users.FindByID(c.Context(), userID)
		if err != nil {
			if errx.IsType(err, errx.TypeNotFound) {
				// Usuário removido com sessão viva: invalida a sessão
				sess.MarkDestroyed()
				return c.Next()
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": ErrSessionFailure().Error(),
			})
		}

		if !principal.IsActive {
			sess.MarkDestroyed()
			return c.Next()
		}

		adminGeral, err := m.roles.IsAdminGeral(c.Context(), principal.ID)
		if err != nil {
			return err
		}

		c.Locals("principal", principal)
		// Contexto de autenticação do request: snapshot do principal e do
		// vínculo durável na entrada. Uma resolução durante o request muda a
		// sessão, não este snapshot.
		c.Locals(string(kernel.AuthContextKey), &kernel.AuthContext{
			UserID:     principal.ID,
			TenantID:   sess.BoundTenant(),
			AdminGeral: adminGeral,
			Email:      principal.Email,
			Name:       principal.Name,
		})
		return c.Next()
	}
}

func (m *SessionMiddleware) writeCookie(c *fiber.Ctx, id kernel.SessionID) error {
	signed, err := m.codec.Encode(id)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     m.cookieName,
		Value:    signed,
		MaxAge:   int(m.codec.TTL().Seconds()),
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: "Lax",
	})
	return nil
}

func (m *SessionMiddleware) clearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     m.cookieName,
		Value:    "",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: "Lax",
	})
}

// CurrentSession extrai a sessão do request corrente
func CurrentSession(c *fiber.Ctx) *Session {
	sess, _ := c.Locals("session").(*Session)
	return sess
}

// CurrentPrincipal extrai o usuário autenticado do request corrente
func CurrentPrincipal(c *fiber.Ctx) (*user.User, bool) {
	principal, ok := c.Locals("principal").(*user.User)
	return principal, ok && principal != nil
}

// CurrentAuthContext extrai o contexto de autenticação do request corrente
func CurrentAuthContext(c *fiber.Ctx) (*kernel.AuthContext, bool) {
	authCtx, ok := c.Locals(string(kernel.AuthContextKey)).(*kernel.AuthContext)
	return authCtx, ok && authCtx != nil
}
