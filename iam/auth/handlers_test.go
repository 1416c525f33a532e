package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Abraxas-365/craftable/errx/errxfiber"
	"github.com/Abraxas-365/craftable/storex"
	"github.com/gofiber/fiber/v2"
	"github.com/nexaedu/campus/pkg/kernel"
)

// fakeSessionStore guarda sessões em memória, com a mesma semântica do
// store em Redis: id desconhecido produz sessão nova, commit remove a
// chave antiga de uma rotação.
type fakeSessionStore struct {
	sessions map[kernel.SessionID]map[string]string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[kernel.SessionID]map[string]string)}
}

func (s *fakeSessionStore) Load(_ context.Context, id kernel.SessionID) (*Session, error) {
	if id.IsEmpty() {
		return NewEmptySession(), nil
	}
	values, ok := s.sessions[id]
	if !ok {
		return NewEmptySession(), nil
	}
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return NewSession(id, copied), nil
}

func (s *fakeSessionStore) Commit(_ context.Context, sess *Session) error {
	if stale := sess.StaleID(); !stale.IsEmpty() {
		delete(s.sessions, stale)
	}
	copied := make(map[string]string, len(sess.Values()))
	for k, v := range sess.Values() {
		copied[k] = v
	}
	s.sessions[sess.ID()] = copied
	sess.ClearDirty()
	return nil
}

func (s *fakeSessionStore) Destroy(_ context.Context, sess *Session) error {
	delete(s.sessions, sess.ID())
	if stale := sess.StaleID(); !stale.IsEmpty() {
		delete(s.sessions, stale)
	}
	return nil
}

type fakeRateLimiter struct {
	blocked bool
	resets  []string
}

func (l *fakeRateLimiter) Allow(_ context.Context, _ string) (bool, error) {
	return !l.blocked, nil
}

func (l *fakeRateLimiter) Reset(_ context.Context, key string) error {
	l.resets = append(l.resets, key)
	return nil
}

type fakeLoginAudit struct {
	attempts []LoginAttempt
}

func (a *fakeLoginAudit) Save(_ context.Context, attempt LoginAttempt) error {
	a.attempts = append(a.attempts, attempt)
	return nil
}

func (a *fakeLoginAudit) List(_ context.Context, req LoginAuditListRequest) (storex.Paginated[LoginAttempt], error) {
	return storex.NewPaginated(a.attempts, len(a.attempts), req.Page, req.PageSize), nil
}

func (a *fakeLoginAudit) DeleteOlderThan(_ context.Context, before time.Time) (int64, error) {
	kept := a.attempts[:0]
	var deleted int64
	for _, at := range a.attempts {
		if at.CreatedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, at)
	}
	a.attempts = kept
	return deleted, nil
}

type apiFixture struct {
	app         *fiber.App
	users       *fakeUserRepo
	memberships *fakeMembershipRepo
	roles       *fakeRoleOracle
	tenants     *fakeTenantRepo
	store       *fakeSessionStore
	limiter     *fakeRateLimiter
	audit       *fakeLoginAudit
}

func newAPIFixture() *apiFixture {
	f := &apiFixture{
		users:       newFakeUserRepo(),
		memberships: newFakeMembershipRepo(),
		roles:       newFakeRoleOracle(),
		tenants:     newFakeTenantRepo(),
		store:       newFakeSessionStore(),
		limiter:     &fakeRateLimiter{},
		audit:       &fakeLoginAudit{},
	}

	resolver := NewTenantResolver(f.memberships, f.roles)
	gate := NewAuthenticationGate(f.users, fakePasswordService{}, f.memberships, f.roles)
	completion := NewLoginCompletionHandler(f.users, resolver)
	projector := NewContextProjector(resolver, f.roles, f.memberships, f.tenants)
	guard := NewAccessGuard()
	codec := NewSessionCookieCodec(testSecret, time.Hour, "campus")
	middleware := NewSessionMiddleware(f.store, codec, f.users, f.roles, "campus_sessao", false)

	handlers := NewAuthHandlers(
		gate, completion, projector, resolver, guard,
		f.limiter, f.audit, f.users, f.memberships, f.roles,
	)

	app := fiber.New(fiber.Config{ErrorHandler: errxfiber.FiberErrorHandler()})
	app.Use(middleware.Handle())
	app.Use(middleware.WithPrincipal())
	handlers.RegisterRoutes(app)

	f.app = app
	return f
}

func (f *apiFixture) request(t *testing.T, method, target, body, cookie string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := f.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	return resp
}

func sessionCookie(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == "campus_sessao" && c.Value != "" {
			return c.Name + "=" + c.Value
		}
	}
	return ""
}

func decodePayload(t *testing.T, resp *http.Response) *ContextPayload {
	t.Helper()
	var payload ContextPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return &payload
}

func TestLoginRoundTrip(t *testing.T) {
	f := newAPIFixture()
	u := addUser(f.users, "u1", "maria@x.com", "12345678900", "s3nha", true)
	a := escola("esc-a", "Escola A")
	f.memberships.grant(u.ID, a)
	f.tenants.tenants[a.ID] = a

	resp := f.request(t, "POST", "/auth/login", `{"identificador":"maria@x.com","senha":"s3nha"}`, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}

	cookie := sessionCookie(resp)
	if cookie == "" {
		t.Fatal("login should set the session cookie")
	}

	payload := decodePayload(t, resp)
	if payload.User == nil || payload.User.ID != u.ID {
		t.Fatalf("payload.User = %v", payload.User)
	}
	if payload.TenantID != a.ID {
		t.Fatalf("escola_id = %q, want %q", payload.TenantID, a.ID)
	}

	// O vínculo sobrevive ao round-trip: request novo só com o cookie
	resp = f.request(t, "GET", "/auth/contexto", "", cookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("contexto status = %d", resp.StatusCode)
	}
	payload = decodePayload(t, resp)
	if payload.User == nil || payload.TenantID != a.ID {
		t.Fatalf("context after round-trip: user=%v escola=%q", payload.User, payload.TenantID)
	}
}

func TestLoginFailureIsGeneric(t *testing.T) {
	f := newAPIFixture()
	addUser(f.users, "inativo", "inativo@x.com", "22233344455", "s3nha", false)

	cases := []string{
		`{"identificador":"naoexiste@x.com","senha":"s3nha"}`,
		`{"identificador":"inativo@x.com","senha":"s3nha"}`,
		`{"identificador":"inativo@x.com","senha":"errada"}`,
	}

	var bodies []string
	for _, body := range cases {
		resp := f.request(t, "POST", "/auth/login", body, "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", resp.StatusCode)
		}
		raw, _ := io.ReadAll(resp.Body)
		bodies = append(bodies, string(raw))
	}

	// A resposta não pode distinguir conta inexistente, inativa ou senha
	// errada; a razão real fica na auditoria.
	for _, b := range bodies[1:] {
		if b != bodies[0] {
			t.Fatalf("login failure bodies differ: %q vs %q", bodies[0], b)
		}
	}
	if len(f.audit.attempts) != len(cases) {
		t.Fatalf("audit attempts = %d, want %d", len(f.audit.attempts), len(cases))
	}
	if f.audit.attempts[0].Reason != string(ReasonInvalidCredentials) {
		t.Fatalf("audit reason = %q", f.audit.attempts[0].Reason)
	}
	if f.audit.attempts[1].Reason != string(ReasonInactiveAccount) {
		t.Fatalf("audit reason = %q", f.audit.attempts[1].Reason)
	}
}

func TestLoginRateLimited(t *testing.T) {
	f := newAPIFixture()
	f.limiter.blocked = true

	resp := f.request(t, "POST", "/auth/login", `{"identificador":"x@x.com","senha":"s"}`, "")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
}

func TestLoginRotatesSessionID(t *testing.T) {
	f := newAPIFixture()
	u := addUser(f.users, "u1", "maria@x.com", "12345678900", "s3nha", true)
	f.memberships.grant(u.ID, escola("esc-a", "Escola A"))

	first := f.request(t, "GET", "/auth/contexto", "", "")
	anonCookie := sessionCookie(first)

	login := f.request(t, "POST", "/auth/login", `{"identificador":"maria@x.com","senha":"s3nha"}`, anonCookie)
	authCookie := sessionCookie(login)

	if authCookie == "" || authCookie == anonCookie {
		t.Fatal("login must rotate the session identifier")
	}
}

func TestContextAnonymous(t *testing.T) {
	f := newAPIFixture()

	resp := f.request(t, "GET", "/auth/contexto", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	raw, _ := io.ReadAll(resp.Body)
	var generic map[string]json.RawMessage
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(generic["user"]) != "null" {
		t.Fatalf(`user = %s, want null`, generic["user"])
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	f := newAPIFixture()
	u := addUser(f.users, "u1", "maria@x.com", "12345678900", "s3nha", true)
	f.memberships.grant(u.ID, escola("esc-a", "Escola A"))

	login := f.request(t, "POST", "/auth/login", `{"identificador":"maria@x.com","senha":"s3nha"}`, "")
	cookie := sessionCookie(login)

	logout := f.request(t, "POST", "/auth/logout", "", cookie)
	if logout.StatusCode != http.StatusOK {
		t.Fatalf("logout status = %d", logout.StatusCode)
	}
	if len(f.store.sessions) != 0 {
		t.Fatalf("sessions remaining after logout: %d", len(f.store.sessions))
	}

	// Cookie antigo não autentica mais
	resp := f.request(t, "GET", "/auth/contexto", "", cookie)
	payload := decodePayload(t, resp)
	if payload.User != nil {
		t.Fatal("old cookie should not resolve to a principal after logout")
	}
}

func TestSwitchTenant(t *testing.T) {
	f := newAPIFixture()
	u := addUser(f.users, "u1", "maria@x.com", "12345678900", "s3nha", true)
	a := escola("esc-a", "Escola A")
	b := escola("esc-b", "Escola B")
	f.memberships.grant(u.ID, a)
	f.memberships.grant(u.ID, b)
	f.tenants.tenants[a.ID] = a
	f.tenants.tenants[b.ID] = b

	login := f.request(t, "POST", "/auth/login", `{"identificador":"maria@x.com","senha":"s3nha","escola_id":"esc-a"}`, "")
	cookie := sessionCookie(login)
	if payload := decodePayload(t, login); payload.TenantID != a.ID {
		t.Fatalf("escola after login = %q, want %q", payload.TenantID, a.ID)
	}

	resp := f.request(t, "POST", "/auth/escola", `{"escola_id":"esc-b"}`, cookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("switch status = %d", resp.StatusCode)
	}
	if payload := decodePayload(t, resp); payload.TenantID != b.ID {
		t.Fatalf("escola after switch = %q, want %q", payload.TenantID, b.ID)
	}

	// Escola alheia é recusada sem trocar o vínculo
	resp = f.request(t, "POST", "/auth/escola", `{"escola_id":"esc-z"}`, cookie)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign switch status = %d, want 403", resp.StatusCode)
	}
}

func TestSwitchTenantRequiresAuthentication(t *testing.T) {
	f := newAPIFixture()

	resp := f.request(t, "POST", "/auth/escola", `{"escola_id":"esc-a"}`, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestLookupTenantsNeverDisclosesAccounts(t *testing.T) {
	f := newAPIFixture()
	u := addUser(f.users, "u1", "maria@x.com", "12345678900", "s3nha", true)
	f.memberships.grant(u.ID, escola("esc-a", "Escola A"))

	// CPF conhecido: lista as escolas
	resp := f.request(t, "GET", "/auth/escolas?cpf=123.456.789-00", "", "")
	var known TenantLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&known); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(known.Escolas) != 1 {
		t.Fatalf("escolas = %v", known.Escolas)
	}

	// CPF desconhecido: mesma forma de resposta, lista vazia, 200
	resp = f.request(t, "GET", "/auth/escolas?cpf=999.999.999-99", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unknown cpf status = %d, want 200", resp.StatusCode)
	}
	var unknown TenantLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&unknown); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(unknown.Escolas) != 0 || unknown.AdminGeral {
		t.Fatalf("unknown cpf response = %+v", unknown)
	}
}

func TestAuditRouteRequiresAdminGeral(t *testing.T) {
	f := newAPIFixture()
	u := addUser(f.users, "u1", "maria@x.com", "12345678900", "s3nha", true)
	f.memberships.grant(u.ID, escola("esc-a", "Escola A"))

	if resp := f.request(t, "GET", "/auth/auditoria", "", ""); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want 401", resp.StatusCode)
	}

	login := f.request(t, "POST", "/auth/login", `{"identificador":"maria@x.com","senha":"s3nha"}`, "")
	cookie := sessionCookie(login)

	resp := f.request(t, "GET", "/auth/auditoria", "", cookie)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}

	admin := addUser(f.users, "admin", "admin@x.com", "99988877766", "s3nha", true)
	f.roles.admins[admin.ID] = true

	adminLogin := f.request(t, "POST", "/auth/login", `{"identificador":"admin@x.com","senha":"s3nha"}`, "")
	adminCookie := sessionCookie(adminLogin)

	resp = f.request(t, "GET", "/auth/auditoria", "", adminCookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin audit status = %d, want 200", resp.StatusCode)
	}
}

func TestDeactivatedPrincipalLosesSession(t *testing.T) {
	f := newAPIFixture()
	u := addUser(f.users, "u1", "maria@x.com", "12345678900", "s3nha", true)
	f.memberships.grant(u.ID, escola("esc-a", "Escola A"))

	login := f.request(t, "POST", "/auth/login", `{"identificador":"maria@x.com","senha":"s3nha"}`, "")
	cookie := sessionCookie(login)

	// Conta desativada com sessão viva: o próximo request volta anônimo
	u.IsActive = false

	resp := f.request(t, "GET", "/auth/contexto", "", cookie)
	payload := decodePayload(t, resp)
	if payload.User != nil {
		t.Fatal("deactivated account should not keep an authenticated session")
	}
}
