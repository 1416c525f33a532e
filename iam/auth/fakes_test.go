package auth

import (
	"context"
	"time"

	"github.com/Abraxas-365/craftable/storex"
	"github.com/nexaedu/campus/iam/tenant"
	"github.com/nexaedu/campus/iam/user"
	"github.com/nexaedu/campus/pkg/kernel"
)

// Fakes em memória para os testes do pacote. Sem goroutines: os testes são
// sequenciais e os mapas não precisam de lock.

type fakeUserRepo struct {
	users       map[kernel.UserID]*user.User
	stamped     []kernel.UserID
	stampErr    error
	lastLoginAt time.Time
}

func newFakeUserRepo(users ...*user.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[kernel.UserID]*user.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) FindByID(_ context.Context, id kernel.UserID) (*user.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, user.ErrUserNotFound()
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound()
}

func (r *fakeUserRepo) FindByCPF(_ context.Context, cpf string) (*user.User, error) {
	for _, u := range r.users {
		if u.CPF == cpf {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound()
}

func (r *fakeUserRepo) Save(_ context.Context, u user.User) error {
	r.users[u.ID] = &u
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id kernel.UserID) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) StampLastLogin(_ context.Context, id kernel.UserID) error {
	if r.stampErr != nil {
		return r.stampErr
	}
	r.stamped = append(r.stamped, id)
	r.lastLoginAt = time.Now()
	return nil
}

type fakeMembershipRepo struct {
	// tenants por usuário, na ordem de inserção
	byUser   map[kernel.UserID][]*tenant.Tenant
	countErr error
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{byUser: make(map[kernel.UserID][]*tenant.Tenant)}
}

func (r *fakeMembershipRepo) grant(userID kernel.UserID, t *tenant.Tenant) {
	r.byUser[userID] = append(r.byUser[userID], t)
}

func (r *fakeMembershipRepo) revoke(userID kernel.UserID, tenantID kernel.TenantID) {
	kept := r.byUser[userID][:0]
	for _, t := range r.byUser[userID] {
		if t.ID != tenantID {
			kept = append(kept, t)
		}
	}
	r.byUser[userID] = kept
}

func (r *fakeMembershipRepo) IsMember(_ context.Context, userID kernel.UserID, tenantID kernel.TenantID) (bool, error) {
	for _, t := range r.byUser[userID] {
		if t.ID == tenantID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMembershipRepo) ListTenants(_ context.Context, userID kernel.UserID) ([]*tenant.Tenant, error) {
	return r.byUser[userID], nil
}

func (r *fakeMembershipRepo) CountTenants(_ context.Context, userID kernel.UserID) (int, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	return len(r.byUser[userID]), nil
}

func (r *fakeMembershipRepo) AddMember(_ context.Context, userID kernel.UserID, tenantID kernel.TenantID) error {
	r.grant(userID, &tenant.Tenant{ID: tenantID, Name: tenantID.String(), Code: tenantID.String(), IsActive: true})
	return nil
}

func (r *fakeMembershipRepo) RemoveMember(_ context.Context, userID kernel.UserID, tenantID kernel.TenantID) error {
	r.revoke(userID, tenantID)
	return nil
}

type fakeRoleOracle struct {
	admins map[kernel.UserID]bool
	roles  map[kernel.UserID][]string
}

func newFakeRoleOracle() *fakeRoleOracle {
	return &fakeRoleOracle{
		admins: make(map[kernel.UserID]bool),
		roles:  make(map[kernel.UserID][]string),
	}
}

func (o *fakeRoleOracle) IsAdminGeral(_ context.Context, userID kernel.UserID) (bool, error) {
	return o.admins[userID], nil
}

func (o *fakeRoleOracle) RolesOf(_ context.Context, userID kernel.UserID) ([]string, error) {
	return o.roles[userID], nil
}

// fakePasswordService compara em texto puro; o hash nos testes é a própria
// senha.
type fakePasswordService struct{}

func (fakePasswordService) HashPassword(password string) (string, error) { return password, nil }

func (fakePasswordService) VerifyPassword(hashedPassword, password string) bool {
	return hashedPassword == password
}

type fakeTenantRepo struct {
	tenants map[kernel.TenantID]*tenant.Tenant
}

func newFakeTenantRepo(tenants ...*tenant.Tenant) *fakeTenantRepo {
	r := &fakeTenantRepo{tenants: make(map[kernel.TenantID]*tenant.Tenant)}
	for _, t := range tenants {
		r.tenants[t.ID] = t
	}
	return r
}

func (r *fakeTenantRepo) FindByID(_ context.Context, id kernel.TenantID) (*tenant.Tenant, error) {
	if t, ok := r.tenants[id]; ok {
		return t, nil
	}
	return nil, tenant.ErrTenantNotFound()
}

func (r *fakeTenantRepo) FindByCode(_ context.Context, code string) (*tenant.Tenant, error) {
	for _, t := range r.tenants {
		if t.Code == code {
			return t, nil
		}
	}
	return nil, tenant.ErrTenantNotFound()
}

func (r *fakeTenantRepo) List(_ context.Context, req tenant.ListTenantsRequest) (storex.Paginated[tenant.Tenant], error) {
	items := make([]tenant.Tenant, 0, len(r.tenants))
	for _, t := range r.tenants {
		items = append(items, *t)
	}
	return storex.NewPaginated(items, len(items), req.Page, req.PageSize), nil
}

func (r *fakeTenantRepo) Save(_ context.Context, t tenant.Tenant) error {
	r.tenants[t.ID] = &t
	return nil
}

func (r *fakeTenantRepo) Delete(_ context.Context, id kernel.TenantID) error {
	delete(r.tenants, id)
	return nil
}

func (r *fakeTenantRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	_, err := r.FindByCode(context.Background(), code)
	return err == nil, nil
}

// Escolas e usuários de apoio

func escola(id, name string) *tenant.Tenant {
	return &tenant.Tenant{
		ID:       kernel.NewTenantID(id),
		Name:     name,
		Code:     id,
		IsActive: true,
	}
}

func usuario(id, name string) *user.User {
	return &user.User{
		ID:       kernel.NewUserID(id),
		Name:     name,
		Email:    id + "@example.com",
		IsActive: true,
	}
}
