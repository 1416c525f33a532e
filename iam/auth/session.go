package auth

import (
	"github.com/google/uuid"
	"github.com/nexaedu/campus/pkg/kernel"
)

// ============================================================================
// Session - estado por request do navegador
// ============================================================================

// Chaves reservadas da sessão. O vínculo de escola é uma pequena máquina
// de estados: Unbound -> Pending(escola) -> Bound(escola). Pending é
// limpado na transição para Bound e nunca ressuscita.
const (
	sessionKeyUserID        = "user_id"
	sessionKeyBoundTenant   = "escola_id"
	sessionKeyPendingTenant = "escola_id_pendente"
)

// BindingState é o estado do vínculo de escola de uma sessão
type BindingState int

const (
	BindingUnbound BindingState = iota
	BindingPending
	BindingBound
)

// Session é o valor mutável da sessão durante um request. Nenhum componente
// guarda referência além do request: o middleware carrega, os componentes
// leem/escrevem pelas chaves e o middleware descarrega no final.
type Session struct {
	id        kernel.SessionID
	values    map[string]string
	dirty     bool
	destroyed bool
	staleID   kernel.SessionID // id anterior após rotação, para limpeza
}

// NewSession materializa uma sessão a partir do armazenamento. Usado pelas
// implementações de SessionStore; valores nil produzem uma sessão vazia.
func NewSession(id kernel.SessionID, values map[string]string) *Session {
	if values == nil {
		values = make(map[string]string)
	}
	return &Session{id: id, values: values}
}

// NewEmptySession cria uma sessão nova com identificador aleatório
func NewEmptySession() *Session {
	return &Session{
		id:     kernel.NewSessionID(uuid.NewString()),
		values: make(map[string]string),
		dirty:  true,
	}
}

// ID retorna o identificador atual da sessão
func (s *Session) ID() kernel.SessionID { return s.id }

// Get lê um valor da sessão
func (s *Session) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Put grava um valor na sessão. Gravar o valor já presente é no-op, o que
// mantém o commit idempotente entre requests concorrentes da mesma sessão.
func (s *Session) Put(key, value string) {
	if cur, ok := s.values[key]; ok && cur == value {
		return
	}
	s.values[key] = value
	s.dirty = true
}

// Forget remove um valor da sessão
func (s *Session) Forget(key string) {
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	s.dirty = true
}

// Regenerate rotaciona o identificador da sessão preservando os valores.
// Feito em todo login bem-sucedido, antes do commit do vínculo durável: a
// seleção pendente sobrevive à rotação porque viaja junto com os valores.
func (s *Session) Regenerate() {
	if s.staleID.IsEmpty() {
		s.staleID = s.id
	}
	s.id = kernel.NewSessionID(uuid.NewString())
	s.dirty = true
}

// MarkDestroyed marca a sessão para destruição no commit
func (s *Session) MarkDestroyed() {
	s.destroyed = true
	s.dirty = true
}

// Values retorna os valores correntes; usado pelas implementações de
// SessionStore na persistência.
func (s *Session) Values() map[string]string { return s.values }

// IsDirty indica se há mudanças a persistir
func (s *Session) IsDirty() bool { return s.dirty }

// IsDestroyed indica se a sessão foi destruída neste request
func (s *Session) IsDestroyed() bool { return s.destroyed }

// StaleID retorna o identificador antigo após uma rotação, vazio se não
// houve rotação neste request
func (s *Session) StaleID() kernel.SessionID { return s.staleID }

// ClearDirty limpa a marca de mudança após um commit bem-sucedido
func (s *Session) ClearDirty() {
	s.dirty = false
	s.staleID = ""
}

// ============================================================================
// Acessores tipados - usuário e máquina de estados do vínculo
// ============================================================================

// UserID retorna o usuário autenticado da sessão, vazio se anônima
func (s *Session) UserID() kernel.UserID {
	v, _ := s.Get(sessionKeyUserID)
	return kernel.NewUserID(v)
}

// SetUserID vincula o usuário autenticado à sessão
func (s *Session) SetUserID(id kernel.UserID) {
	s.Put(sessionKeyUserID, id.String())
}

// BoundTenant retorna o vínculo durável de escola, vazio se não houver
func (s *Session) BoundTenant() kernel.TenantID {
	v, _ := s.Get(sessionKeyBoundTenant)
	return kernel.NewTenantID(v)
}

// BindTenant grava o vínculo durável e limpa a seleção pendente. Só o
// resolvedor chama este método, sempre depois de validar o vínculo contra
// os memberships correntes.
func (s *Session) BindTenant(id kernel.TenantID) {
	s.Put(sessionKeyBoundTenant, id.String())
	s.Forget(sessionKeyPendingTenant)
}

// ClearTenantBinding remove o vínculo durável
func (s *Session) ClearTenantBinding() {
	s.Forget(sessionKeyBoundTenant)
}

// PendingTenant retorna a seleção pendente de escola, vazia se não houver
func (s *Session) PendingTenant() kernel.TenantID {
	v, _ := s.Get(sessionKeyPendingTenant)
	return kernel.NewTenantID(v)
}

// SetPendingTenant grava a seleção transitória feita no login, ainda não
// promovida a vínculo durável
func (s *Session) SetPendingTenant(id kernel.TenantID) {
	s.Put(sessionKeyPendingTenant, id.String())
}

// ClearPendingTenant descarta a seleção pendente
func (s *Session) ClearPendingTenant() {
	s.Forget(sessionKeyPendingTenant)
}

// BindingState retorna o estado corrente da máquina de estados do vínculo
func (s *Session) BindingState() BindingState {
	if !s.BoundTenant().IsEmpty() {
		return BindingBound
	}
	if !s.PendingTenant().IsEmpty() {
		return BindingPending
	}
	return BindingUnbound
}
