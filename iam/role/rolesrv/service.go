package rolesrv

import (
	"context"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/nexaedu/campus/iam/role"
	"github.com/nexaedu/campus/pkg/kernel"
)

// RoleService concentra as consultas de papéis. É a única implementação de
// "é Administrador Geral?": nenhum outro módulo compara nomes de papel
// diretamente.
type RoleService struct {
	userRoleRepo role.UserRoleRepository
}

// NewRoleService cria uma nova instância do serviço de papéis
func NewRoleService(userRoleRepo role.UserRoleRepository) *RoleService {
	return &RoleService{
		userRoleRepo: userRoleRepo,
	}
}

// IsAdminGeral verifica se o usuário possui a capacidade de Administrador
// Geral, consultando o conjunto de nomes reconhecidos
func (s *RoleService) IsAdminGeral(ctx context.Context, userID kernel.UserID) (bool, error) {
	names, err := s.userRoleRepo.FindRoleNamesByUser(ctx, userID)
	if err != nil {
		return false, errx.Wrap(err, "failed to load user roles", errx.TypeInternal).
			WithDetail("user_id", userID.String())
	}

	for _, name := range names {
		if role.GrantsAdminGeral(name) {
			return true, nil
		}
	}
	return false, nil
}

// RolesOf retorna os nomes de papéis do usuário para o payload de contexto
func (s *RoleService) RolesOf(ctx context.Context, userID kernel.UserID) ([]string, error) {
	names, err := s.userRoleRepo.FindRoleNamesByUser(ctx, userID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to load user roles", errx.TypeInternal).
			WithDetail("user_id", userID.String())
	}
	return names, nil
}
