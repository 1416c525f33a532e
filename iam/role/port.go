package role

import (
	"context"

	"github.com/nexaedu/campus/pkg/kernel"
)

// RoleRepository define o contrato para a persistência de papéis
type RoleRepository interface {
	FindByID(ctx context.Context, id kernel.RoleID) (*Role, error)
	FindByName(ctx context.Context, name string) (*Role, error)
	FindAll(ctx context.Context) ([]*Role, error)
	Save(ctx context.Context, r Role) error
	Delete(ctx context.Context, id kernel.RoleID) error
}

// UserRoleRepository define o contrato para a relação usuário-papel
type UserRoleRepository interface {
	FindRoleNamesByUser(ctx context.Context, userID kernel.UserID) ([]string, error)
	AssignRoleToUser(ctx context.Context, userID kernel.UserID, roleID kernel.RoleID) error
	RemoveRoleFromUser(ctx context.Context, userID kernel.UserID, roleID kernel.RoleID) error
	RemoveAllUserRoles(ctx context.Context, userID kernel.UserID) error
}
