package shop

import (
	"context"

	"github.com/willtrojniak/TabApp/internal/authz"
)

// Repository defines all database operations for shops,
// memberships and locations
type Repository interface {
	CreateShop(ctx context.Context, s *Shop) error
	GetShop(ctx context.Context, id int) (*Detail, error)
	ListShopsForUser(ctx context.Context, userID string) ([]Shop, error)
	UpdateShop(ctx context.Context, s *Shop) error
	DeleteShop(ctx context.Context, id int) error

	ListMembers(ctx context.Context, shopID int) ([]Member, error)
	AddMemberByEmail(ctx context.Context, shopID int, email string, roles authz.Role) error
	UpdateMemberRoles(ctx context.Context, shopID int, userID string, roles authz.Role) error
	ConfirmMembership(ctx context.Context, shopID int, userID string) error
	RemoveMember(ctx context.Context, shopID int, userID string) error

	// RolesFor resolves the effective role bitmask for a user, including
	// the owner bit when the user owns the shop. Unknown users get 0.
	RolesFor(ctx context.Context, shopID int, userID string) (authz.Role, error)

	CreateLocation(ctx context.Context, l *Location) error
	UpdateLocation(ctx context.Context, l *Location) error
	DeleteLocation(ctx context.Context, shopID, locationID int) error
}
