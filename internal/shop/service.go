package shop

import (
	"context"
	"errors"

	"github.com/willtrojniak/TabApp/internal/authz"
)

var (
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authorize checks the caller's shop roles. Other shop-scoped services
// depend on this through their own Authorizer interfaces.
func (s *Service) Authorize(ctx context.Context, shopID int, userID string, want authz.Role) error {
	roles, err := s.repo.RolesFor(ctx, shopID, userID)
	if err != nil {
		return err
	}
	if !authz.HasRoles(roles, want) {
		return ErrForbidden
	}
	return nil
}

// PaymentMethods returns the payment methods the shop accepts.
func (s *Service) PaymentMethods(ctx context.Context, shopID int) ([]string, error) {
	d, err := s.repo.GetShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	return d.PaymentMethods, nil
}

// ShopName resolves a shop's display name.
func (s *Service) ShopName(ctx context.Context, shopID int) (string, error) {
	d, err := s.repo.GetShop(ctx, shopID)
	if err != nil {
		return "", err
	}
	return d.Name, nil
}

func validPaymentMethods(methods []string) bool {
	for _, m := range methods {
		if m != PaymentMethodChartstring && m != PaymentMethodInPerson {
			return false
		}
	}
	return len(methods) > 0
}

func (s *Service) CreateShop(ctx context.Context, ownerID string, data ShopCreate) (*Shop, error) {
	if !validPaymentMethods(data.PaymentMethods) {
		return nil, ErrInvalidPaymentMethod
	}

	shop := &Shop{
		OwnerID:        ownerID,
		Name:           data.Name,
		PaymentMethods: data.PaymentMethods,
	}
	if err := s.repo.CreateShop(ctx, shop); err != nil {
		return nil, err
	}
	return shop, nil
}

func (s *Service) GetShop(ctx context.Context, shopID int) (*Detail, error) {
	return s.repo.GetShop(ctx, shopID)
}

func (s *Service) ListShops(ctx context.Context, userID string) ([]Shop, error) {
	return s.repo.ListShopsForUser(ctx, userID)
}

func (s *Service) UpdateShop(ctx context.Context, shopID int, userID string, data ShopCreate) (*Detail, error) {
	d, err := s.repo.GetShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if d.OwnerID != userID {
		return nil, ErrForbidden
	}
	if !validPaymentMethods(data.PaymentMethods) {
		return nil, ErrInvalidPaymentMethod
	}

	d.Name = data.Name
	d.PaymentMethods = data.PaymentMethods
	if err := s.repo.UpdateShop(ctx, &d.Shop); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) DeleteShop(ctx context.Context, shopID int, userID string) error {
	d, err := s.repo.GetShop(ctx, shopID)
	if err != nil {
		return err
	}
	if d.OwnerID != userID {
		return ErrForbidden
	}
	return s.repo.DeleteShop(ctx, shopID)
}

// --------------------------------------------------
// Memberships (owner only)
// --------------------------------------------------
func (s *Service) ListMembers(ctx context.Context, shopID int, userID string) ([]Member, error) {
	if err := s.requireOwner(ctx, shopID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, shopID)
}

func (s *Service) InviteMember(ctx context.Context, shopID int, userID string, data InviteCreate) error {
	if err := s.requireOwner(ctx, shopID, userID); err != nil {
		return err
	}
	// Invites never grant the owner bit.
	roles := data.Roles &^ authz.RoleOwner
	return s.repo.AddMemberByEmail(ctx, shopID, data.Email, roles)
}

func (s *Service) UpdateMemberRoles(ctx context.Context, shopID int, userID, memberID string, roles authz.Role) error {
	if err := s.requireOwner(ctx, shopID, userID); err != nil {
		return err
	}
	return s.repo.UpdateMemberRoles(ctx, shopID, memberID, roles&^authz.RoleOwner)
}

func (s *Service) ConfirmMembership(ctx context.Context, shopID int, userID string) error {
	return s.repo.ConfirmMembership(ctx, shopID, userID)
}

func (s *Service) RemoveMember(ctx context.Context, shopID int, userID, memberID string) error {
	// Members may remove themselves; only the owner removes others.
	if userID != memberID {
		if err := s.requireOwner(ctx, shopID, userID); err != nil {
			return err
		}
	}
	return s.repo.RemoveMember(ctx, shopID, memberID)
}

func (s *Service) requireOwner(ctx context.Context, shopID int, userID string) error {
	d, err := s.repo.GetShop(ctx, shopID)
	if err != nil {
		return err
	}
	if d.OwnerID != userID {
		return ErrForbidden
	}
	return nil
}

// --------------------------------------------------
// Locations
// --------------------------------------------------
func (s *Service) CreateLocation(ctx context.Context, shopID int, userID string, data LocationCreate) (*Location, error) {
	if err := s.Authorize(ctx, shopID, userID, authz.RoleManageLocations); err != nil {
		return nil, err
	}
	l := &Location{ShopID: shopID, Name: data.Name}
	if err := s.repo.CreateLocation(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) UpdateLocation(ctx context.Context, shopID, locationID int, userID string, data LocationCreate) (*Location, error) {
	if err := s.Authorize(ctx, shopID, userID, authz.RoleManageLocations); err != nil {
		return nil, err
	}
	l := &Location{ID: locationID, ShopID: shopID, Name: data.Name}
	if err := s.repo.UpdateLocation(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) DeleteLocation(ctx context.Context, shopID, locationID int, userID string) error {
	if err := s.Authorize(ctx, shopID, userID, authz.RoleManageLocations); err != nil {
		return err
	}
	return s.repo.DeleteLocation(ctx, shopID, locationID)
}
