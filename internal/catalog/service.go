package catalog

import (
	"context"

	"github.com/willtrojniak/TabApp/internal/authz"
)

// Authorizer resolves shop role checks; implemented by the shop service.
type Authorizer interface {
	Authorize(ctx context.Context, shopID int, userID string, want authz.Role) error
}

type Service struct {
	repo  Repository
	authz Authorizer
}

func NewService(repo Repository, authz Authorizer) *Service {
	return &Service{repo: repo, authz: authz}
}

// Reads are open to any authenticated user; the catalog doubles as the
// public menu. Mutations require the manage-items role.

func (s *Service) ListItems(ctx context.Context, shopID int) ([]ItemOverview, error) {
	return s.repo.ListItems(ctx, shopID)
}

func (s *Service) GetItem(ctx context.Context, shopID, itemID int) (*Item, error) {
	return s.repo.GetItem(ctx, shopID, itemID)
}

func (s *Service) CreateItem(ctx context.Context, shopID int, userID string, data ItemCreate) (*Item, error) {
	if err := s.authz.Authorize(ctx, shopID, userID, authz.RoleManageItems); err != nil {
		return nil, err
	}
	return s.repo.CreateItem(ctx, shopID, data)
}

func (s *Service) UpdateItem(ctx context.Context, shopID, itemID int, userID string, data ItemCreate) (*Item, error) {
	if err := s.authz.Authorize(ctx, shopID, userID, authz.RoleManageItems); err != nil {
		return nil, err
	}
	return s.repo.UpdateItem(ctx, shopID, itemID, data)
}

func (s *Service) DeleteItem(ctx context.Context, shopID, itemID int, userID string) error {
	if err := s.authz.Authorize(ctx, shopID, userID, authz.RoleManageItems); err != nil {
		return err
	}
	return s.repo.DeleteItem(ctx, shopID, itemID)
}

func (s *Service) CreateVariant(ctx context.Context, shopID, itemID int, userID string, data VariantCreate) (*Variant, error) {
	if err := s.authz.Authorize(ctx, shopID, userID, authz.RoleManageItems); err != nil {
		return nil, err
	}
	return s.repo.CreateVariant(ctx, shopID, itemID, data)
}

func (s *Service) UpdateVariant(ctx context.Context, shopID, itemID, variantID int, userID string, data VariantCreate) (*Variant, error) {
	if err := s.authz.Authorize(ctx, shopID, userID, authz.RoleManageItems); err != nil {
		return nil, err
	}
	return s.repo.UpdateVariant(ctx, shopID, itemID, variantID, data)
}

func (s *Service) DeleteVariant(ctx context.Context, shopID, itemID, variantID int, userID string) error {
	if err := s.authz.Authorize(ctx, shopID, userID, authz.RoleManageItems); err != nil {
		return err
	}
	return s.repo.DeleteVariant(ctx, shopID, itemID, variantID)
}

func (s *Service) ListCategories(ctx context.Context, shopID int) ([]Category, error) {
	return s.repo.ListCategories(ctx, shopID)
}

func (s *Service) CreateCategory(ctx context.Context, shopID int, userID string, data CategoryCreate) (*Category, error) {
	if err := s.authz.Authorize(ctx, shopID, userID, authz.RoleManageItems); err != nil {
		return nil, err
	}
	return s.repo.CreateCategory(ctx, shopID, data)
}

func (s *Service) UpdateCategory(ctx context.Context, shopID, categoryID int, userID string, data CategoryCreate) (*Category, error) {
	if err := s.authz.Authorize(ctx, shopID, userID, authz.RoleManageItems); err != nil {
		return nil, err
	}
	return s.repo.UpdateCategory(ctx, shopID, categoryID, data)
}

func (s *Service) DeleteCategory(ctx context.Context, shopID, categoryID int, userID string) error {
	if err := s.authz.Authorize(ctx, shopID, userID, authz.RoleManageItems); err != nil {
		return err
	}
	return s.repo.DeleteCategory(ctx, shopID, categoryID)
}

func (s *Service) ListSubstitutionGroups(ctx context.Context, shopID int) ([]SubstitutionGroup, error) {
	return s.repo.ListSubstitutionGroups(ctx, shopID)
}

func (s *Service) CreateSubstitutionGroup(ctx context.Context, shopID int, userID string, data SubstitutionGroupCreate) (*SubstitutionGroup, error) {
	if err := s.authz.Authorize(ctx, shopID, userID, authz.RoleManageItems); err != nil {
		return nil, err
	}
	return s.repo.CreateSubstitutionGroup(ctx, shopID, data)
}

func (s *Service) UpdateSubstitutionGroup(ctx context.Context, shopID, groupID int, userID string, data SubstitutionGroupCreate) (*SubstitutionGroup, error) {
	if err := s.authz.Authorize(ctx, shopID, userID, authz.RoleManageItems); err != nil {
		return nil, err
	}
	return s.repo.UpdateSubstitutionGroup(ctx, shopID, groupID, data)
}

func (s *Service) DeleteSubstitutionGroup(ctx context.Context, shopID, groupID int, userID string) error {
	if err := s.authz.Authorize(ctx, shopID, userID, authz.RoleManageItems); err != nil {
		return err
	}
	return s.repo.DeleteSubstitutionGroup(ctx, shopID, groupID)
}

// --------------------------------------------------
// Lookups for the tab service
// --------------------------------------------------
func (s *Service) ItemPrices(ctx context.Context, shopID int, itemIDs []int) (map[int]float64, error) {
	return s.repo.ItemPrices(ctx, shopID, itemIDs)
}

func (s *Service) VariantPrice(ctx context.Context, shopID, itemID, variantID int) (float64, error) {
	return s.repo.VariantPrice(ctx, shopID, itemID, variantID)
}
