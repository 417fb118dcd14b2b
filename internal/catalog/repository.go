package catalog

import "context"

// Repository defines all database operations for the catalog
type Repository interface {
	CreateItem(ctx context.Context, shopID int, data ItemCreate) (*Item, error)
	GetItem(ctx context.Context, shopID, itemID int) (*Item, error)
	ListItems(ctx context.Context, shopID int) ([]ItemOverview, error)
	UpdateItem(ctx context.Context, shopID, itemID int, data ItemCreate) (*Item, error)
	DeleteItem(ctx context.Context, shopID, itemID int) error

	CreateVariant(ctx context.Context, shopID, itemID int, data VariantCreate) (*Variant, error)
	UpdateVariant(ctx context.Context, shopID, itemID, variantID int, data VariantCreate) (*Variant, error)
	DeleteVariant(ctx context.Context, shopID, itemID, variantID int) error

	CreateCategory(ctx context.Context, shopID int, data CategoryCreate) (*Category, error)
	ListCategories(ctx context.Context, shopID int) ([]Category, error)
	UpdateCategory(ctx context.Context, shopID, categoryID int, data CategoryCreate) (*Category, error)
	DeleteCategory(ctx context.Context, shopID, categoryID int) error

	CreateSubstitutionGroup(ctx context.Context, shopID int, data SubstitutionGroupCreate) (*SubstitutionGroup, error)
	ListSubstitutionGroups(ctx context.Context, shopID int) ([]SubstitutionGroup, error)
	UpdateSubstitutionGroup(ctx context.Context, shopID, groupID int, data SubstitutionGroupCreate) (*SubstitutionGroup, error)
	DeleteSubstitutionGroup(ctx context.Context, shopID, groupID int) error

	// ItemPrices returns base prices for the given shop items. Missing
	// ids are absent from the map.
	ItemPrices(ctx context.Context, shopID int, itemIDs []int) (map[int]float64, error)

	// VariantPrice returns the price of a variant belonging to the item.
	VariantPrice(ctx context.Context, shopID, itemID, variantID int) (float64, error)
}
