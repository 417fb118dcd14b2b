package catalog

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// --------------------------------------------------
// Items
// --------------------------------------------------
func (r *PostgresRepository) CreateItem(ctx context.Context, shopID int, data ItemCreate) (*Item, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var itemID int
	err = tx.QueryRow(ctx, `
		INSERT INTO items (shop_id, name, base_price)
		VALUES ($1, $2, $3)
		RETURNING id
	`, shopID, data.Name, data.BasePrice).Scan(&itemID)
	if err != nil {
		return nil, err
	}

	if err := setItemRelations(ctx, tx, itemID, data); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return r.GetItem(ctx, shopID, itemID)
}

func (r *PostgresRepository) UpdateItem(ctx context.Context, shopID, itemID int, data ItemCreate) (*Item, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE items SET name = $3, base_price = $4
		WHERE shop_id = $1 AND id = $2
	`, shopID, itemID, data.Name, data.BasePrice)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}

	for _, q := range []string{
		`DELETE FROM category_items WHERE item_id = $1`,
		`DELETE FROM item_substitution_groups WHERE item_id = $1`,
		`DELETE FROM item_addons WHERE item_id = $1`,
	} {
		if _, err := tx.Exec(ctx, q, itemID); err != nil {
			return nil, err
		}
	}

	if err := setItemRelations(ctx, tx, itemID, data); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return r.GetItem(ctx, shopID, itemID)
}

func setItemRelations(ctx context.Context, tx pgx.Tx, itemID int, data ItemCreate) error {
	for i, categoryID := range data.CategoryIDs {
		_, err := tx.Exec(ctx, `
			INSERT INTO category_items (category_id, item_id, position)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING
		`, categoryID, itemID, i)
		if err != nil {
			return err
		}
	}
	for _, groupID := range data.SubstitutionGroupIDs {
		_, err := tx.Exec(ctx, `
			INSERT INTO item_substitution_groups (item_id, group_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, itemID, groupID)
		if err != nil {
			return err
		}
	}
	for _, addonID := range data.AddonIDs {
		_, err := tx.Exec(ctx, `
			INSERT INTO item_addons (item_id, addon_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, itemID, addonID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) GetItem(ctx context.Context, shopID, itemID int) (*Item, error) {
	var item Item
	err := r.db.QueryRow(ctx, `
		SELECT id, name, base_price
		FROM items
		WHERE shop_id = $1 AND id = $2
	`, shopID, itemID).Scan(&item.ID, &item.Name, &item.BasePrice)
	if err != nil {
		return nil, err
	}

	item.Categories = []CategoryRef{}
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.name
		FROM categories c
		JOIN category_items ci ON ci.category_id = c.id
		WHERE ci.item_id = $1
		ORDER BY c.index, c.id
	`, itemID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var ref CategoryRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			rows.Close()
			return nil, err
		}
		item.Categories = append(item.Categories, ref)
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	item.Variants = []Variant{}
	rows, err = r.db.Query(ctx, `
		SELECT id, name, price, index
		FROM item_variants
		WHERE item_id = $1
		ORDER BY index, id
	`, itemID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.ID, &v.Name, &v.Price, &v.Index); err != nil {
			rows.Close()
			return nil, err
		}
		item.Variants = append(item.Variants, v)
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	item.Addons, err = r.scanOverviews(ctx, `
		SELECT i.id, i.name, i.base_price
		FROM items i
		JOIN item_addons ia ON ia.addon_id = i.id
		WHERE ia.item_id = $1
		ORDER BY i.name, i.id
	`, itemID)
	if err != nil {
		return nil, err
	}

	item.SubstitutionGroups = []SubstitutionGroup{}
	rows, err = r.db.Query(ctx, `
		SELECT sg.id, sg.name
		FROM substitution_groups sg
		JOIN item_substitution_groups isg ON isg.group_id = sg.id
		WHERE isg.item_id = $1
		ORDER BY sg.id
	`, itemID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var g SubstitutionGroup
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			rows.Close()
			return nil, err
		}
		item.SubstitutionGroups = append(item.SubstitutionGroups, g)
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	for i := range item.SubstitutionGroups {
		subs, err := r.scanOverviews(ctx, `
			SELECT i.id, i.name, i.base_price
			FROM items i
			JOIN substitution_group_items sgi ON sgi.item_id = i.id
			WHERE sgi.group_id = $1
			ORDER BY sgi.position, i.id
		`, item.SubstitutionGroups[i].ID)
		if err != nil {
			return nil, err
		}
		item.SubstitutionGroups[i].Substitutions = subs
	}

	return &item, nil
}

func (r *PostgresRepository) scanOverviews(ctx context.Context, query string, args ...any) ([]ItemOverview, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []ItemOverview{}
	for rows.Next() {
		var it ItemOverview
		if err := rows.Scan(&it.ID, &it.Name, &it.BasePrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) ListItems(ctx context.Context, shopID int) ([]ItemOverview, error) {
	return r.scanOverviews(ctx, `
		SELECT id, name, base_price
		FROM items
		WHERE shop_id = $1
		ORDER BY name, id
	`, shopID)
}

func (r *PostgresRepository) DeleteItem(ctx context.Context, shopID, itemID int) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM items WHERE shop_id = $1 AND id = $2
	`, shopID, itemID)
	return err
}

// --------------------------------------------------
// Variants
// --------------------------------------------------
func (r *PostgresRepository) CreateVariant(ctx context.Context, shopID, itemID int, data VariantCreate) (*Variant, error) {
	v := Variant{Name: data.Name, Price: data.Price, Index: data.Index}
	err := r.db.QueryRow(ctx, `
		INSERT INTO item_variants (item_id, name, price, index)
		SELECT id, $3, $4, $5 FROM items WHERE shop_id = $1 AND id = $2
		RETURNING id
	`, shopID, itemID, data.Name, data.Price, data.Index).Scan(&v.ID)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *PostgresRepository) UpdateVariant(ctx context.Context, shopID, itemID, variantID int, data VariantCreate) (*Variant, error) {
	v := Variant{ID: variantID, Name: data.Name, Price: data.Price, Index: data.Index}
	tag, err := r.db.Exec(ctx, `
		UPDATE item_variants v SET name = $4, price = $5, index = $6
		FROM items i
		WHERE v.id = $3 AND v.item_id = i.id AND i.shop_id = $1 AND i.id = $2
	`, shopID, itemID, variantID, data.Name, data.Price, data.Index)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}
	return &v, nil
}

func (r *PostgresRepository) DeleteVariant(ctx context.Context, shopID, itemID, variantID int) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM item_variants v
		USING items i
		WHERE v.id = $3 AND v.item_id = i.id AND i.shop_id = $1 AND i.id = $2
	`, shopID, itemID, variantID)
	return err
}

// --------------------------------------------------
// Categories
// --------------------------------------------------
func (r *PostgresRepository) CreateCategory(ctx context.Context, shopID int, data CategoryCreate) (*Category, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var categoryID int
	err = tx.QueryRow(ctx, `
		INSERT INTO categories (shop_id, name, index)
		VALUES ($1, $2, $3)
		RETURNING id
	`, shopID, data.Name, data.Index).Scan(&categoryID)
	if err != nil {
		return nil, err
	}

	if err := setCategoryItems(ctx, tx, categoryID, data.ItemIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return r.getCategory(ctx, shopID, categoryID)
}

func (r *PostgresRepository) UpdateCategory(ctx context.Context, shopID, categoryID int, data CategoryCreate) (*Category, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE categories SET name = $3, index = $4
		WHERE shop_id = $1 AND id = $2
	`, shopID, categoryID, data.Name, data.Index)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}

	if _, err := tx.Exec(ctx, `DELETE FROM category_items WHERE category_id = $1`, categoryID); err != nil {
		return nil, err
	}
	if err := setCategoryItems(ctx, tx, categoryID, data.ItemIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return r.getCategory(ctx, shopID, categoryID)
}

func setCategoryItems(ctx context.Context, tx pgx.Tx, categoryID int, itemIDs []int) error {
	for i, itemID := range itemIDs {
		_, err := tx.Exec(ctx, `
			INSERT INTO category_items (category_id, item_id, position)
			VALUES ($1, $2, $3)
			ON CONFLICT (category_id, item_id) DO UPDATE SET position = EXCLUDED.position
		`, categoryID, itemID, i)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) getCategory(ctx context.Context, shopID, categoryID int) (*Category, error) {
	var cat Category
	err := r.db.QueryRow(ctx, `
		SELECT id, shop_id, name, index
		FROM categories
		WHERE shop_id = $1 AND id = $2
	`, shopID, categoryID).Scan(&cat.ID, &cat.ShopID, &cat.Name, &cat.Index)
	if err != nil {
		return nil, err
	}
	if err := r.fillCategoryItems(ctx, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *PostgresRepository) fillCategoryItems(ctx context.Context, cat *Category) error {
	items, err := r.scanOverviews(ctx, `
		SELECT i.id, i.name, i.base_price
		FROM items i
		JOIN category_items ci ON ci.item_id = i.id
		WHERE ci.category_id = $1
		ORDER BY ci.position, i.id
	`, cat.ID)
	if err != nil {
		return err
	}
	cat.Items = items
	cat.ItemIDs = make([]int, 0, len(items))
	for _, it := range items {
		cat.ItemIDs = append(cat.ItemIDs, it.ID)
	}
	return nil
}

func (r *PostgresRepository) ListCategories(ctx context.Context, shopID int) ([]Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, shop_id, name, index
		FROM categories
		WHERE shop_id = $1
		ORDER BY index, id
	`, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var cat Category
		if err := rows.Scan(&cat.ID, &cat.ShopID, &cat.Name, &cat.Index); err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	rows.Close()

	for i := range categories {
		if err := r.fillCategoryItems(ctx, &categories[i]); err != nil {
			return nil, err
		}
	}
	return categories, nil
}

func (r *PostgresRepository) DeleteCategory(ctx context.Context, shopID, categoryID int) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM categories WHERE shop_id = $1 AND id = $2
	`, shopID, categoryID)
	return err
}

// --------------------------------------------------
// Substitution groups
// --------------------------------------------------
func (r *PostgresRepository) CreateSubstitutionGroup(ctx context.Context, shopID int, data SubstitutionGroupCreate) (*SubstitutionGroup, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var groupID int
	err = tx.QueryRow(ctx, `
		INSERT INTO substitution_groups (shop_id, name)
		VALUES ($1, $2)
		RETURNING id
	`, shopID, data.Name).Scan(&groupID)
	if err != nil {
		return nil, err
	}

	if err := setGroupItems(ctx, tx, groupID, data.SubstitutionItemIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return r.getSubstitutionGroup(ctx, shopID, groupID)
}

func (r *PostgresRepository) UpdateSubstitutionGroup(ctx context.Context, shopID, groupID int, data SubstitutionGroupCreate) (*SubstitutionGroup, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE substitution_groups SET name = $3
		WHERE shop_id = $1 AND id = $2
	`, shopID, groupID, data.Name)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}

	if _, err := tx.Exec(ctx, `DELETE FROM substitution_group_items WHERE group_id = $1`, groupID); err != nil {
		return nil, err
	}
	if err := setGroupItems(ctx, tx, groupID, data.SubstitutionItemIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return r.getSubstitutionGroup(ctx, shopID, groupID)
}

func setGroupItems(ctx context.Context, tx pgx.Tx, groupID int, itemIDs []int) error {
	for i, itemID := range itemIDs {
		_, err := tx.Exec(ctx, `
			INSERT INTO substitution_group_items (group_id, item_id, position)
			VALUES ($1, $2, $3)
			ON CONFLICT (group_id, item_id) DO UPDATE SET position = EXCLUDED.position
		`, groupID, itemID, i)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) getSubstitutionGroup(ctx context.Context, shopID, groupID int) (*SubstitutionGroup, error) {
	var g SubstitutionGroup
	err := r.db.QueryRow(ctx, `
		SELECT id, name
		FROM substitution_groups
		WHERE shop_id = $1 AND id = $2
	`, shopID, groupID).Scan(&g.ID, &g.Name)
	if err != nil {
		return nil, err
	}

	subs, err := r.scanOverviews(ctx, `
		SELECT i.id, i.name, i.base_price
		FROM items i
		JOIN substitution_group_items sgi ON sgi.item_id = i.id
		WHERE sgi.group_id = $1
		ORDER BY sgi.position, i.id
	`, groupID)
	if err != nil {
		return nil, err
	}
	g.Substitutions = subs
	return &g, nil
}

func (r *PostgresRepository) ListSubstitutionGroups(ctx context.Context, shopID int) ([]SubstitutionGroup, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name
		FROM substitution_groups
		WHERE shop_id = $1
		ORDER BY id
	`, shopID)
	if err != nil {
		return nil, err
	}

	groups := []SubstitutionGroup{}
	for rows.Next() {
		var g SubstitutionGroup
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			rows.Close()
			return nil, err
		}
		groups = append(groups, g)
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	for i := range groups {
		subs, err := r.scanOverviews(ctx, `
			SELECT i.id, i.name, i.base_price
			FROM items i
			JOIN substitution_group_items sgi ON sgi.item_id = i.id
			WHERE sgi.group_id = $1
			ORDER BY sgi.position, i.id
		`, groups[i].ID)
		if err != nil {
			return nil, err
		}
		groups[i].Substitutions = subs
	}
	return groups, nil
}

func (r *PostgresRepository) DeleteSubstitutionGroup(ctx context.Context, shopID, groupID int) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM substitution_groups WHERE shop_id = $1 AND id = $2
	`, shopID, groupID)
	return err
}

// --------------------------------------------------
// Pricing lookups (used by the tab service)
// --------------------------------------------------
func (r *PostgresRepository) ItemPrices(ctx context.Context, shopID int, itemIDs []int) (map[int]float64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, base_price
		FROM items
		WHERE shop_id = $1 AND id = ANY($2)
	`, shopID, itemIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prices := make(map[int]float64, len(itemIDs))
	for rows.Next() {
		var id int
		var price float64
		if err := rows.Scan(&id, &price); err != nil {
			return nil, err
		}
		prices[id] = price
	}
	return prices, rows.Err()
}

func (r *PostgresRepository) VariantPrice(ctx context.Context, shopID, itemID, variantID int) (float64, error) {
	var price float64
	err := r.db.QueryRow(ctx, `
		SELECT v.price
		FROM item_variants v
		JOIN items i ON i.id = v.item_id
		WHERE i.shop_id = $1 AND i.id = $2 AND v.id = $3
	`, shopID, itemID, variantID).Scan(&price)
	return price, err
}

