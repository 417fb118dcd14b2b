package shop

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/willtrojniak/TabApp/internal/authz"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// --------------------------------------------------
// Shops
// --------------------------------------------------
func (r *PostgresRepository) CreateShop(ctx context.Context, s *Shop) error {
	query := `
		INSERT INTO shops (owner_id, name, payment_methods)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	return r.db.QueryRow(
		ctx,
		query,
		s.OwnerID,
		s.Name,
		s.PaymentMethods,
	).Scan(&s.ID, &s.CreatedAt)
}

func (r *PostgresRepository) GetShop(ctx context.Context, id int) (*Detail, error) {
	query := `
		SELECT id, owner_id, name, payment_methods, created_at
		FROM shops
		WHERE id = $1
	`

	var d Detail
	err := r.db.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.OwnerID,
		&d.Name,
		&d.PaymentMethods,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, shop_id, name
		FROM locations
		WHERE shop_id = $1
		ORDER BY id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	d.Locations = []Location{}
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.ShopID, &l.Name); err != nil {
			return nil, err
		}
		d.Locations = append(d.Locations, l)
	}

	return &d, rows.Err()
}

func (r *PostgresRepository) ListShopsForUser(ctx context.Context, userID string) ([]Shop, error) {
	query := `
		SELECT DISTINCT s.id, s.owner_id, s.name, s.payment_methods, s.created_at
		FROM shops s
		LEFT JOIN shop_users su ON su.shop_id = s.id
		WHERE s.owner_id = $1 OR su.user_id = $1
		ORDER BY s.id
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shops := []Shop{}
	for rows.Next() {
		var s Shop
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Name, &s.PaymentMethods, &s.CreatedAt); err != nil {
			return nil, err
		}
		shops = append(shops, s)
	}

	return shops, rows.Err()
}

func (r *PostgresRepository) UpdateShop(ctx context.Context, s *Shop) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE shops
		SET name = $2, payment_methods = $3
		WHERE id = $1
	`, s.ID, s.Name, s.PaymentMethods)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PostgresRepository) DeleteShop(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM shops WHERE id = $1`, id)
	return err
}

// --------------------------------------------------
// Memberships
// --------------------------------------------------
func (r *PostgresRepository) ListMembers(ctx context.Context, shopID int) ([]Member, error) {
	query := `
		SELECT su.user_id, u.name, u.email, u.preferred_name,
		       su.roles, su.confirmed, su.created_at, su.updated_at
		FROM shop_users su
		JOIN users u ON u.id = su.user_id
		WHERE su.shop_id = $1
		ORDER BY su.created_at
	`

	rows, err := r.db.Query(ctx, query, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []Member{}
	for rows.Next() {
		var m Member
		if err := rows.Scan(
			&m.UserID,
			&m.Name,
			&m.Email,
			&m.PreferredName,
			&m.Roles,
			&m.Confirmed,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		members = append(members, m)
	}

	return members, rows.Err()
}

func (r *PostgresRepository) AddMemberByEmail(ctx context.Context, shopID int, email string, roles authz.Role) error {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO shop_users (shop_id, user_id, roles)
		SELECT $1, id, $3 FROM users WHERE email = $2
		ON CONFLICT (shop_id, user_id) DO UPDATE
		SET roles = EXCLUDED.roles, updated_at = CURRENT_TIMESTAMP
	`, shopID, email, roles)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("no account with that email")
	}
	return nil
}

func (r *PostgresRepository) UpdateMemberRoles(ctx context.Context, shopID int, userID string, roles authz.Role) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE shop_users
		SET roles = $3, updated_at = CURRENT_TIMESTAMP
		WHERE shop_id = $1 AND user_id = $2
	`, shopID, userID, roles)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PostgresRepository) ConfirmMembership(ctx context.Context, shopID int, userID string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE shop_users
		SET confirmed = TRUE, updated_at = CURRENT_TIMESTAMP
		WHERE shop_id = $1 AND user_id = $2
	`, shopID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PostgresRepository) RemoveMember(ctx context.Context, shopID int, userID string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM shop_users WHERE shop_id = $1 AND user_id = $2
	`, shopID, userID)
	return err
}

func (r *PostgresRepository) RolesFor(ctx context.Context, shopID int, userID string) (authz.Role, error) {
	query := `
		SELECT
			CASE WHEN s.owner_id = $2 THEN su.roles | $3 ELSE su.roles END
		FROM shops s
		LEFT JOIN shop_users su ON su.shop_id = s.id AND su.user_id = $2
		WHERE s.id = $1
	`

	var roles *authz.Role
	if err := r.db.QueryRow(ctx, query, shopID, userID, authz.RoleOwner).Scan(&roles); err != nil {
		return 0, err
	}
	if roles == nil {
		// Not a member; still may be the owner with no membership row.
		var ownerID string
		if err := r.db.QueryRow(ctx, `SELECT owner_id FROM shops WHERE id = $1`, shopID).Scan(&ownerID); err != nil {
			return 0, err
		}
		if ownerID == userID {
			return authz.RoleOwner, nil
		}
		return 0, nil
	}
	return *roles, nil
}

// --------------------------------------------------
// Locations
// --------------------------------------------------
func (r *PostgresRepository) CreateLocation(ctx context.Context, l *Location) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO locations (shop_id, name)
		VALUES ($1, $2)
		RETURNING id
	`, l.ShopID, l.Name).Scan(&l.ID)
}

func (r *PostgresRepository) UpdateLocation(ctx context.Context, l *Location) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE locations SET name = $3
		WHERE shop_id = $1 AND id = $2
	`, l.ShopID, l.ID, l.Name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PostgresRepository) DeleteLocation(ctx context.Context, shopID, locationID int) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM locations WHERE shop_id = $1 AND id = $2
	`, shopID, locationID)
	return err
}
