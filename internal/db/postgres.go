package db

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func ConnectPostgres() *pgxpool.Pool {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		log.Fatal(err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		log.Fatal(err)
	}

	if err := db.Ping(context.Background()); err != nil {
		log.Fatal("Postgres connection failed:", err)
	}

	log.Println("✅ Connected to PostgreSQL")

	// Initialize schema
	if err := initSchema(db); err != nil {
		log.Fatal("Failed to initialize schema:", err)
	}

	return db
}

// initSchema creates or updates the database schema
func initSchema(db *pgxpool.Pool) error {
	ctx := context.Background()

	// -------------------------------
	// USERS
	// -------------------------------
	userTableSQL := `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			preferred_name VARCHAR(64) NOT NULL DEFAULT '',
			password VARCHAR(255) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := db.Exec(ctx, userTableSQL); err != nil {
		return err
	}

	// -------------------------------
	// SHOPS & MEMBERSHIPS
	// -------------------------------
	shopTablesSQL := `
		CREATE TABLE IF NOT EXISTS shops (
			id SERIAL PRIMARY KEY,
			owner_id UUID NOT NULL REFERENCES users(id),
			name VARCHAR(64) NOT NULL,
			payment_methods TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS shop_users (
			shop_id INT NOT NULL REFERENCES shops(id) ON DELETE CASCADE,
			user_id UUID NOT NULL REFERENCES users(id),
			roles INT NOT NULL DEFAULT 0,
			confirmed BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (shop_id, user_id)
		);

		CREATE TABLE IF NOT EXISTS locations (
			id SERIAL PRIMARY KEY,
			shop_id INT NOT NULL REFERENCES shops(id) ON DELETE CASCADE,
			name VARCHAR(64) NOT NULL
		);
	`
	if _, err := db.Exec(ctx, shopTablesSQL); err != nil {
		return err
	}

	// -------------------------------
	// CATALOG
	// -------------------------------
	catalogTablesSQL := `
		CREATE TABLE IF NOT EXISTS items (
			id SERIAL PRIMARY KEY,
			shop_id INT NOT NULL REFERENCES shops(id) ON DELETE CASCADE,
			name VARCHAR(64) NOT NULL,
			base_price NUMERIC(10,2) NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS item_variants (
			id SERIAL PRIMARY KEY,
			item_id INT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
			name VARCHAR(64) NOT NULL,
			price NUMERIC(10,2) NOT NULL DEFAULT 0,
			index INT NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS categories (
			id SERIAL PRIMARY KEY,
			shop_id INT NOT NULL REFERENCES shops(id) ON DELETE CASCADE,
			name VARCHAR(64) NOT NULL,
			index INT NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS category_items (
			category_id INT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
			item_id INT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
			position INT NOT NULL DEFAULT 0,
			PRIMARY KEY (category_id, item_id)
		);

		CREATE TABLE IF NOT EXISTS substitution_groups (
			id SERIAL PRIMARY KEY,
			shop_id INT NOT NULL REFERENCES shops(id) ON DELETE CASCADE,
			name VARCHAR(64) NOT NULL
		);

		CREATE TABLE IF NOT EXISTS substitution_group_items (
			group_id INT NOT NULL REFERENCES substitution_groups(id) ON DELETE CASCADE,
			item_id INT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
			position INT NOT NULL DEFAULT 0,
			PRIMARY KEY (group_id, item_id)
		);

		CREATE TABLE IF NOT EXISTS item_substitution_groups (
			item_id INT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
			group_id INT NOT NULL REFERENCES substitution_groups(id) ON DELETE CASCADE,
			PRIMARY KEY (item_id, group_id)
		);

		CREATE TABLE IF NOT EXISTS item_addons (
			item_id INT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
			addon_id INT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
			PRIMARY KEY (item_id, addon_id)
		);
	`
	if _, err := db.Exec(ctx, catalogTablesSQL); err != nil {
		return err
	}

	// -------------------------------
	// TABS & BILLS
	// -------------------------------
	tabTablesSQL := `
		CREATE TABLE IF NOT EXISTS tabs (
			id SERIAL PRIMARY KEY,
			shop_id INT NOT NULL REFERENCES shops(id) ON DELETE CASCADE,
			owner_id UUID NOT NULL REFERENCES users(id),
			display_name VARCHAR(64) NOT NULL,
			organization VARCHAR(64) NOT NULL,
			payment_method VARCHAR(32) NOT NULL,
			payment_details VARCHAR(64) NOT NULL DEFAULT '',
			billing_interval_days INT NOT NULL,
			start_date DATE NOT NULL,
			end_date DATE NOT NULL,
			daily_start_time VARCHAR(5) NOT NULL,
			daily_end_time VARCHAR(5) NOT NULL,
			active_days_of_wk INT NOT NULL DEFAULT 0,
			dollar_limit_per_order NUMERIC(10,2) NOT NULL DEFAULT 0,
			verification_method VARCHAR(32) NOT NULL,
			verification_list TEXT[] NOT NULL DEFAULT '{}',
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			pending_updates JSONB,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS tab_locations (
			tab_id INT NOT NULL REFERENCES tabs(id) ON DELETE CASCADE,
			location_id INT NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
			PRIMARY KEY (tab_id, location_id)
		);

		CREATE TABLE IF NOT EXISTS bills (
			id SERIAL PRIMARY KEY,
			tab_id INT NOT NULL REFERENCES tabs(id) ON DELETE CASCADE,
			start_date DATE NOT NULL,
			end_date DATE NOT NULL,
			is_paid BOOLEAN NOT NULL DEFAULT FALSE,
			UNIQUE (tab_id, start_date)
		);

		CREATE TABLE IF NOT EXISTS bill_items (
			bill_id INT NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
			item_id INT NOT NULL REFERENCES items(id),
			quantity INT NOT NULL DEFAULT 0,
			PRIMARY KEY (bill_id, item_id)
		);

		CREATE TABLE IF NOT EXISTS bill_item_variants (
			bill_id INT NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
			item_id INT NOT NULL REFERENCES items(id),
			variant_id INT NOT NULL REFERENCES item_variants(id),
			quantity INT NOT NULL DEFAULT 0,
			PRIMARY KEY (bill_id, item_id, variant_id)
		);
	`
	if _, err := db.Exec(ctx, tabTablesSQL); err != nil {
		return err
	}

	log.Println("✅ Schema initialized successfully")
	return nil
}
