package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'user_role') THEN
			CREATE TYPE user_role AS ENUM ('admin', 'sales', 'customer');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'quotation_status') THEN
			CREATE TYPE quotation_status AS ENUM ('pending', 'approved', 'in_progress');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role user_role NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_users_email ON users (email);`,
	`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role user_role NOT NULL,
		email VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions (expires_at);`,
	`CREATE TABLE IF NOT EXISTS customers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		phone VARCHAR(64),
		address TEXT,
		sales_executive_id UUID NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_customers_email_sales ON customers (email, sales_executive_id);`,
	`CREATE INDEX IF NOT EXISTS idx_customers_sales ON customers (sales_executive_id);`,
	`CREATE TABLE IF NOT EXISTS quotations (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		quotation_number VARCHAR(32) NOT NULL,
		customer_id UUID NOT NULL REFERENCES customers(id),
		sales_executive_id UUID NOT NULL REFERENCES users(id),
		quotation_date VARCHAR(16) NOT NULL,
		items JSONB NOT NULL DEFAULT '[]'::jsonb,
		pricing JSONB NOT NULL DEFAULT '{}'::jsonb,
		terms JSONB NOT NULL DEFAULT '[]'::jsonb,
		status quotation_status NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_quotations_number ON quotations (quotation_number);`,
	`CREATE INDEX IF NOT EXISTS idx_quotations_customer ON quotations (customer_id);`,
	`CREATE INDEX IF NOT EXISTS idx_quotations_sales ON quotations (sales_executive_id);`,
	`CREATE INDEX IF NOT EXISTS idx_quotations_status ON quotations (status);`,
	`CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		item_no VARCHAR(64),
		name VARCHAR(255) NOT NULL,
		product_id VARCHAR(64),
		short_text TEXT,
		product_group VARCHAR(128),
		price NUMERIC(18,2) NOT NULL DEFAULT 0,
		supplier VARCHAR(255),
		store VARCHAR(255),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_products_product_group ON products (product_group);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
