package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaStatements 可重複執行；座位狀態與持有者的一致性交給 CHECK 約束
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id              UUID PRIMARY KEY,
		name            TEXT NOT NULL,
		total_seats     INTEGER NOT NULL CHECK (total_seats >= 0),
		sale_start_time TIMESTAMPTZ NOT NULL,
		is_active       BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS seats (
		id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		event_id    UUID NOT NULL REFERENCES events(id),
		section     TEXT NOT NULL,
		row_number  TEXT NOT NULL,
		seat_number TEXT NOT NULL,
		status      TEXT NOT NULL DEFAULT 'Available'
		            CHECK (status IN ('Available', 'Reserved', 'Sold')),
		user_id     UUID REFERENCES users(id),
		reserved_at TIMESTAMPTZ,
		version     BIGINT NOT NULL DEFAULT 0,
		CONSTRAINT seats_holder_matches_status
			CHECK ((status = 'Available') = (user_id IS NULL)),
		CONSTRAINT seats_position_unique
			UNIQUE (event_id, section, row_number, seat_number)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_seats_event_status ON seats (event_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_seats_user ON seats (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_seats_reserved_at ON seats (reserved_at) WHERE status = 'Reserved'`,
	`CREATE TABLE IF NOT EXISTS orders (
		id             UUID PRIMARY KEY,
		user_id        UUID NOT NULL REFERENCES users(id),
		total_amount   NUMERIC(18, 2) NOT NULL,
		payment_status TEXT NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders (user_id, created_at DESC)`,
}

// EnsureSchema 建立所需資料表與索引
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
