package store

import (
	"database/sql"
	"errors"
	"log/slog"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// ErrDuplicate is returned when a write violates a uniqueness
// constraint (delivery date, renewal per subscription+delivery).
var ErrDuplicate = errors.New("store: duplicate")

type Store struct {
	DB *sql.DB
}

func NewStore(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	// SQLite allows one writer; renewal generation writes in bulk so
	// serialize access instead of surfacing SQLITE_BUSY to callers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return nil, err
	}

	return &Store{DB: db}, nil
}

// InitSchema creates the full schema. Used by the CLI and tests;
// the server runs the migrations directory instead.
func (s *Store) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS coffees (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		status TEXT DEFAULT 'in_stock',
		image_url TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS deliveries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		delivery_date DATE NOT NULL UNIQUE,
		type TEXT NOT NULL DEFAULT 'NORMAL',
		coffee1_id INTEGER REFERENCES coffees(id),
		coffee2_id INTEGER REFERENCES coffees(id),
		coffee3_id INTEGER REFERENCES coffees(id),
		coffee4_id INTEGER REFERENCES coffees(id),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS subscriptions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'NOT_STARTED',
		frequency TEXT NOT NULL,
		quantity250 INTEGER NOT NULL DEFAULT 0,
		quantity500 INTEGER NOT NULL DEFAULT 0,
		quantity1200 INTEGER NOT NULL DEFAULT 0,
		shipping_type TEXT NOT NULL DEFAULT 'SHIP',
		special_request TEXT NOT NULL DEFAULT 'NONE',
		recipient_name TEXT DEFAULT '',
		recipient_email TEXT DEFAULT '',
		recipient_mobile TEXT DEFAULT '',
		recipient_street1 TEXT DEFAULT '',
		recipient_street2 TEXT DEFAULT '',
		recipient_postcode TEXT DEFAULT '',
		recipient_city TEXT DEFAULT '',
		recipient_country TEXT DEFAULT 'NO',
		internal_note TEXT DEFAULT '',
		webshop_subscription_id INTEGER,
		next_payment_date DATE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		subscription_id INTEGER REFERENCES subscriptions(id),
		delivery_id INTEGER NOT NULL REFERENCES deliveries(id),
		type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'ACTIVE',
		shipping_type TEXT NOT NULL DEFAULT 'SHIP',
		quantity250 INTEGER NOT NULL DEFAULT 0,
		quantity500 INTEGER NOT NULL DEFAULT 0,
		quantity1200 INTEGER NOT NULL DEFAULT 0,
		name TEXT DEFAULT '',
		email TEXT DEFAULT '',
		mobile TEXT DEFAULT '',
		street1 TEXT DEFAULT '',
		street2 TEXT DEFAULT '',
		postcode TEXT DEFAULT '',
		city TEXT DEFAULT '',
		country TEXT DEFAULT 'NO',
		customer_note TEXT DEFAULT '',
		internal_note TEXT DEFAULT '',
		webshop_order_id INTEGER,
		tracking_url TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- One renewal order per subscription per delivery.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_renewal_dedup
		ON orders(subscription_id, delivery_id) WHERE type = 'RENEWAL';

	CREATE TABLE IF NOT EXISTS order_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		coffee_id INTEGER NOT NULL REFERENCES coffees(id),
		variation TEXT NOT NULL DEFAULT '250',
		quantity INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL
	);
	`
	_, err := s.DB.Exec(query)
	if err != nil {
		slog.Error("Error creating schema", "error", err)
		return err
	}
	return nil
}
