package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/Mariosyian/marketplace/internal/domain"
)

// Invoice is the proof-of-purchase record kept after a successful checkout.
type Invoice struct {
	InvoiceID     string
	CustomerEmail string
	Lines         []domain.LineItem
	ItemTotal     float64
	Shipping      float64
	OrderTotal    float64
	CreatedAt     time.Time
}

// Repository archives invoices in Postgres. The archive is best-effort from
// the purchase path's point of view: a failed insert is logged by the
// caller, never surfaced to the buyer.
type Repository struct {
	db *sql.DB
}

func NewRepository(dsn string) (*Repository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (r *Repository) SaveInvoice(ctx context.Context, inv *Invoice) error {
	lines, err := json.Marshal(inv.Lines)
	if err != nil {
		return fmt.Errorf("failed to marshal invoice lines: %w", err)
	}

	query := `
		INSERT INTO invoices (invoice_id, customer_email, lines, item_total, shipping, order_total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.db.ExecContext(ctx, query,
		inv.InvoiceID, inv.CustomerEmail, lines,
		inv.ItemTotal, inv.Shipping, inv.OrderTotal, inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}

	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
