package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/karstmaps/threewords/internal/models"
)

// Database is the subset of pgxpool.Pool the repository relies on.
// Narrowing it to two methods keeps the repository mockable.
type Database interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Repository persists sites and their resolution state.
type Repository struct {
	db  Database
	log *slog.Logger
}

// Interface lists the repository operations the resolver service consumes.
type Interface interface {
	FetchSitesMissingCoordinates(ctx context.Context, limit int) ([]models.Site, error)
	FetchSitesMissingWords(ctx context.Context, limit int) ([]models.Site, error)
	UpdateSiteCoordinates(ctx context.Context, siteID int, point models.Coordinates) error
	UpdateSiteWords(ctx context.Context, siteID int, words string) error
	IncrementFailureCount(ctx context.Context, siteID int, errMsg string) error
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}

// NewDatabase opens a pgx connection pool and verifies it with a ping.
func NewDatabase(ctx context.Context, host, port, user, password, name string) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, password, host, port, name)

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
