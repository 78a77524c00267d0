// Package postgres provides a PostgreSQL expense store.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const expenseColumns = "id, amount, category, description, date, created_at"

// Config holds the PostgreSQL store configuration.
type Config struct {
	URL string
	// MaxConns caps the pool size. Zero means 10.
	MaxConns int32
}

// Store keeps expenses in a PostgreSQL table.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var _ storage.Store = (*Store)(nil)

// New connects, migrates the schema and returns a ready store.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxConns == 0 {
		cfg.MaxConns = 10
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if err := runMigrations(cfg.URL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Info("connected to PostgreSQL",
		"host", poolConfig.ConnConfig.Host,
		"database", poolConfig.ConnConfig.Database,
		"max_conns", cfg.MaxConns,
	)

	return &Store{pool: pool, logger: logger}, nil
}

func runMigrations(url string) error {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return fmt.Errorf("create pgx driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Insert(ctx context.Context, f core.ExpenseFields) (core.Expense, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO expenses (amount, category, description, date)
		 VALUES ($1, $2, $3, $4) RETURNING `+expenseColumns,
		f.Amount, f.Category, f.Description, f.Date.Time)
	e, err := scanExpense(row)
	if err != nil {
		return core.Expense{}, fmt.Errorf("inserting expense: %w", err)
	}
	return e, nil
}

func (s *Store) Get(ctx context.Context, id int64) (core.Expense, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id)
	e, err := scanExpense(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("getting expense %d: %w", id, err)
	}
	return e, nil
}

func (s *Store) Scan(ctx context.Context, filter core.Filter) ([]core.Expense, error) {
	var (
		conds []string
		args  []any
	)
	if filter.HasCategory() {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From.Time)
		conds = append(conds, fmt.Sprintf("date >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To.Time)
		conds = append(conds, fmt.Sprintf("date <= $%d", len(args)))
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	return s.query(ctx, query, args...)
}

func (s *Store) All(ctx context.Context) ([]core.Expense, error) {
	return s.query(ctx, `SELECT `+expenseColumns+` FROM expenses`)
}

func (s *Store) Update(ctx context.Context, id int64, f core.ExpenseFields) (core.Expense, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE expenses SET amount = $1, category = $2, description = $3, date = $4
		 WHERE id = $5 RETURNING `+expenseColumns,
		f.Amount, f.Category, f.Description, f.Date.Time, id)
	e, err := scanExpense(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("updating expense %d: %w", id, err)
	}
	return e, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting expense %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating expenses: %w", err)
	}
	return out, nil
}

func scanExpense(row pgx.Row) (core.Expense, error) {
	var (
		e         core.Expense
		date      time.Time
		createdAt time.Time
	)
	if err := row.Scan(&e.ID, &e.Amount, &e.Category, &e.Description, &date, &createdAt); err != nil {
		return core.Expense{}, err
	}
	e.Date = core.NewDate(date.Year(), int(date.Month()), date.Day())
	e.CreatedAt = createdAt.UTC()
	return e, nil
}
