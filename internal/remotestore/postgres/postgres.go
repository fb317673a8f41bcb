// Package postgres implements the document store client on PostgreSQL: one
// JSONB documents table keyed by (collection, id), insertion order preserved
// through the created_at timestamp.
package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/parvej/showcase/db"
	"github.com/parvej/showcase/internal/remotestore"
)

// productsCollection matches catalog.ProductsRemote without importing the
// domain layer from the storage layer.
const productsCollection = "products"

// NewPool creates a pgxpool.Pool configured with shopspring/decimal support
// for NUMERIC columns.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parsing database config")
	}

	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "creating connection pool")
	}
	return pool, nil
}

// RunMigrations executes the embedded DDL schema against the pool.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, db.Schema); err != nil {
		return errors.Wrap(err, "running migrations")
	}
	return nil
}

const (
	listSQL = `SELECT id, data FROM documents
		WHERE collection = $1 ORDER BY created_at, id`

	createSQL = `INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3) RETURNING id, data`

	updateSQL = `UPDATE documents SET data = $3, updated_at = now()
		WHERE collection = $1 AND id = $2 RETURNING id, data`

	deleteSQL = `DELETE FROM documents WHERE collection = $1 AND id = $2`

	priceBoundsSQL = `SELECT min((data ->> 'price')::numeric),
		max((data ->> 'price')::numeric)
		FROM documents WHERE collection = $1`
)

var _ remotestore.Client = (*Store)(nil)

// Store is a remotestore.Client backed by the documents table.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store that uses the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) List(ctx context.Context, collection string) ([]remotestore.Record, error) {
	rows, err := s.pool.Query(ctx, listSQL, collection)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", collection)
	}
	return pgx.CollectRows(rows, scanRecord)
}

func (s *Store) Create(ctx context.Context, collection, id string, fields remotestore.Record) (remotestore.Record, error) {
	if id == remotestore.AutoID {
		id = uuid.NewString()
	}

	rows, err := s.pool.Query(ctx, createSQL, collection, id, dataFields(fields))
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s/%s", collection, id)
	}
	rec, err := pgx.CollectExactlyOneRow(rows, scanRecord)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s/%s", collection, id)
	}
	return rec, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields remotestore.Record) (remotestore.Record, error) {
	rows, err := s.pool.Query(ctx, updateSQL, collection, id, dataFields(fields))
	if err != nil {
		return nil, errors.Wrapf(err, "updating %s/%s", collection, id)
	}
	rec, err := pgx.CollectExactlyOneRow(rows, scanRecord)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, remotestore.ErrNotFound
		}
		return nil, errors.Wrapf(err, "updating %s/%s", collection, id)
	}
	return rec, nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	tag, err := s.pool.Exec(ctx, deleteSQL, collection, id)
	if err != nil {
		return errors.Wrapf(err, "deleting %s/%s", collection, id)
	}
	if tag.RowsAffected() == 0 {
		return remotestore.ErrNotFound
	}
	return nil
}

// PriceBounds returns the lowest and highest product price as NUMERIC
// aggregates over the documents table. remotestore.ErrNotFound means the
// store holds no products yet.
func (s *Store) PriceBounds(ctx context.Context) (min, max decimal.Decimal, err error) {
	var lo, hi *decimal.Decimal
	row := s.pool.QueryRow(ctx, priceBoundsSQL, productsCollection)
	if err := row.Scan(&lo, &hi); err != nil {
		return decimal.Zero, decimal.Zero, errors.Wrap(err, "querying price bounds")
	}
	if lo == nil || hi == nil {
		return decimal.Zero, decimal.Zero, remotestore.ErrNotFound
	}
	return *lo, *hi, nil
}

func scanRecord(row pgx.CollectableRow) (remotestore.Record, error) {
	var (
		id   string
		data map[string]any
	)
	if err := row.Scan(&id, &data); err != nil {
		return nil, err
	}

	rec := make(remotestore.Record, len(data)+1)
	for k, v := range data {
		rec[k] = v
	}
	rec["id"] = id
	return rec, nil
}

// dataFields strips the id key: the identifier lives in its own column.
func dataFields(fields remotestore.Record) map[string]any {
	data := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == "id" {
			continue
		}
		data[k] = v
	}
	return data
}
