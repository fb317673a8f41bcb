// Command catalog-import loads product dump files into the document store.
// Each dump is a gzip-compressed JSON array of products. Product ids already
// seen, in earlier files or earlier in the same file, are suppressed with a
// bloom filter.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/parvej/showcase/internal/domain/catalog"
	"github.com/parvej/showcase/internal/remotestore"
	"github.com/parvej/showcase/internal/remotestore/postgres"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
	progressEvery = 1_000
)

type productDump struct {
	ID           string          `json:"id"`
	CollectionID string          `json:"collectionId"`
	Title        string          `json:"title"`
	Price        decimal.Decimal `json:"price"`
	Details      string          `json:"details"`
	Link         string          `json:"link"`
	Tags         []string        `json:"tags"`
	Images       []string        `json:"images"`
	ShopName     string          `json:"shopName"`
}

func main() {
	var databaseURL string
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if flag.NArg() == 0 {
		slog.Error("at least one dump file is required (products.json.gz ...)")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, flag.Args()); err != nil {
		slog.Error("catalog import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog import completed successfully")
}

func run(ctx context.Context, databaseURL string, files []string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	store := postgres.New(pool)
	seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)

	var total, skipped uint64
	for _, f := range files {
		n, dup, err := importFile(ctx, store, seen, f)
		if err != nil {
			return errors.Wrapf(err, "import %s", f)
		}
		total += n
		skipped += dup
		slog.Info("file imported",
			slog.String("file", f),
			slog.Uint64("inserted", n),
			slog.Uint64("duplicates", dup),
		)
	}

	slog.Info("import summary", slog.Uint64("inserted", total), slog.Uint64("duplicates", skipped))
	return nil
}

// importFile streams one gzipped JSON array and inserts each new product.
func importFile(ctx context.Context, store *postgres.Store, seen *bloom.BloomFilter, path string) (inserted, duplicates uint64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	dec := json.NewDecoder(gz)
	if err := expectDelim(dec, '['); err != nil {
		return 0, 0, err
	}

	for dec.More() {
		if err := ctx.Err(); err != nil {
			return inserted, duplicates, err
		}

		var p productDump
		if err := dec.Decode(&p); err != nil {
			return inserted, duplicates, errors.Wrap(err, "decode product")
		}

		if p.ID != "" {
			if seen.TestString(p.ID) {
				duplicates++
				continue
			}
			seen.AddString(p.ID)
		}

		if _, err := store.Create(ctx, catalog.ProductsRemote, p.ID, productFields(p)); err != nil {
			return inserted, duplicates, errors.Wrapf(err, "insert product %s", p.ID)
		}

		inserted++
		if inserted%progressEvery == 0 {
			slog.Info("import progress", slog.String("file", path), slog.Uint64("inserted", inserted))
		}
	}

	if err := expectDelim(dec, ']'); err != nil {
		return inserted, duplicates, err
	}
	return inserted, duplicates, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Wrap(err, "read JSON token")
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return errors.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// productFields maps a dump entry onto the document field layout the server
// reads back: tags and images stored as JSON-array-encoded strings.
func productFields(p productDump) remotestore.Record {
	return remotestore.Record{
		"collectionId": p.CollectionID,
		"title":        p.Title,
		"price":        p.Price.InexactFloat64(),
		"details":      p.Details,
		"link":         p.Link,
		"tags":         catalog.EncodeStrings(p.Tags),
		"images":       catalog.EncodeStrings(p.Images),
		"shopName":     p.ShopName,
	}
}
