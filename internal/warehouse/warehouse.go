package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// Table names of the warehouse schema.
const (
	TableRaw            = "csr_raw"
	TableCategories     = "sr_categories"
	TableCommunityAreas = "community_areas_processed"
	TableResolved       = "csr_processed"
	TableResolvedBackup = "csr_processed_backup"
	TableDates          = "dates"
)

// DefaultBatchSize is the number of rows per INSERT statement.
const DefaultBatchSize = 500

// Postgres caps bind parameters per statement.
const postgresMaxArguments = 65535

// ErrLoadFailed wraps every failed table load. Loads are not retried.
var ErrLoadFailed = errors.New("warehouse load failed")

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Loader replaces warehouse tables wholesale. Each load runs in one transaction,
// so readers see either the previous contents or the new ones.
type Loader struct {
	db        *sql.DB
	batchSize int
	builder   sq.StatementBuilderType
}

func NewLoader(db *sql.DB) *Loader {
	return &Loader{
		db:        db,
		batchSize: DefaultBatchSize,
		builder:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// WithBatchSize sets the number of rows per INSERT statement.
func (l *Loader) WithBatchSize(n int) *Loader {
	if n > 0 {
		l.batchSize = n
	}
	return l
}

// table is a column list plus the rows to insert, already in column order.
type table struct {
	name    string
	columns []string
	rows    [][]any
}

// insertStatements builds the batched multi-row INSERTs for t.
func (l *Loader) insertStatements(t table) ([]string, [][]any, error) {
	batch := l.batchSize
	if limit := postgresMaxArguments / len(t.columns); batch > limit {
		batch = limit
	}

	var (
		queries []string
		args    [][]any
	)
	for start := 0; start < len(t.rows); start += batch {
		end := min(start+batch, len(t.rows))
		insert := l.builder.Insert(pq.QuoteIdentifier(t.name)).Columns(quoteAll(t.columns)...)
		for _, row := range t.rows[start:end] {
			insert = insert.Values(row...)
		}
		query, a, err := insert.ToSql()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build insert for %s: %w", t.name, err)
		}
		queries = append(queries, query)
		args = append(args, a)
	}
	return queries, args, nil
}

// replace truncates the table and inserts all rows in a single transaction.
func (l *Loader) replace(ctx context.Context, t table) error {
	start := time.Now()

	queries, args, err := l.insertStatements(t)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin %s: %w", ErrLoadFailed, t.name, err)
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if _, err := tx.ExecContext(ctx, "TRUNCATE TABLE "+pq.QuoteIdentifier(t.name)); err != nil {
		return fmt.Errorf("%w: truncate %s: %w", ErrLoadFailed, t.name, err)
	}
	for i, q := range queries {
		if _, err := tx.ExecContext(ctx, q, args[i]...); err != nil {
			return fmt.Errorf("%w: insert %s batch %d: %w", ErrLoadFailed, t.name, i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit %s: %w", ErrLoadFailed, t.name, err)
	}

	log.Info().
		Str("table", t.name).
		Int("rows", len(t.rows)).
		Int("batches", len(queries)).
		Dur("took", time.Since(start)).
		Msg("Loaded table")
	return nil
}

// BackupResolved copies the current fact table into the backup table, replacing it.
func (l *Loader) BackupResolved(ctx context.Context) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin backup: %w", ErrLoadFailed, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	backup, resolved := pq.QuoteIdentifier(TableResolvedBackup), pq.QuoteIdentifier(TableResolved)
	if _, err := tx.ExecContext(ctx, "TRUNCATE TABLE "+backup); err != nil {
		return fmt.Errorf("%w: truncate %s: %w", ErrLoadFailed, TableResolvedBackup, err)
	}
	res, err := tx.ExecContext(ctx, "INSERT INTO "+backup+" SELECT * FROM "+resolved)
	if err != nil {
		return fmt.Errorf("%w: copy %s: %w", ErrLoadFailed, TableResolved, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit backup: %w", ErrLoadFailed, err)
	}

	n, _ := res.RowsAffected()
	log.Info().Str("table", TableResolvedBackup).Int64("rows", n).Msg("Backed up resolved service requests")
	return nil
}

func quoteAll(names []string) []string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = pq.QuoteIdentifier(n)
	}
	return quoted
}
