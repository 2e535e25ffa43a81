// Package bunstore implements docstore.Store on a relational database
// through uptrace/bun. Documents live in a single table keyed by
// (collection, id) with the payload serialized as JSON; filters on payload
// fields translate to the dialect's JSON extraction, so SQLite and Postgres
// both satisfy the abstract query contract.
package bunstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/padocode/go-tenant-repository/docstore"
)

type documentRow struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID         string    `bun:"id,pk"`
	Collection string    `bun:"collection,pk"`
	TenantID   string    `bun:"tenant_id,notnull"`
	Data       string    `bun:"data,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`
}

// Store is a SQL-backed document store.
type Store struct {
	db *bun.DB
}

var _ docstore.Store = (*Store)(nil)

// New wraps an existing bun database handle.
func New(db *bun.DB) *Store {
	return &Store{db: db}
}

// OpenSQLite opens a SQLite-backed store. dsn follows go-sqlite3 conventions
// (a file path, or ":memory:").
func OpenSQLite(dsn string) (*Store, error) {
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("bunstore: open sqlite: %w", err)
	}
	return New(bun.NewDB(sqldb, sqlitedialect.New())), nil
}

// OpenPostgres opens a Postgres-backed store using a lib/pq connection
// string.
func OpenPostgres(dsn string) (*Store, error) {
	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("bunstore: open postgres: %w", err)
	}
	return New(bun.NewDB(sqldb, pgdialect.New())), nil
}

// DB exposes the underlying handle for migrations and diagnostics.
func (s *Store) DB() *bun.DB { return s.db }

// Close closes the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Migrate creates the documents table and its tenant scan index.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*documentRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("bunstore: create table: %w", err)
	}
	if _, err := s.db.NewCreateIndex().
		Model((*documentRow)(nil)).
		Index("idx_documents_collection_tenant").
		Column("collection", "tenant_id").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("bunstore: create index: %w", err)
	}
	return nil
}

// Query implements docstore.Store.
func (s *Store) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var rows []documentRow
	sel := s.db.NewSelect().
		Model(&rows).
		Where("collection = ?", collection)
	if q.TenantID != "" {
		sel = sel.Where("tenant_id = ?", q.TenantID)
	}

	for _, f := range q.Filters {
		var err error
		sel, err = s.applyFilter(sel, f)
		if err != nil {
			return nil, err
		}
	}
	for _, o := range q.Orders {
		expr, err := s.fieldExpr(o.Field, nil)
		if err != nil {
			return nil, err
		}
		if o.Desc {
			sel = sel.OrderExpr(expr + " DESC")
		} else {
			sel = sel.OrderExpr(expr + " ASC")
		}
	}
	if q.Limit > 0 {
		sel = sel.Limit(q.Limit)
	}

	if err := sel.Scan(ctx); err != nil {
		return nil, mapError(err)
	}

	docs := make([]docstore.Document, 0, len(rows))
	for _, row := range rows {
		doc, err := rowToDocument(row)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// GetByID implements docstore.Store. Tenant-agnostic by contract.
func (s *Store) GetByID(ctx context.Context, collection, id string) (*docstore.Document, error) {
	var row documentRow
	err := s.db.NewSelect().
		Model(&row).
		Where("collection = ?", collection).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	doc, err := rowToDocument(row)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Insert implements docstore.Store.
func (s *Store) Insert(ctx context.Context, collection string, doc docstore.Document) error {
	if doc.ID == "" {
		return docstore.ErrInvalidQuery
	}
	row, err := documentToRow(collection, doc)
	if err != nil {
		return err
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return mapError(err)
	}
	return nil
}

// Update implements docstore.Store.
func (s *Store) Update(ctx context.Context, collection string, doc docstore.Document) error {
	row, err := documentToRow(collection, doc)
	if err != nil {
		return err
	}
	res, err := s.db.NewUpdate().Model(&row).WherePK().Exec(ctx)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

// Delete implements docstore.Store.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.NewDelete().
		Model((*documentRow)(nil)).
		Where("collection = ?", collection).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// applyFilter translates one docstore filter into SQL. Payload field names
// are interpolated into JSON extraction expressions, so they are validated
// against a strict identifier pattern first.
func (s *Store) applyFilter(sel *bun.SelectQuery, f docstore.Filter) (*bun.SelectQuery, error) {
	expr, err := s.fieldExpr(f.Field, f.Value)
	if err != nil {
		return nil, err
	}

	if f.Op == docstore.OpIn {
		values, err := sliceValues(f.Value)
		if err != nil {
			return nil, err
		}
		return sel.Where(expr+" IN (?)", bun.In(values)), nil
	}

	var sqlOp string
	switch f.Op {
	case docstore.OpEqual:
		sqlOp = "="
	case docstore.OpNotEqual:
		sqlOp = "<>"
	case docstore.OpGreater, docstore.OpGreaterEqual, docstore.OpLess, docstore.OpLessEqual:
		sqlOp = string(f.Op)
	default:
		return nil, fmt.Errorf("%w: unsupported operator %q", docstore.ErrInvalidQuery, f.Op)
	}
	return sel.Where(fmt.Sprintf("%s %s ?", expr, sqlOp), bindValue(s.db.Dialect().Name(), f.Value)), nil
}

// fieldExpr resolves a filter field to a column or a JSON extraction
// expression in the active dialect. value (may be nil) informs casting on
// Postgres, where ->> always yields text.
func (s *Store) fieldExpr(field string, value any) (string, error) {
	switch field {
	case "id", "tenantId", "createdAt", "updatedAt":
		return map[string]string{
			"id":        "id",
			"tenantId":  "tenant_id",
			"createdAt": "created_at",
			"updatedAt": "updated_at",
		}[field], nil
	}
	if !fieldNamePattern.MatchString(field) {
		return "", fmt.Errorf("%w: invalid field name %q", docstore.ErrInvalidQuery, field)
	}

	switch s.db.Dialect().Name() {
	case dialect.PG:
		if isNumeric(value) {
			return fmt.Sprintf("(data::jsonb ->> '%s')::numeric", field), nil
		}
		return fmt.Sprintf("data::jsonb ->> '%s'", field), nil
	default:
		return fmt.Sprintf("json_extract(data, '$.%s')", field), nil
	}
}

// bindValue adapts a filter value to what the dialect's JSON extraction
// yields: Postgres ->> returns text, so booleans compare as their JSON
// literals there.
func bindValue(name dialect.Name, value any) any {
	if b, ok := value.(bool); ok && name == dialect.PG {
		if b {
			return "true"
		}
		return "false"
	}
	return value
}

func isNumeric(value any) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

func sliceValues(value any) ([]any, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("%w: membership filter needs a slice value", docstore.ErrInvalidQuery)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

func rowToDocument(row documentRow) (docstore.Document, error) {
	doc := docstore.Document{
		ID:         row.ID,
		TenantID:   row.TenantID,
		Collection: row.Collection,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
	if row.Data != "" {
		if err := json.Unmarshal([]byte(row.Data), &doc.Data); err != nil {
			return docstore.Document{}, fmt.Errorf("bunstore: corrupt payload for %s/%s: %w", row.Collection, row.ID, err)
		}
	}
	return doc, nil
}

func documentToRow(collection string, doc docstore.Document) (documentRow, error) {
	data := doc.Data
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return documentRow{}, fmt.Errorf("bunstore: encode payload for %s/%s: %w", collection, doc.ID, err)
	}
	return documentRow{
		ID:         doc.ID,
		Collection: collection,
		TenantID:   doc.TenantID,
		Data:       string(raw),
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

// mapError folds driver failures onto the docstore taxonomy so the retry
// classification above this layer works without inspecting SQL errors.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return docstore.ErrNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", docstore.ErrDeadlineExceeded, err)
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, sql.ErrConnDone), errors.Is(err, driver.ErrBadConn):
		return fmt.Errorf("%w: %v", docstore.ErrUnavailable, err)
	default:
		return fmt.Errorf("bunstore: %w", err)
	}
}
