package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/yzt-loan/loanadmin/internal/common"
	"github.com/yzt-loan/loanadmin/internal/dbx"
	"github.com/yzt-loan/loanadmin/migrations"
)

// Postgres is a Store keeping every collection in one records table,
// with business fields in a jsonb column. Filters are jsonb containment,
// partial updates are jsonb concatenation, and the lockout counter
// increments run as single UPDATE statements so they stay atomic.
type Postgres struct {
	db *sql.DB
}

// NewPostgres wraps an existing database handle.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// OpenPostgres opens a pgx database/sql handle for the given DSN.
func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	return &Postgres{db: db}, nil
}

// RunMigrations applies the embedded goose migrations.
func (p *Postgres) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, p.db, ".")
}

func (p *Postgres) Collection(name string) Collection {
	return &pgCollection{db: p.db, name: name}
}

func (p *Postgres) Close() error { return p.db.Close() }

// DB exposes the underlying handle, mainly for tests.
func (p *Postgres) DB() *sql.DB { return p.db }

type pgCollection struct {
	db   *sql.DB
	name string
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", common.ErrStore, err)
}

// splitFilter separates the identifier from the business fields of a filter,
// since the identifier lives in its own column.
func splitFilter(filter map[string]any) (id string, hasID bool, docJSON []byte, err error) {
	doc := make(map[string]any, len(filter))
	for k, v := range filter {
		if k == FieldID {
			id, hasID = fmt.Sprint(v), true
			continue
		}
		doc[k] = v
	}
	docJSON, err = json.Marshal(doc)
	return id, hasID, docJSON, err
}

// matchClause builds "collection = $1 AND doc @> $2::jsonb [AND id = $3]"
// and the matching args. next is the first free placeholder number after it.
func (c *pgCollection) matchClause(filter map[string]any) (clause string, args []any, next int, err error) {
	id, hasID, docJSON, err := splitFilter(filter)
	if err != nil {
		return "", nil, 0, err
	}
	clause = `collection = $1 AND doc @> $2::jsonb`
	args = []any{c.name, docJSON}
	next = 3
	if hasID {
		clause += fmt.Sprintf(` AND id = $%d`, next)
		args = append(args, id)
		next++
	}
	return clause, args, next, nil
}

func (c *pgCollection) Count(ctx context.Context, filter map[string]any) (int64, error) {
	clause, args, _, err := c.matchClause(filter)
	if err != nil {
		return 0, storeErr(err)
	}

	var n int64
	query := `SELECT COUNT(*) FROM records WHERE ` + clause
	if err := c.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, storeErr(err)
	}
	return n, nil
}

func (c *pgCollection) Find(ctx context.Context, q Query) ([]Record, error) {
	clause, args, next, err := c.matchClause(q.Filter)
	if err != nil {
		return nil, storeErr(err)
	}

	query := `SELECT id, doc, create_at, update_at FROM records WHERE ` + clause +
		` ORDER BY create_at, id`
	if q.Limit > 0 {
		skip := 0
		if q.Page > 1 {
			skip = (q.Page - 1) * q.Limit
		}
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, next, next+1)
		args = append(args, q.Limit, skip)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		out = append(out, rec.Project(q.Fields))
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}

func (c *pgCollection) FindOne(ctx context.Context, filter map[string]any) (Record, error) {
	clause, args, _, err := c.matchClause(filter)
	if err != nil {
		return nil, storeErr(err)
	}

	query := `SELECT id, doc, create_at, update_at FROM records WHERE ` + clause +
		` ORDER BY create_at, id LIMIT 1`
	rec, err := scanRecord(c.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, storeErr(err)
	}
	return rec, nil
}

func (c *pgCollection) FindByID(ctx context.Context, id string) (Record, error) {
	return c.FindOne(ctx, map[string]any{FieldID: id})
}

func (c *pgCollection) Insert(ctx context.Context, fields map[string]any) (Record, error) {
	docJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	id := uuid.NewString()
	query := `INSERT INTO records (id, collection, doc) VALUES ($1, $2, $3::jsonb) RETURNING create_at`

	rec := Record{FieldID: id}
	for k, v := range fields {
		rec[k] = v
	}
	var createAt sql.NullTime
	if err := c.db.QueryRowContext(ctx, query, id, c.name, docJSON).Scan(&createAt); err != nil {
		return nil, storeErr(err)
	}
	rec[FieldCreateAt] = createAt.Time
	return rec, nil
}

func (c *pgCollection) Update(ctx context.Context, filter, partial map[string]any) (Record, error) {
	partialJSON, err := json.Marshal(partial)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	clause, args, _, err := c.matchClause(filter)
	if err != nil {
		return nil, storeErr(err)
	}

	var rec Record
	err = dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var id string
		lock := `SELECT id FROM records WHERE ` + clause + ` ORDER BY create_at, id LIMIT 1 FOR UPDATE`
		if err := tx.QueryRowContext(ctx, lock, args...).Scan(&id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return common.ErrNotFound
			}
			return err
		}

		update := `UPDATE records SET doc = doc || $1::jsonb, update_at = now()
		 WHERE id = $2
		 RETURNING id, doc, create_at, update_at`
		var scanErr error
		rec, scanErr = scanRecord(tx.QueryRowContext(ctx, update, partialJSON, id))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, storeErr(err)
	}
	return rec, nil
}

func (c *pgCollection) SetFields(ctx context.Context, filter, fields map[string]any) error {
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	clause, args, next, err := c.matchClause(filter)
	if err != nil {
		return storeErr(err)
	}

	query := fmt.Sprintf(
		`UPDATE records SET doc = doc || $%d::jsonb
		 WHERE id = (SELECT id FROM records WHERE %s ORDER BY create_at, id LIMIT 1)`,
		next, clause)
	args = append(args, fieldsJSON)

	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return storeErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr(err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (c *pgCollection) IncrementField(ctx context.Context, filter map[string]any, field string, delta int64) (int64, error) {
	clause, args, next, err := c.matchClause(filter)
	if err != nil {
		return 0, storeErr(err)
	}

	query := fmt.Sprintf(
		`UPDATE records
		 SET doc = jsonb_set(doc, ARRAY[$%d], to_jsonb(COALESCE((doc->>$%d)::bigint, 0) + $%d))
		 WHERE id = (SELECT id FROM records WHERE %s ORDER BY create_at, id LIMIT 1 FOR UPDATE)
		 RETURNING (doc->>$%d)::bigint`,
		next, next, next+1, clause, next)
	args = append(args, field, delta)

	var value int64
	if err := c.db.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, storeErr(err)
	}
	return value, nil
}

func (c *pgCollection) Delete(ctx context.Context, filter map[string]any) (bool, error) {
	clause, args, _, err := c.matchClause(filter)
	if err != nil {
		return false, storeErr(err)
	}

	query := `DELETE FROM records WHERE id = (SELECT id FROM records WHERE ` + clause +
		` ORDER BY create_at, id LIMIT 1)`
	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, storeErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr(err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		id       string
		raw      []byte
		createAt sql.NullTime
		updateAt sql.NullTime
	)
	if err := row.Scan(&id, &raw, &createAt, &updateAt); err != nil {
		return nil, err
	}

	rec := Record{}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	rec[FieldID] = id
	rec[FieldCreateAt] = createAt.Time
	if updateAt.Valid {
		rec[FieldUpdateAt] = updateAt.Time
	}
	return rec, nil
}
