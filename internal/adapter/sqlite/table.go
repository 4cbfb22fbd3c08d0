package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/neomorfeo/catalogue/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

// schema maps one record type onto its table. The id, status and timestamp
// columns are shared; columns lists the rest, in the order fields returns
// pointers to them.
type schema[T any] struct {
	class   domain.Class
	table   string
	columns []string
	// parent is the column matched by ListFilter.NounModifierID, if any.
	parent string
	refs   []ref
	fields func(r *T) (*domain.Master, []any)
}

// ref is a foreign key column and the class of the record it points at.
type ref struct {
	column string
	class  domain.Class
}

// Table implements domain.Repository for one record type.
type Table[T any] struct {
	store  *Store
	schema schema[T]
}

func newTable[T any](s *Store, sc schema[T]) *Table[T] {
	return &Table[T]{store: s, schema: sc}
}

func (t *Table[T]) selectColumns() string {
	return "id, status, created_at, updated_at, " + strings.Join(t.schema.columns, ", ")
}

func (t *Table[T]) Create(ctx context.Context, rec T) error {
	meta, fields := t.schema.fields(&rec)

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", 4+len(fields)), ", ")
	args := append([]any{
		meta.ID,
		string(meta.Status),
		meta.CreatedAt.Format(timeFormat),
		meta.UpdatedAt.Format(timeFormat),
	}, values(fields)...)

	_, err := t.store.conn(ctx).ExecContext(ctx,
		`INSERT INTO `+t.schema.table+` (`+t.selectColumns()+`) VALUES (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return t.writeError(ctx, "inserting "+t.schema.class.Name, meta.ID, fields, err)
	}
	return nil
}

func (t *Table[T]) GetByID(ctx context.Context, id string) (T, error) {
	row := t.store.conn(ctx).QueryRowContext(ctx,
		`SELECT `+t.selectColumns()+` FROM `+t.schema.table+` WHERE id = ?`, id,
	)

	rec, err := t.scan(row)
	if err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, &domain.NotFoundError{Class: t.schema.class, ID: id}
		}
		return zero, classify("scanning "+t.schema.class.Name, err)
	}
	return rec, nil
}

func (t *Table[T]) List(ctx context.Context, filter domain.ListFilter) ([]T, error) {
	query := `SELECT ` + t.selectColumns() + ` FROM ` + t.schema.table
	var (
		where []string
		args  []any
	)

	if filter.Status != nil {
		where = append(where, `status = ?`)
		args = append(args, string(*filter.Status))
	}
	if filter.NounModifierID != "" && t.schema.parent != "" {
		where = append(where, t.schema.parent+` = ?`)
		args = append(args, filter.NounModifierID)
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}

	query += ` ORDER BY length(id), id`

	// SQLite only accepts OFFSET after LIMIT; -1 means no limit.
	switch {
	case filter.Limit > 0:
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	case filter.Offset > 0:
		query += ` LIMIT -1`
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := t.store.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("listing "+t.schema.table, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		rec, err := t.scan(rows)
		if err != nil {
			return nil, classify("scanning "+t.schema.class.Name+" row", err)
		}
		out = append(out, rec)
	}

	return out, rows.Err()
}

func (t *Table[T]) Update(ctx context.Context, rec T) error {
	meta, fields := t.schema.fields(&rec)

	sets := make([]string, 0, len(t.schema.columns)+2)
	sets = append(sets, `status = ?`, `updated_at = ?`)
	for _, col := range t.schema.columns {
		sets = append(sets, col+` = ?`)
	}
	updatedAt := meta.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	args := append([]any{string(meta.Status), updatedAt.Format(timeFormat)}, values(fields)...)
	args = append(args, meta.ID)

	result, err := t.store.conn(ctx).ExecContext(ctx,
		`UPDATE `+t.schema.table+` SET `+strings.Join(sets, ", ")+` WHERE id = ?`,
		args...,
	)
	if err != nil {
		return t.writeError(ctx, "updating "+t.schema.class.Name, meta.ID, fields, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return classify("checking rows affected", err)
	}
	if n == 0 {
		return &domain.NotFoundError{Class: t.schema.class, ID: meta.ID}
	}
	return nil
}

func (t *Table[T]) Delete(ctx context.Context, id string) error {
	result, err := t.store.conn(ctx).ExecContext(ctx,
		`DELETE FROM `+t.schema.table+` WHERE id = ?`, id,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &domain.InUseError{Class: t.schema.class, ID: id}
		}
		return classify("deleting "+t.schema.class.Name, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return classify("checking rows affected", err)
	}
	if n == 0 {
		return &domain.NotFoundError{Class: t.schema.class, ID: id}
	}
	return nil
}

// values turns the field pointers of a schema into statement arguments.
func values(fields []any) []any {
	out := make([]any, len(fields))
	for i, f := range fields {
		if p, ok := f.(*string); ok {
			out[i] = *p
			continue
		}
		out[i] = f
	}
	return out
}

type scanner interface {
	Scan(dest ...any) error
}

func (t *Table[T]) scan(row scanner) (T, error) {
	var rec T
	meta, fields := t.schema.fields(&rec)
	var status, createdAt, updatedAt string

	dest := append([]any{&meta.ID, &status, &createdAt, &updatedAt}, fields...)
	if err := row.Scan(dest...); err != nil {
		var zero T
		return zero, err
	}

	meta.Status = domain.Status(status)
	var err error
	if meta.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		var zero T
		return zero, fmt.Errorf("%s %s has invalid created_at %q: %w", t.schema.class, meta.ID, createdAt, err)
	}
	if meta.UpdatedAt, err = time.Parse(timeFormat, updatedAt); err != nil {
		var zero T
		return zero, fmt.Errorf("%s %s has invalid updated_at %q: %w", t.schema.class, meta.ID, updatedAt, err)
	}
	return rec, nil
}

// writeError maps constraint violations on insert and update to domain errors.
func (t *Table[T]) writeError(ctx context.Context, op, id string, fields []any, err error) error {
	switch {
	case isUniqueViolation(err):
		cols := uniqueColumns(err)
		if len(cols) == 1 && cols[0] == "id" {
			return &domain.DuplicateIdentifierError{Class: t.schema.class, ID: id}
		}
		return &domain.ConflictError{Class: t.schema.class, Fields: cols}
	case isForeignKeyViolation(err):
		return t.missingReference(ctx, fields)
	default:
		return classify(op, err)
	}
}

// missingReference looks up each reference of a rejected write. SQLite does
// not report which foreign key failed.
func (t *Table[T]) missingReference(ctx context.Context, fields []any) error {
	args := values(fields)
	for _, r := range t.schema.refs {
		v := args[slices.Index(t.schema.columns, r.column)]
		if valuer, ok := v.(driver.Valuer); ok {
			v, _ = valuer.Value()
		}
		id, _ := v.(string)
		if id == "" {
			continue
		}

		var one int
		err := t.store.conn(ctx).QueryRowContext(ctx,
			`SELECT 1 FROM `+t.store.tables[r.class.Name]+` WHERE id = ?`, id,
		).Scan(&one)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return &domain.ReferenceError{Class: r.class, ID: id}
		case err != nil:
			return classify("checking "+r.class.Name+" reference", err)
		}
	}
	return &domain.ReferenceError{}
}
