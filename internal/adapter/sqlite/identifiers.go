package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/neomorfeo/catalogue/internal/domain"
)

// LastIdentifiers returns the counter row of the class and the greatest
// identifiers in its table, without duplicates. The table scans cover rows
// written without going through the counter, e.g. imported legacy data.
func (s *Store) LastIdentifiers(ctx context.Context, class domain.Class) ([]string, error) {
	table, ok := s.tables[class.Name]
	if !ok {
		return nil, fmt.Errorf("no table for identifier class %q", class.Name)
	}

	q := s.conn(ctx)
	var out []string

	var counter string
	err := q.QueryRowContext(ctx,
		`SELECT last_identifier FROM identifier_counters WHERE class = ?`, class.Name,
	).Scan(&counter)
	switch {
	case err == nil:
		out = append(out, counter)
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, classify("reading identifier counter", err)
	}

	// The longest id covers uniformly padded rows and anything malformed
	// enough to be long. The numeric scan covers legacy rows padded to a
	// different width, where length alone misorders (M_7 vs M_0003).
	scans := []struct {
		name  string
		query string
		args  []any
	}{
		{"longest", `SELECT id FROM ` + table + ` ORDER BY length(id) DESC, id DESC LIMIT 1`, nil},
		{"numeric", `SELECT id FROM ` + table + ` WHERE substr(id, 1, ?) = ?
			ORDER BY CAST(substr(id, ?) AS INTEGER) DESC, length(id) DESC LIMIT 1`,
			[]any{len(class.Prefix) + 1, class.Prefix + domain.Separator, len(class.Prefix) + 2}},
	}
	for _, scan := range scans {
		var scanned string
		err = q.QueryRowContext(ctx, scan.query, scan.args...).Scan(&scanned)
		switch {
		case err == nil:
			if !slices.Contains(out, scanned) {
				out = append(out, scanned)
			}
		case errors.Is(err, sql.ErrNoRows):
		default:
			return nil, classify("scanning "+table+" identifiers ("+scan.name+")", err)
		}
	}

	return out, nil
}

// SaveLastIdentifier upserts the counter row of the identifier's class.
func (s *Store) SaveLastIdentifier(ctx context.Context, id domain.Identifier) error {
	_, err := s.conn(ctx).ExecContext(ctx,
		`INSERT INTO identifier_counters (class, last_identifier, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (class) DO UPDATE
		 SET last_identifier = excluded.last_identifier, updated_at = excluded.updated_at`,
		id.Class.Name, id.String(), time.Now().UTC().Format(timeFormat),
	)
	if err != nil {
		return classify("saving identifier counter", err)
	}
	return nil
}
