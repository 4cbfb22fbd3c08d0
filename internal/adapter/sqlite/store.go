package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/neomorfeo/catalogue/internal/domain"

	_ "modernc.org/sqlite" // Register SQLite driver.
)

//go:embed migrations/*.sql
var migrations embed.FS

// Compile-time checks.
var (
	_ domain.IdentifierStore = (*Store)(nil)
	_ domain.Transactor      = (*Store)(nil)
)

// Store owns the catalogue database and hands out one table per record type.
type Store struct {
	db     *sql.DB
	tables map[string]string // class name -> table name
}

// DSN adds the connection parameters the store relies on to a database path:
// transactions start with BEGIN IMMEDIATE so identifier minting holds the
// write lock from its first read, and waiters block up to the busy timeout
// instead of failing.
func DSN(path string) string {
	params := "_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	return path + "?" + params
}

// New opens a SQLite database, runs migrations, and returns a ready store.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A single connection serializes writers within the process and keeps
	// in-memory databases alive across queries.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	store, err := NewFromDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewFromDB wraps an existing database connection, runs migrations, and returns a ready store.
// Use this when the *sql.DB has been pre-configured (e.g., with otelsql instrumentation).
func NewFromDB(db *sql.DB) (*Store, error) {
	if err := runMigrations(db); err != nil {
		return nil, err
	}

	return &Store{
		db: db,
		tables: map[string]string{
			domain.ClassNoun.Name:           nounSchema.table,
			domain.ClassModifier.Name:       modifierSchema.table,
			domain.ClassNounModifier.Name:   nounModifierSchema.table,
			domain.ClassAttribute.Name:      attributeSchema.table,
			domain.ClassAttributeValue.Name: attributeValueSchema.table,
			domain.ClassManufacturer.Name:   manufacturerSchema.table,
		},
	}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for use by other adapters (e.g., river).
func (s *Store) DB() *sql.DB {
	return s.db
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// conn returns the transaction carried by ctx, or the pool.
// Inside InTx every query must go through conn: the pool has one connection
// and the transaction holds it.
func (s *Store) conn(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

// InTx runs fn in a transaction. Nested calls join the outer transaction.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin transaction", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify("commit transaction", err)
	}
	return nil
}

// Nouns returns the noun table.
func (s *Store) Nouns() *Table[domain.Noun] { return newTable(s, nounSchema) }

// Modifiers returns the modifier table.
func (s *Store) Modifiers() *Table[domain.Modifier] { return newTable(s, modifierSchema) }

// NounModifiers returns the noun-modifier table.
func (s *Store) NounModifiers() *Table[domain.NounModifier] {
	return newTable(s, nounModifierSchema)
}

// Attributes returns the attribute table.
func (s *Store) Attributes() *Table[domain.Attribute] { return newTable(s, attributeSchema) }

// AttributeValues returns the attribute value table.
func (s *Store) AttributeValues() *Table[domain.AttributeValue] {
	return newTable(s, attributeValueSchema)
}

// Manufacturers returns the manufacturer table.
func (s *Store) Manufacturers() *Table[domain.Manufacturer] {
	return newTable(s, manufacturerSchema)
}
