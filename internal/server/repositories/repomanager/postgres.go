// Package repomanager provides concrete repository managers for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/tavrin/realmportal/internal/dbx"
	authmigrations "github.com/tavrin/realmportal/internal/server/migrations/auth"
	realmmigrations "github.com/tavrin/realmportal/internal/server/migrations/realm"
	"github.com/tavrin/realmportal/internal/server/repositories/accounts"
	"github.com/tavrin/realmportal/internal/server/repositories/characters"
	"github.com/tavrin/realmportal/internal/server/repositories/items"
	"github.com/tavrin/realmportal/internal/server/repositories/mail"
	"github.com/tavrin/realmportal/internal/server/repositories/sequences"
	"github.com/tavrin/realmportal/internal/server/repositories/templates"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// PostgresAuthManager vends PostgreSQL-backed repositories for the auth store.
type PostgresAuthManager struct{}

func NewPostgresAuthManager() *PostgresAuthManager { return &PostgresAuthManager{} }

// Accounts returns an accounts.Repository bound to the provided DBTX.
func (m *PostgresAuthManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewPostgresRepository(db)
}

// RunMigrations sets up goose with the embedded auth migrations and runs
// them against the provided database connection.
func (m *PostgresAuthManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(authmigrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// PostgresRealmManager vends PostgreSQL-backed repositories for a realm store.
type PostgresRealmManager struct{}

func NewPostgresRealmManager() *PostgresRealmManager { return &PostgresRealmManager{} }

func (m *PostgresRealmManager) Characters(db dbx.DBTX) characters.Repository {
	return characters.NewPostgresRepository(db)
}

func (m *PostgresRealmManager) Templates(db dbx.DBTX) templates.Repository {
	return templates.NewPostgresRepository(db)
}

func (m *PostgresRealmManager) Items(db dbx.DBTX) items.Repository {
	return items.NewPostgresRepository(db)
}

func (m *PostgresRealmManager) Mail(db dbx.DBTX) mail.Repository {
	return mail.NewPostgresRepository(db)
}

func (m *PostgresRealmManager) Sequences(db dbx.DBTX) sequences.Repository {
	return sequences.NewPostgresRepository(db)
}

// RunMigrations runs the embedded realm-store migrations. It is invoked once
// per realm database at startup.
func (m *PostgresRealmManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(realmmigrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}
