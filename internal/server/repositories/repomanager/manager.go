package repomanager

import (
	"context"
	"database/sql"

	"github.com/tavrin/realmportal/internal/dbx"
	"github.com/tavrin/realmportal/internal/server/repositories/accounts"
	"github.com/tavrin/realmportal/internal/server/repositories/characters"
	"github.com/tavrin/realmportal/internal/server/repositories/items"
	"github.com/tavrin/realmportal/internal/server/repositories/mail"
	"github.com/tavrin/realmportal/internal/server/repositories/sequences"
	"github.com/tavrin/realmportal/internal/server/repositories/templates"
)

// AuthRepositoryManager vends repositories for the auth store.
type AuthRepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
}

// RealmRepositoryManager vends repositories for one realm's game store.
// Every method takes a DBTX, so the delivery engine can bind the whole set
// to a single transaction.
type RealmRepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Characters(db dbx.DBTX) characters.Repository
	Templates(db dbx.DBTX) templates.Repository
	Items(db dbx.DBTX) items.Repository
	Mail(db dbx.DBTX) mail.Repository
	Sequences(db dbx.DBTX) sequences.Repository
}
