// Package realms owns the per-realm game-store handles: one connection pool
// and one character lock table per realm. Identifiers are realm-scoped, so
// nothing here is ever shared between realms.
package realms

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tavrin/realmportal/internal/common"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Config describes one realm as it appears in the server configuration.
type Config struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
	DSN  string `json:"dsn"`
}

// Realm is one independently addressed game universe.
type Realm struct {
	ID    int32
	Name  string
	DB    *sql.DB
	Locks *CharLocks
}

// Registry holds every configured realm. It is populated once at startup and
// read-only afterwards, so lookups need no locking.
type Registry struct {
	realms map[int32]*Realm
}

// NewRegistry opens a pgx pool per configured realm and runs the provided
// migration hook against each.
func NewRegistry(ctx context.Context, cfgs []Config, migrate func(context.Context, *sql.DB) error) (*Registry, error) {
	r := &Registry{realms: make(map[int32]*Realm, len(cfgs))}

	for _, cfg := range cfgs {
		db, err := sql.Open("pgx", cfg.DSN)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("realm %s: db open error: %w", cfg.Name, err)
		}
		db.SetMaxOpenConns(8)
		db.SetMaxIdleConns(4)

		if migrate != nil {
			if err := migrate(ctx, db); err != nil {
				_ = db.Close()
				r.Close()
				return nil, fmt.Errorf("realm %s: migration error: %w", cfg.Name, err)
			}
		}

		r.realms[cfg.ID] = &Realm{ID: cfg.ID, Name: cfg.Name, DB: db, Locks: NewCharLocks()}
	}

	return r, nil
}

// NewRegistryFromRealms builds a registry around already-open databases.
// Used by tests to run the engine against in-memory stores.
func NewRegistryFromRealms(rs ...*Realm) *Registry {
	reg := &Registry{realms: make(map[int32]*Realm, len(rs))}
	for _, realm := range rs {
		if realm.Locks == nil {
			realm.Locks = NewCharLocks()
		}
		reg.realms[realm.ID] = realm
	}
	return reg
}

// Get returns the realm or common.ErrRealmNotFound.
func (r *Registry) Get(id int32) (*Realm, error) {
	realm, ok := r.realms[id]
	if !ok {
		return nil, common.ErrRealmNotFound
	}
	return realm, nil
}

// Close closes every realm pool. Safe to call on a partially built registry.
func (r *Registry) Close() {
	for _, realm := range r.realms {
		if realm.DB != nil {
			_ = realm.DB.Close()
		}
	}
}
