package models

import "database/sql"

// Character is a row in one realm's character store. GUID is unique within
// the realm only. Money is in the smallest denomination (copper). Deletion
// is soft: the game server nulls the owning account and stashes it in
// DeletedAccount, so a character with a valid AccountID is alive.
type Character struct {
	GUID           int64
	AccountID      int64
	Name           string
	Level          int
	Money          int64
	DeletedAccount sql.NullInt64
}

// Deleted reports whether the row is soft-deleted.
func (c *Character) Deleted() bool { return c.DeletedAccount.Valid }
