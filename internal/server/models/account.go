// Package models holds the row-shaped types shared by repositories and
// services. Auth-store rows (accounts, access, bans) and realm-store rows
// (characters, items, mail) live in separate databases; the types carry no
// knowledge of which realm they came from — a guid is only meaningful next
// to its realm id.
package models

import "time"

// Account is a row in the auth store. Username is stored in its canonical
// (uppercase) form; Salt and Verifier belong to the SRP6 credential proof
// and must never leave the account service.
type Account struct {
	ID        int64
	Username  string
	Salt      []byte
	Verifier  []byte
	Email     string
	Online    bool
	CreatedAt time.Time
}

// AccountInfo is the sanitized view of an Account handed to callers outside
// the account service.
type AccountInfo struct {
	ID       int64
	Username string
	Email    string
}

// Info strips credential material from the account row.
func (a *Account) Info() *AccountInfo {
	return &AccountInfo{ID: a.ID, Username: a.Username, Email: a.Email}
}

// AllRealms is the realm-scope sentinel on access rows meaning the GM level
// applies everywhere.
const AllRealms int32 = -1

// AccountAccess grants a GM level on one realm, or on all realms when
// RealmID is AllRealms. A level of 0 is equivalent to no row at all.
type AccountAccess struct {
	AccountID int64
	RealmID   int32
	Level     int
	Comment   string
}

// AccountBan is one (possibly historical) ban record. Unbans are flagged,
// never deleted. A zero UnbanDate means permanent.
type AccountBan struct {
	AccountID int64
	BanDate   time.Time
	UnbanDate time.Time
	Reason    string
	Active    bool
}
