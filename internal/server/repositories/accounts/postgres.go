package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tavrin/realmportal/internal/common"
	"github.com/tavrin/realmportal/internal/dbx"
	"github.com/tavrin/realmportal/internal/server/models"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {

	query :=
		`INSERT INTO accounts (username, salt, verifier, email)
         VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		account.Username, account.Salt, account.Verifier, account.Email).Scan(&account.ID)

	if err != nil {
		// The unique constraint on username is the backstop for two signups
		// racing past the existence pre-check.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrAccountExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query :=
		`SELECT id, username, salt, verifier, email, online FROM accounts
		 WHERE username = $1
		 `

	account := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&account.ID, &account.Username, &account.Salt, &account.Verifier, &account.Email, &account.Online)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

// IsBanned reports whether the account has an active ban that is either
// permanent (NULL unban date) or not yet expired.
func (r *PostgresRepository) IsBanned(ctx context.Context, accountID int64) (bool, error) {
	query :=
		`SELECT COUNT(*) FROM account_banned
		 WHERE account_id = $1 AND active
		   AND (unban_date IS NULL OR unban_date > CURRENT_TIMESTAMP)
		 `

	var n int
	if err := r.db.QueryRowContext(ctx, query, accountID).Scan(&n); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

// GMLevel returns the highest level across access rows matching the realm or
// the all-realms sentinel. No rows means level 0.
func (r *PostgresRepository) GMLevel(ctx context.Context, accountID int64, realmID int32) (int, error) {
	query :=
		`SELECT COALESCE(MAX(gmlevel), 0) FROM account_access
		 WHERE account_id = $1 AND (realm_id = $2 OR realm_id = $3)
		 `

	var level int
	err := r.db.QueryRowContext(ctx, query, accountID, realmID, models.AllRealms).Scan(&level)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return level, nil
}
