package characters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tavrin/realmportal/internal/common"
	"github.com/tavrin/realmportal/internal/dbx"
	"github.com/tavrin/realmportal/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByGUID(ctx context.Context, guid int64) (*models.Character, error) {
	query :=
		`SELECT guid, account, name, level, money, deleted_account FROM characters
		 WHERE guid = $1
		 `

	ch := &models.Character{}
	err := r.db.QueryRowContext(ctx, query, guid).Scan(
		&ch.GUID, &ch.AccountID, &ch.Name, &ch.Level, &ch.Money, &ch.DeletedAccount)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return ch, nil
}

// AdjustMoney guards the debit inside the statement itself: the row is only
// updated while the balance still covers it, so a racing out-of-band spend
// surfaces as common.ErrNotFound instead of a negative balance.
func (r *PostgresRepository) AdjustMoney(ctx context.Context, guid int64, debit, credit int64) (int64, error) {
	query :=
		`UPDATE characters SET money = money - $1 + $2
		 WHERE guid = $3 AND money >= $1
		 RETURNING money
		 `

	var balance int64
	err := r.db.QueryRowContext(ctx, query, debit, credit, guid).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return balance, nil
}
