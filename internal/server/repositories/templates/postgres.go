package templates

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

func (r *PostgresRepository) GetByEntry(ctx context.Context, entry int64) (*models.ItemTemplate, error) {
	query :=
		`SELECT entry, name, class, buy_price, max_stack, durability FROM item_template
		 WHERE entry = $1
		 `

	tpl := &models.ItemTemplate{}
	err := r.db.QueryRowContext(ctx, query, entry).Scan(
		&tpl.Entry, &tpl.Name, &tpl.Class, &tpl.BuyPrice, &tpl.MaxStackSize, &tpl.Durability)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return tpl, nil
}
