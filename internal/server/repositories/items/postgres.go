package items

import (
	"context"
	"fmt"

	"github.com/tavrin/realmportal/internal/dbx"
	"github.com/tavrin/realmportal/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, item *models.ItemInstance) error {
	query :=
		`INSERT INTO item_instance (guid, entry, owner_guid, count, durability)
		 VALUES ($1, $2, $3, $4, $5)
		 `

	_, err := r.db.ExecContext(ctx, query,
		item.GUID, item.Entry, item.OwnerGUID, item.Count, item.Durability)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
