package sequences

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tavrin/realmportal/internal/common"
	"github.com/tavrin/realmportal/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Next(ctx context.Context, name string) (int64, error) {
	return r.NextRange(ctx, name, 1)
}

func (r *PostgresRepository) NextRange(ctx context.Context, name string, n int64) (int64, error) {
	if n < 1 {
		return 0, fmt.Errorf("sequence %s: invalid range size %d", name, n)
	}

	query :=
		`UPDATE realm_sequences SET next_id = next_id + $1
		 WHERE name = $2
		 RETURNING next_id
		 `

	var last int64
	err := r.db.QueryRowContext(ctx, query, n, name).Scan(&last)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("sequence %s: %w", name, common.ErrNotFound)
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return last - n + 1, nil
}
