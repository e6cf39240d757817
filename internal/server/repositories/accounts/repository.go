package accounts

import (
	"context"

	"github.com/tavrin/realmportal/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	IsBanned(ctx context.Context, accountID int64) (bool, error)
	GMLevel(ctx context.Context, accountID int64, realmID int32) (int, error)
}
