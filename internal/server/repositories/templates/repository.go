package templates

import (
	"context"

	"github.com/tavrin/realmportal/internal/server/models"
)

type Repository interface {
	GetByEntry(ctx context.Context, entry int64) (*models.ItemTemplate, error)
}
