package items

import (
	"context"

	"github.com/tavrin/realmportal/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, item *models.ItemInstance) error
}
