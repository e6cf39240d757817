package characters

import (
	"context"

	"github.com/tavrin/realmportal/internal/server/models"
)

type Repository interface {
	GetByGUID(ctx context.Context, guid int64) (*models.Character, error)

	// AdjustMoney applies debit and credit to the character's balance in one
	// guarded statement; it returns common.ErrNotFound when the balance no
	// longer covers the debit, so a caller inside a transaction can roll back.
	AdjustMoney(ctx context.Context, guid int64, debit, credit int64) (int64, error)
}
