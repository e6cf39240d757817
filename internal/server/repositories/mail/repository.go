package mail

import (
	"context"

	"github.com/tavrin/realmportal/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, msg *models.MailMessage) error
	InsertLink(ctx context.Context, link *models.MailItemLink) error
}
