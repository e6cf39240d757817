package mail

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

func (r *PostgresRepository) Insert(ctx context.Context, msg *models.MailMessage) error {
	query :=
		`INSERT INTO mail (id, sender_guid, receiver_guid, subject, body, money, has_items, deliver_time, expire_time)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 `

	_, err := r.db.ExecContext(ctx, query,
		msg.ID, msg.SenderGUID, msg.ReceiverGUID, msg.Subject, msg.Body,
		msg.Money, msg.HasItems, msg.DeliverTime, msg.ExpireTime)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) InsertLink(ctx context.Context, link *models.MailItemLink) error {
	query :=
		`INSERT INTO mail_items (mail_id, item_guid, receiver_guid)
		 VALUES ($1, $2, $3)
		 `

	_, err := r.db.ExecContext(ctx, query, link.MailID, link.ItemGUID, link.ReceiverGUID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
