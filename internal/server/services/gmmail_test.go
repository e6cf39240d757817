package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tavrin/realmportal/internal/common"
	"github.com/tavrin/realmportal/internal/server/config"
	"github.com/tavrin/realmportal/internal/server/models"
	"github.com/tavrin/realmportal/internal/server/realms"
	"github.com/tavrin/realmportal/internal/server/repositories/repomanager"
)

func newGMMail(t *testing.T, repo *fakeAccountsRepo, realm *realms.Realm) *GMMailService {
	t.Helper()
	cfg := &config.Config{GMMailMinLevel: 2}
	rm := repomanager.NewPostgresRealmManager()
	registry := realms.NewRegistryFromRealms(realm)
	engine := NewDeliveryEngine(registry, rm, discardLogger())
	accounts := newAccountService(repo)
	return NewGMMailService(engine, accounts, cfg, discardLogger())
}

func TestGMMail_SendDelivery(t *testing.T) {
	db := newRealmDB(t)
	seedCharacter(t, db, 100, 7, 1000)
	seedTemplate(t, db, 5000, "Bandage", 0, 100, 20, 0)

	repo := newFakeAccountsRepo()
	repo.gmLevels[9] = 3
	svc := newGMMail(t, repo, &realms.Realm{ID: 1, Name: "test", DB: db})

	summary, err := svc.SendDelivery(context.Background(), 9, 1, &DeliveryRequest{
		ReceiverGUID:  100,
		MoneyToCredit: 500,
		Items:         []ItemGrant{{TemplateID: 5000, Quantity: 5}},
		Subject:       "Compensation",
	})
	require.NoError(t, err)
	require.Equal(t, int64(500), summary.Money)
	require.Len(t, summary.Stacks, 1)

	var money int64
	require.NoError(t, db.QueryRow(`SELECT money FROM characters WHERE guid = 100`).Scan(&money))
	require.Equal(t, int64(1500), money)

	var sender int64
	require.NoError(t, db.QueryRow(`SELECT sender_guid FROM mail WHERE id = $1`, summary.MailID).Scan(&sender))
	require.Equal(t, models.MailSenderSystem, sender, "gm parcels carry the system sender marker")
}

func TestGMMail_LevelTooLow(t *testing.T) {
	db := newRealmDB(t)
	seedCharacter(t, db, 100, 7, 1000)

	repo := newFakeAccountsRepo()
	repo.gmLevels[9] = 1
	svc := newGMMail(t, repo, &realms.Realm{ID: 1, Name: "test", DB: db})

	_, err := svc.SendDelivery(context.Background(), 9, 1, &DeliveryRequest{
		ReceiverGUID:  100,
		MoneyToCredit: 500,
	})
	require.ErrorIs(t, err, common.ErrUnauthorized)

	var money int64
	require.NoError(t, db.QueryRow(`SELECT money FROM characters WHERE guid = 100`).Scan(&money))
	require.Equal(t, int64(1000), money)
}

func TestGMMail_NeverDebits(t *testing.T) {
	db := newRealmDB(t)
	seedCharacter(t, db, 100, 7, 1000)

	repo := newFakeAccountsRepo()
	repo.gmLevels[9] = 3
	svc := newGMMail(t, repo, &realms.Realm{ID: 1, Name: "test", DB: db})

	// A debit smuggled into the request is dropped, not applied.
	summary, err := svc.SendDelivery(context.Background(), 9, 1, &DeliveryRequest{
		ReceiverGUID:  100,
		MoneyToDebit:  900,
		MoneyToCredit: 100,
	})
	require.NoError(t, err)
	require.Equal(t, int64(100), summary.Money)

	var money int64
	require.NoError(t, db.QueryRow(`SELECT money FROM characters WHERE guid = 100`).Scan(&money))
	require.Equal(t, int64(1100), money)
}
