package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/tavrin/realmportal/internal/common"
	"github.com/tavrin/realmportal/internal/logging"
	"github.com/tavrin/realmportal/internal/server/config"
	"github.com/tavrin/realmportal/internal/server/models"
	"github.com/tavrin/realmportal/internal/server/realms"
	"github.com/tavrin/realmportal/internal/server/repositories/repomanager"
)

// PurchaseResult is what the web tier shows after a successful buy.
type PurchaseResult struct {
	MailID     int64
	ItemName   string
	Quantity   int64
	TotalCost  int64
	NewBalance int64
}

// ShopService prices catalog items, checks eligibility and ownership, and
// hands the actual mutation to the delivery engine as a debit-plus-items
// request. It owns no state of its own beyond configuration.
type ShopService struct {
	engine        *DeliveryEngine
	registry      *realms.Registry
	rm            repomanager.RealmRepositoryManager
	markupPercent int64
	allowedClass  map[int]struct{}
	logger        logging.Logger
}

func NewShopService(engine *DeliveryEngine, registry *realms.Registry, rm repomanager.RealmRepositoryManager, cfg *config.Config, logger logging.Logger) *ShopService {
	allowed := make(map[int]struct{}, len(cfg.ShopAllowedClasses))
	for _, c := range cfg.ShopAllowedClasses {
		allowed[c] = struct{}{}
	}
	return &ShopService{
		engine:        engine,
		registry:      registry,
		rm:            rm,
		markupPercent: cfg.ShopMarkupPercent,
		allowedClass:  allowed,
		logger:        logger.With("module", "shop"),
	}
}

// Price applies the operator markup to a catalog buy price, rounding up so
// the shop never under-charges.
func Price(buyPrice, markupPercent int64) int64 {
	if buyPrice <= 0 {
		return 0
	}
	return (buyPrice*(100+markupPercent) + 99) / 100
}

// Purchase runs the whole buy flow: cheap validations first (quantity,
// category, ownership), then one delivery-engine call that debits the cost
// and mails the items atomically. A delivery that failed with the store
// rolled back is retried exactly once.
func (s *ShopService) Purchase(ctx context.Context, accountID int64, realmID int32, characterGUID, templateID, quantity int64) (*PurchaseResult, error) {
	if quantity <= 0 {
		return nil, common.ErrInvalidRequest
	}

	realm, err := s.registry.Get(realmID)
	if err != nil {
		return nil, err
	}

	tpl, err := s.rm.Templates(realm.DB).GetByEntry(ctx, templateID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrItemTemplateNotFound
		}
		return nil, common.ErrStoreUnavailable
	}

	if _, ok := s.allowedClass[tpl.Class]; !ok {
		return nil, common.ErrCategoryNotAllowed
	}

	// Ownership is checked against the character's stable numeric account
	// id; usernames play no part here.
	ch, err := s.rm.Characters(realm.DB).GetByGUID(ctx, characterGUID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrCharacterNotFound
		}
		return nil, common.ErrStoreUnavailable
	}
	if ch.Deleted() || ch.AccountID != accountID {
		return nil, common.ErrCharacterNotFound
	}

	totalCost := Price(tpl.BuyPrice, s.markupPercent) * quantity

	req := &DeliveryRequest{
		ReceiverGUID: characterGUID,
		MoneyToDebit: totalCost,
		Items:        []ItemGrant{{TemplateID: templateID, Quantity: quantity}},
		SenderGUID:   models.MailSenderSystem,
		Subject:      fmt.Sprintf("Shop delivery: %s", tpl.Name),
		Body:         fmt.Sprintf("Thank you for your purchase of %dx %s.", quantity, tpl.Name),
	}

	var receipt *Receipt
	backoff := retry.WithMaxRetries(1, retry.NewConstant(250*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, derr := s.engine.Deliver(ctx, realmID, req)
		if derr != nil {
			if errors.Is(derr, common.ErrStoreUnavailable) {
				return retry.RetryableError(derr)
			}
			return derr
		}
		receipt = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "purchase completed",
		"account_id", accountID, "realm", realmID, "character", characterGUID,
		"template", templateID, "quantity", quantity, "cost", totalCost)

	return &PurchaseResult{
		MailID:     receipt.MailID,
		ItemName:   tpl.Name,
		Quantity:   quantity,
		TotalCost:  totalCost,
		NewBalance: receipt.NewBalance,
	}, nil
}
