package services

import (
	"context"

	"github.com/tavrin/realmportal/internal/common"
	"github.com/tavrin/realmportal/internal/logging"
	"github.com/tavrin/realmportal/internal/server/config"
	"github.com/tavrin/realmportal/internal/server/models"
)

// DeliverySummary is what the web tier shows after a GM mail delivery.
type DeliverySummary struct {
	MailID int64
	Stacks []DeliveredStack
	Money  int64
}

// GMMailService is the GM-facing delivery path: money and/or items credited
// to any character, gated on the caller's GM level for the target realm.
type GMMailService struct {
	engine   *DeliveryEngine
	accounts *AccountService
	minLevel int
	logger   logging.Logger
}

func NewGMMailService(engine *DeliveryEngine, accounts *AccountService, cfg *config.Config, logger logging.Logger) *GMMailService {
	return &GMMailService{
		engine:   engine,
		accounts: accounts,
		minLevel: cfg.GMMailMinLevel,
		logger:   logger.With("module", "gmmail"),
	}
}

// SendDelivery checks the sender's GM level on the target realm and hands
// the request to the delivery engine. Unlike purchases there is no debit:
// GM mail only credits.
func (s *GMMailService) SendDelivery(ctx context.Context, accountID int64, realmID int32, req *DeliveryRequest) (*DeliverySummary, error) {
	level, err := s.accounts.GMLevel(ctx, accountID, realmID)
	if err != nil {
		return nil, common.ErrInternal
	}
	if level < s.minLevel {
		return nil, common.ErrUnauthorized
	}

	// GM parcels render as official mail, not as player-to-player mail.
	req.SenderGUID = models.MailSenderSystem
	req.MoneyToDebit = 0

	receipt, err := s.engine.Deliver(ctx, realmID, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "gm delivery sent",
		"account_id", accountID, "realm", realmID, "receiver", req.ReceiverGUID,
		"mail_id", receipt.MailID, "money", req.MoneyToCredit)

	return &DeliverySummary{
		MailID: receipt.MailID,
		Stacks: receipt.Stacks,
		Money:  req.MoneyToCredit,
	}, nil
}
