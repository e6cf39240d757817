// Package services contains the portal's business logic: account
// authentication, the asset-delivery engine, and the shop orchestrator.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/tavrin/realmportal/internal/common"
	"github.com/tavrin/realmportal/internal/dbx"
	"github.com/tavrin/realmportal/internal/logging"
	"github.com/tavrin/realmportal/internal/server/models"
	"github.com/tavrin/realmportal/internal/server/realms"
	"github.com/tavrin/realmportal/internal/server/repositories/repomanager"
	"github.com/tavrin/realmportal/internal/server/repositories/sequences"
)

const (
	// MaxMailStacks is the game protocol's attachment limit per parcel.
	MaxMailStacks = 12
	// MaxSlotStack caps one mail slot regardless of the template's stack size.
	MaxSlotStack = 200
	// MailExpiry is how long a parcel stays in the mailbox.
	MailExpiry = 30 * 24 * time.Hour
)

// ItemGrant asks for totalQuantity copies of one catalog item; the engine
// splits it into as many stacks as the template's stack size requires.
type ItemGrant struct {
	TemplateID int64
	Quantity   int64
}

// DeliveryRequest is the engine's unit of work: an optional currency debit
// (purchases), an optional currency credit (GM grants), and zero or more
// item grants, all targeted at one character of one realm.
type DeliveryRequest struct {
	ReceiverGUID  int64
	MoneyToDebit  int64
	MoneyToCredit int64
	Items         []ItemGrant
	SenderGUID    int64
	Subject       string
	Body          string
}

// DeliveredStack describes one item stack the engine created.
type DeliveredStack struct {
	ItemGUID   int64
	TemplateID int64
	Name       string
	Count      int32
}

// Receipt is the successful outcome of a delivery.
type Receipt struct {
	MailID     int64
	Stacks     []DeliveredStack
	NewBalance int64
}

// ItemGUIDs lists the created item instances in allocation order.
func (r *Receipt) ItemGUIDs() []int64 {
	guids := make([]int64, len(r.Stacks))
	for i, s := range r.Stacks {
		guids[i] = s.ItemGUID
	}
	return guids
}

// DeliveryEngine performs the whole multi-step mutation — balance change,
// item instantiation, mail row, item links — as one unit. Two layers of
// discipline keep it safe under concurrency:
//
//   - a per-character lock taken before the first read and held until
//     commit/rollback, so concurrent requests against one character are
//     fully serialized, and
//   - a single database transaction around every statement, so a failure at
//     any step leaves the realm store byte-identical to its pre-request
//     state.
type DeliveryEngine struct {
	registry *realms.Registry
	rm       repomanager.RealmRepositoryManager
	logger   logging.Logger
	now      func() time.Time
}

func NewDeliveryEngine(registry *realms.Registry, rm repomanager.RealmRepositoryManager, logger logging.Logger) *DeliveryEngine {
	return &DeliveryEngine{
		registry: registry,
		rm:       rm,
		logger:   logger.With("module", "delivery"),
		now:      time.Now,
	}
}

// Deliver executes the request against the given realm. On success the
// parcel row, its item rows, and their links are committed together with the
// balance change; on any failure nothing is written and the typed delivery
// error describes why. Once identifier allocation has begun the request runs
// to commit or full rollback; cancelling the context can only abort it, not
// leave it half-applied.
func (e *DeliveryEngine) Deliver(ctx context.Context, realmID int32, req *DeliveryRequest) (*Receipt, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	realm, err := e.registry.Get(realmID)
	if err != nil {
		return nil, err
	}

	release, err := realm.Locks.Acquire(ctx, req.ReceiverGUID)
	if err != nil {
		return nil, err
	}
	defer release()

	var receipt *Receipt
	err = dbx.WithTx(ctx, realm.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var txErr error
		receipt, txErr = e.deliverTx(ctx, tx, req)
		return txErr
	})
	if err != nil {
		if isDeliveryError(err) {
			return nil, err
		}
		// WithTx has rolled back by now, so the single caller-side retry
		// ErrStoreUnavailable permits cannot double-apply anything.
		e.logger.Error(ctx, "delivery failed, rolled back",
			"realm", realmID, "receiver", req.ReceiverGUID, "error", err.Error())
		return nil, common.ErrStoreUnavailable
	}

	e.logger.Info(ctx, "delivery committed",
		"realm", realmID, "receiver", req.ReceiverGUID,
		"mail_id", receipt.MailID, "stacks", len(receipt.Stacks),
		"debit", req.MoneyToDebit, "credit", req.MoneyToCredit)
	return receipt, nil
}

// deliverTx runs steps 1–8 against the transactional handle.
func (e *DeliveryEngine) deliverTx(ctx context.Context, tx dbx.DBTX, req *DeliveryRequest) (*Receipt, error) {
	chars := e.rm.Characters(tx)

	ch, err := chars.GetByGUID(ctx, req.ReceiverGUID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrCharacterNotFound
		}
		return nil, err
	}
	if ch.Deleted() {
		return nil, common.ErrCharacterNotFound
	}

	if req.MoneyToDebit > 0 && ch.Money < req.MoneyToDebit {
		return nil, &common.InsufficientFundsError{Shortfall: req.MoneyToDebit - ch.Money}
	}

	stacks, err := e.planStacks(ctx, tx, req.Items)
	if err != nil {
		return nil, err
	}

	seq := e.rm.Sequences(tx)
	mailID, err := seq.Next(ctx, sequences.MailID)
	if err != nil {
		return nil, err
	}
	var firstItemGUID int64
	if len(stacks) > 0 {
		firstItemGUID, err = seq.NextRange(ctx, sequences.ItemGUID, int64(len(stacks)))
		if err != nil {
			return nil, err
		}
	}

	newBalance := ch.Money
	if req.MoneyToDebit > 0 || req.MoneyToCredit > 0 {
		newBalance, err = chars.AdjustMoney(ctx, req.ReceiverGUID, req.MoneyToDebit, req.MoneyToCredit)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				// The guarded update re-checks the balance: an out-of-band
				// spend between our read and here fails the whole request.
				return nil, &common.InsufficientFundsError{Shortfall: req.MoneyToDebit - ch.Money}
			}
			return nil, err
		}
	}

	itemsRepo := e.rm.Items(tx)
	for i := range stacks {
		stacks[i].ItemGUID = firstItemGUID + int64(i)
		item := &models.ItemInstance{
			GUID:       stacks[i].ItemGUID,
			Entry:      stacks[i].TemplateID,
			OwnerGUID:  req.ReceiverGUID,
			Count:      stacks[i].Count,
			Durability: stacks[i].durability,
		}
		if err := itemsRepo.Insert(ctx, item); err != nil {
			return nil, err
		}
	}

	now := e.now()
	mailRepo := e.rm.Mail(tx)
	msg := &models.MailMessage{
		ID:           mailID,
		SenderGUID:   req.SenderGUID,
		ReceiverGUID: req.ReceiverGUID,
		Subject:      req.Subject,
		Body:         req.Body,
		Money:        req.MoneyToCredit,
		HasItems:     len(stacks) > 0,
		DeliverTime:  now,
		ExpireTime:   now.Add(MailExpiry),
	}
	if err := mailRepo.Insert(ctx, msg); err != nil {
		return nil, err
	}

	for i := range stacks {
		link := &models.MailItemLink{
			MailID:       mailID,
			ItemGUID:     stacks[i].ItemGUID,
			ReceiverGUID: req.ReceiverGUID,
		}
		if err := mailRepo.InsertLink(ctx, link); err != nil {
			return nil, err
		}
	}

	out := make([]DeliveredStack, len(stacks))
	for i, s := range stacks {
		out[i] = s.DeliveredStack
	}
	return &Receipt{MailID: mailID, Stacks: out, NewBalance: newBalance}, nil
}

type plannedStack struct {
	DeliveredStack
	durability int32
}

// planStacks loads every requested template and splits the quantities into
// stacks. The slot count is computed arithmetically and checked against the
// parcel limit as each grant is read, so an oversized request is rejected in
// O(1) per grant — never proportional to the requested quantity — and before
// a single identifier is allocated or row written.
func (e *DeliveryEngine) planStacks(ctx context.Context, tx dbx.DBTX, grants []ItemGrant) ([]plannedStack, error) {
	tpls := e.rm.Templates(tx)

	var stacks []plannedStack
	for _, grant := range grants {
		tpl, err := tpls.GetByEntry(ctx, grant.TemplateID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, common.ErrItemTemplateNotFound
			}
			return nil, err
		}

		size := slotSize(tpl.MaxStackSize)
		needed := (grant.Quantity + size - 1) / size
		if int64(len(stacks))+needed > MaxMailStacks {
			return nil, common.ErrTooManyMailSlots
		}

		for _, count := range SplitStacks(grant.Quantity, tpl.MaxStackSize) {
			stacks = append(stacks, plannedStack{
				DeliveredStack: DeliveredStack{
					TemplateID: tpl.Entry,
					Name:       tpl.Name,
					Count:      count,
				},
				durability: tpl.Durability,
			})
		}
	}

	return stacks, nil
}

// slotSize is the effective stack size for one mail slot: the template's
// stack size clamped to the slot ceiling, never below 1.
func slotSize(maxStackSize int32) int64 {
	size := int64(maxStackSize)
	if size > MaxSlotStack {
		size = MaxSlotStack
	}
	if size < 1 {
		size = 1
	}
	return size
}

// SplitStacks breaks quantity into stack counts no larger than the smaller
// of the template's stack size and the mail-slot ceiling. The counts sum to
// quantity and at most the last one is short.
func SplitStacks(quantity int64, maxStackSize int32) []int32 {
	size := slotSize(maxStackSize)

	var counts []int32
	for quantity > 0 {
		n := quantity
		if n > size {
			n = size
		}
		counts = append(counts, int32(n))
		quantity -= n
	}
	return counts
}

func validateRequest(req *DeliveryRequest) error {
	if req == nil || req.ReceiverGUID <= 0 {
		return common.ErrInvalidRequest
	}
	if req.MoneyToDebit < 0 || req.MoneyToCredit < 0 {
		return common.ErrInvalidRequest
	}
	if req.MoneyToDebit == 0 && req.MoneyToCredit == 0 && len(req.Items) == 0 {
		return common.ErrInvalidRequest
	}
	for _, g := range req.Items {
		if g.Quantity <= 0 {
			return common.ErrInvalidRequest
		}
	}
	return nil
}

// isDeliveryError reports whether err belongs to the delivery taxonomy and
// may be shown to callers as-is. Anything else is a store internal.
func isDeliveryError(err error) bool {
	return errors.Is(err, common.ErrCharacterNotFound) ||
		errors.Is(err, common.ErrItemTemplateNotFound) ||
		errors.Is(err, common.ErrTooManyMailSlots) ||
		errors.Is(err, common.ErrInsufficientFunds) ||
		errors.Is(err, common.ErrInvalidRequest) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
