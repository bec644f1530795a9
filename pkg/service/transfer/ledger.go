package transfer

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/amirasaad/speibank/pkg/domain"
	"github.com/amirasaad/speibank/pkg/domain/account"
	"github.com/amirasaad/speibank/pkg/domain/events"
	"github.com/amirasaad/speibank/pkg/domain/money"
	"github.com/amirasaad/speibank/pkg/domain/movement"
	"github.com/amirasaad/speibank/pkg/mapper"
	"github.com/amirasaad/speibank/pkg/repository"
	accountrepo "github.com/amirasaad/speibank/pkg/repository/account"
	movementrepo "github.com/amirasaad/speibank/pkg/repository/movement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// record writes the movements of the transfer concurrently, then updates
// balances, all in one transaction.
func (s *Service) record(ctx context.Context, e *execution) error {
	rows := s.movements(e)
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		movements, err := repository.GetRepo[movementrepo.Repository](uow)
		if err != nil {
			return err
		}
		accounts, err := repository.GetRepo[accountrepo.Repository](uow)
		if err != nil {
			return err
		}

		e.to(StateLedgerWriting)
		g, gctx := errgroup.WithContext(ctx)
		for _, m := range rows {
			g.Go(func() error {
				if err := movements.Create(gctx, mapper.MapMovementToCreate(m)); err != nil {
					return fmt.Errorf("write %s %s movement: %w", m.Direction, m.Category, err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		e.to(StateBalanceUpdating)
		balance, err := debitSender(ctx, accounts, e.sender.ID, e.sender.Balance, e.total)
		if err != nil {
			return fmt.Errorf("debit sender: %w", err)
		}
		e.newBalance = balance

		if e.recipient != nil {
			if _, err := accounts.Credit(ctx, e.recipient.ID, e.req.Amount); err != nil {
				return fmt.Errorf("credit recipient: %w", err)
			}
		}
		if e.collector != nil {
			if _, err := accounts.Credit(ctx, e.collector.ID, e.commission); err != nil {
				return fmt.Errorf("credit commission collector: %w", err)
			}
		}
		return nil
	})
}

// debitSender swaps the sender balance from the value read at the start of
// the transfer. A conflict means another writer, such as an inbound credit,
// touched the row; the current balance is re-read and checked again.
func debitSender(
	ctx context.Context,
	accounts accountrepo.Repository,
	senderID uuid.UUID,
	expected, total decimal.Decimal,
) (decimal.Decimal, error) {
	for range maxDebitAttempts {
		next := money.Normalize(expected.Sub(total))
		err := accounts.CompareAndSetBalance(ctx, senderID, expected, next)
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return decimal.Zero, err
		}
		current, err := accounts.Get(ctx, senderID)
		if err != nil {
			return decimal.Zero, err
		}
		if total.GreaterThan(current.Balance) {
			return decimal.Zero, account.ErrInsufficientFunds
		}
		expected = current.Balance
	}
	return decimal.Zero, domain.ErrConflict
}

// movements builds the ledger rows of the transfer. All share the
// tracking code.
func (s *Service) movements(e *execution) []*movement.Movement {
	req := e.req
	senderName := e.sender.FullName()
	recipientName := req.RecipientName
	if recipientName == "" && e.recipient != nil {
		recipientName = e.recipient.FullName()
	}

	category := movement.CategoryWire
	if e.internal {
		category = movement.CategoryInternal
	}

	meta := make(map[string]any, len(req.Metadata)+6)
	maps.Copy(meta, req.Metadata)
	meta["account_type"] = string(req.AccountType)
	meta["bank_code"] = e.bank.BankCode
	if !e.internal {
		meta["gateway_tracking_id"] = e.gatewayTrackingID
		meta["numeric_reference"] = e.numericReference
		meta["institution_code"] = e.institutionCode
		if e.gatewayRaw != nil {
			meta["gateway_response"] = e.gatewayRaw
		}
	}
	if req.PendingMovementID != uuid.Nil {
		meta["pending_movement_id"] = req.PendingMovementID.String()
	}

	rows := []*movement.Movement{{
		ID:                  uuid.New(),
		AccountID:           e.sender.ID,
		Category:            category,
		Direction:           movement.DirectionOutbound,
		Status:              movement.StatusCompleted,
		Amount:              req.Amount,
		Commission:          e.commission,
		FinalAmount:         movement.FinalAmount(movement.DirectionOutbound, req.Amount, e.commission),
		TrackingCode:        e.trackingCode,
		CounterpartyName:    recipientName,
		CounterpartyBank:    e.bank.BankName,
		CounterpartyAccount: req.RecipientAccount,
		Concept:             concept(req.Concept),
		SecondaryConcept:    req.SecondaryConcept,
		Metadata:            meta,
	}}

	senderBank, _ := s.directory.ResolveBank(e.sender.Clabe)
	if e.recipient != nil {
		rows = append(rows, &movement.Movement{
			ID:                  uuid.New(),
			AccountID:           e.recipient.ID,
			Category:            movement.CategoryInternal,
			Direction:           movement.DirectionInbound,
			Status:              movement.StatusCompleted,
			Amount:              req.Amount,
			Commission:          decimal.Zero,
			FinalAmount:         req.Amount,
			TrackingCode:        e.trackingCode,
			CounterpartyName:    senderName,
			CounterpartyBank:    senderBank.BankName,
			CounterpartyAccount: e.sender.Clabe,
			Concept:             concept(req.Concept),
			SecondaryConcept:    req.SecondaryConcept,
			Metadata:            map[string]any{"sender_id": e.sender.ID.String()},
		})
	}
	if e.collector != nil {
		rows = append(rows, &movement.Movement{
			ID:                  uuid.New(),
			AccountID:           e.collector.ID,
			Category:            movement.CategoryCommission,
			Direction:           movement.DirectionInbound,
			Status:              movement.StatusCompleted,
			Amount:              e.commission,
			Commission:          decimal.Zero,
			FinalAmount:         e.commission,
			TrackingCode:        e.trackingCode,
			CounterpartyName:    senderName,
			CounterpartyBank:    senderBank.BankName,
			CounterpartyAccount: e.sender.Clabe,
			Concept:             "Comisión por transferencia",
			Metadata: map[string]any{
				"sender_id":           e.sender.ID.String(),
				"transfer_amount":     money.Format(req.Amount),
				"recipient_name":      recipientName,
				"recipient_account":   req.RecipientAccount,
				"gateway_tracking_id": e.gatewayTrackingID,
			},
		})
	}
	return rows
}

func (s *Service) transferEvent(e *execution) events.TransferEvent {
	ev := events.TransferEvent{
		RecipientAccount: e.req.RecipientAccount,
		TrackingCode:     e.trackingCode,
		Amount:           e.req.Amount,
		Commission:       e.commission,
		Internal:         e.internal,
		OccurredAt:       time.Now().UTC(),
	}
	if e.sender != nil {
		ev.SenderID = e.sender.ID
	}
	if e.recipient != nil {
		ev.RecipientID = e.recipient.ID
	}
	return ev
}

func (s *Service) emitCompleted(ctx context.Context, e *execution) {
	s.emit(ctx, events.TransferCompleted{
		TransferEvent: s.transferEvent(e),
		NewBalance:    e.newBalance,
	}, e.logger)
}

func (s *Service) failedEvent(e *execution, err error) events.TransferFailed {
	return events.TransferFailed{TransferEvent: s.transferEvent(e), Reason: err.Error()}
}

func (s *Service) ledgerFailedEvent(e *execution, stage State, err error) events.TransferLedgerFailed {
	return events.TransferLedgerFailed{
		TransferEvent:     s.transferEvent(e),
		GatewayTrackingID: e.gatewayTrackingID,
		Stage:             string(stage),
		Reason:            err.Error(),
	}
}
