// Package transaction applies, refunds and erases ledger transactions
package transaction

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kindredkeeper/keeper/core"
)

var tracer = otel.Tracer("transaction")

type service struct {
	repo      Repository
	character core.CharacterService
	feed      core.FeedService
}

// NewService creates a new transaction service
func NewService(repo Repository, character core.CharacterService, feed core.FeedService) core.TransactionService {
	return &service{repo, character, feed}
}

// Apply moves a character's balance by amount and records why.
// Buying, adding and removing are all Apply with a different sign.
func (s *service) Apply(ctx context.Context, characterName string, actor int64, currency core.Currency, amount int64, reason string) (core.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Transaction.Service.Apply")
	defer span.End()

	span.SetAttributes(
		attribute.String("character", characterName),
		attribute.String("currency", string(currency)),
		attribute.Int64("amount", amount),
	)

	if !currency.Valid() {
		return core.Transaction{}, core.NewErrorInvalidArgument("unknown currency: " + string(currency))
	}
	if len(reason) > core.MaxReasonLength {
		return core.Transaction{}, core.NewErrorInvalidArgument("reason is too long")
	}

	applied, character, err := s.repo.Apply(ctx, characterName, core.Transaction{
		Currency: currency,
		Amount:   amount,
		Actor:    actor,
		Reason:   reason,
	})
	if err != nil {
		span.RecordError(err)
		return core.Transaction{}, err
	}

	s.publish(ctx, core.EventTransactionApplied, character, applied)

	return applied, nil
}

// Refund records the inverse of a transaction on behalf of actor
func (s *service) Refund(ctx context.Context, id uint, actor int64) (core.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Transaction.Service.Refund")
	defer span.End()

	refund, character, err := s.repo.Refund(ctx, id, actor)
	if err != nil {
		span.RecordError(err)
		return core.Transaction{}, err
	}

	s.publish(ctx, core.EventTransactionRefunded, character, refund)

	return refund, nil
}

// Erase reverses a transaction and drops it from the history
func (s *service) Erase(ctx context.Context, id uint) (core.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Transaction.Service.Erase")
	defer span.End()

	erased, character, err := s.repo.Erase(ctx, id)
	if err != nil {
		span.RecordError(err)
		return core.Transaction{}, err
	}

	s.publish(ctx, core.EventTransactionErased, character, erased)

	return erased, nil
}

func (s *service) publish(ctx context.Context, typ core.EventType, character core.Character, transaction core.Transaction) {
	err := s.feed.Publish(ctx, core.LedgerEvent{
		Type:        typ,
		Character:   character,
		Transaction: &transaction,
		Timestamp:   time.Now().UTC(),
	})
	if err != nil {
		slog.ErrorContext(
			ctx, "failed to publish ledger event",
			slog.String("type", string(typ)),
			slog.String("error", err.Error()),
		)
	}
}

func (s *service) Get(ctx context.Context, id uint) (core.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Transaction.Service.Get")
	defer span.End()

	return s.repo.Get(ctx, id)
}

// List returns one page of the named character's history, newest first
func (s *service) List(ctx context.Context, characterName string, page, pageSize int) ([]core.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Transaction.Service.List")
	defer span.End()

	if pageSize <= 0 {
		return nil, core.NewErrorInvalidArgument("page size must be positive")
	}

	character, err := s.character.GetByName(ctx, characterName)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return s.repo.List(ctx, character.ID, page, pageSize)
}

// Pages returns the history page count of the named character
func (s *service) Pages(ctx context.Context, characterName string, pageSize int) (int, error) {
	ctx, span := tracer.Start(ctx, "Transaction.Service.Pages")
	defer span.End()

	if pageSize <= 0 {
		return 0, core.NewErrorInvalidArgument("page size must be positive")
	}

	character, err := s.character.GetByName(ctx, characterName)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	total, err := s.repo.Total(ctx, character.ID)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	return core.Pages(total, pageSize), nil
}

// ListAll returns the named character's full history, newest first
func (s *service) ListAll(ctx context.Context, characterName string) ([]core.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Transaction.Service.ListAll")
	defer span.End()

	character, err := s.character.GetByName(ctx, characterName)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return s.repo.ListAll(ctx, character.ID)
}

func (s *service) Count(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "Transaction.Service.Count")
	defer span.End()

	return s.repo.Count(ctx)
}
