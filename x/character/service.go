// Package character manages ledger characters
package character

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kindredkeeper/keeper/core"
)

var tracer = otel.Tracer("character")

type service struct {
	repo Repository
	feed core.FeedService
}

// NewService creates a new character service
func NewService(repo Repository, feed core.FeedService) core.CharacterService {
	return &service{repo, feed}
}

// Create registers a new character with empty balances
func (s *service) Create(ctx context.Context, name string, owner int64) (core.Character, error) {
	ctx, span := tracer.Start(ctx, "Character.Service.Create")
	defer span.End()

	span.SetAttributes(attribute.String("name", name), attribute.Int64("owner", owner))

	if strings.TrimSpace(name) == "" {
		return core.Character{}, core.NewErrorInvalidArgument("character name is empty")
	}
	if len(name) > core.MaxNameLength {
		return core.Character{}, core.NewErrorInvalidArgument("character name is too long")
	}

	created, err := s.repo.Create(ctx, core.Character{Name: name, Owner: owner})
	if err != nil {
		span.RecordError(err)
		return core.Character{}, err
	}

	s.publish(ctx, core.LedgerEvent{Type: core.EventCharacterCreated, Character: created})

	return created, nil
}

// Delete removes a character together with its history
func (s *service) Delete(ctx context.Context, name string) error {
	ctx, span := tracer.Start(ctx, "Character.Service.Delete")
	defer span.End()

	deleted, err := s.repo.Delete(ctx, name)
	if err != nil {
		span.RecordError(err)
		return err
	}

	s.publish(ctx, core.LedgerEvent{Type: core.EventCharacterDeleted, Character: deleted})

	return nil
}

func (s *service) publish(ctx context.Context, event core.LedgerEvent) {
	event.Timestamp = time.Now().UTC()
	if err := s.feed.Publish(ctx, event); err != nil {
		slog.ErrorContext(
			ctx, "failed to publish ledger event",
			slog.String("type", string(event.Type)),
			slog.String("error", err.Error()),
		)
	}
}

func (s *service) Get(ctx context.Context, id uint) (core.Character, error) {
	ctx, span := tracer.Start(ctx, "Character.Service.Get")
	defer span.End()

	return s.repo.Get(ctx, id)
}

func (s *service) GetByName(ctx context.Context, name string) (core.Character, error) {
	ctx, span := tracer.Start(ctx, "Character.Service.GetByName")
	defer span.End()

	return s.repo.GetByName(ctx, name)
}

func (s *service) GetByTransactionID(ctx context.Context, transactionID uint) (core.Character, error) {
	ctx, span := tracer.Start(ctx, "Character.Service.GetByTransactionID")
	defer span.End()

	return s.repo.GetByTransactionID(ctx, transactionID)
}

func (s *service) ListByOwner(ctx context.Context, owner int64) ([]core.Character, error) {
	ctx, span := tracer.Start(ctx, "Character.Service.ListByOwner")
	defer span.End()

	return s.repo.ListByOwner(ctx, owner)
}

// List returns a leaderboard page. Pages are 1-based.
func (s *service) List(ctx context.Context, page, pageSize int, sort core.SortKey) ([]core.Character, error) {
	ctx, span := tracer.Start(ctx, "Character.Service.List")
	defer span.End()

	if pageSize <= 0 {
		return nil, core.NewErrorInvalidArgument("page size must be positive")
	}
	switch sort {
	case core.SortByName, core.SortByAP, core.SortByRP:
	default:
		return nil, core.NewErrorInvalidArgument("unknown sort key: " + string(sort))
	}

	return s.repo.List(ctx, page, pageSize, sort)
}

// Pages returns the leaderboard page count for pageSize
func (s *service) Pages(ctx context.Context, pageSize int) (int, error) {
	ctx, span := tracer.Start(ctx, "Character.Service.Pages")
	defer span.End()

	if pageSize <= 0 {
		return 0, core.NewErrorInvalidArgument("page size must be positive")
	}

	total, err := s.repo.Total(ctx)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	return core.Pages(total, pageSize), nil
}

// Count returns the number of characters
func (s *service) Count(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "Character.Service.Count")
	defer span.End()

	return s.repo.Count(ctx)
}
