//go:generate go run go.uber.org/mock/mockgen -source=interfaces.go -destination=mock/services.go
package core

import (
	"context"
)

type CharacterService interface {
	Create(ctx context.Context, name string, owner int64) (Character, error)
	Delete(ctx context.Context, name string) error

	Get(ctx context.Context, id uint) (Character, error)
	GetByName(ctx context.Context, name string) (Character, error)
	GetByTransactionID(ctx context.Context, transactionID uint) (Character, error)
	ListByOwner(ctx context.Context, owner int64) ([]Character, error)
	List(ctx context.Context, page, pageSize int, sort SortKey) ([]Character, error)
	Pages(ctx context.Context, pageSize int) (int, error)
	Count(ctx context.Context) (int64, error)
}

type TransactionService interface {
	Apply(ctx context.Context, characterName string, actor int64, currency Currency, amount int64, reason string) (Transaction, error)
	Refund(ctx context.Context, id uint, actor int64) (Transaction, error)
	Erase(ctx context.Context, id uint) (Transaction, error)

	Get(ctx context.Context, id uint) (Transaction, error)
	List(ctx context.Context, characterName string, page, pageSize int) ([]Transaction, error)
	Pages(ctx context.Context, characterName string, pageSize int) (int, error)
	ListAll(ctx context.Context, characterName string) ([]Transaction, error)
	Count(ctx context.Context) (int64, error)
}

type FeedService interface {
	Publish(ctx context.Context, event LedgerEvent) error
	Subscribe(ctx context.Context) (<-chan LedgerEvent, func(), error)
}
