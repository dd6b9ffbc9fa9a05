//go:generate go run go.uber.org/mock/mockgen -source=repository.go -destination=mock/repository.go
package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kindredkeeper/keeper/core"
)

// Repository is the interface for transaction repository
// every write runs in a single database transaction together with its balance change
type Repository interface {
	Apply(ctx context.Context, characterName string, transaction core.Transaction) (core.Transaction, core.Character, error)
	Refund(ctx context.Context, id uint, actor int64) (core.Transaction, core.Character, error)
	Erase(ctx context.Context, id uint) (core.Transaction, core.Character, error)

	Get(ctx context.Context, id uint) (core.Transaction, error)
	List(ctx context.Context, characterID uint, page, pageSize int) ([]core.Transaction, error)
	ListAll(ctx context.Context, characterID uint) ([]core.Transaction, error)
	Total(ctx context.Context, characterID uint) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new transaction repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

var newestFirst = []clause.OrderByColumn{
	{Column: clause.Column{Name: "timestamp"}, Desc: true},
	{Column: clause.Column{Name: "id"}, Desc: true},
}

// unitOfWork runs fn inside a database transaction. Any error or panic rolls every write back.
func (r *repository) unitOfWork(ctx context.Context, fn func(tx *gorm.DB) error) (err error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return core.NewErrorStorage(tx.Error, "failed to begin transaction")
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	err = fn(tx)
	if err != nil {
		tx.Rollback()
		return err
	}

	err = tx.Commit().Error
	if err != nil {
		return core.NewErrorStorage(err, "failed to commit transaction")
	}
	return nil
}

// applyDelta adds amount to a balance. A debit only matches the row while the result stays non-negative.
func applyDelta(tx *gorm.DB, characterID uint, currency core.Currency, amount int64) (core.Character, error) {
	if !currency.Valid() {
		return core.Character{}, core.NewErrorInvalidArgument("unknown currency: " + string(currency))
	}

	column := currency.Column()
	query := tx.Model(&core.Character{}).Where("id = ?", characterID)
	if amount < 0 {
		query = query.Where(column+" + ? >= 0", amount)
	}

	result := query.Update(column, gorm.Expr(column+" + ?", amount))
	if result.Error != nil {
		return core.Character{}, core.NewErrorStorage(result.Error, "failed to update balance")
	}

	var character core.Character
	err := tx.Where("id = ?", characterID).First(&character).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.Character{}, core.NewErrorCharacterNotFound()
		}
		return core.Character{}, core.NewErrorStorage(err, "failed to reload character")
	}

	if result.RowsAffected == 0 {
		return core.Character{}, core.NewErrorInsufficientFunds(currency, character.Balance(currency), amount)
	}

	return character, nil
}

func record(tx *gorm.DB, transaction *core.Transaction) error {
	transaction.ID = 0
	transaction.Timestamp = time.Now().UTC()
	err := tx.Create(transaction).Error
	if err != nil {
		return core.NewErrorStorage(err, "failed to record transaction")
	}
	return nil
}

func find(tx *gorm.DB, id uint) (core.Transaction, error) {
	var transaction core.Transaction
	err := tx.Where("id = ?", id).First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.Transaction{}, core.NewErrorTransactionNotFound()
		}
		return core.Transaction{}, core.NewErrorStorage(err, "failed to get transaction")
	}
	return transaction, nil
}

// Apply records a transaction for the named character and moves its balance by the amount
func (r *repository) Apply(ctx context.Context, characterName string, transaction core.Transaction) (core.Transaction, core.Character, error) {
	ctx, span := tracer.Start(ctx, "Transaction.Repository.Apply")
	defer span.End()

	var updated core.Character
	err := r.unitOfWork(ctx, func(tx *gorm.DB) error {
		var character core.Character
		err := tx.Where("name = ?", characterName).First(&character).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return core.NewErrorCharacterNotFound()
			}
			return core.NewErrorStorage(err, "failed to find character")
		}

		updated, err = applyDelta(tx, character.ID, transaction.Currency, transaction.Amount)
		if err != nil {
			return err
		}

		transaction.CharacterID = character.ID
		return record(tx, &transaction)
	})
	if err != nil {
		span.RecordError(err)
		return core.Transaction{}, core.Character{}, err
	}

	return transaction, updated, nil
}

// Refund records the inverse of an existing transaction. Both stay in the history.
func (r *repository) Refund(ctx context.Context, id uint, actor int64) (core.Transaction, core.Character, error) {
	ctx, span := tracer.Start(ctx, "Transaction.Repository.Refund")
	defer span.End()

	var refund core.Transaction
	var updated core.Character
	err := r.unitOfWork(ctx, func(tx *gorm.DB) error {
		original, err := find(tx, id)
		if err != nil {
			return err
		}

		updated, err = applyDelta(tx, original.CharacterID, original.Currency, -original.Amount)
		if err != nil {
			return err
		}

		refund = core.Transaction{
			CharacterID: original.CharacterID,
			Currency:    original.Currency,
			Amount:      -original.Amount,
			Actor:       actor,
			Reason:      fmt.Sprintf("refund of transaction %d", original.ID),
		}
		return record(tx, &refund)
	})
	if err != nil {
		span.RecordError(err)
		return core.Transaction{}, core.Character{}, err
	}

	return refund, updated, nil
}

// Erase reverses a transaction on the currency it recorded and removes it from the history
func (r *repository) Erase(ctx context.Context, id uint) (core.Transaction, core.Character, error) {
	ctx, span := tracer.Start(ctx, "Transaction.Repository.Erase")
	defer span.End()

	var erased core.Transaction
	var updated core.Character
	err := r.unitOfWork(ctx, func(tx *gorm.DB) error {
		var err error
		erased, err = find(tx, id)
		if err != nil {
			return err
		}

		updated, err = applyDelta(tx, erased.CharacterID, erased.Currency, -erased.Amount)
		if err != nil {
			return err
		}

		result := tx.Delete(&core.Transaction{}, erased.ID)
		if result.Error != nil {
			return core.NewErrorStorage(result.Error, "failed to delete transaction")
		}
		if result.RowsAffected == 0 {
			return core.NewErrorTransactionNotFound()
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return core.Transaction{}, core.Character{}, err
	}

	return erased, updated, nil
}

// Get returns a transaction by ID
func (r *repository) Get(ctx context.Context, id uint) (core.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Transaction.Repository.Get")
	defer span.End()

	transaction, err := find(r.db.WithContext(ctx), id)
	if err != nil {
		span.RecordError(err)
	}
	return transaction, err
}

// List returns one page of a character's history, newest first
func (r *repository) List(ctx context.Context, characterID uint, page, pageSize int) ([]core.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Transaction.Repository.List")
	defer span.End()

	var transactions []core.Transaction
	err := r.db.WithContext(ctx).
		Where("character_id = ?", characterID).
		Order(clause.OrderBy{Columns: newestFirst}).
		Limit(pageSize).
		Offset(core.Offset(page, pageSize)).
		Find(&transactions).Error
	if err != nil {
		span.RecordError(err)
		return []core.Transaction{}, core.NewErrorStorage(err, "failed to list transactions")
	}
	if transactions == nil {
		return []core.Transaction{}, nil
	}
	return transactions, nil
}

// ListAll returns a character's full history, newest first
func (r *repository) ListAll(ctx context.Context, characterID uint) ([]core.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Transaction.Repository.ListAll")
	defer span.End()

	var transactions []core.Transaction
	err := r.db.WithContext(ctx).
		Where("character_id = ?", characterID).
		Order(clause.OrderBy{Columns: newestFirst}).
		Find(&transactions).Error
	if err != nil {
		span.RecordError(err)
		return []core.Transaction{}, core.NewErrorStorage(err, "failed to list transactions")
	}
	if transactions == nil {
		return []core.Transaction{}, nil
	}
	return transactions, nil
}

// Total counts a character's transactions
func (r *repository) Total(ctx context.Context, characterID uint) (int64, error) {
	ctx, span := tracer.Start(ctx, "Transaction.Repository.Total")
	defer span.End()

	var count int64
	err := r.db.WithContext(ctx).Model(&core.Transaction{}).Where("character_id = ?", characterID).Count(&count).Error
	if err != nil {
		span.RecordError(err)
		return 0, core.NewErrorStorage(err, "failed to count transactions")
	}
	return count, nil
}

// Count returns the number of transactions in the ledger
func (r *repository) Count(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "Transaction.Repository.Count")
	defer span.End()

	var count int64
	err := r.db.WithContext(ctx).Model(&core.Transaction{}).Count(&count).Error
	if err != nil {
		span.RecordError(err)
		return 0, core.NewErrorStorage(err, "failed to count transactions")
	}
	return count, nil
}
