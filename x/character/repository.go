//go:generate go run go.uber.org/mock/mockgen -source=repository.go -destination=mock/repository.go
package character

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/bradfitz/gomemcache/memcache"
	"gorm.io/gorm"

	"github.com/kindredkeeper/keeper/core"
)

const countCacheKey = "character_count"

// Repository is the interface for character repository
type Repository interface {
	Create(ctx context.Context, character core.Character) (core.Character, error)
	Delete(ctx context.Context, name string) (core.Character, error)

	Get(ctx context.Context, id uint) (core.Character, error)
	GetByName(ctx context.Context, name string) (core.Character, error)
	GetByTransactionID(ctx context.Context, transactionID uint) (core.Character, error)
	ListByOwner(ctx context.Context, owner int64) ([]core.Character, error)
	List(ctx context.Context, page, pageSize int, sort core.SortKey) ([]core.Character, error)
	Total(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
	mc *memcache.Client
}

// NewRepository creates a new character repository
func NewRepository(db *gorm.DB, mc *memcache.Client) Repository {
	r := &repository{db, mc}
	r.refreshCount(context.Background())
	return r
}

func (r *repository) refreshCount(ctx context.Context) int64 {
	var count int64
	err := r.db.WithContext(ctx).Model(&core.Character{}).Count(&count).Error
	if err != nil {
		slog.ErrorContext(
			ctx, "failed to count characters",
			slog.String("error", err.Error()),
		)
		return 0
	}

	err = r.mc.Set(&memcache.Item{Key: countCacheKey, Value: []byte(strconv.FormatInt(count, 10))})
	if err != nil {
		slog.WarnContext(
			ctx, "failed to cache character count",
			slog.String("error", err.Error()),
		)
	}
	return count
}

// Count returns the cached number of characters
func (r *repository) Count(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "Character.Repository.Count")
	defer span.End()

	item, err := r.mc.Get(countCacheKey)
	if err != nil {
		if errors.Is(err, memcache.ErrCacheMiss) {
			return r.Total(ctx)
		}
		span.RecordError(err)
		return 0, err
	}

	count, err := strconv.ParseInt(string(item.Value), 10, 64)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	return count, nil
}

// Total counts characters in the database
func (r *repository) Total(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "Character.Repository.Total")
	defer span.End()

	var count int64
	err := r.db.WithContext(ctx).Model(&core.Character{}).Count(&count).Error
	if err != nil {
		span.RecordError(err)
		return 0, core.NewErrorStorage(err, "failed to count characters")
	}
	return count, nil
}

// Create inserts a new character with empty balances
func (r *repository) Create(ctx context.Context, character core.Character) (core.Character, error) {
	ctx, span := tracer.Start(ctx, "Character.Repository.Create")
	defer span.End()

	character.ID = 0
	character.AP = 0
	character.RP = 0

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		span.RecordError(tx.Error)
		return core.Character{}, core.NewErrorStorage(tx.Error, "failed to begin transaction")
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var existing int64
	err := tx.Model(&core.Character{}).Where("name = ?", character.Name).Count(&existing).Error
	if err != nil {
		tx.Rollback()
		span.RecordError(err)
		return core.Character{}, core.NewErrorStorage(err, "failed to check character name")
	}
	if existing > 0 {
		tx.Rollback()
		return core.Character{}, core.NewErrorAlreadyExists()
	}

	err = tx.Create(&character).Error
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return core.Character{}, core.NewErrorAlreadyExists()
		}
		span.RecordError(err)
		return core.Character{}, core.NewErrorStorage(err, "failed to create character")
	}

	err = tx.Commit().Error
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return core.Character{}, core.NewErrorAlreadyExists()
		}
		return core.Character{}, core.NewErrorStorage(err, "failed to commit character")
	}

	r.refreshCount(ctx)

	return character, nil
}

// Delete removes a character and every transaction it owns
func (r *repository) Delete(ctx context.Context, name string) (core.Character, error) {
	ctx, span := tracer.Start(ctx, "Character.Repository.Delete")
	defer span.End()

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		span.RecordError(tx.Error)
		return core.Character{}, core.NewErrorStorage(tx.Error, "failed to begin transaction")
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var character core.Character
	err := tx.Where("name = ?", name).First(&character).Error
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.Character{}, core.NewErrorCharacterNotFound()
		}
		span.RecordError(err)
		return core.Character{}, core.NewErrorStorage(err, "failed to find character")
	}

	err = tx.Where("character_id = ?", character.ID).Delete(&core.Transaction{}).Error
	if err != nil {
		tx.Rollback()
		span.RecordError(err)
		return core.Character{}, core.NewErrorStorage(err, "failed to delete transactions")
	}

	result := tx.Delete(&core.Character{}, character.ID)
	if result.Error != nil {
		tx.Rollback()
		span.RecordError(result.Error)
		return core.Character{}, core.NewErrorStorage(result.Error, "failed to delete character")
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return core.Character{}, core.NewErrorCharacterNotFound()
	}

	err = tx.Commit().Error
	if err != nil {
		span.RecordError(err)
		return core.Character{}, core.NewErrorStorage(err, "failed to commit character deletion")
	}

	r.refreshCount(ctx)

	return character, nil
}

func (r *repository) first(query *gorm.DB) (core.Character, error) {
	var character core.Character
	err := query.First(&character).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.Character{}, core.NewErrorCharacterNotFound()
		}
		return core.Character{}, core.NewErrorStorage(err, "failed to get character")
	}
	return character, nil
}

// Get returns a character by ID
func (r *repository) Get(ctx context.Context, id uint) (core.Character, error) {
	ctx, span := tracer.Start(ctx, "Character.Repository.Get")
	defer span.End()

	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

// GetByName returns a character by its exact name
func (r *repository) GetByName(ctx context.Context, name string) (core.Character, error) {
	ctx, span := tracer.Start(ctx, "Character.Repository.GetByName")
	defer span.End()

	return r.first(r.db.WithContext(ctx).Where("name = ?", name))
}

// GetByTransactionID returns the character owning the given transaction
func (r *repository) GetByTransactionID(ctx context.Context, transactionID uint) (core.Character, error) {
	ctx, span := tracer.Start(ctx, "Character.Repository.GetByTransactionID")
	defer span.End()

	query := r.db.WithContext(ctx).
		Joins("JOIN transactions ON transactions.character_id = characters.id").
		Where("transactions.id = ?", transactionID)

	return r.first(query)
}

// ListByOwner returns every character of the given owner
func (r *repository) ListByOwner(ctx context.Context, owner int64) ([]core.Character, error) {
	ctx, span := tracer.Start(ctx, "Character.Repository.ListByOwner")
	defer span.End()

	var characters []core.Character
	err := r.db.WithContext(ctx).Where("owner = ?", owner).Order("id ASC").Find(&characters).Error
	if err != nil {
		span.RecordError(err)
		return []core.Character{}, core.NewErrorStorage(err, "failed to list characters")
	}
	if characters == nil {
		return []core.Character{}, nil
	}
	return characters, nil
}

// List returns one leaderboard page
func (r *repository) List(ctx context.Context, page, pageSize int, sort core.SortKey) ([]core.Character, error) {
	ctx, span := tracer.Start(ctx, "Character.Repository.List")
	defer span.End()

	query := r.db.WithContext(ctx).Model(&core.Character{})
	switch sort {
	case core.SortByAP:
		query = query.Order("ap DESC")
	case core.SortByRP:
		query = query.Order("rp DESC")
	}
	query = query.Order("LOWER(name) ASC").Order("id ASC")

	var characters []core.Character
	err := query.Limit(pageSize).Offset(core.Offset(page, pageSize)).Find(&characters).Error
	if err != nil {
		span.RecordError(err)
		return []core.Character{}, core.NewErrorStorage(err, "failed to list characters")
	}
	if characters == nil {
		return []core.Character{}, nil
	}
	return characters, nil
}
