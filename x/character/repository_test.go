package character

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindredkeeper/keeper/core"
	"github.com/kindredkeeper/keeper/internal/testutil"
)

func TestRepository(t *testing.T) {
	db, cleanupDB := testutil.CreateDB()
	defer cleanupDB()

	mc, cleanupMC := testutil.CreateMC()
	defer cleanupMC()

	ctx := context.Background()
	repo := NewRepository(db, mc)

	created, err := repo.Create(ctx, core.Character{Name: "Arin", Owner: 7, AP: 999})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, int64(0), created.AP)
	assert.Equal(t, int64(0), created.RP)

	// names are unique
	_, err = repo.Create(ctx, core.Character{Name: "Arin", Owner: 8})
	assert.ErrorIs(t, err, core.ErrorAlreadyExists{})

	found, err := repo.GetByName(ctx, "Arin")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, int64(7), found.Owner)

	found, err = repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Arin", found.Name)

	_, err = repo.GetByName(ctx, "Nobody")
	assert.ErrorIs(t, err, core.ErrorNotFound{})

	_, err = repo.Create(ctx, core.Character{Name: "Bryn", Owner: 7})
	require.NoError(t, err)

	owned, err := repo.ListByOwner(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	owned, err = repo.ListByOwner(ctx, 100)
	require.NoError(t, err)
	assert.Empty(t, owned)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	transaction := core.Transaction{CharacterID: created.ID, Currency: core.CurrencyAP, Amount: 10, Timestamp: time.Now()}
	require.NoError(t, db.Create(&transaction).Error)
	require.NoError(t, db.Model(&core.Character{}).Where("id = ?", created.ID).Update("ap", 10).Error)

	owner, err := repo.GetByTransactionID(ctx, transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, "Arin", owner.Name)
	assert.Equal(t, int64(10), owner.AP)

	_, err = repo.GetByTransactionID(ctx, transaction.ID+100)
	assert.ErrorIs(t, err, core.ErrorNotFound{})

	// deletion takes the history with it
	deleted, err := repo.Delete(ctx, "Arin")
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	var remaining int64
	require.NoError(t, db.Model(&core.Transaction{}).Where("character_id = ?", created.ID).Count(&remaining).Error)
	assert.Equal(t, int64(0), remaining)

	_, err = repo.GetByName(ctx, "Arin")
	assert.ErrorIs(t, err, core.ErrorNotFound{})

	_, err = repo.Delete(ctx, "Arin")
	assert.ErrorIs(t, err, core.ErrorNotFound{})

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// the name is free again
	_, err = repo.Create(ctx, core.Character{Name: "Arin", Owner: 8})
	assert.NoError(t, err)
}

func TestRepositoryLeaderboard(t *testing.T) {
	db, cleanupDB := testutil.CreateDB()
	defer cleanupDB()

	mc, cleanupMC := testutil.CreateMC()
	defer cleanupMC()

	ctx := context.Background()
	repo := NewRepository(db, mc)

	balances := []struct {
		name string
		ap   int64
		rp   int64
	}{
		{"b", 5, 7},
		{"C", 9, 7},
		{"A", 5, 4},
	}
	for _, b := range balances {
		created, err := repo.Create(ctx, core.Character{Name: b.name, Owner: 1})
		require.NoError(t, err)
		require.NoError(t, db.Model(&core.Character{}).Where("id = ?", created.ID).
			Updates(map[string]interface{}{"ap": b.ap, "rp": b.rp}).Error)
	}

	names := func(characters []core.Character) []string {
		var result []string
		for _, c := range characters {
			result = append(result, c.Name)
		}
		return result
	}

	// equal balances fall back to name order, ignoring case
	byAP, err := repo.List(ctx, 1, 10, core.SortByAP)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "b"}, names(byAP))

	byRP, err := repo.List(ctx, 1, 10, core.SortByRP)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "C", "A"}, names(byRP))

	byName, err := repo.List(ctx, 1, 10, core.SortByName)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "b", "C"}, names(byName))

	for i := 0; i < 22; i++ {
		_, err := repo.Create(ctx, core.Character{Name: fmt.Sprintf("extra%02d", i), Owner: 2})
		require.NoError(t, err)
	}

	total, err := repo.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	assert.Equal(t, 3, core.Pages(total, 10))

	last, err := repo.List(ctx, 3, 10, core.SortByName)
	require.NoError(t, err)
	assert.Len(t, last, 5)

	empty, err := repo.List(ctx, 4, 10, core.SortByName)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
