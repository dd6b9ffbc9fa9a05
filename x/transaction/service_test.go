package transaction

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/kindredkeeper/keeper/core"
	mock_core "github.com/kindredkeeper/keeper/core/mock"
	mock_transaction "github.com/kindredkeeper/keeper/x/transaction/mock"
)

func TestServiceApply(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_transaction.NewMockRepository(ctrl)
	characters := mock_core.NewMockCharacterService(ctrl)
	feed := mock_core.NewMockFeedService(ctrl)
	service := NewService(repo, characters, feed)

	ctx := context.Background()

	expected := core.Transaction{Currency: core.CurrencyAP, Amount: 50, Actor: 1, Reason: "quest"}
	repo.EXPECT().Apply(gomock.Any(), "Arin", expected).
		Return(core.Transaction{ID: 1, CharacterID: 3, Currency: core.CurrencyAP, Amount: 50, Actor: 1, Reason: "quest"}, core.Character{ID: 3, Name: "Arin", AP: 50}, nil)
	feed.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, event core.LedgerEvent) error {
		assert.Equal(t, core.EventTransactionApplied, event.Type)
		assert.Equal(t, int64(50), event.Character.AP)
		assert.Equal(t, uint(1), event.Transaction.ID)
		return nil
	})

	applied, err := service.Apply(ctx, "Arin", 1, core.CurrencyAP, 50, "quest")
	assert.NoError(t, err)
	assert.Equal(t, uint(1), applied.ID)

	_, err = service.Apply(ctx, "Arin", 1, core.Currency("GP"), 50, "")
	assert.ErrorIs(t, err, core.ErrorInvalidArgument{})

	_, err = service.Apply(ctx, "Arin", 1, core.CurrencyAP, 50, strings.Repeat("x", core.MaxReasonLength+1))
	assert.ErrorIs(t, err, core.ErrorInvalidArgument{})

	repo.EXPECT().Apply(gomock.Any(), "Arin", gomock.Any()).
		Return(core.Transaction{}, core.Character{}, core.NewErrorInsufficientFunds(core.CurrencyAP, 50, -80))
	_, err = service.Apply(ctx, "Arin", 1, core.CurrencyAP, -80, "")
	assert.ErrorIs(t, err, core.ErrorInsufficientFunds{})
}

func TestServiceRefundErase(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_transaction.NewMockRepository(ctrl)
	characters := mock_core.NewMockCharacterService(ctrl)
	feed := mock_core.NewMockFeedService(ctrl)
	service := NewService(repo, characters, feed)

	ctx := context.Background()

	repo.EXPECT().Refund(gomock.Any(), uint(2), int64(9)).
		Return(core.Transaction{ID: 3, Amount: 30, Reason: "refund of transaction 2"}, core.Character{ID: 1}, nil)
	repo.EXPECT().Erase(gomock.Any(), uint(1)).
		Return(core.Transaction{}, core.Character{}, core.NewErrorInsufficientFunds(core.CurrencyAP, 20, -50))
	repo.EXPECT().Erase(gomock.Any(), uint(3)).
		Return(core.Transaction{ID: 3, Amount: 30}, core.Character{ID: 1}, nil)

	var published []core.EventType
	feed.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, event core.LedgerEvent) error {
		published = append(published, event.Type)
		return nil
	}).Times(2)

	refund, err := service.Refund(ctx, 2, 9)
	assert.NoError(t, err)
	assert.Equal(t, "refund of transaction 2", refund.Reason)

	_, err = service.Erase(ctx, 1)
	assert.ErrorIs(t, err, core.ErrorInsufficientFunds{})

	erased, err := service.Erase(ctx, 3)
	assert.NoError(t, err)
	assert.Equal(t, uint(3), erased.ID)

	assert.Equal(t, []core.EventType{core.EventTransactionRefunded, core.EventTransactionErased}, published)
}

func TestServiceList(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_transaction.NewMockRepository(ctrl)
	characters := mock_core.NewMockCharacterService(ctrl)
	feed := mock_core.NewMockFeedService(ctrl)
	service := NewService(repo, characters, feed)

	ctx := context.Background()

	characters.EXPECT().GetByName(gomock.Any(), "Arin").Return(core.Character{ID: 3, Name: "Arin"}, nil).AnyTimes()
	characters.EXPECT().GetByName(gomock.Any(), "Ghost").Return(core.Character{}, core.NewErrorCharacterNotFound()).AnyTimes()

	repo.EXPECT().List(gomock.Any(), uint(3), 2, 10).Return([]core.Transaction{{ID: 5}}, nil)
	transactions, err := service.List(ctx, "Arin", 2, 10)
	assert.NoError(t, err)
	assert.Len(t, transactions, 1)

	repo.EXPECT().Total(gomock.Any(), uint(3)).Return(int64(25), nil)
	pages, err := service.Pages(ctx, "Arin", 10)
	assert.NoError(t, err)
	assert.Equal(t, 3, pages)

	repo.EXPECT().ListAll(gomock.Any(), uint(3)).Return([]core.Transaction{{ID: 2}, {ID: 1}}, nil)
	all, err := service.ListAll(ctx, "Arin")
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = service.List(ctx, "Ghost", 1, 10)
	assert.ErrorIs(t, err, core.ErrorNotFound{})

	_, err = service.Pages(ctx, "Ghost", 10)
	assert.ErrorIs(t, err, core.ErrorNotFound{})

	_, err = service.List(ctx, "Arin", 1, 0)
	assert.ErrorIs(t, err, core.ErrorInvalidArgument{})
}
