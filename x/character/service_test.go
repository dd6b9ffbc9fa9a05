package character

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/kindredkeeper/keeper/core"
	mock_core "github.com/kindredkeeper/keeper/core/mock"
	mock_character "github.com/kindredkeeper/keeper/x/character/mock"
)

func TestServiceCreate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_character.NewMockRepository(ctrl)
	feed := mock_core.NewMockFeedService(ctrl)
	service := NewService(repo, feed)

	ctx := context.Background()

	repo.EXPECT().Create(gomock.Any(), core.Character{Name: "Arin", Owner: 7}).Return(core.Character{ID: 1, Name: "Arin", Owner: 7}, nil)
	feed.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, event core.LedgerEvent) error {
		assert.Equal(t, core.EventCharacterCreated, event.Type)
		assert.Equal(t, "Arin", event.Character.Name)
		assert.Nil(t, event.Transaction)
		return nil
	})

	created, err := service.Create(ctx, "Arin", 7)
	assert.NoError(t, err)
	assert.Equal(t, uint(1), created.ID)
	assert.Equal(t, int64(0), created.AP)

	_, err = service.Create(ctx, "  ", 7)
	assert.ErrorIs(t, err, core.ErrorInvalidArgument{})

	_, err = service.Create(ctx, strings.Repeat("a", core.MaxNameLength+1), 7)
	assert.ErrorIs(t, err, core.ErrorInvalidArgument{})

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(core.Character{}, core.NewErrorAlreadyExists())
	_, err = service.Create(ctx, "Arin", 8)
	assert.ErrorIs(t, err, core.ErrorAlreadyExists{})
}

func TestServiceCreatePublishFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_character.NewMockRepository(ctrl)
	feed := mock_core.NewMockFeedService(ctrl)
	service := NewService(repo, feed)

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(core.Character{ID: 1, Name: "Arin"}, nil)
	feed.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("redis is down"))

	created, err := service.Create(context.Background(), "Arin", 7)
	assert.NoError(t, err)
	assert.Equal(t, "Arin", created.Name)
}

func TestServiceDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_character.NewMockRepository(ctrl)
	feed := mock_core.NewMockFeedService(ctrl)
	service := NewService(repo, feed)

	repo.EXPECT().Delete(gomock.Any(), "Arin").Return(core.Character{ID: 1, Name: "Arin"}, nil)
	repo.EXPECT().Delete(gomock.Any(), "Ghost").Return(core.Character{}, core.NewErrorCharacterNotFound())
	feed.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	assert.NoError(t, service.Delete(context.Background(), "Arin"))
	assert.ErrorIs(t, service.Delete(context.Background(), "Ghost"), core.ErrorNotFound{})
}

func TestServiceList(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_character.NewMockRepository(ctrl)
	feed := mock_core.NewMockFeedService(ctrl)
	service := NewService(repo, feed)

	ctx := context.Background()

	repo.EXPECT().List(gomock.Any(), 1, 10, core.SortByRP).Return([]core.Character{{Name: "C"}}, nil)
	characters, err := service.List(ctx, 1, 10, core.SortByRP)
	assert.NoError(t, err)
	assert.Len(t, characters, 1)

	_, err = service.List(ctx, 1, 0, core.SortByName)
	assert.ErrorIs(t, err, core.ErrorInvalidArgument{})

	_, err = service.List(ctx, 1, 10, core.SortKey("gold"))
	assert.ErrorIs(t, err, core.ErrorInvalidArgument{})

	repo.EXPECT().Total(gomock.Any()).Return(int64(25), nil)
	pages, err := service.Pages(ctx, 10)
	assert.NoError(t, err)
	assert.Equal(t, 3, pages)

	repo.EXPECT().Total(gomock.Any()).Return(int64(0), nil)
	pages, err = service.Pages(ctx, 10)
	assert.NoError(t, err)
	assert.Equal(t, 0, pages)

	_, err = service.Pages(ctx, -1)
	assert.ErrorIs(t, err, core.ErrorInvalidArgument{})
}
