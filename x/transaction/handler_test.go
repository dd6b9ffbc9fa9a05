package transaction

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/kindredkeeper/keeper/core"
	mock_core "github.com/kindredkeeper/keeper/core/mock"
	"github.com/kindredkeeper/keeper/internal/testutil"
	"github.com/kindredkeeper/keeper/x/util"
)

var testConfig = util.Config{
	Keeper: util.Keeper{
		GMRoles:  []int64{42},
		PageSize: 10,
	},
}

func TestHandlerBuy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := mock_core.NewMockTransactionService(ctrl)
	characters := mock_core.NewMockCharacterService(ctrl)
	h := NewHandler(service, characters, testConfig)

	arin := core.Character{ID: 1, Name: "Arin", Owner: 7, AP: 50}
	characters.EXPECT().GetByName(gomock.Any(), "Arin").Return(arin, nil).AnyTimes()

	// owner buys
	service.EXPECT().Apply(gomock.Any(), "Arin", int64(7), core.CurrencyAP, int64(-30), "sword").
		Return(core.Transaction{ID: 1, CharacterID: 1, Currency: core.CurrencyAP, Amount: -30, Reason: "sword"}, nil)

	c, rec, _ := testutil.CreateHttpRequest(testutil.Request{
		Method:    http.MethodPost,
		Body:      `{"currency":"ap","amount":30,"reason":"sword"}`,
		Requester: 7,
		Params:    map[string]string{"name": "Arin"},
	})
	assert.NoError(t, h.Buy(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var response core.ResponseBase[core.Transaction]
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, int64(-30), response.Content.Amount)

	// stranger
	c, rec, _ = testutil.CreateHttpRequest(testutil.Request{
		Method:    http.MethodPost,
		Body:      `{"currency":"ap","amount":30}`,
		Requester: 8,
		Params:    map[string]string{"name": "Arin"},
	})
	assert.NoError(t, h.Buy(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// GM buys on behalf of the owner, but the balance is short
	service.EXPECT().Apply(gomock.Any(), "Arin", int64(8), core.CurrencyAP, int64(-80), "").
		Return(core.Transaction{}, core.NewErrorInsufficientFunds(core.CurrencyAP, 50, -80))

	c, rec, _ = testutil.CreateHttpRequest(testutil.Request{
		Method:    http.MethodPost,
		Body:      `{"currency":"ap","amount":80}`,
		Requester: 8,
		Params:    map[string]string{"name": "Arin"},
	})
	assert.NoError(t, h.Buy(testutil.AsGM(c)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// negative amount
	c, rec, _ = testutil.CreateHttpRequest(testutil.Request{
		Method:    http.MethodPost,
		Body:      `{"currency":"ap","amount":-5}`,
		Requester: 7,
		Params:    map[string]string{"name": "Arin"},
	})
	assert.NoError(t, h.Buy(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// unknown currency
	c, rec, _ = testutil.CreateHttpRequest(testutil.Request{
		Method:    http.MethodPost,
		Body:      `{"currency":"gp","amount":5}`,
		Requester: 7,
		Params:    map[string]string{"name": "Arin"},
	})
	assert.NoError(t, h.Buy(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerAddRemove(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := mock_core.NewMockTransactionService(ctrl)
	characters := mock_core.NewMockCharacterService(ctrl)
	h := NewHandler(service, characters, testConfig)

	service.EXPECT().Apply(gomock.Any(), "Arin", int64(1), core.CurrencyRP, int64(20), "session").
		Return(core.Transaction{ID: 1, Amount: 20, Currency: core.CurrencyRP}, nil)
	service.EXPECT().Apply(gomock.Any(), "Arin", int64(1), core.CurrencyRP, int64(-5), "penalty").
		Return(core.Transaction{ID: 2, Amount: -5, Currency: core.CurrencyRP}, nil)

	c, rec, _ := testutil.CreateHttpRequest(testutil.Request{
		Method:    http.MethodPost,
		Body:      `{"currency":"RP","amount":20,"reason":"session"}`,
		Requester: 1,
		Params:    map[string]string{"name": "Arin"},
	})
	assert.NoError(t, h.Add(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec, _ = testutil.CreateHttpRequest(testutil.Request{
		Method:    http.MethodPost,
		Body:      `{"currency":"RP","amount":5,"reason":"penalty"}`,
		Requester: 1,
		Params:    map[string]string{"name": "Arin"},
	})
	assert.NoError(t, h.Remove(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlerLog(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := mock_core.NewMockTransactionService(ctrl)
	characters := mock_core.NewMockCharacterService(ctrl)
	h := NewHandler(service, characters, testConfig)

	service.EXPECT().List(gomock.Any(), "Arin", 1, 10).Return([]core.Transaction{{ID: 2}, {ID: 1}}, nil)
	service.EXPECT().Pages(gomock.Any(), "Arin", 10).Return(1, nil)
	service.EXPECT().List(gomock.Any(), "Ghost", 1, 10).Return(nil, core.NewErrorCharacterNotFound())

	c, rec, _ := testutil.CreateHttpRequest(testutil.Request{Params: map[string]string{"name": "Arin"}})
	assert.NoError(t, h.Log(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var response core.ResponseBase[LogResponse]
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Content.Page)
	assert.Equal(t, 1, response.Content.Pages)
	assert.Equal(t, uint(2), response.Content.Items[0].ID)

	c, rec, _ = testutil.CreateHttpRequest(testutil.Request{Params: map[string]string{"name": "Ghost"}})
	assert.NoError(t, h.Log(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec, _ = testutil.CreateHttpRequest(testutil.Request{
		Params: map[string]string{"name": "Arin"},
		Query:  map[string]string{"page": "zero"},
	})
	assert.NoError(t, h.Log(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := mock_core.NewMockTransactionService(ctrl)
	characters := mock_core.NewMockCharacterService(ctrl)
	h := NewHandler(service, characters, testConfig)

	service.EXPECT().ListAll(gomock.Any(), "Arin").Return([]core.Transaction{{ID: 3}, {ID: 2}, {ID: 1}}, nil)

	c, rec, _ := testutil.CreateHttpRequest(testutil.Request{Params: map[string]string{"name": "Arin"}})
	assert.NoError(t, h.History(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var response core.ResponseBase[[]core.Transaction]
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Len(t, response.Content, 3)
}

func TestHandlerRefund(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := mock_core.NewMockTransactionService(ctrl)
	characters := mock_core.NewMockCharacterService(ctrl)
	h := NewHandler(service, characters, testConfig)

	characters.EXPECT().GetByTransactionID(gomock.Any(), uint(3)).Return(core.Character{ID: 1, Owner: 7}, nil).Times(2)
	service.EXPECT().Refund(gomock.Any(), uint(3), int64(7)).Return(core.Transaction{ID: 4, Amount: 30}, nil)

	c, rec, _ := testutil.CreateHttpRequest(testutil.Request{Method: http.MethodPost, Requester: 7, Params: map[string]string{"id": "3"}})
	assert.NoError(t, h.Refund(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec, _ = testutil.CreateHttpRequest(testutil.Request{Method: http.MethodPost, Requester: 9, Params: map[string]string{"id": "3"}})
	assert.NoError(t, h.Refund(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	c, rec, _ = testutil.CreateHttpRequest(testutil.Request{Method: http.MethodPost, Requester: 7, Params: map[string]string{"id": "abc"}})
	assert.NoError(t, h.Refund(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerGetAndErase(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := mock_core.NewMockTransactionService(ctrl)
	characters := mock_core.NewMockCharacterService(ctrl)
	h := NewHandler(service, characters, testConfig)

	service.EXPECT().Get(gomock.Any(), uint(5)).Return(core.Transaction{ID: 5}, nil)
	service.EXPECT().Erase(gomock.Any(), uint(5)).Return(core.Transaction{}, core.NewErrorInsufficientFunds(core.CurrencyAP, 20, -50))
	service.EXPECT().Erase(gomock.Any(), uint(6)).Return(core.Transaction{}, core.NewErrorTransactionNotFound())

	c, rec, _ := testutil.CreateHttpRequest(testutil.Request{Params: map[string]string{"id": "5"}})
	assert.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec, _ = testutil.CreateHttpRequest(testutil.Request{Method: http.MethodDelete, Params: map[string]string{"id": "5"}})
	assert.NoError(t, h.Erase(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	c, rec, _ = testutil.CreateHttpRequest(testutil.Request{Method: http.MethodDelete, Params: map[string]string{"id": "6"}})
	assert.NoError(t, h.Erase(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
