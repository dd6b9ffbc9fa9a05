package feed

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/kindredkeeper/keeper/core"
	mock_core "github.com/kindredkeeper/keeper/core/mock"
)

func TestFilter(t *testing.T) {
	f := &filter{}
	assert.True(t, f.match(core.LedgerEvent{Character: core.Character{Name: "Arin"}}))

	f.set([]string{"Bryn"})
	assert.False(t, f.match(core.LedgerEvent{Character: core.Character{Name: "Arin"}}))
	assert.True(t, f.match(core.LedgerEvent{Character: core.Character{Name: "Bryn"}}))

	f.set(nil)
	assert.True(t, f.match(core.LedgerEvent{Character: core.Character{Name: "Arin"}}))
}

func TestHandlerConnect(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	events := make(chan core.LedgerEvent)
	stopped := make(chan struct{})

	service := mock_core.NewMockFeedService(ctrl)
	service.EXPECT().Subscribe(gomock.Any()).Return((<-chan core.LedgerEvent)(events), func() { close(stopped) }, nil)

	e := echo.New()
	e.GET("/feed", NewHandler(service).Connect)
	server := httptest.NewServer(e)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/feed"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.NoError(t, ws.WriteJSON(FilterRequest{Characters: []string{"Bryn"}}))
	time.Sleep(100 * time.Millisecond)

	events <- core.LedgerEvent{Type: core.EventCharacterCreated, Character: core.Character{Name: "Arin"}}
	events <- core.LedgerEvent{Type: core.EventCharacterCreated, Character: core.Character{Name: "Bryn"}}

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	var received core.LedgerEvent
	require.NoError(t, ws.ReadJSON(&received))
	assert.Equal(t, "Bryn", received.Character.Name)

	ws.Close()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("subscription was not stopped")
	}
}
