package feed

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/kindredkeeper/keeper/core"
)

// Handler streams ledger events over websocket
type Handler interface {
	Connect(c echo.Context) error
}

type handler struct {
	service core.FeedService
}

// NewHandler creates a new feed handler
func NewHandler(service core.FeedService) Handler {
	return &handler{service}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type filter struct {
	mu    sync.RWMutex
	names map[string]bool
}

func (f *filter) set(names []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names = make(map[string]bool, len(names))
	for _, name := range names {
		f.names[name] = true
	}
}

func (f *filter) match(event core.LedgerEvent) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.names) == 0 || f.names[event.Character.Name]
}

// Connect upgrades the request and forwards ledger events until the client goes away
func (h handler) Connect(c echo.Context) error {
	ctx := c.Request().Context()

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.ErrorContext(ctx, "failed to upgrade websocket", slog.String("error", err.Error()))
		return nil
	}
	defer ws.Close()

	events, stop, err := h.service.Subscribe(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to subscribe ledger feed", slog.String("error", err.Error()))
		return nil
	}
	defer stop()

	f := &filter{}
	closed := make(chan struct{})

	go func() {
		defer close(closed)
		for {
			var req FilterRequest
			if err := ws.ReadJSON(&req); err != nil {
				return
			}
			f.set(req.Characters)
		}
	}()

	for {
		select {
		case <-closed:
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !f.match(event) {
				continue
			}
			if err := ws.WriteJSON(event); err != nil {
				slog.ErrorContext(ctx, "failed to write ledger event", slog.String("error", err.Error()))
				return nil
			}
		}
	}
}
