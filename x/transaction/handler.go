package transaction

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"

	"github.com/kindredkeeper/keeper/core"
	"github.com/kindredkeeper/keeper/x/auth"
	"github.com/kindredkeeper/keeper/x/util"
)

// Handler is the interface for handling HTTP requests
type Handler interface {
	Get(c echo.Context) error
	Log(c echo.Context) error
	History(c echo.Context) error
	Buy(c echo.Context) error
	Add(c echo.Context) error
	Remove(c echo.Context) error
	Refund(c echo.Context) error
	Erase(c echo.Context) error
}

type handler struct {
	service   core.TransactionService
	character core.CharacterService
	config    util.Config
}

// NewHandler creates a new handler
func NewHandler(service core.TransactionService, character core.CharacterService, config util.Config) Handler {
	return &handler{service, character, config}
}

func errorResponse(c echo.Context, err error) error {
	return c.JSON(core.ErrorStatus(err), echo.Map{"status": "error", "error": err.Error()})
}

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, echo.Map{
		"status": "error",
		"error":  "you are not authorized to perform this action",
		"detail": "you are neither the owner nor a GM",
	})
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, core.NewErrorInvalidArgument("invalid transaction id: " + c.Param("id"))
	}
	return uint(id), nil
}

func bindApply(c echo.Context) (applyRequest, core.Currency, error) {
	var request applyRequest
	err := c.Bind(&request)
	if err != nil {
		return request, "", core.NewErrorInvalidArgument("invalid request: " + err.Error())
	}
	if request.Amount < 0 {
		return request, "", core.NewErrorInvalidArgument("amount must not be negative")
	}
	currency, err := core.ParseCurrency(request.Currency)
	if err != nil {
		return request, "", err
	}
	return request, currency, nil
}

// Get returns a transaction by id
func (h handler) Get(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Transaction.Handler.Get")
	defer span.End()

	id, err := parseID(c)
	if err != nil {
		return errorResponse(c, err)
	}

	transaction, err := h.service.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": transaction})
}

// Log returns one page of a character's history, newest first
func (h handler) Log(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Transaction.Handler.Log")
	defer span.End()

	name := c.Param("name")
	page, err := util.ParsePage(c.QueryParam("page"))
	if err != nil {
		return errorResponse(c, err)
	}

	transactions, err := h.service.List(ctx, name, page, h.config.Keeper.PageSize)
	if err != nil {
		span.RecordError(err)
		return errorResponse(c, err)
	}

	pages, err := h.service.Pages(ctx, name, h.config.Keeper.PageSize)
	if err != nil {
		span.RecordError(err)
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": LogResponse{
		Page:  page,
		Pages: pages,
		Items: transactions,
	}})
}

// History returns a character's full history, newest first
func (h handler) History(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Transaction.Handler.History")
	defer span.End()

	transactions, err := h.service.ListAll(ctx, c.Param("name"))
	if err != nil {
		span.RecordError(err)
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": transactions})
}

// Buy spends currency from a character the requester manages
func (h handler) Buy(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Transaction.Handler.Buy")
	defer span.End()

	name := c.Param("name")
	request, currency, err := bindApply(c)
	if err != nil {
		return errorResponse(c, err)
	}

	character, err := h.character.GetByName(ctx, name)
	if err != nil {
		span.RecordError(err)
		return errorResponse(c, err)
	}
	if !auth.CanManage(c, character) {
		return forbidden(c)
	}

	requester, _ := auth.RequesterID(c)
	transaction, err := h.service.Apply(ctx, name, requester, currency, -request.Amount, request.Reason)
	if err != nil {
		span.RecordError(err)
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": transaction})
}

// Add grants currency to a character
func (h handler) Add(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Transaction.Handler.Add")
	defer span.End()

	return h.grant(ctx, c, 1)
}

// Remove takes currency away from a character
func (h handler) Remove(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Transaction.Handler.Remove")
	defer span.End()

	return h.grant(ctx, c, -1)
}

func (h handler) grant(ctx context.Context, c echo.Context, sign int64) error {
	span := trace.SpanFromContext(ctx)

	request, currency, err := bindApply(c)
	if err != nil {
		return errorResponse(c, err)
	}

	requester, _ := auth.RequesterID(c)
	transaction, err := h.service.Apply(ctx, c.Param("name"), requester, currency, sign*request.Amount, request.Reason)
	if err != nil {
		span.RecordError(err)
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": transaction})
}

// Refund records the inverse of a transaction the requester manages
func (h handler) Refund(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Transaction.Handler.Refund")
	defer span.End()

	id, err := parseID(c)
	if err != nil {
		return errorResponse(c, err)
	}

	character, err := h.character.GetByTransactionID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return errorResponse(c, err)
	}
	if !auth.CanManage(c, character) {
		return forbidden(c)
	}

	requester, _ := auth.RequesterID(c)
	refund, err := h.service.Refund(ctx, id, requester)
	if err != nil {
		span.RecordError(err)
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": refund})
}

// Erase reverses a transaction and removes it from the history
func (h handler) Erase(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Transaction.Handler.Erase")
	defer span.End()

	id, err := parseID(c)
	if err != nil {
		return errorResponse(c, err)
	}

	erased, err := h.service.Erase(ctx, id)
	if err != nil {
		span.RecordError(err)
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": erased})
}
