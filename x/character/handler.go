package character

import (
	"fmt"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/kindredkeeper/keeper/core"
	"github.com/kindredkeeper/keeper/x/auth"
	"github.com/kindredkeeper/keeper/x/util"
)

// Handler is the interface for handling HTTP requests
type Handler interface {
	Get(c echo.Context) error
	List(c echo.Context) error
	Leaderboard(c echo.Context) error
	Create(c echo.Context) error
	Delete(c echo.Context) error
}

type handler struct {
	service core.CharacterService
	config  util.Config
}

// NewHandler creates a new handler
func NewHandler(service core.CharacterService, config util.Config) Handler {
	return &handler{service, config}
}

func errorResponse(c echo.Context, err error) error {
	return c.JSON(core.ErrorStatus(err), echo.Map{"status": "error", "error": err.Error()})
}

// Get returns a character by name
func (h handler) Get(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Character.Handler.Get")
	defer span.End()

	character, err := h.service.GetByName(ctx, c.Param("name"))
	if err != nil {
		span.RecordError(err)
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": character})
}

// List returns the characters of the given owner, or of the requester
func (h handler) List(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Character.Handler.List")
	defer span.End()

	var owner int64
	if param := c.QueryParam("owner"); param != "" {
		parsed, err := strconv.ParseInt(param, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "error": "invalid owner"})
		}
		owner = parsed
	} else {
		requester, ok := auth.RequesterID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "error": "owner is required"})
		}
		owner = requester
	}

	characters, err := h.service.ListByOwner(ctx, owner)
	if err != nil {
		span.RecordError(err)
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": characters})
}

// Leaderboard returns one page of every character
func (h handler) Leaderboard(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Character.Handler.Leaderboard")
	defer span.End()

	page, err := util.ParsePage(c.QueryParam("page"))
	if err != nil {
		return errorResponse(c, err)
	}

	sort, err := core.ParseSortKey(c.QueryParam("currency"))
	if err != nil {
		return errorResponse(c, err)
	}

	characters, err := h.service.List(ctx, page, h.config.Keeper.PageSize, sort)
	if err != nil {
		span.RecordError(err)
		return errorResponse(c, err)
	}

	pages, err := h.service.Pages(ctx, h.config.Keeper.PageSize)
	if err != nil {
		span.RecordError(err)
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": LeaderboardResponse{
		Page:  page,
		Pages: pages,
		Items: characters,
	}})
}

// Create registers a character for the requester
func (h handler) Create(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Character.Handler.Create")
	defer span.End()

	requester, ok := auth.RequesterID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"status": "error", "error": "requester is unknown"})
	}

	var request createRequest
	err := c.Bind(&request)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "error": "invalid request", "message": err.Error()})
	}

	if length := utf8.RuneCountInString(request.Name); length > h.config.Keeper.NameLimit {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"status": "error",
			"error":  fmt.Sprintf("the character name length limit is %d characters and yours is %d characters", h.config.Keeper.NameLimit, length),
		})
	}

	if h.config.Keeper.CharacterLimit > 0 {
		owned, err := h.service.ListByOwner(ctx, requester)
		if err != nil {
			span.RecordError(err)
			return errorResponse(c, err)
		}
		if len(owned) >= h.config.Keeper.CharacterLimit {
			return c.JSON(http.StatusForbidden, echo.Map{
				"status": "error",
				"error":  fmt.Sprintf("the limit is %d characters and you have %d characters", h.config.Keeper.CharacterLimit, len(owned)),
			})
		}
	}

	created, err := h.service.Create(ctx, request.Name, requester)
	if err != nil {
		span.RecordError(err)
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"status": "ok", "content": created})
}

// Delete removes a character and its history
func (h handler) Delete(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Character.Handler.Delete")
	defer span.End()

	err := h.service.Delete(ctx, c.Param("name"))
	if err != nil {
		span.RecordError(err)
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
