// Package auth resolves the requester propagated by the gateway and restricts routes by role
package auth

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kindredkeeper/keeper/core"
	"github.com/kindredkeeper/keeper/x/util"
)

var tracer = otel.Tracer("auth")

type Principal int

const (
	ISKNOWN Principal = iota
	ISGM
)

// ReceiveGatewayAuthPropagation reads the requester id and roles set by the gateway
func ReceiveGatewayAuthPropagation(config util.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, span := tracer.Start(c.Request().Context(), "Auth.ReceiveGatewayAuthPropagation")
			defer span.End()

			reqIdHeader := c.Request().Header.Get(core.RequesterIdHeader)
			reqRolesHeader := c.Request().Header.Get(core.RequesterRolesHeader)

			if reqIdHeader != "" {
				id, err := strconv.ParseInt(reqIdHeader, 10, 64)
				if err == nil {
					c.Set(core.RequesterIdCtxKey, id)
					span.SetAttributes(attribute.Int64("RequesterId", id))
				} else {
					span.RecordError(err)
				}
			}

			roles := ParseRoles(reqRolesHeader)
			if len(roles) > 0 {
				c.Set(core.RequesterRolesCtxKey, roles)
				span.SetAttributes(attribute.String("RequesterRoles", reqRolesHeader))
			}

			isGM := config.Keeper.IsGMRole(roles)
			c.Set(core.RequesterIsGMCtxKey, isGM)
			span.SetAttributes(attribute.Bool("RequesterIsGM", isGM))

			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// ParseRoles parses a comma separated role id list, skipping malformed entries
func ParseRoles(input string) []int64 {
	var roles []int64
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		role, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		roles = append(roles, role)
	}
	return roles
}

// RequesterID returns the id of the requesting user
func RequesterID(c echo.Context) (int64, bool) {
	id, ok := c.Get(core.RequesterIdCtxKey).(int64)
	return id, ok
}

// IsGM reports whether the requester holds a GM role
func IsGM(c echo.Context) bool {
	isGM, _ := c.Get(core.RequesterIsGMCtxKey).(bool)
	return isGM
}

// CanManage reports whether the requester is a GM or owns the character
func CanManage(c echo.Context, character core.Character) bool {
	if IsGM(c) {
		return true
	}
	id, ok := RequesterID(c)
	return ok && id == character.Owner
}

func Restrict(principal Principal) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, span := tracer.Start(c.Request().Context(), "Auth.Restrict")
			defer span.End()

			switch principal {
			case ISKNOWN:
				if _, ok := RequesterID(c); !ok {
					return c.JSON(http.StatusForbidden, echo.Map{
						"error":  "you are not authorized to perform this action",
						"detail": "you are not known",
					})
				}

			case ISGM:
				if !IsGM(c) {
					return c.JSON(http.StatusForbidden, echo.Map{
						"error":  "you are not authorized to perform this action",
						"detail": "you are not a GM",
					})
				}
			}

			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
