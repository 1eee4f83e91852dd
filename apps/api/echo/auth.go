package echoapi

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/mutsa-team6/myacademy-sub001/core"
	"github.com/mutsa-team6/myacademy-sub001/core/auth"
)

const contextActorKey = "actor"

// authMiddleware resolves the bearer token into a core.Actor.
// Missing, expired, malformed and revoked tokens all leave the request anonymous;
// services reject anonymous actors where authentication is required.
func authMiddleware(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if token := bearerToken(ctx); token != "" {
				if actor, err := svc.Authenticate(ctx.Request().Context(), token); err == nil {
					ctx.Set(contextActorKey, actor)
				} else if _, ok := core.AsError(err); !ok {
					ctx.Logger().Warnf("authenticating request: %v", err)
				}
			}
			return next(ctx)
		}
	}
}

func bearerToken(ctx echo.Context) string {
	h := ctx.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

// actorFrom returns the request actor, anonymous when none was resolved.
func actorFrom(ctx echo.Context) core.Actor {
	actor, _ := ctx.Get(contextActorKey).(core.Actor)
	return actor
}

type authApi struct {
	svc      *auth.Service
	validate *validator.Validate
}

func registerAuthAPI(g *echo.Group, svc *auth.Service, validate *validator.Validate) {
	api := authApi{svc: svc, validate: validate}

	ag := g.Group("/auth")
	ag.POST("/login", api.login)
	ag.POST("/refresh", api.refresh)
	ag.POST("/logout", api.logout)
}

type (
	LoginRequest struct {
		AcademyID int64  `json:"academy_id" validate:"required"`
		Account   string `json:"account" validate:"required"`
		Password  string `json:"password" validate:"required"`
	}

	RefreshRequest struct {
		AccessToken  string `json:"access_token" validate:"required"`
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
)

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := bind(ctx, &data); err != nil {
		return err
	}
	data.Account = core.CleanString(data.Account, true /* lower */)
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	tokens, err := api.svc.Login(ctx.Request().Context(), data.AcademyID, data.Account, data.Password)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, tokens)
}

func (api *authApi) refresh(ctx echo.Context) error {
	var data RefreshRequest
	if err := bind(ctx, &data); err != nil {
		return err
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	tokens, err := api.svc.Refresh(ctx.Request().Context(), data.AccessToken, data.RefreshToken)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, tokens)
}

func (api *authApi) logout(ctx echo.Context) error {
	actor := actorFrom(ctx)
	if actor.IsAnonymous() {
		return core.ErrInvalidToken
	}
	if err := api.svc.Revoke(ctx.Request().Context(), actor.EmployeeID); err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, messageResult{Message: "logged out"})
}
