package http_auth

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	http_common "github.com/playwrist/core/internal/delivery/http/common"
	http_auth_middleware "github.com/playwrist/core/internal/delivery/http/middleware/auth"
	service_simple_auth "github.com/playwrist/core/internal/service/auth/simple"
)

type Controller struct {
	service *service_simple_auth.Service
	auth    *http_auth_middleware.Middleware
	logger  *slog.Logger
}

func New(
	service *service_simple_auth.Service,
	auth *http_auth_middleware.Middleware,
) *Controller {
	return &Controller{
		service: service,
		auth:    auth,
		logger:  slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/sessions", c.createSession)
	router.GET("/users/me", c.auth.AuthRequired(), c.me)
}

type SessionRequestDTO struct {
	Name string `json:"name" binding:"required"`
}

type SessionResponseDTO struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// createSession trades a display name for a session token. Verification of
// real credentials belongs to the external identity provider in front.
func (c *Controller) createSession(ctx *gin.Context) {
	var req SessionRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	user, token, err := c.service.Issue(req.Name)
	if err != nil {
		c.logger.Error("failed to issue session", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	ctx.Header(http_auth_middleware.HeaderUserToken, token)
	ctx.JSON(http.StatusCreated, SessionResponseDTO{
		UserID: user.ID.String(),
		Name:   user.Name,
	})
}

func (c *Controller) me(ctx *gin.Context) {
	user, ok := http_auth_middleware.CurrentUser(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, http_common.ErrorResponse{Message: "unauthenticated"})
		return
	}

	ctx.JSON(http.StatusOK, SessionResponseDTO{
		UserID: user.ID.String(),
		Name:   user.Name,
	})
}
