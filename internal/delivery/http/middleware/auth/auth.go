package http_auth_middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	http_common "github.com/playwrist/core/internal/delivery/http/common"
	"github.com/playwrist/core/internal/model"
	service_simple_auth "github.com/playwrist/core/internal/service/auth/simple"
)

const (
	HeaderUserToken = "X-user-token"
	ContextUserKey  = "authenticated_user"
)

type Middleware struct {
	auth   *service_simple_auth.Service
	logger *slog.Logger
}

func New(
	auth *service_simple_auth.Service,
) *Middleware {
	return &Middleware{
		auth:   auth,
		logger: slog.Default(),
	}
}

func (m *Middleware) AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		t := ctx.GetHeader(HeaderUserToken)

		user, err := m.auth.Resolve(t)
		if err != nil {
			if errors.Is(err, service_simple_auth.ErrUnauthenticated) {
				ctx.JSON(http.StatusUnauthorized, http_common.ErrorResponse{
					Message: "unauthenticated",
				})
				ctx.Abort()
				return
			}
			m.logger.Error("failed to resolve token", slog.String("error", err.Error()))
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserKey, user)
		ctx.Next()
	}
}

// CurrentUser pulls the authenticated identity the middleware stored.
func CurrentUser(ctx *gin.Context) (model.User, bool) {
	v, ok := ctx.Get(ContextUserKey)
	if !ok {
		return model.User{}, false
	}
	user, ok := v.(model.User)
	return user, ok
}
