package http_game

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	http_common "github.com/playwrist/core/internal/delivery/http/common"
	http_auth_middleware "github.com/playwrist/core/internal/delivery/http/middleware/auth"
	"github.com/playwrist/core/internal/model"
	usecase_game "github.com/playwrist/core/internal/usecase/game"
)

type Controller struct {
	usecase *usecase_game.Usecase
	auth    *http_auth_middleware.Middleware
	logger  *slog.Logger
}

func New(
	usecase *usecase_game.Usecase,
	auth *http_auth_middleware.Middleware,
) *Controller {
	return &Controller{
		usecase: usecase,
		auth:    auth,
		logger:  slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	room := router.Group("/rooms/:room_id")
	room.Use(c.auth.AuthRequired())
	{
		room.POST("/start", c.start)
		room.POST("/assign-bomb", c.assignBomb)
		room.POST("/pass-bomb", c.passBomb)
		room.POST("/game-result", c.gameResult)
		room.POST("/start-timer", c.startTimer)
	}
}

type StartResponseDTO struct {
	Message string            `json:"message"`
	Mode    string            `json:"mode"`
	Players []PlayerStatusDTO `json:"players"`
}

type PlayerStatusDTO struct {
	UserID  string `json:"user_id"`
	Ordinal int    `json:"ordinal"`
}

func (c *Controller) start(ctx *gin.Context) {
	user, roomID, ok := c.identify(ctx)
	if !ok {
		return
	}

	state, err := c.usecase.Start(ctx.Request.Context(), roomID, user.ID)
	if err != nil {
		c.logger.Error("failed to start game", slog.String("error", err.Error()))
		status, body := http_common.StatusFor(err)
		ctx.JSON(status, body)
		return
	}

	players := make([]PlayerStatusDTO, 0, len(state.Ordinals))
	for _, v := range state.Ordinals {
		players = append(players, PlayerStatusDTO{
			UserID:  v.PlayerID.String(),
			Ordinal: v.Ordinal,
		})
	}

	ctx.JSON(http.StatusOK, StartResponseDTO{
		Message: "Game started",
		Mode:    state.Mode,
		Players: players,
	})
}

type AssignBombResponseDTO struct {
	BombHolderID string `json:"bomb_holder_id"`
}

func (c *Controller) assignBomb(ctx *gin.Context) {
	user, roomID, ok := c.identify(ctx)
	if !ok {
		return
	}

	holder, err := c.usecase.AssignBomb(ctx.Request.Context(), roomID, user.ID)
	if err != nil {
		c.logger.Error("failed to assign bomb", slog.String("error", err.Error()))
		status, body := http_common.StatusFor(err)
		ctx.JSON(status, body)
		return
	}

	ctx.JSON(http.StatusOK, AssignBombResponseDTO{
		BombHolderID: holder.String(),
	})
}

type PassBombRequestDTO struct {
	FromPlayerID string `json:"from_player_id" binding:"required"`
	ToPlayerID   string `json:"to_player_id" binding:"required"`
}

type PassBombResponseDTO struct {
	NewHolderID string `json:"new_holder_id"`
}

func (c *Controller) passBomb(ctx *gin.Context) {
	_, roomID, ok := c.identify(ctx)
	if !ok {
		return
	}

	var req PassBombRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	from, err := uuid.Parse(req.FromPlayerID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{Message: "invalid from player id"})
		return
	}
	to, err := uuid.Parse(req.ToPlayerID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{Message: "invalid to player id"})
		return
	}

	holder, err := c.usecase.PassBomb(ctx.Request.Context(), roomID, from, to)
	if err != nil {
		c.logger.Error("failed to pass bomb", slog.String("error", err.Error()))
		status, body := http_common.StatusFor(err)
		ctx.JSON(status, body)
		return
	}

	ctx.JSON(http.StatusOK, PassBombResponseDTO{
		NewHolderID: holder.String(),
	})
}

type GameResultRequestDTO struct {
	HolderID string `json:"holder_id" binding:"required"`
}

type GameResultResponseDTO struct {
	LoserID   string   `json:"loser_id"`
	WinnerIDs []string `json:"winner_ids"`
}

func (c *Controller) gameResult(ctx *gin.Context) {
	_, roomID, ok := c.identify(ctx)
	if !ok {
		return
	}

	var req GameResultRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	holder, err := uuid.Parse(req.HolderID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{Message: "invalid holder id"})
		return
	}

	result, err := c.usecase.Resolve(ctx.Request.Context(), roomID, holder)
	if err != nil {
		c.logger.Error("failed to resolve round", slog.String("error", err.Error()))
		status, body := http_common.StatusFor(err)
		ctx.JSON(status, body)
		return
	}

	winners := make([]string, 0, len(result.WinnerIDs))
	for _, id := range result.WinnerIDs {
		winners = append(winners, id.String())
	}
	ctx.JSON(http.StatusOK, GameResultResponseDTO{
		LoserID:   result.LoserID.String(),
		WinnerIDs: winners,
	})
}

type StartTimerResponseDTO struct {
	StartedAt       int64 `json:"started_at"`
	DurationSeconds int   `json:"duration_seconds"`
}

func (c *Controller) startTimer(ctx *gin.Context) {
	_, roomID, ok := c.identify(ctx)
	if !ok {
		return
	}

	startedAt, err := c.usecase.StartTimer(ctx.Request.Context(), roomID)
	if err != nil {
		c.logger.Error("failed to start timer", slog.String("error", err.Error()))
		status, body := http_common.StatusFor(err)
		ctx.JSON(status, body)
		return
	}

	ctx.JSON(http.StatusOK, StartTimerResponseDTO{
		StartedAt:       startedAt.Unix(),
		DurationSeconds: int(usecase_game.RoundDuration.Seconds()),
	})
}

func (c *Controller) identify(ctx *gin.Context) (user model.User, roomID uuid.UUID, ok bool) {
	user, found := http_auth_middleware.CurrentUser(ctx)
	if !found {
		ctx.JSON(http.StatusUnauthorized, http_common.ErrorResponse{Message: "unauthenticated"})
		return model.User{}, uuid.Nil, false
	}

	roomID, err := uuid.Parse(ctx.Param("room_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{Message: "invalid room id"})
		return model.User{}, uuid.Nil, false
	}

	return user, roomID, true
}
