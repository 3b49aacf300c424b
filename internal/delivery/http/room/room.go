package http_room

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	http_common "github.com/playwrist/core/internal/delivery/http/common"
	http_auth_middleware "github.com/playwrist/core/internal/delivery/http/middleware/auth"
	"github.com/playwrist/core/internal/model"
	usecase_room "github.com/playwrist/core/internal/usecase/room"
)

type Controller struct {
	usecase *usecase_room.Usecase
	auth    *http_auth_middleware.Middleware
	logger  *slog.Logger
}

func New(
	usecase *usecase_room.Usecase,
	auth *http_auth_middleware.Middleware,
) *Controller {
	return &Controller{
		usecase: usecase,
		auth:    auth,
		logger:  slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	rooms := router.Group("/rooms")
	rooms.GET("", c.list)

	guarded := rooms.Group("")
	guarded.Use(c.auth.AuthRequired())
	{
		guarded.POST("", c.create)
		guarded.POST("/:room_id/join", c.join)
		guarded.POST("/:room_id/ready", c.ready)
		guarded.POST("/:room_id/leave", c.leave)
		guarded.GET("/:room_id/members", c.members)
	}
}

type CreateRoomRequestDTO struct {
	Title      string `json:"title" binding:"required"`
	Game       string `json:"game" binding:"required"`
	Password   string `json:"password"`
	MaxPlayers int    `json:"maxPlayers" binding:"required"`
}

type CreateRoomResponseDTO struct {
	RoomID   string `json:"roomID"`
	Title    string `json:"title"`
	HostName string `json:"hostName"`
}

func (c *Controller) create(ctx *gin.Context) {
	user, ok := http_auth_middleware.CurrentUser(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, http_common.ErrorResponse{Message: "unauthenticated"})
		return
	}

	var req CreateRoomRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	room, err := c.usecase.Create(ctx.Request.Context(), usecase_room.CreateParams{
		Title:    req.Title,
		Mode:     req.Game,
		Password: req.Password,
		Capacity: req.MaxPlayers,
		HostID:   user.ID,
	})
	if err != nil {
		c.logger.Error("failed to create room", slog.String("error", err.Error()))
		status, body := http_common.StatusFor(err)
		ctx.JSON(status, body)
		return
	}

	ctx.JSON(http.StatusCreated, CreateRoomResponseDTO{
		RoomID:   room.ID.String(),
		Title:    room.Title,
		HostName: user.Name,
	})
}

type RoomSummaryDTO struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Game       string    `json:"game"`
	MaxPlayers int       `json:"max_players"`
	HostID     string    `json:"host_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func (c *Controller) list(ctx *gin.Context) {
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "0"))

	rooms, err := c.usecase.List(ctx.Request.Context(), offset, limit)
	if err != nil {
		c.logger.Error("failed to list rooms", slog.String("error", err.Error()))
		status, body := http_common.StatusFor(err)
		ctx.JSON(status, body)
		return
	}

	out := make([]RoomSummaryDTO, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, RoomSummaryDTO{
			ID:         room.ID.String(),
			Title:      room.Title,
			Game:       room.Mode,
			MaxPlayers: room.Capacity,
			HostID:     room.HostID.String(),
			Status:     room.Status,
			CreatedAt:  room.CreatedAt,
		})
	}

	ctx.JSON(http.StatusOK, out)
}

type JoinRoomRequestDTO struct {
	InputPassword string `json:"inputPassword"`
}

type JoinRoomResponseDTO struct {
	Status   string `json:"status"`
	RoomID   string `json:"roomID"`
	UserName string `json:"userName"`
}

func (c *Controller) join(ctx *gin.Context) {
	user, ok := http_auth_middleware.CurrentUser(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, http_common.ErrorResponse{Message: "unauthenticated"})
		return
	}
	roomID, err := parseRoomID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{Message: "invalid room id"})
		return
	}

	var req JoinRoomRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	if _, err := c.usecase.Join(ctx.Request.Context(), roomID, user.ID, req.InputPassword); err != nil {
		c.logger.Error("failed to join room", slog.String("error", err.Error()))
		status, body := http_common.StatusFor(err)
		ctx.JSON(status, body)
		return
	}

	ctx.JSON(http.StatusOK, JoinRoomResponseDTO{
		Status:   "success",
		RoomID:   roomID.String(),
		UserName: user.Name,
	})
}

type ReadyRequestDTO struct {
	Status string `json:"status" binding:"required"`
}

type ReadyResponseDTO struct {
	Status    string `json:"status"`
	RoomID    string `json:"roomID"`
	UserName  string `json:"userName"`
	NewStatus string `json:"newStatus"`
}

func (c *Controller) ready(ctx *gin.Context) {
	user, ok := http_auth_middleware.CurrentUser(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, http_common.ErrorResponse{Message: "unauthenticated"})
		return
	}
	roomID, err := parseRoomID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{Message: "invalid room id"})
		return
	}

	var req ReadyRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	ready := req.Status == "Ready"
	if _, err := c.usecase.SetReady(ctx.Request.Context(), roomID, user.ID, ready); err != nil {
		c.logger.Error("failed to set ready", slog.String("error", err.Error()))
		status, body := http_common.StatusFor(err)
		ctx.JSON(status, body)
		return
	}

	ctx.JSON(http.StatusOK, ReadyResponseDTO{
		Status:    "success",
		RoomID:    roomID.String(),
		UserName:  user.Name,
		NewStatus: req.Status,
	})
}

func (c *Controller) leave(ctx *gin.Context) {
	user, ok := http_auth_middleware.CurrentUser(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, http_common.ErrorResponse{Message: "unauthenticated"})
		return
	}
	roomID, err := parseRoomID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{Message: "invalid room id"})
		return
	}

	if err := c.usecase.Leave(ctx.Request.Context(), roomID, user.ID); err != nil {
		c.logger.Error("failed to leave room", slog.String("error", err.Error()))
		status, body := http_common.StatusFor(err)
		ctx.JSON(status, body)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (c *Controller) members(ctx *gin.Context) {
	roomID, err := parseRoomID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{Message: "invalid room id"})
		return
	}

	members, err := c.usecase.Members(ctx.Request.Context(), roomID)
	if err != nil {
		c.logger.Error("failed to list members", slog.String("error", err.Error()))
		status, body := http_common.StatusFor(err)
		ctx.JSON(status, body)
		return
	}

	views := make([]model.MemberView, 0, len(members))
	for _, m := range members {
		views = append(views, m.View())
	}
	ctx.JSON(http.StatusOK, views)
}

func parseRoomID(ctx *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(ctx.Param("room_id"))
}
