package ws_room

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/playwrist/core/internal/model"
	service_simple_auth "github.com/playwrist/core/internal/service/auth/simple"
	usecase_room "github.com/playwrist/core/internal/usecase/room"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Controller struct {
	hub    *Hub
	rooms  *usecase_room.Usecase
	auth   *service_simple_auth.Service
	logger *slog.Logger
}

func NewController(
	hub *Hub,
	rooms *usecase_room.Usecase,
	auth *service_simple_auth.Service,
) *Controller {
	return &Controller{
		hub:    hub,
		rooms:  rooms,
		auth:   auth,
		logger: slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/rooms/:room_id/ws", c.roomWS)
}

func (c *Controller) roomWS(ctx *gin.Context) {
	roomID, err := parseRoomID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	if _, err := c.rooms.Room(ctx.Request.Context(), roomID); err != nil {
		if errors.Is(err, usecase_room.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.logger.Error("failed to upgrade to websocket",
			slog.String("error", err.Error()),
		)
		return
	}

	user, err := c.auth.Resolve(ctx.Query("token"))
	if err != nil {
		// 1008: policy violation, the close code for a bad token.
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid token"))
		conn.Close()
		return
	}

	client := &Client{
		Hub:    c.hub,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		RoomID: roomID,
		UserID: user.ID,
	}

	c.hub.RegisterClient(client)
	c.hub.Broadcast(roomID, model.SystemEvent("join", user.ID))

	go c.hub.StartClientReading(client)
	go c.hub.StartClientWriting(client)
}

func parseRoomID(ctx *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(ctx.Param("room_id"))
}
