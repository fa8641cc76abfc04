package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/pkg/apperrors"
)

// UserIDFunc resolves the authenticated user of a request.
type UserIDFunc func(c *gin.Context) (int64, error)

// Handler upgrades authenticated requests to websocket connections
type Handler struct {
	hub    *Hub
	userID UserIDFunc
	logger zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, userID UserIDFunc, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		userID: userID,
		logger: logger.With().Str("component", "websocket").Logger(),
	}
}

// HandleConnection godoc
// @Summary Open the real-time channel
// @Description Upgrades to a WebSocket. The server pushes message.created and notification.created frames for the authenticated user. The token may be passed as the token query parameter.
// @Tags realtime
// @Security BearerAuth
// @Param token query string false "Access token when headers cannot be set"
// @Success 101 {string} string "Switching Protocols"
// @Failure 401 {object} dto.ErrorResponse
// @Router /ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	id, err := h.userID(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "authentication required",
			Code:  apperrors.CodeUnauthorized,
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Int64("userID", id).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		userID: id,
		logger: h.logger,
	}
	if !h.hub.enqueueRegister(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
