package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
	"nhooyr.io/websocket"

	"github.com/iliyamo/gig-market/internal/middleware"
	"github.com/iliyamo/gig-market/internal/realtime"
)

// WSHandler upgrades GET /ws to a push-only websocket and registers the
// connection in the presence registry. Browsers cannot set headers on
// websocket upgrades, so the access token travels in the ?token= query
// parameter instead of Authorization.
type WSHandler struct {
	registry        *realtime.Registry
	jwtSecret       string
	skipOriginCheck bool
}

// NewWSHandler constructs a WSHandler. skipOriginCheck disables the
// browser origin check for local development.
func NewWSHandler(registry *realtime.Registry, jwtSecret string, skipOriginCheck bool) *WSHandler {
	if registry == nil {
		panic("nil registry passed to NewWSHandler")
	}
	return &WSHandler{registry: registry, jwtSecret: jwtSecret, skipOriginCheck: skipOriginCheck}
}

// Serve handles GET /ws?token=<jwt>. The connection stays registered
// for the lifetime of the request; events pushed to the user are
// written by the client's own write loop.
func (h *WSHandler) Serve(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing token"})
	}
	userID, err := middleware.ParseSubject(token, h.jwtSecret)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}

	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		InsecureSkipVerify: h.skipOriginCheck,
	})
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return nil
	}

	client := realtime.NewClient(userID, conn)
	h.registry.Register(client)
	log.WithFields(log.Fields{"user_id": userID, "conn_id": client.ID()}).Info("websocket connected")

	defer func() {
		h.registry.Unregister(client)
		client.Close()
		log.WithFields(log.Fields{"user_id": userID, "conn_id": client.ID()}).Info("websocket disconnected")
	}()

	// Push-only socket: discard inbound frames and block until the peer
	// goes away or the server shuts down.
	ctx := conn.CloseRead(c.Request().Context())
	<-ctx.Done()
	return nil
}
