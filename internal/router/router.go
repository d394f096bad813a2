// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gig-market/internal/handler"
	"github.com/iliyamo/gig-market/internal/middleware"
)

// Register mounts every route. The health check, the open-gig feed,
// gig details and the websocket endpoint are public (the websocket
// authenticates itself via its token query parameter); everything that
// writes or exposes owner-only data sits behind JWT auth, with the
// rate limiter applied on top.
func Register(e *echo.Echo, gigs *handler.GigHandler, bids *handler.BidHandler, ws *handler.WSHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)
	e.GET("/ws", ws.Serve)

	v1 := e.Group("/v1")
	v1.GET("/gigs", gigs.List)
	v1.GET("/gigs/:id", gigs.Get)

	auth := v1.Group("", middleware.JWTAuth(jwtSecret))
	if limiter != nil {
		auth.Use(limiter)
	}
	auth.POST("/gigs", gigs.Create)
	auth.GET("/gigs/:id/bids", gigs.ListBids)
	auth.POST("/bids", bids.Create)
	auth.PATCH("/bids/:id/hire", bids.Hire)
}
