package main

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/eventmgmt/chat/internal/handlers"
	"github.com/eventmgmt/chat/internal/middleware"
	"github.com/eventmgmt/chat/pkg/auth"
)

func APIEndpoints(
	r *gin.Engine,
	jwtMgr *auth.JWTManager,
	rdb *redis.Client,
	authH *handlers.AuthHandler,
	eventH *handlers.EventHandler,
	chatH *handlers.ChatHandler,
	wsH *handlers.WebSocketHandler,
) {
	// Auth endpoints
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authH.Register)
		authGroup.POST("/login", authH.Login)
		authGroup.POST("/logout", middleware.AuthMiddleware(jwtMgr, rdb), authH.Logout)
	}

	// API endpoints
	api := r.Group("/api", middleware.AuthMiddleware(jwtMgr, rdb))
	{
		events := api.Group("/events")
		{
			events.POST("", eventH.CreateEvent)
			events.GET("", eventH.ListEvents)
			events.GET("/:eventId", eventH.GetEvent)
			events.POST("/:eventId/register", eventH.Register)
			events.DELETE("/:eventId/register", eventH.Unregister)
		}

		chatGroup := api.Group("/chat")
		{
			chatGroup.GET("/events/:eventId/messages", chatH.GetMessageHistory)
			chatGroup.POST("/events/:eventId/messages", chatH.SendMessage)
			chatGroup.DELETE("/messages/:messageId", chatH.DeleteMessage)
			chatGroup.GET("/events/:eventId/room-info", chatH.GetRoomInfo)
			chatGroup.GET("/events/:eventId/connected-users", chatH.GetConnectedUsers)
			chatGroup.GET("/events/:eventId/can-join", chatH.CanJoin)
			chatGroup.POST("/events/:eventId/rate-limit-check", chatH.CheckRateLimit)
		}
	}

	// Duplex channel
	r.GET("/ws", middleware.WSAuthMiddleware(jwtMgr, rdb), wsH.HandleWebSocket)
}
