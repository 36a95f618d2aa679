package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/eventmgmt/chat/internal/chat"
	"github.com/eventmgmt/chat/internal/config"
	"github.com/eventmgmt/chat/internal/database"
	"github.com/eventmgmt/chat/internal/handlers"
	ws "github.com/eventmgmt/chat/internal/websocket"
	"github.com/eventmgmt/chat/pkg/auth"
)

type Server struct {
	Router *gin.Engine
	DB     *database.Database
	Redis  *redis.Client
	Hub    *ws.Hub

	cfg *config.Config
}

func NewServer() *Server {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}

	dbConn := &database.Database{}
	if err := dbConn.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("Postgres connect failed: %v", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Redis connect failed: %v", err)
	}

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	// Room state is built once here and handed to the gateway by reference;
	// nothing chat-related lives in package-level state.
	hub := ws.NewHub()
	chatSvc := chat.NewService(dbConn, chat.NewRegistry(), chat.NewRateLimiter(), chat.NewTypingTracker())

	authH := handlers.NewAuthHandler(dbConn, jwtMgr, rdb)
	eventH := handlers.NewEventHandler(dbConn)
	chatH := handlers.NewChatHandler(chatSvc, hub)
	messageH := handlers.NewMessageHandler(chatSvc, hub)
	wsH := handlers.NewWebSocketHandler(hub, messageH)

	router := gin.Default()
	APIEndpoints(router, jwtMgr, rdb, authH, eventH, chatH, wsH)

	return &Server{
		Router: router,
		DB:     dbConn,
		Redis:  rdb,
		Hub:    hub,
		cfg:    cfg,
	}
}

func (s *Server) Run() {
	go s.Hub.Run()
	defer s.Hub.Stop()

	log.Printf("Server starting on port %s", s.cfg.Port)
	if err := s.Router.Run(":" + s.cfg.Port); err != nil {
		log.Fatalf("Server run error: %v", err)
	}
}
