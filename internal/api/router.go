package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/matchpoint/chat-backend/internal/api/handler"
	"github.com/matchpoint/chat-backend/internal/api/middleware"
	"github.com/matchpoint/chat-backend/internal/core/ports"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(
	users ports.UserService,
	chat ports.ChatService,
	db *mongo.Database,
	rdb *redis.Client,
	jwtSecret string,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("chat_http"))

	userHandler := handler.NewUserHandler(users)
	chatHandler := handler.NewChatHandler(chat)

	// --- Public routes ---
	e.POST("/api/v1/auth/register", userHandler.Register)
	e.POST("/api/v1/auth/login", userHandler.Login)

	// --- Protected routes ---
	v1 := e.Group("/api/v1", middleware.Auth(jwtSecret))
	v1.GET("/users", userHandler.List)
	v1.PUT("/users/:id", userHandler.UpdateEmail)
	v1.DELETE("/users/:id", userHandler.Delete)
	v1.POST("/users/dialogs", chatHandler.CreateDialog)
	v1.POST("/notifications/push", chatHandler.SendPush)

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e
}
