package server

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/outloud-backend/internal/http/handlers"
	"github.com/yungbote/outloud-backend/internal/http/middleware"
	"github.com/yungbote/outloud-backend/internal/platform/envutil"
	"github.com/yungbote/outloud-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log          *logger.Logger
	ServiceName  string
	Health       *handlers.HealthHandler
	Auth         *handlers.AuthHandler
	Topic        *handlers.TopicHandler
	Conversation *handlers.ConversationHandler
	Evaluation   *handlers.EvaluationHandler
	RequireAuth  gin.HandlerFunc
	OptionalAuth gin.HandlerFunc
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if envutil.Bool("OTEL_ENABLED", false) {
		router.Use(otelgin.Middleware(cfg.ServiceName))
	}
	router.Use(middleware.AttachTraceContext())
	router.Use(middleware.RequestLogger(cfg.Log))
	router.Use(middleware.CORS())

	router.GET("/health", cfg.Health.Health)

	auth := router.Group("/auth")
	{
		auth.POST("/signup", cfg.Auth.Signup)
		auth.POST("/login", cfg.Auth.Login)
		auth.POST("/guest", cfg.Auth.Guest)
		auth.GET("/me", cfg.RequireAuth, cfg.Auth.Me)
	}

	demo := router.Group("/demo")
	{
		demo.GET("/topics", cfg.Topic.List)
		demo.GET("/topics/:id", cfg.Topic.Get)
	}

	conversations := router.Group("/conversations")
	{
		conversations.POST("", cfg.OptionalAuth, cfg.Conversation.Create)
		conversations.GET("", cfg.RequireAuth, cfg.Conversation.List)
		conversations.GET("/:id", cfg.OptionalAuth, cfg.Conversation.Get)
		conversations.POST("/:id/voice-message", cfg.OptionalAuth, cfg.Conversation.SubmitVoiceMessage)
		conversations.POST("/:id/evaluate", cfg.OptionalAuth, cfg.Evaluation.Evaluate)
		conversations.GET("/:id/evaluation", cfg.OptionalAuth, cfg.Evaluation.GetLatest)
	}

	return router
}
