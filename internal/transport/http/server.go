package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	appsvc "legalai-assistant/internal/app"
	"legalai-assistant/internal/bootstrap"
	"legalai-assistant/internal/transport/http/handler"
	"legalai-assistant/internal/transport/http/middleware"
	"legalai-assistant/internal/upstream"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.StaticFile("/", "web/index.html")
	router.StaticFile("/auth", "web/auth.html")
	router.StaticFile("/chat", "web/chat.html")
	router.GET("/healthz", healthHandler.Check)

	cfg := app.Config
	authClient := upstream.NewAuthClient(
		cfg.Upstream.AuthBaseURL,
		time.Duration(cfg.Upstream.AuthTimeoutSeconds)*time.Second,
	)
	legalClient := upstream.NewLegalClient(
		cfg.Upstream.LegalBaseURL,
		time.Duration(cfg.Upstream.QueryTimeoutSeconds)*time.Second,
	)

	authService := appsvc.NewAuthService(authClient, app.Sessions, app.Conversations, slog.Default())

	var auditSink appsvc.AuditSink
	if app.AuditPublisher != nil {
		auditSink = app.AuditPublisher
	}
	chatService := appsvc.NewChatService(legalClient, app.Conversations, auditSink, app.AuditRepo, slog.Default())

	authHandler := handler.NewAuthHandler(authService)
	chatHandler := handler.NewChatHandler(chatService)
	sessionRequired := middleware.SessionAuth(authService)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/signup", authHandler.Signup)
	authGroup.POST("/logout", sessionRequired, authHandler.Logout)
	authGroup.GET("/me", sessionRequired, authHandler.Me)

	chatGroup := v1.Group("/chat")
	chatGroup.Use(sessionRequired)
	chatGroup.POST("/query", chatHandler.Query)
	chatGroup.GET("/messages", chatHandler.ListMessages)
	chatGroup.GET("/history", chatHandler.History)
	chatGroup.PUT("/messages/:id", chatHandler.RenameMessage)
	chatGroup.DELETE("/messages/:id", chatHandler.DeleteMessage)
	chatGroup.GET("/categories", chatHandler.Categories)
	chatGroup.GET("/audit", chatHandler.AuditHistory)

	return router
}
