package handler

import (
	"net/http"
	"time"

	"lingochat-backend/internal/config"
	"lingochat-backend/internal/notify"
	"lingochat-backend/internal/service"
	"lingochat-backend/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Chat *service.ChatService
	User *service.UserService
	Hub  *notify.Hub
}

// RequestLogger logs every request through the application logger.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := map[string]interface{}{
			"status":    c.Writer.Status(),
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		}
		entry := logger.WithFields(fields)
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("request")
		case c.Writer.Status() >= http.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}

func NewRouter(corsCfg config.CORSConfig, svc Services) *gin.Engine {
	router := gin.New()

	router.Use(RequestLogger())
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     corsCfg.AllowedOrigins,
		AllowMethods:     corsCfg.AllowedMethods,
		AllowHeaders:     corsCfg.AllowedHeaders,
		ExposeHeaders:    corsCfg.ExposedHeaders,
		AllowCredentials: corsCfg.AllowCredentials,
		MaxAge:           time.Duration(corsCfg.MaxAge) * time.Second,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})

	chatHandler := NewChatHandler(svc.Chat)
	messageHandler := NewMessageHandler(svc.Chat)
	prefsHandler := NewPreferencesHandler(svc.Chat)
	profileHandler := NewProfileHandler(svc.User)
	capsHandler := NewCapabilitiesHandler(svc.Chat)
	eventsHandler := NewEventsHandler(svc.Hub)

	api := router.Group("/api")
	{
		api.GET("/capabilities", capsHandler.Get)
		api.GET("/state", chatHandler.GetState)
		api.GET("/processing", chatHandler.GetProcessing)
		api.GET("/events", eventsHandler.Stream)

		chats := api.Group("/chats")
		{
			chats.POST("", chatHandler.CreateChat)
			chats.GET("", chatHandler.ListChats)
			chats.GET("/search", chatHandler.SearchChats)
			chats.GET("/:chat_id", chatHandler.GetChat)
			chats.POST("/:chat_id/open", chatHandler.OpenChat)
			chats.PUT("/:chat_id/title", chatHandler.UpdateChatTitle)
			chats.DELETE("/:chat_id", chatHandler.DeleteChat)
		}

		messages := api.Group("/messages", RequireCapabilities(svc.Chat))
		{
			messages.POST("", messageHandler.SendMessage)
			messages.POST("/:response_id/translate", messageHandler.Translate)
			messages.POST("/:response_id/summarize", messageHandler.Summarize)
		}

		prefs := api.Group("/preferences")
		{
			prefs.GET("", prefsHandler.GetPreferences)
			prefs.PUT("/target-language", prefsHandler.SetTargetLanguage)
			prefs.GET("/summarization", prefsHandler.GetSummarization)
			prefs.PATCH("/summarization", prefsHandler.UpdateSummarization)
			prefs.POST("/summarization/reset", prefsHandler.ResetSummarization)
		}

		profile := api.Group("/profile")
		{
			profile.GET("", profileHandler.GetProfile)
			profile.POST("", profileHandler.Onboard)
			profile.PATCH("", profileHandler.UpdateProfile)
			profile.GET("/avatars", profileHandler.Avatars)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "page not found",
			"redirect":          "/",
			"redirect_after_ms": 3000,
		})
	})

	return router
}
