package api

import (
	"github.com/gin-gonic/gin"

	"github.com/judiguard/judi_guard_server/config"
	"github.com/judiguard/judi_guard_server/internal/api/handler"
	"github.com/judiguard/judi_guard_server/internal/api/middleware"
)

type Router struct {
	authHandler      *handler.AuthHandler
	userHandler      *handler.UserHandler
	analysisHandler  *handler.AnalysisHandler
	predictHandler   *handler.PredictHandler
	studioHandler    *handler.StudioHandler
	websocketHandler *handler.WebSocketHandler
	cfg              *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	analysisHandler *handler.AnalysisHandler,
	predictHandler *handler.PredictHandler,
	studioHandler *handler.StudioHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:      authHandler,
		userHandler:      userHandler,
		analysisHandler:  analysisHandler,
		predictHandler:   predictHandler,
		studioHandler:    studioHandler,
		websocketHandler: websocketHandler,
		cfg:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket
		api.GET("/ws", r.websocketHandler.Handle)

		// Public endpoints
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/verify-otp", r.authHandler.VerifyOtp)
			auth.POST("/resend-otp", r.authHandler.ResendOtp)
			auth.POST("/forgot-password", r.authHandler.ForgotPassword)
			auth.POST("/reset-password", r.authHandler.ResetPassword)
			auth.GET("/google", r.authHandler.GoogleAuth)
			auth.GET("/google/callback", r.authHandler.GoogleCallback)
			auth.GET("/youtube/callback", r.authHandler.YouTubeCallback)
		}

		// Standalone text classification, no account required
		api.POST("/predict", r.predictHandler.Predict)

		// Authenticated endpoints
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			authenticated.GET("/auth/youtube", r.authHandler.YouTubeConnect)
			authenticated.DELETE("/auth/youtube", r.authHandler.DisconnectYouTube)

			user := authenticated.Group("/user")
			{
				user.GET("/profile", r.userHandler.GetProfile)
				user.PUT("/profile", r.userHandler.UpdateProfile)
				user.POST("/avatar", r.userHandler.UploadAvatar)
				user.DELETE("", r.userHandler.DeleteAccount)
			}

			analyses := authenticated.Group("/analyses")
			{
				analyses.POST("", r.analysisHandler.Start)
				analyses.GET("", r.analysisHandler.List)
				analyses.GET("/:id", r.analysisHandler.Get)
				analyses.DELETE("/:id", r.analysisHandler.Delete)
				analyses.GET("/:id/comments", r.analysisHandler.Results)
				analyses.POST("/:id/batch-delete", r.analysisHandler.BatchDelete)
				analyses.GET("/:id/studio-link", r.studioHandler.CommentLink)
			}

			authenticated.DELETE("/comments/:id", r.analysisHandler.DeleteComment)
		}
	}

	return engine
}
