package main

import (
	"context"
	"fmt"
	"log"

	"github.com/judiguard/judi_guard_server/config"
	"github.com/judiguard/judi_guard_server/internal/api"
	"github.com/judiguard/judi_guard_server/internal/api/handler"
	"github.com/judiguard/judi_guard_server/internal/database"
	"github.com/judiguard/judi_guard_server/internal/pkg/cron"
	"github.com/judiguard/judi_guard_server/internal/pkg/email"
	"github.com/judiguard/judi_guard_server/internal/pkg/oauth"
	"github.com/judiguard/judi_guard_server/internal/pkg/oss"
	"github.com/judiguard/judi_guard_server/internal/pkg/pubsub"
	"github.com/judiguard/judi_guard_server/internal/pkg/queue"
	"github.com/judiguard/judi_guard_server/internal/pkg/ws"
	"github.com/judiguard/judi_guard_server/internal/pkg/youtube"
	"github.com/judiguard/judi_guard_server/internal/repository"
	"github.com/judiguard/judi_guard_server/internal/service"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	var ossClient *oss.Client
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err = oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Printf("Warning: Failed to init OSS client: %v", err)
		} else {
			log.Println("OSS client initialized")
		}
	}

	analysisQueue := queue.NewQueue(rdb, cfg.Queue.AnalysisQueue)
	stateStore := oauth.NewStateStore(rdb)
	emailSvc := email.NewService(&cfg.Email)

	wsHub := ws.NewHub()

	// Bridge worker progress events onto user websockets
	subscriber := pubsub.NewSubscriber(rdb)
	go func() {
		err := subscriber.Subscribe(context.Background(), func(msg *pubsub.ProgressMessage) {
			if err := wsHub.SendToUser(msg.UserID, &ws.Message{
				Type: msg.Type,
				Data: msg,
			}); err != nil {
				log.Printf("Failed to push progress to user %d: %v", msg.UserID, err)
			}
		})
		if err != nil {
			log.Printf("Progress subscriber stopped: %v", err)
		}
	}()
	log.Println("WebSocket hub started")

	userRepo := repository.NewUserRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	resetRepo := repository.NewPasswordResetRepository(db)

	googleOAuth := oauth.NewGoogleOAuth(&cfg.OAuth.Google)
	ytFactory := youtube.NewFactory(googleOAuth.YouTubeConfig(), userRepo, cfg.YouTube.TimeoutSeconds)

	authService := service.NewAuthService(userRepo, resetRepo, cfg, stateStore, emailSvc)
	userService := service.NewUserService(userRepo, analysisRepo, commentRepo, resetRepo, ossClient)
	analysisService := service.NewAnalysisService(analysisRepo, commentRepo, userRepo, analysisQueue, ytFactory, cfg)
	predictService := service.NewPredictService(&cfg.ML)
	studioService := service.NewStudioService(analysisRepo, userRepo)

	authHandler := handler.NewAuthHandler(authService, cfg)
	userHandler := handler.NewUserHandler(userService)
	analysisHandler := handler.NewAnalysisHandler(analysisService)
	predictHandler := handler.NewPredictHandler(predictService)
	studioHandler := handler.NewStudioHandler(studioService)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret)

	cronService := cron.NewService(analysisRepo, resetRepo, cfg.Analysis.StaleAfterHours)
	cronService.Start()
	defer cronService.Stop()

	router := api.NewRouter(
		authHandler,
		userHandler,
		analysisHandler,
		predictHandler,
		studioHandler,
		websocketHandler,
		cfg,
	)
	engine := router.Setup()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
