package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/judiguard/judi_guard_server/config"
	"github.com/judiguard/judi_guard_server/internal/database"
	"github.com/judiguard/judi_guard_server/internal/model"
	"github.com/judiguard/judi_guard_server/internal/pkg/classifier"
	"github.com/judiguard/judi_guard_server/internal/pkg/oauth"
	"github.com/judiguard/judi_guard_server/internal/pkg/pubsub"
	"github.com/judiguard/judi_guard_server/internal/pkg/queue"
	"github.com/judiguard/judi_guard_server/internal/pkg/youtube"
	"github.com/judiguard/judi_guard_server/internal/repository"
	"github.com/judiguard/judi_guard_server/internal/worker"
)

// classifierAdapter exposes the singleton model through the processor's
// narrow interface.
type classifierAdapter struct {
	model *classifier.Classifier
}

func (a *classifierAdapter) Classify(ctx context.Context, text string) (string, float64, string, error) {
	result, err := a.model.Classify(ctx, text)
	if err != nil {
		return "", 0, "", err
	}
	return result.Classification, result.Confidence, result.ModelVersion, nil
}

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

	// Warm the model eagerly so the first run doesn't pay the load cost
	clf, err := classifier.Load(context.Background(), &cfg.ML)
	if err != nil {
		log.Fatalf("Failed to load classifier: %v", err)
	}
	log.Printf("Classifier ready, model version: %s", clf.ModelVersion())

	analysisQueue := queue.NewQueue(rdb, cfg.Queue.AnalysisQueue)
	publisher := pubsub.NewPublisher(rdb)

	userRepo := repository.NewUserRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	googleOAuth := oauth.NewGoogleOAuth(&cfg.OAuth.Google)
	ytFactory := youtube.NewFactory(googleOAuth.YouTubeConfig(), userRepo, cfg.YouTube.TimeoutSeconds)

	processor := worker.NewProcessor(
		analysisRepo,
		commentRepo,
		userRepo,
		newSourceFactory(ytFactory),
		&classifierAdapter{model: clf},
		publisher,
		cfg,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received shutdown signal")
		cancel()
	}()

	log.Printf("Worker started, max workers: %d", cfg.Queue.MaxWorkers)

	for i := 0; i < cfg.Queue.MaxWorkers; i++ {
		go func(workerID int) {
			for {
				select {
				case <-ctx.Done():
					log.Printf("Worker %d shutting down", workerID)
					return
				default:
					msg, err := analysisQueue.Pop(ctx, 5*time.Second)
					if err != nil {
						if ctx.Err() != nil {
							return
						}
						log.Printf("Worker %d: failed to pop job: %v", workerID, err)
						continue
					}

					if msg == nil {
						continue // timeout, keep waiting
					}

					log.Printf("Worker %d: processing analysis %d", workerID, msg.AnalysisID)
					if err := processor.Process(ctx, msg); err != nil {
						log.Printf("Worker %d: analysis %d failed: %v", workerID, msg.AnalysisID, err)
					}
				}
			}
		}(i)
	}

	<-ctx.Done()
	log.Println("Worker shutdown complete")
}

func newSourceFactory(factory *youtube.Factory) worker.SourceFactory {
	return func(ctx context.Context, user *model.User) (worker.CommentSource, error) {
		return factory.ClientForUser(ctx, user)
	}
}
