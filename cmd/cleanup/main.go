package main

import (
	"flag"
	"log"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/judiguard/judi_guard_server/config"
	"github.com/judiguard/judi_guard_server/internal/database"
	"github.com/judiguard/judi_guard_server/internal/model"
	"github.com/judiguard/judi_guard_server/internal/repository"
)

var (
	dryRun      = flag.Bool("dry-run", true, "Report what would change without touching anything")
	staleHours  = flag.Int("stale-hours", 2, "Hours a run may sit in PROCESSING before it counts as stale")
	sweepRuns   = flag.Bool("sweep-runs", true, "Fail analysis runs stuck in PROCESSING")
	purgeResets = flag.Bool("purge-resets", true, "Delete expired password reset tokens")
)

const staleRunMessage = "analysis timed out while processing"

func main() {
	flag.Parse()

	log.Println("Starting cleanup task...")
	log.Printf("Mode: dry-run=%v", *dryRun)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	analysisRepo := repository.NewAnalysisRepository(db)
	resetRepo := repository.NewPasswordResetRepository(db)

	sweptRuns := 0
	purgedTokens := int64(0)

	if *sweepRuns {
		log.Printf("Sweeping runs stuck in PROCESSING for more than %d hours...", *staleHours)
		sweptRuns = sweepStaleRuns(analysisRepo, *staleHours, *dryRun)
	}

	if *purgeResets {
		log.Println("Purging expired password reset tokens...")
		purgedTokens = purgeExpiredResets(db, resetRepo, *dryRun)
	}

	log.Println("============================================================")
	log.Printf("Stale runs failed: %d", sweptRuns)
	log.Printf("Reset tokens purged: %d", purgedTokens)
	if *dryRun {
		log.Println("DRY RUN MODE - nothing was changed")
		log.Println("Run with -dry-run=false to apply")
	} else {
		log.Println("Cleanup completed")
	}
	log.Println("============================================================")
}

func sweepStaleRuns(analysisRepo *repository.AnalysisRepository, staleHours int, dryRun bool) int {
	cutoff := time.Now().Add(-time.Duration(staleHours) * time.Hour)
	runs, err := analysisRepo.ListStaleProcessing(cutoff)
	if err != nil {
		log.Printf("Failed to list stale runs: %v", err)
		return 0
	}

	count := 0
	for _, run := range runs {
		age := time.Duration(0)
		if run.ProcessingStartedAt != nil {
			age = time.Since(*run.ProcessingStartedAt).Round(time.Minute)
		}
		log.Printf("  - analysis %d (video %s, processing for %s)",
			run.ID, run.YouTubeVideoID, age)

		if !dryRun {
			if err := analysisRepo.MarkFailed(run.ID, staleRunMessage,
				run.TotalCommentsFetched, run.TotalCommentsAnalyzed); err != nil {
				log.Printf("    failed to mark: %v", err)
				continue
			}
		}
		count++
	}

	log.Printf("Found %d stale runs", count)
	return count
}

func purgeExpiredResets(db *gorm.DB, resetRepo *repository.PasswordResetRepository, dryRun bool) int64 {
	if dryRun {
		var count int64
		if err := db.Model(&model.PasswordReset{}).
			Where("expires_at < ?", time.Now()).
			Count(&count).Error; err != nil {
			log.Printf("Failed to count expired reset tokens: %v", err)
			return 0
		}
		return count
	}

	purged, err := resetRepo.DeleteExpired(time.Now())
	if err != nil {
		log.Printf("Failed to purge reset tokens: %v", err)
		return 0
	}
	return purged
}
