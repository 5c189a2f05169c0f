package cron

import (
	"log"
	"time"

	"github.com/judiguard/judi_guard_server/internal/repository"
)

const staleRunMessage = "analysis timed out while processing"

// Service runs background maintenance: stale PROCESSING runs are swept
// to FAILED and expired password reset tokens are purged.
type Service struct {
	analysisRepo *repository.AnalysisRepository
	resetRepo    *repository.PasswordResetRepository
	staleAfter   time.Duration
	stopChan     chan struct{}
}

func NewService(
	analysisRepo *repository.AnalysisRepository,
	resetRepo *repository.PasswordResetRepository,
	staleAfterHours int,
) *Service {
	if staleAfterHours <= 0 {
		staleAfterHours = 2
	}
	return &Service{
		analysisRepo: analysisRepo,
		resetRepo:    resetRepo,
		staleAfter:   time.Duration(staleAfterHours) * time.Hour,
		stopChan:     make(chan struct{}),
	}
}

func (s *Service) Start() {
	go s.runSweep()
	log.Println("Cron service started (stale run sweep + reset token purge)")
}

func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

func (s *Service) runSweep() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweepAll()
		}
	}
}

func (s *Service) sweepAll() {
	stale := s.sweepStaleRuns()
	purged := s.purgeExpiredResets()
	if stale > 0 || purged > 0 {
		log.Printf("Sweep summary: stale_runs=%d, reset_tokens=%d", stale, purged)
	}
}

// sweepStaleRuns fails runs stuck in PROCESSING, most often left behind
// by a worker that died mid-run.
func (s *Service) sweepStaleRuns() int {
	cutoff := time.Now().Add(-s.staleAfter)
	runs, err := s.analysisRepo.ListStaleProcessing(cutoff)
	if err != nil {
		log.Printf("Sweep: failed to list stale runs: %v", err)
		return 0
	}

	swept := 0
	for _, run := range runs {
		if err := s.analysisRepo.MarkFailed(run.ID, staleRunMessage,
			run.TotalCommentsFetched, run.TotalCommentsAnalyzed); err != nil {
			log.Printf("Sweep: failed to mark analysis %d: %v", run.ID, err)
			continue
		}
		swept++
	}
	return swept
}

func (s *Service) purgeExpiredResets() int {
	if s.resetRepo == nil {
		return 0
	}
	purged, err := s.resetRepo.DeleteExpired(time.Now())
	if err != nil {
		log.Printf("Sweep: failed to purge reset tokens: %v", err)
		return 0
	}
	return int(purged)
}

// RunNow triggers one sweep immediately, for manual maintenance. It
// returns how many runs were failed as stale.
func (s *Service) RunNow() int {
	log.Println("Manual sweep triggered...")
	stale := s.sweepStaleRuns()
	s.purgeExpiredResets()
	return stale
}
