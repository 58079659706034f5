package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/AdityaCodess/FinStock-AI/models"
	"github.com/AdityaCodess/FinStock-AI/services/trainer"
	"github.com/go-co-op/gocron"
	"gorm.io/gorm"
)

// Scheduler manages scheduled jobs
type Scheduler struct {
	cron    *gocron.Scheduler
	db      *gorm.DB
	trainer *trainer.Trainer
}

// NewScheduler creates a new scheduler instance
func NewScheduler(db *gorm.DB, t *trainer.Trainer) *Scheduler {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:    gocron.NewScheduler(loc),
		db:      db,
		trainer: t,
	}
}

// Start starts all scheduled jobs
func (s *Scheduler) Start() {
	log.Println("Starting scheduler...")

	// Retrain prediction artifacts daily at 17:30 (after market close)
	s.cron.Every(1).Day().At("17:30").Do(func() {
		s.retrainArtifacts()
	})

	// Refresh symbol directory weekly on Sunday at 02:00
	s.cron.Every(1).Week().Sunday().At("02:00").Do(func() {
		s.refreshSymbolDirectory()
	})

	// Prune cached price history monthly
	s.cron.Every(1).Month(1).At("03:00").Do(func() {
		s.pruneCachedPrices()
	})

	s.cron.StartAsync()
	log.Println("Scheduler started successfully")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("Scheduler stopped")
}

// retrainArtifacts retrains prediction artifacts for all active symbols
func (s *Scheduler) retrainArtifacts() {
	log.Println("Retraining prediction artifacts...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	report, err := s.trainer.TrainAll(ctx)
	if err != nil {
		log.Printf("Scheduled training run failed: %v", err)
		return
	}
	log.Printf("Scheduled training completed: %d trained, %d failed", report.Trained, len(report.Failed))
}

// refreshSymbolDirectory reseeds missing symbols in the directory
func (s *Scheduler) refreshSymbolDirectory() {
	log.Println("Refreshing symbol directory...")

	if err := models.SeedDefaultStocks(s.db); err != nil {
		log.Printf("Error refreshing symbol directory: %v", err)
		return
	}

	var total int64
	s.db.Model(&models.Stock{}).Where("status = ?", "active").Count(&total)
	log.Printf("Symbol directory refreshed, %d active symbols", total)
}

// pruneCachedPrices removes cached price rows older than the longest
// training window
func (s *Scheduler) pruneCachedPrices() {
	log.Println("Pruning cached price history...")

	cutoff := time.Now().AddDate(-10, 0, 0)
	result := s.db.Where("date < ?", cutoff).Delete(&models.StockPrice{})
	if result.Error != nil {
		log.Printf("Error pruning cached prices: %v", result.Error)
		return
	}
	log.Printf("Pruned %d cached price rows", result.RowsAffected)
}
