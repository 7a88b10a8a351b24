package export

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/zerolabsgreen/PEACH-DemoApp-sub000/internal/eac"
)

// Scheduler runs unattended related-entities exports on a cron schedule and
// writes the resulting archives to a local directory.
type Scheduler struct {
	cron      *cron.Cron
	service   *Service
	repo      eac.Repository
	outputDir string
	logger    *zap.Logger
}

// NewScheduler creates a new export scheduler
func NewScheduler(service *Service, repo eac.Repository, outputDir string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		service:   service,
		repo:      repo,
		outputDir: outputDir,
		logger:    logger,
	}
}

// Start registers the export job under the given cron expression and starts
// the scheduler.
func (s *Scheduler) Start(spec string) error {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("Export scheduler started",
		zap.String("schedule", spec),
		zap.String("output_dir", s.outputDir))
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	certs, err := s.repo.ListCertificates(ctx, nil)
	if err != nil {
		s.logger.Error("Scheduled export: failed to list certificates", zap.Error(err))
		return
	}

	file, err := s.service.ExportRelatedZip(ctx, certs, s.repo.FetchRelatedData, nil)
	if err != nil {
		if err == ErrNoData {
			s.logger.Info("Scheduled export: nothing to export")
			return
		}
		s.logger.Error("Scheduled export failed", zap.Error(err))
		return
	}

	path := filepath.Join(s.outputDir, file.Name)
	if err := os.WriteFile(path, file.Content, 0o644); err != nil {
		s.logger.Error("Scheduled export: failed to write archive",
			zap.String("path", path),
			zap.Error(err))
		return
	}

	s.logger.Info("Scheduled export written", zap.String("path", path))
}
