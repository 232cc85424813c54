package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/splitpay/internal/domain/models"
	"github.com/mamadbah2/splitpay/internal/service/reporting"
	"github.com/mamadbah2/splitpay/internal/service/whatsapp"
)

const jobTimeout = 2 * time.Minute

// DigestSource builds the daily digest for a day.
type DigestSource interface {
	DailyDigest(day time.Time) models.DailyDigest
}

// Scheduler posts the daily sales digest on a cron schedule.
type Scheduler struct {
	cron         *cron.Cron
	schedule     string
	recipient    string
	location     *time.Location
	digests      DigestSource
	messagingSvc whatsapp.MessagingService
	logger       *zap.Logger
	now          func() time.Time
}

// NewScheduler creates a scheduler evaluating schedule in location.
func NewScheduler(schedule string, location *time.Location, recipient string, digests DigestSource, messagingSvc whatsapp.MessagingService, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}

	return &Scheduler{
		cron:         cron.New(cron.WithLocation(location)),
		schedule:     schedule,
		recipient:    recipient,
		location:     location,
		digests:      digests,
		messagingSvc: messagingSvc,
		logger:       logger,
		now:          time.Now,
	}
}

// Start registers the digest job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runDigest); err != nil {
		return fmt.Errorf("schedule daily digest %q: %w", s.schedule, err)
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule), zap.String("timezone", s.location.String()))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.SendDigest(ctx); err != nil {
		s.logger.Error("failed to send daily digest", zap.Error(err))
		return
	}
	s.logger.Info("daily digest sent successfully")
}

// SendDigest builds today's digest and sends it to the configured recipient.
func (s *Scheduler) SendDigest(ctx context.Context) error {
	today := s.now().In(s.location)
	digest := s.digests.DailyDigest(today)

	req := models.OutboundMessageRequest{
		To:      s.recipient,
		Message: reporting.FormatDigest(digest),
	}
	return s.messagingSvc.SendOutbound(ctx, req)
}
