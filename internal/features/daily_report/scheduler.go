package daily_report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"broker-crm/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler emails the daily report on the DAILY_REPORT_CRON schedule.
type Scheduler struct {
	Service    DailyReportService
	Spec       string
	Recipients []string
	Logger     *zap.Logger
	Now        func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
}

func NewScheduler(service DailyReportService, cfg *config.Config, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		Service:    service,
		Spec:       cfg.DailyReportCron,
		Recipients: cfg.DailyReportRecipients,
		Logger:     logger,
		Now:        time.Now,
	}
}

// Start registers the job and starts the cron runner. An empty schedule
// leaves the scheduler disabled.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Spec == "" {
		s.Logger.Info("daily report schedule disabled")
		return nil
	}
	if len(s.Recipients) == 0 {
		return fmt.Errorf("daily report schedule %q has no recipients", s.Spec)
	}
	if s.cron != nil {
		return nil
	}

	logger := cronLogger{s.Logger.Sugar()}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	id, err := c.AddFunc(s.Spec, func() { s.Run(context.Background()) })
	if err != nil {
		return fmt.Errorf("invalid daily report schedule %q: %w", s.Spec, err)
	}
	c.Start()

	s.cron, s.entryID = c, id
	s.Logger.Info("daily report scheduled",
		zap.String("schedule", s.Spec),
		zap.Time("next_run", c.Entry(id).Next))
	return nil
}

// Stop halts the runner and waits for a running job until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return nil
	}
	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run sends today's report once. Failures are logged; the next scheduled
// run is not affected.
func (s *Scheduler) Run(ctx context.Context) {
	day := s.Now()
	email, err := s.Service.Send(ctx, day, s.Recipients)
	if err != nil {
		s.Logger.Error("scheduled daily report failed", zap.Time("day", day), zap.Error(err))
		return
	}
	s.Logger.Info("scheduled daily report sent", zap.String("delivery_id", email.ID))
}

// cronLogger adapts zap to cron's logger interface.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
