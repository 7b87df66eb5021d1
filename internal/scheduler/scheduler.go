package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"frontdesk-bot/internal/analytics"
	"frontdesk-bot/internal/store"
)

// Scheduler runs the daily report on a cron schedule.
type Scheduler struct {
	cron       *cron.Cron
	spec       string
	ctx        context.Context
	cancel     context.CancelFunc
	reportFunc func(ctx context.Context) error
}

// New creates a scheduler for spec. An empty spec disables the report.
func New(spec string) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		spec:   spec,
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetReportFunction sets the job run on every tick.
func (s *Scheduler) SetReportFunction(f func(ctx context.Context) error) {
	s.reportFunc = f
}

// Start registers the report job and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.spec == "" {
		log.Println("⚠️ REPORT_SCHEDULE is empty, daily report disabled")
		return nil
	}
	if s.reportFunc == nil {
		log.Println("⚠️ Report function not set, scheduler will not generate reports")
		return nil
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		log.Printf("🕘 Triggered daily report (%s UTC)", s.spec)
		if err := s.reportFunc(s.ctx); err != nil {
			log.Printf("❌ Daily report failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule report %q: %w", s.spec, err)
	}

	s.cron.Start()
	log.Printf("📅 Scheduler started - daily report at %q UTC", s.spec)
	return nil
}

// Stop waits for a running job and stops the cron loop.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	log.Println("📅 Scheduler stopped")
}

// IsRunning reports whether the report job has been scheduled.
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}

// Notifier is the subset of the telegram notifier the report needs.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// ErrNoTarget means no notification chat is bound yet.
var ErrNoTarget = errors.New("notification chat not set")

// DailyReport builds the job that posts submission stats to the staff chat.
func DailyReport(uow store.UnitOfWork, n Notifier, now func() time.Time) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		var (
			target int64
			ok     bool
		)
		err := uow.Do(ctx, func(tx store.Tx) error {
			ns, err := tx.NotificationSettings()
			if err != nil {
				return err
			}
			target, ok = ns.Target()
			return nil
		})
		if err != nil {
			return fmt.Errorf("load report target: %w", err)
		}
		if !ok {
			return ErrNoTarget
		}

		stats, err := analytics.Collect(ctx, uow, now())
		if err != nil {
			return err
		}
		if err := n.Notify(ctx, target, stats.Summary()); err != nil {
			return fmt.Errorf("send report to %d: %w", target, err)
		}
		log.Printf("✅ Daily report sent to chat %d", target)
		return nil
	}
}
