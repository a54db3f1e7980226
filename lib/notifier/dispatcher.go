package notifier

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/newsdesk/newsdesk/config"
	"github.com/newsdesk/newsdesk/lib/metrics"
	"github.com/newsdesk/newsdesk/lib/models"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dispatcher drains pending dispatch jobs in the background. The request path
// only ever writes the job row; all delivery latency lives here.
type Dispatcher struct {
	db       *gorm.DB
	log      *zap.Logger
	notifier *Notifier

	mu     sync.Mutex
	cancel context.CancelFunc

	interval    time.Duration
	batchSize   int
	maxAttempts int
	backoffBase time.Duration
}

func NewDispatcher(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, db *gorm.DB, n *Notifier) *Dispatcher {
	d := &Dispatcher{
		db:          db,
		log:         log,
		notifier:    n,
		interval:    time.Duration(cfg.Dispatch.IntervalSecs) * time.Second,
		batchSize:   cfg.Dispatch.BatchSize,
		maxAttempts: cfg.Dispatch.MaxAttempts,
		backoffBase: time.Duration(cfg.Dispatch.BackoffBaseSecs) * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go d.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Sugar().Info("Trying to stop dispatcher")
			d.Stop()
			return nil
		},
	})

	return d
}

func (d *Dispatcher) tickerWithImmediateTick(interval time.Duration) *time.Ticker {
	withImmediateTick := make(chan time.Time, 1)

	ticker := time.NewTicker(interval)
	tickerC := ticker.C
	go func() {
		withImmediateTick <- time.Now()
		for c := range tickerC {
			withImmediateTick <- c
		}
	}()

	ticker.C = withImmediateTick
	return ticker
}

func (d *Dispatcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	ticker := d.tickerWithImmediateTick(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Locking here to wait for an in-flight batch to finish
			d.mu.Lock()

			d.log.Sugar().Info("Dispatcher stopped")
			return

		case batchStartTime := <-ticker.C:
			d.RunOnce(ctx, batchStartTime.UTC())
		}
	}
}

func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
}

// RunOnce claims and processes one batch of due jobs.
func (d *Dispatcher) RunOnce(ctx context.Context, now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var jobs models.DispatchJobs
	tx := d.db.
		Where("status = ?", models.JobPending).
		Where("next_attempt_at IS NULL OR next_attempt_at <= ?", now).
		Order("created_at asc").
		Limit(d.batchSize).
		Find(&jobs)
	if err := tx.Error; err != nil {
		d.log.Sugar().Errorw("Failed to fetch pending jobs", "err", err)
		return
	}

	for i := range jobs {
		d.handleJob(ctx, now, &jobs[i])
	}
}

func (d *Dispatcher) handleJob(ctx context.Context, now time.Time, job *models.DispatchJob) {
	start := time.Now()

	result, err := d.notifier.Notify(ctx, job)
	if errors.Is(err, ErrStoreUnavailable) {
		d.retryLater(now, start, job, err)
		return
	}

	// Per-recipient failures do not retry the job: every recipient was
	// already attempted once, and a rerun would double-send to the rest.
	if err != nil {
		d.log.Sugar().Warnw("Dispatch completed with failed deliveries",
			"job_id", job.ID, "failed", result.Failed, "err", err)
	}

	updates := map[string]any{
		"status":        models.JobSent,
		"attempts":      job.Attempts + 1,
		"delivered":     result.Attempted - result.Failed,
		"undeliverable": result.Failed,
	}
	if err := d.db.Model(job).Updates(updates).Error; err != nil {
		d.log.Sugar().Errorw("Failed to mark job as sent", "job_id", job.ID, "err", err)
		return
	}

	metrics.RecordDispatch(start, models.JobSent)
	d.log.Sugar().Infow("Dispatched job",
		"job_id", job.ID, "post_id", job.PostID,
		"delivered", result.Attempted-result.Failed, "undeliverable", result.Failed)
}

func (d *Dispatcher) retryLater(now, start time.Time, job *models.DispatchJob, cause error) {
	attempts := job.Attempts + 1

	status := models.JobPending
	metricStatus := "retried"
	if attempts >= d.maxAttempts {
		status = models.JobFailed
		metricStatus = models.JobFailed
	}

	// A failed job never runs again, so it carries no next attempt.
	updates := map[string]any{
		"status":          status,
		"attempts":        attempts,
		"next_attempt_at": nil,
	}
	if status == models.JobPending {
		updates["next_attempt_at"] = now.Add(time.Duration(attempts) * d.backoffBase)
	}
	if err := d.db.Model(job).Updates(updates).Error; err != nil {
		d.log.Sugar().Errorw("Failed to reschedule job", "job_id", job.ID, "err", err)
		return
	}

	metrics.RecordDispatch(start, metricStatus)
	d.log.Sugar().Warnw("Dispatch deferred",
		"job_id", job.ID, "attempts", attempts, "status", status, "err", cause)
}
