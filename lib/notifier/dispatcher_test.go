package notifier

import (
	"context"
	"testing"
	"time"

	"github.com/newsdesk/newsdesk/lib/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *fakeSender, *gorm.DB) {
	t.Helper()
	n, fake, db := newTestNotifier(t)
	d := &Dispatcher{
		db:          db,
		log:         zap.NewNop(),
		notifier:    n,
		interval:    time.Second,
		batchSize:   20,
		maxAttempts: 3,
		backoffBase: 30 * time.Second,
	}
	return d, fake, db
}

func pendingJob(t *testing.T, db *gorm.DB, post *models.Post) *models.DispatchJob {
	t.Helper()
	job := &models.DispatchJob{
		PostID:   post.ID,
		Category: post.Category,
		Mutation: models.MutationCreated,
		Status:   models.JobPending,
	}
	require.NoError(t, db.Create(job).Error)
	return job
}

func reload(t *testing.T, db *gorm.DB, job *models.DispatchJob) *models.DispatchJob {
	t.Helper()
	got := &models.DispatchJob{}
	require.NoError(t, db.First(got, job.ID).Error)
	return got
}

func TestRunOnceDispatchesPendingJob(t *testing.T) {
	d, fake, db := newTestDispatcher(t)

	seedSubscriber(t, db, seedUser(t, db, "a@x.com"), "politics")
	post := seedPost(t, db, "politics")
	job := pendingJob(t, db, post)

	d.RunOnce(context.Background(), time.Now().UTC())

	got := reload(t, db, job)
	assert.Equal(t, models.JobSent, got.Status)
	assert.Equal(t, 1, got.Attempts)
	assert.Equal(t, 1, got.Delivered)
	assert.Equal(t, 0, got.Undeliverable)
	assert.Equal(t, []string{"a@x.com"}, fake.recipients())
}

func TestRunOnceDeliveryFailureDoesNotRetryJob(t *testing.T) {
	d, fake, db := newTestDispatcher(t)

	seedSubscriber(t, db, seedUser(t, db, "a@x.com"), "politics")
	seedSubscriber(t, db, seedUser(t, db, "b@x.com"), "politics")
	fake.failFor["b@x.com"] = assert.AnError
	post := seedPost(t, db, "politics")
	job := pendingJob(t, db, post)

	d.RunOnce(context.Background(), time.Now().UTC())

	got := reload(t, db, job)
	assert.Equal(t, models.JobSent, got.Status)
	assert.Equal(t, 1, got.Delivered)
	assert.Equal(t, 1, got.Undeliverable)

	// A rerun must not double-send to the subscriber that succeeded.
	d.RunOnce(context.Background(), time.Now().UTC())
	assert.Equal(t, []string{"a@x.com"}, fake.recipients())
}

func TestRunOnceStoreUnavailableRetriesWithBackoff(t *testing.T) {
	d, _, db := newTestDispatcher(t)

	post := seedPost(t, db, "politics")
	job := pendingJob(t, db, post)
	require.NoError(t, db.Migrator().DropTable(&models.Subscriber{}))

	now := time.Now().UTC()
	d.RunOnce(context.Background(), now)

	got := reload(t, db, job)
	assert.Equal(t, models.JobPending, got.Status)
	assert.Equal(t, 1, got.Attempts)
	require.True(t, got.NextAttemptAt.Valid)
	assert.WithinDuration(t, now.Add(d.backoffBase), got.NextAttemptAt.Time, time.Second)

	// Not due yet: the same tick must skip it.
	d.RunOnce(context.Background(), now)
	assert.Equal(t, 1, reload(t, db, job).Attempts)
}

func TestRunOnceExhaustedRetriesMarkJobFailed(t *testing.T) {
	d, _, db := newTestDispatcher(t)
	d.maxAttempts = 2

	post := seedPost(t, db, "politics")
	job := pendingJob(t, db, post)
	require.NoError(t, db.Migrator().DropTable(&models.Subscriber{}))

	now := time.Now().UTC()
	d.RunOnce(context.Background(), now)
	require.True(t, reload(t, db, job).NextAttemptAt.Valid)

	d.RunOnce(context.Background(), now.Add(d.backoffBase+time.Minute))

	got := reload(t, db, job)
	assert.Equal(t, models.JobFailed, got.Status)
	assert.Equal(t, 2, got.Attempts)
	// Terminal jobs carry no schedule.
	assert.False(t, got.NextAttemptAt.Valid)
}

func TestRunOnceHonorsBatchSize(t *testing.T) {
	d, fake, db := newTestDispatcher(t)
	d.batchSize = 1

	seedSubscriber(t, db, seedUser(t, db, "a@x.com"), "politics")
	post := seedPost(t, db, "politics")
	first := pendingJob(t, db, post)
	second := pendingJob(t, db, post)

	d.RunOnce(context.Background(), time.Now().UTC())

	statuses := []string{reload(t, db, first).Status, reload(t, db, second).Status}
	assert.ElementsMatch(t, []string{models.JobSent, models.JobPending}, statuses)
	assert.Len(t, fake.recipients(), 1)
}
