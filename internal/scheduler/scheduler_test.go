package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/Dan9191/ledger-service/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJobs struct {
	postedAt []time.Time
	alertsAt []time.Time
	err      error
}

func (f *fakeJobs) PostDueRecurrings(_ context.Context, now time.Time) (int, error) {
	f.postedAt = append(f.postedAt, now)
	return 2, f.err
}

func (f *fakeJobs) LowBalanceAlerts(_ context.Context, now time.Time) (int, error) {
	f.alertsAt = append(f.alertsAt, now)
	return 1, f.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestNewRegistersJobs(t *testing.T) {
	cfg := &config.Config{RecurringCron: "@hourly", AlertCron: "0 7 * * *", DBTimeout: time.Second}
	s, err := New(&fakeJobs{}, cfg, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, s.Jobs())
	assert.Equal(t, 10*time.Second, s.timeout)

	cfg.AlertCron = ""
	s, err = New(&fakeJobs{}, cfg, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, s.Jobs())
}

func TestNewRejectsBadSpec(t *testing.T) {
	_, err := New(&fakeJobs{}, &config.Config{RecurringCron: "every now and then"}, quietLogger())
	assert.ErrorContains(t, err, "invalid RECURRING_CRON")

	_, err = New(&fakeJobs{}, &config.Config{AlertCron: "61 * * * *"}, quietLogger())
	assert.ErrorContains(t, err, "invalid ALERT_CRON")
}

func TestRunsUseClock(t *testing.T) {
	jobs := &fakeJobs{err: errors.New("ledger 3: boom")}
	s, err := New(jobs, &config.Config{}, quietLogger())
	require.NoError(t, err)
	fixed := time.Date(2025, 1, 15, 7, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.runRecurring()
	s.runAlerts()
	assert.Equal(t, []time.Time{fixed}, jobs.postedAt)
	assert.Equal(t, []time.Time{fixed}, jobs.alertsAt)
}

func TestStartStop(t *testing.T) {
	s, err := New(&fakeJobs{}, &config.Config{RecurringCron: "@daily"}, quietLogger())
	require.NoError(t, err)
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	assert.NoError(t, ctx.Err())
}
