package jobs

import (
	"context"
	"errors"
	"testing"

	"smartkheti_backend/internal/config"
	"smartkheti_backend/internal/news"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type MockOTPPurger struct {
	mock.Mock
}

func (m *MockOTPPurger) PurgeExpiredOTPs(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockNewsRefresher struct {
	mock.Mock
}

func (m *MockNewsRefresher) Refresh(ctx context.Context) (*news.Feed, error) {
	args := m.Called(ctx)
	feed, _ := args.Get(0).(*news.Feed)
	return feed, args.Error(1)
}

func TestOTPPurgeJob_Run(t *testing.T) {
	purger := new(MockOTPPurger)
	purger.On("PurgeExpiredOTPs", mock.Anything).Return(int64(3), nil).Once()
	purger.On("PurgeExpiredOTPs", mock.Anything).Return(int64(0), errors.New("db down")).Once()

	job := NewOTPPurgeJob(purger, &config.Config{OTPPurgeJobSchedule: "@every 10m"}, zap.NewNop())
	assert.Equal(t, "otp-purge", job.Name())
	assert.Equal(t, "@every 10m", job.Spec())

	require.NoError(t, job.Run(context.Background()))
	assert.EqualError(t, job.Run(context.Background()), "db down")
	purger.AssertExpectations(t)
}

func TestNewsRefreshJob(t *testing.T) {
	t.Run("disabled without api key", func(t *testing.T) {
		job := NewNewsRefreshJob(new(MockNewsRefresher), &config.Config{NewsRefreshJobSchedule: "@every 30m"}, zap.NewNop())
		assert.Empty(t, job.Spec())
	})

	t.Run("empty feed is a failed run", func(t *testing.T) {
		refresher := new(MockNewsRefresher)
		refresher.On("Refresh", mock.Anything).Return(&news.Feed{Status: news.StatusOK, Total: 4}, nil).Once()
		refresher.On("Refresh", mock.Anything).Return(&news.Feed{Status: news.StatusError, Message: "No Nepal news found. Please try again later."}, nil).Once()

		job := NewNewsRefreshJob(refresher, &config.Config{NewsAPIKey: "k", NewsRefreshJobSchedule: "@every 30m"}, zap.NewNop())
		assert.Equal(t, "@every 30m", job.Spec())
		require.NoError(t, job.Run(context.Background()))
		assert.ErrorContains(t, job.Run(context.Background()), "No Nepal news found")
		refresher.AssertExpectations(t)
	})
}

func TestScheduler_RunJobLogsFailure(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	purger := new(MockOTPPurger)
	purger.On("PurgeExpiredOTPs", mock.Anything).Return(int64(0), errors.New("db down"))

	job := NewOTPPurgeJob(purger, &config.Config{OTPPurgeJobSchedule: "@every 10m"}, zap.NewNop())
	s := NewScheduler(zap.New(core), job)
	s.runJob(job)

	failed := logs.FilterMessage("Job run failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "otp-purge", failed[0].ContextMap()["job"])
}

func TestScheduler_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	purger := new(MockOTPPurger)
	disabled := NewNewsRefreshJob(new(MockNewsRefresher), &config.Config{}, zap.NewNop())
	job := NewOTPPurgeJob(purger, &config.Config{OTPPurgeJobSchedule: "0 3 * * *"}, zap.NewNop())

	s := NewScheduler(zap.NewNop(), job, disabled)
	require.NoError(t, s.SetupAndStart())
	assert.Len(t, s.cron.Entries(), 1)
	s.Stop()
}

func TestScheduler_InvalidSpec(t *testing.T) {
	job := NewOTPPurgeJob(new(MockOTPPurger), &config.Config{OTPPurgeJobSchedule: "not a schedule"}, zap.NewNop())
	s := NewScheduler(zap.NewNop(), job)
	assert.ErrorContains(t, s.SetupAndStart(), "scheduling otp-purge")
}
