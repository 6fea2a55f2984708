package forecast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kalambet/pathwise/internal/career"
)

type countingFetcher struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
}

func (f *countingFetcher) JobForecasts(_ context.Context, category string) ([]career.JobForecast, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[category]++
	if f.err != nil {
		return nil, f.err
	}
	return []career.JobForecast{{JobTitle: category + " lead", GrowthRate: 12.5}}, nil
}

func (f *countingFetcher) count(category string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[category]
}

func TestForecasts_CachesPerCategory(t *testing.T) {
	f := &countingFetcher{}
	s := New(f, 8, time.Hour, zaptest.NewLogger(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		fc, err := s.Forecasts(ctx, "technology")
		require.NoError(t, err)
		require.Len(t, fc, 1)
		assert.Equal(t, "technology lead", fc[0].JobTitle)
	}
	assert.Equal(t, 1, f.count("technology"))

	_, err := s.Forecasts(ctx, "finance")
	require.NoError(t, err)
	assert.Equal(t, 1, f.count("finance"))
}

func TestForecasts_DefaultCategory(t *testing.T) {
	f := &countingFetcher{}
	s := New(f, 8, time.Hour, nil)

	fc, err := s.Forecasts(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "all lead", fc[0].JobTitle)
	assert.Equal(t, 1, f.count("all"))
}

func TestForecasts_UnknownCategory(t *testing.T) {
	f := &countingFetcher{}
	s := New(f, 8, time.Hour, nil)

	_, err := s.Forecasts(context.Background(), "astrology")
	require.ErrorIs(t, err, ErrUnknownCategory)
	assert.Equal(t, 0, f.count("astrology"))
}

func TestForecasts_FailureNotCached(t *testing.T) {
	f := &countingFetcher{err: errors.New("service down")}
	s := New(f, 8, time.Hour, zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := s.Forecasts(ctx, "healthcare")
	require.Error(t, err)

	f.mu.Lock()
	f.err = nil
	f.mu.Unlock()

	fc, err := s.Forecasts(ctx, "healthcare")
	require.NoError(t, err)
	assert.Len(t, fc, 1)
	assert.Equal(t, 2, f.count("healthcare"))
}

func TestForecasts_Expiry(t *testing.T) {
	f := &countingFetcher{}
	s := New(f, 8, 20*time.Millisecond, nil)
	ctx := context.Background()

	_, err := s.Forecasts(ctx, "education")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, err := s.Forecasts(ctx, "education")
		return err == nil && f.count("education") == 2
	}, time.Second, 10*time.Millisecond)
}

func TestForecasts_CallerMutationDoesNotReachCache(t *testing.T) {
	f := &countingFetcher{}
	s := New(f, 8, time.Hour, nil)
	ctx := context.Background()

	first, err := s.Forecasts(ctx, "healthcare")
	require.NoError(t, err)
	first[0].JobTitle = "changed on miss"

	second, err := s.Forecasts(ctx, "healthcare")
	require.NoError(t, err)
	assert.Equal(t, "healthcare lead", second[0].JobTitle)
	second[0].JobTitle = "changed on hit"

	third, err := s.Forecasts(ctx, "healthcare")
	require.NoError(t, err)
	assert.Equal(t, "healthcare lead", third[0].JobTitle)
	assert.Equal(t, 1, f.count("healthcare"))
}

func TestValid(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, Valid(c.ID), c.ID)
	}
	assert.False(t, Valid("Technology"))
}
