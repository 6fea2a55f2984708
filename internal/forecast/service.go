// Package forecast serves job-market forecasts by category, caching each
// category's answer for a while.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/kalambet/pathwise/internal/career"
)

// ErrUnknownCategory is returned for categories outside Categories.
var ErrUnknownCategory = errors.New("unknown forecast category")

// Category identifies a slice of the job market.
type Category struct {
	ID   string
	Name string
}

// Categories lists the supported categories. "all" is the default.
var Categories = []Category{
	{ID: "all", Name: "All Categories"},
	{ID: "technology", Name: "Technology"},
	{ID: "healthcare", Name: "Healthcare"},
	{ID: "finance", Name: "Finance"},
	{ID: "education", Name: "Education"},
}

// DefaultCategory is used when no category is given.
const DefaultCategory = "all"

// Fetcher retrieves forecasts. Implemented by remote.Client.
type Fetcher interface {
	JobForecasts(ctx context.Context, category string) ([]career.JobForecast, error)
}

// Service looks up forecasts through a per-category expiring cache.
// Safe for concurrent use.
type Service struct {
	fetcher Fetcher
	cache   *expirable.LRU[string, []career.JobForecast]
	logger  *zap.Logger
}

// New creates a Service caching up to size categories for ttl each.
func New(fetcher Fetcher, size int, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if size <= 0 {
		size = len(Categories)
	}
	return &Service{
		fetcher: fetcher,
		cache:   expirable.NewLRU[string, []career.JobForecast](size, nil, ttl),
		logger:  logger.Named("forecast"),
	}
}

// Valid reports whether id names a supported category.
func Valid(id string) bool {
	for _, c := range Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Forecasts returns the forecasts for category. Failures are not cached.
// The returned slice is the caller's own copy.
func (s *Service) Forecasts(ctx context.Context, category string) ([]career.JobForecast, error) {
	if category == "" {
		category = DefaultCategory
	}
	if !Valid(category) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	if fc, ok := s.cache.Get(category); ok {
		s.logger.Debug("forecast cache hit", zap.String("category", category))
		return slices.Clone(fc), nil
	}

	fc, err := s.fetcher.JobForecasts(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("fetching %s forecasts: %w", category, err)
	}
	if fc == nil {
		fc = []career.JobForecast{}
	}
	s.cache.Add(category, fc)
	return slices.Clone(fc), nil
}
