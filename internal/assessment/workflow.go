// Package assessment implements the multi-step career profiling flow and
// its two-call submission.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/pathwise/internal/career"
	"github.com/kalambet/pathwise/internal/metrics"
)

var (
	// ErrInvalidStep is returned when an operation is not allowed at the current step.
	ErrInvalidStep = errors.New("operation not allowed at this step")
	// ErrSubmitting is returned while a submission is already in flight.
	ErrSubmitting = errors.New("submission in progress")
	// ErrNoResult wraps the cause of a failed submission. Nothing is persisted.
	ErrNoResult = errors.New("no result")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("workflow closed")
	// ErrInvalidCategory is returned by Toggle for an unknown category.
	ErrInvalidCategory = errors.New("unknown category")
	// ErrInvalidValue is returned for blank toggles and unknown enum values.
	ErrInvalidValue = errors.New("invalid value")
)

// Advisor produces the two submission results. Implemented by remote.Client.
type Advisor interface {
	Recommend(ctx context.Context, p career.Profile) ([]career.CareerRecommendation, error)
	SkillGaps(ctx context.Context, p career.Profile) ([]career.SkillGap, error)
}

// Committer persists a completed assessment together with its counters.
// Implemented by stats.Aggregator.
type Committer interface {
	CommitAssessment(latest career.LatestAssessment) (career.UserStats, error)
}

// Workflow drives one assessment. It is owned by a single caller; Close may
// be called from another goroutine while Submit is in flight.
type Workflow struct {
	advisor Advisor
	stats   Committer
	logger  *zap.Logger
	now     func() time.Time

	mu         sync.Mutex
	step       Step
	profile    career.Profile
	recs       []career.CareerRecommendation
	gaps       []career.SkillGap
	submitting bool
	closed     bool
	// gen changes on Restart and Close so a late submission can tell it
	// belongs to a run that no longer exists.
	gen uint64
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithClock overrides the completion timestamp source.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

// New creates a Workflow at StepInterests with an empty profile.
func New(advisor Advisor, stats Committer, logger *zap.Logger, opts ...Option) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Workflow{
		advisor: advisor,
		stats:   stats,
		logger:  logger.Named("assessment"),
		now:     time.Now,
		profile: career.NewProfile(),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Step returns the current step.
func (w *Workflow) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Loading reports whether a submission is in flight.
func (w *Workflow) Loading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitting
}

// Profile returns a copy of the profile collected so far.
func (w *Workflow) Profile() career.Profile {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.profile.Clone()
}

// Results returns the displayed recommendations and skill gaps. Both are
// empty until a submission succeeds.
func (w *Workflow) Results() ([]career.CareerRecommendation, []career.SkillGap) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]career.CareerRecommendation(nil), w.recs...), append([]career.SkillGap(nil), w.gaps...)
}

// Toggle flips value's membership in the named set. Calling it twice with
// the same arguments leaves the set as it was.
func (w *Workflow) Toggle(category Category, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("%w: empty %s entry", ErrInvalidValue, category)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}

	var set *[]string
	switch category {
	case CategoryInterests:
		set = &w.profile.Interests
	case CategorySkills:
		set = &w.profile.Skills
	case CategoryIndustries:
		set = &w.profile.PreferredIndustries
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	*set = toggle(*set, value)
	return nil
}

func toggle(set []string, value string) []string {
	for i, v := range set {
		if v == value {
			return append(set[:i:i], set[i+1:]...)
		}
	}
	return append(set, value)
}

// SetExperience sets the experience level. The empty level unsets it.
func (w *Workflow) SetExperience(level career.ExperienceLevel) error {
	if !level.Valid() {
		return fmt.Errorf("%w: experience level %q", ErrInvalidValue, level)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	w.profile.ExperienceLevel = level
	return nil
}

// SetEducation sets the education level. The empty level unsets it.
func (w *Workflow) SetEducation(edu career.Education) error {
	if !edu.Valid() {
		return fmt.Errorf("%w: education %q", ErrInvalidValue, edu)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	w.profile.Education = edu
	return nil
}

func (w *Workflow) editableLocked() error {
	if w.closed {
		return ErrClosed
	}
	if w.step == StepResults {
		return fmt.Errorf("%w: %s is read-only", ErrInvalidStep, w.step)
	}
	return nil
}

// Advance moves one step forward. From StepIndustries it submits.
func (w *Workflow) Advance(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	switch w.step {
	case StepIndustries:
		w.mu.Unlock()
		return w.Submit(ctx)
	case StepResults:
		w.mu.Unlock()
		return fmt.Errorf("%w: advance from %s", ErrInvalidStep, StepResults)
	}
	w.step = transitions[w.step].next
	w.mu.Unlock()
	return nil
}

// Retreat moves one step back. It is a no-op at StepInterests.
func (w *Workflow) Retreat() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if w.submitting {
		return ErrSubmitting
	}
	if w.step == StepResults {
		return fmt.Errorf("%w: retreat from %s", ErrInvalidStep, StepResults)
	}
	w.step = transitions[w.step].prev
	return nil
}

// Submit sends one snapshot of the profile to the recommender and the
// skill-gap analyzer concurrently. Only when both succeed is the result
// committed and the workflow moved to StepResults. Any failure leaves the
// step, the store and the counters untouched and returns ErrNoResult
// wrapping the cause.
func (w *Workflow) Submit(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if w.step != StepIndustries {
		step := w.step
		w.mu.Unlock()
		return fmt.Errorf("%w: submit from %s", ErrInvalidStep, step)
	}
	if w.submitting {
		w.mu.Unlock()
		return ErrSubmitting
	}
	w.submitting = true
	gen := w.gen
	snapshot := w.profile.Clone()
	w.mu.Unlock()

	var (
		recs []career.CareerRecommendation
		gaps []career.SkillGap
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := w.advisor.Recommend(gCtx, snapshot)
		if err != nil {
			return fmt.Errorf("career recommendations: %w", err)
		}
		recs = r
		return nil
	})
	g.Go(func() error {
		sg, err := w.advisor.SkillGaps(gCtx, snapshot)
		if err != nil {
			return fmt.Errorf("skill gap analysis: %w", err)
		}
		gaps = sg
		return nil
	})
	err := g.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.gen != gen {
		metrics.AssessmentSubmissions.WithLabelValues("dropped").Inc()
		w.logger.Info("dropping submission result for a closed or restarted run", zap.Bool("failed", err != nil))
		if w.closed {
			return ErrClosed
		}
		return fmt.Errorf("%w: workflow restarted during submission", ErrNoResult)
	}
	w.submitting = false

	if err != nil {
		metrics.AssessmentSubmissions.WithLabelValues("failed").Inc()
		w.logger.Warn("assessment submission failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrNoResult, err)
	}

	latest := career.LatestAssessment{
		Profile:         snapshot,
		Recommendations: recs,
		SkillGaps:       gaps,
		CompletedAt:     w.now().UTC(),
	}
	if _, err := w.stats.CommitAssessment(latest); err != nil {
		metrics.AssessmentSubmissions.WithLabelValues("failed").Inc()
		w.logger.Error("committing assessment", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrNoResult, err)
	}

	metrics.AssessmentSubmissions.WithLabelValues("committed").Inc()
	w.logger.Info("assessment committed",
		zap.Int("recommendations", len(recs)),
		zap.Int("skill_gaps", len(gaps)),
	)
	w.recs, w.gaps = recs, gaps
	w.step = StepResults
	return nil
}

// Restart clears the profile and displayed results and returns to
// StepInterests. Persisted records are not touched. A submission still in
// flight is abandoned.
func (w *Workflow) Restart() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.gen++
	w.step = StepInterests
	w.profile = career.NewProfile()
	w.recs, w.gaps = nil, nil
	w.submitting = false
	return nil
}

// Close tears the workflow down. A submission that completes afterwards
// writes nothing. Close is idempotent.
func (w *Workflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		w.gen++
	}
}
