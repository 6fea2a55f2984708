package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sync"

	"go.uber.org/zap"

	"github.com/kalambet/pathwise/internal/career"
	"github.com/kalambet/pathwise/internal/storage"
)

// RecordStore defines the storage operations the Aggregator needs.
// Implemented by storage.Store.
type RecordStore interface {
	GetRecord(key string) (string, error)
	// PutRecords writes all entries atomically.
	PutRecords(records map[string]string) error
}

// Aggregator is the single owner of the userStats and latestAssessment
// records. Callers get named merge operations only; each one runs its
// read, transform and write under one lock with no remote call in between.
type Aggregator struct {
	store  RecordStore
	logger *zap.Logger

	mu sync.Mutex
}

// New creates an Aggregator over store. A nil logger discards output.
func New(store RecordStore, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{store: store, logger: logger.Named("stats")}
}

// Read returns the current counters. Absent, unreadable or corrupt data
// reads as all zeros; Read never fails.
func (a *Aggregator) Read() career.UserStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, _ := a.loadStats()
	return s
}

// RecordAssessment counts one completed assessment and replaces the
// latest-assessment gauges with the given counts. chatSessions is untouched.
func (a *Aggregator) RecordAssessment(skillsAnalyzed, careerMatches int) (career.UserStats, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.recordAssessmentLocked(skillsAnalyzed, careerMatches, nil)
}

// RecordChatSessionStart counts one chat session. Callers invoke it once
// per chat workflow lifetime.
func (a *Aggregator) RecordChatSessionStart() (career.UserStats, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, extra := a.loadStats()
	s.ChatSessions++
	if err := a.saveStats(s, extra, nil); err != nil {
		return career.UserStats{}, err
	}
	a.logger.Debug("chat session recorded", zap.Int("chat_sessions", s.ChatSessions))
	return s, nil
}

// Latest returns the stored latest assessment. ok is false when nothing has
// been stored yet or the stored value cannot be decoded.
func (a *Aggregator) Latest() (latest career.LatestAssessment, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	raw, found := a.get(storage.KeyLatestAssessment)
	if !found {
		return career.LatestAssessment{}, false
	}
	if err := json.Unmarshal([]byte(raw), &latest); err != nil {
		a.logger.Warn("malformed latest assessment, treating as absent", zap.Error(err))
		return career.LatestAssessment{}, false
	}
	return latest, true
}

// CommitAssessment replaces the latest assessment with latest and records it
// in the counters (skills analyzed = number of gaps, career matches = number
// of recommendations). Both records are written in one batch: on error
// neither has changed.
func (a *Aggregator) CommitAssessment(latest career.LatestAssessment) (career.UserStats, error) {
	b, err := json.Marshal(latest)
	if err != nil {
		return career.UserStats{}, fmt.Errorf("marshalling latest assessment: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	return a.recordAssessmentLocked(len(latest.SkillGaps), len(latest.Recommendations),
		map[string]string{storage.KeyLatestAssessment: string(b)})
}

// recordAssessmentLocked bumps the assessment counters and writes them
// together with the records in with.
func (a *Aggregator) recordAssessmentLocked(skillsAnalyzed, careerMatches int, with map[string]string) (career.UserStats, error) {
	s, extra := a.loadStats()
	s.AssessmentsTaken++
	s.SkillsAnalyzed = max(skillsAnalyzed, 0)
	s.CareerMatches = max(careerMatches, 0)
	if err := a.saveStats(s, extra, with); err != nil {
		return career.UserStats{}, err
	}
	a.logger.Debug("assessment recorded",
		zap.Int("assessments_taken", s.AssessmentsTaken),
		zap.Int("skills_analyzed", s.SkillsAnalyzed),
		zap.Int("career_matches", s.CareerMatches),
	)
	return s, nil
}

// get returns the raw record, logging anything other than "not found".
func (a *Aggregator) get(key string) (string, bool) {
	raw, err := a.store.GetRecord(key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", false
	}
	if err != nil {
		a.logger.Warn("reading record failed, treating as absent", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return raw, true
}

// loadStats decodes the stats record. Fields this version does not know
// about are returned in extra so a write-back keeps them.
func (a *Aggregator) loadStats() (career.UserStats, map[string]json.RawMessage) {
	var s career.UserStats
	raw, ok := a.get(storage.KeyUserStats)
	if !ok {
		return s, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		a.logger.Warn("malformed user stats, treating as absent", zap.Error(err))
		return career.UserStats{}, nil
	}

	s.AssessmentsTaken = intField(fields, "assessmentsTaken")
	s.SkillsAnalyzed = intField(fields, "skillsAnalyzed")
	s.CareerMatches = intField(fields, "careerMatches")
	s.ChatSessions = intField(fields, "chatSessions")
	for _, k := range []string{"assessmentsTaken", "skillsAnalyzed", "careerMatches", "chatSessions"} {
		delete(fields, k)
	}
	return s, fields
}

func (a *Aggregator) saveStats(s career.UserStats, extra map[string]json.RawMessage, with map[string]string) error {
	out := make(map[string]any, len(extra)+4)
	for k, v := range extra {
		out[k] = v
	}
	out["assessmentsTaken"] = s.AssessmentsTaken
	out["skillsAnalyzed"] = s.SkillsAnalyzed
	out["careerMatches"] = s.CareerMatches
	out["chatSessions"] = s.ChatSessions

	b, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshalling user stats: %w", err)
	}
	records := map[string]string{storage.KeyUserStats: string(b)}
	maps.Copy(records, with)
	if err := a.store.PutRecords(records); err != nil {
		return fmt.Errorf("writing user stats: %w", err)
	}
	return nil
}

// intField reads a non-negative integer counter. Missing, null, negative or
// non-numeric values read as 0.
func intField(fields map[string]json.RawMessage, key string) int {
	raw, ok := fields[key]
	if !ok {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil || f < 0 {
		return 0
	}
	return int(f)
}
