package stats

import (
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kalambet/pathwise/internal/career"
	"github.com/kalambet/pathwise/internal/storage"
)

// --- Mock store ---

type mockStore struct {
	mu      sync.Mutex
	data    map[string]string
	putErr  error
	failKey string // batches containing this key fail as a whole
	getErr  error
	putKeys []string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) GetRecord(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

func (m *mockStore) PutRecords(records map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	if _, ok := records[m.failKey]; ok {
		return errors.New("write rejected: " + m.failKey)
	}
	for _, k := range slices.Sorted(maps.Keys(records)) {
		m.data[k] = records[k]
		m.putKeys = append(m.putKeys, k)
	}
	return nil
}

func newSQLiteAggregator(t *testing.T) (*Aggregator, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(store, zaptest.NewLogger(t)), store
}

// --- Tests ---

func TestRead_FreshStateIsZero(t *testing.T) {
	agg, _ := newSQLiteAggregator(t)
	assert.Equal(t, career.UserStats{}, agg.Read())
}

func TestRecordAssessment_FreshState(t *testing.T) {
	agg, _ := newSQLiteAggregator(t)

	_, err := agg.RecordAssessment(3, 2)
	require.NoError(t, err)

	assert.Equal(t, career.UserStats{
		AssessmentsTaken: 1,
		SkillsAnalyzed:   3,
		CareerMatches:    2,
		ChatSessions:     0,
	}, agg.Read())
}

func TestRecordAssessment_GaugesNotCumulative(t *testing.T) {
	agg, _ := newSQLiteAggregator(t)

	_, err := agg.RecordAssessment(5, 4)
	require.NoError(t, err)
	_, err = agg.RecordChatSessionStart()
	require.NoError(t, err)
	s, err := agg.RecordAssessment(1, 2)
	require.NoError(t, err)

	assert.Equal(t, career.UserStats{AssessmentsTaken: 2, SkillsAnalyzed: 1, CareerMatches: 2, ChatSessions: 1}, s)
	assert.Equal(t, s, agg.Read())
}

func TestRecordChatSessionStart_LeavesOtherFields(t *testing.T) {
	store := newMockStore()
	store.data[storage.KeyUserStats] = `{"assessmentsTaken":4,"skillsAnalyzed":6,"careerMatches":3}`
	agg := New(store, zaptest.NewLogger(t))

	s, err := agg.RecordChatSessionStart()
	require.NoError(t, err)
	assert.Equal(t, career.UserStats{AssessmentsTaken: 4, SkillsAnalyzed: 6, CareerMatches: 3, ChatSessions: 1}, s)
}

func TestRead_CorruptRecordIsAbsent(t *testing.T) {
	store := newMockStore()
	store.data[storage.KeyUserStats] = `{not json`
	agg := New(store, zaptest.NewLogger(t))

	assert.Equal(t, career.UserStats{}, agg.Read())

	s, err := agg.RecordChatSessionStart()
	require.NoError(t, err)
	assert.Equal(t, 1, s.ChatSessions)
}

func TestRead_NegativeAndNonNumericFieldsDefault(t *testing.T) {
	store := newMockStore()
	store.data[storage.KeyUserStats] = `{"assessmentsTaken":-2,"skillsAnalyzed":"many","careerMatches":null,"chatSessions":5}`
	agg := New(store, nil)

	assert.Equal(t, career.UserStats{ChatSessions: 5}, agg.Read())
}

func TestRead_StoreErrorNeverFails(t *testing.T) {
	store := newMockStore()
	store.getErr = errors.New("disk on fire")
	agg := New(store, zaptest.NewLogger(t))

	assert.Equal(t, career.UserStats{}, agg.Read())
}

func TestWriteBack_PreservesUnknownFields(t *testing.T) {
	store := newMockStore()
	store.data[storage.KeyUserStats] = `{"chatSessions":1,"streakDays":9}`
	agg := New(store, nil)

	_, err := agg.RecordAssessment(2, 2)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal([]byte(store.data[storage.KeyUserStats]), &fields))
	assert.EqualValues(t, 9, fields["streakDays"])
	assert.EqualValues(t, 1, fields["chatSessions"])
	assert.EqualValues(t, 1, fields["assessmentsTaken"])
}

func TestRecord_WriteFailureReturnsError(t *testing.T) {
	store := newMockStore()
	store.putErr = errors.New("read-only")
	agg := New(store, nil)

	_, err := agg.RecordAssessment(1, 1)
	require.Error(t, err)
	_, err = agg.RecordChatSessionStart()
	require.Error(t, err)
	assert.Empty(t, store.data)
}

func TestCounters_ConcurrentMutationsAreSerialized(t *testing.T) {
	agg, _ := newSQLiteAggregator(t)

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := agg.RecordChatSessionStart()
			assert.NoError(t, err)
		}()
		go func(i int) {
			defer wg.Done()
			_, err := agg.RecordAssessment(i, i)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	s := agg.Read()
	assert.Equal(t, n, s.AssessmentsTaken)
	assert.Equal(t, n, s.ChatSessions)
}

func TestCounters_Monotonic(t *testing.T) {
	agg, _ := newSQLiteAggregator(t)

	prev := agg.Read()
	ops := []func(){
		func() { agg.RecordAssessment(4, 1) },
		func() { agg.RecordChatSessionStart() },
		func() { agg.RecordAssessment(0, 0) },
		func() { agg.RecordChatSessionStart() },
		func() { agg.Read() },
	}
	for _, op := range ops {
		op()
		cur := agg.Read()
		assert.GreaterOrEqual(t, cur.AssessmentsTaken, prev.AssessmentsTaken)
		assert.GreaterOrEqual(t, cur.ChatSessions, prev.ChatSessions)
		prev = cur
	}
}

func TestLatest_Absent(t *testing.T) {
	agg, _ := newSQLiteAggregator(t)
	_, ok := agg.Latest()
	assert.False(t, ok)
}

func TestLatest_Malformed(t *testing.T) {
	store := newMockStore()
	store.data[storage.KeyLatestAssessment] = `[1,2,3]`
	agg := New(store, zaptest.NewLogger(t))

	_, ok := agg.Latest()
	assert.False(t, ok)
}

func TestCommitAssessment_ReplacesAndCounts(t *testing.T) {
	agg, store := newSQLiteAggregator(t)
	completed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	first := career.LatestAssessment{
		Profile:         career.Profile{Skills: []string{"SQL"}},
		Recommendations: []career.CareerRecommendation{{JobTitle: "Analyst"}},
		SkillGaps:       []career.SkillGap{{Skill: "Python", RequiredLevel: 8}, {Skill: "Stats", RequiredLevel: 6}},
		CompletedAt:     completed,
	}
	s, err := agg.CommitAssessment(first)
	require.NoError(t, err)
	assert.Equal(t, career.UserStats{AssessmentsTaken: 1, SkillsAnalyzed: 2, CareerMatches: 1}, s)

	second := career.LatestAssessment{
		Profile:     career.Profile{Interests: []string{"Design"}},
		CompletedAt: completed.Add(time.Hour),
	}
	s, err = agg.CommitAssessment(second)
	require.NoError(t, err)
	assert.Equal(t, career.UserStats{AssessmentsTaken: 2}, s)

	got, ok := agg.Latest()
	require.True(t, ok)
	assert.Equal(t, []string{"Design"}, got.Profile.Interests)
	assert.Empty(t, got.SkillGaps)
	assert.True(t, got.CompletedAt.Equal(second.CompletedAt))

	raw, err := store.GetRecord(storage.KeyLatestAssessment)
	require.NoError(t, err)
	assert.Contains(t, raw, `"formData"`)
}

func TestCommitAssessment_WriteFailureLeavesStatsUntouched(t *testing.T) {
	store := newMockStore()
	store.putErr = errors.New("quota exceeded")
	agg := New(store, nil)

	_, err := agg.CommitAssessment(career.LatestAssessment{CompletedAt: time.Now()})
	require.Error(t, err)
	assert.Empty(t, store.putKeys)
	assert.Equal(t, career.UserStats{}, agg.Read())
}

func TestCommitAssessment_StatsWriteFailureKeepsPreviousAssessment(t *testing.T) {
	store := newMockStore()
	agg := New(store, nil)

	first := career.LatestAssessment{
		SkillGaps:   []career.SkillGap{{Skill: "SQL"}},
		CompletedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	before, err := agg.CommitAssessment(first)
	require.NoError(t, err)

	store.failKey = storage.KeyUserStats
	_, err = agg.CommitAssessment(career.LatestAssessment{CompletedAt: time.Now()})
	require.Error(t, err)

	got, ok := agg.Latest()
	require.True(t, ok)
	assert.True(t, got.CompletedAt.Equal(first.CompletedAt))
	assert.Len(t, got.SkillGaps, 1)
	assert.Equal(t, before, agg.Read())
}

func TestCommitAssessment_SQLiteWritesBothRecords(t *testing.T) {
	agg, store := newSQLiteAggregator(t)

	_, err := agg.CommitAssessment(career.LatestAssessment{CompletedAt: time.Now()})
	require.NoError(t, err)

	recs, err := store.ListRecords()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.True(t, recs[0].UpdatedAt.Equal(recs[1].UpdatedAt), "both records belong to one batch")
}
