package personality

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kalambet/pathwise/internal/career"
)

type stubScorer struct {
	result career.PersonalityResult
	err    error
	calls  int
	got    map[int]string
}

func (s *stubScorer) ScorePersonality(_ context.Context, answers map[int]string) (career.PersonalityResult, error) {
	s.calls++
	s.got = answers
	return s.result, s.err
}

func answerAll(t *testing.T, w *Workflow, letters string) {
	t.Helper()
	ctx := context.Background()
	for i, l := range letters {
		done, err := w.Answer(ctx, string(l))
		require.NoError(t, err)
		assert.Equal(t, i == len(letters)-1, done, "answer %d", i)
	}
}

func TestWorkflow_RemoteAgrees(t *testing.T) {
	remote := &stubScorer{result: Score(seq("aaabbcdaab"))}
	w := NewWorkflow(remote, zaptest.NewLogger(t))

	answerAll(t, w, "aaabbcdaab")

	out, ok := w.Outcome()
	require.True(t, ok)
	assert.Equal(t, SourceRemote, out.Source)
	assert.False(t, out.Mismatch)
	assert.Equal(t, career.Red, out.Result.DominantColor)
	assert.Equal(t, 1, remote.calls)
	assert.Len(t, remote.got, 10)
	assert.False(t, w.Loading())
}

func TestWorkflow_RemoteFailureFallsBackToLocal(t *testing.T) {
	remote := &stubScorer{err: errors.New("connection refused")}
	w := NewWorkflow(remote, zaptest.NewLogger(t))

	answerAll(t, w, "dddddccccc")

	out, ok := w.Outcome()
	require.True(t, ok)
	assert.Equal(t, SourceLocal, out.Source)
	assert.Equal(t, Score(seq("dddddccccc")), out.Result)
}

func TestWorkflow_NilScorerIsLocal(t *testing.T) {
	w := NewWorkflow(nil, nil)
	answerAll(t, w, "bbbbbbbbbb")

	out, ok := w.Outcome()
	require.True(t, ok)
	assert.Equal(t, SourceLocal, out.Source)
	assert.Equal(t, career.Yellow, out.Result.DominantColor)
}

func TestWorkflow_MismatchAdoptsRemote(t *testing.T) {
	divergent := career.PersonalityResult{DominantColor: career.Blue, BlueScore: 10}
	w := NewWorkflow(&stubScorer{result: divergent}, zaptest.NewLogger(t))

	answerAll(t, w, "aaaaaaaaaa")

	out, ok := w.Outcome()
	require.True(t, ok)
	assert.True(t, out.Mismatch)
	assert.Equal(t, SourceRemote, out.Source)
	assert.Equal(t, divergent, out.Result)
}

func TestWorkflow_InvalidAnswer(t *testing.T) {
	w := NewWorkflow(nil, nil)

	_, err := w.Answer(context.Background(), "e")
	require.ErrorIs(t, err, ErrInvalidAnswer)
	assert.Equal(t, 0, w.Current())
	assert.Empty(t, w.Answers())
}

func TestWorkflow_AnswerAfterComplete(t *testing.T) {
	w := NewWorkflow(nil, nil)
	answerAll(t, w, "abcdabcdab")

	done, err := w.Answer(context.Background(), "a")
	assert.True(t, done)
	require.ErrorIs(t, err, ErrComplete)

	_, ok := w.Question()
	assert.False(t, ok)
}

func TestWorkflow_QuestionProgression(t *testing.T) {
	w := NewWorkflow(nil, nil)
	ctx := context.Background()

	q, ok := w.Question()
	require.True(t, ok)
	assert.Equal(t, Questions[0].Text, q.Text)

	_, err := w.Answer(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 1, w.Current())
	q, _ = w.Question()
	assert.Equal(t, Questions[1].Text, q.Text)
	assert.Equal(t, map[int]string{0: "c"}, w.Answers())
}

func TestWorkflow_Restart(t *testing.T) {
	w := NewWorkflow(nil, nil)
	answerAll(t, w, "aaabbcdaab")

	w.Restart()

	assert.Equal(t, 0, w.Current())
	assert.Empty(t, w.Answers())
	_, ok := w.Outcome()
	assert.False(t, ok)

	answerAll(t, w, "dddddddddd")
	out, _ := w.Outcome()
	assert.Equal(t, career.Blue, out.Result.DominantColor)
}

func TestWorkflow_AnswersIsCopy(t *testing.T) {
	w := NewWorkflow(nil, nil)
	_, err := w.Answer(context.Background(), "a")
	require.NoError(t, err)

	got := w.Answers()
	got[0] = "d"
	assert.Equal(t, "a", w.Answers()[0])
}
