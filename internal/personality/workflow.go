package personality

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kalambet/pathwise/internal/career"
	"github.com/kalambet/pathwise/internal/metrics"
)

var (
	// ErrInvalidAnswer is returned for letters outside a–d.
	ErrInvalidAnswer = errors.New("answer must be one of a, b, c, d")
	// ErrComplete is returned when answering after the last question.
	ErrComplete = errors.New("assessment already complete")
)

// RemoteScorer scores a full answer set remotely. Implemented by remote.Client.
type RemoteScorer interface {
	ScorePersonality(ctx context.Context, answers map[int]string) (career.PersonalityResult, error)
}

// Source records which scorer produced an outcome.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// Outcome is the adopted result plus where it came from. Mismatch is set
// when a remote result disagrees with local scoring of the same answers;
// the remote result is still adopted.
type Outcome struct {
	Result   career.PersonalityResult
	Source   Source
	Mismatch bool
}

// Workflow walks the fixed question list, one answer per question, and
// scores on the last answer. Not safe for concurrent use.
type Workflow struct {
	scorer RemoteScorer
	logger *zap.Logger

	current int
	answers map[int]string
	outcome *Outcome
	loading bool
}

// NewWorkflow creates a Workflow. A nil scorer always scores locally.
func NewWorkflow(scorer RemoteScorer, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{
		scorer:  scorer,
		logger:  logger.Named("personality"),
		answers: make(map[int]string, len(Questions)),
	}
}

// Current returns the index of the question awaiting an answer.
func (w *Workflow) Current() int { return w.current }

// Question returns the question awaiting an answer. ok is false once complete.
func (w *Workflow) Question() (q Question, ok bool) {
	if w.outcome != nil || w.current >= len(Questions) {
		return Question{}, false
	}
	return Questions[w.current], true
}

// Loading reports whether a submission is in flight.
func (w *Workflow) Loading() bool { return w.loading }

// Outcome returns the adopted result once the last question is answered.
func (w *Workflow) Outcome() (Outcome, bool) {
	if w.outcome == nil {
		return Outcome{}, false
	}
	return *w.outcome, true
}

// Answers returns a copy of the recorded answers.
func (w *Workflow) Answers() map[int]string {
	cp := make(map[int]string, len(w.answers))
	for k, v := range w.answers {
		cp[k] = v
	}
	return cp
}

// Answer records letter for the current question and advances. The answer
// to the final question triggers scoring; done reports that.
func (w *Workflow) Answer(ctx context.Context, letter string) (done bool, err error) {
	if w.outcome != nil {
		return true, ErrComplete
	}
	if _, ok := letterColor[letter]; !ok {
		return false, fmt.Errorf("%w: got %q", ErrInvalidAnswer, letter)
	}

	w.answers[w.current] = letter
	if w.current < len(Questions)-1 {
		w.current++
		return false, nil
	}

	w.submit(ctx)
	return true, nil
}

// submit scores the full answer set remotely, falling back to Score on any
// failure. It never fails.
func (w *Workflow) submit(ctx context.Context) {
	w.loading = true
	defer func() { w.loading = false }()

	answers := w.Answers()
	local := Score(answers)

	if w.scorer == nil {
		w.adopt(Outcome{Result: local, Source: SourceLocal})
		return
	}

	remote, err := w.scorer.ScorePersonality(ctx, answers)
	if err != nil {
		w.logger.Warn("remote scoring failed, using local score", zap.Error(err))
		w.adopt(Outcome{Result: local, Source: SourceLocal})
		return
	}

	out := Outcome{Result: remote, Source: SourceRemote}
	if remote != local {
		out.Mismatch = true
		metrics.PersonalityMismatches.Inc()
		w.logger.Warn("remote personality result differs from local scoring",
			zap.String("remote_dominant", string(remote.DominantColor)),
			zap.String("local_dominant", string(local.DominantColor)),
		)
	}
	w.adopt(out)
}

func (w *Workflow) adopt(out Outcome) {
	metrics.PersonalityScored.WithLabelValues(string(out.Source)).Inc()
	w.outcome = &out
}

// Restart clears all answers and the result and returns to the first question.
func (w *Workflow) Restart() {
	w.current = 0
	w.answers = make(map[int]string, len(Questions))
	w.outcome = nil
	w.loading = false
}
