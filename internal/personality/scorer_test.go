package personality

import (
	"encoding/json"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/pathwise/internal/career"
)

func seq(s string) map[int]string {
	return AnswersFromSequence(strings.Split(s, ""))
}

func TestScore_DocumentedScenario(t *testing.T) {
	got := Score(seq("aaabbcdaab"))

	want := career.PersonalityResult{
		DominantColor: career.Red,
		RedScore:      5,
		YellowScore:   3,
		GreenScore:    1,
		BlueScore:     1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Score mismatch (-want +got):\n%s", diff)
	}
}

func TestScore_TieBreakOrder(t *testing.T) {
	tests := []struct {
		name    string
		answers string
		want    career.Color
	}{
		{"all tied", "abcd", career.Red},
		{"yellow green tie", "bbccd", career.Yellow},
		{"green blue tie", "ccdda", career.Green},
		{"blue alone", "ddda", career.Blue},
		{"empty", "", career.Red},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(seq(tt.answers)).DominantColor)
		})
	}
}

func TestScore_IgnoresUnknownLetters(t *testing.T) {
	r := Score(map[int]string{0: "a", 1: "z", 2: "", 3: "D"})
	assert.Equal(t, 1, r.Total())
	assert.Equal(t, career.Red, r.DominantColor)
}

func TestScore_SumEqualsAnswered(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	letters := []string{"a", "b", "c", "d"}
	for i := 0; i < 200; i++ {
		answers := make(map[int]string, len(Questions))
		for q := range Questions {
			answers[q] = letters[rng.Intn(len(letters))]
		}
		r := Score(answers)
		require.Equal(t, len(Questions), r.Total())

		// Dominant must hold a maximal tally and be the first such in enum order.
		for _, c := range career.Colors {
			require.LessOrEqual(t, r.Tally(c), r.Tally(r.DominantColor))
			if r.Tally(c) == r.Tally(r.DominantColor) {
				require.Equal(t, c, r.DominantColor)
				break
			}
		}
	}
}

func TestScore_Deterministic(t *testing.T) {
	answers := seq("dcbadcbadc")
	first := Score(answers)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Score(answers))
	}
}

// TestScore_MatchesRemoteFixtures checks the local scorer against responses
// recorded from the remote personality service for the same answer sets.
func TestScore_MatchesRemoteFixtures(t *testing.T) {
	fixtures := []struct {
		answers string
		remote  string
	}{
		{"aaabbcdaab", `{"dominantColor":"RED","redScore":5,"yellowScore":3,"greenScore":1,"blueScore":1}`},
		{"dddddccccc", `{"dominantColor":"GREEN","redScore":0,"yellowScore":0,"greenScore":5,"blueScore":5}`},
		{"bbbbbbbbbb", `{"dominantColor":"YELLOW","redScore":0,"yellowScore":10,"greenScore":0,"blueScore":0}`},
		{"abcdabcdab", `{"dominantColor":"RED","redScore":3,"yellowScore":3,"greenScore":2,"blueScore":2}`},
		{"ddcdbdadcd", `{"dominantColor":"BLUE","redScore":1,"yellowScore":1,"greenScore":2,"blueScore":6}`},
	}
	for _, f := range fixtures {
		t.Run(f.answers, func(t *testing.T) {
			var remote career.PersonalityResult
			require.NoError(t, json.Unmarshal([]byte(f.remote), &remote))
			if diff := cmp.Diff(remote, Score(seq(f.answers))); diff != "" {
				t.Errorf("local and remote disagree (-remote +local):\n%s", diff)
			}
		})
	}
}

func TestQuestions_Shape(t *testing.T) {
	require.Len(t, Questions, 10)
	for i, q := range Questions {
		require.Len(t, q.Options, 4, "question %d", i)
		for j, o := range q.Options {
			assert.Equal(t, string(rune('a'+j)), o.Letter, "question %d option %d", i, j)
			_, ok := ColorFor(o.Letter)
			assert.True(t, ok)
		}
	}
}

func TestSuggestionFor(t *testing.T) {
	for _, c := range career.Colors {
		s := SuggestionFor(c)
		assert.NotEmpty(t, s.Careers, string(c))
	}
	assert.Equal(t, SuggestionFor(career.Blue), SuggestionFor(career.Color("PURPLE")))
}
