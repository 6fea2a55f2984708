package personality

import "github.com/kalambet/pathwise/internal/career"

// letterColor is the fixed option-letter to axis mapping shared by every question.
var letterColor = map[string]career.Color{
	"a": career.Red,
	"b": career.Yellow,
	"c": career.Green,
	"d": career.Blue,
}

// ColorFor returns the axis an option letter counts toward.
func ColorFor(letter string) (career.Color, bool) {
	c, ok := letterColor[letter]
	return c, ok
}

// Score tallies answers (question index → option letter) per color axis and
// picks the dominant color. Ties go to the first maximal axis in
// RED, YELLOW, GREEN, BLUE order. Letters outside a–d are not counted.
//
// Score is the local fallback for the remote scorer and must agree with it
// answer for answer.
func Score(answers map[int]string) career.PersonalityResult {
	tallies := make(map[career.Color]int, len(career.Colors))
	for _, letter := range answers {
		if c, ok := letterColor[letter]; ok {
			tallies[c]++
		}
	}

	dominant := career.Colors[0]
	for _, c := range career.Colors[1:] {
		if tallies[c] > tallies[dominant] {
			dominant = c
		}
	}

	return career.PersonalityResult{
		DominantColor: dominant,
		RedScore:      tallies[career.Red],
		YellowScore:   tallies[career.Yellow],
		GreenScore:    tallies[career.Green],
		BlueScore:     tallies[career.Blue],
	}
}

// AnswersFromSequence builds an answer map from letters in question order.
func AnswersFromSequence(letters []string) map[int]string {
	answers := make(map[int]string, len(letters))
	for i, l := range letters {
		answers[i] = l
	}
	return answers
}
