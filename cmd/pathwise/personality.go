package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/pathwise/internal/career"
	"github.com/kalambet/pathwise/internal/personality"
)

func newPersonalityCmd() *cobra.Command {
	var answers string

	cmd := &cobra.Command{
		Use:   "personality",
		Short: "Take the color personality assessment",
		Long: `Answer ten questions to find your dominant color (RED, YELLOW, GREEN or
BLUE) and the careers that suit it. Results are scored by the backend and
scored locally when the backend is unavailable.

Examples:
  pathwise personality
  pathwise personality --answers aaabbcdaab`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			wf := personality.NewWorkflow(a.remote, a.logger)

			if answers != "" {
				if err := answerAll(cmd, wf, answers); err != nil {
					return err
				}
			} else {
				p, err := newPrompter(cmd, a.cfg.Storage.DataDir)
				if err != nil {
					return err
				}
				defer p.Close()
				if done, err := askQuestions(cmd, wf, p); err != nil || !done {
					return err
				}
			}

			out, ok := wf.Outcome()
			if !ok {
				return fmt.Errorf("no personality result")
			}
			renderPersonality(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&answers, "answers", "", "all ten answers as letters a-d, e.g. aaabbcdaab")
	return cmd
}

// answerAll feeds a full answer sequence without prompting.
func answerAll(cmd *cobra.Command, wf *personality.Workflow, raw string) error {
	letters := strings.Fields(strings.NewReplacer(",", " ").Replace(strings.ToLower(raw)))
	seq := strings.Join(letters, "")
	if len(seq) != len(personality.Questions) {
		return fmt.Errorf("--answers needs %d letters, got %d", len(personality.Questions), len(seq))
	}
	for i, r := range seq {
		if _, err := wf.Answer(cmd.Context(), string(r)); err != nil {
			return fmt.Errorf("answer %d: %w", i+1, err)
		}
	}
	return nil
}

func askQuestions(cmd *cobra.Command, wf *personality.Workflow, p prompter) (bool, error) {
	out := cmd.OutOrStdout()
	total := len(personality.Questions)

	for {
		q, ok := wf.Question()
		if !ok {
			return true, nil
		}
		n := wf.Current() + 1
		printHeading(out, "Question %d of %d", n, total)
		fmt.Fprintf(out, "%s\n", q.Text)
		for _, o := range q.Options {
			fmt.Fprintf(out, "  %s) %s\n", bold(o.Letter), o.Text)
		}

		line, err := p.Prompt("Your answer (a-d): ")
		if errors.Is(err, io.EOF) || isQuit(line) {
			printWarning("Personality assessment abandoned")
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if line == "" {
			continue
		}
		if n == total {
			printStep("Scoring your answers...")
		}
		if _, err := wf.Answer(cmd.Context(), strings.ToLower(line)); err != nil {
			if errors.Is(err, personality.ErrInvalidAnswer) {
				printWarning("%v", err)
				continue
			}
			return false, err
		}
	}
}

var colorPrinters = map[career.Color]func(a ...interface{}) string{
	career.Red:    red,
	career.Yellow: yellow,
	career.Green:  green,
	career.Blue:   cyan,
}

func renderPersonality(w io.Writer, out personality.Outcome) {
	res := out.Result
	sug := personality.SuggestionFor(res.DominantColor)
	paint := colorPrinters[res.DominantColor]
	if paint == nil {
		paint = cyan
	}

	printHeading(w, "Your dominant color: %s", paint(string(res.DominantColor)))
	fmt.Fprintf(w, "%s\n%s\n\n", bold(sug.Title), sug.Description)

	total := res.Total()
	for _, c := range career.Colors {
		score := res.Tally(c)
		pct := 0
		if total > 0 {
			pct = score * 100 / total
		}
		fmt.Fprintf(w, "  %-7s %s %d\n", c, progressBar(pct, 20), score)
	}

	fmt.Fprintf(w, "\n%s %s\n", bold("Careers:"), strings.Join(sug.Careers, ", "))
	fmt.Fprintf(w, "%s %s\n", bold("Strengths:"), strings.Join(sug.Strengths, ", "))
	fmt.Fprintf(w, "%s %s\n", bold("Tips:"), sug.Tips)

	if out.Source == personality.SourceLocal {
		printWarning("Scored locally; the scoring service was unavailable")
	}
	if out.Mismatch {
		printWarning("The scoring service result differs from local scoring")
	}
}
