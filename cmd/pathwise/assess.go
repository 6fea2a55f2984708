package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/pathwise/internal/assessment"
	"github.com/kalambet/pathwise/internal/career"
	"github.com/kalambet/pathwise/internal/dashboard"
	"github.com/kalambet/pathwise/internal/resume"
)

func newAssessCmd() *cobra.Command {
	var resumePath string

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Run the career assessment",
		Long: `Run the four-step career assessment: interests, skills, experience and
education, preferred industries. On the last step the profile is sent to the
career advisor for recommendations and a skill-gap analysis.

At each step enter option numbers to toggle them, press Enter to continue,
"b" to go back or "q" to quit. On the experience step use e<n> and d<n>
to pick the experience and education levels.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := newPrompter(cmd, a.cfg.Storage.DataDir)
			if err != nil {
				return err
			}
			defer p.Close()

			wf := assessment.New(a.remote, a.stats, a.logger)
			defer wf.Close()

			if resumePath != "" {
				prefillFromResume(wf, resumePath)
			}
			return runAssessment(cmd, wf, p)
		},
	}
	cmd.Flags().StringVar(&resumePath, "resume", "", "PDF resume to prefill matching skills from")
	return cmd
}

func prefillFromResume(wf *assessment.Workflow, path string) {
	text, err := resume.ExtractText(path)
	if err != nil {
		printWarning("Could not read resume: %v", err)
		return
	}
	matched := resume.MatchSkills(text, career.SkillOptions)
	for _, s := range matched {
		if err := wf.Toggle(assessment.CategorySkills, s); err != nil {
			printWarning("Could not prefill %s: %v", s, err)
		}
	}
	if len(matched) == 0 {
		printWarning("No known skills found in %s", path)
		return
	}
	printSuccess("Prefilled %d skills from %s: %s", len(matched), path, strings.Join(matched, ", "))
}

func runAssessment(cmd *cobra.Command, wf *assessment.Workflow, p prompter) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	for wf.Step() != assessment.StepResults {
		step := wf.Step()
		printHeading(out, "Step %d of %d: %s", step.Number(), assessment.InputSteps, stepTitle(step))
		renderStep(out, step, wf.Profile())

		line, err := p.Prompt(stepPrompt(step))
		if errors.Is(err, io.EOF) || isQuit(line) {
			printWarning("Assessment abandoned; nothing was saved")
			return nil
		}
		if err != nil {
			return err
		}

		switch {
		case line == "":
			if step == assessment.StepIndustries {
				printStep("Analyzing your profile...")
			}
			err := wf.Advance(ctx)
			if errors.Is(err, assessment.ErrNoResult) {
				printError("No result: %v", err)
				printStep("Press Enter to try again or q to quit")
				continue
			}
			if err != nil {
				return err
			}
		case strings.EqualFold(line, "b"):
			if err := wf.Retreat(); err != nil {
				return err
			}
		default:
			applySelection(wf, step, line)
		}
	}

	recs, gaps := wf.Results()
	renderResults(out, recs, gaps)
	printSuccess("Assessment saved")
	return nil
}

func stepTitle(s assessment.Step) string {
	switch s {
	case assessment.StepInterests:
		return "What are your interests?"
	case assessment.StepSkills:
		return "What are your skills?"
	case assessment.StepExperienceEducation:
		return "Experience and education"
	case assessment.StepIndustries:
		return "Preferred industries"
	}
	return s.String()
}

func stepPrompt(s assessment.Step) string {
	next := "continue"
	if s == assessment.StepIndustries {
		next = "get results"
	}
	if s == assessment.StepExperienceEducation {
		return fmt.Sprintf("e<n>/d<n> to select, Enter to %s, b back, q quit: ", next)
	}
	return fmt.Sprintf("Numbers to toggle, Enter to %s, b back, q quit: ", next)
}

// stepCatalog returns the category and option list of a set-valued step.
func stepCatalog(s assessment.Step) (assessment.Category, []string, bool) {
	switch s {
	case assessment.StepInterests:
		return assessment.CategoryInterests, career.InterestOptions, true
	case assessment.StepSkills:
		return assessment.CategorySkills, career.SkillOptions, true
	case assessment.StepIndustries:
		return assessment.CategoryIndustries, career.IndustryOptions, true
	}
	return "", nil, false
}

func selectedIn(p career.Profile, c assessment.Category) []string {
	switch c {
	case assessment.CategoryInterests:
		return p.Interests
	case assessment.CategorySkills:
		return p.Skills
	case assessment.CategoryIndustries:
		return p.PreferredIndustries
	}
	return nil
}

func renderStep(w io.Writer, s assessment.Step, p career.Profile) {
	if category, options, ok := stepCatalog(s); ok {
		renderOptions(w, options, selectedIn(p, category))
		return
	}

	fmt.Fprintln(w, "  Experience level:")
	for i, l := range career.ExperienceOptions {
		fmt.Fprintf(w, "    %s e%d. %s\n", mark(l == p.ExperienceLevel), i+1, career.ExperienceLabel(l))
	}
	fmt.Fprintln(w, "  Education:")
	for i, e := range career.EducationOptions {
		fmt.Fprintf(w, "    %s d%d. %s\n", mark(e == p.Education), i+1, career.EducationLabel(e))
	}
}

func renderOptions(w io.Writer, options, selected []string) {
	for i, o := range options {
		fmt.Fprintf(w, "  %s %2d. %s\n", mark(slices.Contains(selected, o)), i+1, o)
	}
}

func mark(on bool) string {
	if on {
		return green("[x]")
	}
	return "[ ]"
}

func selectionTokens(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
}

func applySelection(wf *assessment.Workflow, s assessment.Step, line string) {
	if category, options, ok := stepCatalog(s); ok {
		for _, tok := range selectionTokens(line) {
			n, err := strconv.Atoi(tok)
			if err != nil || n < 1 || n > len(options) {
				printWarning("%q is not an option number", tok)
				continue
			}
			if err := wf.Toggle(category, options[n-1]); err != nil {
				printWarning("%v", err)
			}
		}
		return
	}

	for _, tok := range selectionTokens(line) {
		if err := applyLevel(wf, strings.ToLower(tok)); err != nil {
			printWarning("%v", err)
		}
	}
}

// applyLevel handles one e<n> or d<n> token.
func applyLevel(wf *assessment.Workflow, tok string) error {
	if len(tok) < 2 {
		return fmt.Errorf("%q: use e<n> for experience or d<n> for education", tok)
	}
	n, err := strconv.Atoi(tok[1:])
	if err != nil {
		return fmt.Errorf("%q: use e<n> for experience or d<n> for education", tok)
	}
	switch tok[0] {
	case 'e':
		if n < 1 || n > len(career.ExperienceOptions) {
			return fmt.Errorf("%q is not an experience option", tok)
		}
		return wf.SetExperience(career.ExperienceOptions[n-1])
	case 'd':
		if n < 1 || n > len(career.EducationOptions) {
			return fmt.Errorf("%q is not an education option", tok)
		}
		return wf.SetEducation(career.EducationOptions[n-1])
	}
	return fmt.Errorf("%q: use e<n> for experience or d<n> for education", tok)
}

func renderResults(w io.Writer, recs []career.CareerRecommendation, gaps []career.SkillGap) {
	printHeading(w, "Career recommendations")
	if len(recs) == 0 {
		fmt.Fprintln(w, "  No recommendations returned.")
	}
	for i, r := range recs {
		fmt.Fprintf(w, "  %d. %s %s\n", i+1, bold(r.JobTitle), faint(fmt.Sprintf("(%.0f%% match)", r.MatchPercentage)))
		if r.Description != "" {
			fmt.Fprintf(w, "     %s\n", r.Description)
		}
		if r.SalaryRange != "" || r.GrowthProspects != "" {
			fmt.Fprintf(w, "     Salary: %s  Growth: %s\n", r.SalaryRange, r.GrowthProspects)
		}
		if len(r.RequiredSkills) > 0 {
			fmt.Fprintf(w, "     Required skills: %s\n", strings.Join(r.RequiredSkills, ", "))
		}
	}

	printHeading(w, "Skill gaps")
	if len(gaps) == 0 {
		fmt.Fprintln(w, "  No skill gaps returned.")
	}
	for _, g := range gaps {
		sp := dashboard.Progress(g)
		fmt.Fprintf(w, "  %-22s %-6s %s %g/%g (%d%%)  ~%d weeks\n",
			g.Skill, g.Importance, progressBar(sp.Progress, 20), g.CurrentLevel, g.RequiredLevel, sp.Progress, g.LearningWeeks())
		if len(g.LearningResources) > 0 {
			fmt.Fprintf(w, "  %-22s %s\n", "", faint(strings.Join(g.LearningResources, "; ")))
		}
	}
}
