package assessment

// Step is a position in the assessment. Input steps run in declaration
// order; StepResults is terminal and only reachable by submitting.
type Step int

const (
	StepInterests Step = iota
	StepSkills
	StepExperienceEducation
	StepIndustries
	StepResults
)

var stepNames = [...]string{
	StepInterests:           "interests",
	StepSkills:              "skills",
	StepExperienceEducation: "experience_education",
	StepIndustries:          "industries",
	StepResults:             "results",
}

func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return "unknown"
	}
	return stepNames[s]
}

// Number is the 1-based position shown to the user ("Step 2 of 4").
func (s Step) Number() int { return int(s) + 1 }

// InputSteps is the count of steps that collect input.
const InputSteps = int(StepResults)

// transition is one edge of the navigation graph.
type transition struct {
	next, prev Step
}

// transitions holds plain navigation only. Advancing from StepIndustries
// submits instead, and StepResults has no edges.
var transitions = map[Step]transition{
	StepInterests:           {next: StepSkills, prev: StepInterests},
	StepSkills:              {next: StepExperienceEducation, prev: StepInterests},
	StepExperienceEducation: {next: StepIndustries, prev: StepSkills},
	StepIndustries:          {next: StepResults, prev: StepExperienceEducation},
}

// Category names a set-valued profile field that Toggle can flip.
type Category string

const (
	CategoryInterests  Category = "interests"
	CategorySkills     Category = "skills"
	CategoryIndustries Category = "industries"
)
