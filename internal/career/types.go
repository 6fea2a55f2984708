package career

import (
	"encoding/json"
	"time"
)

// ExperienceLevel is the self-reported seniority selected in the
// experience & education step. The zero value means "unset".
type ExperienceLevel string

const (
	ExperienceUnset     ExperienceLevel = ""
	ExperienceEntry     ExperienceLevel = "entry"
	ExperienceMid       ExperienceLevel = "mid"
	ExperienceSenior    ExperienceLevel = "senior"
	ExperienceExecutive ExperienceLevel = "executive"
)

// Valid reports whether l is one of the known levels or unset.
func (l ExperienceLevel) Valid() bool {
	switch l {
	case ExperienceUnset, ExperienceEntry, ExperienceMid, ExperienceSenior, ExperienceExecutive:
		return true
	}
	return false
}

// Education is the highest completed education level. The zero value means "unset".
type Education string

const (
	EducationUnset      Education = ""
	EducationHighSchool Education = "high_school"
	EducationAssociate  Education = "associate"
	EducationBachelor   Education = "bachelor"
	EducationMaster     Education = "master"
	EducationPhD        Education = "phd"
)

// Valid reports whether e is one of the known levels or unset.
func (e Education) Valid() bool {
	switch e {
	case EducationUnset, EducationHighSchool, EducationAssociate, EducationBachelor, EducationMaster, EducationPhD:
		return true
	}
	return false
}

// Profile is the selection set accumulated over one assessment run.
// The slice fields have set semantics; insertion order is kept because it is
// what the recommender receives.
type Profile struct {
	Interests           []string        `json:"interests"`
	Skills              []string        `json:"skills"`
	ExperienceLevel     ExperienceLevel `json:"experience_level"`
	Education           Education       `json:"education"`
	PreferredIndustries []string        `json:"preferred_industries"`
}

// NewProfile returns an empty profile whose set fields encode as [] rather than null.
func NewProfile() Profile {
	return Profile{
		Interests:           []string{},
		Skills:              []string{},
		PreferredIndustries: []string{},
	}
}

// Clone returns a deep copy of p.
func (p Profile) Clone() Profile {
	cp := p
	cp.Interests = append([]string{}, p.Interests...)
	cp.Skills = append([]string{}, p.Skills...)
	cp.PreferredIndustries = append([]string{}, p.PreferredIndustries...)
	return cp
}

// CareerRecommendation is produced by the remote recommender and passed through as-is.
type CareerRecommendation struct {
	JobTitle        string   `json:"job_title"`
	Description     string   `json:"description"`
	MatchPercentage float64  `json:"match_percentage"`
	RequiredSkills  []string `json:"required_skills"`
	SalaryRange     string   `json:"salary_range"`
	GrowthProspects string   `json:"growth_prospects"`
}

// Importance is the priority the skill-gap analyzer assigns to a gap.
type Importance string

const (
	ImportanceLow    Importance = "Low"
	ImportanceMedium Importance = "Medium"
	ImportanceHigh   Importance = "High"
)

// DefaultLearningWeeks is used when a gap carries no learning time estimate.
const DefaultLearningWeeks = 8

// SkillGap describes the distance between current and required proficiency in one skill.
type SkillGap struct {
	Skill                 string     `json:"skill"`
	Importance            Importance `json:"importance"`
	CurrentLevel          float64    `json:"current_level"`
	RequiredLevel         float64    `json:"required_level"`
	LearningResources     []string   `json:"learning_resources"`
	EstimatedLearningTime int        `json:"estimated_learning_time,omitempty"`
}

// LearningWeeks returns the estimated learning time, defaulting to
// DefaultLearningWeeks when absent or non-positive.
func (g SkillGap) LearningWeeks() int {
	if g.EstimatedLearningTime < 1 {
		return DefaultLearningWeeks
	}
	return g.EstimatedLearningTime
}

// HasTarget reports whether a required level is set. A zero or negative
// required level cannot be used as a progress denominator.
func (g SkillGap) HasTarget() bool {
	return g.RequiredLevel > 0
}

// LatestAssessment is the single-slot record of the most recent successful
// assessment. Each submission replaces it entirely.
type LatestAssessment struct {
	Profile         Profile                `json:"formData"`
	Recommendations []CareerRecommendation `json:"recommendations"`
	SkillGaps       []SkillGap             `json:"skillGaps"`
	CompletedAt     time.Time              `json:"completedAt"`
}

// UnmarshalJSON accepts the profile under either "formData" or "profile".
func (a *LatestAssessment) UnmarshalJSON(data []byte) error {
	type plain LatestAssessment
	var aux struct {
		plain
		Alt *Profile `json:"profile"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*a = LatestAssessment(aux.plain)
	if aux.Alt != nil && a.Profile.isEmpty() {
		a.Profile = *aux.Alt
	}
	return nil
}

func (p Profile) isEmpty() bool {
	return len(p.Interests) == 0 && len(p.Skills) == 0 && len(p.PreferredIndustries) == 0 &&
		p.ExperienceLevel == ExperienceUnset && p.Education == EducationUnset
}

// UserStats holds the cross-session counters. Absent fields decode as zero.
type UserStats struct {
	AssessmentsTaken int `json:"assessmentsTaken"`
	SkillsAnalyzed   int `json:"skillsAnalyzed"`
	CareerMatches    int `json:"careerMatches"`
	ChatSessions     int `json:"chatSessions"`
}

// Color is one axis of the four-color personality instrument.
type Color string

const (
	Red    Color = "RED"
	Yellow Color = "YELLOW"
	Green  Color = "GREEN"
	Blue   Color = "BLUE"
)

// Colors lists the axes in tie-break order.
var Colors = []Color{Red, Yellow, Green, Blue}

// PersonalityResult is the scored outcome of the personality instrument.
type PersonalityResult struct {
	DominantColor Color `json:"dominantColor"`
	RedScore      int   `json:"redScore"`
	YellowScore   int   `json:"yellowScore"`
	GreenScore    int   `json:"greenScore"`
	BlueScore     int   `json:"blueScore"`
}

// Tally returns the score for c.
func (r PersonalityResult) Tally(c Color) int {
	switch c {
	case Red:
		return r.RedScore
	case Yellow:
		return r.YellowScore
	case Green:
		return r.GreenScore
	case Blue:
		return r.BlueScore
	}
	return 0
}

// Total returns the number of answers that contributed to the result.
func (r PersonalityResult) Total() int {
	return r.RedScore + r.YellowScore + r.GreenScore + r.BlueScore
}

// Sender identifies who authored a chat message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ChatMessage is one entry in a chat transcript. Never persisted.
type ChatMessage struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// JobForecast is one row of the job-market forecast.
type JobForecast struct {
	JobTitle    string   `json:"job_title"`
	Trend       string   `json:"trend"`
	DemandLevel string   `json:"demand_level"`
	GrowthRate  float64  `json:"growth_rate"`
	AvgSalary   string   `json:"avg_salary"`
	KeySkills   []string `json:"key_skills"`
}
