// Package dashboard derives the progress view shown to the user from the
// persisted stats and latest assessment. It is a pure read-side; nothing
// here writes.
package dashboard

import (
	"fmt"
	"math"
	"time"

	"github.com/kalambet/pathwise/internal/career"
)

// topRecommendations is how many skill gaps become "Improve X" items.
const topRecommendations = 3

// SkillProgress is one skill gap rendered as progress toward its target.
type SkillProgress struct {
	Skill     string  `json:"skill"`
	Current   float64 `json:"current"`
	Target    float64 `json:"target"`
	Progress  int     `json:"progress"`
	HasTarget bool    `json:"has_target"`
}

// Recommendation is a suggested next step derived from a skill gap.
type Recommendation struct {
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Priority      career.Importance `json:"priority"`
	EstimatedTime string            `json:"estimated_time"`
}

// Activity is one entry of the recent-activity feed.
type Activity struct {
	Action string    `json:"action"`
	Type   string    `json:"type"`
	Date   time.Time `json:"date"`
}

// View is everything the dashboard shows.
type View struct {
	Stats           career.UserStats `json:"stats"`
	HasData         bool             `json:"has_data"`
	CareerScore     int              `json:"career_score"`
	Skills          []SkillProgress  `json:"skills"`
	Recommendations []Recommendation `json:"recommendations"`
	RecentActivity  []Activity       `json:"recent_activity"`
}

// Source supplies the persisted records. Implemented by stats.Aggregator.
type Source interface {
	Read() career.UserStats
	Latest() (career.LatestAssessment, bool)
}

// Load reads src and computes the view.
func Load(src Source) View {
	s := src.Read()
	latest, ok := src.Latest()
	if !ok {
		return Compute(s, nil)
	}
	return Compute(s, &latest)
}

// Compute derives the view. latest may be nil when no assessment has been
// completed.
func Compute(s career.UserStats, latest *career.LatestAssessment) View {
	v := View{
		Stats:           s,
		HasData:         s.AssessmentsTaken > 0,
		Skills:          []SkillProgress{},
		Recommendations: []Recommendation{},
		RecentActivity:  []Activity{},
	}
	if latest == nil {
		return v
	}

	for _, g := range latest.SkillGaps {
		v.Skills = append(v.Skills, Progress(g))
	}
	v.CareerScore = CareerScore(v.Skills)

	for i, g := range latest.SkillGaps {
		if i == topRecommendations {
			break
		}
		v.Recommendations = append(v.Recommendations, Recommendation{
			Title:         "Improve " + g.Skill,
			Description:   fmt.Sprintf("Focus on developing %s skills to reach target level", g.Skill),
			Priority:      g.Importance,
			EstimatedTime: fmt.Sprintf("%d weeks", g.LearningWeeks()),
		})
	}

	v.RecentActivity = append(v.RecentActivity, Activity{
		Action: "Completed Career Assessment",
		Type:   "assessment",
		Date:   latest.CompletedAt,
	})
	return v
}

// Progress converts a gap to percent of target. A gap without a target
// reports 0 and HasTarget false.
func Progress(g career.SkillGap) SkillProgress {
	sp := SkillProgress{
		Skill:     g.Skill,
		Current:   g.CurrentLevel,
		Target:    g.RequiredLevel,
		HasTarget: g.HasTarget(),
	}
	if sp.HasTarget {
		sp.Progress = roundHalfUp(100 * g.CurrentLevel / g.RequiredLevel)
	}
	return sp
}

// CareerScore is the rounded mean progress over skills that have a target,
// or 0 when none do.
func CareerScore(skills []SkillProgress) int {
	var sum, n int
	for _, s := range skills {
		if !s.HasTarget {
			continue
		}
		sum += s.Progress
		n++
	}
	if n == 0 {
		return 0
	}
	return roundHalfUp(float64(sum) / float64(n))
}

// roundHalfUp rounds .5 toward +Inf, so 2.5 → 3 and -2.5 → -2.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
