package personality

import "github.com/kalambet/pathwise/internal/career"

// Option is one answer choice. Letter determines the color axis.
type Option struct {
	Letter string
	Text   string
}

// Question is one item of the instrument.
type Question struct {
	Text    string
	Options []Option
}

// Questions is the fixed ten-question bank, four options each, always in
// a/b/c/d order.
var Questions = []Question{
	{
		Text: "In a group project, you usually:",
		Options: []Option{
			{"a", "Take charge and decide what needs to be done"},
			{"b", "Motivate others and make the atmosphere fun"},
			{"c", "Make sure everyone feels included and heard"},
			{"d", "Focus on the details and ensure accuracy"},
		},
	},
	{
		Text: "When faced with a problem, you:",
		Options: []Option{
			{"a", "Act fast and look for quick results"},
			{"b", "Brainstorm creatively and talk it out"},
			{"c", "Stay calm and look for compromise"},
			{"d", "Analyze the situation carefully before acting"},
		},
	},
	{
		Text: "Others would describe you as:",
		Options: []Option{
			{"a", "Confident and determined"},
			{"b", "Energetic and optimistic"},
			{"c", "Patient and dependable"},
			{"d", "Logical and precise"},
		},
	},
	{
		Text: "What stresses you the most?",
		Options: []Option{
			{"a", "Wasting time / slow people"},
			{"b", "Strict rules and routines"},
			{"c", "Conflict or hurting others"},
			{"d", "Mistakes or lack of structure"},
		},
	},
	{
		Text: "At a party, you're the one who:",
		Options: []Option{
			{"a", "Talks business or achievements"},
			{"b", "Chats with everyone and tells stories"},
			{"c", "Sticks with close friends, avoids drama"},
			{"d", "Observes and joins deep conversations"},
		},
	},
	{
		Text: "What motivates you the most?",
		Options: []Option{
			{"a", "Winning, success, results"},
			{"b", "Recognition, fun, new ideas"},
			{"c", "Security, harmony, stability"},
			{"d", "Knowledge, order, understanding"},
		},
	},
	{
		Text: "How do you handle decisions?",
		Options: []Option{
			{"a", "Quick, firm, and decisive"},
			{"b", "Spontaneous, based on excitement"},
			{"c", "Slowly, considering everyone's feelings"},
			{"d", "Carefully, based on facts and data"},
		},
	},
	{
		Text: "When working with others, you prefer:",
		Options: []Option{
			{"a", "Fast results and efficiency"},
			{"b", "Creativity and inspiration"},
			{"c", "Support and cooperation"},
			{"d", "Accuracy and rules"},
		},
	},
	{
		Text: "Your biggest strength is:",
		Options: []Option{
			{"a", "Leadership and drive"},
			{"b", "Charisma and optimism"},
			{"c", "Loyalty and empathy"},
			{"d", "Logic and structure"},
		},
	},
	{
		Text: "Your biggest weakness could be:",
		Options: []Option{
			{"a", "Being too bossy or impatient"},
			{"b", "Being too scattered or unrealistic"},
			{"c", "Avoiding change or confrontation"},
			{"d", "Overthinking and being critical"},
		},
	},
}

// Suggestion is the career guidance shown for a dominant color.
type Suggestion struct {
	Title       string
	Description string
	Careers     []string
	Strengths   []string
	Tips        string
}

var suggestions = map[career.Color]Suggestion{
	career.Red: {
		Title:       "The Determined Leader",
		Description: "You thrive in leadership roles and results-driven environments.",
		Careers:     []string{"Management", "Entrepreneurship", "Sales Leadership", "Project Management", "Business Development"},
		Strengths:   []string{"Leadership", "Decision-making", "Results-oriented", "Confident", "Ambitious"},
		Tips:        "Focus on roles where you can lead teams and drive results. Consider starting your own business or moving into executive positions.",
	},
	career.Yellow: {
		Title:       "The Social Optimist",
		Description: "You excel in people-focused, creative, and communication-heavy roles.",
		Careers:     []string{"Marketing", "Public Relations", "Training & Development", "Sales", "HR", "Event Management", "Media"},
		Strengths:   []string{"Communication", "Creativity", "Optimism", "Persuasion", "Team motivation"},
		Tips:        "Leverage your social skills and creativity. Consider roles in marketing, training, or any field requiring strong interpersonal skills.",
	},
	career.Green: {
		Title:       "The Supportive Team Player",
		Description: "You thrive in collaborative, stable, and service-oriented environments.",
		Careers:     []string{"Customer Service", "Healthcare", "Social Work", "Teaching", "Counseling", "Non-profit"},
		Strengths:   []string{"Teamwork", "Patience", "Reliability", "Empathy", "Stability"},
		Tips:        "Focus on helping professions and team-oriented roles. Your patience and reliability make you valuable in service industries.",
	},
	career.Blue: {
		Title:       "The Analytical Thinker",
		Description: "You excel in detail-oriented, systematic, and knowledge-based roles.",
		Careers:     []string{"Data Analysis", "Engineering", "Research", "Quality Assurance", "IT", "Finance", "Science"},
		Strengths:   []string{"Analysis", "Precision", "Planning", "Logic", "Attention to detail"},
		Tips:        "Pursue technical and analytical roles. Your systematic approach and attention to detail are perfect for data-driven careers.",
	},
}

// SuggestionFor returns the guidance for c. Unknown colors get the BLUE guidance.
func SuggestionFor(c career.Color) Suggestion {
	if s, ok := suggestions[c]; ok {
		return s
	}
	return suggestions[career.Blue]
}
