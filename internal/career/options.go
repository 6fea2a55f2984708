package career

// Option catalogs offered by the assessment steps.
var (
	InterestOptions = []string{
		"Technology", "Healthcare", "Finance", "Education", "Marketing",
		"Design", "Sales", "Research", "Management", "Creative Arts",
	}

	SkillOptions = []string{
		"Python", "JavaScript", "Java", "SQL", "Machine Learning",
		"Project Management", "Communication", "Leadership", "Analytics",
		"Problem Solving", "Teamwork", "Critical Thinking",
	}

	IndustryOptions = []string{
		"Technology", "Healthcare", "Finance", "Education", "Retail",
		"Manufacturing", "Consulting", "Media", "Government", "Non-profit",
	}

	ExperienceOptions = []ExperienceLevel{
		ExperienceEntry, ExperienceMid, ExperienceSenior, ExperienceExecutive,
	}

	EducationOptions = []Education{
		EducationHighSchool, EducationAssociate, EducationBachelor, EducationMaster, EducationPhD,
	}
)

// ExperienceLabel returns the display label for l.
func ExperienceLabel(l ExperienceLevel) string {
	switch l {
	case ExperienceEntry:
		return "Entry Level (0-2 years)"
	case ExperienceMid:
		return "Mid Level (3-5 years)"
	case ExperienceSenior:
		return "Senior Level (6-10 years)"
	case ExperienceExecutive:
		return "Executive Level (10+ years)"
	}
	return "Not selected"
}

// EducationLabel returns the display label for e.
func EducationLabel(e Education) string {
	switch e {
	case EducationHighSchool:
		return "High School"
	case EducationAssociate:
		return "Associate Degree"
	case EducationBachelor:
		return "Bachelor's Degree"
	case EducationMaster:
		return "Master's Degree"
	case EducationPhD:
		return "PhD"
	}
	return "Not selected"
}
