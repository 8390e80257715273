package scoring

// GradeThreshold maps a minimum percentage to a letter grade.
type GradeThreshold struct {
	MinPercentage int    `json:"min_percentage"`
	Grade         string `json:"grade"`
}

// FailingGrade is returned when no threshold matches.
const FailingGrade = "F"

// DefaultGradeScale is evaluated top-down; the first threshold the
// percentage reaches wins.
var DefaultGradeScale = []GradeThreshold{
	{MinPercentage: 90, Grade: "A"},
	{MinPercentage: 80, Grade: "B"},
	{MinPercentage: 70, Grade: "C"},
	{MinPercentage: 60, Grade: "D"},
}

// Grade maps a percentage to a letter grade using DefaultGradeScale.
func Grade(percentage int) string {
	return GradeWithScale(percentage, DefaultGradeScale)
}

func GradeWithScale(percentage int, scale []GradeThreshold) string {
	for _, t := range scale {
		if percentage >= t.MinPercentage {
			return t.Grade
		}
	}
	return FailingGrade
}
