package domain

import "strings"

// Difficulty of a problem.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func ParseDifficulty(s string) (Difficulty, bool) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, true
	}
	return "", false
}

// Multiplier scales extracted scores for the problem difficulty.
// Unknown difficulties are treated as easy.
func (d Difficulty) Multiplier() float64 {
	switch d {
	case DifficultyMedium:
		return 0.9
	case DifficultyHard:
		return 0.8
	default:
		return 1.0
	}
}

// Score component upper bounds.
const (
	MaxCodeQuality          = 30
	MaxAlgorithmEfficiency  = 25
	MaxProblemUnderstanding = 20
	MaxImplementation       = 15
	MaxCommunication        = 10
)

// Grade letter.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

func GradeFor(percentage int) Grade {
	switch {
	case percentage >= 90:
		return GradeA
	case percentage >= 80:
		return GradeB
	case percentage >= 70:
		return GradeC
	case percentage >= 60:
		return GradeD
	default:
		return GradeF
	}
}

// ScoreBreakdown is the structured evaluation of one submission. It is built
// once and never mutated; a resubmission produces a new breakdown.
type ScoreBreakdown struct {
	CodeQuality          int    `json:"codeQuality"`
	AlgorithmEfficiency  int    `json:"algorithmEfficiency"`
	ProblemUnderstanding int    `json:"problemUnderstanding"`
	Implementation       int    `json:"implementation"`
	Communication        int    `json:"communication"`
	Total                int    `json:"total"`
	Percentage           int    `json:"percentage"`
	Grade                Grade  `json:"grade"`
	FinalNote            string `json:"finalNote"`
}

// EvaluationContext carries the signals used for feedback rules.
type EvaluationContext struct {
	TimeTakenMinutes float64 `json:"timeTakenMinutes"`
	TestsPassed      int     `json:"testsPassed"`
	TestsTotal       int     `json:"testsTotal"`
}

func (c EvaluationContext) AllTestsPassed() bool {
	return c.TestsPassed >= c.TestsTotal
}

// Evaluation is a score plus deterministic feedback.
type Evaluation struct {
	Score       ScoreBreakdown `json:"score"`
	Feedback    []string       `json:"feedback"`
	Suggestions []string       `json:"suggestions"`
	Tier        string         `json:"tier"`
	RawText     string         `json:"rawText,omitempty"`
}
