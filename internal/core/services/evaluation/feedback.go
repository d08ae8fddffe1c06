package evaluation

import "gitlab.com/codeprep.net/internal/domain"

// Component thresholds below which a suggestion is added.
const (
	codeQualityThreshold          = 20
	algorithmEfficiencyThreshold  = 18
	problemUnderstandingThreshold = 15
	implementationThreshold       = 10
	communicationThreshold        = 6

	slowSolveMinutes = 45
)

const (
	suggestCodeQuality          = "Focus on writing cleaner, more readable code with meaningful variable names and clear structure."
	suggestAlgorithmEfficiency  = "Analyze the time and space complexity of your approach and look for more efficient algorithms or data structures."
	suggestProblemUnderstanding = "Spend more time clarifying requirements, constraints and edge cases before you start coding."
	suggestImplementation       = "Practice translating your approach into working code and test it against edge cases as you go."
	suggestCommunication        = "Explain your thought process out loud and walk the interviewer through your approach and trade-offs."

	feedbackSlow         = "You took longer than 45 minutes; practice timed sessions to improve your pace."
	feedbackFailingTests = "Not all test cases passed; review the failing cases and handle the missing scenarios."
	feedbackStrong       = "Strong performance across every evaluated category."
)

// feedbackFor applies a fixed rule list; the same score and context always
// produce the same strings in the same order.
func feedbackFor(s domain.ScoreBreakdown, ctx domain.EvaluationContext) (feedback []string, suggestions []string) {
	feedback = []string{}
	suggestions = []string{}

	if s.CodeQuality < codeQualityThreshold {
		suggestions = append(suggestions, suggestCodeQuality)
	}
	if s.AlgorithmEfficiency < algorithmEfficiencyThreshold {
		suggestions = append(suggestions, suggestAlgorithmEfficiency)
	}
	if s.ProblemUnderstanding < problemUnderstandingThreshold {
		suggestions = append(suggestions, suggestProblemUnderstanding)
	}
	if s.Implementation < implementationThreshold {
		suggestions = append(suggestions, suggestImplementation)
	}
	if s.Communication < communicationThreshold {
		suggestions = append(suggestions, suggestCommunication)
	}

	if ctx.TimeTakenMinutes > slowSolveMinutes {
		feedback = append(feedback, feedbackSlow)
	}
	if !ctx.AllTestsPassed() {
		feedback = append(feedback, feedbackFailingTests)
	}
	if len(feedback) == 0 && len(suggestions) == 0 {
		feedback = append(feedback, feedbackStrong)
	}
	return feedback, suggestions
}
