package evaluation

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"gitlab.com/codeprep.net/internal/domain"
)

// Extraction tiers, reported with every evaluation.
const (
	TierExact   = "exact"
	TierKeyword = "keyword"
	TierDefault = "default"
)

const DefaultFinalNote = "Keep practicing! Every interview is a chance to sharpen your problem-solving skills."

const minFallbackNoteLength = 20

// components is the raw, unadjusted five-part score.
type components struct {
	codeQuality          int
	algorithmEfficiency  int
	problemUnderstanding int
	implementation       int
	communication        int
}

// neutral is used when nothing can be extracted, and per component when the
// keyword tier finds no phrase for it.
var neutral = components{
	codeQuality:          20,
	algorithmEfficiency:  18,
	problemUnderstanding: 15,
	implementation:       11,
	communication:        7,
}

var (
	scoreLinePattern = regexp.MustCompile(`(?i)SCORE:\s*Code\s+Quality:\s*(\d+)\s*/\s*30\s*,\s*Algorithm\s+Efficiency:\s*(\d+)\s*/\s*25\s*,\s*Problem\s+Understanding:\s*(\d+)\s*/\s*20\s*,\s*Implementation:\s*(\d+)\s*/\s*15\s*,\s*Communication:\s*(\d+)\s*/\s*10`)
	finalNotePattern = regexp.MustCompile(`(?im)^[ \t*_#-]*FINAL NOTE:[ \t*_]*(.+?)[ \t*_]*$`)
	sentenceSplitter = regexp.MustCompile(`[.!?]`)
)

// phrase maps a qualitative phrase to a score bucket. Phrases match on word
// boundaries so "inefficient solution" does not count as "efficient solution".
type phrase struct {
	pattern *regexp.Regexp
	score   int
}

func ph(text string, score int) phrase {
	return phrase{
		pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(text) + `\b`),
		score:   score,
	}
}

// Phrase lists are ordered strongest to weakest; the first match wins.
var (
	codeQualityPhrases = []phrase{
		ph("excellent code quality", 28),
		ph("exceptionally clean", 28),
		ph("very clean code", 26),
		ph("good code quality", 24),
		ph("clean code", 24),
		ph("well-structured", 24),
		ph("well structured", 24),
		ph("readable code", 22),
		ph("decent code quality", 20),
		ph("code quality could be improved", 15),
		ph("messy code", 10),
		ph("poor code quality", 10),
		ph("hard to read", 10),
	}
	algorithmEfficiencyPhrases = []phrase{
		ph("optimal solution", 24),
		ph("optimal time complexity", 24),
		ph("highly efficient", 23),
		ph("efficient solution", 21),
		ph("efficient algorithm", 21),
		ph("good time complexity", 20),
		ph("reasonable complexity", 17),
		ph("could be optimized", 14),
		ph("could be more efficient", 14),
		ph("suboptimal", 12),
		ph("inefficient", 10),
		ph("brute force", 10),
	}
	problemUnderstandingPhrases = []phrase{
		ph("excellent understanding", 19),
		ph("thorough understanding", 19),
		ph("clear understanding", 17),
		ph("good understanding", 16),
		ph("solid understanding", 16),
		ph("understood the problem", 15),
		ph("partial understanding", 11),
		ph("misunderstood", 8),
		ph("limited understanding", 8),
		ph("did not understand", 6),
	}
	implementationPhrases = []phrase{
		ph("all test cases pass", 14),
		ph("flawless implementation", 14),
		ph("correct implementation", 13),
		ph("handles edge cases", 13),
		ph("working solution", 12),
		ph("mostly correct", 10),
		ph("minor bugs", 9),
		ph("missed edge cases", 8),
		ph("incorrect", 6),
		ph("does not work", 5),
		ph("incomplete", 5),
	}
	communicationPhrases = []phrase{
		ph("excellent communication", 10),
		ph("explained clearly", 9),
		ph("clear explanation", 9),
		ph("good communication", 8),
		ph("communicated well", 8),
		ph("adequate communication", 6),
		ph("could explain", 5),
		ph("more communication", 5),
		ph("poor communication", 3),
		ph("did not explain", 3),
	}
)

type extractor func(text string) (components, bool)

// tiers are tried in order; the default tier is applied when all fail.
var tiers = []struct {
	name string
	fn   extractor
}{
	{TierExact, extractExact},
	{TierKeyword, extractKeywords},
}

// ExtractScore turns free-form evaluation text into a bounded score. It never
// fails: unusable text yields the neutral default breakdown.
func ExtractScore(text string, difficulty domain.Difficulty, ctx domain.EvaluationContext) domain.Evaluation {
	raw, tier := neutral, TierDefault
	if strings.TrimSpace(text) != "" {
		for _, t := range tiers {
			if c, ok := t.fn(text); ok {
				raw, tier = c, t.name
				break
			}
		}
	}

	note := DefaultFinalNote
	if tier != TierDefault {
		note = extractFinalNote(text)
	}

	score := buildBreakdown(raw, difficulty, note)
	feedback, suggestions := feedbackFor(score, ctx)
	return domain.Evaluation{
		Score:       score,
		Feedback:    feedback,
		Suggestions: suggestions,
		Tier:        tier,
		RawText:     text,
	}
}

// DefaultEvaluation is returned when no evaluation text is available at all.
func DefaultEvaluation(difficulty domain.Difficulty, ctx domain.EvaluationContext) domain.Evaluation {
	return ExtractScore("", difficulty, ctx)
}

func extractExact(text string) (components, bool) {
	m := scoreLinePattern.FindStringSubmatch(text)
	if m == nil {
		return components{}, false
	}
	values := make([]int, 5)
	for i := range values {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			// only overflow can fail here
			n = math.MaxInt32
		}
		values[i] = n
	}
	return components{
		codeQuality:          clamp(values[0], domain.MaxCodeQuality),
		algorithmEfficiency:  clamp(values[1], domain.MaxAlgorithmEfficiency),
		problemUnderstanding: clamp(values[2], domain.MaxProblemUnderstanding),
		implementation:       clamp(values[3], domain.MaxImplementation),
		communication:        clamp(values[4], domain.MaxCommunication),
	}, true
}

func extractKeywords(text string) (components, bool) {
	lower := strings.ToLower(text)
	matched := false
	pick := func(phrases []phrase, fallback int) int {
		for _, p := range phrases {
			if p.pattern.MatchString(lower) {
				matched = true
				return p.score
			}
		}
		return fallback
	}

	c := components{
		codeQuality:          pick(codeQualityPhrases, neutral.codeQuality),
		algorithmEfficiency:  pick(algorithmEfficiencyPhrases, neutral.algorithmEfficiency),
		problemUnderstanding: pick(problemUnderstandingPhrases, neutral.problemUnderstanding),
		implementation:       pick(implementationPhrases, neutral.implementation),
		communication:        pick(communicationPhrases, neutral.communication),
	}
	return c, matched
}

// extractFinalNote prefers an explicit FINAL NOTE line, then the second to
// last sentence when it is long enough.
func extractFinalNote(text string) string {
	if m := finalNotePattern.FindStringSubmatch(text); m != nil {
		if note := strings.TrimSpace(m[1]); note != "" {
			return note
		}
	}

	var sentences []string
	for _, s := range sentenceSplitter.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) >= 2 {
		if candidate := sentences[len(sentences)-2]; len(candidate) > minFallbackNoteLength {
			return candidate
		}
	}
	return DefaultFinalNote
}

// buildBreakdown applies the difficulty multiplier to each component
// separately, then derives total, percentage and grade.
func buildBreakdown(c components, difficulty domain.Difficulty, note string) domain.ScoreBreakdown {
	m := difficulty.Multiplier()
	adjust := func(v, max int) int {
		return clamp(int(math.Round(float64(v)*m)), max)
	}

	s := domain.ScoreBreakdown{
		CodeQuality:          adjust(c.codeQuality, domain.MaxCodeQuality),
		AlgorithmEfficiency:  adjust(c.algorithmEfficiency, domain.MaxAlgorithmEfficiency),
		ProblemUnderstanding: adjust(c.problemUnderstanding, domain.MaxProblemUnderstanding),
		Implementation:       adjust(c.implementation, domain.MaxImplementation),
		Communication:        adjust(c.communication, domain.MaxCommunication),
		FinalNote:            note,
	}
	s.Total = s.CodeQuality + s.AlgorithmEfficiency + s.ProblemUnderstanding + s.Implementation + s.Communication
	s.Percentage = s.Total
	s.Grade = domain.GradeFor(s.Percentage)
	return s
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
