package domain

import "encoding/json"

// TestCaseOutcome is the graded result of one test case run. A new outcome
// replaces the previous one on every run.
type TestCaseOutcome struct {
	Pass     bool   `json:"pass"`
	Input    string `json:"input"`
	Expected Value  `json:"expected"`
	Actual   Value  `json:"actual"`
	Output   string `json:"output"`
	Hidden   bool   `json:"hidden,omitempty"`
}

// Redacted hides the input and expected value of hidden test cases.
func (o TestCaseOutcome) Redacted() TestCaseOutcome {
	if !o.Hidden {
		return o
	}
	o.Input = ""
	o.Expected = Null()
	o.Actual = Null()
	return o
}

// TestRunSummary aggregates outcomes of one run.
type TestRunSummary struct {
	Outcomes []TestCaseOutcome `json:"outcomes"`
	Passed   int               `json:"passed"`
	Total    int               `json:"total"`
}

func NewTestRunSummary(outcomes []TestCaseOutcome) TestRunSummary {
	passed := 0
	for _, o := range outcomes {
		if o.Pass {
			passed++
		}
	}
	return TestRunSummary{Outcomes: outcomes, Passed: passed, Total: len(outcomes)}
}

func (s TestRunSummary) AllPassed() bool {
	return s.Total > 0 && s.Passed == s.Total
}

func (s TestRunSummary) Redacted() TestRunSummary {
	outcomes := make([]TestCaseOutcome, len(s.Outcomes))
	for i, o := range s.Outcomes {
		outcomes[i] = o.Redacted()
	}
	s.Outcomes = outcomes
	return s
}

// UnmarshalTestRunSummary decodes a summary stored as JSON.
func UnmarshalTestRunSummary(data []byte) (*TestRunSummary, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var s TestRunSummary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
