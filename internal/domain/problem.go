package domain

// Problem is an interview problem from the catalog.
type Problem struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Difficulty  Difficulty          `json:"difficulty"`
	Tags        []string            `json:"tags,omitempty"`
	StarterCode map[Language]string `json:"starterCode,omitempty"`
	TestCases   []TestCase          `json:"testCases"`
}

// Public returns a copy without hidden test cases.
func (p Problem) Public() Problem {
	visible := make([]TestCase, 0, len(p.TestCases))
	for _, tc := range p.TestCases {
		if !tc.Hidden {
			visible = append(visible, tc)
		}
	}
	p.TestCases = visible
	return p
}
