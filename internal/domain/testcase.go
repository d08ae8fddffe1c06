package domain

// TestCase is one input/expected pair of a problem.
type TestCase struct {
	Input    Value `json:"input"`
	Expected Value `json:"expected"`
	Hidden   bool  `json:"hidden"`
}

// Stdin is the serialized input handed to the program.
func (t TestCase) Stdin() string {
	return t.Input.String()
}
