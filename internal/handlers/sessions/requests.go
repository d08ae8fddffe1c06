package sessions

// StartSessionRequest represents a request to start an interview
type StartSessionRequest struct {
	ProblemID string `json:"problemId" validate:"required"`
	Language  string `json:"language" validate:"required"`
}

// SaveDraftRequest carries an editor auto-save
type SaveDraftRequest struct {
	Code           string `json:"code" validate:"max=65536"`
	ElapsedSeconds int64  `json:"elapsedSeconds" validate:"gte=0"`
}

type RunTestsRequest struct {
	Code string `json:"code" validate:"max=65536"`
}

type ChatRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

type CompleteRequest struct {
	Code           string `json:"code" validate:"max=65536"`
	ElapsedSeconds int64  `json:"elapsedSeconds" validate:"gte=0"`
}
