package domain

// JobToken identifies a submission on the remote judge.
type JobToken string

// ExecutionRequest is one program run: source, judge language id and stdin.
type ExecutionRequest struct {
	SourceCode string
	LanguageID int
	Stdin      string
}

// ExecutionStatus is the normalized judge status of a submission.
type ExecutionStatus string

const (
	ExecutionQueued            ExecutionStatus = "QUEUED"
	ExecutionProcessing        ExecutionStatus = "PROCESSING"
	ExecutionAccepted          ExecutionStatus = "ACCEPTED"
	ExecutionWrongAnswer       ExecutionStatus = "WRONG_ANSWER"
	ExecutionTimeLimitExceeded ExecutionStatus = "TIME_LIMIT_EXCEEDED"
	ExecutionCompilationError  ExecutionStatus = "COMPILATION_ERROR"
	ExecutionRuntimeError      ExecutionStatus = "RUNTIME_ERROR"
	ExecutionUnknown           ExecutionStatus = "UNKNOWN"
)

// Pending reports whether the judge has not finished with the submission yet.
func (s ExecutionStatus) Pending() bool {
	return s == ExecutionQueued || s == ExecutionProcessing
}

// Completed reports whether the program ran to completion and produced output.
// Correctness is decided by comparing that output, not by the judge.
func (s ExecutionStatus) Completed() bool {
	return s == ExecutionAccepted || s == ExecutionWrongAnswer
}

// StatusFromJudgeID maps the numeric judge status id.
func StatusFromJudgeID(id int) ExecutionStatus {
	switch {
	case id == 1:
		return ExecutionQueued
	case id == 2:
		return ExecutionProcessing
	case id == 3:
		return ExecutionAccepted
	case id == 4:
		return ExecutionWrongAnswer
	case id == 5:
		return ExecutionTimeLimitExceeded
	case id == 6:
		return ExecutionCompilationError
	case id >= 7 && id <= 12:
		return ExecutionRuntimeError
	default:
		return ExecutionUnknown
	}
}

// ExecutionResult is the terminal state of one submission.
type ExecutionResult struct {
	Status        ExecutionStatus `json:"status"`
	Description   string          `json:"description,omitempty"`
	Stdout        string          `json:"stdout"`
	Stderr        string          `json:"stderr"`
	CompileOutput string          `json:"compileOutput"`
}
