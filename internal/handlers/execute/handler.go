package execute

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/services/execution"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/handlers"
	"gitlab.com/codeprep.net/internal/static/errs"
)

// ExecuteRequest runs one program against one expected value. Either
// Language or LanguageID selects the judge language.
type ExecuteRequest struct {
	SourceCode string       `json:"sourceCode" validate:"required,max=65536"`
	Language   string       `json:"language"`
	LanguageID int          `json:"languageId" validate:"gte=0"`
	Stdin      string       `json:"stdin"`
	Expected   domain.Value `json:"expected"`
}

type ExecuteHandler struct {
	executionService execution.IExecutionService
	logger           primary.Logger
}

func NewExecuteHandler(executionService execution.IExecutionService, logger primary.Logger) *ExecuteHandler {
	return &ExecuteHandler{
		executionService: executionService,
		logger:           logger,
	}
}

func (h *ExecuteHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/execute", h.Execute).Methods("POST")
}

func (h *ExecuteHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.ResponseError(w, err.Error(), http.StatusBadRequest)
		return
	}

	languageID := req.LanguageID
	if req.Language != "" {
		lang, ok := domain.ParseLanguage(req.Language)
		if !ok {
			handlers.ResponseError(w, fmt.Sprintf("%v: %s", errs.ErrUnsupportedLanguage, req.Language), http.StatusBadRequest)
			return
		}
		languageID = lang.JudgeID()
	}
	if languageID == 0 {
		handlers.ResponseError(w, "language or languageId is required", http.StatusBadRequest)
		return
	}

	outcome, err := h.executionService.RunTestCase(r.Context(), req.SourceCode, languageID, req.Stdin, req.Expected)
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to execute code", err)
		return
	}
	handlers.ResponseWithJson(w, http.StatusOK, outcome)
}
