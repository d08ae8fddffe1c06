package evaluations

import (
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/codeprep.net/internal/core/services/evaluation"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/handlers"
)

type ExtractRequest struct {
	Text             string  `json:"text" validate:"max=65536"`
	Difficulty       string  `json:"difficulty" validate:"required,oneof=easy medium hard"`
	TimeTakenMinutes float64 `json:"timeTakenMinutes" validate:"gte=0"`
	TestsPassed      int     `json:"testsPassed" validate:"gte=0"`
	TestsTotal       int     `json:"testsTotal" validate:"gte=0,gtefield=TestsPassed"`
}

type EvaluationHandler struct {
	evaluationService evaluation.IEvaluationService
}

func NewEvaluationHandler(evaluationService evaluation.IEvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluationService: evaluationService}
}

func (h *EvaluationHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/evaluations/extract", h.Extract).Methods("POST")
}

// Extract scores evaluation text that was produced elsewhere.
func (h *EvaluationHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.ResponseError(w, err.Error(), http.StatusBadRequest)
		return
	}
	difficulty, _ := domain.ParseDifficulty(req.Difficulty)

	eval := h.evaluationService.ExtractScore(req.Text, difficulty, domain.EvaluationContext{
		TimeTakenMinutes: req.TimeTakenMinutes,
		TestsPassed:      req.TestsPassed,
		TestsTotal:       req.TestsTotal,
	})
	handlers.ResponseWithJson(w, http.StatusOK, eval)
}
