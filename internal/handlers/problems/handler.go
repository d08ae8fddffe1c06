package problems

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/services/problem"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/handlers"
	"gitlab.com/codeprep.net/internal/static/errs"
)

// ProblemHandler serves the problem catalog
type ProblemHandler struct {
	problemService problem.IProblemService
	logger         primary.Logger
}

func NewProblemHandler(problemService problem.IProblemService, logger primary.Logger) *ProblemHandler {
	return &ProblemHandler{
		problemService: problemService,
		logger:         logger,
	}
}

func (h *ProblemHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/problems", h.ListProblems).Methods("GET")
	router.HandleFunc("/api/problems/{problemId}", h.GetProblem).Methods("GET")
	router.HandleFunc("/api/languages", h.ListLanguages).Methods("GET")
}

// ListProblems handles GET /api/problems?difficulty=easy|medium|hard
func (h *ProblemHandler) ListProblems(w http.ResponseWriter, r *http.Request) {
	var difficulty domain.Difficulty
	if raw := r.URL.Query().Get("difficulty"); raw != "" {
		d, ok := domain.ParseDifficulty(raw)
		if !ok {
			handlers.ResponseError(w, fmt.Sprintf("%v: unknown difficulty %q", errs.ErrInvalidInput, raw), http.StatusBadRequest)
			return
		}
		difficulty = d
	}

	list, err := h.problemService.ListProblems(r.Context(), difficulty)
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to list problems", err)
		return
	}
	handlers.ResponseWithJson(w, http.StatusOK, map[string][]domain.Problem{"problems": list})
}

func (h *ProblemHandler) GetProblem(w http.ResponseWriter, r *http.Request) {
	p, err := h.problemService.GetProblem(r.Context(), mux.Vars(r)["problemId"])
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to get problem", err)
		return
	}
	handlers.ResponseWithJson(w, http.StatusOK, p)
}

func (h *ProblemHandler) ListLanguages(w http.ResponseWriter, _ *http.Request) {
	handlers.ResponseWithJson(w, http.StatusOK, map[string][]domain.Language{"languages": domain.SupportedLanguages()})
}
