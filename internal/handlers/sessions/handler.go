package sessions

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/services/interview"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/handlers"
)

// SessionHandler handles interview session API requests
type SessionHandler struct {
	interviewService interview.IInterviewService
	logger           primary.Logger
}

func NewSessionHandler(interviewService interview.IInterviewService, logger primary.Logger) *SessionHandler {
	return &SessionHandler{
		interviewService: interviewService,
		logger:           logger,
	}
}

// RegisterRoutes expects a router already guarded by the JWT middleware
func (h *SessionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/sessions", h.StartSession).Methods("POST")
	router.HandleFunc("/api/sessions", h.ListSessions).Methods("GET")
	router.HandleFunc("/api/sessions/{sessionId}", h.GetSession).Methods("GET")
	router.HandleFunc("/api/sessions/{sessionId}/draft", h.SaveDraft).Methods("PUT")
	router.HandleFunc("/api/sessions/{sessionId}/run", h.RunTests).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionId}/chat", h.Chat).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionId}/complete", h.Complete).Methods("POST")
}

func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	var req StartSessionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.ResponseError(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := h.interviewService.StartSession(r.Context(), userID, req.ProblemID, req.Language)
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to start session", err)
		return
	}
	handlers.ResponseWithJson(w, http.StatusCreated, session)
}

func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	list, err := h.interviewService.ListSessions(r.Context(), userID, limit)
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to list sessions", err)
		return
	}
	if list == nil {
		list = []*domain.InterviewSession{}
	}
	handlers.ResponseWithJson(w, http.StatusOK, map[string][]*domain.InterviewSession{"sessions": list})
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.userAndSession(w, r)
	if !ok {
		return
	}

	session, err := h.interviewService.GetSession(r.Context(), userID, sessionID)
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to get session", err)
		return
	}
	handlers.ResponseWithJson(w, http.StatusOK, session)
}

func (h *SessionHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.userAndSession(w, r)
	if !ok {
		return
	}
	var req SaveDraftRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.ResponseError(w, err.Error(), http.StatusBadRequest)
		return
	}

	draft, err := h.interviewService.SaveDraft(r.Context(), userID, sessionID, req.Code, req.ElapsedSeconds)
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to save draft", err)
		return
	}
	handlers.ResponseWithJson(w, http.StatusAccepted, draft)
}

func (h *SessionHandler) RunTests(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.userAndSession(w, r)
	if !ok {
		return
	}
	var req RunTestsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.ResponseError(w, err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := h.interviewService.RunTests(r.Context(), userID, sessionID, req.Code)
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to run tests", err)
		return
	}
	handlers.ResponseWithJson(w, http.StatusOK, summary)
}

func (h *SessionHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.userAndSession(w, r)
	if !ok {
		return
	}
	var req ChatRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.ResponseError(w, err.Error(), http.StatusBadRequest)
		return
	}

	reply, err := h.interviewService.Chat(r.Context(), userID, sessionID, req.Message)
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to chat", err)
		return
	}
	handlers.ResponseWithJson(w, http.StatusOK, reply)
}

func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.userAndSession(w, r)
	if !ok {
		return
	}
	var req CompleteRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.ResponseError(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := h.interviewService.Complete(r.Context(), userID, sessionID, req.Code, req.ElapsedSeconds)
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to complete session", err)
		return
	}
	handlers.ResponseWithJson(w, http.StatusOK, session)
}

func (h *SessionHandler) user(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := handlers.UserIDFromContext(r.Context())
	if !ok {
		handlers.ResponseError(w, "Unauthorized", http.StatusUnauthorized)
	}
	return userID, ok
}

func (h *SessionHandler) userAndSession(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := h.user(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	sessionID, err := uuid.Parse(mux.Vars(r)["sessionId"])
	if err != nil {
		handlers.ResponseError(w, "Invalid session id", http.StatusBadRequest)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, sessionID, true
}
