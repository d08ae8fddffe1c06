package auth

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"gitlab.com/codeprep.net/internal/config"
	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/services/auth"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/handlers"
	"gitlab.com/codeprep.net/internal/handlers/response"
)

const (
	stateCookie           = "oauthstate"
	defaultGoogleUserInfo = "https://www.googleapis.com/oauth2/v3/userinfo"
)

type ServiceDependencies struct {
	GGAuthService    auth.IAuthService
	LocalAuthService auth.ILocalAuthService
}

// GoogleUser struct to decode Google API response
type GoogleUser struct {
	ID    string `json:"sub"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type RegisterRequest struct {
	UserName string `json:"userName" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Email    string `json:"email" validate:"omitempty,email"`
}

type LoginRequest struct {
	UserName string `json:"userName" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type Handler struct {
	providerHandler map[domain.Provider]auth.IAuthService
	local           auth.ILocalAuthService
	oauthConfig     *oauth2.Config
	userInfoURL     string
	logger          primary.Logger
}

func NewHandler(svcDep *ServiceDependencies, cfg *config.GGAuthConfig, logger primary.Logger) *Handler {
	h := &Handler{
		providerHandler: make(map[domain.Provider]auth.IAuthService),
		local:           svcDep.LocalAuthService,
		userInfoURL:     defaultGoogleUserInfo,
		logger:          logger,
	}
	if svcDep.LocalAuthService != nil {
		h.providerHandler[domain.ProviderLocal] = svcDep.LocalAuthService
	}
	if svcDep.GGAuthService != nil && cfg != nil && cfg.Enabled() {
		h.providerHandler[domain.ProviderGoogle] = svcDep.GGAuthService
		h.oauthConfig = &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		}
	}
	return h
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/auth/register", h.Register).Methods("POST")
	router.HandleFunc("/auth/login", h.Login).Methods("POST")
	router.HandleFunc("/auth/google", h.GoogleLoginHandler).Methods("GET")
	router.HandleFunc("/auth/callback", h.GoogleCallbackHandler).Methods("GET")
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.ResponseError(w, err.Error(), http.StatusBadRequest)
		return
	}

	token, err := h.local.Register(r.Context(), domain.Credentials{
		UserName: req.UserName,
		Password: req.Password,
		Email:    req.Email,
	})
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to register user", err)
		return
	}
	handlers.ResponseWithJson(w, http.StatusCreated, domain.LoginResponse{Token: token})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.ResponseError(w, err.Error(), http.StatusBadRequest)
		return
	}

	token, err := h.providerHandler[domain.ProviderLocal].Login(r.Context(), domain.Credentials{
		UserName: req.UserName,
		Password: req.Password,
	})
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to log in", err)
		return
	}
	response.WriteSuccess(w, domain.LoginResponse{Token: token})
}

// GoogleLoginHandler redirects user to Google OAuth2 login
func (h *Handler) GoogleLoginHandler(w http.ResponseWriter, r *http.Request) {
	if h.oauthConfig == nil {
		handlers.ResponseError(w, "Google login is not configured", http.StatusServiceUnavailable)
		return
	}

	state, err := randomState()
	if err != nil {
		h.logger.Error("Failed to generate oauth state", "error", err)
		handlers.ResponseError(w, "Failed to start login", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.oauthConfig.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallbackHandler handles Google OAuth2 callback
func (h *Handler) GoogleCallbackHandler(w http.ResponseWriter, r *http.Request) {
	if h.oauthConfig == nil {
		handlers.ResponseError(w, "Google login is not configured", http.StatusServiceUnavailable)
		return
	}
	ctx := r.Context()

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		handlers.ResponseError(w, "Invalid oauth state", http.StatusBadRequest)
		return
	}
	// Get authorization code from URL
	code := r.URL.Query().Get("code")
	if code == "" {
		handlers.ResponseError(w, "No code in URL", http.StatusBadRequest)
		return
	}
	// Exchange code for access token
	token, err := h.oauthConfig.Exchange(ctx, code)
	if err != nil {
		h.logger.Error("Failed to exchange oauth code", "error", err)
		handlers.ResponseError(w, "Failed to get token", http.StatusUnauthorized)
		return
	}

	googleUser, err := h.fetchGoogleUser(r, token)
	if err != nil {
		h.logger.Error("Failed to get google user info", "error", err)
		handlers.ResponseError(w, "Failed to get user info", http.StatusBadGateway)
		return
	}

	tokenStr, err := h.providerHandler[domain.ProviderGoogle].Login(ctx, domain.Credentials{
		GoogleID: googleUser.ID,
		Email:    googleUser.Email,
	})
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to log in with google", err)
		return
	}
	response.WriteSuccess(w, domain.LoginResponse{Token: tokenStr})
}

func (h *Handler) fetchGoogleUser(r *http.Request, token *oauth2.Token) (*GoogleUser, error) {
	client := h.oauthConfig.Client(r.Context(), token)
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, h.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var googleUser GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	if googleUser.ID == "" {
		return nil, fmt.Errorf("user info has no subject")
	}
	return &googleUser, nil
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
