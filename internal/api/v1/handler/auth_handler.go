package handler

import (
	"net/http"

	"learnhub/internal/api/v1/dto"
	"learnhub/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// AuthHandler handles sign-up, sign-in and OAuth endpoints
type AuthHandler struct {
	authService service.AuthService
	validate    *validator.Validate
	logger      zerolog.Logger
}

func NewAuthHandler(authService service.AuthService, validate *validator.Validate, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, validate: validate, logger: logger.With().Str("handler", "AuthHandler").Logger()}
}

// RegisterRoutes mounts auth routes
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)
	r.Get("/auth/oauth/{provider}/login", h.oauthLogin)
	r.Get("/auth/oauth/{provider}/callback", h.oauthCallback)
}

// register godoc
// @Summary Register with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RegisterDTO true "Registration request"
// @Success 201 {object} dto.AuthResponseDTO
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 409 {string} string "Email already registered"
// @Router /auth/register [post]
func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	res, err := h.authService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err, "register")
		return
	}
	writeJSON(w, http.StatusCreated, toAuthDTO(res))
}

// login godoc
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginDTO true "Login request"
// @Success 200 {object} dto.AuthResponseDTO
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 401 {string} string "Invalid email or password"
// @Router /auth/login [post]
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	res, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err, "log in")
		return
	}
	writeJSON(w, http.StatusOK, toAuthDTO(res))
}

// oauthLogin godoc
// @Summary Start an OAuth sign-in
// @Tags auth
// @Param provider path string true "github or google"
// @Success 302
// @Failure 404 {string} string "Oauth provider not found"
// @Router /auth/oauth/{provider}/login [get]
func (h *AuthHandler) oauthLogin(w http.ResponseWriter, r *http.Request) {
	url, err := h.authService.OAuthLoginURL(chi.URLParam(r, "provider"))
	if err != nil {
		writeServiceError(w, h.logger, err, "start oauth login")
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// oauthCallback godoc
// @Summary Complete an OAuth sign-in
// @Tags auth
// @Produce json
// @Param provider path string true "github or google"
// @Param code query string true "Authorization code"
// @Param state query string true "Signed state"
// @Success 200 {object} dto.AuthResponseDTO
// @Failure 401 {string} string "Invalid state or exchange failure"
// @Failure 404 {string} string "Oauth provider not found"
// @Router /auth/oauth/{provider}/callback [get]
func (h *AuthHandler) oauthCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		http.Error(w, "OAuth sign-in was not completed: "+e, http.StatusUnauthorized)
		return
	}
	res, err := h.authService.OAuthCallback(r.Context(), chi.URLParam(r, "provider"), q.Get("code"), q.Get("state"))
	if err != nil {
		writeServiceError(w, h.logger, err, "complete oauth login")
		return
	}
	writeJSON(w, http.StatusOK, toAuthDTO(res))
}
