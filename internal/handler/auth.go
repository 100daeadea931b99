package handler

import (
	"net/http"

	"github.com/aidar/team-scheduler/internal/domain"
	"github.com/aidar/team-scheduler/internal/middleware"
	"github.com/aidar/team-scheduler/internal/service"
)

// AuthHandler обрабатывает эндпоинты аутентификации
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler создает новый AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterRequest представляет тело запроса на регистрацию
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Timezone string `json:"timezone"`
}

// RegisterResponse представляет ответ на регистрацию
type RegisterResponse struct {
	User  *domain.Member `json:"user"`
	Token *service.Token `json:"token"`
}

// LoginRequest представляет тело запроса на логин
type LoginRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// VerifyRequest позволяет передать токен в теле вместо заголовка
type VerifyRequest struct {
	Token string `json:"token"`
}

// ProfileRequest представляет тело запроса на изменение профиля
type ProfileRequest struct {
	Name     *string `json:"name"`
	Timezone *string `json:"timezone"`
}

// Register обрабатывает POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	member, token, err := h.authService.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Timezone: req.Timezone,
	})
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, RegisterResponse{User: member, Token: token})
}

// Login обрабатывает POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeBody(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	token, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, token)
}

// Logout обрабатывает POST /auth/logout. Токены не хранятся на сервере,
// поэтому клиенту достаточно забыть токен.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "logged out"})
}

// Verify обрабатывает POST /auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.BearerToken(r)
	if !ok {
		var req VerifyRequest
		if err := decodeOptionalBody(r, &req); err != nil {
			HandleError(w, r, err)
			return
		}
		token = req.Token
	}
	if token == "" {
		HandleError(w, r, domain.ErrInvalidToken)
		return
	}

	verification, err := h.authService.Verify(token)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, verification)
}

// Profile обрабатывает GET /auth/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	member, err := h.authService.Profile(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, member)
}

// UpdateProfile обрабатывает PUT /auth/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := decodeBody(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	member, err := h.authService.UpdateProfile(r.Context(), middleware.GetUserIDFromContext(r.Context()), service.ProfileUpdate{
		Name:     req.Name,
		Timezone: req.Timezone,
	})
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, member)
}
