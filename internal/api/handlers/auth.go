package handlers

import (
	"net/http"

	"github.com/dom/uptask-server/internal/api/middleware"
	"github.com/dom/uptask-server/internal/domain"
	"github.com/dom/uptask-server/internal/service"
	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type CreateAccountRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type TokenRequest struct {
	Token string `json:"token"`
}

type EmailRequest struct {
	Email string `json:"email"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type NewPasswordRequest struct {
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type ProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ChangePasswordRequest struct {
	CurrentPassword      string `json:"current_password"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type PasswordRequest struct {
	Password string `json:"password"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:    u.ID.String(),
		Name:  u.Name,
		Email: u.Email,
	}
}

func (h *AuthHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "handlers.CreateAccount", err)
		return
	}

	if err := firstError(
		required("name", req.Name),
		validEmail(req.Email),
		validNewPassword(req.Password, req.PasswordConfirmation),
	); err != nil {
		writeError(w, "handlers.CreateAccount", err)
		return
	}

	_, err := h.authService.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, "handlers.CreateAccount", err)
		return
	}

	writeMessage(w, http.StatusCreated, "account created, check your email to confirm it")
}

func (h *AuthHandler) ConfirmAccount(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "handlers.ConfirmAccount", err)
		return
	}
	if err := required("token", req.Token); err != nil {
		writeError(w, "handlers.ConfirmAccount", err)
		return
	}

	if _, err := h.authService.ConfirmAccount(r.Context(), req.Token); err != nil {
		writeError(w, "handlers.ConfirmAccount", err)
		return
	}

	writeMessage(w, http.StatusOK, "account confirmed successfully")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "handlers.Login", err)
		return
	}
	if err := firstError(validEmail(req.Email), required("password", req.Password)); err != nil {
		writeError(w, "handlers.Login", err)
		return
	}

	token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, "handlers.Login", err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token})
}

func (h *AuthHandler) RequestConfirmationCode(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "handlers.RequestConfirmationCode", err)
		return
	}
	if err := validEmail(req.Email); err != nil {
		writeError(w, "handlers.RequestConfirmationCode", err)
		return
	}

	if err := h.authService.RequestConfirmationCode(r.Context(), req.Email); err != nil {
		writeError(w, "handlers.RequestConfirmationCode", err)
		return
	}

	writeMessage(w, http.StatusOK, "a new token was sent to your email")
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "handlers.ForgotPassword", err)
		return
	}
	if err := validEmail(req.Email); err != nil {
		writeError(w, "handlers.ForgotPassword", err)
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), req.Email); err != nil {
		writeError(w, "handlers.ForgotPassword", err)
		return
	}

	writeMessage(w, http.StatusOK, "check your email for instructions")
}

func (h *AuthHandler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "handlers.ValidateToken", err)
		return
	}
	if err := required("token", req.Token); err != nil {
		writeError(w, "handlers.ValidateToken", err)
		return
	}

	if err := h.authService.ValidateResetToken(r.Context(), req.Token); err != nil {
		writeError(w, "handlers.ValidateToken", err)
		return
	}

	writeMessage(w, http.StatusOK, "valid token, set your new password")
}

func (h *AuthHandler) UpdatePasswordWithToken(w http.ResponseWriter, r *http.Request) {
	var req NewPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "handlers.UpdatePasswordWithToken", err)
		return
	}
	if err := validNewPassword(req.Password, req.PasswordConfirmation); err != nil {
		writeError(w, "handlers.UpdatePasswordWithToken", err)
		return
	}

	token := chi.URLParam(r, "token")
	if err := h.authService.UpdatePasswordWithToken(r.Context(), token, req.Password); err != nil {
		writeError(w, "handlers.UpdatePasswordWithToken", err)
		return
	}

	writeMessage(w, http.StatusOK, "password updated successfully")
}

func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authorized"})
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req ProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "handlers.UpdateProfile", err)
		return
	}
	if err := firstError(required("name", req.Name), validEmail(req.Email)); err != nil {
		writeError(w, "handlers.UpdateProfile", err)
		return
	}

	_, err := h.authService.UpdateProfile(r.Context(), userID, service.ProfileInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		writeError(w, "handlers.UpdateProfile", err)
		return
	}

	writeMessage(w, http.StatusOK, "profile updated successfully")
}

func (h *AuthHandler) UpdateCurrentPassword(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "handlers.UpdateCurrentPassword", err)
		return
	}
	if err := firstError(
		required("current_password", req.CurrentPassword),
		validNewPassword(req.Password, req.PasswordConfirmation),
	); err != nil {
		writeError(w, "handlers.UpdateCurrentPassword", err)
		return
	}

	if err := h.authService.UpdateCurrentPassword(r.Context(), userID, req.CurrentPassword, req.Password); err != nil {
		writeError(w, "handlers.UpdateCurrentPassword", err)
		return
	}

	writeMessage(w, http.StatusOK, "password updated successfully")
}

func (h *AuthHandler) CheckPassword(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req PasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "handlers.CheckPassword", err)
		return
	}
	if err := required("password", req.Password); err != nil {
		writeError(w, "handlers.CheckPassword", err)
		return
	}

	if err := h.authService.CheckPassword(r.Context(), userID, req.Password); err != nil {
		writeError(w, "handlers.CheckPassword", err)
		return
	}

	writeMessage(w, http.StatusOK, "correct password")
}
