package handlers

import (
	"errors"
	"net/http"

	"github.com/gabaylakad/backend/internal/api/middleware"
	"github.com/gabaylakad/backend/internal/domain"
	"github.com/gabaylakad/backend/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type RegisterRequest struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	PhoneNumber     string `json:"phone_number" validate:"required"`
	ImpairmentLevel string `json:"impairment_level" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	BlindFullName   string `json:"blind_full_name" validate:"required"`
	BlindAge        int    `json:"blind_age" validate:"required,gt=0"`
	SerialNumber    string `json:"serial_number" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

type UserResponse struct {
	ID              string `json:"id"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber"`
	ImpairmentLevel string `json:"impairmentLevel"`
	BlindFullName   string `json:"blindFullName"`
	BlindAge        int    `json:"blindAge"`
	Verified        bool   `json:"verified"`
}

type TokenResponse struct {
	Message      string        `json:"message"`
	Token        *string       `json:"token"`
	RefreshToken string        `json:"refreshToken,omitempty"`
	User         *UserResponse `json:"user,omitempty"`
}

func toUserResponse(user *domain.User) *UserResponse {
	return &UserResponse{
		ID:              user.ID.String(),
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		Email:           user.Email,
		PhoneNumber:     user.PhoneNumber,
		ImpairmentLevel: user.ImpairmentLevel,
		BlindFullName:   user.BlindFullName,
		BlindAge:        user.BlindAge,
		Verified:        user.Verified,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.authService.Register(r.Context(), service.RegisterInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		PhoneNumber:     req.PhoneNumber,
		ImpairmentLevel: req.ImpairmentLevel,
		Password:        req.Password,
		BlindFullName:   req.BlindFullName,
		BlindAge:        req.BlindAge,
		SerialNumber:    req.SerialNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSerialTaken):
			writeMessage(w, http.StatusConflict, "Serial number is already registered to another user")
		case errors.Is(err, domain.ErrEmailTaken):
			writeMessage(w, http.StatusConflict, "Email is already registered")
		default:
			zap.L().Error("register failed", zap.Error(err))
			writeStoreError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Registration successful. Check your email for the verification code.",
		"user":    toUserResponse(user),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, TokenResponse{Message: "User not found!", Token: nil})
		case errors.Is(err, domain.ErrNotVerified):
			writeJSON(w, http.StatusForbidden, TokenResponse{Message: "Please verify your email first!", Token: nil})
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeJSON(w, http.StatusUnauthorized, TokenResponse{Message: "Incorrect password!", Token: nil})
		default:
			zap.L().Error("login failed", zap.Error(err))
			writeStoreError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{
		Message:      "Login successful",
		Token:        &result.AccessToken,
		RefreshToken: result.RefreshToken,
		User:         toUserResponse(result.User),
	})
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.authService.VerifyEmail(r.Context(), req.Email, req.Code); err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			writeMessage(w, http.StatusNotFound, "User not found")
		case errors.Is(err, domain.ErrCodeInvalid):
			writeMessage(w, http.StatusBadRequest, "Invalid verification code")
		default:
			writeStoreError(w, err)
		}
		return
	}

	writeMessage(w, http.StatusOK, "Email verified")
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), req.Email); err != nil {
		writeStoreError(w, err)
		return
	}

	// Same response whether or not the email exists.
	writeMessage(w, http.StatusOK, "If the email is registered, a reset token has been sent")
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, domain.ErrResetInvalid) {
			writeMessage(w, http.StatusBadRequest, "Reset token is invalid or expired")
			return
		}
		writeStoreError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Password has been reset")
}

func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRefreshInvalid):
			writeJSON(w, http.StatusUnauthorized, TokenResponse{Message: "Refresh token invalid or expired", Token: nil})
		case errors.Is(err, domain.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, TokenResponse{Message: "User not found!", Token: nil})
		default:
			writeStoreError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{
		Message:      "Token refreshed",
		Token:        &result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	raw, ok := middleware.GetAccessToken(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Missing token")
		return
	}

	var req LogoutRequest
	// Body is optional; a bare logout still denylists the access token.
	_ = decodeOptionalBody(r, &req)

	if err := h.authService.Logout(r.Context(), raw, req.RefreshToken); err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingToken):
			writeMessage(w, http.StatusUnauthorized, "Missing token")
		case errors.Is(err, domain.ErrInvalidToken):
			writeMessage(w, http.StatusBadRequest, "Token could not be decoded")
		default:
			writeStoreError(w, err)
		}
		return
	}

	writeMessage(w, http.StatusOK, "Logged out")
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ChangePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.authService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			writeMessage(w, http.StatusNotFound, "User not found")
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeMessage(w, http.StatusUnauthorized, "Current password is incorrect")
		default:
			writeStoreError(w, err)
		}
		return
	}

	writeMessage(w, http.StatusOK, "Password changed")
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}
