package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/judiguard/judi_guard_server/config"
	"github.com/judiguard/judi_guard_server/internal/api/middleware"
	"github.com/judiguard/judi_guard_server/internal/model/dto"
	"github.com/judiguard/judi_guard_server/internal/pkg/response"
	"github.com/judiguard/judi_guard_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	cfg         *config.Config
}

func NewAuthHandler(authService *service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// Register creates an account and mails a verification code.
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailExists):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrUsernameExists):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "registered, check your email for the verification code", resp)
}

// VerifyOtp confirms the emailed verification code.
// POST /api/v1/auth/verify-otp
func (h *AuthHandler) VerifyOtp(c *gin.Context) {
	var req dto.VerifyOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.authService.VerifyOtp(&req); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOtp):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrAlreadyVerified):
			response.DuplicateError(c, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "email verified", nil)
}

// ResendOtp issues a fresh verification code.
// POST /api/v1/auth/resend-otp
func (h *AuthHandler) ResendOtp(c *gin.Context) {
	var req dto.ResendOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.authService.ResendOtp(&req); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrAlreadyVerified):
			response.DuplicateError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "verification code sent", nil)
}

// Login exchanges credentials for a JWT.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.AuthError(c, err.Error())
		case errors.Is(err, service.ErrPasswordlessUser):
			response.AuthError(c, err.Error())
		case errors.Is(err, service.ErrEmailNotVerified):
			response.AuthError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "logged in", resp)
}

// ForgotPassword mails a reset link. Always succeeds so the endpoint
// cannot be used to probe registered emails.
// POST /api/v1/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.authService.ForgotPassword(&req); err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "if the email is registered, a reset link has been sent", nil)
}

// ResetPassword consumes a reset token and sets a new password.
// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.authService.ResetPassword(&req); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidResetToken):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "password updated", nil)
}

// GoogleAuth starts the Google sign-in flow.
// GET /api/v1/auth/google
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	url, err := h.authService.GoogleAuthURL(c.Request.Context())
	if err != nil {
		response.ServerError(c, "")
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback finishes Google sign-in and redirects to the frontend
// with the session token.
// GET /api/v1/auth/google/callback
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		response.ParamError(c, "missing state or code")
		return
	}

	resp, err := h.authService.GoogleCallback(c.Request.Context(), state, code)
	if err != nil {
		c.Redirect(http.StatusTemporaryRedirect,
			fmt.Sprintf("%s/auth/error", h.cfg.Frontend.BaseURL))
		return
	}

	c.Redirect(http.StatusTemporaryRedirect,
		fmt.Sprintf("%s/auth/callback?token=%s", h.cfg.Frontend.BaseURL, resp.Token))
}

// YouTubeConnect starts the YouTube channel linking flow.
// GET /api/v1/auth/youtube
func (h *AuthHandler) YouTubeConnect(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	url, err := h.authService.YouTubeConnectURL(c.Request.Context(), userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"auth_url": url})
}

// YouTubeCallback finishes channel linking and redirects to the
// frontend settings page.
// GET /api/v1/auth/youtube/callback
func (h *AuthHandler) YouTubeCallback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		response.ParamError(c, "missing state or code")
		return
	}

	if _, err := h.authService.YouTubeCallback(c.Request.Context(), state, code); err != nil {
		c.Redirect(http.StatusTemporaryRedirect,
			fmt.Sprintf("%s/settings?youtube=error", h.cfg.Frontend.BaseURL))
		return
	}

	c.Redirect(http.StatusTemporaryRedirect,
		fmt.Sprintf("%s/settings?youtube=connected", h.cfg.Frontend.BaseURL))
}

// DisconnectYouTube drops the stored channel tokens.
// DELETE /api/v1/auth/youtube
func (h *AuthHandler) DisconnectYouTube(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	if err := h.authService.DisconnectYouTube(c.Request.Context(), userID); err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "youtube disconnected", nil)
}
