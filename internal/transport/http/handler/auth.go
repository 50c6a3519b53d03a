package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"legalai-assistant/internal/app"
	"legalai-assistant/internal/transport/http/middleware"
	"legalai-assistant/internal/transport/http/response"
)

// One message for every authentication failure, whatever the cause.
const authFailedMessage = "Authentication failed. Please check your credentials."

type AuthHandler struct {
	authService *app.AuthService
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignupRequest carries the email field login never sends.
type SignupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func NewAuthHandler(authService *app.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), app.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.authError(c, err)
		return
	}

	response.OK(c, gin.H{
		"token": result.Token,
		"user":  result.User,
	})
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.authService.Register(c.Request.Context(), app.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.authError(c, err)
		return
	}

	response.OK(c, gin.H{
		"token": result.Token,
		"user":  result.User,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "session not found")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), session.Token); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "sign out failed")
		return
	}

	response.OK(c, gin.H{"signed_out": true})
}

func (h *AuthHandler) Me(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "session not found")
		return
	}

	response.OK(c, gin.H{
		"id":       session.UserID,
		"username": session.Username,
		"email":    session.Email,
	})
}

func (h *AuthHandler) authError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrAuthenticationFailed):
		response.Error(c, http.StatusUnauthorized, response.CodeAuthFailed, authFailedMessage)
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "authentication request failed")
	}
}
