package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/medibot-org/medibot-backend/internal/logger"
  "github.com/medibot-org/medibot-backend/internal/services"
  "github.com/medibot-org/medibot-backend/internal/types"
)

type AuthHandler struct {
  log         *logger.Logger
  authService services.AuthService
}

func NewAuthHandler(baseLog *logger.Logger, authService services.AuthService) *AuthHandler {
  handlerLog := baseLog.With("handler", "AuthHandler")
  return &AuthHandler{log: handlerLog, authService: authService}
}

func (h *AuthHandler) Signup(c *gin.Context) {
  var req struct {
    Name     string  `json:"name"`
    Email    string  `json:"email"`
    Password string  `json:"password"`
    Age      int     `json:"age"`
    BMI      float64 `json:"bmi"`
    Gender   string  `json:"gender"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  user := &types.User{
    Name:   req.Name,
    Email:  req.Email,
    Age:    req.Age,
    BMI:    req.BMI,
    Gender: req.Gender,
  }
  user, accessToken, refreshToken, err := h.authService.Register(c.Request.Context(), user, req.Password)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{
    "message":       "User created successfully",
    "user":          user,
    "access_token":  accessToken,
    "refresh_token": refreshToken,
    "token_type":    "bearer",
  })
}

func (h *AuthHandler) Login(c *gin.Context) {
  var req struct {
    Email    string `json:"email"`
    Password string `json:"password"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  user, accessToken, refreshToken, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{
    "message":       "Login successful",
    "user":          user,
    "access_token":  accessToken,
    "refresh_token": refreshToken,
    "token_type":    "bearer",
  })
}

func (h *AuthHandler) Refresh(c *gin.Context) {
  var req struct {
    RefreshToken string `json:"refresh_token"`
  }
  if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
    c.JSON(http.StatusBadRequest, gin.H{"error": "refresh_token is required"})
    return
  }
  accessToken, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{
    "access_token": accessToken,
    "token_type":   "bearer",
  })
}

func (h *AuthHandler) Logout(c *gin.Context) {
  var req struct {
    RefreshToken string `json:"refresh_token"`
  }
  if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
    c.JSON(http.StatusBadRequest, gin.H{"error": "refresh_token is required"})
    return
  }
  if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
