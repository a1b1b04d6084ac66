package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/medibot-org/medibot-backend/internal/logger"
  "github.com/medibot-org/medibot-backend/internal/services"
)

type MeHandler struct {
  log       *logger.Logger
  meService services.MeService
}

func NewMeHandler(baseLog *logger.Logger, meService services.MeService) *MeHandler {
  handlerLog := baseLog.With("handler", "MeHandler")
  return &MeHandler{log: handlerLog, meService: meService}
}

func (h *MeHandler) GetProfile(c *gin.Context) {
  user, err := h.meService.GetMe(c.Request.Context())
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *MeHandler) UpdateProfile(c *gin.Context) {
  var req struct {
    Name        *string  `json:"name"`
    Age         *int     `json:"age"`
    BMI         *float64 `json:"bmi"`
    Gender      *string  `json:"gender"`
    NewPassword *string  `json:"new_password"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  update := &services.ProfileUpdate{
    Name:        req.Name,
    Age:         req.Age,
    BMI:         req.BMI,
    Gender:      req.Gender,
    NewPassword: req.NewPassword,
  }
  user, err := h.meService.UpdateMe(c.Request.Context(), update)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{
    "message": "Profile updated successfully",
    "user":    user,
  })
}
