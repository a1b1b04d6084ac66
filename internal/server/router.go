package server

import (
  "time"

  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"

  "github.com/medibot-org/medibot-backend/internal/handlers"
  "github.com/medibot-org/medibot-backend/internal/logger"
  "github.com/medibot-org/medibot-backend/internal/middleware"
)

type RouterConfig struct {
  Log            *logger.Logger
  AuthHandler    *handlers.AuthHandler
  MeHandler      *handlers.MeHandler
  PredictHandler *handlers.PredictHandler
  ChatHandler    *handlers.ChatHandler
  AuthMiddleware *middleware.AuthMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  r := gin.Default()

  r.Use(cors.New(cors.Config{
    AllowOrigins:     []string{"*"},
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
    AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
    ExposeHeaders:    []string{"Content-Length"},
    AllowCredentials: false,
    MaxAge:           12 * time.Hour,
  }))

  r.GET("/health", cfg.PredictHandler.Health)
  r.GET("/get_symptoms", cfg.PredictHandler.GetSymptoms)

  auth := r.Group("/auth")
  {
    auth.POST("/signup", cfg.AuthHandler.Signup)
    auth.POST("/login", cfg.AuthHandler.Login)
    auth.POST("/refresh", cfg.AuthHandler.Refresh)
    auth.POST("/logout", cfg.AuthMiddleware.RequireAuth(), cfg.AuthHandler.Logout)
  }

  protected := r.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  {
    protected.GET("/profile", cfg.MeHandler.GetProfile)
    protected.PUT("/profile", cfg.MeHandler.UpdateProfile)
    protected.POST("/predict", cfg.PredictHandler.Predict)
    protected.POST("/chat-message", cfg.ChatHandler.SendMessage)
    protected.GET("/chat-history", cfg.ChatHandler.History)
    protected.POST("/update-confidence", cfg.ChatHandler.UpdateConfidence)
  }

  return r
}
