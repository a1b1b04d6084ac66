package main

import (
  "context"
  "log"
  "os"
  "time"

  "github.com/joho/godotenv"

  "github.com/medibot-org/medibot-backend/internal/db"
  "github.com/medibot-org/medibot-backend/internal/handlers"
  "github.com/medibot-org/medibot-backend/internal/logger"
  "github.com/medibot-org/medibot-backend/internal/middleware"
  "github.com/medibot-org/medibot-backend/internal/model"
  "github.com/medibot-org/medibot-backend/internal/repos"
  "github.com/medibot-org/medibot-backend/internal/server"
  "github.com/medibot-org/medibot-backend/internal/services"
  "github.com/medibot-org/medibot-backend/internal/utils"
)

func main() {
  if err := godotenv.Load(); err != nil {
    log.Println("No .env file found, relying on the environment")
  }

  mode := os.Getenv("LOG_MODE")
  if mode == "" {
    mode = "development"
  }
  myLogger, err := logger.New(mode)
  if err != nil {
    log.Fatalf("failed to initialize logger: %v", err)
  }
  defer myLogger.Sync()

  postgresService, err := db.NewPostgresService(myLogger)
  if err != nil {
    myLogger.Error("failed to connect to postgres", "error", err)
    os.Exit(1)
  }
  if err := postgresService.AutoMigrateAll(); err != nil {
    myLogger.Error("failed to run migrations", "error", err)
    os.Exit(1)
  }
  if err := postgresService.EnsureConfidenceColumn(); err != nil {
    myLogger.Error("failed to ensure confidence column", "error", err)
    os.Exit(1)
  }
  gormDB := postgresService.DB()

  vocabPath := utils.GetEnv("SYMPTOM_VOCAB_PATH", "data/symptoms.csv", myLogger)
  vocab, err := model.LoadVocabulary(vocabPath)
  if err != nil {
    myLogger.Error("failed to load symptom vocabulary", "path", vocabPath, "error", err)
    os.Exit(1)
  }
  myLogger.Info("Successfully loaded symptom vocabulary :)", "symptoms", vocab.Len())

  mappingPath := utils.GetEnv("DISEASE_MAPPING_PATH", "data/diseases.csv", myLogger)
  mapping, err := model.LoadDiseaseMapping(mappingPath)
  if err != nil {
    myLogger.Error("failed to load disease mapping", "path", mappingPath, "error", err)
    os.Exit(1)
  }
  myLogger.Info("Successfully loaded disease mapping :)", "diseases", mapping.Len())

  redisClient := db.NewRedisClient(myLogger, os.Getenv("REDIS_ADDRESS"), os.Getenv("REDIS_PASSWORD"))

  userRepo := repos.NewUserRepo(gormDB, myLogger)
  refreshTokenRepo := repos.NewRefreshTokenRepo(gormDB, myLogger)
  chatRepo := repos.NewChatRepo(gormDB, myLogger)

  modelName := utils.GetEnv("MODEL_NAME", "disease_classifier", myLogger)
  classifierService, err := services.NewClassifierService(myLogger, utils.GetEnv("MODEL_SERVER_URL", "http://localhost:8501", myLogger), modelName, redisClient)
  if err != nil {
    myLogger.Error("failed to create classifier service", "error", err)
    os.Exit(1)
  }

  llmService, err := services.NewGeminiService(context.Background(), myLogger, os.Getenv("GEMINI_API_KEY"), os.Getenv("GEMINI_MODEL"))
  if err != nil {
    myLogger.Error("failed to create llm service", "error", err)
    os.Exit(1)
  }
  defer llmService.Close()

  jwtSecret := os.Getenv("JWT_SECRET")
  if jwtSecret == "" {
    myLogger.Error("JWT_SECRET must be set")
    os.Exit(1)
  }
  accessTTL := time.Duration(utils.GetEnvAsInt("ACCESS_TOKEN_TTL_MINUTES", 30, myLogger)) * time.Minute
  refreshTTL := time.Duration(utils.GetEnvAsInt("REFRESH_TOKEN_TTL_DAYS", 7, myLogger)) * 24 * time.Hour

  authService := services.NewAuthService(gormDB, myLogger, userRepo, refreshTokenRepo, jwtSecret, accessTTL, refreshTTL)
  meService := services.NewMeService(gormDB, myLogger, userRepo)
  predictionService := services.NewPredictionService(gormDB, myLogger, vocab, mapping, classifierService, chatRepo)
  confidenceService := services.NewConfidenceService(gormDB, myLogger, vocab, classifierService, chatRepo)
  chatService := services.NewChatService(gormDB, myLogger, chatRepo, llmService, confidenceService)

  authHandler := handlers.NewAuthHandler(myLogger, authService)
  meHandler := handlers.NewMeHandler(myLogger, meService)
  predictHandler := handlers.NewPredictHandler(myLogger, predictionService, vocab, modelName)
  chatHandler := handlers.NewChatHandler(myLogger, chatService, confidenceService)
  authMiddleware := middleware.NewAuthMiddleware(myLogger, authService)

  router := server.NewRouter(server.RouterConfig{
    Log:            myLogger,
    AuthHandler:    authHandler,
    MeHandler:      meHandler,
    PredictHandler: predictHandler,
    ChatHandler:    chatHandler,
    AuthMiddleware: authMiddleware,
  })

  port := utils.GetEnv("PORT", "8080", myLogger)
  myLogger.Info("Starting HTTP server :)", "port", port)
  if err := router.Run(":" + port); err != nil {
    myLogger.Error("server exited", "error", err)
    os.Exit(1)
  }
}
