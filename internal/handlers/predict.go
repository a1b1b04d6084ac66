package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/medibot-org/medibot-backend/internal/logger"
  "github.com/medibot-org/medibot-backend/internal/model"
  "github.com/medibot-org/medibot-backend/internal/services"
)

const symptomSearchLimit = 10

type PredictHandler struct {
  log               *logger.Logger
  predictionService services.PredictionService
  vocab             *model.Vocabulary
  modelName         string
}

func NewPredictHandler(baseLog *logger.Logger, predictionService services.PredictionService, vocab *model.Vocabulary, modelName string) *PredictHandler {
  handlerLog := baseLog.With("handler", "PredictHandler")
  return &PredictHandler{
    log:               handlerLog,
    predictionService: predictionService,
    vocab:             vocab,
    modelName:         modelName,
  }
}

// GetSymptoms returns at most symptomSearchLimit vocabulary entries. The
// empty query matches everything, so callers still get the first entries in
// vocabulary order.
func (h *PredictHandler) GetSymptoms(c *gin.Context) {
  symptoms := h.vocab.Search(c.Query("query"), symptomSearchLimit)
  c.JSON(http.StatusOK, gin.H{"symptoms": symptoms})
}

func (h *PredictHandler) Predict(c *gin.Context) {
  var req struct {
    Symptoms []string `json:"symptoms"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  result, err := h.predictionService.Predict(c.Request.Context(), req.Symptoms)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{
    "disease":        result.Disease,
    "confidence":     result.Confidence,
    "symptoms_count": result.SymptomsCount,
    "chat_id":        result.ChatID,
  })
}

func (h *PredictHandler) Health(c *gin.Context) {
  c.JSON(http.StatusOK, gin.H{
    "status":          "healthy",
    "model":           h.modelName,
    "symptoms_loaded": h.vocab.Len(),
  })
}
