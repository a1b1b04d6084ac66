package services

import (
  "context"
  "encoding/json"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/medibot-org/medibot-backend/internal/errordata"
  "github.com/medibot-org/medibot-backend/internal/logger"
  "github.com/medibot-org/medibot-backend/internal/model"
  "github.com/medibot-org/medibot-backend/internal/repos"
  "github.com/medibot-org/medibot-backend/internal/requestdata"
  "github.com/medibot-org/medibot-backend/internal/types"
)

// PredictionResult is what a prediction run produces: the mapped disease
// label, the formatted confidence and the chat record it was stored under.
type PredictionResult struct {
  Disease       string
  Confidence    string
  SymptomsCount int
  ChatID        uuid.UUID
}

type PredictionService interface {
  Predict(ctx context.Context, symptoms []string) (*PredictionResult, error)
}

type predictionService struct {
  db         *gorm.DB
  log        *logger.Logger
  vocab      *model.Vocabulary
  mapping    *model.DiseaseMapping
  classifier ClassifierService
  chatRepo   repos.ChatRepo
}

func NewPredictionService(
  db *gorm.DB,
  baseLog *logger.Logger,
  vocab *model.Vocabulary,
  mapping *model.DiseaseMapping,
  classifier ClassifierService,
  chatRepo repos.ChatRepo,
) PredictionService {
  serviceLog := baseLog.With("service", "PredictionService")
  return &predictionService{
    db:         db,
    log:        serviceLog,
    vocab:      vocab,
    mapping:    mapping,
    classifier: classifier,
    chatRepo:   chatRepo,
  }
}

func (ps *predictionService) Predict(ctx context.Context, symptoms []string) (*PredictionResult, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return nil, errordata.Auth("missing request identity")
  }
  if len(symptoms) == 0 {
    return nil, errordata.Validation("at least one symptom must be provided")
  }
  if invalid := ps.vocab.Invalid(symptoms); len(invalid) > 0 {
    ps.log.Warn("Prediction requested with unknown symptoms", "invalid", invalid)
    return nil, errordata.Validation("invalid symptoms", invalid...)
  }

  vector := ps.vocab.Vectorize(symptoms)
  dist, err := ps.classifier.Classify(ctx, vector)
  if err != nil {
    return nil, err
  }
  class, prob := argmax(dist)
  if prob < minProbability {
    prob = minProbability
  }
  disease, err := ps.mapping.DiseaseFor(class)
  if err != nil {
    ps.log.Error("Classifier produced a class with no disease mapping", "class", class)
    return nil, errordata.Collaborator("unknown disease class", err)
  }
  confidence := FormatConfidence(prob)

  symptomsJSON, err := json.Marshal(symptoms)
  if err != nil {
    return nil, errordata.Storage("failed to encode symptoms", err)
  }
  chat := &types.Chat{
    UserID:     rd.UserID,
    Messages:   datatypes.JSON([]byte("{}")),
    Disease:    &disease,
    Symptoms:   datatypes.JSON(symptomsJSON),
    Confidence: &confidence,
    CreatedAt:  time.Now(),
  }
  chat, err = ps.chatRepo.Create(ctx, nil, chat)
  if err != nil {
    return nil, errordata.Storage("failed to store prediction", err)
  }
  ps.log.Info("Successfully ran prediction :)", "chatID", chat.ID, "disease", disease, "confidence", confidence)
  return &PredictionResult{
    Disease:       disease,
    Confidence:    confidence,
    SymptomsCount: len(symptoms),
    ChatID:        chat.ID,
  }, nil
}

// argmax returns the index and value of the largest entry. The caller
// guarantees a non-empty distribution.
func argmax(dist []float64) (int, float64) {
  best := 0
  for i, v := range dist {
    if v > dist[best] {
      best = i
    }
  }
  return best, dist[best]
}
