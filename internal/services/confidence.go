package services

import (
  "context"
  "errors"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/medibot-org/medibot-backend/internal/errordata"
  "github.com/medibot-org/medibot-backend/internal/logger"
  "github.com/medibot-org/medibot-backend/internal/model"
  "github.com/medibot-org/medibot-backend/internal/repos"
  "github.com/medibot-org/medibot-backend/internal/requestdata"
  "github.com/medibot-org/medibot-backend/internal/types"
)

const (
  // minProbability keeps a formatted confidence from collapsing to
  // "0.00%" when the classifier is very unsure.
  minProbability = 0.001

  // PlaceholderConfidence is shown for chats whose confidence could not
  // be computed during a listing. It is never persisted.
  PlaceholderConfidence = "0.10%"

  // maxComputesPerListing bounds how many classifier calls a single
  // history listing may trigger.
  maxComputesPerListing = 5
)

// FormatConfidence renders a probability as a percentage with two decimals,
// e.g. 0.8423 becomes "84.23%".
func FormatConfidence(prob float64) string {
  return fmt.Sprintf("%.2f%%", prob*100)
}

// IsValidConfidence reports whether a stored confidence is usable. Absent,
// empty and zero-valued strings all count as invalid.
func IsValidConfidence(confidence *string) bool {
  if confidence == nil {
    return false
  }
  switch *confidence {
  case "", "0%", "0.00%":
    return false
  }
  return true
}

// ConfidenceService lazily backfills confidence values on stored chats.
type ConfidenceService interface {
  ResolveForListing(ctx context.Context, chats []*types.Chat, forceRecompute bool) []*string
  Recompute(ctx context.Context, chatID uuid.UUID) (string, error)
}

type confidenceService struct {
  db         *gorm.DB
  log        *logger.Logger
  vocab      *model.Vocabulary
  classifier ClassifierService
  chatRepo   repos.ChatRepo
}

func NewConfidenceService(
  db *gorm.DB,
  baseLog *logger.Logger,
  vocab *model.Vocabulary,
  classifier ClassifierService,
  chatRepo repos.ChatRepo,
) ConfidenceService {
  serviceLog := baseLog.With("service", "ConfidenceService")
  return &confidenceService{
    db:         db,
    log:        serviceLog,
    vocab:      vocab,
    classifier: classifier,
    chatRepo:   chatRepo,
  }
}

// ResolveForListing returns one confidence per chat, in order. At most
// maxComputesPerListing chats get a fresh classifier run per call; the rest
// fall back to the placeholder. Forced recomputes bypass the budget.
func (cs *confidenceService) ResolveForListing(ctx context.Context, chats []*types.Chat, forceRecompute bool) []*string {
  budget := maxComputesPerListing
  out := make([]*string, len(chats))
  for i, chat := range chats {
    out[i] = cs.resolveOne(ctx, chat, forceRecompute, &budget)
  }
  return out
}

func (cs *confidenceService) resolveOne(ctx context.Context, chat *types.Chat, force bool, budget *int) *string {
  if !force && IsValidConfidence(chat.Confidence) {
    return chat.Confidence
  }
  symptoms := chat.SymptomList()
  if len(symptoms) == 0 {
    if IsValidConfidence(chat.Confidence) {
      return chat.Confidence
    }
    return nil
  }
  if !force {
    if *budget <= 0 {
      placeholder := PlaceholderConfidence
      return &placeholder
    }
    *budget--
  }

  confidence, err := cs.compute(ctx, symptoms)
  if err != nil {
    cs.log.Warn("Confidence recompute failed, using placeholder", "chatID", chat.ID, "error", err)
    placeholder := PlaceholderConfidence
    return &placeholder
  }
  if err := cs.chatRepo.UpdateConfidence(ctx, nil, chat.ID, confidence); err != nil {
    cs.log.Warn("Confidence write-back failed", "chatID", chat.ID, "error", err)
  }
  chat.Confidence = &confidence
  return &confidence
}

// Recompute forces a fresh confidence for a single chat owned by the caller
// and persists it.
func (cs *confidenceService) Recompute(ctx context.Context, chatID uuid.UUID) (string, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return "", errordata.Auth("missing request identity")
  }
  chat, err := cs.chatRepo.GetByID(ctx, nil, rd.UserID, chatID)
  if err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return "", errordata.NotFound("chat not found")
    }
    return "", errordata.Storage("failed to load chat", err)
  }
  symptoms := chat.SymptomList()
  if len(symptoms) == 0 {
    return "", errordata.Validation("no symptoms stored for this chat")
  }
  confidence, err := cs.compute(ctx, symptoms)
  if err != nil {
    return "", err
  }
  if err := cs.chatRepo.UpdateConfidence(ctx, nil, chat.ID, confidence); err != nil {
    return "", errordata.Storage("failed to store confidence", err)
  }
  cs.log.Info("Successfully recomputed confidence :)", "chatID", chat.ID, "confidence", confidence)
  return confidence, nil
}

func (cs *confidenceService) compute(ctx context.Context, symptoms []string) (string, error) {
  vector := cs.vocab.Vectorize(symptoms)
  dist, err := cs.classifier.Classify(ctx, vector)
  if err != nil {
    return "", err
  }
  _, prob := argmax(dist)
  if prob < minProbability {
    prob = minProbability
  }
  return FormatConfidence(prob), nil
}
