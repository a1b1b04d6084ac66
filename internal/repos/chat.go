package repos

import (
  "context"
  "strings"

  "github.com/google/uuid"
  "gorm.io/gorm"
  "gorm.io/datatypes"

  "github.com/medibot-org/medibot-backend/internal/logger"
  "github.com/medibot-org/medibot-backend/internal/types"
)

type ChatRepo interface {
  // CREATE
  Create(ctx context.Context, tx *gorm.DB, chat *types.Chat) (*types.Chat, error)

  // READ
  GetByID(ctx context.Context, tx *gorm.DB, userID, chatID uuid.UUID) (*types.Chat, error)
  ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, page, perPage int) ([]*types.Chat, int64, error)

  // UPDATE
  UpdateMessages(ctx context.Context, tx *gorm.DB, userID, chatID uuid.UUID, messages datatypes.JSON) error
  UpdateConfidence(ctx context.Context, tx *gorm.DB, chatID uuid.UUID, confidence string) error
}

type chatRepo struct {
  db      *gorm.DB
  log     *logger.Logger
}

func NewChatRepo(db *gorm.DB, baseLog *logger.Logger) ChatRepo {
  return &chatRepo{
    db:  db,
    log: baseLog.With("repo", "ChatRepo"),
  }
}

// missingConfidenceColumn spots the insert failure of an installation whose
// chat table predates the confidence column.
func missingConfidenceColumn(err error) bool {
  if err == nil {
    return false
  }
  msg := err.Error()
  return strings.Contains(msg, "confidence") &&
    (strings.Contains(msg, "does not exist") || strings.Contains(msg, "no such column"))
}

func (cr *chatRepo) Create(ctx context.Context, tx *gorm.DB, chat *types.Chat) (*types.Chat, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
    cr.log.Debug("Transaction is nil, using cr.db")
  }
  if chat.ID == uuid.Nil {
    chat.ID = uuid.New()
  }
  if err := transaction.WithContext(ctx).Create(chat).Error; err != nil {
    if !missingConfidenceColumn(err) {
      cr.log.Error("Failed to create chat", "error", err)
      return nil, err
    }
    // Schema-evolution fallback: insert without the confidence field rather
    // than failing the whole prediction.
    cr.log.Warn("Confidence column missing, retrying chat insert without it", "error", err)
    if err := transaction.WithContext(ctx).Omit("Confidence").Create(chat).Error; err != nil {
      cr.log.Error("Failed to create chat without confidence", "error", err)
      return nil, err
    }
  }
  cr.log.Info("Successfully created chat", "chatID", chat.ID, "userID", chat.UserID)
  return chat, nil
}

func (cr *chatRepo) GetByID(ctx context.Context, tx *gorm.DB, userID, chatID uuid.UUID) (*types.Chat, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
    cr.log.Debug("Transaction is nil, using cr.db")
  }
  var chat types.Chat
  if err := transaction.WithContext(ctx).
    Where("id = ? AND user_id = ?", chatID, userID).
    First(&chat).Error; err != nil {
    cr.log.Debug("Failed to fetch chat by ID", "error", err, "chatID", chatID, "userID", userID)
    return nil, err
  }
  return &chat, nil
}

func (cr *chatRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, page, perPage int) ([]*types.Chat, int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
    cr.log.Debug("Transaction is nil, using cr.db")
  }
  var total int64
  if err := transaction.WithContext(ctx).
    Model(&types.Chat{}).
    Where("user_id = ?", userID).
    Count(&total).Error; err != nil {
    cr.log.Error("Failed to count chats by userID", "error", err, "userID", userID)
    return nil, 0, err
  }
  var chats []*types.Chat
  offset := (page - 1) * perPage
  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Order("created_at DESC").
    Limit(perPage).
    Offset(offset).
    Find(&chats).Error; err != nil {
    cr.log.Error("Failed to list chats by userID", "error", err, "userID", userID)
    return nil, 0, err
  }
  cr.log.Debug("Chats listed", "userID", userID, "count", len(chats), "total", total)
  return chats, total, nil
}

func (cr *chatRepo) UpdateMessages(ctx context.Context, tx *gorm.DB, userID, chatID uuid.UUID, messages datatypes.JSON) error {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
    cr.log.Debug("Transaction is nil, using cr.db")
  }
  if err := transaction.WithContext(ctx).
    Model(&types.Chat{}).
    Where("id = ? AND user_id = ?", chatID, userID).
    Update("messages", messages).Error; err != nil {
    cr.log.Error("Failed to update chat messages", "error", err, "chatID", chatID)
    return err
  }
  cr.log.Debug("Chat messages updated", "chatID", chatID, "userID", userID)
  return nil
}

func (cr *chatRepo) UpdateConfidence(ctx context.Context, tx *gorm.DB, chatID uuid.UUID, confidence string) error {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
    cr.log.Debug("Transaction is nil, using cr.db")
  }
  if err := transaction.WithContext(ctx).
    Model(&types.Chat{}).
    Where("id = ?", chatID).
    Update("confidence", confidence).Error; err != nil {
    cr.log.Error("Failed to update chat confidence", "error", err, "chatID", chatID)
    return err
  }
  cr.log.Debug("Chat confidence updated", "chatID", chatID, "confidence", confidence)
  return nil
}
