package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/medibot-org/medibot-backend/internal/logger"
  "github.com/medibot-org/medibot-backend/internal/types"
)

type RefreshTokenRepo interface {
  // CREATE
  Create(ctx context.Context, tx *gorm.DB, tokens []*types.RefreshToken) ([]*types.RefreshToken, error)

  // READ
  GetByTokens(ctx context.Context, tx *gorm.DB, tokenStrings []string) ([]*types.RefreshToken, error)
  GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.RefreshToken, error)

  // FULL (HARD) DELETE
  FullDeleteByTokens(ctx context.Context, tx *gorm.DB, tokens []*types.RefreshToken) error
  FullDeleteByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error
}

type refreshTokenRepo struct {
  db      *gorm.DB
  log     *logger.Logger
}

func NewRefreshTokenRepo(db *gorm.DB, baseLog *logger.Logger) RefreshTokenRepo {
  repoLog := baseLog.With("repo", "RefreshTokenRepo")
  return &refreshTokenRepo{db: db, log: repoLog}
}

func (rtr *refreshTokenRepo) Create(ctx context.Context, tx *gorm.DB, tokens []*types.RefreshToken) ([]*types.RefreshToken, error) {
  transaction := tx
  if transaction == nil {
    transaction = rtr.db
    rtr.log.Debug("Transaction is nil, using rtr.db")
  }
  if len(tokens) == 0 {
    rtr.log.Debug("No tokens provided, returning empty slice")
    return []*types.RefreshToken{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&tokens).Error; err != nil {
    rtr.log.Error("Failed to create refresh tokens", "error", err)
    return nil, err
  }
  rtr.log.Info("Successfully created refresh tokens", "count", len(tokens))
  return tokens, nil
}

func (rtr *refreshTokenRepo) GetByTokens(ctx context.Context, tx *gorm.DB, tokenStrings []string) ([]*types.RefreshToken, error) {
  transaction := tx
  if transaction == nil {
    transaction = rtr.db
    rtr.log.Debug("Transaction is nil, using rtr.db")
  }
  var results []*types.RefreshToken
  if len(tokenStrings) == 0 {
    rtr.log.Debug("No token strings provided, returning empty slice")
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("token IN ?", tokenStrings).
    Find(&results).Error; err != nil {
    rtr.log.Error("Failed to fetch refresh tokens by token strings", "error", err)
    return nil, err
  }
  rtr.log.Debug("Refresh tokens fetched by token strings", "count", len(results))
  return results, nil
}

func (rtr *refreshTokenRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.RefreshToken, error) {
  transaction := tx
  if transaction == nil {
    transaction = rtr.db
    rtr.log.Debug("Transaction is nil, using rtr.db")
  }
  var results []*types.RefreshToken
  if len(userIDs) == 0 {
    rtr.log.Debug("No userIDs provided, returning empty slice")
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("user_id IN ?", userIDs).
    Find(&results).Error; err != nil {
    rtr.log.Error("Failed to fetch refresh tokens by userIDs", "error", err)
    return nil, err
  }
  rtr.log.Debug("Refresh tokens fetched by userIDs", "count", len(results))
  return results, nil
}

func (rtr *refreshTokenRepo) FullDeleteByTokens(ctx context.Context, tx *gorm.DB, tokens []*types.RefreshToken) error {
  transaction := tx
  if transaction == nil {
    transaction = rtr.db
    rtr.log.Debug("Transaction is nil, using rtr.db")
  }
  if len(tokens) == 0 {
    rtr.log.Debug("No tokens provided, skipping full delete")
    return nil
  }
  var tokenIDs []uuid.UUID
  for _, t := range tokens {
    tokenIDs = append(tokenIDs, t.ID)
  }
  if err := transaction.WithContext(ctx).
    Unscoped().
    Where("id IN (?)", tokenIDs).
    Delete(&types.RefreshToken{}).Error; err != nil {
    rtr.log.Error("Failed to FULL delete refresh tokens by IDs", "error", err)
    return err
  }
  rtr.log.Info("Successfully FULL deleted refresh tokens", "count", len(tokenIDs))
  return nil
}

func (rtr *refreshTokenRepo) FullDeleteByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = rtr.db
    rtr.log.Debug("Transaction is nil, using rtr.db")
  }
  if len(userIDs) == 0 {
    rtr.log.Debug("No userIDs provided, skipping full delete")
    return nil
  }
  if err := transaction.WithContext(ctx).
    Unscoped().
    Where("user_id IN (?)", userIDs).
    Delete(&types.RefreshToken{}).Error; err != nil {
    rtr.log.Error("Failed to FULL delete refresh tokens by userIDs", "error", err)
    return err
  }
  rtr.log.Info("Successfully FULL deleted refresh tokens by userIDs", "count", len(userIDs))
  return nil
}
