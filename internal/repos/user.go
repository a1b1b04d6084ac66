package repos

import (
  "context"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/medibot-org/medibot-backend/internal/logger"
  "github.com/medibot-org/medibot-backend/internal/requestdata"
  "github.com/medibot-org/medibot-backend/internal/types"
)

type UserRepo interface {
  // CREATE
  Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error)

  // READ
  GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.User, error)
  GetByEmails(ctx context.Context, tx *gorm.DB, userEmails []string) ([]*types.User, error)
  EmailExists(ctx context.Context, tx *gorm.DB, userEmail string) (bool, error)

  // UPDATE
  Update(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error)

  // MISC
  GetMe(ctx context.Context, tx *gorm.DB) (*types.User, error)
}

type userRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
  repoLog := baseLog.With("repo", "UserRepo")
  return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
  transaction := tx
  if transaction == nil {
    transaction = ur.db
    ur.log.Debug("Transaction is nil, using ur.db instead")
  }
  if len(users) == 0 {
    ur.log.Debug("Users array is empty, returning empty slice", "count", 0)
    return []*types.User{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&users).Error; err != nil {
    ur.log.Error("Failed to create users", "error", err)
    return nil, err
  }
  ur.log.Info("Successfully created users", "count", len(users))
  return users, nil
}

func (ur *userRepo) GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.User, error) {
  transaction := tx
  if transaction == nil {
    transaction = ur.db
    ur.log.Debug("Transaction is nil, using ur.db")
  }
  var results []*types.User
  if len(userIDs) == 0 {
    ur.log.Debug("No userIDs provided, returning empty slice")
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("id IN ?", userIDs).
    Find(&results).Error; err != nil {
    ur.log.Error("Failed to fetch users by IDs", "error", err)
    return nil, err
  }
  ur.log.Debug("Users fetched by IDs", "count", len(results))
  return results, nil
}

func (ur *userRepo) GetByEmails(ctx context.Context, tx *gorm.DB, userEmails []string) ([]*types.User, error) {
  transaction := tx
  if transaction == nil {
    transaction = ur.db
    ur.log.Debug("Transaction is nil, using ur.db")
  }
  var results []*types.User
  if len(userEmails) == 0 {
    ur.log.Debug("No userEmails provided, returning empty slice")
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("email IN ?", userEmails).
    Find(&results).Error; err != nil {
    ur.log.Error("Failed to fetch users by emails", "error", err)
    return nil, err
  }
  ur.log.Debug("Users fetched by emails", "count", len(results))
  return results, nil
}

func (ur *userRepo) EmailExists(ctx context.Context, tx *gorm.DB, userEmail string) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = ur.db
    ur.log.Debug("Transaction is nil, using ur.db")
  }
  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.User{}).
    Where("email = ?", userEmail).
    Count(&count).Error; err != nil {
    ur.log.Error("Failed to count users by email", "error", err)
    return false, err
  }
  exists := count > 0
  ur.log.Debug("EmailExists check complete", "email", userEmail, "exists", exists)
  return exists, nil
}

func (ur *userRepo) Update(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
  transaction := tx
  if transaction == nil {
    transaction = ur.db
    ur.log.Debug("Transaction is nil, using ur.db")
  }
  if len(users) == 0 {
    ur.log.Debug("No users provided, skipping update")
    return users, nil
  }
  for _, u := range users {
    if err := transaction.WithContext(ctx).Save(u).Error; err != nil {
      ur.log.Error("Failed to update user", "error", err, "userID", u.ID)
      return nil, err
    }
  }
  ur.log.Info("Successfully updated users", "count", len(users))
  return users, nil
}

func (ur *userRepo) GetMe(ctx context.Context, tx *gorm.DB) (*types.User, error) {
  transaction := tx
  if transaction == nil {
    transaction = ur.db
    ur.log.Debug("Transaction is nil, using ur.db")
  }
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    ur.log.Error("No request data in context, cannot get me!")
    return nil, fmt.Errorf("no request data found in context")
  }
  var user *types.User
  if err := transaction.WithContext(ctx).
    Where("id = ?", rd.UserID).
    First(&user).Error; err != nil {
    ur.log.Error("Failed to fetch current user (GetMe)", "error", err, "userID", rd.UserID)
    return nil, err
  }
  return user, nil
}
