package services

import (
  "context"
  "errors"
  "strings"
  "time"

  "gorm.io/gorm"

  "github.com/medibot-org/medibot-backend/internal/errordata"
  "github.com/medibot-org/medibot-backend/internal/logger"
  "github.com/medibot-org/medibot-backend/internal/repos"
  "github.com/medibot-org/medibot-backend/internal/types"
  "github.com/medibot-org/medibot-backend/internal/utils"
)

// ProfileUpdate carries the optional fields of a partial profile update.
// Nil pointers mean "leave as is".
type ProfileUpdate struct {
  Name        *string
  Age         *int
  BMI         *float64
  Gender      *string
  NewPassword *string
}

type MeService interface {
  GetMe(ctx context.Context) (*types.User, error)
  UpdateMe(ctx context.Context, update *ProfileUpdate) (*types.User, error)
}

type meService struct {
  db       *gorm.DB
  log      *logger.Logger
  userRepo repos.UserRepo
}

func NewMeService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo) MeService {
  serviceLog := baseLog.With("service", "MeService")
  return &meService{db: db, log: serviceLog, userRepo: userRepo}
}

func (ms *meService) GetMe(ctx context.Context) (*types.User, error) {
  user, err := ms.userRepo.GetMe(ctx, nil)
  if err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, errordata.NotFound("user not found")
    }
    return nil, err
  }
  return user, nil
}

func (ms *meService) UpdateMe(ctx context.Context, update *ProfileUpdate) (*types.User, error) {
  user, err := ms.GetMe(ctx)
  if err != nil {
    return nil, err
  }
  if update.Name != nil {
    name := strings.TrimSpace(*update.Name)
    if len(name) < 2 || len(name) > 100 {
      return nil, errordata.Validation("name must be between 2 and 100 characters", name)
    }
    user.Name = name
  }
  if update.Age != nil {
    if *update.Age < 1 || *update.Age > 120 {
      return nil, errordata.Validation("age must be between 1 and 120")
    }
    user.Age = *update.Age
  }
  if update.BMI != nil {
    if *update.BMI < 10.0 || *update.BMI > 50.0 {
      return nil, errordata.Validation("bmi must be between 10.0 and 50.0")
    }
    user.BMI = *update.BMI
  }
  if update.Gender != nil {
    gender := strings.ToLower(strings.TrimSpace(*update.Gender))
    if gender != "male" && gender != "female" && gender != "other" {
      return nil, errordata.Validation("gender must be one of male, female, other", gender)
    }
    user.Gender = gender
  }
  if update.NewPassword != nil {
    if len(*update.NewPassword) < 6 {
      return nil, errordata.Validation("password must be at least 6 characters")
    }
    if err := utils.HashPassword(ctx, ms.log, user, *update.NewPassword); err != nil {
      return nil, err
    }
  }
  user.UpdatedAt = time.Now()
  updated, err := ms.userRepo.Update(ctx, nil, []*types.User{user})
  if err != nil {
    return nil, errordata.Storage("failed to update user", err)
  }
  ms.log.Info("Successfully updated user profile :)", "userID", user.ID)
  return updated[0], nil
}
