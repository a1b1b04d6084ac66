package utils

import (
  "context"
  "fmt"
  "net/mail"
  "strings"

  "golang.org/x/crypto/bcrypt"

  "github.com/medibot-org/medibot-backend/internal/errordata"
  "github.com/medibot-org/medibot-backend/internal/logger"
  "github.com/medibot-org/medibot-backend/internal/types"
)

var validGenders = map[string]bool{
  "male":   true,
  "female": true,
  "other":  true,
}

// NormalizeUserFields trims whitespace and lowercases the email before
// validation so lookups stay consistent.
func NormalizeUserFields(ctx context.Context, user *types.User) {
  user.Name = strings.TrimSpace(user.Name)
  user.Email = strings.ToLower(strings.TrimSpace(user.Email))
  user.Gender = strings.ToLower(strings.TrimSpace(user.Gender))
}

// ValidateSignupFields checks the signup payload ranges. Password is the
// plaintext candidate, checked before hashing.
func ValidateSignupFields(ctx context.Context, log *logger.Logger, user *types.User, password string) error {
  if len(user.Name) < 2 || len(user.Name) > 100 {
    log.Warn("Signup rejected: name length out of range", "length", len(user.Name))
    return errordata.Validation("name must be between 2 and 100 characters")
  }
  if _, err := mail.ParseAddress(user.Email); err != nil {
    log.Warn("Signup rejected: invalid email", "email", user.Email)
    return errordata.Validation("invalid email address")
  }
  if len(password) < 6 {
    log.Warn("Signup rejected: password too short")
    return errordata.Validation("password must be at least 6 characters")
  }
  if user.Age < 1 || user.Age > 120 {
    log.Warn("Signup rejected: age out of range", "age", user.Age)
    return errordata.Validation("age must be between 1 and 120")
  }
  if user.BMI < 10.0 || user.BMI > 50.0 {
    log.Warn("Signup rejected: bmi out of range", "bmi", user.BMI)
    return errordata.Validation("bmi must be between 10.0 and 50.0")
  }
  if !validGenders[user.Gender] {
    log.Warn("Signup rejected: invalid gender", "gender", user.Gender)
    return errordata.Validation("gender must be one of male, female, other", user.Gender)
  }
  return nil
}

// HashPassword bcrypt-hashes the plaintext and stores it on the user.
func HashPassword(ctx context.Context, log *logger.Logger, user *types.User, password string) error {
  hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
  if err != nil {
    log.Error("Failed to hash password", "error", err)
    return fmt.Errorf("failed to hash password: %w", err)
  }
  user.Password = string(hashed)
  return nil
}
