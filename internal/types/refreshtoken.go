package types

import (
  "time"

  "gorm.io/gorm"
  "github.com/google/uuid"
)

type RefreshToken struct {
  gorm.Model
  ID                  uuid.UUID                 `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"token_id"`
  UserID              uuid.UUID                 `gorm:"index;not null" json:"user_id"`
  User                *User                     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`

  Token               string                    `gorm:"uniqueIndex;not null;column:token" json:"-"`
  ExpiresAt           time.Time                 `gorm:"not null;column:expires_at" json:"expires_at"`

  CreatedAt           time.Time                 `gorm:"not null;default:now()" json:"created_at"`
}

func (RefreshToken) TableName() string {
  return "refresh_token"
}
