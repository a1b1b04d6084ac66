package types

import (
  "time"

  "gorm.io/gorm"
  "github.com/google/uuid"
)

type User struct {
  gorm.Model
  ID                  uuid.UUID                 `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"user_id"`

  Name                string                    `gorm:"not null;column:name" json:"name"`
  Email               string                    `gorm:"uniqueIndex;not null;column:email" json:"email"`
  Password            string                    `gorm:"not null;column:password" json:"-"`
  Age                 int                       `gorm:"not null;column:age" json:"age"`
  BMI                 float64                   `gorm:"not null;column:bmi" json:"bmi"`
  Gender              string                    `gorm:"not null;column:gender;check:gender IN ('male','female','other')" json:"gender"`

  CreatedAt           time.Time                 `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt           time.Time                 `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string {
  return "user_profile"
}
