package types

import (
  "encoding/json"
  "time"

  "gorm.io/gorm"
  "gorm.io/datatypes"
  "github.com/google/uuid"
)

// Chat is one diagnosis session: the predicted disease, the symptom set it
// was predicted from, the memoized confidence string and the message log.
type Chat struct {
  gorm.Model
  ID                  uuid.UUID                 `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"chat_id"`
  UserID              uuid.UUID                 `gorm:"index;not null" json:"user_id"`
  User                *User                     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`

  Messages            datatypes.JSON            `gorm:"not null;column:messages" json:"messages"`
  Disease             *string                   `gorm:"column:disease" json:"disease,omitempty"`
  Symptoms            datatypes.JSON            `gorm:"column:symptoms" json:"symptoms,omitempty"`
  Confidence          *string                   `gorm:"column:confidence" json:"confidence,omitempty"`

  CreatedAt           time.Time                 `gorm:"not null;default:now()" json:"created_at"`
}

func (Chat) TableName() string {
  return "chat_detail"
}

// SymptomList decodes the symptoms column. A missing or corrupt column
// decodes to nil rather than failing the caller.
func (c *Chat) SymptomList() []string {
  if len(c.Symptoms) == 0 {
    return nil
  }
  var out []string
  if err := json.Unmarshal(c.Symptoms, &out); err != nil {
    return nil
  }
  return out
}

// Log decodes the messages column into a MessageLog, tolerating corrupt or
// non-object payloads.
func (c *Chat) Log() MessageLog {
  return ParseMessageLog(c.Messages)
}
