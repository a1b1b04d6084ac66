package testutil

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/medibot-org/medibot-backend/internal/logger"
  "github.com/medibot-org/medibot-backend/internal/types"
)

// NewTestLogger returns a development-mode logger for use in tests.
func NewTestLogger() *logger.Logger {
  l, err := logger.New("development")
  if err != nil {
    panic(err)
  }
  return l
}

// FakeClassifier satisfies services.ClassifierService with a function field
// and counts how often it was called.
type FakeClassifier struct {
  ClassifyFn func(ctx context.Context, vector []float64) ([]float64, error)
  Calls      int
}

func (f *FakeClassifier) Classify(ctx context.Context, vector []float64) ([]float64, error) {
  f.Calls++
  return f.ClassifyFn(ctx, vector)
}

// FakeLLM satisfies services.LLMService.
type FakeLLM struct {
  GenerateReplyFn func(ctx context.Context, systemInstruction string, history []types.MessageTurn, query string) (string, error)
  Calls           int
  LastHistory     []types.MessageTurn
  LastQuery       string
}

func (f *FakeLLM) GenerateReply(ctx context.Context, systemInstruction string, history []types.MessageTurn, query string) (string, error) {
  f.Calls++
  f.LastHistory = history
  f.LastQuery = query
  return f.GenerateReplyFn(ctx, systemInstruction, history, query)
}

func (f *FakeLLM) Close() error {
  return nil
}

// FakeChatRepo satisfies repos.ChatRepo.
type FakeChatRepo struct {
  CreateFn           func(ctx context.Context, tx *gorm.DB, chat *types.Chat) (*types.Chat, error)
  GetByIDFn          func(ctx context.Context, tx *gorm.DB, userID, chatID uuid.UUID) (*types.Chat, error)
  ListByUserFn       func(ctx context.Context, tx *gorm.DB, userID uuid.UUID, page, perPage int) ([]*types.Chat, int64, error)
  UpdateMessagesFn   func(ctx context.Context, tx *gorm.DB, userID, chatID uuid.UUID, messages datatypes.JSON) error
  UpdateConfidenceFn func(ctx context.Context, tx *gorm.DB, chatID uuid.UUID, confidence string) error

  UpdatedConfidences map[uuid.UUID]string
  UpdatedMessages    map[uuid.UUID]datatypes.JSON
}

func (f *FakeChatRepo) Create(ctx context.Context, tx *gorm.DB, chat *types.Chat) (*types.Chat, error) {
  if f.CreateFn != nil {
    return f.CreateFn(ctx, tx, chat)
  }
  if chat.ID == uuid.Nil {
    chat.ID = uuid.New()
  }
  return chat, nil
}

func (f *FakeChatRepo) GetByID(ctx context.Context, tx *gorm.DB, userID, chatID uuid.UUID) (*types.Chat, error) {
  return f.GetByIDFn(ctx, tx, userID, chatID)
}

func (f *FakeChatRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, page, perPage int) ([]*types.Chat, int64, error) {
  return f.ListByUserFn(ctx, tx, userID, page, perPage)
}

func (f *FakeChatRepo) UpdateMessages(ctx context.Context, tx *gorm.DB, userID, chatID uuid.UUID, messages datatypes.JSON) error {
  if f.UpdateMessagesFn != nil {
    return f.UpdateMessagesFn(ctx, tx, userID, chatID, messages)
  }
  if f.UpdatedMessages == nil {
    f.UpdatedMessages = make(map[uuid.UUID]datatypes.JSON)
  }
  f.UpdatedMessages[chatID] = messages
  return nil
}

func (f *FakeChatRepo) UpdateConfidence(ctx context.Context, tx *gorm.DB, chatID uuid.UUID, confidence string) error {
  if f.UpdateConfidenceFn != nil {
    return f.UpdateConfidenceFn(ctx, tx, chatID, confidence)
  }
  if f.UpdatedConfidences == nil {
    f.UpdatedConfidences = make(map[uuid.UUID]string)
  }
  f.UpdatedConfidences[chatID] = confidence
  return nil
}

// FakeUserRepo satisfies repos.UserRepo.
type FakeUserRepo struct {
  CreateFn      func(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error)
  GetByIDsFn    func(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.User, error)
  GetByEmailsFn func(ctx context.Context, tx *gorm.DB, userEmails []string) ([]*types.User, error)
  EmailExistsFn func(ctx context.Context, tx *gorm.DB, userEmail string) (bool, error)
  UpdateFn      func(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error)
  GetMeFn       func(ctx context.Context, tx *gorm.DB) (*types.User, error)
}

func (f *FakeUserRepo) Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
  if f.CreateFn != nil {
    return f.CreateFn(ctx, tx, users)
  }
  for _, u := range users {
    if u.ID == uuid.Nil {
      u.ID = uuid.New()
    }
  }
  return users, nil
}

func (f *FakeUserRepo) GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.User, error) {
  return f.GetByIDsFn(ctx, tx, userIDs)
}

func (f *FakeUserRepo) GetByEmails(ctx context.Context, tx *gorm.DB, userEmails []string) ([]*types.User, error) {
  return f.GetByEmailsFn(ctx, tx, userEmails)
}

func (f *FakeUserRepo) EmailExists(ctx context.Context, tx *gorm.DB, userEmail string) (bool, error) {
  return f.EmailExistsFn(ctx, tx, userEmail)
}

func (f *FakeUserRepo) Update(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
  if f.UpdateFn != nil {
    return f.UpdateFn(ctx, tx, users)
  }
  return users, nil
}

func (f *FakeUserRepo) GetMe(ctx context.Context, tx *gorm.DB) (*types.User, error) {
  return f.GetMeFn(ctx, tx)
}

// FakeRefreshTokenRepo satisfies repos.RefreshTokenRepo.
type FakeRefreshTokenRepo struct {
  CreateFn              func(ctx context.Context, tx *gorm.DB, tokens []*types.RefreshToken) ([]*types.RefreshToken, error)
  GetByTokensFn         func(ctx context.Context, tx *gorm.DB, tokenStrings []string) ([]*types.RefreshToken, error)
  GetByUserIDsFn        func(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.RefreshToken, error)
  FullDeleteByTokensFn  func(ctx context.Context, tx *gorm.DB, tokens []*types.RefreshToken) error
  FullDeleteByUserIDsFn func(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error

  Created []*types.RefreshToken
  Deleted []*types.RefreshToken
}

func (f *FakeRefreshTokenRepo) Create(ctx context.Context, tx *gorm.DB, tokens []*types.RefreshToken) ([]*types.RefreshToken, error) {
  if f.CreateFn != nil {
    return f.CreateFn(ctx, tx, tokens)
  }
  for _, t := range tokens {
    if t.ID == uuid.Nil {
      t.ID = uuid.New()
    }
  }
  f.Created = append(f.Created, tokens...)
  return tokens, nil
}

func (f *FakeRefreshTokenRepo) GetByTokens(ctx context.Context, tx *gorm.DB, tokenStrings []string) ([]*types.RefreshToken, error) {
  if f.GetByTokensFn != nil {
    return f.GetByTokensFn(ctx, tx, tokenStrings)
  }
  var out []*types.RefreshToken
  for _, t := range f.Created {
    for _, s := range tokenStrings {
      if t.Token == s {
        out = append(out, t)
      }
    }
  }
  return out, nil
}

func (f *FakeRefreshTokenRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.RefreshToken, error) {
  return f.GetByUserIDsFn(ctx, tx, userIDs)
}

func (f *FakeRefreshTokenRepo) FullDeleteByTokens(ctx context.Context, tx *gorm.DB, tokens []*types.RefreshToken) error {
  if f.FullDeleteByTokensFn != nil {
    return f.FullDeleteByTokensFn(ctx, tx, tokens)
  }
  f.Deleted = append(f.Deleted, tokens...)
  return nil
}

func (f *FakeRefreshTokenRepo) FullDeleteByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error {
  return f.FullDeleteByUserIDsFn(ctx, tx, userIDs)
}
