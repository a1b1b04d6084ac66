package services

import (
  "context"
  "fmt"
  "testing"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/medibot-org/medibot-backend/internal/errordata"
  "github.com/medibot-org/medibot-backend/internal/model"
  "github.com/medibot-org/medibot-backend/internal/requestdata"
  "github.com/medibot-org/medibot-backend/internal/testutil"
  "github.com/medibot-org/medibot-backend/internal/types"
)

func strPtr(s string) *string {
  return &s
}

func confidenceVocab() *model.Vocabulary {
  return model.NewVocabulary([]string{"itching", "skin_rash", "headache"})
}

func chatWithSymptoms(confidence *string) *types.Chat {
  return &types.Chat{
    ID:         uuid.New(),
    UserID:     uuid.New(),
    Messages:   datatypes.JSON([]byte("{}")),
    Symptoms:   datatypes.JSON([]byte(`["itching","headache"]`)),
    Confidence: confidence,
  }
}

func TestIsValidConfidence(t *testing.T) {
  cases := []struct {
    name  string
    value *string
    want  bool
  }{
    {"nil", nil, false},
    {"empty", strPtr(""), false},
    {"zero percent", strPtr("0%"), false},
    {"zero with decimals", strPtr("0.00%"), false},
    {"placeholder counts as valid", strPtr("0.10%"), true},
    {"regular value", strPtr("84.23%"), true},
  }
  for _, tc := range cases {
    t.Run(tc.name, func(t *testing.T) {
      if got := IsValidConfidence(tc.value); got != tc.want {
        t.Fatalf("want %v, got %v", tc.want, got)
      }
    })
  }
}

func TestResolveForListingUsesCache(t *testing.T) {
  classifier := &testutil.FakeClassifier{
    ClassifyFn: func(ctx context.Context, vector []float64) ([]float64, error) {
      return []float64{0.1, 0.9}, nil
    },
  }
  repo := &testutil.FakeChatRepo{}
  cs := NewConfidenceService(nil, testutil.NewTestLogger(), confidenceVocab(), classifier, repo)

  cached := strPtr("84.23%")
  out := cs.ResolveForListing(context.Background(), []*types.Chat{chatWithSymptoms(cached)}, false)
  if classifier.Calls != 0 {
    t.Fatalf("classifier must not run for a valid cached confidence, ran %d times", classifier.Calls)
  }
  if out[0] == nil || *out[0] != "84.23%" {
    t.Fatalf("want cached value, got %v", out[0])
  }
}

func TestResolveForListingRecomputesInvalid(t *testing.T) {
  classifier := &testutil.FakeClassifier{
    ClassifyFn: func(ctx context.Context, vector []float64) ([]float64, error) {
      return []float64{0.1577, 0.8423}, nil
    },
  }
  repo := &testutil.FakeChatRepo{}
  cs := NewConfidenceService(nil, testutil.NewTestLogger(), confidenceVocab(), classifier, repo)

  chat := chatWithSymptoms(strPtr("0.00%"))
  out := cs.ResolveForListing(context.Background(), []*types.Chat{chat}, false)
  if out[0] == nil || *out[0] != "84.23%" {
    t.Fatalf("want 84.23%%, got %v", out[0])
  }
  if got := repo.UpdatedConfidences[chat.ID]; got != "84.23%" {
    t.Fatalf("recomputed confidence not written back, got %q", got)
  }
}

func TestResolveForListingProbabilityFloor(t *testing.T) {
  classifier := &testutil.FakeClassifier{
    ClassifyFn: func(ctx context.Context, vector []float64) ([]float64, error) {
      return []float64{0.0001, 0.0002}, nil
    },
  }
  repo := &testutil.FakeChatRepo{}
  cs := NewConfidenceService(nil, testutil.NewTestLogger(), confidenceVocab(), classifier, repo)

  out := cs.ResolveForListing(context.Background(), []*types.Chat{chatWithSymptoms(nil)}, false)
  if out[0] == nil || *out[0] != "0.10%" {
    t.Fatalf("floored confidence: want 0.10%%, got %v", out[0])
  }
}

func TestResolveForListingBudget(t *testing.T) {
  classifier := &testutil.FakeClassifier{
    ClassifyFn: func(ctx context.Context, vector []float64) ([]float64, error) {
      return []float64{0.3, 0.7}, nil
    },
  }
  repo := &testutil.FakeChatRepo{}
  cs := NewConfidenceService(nil, testutil.NewTestLogger(), confidenceVocab(), classifier, repo)

  chats := make([]*types.Chat, 7)
  for i := range chats {
    chats[i] = chatWithSymptoms(nil)
  }
  out := cs.ResolveForListing(context.Background(), chats, false)

  if classifier.Calls != 5 {
    t.Fatalf("budget: want 5 classifier calls, got %d", classifier.Calls)
  }
  for i := 0; i < 5; i++ {
    if out[i] == nil || *out[i] != "70.00%" {
      t.Fatalf("chat %d: want 70.00%%, got %v", i, out[i])
    }
  }
  for i := 5; i < 7; i++ {
    if out[i] == nil || *out[i] != PlaceholderConfidence {
      t.Fatalf("chat %d: want placeholder, got %v", i, out[i])
    }
    if _, ok := repo.UpdatedConfidences[chats[i].ID]; ok {
      t.Fatalf("placeholder for chat %d must not be persisted", i)
    }
  }
}

func TestResolveForListingForceBypassesBudget(t *testing.T) {
  classifier := &testutil.FakeClassifier{
    ClassifyFn: func(ctx context.Context, vector []float64) ([]float64, error) {
      return []float64{0.3, 0.7}, nil
    },
  }
  repo := &testutil.FakeChatRepo{}
  cs := NewConfidenceService(nil, testutil.NewTestLogger(), confidenceVocab(), classifier, repo)

  chats := make([]*types.Chat, 7)
  for i := range chats {
    chats[i] = chatWithSymptoms(strPtr("84.23%"))
  }
  out := cs.ResolveForListing(context.Background(), chats, true)
  if classifier.Calls != 7 {
    t.Fatalf("forced recompute: want 7 classifier calls, got %d", classifier.Calls)
  }
  for i := range out {
    if out[i] == nil || *out[i] != "70.00%" {
      t.Fatalf("chat %d: want 70.00%%, got %v", i, out[i])
    }
  }
}

func TestResolveForListingClassifierFailure(t *testing.T) {
  classifier := &testutil.FakeClassifier{
    ClassifyFn: func(ctx context.Context, vector []float64) ([]float64, error) {
      return nil, fmt.Errorf("model server down")
    },
  }
  repo := &testutil.FakeChatRepo{}
  cs := NewConfidenceService(nil, testutil.NewTestLogger(), confidenceVocab(), classifier, repo)

  chat := chatWithSymptoms(nil)
  out := cs.ResolveForListing(context.Background(), []*types.Chat{chat}, false)
  if out[0] == nil || *out[0] != PlaceholderConfidence {
    t.Fatalf("failed compute: want placeholder, got %v", out[0])
  }
  if len(repo.UpdatedConfidences) != 0 {
    t.Fatalf("placeholder must not be persisted")
  }
}

func TestResolveForListingNoSymptoms(t *testing.T) {
  classifier := &testutil.FakeClassifier{
    ClassifyFn: func(ctx context.Context, vector []float64) ([]float64, error) {
      return []float64{1}, nil
    },
  }
  repo := &testutil.FakeChatRepo{}
  cs := NewConfidenceService(nil, testutil.NewTestLogger(), confidenceVocab(), classifier, repo)

  chat := &types.Chat{ID: uuid.New(), Messages: datatypes.JSON([]byte("{}"))}
  out := cs.ResolveForListing(context.Background(), []*types.Chat{chat}, false)
  if out[0] != nil {
    t.Fatalf("no symptom set: want absent confidence, got %v", out[0])
  }
  if classifier.Calls != 0 {
    t.Fatalf("classifier must not run without symptoms")
  }
}

func TestRecompute(t *testing.T) {
  userID := uuid.New()
  chat := chatWithSymptoms(strPtr("84.23%"))
  chat.UserID = userID

  classifier := &testutil.FakeClassifier{
    ClassifyFn: func(ctx context.Context, vector []float64) ([]float64, error) {
      return []float64{0.05, 0.95}, nil
    },
  }
  repo := &testutil.FakeChatRepo{
    GetByIDFn: func(ctx context.Context, tx *gorm.DB, uid, cid uuid.UUID) (*types.Chat, error) {
      if uid == userID && cid == chat.ID {
        return chat, nil
      }
      return nil, gorm.ErrRecordNotFound
    },
  }
  cs := NewConfidenceService(nil, testutil.NewTestLogger(), confidenceVocab(), classifier, repo)
  ctx := requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: userID})

  got, err := cs.Recompute(ctx, chat.ID)
  if err != nil {
    t.Fatalf("unexpected error: %v", err)
  }
  if got != "95.00%" {
    t.Fatalf("want 95.00%%, got %q", got)
  }
  if repo.UpdatedConfidences[chat.ID] != "95.00%" {
    t.Fatalf("recomputed confidence not persisted")
  }

  _, err = cs.Recompute(ctx, uuid.New())
  if errordata.KindOf(err) != errordata.KindNotFound {
    t.Fatalf("unknown chat: want not-found error, got %v", err)
  }
}
