package services

import (
  "context"
  "fmt"
  "testing"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/medibot-org/medibot-backend/internal/errordata"
  "github.com/medibot-org/medibot-backend/internal/requestdata"
  "github.com/medibot-org/medibot-backend/internal/testutil"
  "github.com/medibot-org/medibot-backend/internal/types"
)

func chatServiceUnderTest(repo *testutil.FakeChatRepo, llm *testutil.FakeLLM) (ChatService, uuid.UUID, context.Context) {
  userID := uuid.New()
  confidence := NewConfidenceService(nil, testutil.NewTestLogger(), confidenceVocab(), &testutil.FakeClassifier{
    ClassifyFn: func(ctx context.Context, vector []float64) ([]float64, error) {
      return []float64{0.2, 0.8}, nil
    },
  }, repo)
  cs := NewChatService(nil, testutil.NewTestLogger(), repo, llm, confidence)
  ctx := requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: userID})
  return cs, userID, ctx
}

func storedChat(userID uuid.UUID, messages string) *types.Chat {
  disease := "Fungal infection"
  return &types.Chat{
    ID:       uuid.New(),
    UserID:   userID,
    Disease:  &disease,
    Messages: datatypes.JSON([]byte(messages)),
    Symptoms: datatypes.JSON([]byte(`["itching","skin_rash"]`)),
  }
}

func TestSendMessageReplaysHistoryInOrder(t *testing.T) {
  llm := &testutil.FakeLLM{
    GenerateReplyFn: func(ctx context.Context, instruction string, history []types.MessageTurn, query string) (string, error) {
      return "the reply", nil
    },
  }
  messages := `{
    "message10": {"query": "tenth", "response": "R10"},
    "message2": {"query": "second", "response": "R2"},
    "message1": {"query": "first", "response": "R1"},
    "message3": {"query": null, "response": null}
  }`
  repo := &testutil.FakeChatRepo{}
  cs, userID, ctx := chatServiceUnderTest(repo, llm)
  chat := storedChat(userID, messages)
  repo.GetByIDFn = func(ctx context.Context, tx *gorm.DB, uid, cid uuid.UUID) (*types.Chat, error) {
    return chat, nil
  }

  reply, err := cs.SendMessage(ctx, chat.ID, "What should I eat?")
  if err != nil {
    t.Fatalf("unexpected error: %v", err)
  }
  if reply.Response != "the reply" {
    t.Fatalf("want the reply, got %q", reply.Response)
  }

  if len(llm.LastHistory) != 3 {
    t.Fatalf("empty turns must be skipped: want 3 turns, got %d", len(llm.LastHistory))
  }
  order := []string{"first", "second", "tenth"}
  for i, want := range order {
    if *llm.LastHistory[i].Query != want {
      t.Fatalf("history[%d]: want %q, got %q", i, want, *llm.LastHistory[i].Query)
    }
  }

  stored := types.ParseMessageLog(repo.UpdatedMessages[chat.ID])
  turn, ok := stored["message11"]
  if !ok {
    t.Fatalf("new turn must use the next sequential key, log keys: %v", stored.SortedKeys())
  }
  if *turn.Query != "What should I eat?" || *turn.Response != "the reply" {
    t.Fatalf("stored turn mismatch: %+v", turn)
  }
}

func TestSendMessageTemplatesSuggestedQueries(t *testing.T) {
  llm := &testutil.FakeLLM{
    GenerateReplyFn: func(ctx context.Context, instruction string, history []types.MessageTurn, query string) (string, error) {
      return "ok", nil
    },
  }
  repo := &testutil.FakeChatRepo{}
  cs, userID, ctx := chatServiceUnderTest(repo, llm)
  chat := storedChat(userID, "{}")
  repo.GetByIDFn = func(ctx context.Context, tx *gorm.DB, uid, cid uuid.UUID) (*types.Chat, error) {
    return chat, nil
  }

  if _, err := cs.SendMessage(ctx, chat.ID, "Explain my disease in simple words"); err != nil {
    t.Fatalf("unexpected error: %v", err)
  }
  if llm.LastQuery != "Explain my Fungal infection in simple words." {
    t.Fatalf("suggested query not templated, got %q", llm.LastQuery)
  }

  // The raw query is what gets stored, not the templated prompt.
  stored := types.ParseMessageLog(repo.UpdatedMessages[chat.ID])
  turn := stored["message1"]
  if *turn.Query != "Explain my disease in simple words" {
    t.Fatalf("stored query must be the raw input, got %q", *turn.Query)
  }
}

func TestSendMessageLLMFailureLeavesLogUntouched(t *testing.T) {
  llm := &testutil.FakeLLM{
    GenerateReplyFn: func(ctx context.Context, instruction string, history []types.MessageTurn, query string) (string, error) {
      return "", errordata.Collaborator("language model call failed", fmt.Errorf("quota"))
    },
  }
  repo := &testutil.FakeChatRepo{}
  cs, userID, ctx := chatServiceUnderTest(repo, llm)
  chat := storedChat(userID, "{}")
  repo.GetByIDFn = func(ctx context.Context, tx *gorm.DB, uid, cid uuid.UUID) (*types.Chat, error) {
    return chat, nil
  }

  _, err := cs.SendMessage(ctx, chat.ID, "hello")
  if errordata.KindOf(err) != errordata.KindCollaborator {
    t.Fatalf("want collaborator error, got %v", err)
  }
  if len(repo.UpdatedMessages) != 0 {
    t.Fatalf("nothing may be persisted when the language model fails")
  }
}

func TestSendMessageUnknownChat(t *testing.T) {
  llm := &testutil.FakeLLM{
    GenerateReplyFn: func(ctx context.Context, instruction string, history []types.MessageTurn, query string) (string, error) {
      return "ok", nil
    },
  }
  repo := &testutil.FakeChatRepo{
    GetByIDFn: func(ctx context.Context, tx *gorm.DB, uid, cid uuid.UUID) (*types.Chat, error) {
      return nil, gorm.ErrRecordNotFound
    },
  }
  cs, _, ctx := chatServiceUnderTest(repo, llm)

  _, err := cs.SendMessage(ctx, uuid.New(), "hello")
  if errordata.KindOf(err) != errordata.KindNotFound {
    t.Fatalf("want not-found error, got %v", err)
  }
}

func TestHistoryPagination(t *testing.T) {
  llm := &testutil.FakeLLM{}
  repo := &testutil.FakeChatRepo{}
  cs, userID, ctx := chatServiceUnderTest(repo, llm)

  chats := []*types.Chat{
    storedChat(userID, `{"message1": {"query": "how long until I recover from this infection exactly?", "response": "soon"}}`),
    storedChat(userID, "{}"),
  }
  for _, c := range chats {
    conf := "84.23%"
    c.Confidence = &conf
  }
  repo.ListByUserFn = func(ctx context.Context, tx *gorm.DB, uid uuid.UUID, page, perPage int) ([]*types.Chat, int64, error) {
    return chats, 23, nil
  }

  history, err := cs.History(ctx, 2, 5, false, false)
  if err != nil {
    t.Fatalf("unexpected error: %v", err)
  }
  p := history.Pagination
  if p.Page != 2 || p.PerPage != 5 || p.Total != 23 || p.Pages != 5 {
    t.Fatalf("pagination mismatch: %+v", p)
  }
  if len(history.Chats) != 2 {
    t.Fatalf("want 2 rows, got %d", len(history.Chats))
  }
  first := history.Chats[0]
  if first.Preview != "how long until I recover from this infection exact..." {
    t.Fatalf("preview mismatch: %q", first.Preview)
  }
  if first.Messages != nil {
    t.Fatalf("messages must be omitted unless requested")
  }

  history, err = cs.History(ctx, 2, 5, true, false)
  if err != nil {
    t.Fatalf("unexpected error: %v", err)
  }
  if len(history.Chats[0].Messages) != 1 {
    t.Fatalf("messages missing when include_messages is set")
  }
}
