package services

import (
  "context"
  "errors"
  "fmt"
  "strings"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/medibot-org/medibot-backend/internal/errordata"
  "github.com/medibot-org/medibot-backend/internal/logger"
  "github.com/medibot-org/medibot-backend/internal/repos"
  "github.com/medibot-org/medibot-backend/internal/requestdata"
  "github.com/medibot-org/medibot-backend/internal/types"
)

const previewLimit = 50

// suggestedQueryTemplates rewrites the canned follow-up buttons into prompts
// that mention the diagnosed disease by name.
var suggestedQueryTemplates = map[string]string{
  "Explain my disease in simple words":  "Explain my %s in simple words.",
  "Is this curable? If yes, how long?":  "Is %s curable? If yes, how long?",
  "Write prescription & health tips":    "Write prescription & health tips for me to recover from %s.",
  "When should I see a doctor?":         "When should I see a doctor for my %s?",
}

const systemInstructionTemplate = `You are a helpful medical assistant. The user has been diagnosed with %s based on these symptoms: %s. Answer follow-up questions about this diagnosis clearly and concisely. Remind the user to consult a doctor for anything serious. Do not diagnose new conditions.`

// ChatReply is the outcome of one conversational turn.
type ChatReply struct {
  ChatID     uuid.UUID `json:"chat_id"`
  Response   string    `json:"response"`
  ResponseAt time.Time `json:"response_at"`
}

// ChatSummary is one row of a history listing.
type ChatSummary struct {
  ChatID     uuid.UUID         `json:"chat_id"`
  UserID     uuid.UUID         `json:"user_id"`
  Disease    *string           `json:"disease"`
  Confidence *string           `json:"confidence,omitempty"`
  Preview    string            `json:"preview"`
  Messages   types.MessageLog  `json:"messages,omitempty"`
  CreatedAt  time.Time         `json:"created_at"`
}

type Pagination struct {
  Page    int   `json:"page"`
  PerPage int   `json:"per_page"`
  Total   int64 `json:"total"`
  Pages   int   `json:"pages"`
}

type ChatHistoryPage struct {
  Chats      []ChatSummary `json:"chats"`
  Pagination Pagination    `json:"pagination"`
}

type ChatService interface {
  SendMessage(ctx context.Context, chatID uuid.UUID, query string) (*ChatReply, error)
  History(ctx context.Context, page, perPage int, includeMessages, recomputeConfidence bool) (*ChatHistoryPage, error)
}

type chatService struct {
  db         *gorm.DB
  log        *logger.Logger
  chatRepo   repos.ChatRepo
  llm        LLMService
  confidence ConfidenceService
}

func NewChatService(
  db *gorm.DB,
  baseLog *logger.Logger,
  chatRepo repos.ChatRepo,
  llm LLMService,
  confidence ConfidenceService,
) ChatService {
  serviceLog := baseLog.With("service", "ChatService")
  return &chatService{
    db:         db,
    log:        serviceLog,
    chatRepo:   chatRepo,
    llm:        llm,
    confidence: confidence,
  }
}

func (cs *chatService) SendMessage(ctx context.Context, chatID uuid.UUID, query string) (*ChatReply, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return nil, errordata.Auth("missing request identity")
  }
  query = strings.TrimSpace(query)
  if query == "" {
    return nil, errordata.Validation("query must not be empty")
  }
  chat, err := cs.chatRepo.GetByID(ctx, nil, rd.UserID, chatID)
  if err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, errordata.NotFound("chat not found")
    }
    return nil, errordata.Storage("failed to load chat", err)
  }

  disease := ""
  if chat.Disease != nil {
    disease = *chat.Disease
  }
  prompt := query
  if template, ok := suggestedQueryTemplates[query]; ok {
    prompt = fmt.Sprintf(template, disease)
  }
  symptoms := chat.SymptomList()
  instruction := fmt.Sprintf(systemInstructionTemplate, disease, strings.Join(symptoms, ", "))

  msgLog := chat.Log()
  reply, err := cs.llm.GenerateReply(ctx, instruction, msgLog.SortedTurns(), prompt)
  if err != nil {
    return nil, err
  }

  msgLog.Append(query, reply)
  raw, err := msgLog.JSON()
  if err != nil {
    return nil, errordata.Storage("failed to encode message log", err)
  }
  if err := cs.chatRepo.UpdateMessages(ctx, nil, rd.UserID, chat.ID, raw); err != nil {
    return nil, errordata.Storage("failed to store message log", err)
  }
  cs.log.Debug("Chat turn stored", "chatID", chat.ID, "turns", len(msgLog))
  return &ChatReply{
    ChatID:     chat.ID,
    Response:   reply,
    ResponseAt: time.Now(),
  }, nil
}

func (cs *chatService) History(ctx context.Context, page, perPage int, includeMessages, recomputeConfidence bool) (*ChatHistoryPage, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return nil, errordata.Auth("missing request identity")
  }
  chats, total, err := cs.chatRepo.ListByUser(ctx, nil, rd.UserID, page, perPage)
  if err != nil {
    return nil, errordata.Storage("failed to list chats", err)
  }
  confidences := cs.confidence.ResolveForListing(ctx, chats, recomputeConfidence)

  summaries := make([]ChatSummary, 0, len(chats))
  for i, chat := range chats {
    msgLog := chat.Log()
    summary := ChatSummary{
      ChatID:     chat.ID,
      UserID:     chat.UserID,
      Disease:    chat.Disease,
      Confidence: confidences[i],
      Preview:    msgLog.FirstQueryPreview(previewLimit),
      CreatedAt:  chat.CreatedAt,
    }
    if includeMessages {
      summary.Messages = msgLog
    }
    summaries = append(summaries, summary)
  }

  pages := int((total + int64(perPage) - 1) / int64(perPage))
  return &ChatHistoryPage{
    Chats: summaries,
    Pagination: Pagination{
      Page:    page,
      PerPage: perPage,
      Total:   total,
      Pages:   pages,
    },
  }, nil
}
