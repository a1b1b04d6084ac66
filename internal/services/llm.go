package services

import (
  "context"
  "fmt"
  "strings"
  "time"

  "github.com/google/generative-ai-go/genai"
  "google.golang.org/api/option"

  "github.com/medibot-org/medibot-backend/internal/errordata"
  "github.com/medibot-org/medibot-backend/internal/logger"
  "github.com/medibot-org/medibot-backend/internal/types"
)

// LLMService generates conversational replies about a diagnosis. History is
// replayed into the underlying chat session on every call so the service
// itself stays stateless.
type LLMService interface {
  GenerateReply(ctx context.Context, systemInstruction string, history []types.MessageTurn, query string) (string, error)
  Close() error
}

type geminiService struct {
  log       *logger.Logger
  client    *genai.Client
  modelName string
  timeout   time.Duration
}

func NewGeminiService(ctx context.Context, log *logger.Logger, apiKey, modelName string) (LLMService, error) {
  serviceLog := log.With("service", "GeminiService")
  if apiKey == "" {
    return nil, fmt.Errorf("missing Gemini API key")
  }
  if modelName == "" {
    modelName = "gemini-1.5-flash"
  }
  client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
  if err != nil {
    serviceLog.Error("failed to create Gemini client", "error", err)
    return nil, fmt.Errorf("failed to create Gemini client: %w", err)
  }
  serviceLog.Info("Successfully created Gemini client :)", "model", modelName)
  return &geminiService{
    log:       serviceLog,
    client:    client,
    modelName: modelName,
    timeout:   60 * time.Second,
  }, nil
}

func (gs *geminiService) GenerateReply(ctx context.Context, systemInstruction string, history []types.MessageTurn, query string) (string, error) {
  ctx, cancel := context.WithTimeout(ctx, gs.timeout)
  defer cancel()

  model := gs.client.GenerativeModel(gs.modelName)
  if systemInstruction != "" {
    model.SystemInstruction = &genai.Content{
      Parts: []genai.Part{genai.Text(systemInstruction)},
    }
  }

  chat := model.StartChat()
  for _, turn := range history {
    if turn.Query != nil && *turn.Query != "" {
      chat.History = append(chat.History, &genai.Content{
        Role:  "user",
        Parts: []genai.Part{genai.Text(*turn.Query)},
      })
    }
    if turn.Response != nil && *turn.Response != "" {
      chat.History = append(chat.History, &genai.Content{
        Role:  "model",
        Parts: []genai.Part{genai.Text(*turn.Response)},
      })
    }
  }

  resp, err := chat.SendMessage(ctx, genai.Text(query))
  if err != nil {
    gs.log.Warn("Gemini call failed", "error", err)
    return "", errordata.Collaborator("language model call failed", err)
  }
  if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
    gs.log.Warn("Gemini returned no candidates")
    return "", errordata.Collaborator("language model returned no candidates", nil)
  }

  var b strings.Builder
  for _, part := range resp.Candidates[0].Content.Parts {
    if text, ok := part.(genai.Text); ok {
      b.WriteString(string(text))
    }
  }
  reply := strings.TrimSpace(b.String())
  if reply == "" {
    gs.log.Warn("Gemini returned an empty reply")
    return "", errordata.Collaborator("language model returned an empty reply", nil)
  }
  return reply, nil
}

func (gs *geminiService) Close() error {
  return gs.client.Close()
}
