package handlers

import (
  "net/http"
  "strconv"
  "time"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/medibot-org/medibot-backend/internal/logger"
  "github.com/medibot-org/medibot-backend/internal/services"
)

const (
  defaultPerPage = 20
  minPerPage     = 5
  maxPerPage     = 100
)

type ChatHandler struct {
  log               *logger.Logger
  chatService       services.ChatService
  confidenceService services.ConfidenceService
}

func NewChatHandler(baseLog *logger.Logger, chatService services.ChatService, confidenceService services.ConfidenceService) *ChatHandler {
  handlerLog := baseLog.With("handler", "ChatHandler")
  return &ChatHandler{
    log:               handlerLog,
    chatService:       chatService,
    confidenceService: confidenceService,
  }
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
  var req struct {
    ChatID uuid.UUID  `json:"chat_id"`
    Query  string     `json:"query"`
    SentAt *time.Time `json:"sent_at"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  if req.ChatID == uuid.Nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "chat_id is required"})
    return
  }
  reply, err := h.chatService.SendMessage(c.Request.Context(), req.ChatID, req.Query)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{
    "chat_id":     reply.ChatID,
    "response":    reply.Response,
    "response_at": reply.ResponseAt,
  })
}

func (h *ChatHandler) History(c *gin.Context) {
  page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
  if err != nil || page < 1 {
    c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a positive integer"})
    return
  }
  perPage, err := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPerPage)))
  if err != nil || perPage < minPerPage || perPage > maxPerPage {
    c.JSON(http.StatusBadRequest, gin.H{"error": "per_page must be between 5 and 100"})
    return
  }
  includeMessages := c.DefaultQuery("include_messages", "false") == "true"
  recomputeConfidence := c.DefaultQuery("recompute_confidence", "false") == "true"

  history, err := h.chatService.History(c.Request.Context(), page, perPage, includeMessages, recomputeConfidence)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, history)
}

func (h *ChatHandler) UpdateConfidence(c *gin.Context) {
  chatID, err := uuid.Parse(c.Query("chat_id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "chat_id must be a valid uuid"})
    return
  }
  confidence, err := h.confidenceService.Recompute(c.Request.Context(), chatID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{
    "message":    "Confidence updated successfully",
    "chat_id":    chatID,
    "confidence": confidence,
  })
}
