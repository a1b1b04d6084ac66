package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/medibot-org/medibot-backend/internal/errordata"
)

// respondError maps a service error onto an HTTP status and a JSON body.
func respondError(c *gin.Context, err error) {
  status := http.StatusInternalServerError
  switch errordata.KindOf(err) {
  case errordata.KindValidation:
    status = http.StatusBadRequest
  case errordata.KindAuth:
    status = http.StatusUnauthorized
  case errordata.KindNotFound:
    status = http.StatusNotFound
  case errordata.KindCollaborator, errordata.KindStorage:
    status = http.StatusInternalServerError
  }
  c.JSON(status, gin.H{"error": err.Error()})
}
