package services

import (
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "io"
  "net/http"
  "strconv"
  "strings"
  "time"

  "github.com/redis/go-redis/v9"

  "github.com/medibot-org/medibot-backend/internal/errordata"
  "github.com/medibot-org/medibot-backend/internal/logger"
)

// ClassifierService calls the external model server with a symptom feature
// vector and returns the probability distribution over disease classes.
type ClassifierService interface {
  Classify(ctx context.Context, vector []float64) ([]float64, error)
}

type classifierService struct {
  log               *logger.Logger
  client            *http.Client
  baseURL           string
  modelName         string
  cache             *redis.Client
  cacheTTL          time.Duration
}

type classifyRequest struct {
  Instances   [][]float64   `json:"instances"`
}

type classifyResponse struct {
  Predictions [][]float64   `json:"predictions"`
}

// NewClassifierService wires the model-server HTTP client. cache may be nil,
// in which case every call hits the model server.
func NewClassifierService(log *logger.Logger, baseURL, modelName string, cache *redis.Client) (ClassifierService, error) {
  serviceLog := log.With("service", "ClassifierService")
  if baseURL == "" {
    return nil, fmt.Errorf("missing model server base URL")
  }
  if modelName == "" {
    return nil, fmt.Errorf("missing model name")
  }
  httpClient := &http.Client{
    Timeout: 30 * time.Second,
  }
  return &classifierService{
    log:       serviceLog,
    client:    httpClient,
    baseURL:   strings.TrimRight(baseURL, "/"),
    modelName: modelName,
    cache:     cache,
    cacheTTL:  time.Hour,
  }, nil
}

// cacheKey encodes a binary feature vector as the list of set indices, which
// is stable and much shorter than the vector itself.
func (cs *classifierService) cacheKey(vector []float64) string {
  var b strings.Builder
  b.WriteString("medibot:classify:")
  b.WriteString(cs.modelName)
  b.WriteString(":")
  first := true
  for i, v := range vector {
    if v == 0 {
      continue
    }
    if !first {
      b.WriteString(",")
    }
    b.WriteString(strconv.Itoa(i))
    first = false
  }
  return b.String()
}

func (cs *classifierService) Classify(ctx context.Context, vector []float64) ([]float64, error) {
  key := cs.cacheKey(vector)
  if cs.cache != nil {
    cached, err := cs.cache.Get(ctx, key).Result()
    if err == nil {
      var dist []float64
      if jErr := json.Unmarshal([]byte(cached), &dist); jErr == nil && len(dist) > 0 {
        cs.log.Debug("Classifier cache hit", "key", key)
        return dist, nil
      }
      cs.log.Warn("Classifier cache entry is corrupt, ignoring", "key", key)
    } else if err != redis.Nil {
      cs.log.Warn("Classifier cache read failed, falling through to model server", "error", err)
    }
  }

  dist, err := cs.callModelServer(ctx, vector)
  if err != nil {
    return nil, err
  }

  if cs.cache != nil {
    raw, jErr := json.Marshal(dist)
    if jErr == nil {
      if sErr := cs.cache.Set(ctx, key, raw, cs.cacheTTL).Err(); sErr != nil {
        cs.log.Warn("Classifier cache write failed", "error", sErr)
      }
    }
  }
  return dist, nil
}

func (cs *classifierService) callModelServer(ctx context.Context, vector []float64) ([]float64, error) {
  reqURL := fmt.Sprintf("%s/v1/models/%s:predict", cs.baseURL, cs.modelName)
  payload, err := json.Marshal(classifyRequest{Instances: [][]float64{vector}})
  if err != nil {
    return nil, fmt.Errorf("failed to encode classify request: %w", err)
  }
  req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
  if err != nil {
    cs.log.Warn("failed to build model server request", "error", err)
    return nil, errordata.Collaborator("failed to build model server request", err)
  }
  req.Header.Set("Content-Type", "application/json")

  resp, err := cs.client.Do(req)
  if err != nil {
    cs.log.Warn("failed to call model server", "error", err)
    return nil, errordata.Collaborator("model server call failed", err)
  }
  defer resp.Body.Close()

  if resp.StatusCode < 200 || resp.StatusCode > 299 {
    bodyBytes, _ := io.ReadAll(resp.Body)
    cs.log.Warn("model server responded with non-2xx", "statusCode", resp.StatusCode, "body", string(bodyBytes))
    return nil, errordata.Collaborator(fmt.Sprintf("model server HTTP %d", resp.StatusCode), fmt.Errorf("%s", string(bodyBytes)))
  }
  bodyBytes, err := io.ReadAll(resp.Body)
  if err != nil {
    cs.log.Warn("failed to read model server response body", "error", err)
    return nil, errordata.Collaborator("failed to read model server response", err)
  }
  var out classifyResponse
  if err := json.Unmarshal(bodyBytes, &out); err != nil {
    cs.log.Warn("failed to decode model server response", "error", err)
    return nil, errordata.Collaborator("failed to decode model server response", err)
  }
  if len(out.Predictions) == 0 || len(out.Predictions[0]) == 0 {
    cs.log.Warn("model server returned an empty distribution")
    return nil, errordata.Collaborator("model server returned an empty distribution", nil)
  }
  cs.log.Debug("Model server call success", "classes", len(out.Predictions[0]))
  return out.Predictions[0], nil
}
