package types

import (
  "encoding/json"
  "fmt"
  "sort"
  "strconv"
  "strings"

  "gorm.io/datatypes"
)

const messageKeyPrefix = "message"

// MessageTurn is a single query/response pair in a chat. Either side may be
// absent; turns with neither are skipped during replay.
type MessageTurn struct {
  Query       *string       `json:"query,omitempty"`
  Response    *string       `json:"response,omitempty"`
}

func (t MessageTurn) Empty() bool {
  return (t.Query == nil || *t.Query == "") && (t.Response == nil || *t.Response == "")
}

// MessageLog is the persisted message object, keyed "message1", "message2", ...
// Ordering is defined by the numeric key suffix, not by storage order.
type MessageLog map[string]MessageTurn

// ParseMessageLog decodes a stored messages blob. Corrupt JSON or a
// non-object payload yields an empty log rather than an error, matching how
// the rest of the system treats a damaged row.
func ParseMessageLog(raw []byte) MessageLog {
  if len(raw) == 0 {
    return MessageLog{}
  }
  var out MessageLog
  if err := json.Unmarshal(raw, &out); err != nil || out == nil {
    return MessageLog{}
  }
  return out
}

func messageKeyNumber(key string) int {
  suffix := strings.TrimPrefix(key, messageKeyPrefix)
  n, err := strconv.Atoi(suffix)
  if err != nil {
    return 0
  }
  return n
}

// SortedKeys returns the log's keys in ascending numeric order. Keys without
// a numeric suffix sort as zero.
func (ml MessageLog) SortedKeys() []string {
  keys := make([]string, 0, len(ml))
  for k := range ml {
    keys = append(keys, k)
  }
  sort.Slice(keys, func(i, j int) bool {
    return messageKeyNumber(keys[i]) < messageKeyNumber(keys[j])
  })
  return keys
}

// SortedTurns returns the non-empty turns in replay order.
func (ml MessageLog) SortedTurns() []MessageTurn {
  var turns []MessageTurn
  for _, k := range ml.SortedKeys() {
    turn := ml[k]
    if turn.Empty() {
      continue
    }
    turns = append(turns, turn)
  }
  return turns
}

// NextKey returns the key for the next appended turn: one past the highest
// numeric suffix currently present.
func (ml MessageLog) NextKey() string {
  max := 0
  for k := range ml {
    if n := messageKeyNumber(k); n > max {
      max = n
    }
  }
  return fmt.Sprintf("%s%d", messageKeyPrefix, max+1)
}

// Append records a new query/response turn under the next sequential key.
func (ml MessageLog) Append(query, response string) string {
  key := ml.NextKey()
  ml[key] = MessageTurn{Query: &query, Response: &response}
  return key
}

// FirstQueryPreview returns the first turn's query truncated to limit runes,
// with "..." appended when truncated. Empty string when there is none.
func (ml MessageLog) FirstQueryPreview(limit int) string {
  for _, k := range ml.SortedKeys() {
    turn := ml[k]
    if turn.Query == nil || *turn.Query == "" {
      continue
    }
    q := []rune(*turn.Query)
    if len(q) > limit {
      return string(q[:limit]) + "..."
    }
    return *turn.Query
  }
  return ""
}

// JSON serializes the log for storage.
func (ml MessageLog) JSON() (datatypes.JSON, error) {
  raw, err := json.Marshal(ml)
  if err != nil {
    return nil, err
  }
  return datatypes.JSON(raw), nil
}
