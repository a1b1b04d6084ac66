package types

import (
  "strings"
  "testing"
  "unicode/utf8"
)

func strPtr(s string) *string {
  return &s
}

func TestParseMessageLogCorrupt(t *testing.T) {
  cases := []struct {
    name string
    raw  []byte
  }{
    {"nil", nil},
    {"empty", []byte("")},
    {"not json", []byte("not json at all")},
    {"array", []byte(`["a","b"]`)},
  }
  for _, tc := range cases {
    t.Run(tc.name, func(t *testing.T) {
      ml := ParseMessageLog(tc.raw)
      if len(ml) != 0 {
        t.Fatalf("expected empty log, got %d entries", len(ml))
      }
    })
  }
}

func TestSortedKeysNumericOrder(t *testing.T) {
  ml := MessageLog{
    "message10": {Query: strPtr("j"), Response: strPtr("J")},
    "message2":  {Query: strPtr("b"), Response: strPtr("B")},
    "message1":  {Query: strPtr("a"), Response: strPtr("A")},
  }
  keys := ml.SortedKeys()
  want := []string{"message1", "message2", "message10"}
  for i, k := range want {
    if keys[i] != k {
      t.Fatalf("key %d: want %q, got %q", i, k, keys[i])
    }
  }
}

func TestSortedTurnsSkipsEmpty(t *testing.T) {
  ml := MessageLog{
    "message1": {Query: strPtr("first"), Response: strPtr("one")},
    "message2": {Query: nil, Response: nil},
    "message3": {Query: strPtr(""), Response: strPtr("")},
    "message4": {Query: strPtr("second"), Response: strPtr("two")},
  }
  turns := ml.SortedTurns()
  if len(turns) != 2 {
    t.Fatalf("expected 2 turns, got %d", len(turns))
  }
  if *turns[0].Query != "first" || *turns[1].Query != "second" {
    t.Fatalf("turns out of order: %v", turns)
  }
}

func TestNextKey(t *testing.T) {
  ml := MessageLog{}
  if got := ml.NextKey(); got != "message1" {
    t.Fatalf("empty log next key: want message1, got %s", got)
  }
  ml["message3"] = MessageTurn{Query: strPtr("q"), Response: strPtr("r")}
  if got := ml.NextKey(); got != "message4" {
    t.Fatalf("next key after message3: want message4, got %s", got)
  }
}

func TestAppend(t *testing.T) {
  ml := MessageLog{}
  key := ml.Append("hello", "hi there")
  if key != "message1" {
    t.Fatalf("want message1, got %s", key)
  }
  turn := ml[key]
  if *turn.Query != "hello" || *turn.Response != "hi there" {
    t.Fatalf("turn not stored: %+v", turn)
  }
}

func TestFirstQueryPreview(t *testing.T) {
  long := strings.Repeat("x", 80)
  ml := MessageLog{
    "message2": {Query: strPtr(long), Response: strPtr("r")},
  }
  got := ml.FirstQueryPreview(50)
  if len(got) != 53 || !strings.HasSuffix(got, "...") {
    t.Fatalf("want 50 chars plus ellipsis, got %q (len %d)", got, len(got))
  }

  ml = MessageLog{
    "message1": {Query: strPtr("short"), Response: strPtr("r")},
  }
  if got := ml.FirstQueryPreview(50); got != "short" {
    t.Fatalf("want short, got %q", got)
  }

  if got := (MessageLog{}).FirstQueryPreview(50); got != "" {
    t.Fatalf("empty log preview: want empty, got %q", got)
  }
}

func TestFirstQueryPreviewMultibyte(t *testing.T) {
  // 60 three-byte runes; a byte-wise slice would split one at the boundary.
  long := strings.Repeat("痛", 60)
  ml := MessageLog{
    "message1": {Query: strPtr(long), Response: strPtr("r")},
  }
  got := ml.FirstQueryPreview(50)
  if !utf8.ValidString(got) {
    t.Fatalf("preview is not valid UTF-8: %q", got)
  }
  runes := []rune(got)
  if len(runes) != 53 || string(runes[:50]) != strings.Repeat("痛", 50) {
    t.Fatalf("want 50 runes plus ellipsis, got %d runes: %q", len(runes), got)
  }
}
