package model

import (
  "encoding/csv"
  "fmt"
  "os"
  "strings"
)

// Vocabulary is the canonical ordered list of recognized symptom names. The
// order fixes the feature-vector index of every symptom.
type Vocabulary struct {
  symptoms    []string
  index       map[string]int
}

func NewVocabulary(symptoms []string) *Vocabulary {
  idx := make(map[string]int, len(symptoms))
  for i, s := range symptoms {
    idx[s] = i
  }
  return &Vocabulary{symptoms: symptoms, index: idx}
}

// LoadVocabulary reads a one-symptom-per-line CSV file.
func LoadVocabulary(path string) (*Vocabulary, error) {
  f, err := os.Open(path)
  if err != nil {
    return nil, fmt.Errorf("failed to open symptom vocabulary %q: %w", path, err)
  }
  defer f.Close()

  reader := csv.NewReader(f)
  reader.FieldsPerRecord = -1
  records, err := reader.ReadAll()
  if err != nil {
    return nil, fmt.Errorf("failed to parse symptom vocabulary %q: %w", path, err)
  }
  var symptoms []string
  for _, rec := range records {
    if len(rec) == 0 {
      continue
    }
    name := strings.TrimSpace(rec[0])
    if name == "" {
      continue
    }
    symptoms = append(symptoms, name)
  }
  if len(symptoms) == 0 {
    return nil, fmt.Errorf("symptom vocabulary %q is empty", path)
  }
  return NewVocabulary(symptoms), nil
}

func (v *Vocabulary) Len() int {
  return len(v.symptoms)
}

func (v *Vocabulary) Symptoms() []string {
  return v.symptoms
}

func (v *Vocabulary) Contains(name string) bool {
  _, ok := v.index[name]
  return ok
}

// Invalid returns the given names that are not part of the vocabulary, in
// input order. Callers reject a request when this is non-empty.
func (v *Vocabulary) Invalid(selected []string) []string {
  var out []string
  for _, s := range selected {
    if !v.Contains(s) {
      out = append(out, s)
    }
  }
  return out
}

// Vectorize maps a symptom set onto the fixed-order binary feature vector.
// Names outside the vocabulary are silently ignored; rejection of unknown
// names is the boundary's job.
func (v *Vocabulary) Vectorize(selected []string) []float64 {
  vec := make([]float64, len(v.symptoms))
  for _, s := range selected {
    if i, ok := v.index[s]; ok {
      vec[i] = 1
    }
  }
  return vec
}

// Search returns up to limit vocabulary entries containing the query as a
// case-insensitive substring, in vocabulary order.
func (v *Vocabulary) Search(query string, limit int) []string {
  q := strings.ToLower(query)
  out := []string{}
  for _, s := range v.symptoms {
    if strings.Contains(strings.ToLower(s), q) {
      out = append(out, s)
      if len(out) >= limit {
        break
      }
    }
  }
  return out
}
