package model

import (
  "encoding/csv"
  "fmt"
  "os"
  "strconv"
  "strings"
)

// DiseaseMapping resolves the classifier's class index to a disease name.
type DiseaseMapping struct {
  byClass map[int]string
}

// LoadDiseaseMapping reads a CSV with "Disease" and "Encoded" columns.
func LoadDiseaseMapping(path string) (*DiseaseMapping, error) {
  f, err := os.Open(path)
  if err != nil {
    return nil, fmt.Errorf("failed to open disease mapping %q: %w", path, err)
  }
  defer f.Close()

  reader := csv.NewReader(f)
  records, err := reader.ReadAll()
  if err != nil {
    return nil, fmt.Errorf("failed to parse disease mapping %q: %w", path, err)
  }
  if len(records) < 2 {
    return nil, fmt.Errorf("disease mapping %q has no data rows", path)
  }

  diseaseCol, encodedCol := -1, -1
  for i, col := range records[0] {
    switch strings.TrimSpace(col) {
    case "Disease":
      diseaseCol = i
    case "Encoded":
      encodedCol = i
    }
  }
  if diseaseCol < 0 || encodedCol < 0 {
    return nil, fmt.Errorf("disease mapping %q is missing Disease/Encoded columns", path)
  }

  byClass := make(map[int]string, len(records)-1)
  for _, rec := range records[1:] {
    if len(rec) <= diseaseCol || len(rec) <= encodedCol {
      continue
    }
    class, cErr := strconv.Atoi(strings.TrimSpace(rec[encodedCol]))
    if cErr != nil {
      return nil, fmt.Errorf("disease mapping %q has non-numeric class %q: %w", path, rec[encodedCol], cErr)
    }
    byClass[class] = strings.TrimSpace(rec[diseaseCol])
  }
  return &DiseaseMapping{byClass: byClass}, nil
}

func NewDiseaseMapping(byClass map[int]string) *DiseaseMapping {
  return &DiseaseMapping{byClass: byClass}
}

func (dm *DiseaseMapping) Len() int {
  return len(dm.byClass)
}

// DiseaseFor resolves a class index. An unknown index is an error: it means
// the model and the mapping file disagree.
func (dm *DiseaseMapping) DiseaseFor(class int) (string, error) {
  name, ok := dm.byClass[class]
  if !ok {
    return "", fmt.Errorf("no disease mapped to class %d", class)
  }
  return name, nil
}
