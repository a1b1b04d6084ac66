package model

import (
  "testing"
)

func testVocab() *Vocabulary {
  return NewVocabulary([]string{"itching", "skin_rash", "headache", "high_fever", "fatigue"})
}

func TestInvalidPreservesInputOrder(t *testing.T) {
  v := testVocab()
  invalid := v.Invalid([]string{"headache", "zzz", "itching", "aaa"})
  if len(invalid) != 2 || invalid[0] != "zzz" || invalid[1] != "aaa" {
    t.Fatalf("want [zzz aaa], got %v", invalid)
  }
  if got := v.Invalid([]string{"headache"}); len(got) != 0 {
    t.Fatalf("want no invalid symptoms, got %v", got)
  }
}

func TestVectorize(t *testing.T) {
  v := testVocab()
  vec := v.Vectorize([]string{"itching", "high_fever"})
  if len(vec) != v.Len() {
    t.Fatalf("vector length: want %d, got %d", v.Len(), len(vec))
  }
  want := []float64{1, 0, 0, 1, 0}
  for i := range want {
    if vec[i] != want[i] {
      t.Fatalf("vector[%d]: want %v, got %v", i, want[i], vec[i])
    }
  }
}

func TestSearch(t *testing.T) {
  v := testVocab()
  got := v.Search("FEVER", 10)
  if len(got) != 1 || got[0] != "high_fever" {
    t.Fatalf("case-insensitive search: want [high_fever], got %v", got)
  }
  if got := v.Search("nope", 10); got == nil || len(got) != 0 {
    t.Fatalf("no-match search must return an empty slice, got %v", got)
  }
  if got := v.Search("i", 2); len(got) != 2 {
    t.Fatalf("limit not applied: got %v", got)
  }
}
