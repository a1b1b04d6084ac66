package errordata

import (
  "errors"
  "fmt"
  "strings"
)

// Kind classifies a failure so the HTTP layer can pick a status code without
// inspecting error strings.
type Kind int

const (
  KindUnknown Kind = iota
  KindValidation
  KindAuth
  KindNotFound
  KindCollaborator
  KindStorage
)

type Error struct {
  Kind    Kind
  Message string
  // Fields carries the offending input values for validation errors,
  // e.g. the unknown symptom names.
  Fields  []string
  Err     error
}

func (e *Error) Error() string {
  msg := e.Message
  if len(e.Fields) > 0 {
    msg = fmt.Sprintf("%s: [%s]", msg, strings.Join(e.Fields, ", "))
  }
  if e.Err != nil {
    return fmt.Sprintf("%s: %v", msg, e.Err)
  }
  return msg
}

func (e *Error) Unwrap() error {
  return e.Err
}

func Validation(msg string, fields ...string) *Error {
  return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func Auth(msg string) *Error {
  return &Error{Kind: KindAuth, Message: msg}
}

func NotFound(msg string) *Error {
  return &Error{Kind: KindNotFound, Message: msg}
}

func Collaborator(msg string, err error) *Error {
  return &Error{Kind: KindCollaborator, Message: msg, Err: err}
}

func Storage(msg string, err error) *Error {
  return &Error{Kind: KindStorage, Message: msg, Err: err}
}

// KindOf walks the wrap chain and reports the first classified kind.
func KindOf(err error) Kind {
  var e *Error
  if errors.As(err, &e) {
    return e.Kind
  }
  return KindUnknown
}
