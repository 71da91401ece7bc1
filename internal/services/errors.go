package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures so every one is attributable to a
// specific resume and stage.
type ErrorKind string

const (
	KindExtraction  ErrorKind = "extraction_error"
	KindParse       ErrorKind = "parse_error"
	KindScoring     ErrorKind = "scoring_error"
	KindCardinality ErrorKind = "cardinality_error"
	KindTimeout     ErrorKind = "timeout_error"
)

// Pipeline stage names used in failure reports.
const (
	StageExtract = "extract"
	StageParse   = "parse"
	StageMatch   = "match"
)

// StageError is a failure of one resume at one pipeline stage. It wraps the
// underlying cause for errors.Is/As.
type StageError struct {
	Kind   ErrorKind
	Resume string
	Stage  string
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: resume %q failed at stage %s: %v", e.Kind, e.Resume, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func NewStageError(kind ErrorKind, resume, stage string, err error) *StageError {
	return &StageError{Kind: kind, Resume: resume, Stage: stage, Err: err}
}

// ErrCardinality rejects a whole screening request before any per-resume
// processing happens.
var ErrCardinality = errors.New("resume count must be between 1 and 10")
