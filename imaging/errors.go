package imaging

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrDirectoryNotFound is returned when the input directory does not exist
// or is not a directory. It aborts the run before any output is created.
var ErrDirectoryNotFound = errors.New("input directory not found")

// ErrOutputExists marks a task that was skipped because its output file is
// already present and overwriting was disabled.
var ErrOutputExists = errors.New("output file already exists")

// Stage identifies where in the per-image pipeline a failure happened
type Stage string

const (
	StageRead   Stage = "read"
	StageDecode Stage = "decode"
	StageRemove Stage = "remove"
	StageEncode Stage = "encode"
)

// TaskError wraps a per-image failure with the pipeline stage it occurred
// in. Task errors are contained at the task level and only surface in the
// run summary.
type TaskError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, filepath.Base(e.Path), e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }
