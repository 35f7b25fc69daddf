package batch

import "fmt"

// Operations reported in FileError.Op.
const (
	OpRead  = "read"
	OpParse = "parse"
	OpWrite = "write"
)

// FileError is the failure of one input file. It never aborts a batch.
type FileError struct {
	// File is the input file path.
	File string
	// Op is the stage that failed: read | parse | write.
	Op  string
	Err error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("batch: %s %s: %v", e.Op, e.File, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }
