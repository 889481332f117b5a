package docx

import "fmt"

// WriteError is returned when the document cannot be written to its target path.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("cannot write document %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
