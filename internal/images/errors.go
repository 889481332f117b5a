package images

import "fmt"

// NotFoundError is returned when the input directory is missing or is not a directory.
type NotFoundError struct {
	Dir string
	Err error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("input folder not found: %s: %v", e.Dir, e.Err)
	}
	return "input folder not found: " + e.Dir
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// DecodeError is returned when a file cannot be read or decoded as an image.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot read image %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError is returned when a decoded image cannot be re-encoded as JPEG.
// The source file was fine, so callers treat it as an internal failure.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("cannot encode image %s: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
