package convert

import (
	"errors"
	"fmt"
)

// ErrNoImages is returned when the input folder holds no supported image files.
var ErrNoImages = errors.New("No images found in selected folder") //nolint:staticcheck // ST1005: shown to users verbatim

// ErrAlreadyRun is returned when Run is called on a Converter that has already started.
var ErrAlreadyRun = errors.New("converter has already run; create a new one per conversion")

// InvalidInputError reports a blank required field.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("Invalid %s: %s", e.Field, e.Reason)
	}
	switch e.Field {
	case FieldInputDir:
		return "Please select an input folder"
	case FieldOutputDir:
		return "Please select an output folder"
	case FieldFilename:
		return "Please enter a filename"
	default:
		return fmt.Sprintf("Please provide %s", e.Field)
	}
}

// Request field names used in InvalidInputError.
const (
	FieldInputDir  = "input_dir"
	FieldOutputDir = "output_dir"
	FieldFilename  = "filename"
)
