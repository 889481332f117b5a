package convert

import "strings"

// State is the lifecycle stage of a Converter.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Request names the input folder, the output folder and the document file stem.
type Request struct {
	InputDir  string `json:"input_dir"`
	OutputDir string `json:"output_dir"`
	Filename  string `json:"filename"`
}

// Result is the terminal outcome of a conversion: either a success carrying the
// number of images and the written path, or a failure carrying a user-facing message.
type Result struct {
	Success    bool   `json:"success"`
	Count      int    `json:"count,omitempty"`
	OutputPath string `json:"output_path,omitempty"`
	Message    string `json:"error,omitempty"`
	Err        error  `json:"-"`
}

// Succeeded builds a success result.
func Succeeded(count int, outputPath string) Result {
	return Result{Success: true, Count: count, OutputPath: outputPath}
}

// Failed builds a failure result whose message is the error text.
func Failed(err error) Result {
	return Result{Success: false, Message: err.Error(), Err: err}
}

// WithDefaults fills a blank input or output folder from the given defaults.
func (r Request) WithDefaults(inputDir, outputDir string) Request {
	if strings.TrimSpace(r.InputDir) == "" {
		r.InputDir = inputDir
	}
	if strings.TrimSpace(r.OutputDir) == "" {
		r.OutputDir = outputDir
	}
	return r
}
