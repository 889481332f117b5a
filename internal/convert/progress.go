package convert

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressCallback receives progress from a conversion. Calls arrive in order
// from the goroutine running the conversion.
type ProgressCallback interface {
	// OnStart is called once the images are known, with the total image count.
	OnStart(total int)

	// OnProgress is called after each row with the number of images embedded so far.
	OnProgress(processed, total int)

	// OnComplete is called once with the successful result.
	OnComplete(res Result)

	// OnError is called once when the conversion fails.
	OnError(processed int, err error)
}

// NoOpProgressCallback implements ProgressCallback but does nothing.
type NoOpProgressCallback struct{}

func (NoOpProgressCallback) OnStart(total int)                {}
func (NoOpProgressCallback) OnProgress(processed, total int)  {}
func (NoOpProgressCallback) OnComplete(res Result)            {}
func (NoOpProgressCallback) OnError(processed int, err error) {}

const barWidth = 40

// ConsoleProgressCallback draws a progress bar on a terminal.
type ConsoleProgressCallback struct {
	writer    io.Writer
	prefix    string
	width     int
	mutex     sync.Mutex
	startTime time.Time
}

// NewConsoleProgressCallback creates a console progress reporter.
func NewConsoleProgressCallback(writer io.Writer, prefix string) *ConsoleProgressCallback {
	if writer == nil {
		writer = os.Stderr
	}
	return &ConsoleProgressCallback{
		writer: writer,
		prefix: prefix,
		width:  barWidth,
	}
}

func (c *ConsoleProgressCallback) OnStart(total int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.startTime = time.Now()
	_, _ = fmt.Fprintf(c.writer, "%sProcessing %d images...\n", c.prefix, total)
}

func (c *ConsoleProgressCallback) OnProgress(processed, total int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if total == 0 {
		return
	}
	filled := c.width * processed / total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", c.width-filled)
	_, _ = fmt.Fprintf(c.writer, "\r%s[%s] %d/%d", c.prefix, bar, processed, total)
}

func (c *ConsoleProgressCallback) OnComplete(res Result) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	elapsed := time.Since(c.startTime)
	_, _ = fmt.Fprintf(c.writer, "\n%sSaving document... done in %v\n", c.prefix, elapsed.Round(time.Millisecond))
}

func (c *ConsoleProgressCallback) OnError(processed int, err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	_, _ = fmt.Fprintf(c.writer, "\n%sFailed after %d images: %v\n", c.prefix, processed, err)
}

// LogProgressCallback logs progress updates using slog.
type LogProgressCallback struct {
	logger    *slog.Logger
	level     slog.Level
	startTime time.Time
}

// NewLogProgressCallback creates a log-based progress reporter.
func NewLogProgressCallback(logger *slog.Logger, level slog.Level) *LogProgressCallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogProgressCallback{logger: logger, level: level}
}

func (l *LogProgressCallback) OnStart(total int) {
	l.startTime = time.Now()
	l.logger.Log(context.Background(), l.level, "Processing images", "total", total)
}

func (l *LogProgressCallback) OnProgress(processed, total int) {
	l.logger.Log(context.Background(), l.level, fmt.Sprintf("Processing image %d of %d", processed, total),
		"processed", processed,
		"total", total,
		"elapsed", time.Since(l.startTime).Round(time.Millisecond),
	)
}

func (l *LogProgressCallback) OnComplete(res Result) {
	l.logger.Log(context.Background(), l.level, "Document saved", "count", res.Count, "path", res.OutputPath)
}

func (l *LogProgressCallback) OnError(processed int, err error) {
	l.logger.Log(context.Background(), slog.LevelError, "Conversion failed", "processed", processed, "error", err)
}

// MultiProgressCallback fans progress out to several callbacks.
type MultiProgressCallback struct {
	callbacks []ProgressCallback
}

// NewMultiProgressCallback creates a progress callback that reports to multiple callbacks.
func NewMultiProgressCallback(callbacks ...ProgressCallback) *MultiProgressCallback {
	return &MultiProgressCallback{callbacks: callbacks}
}

// Add adds another progress callback.
func (m *MultiProgressCallback) Add(callback ProgressCallback) {
	m.callbacks = append(m.callbacks, callback)
}

func (m *MultiProgressCallback) OnStart(total int) {
	for _, cb := range m.callbacks {
		cb.OnStart(total)
	}
}

func (m *MultiProgressCallback) OnProgress(processed, total int) {
	for _, cb := range m.callbacks {
		cb.OnProgress(processed, total)
	}
}

func (m *MultiProgressCallback) OnComplete(res Result) {
	for _, cb := range m.callbacks {
		cb.OnComplete(res)
	}
}

func (m *MultiProgressCallback) OnError(processed int, err error) {
	for _, cb := range m.callbacks {
		cb.OnError(processed, err)
	}
}
