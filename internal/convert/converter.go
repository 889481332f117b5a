// Package convert drives one image-folder-to-document conversion: it discovers
// the images, normalizes them row by row, lays them out and saves the result.
package convert

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/MeKo-Tech/tokenprinter/internal/docx"
	"github.com/MeKo-Tech/tokenprinter/internal/images"
	"golang.org/x/text/unicode/norm"
)

// DocumentExt is appended to the requested file stem.
const DocumentExt = ".docx"

// Options configures a Converter.
type Options struct {
	JPEGQuality int
	PageSize    docx.PageSize
	// Creator is stored as the document author; empty keeps the docx default.
	Creator string
	// Prefetch decodes the next row while the current one is embedded.
	Prefetch bool
	Progress ProgressCallback
	Logger   *slog.Logger
}

// Converter runs a single conversion. It moves from idle to running to either
// succeeded or failed and cannot be restarted; create a new one per conversion.
type Converter struct {
	opts       Options
	normalizer images.Normalizer

	mu    sync.Mutex
	state State
}

// New creates a Converter.
func New(opts Options) *Converter {
	if opts.Progress == nil {
		opts.Progress = NoOpProgressCallback{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.PageSize.Width == 0 {
		opts.PageSize = docx.Letter
	}
	return &Converter{
		opts:       opts,
		normalizer: images.Normalizer{Quality: opts.JPEGQuality},
	}
}

// State returns the current lifecycle stage.
func (c *Converter) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Run converts the images in req.InputDir into req.OutputDir/req.Filename.docx.
//
// Every outcome is reported through the returned Result and, once, through the
// progress callback. The document is kept in memory until the final save, so a
// failed run writes nothing.
func (c *Converter) Run(req Request) Result {
	if !c.start() {
		return Failed(ErrAlreadyRun)
	}

	processed := 0
	res, err := c.run(req, &processed)
	if err != nil {
		c.finish(StateFailed)
		c.opts.Logger.Debug("Conversion failed", "input", req.InputDir, "error", err)
		c.opts.Progress.OnError(processed, err)
		return Failed(err)
	}

	c.finish(StateSucceeded)
	c.opts.Progress.OnComplete(res)
	return res
}

func (c *Converter) start() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return false
	}
	c.state = StateRunning
	return true
}

func (c *Converter) finish(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Converter) run(req Request, processed *int) (Result, error) {
	startTime := time.Now()

	outputPath, err := OutputPath(req)
	if err != nil {
		return Result{}, err
	}

	files, err := images.Enumerate(req.InputDir)
	if err != nil {
		return Result{}, err
	}
	if len(files) == 0 {
		return Result{}, ErrNoImages
	}

	total := len(files)
	rows := images.Rows(files)

	docOpts := []docx.Option{
		docx.WithPageSize(c.opts.PageSize),
		docx.WithTitle(strings.TrimSuffix(filepath.Base(outputPath), DocumentExt)),
	}
	if c.opts.Creator != "" {
		docOpts = append(docOpts, docx.WithCreator(c.opts.Creator))
	}
	doc := docx.New(docOpts...)

	c.opts.Logger.Info("Starting conversion",
		"input", req.InputDir,
		"output", outputPath,
		"images", total,
		"rows", len(rows),
		"page", doc.PageSize().Name,
		"margin_twips", doc.Margins().Top,
	)
	c.opts.Progress.OnStart(total)

	// The document references the pooled JPEG bytes until it is saved.
	var embedded []normalizedRow
	defer func() {
		for _, r := range embedded {
			r.release()
		}
	}()

	emit := func(row normalizedRow) error {
		embedded = append(embedded, row)
		if err := doc.AddRow(row.pics...); err != nil {
			return err
		}
		*processed += len(row.pics)
		c.opts.Logger.Debug("Row embedded",
			"row", doc.Len(),
			"pictures", doc.PictureCount(),
			"processed", *processed,
			"total", total)
		c.opts.Progress.OnProgress(*processed, total)
		return nil
	}

	if c.opts.Prefetch && len(rows) > 1 {
		err = c.embedPrefetched(rows, emit)
	} else {
		err = c.embedSequential(rows, emit)
	}
	if err != nil {
		return Result{}, err
	}

	if err := doc.Save(outputPath); err != nil {
		return Result{}, err
	}

	c.opts.Logger.Info("Conversion completed",
		"count", total,
		"path", outputPath,
		"duration", time.Since(startTime).Round(time.Millisecond),
	)
	return Succeeded(total, outputPath), nil
}

// normalizedRow is one row ready for the document, plus the images whose
// buffers back its JPEG bytes.
type normalizedRow struct {
	pics    []docx.Picture
	sources []*images.Normalized
}

func (r normalizedRow) release() {
	for _, n := range r.sources {
		n.Release()
	}
}

func (c *Converter) embedSequential(rows [][]string, emit func(normalizedRow) error) error {
	for _, row := range rows {
		nr, err := c.normalizeRow(row)
		if err != nil {
			return err
		}
		if err := emit(nr); err != nil {
			return err
		}
	}
	return nil
}

type rowResult struct {
	row normalizedRow
	err error
}

// embedPrefetched normalizes rows on a separate goroutine, one row ahead of the
// embedding loop. Rows still arrive in order; the first error stops both sides.
func (c *Converter) embedPrefetched(rows [][]string, emit func(normalizedRow) error) error {
	results := make(chan rowResult, 1)
	done := make(chan struct{})
	defer func() {
		close(done)
		// rows decoded ahead of a failure never reach emit
		for r := range results {
			r.row.release()
		}
	}()

	go func() {
		defer close(results)
		for _, row := range rows {
			select {
			case <-done:
				return
			default:
			}
			nr, err := c.normalizeRow(row)
			select {
			case results <- rowResult{row: nr, err: err}:
			case <-done:
				nr.release()
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for r := range results {
		if r.err != nil {
			return r.err
		}
		if err := emit(r.row); err != nil {
			return err
		}
	}
	return nil
}

func (c *Converter) normalizeRow(row []string) (normalizedRow, error) {
	nr := normalizedRow{
		pics:    make([]docx.Picture, 0, len(row)),
		sources: make([]*images.Normalized, 0, len(row)),
	}
	for _, path := range row {
		n, err := c.normalizer.Normalize(path)
		if err != nil {
			nr.release()
			return normalizedRow{}, err
		}
		nr.sources = append(nr.sources, n)
		nr.pics = append(nr.pics, docx.Picture{
			Name:   filepath.Base(path),
			JPEG:   n.JPEG,
			Width:  n.Width(),
			Height: n.Height(),
		})
	}
	return nr, nil
}

// Validate checks that every field of req is filled in and that the file stem
// is a plain name.
func Validate(req Request) error {
	if strings.TrimSpace(req.InputDir) == "" {
		return &InvalidInputError{Field: FieldInputDir}
	}
	if strings.TrimSpace(req.OutputDir) == "" {
		return &InvalidInputError{Field: FieldOutputDir}
	}
	stem := strings.TrimSpace(req.Filename)
	if stem == "" {
		return &InvalidInputError{Field: FieldFilename}
	}
	if strings.ContainsAny(stem, `/\`) || stem == "." || stem == ".." {
		return &InvalidInputError{Field: FieldFilename, Reason: "must be a plain name without folders"}
	}
	return nil
}

// OutputPath validates req and returns OutputDir/<stem>.docx. The stem is
// trimmed and NFC-normalized so names typed on different systems match.
func OutputPath(req Request) (string, error) {
	if err := Validate(req); err != nil {
		return "", err
	}
	stem := norm.NFC.String(strings.TrimSpace(req.Filename))
	return filepath.Join(req.OutputDir, stem+DocumentExt), nil
}

// IsUserError reports whether err stems from the request or the input folder
// rather than from reading images or writing the document.
func IsUserError(err error) bool {
	var invalid *InvalidInputError
	var notFound *images.NotFoundError
	return errors.As(err, &invalid) || errors.As(err, &notFound) || errors.Is(err, ErrNoImages)
}
