// Package docx writes WordprocessingML (.docx) documents made of rows of
// pictures: one paragraph per row, pictures embedded inline at a fixed width.
package docx

import (
	"errors"
	"fmt"
	"time"
)

// MaxPicturesPerRow is the largest number of pictures a single paragraph may hold.
const MaxPicturesPerRow = 2

// Picture is an encoded JPEG with its pixel dimensions.
type Picture struct {
	Name   string
	JPEG   []byte
	Width  int
	Height int
}

// Placement is a picture as laid out in the document.
type Placement struct {
	Name   string
	RelID  string
	Target string
	CX     int64
	CY     int64
}

// Block is one paragraph of the document, holding the pictures of one row.
type Block struct {
	Pictures []Placement
}

type media struct {
	target string
	data   []byte
}

// Document is an in-memory .docx. Nothing touches the disk until Save.
type Document struct {
	page     PageSize
	margins  Margins
	title    string
	creator  string
	created  time.Time
	width    int64
	blocks   []Block
	media    []media
	pictures int
}

// Option configures a Document.
type Option func(*Document)

// WithPageSize sets the paper size.
func WithPageSize(p PageSize) Option {
	return func(d *Document) { d.page = p }
}

// WithTitle sets the title stored in the document properties.
func WithTitle(title string) Option {
	return func(d *Document) { d.title = title }
}

// WithCreator sets the author stored in the document properties.
func WithCreator(creator string) Option {
	return func(d *Document) { d.creator = creator }
}

// WithCreated sets the creation timestamp stored in the document properties.
func WithCreated(t time.Time) Option {
	return func(d *Document) { d.created = t }
}

// New creates an empty document with 10 mm margins on all sides.
func New(opts ...Option) *Document {
	d := &Document{
		page:    Letter,
		margins: DefaultMargins(),
		creator: "tokenprinter",
		created: time.Now().UTC(),
		width:   MM(PictureWidthMM),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// AddRow appends a paragraph with no space before or after and single line
// spacing, then embeds the pictures left to right at the fixed display width.
// The height of each picture follows from its aspect ratio.
func (d *Document) AddRow(pics ...Picture) error {
	if len(pics) == 0 || len(pics) > MaxPicturesPerRow {
		return fmt.Errorf("row must hold 1 to %d pictures, got %d", MaxPicturesPerRow, len(pics))
	}
	for _, p := range pics {
		if p.Width <= 0 || p.Height <= 0 {
			return fmt.Errorf("picture %q has invalid size %dx%d", p.Name, p.Width, p.Height)
		}
		if len(p.JPEG) == 0 {
			return errors.New("picture " + p.Name + " has no data")
		}
	}

	block := Block{Pictures: make([]Placement, 0, len(pics))}
	for _, p := range pics {
		d.pictures++
		target := fmt.Sprintf("media/image%d.jpeg", d.pictures)
		d.media = append(d.media, media{target: target, data: p.JPEG})
		block.Pictures = append(block.Pictures, Placement{
			Name:   p.Name,
			RelID:  imageRelID(d.pictures),
			Target: target,
			CX:     d.width,
			CY:     scaledHeight(d.width, p.Width, p.Height),
		})
	}
	d.blocks = append(d.blocks, block)
	return nil
}

// Len returns the number of paragraphs.
func (d *Document) Len() int { return len(d.blocks) }

// PictureCount returns the number of embedded pictures.
func (d *Document) PictureCount() int { return d.pictures }

// Margins returns the page margins in twips.
func (d *Document) Margins() Margins { return d.margins }

// PageSize returns the paper size.
func (d *Document) PageSize() PageSize { return d.page }

// rId1 is reserved for the styles part.
func imageRelID(n int) string {
	return fmt.Sprintf("rId%d", n+1)
}
