package images

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"

	"github.com/MeKo-Tech/tokenprinter/internal/mempool"
)

// DefaultJPEGQuality matches the quality most imaging tools use when none is given.
const DefaultJPEGQuality = 75

// Normalized is a decoded image rotated a quarter turn clockwise, flattened onto
// white and re-encoded as JPEG, ready to be embedded in a document.
//
// JPEG aliases a pooled buffer. Call Release once the bytes have been written
// out; JPEG must not be used afterwards.
type Normalized struct {
	Source string
	Image  *image.NRGBA
	JPEG   []byte

	buf *bytes.Buffer
}

// Width returns the pixel width after rotation.
func (n *Normalized) Width() int { return n.Image.Bounds().Dx() }

// Height returns the pixel height after rotation.
func (n *Normalized) Height() int { return n.Image.Bounds().Dy() }

// Release hands the encode buffer back to the pool. It is safe to call more
// than once and on a nil receiver.
func (n *Normalized) Release() {
	if n == nil || n.buf == nil {
		return
	}
	mempool.PutBuffer(n.buf)
	n.buf = nil
	n.JPEG = nil
}

// Normalizer decodes and prepares source images. The zero value encodes with
// DefaultJPEGQuality.
type Normalizer struct {
	Quality int
}

// Normalize reads the file at path and returns its normalized form.
// It has no side effects besides reading the file.
func (n Normalizer) Normalize(path string) (*Normalized, error) {
	img, err := Load(path)
	if err != nil {
		return nil, err
	}

	out := Flatten(RotateClockwise(img))

	b := out.Bounds()
	buf := mempool.GetBuffer(b.Dx() * b.Dy() / 2)
	if err := encodeJPEG(buf, path, out, n.quality()); err != nil {
		mempool.PutBuffer(buf)
		return nil, err
	}

	return &Normalized{Source: path, Image: out, JPEG: buf.Bytes(), buf: buf}, nil
}

func encodeJPEG(w io.Writer, path string, img image.Image, quality int) error {
	if err := imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return &EncodeError{Path: path, Err: err}
	}
	return nil
}

func (n Normalizer) quality() int {
	if n.Quality < 1 || n.Quality > 100 {
		return DefaultJPEGQuality
	}
	return n.Quality
}

// Load opens and decodes an image file.
func Load(path string) (image.Image, error) {
	if path == "" {
		return nil, &DecodeError{Path: path, Err: errors.New("empty path")}
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: reading user-selected image files is expected
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return img, nil
}

// RotateClockwise turns the image 90 degrees clockwise. The canvas grows to fit,
// so width and height swap and nothing is clipped.
func RotateClockwise(img image.Image) *image.NRGBA {
	return imaging.Rotate270(img)
}

// Flatten composites img over an opaque white canvas of the same size using the
// image's alpha as the mask. Images that are already opaque are returned as is.
func Flatten(img *image.NRGBA) *image.NRGBA {
	if img.Opaque() {
		return img
	}
	b := img.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
}
