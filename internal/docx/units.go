package docx

import (
	"fmt"
	"math"
	"strings"
)

// Length conversions used by WordprocessingML.
const (
	EMUPerMM   = 36000
	EMUPerTwip = 635
)

// Fixed layout of the generated document.
const (
	MarginMM       = 10
	PictureWidthMM = 88
	// singleLine is w:line for single spacing with lineRule "auto", in 240ths of a line.
	singleLine = 240
)

// MM converts millimetres to EMU.
func MM(mm float64) int64 {
	return int64(math.Round(mm * EMUPerMM))
}

// Twips converts EMU to twentieths of a point, rounded to the nearest integer.
func Twips(emu int64) int {
	return int(math.Round(float64(emu) / EMUPerTwip))
}

// PageSize is a paper size in twips.
type PageSize struct {
	Name   string
	Width  int
	Height int
}

var (
	Letter = PageSize{Name: "letter", Width: 12240, Height: 15840}
	A4     = PageSize{Name: "a4", Width: 11906, Height: 16838}
)

// ParsePageSize resolves a page size name. An empty name selects Letter.
func ParsePageSize(name string) (PageSize, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Letter.Name:
		return Letter, nil
	case A4.Name:
		return A4, nil
	default:
		return PageSize{}, fmt.Errorf("unsupported page size %q (use letter or a4)", name)
	}
}

// Margins are page margins in twips.
type Margins struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

// DefaultMargins returns the fixed 10 mm margins on all four sides.
func DefaultMargins() Margins {
	m := Twips(MM(MarginMM))
	return Margins{Top: m, Right: m, Bottom: m, Left: m}
}

// scaledHeight returns the height in EMU for a picture of w×h pixels displayed
// at widthEMU, preserving the aspect ratio.
func scaledHeight(widthEMU int64, w, h int) int64 {
	return int64(math.Round(float64(widthEMU) * float64(h) / float64(w)))
}
