package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strconv"
)

// Summary describes the layout of a written .docx file.
type Summary struct {
	Title      string
	Creator    string
	PageWidth  int
	PageHeight int
	Margins    Margins
	Blocks     []SummaryBlock
	// Media maps a part name such as "word/media/image1.jpeg" to its bytes.
	Media map[string][]byte
}

// SummaryBlock is one paragraph as found in word/document.xml.
type SummaryBlock struct {
	SpaceBefore int
	SpaceAfter  int
	Line        int
	LineRule    string
	Pictures    []Placement
}

type readDocument struct {
	Body struct {
		Paragraphs []struct {
			Spacing struct {
				Before   string `xml:"before,attr"`
				After    string `xml:"after,attr"`
				Line     string `xml:"line,attr"`
				LineRule string `xml:"lineRule,attr"`
			} `xml:"pPr>spacing"`
			Runs []struct {
				Inline *struct {
					Extent struct {
						CX int64 `xml:"cx,attr"`
						CY int64 `xml:"cy,attr"`
					} `xml:"extent"`
					Pic struct {
						CNvPr struct {
							Name string `xml:"name,attr"`
						} `xml:"nvPicPr>cNvPr"`
						Blip struct {
							Embed string `xml:"embed,attr"`
						} `xml:"blipFill>blip"`
					} `xml:"graphic>graphicData>pic"`
				} `xml:"drawing>inline"`
			} `xml:"r"`
		} `xml:"p"`
		SectPr struct {
			PgSz struct {
				W int `xml:"w,attr"`
				H int `xml:"h,attr"`
			} `xml:"pgSz"`
			PgMar struct {
				Top    int `xml:"top,attr"`
				Right  int `xml:"right,attr"`
				Bottom int `xml:"bottom,attr"`
				Left   int `xml:"left,attr"`
			} `xml:"pgMar"`
		} `xml:"sectPr"`
	} `xml:"body"`
}

type readCoreProps struct {
	Title   string `xml:"title"`
	Creator string `xml:"creator"`
}

// Inspect opens a .docx file and reports its paragraphs, pictures and page setup.
func Inspect(filename string) (*Summary, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	defer func() { _ = zr.Close() }()

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}
	for _, name := range []string{"[Content_Types].xml", "word/document.xml", "word/_rels/document.xml.rels"} {
		if files[name] == nil {
			return nil, fmt.Errorf("missing required file: %s", name)
		}
	}

	var rels relationships
	if err := decodePart(files["word/_rels/document.xml.rels"], &rels); err != nil {
		return nil, fmt.Errorf("parsing relationships: %w", err)
	}
	targets := make(map[string]string, len(rels.Items))
	for _, r := range rels.Items {
		targets[r.ID] = r.Target
	}

	var doc readDocument
	if err := decodePart(files["word/document.xml"], &doc); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	s := &Summary{
		PageWidth:  doc.Body.SectPr.PgSz.W,
		PageHeight: doc.Body.SectPr.PgSz.H,
		Margins: Margins{
			Top:    doc.Body.SectPr.PgMar.Top,
			Right:  doc.Body.SectPr.PgMar.Right,
			Bottom: doc.Body.SectPr.PgMar.Bottom,
			Left:   doc.Body.SectPr.PgMar.Left,
		},
		Media: make(map[string][]byte),
	}

	if f := files["docProps/core.xml"]; f != nil {
		var core readCoreProps
		if err := decodePart(f, &core); err != nil {
			return nil, fmt.Errorf("parsing core properties: %w", err)
		}
		s.Title = core.Title
		s.Creator = core.Creator
	}

	for _, p := range doc.Body.Paragraphs {
		b := SummaryBlock{
			SpaceBefore: atoi(p.Spacing.Before),
			SpaceAfter:  atoi(p.Spacing.After),
			Line:        atoi(p.Spacing.Line),
			LineRule:    p.Spacing.LineRule,
		}
		for _, r := range p.Runs {
			if r.Inline == nil {
				continue
			}
			target := targets[r.Inline.Pic.Blip.Embed]
			b.Pictures = append(b.Pictures, Placement{
				Name:   r.Inline.Pic.CNvPr.Name,
				RelID:  r.Inline.Pic.Blip.Embed,
				Target: target,
				CX:     r.Inline.Extent.CX,
				CY:     r.Inline.Extent.CY,
			})
			if target == "" {
				continue
			}
			part := path.Join("word", target)
			if f := files[part]; f != nil {
				data, err := readPart(f)
				if err != nil {
					return nil, fmt.Errorf("reading %s: %w", part, err)
				}
				s.Media[part] = data
			}
		}
		s.Blocks = append(s.Blocks, b)
	}

	return s, nil
}

// PictureCount returns the number of pictures across all blocks.
func (s *Summary) PictureCount() int {
	n := 0
	for _, b := range s.Blocks {
		n += len(b.Pictures)
	}
	return n
}

func decodePart(f *zip.File, v any) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	return xml.NewDecoder(rc).Decode(v)
}

func readPart(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
