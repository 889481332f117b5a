package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const (
	ctMain      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	ctStyles    = "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"
	ctCore      = "application/vnd.openxmlformats-package.core-properties+xml"
	ctExtended  = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
	ctRels      = "application/vnd.openxmlformats-package.relationships+xml"
	ctJPEG      = "image/jpeg"
	ctXML       = "application/xml"
	headerTwips = 720
)

// Save writes the document to path, replacing any existing file. The package is
// written to a temporary file in the same directory and renamed into place, so a
// failed save leaves nothing behind.
func (d *Document) Save(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tokenprinter-*.docx.tmp")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := d.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		return &WriteError{Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return &WriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil { //nolint:gosec // G302: documents are meant to be shared
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	committed = true
	return nil
}

// WriteTo serializes the document as a .docx package.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)

	parts := []struct {
		name string
		v    any
	}{
		{"[Content_Types].xml", d.contentTypes()},
		{"_rels/.rels", packageRels()},
		{"docProps/core.xml", d.coreProps()},
		{"docProps/app.xml", appProperties{XMLNS: nsExtProps, Application: "tokenprinter"}},
		{"word/document.xml", d.document()},
		{"word/styles.xml", defaultStyles()},
		{"word/_rels/document.xml.rels", d.documentRels()},
	}
	for _, p := range parts {
		if err := writeXMLPart(zw, p.name, p.v); err != nil {
			return cw.n, err
		}
	}

	for _, m := range d.media {
		// JPEG data is already compressed.
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: "word/" + m.target, Method: zip.Store, Modified: d.created})
		if err != nil {
			return cw.n, fmt.Errorf("create %s: %w", m.target, err)
		}
		if _, err := fw.Write(m.data); err != nil {
			return cw.n, fmt.Errorf("write %s: %w", m.target, err)
		}
	}

	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("finalize package: %w", err)
	}
	return cw.n, nil
}

func writeXMLPart(zw *zip.Writer, name string, v any) error {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	fw, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := fw.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (d *Document) document() wDocument {
	doc := wDocument{
		XMLNSW:  nsW,
		XMLNSR:  nsR,
		XMLNSWP: nsWP,
		XMLNSA:  nsA,
		XMLNSPc: nsPic,
	}

	paragraphs := make([]wParagraph, 0, len(d.blocks))
	docPrID := 0
	for _, b := range d.blocks {
		p := wParagraph{Props: wParagraphProps{Spacing: rowSpacing()}}
		for _, pl := range b.Pictures {
			docPrID++
			p.Runs = append(p.Runs, wRun{Drawing: wDrawing{Inline: inlinePicture(docPrID, pl)}})
		}
		paragraphs = append(paragraphs, p)
	}
	doc.Body.Paragraphs = paragraphs
	doc.Body.SectPr = wSectPr{
		PgSz: wPgSz{W: d.page.Width, H: d.page.Height},
		PgMar: wPgMar{
			Top:    d.margins.Top,
			Right:  d.margins.Right,
			Bottom: d.margins.Bottom,
			Left:   d.margins.Left,
			Header: headerTwips,
			Footer: headerTwips,
		},
	}
	return doc
}

func rowSpacing() wSpacing {
	return wSpacing{Before: 0, After: 0, Line: singleLine, LineRule: "auto"}
}

func inlinePicture(id int, pl Placement) wpInline {
	name := fmt.Sprintf("Picture %d", id)
	return wpInline{
		Extent:            wpExtent{CX: pl.CX, CY: pl.CY},
		DocPr:             wpDocPr{ID: id, Name: name},
		CNvGraphicFramePr: wpCNvGraphicFramePr{Locks: aGraphicFrameLocks{NoChangeAspect: 1}},
		Graphic: aGraphic{Data: aGraphicData{
			URI: nsPic,
			Pic: picPic{
				NvPicPr:  picNvPicPr{CNvPr: picCNvPr{ID: 0, Name: pl.Name}},
				BlipFill: picBlipFill{Blip: aBlip{Embed: pl.RelID}},
				SpPr: picSpPr{
					Xfrm:     aXfrm{Ext: aSize{CX: pl.CX, CY: pl.CY}},
					PrstGeom: aPrstGeom{Prst: "rect"},
				},
			},
		}},
	}
}

func (d *Document) contentTypes() contentTypes {
	return contentTypes{
		XMLNS: nsContentTypes,
		Defaults: []contentDefault{
			{Extension: "rels", ContentType: ctRels},
			{Extension: "xml", ContentType: ctXML},
			{Extension: "jpeg", ContentType: ctJPEG},
		},
		Overrides: []contentOverride{
			{PartName: "/word/document.xml", ContentType: ctMain},
			{PartName: "/word/styles.xml", ContentType: ctStyles},
			{PartName: "/docProps/core.xml", ContentType: ctCore},
			{PartName: "/docProps/app.xml", ContentType: ctExtended},
		},
	}
}

func packageRels() relationships {
	return relationships{
		XMLNS: nsRelationships,
		Items: []relationship{
			{ID: "rId1", Type: relTypeOfficeDocument, Target: "word/document.xml"},
			{ID: "rId2", Type: relTypeCoreProps, Target: "docProps/core.xml"},
			{ID: "rId3", Type: relTypeExtProps, Target: "docProps/app.xml"},
		},
	}
}

func (d *Document) documentRels() relationships {
	items := make([]relationship, 0, len(d.media)+1)
	items = append(items, relationship{ID: "rId1", Type: relTypeStyles, Target: "styles.xml"})
	for i, m := range d.media {
		items = append(items, relationship{ID: imageRelID(i + 1), Type: relTypeImage, Target: m.target})
	}
	return relationships{XMLNS: nsRelationships, Items: items}
}

func (d *Document) coreProps() coreProperties {
	ts := d.created.UTC().Format(time.RFC3339)
	return coreProperties{
		XMLNSCP:        nsCoreProps,
		XMLNSDC:        nsDC,
		XMLNSDCTerms:   nsDCTerms,
		XMLNSXSI:       nsXSI,
		Title:          d.title,
		Creator:        d.creator,
		Created:        w3cdtf{Type: "dcterms:W3CDTF", Value: ts},
		Modified:       w3cdtf{Type: "dcterms:W3CDTF", Value: ts},
		LastModifiedBy: d.creator,
	}
}

func defaultStyles() wStyles {
	return wStyles{
		XMLNSW: nsW,
		Styles: []wStyle{{
			Type:    "paragraph",
			Default: 1,
			StyleID: "Normal",
			Name:    wVal{Val: "Normal"},
			PPr:     rowSpacing(),
		}},
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
