package docx

import "encoding/xml"

// XML namespaces written into the package parts.
const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"

	nsContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"
	nsRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsCoreProps     = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
	nsDC            = "http://purl.org/dc/elements/1.1/"
	nsDCTerms       = "http://purl.org/dc/terms/"
	nsXSI           = "http://www.w3.org/2001/XMLSchema-instance"
	nsExtProps      = "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"

	relTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeStyles         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relTypeImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relTypeCoreProps      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relTypeExtProps       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
)

// Element names carry their prefix literally; encoding/xml writes them verbatim
// and the namespace declarations live on the root element.

type wDocument struct {
	XMLName xml.Name `xml:"w:document"`
	XMLNSW  string   `xml:"xmlns:w,attr"`
	XMLNSR  string   `xml:"xmlns:r,attr"`
	XMLNSWP string   `xml:"xmlns:wp,attr"`
	XMLNSA  string   `xml:"xmlns:a,attr"`
	XMLNSPc string   `xml:"xmlns:pic,attr"`
	Body    wBody    `xml:"w:body"`
}

type wBody struct {
	Paragraphs []wParagraph `xml:"w:p"`
	SectPr     wSectPr      `xml:"w:sectPr"`
}

type wParagraph struct {
	Props wParagraphProps `xml:"w:pPr"`
	Runs  []wRun          `xml:"w:r"`
}

type wParagraphProps struct {
	Spacing wSpacing `xml:"w:spacing"`
}

type wSpacing struct {
	Before   int    `xml:"w:before,attr"`
	After    int    `xml:"w:after,attr"`
	Line     int    `xml:"w:line,attr"`
	LineRule string `xml:"w:lineRule,attr"`
}

type wRun struct {
	Drawing wDrawing `xml:"w:drawing"`
}

type wDrawing struct {
	Inline wpInline `xml:"wp:inline"`
}

type wpInline struct {
	DistT             int                 `xml:"distT,attr"`
	DistB             int                 `xml:"distB,attr"`
	DistL             int                 `xml:"distL,attr"`
	DistR             int                 `xml:"distR,attr"`
	Extent            wpExtent            `xml:"wp:extent"`
	DocPr             wpDocPr             `xml:"wp:docPr"`
	CNvGraphicFramePr wpCNvGraphicFramePr `xml:"wp:cNvGraphicFramePr"`
	Graphic           aGraphic            `xml:"a:graphic"`
}

type wpExtent struct {
	CX int64 `xml:"cx,attr"`
	CY int64 `xml:"cy,attr"`
}

type wpDocPr struct {
	ID   int    `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

type wpCNvGraphicFramePr struct {
	Locks aGraphicFrameLocks `xml:"a:graphicFrameLocks"`
}

type aGraphicFrameLocks struct {
	NoChangeAspect int `xml:"noChangeAspect,attr"`
}

type aGraphic struct {
	Data aGraphicData `xml:"a:graphicData"`
}

type aGraphicData struct {
	URI string `xml:"uri,attr"`
	Pic picPic `xml:"pic:pic"`
}

type picPic struct {
	NvPicPr  picNvPicPr  `xml:"pic:nvPicPr"`
	BlipFill picBlipFill `xml:"pic:blipFill"`
	SpPr     picSpPr     `xml:"pic:spPr"`
}

type picNvPicPr struct {
	CNvPr    picCNvPr `xml:"pic:cNvPr"`
	CNvPicPr struct{} `xml:"pic:cNvPicPr"`
}

type picCNvPr struct {
	ID   int    `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

type picBlipFill struct {
	Blip    aBlip    `xml:"a:blip"`
	Stretch aStretch `xml:"a:stretch"`
}

type aBlip struct {
	Embed string `xml:"r:embed,attr"`
}

type aStretch struct {
	FillRect struct{} `xml:"a:fillRect"`
}

type picSpPr struct {
	Xfrm     aXfrm     `xml:"a:xfrm"`
	PrstGeom aPrstGeom `xml:"a:prstGeom"`
}

type aXfrm struct {
	Off aPoint `xml:"a:off"`
	Ext aSize  `xml:"a:ext"`
}

type aPoint struct {
	X int64 `xml:"x,attr"`
	Y int64 `xml:"y,attr"`
}

type aSize struct {
	CX int64 `xml:"cx,attr"`
	CY int64 `xml:"cy,attr"`
}

type aPrstGeom struct {
	Prst  string   `xml:"prst,attr"`
	AvLst struct{} `xml:"a:avLst"`
}

type wSectPr struct {
	PgSz  wPgSz  `xml:"w:pgSz"`
	PgMar wPgMar `xml:"w:pgMar"`
}

type wPgSz struct {
	W int `xml:"w:w,attr"`
	H int `xml:"w:h,attr"`
}

type wPgMar struct {
	Top    int `xml:"w:top,attr"`
	Right  int `xml:"w:right,attr"`
	Bottom int `xml:"w:bottom,attr"`
	Left   int `xml:"w:left,attr"`
	Header int `xml:"w:header,attr"`
	Footer int `xml:"w:footer,attr"`
	Gutter int `xml:"w:gutter,attr"`
}

type wStyles struct {
	XMLName xml.Name `xml:"w:styles"`
	XMLNSW  string   `xml:"xmlns:w,attr"`
	Styles  []wStyle `xml:"w:style"`
}

type wStyle struct {
	Type    string   `xml:"w:type,attr"`
	Default int      `xml:"w:default,attr"`
	StyleID string   `xml:"w:styleId,attr"`
	Name    wVal     `xml:"w:name"`
	PPr     wSpacing `xml:"w:pPr>w:spacing"`
}

type wVal struct {
	Val string `xml:"w:val,attr"`
}

type contentTypes struct {
	XMLName   xml.Name          `xml:"Types"`
	XMLNS     string            `xml:"xmlns,attr"`
	Defaults  []contentDefault  `xml:"Default"`
	Overrides []contentOverride `xml:"Override"`
}

type contentDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type contentOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type relationships struct {
	XMLName xml.Name       `xml:"Relationships"`
	XMLNS   string         `xml:"xmlns,attr"`
	Items   []relationship `xml:"Relationship"`
}

type relationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

type coreProperties struct {
	XMLName        xml.Name `xml:"cp:coreProperties"`
	XMLNSCP        string   `xml:"xmlns:cp,attr"`
	XMLNSDC        string   `xml:"xmlns:dc,attr"`
	XMLNSDCTerms   string   `xml:"xmlns:dcterms,attr"`
	XMLNSXSI       string   `xml:"xmlns:xsi,attr"`
	Title          string   `xml:"dc:title"`
	Creator        string   `xml:"dc:creator"`
	Created        w3cdtf   `xml:"dcterms:created"`
	Modified       w3cdtf   `xml:"dcterms:modified"`
	LastModifiedBy string   `xml:"cp:lastModifiedBy"`
}

type w3cdtf struct {
	Type  string `xml:"xsi:type,attr"`
	Value string `xml:",chardata"`
}

type appProperties struct {
	XMLName     xml.Name `xml:"Properties"`
	XMLNS       string   `xml:"xmlns,attr"`
	Application string   `xml:"Application"`
}
