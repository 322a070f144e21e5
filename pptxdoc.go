package slidedeck

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Wide 16:9 slide size in EMU (13.333in x 7.5in).
const (
	wideSlideCX = 12192000
	wideSlideCY = 6858000
)

// PPTXAssembler builds wide-layout PowerPoint decks with one full-bleed
// image per slide on a solid background.
type PPTXAssembler struct {
	meta       Metadata
	background string
	now        func() time.Time
}

// NewPPTXAssembler creates a PPTXAssembler. background is the slide
// background color (#RRGGBB).
func NewPPTXAssembler(meta Metadata, background string) *PPTXAssembler {
	return &PPTXAssembler{meta: meta, background: background, now: time.Now}
}

// Kind returns KindPPTX.
func (a *PPTXAssembler) Kind() ExportKind { return KindPPTX }

// Filename returns the fixed deck filename.
func (a *PPTXAssembler) Filename() string { return a.meta.PPTXFilename }

// ImageFormat returns PNG.
func (a *PPTXAssembler) ImageFormat() ImageFormat { return ImagePNG }

// NewDocument starts an empty deck.
func (a *PPTXAssembler) NewDocument() (Document, error) {
	if _, err := ParseHexColor(a.background); err != nil {
		return nil, err
	}
	return &pptxDocument{
		meta:       a.meta,
		background: hexDigits(a.background),
		created:    a.now().UTC(),
	}, nil
}

// pptxDocument is a deck under construction.
type pptxDocument struct {
	meta       Metadata
	background string
	created    time.Time
	images     []Image
	closed     bool
}

// AddPage appends a slide showing img.
func (d *pptxDocument) AddPage(img Image) error {
	if d.closed {
		return errDocumentClosed
	}
	if mediaExt(img.Format) == "" {
		return fmt.Errorf("unsupported image format %q", img.Format)
	}
	d.images = append(d.images, img)
	return nil
}

// pptxSlide is the template view of one slide.
type pptxSlide struct {
	Num   int
	RelID int // relationship id inside presentation.xml.rels
	SldID int
	Media string
}

// pptxView is the template view of the whole package.
type pptxView struct {
	Meta       Metadata
	Background string
	Created    string
	Slides     []pptxSlide
	PresProps  int // relationship id of presProps.xml
	CX, CY     int
	HasPNG     bool
	HasJPEG    bool
}

// Bytes writes the deck as an OOXML zip package.
func (d *pptxDocument) Bytes() ([]byte, error) {
	if len(d.images) == 0 {
		return nil, ErrNoSlides
	}
	d.closed = true

	view := pptxView{
		Meta:       d.meta,
		Background: d.background,
		Created:    d.created.Format(time.RFC3339),
		CX:         wideSlideCX,
		CY:         wideSlideCY,
	}
	for i, img := range d.images {
		ext := mediaExt(img.Format)
		view.HasPNG = view.HasPNG || ext == "png"
		view.HasJPEG = view.HasJPEG || ext == "jpeg"
		view.Slides = append(view.Slides, pptxSlide{
			Num:   i + 1,
			RelID: i + 3, // rId1 master, rId2 theme
			SldID: 256 + i,
			Media: fmt.Sprintf("image%d.%s", i+1, ext),
		})
	}
	view.PresProps = len(d.images) + 3

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct {
		name string
		tmpl string
	}{
		{"[Content_Types].xml", "content_types"},
		{"_rels/.rels", "root_rels"},
		{"docProps/core.xml", "core"},
		{"docProps/app.xml", "app"},
		{"ppt/presentation.xml", "presentation"},
		{"ppt/_rels/presentation.xml.rels", "presentation_rels"},
		{"ppt/presProps.xml", "pres_props"},
		{"ppt/slideMasters/slideMaster1.xml", "master"},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", "master_rels"},
		{"ppt/slideLayouts/slideLayout1.xml", "layout"},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", "layout_rels"},
		{"ppt/theme/theme1.xml", "theme"},
	}
	for _, part := range parts {
		if err := writeTemplatePart(zw, part.name, part.tmpl, view); err != nil {
			return nil, err
		}
	}

	for i, s := range view.Slides {
		if err := writeTemplatePart(zw, fmt.Sprintf("ppt/slides/slide%d.xml", s.Num), "slide", struct {
			pptxSlide
			Background string
			CX, CY     int
		}{s, view.Background, view.CX, view.CY}); err != nil {
			return nil, err
		}
		if err := writeTemplatePart(zw, fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", s.Num), "slide_rels", s); err != nil {
			return nil, err
		}
		w, err := zw.Create("ppt/media/" + s.Media)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(d.images[i].Data); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeTemplatePart(zw *zip.Writer, name, tmpl string, data any) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	if err := pptxTemplates.ExecuteTemplate(w, tmpl, data); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	return nil
}

func mediaExt(f ImageFormat) string {
	switch f {
	case ImagePNG:
		return "png"
	case ImageJPEG:
		return "jpeg"
	}
	return ""
}

func xmlEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

const (
	nsA   = `http://schemas.openxmlformats.org/drawingml/2006/main`
	nsR   = `http://schemas.openxmlformats.org/officeDocument/2006/relationships`
	nsP   = `http://schemas.openxmlformats.org/presentationml/2006/main`
	nsRel = `http://schemas.openxmlformats.org/package/2006/relationships`
	relT  = `http://schemas.openxmlformats.org/officeDocument/2006/relationships/`
)

var pptxTemplates = template.Must(template.New("pptx").Funcs(template.FuncMap{
	"xml": xmlEscape,
	"nsA": func() string { return nsA },
	"nsR": func() string { return nsR },
	"nsP": func() string { return nsP },
}).Parse(`
{{define "header"}}<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
{{end}}

{{define "content_types"}}{{template "header"}}<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
{{- if .HasPNG}}
<Default Extension="png" ContentType="image/png"/>{{end}}
{{- if .HasJPEG}}
<Default Extension="jpeg" ContentType="image/jpeg"/>{{end}}
<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>
<Override PartName="/ppt/presProps.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presProps+xml"/>
<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>
<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>
<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>
{{- range .Slides}}
<Override PartName="/ppt/slides/slide{{.Num}}.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>
{{- end}}
<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>
<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>
</Types>{{end}}

{{define "root_rels"}}{{template "header"}}<Relationships xmlns="` + nsRel + `">
<Relationship Id="rId1" Type="` + relT + `officeDocument" Target="ppt/presentation.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>
<Relationship Id="rId3" Type="` + relT + `extended-properties" Target="docProps/app.xml"/>
</Relationships>{{end}}

{{define "core"}}{{template "header"}}<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
<dc:title>{{xml .Meta.Title}}</dc:title>
<dc:creator>{{xml .Meta.Author}}</dc:creator>
<cp:lastModifiedBy>{{xml .Meta.Author}}</cp:lastModifiedBy>
<dcterms:created xsi:type="dcterms:W3CDTF">{{.Created}}</dcterms:created>
<dcterms:modified xsi:type="dcterms:W3CDTF">{{.Created}}</dcterms:modified>
</cp:coreProperties>{{end}}

{{define "app"}}{{template "header"}}<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">
<Application>go-slidedeck</Application>
<PresentationFormat>Widescreen</PresentationFormat>
<Slides>{{len .Slides}}</Slides>
<Company>{{xml .Meta.Company}}</Company>
</Properties>{{end}}

{{define "presentation"}}{{template "header"}}<p:presentation xmlns:a="{{nsA}}" xmlns:r="{{nsR}}" xmlns:p="{{nsP}}" saveSubsetFonts="1">
<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>
<p:sldIdLst>
{{- range .Slides}}<p:sldId id="{{.SldID}}" r:id="rId{{.RelID}}"/>{{end -}}
</p:sldIdLst>
<p:sldSz cx="{{.CX}}" cy="{{.CY}}"/>
<p:notesSz cx="6858000" cy="9144000"/>
</p:presentation>{{end}}

{{define "presentation_rels"}}{{template "header"}}<Relationships xmlns="` + nsRel + `">
<Relationship Id="rId1" Type="` + relT + `slideMaster" Target="slideMasters/slideMaster1.xml"/>
<Relationship Id="rId2" Type="` + relT + `theme" Target="theme/theme1.xml"/>
{{- range .Slides}}
<Relationship Id="rId{{.RelID}}" Type="` + relT + `slide" Target="slides/slide{{.Num}}.xml"/>
{{- end}}
<Relationship Id="rId{{.PresProps}}" Type="` + relT + `presProps" Target="presProps.xml"/>
</Relationships>{{end}}

{{define "pres_props"}}{{template "header"}}<p:presentationPr xmlns:a="{{nsA}}" xmlns:r="{{nsR}}" xmlns:p="{{nsP}}"/>{{end}}

{{define "empty_tree"}}<p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr></p:spTree>{{end}}

{{define "master"}}{{template "header"}}<p:sldMaster xmlns:a="{{nsA}}" xmlns:r="{{nsR}}" xmlns:p="{{nsP}}">
<p:cSld>{{template "empty_tree"}}</p:cSld>
<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>
<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>
</p:sldMaster>{{end}}

{{define "master_rels"}}{{template "header"}}<Relationships xmlns="` + nsRel + `">
<Relationship Id="rId1" Type="` + relT + `slideLayout" Target="../slideLayouts/slideLayout1.xml"/>
<Relationship Id="rId2" Type="` + relT + `theme" Target="../theme/theme1.xml"/>
</Relationships>{{end}}

{{define "layout"}}{{template "header"}}<p:sldLayout xmlns:a="{{nsA}}" xmlns:r="{{nsR}}" xmlns:p="{{nsP}}" type="blank" preserve="1">
<p:cSld name="Blank">{{template "empty_tree"}}</p:cSld>
<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>
</p:sldLayout>{{end}}

{{define "layout_rels"}}{{template "header"}}<Relationships xmlns="` + nsRel + `">
<Relationship Id="rId1" Type="` + relT + `slideMaster" Target="../slideMasters/slideMaster1.xml"/>
</Relationships>{{end}}

{{define "slide"}}{{template "header"}}<p:sld xmlns:a="{{nsA}}" xmlns:r="{{nsR}}" xmlns:p="{{nsP}}">
<p:cSld>
<p:bg><p:bgPr><a:solidFill><a:srgbClr val="{{.Background}}"/></a:solidFill><a:effectLst/></p:bgPr></p:bg>
<p:spTree>
<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>
<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>
<p:pic>
<p:nvPicPr><p:cNvPr id="2" name="Slide {{.Num}}"/><p:cNvPicPr><a:picLocks noChangeAspect="1"/></p:cNvPicPr><p:nvPr/></p:nvPicPr>
<p:blipFill><a:blip r:embed="rId2"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>
<p:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="{{.CX}}" cy="{{.CY}}"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>
</p:pic>
</p:spTree>
</p:cSld>
<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>
</p:sld>{{end}}

{{define "slide_rels"}}{{template "header"}}<Relationships xmlns="` + nsRel + `">
<Relationship Id="rId1" Type="` + relT + `slideLayout" Target="../slideLayouts/slideLayout1.xml"/>
<Relationship Id="rId2" Type="` + relT + `image" Target="../media/{{.Media}}"/>
</Relationships>{{end}}

{{define "theme"}}{{template "header"}}<a:theme xmlns:a="{{nsA}}" name="Slidedeck">
<a:themeElements>
<a:clrScheme name="Slidedeck">
<a:dk1><a:srgbClr val="000000"/></a:dk1><a:lt1><a:srgbClr val="FFFFFF"/></a:lt1>
<a:dk2><a:srgbClr val="5C0011"/></a:dk2><a:lt2><a:srgbClr val="EEECE1"/></a:lt2>
<a:accent1><a:srgbClr val="800020"/></a:accent1><a:accent2><a:srgbClr val="FFD700"/></a:accent2>
<a:accent3><a:srgbClr val="3D0814"/></a:accent3><a:accent4><a:srgbClr val="8064A2"/></a:accent4>
<a:accent5><a:srgbClr val="4BACC6"/></a:accent5><a:accent6><a:srgbClr val="F79646"/></a:accent6>
<a:hlink><a:srgbClr val="0000FF"/></a:hlink><a:folHlink><a:srgbClr val="800080"/></a:folHlink>
</a:clrScheme>
<a:fontScheme name="Slidedeck">
<a:majorFont><a:latin typeface="Segoe UI"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>
<a:minorFont><a:latin typeface="Segoe UI"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont>
</a:fontScheme>
<a:fmtScheme name="Slidedeck">
<a:fillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:fillStyleLst>
<a:lnStyleLst><a:ln w="9525"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln><a:ln w="25400"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln><a:ln w="38100"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln></a:lnStyleLst>
<a:effectStyleLst><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle></a:effectStyleLst>
<a:bgFillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:bgFillStyleLst>
</a:fmtScheme>
</a:themeElements>
</a:theme>{{end}}
`))
