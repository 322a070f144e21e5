package slidedeck

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// errDocumentClosed is returned when pages are added after Bytes.
var errDocumentClosed = errors.New("document already finalized")

// PDFAssembler builds landscape PDFs with one full-page image per slide.
// The page is Width x Height points, so a 1200x900 slide maps 1:1.
type PDFAssembler struct {
	meta Metadata
	spec RasterSpec
}

// NewPDFAssembler creates a PDFAssembler sized from spec.
func NewPDFAssembler(meta Metadata, spec RasterSpec) *PDFAssembler {
	return &PDFAssembler{meta: meta, spec: spec}
}

// Kind returns KindPDF.
func (a *PDFAssembler) Kind() ExportKind { return KindPDF }

// Filename returns the fixed PDF filename.
func (a *PDFAssembler) Filename() string { return a.meta.PDFFilename }

// ImageFormat returns JPEG; slides are photographic gradients and JPEG
// keeps the PDF small.
func (a *PDFAssembler) ImageFormat() ImageFormat { return ImageJPEG }

// NewDocument starts an empty PDF.
func (a *PDFAssembler) NewDocument() (Document, error) {
	w, h := float64(a.spec.Width), float64(a.spec.Height)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %vx%v", ErrInvalidRasterSize, w, h)
	}

	// gofpdf treats Size as portrait and swaps it for "L".
	short, long := h, w
	orientation := "L"
	if h > w {
		short, long = w, h
		orientation = "P"
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: short, Ht: long},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(a.meta.Title, true)
	pdf.SetAuthor(a.meta.Author, true)
	pdf.SetSubject(a.meta.Company, true)
	pdf.SetCreator("go-slidedeck", true)
	if pdf.Err() {
		return nil, pdf.Error()
	}
	return &pdfDocument{pdf: pdf, w: w, h: h}, nil
}

// pdfDocument is a PDF under construction.
type pdfDocument struct {
	pdf    *gofpdf.Fpdf
	w, h   float64
	pages  int
	closed bool
}

// AddPage appends a page holding img scaled to fill it.
func (d *pdfDocument) AddPage(img Image) error {
	if d.closed {
		return errDocumentClosed
	}
	opts := gofpdf.ImageOptions{ImageType: pdfImageType(img.Format)}
	if opts.ImageType == "" {
		return fmt.Errorf("unsupported image format %q", img.Format)
	}

	name := fmt.Sprintf("slide-%03d", d.pages+1)
	d.pdf.AddPage()
	d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
	d.pdf.ImageOptions(name, 0, 0, d.w, d.h, false, opts, 0, "")
	if d.pdf.Err() {
		return d.pdf.Error()
	}
	d.pages++
	return nil
}

// Bytes writes the PDF. An empty document is an error.
func (d *pdfDocument) Bytes() ([]byte, error) {
	if d.pages == 0 {
		return nil, ErrNoSlides
	}
	d.closed = true
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func pdfImageType(f ImageFormat) string {
	switch f {
	case ImageJPEG:
		return "JPG"
	case ImagePNG:
		return "PNG"
	}
	return ""
}
