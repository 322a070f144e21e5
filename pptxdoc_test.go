package slidedeck

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"image/color"
	"io"
	"strings"
	"testing"
	"time"
)

func readZip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v", err)
	}
	parts := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		parts[f.Name] = string(b)
	}
	return parts
}

func TestPPTXAssembler(t *testing.T) {
	t.Parallel()

	meta := DefaultMetadata()
	meta.Title = "Q3 <Review> & Plan"
	a := NewPPTXAssembler(meta, "#800020")
	a.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	if a.Kind() != KindPPTX || a.ImageFormat() != ImagePNG || a.Filename() != DefaultPPTXFilename {
		t.Errorf("assembler = %s %s %q", a.Kind(), a.ImageFormat(), a.Filename())
	}

	doc, err := a.NewDocument()
	if err != nil {
		t.Fatalf("NewDocument() error = %v", err)
	}
	slide := Image{Data: pngOf(t, 8, 6, color.White), Format: ImagePNG, Width: 8, Height: 6}
	for i := 0; i < 2; i++ {
		if err := doc.AddPage(slide); err != nil {
			t.Fatalf("AddPage(%d) error = %v", i, err)
		}
	}
	data, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	parts := readZip(t, data)
	for _, name := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"docProps/core.xml",
		"docProps/app.xml",
		"ppt/presentation.xml",
		"ppt/_rels/presentation.xml.rels",
		"ppt/slideMasters/slideMaster1.xml",
		"ppt/slideLayouts/slideLayout1.xml",
		"ppt/theme/theme1.xml",
		"ppt/slides/slide1.xml",
		"ppt/slides/slide2.xml",
		"ppt/slides/_rels/slide2.xml.rels",
		"ppt/media/image1.png",
		"ppt/media/image2.png",
	} {
		if _, ok := parts[name]; !ok {
			t.Errorf("missing part %s", name)
		}
	}
	if _, ok := parts["ppt/slides/slide3.xml"]; ok {
		t.Error("unexpected third slide")
	}

	for name, body := range parts {
		if !strings.HasSuffix(name, ".xml") && !strings.HasSuffix(name, ".rels") {
			continue
		}
		dec := xml.NewDecoder(strings.NewReader(body))
		for {
			_, err := dec.Token()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Errorf("%s is not well-formed XML: %v", name, err)
				break
			}
		}
	}

	if parts["ppt/media/image1.png"] != string(slide.Data) {
		t.Error("media does not hold the slide image")
	}
	if !strings.Contains(parts["ppt/slides/slide1.xml"], `<a:srgbClr val="800020"/>`) {
		t.Error("slide background is not 800020")
	}
	if !strings.Contains(parts["docProps/core.xml"], "Q3 &lt;Review&gt; &amp; Plan") {
		t.Errorf("title not escaped in core.xml:\n%s", parts["docProps/core.xml"])
	}
	if !strings.Contains(parts["docProps/core.xml"], "2024-05-01T12:00:00Z") {
		t.Error("creation time missing from core.xml")
	}
	if !strings.Contains(parts["ppt/presentation.xml"], `<p:sldSz cx="12192000" cy="6858000"/>`) {
		t.Error("presentation is not wide layout")
	}
	if !strings.Contains(parts["ppt/_rels/presentation.xml.rels"], `Target="slides/slide2.xml"`) {
		t.Error("presentation does not reference slide2")
	}

	if err := doc.AddPage(slide); !errors.Is(err, errDocumentClosed) {
		t.Errorf("AddPage() after Bytes() error = %v, want errDocumentClosed", err)
	}
}

func TestPPTXAssembler_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewPPTXAssembler(DefaultMetadata(), "red").NewDocument(); !errors.Is(err, ErrInvalidColor) {
		t.Errorf("NewDocument(red) error = %v, want ErrInvalidColor", err)
	}

	doc, err := NewPPTXAssembler(DefaultMetadata(), DefaultSlideBackground).NewDocument()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := doc.Bytes(); !errors.Is(err, ErrNoSlides) {
		t.Errorf("Bytes() on empty deck error = %v, want ErrNoSlides", err)
	}
	if err := doc.AddPage(Image{Format: "gif"}); err == nil {
		t.Error("AddPage(gif) error = nil")
	}
}
