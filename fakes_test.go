package slidedeck

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
)

// testRaster is a small capture size that keeps encoding fast in tests.
var testRaster = RasterSpec{Width: 40, Height: 30, Scale: 1, Background: DefaultSlideBackground, Quality: 80}

// pngOf returns a w x h PNG filled with c.
func pngOf(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

// ---------------------------------------------------------------------------
// fakeStage - records every call, optionally failing on a given slide
// ---------------------------------------------------------------------------

type fakeStage struct {
	t *testing.T

	mu      sync.Mutex
	events  []string
	visible int
	hidden  bool

	slides     int
	loadErr    error
	showErr    error
	failShowAt int  // slide index whose Show fails, -1 for none
	failShown  bool // Show fails while controls are visible
	failAt     int  // slide index whose Rasterize fails, -1 for none
	panicAt    int  // slide index whose Rasterize panics, -1 for none
	onRaster   func(index int)
	closed     bool
}

func newFakeStage(t *testing.T, slides int) *fakeStage {
	return &fakeStage{t: t, slides: slides, visible: -1, failShowAt: -1, failAt: -1, panicAt: -1}
}

func (s *fakeStage) record(format string, args ...any) {
	s.events = append(s.events, fmt.Sprintf(format, args...))
}

func (s *fakeStage) Show(_ context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("show %d", index)
	if s.showErr != nil || index == s.failShowAt || (s.failShown && !s.hidden) {
		return errors.New("show failed")
	}
	s.visible = index
	return nil
}

func (s *fakeStage) SetControlsHidden(_ context.Context, hidden bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("controls hidden=%v", hidden)
	s.hidden = hidden
	return nil
}

func (s *fakeStage) Rasterize(ctx context.Context, index int, spec RasterSpec, _ ImageFormat) (Image, error) {
	s.mu.Lock()
	s.record("raster %d", index)
	visible, hidden := s.visible, s.hidden
	fail, panicAt, hook := s.failAt, s.panicAt, s.onRaster
	s.mu.Unlock()

	if hook != nil {
		hook(index)
	}
	if err := ctx.Err(); err != nil {
		return Image{}, err
	}
	if visible != index {
		s.t.Errorf("Rasterize(%d) while slide %d visible", index, visible)
	}
	if !hidden {
		s.t.Errorf("Rasterize(%d) with controls visible", index)
	}
	if index == panicAt {
		panic("renderer crashed")
	}
	if index == fail {
		return Image{}, errors.New("render error")
	}
	w, h := spec.PixelSize()
	return Image{Data: pngOf(s.t, w, h, color.RGBA{R: 0x80, A: 0xff}), Format: ImagePNG, Width: w, Height: h}, nil
}

func (s *fakeStage) Load(context.Context, *Deck) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("load")
	if s.loadErr != nil {
		return 0, s.loadErr
	}
	return s.slides, nil
}

func (s *fakeStage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeStage) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func (s *fakeStage) Visible() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

func (s *fakeStage) Hidden() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hidden
}

// ---------------------------------------------------------------------------
// fakeAssembler / fakeDocument - collect pages without encoding
// ---------------------------------------------------------------------------

type fakeAssembler struct {
	kind   ExportKind
	newErr error
	docErr error
	doc    *fakeDocument
}

func (a *fakeAssembler) Kind() ExportKind         { return a.kind }
func (a *fakeAssembler) Filename() string         { return "deck." + string(a.kind) }
func (a *fakeAssembler) ImageFormat() ImageFormat { return ImagePNG }

func (a *fakeAssembler) NewDocument() (Document, error) {
	if a.newErr != nil {
		return nil, a.newErr
	}
	a.doc = &fakeDocument{bytesErr: a.docErr}
	return a.doc, nil
}

type fakeDocument struct {
	pages    []Image
	bytesErr error
}

func (d *fakeDocument) AddPage(img Image) error {
	d.pages = append(d.pages, img)
	return nil
}

func (d *fakeDocument) Bytes() ([]byte, error) {
	if d.bytesErr != nil {
		return nil, d.bytesErr
	}
	return []byte(fmt.Sprintf("%d pages", len(d.pages))), nil
}

// ---------------------------------------------------------------------------
// Sinks and notifiers
// ---------------------------------------------------------------------------

type failingSink struct{}

func (failingSink) Save(context.Context, string, []byte) error {
	return errors.New("disk full")
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Alert(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}
