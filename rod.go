package slidedeck

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/alnah/go-slidedeck/internal/fileutil"
	"github.com/alnah/go-slidedeck/internal/process"
)

// Compile-time interface checks.
var (
	_ Stage      = (*BrowserStage)(nil)
	_ Rasterizer = (*BrowserStage)(nil)
)

// DefaultPageTimeout bounds page loads and single browser calls.
const DefaultPageTimeout = 30 * time.Second

// Scripts evaluated in the deck page. They go through window.slidedeck,
// which the embedded navigation script installs.
const (
	jsShowSlide = `(i) => {
		window.scrollTo(0, 0);
		if (window.slidedeck) { window.slidedeck.show(i); return; }
		document.querySelectorAll('.slide').forEach((s, n) => {
			s.classList.remove('active');
			s.style.display = n === i ? 'flex' : 'none';
		});
	}`
	jsSetControlsHidden = `(hidden) => {
		if (window.slidedeck) { window.slidedeck.controls(hidden); return; }
		const c = document.querySelector('.controls');
		if (c) c.style.display = hidden ? 'none' : 'flex';
	}`
	jsSlideCount = `() => document.querySelectorAll('.slide').length`
)

// BrowserStage shows and captures deck slides in headless Chrome.
// The browser is launched lazily on Load and kept until Close.
type BrowserStage struct {
	mu       sync.Mutex
	timeout  time.Duration
	spec     RasterSpec
	logger   *zap.Logger
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	cleanup  func()
	slides   int
}

// StageOption configures a BrowserStage.
type StageOption func(*BrowserStage)

// WithPageTimeout sets the page load timeout.
func WithPageTimeout(d time.Duration) StageOption {
	if d <= 0 {
		panic("slidedeck: page timeout must be positive")
	}
	return func(s *BrowserStage) { s.timeout = d }
}

// WithStageRaster sets the viewport size and device scale.
func WithStageRaster(spec RasterSpec) StageOption {
	return func(s *BrowserStage) { s.spec = spec }
}

// WithStageLogger sets the logger.
func WithStageLogger(l *zap.Logger) StageOption {
	return func(s *BrowserStage) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewBrowserStage creates a BrowserStage. No browser is started until Load.
func NewBrowserStage(opts ...StageOption) *BrowserStage {
	s := &BrowserStage{
		timeout: DefaultPageTimeout,
		spec:    DefaultRasterSpec(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// launcherFor configures the Chrome launcher from the environment.
// ROD_BROWSER_BIN selects a pre-installed browser; sandboxing is disabled
// in CI, in containers using a pre-installed browser, or on request.
func launcherFor(getenv func(string) string) *launcher.Launcher {
	l := launcher.New()
	bin := getenv("ROD_BROWSER_BIN")
	if bin != "" {
		l = l.Bin(bin)
	}
	noSandbox, _ := strconv.ParseBool(getenv("ROD_NO_SANDBOX"))
	if getenv("CI") == "true" || bin != "" || noSandbox {
		l = l.NoSandbox(true)
	}
	return l
}

// ensureBrowser lazily launches and connects to Chrome.
// Caller must hold s.mu.
func (s *BrowserStage) ensureBrowser() error {
	if s.browser != nil {
		return nil
	}

	l := launcherFor(os.Getenv)
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	s.launcher = l
	s.browser = b
	s.logger.Debug("browser launched", zap.Int("pid", l.PID()))
	return nil
}

// Load opens the deck in a fresh page sized to the raster spec and returns
// the number of slides the page contains. Any previously loaded deck is
// closed first.
func (s *BrowserStage) Load(ctx context.Context, deck *Deck) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.closePage()
	if err := s.ensureBrowser(); err != nil {
		return 0, err
	}

	path, cleanup, err := fileutil.WriteTempFile(deck.HTML, "html")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	page, err := s.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		cleanup()
		return 0, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	s.page = page
	s.cleanup = cleanup

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.spec.Width,
		Height:            s.spec.Height,
		DeviceScaleFactor: s.spec.Scale,
	}); err != nil {
		return 0, fmt.Errorf("%w: viewport: %v", ErrPageCreate, err)
	}

	timeout := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return 0, context.DeadlineExceeded
		}
	}
	p := page.Context(ctx).Timeout(timeout)
	if err := p.Navigate(fileutil.FileURL(path)); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := p.WaitLoad(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	res, err := p.Eval(jsSlideCount)
	if err != nil {
		return 0, fmt.Errorf("%w: counting slides: %v", ErrPageLoad, err)
	}
	s.slides = res.Value.Int()
	s.logger.Debug("deck loaded", zap.String("path", path), zap.Int("slides", s.slides))
	return s.slides, nil
}

// Show makes slide index the only visible slide.
func (s *BrowserStage) Show(ctx context.Context, index int) error {
	p, err := s.activePage(ctx)
	if err != nil {
		return err
	}
	if _, err := p.Eval(jsShowSlide, index); err != nil {
		return fmt.Errorf("showing slide %d: %w", index+1, err)
	}
	return nil
}

// SetControlsHidden hides or restores the control bar.
func (s *BrowserStage) SetControlsHidden(ctx context.Context, hidden bool) error {
	p, err := s.activePage(ctx)
	if err != nil {
		return err
	}
	if _, err := p.Eval(jsSetControlsHidden, hidden); err != nil {
		return fmt.Errorf("toggling controls: %w", err)
	}
	return nil
}

// Rasterize captures slide index on spec.Background at the viewport's
// device scale. The capture is clipped to the slide element.
func (s *BrowserStage) Rasterize(ctx context.Context, index int, spec RasterSpec, format ImageFormat) (Image, error) {
	p, err := s.activePage(ctx)
	if err != nil {
		return Image{}, err
	}

	bg, err := ParseHexColor(spec.Background)
	if err != nil {
		return Image{}, err
	}
	opaque := 1.0
	if err := (proto.EmulationSetDefaultBackgroundColorOverride{
		Color: &proto.DOMRGBA{R: int(bg.R), G: int(bg.G), B: int(bg.B), A: &opaque},
	}).Call(p); err != nil {
		return Image{}, fmt.Errorf("background override: %w", err)
	}

	el, err := p.Element(fmt.Sprintf(`.slide[data-index="%d"]`, index))
	if err != nil {
		return Image{}, fmt.Errorf("finding slide %d: %w", index+1, err)
	}
	shape, err := el.Shape()
	if err != nil {
		return Image{}, fmt.Errorf("measuring slide %d: %w", index+1, err)
	}
	box := shape.Box()

	req := &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			X:      box.X,
			Y:      box.Y,
			Width:  box.Width,
			Height: box.Height,
			Scale:  1,
		},
		CaptureBeyondViewport: true,
	}
	if format == ImageJPEG {
		q := spec.Quality
		if q <= 0 {
			q = DefaultJPEGQuality
		}
		req.Format = proto.PageCaptureScreenshotFormatJpeg
		req.Quality = &q
	}

	data, err := p.Screenshot(false, req)
	if err != nil {
		return Image{}, fmt.Errorf("screenshot of slide %d: %w", index+1, err)
	}
	w, h := spec.PixelSize()
	return Image{Data: data, Format: format, Width: w, Height: h}, nil
}

// activePage returns the loaded page bound to ctx.
func (s *BrowserStage) activePage(ctx context.Context) (*rod.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page == nil {
		return nil, fmt.Errorf("%w: no deck loaded", ErrPageLoad)
	}
	return s.page.Context(ctx).Timeout(s.timeout), nil
}

// closePage closes the current page and removes its temp file.
// Caller must hold s.mu.
func (s *BrowserStage) closePage() {
	if s.page != nil {
		_ = s.page.Close()
		s.page = nil
	}
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
	s.slides = 0
}

// Close releases the page and kills the browser process tree.
func (s *BrowserStage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closePage()
	var err error
	if s.browser != nil {
		err = s.browser.Close()
		s.browser = nil
	}
	if s.launcher != nil {
		if pid := s.launcher.PID(); pid > 0 {
			process.KillTree(pid)
		}
		s.launcher.Kill()
		s.launcher = nil
	}
	return err
}
