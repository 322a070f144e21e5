package slidedeck

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Stage shows slides. It owns the real visibility state (a browser page,
// a terminal, a test fake) and mirrors what the Presentation decides.
type Stage interface {
	// Show makes slide index the only visible slide.
	Show(ctx context.Context, index int) error
	// SetControlsHidden hides or shows the control bar so it stays out of
	// captured images.
	SetControlsHidden(ctx context.Context, hidden bool) error
}

// Rasterizer captures the currently visible slide as an image.
type Rasterizer interface {
	Rasterize(ctx context.Context, index int, spec RasterSpec, format ImageFormat) (Image, error)
}

// Document is an output file being built one page per slide.
type Document interface {
	AddPage(img Image) error
	// Bytes finalizes the document. No pages may be added afterwards.
	Bytes() ([]byte, error)
}

// Assembler creates output documents of one kind.
type Assembler interface {
	Kind() ExportKind
	Filename() string
	ImageFormat() ImageFormat
	NewDocument() (Document, error)
}

// Sink stores a finished artifact under its fixed filename.
type Sink interface {
	Save(ctx context.Context, filename string, data []byte) error
}

// Notifier surfaces a failed export to the user.
type Notifier interface {
	Alert(message string)
}

// Compile-time interface checks.
var (
	_ Assembler = (*PDFAssembler)(nil)
	_ Assembler = (*PPTXAssembler)(nil)
	_ Notifier  = nopNotifier{}
)

type nopNotifier struct{}

func (nopNotifier) Alert(string) {}

// ExportResult describes a completed export job.
type ExportResult struct {
	Kind     ExportKind
	Filename string
	Pages    int
	Size     int
	Duration time.Duration

	// RestoreErr is set when the artifact was saved but the stage could not
	// be put back afterwards.
	RestoreErr error
}

// Exporter runs export jobs: every slide in order is shown alone, allowed
// to settle, rasterized and appended to the output document.
type Exporter struct {
	cfg        exporterConfig
	rasterizer Rasterizer
	logger     *zap.Logger
	notifier   Notifier
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewExporter creates an Exporter capturing slides with r.
func NewExporter(r Rasterizer, opts ...Option) *Exporter {
	e := &Exporter{
		cfg: exporterConfig{
			settleDelay:   DefaultSettleDelay,
			successLinger: DefaultSuccessLinger,
			raster:        DefaultRasterSpec(),
		},
		rasterizer: r,
		logger:     zap.NewNop(),
		notifier:   nopNotifier{},
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RasterSpec returns the capture settings used by the exporter.
func (e *Exporter) RasterSpec() RasterSpec { return e.cfg.raster }

// Export runs one job against p and saves the result to sink.
//
// Any failure aborts the whole job: nothing is saved, the error message is
// sent to the Notifier and the returned error wraps ErrExportFailed and the
// cause. Whatever the outcome, controls are restored and the slide that was
// current before the job is shown again. Once the artifact is saved the job
// counts as succeeded: a failed restore is logged and reported on
// ExportResult.RestoreErr.
func (e *Exporter) Export(ctx context.Context, p *Presentation, a Assembler, sink Sink) (*ExportResult, error) {
	if p.Len() == 0 {
		return nil, ErrNoSlides
	}
	if err := e.cfg.raster.Validate(); err != nil {
		return nil, err
	}

	trigger := controlFor(a.Kind())
	if err := p.beginExport(trigger); err != nil {
		return nil, err
	}

	log := e.logger.With(zap.String("kind", string(a.Kind())), zap.String("file", a.Filename()))
	log.Debug("export started", zap.Int("slides", p.Len()), zap.Int("restore", p.savedIndex()))
	start := time.Now()

	data, pages, jobErr := e.run(ctx, p, a, trigger, log)
	if jobErr == nil {
		if err := sink.Save(ctx, a.Filename(), data); err != nil {
			jobErr = fmt.Errorf("%w: %w", ErrSave, err)
		}
	}

	restoreErr := p.finishExport(ctx, trigger, jobErr, e.cfg.successLinger)
	if restoreErr != nil {
		log.Warn("restoring presentation", zap.Error(restoreErr))
	}

	if jobErr != nil {
		e.notifier.Alert(alertMessage(a.Kind(), jobErr))
		log.Error("export failed", zap.Error(jobErr), zap.Duration("elapsed", time.Since(start)))
		return nil, fmt.Errorf("%w: %w", ErrExportFailed, jobErr)
	}

	res := &ExportResult{
		Kind:     a.Kind(),
		Filename: a.Filename(),
		Pages:    pages,
		Size:     len(data),
		Duration: time.Since(start),

		RestoreErr: restoreErr,
	}
	log.Info("export finished", zap.Int("pages", res.Pages), zap.Int("bytes", res.Size), zap.Duration("elapsed", res.Duration))
	return res, nil
}

// run captures every slide into a new document. Recovers from panics in
// collaborators so that presentation state is always restored.
func (e *Exporter) run(ctx context.Context, p *Presentation, a Assembler, trigger ControlID, log *zap.Logger) (data []byte, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	stage := p.stage
	if err := stage.SetControlsHidden(ctx, true); err != nil {
		return nil, 0, fmt.Errorf("%w: hiding controls: %v", ErrStage, err)
	}

	doc, err := a.NewDocument()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrAssembly, err)
	}

	spec := e.cfg.raster
	format := a.ImageFormat()
	n := p.Len()
	for i := 0; i < n; i++ {
		p.setLabel(trigger, ProgressLabel(i, n))

		if err := stage.Show(ctx, i); err != nil {
			return nil, pages, fmt.Errorf("%w: slide %d: %v", ErrStage, i+1, err)
		}
		if err := e.sleep(ctx, e.cfg.settleDelay); err != nil {
			return nil, pages, err
		}

		img, err := e.rasterizer.Rasterize(ctx, i, spec, format)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, pages, err
			}
			return nil, pages, fmt.Errorf("%w: slide %d: %v", ErrCapture, i+1, err)
		}
		img, err = NormalizeImage(img, spec, format)
		if err != nil {
			return nil, pages, fmt.Errorf("slide %d: %w", i+1, err)
		}
		if err := doc.AddPage(img); err != nil {
			return nil, pages, fmt.Errorf("%w: slide %d: %v", ErrAssembly, i+1, err)
		}
		pages++
		log.Debug("slide captured", zap.Int("slide", i+1), zap.Int("bytes", len(img.Data)))
	}

	data, err = doc.Bytes()
	if err != nil {
		return nil, pages, fmt.Errorf("%w: %v", ErrAssembly, err)
	}
	return data, pages, nil
}

// alertMessage formats the user-facing failure message.
func alertMessage(kind ExportKind, err error) string {
	return fmt.Sprintf("%s failed: %v", strings.ToUpper(string(kind)), err)
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
