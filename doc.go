// Package slidedeck builds self-contained HTML slide decks and exports them
// to PDF and PPTX by capturing every slide in headless Chrome.
//
// # Quick Start
//
// Build a deck, load it into a browser stage, and export it:
//
//	deck, err := slidedeck.NewBuilder().Build(ctx, slidedeck.Source{Path: "slides.md"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	stage := slidedeck.NewBrowserStage()
//	defer stage.Close()
//
//	meta := slidedeck.DefaultMetadata()
//	_, err = slidedeck.ExportDeck(ctx, stage, deck, []slidedeck.Assembler{
//	    slidedeck.NewPDFAssembler(meta, slidedeck.DefaultRasterSpec()),
//	    slidedeck.NewPPTXAssembler(meta, slidedeck.DefaultSlideBackground),
//	}, &slidedeck.DirSink{Dir: "out"})
//
// # Assembly
//
// A Builder turns Markdown or HTML sources into one document: each slide
// becomes a section with class "slide", exactly one of which is active,
// followed by the control bar (previous, PDF, PPTX, next) and the
// navigation script. Styles, the document template and the script come
// from an AssetLoader; the embedded burgundy theme is the default.
//
// # Navigation
//
// Navigator clamps every request into range, so out-of-range indices are
// never errors. Presentation wraps a Navigator with the control bar and
// the export job state, and mirrors every change onto a Stage.
//
// # Export
//
// An Exporter drives one job: it hides the controls, then for each slide
// in order shows it alone, waits for the settle delay, rasterizes it with
// the Rasterizer, normalizes the image and appends it to the Assembler's
// Document. Any failure aborts the job and nothing is saved. On success
// or failure the controls come back and the slide that was current before
// the job is shown again. A second job started while one runs returns
// ErrExportRunning.
//
// # Concurrency
//
// Presentation is safe for concurrent use. BrowserStage serializes page
// access. To export several decks in parallel, use an ExporterPool with
// ExportBatch; each pooled stage owns its own browser.
//
// # Errors
//
// Failed jobs return errors wrapping ErrExportFailed and the cause
// (ErrStage, ErrCapture, ErrAssembly, ErrSave or a context error). Use
// errors.Is to inspect them.
package slidedeck
