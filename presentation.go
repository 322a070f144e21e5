package slidedeck

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ControlID identifies one of the four deck controls.
type ControlID int

// Deck controls, in the order they appear in the control bar.
const (
	ControlPrev ControlID = iota
	ControlPDF
	ControlPPTX
	ControlNext
	controlCount
)

// DOM ids of the controls in the assembled document.
var controlElementIDs = [controlCount]string{
	ControlPrev: "prevBtn",
	ControlPDF:  "downloadPdfBtn",
	ControlPPTX: "downloadPptxBtn",
	ControlNext: "nextBtn",
}

// Default control labels.
var defaultLabels = [controlCount]string{
	ControlPrev: "← Previous",
	ControlPDF:  "📥 Download PDF",
	ControlPPTX: "📊 Download PPTX",
	ControlNext: "Next →",
}

// Transient labels shown on the triggering control during a job.
const (
	LabelPreparing = "⏳ Preparing..."
	LabelSuccess   = "✅ Downloaded!"
)

// ProgressLabel returns the label shown while slide i (zero-based) of n is
// being captured.
func ProgressLabel(i, n int) string {
	return fmt.Sprintf("⏳ Slide %d/%d...", i+1, n)
}

// String returns the DOM id of the control.
func (id ControlID) String() string {
	if id < 0 || id >= controlCount {
		return fmt.Sprintf("control(%d)", int(id))
	}
	return controlElementIDs[id]
}

// controlFor returns the control that triggers an export kind.
func controlFor(kind ExportKind) ControlID {
	if kind == KindPPTX {
		return ControlPPTX
	}
	return ControlPDF
}

// Control is the display state of one button.
type Control struct {
	ID       ControlID
	Label    string
	Disabled bool
	Hidden   bool
}

// JobState is the export job state machine:
// Idle -> Running -> {Succeeded | Failed} -> Idle.
type JobState int

// Export job states.
const (
	JobIdle JobState = iota
	JobRunning
	JobSucceeded
	JobFailed
)

func (s JobState) String() string {
	switch s {
	case JobIdle:
		return "idle"
	case JobRunning:
		return "running"
	case JobSucceeded:
		return "succeeded"
	case JobFailed:
		return "failed"
	}
	return fmt.Sprintf("JobState(%d)", int(s))
}

// Presentation is the single owner of presentation state: the current
// slide, the control bar and the export job state. Navigation and export
// both go through it, so the visible slide always has exactly one owner.
type Presentation struct {
	mu         sync.Mutex
	nav        *Navigator
	stage      Stage
	controls   [controlCount]Control
	state      JobState
	saved      int
	outcome    JobState
	lastErr    error
	labelTimer *time.Timer
	onState    func(JobState)
}

// NewPresentation creates presentation state for slideCount slides.
// stage may be nil for headless state tracking (navigation only).
func NewPresentation(slideCount int, stage Stage) *Presentation {
	p := &Presentation{
		nav:   NewNavigator(slideCount),
		stage: stage,
	}
	for id := ControlPrev; id < controlCount; id++ {
		p.controls[id] = Control{ID: id, Label: defaultLabels[id]}
	}
	p.syncNavControls()
	return p
}

// OnStateChange registers fn to be called after every job state
// transition. fn runs outside the presentation lock.
func (p *Presentation) OnStateChange(fn func(JobState)) {
	p.mu.Lock()
	p.onState = fn
	p.mu.Unlock()
}

// Show displays slide index (clamped). Rejected while an export runs. The
// current slide only changes once the stage has shown the new one.
func (p *Presentation) Show(ctx context.Context, index int) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == JobRunning {
		return p.nav.Current(), ErrExportRunning
	}
	target := Clamp(index, p.nav.Len())
	if p.stage != nil {
		if err := p.stage.Show(ctx, target); err != nil {
			return p.nav.Current(), fmt.Errorf("%w: %v", ErrStage, err)
		}
	}
	cur := p.nav.Show(target)
	p.syncNavControls()
	return cur, nil
}

// Advance moves delta slides from the current one.
func (p *Presentation) Advance(ctx context.Context, delta int) (int, error) {
	p.mu.Lock()
	target := p.nav.Current() + delta
	p.mu.Unlock()
	return p.Show(ctx, target)
}

// HandleKey applies a keyboard navigation key. Unknown keys are ignored.
func (p *Presentation) HandleKey(ctx context.Context, key string) (int, error) {
	delta, ok := KeyDelta(key)
	if !ok {
		return p.Current(), nil
	}
	return p.Advance(ctx, delta)
}

// Current returns the current slide index.
func (p *Presentation) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nav.Current()
}

// Len returns the number of slides.
func (p *Presentation) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nav.Len()
}

// Visibility returns the per-slide visibility flags.
func (p *Presentation) Visibility() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nav.Visibility()
}

// State returns the current job state.
func (p *Presentation) State() JobState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// LastOutcome returns how the most recent job ended (JobIdle if none ran)
// and its error, if any.
func (p *Presentation) LastOutcome() (JobState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outcome, p.lastErr
}

// Control returns a snapshot of one control.
func (p *Presentation) Control(id ControlID) Control {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.controls[id]
}

// Controls returns a snapshot of the control bar.
func (p *Presentation) Controls() []Control {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Control, controlCount)
	copy(out, p.controls[:])
	return out
}

// syncNavControls derives previous/next enablement from the navigator.
// Caller must hold p.mu.
func (p *Presentation) syncNavControls() {
	p.controls[ControlPrev].Disabled = p.nav.PrevDisabled()
	p.controls[ControlNext].Disabled = p.nav.NextDisabled()
}

// beginExport moves Idle -> Running, disabling and hiding every control.
func (p *Presentation) beginExport(trigger ControlID) error {
	p.mu.Lock()
	if p.state == JobRunning {
		p.mu.Unlock()
		return ErrExportRunning
	}
	if p.stage == nil {
		p.mu.Unlock()
		return ErrNoStage
	}
	if p.labelTimer != nil {
		p.labelTimer.Stop()
		p.labelTimer = nil
		p.controls[ControlPDF].Label = defaultLabels[ControlPDF]
		p.controls[ControlPPTX].Label = defaultLabels[ControlPPTX]
	}
	p.saved = p.nav.Current()
	p.state = JobRunning
	for id := range p.controls {
		p.controls[id].Disabled = true
		p.controls[id].Hidden = true
	}
	p.controls[trigger].Label = LabelPreparing
	fn := p.onState
	p.mu.Unlock()

	if fn != nil {
		fn(JobRunning)
	}
	return nil
}

// setLabel updates a control label.
func (p *Presentation) setLabel(id ControlID, label string) {
	p.mu.Lock()
	p.controls[id].Label = label
	p.mu.Unlock()
}

// savedIndex returns the slide that was current when the job started.
func (p *Presentation) savedIndex() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saved
}

// finishExport records the outcome, restores controls and the previously
// current slide, and returns to Idle. On success the trigger shows the
// success label for linger before reverting.
func (p *Presentation) finishExport(ctx context.Context, trigger ControlID, jobErr error, linger time.Duration) error {
	outcome := JobSucceeded
	if jobErr != nil {
		outcome = JobFailed
	}

	p.mu.Lock()
	p.state = outcome
	p.outcome = outcome
	p.lastErr = jobErr
	fn := p.onState
	p.mu.Unlock()
	if fn != nil {
		fn(outcome)
	}

	// Restore the stage first so the browser never shows the last captured
	// slide with controls back on screen.
	// A cancelled job still has to put the stage back.
	ctx = context.WithoutCancel(ctx)
	var restoreErr error
	saved := p.savedIndex()
	if err := p.stage.SetControlsHidden(ctx, false); err != nil {
		restoreErr = fmt.Errorf("%w: showing controls: %v", ErrStage, err)
	}
	if err := p.stage.Show(ctx, saved); err != nil && restoreErr == nil {
		restoreErr = fmt.Errorf("%w: restoring slide %d: %v", ErrStage, saved, err)
	}

	p.mu.Lock()
	p.nav.Show(saved)
	for id := range p.controls {
		p.controls[id].Disabled = false
		p.controls[id].Hidden = false
	}
	p.syncNavControls()
	if outcome == JobSucceeded && linger > 0 {
		p.controls[trigger].Label = LabelSuccess
		p.labelTimer = time.AfterFunc(linger, func() { p.resetLabel(trigger) })
	} else {
		p.controls[trigger].Label = defaultLabels[trigger]
	}
	p.state = JobIdle
	p.mu.Unlock()
	if fn != nil {
		fn(JobIdle)
	}
	return restoreErr
}

// resetLabel reverts a control to its default label.
func (p *Presentation) resetLabel(id ControlID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == JobRunning {
		return
	}
	p.controls[id].Label = defaultLabels[id]
	p.labelTimer = nil
}
