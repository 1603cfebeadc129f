package decoration

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultHighlightDelay = 100 * time.Millisecond
	DefaultSyncDelay      = 250 * time.Millisecond
)

// View is the rendering layer the coordinator reads from and publishes to.
type View interface {
	Text() string
	// ReplaceText swaps the whole document, keeping the cursor where it was.
	ReplaceText(text string) error
	VisibleRanges() []Range
	SetDecorations(Set)
}

type State int

const (
	StateIdle State = iota
	StateScanning
	StateApplyingRemote
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateApplyingRemote:
		return "applying-remote"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Option func(*Coordinator)

func WithHighlightDelay(d time.Duration) Option {
	return func(c *Coordinator) { c.highlight = NewSlot(PurposeHighlight, d) }
}

func WithSyncDelay(d time.Duration) Option {
	return func(c *Coordinator) { c.sync = NewSlot(PurposeSync, d) }
}

func WithTokenizer(t Tokenizer) Option {
	return func(c *Coordinator) { c.tokenizer = t }
}

// WithCodeHighlighting toggles language token marks inside fenced blocks.
func WithCodeHighlighting(enabled bool) Option {
	return func(c *Coordinator) {
		if enabled {
			c.code = NewCodeHighlighter()
		} else {
			c.code = nil
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// Coordinator drives decoration passes and host synchronisation for one
// editor instance. It is not safe for concurrent use; every method is meant
// to be called from the editor's event loop.
type Coordinator struct {
	id     string
	view   View
	host   Host
	logger *slog.Logger

	tokenizer Tokenizer
	code      *CodeHighlighter

	highlight *Slot
	sync      *Slot

	state          State
	applyingRemote bool
	lastSynced     string

	snapshot *Snapshot
	fences   FenceScan
	base     []Decoration // everything but widgets from the last full pass
	current  Set

	passes     int
	broadcasts int
}

// NewCoordinator returns a coordinator for view. A nil host disables outbound sync.
func NewCoordinator(view View, host Host, opts ...Option) *Coordinator {
	c := &Coordinator{
		id:        uuid.NewString(),
		view:      view,
		host:      host,
		logger:    slog.New(slog.DiscardHandler),
		tokenizer: NewGoldmarkTokenizer(),
		code:      NewCodeHighlighter(),
		highlight: NewSlot(PurposeHighlight, DefaultHighlightDelay),
		sync:      NewSlot(PurposeSync, DefaultSyncDelay),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.host == nil {
		c.host = nopHost{}
	}
	c.logger = c.logger.With("editor", c.id)

	return c
}

func (c *Coordinator) ID() string           { return c.id }
func (c *Coordinator) State() State         { return c.state }
func (c *Coordinator) Decorations() Set     { return c.current }
func (c *Coordinator) Passes() int          { return c.passes }
func (c *Coordinator) Broadcasts() int      { return c.broadcasts }
func (c *Coordinator) ApplyingRemote() bool { return c.applyingRemote }
func (c *Coordinator) SyncPending() bool    { return c.sync.Pending() }

// Blocks returns the fenced blocks found by the last pass.
func (c *Coordinator) Blocks() []FencedBlock {
	return append([]FencedBlock(nil), c.fences.Blocks...)
}

// Start decorates the initial document and records it as the host's copy.
// Tasks scheduled before it are dropped.
func (c *Coordinator) Start() {
	c.Close()
	c.lastSynced = NormalizeLineEndings(c.view.Text())
	c.runPass()
}

// DocChanged is called after every local buffer change. It returns the tasks
// the caller must wait on and hand back to Fire. Outbound sync is not
// scheduled while a remote update is being applied.
func (c *Coordinator) DocChanged() []Task {
	tasks := []Task{c.highlight.Schedule()}
	if c.applyingRemote {
		return tasks
	}
	return append(tasks, c.sync.Schedule())
}

// ViewportChanged re-runs the widget scan for the new visible ranges. When a
// highlight pass is already pending it will cover the new viewport.
func (c *Coordinator) ViewportChanged() {
	if c.highlight.Pending() {
		return
	}
	if c.snapshot == nil || c.snapshot.Text() != c.view.Text() {
		c.runPass()
		return
	}

	defer c.recoverPass()
	c.publish(synthesizeWidgets(c.snapshot, c.view.VisibleRanges()))
}

// Fire runs a task whose delay has elapsed. It reports false for stale or
// cancelled tasks and for syncs that had nothing to send.
func (c *Coordinator) Fire(t Task) bool {
	switch t.Purpose {
	case PurposeHighlight:
		if !c.highlight.Claim(t) {
			return false
		}
		c.runPass()
		return true
	case PurposeSync:
		if !c.sync.Claim(t) {
			return false
		}
		return c.broadcast()
	}
	return false
}

// Refresh drops any pending highlight and decorates the current text now.
func (c *Coordinator) Refresh() {
	c.highlight.Cancel()
	c.runPass()
}

// Close cancels pending tasks.
func (c *Coordinator) Close() {
	c.highlight.Cancel()
	c.sync.Cancel()
}

func (c *Coordinator) runPass() {
	c.state = StateScanning
	defer func() { c.state = StateIdle }()
	defer c.recoverPass()

	snap := NewSnapshot(c.view.Text())
	fences := ScanFences(snap.Lines())

	base := fenceDecorations(snap, fences)
	if c.code != nil {
		base = append(base, c.code.Decorate(snap, fences.Blocks)...)
	}
	if c.tokenizer != nil {
		base = append(base, decorateInline(snap, c.tokenizer.Tokenize(snap))...)
	}
	widgets := synthesizeWidgets(snap, c.view.VisibleRanges())

	c.snapshot, c.fences, c.base = snap, fences, base
	c.passes++
	c.publish(widgets)

	c.logger.Debug("decoration pass",
		"lines", snap.LineCount(),
		"blocks", len(fences.Blocks),
		"decorations", c.current.Len())
}

func (c *Coordinator) publish(widgets []Decoration) {
	set := NewSet(c.base, widgets)
	c.view.SetDecorations(set)
	c.current = set
}

// recoverPass keeps the previous overlays when a pass fails unexpectedly.
func (c *Coordinator) recoverPass() {
	if r := recover(); r != nil {
		c.logger.Error("decoration pass skipped", "panic", r)
	}
}
