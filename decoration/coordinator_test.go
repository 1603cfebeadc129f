package decoration

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeView struct {
	text      string
	visible   []Range
	published []Set
	replaces  int

	replaceErr   error
	replacePanic bool
	onReplace    func()
}

func (v *fakeView) Text() string { return v.text }

func (v *fakeView) ReplaceText(text string) error {
	if v.onReplace != nil {
		v.onReplace()
	}
	if v.replacePanic {
		panic("editor rejected replace")
	}
	if v.replaceErr != nil {
		return v.replaceErr
	}
	v.text = text
	v.replaces++
	return nil
}

func (v *fakeView) VisibleRanges() []Range {
	if v.visible != nil {
		return v.visible
	}
	return []Range{{From: 0, To: utf8.RuneCountInString(v.text)}}
}

func (v *fakeView) SetDecorations(s Set) { v.published = append(v.published, s) }

type fakeHost struct {
	edits []string
	infos []string
	err   error
}

func (h *fakeHost) Edit(text string) error {
	if h.err != nil {
		return h.err
	}
	h.edits = append(h.edits, text)
	return nil
}

func (h *fakeHost) Info(text string) error {
	h.infos = append(h.infos, text)
	return h.err
}

func newTestCoordinator(text string) (*Coordinator, *fakeView, *fakeHost) {
	view := &fakeView{text: text}
	host := &fakeHost{}
	c := NewCoordinator(view, host)
	c.Start()
	return c, view, host
}

func taskFor(tasks []Task, purpose Purpose) Task {
	for _, t := range tasks {
		if t.Purpose == purpose {
			return t
		}
	}
	return Task{Purpose: purpose}
}

func TestCoordinator_StartDecorates(t *testing.T) {
	c, view, host := newTestCoordinator("plain\n```js\nconst x=1;\n```\nmore")

	require.Len(t, view.published, 1)
	assert.Equal(t, 1, c.Passes())
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, []FencedBlock{{Start: 2, End: 3, Open: 1, Close: 3, Language: "js"}}, c.Blocks())
	assert.Empty(t, host.edits)
}

func TestCoordinator_StartDropsPendingTasks(t *testing.T) {
	c, view, host := newTestCoordinator("a")

	view.text = "ab"
	tasks := c.DocChanged()
	view.text = "loaded"
	c.Start()

	assert.False(t, c.SyncPending())
	assert.False(t, c.Fire(taskFor(tasks, PurposeHighlight)))
	assert.False(t, c.Fire(taskFor(tasks, PurposeSync)))
	assert.Empty(t, host.edits)
}

func TestCoordinator_DebounceCoalescing(t *testing.T) {
	c, view, host := newTestCoordinator("")

	var highlights, syncs []Task
	for _, r := range "# hello" {
		view.text += string(r)
		tasks := c.DocChanged()
		require.Len(t, tasks, 2)
		highlights = append(highlights, taskFor(tasks, PurposeHighlight))
		syncs = append(syncs, taskFor(tasks, PurposeSync))
	}

	var ran, sent int
	for i := range highlights {
		if c.Fire(highlights[i]) {
			ran++
		}
		if c.Fire(syncs[i]) {
			sent++
		}
	}

	assert.Equal(t, 1, ran)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 2, c.Passes())
	assert.Equal(t, []string{"# hello"}, host.edits)
	assert.Equal(t, []string{"heading-1"}, c.Decorations().LineClasses(0))
}

func TestCoordinator_PassUsesTextAtExecution(t *testing.T) {
	c, view, _ := newTestCoordinator("text")

	view.text = "```go"
	task := taskFor(c.DocChanged(), PurposeHighlight)
	view.text = "```go\nx := 1\n```"

	require.True(t, c.Fire(task))

	assert.Equal(t, []FencedBlock{{Start: 1, End: 2, Open: 0, Close: 2, Language: "go"}}, c.Blocks())
}

func TestCoordinator_RemoteUpdateEqualAfterNormalisation(t *testing.T) {
	c, view, host := newTestCoordinator("a\nb")
	passes := c.Passes()

	assert.False(t, c.ApplyRemote("a\r\nb"))

	assert.Equal(t, 0, view.replaces)
	assert.Equal(t, passes, c.Passes())
	assert.Empty(t, host.edits)
	assert.False(t, c.sync.Pending())
}

func TestCoordinator_RemoteUpdateRoundTrip(t *testing.T) {
	c, view, host := newTestCoordinator("old")

	require.True(t, c.ApplyRemote("new\r\n```sh\nls\r\n```"))

	assert.Equal(t, "new\n```sh\nls\n```", view.text)
	assert.Equal(t, 1, view.replaces)
	assert.Equal(t, 2, c.Passes())
	assert.False(t, c.ApplyingRemote())
	assert.Equal(t, StateIdle, c.State())
	assert.Len(t, c.Blocks(), 1)
	assert.Empty(t, host.edits)
}

func TestCoordinator_NoOutboundSyncWhileApplyingRemote(t *testing.T) {
	c, view, host := newTestCoordinator("before")

	var inner []Task
	view.onReplace = func() {
		assert.True(t, c.ApplyingRemote())
		assert.Equal(t, StateApplyingRemote, c.State())
		inner = c.DocChanged()
	}
	require.True(t, c.ApplyRemote("after"))

	require.Len(t, inner, 1)
	assert.Equal(t, PurposeHighlight, inner[0].Purpose)
	assert.False(t, c.Fire(inner[0]), "the immediate pass replaced the pending one")
	assert.Empty(t, host.edits)
}

func TestCoordinator_RemoteUpdateFailureReleasesFlag(t *testing.T) {
	c, view, _ := newTestCoordinator("before")
	view.replaceErr = errors.New("read-only")

	assert.False(t, c.ApplyRemote("after"))
	assert.False(t, c.ApplyingRemote())
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, "before", view.text)

	view.replaceErr = nil
	view.replacePanic = true

	assert.NotPanics(t, func() { c.ApplyRemote("again") })
	assert.False(t, c.ApplyingRemote())

	view.replacePanic = false
	view.text = "local edit"
	tasks := c.DocChanged()
	assert.Len(t, tasks, 2, "outbound sync is not wedged off")
}

func TestCoordinator_FailedRemoteUpdateKeepsPendingEdit(t *testing.T) {
	c, view, host := newTestCoordinator("start")

	view.text = "start local"
	tasks := c.DocChanged()
	view.replaceErr = errors.New("read-only")

	assert.False(t, c.ApplyRemote("from host"))
	assert.True(t, c.SyncPending())

	require.True(t, c.Fire(taskFor(tasks, PurposeSync)))
	assert.Equal(t, []string{"start local"}, host.edits)
}

func TestCoordinator_FailedRemoteUpdateKeepsBaseline(t *testing.T) {
	c, view, host := newTestCoordinator("start")
	view.replaceErr = errors.New("read-only")

	assert.False(t, c.ApplyRemote("start!"))

	// The baseline only moves once the buffer holds the host text.
	view.replaceErr = nil
	view.text = "start!"
	require.True(t, c.Fire(taskFor(c.DocChanged(), PurposeSync)))
	assert.Equal(t, []string{"start!"}, host.edits)
}

func TestCoordinator_WithRemoteUpdateWrapsErrors(t *testing.T) {
	c, _, _ := newTestCoordinator("")
	cause := errors.New("boom")

	err := c.withRemoteUpdate(func() error { return cause })

	assert.ErrorIs(t, err, ErrRemoteApply)
	assert.ErrorIs(t, err, cause)
}

func TestCoordinator_RemoteUpdateSupersedesPendingEdit(t *testing.T) {
	c, view, host := newTestCoordinator("start")

	view.text = "start local"
	tasks := c.DocChanged()
	assert.True(t, c.SyncPending())

	require.True(t, c.ApplyRemote("from host"))
	assert.False(t, c.SyncPending())
	assert.False(t, c.Fire(taskFor(tasks, PurposeSync)))
	assert.False(t, c.Fire(taskFor(tasks, PurposeHighlight)))
	assert.Empty(t, host.edits)
	assert.Equal(t, "from host", view.text)

	view.text = "from host!"
	tasks = c.DocChanged()
	require.True(t, c.Fire(taskFor(tasks, PurposeSync)))
	assert.Equal(t, []string{"from host!"}, host.edits)
}

func TestCoordinator_SyncSkipsUnchangedText(t *testing.T) {
	c, view, host := newTestCoordinator("same")

	view.text = "same!"
	require.True(t, c.Fire(taskFor(c.DocChanged(), PurposeSync)))

	// Typing and deleting a character leaves nothing new for the host.
	view.text = "same!?"
	c.DocChanged()
	view.text = "same!"
	assert.False(t, c.Fire(taskFor(c.DocChanged(), PurposeSync)))

	assert.Equal(t, []string{"same!"}, host.edits)
	assert.Equal(t, 1, c.Broadcasts())
}

func TestCoordinator_SyncFailureRetriesLater(t *testing.T) {
	c, view, host := newTestCoordinator("a")
	host.err = errors.New("disconnected")

	view.text = "ab"
	assert.False(t, c.Fire(taskFor(c.DocChanged(), PurposeSync)))

	host.err = nil
	assert.True(t, c.Fire(taskFor(c.DocChanged(), PurposeSync)))
	assert.Equal(t, []string{"ab"}, host.edits)
}

func TestCoordinator_ViewportChangedRescansWidgetsOnly(t *testing.T) {
	lines := []string{"![one](1.png)", "a", "b", "c", "![two](2.png)"}
	c, view, _ := newTestCoordinator("")
	view.text = strings.Join(lines, "\n")
	snap := NewSnapshot(view.text)
	view.visible = []Range{snap.LineRange(0)}
	c.Refresh()
	passes := c.Passes()

	require.Len(t, c.Decorations().Widgets(Range{0, snap.Len()}), 1)

	view.visible = []Range{{From: 0, To: snap.Len()}}
	c.ViewportChanged()

	widgets := c.Decorations().Widgets(Range{0, snap.Len()})
	require.Len(t, widgets, 2)
	assert.Equal(t, "2.png", widgets[1].Payload.URL)
	assert.Equal(t, passes, c.Passes())
}

func TestCoordinator_ViewportChangedDefersToPendingPass(t *testing.T) {
	c, view, _ := newTestCoordinator("text")
	published := len(view.published)

	view.text = "text ![x](y)"
	c.DocChanged()
	c.ViewportChanged()

	assert.Len(t, view.published, published)
}

type panickingTokenizer struct{}

func (panickingTokenizer) Tokenize(*Snapshot) []Node { panic("tokenizer bug") }

func TestCoordinator_PassFailureKeepsPriorOverlays(t *testing.T) {
	view := &fakeView{text: "# title"}
	c := NewCoordinator(view, nil)
	c.Start()
	before := c.Decorations()
	require.NotZero(t, before.Len())

	c.tokenizer = panickingTokenizer{}
	view.text = "plain"
	assert.NotPanics(t, func() { c.Fire(taskFor(c.DocChanged(), PurposeHighlight)) })

	assert.Equal(t, before, c.Decorations())
	assert.Len(t, view.published, 1)
	assert.Equal(t, StateIdle, c.State())
}

func TestCoordinator_NilHost(t *testing.T) {
	view := &fakeView{text: "a"}
	c := NewCoordinator(view, nil, WithCodeHighlighting(false))
	c.Start()

	view.text = "ab"
	assert.True(t, c.Fire(taskFor(c.DocChanged(), PurposeSync)))
	c.Info("hello")
}

func TestCoordinator_Info(t *testing.T) {
	c, _, host := newTestCoordinator("")

	c.Info("saved")

	assert.Equal(t, []string{"saved"}, host.infos)
}

func TestCoordinator_CloseCancelsPending(t *testing.T) {
	c, view, host := newTestCoordinator("a")
	view.text = "b"
	tasks := c.DocChanged()

	c.Close()

	for _, task := range tasks {
		assert.False(t, c.Fire(task))
	}
	assert.Empty(t, host.edits)
}

func TestCoordinator_Options(t *testing.T) {
	c := NewCoordinator(&fakeView{}, nil,
		WithHighlightDelay(10),
		WithSyncDelay(20),
		WithTokenizer(staticTokenizer{}),
	)

	assert.EqualValues(t, 10, c.highlight.Delay())
	assert.EqualValues(t, 20, c.sync.Delay())
	assert.NotEmpty(t, c.ID())
}

func TestNormalizeLineEndings(t *testing.T) {
	assert.Equal(t, "a\nb\nc\n", NormalizeLineEndings("a\r\nb\rc\n"))
	assert.Equal(t, "plain", NormalizeLineEndings("plain"))
}
