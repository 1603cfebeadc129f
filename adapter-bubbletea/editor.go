package adapter_bubbletea

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ionut-t/mdlive/adapter-bubbletea/highlighter"
	"github.com/ionut-t/mdlive/config"
	editor "github.com/ionut-t/mdlive/core"
	"github.com/ionut-t/mdlive/decoration"
)

const (
	scrollStep      = 3
	messageDuration = 3 * time.Second
)

type Model struct {
	editor          editor.Editor
	surface         *surface
	coordinator     *decoration.Coordinator
	viewport        viewport.Model
	highlighter     *highlighter.Highlighter
	images          *imageRenderer
	clipboard       editor.Clipboard
	cfg             config.Config
	logger          *slog.Logger
	width           int
	height          int
	showLineNumbers bool
	showStatusLine  bool
	theme           Theme
	StatusLineFunc  func() string
	err             error
	message         string
	isFocused       bool
	placeholder     string
	fileName        string
	baseDir         string
	clearMsgCancel  context.CancelFunc
}

// RemoteUpdateMsg carries the full document text pushed by the host.
type RemoteUpdateMsg struct {
	Text string
}

// InfoMsg forwards a message to the host.
type InfoMsg struct {
	Text string
}

type ErrorMsg struct {
	ID    editor.ErrorId
	Error error
}

type CopyMsg struct {
	Content string
}

type PasteMsg struct {
	Content string
}

type UndoMsg struct{}

type RedoMsg struct{}

type QuitMsg struct{}

type clearMsg struct{}

type debounceMsg struct {
	task decoration.Task
}

type editorSignalMsg struct {
	signal editor.Signal
}

type Option func(*Model)

func WithConfig(cfg config.Config) Option {
	return func(m *Model) { m.cfg = cfg }
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) { m.logger = logger }
}

func WithClipboard(c editor.Clipboard) Option {
	return func(m *Model) { m.clipboard = c }
}

// WithFileName sets the name shown in the status line. Relative image paths
// resolve against its directory.
func WithFileName(name string) Option {
	return func(m *Model) {
		m.fileName = name
		m.baseDir = filepath.Dir(name)
	}
}

func (m *Model) dispatchClearMsg(duration time.Duration) tea.Cmd {
	if m.clearMsgCancel != nil {
		m.clearMsgCancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	m.clearMsgCancel = cancel

	return func() tea.Msg {
		defer cancel()
		<-ctx.Done()
		if ctx.Err() == context.DeadlineExceeded {
			return clearMsg{}
		}
		return nil
	}
}

type clipboardImpl struct{}

func (c *clipboardImpl) Write(text string) error {
	return clipboard.WriteAll(text)
}

func (c *clipboardImpl) Read() (string, error) {
	return clipboard.ReadAll()
}

// New creates an editor whose decorations are kept current by a
// decoration.Coordinator. A nil host keeps the document local.
func New(width, height int, host decoration.Host, opts ...Option) Model {
	m := Model{
		cfg:            config.Default(),
		logger:         slog.New(slog.DiscardHandler),
		clipboard:      &clipboardImpl{},
		theme:          DefaultTheme,
		showStatusLine: true,
		isFocused:      true,
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.editor = editor.New(m.clipboard)
	state := m.editor.GetState()
	state.TabWidth = m.cfg.Editor.TabWidth
	m.editor.SetState(state)

	m.showLineNumbers = m.cfg.Editor.LineNumbers
	if m.cfg.Editor.CodeHighlighting {
		m.highlighter = highlighter.New(m.cfg.Theme.ChromaStyle)
	}
	m.images = newImageRenderer(m.cfg.Images, m.baseDir, m.logger)

	m.surface = &surface{editor: m.editor}
	m.coordinator = decoration.NewCoordinator(m.surface, host,
		decoration.WithHighlightDelay(m.cfg.Editor.HighlightDelay.Std()),
		decoration.WithSyncDelay(m.cfg.Editor.SyncDelay.Std()),
		decoration.WithCodeHighlighting(m.cfg.Editor.CodeHighlighting),
		decoration.WithLogger(m.logger),
	)

	m.viewport = viewport.New(width, max(height-2, 1))
	m.SetSize(width, height)
	m.coordinator.Start()
	m.renderVisibleSlice()

	return m
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	reserved := 0
	if m.showStatusLine {
		reserved = 2
	}
	m.viewport.Width = width
	m.viewport.Height = max(height-reserved, 1)

	state := m.editor.GetState()
	state.ViewportWidth = m.viewport.Width
	state.ViewportHeight = m.viewport.Height
	m.editor.SetState(state)
	m.editor.ScrollViewport()

	m.viewport.YOffset = 0
}

// SetContent loads content as the document the host and editor agree on.
// Pending work is dropped and a fresh pass runs immediately.
func (m *Model) SetContent(content string) {
	m.editor.SetContent(decoration.NormalizeLineEndings(content))
	m.coordinator.Start()
	m.renderVisibleSlice()
}

// GetCurrentContent returns the current content of the editor buffer.
func (m *Model) GetCurrentContent() string {
	return m.editor.GetBuffer().GetCurrentContent()
}

// GetEditor returns the underlying editor instance
func (m *Model) GetEditor() editor.Editor {
	return m.editor
}

func (m *Model) Coordinator() *decoration.Coordinator {
	return m.coordinator
}

// Decorations returns the overlays last published by the coordinator.
func (m *Model) Decorations() decoration.Set {
	return m.surface.decorations
}

// WithTheme allows setting a custom theme for the editor.
func (m *Model) WithTheme(theme Theme) {
	m.theme = theme
}

// DispatchMessage allows setting a message to be displayed in the command line for a specified duration.
func (m *Model) DispatchMessage(message string, duration time.Duration) tea.Cmd {
	m.message = message
	m.err = nil

	return m.dispatchClearMsg(duration)
}

// DispatchError allows setting an error to be displayed in the command line for a specified duration.
func (m *Model) DispatchError(err error, duration time.Duration) tea.Cmd {
	m.err = err
	m.message = ""

	return m.dispatchClearMsg(duration)
}

// HideLineNumbers controls whether to show line numbers in the viewport.
func (m *Model) HideLineNumbers(hide bool) {
	m.showLineNumbers = !hide
}

// HideStatusLine controls whether to show the status and message lines.
func (m *Model) HideStatusLine(hide bool) {
	m.showStatusLine = !hide
	m.SetSize(m.width, m.height)
}

// SetPlaceholder sets the placeholder text for the editor.
func (m *Model) SetPlaceholder(placeholder string) {
	m.placeholder = placeholder
}

func (m *Model) Focus() {
	m.isFocused = true
}

func (m *Model) Blur() {
	m.isFocused = false
}

func (m *Model) IsFocused() bool {
	return m.isFocused
}

// Close cancels pending decoration and sync work.
func (m *Model) Close() {
	m.coordinator.Close()
	if m.clearMsgCancel != nil {
		m.clearMsgCancel()
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.listenForEditorUpdate(), m.requestImages())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.IsFocused() {
			break
		}

		version := m.editor.GetBuffer().Version()
		top := m.editor.GetState().TopLine

		if err := m.editor.HandleKey(convertBubbleKey(msg)); err != nil {
			cmds = append(cmds, errorCmd(err))
		}

		if m.editor.GetState().Quit {
			m.Close()
			return m, tea.Quit
		}

		cmds = append(cmds, m.afterChange(version, top)...)

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			break
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.scroll(-scrollStep)
		case tea.MouseButtonWheelDown:
			m.scroll(scrollStep)
		}

	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		m.coordinator.ViewportChanged()

	case debounceMsg:
		m.coordinator.Fire(msg.task)

	case RemoteUpdateMsg:
		if m.coordinator.ApplyRemote(msg.Text) {
			m.logger.Debug("applied remote update", "runes", len([]rune(msg.Text)))
		}

	case InfoMsg:
		m.coordinator.Info(msg.Text)

	case imageLoadedMsg:
		if msg.err != nil {
			m.logger.Warn("image load failed", "url", msg.url, "error", msg.err)
		}
		m.images.store(msg)

	case editorSignalMsg:
		cmds = append(cmds, m.handleSignal(msg.signal), m.listenForEditorUpdate())

	case ErrorMsg:
		cmds = append(cmds, m.DispatchError(msg.Error, messageDuration))

	case QuitMsg:
		m.Close()
		return m, tea.Quit

	case clearMsg:
		m.message = ""
		m.err = nil
		m.clearMsgCancel = nil
	}

	m.renderVisibleSlice()
	cmds = append(cmds, m.requestImages())

	return m, tea.Batch(cmds...)
}

// afterChange reports a key press to the coordinator: edits schedule a
// debounced pass and sync, pure scrolling refreshes viewport widgets.
func (m *Model) afterChange(version uint64, top int) []tea.Cmd {
	if m.editor.GetBuffer().Version() != version {
		tasks := m.coordinator.DocChanged()
		cmds := make([]tea.Cmd, 0, len(tasks))
		for _, task := range tasks {
			cmds = append(cmds, debounce(task))
		}
		return cmds
	}
	if m.editor.GetState().TopLine != top {
		m.coordinator.ViewportChanged()
	}
	return nil
}

func (m *Model) scroll(delta int) {
	if m.editor.ScrollBy(delta) {
		m.coordinator.ViewportChanged()
	}
}

// requestImages starts loading images whose widgets are on screen.
func (m *Model) requestImages() tea.Cmd {
	if !m.cfg.Images.Enabled {
		return nil
	}

	var cmds []tea.Cmd
	for _, r := range m.surface.VisibleRanges() {
		for _, widget := range m.surface.decorations.Widgets(r) {
			if cmd := m.images.request(widget.Payload.URL); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	}
	return tea.Batch(cmds...)
}

func debounce(task decoration.Task) tea.Cmd {
	return func() tea.Msg {
		if task.Wait() {
			return debounceMsg{task: task}
		}
		return nil
	}
}

func errorCmd(err error) tea.Cmd {
	id := editor.ErrInvalidPositionId
	var editorErr *editor.Error
	if errors.As(err, &editorErr) {
		id = editorErr.ID()
	}
	return func() tea.Msg {
		return ErrorMsg{ID: id, Error: err}
	}
}

func (m Model) View() string {
	content := m.viewport.View()

	if !m.showStatusLine {
		return content
	}

	var commandLine string

	if m.message != "" {
		commandLine = m.theme.MessageStyle.
			Background(m.theme.CommandLineStyle.GetBackground()).
			Render(m.message)
	}

	if m.err != nil {
		commandLine = m.theme.ErrorStyle.
			Background(m.theme.CommandLineStyle.GetBackground()).
			Render(m.err.Error())
	}

	statusLine := m.getStatusLine()

	paddingWidth := m.width - lipgloss.Width(statusLine)
	if paddingWidth > 0 {
		statusLine += m.theme.StatusLineStyle.Render(strings.Repeat(" ", paddingWidth))
	}

	paddingWidth = m.width - lipgloss.Width(commandLine)
	if paddingWidth > 0 {
		commandLine += m.theme.CommandLineStyle.Render(strings.Repeat(" ", paddingWidth))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		content,
		statusLine,
		commandLine,
	)
}

func (m *Model) getStatusLine() string {
	if m.StatusLineFunc != nil {
		return m.StatusLineFunc()
	}

	statusLine := m.theme.StatusLabelStyle.Render(" MARKDOWN ")

	name := m.fileName
	if name == "" {
		name = "[scratch]"
	}
	if m.coordinator.SyncPending() {
		name += " ●"
	}
	statusLine += m.theme.StatusLineStyle.Render(" " + name)

	cursor := m.editor.GetBuffer().GetCursor()
	cursorInfo := fmt.Sprintf("%d/%d ", cursor.Position.Row+1, cursor.Position.Col+1)

	width := m.width - (lipgloss.Width(cursorInfo) + lipgloss.Width(statusLine))
	gap := strings.Repeat(" ", max(0, width))

	statusLine += m.theme.StatusLineStyle.Render(
		gap + cursorInfo,
	)

	return statusLine
}

func (m *Model) listenForEditorUpdate() tea.Cmd {
	signals := m.editor.GetUpdateSignalChan()
	return func() tea.Msg {
		return editorSignalMsg{signal: <-signals}
	}
}

// handleSignal turns an editor signal into a status message and a command
// that republishes it to the program.
func (m *Model) handleSignal(signal editor.Signal) tea.Cmd {
	switch signal := signal.(type) {
	case editor.ErrorSignal:
		id, err := signal.Value()
		return func() tea.Msg { return ErrorMsg{ID: id, Error: err} }

	case editor.MessageSignal:
		_, message := signal.Value()
		return m.DispatchMessage(message, messageDuration)

	case editor.CopySignal:
		content := signal.Value()
		return func() tea.Msg { return CopyMsg{Content: content} }

	case editor.PasteSignal:
		content := signal.Value()
		return func() tea.Msg { return PasteMsg{Content: content} }

	case editor.UndoSignal:
		return func() tea.Msg { return UndoMsg{} }

	case editor.RedoSignal:
		return func() tea.Msg { return RedoMsg{} }

	case editor.QuitSignal:
		return func() tea.Msg { return QuitMsg{} }
	}

	return nil
}

// Convert Bubbletea key to editor.Key
func convertBubbleKey(msg tea.KeyMsg) editor.KeyEvent {
	key := editor.KeyEvent{}

	if len(msg.Runes) > 0 {
		key.Rune = msg.Runes[0]
	}

	if msg.Alt {
		key.Modifiers |= editor.ModAlt
	}

	switch msg.Type {
	case tea.KeyEnter:
		key.Key = editor.KeyEnter
	case tea.KeySpace:
		key.Key = editor.KeySpace
		key.Rune = ' '
	case tea.KeyEsc:
		key.Key = editor.KeyEscape
	case tea.KeyBackspace:
		key.Key = editor.KeyBackspace
	case tea.KeyTab:
		key.Key = editor.KeyTab
		key.Rune = '\t'
	case tea.KeyUp:
		key.Key = editor.KeyUp
	case tea.KeyDown:
		key.Key = editor.KeyDown
	case tea.KeyLeft:
		key.Key = editor.KeyLeft
	case tea.KeyRight:
		key.Key = editor.KeyRight
	case tea.KeyHome:
		key.Key = editor.KeyHome
	case tea.KeyEnd:
		key.Key = editor.KeyEnd
	case tea.KeyDelete:
		key.Key = editor.KeyDelete
	case tea.KeyPgUp:
		key.Key = editor.KeyPageUp
	case tea.KeyPgDown:
		key.Key = editor.KeyPageDown
	default:
		if msg.Type >= tea.KeyCtrlA && msg.Type <= tea.KeyCtrlZ {
			key = editor.Ctrl('a' + rune(msg.Type-tea.KeyCtrlA))
		}
	}

	return key
}
