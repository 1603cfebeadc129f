package core

import (
	"fmt"
	"log/slog"
	"strings"
)

// State represents the view-related state of the editor
type State struct {
	Quit bool // Flag indicating if the editor should exit

	// Viewport information
	TopLine        int // First line visible in the viewport (0-indexed)
	ViewportHeight int // Number of lines that can be displayed
	ViewportWidth  int // Number of columns that can be displayed

	TabWidth int // Spaces inserted for a tab key press
}

// InitialState creates a default state
func InitialState() State {
	return State{
		TopLine:        0,
		ViewportHeight: 24,
		ViewportWidth:  80,
		TabWidth:       4,
	}
}

// Concrete implementation of Editor
type editor struct {
	buffer Buffer
	state  State

	// IMPROVEMENT: Use a more efficient history mechanism (diffs, ring buffer)
	history       []string // Store snapshots of buffer content as strings
	cursorHistory []Cursor // Store cursor states corresponding to history
	historyPos    int      // Current position in the history (-1 = initial state)
	maxHistory    uint32   // Max number of history entries

	clipboard    Clipboard // Clipboard interface for copy/paste
	updateSignal chan Signal
}

// New creates a new editor instance
func New(clipboard Clipboard) Editor {
	e := &editor{
		buffer:       NewBuffer(),
		state:        InitialState(),
		historyPos:   -1,
		maxHistory:   1000,
		clipboard:    clipboard,
		updateSignal: make(chan Signal, 100),
	}

	e.SaveHistory()

	return e
}

// SetMaxHistory allows setting the maximum number of history entries.
// Default is 1000.
func (e *editor) SetMaxHistory(max uint32) {
	e.maxHistory = max
}

func (e *editor) GetBuffer() Buffer {
	return e.buffer
}

func (e *editor) SetContent(content string) {
	e.buffer.SetContent([]byte(content))
	e.history = nil
	e.cursorHistory = nil
	e.historyPos = -1
	e.state.TopLine = 0
	e.SaveHistory()
}

func (e *editor) ReplaceContent(content string) {
	e.buffer.ReplaceContent(content)
	e.SaveHistory()
	e.ScrollViewport()
}

func (e *editor) GetUpdateSignalChan() <-chan Signal {
	return e.updateSignal
}

func (e *editor) GetState() State {
	return e.state
}

func (e *editor) SetState(state State) {
	e.state = state
}

// HandleKey applies a single key press to the buffer.
func (e *editor) HandleKey(key KeyEvent) error {
	if key.Modifiers&ModCtrl != 0 {
		return e.handleChord(key)
	}

	buffer := e.buffer
	cursor := buffer.GetCursor()
	row, col := cursor.Position.Row, cursor.Position.Col

	switch key.Key {
	case KeyEscape:
		return nil

	case KeyBackspace:
		switch {
		case col > 0:
			if err := buffer.DeleteRunesAt(row, col-1, 1); err != nil {
				return newError(ErrInvalidPositionId, err)
			}
			cursor.MoveLeft(buffer, 1)
		case row > 0:
			// Join with the previous line
			prevLineLen := buffer.LineRuneCount(row - 1)
			if err := buffer.DeleteRunesAt(row-1, prevLineLen, 1); err != nil {
				return newError(ErrInvalidPositionId, err)
			}
			cursor.Position = Position{Row: row - 1, Col: prevLineLen}
			cursor.Preferred = prevLineLen
		default:
			return newError(ErrStartOfBufferId, ErrStartOfBuffer)
		}
		buffer.SetCursor(cursor)
		e.SaveHistory()

	case KeyDelete:
		if col >= buffer.LineRuneCount(row) && row >= buffer.LineCount()-1 {
			return newError(ErrEndOfBufferId, ErrEndOfBuffer)
		}
		if err := buffer.DeleteRunesAt(row, col, 1); err != nil {
			return newError(ErrInvalidPositionId, err)
		}
		e.SaveHistory()

	case KeyEnter:
		if err := buffer.InsertRunesAt(row, col, []rune{'\n'}); err != nil {
			return newError(ErrInvalidPositionId, err)
		}
		cursor.Position = Position{Row: row + 1, Col: 0}
		cursor.Preferred = 0
		buffer.SetCursor(cursor)
		e.SaveHistory()

	case KeyTab:
		spaces := []rune(strings.Repeat(" ", max(e.state.TabWidth, 1)))
		if err := buffer.InsertRunesAt(row, col, spaces); err != nil {
			return newError(ErrInvalidPositionId, err)
		}
		cursor.MoveRight(buffer, len(spaces))
		buffer.SetCursor(cursor)
		e.SaveHistory()

	case KeyLeft:
		cursor.MoveLeftOrUp(buffer)
		buffer.SetCursor(cursor)

	case KeyRight:
		cursor.MoveRightOrDown(buffer)
		buffer.SetCursor(cursor)

	case KeyUp:
		cursor.MoveUp(buffer, 1)
		buffer.SetCursor(cursor)

	case KeyDown:
		cursor.MoveDown(buffer, 1)
		buffer.SetCursor(cursor)

	case KeyHome:
		cursor.MoveToLineStart()
		buffer.SetCursor(cursor)

	case KeyEnd:
		cursor.MoveToLineEnd(buffer)
		buffer.SetCursor(cursor)

	case KeyPageUp:
		cursor.MoveUp(buffer, max(e.state.ViewportHeight, 1))
		buffer.SetCursor(cursor)

	case KeyPageDown:
		cursor.MoveDown(buffer, max(e.state.ViewportHeight, 1))
		buffer.SetCursor(cursor)

	default: // Handle regular character runes
		if key.Rune == 0 || key.Modifiers&ModAlt != 0 {
			return nil
		}
		if err := buffer.InsertRunesAt(row, col, []rune{key.Rune}); err != nil {
			return newError(ErrInvalidPositionId, err)
		}
		cursor.MoveRight(buffer, 1)
		buffer.SetCursor(cursor)
		e.SaveHistory()
	}

	e.ScrollViewport()

	return nil
}

func (e *editor) handleChord(key KeyEvent) error {
	switch {
	case key.IsCtrl('z'):
		if err := e.Undo(); err != nil {
			return newError(ErrUndoFailedId, err)
		}
	case key.IsCtrl('y'):
		if err := e.Redo(); err != nil {
			return newError(ErrRedoFailedId, err)
		}
	case key.IsCtrl('v'):
		if _, err := e.Paste(); err != nil {
			return newError(ErrFailedToPasteId, err)
		}
	case key.IsCtrl('k'):
		if err := e.Copy(); err != nil {
			return newError(ErrCopyFailedId, err)
		}
	case key.IsCtrl('c'), key.IsCtrl('q'):
		e.Quit()
	}

	return nil
}

// ScrollViewport ensures the cursor is within the visible area
func (e *editor) ScrollViewport() {
	cursor := e.buffer.GetCursor()
	row := cursor.Position.Row

	if row < e.state.TopLine {
		e.state.TopLine = row
	} else if row >= e.state.TopLine+e.state.ViewportHeight {
		// Scroll down so cursor is on the last line of the viewport
		e.state.TopLine = row - e.state.ViewportHeight + 1
	}

	if e.state.TopLine < 0 {
		e.state.TopLine = 0
	}
}

// ScrollBy moves the viewport without editing and drags the cursor along
// when it would leave the visible rows.
func (e *editor) ScrollBy(delta int) bool {
	height := max(e.state.ViewportHeight, 1)
	maxTop := max(e.buffer.LineCount()-height, 0)
	top := min(max(e.state.TopLine+delta, 0), maxTop)
	if top == e.state.TopLine {
		return false
	}
	e.state.TopLine = top

	cursor := e.buffer.GetCursor()
	if cursor.Position.Row < top {
		cursor.Position.Row = top
	} else if cursor.Position.Row >= top+height {
		cursor.Position.Row = top + height - 1
	}
	cursor.Position.Col = cursor.Preferred
	e.buffer.SetCursor(cursor)

	return true
}

func (e *editor) VisibleLines() (int, int) {
	start := min(e.state.TopLine, max(e.buffer.LineCount()-1, 0))
	end := min(start+max(e.state.ViewportHeight, 1), e.buffer.LineCount())
	return start, end
}

// --- History Management (Simple Snapshot Implementation) ---
func (e *editor) SaveHistory() {
	currentState := e.buffer.GetCurrentContent()
	currentCursor := e.buffer.GetCursor()

	// If we used Undo, truncate the future history
	if e.historyPos < len(e.history)-1 {
		e.history = e.history[:e.historyPos+1]
		e.cursorHistory = e.cursorHistory[:e.historyPos+1]
	}

	// Avoid saving duplicate state if no changes occurred
	if e.historyPos >= 0 && e.history[e.historyPos] == currentState {
		e.cursorHistory[e.historyPos] = currentCursor
		return
	}

	e.history = append(e.history, currentState)
	e.cursorHistory = append(e.cursorHistory, currentCursor)
	e.historyPos = len(e.history) - 1

	maxHistory := max(int(e.maxHistory), 1)
	if len(e.history) > maxHistory {
		e.history = e.history[len(e.history)-maxHistory:]
		e.cursorHistory = e.cursorHistory[len(e.cursorHistory)-maxHistory:]
		e.historyPos = len(e.history) - 1
	}
}

func (e *editor) Undo() error {
	if e.historyPos <= 0 {
		return ErrOldestChange
	}

	e.historyPos--
	e.restore(e.historyPos)
	e.DispatchSignal(UndoSignal{})

	return nil
}

func (e *editor) Redo() error {
	if e.historyPos >= len(e.history)-1 {
		return ErrNewestChange
	}

	e.historyPos++
	e.restore(e.historyPos)
	e.DispatchSignal(RedoSignal{})

	return nil
}

func (e *editor) restore(pos int) {
	e.buffer.ReplaceContent(e.history[pos])
	e.buffer.SetCursor(e.cursorHistory[pos])
	e.ScrollViewport()
}

func (e *editor) Paste() (int, error) {
	if e.clipboard == nil {
		return 0, ErrNoClipboard
	}

	content, err := e.clipboard.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read clipboard: %w", err)
	}
	if content == "" {
		e.DispatchMessage(ClipboardEmptyMessage)
		return 0, nil
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")

	cursor := e.buffer.GetCursor()
	if err := e.buffer.InsertRunesAt(cursor.Position.Row, cursor.Position.Col, []rune(content)); err != nil {
		return 0, err
	}

	// Place the cursor after the pasted text
	lines := strings.Split(content, "\n")
	last := []rune(lines[len(lines)-1])
	if len(lines) == 1 {
		cursor.Position.Col += len(last)
	} else {
		cursor.Position.Row += len(lines) - 1
		cursor.Position.Col = len(last)
	}
	cursor.Preferred = cursor.Position.Col
	e.buffer.SetCursor(cursor)
	e.SaveHistory()
	e.ScrollViewport()

	e.DispatchSignal(PasteSignal{content: content})

	return len(content), nil
}

// Copy writes the current line, with its line break, to the clipboard.
func (e *editor) Copy() error {
	if e.clipboard == nil {
		return ErrNoClipboard
	}

	row := e.buffer.GetCursor().Position.Row
	content := string(e.buffer.GetLineRunes(row)) + "\n"

	if err := e.clipboard.Write(content); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}

	e.DispatchSignal(CopySignal{content: content})
	e.DispatchMessage(LineCopiedMessage)

	return nil
}

func (e *editor) Quit() {
	e.state.Quit = true
	select {
	case e.updateSignal <- QuitSignal{}:
	default:
		slog.Warn("signal channel is full, dropping quit signal")
	}
}
