package core

// Position represents a specific location in the text buffer
type Position struct {
	Row int // Zero-indexed row (line number)
	Col int // Zero-indexed column (rune position in the line)
}

// Editor represents the editing primitive driven by the terminal surface.
type Editor interface {
	// Buffer manipulation
	GetBuffer() Buffer
	SetContent(content string)     // Load content, cursor at the start, history reset
	ReplaceContent(content string) // Replace content keeping the cursor, recorded in history

	// Event handling
	HandleKey(key KeyEvent) error // Process a key press

	// State Management
	GetState() State
	SetState(State)

	// History management
	SaveHistory()
	Undo() error
	Redo() error
	Paste() (int, error) // Paste from clipboard
	Copy() error         // Copy the current line to the clipboard

	// Viewport scrolling
	ScrollViewport()          // Keep the cursor visible
	ScrollBy(delta int) bool  // Move the top line, reports whether it changed
	VisibleLines() (int, int) // Half-open range of rows in the viewport

	GetUpdateSignalChan() <-chan Signal
	DispatchError(id ErrorId, err error)
	DispatchMessage(args ...string)
	DispatchSignal(signal Signal)
	Quit()
}

type Clipboard interface {
	Write(text string) error
	Read() (string, error)
}
