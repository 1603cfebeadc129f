package core

import "log/slog"

var (
	EmptyMessage          = ""
	LineCopiedMessage     = "line copied"
	ClipboardEmptyMessage = "clipboard is empty"
)

func (e *editor) DispatchMessage(args ...string) {
	id := args[0]
	value := id
	if len(args) > 1 {
		value = args[1]
	}
	select {
	case e.updateSignal <- MessageSignal{id, value}:
	default:
		slog.Warn("signal channel is full, dropping message", "id", id)
	}
}
