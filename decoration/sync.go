package decoration

import (
	"errors"
	"fmt"
	"strings"
)

var ErrRemoteApply = errors.New("remote update failed")

// Host owns the authoritative copy of the document. The coordinator calls it
// from the editor's event loop, so implementations must return without
// waiting on I/O.
type Host interface {
	// Edit receives the full text after a local edit has settled.
	Edit(text string) error
	// Info carries a diagnostic or user-facing message. No reply is expected.
	Info(text string) error
}

type nopHost struct{}

func (nopHost) Edit(string) error { return nil }
func (nopHost) Info(string) error { return nil }

// NormalizeLineEndings converts CRLF and lone CR line breaks to LF.
func NormalizeLineEndings(text string) string {
	if !strings.ContainsRune(text, '\r') {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// ApplyRemote applies a full document pushed by the host. Texts equal to the
// buffer after line-ending normalisation are ignored. Once the buffer matches
// the host, a pending outbound sync is dropped. A failed replace is logged and
// leaves the pending sync and the host baseline alone. It reports whether the
// buffer was replaced.
func (c *Coordinator) ApplyRemote(text string) bool {
	incoming := NormalizeLineEndings(text)

	if NormalizeLineEndings(c.view.Text()) == incoming {
		c.markSynced(incoming)
		return false
	}

	err := c.withRemoteUpdate(func() error {
		return c.view.ReplaceText(incoming)
	})
	if err != nil {
		c.logger.Warn("remote update not applied", "error", err)
		return false
	}
	c.markSynced(incoming)

	// Decorate the committed text right away instead of waiting for a window.
	c.highlight.Cancel()
	c.runPass()

	return true
}

func (c *Coordinator) markSynced(text string) {
	c.lastSynced = text
	c.sync.Cancel()
}

// withRemoteUpdate holds the remote-update flag for the duration of apply.
// The flag is released on every exit path, panics included.
func (c *Coordinator) withRemoteUpdate(apply func() error) (err error) {
	c.applyingRemote = true
	c.state = StateApplyingRemote
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrRemoteApply, r)
		}
		c.applyingRemote = false
		c.state = StateIdle
	}()

	if err := apply(); err != nil {
		return fmt.Errorf("%w: %w", ErrRemoteApply, err)
	}
	return nil
}

// broadcast pushes the current text to the host unless the host already has it.
func (c *Coordinator) broadcast() bool {
	if c.applyingRemote {
		return false
	}

	text := NormalizeLineEndings(c.view.Text())
	if text == c.lastSynced {
		return false
	}

	if err := c.host.Edit(text); err != nil {
		c.logger.Warn("edit not delivered", "error", err)
		return false
	}
	c.lastSynced = text
	c.broadcasts++

	return true
}

// Info forwards a message to the host without waiting for a reply.
func (c *Coordinator) Info(text string) {
	if err := c.host.Info(text); err != nil {
		c.logger.Warn("info not delivered", "error", err)
	}
}
