package bridge

import (
	"errors"
	"log/slog"
	"sync"
)

// infoBacklog bounds the info messages waiting for a slow host.
const infoBacklog = 16

var (
	ErrClosed  = errors.New("host closed")
	ErrBacklog = errors.New("host is not keeping up")
)

type sendFunc func(method, text string) error

// outbox hands host-bound messages to one sender goroutine so callers never
// wait on the host. Edits are latest-wins: an edit still queued when a newer
// one arrives is replaced. Infos queue up to infoBacklog.
type outbox struct {
	send   sendFunc
	logger *slog.Logger

	edits chan string
	infos chan string

	quit     chan struct{}
	done     chan struct{}
	quitOnce sync.Once
}

func newOutbox(send sendFunc, logger *slog.Logger) *outbox {
	o := &outbox{
		send:   send,
		logger: logger,
		edits:  make(chan string, 1),
		infos:  make(chan string, infoBacklog),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go o.run()
	return o
}

func (o *outbox) closed() bool {
	select {
	case <-o.quit:
		return true
	default:
		return false
	}
}

func (o *outbox) edit(text string) error {
	if o.closed() {
		return ErrClosed
	}
	for {
		select {
		case o.edits <- text:
			return nil
		default:
		}
		// Drop the stale edit and try again.
		select {
		case <-o.edits:
		default:
		}
	}
}

func (o *outbox) info(text string) error {
	if o.closed() {
		return ErrClosed
	}
	select {
	case o.infos <- text:
		return nil
	default:
		return ErrBacklog
	}
}

func (o *outbox) run() {
	defer close(o.done)
	for {
		select {
		case text := <-o.edits:
			o.deliver(MethodEdit, text)
		case text := <-o.infos:
			o.deliver(MethodInfo, text)
		case <-o.quit:
			// The newest edit is still owed to the host.
			select {
			case text := <-o.edits:
				o.deliver(MethodEdit, text)
			default:
			}
			return
		}
	}
}

func (o *outbox) deliver(method, text string) {
	if err := o.send(method, text); err != nil {
		o.logger.Warn("host delivery failed", "method", method, "error", err)
	}
}

// close stops accepting messages, flushes the pending edit and waits for the
// sender to exit. The send function must be unblocked by the caller first.
func (o *outbox) close() {
	o.quitOnce.Do(func() { close(o.quit) })
	<-o.done
}
