package bridge

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/sourcegraph/jsonrpc2"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

// RPCHost speaks JSON-RPC 2.0 with Content-Length framing. The peer sends
// "update" and receives "edit" and "info" notifications. Notifications are
// written by a background sender, so a peer that stops reading never stalls
// the caller.
type RPCHost struct {
	ctx      context.Context
	rwc      io.Closer
	conn     *jsonrpc2.Conn
	out      *outbox
	onUpdate UpdateFunc
	logger   *slog.Logger
}

func NewRPCHost(ctx context.Context, rwc io.ReadWriteCloser, onUpdate UpdateFunc, logger *slog.Logger) *RPCHost {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &RPCHost{ctx: ctx, rwc: rwc, onUpdate: onUpdate, logger: logger}
	h.conn = jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{}),
		routingHandler(map[string]method{
			MethodUpdate: h.update,
		}))
	h.out = newOutbox(h.notify, logger)
	return h
}

type method func(context.Context, json.RawMessage) (any, error)

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			return nil, errMethodNotFound
		}
		if req.Params == nil {
			return nil, errInvalidParams
		}
		return fn(ctx, *req.Params)
	})
}

func (h *RPCHost) update(_ context.Context, raw json.RawMessage) (any, error) {
	var params TextParams
	if err := json.Unmarshal(raw, &params); err != nil {
		h.logger.Warn("malformed update", "error", err)
		return nil, errInvalidParams
	}
	if h.onUpdate != nil {
		h.onUpdate(params.Text)
	}
	return nil, nil
}

func (h *RPCHost) notify(method, text string) error {
	return h.conn.Notify(h.ctx, method, TextParams{Text: text})
}

// Edit queues text for the peer, replacing any edit not yet written.
func (h *RPCHost) Edit(text string) error {
	if h.disconnected() {
		return jsonrpc2.ErrClosed
	}
	return h.out.edit(text)
}

func (h *RPCHost) Info(text string) error {
	if h.disconnected() {
		return jsonrpc2.ErrClosed
	}
	return h.out.info(text)
}

func (h *RPCHost) disconnected() bool {
	select {
	case <-h.conn.DisconnectNotify():
		return true
	default:
		return false
	}
}

// Done is closed when the peer disconnects.
func (h *RPCHost) Done() <-chan struct{} { return h.conn.DisconnectNotify() }

// Close disconnects and waits for the sender to stop. Edits still queued are
// dropped with the connection.
func (h *RPCHost) Close() error {
	// A write stuck on a peer that stopped reading holds the conn's send lock,
	// which conn.Close also takes. Closing the transport fails that write.
	err := h.rwc.Close()
	h.out.close()
	_ = h.conn.Close()
	return err
}
