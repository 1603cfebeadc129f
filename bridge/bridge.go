// Package bridge connects a decoration.Coordinator to the process that owns
// the document: a JSON-RPC peer or a file on disk.
package bridge

import (
	"errors"

	"github.com/ionut-t/mdlive/decoration"
)

const (
	MethodUpdate = "update"
	MethodEdit   = "edit"
	MethodInfo   = "info"
)

var ErrNoPath = errors.New("file host needs a path")

// UpdateFunc receives the full document text pushed by the host.
type UpdateFunc func(text string)

// TextParams is the payload of every bridge message.
type TextParams struct {
	Text string `json:"text"`
}

var (
	_ decoration.Host = (*RPCHost)(nil)
	_ decoration.Host = (*FileHost)(nil)
)
