// Package ingest demultiplexes the account-update / pending-transaction
// stream of spec.md §6 by owning program and routes each message to the
// right decoder. The teacher's pack never includes a gRPC/Geyser client,
// so the concrete StreamSource implementation here uses
// github.com/gagliardetto/solana-go/rpc/ws (already a transitive
// dependency of the teacher's solana-go stack) as a websocket-based
// stand-in for the upstream gRPC firehose described in spec.md §6.
package ingest

import (
	"context"

	"github.com/solmev/coreengine/pkg/core"
)

// AccountUpdate is the decoded shape of spec.md §6's account-update
// message.
type AccountUpdate struct {
	Owner        core.Address
	Pubkey       core.Address
	Data         []byte
	Slot         uint64
	WriteVersion uint64
}

// TxUpdate is the decoded shape of spec.md §6's pending-transaction
// message, with the wall-clock capture timestamp set by the caller on
// first byte.
type TxUpdate struct {
	Signature core.Signature
	Message   []byte
	Slot      uint64
}

// StreamSource is the transport-agnostic interface the demux consumes.
// Concrete implementations (websocket, or a future gRPC/Geyser client)
// must reliably re-establish their subscription filters on reconnect.
type StreamSource interface {
	// Subscribe opens the stream, filtered to the given owner programs
	// plus a mutable list of dynamic vault addresses. It returns channels
	// of account and transaction updates, and a channel that receives an
	// error (or is closed) when the underlying connection drops
	// (triggering reconnect).
	Subscribe(ctx context.Context, programs []core.Address, vaults []core.Address) (<-chan AccountUpdate, <-chan TxUpdate, <-chan error, error)
	// AddVault adds addr to the dynamic vault subscription list without
	// tearing down the stream, if the transport supports it.
	AddVault(ctx context.Context, addr core.Address) error
	Close() error
}

// Demux routes an AccountUpdate to the decoder keyed by its owning
// program, via a caller-supplied table, so ingest stays decode-agnostic.
type Demux struct {
	handlers map[core.Address]func(AccountUpdate)
	fallback func(AccountUpdate)
}

// NewDemux builds a Demux with no routes registered.
func NewDemux() *Demux {
	return &Demux{handlers: make(map[core.Address]func(AccountUpdate))}
}

// OnProgram registers handler for updates owned by program.
func (d *Demux) OnProgram(program core.Address, handler func(AccountUpdate)) {
	d.handlers[program] = handler
}

// OnUnmatched registers a fallback for updates from an unrecognized owner
// (e.g. the token program, routed to vault decode rather than pool decode).
func (d *Demux) OnUnmatched(handler func(AccountUpdate)) {
	d.fallback = handler
}

// Route dispatches u to its registered handler, or the fallback if none
// matches. A no-op if neither is registered.
func (d *Demux) Route(u AccountUpdate) {
	if h, ok := d.handlers[u.Owner]; ok {
		h(u)
		return
	}
	if d.fallback != nil {
		d.fallback(u)
	}
}
