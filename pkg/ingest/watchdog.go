package ingest

import (
	"context"
	"time"

	"github.com/solmev/coreengine/pkg/core"
)

// Watchdog tears down and reconnects a StreamSource when inter-message
// latency exceeds a threshold, with exponential backoff capped per
// spec.md §5 ("source uses 30 s" for both the stall threshold and the
// backoff cap).
type Watchdog struct {
	source       StreamSource
	programs     []core.Address
	vaults       []core.Address
	stallTimeout time.Duration
	backoffMin   time.Duration
	backoffMax   time.Duration

	// OnReconnect is invoked with the first slot observed on the new
	// stream, so the caller can re-arm the lifecycle registry's
	// startup-slot convergence gate without resetting pool state.
	OnReconnect func(firstSlot uint64)
}

// NewWatchdog builds a Watchdog over source, watching programs/vaults.
func NewWatchdog(source StreamSource, programs, vaults []core.Address, stallTimeout, backoffMin, backoffMax time.Duration) *Watchdog {
	return &Watchdog{source: source, programs: programs, vaults: vaults, stallTimeout: stallTimeout, backoffMin: backoffMin, backoffMax: backoffMax}
}

// Run drives the stream, forwarding every AccountUpdate/TxUpdate to the
// given handlers until ctx is canceled. On stall or transport error it
// reconnects with exponential backoff, re-establishing both subscription
// filters (per spec.md §6's "the consumer must reliably re-establish both
// filters on reconnect").
func (w *Watchdog) Run(ctx context.Context, onAccount func(AccountUpdate), onTx func(TxUpdate)) error {
	backoff := w.backoffMin
	firstMessage := true

	for {
		accounts, txs, errs, err := w.source.Subscribe(ctx, w.programs, w.vaults)
		if err != nil {
			if !w.sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = nextBackoff(backoff, w.backoffMax)
			continue
		}

		firstMessage = true
		stalled := w.drain(ctx, accounts, txs, errs, onAccount, onTx, &firstMessage)
		if !stalled {
			return ctx.Err()
		}
		if !w.sleep(ctx, backoff) {
			return ctx.Err()
		}
		backoff = nextBackoff(backoff, w.backoffMax)
	}
}

// drain forwards messages until the stall timeout fires, an error arrives,
// or ctx is canceled. Returns true if the caller should reconnect.
func (w *Watchdog) drain(ctx context.Context, accounts <-chan AccountUpdate, txs <-chan TxUpdate, errs <-chan error, onAccount func(AccountUpdate), onTx func(TxUpdate), firstMessage *bool) bool {
	timer := time.NewTimer(w.stallTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
			w.source.Close()
			return true
		case a, ok := <-accounts:
			if !ok {
				return true
			}
			if *firstMessage && w.OnReconnect != nil {
				w.OnReconnect(a.Slot)
				*firstMessage = false
			}
			onAccount(a)
			resetTimer(timer, w.stallTimeout)
		case t, ok := <-txs:
			if !ok {
				return true
			}
			onTx(t)
			resetTimer(timer, w.stallTimeout)
		case <-errs:
			w.source.Close()
			return true
		}
	}
}

func (w *Watchdog) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func nextBackoff(cur, max time.Duration) time.Duration {
	next := cur * 2
	if next > max {
		return max
	}
	return next
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
