package registry

import (
	"context"

	"github.com/solmev/coreengine/pkg/core"
	"github.com/solmev/coreengine/pkg/decode"
	"github.com/solmev/coreengine/pkg/lifecycle"
)

// Fetcher is the RPC dependency collaborator of spec.md §4.4: a bulk
// request-response fetch of raw accounts at a minimum context slot. A
// compliant implementation may be getMultipleAccounts-like (the teacher's
// pkg/sol/client.go GetMultipleAccounts, adapted in pkg/sol/fetcher.go).
type Fetcher interface {
	FetchMultiple(ctx context.Context, addrs []core.Address, minContextSlot uint64) ([]FetchedAccount, error)
}

// FetchedAccount is one result row from a Fetcher call.
type FetchedAccount struct {
	Address core.Address
	Data    []byte
	Slot    uint64
	Found   bool
}

// DerivedKeySet is the venue-specific auxiliary account set the oracle
// computes on discovery, per spec.md §4.4.
type DerivedKeySet struct {
	Vaults     []core.Address
	TickArrays map[core.TickKey]core.Address // tick-array key -> its PDA, derived by the caller
	BinArrays  map[core.BinKey]core.Address  // bin-array key -> its PDA
	AmmConfig  *core.Address
}

func (k DerivedKeySet) topology() core.Topology {
	t := core.Topology{Vaults: k.Vaults, AmmConfig: k.AmmConfig}
	for tk := range k.TickArrays {
		t.TickArrays = append(t.TickArrays, tk)
	}
	for bk := range k.BinArrays {
		t.BinArrays = append(t.BinArrays, bk)
	}
	return t
}

// ClockSource reads the current on-chain slot from the Clock sysvar. The
// oracle uses it, when configured, as an additional floor under the
// bootstrap fetch's minimum-context-slot bound: the pool's own
// frozen_slot only reflects how far the upstream gRPC source has gotten,
// and an RPC node can itself be lagging behind the live chain by more
// than that, so the two floors are combined with max() before every
// dependency fetch.
type ClockSource interface {
	CurrentSlot(ctx context.Context) (uint64, error)
}

// Oracle runs the discover -> bulk-fetch -> freeze -> activate sequence of
// spec.md §4.4, draining orphans before bootstrap and committing every
// fetched account with source=rpc through the same Commit entry point
// every other writer uses.
type Oracle struct {
	registry   *Registry
	lifecycles *lifecycle.Registry
	orphans    *lifecycle.OrphanBuffer
	fetcher    Fetcher
	clock      ClockSource
}

// NewOracle builds a topology Oracle bound to a Registry, its lifecycle
// registry, an orphan buffer, and an RPC fetcher. clock is optional (nil
// is accepted) and, when present, raises the minimum-context-slot bound
// passed to fetcher on every bootstrap to the live chain's current slot.
func NewOracle(r *Registry, lc *lifecycle.Registry, orphans *lifecycle.OrphanBuffer, fetcher Fetcher, clock ClockSource) *Oracle {
	return &Oracle{registry: r, lifecycles: lc, orphans: orphans, fetcher: fetcher, clock: clock}
}

// Discover handles the first accepted pool write: transitions NONE ->
// DISCOVERED and runs Bootstrap.
func (o *Oracle) Discover(ctx context.Context, pool core.Address, slot uint64, keys DerivedKeySet) error {
	if !o.lifecycles.Discover(pool, slot) {
		return nil // idempotent discovery
	}
	return o.Bootstrap(ctx, pool, keys, slot)
}

// Bootstrap drains orphans for pool through Commit, bulk-fetches the
// derived key set, commits each fetched account with source=rpc, then
// freezes the topology and attempts activation. Used for first discovery
// and for a REFRESHING re-fetch alike.
func (o *Oracle) Bootstrap(ctx context.Context, pool core.Address, keys DerivedKeySet, frozenSlot uint64) error {
	o.drainOrphans(pool, keys)

	addrToTick := make(map[core.Address]core.TickKey, len(keys.TickArrays))
	addrToBin := make(map[core.Address]core.BinKey, len(keys.BinArrays))
	addrs := make([]core.Address, 0, len(keys.Vaults)+len(keys.TickArrays)+len(keys.BinArrays)+1)
	addrs = append(addrs, keys.Vaults...)
	for tk, addr := range keys.TickArrays {
		addrs = append(addrs, addr)
		addrToTick[addr] = tk
	}
	for bk, addr := range keys.BinArrays {
		addrs = append(addrs, addr)
		addrToBin[addr] = bk
	}
	if keys.AmmConfig != nil {
		addrs = append(addrs, *keys.AmmConfig)
	}

	minContextSlot := frozenSlot
	if o.clock != nil {
		if slot, err := o.clock.CurrentSlot(ctx); err == nil && slot > minContextSlot {
			minContextSlot = slot
		}
	}

	fetched, err := o.fetcher.FetchMultiple(ctx, addrs, minContextSlot)
	if err != nil {
		return err
	}
	for _, f := range fetched {
		if !f.Found {
			continue
		}
		o.commitFetched(pool, keys, addrToTick, addrToBin, f)
	}

	o.lifecycles.Freeze(pool, keys.topology(), frozenSlot)
	o.TryActivate(pool)
	return nil
}

func (o *Oracle) commitFetched(pool core.Address, keys DerivedKeySet, addrToTick map[core.Address]core.TickKey, addrToBin map[core.Address]core.BinKey, f FetchedAccount) {
	isVault := false
	for _, v := range keys.Vaults {
		if v == f.Address {
			isVault = true
			break
		}
	}
	switch {
	case isVault:
		if vault, err := decode.DecodeVault(f.Address, f.Data); err == nil {
			o.registry.Commit(Update{Kind: KindVault, Pool: pool, VaultKey: f.Address, VaultValue: vault, Slot: f.Slot, Source: SourceRpc, DataLen: len(f.Data)})
		}
	case keys.AmmConfig != nil && *keys.AmmConfig == f.Address:
		if cfg, err := decode.DecodeAmmConfig(f.Address, f.Data); err == nil {
			o.registry.Commit(Update{Kind: KindAmmConfig, Pool: pool, AmmConfigKey: f.Address, AmmConfigVal: cfg, Slot: f.Slot, Source: SourceRpc, DataLen: len(f.Data)})
		}
	default:
		if tk, ok := addrToTick[f.Address]; ok {
			if ta, err := decode.DecodeRaydiumTickArray(f.Address, f.Data); err == nil {
				o.registry.Commit(Update{Kind: KindTick, Pool: pool, TickKey: tk, TickValue: ta, Slot: f.Slot, Source: SourceRpc, DataLen: len(f.Data)})
			}
		} else if bk, ok := addrToBin[f.Address]; ok {
			if ba, err := decode.DecodeMeteoraBinArray(f.Address, f.Data); err == nil {
				o.registry.Commit(Update{Kind: KindBin, Pool: pool, BinKey: bk, BinValue: ba, Slot: f.Slot, Source: SourceRpc, DataLen: len(f.Data)})
			}
		}
	}
}

// drainOrphans commits every buffered tick/bin update for pool before
// bootstrap fetches run, so the bootstrap's own fetch (with a later slot)
// supersedes the orphan per the monotonic-ordering rule.
func (o *Oracle) drainOrphans(pool core.Address, keys DerivedKeySet) {
	for _, e := range o.orphans.Drain(pool) {
		slot, wv := e.SlotWriteVersion()
		if e.IsTick() {
			o.registry.Commit(Update{Kind: KindTick, Pool: pool, TickKey: e.TickKey(), TickValue: e.TickValue(), Slot: slot, WriteVersion: wv, Source: SourceGrpc})
		} else {
			o.registry.Commit(Update{Kind: KindBin, Pool: pool, BinKey: e.BinKey(), BinValue: e.BinValue(), Slot: slot, WriteVersion: wv, Source: SourceGrpc})
		}
	}
}

// TryActivate attempts TOPOLOGY_FROZEN -> ACTIVE using the registry's own
// cached slots as the completeness check's dependency lookup.
func (o *Oracle) TryActivate(pool core.Address) bool {
	return o.lifecycles.TryActivate(pool,
		func(addr core.Address) (uint64, bool) {
			if _, slot, _, ok := o.registry.Vault(addr); ok {
				return slot, ok
			}
			if _, slot, _, ok := o.registry.AmmConfig(addr); ok {
				return slot, ok
			}
			return 0, false
		},
		func(tk core.TickKey) (uint64, bool) {
			_, slot, _, ok := o.registry.TickArray(tk)
			return slot, ok
		},
		func(bk core.BinKey) (uint64, bool) {
			_, slot, _, ok := o.registry.BinArray(bk)
			return slot, ok
		},
	)
}
