package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solmev/coreengine/pkg/core"
	"github.com/solmev/coreengine/pkg/lifecycle"
)

func testAddr(b byte) core.Address {
	var a core.Address
	a[0] = b
	return a
}

func TestCommitPool_MonotonicOrdering(t *testing.T) {
	lc := lifecycle.New()
	r := New(lc)
	pool := testAddr(1)

	res := r.Commit(Update{
		Kind: KindPool, PoolKey: pool, PoolValue: &core.Pool{Address: pool},
		Slot: 5, WriteVersion: 1,
	})
	require.True(t, res.Updated)

	// Same slot, lower write_version: stale, rejected.
	res = r.Commit(Update{
		Kind: KindPool, PoolKey: pool, PoolValue: &core.Pool{Address: pool},
		Slot: 5, WriteVersion: 0,
	})
	require.False(t, res.Updated)
	require.Equal(t, core.KindCommitStale, res.Reason)

	// Same slot, higher write_version: accepted.
	res = r.Commit(Update{
		Kind: KindPool, PoolKey: pool, PoolValue: &core.Pool{Address: pool},
		Slot: 5, WriteVersion: 2,
	})
	require.True(t, res.Updated)

	// Lower slot entirely, even with a huge write_version: stale.
	res = r.Commit(Update{
		Kind: KindPool, PoolKey: pool, PoolValue: &core.Pool{Address: pool},
		Slot: 4, WriteVersion: 999,
	})
	require.False(t, res.Updated)

	// Higher slot: accepted regardless of write_version.
	res = r.Commit(Update{
		Kind: KindPool, PoolKey: pool, PoolValue: &core.Pool{Address: pool},
		Slot: 6, WriteVersion: 0,
	})
	require.True(t, res.Updated)
}

func TestCommitVault_RpcForbiddenAfterFreeze(t *testing.T) {
	lc := lifecycle.New()
	r := New(lc)
	pool := testAddr(1)
	vault := testAddr(2)

	lc.ArmStartSlot(0)
	require.True(t, lc.Discover(pool, 1))
	topo := core.Topology{Vaults: []core.Address{vault}}
	require.True(t, lc.Freeze(pool, topo, 1))

	res := r.Commit(Update{
		Kind: KindVault, Pool: pool, VaultKey: vault, VaultValue: &core.Vault{Address: vault, Amount: 10},
		Slot: 1, Source: SourceRpc,
	})
	require.False(t, res.Updated)
	require.Equal(t, core.KindCommitRpcForbidden, res.Reason)
}

func TestCommitVault_OutOfTopologyRejected(t *testing.T) {
	lc := lifecycle.New()
	r := New(lc)
	pool := testAddr(1)
	vault := testAddr(2)
	other := testAddr(3)

	lc.ArmStartSlot(0)
	require.True(t, lc.Discover(pool, 1))
	require.True(t, lc.Freeze(pool, core.Topology{Vaults: []core.Address{vault}}, 1))

	res := r.Commit(Update{
		Kind: KindVault, Pool: pool, VaultKey: other, VaultValue: &core.Vault{Address: other, Amount: 10},
		Slot: 2, Source: SourceGrpc,
	})
	require.False(t, res.Updated)
	require.Equal(t, core.KindCommitOutOfTopology, res.Reason)
}

func TestCommitVault_WithinTopologyAccepted(t *testing.T) {
	lc := lifecycle.New()
	r := New(lc)
	pool := testAddr(1)
	vault := testAddr(2)

	lc.ArmStartSlot(0)
	require.True(t, lc.Discover(pool, 1))
	require.True(t, lc.Freeze(pool, core.Topology{Vaults: []core.Address{vault}}, 1))

	res := r.Commit(Update{
		Kind: KindVault, Pool: pool, VaultKey: vault, VaultValue: &core.Vault{Address: vault, Amount: 10},
		Slot: 2, Source: SourceGrpc,
	})
	require.True(t, res.Updated)

	cached, slot, _, ok := r.Vault(vault)
	require.True(t, ok)
	require.Equal(t, uint64(2), slot)
	require.Equal(t, uint64(10), cached.Amount)
}

func TestCommitVault_BeforeFreezeAnySourceAccepted(t *testing.T) {
	lc := lifecycle.New()
	r := New(lc)
	pool := testAddr(1)
	vault := testAddr(2)

	// Pool not yet discovered: state is StateNone, so neither the
	// rpc-forbidden nor the topology-containment check applies.
	res := r.Commit(Update{
		Kind: KindVault, Pool: pool, VaultKey: vault, VaultValue: &core.Vault{Address: vault, Amount: 5},
		Slot: 1, Source: SourceRpc,
	})
	require.True(t, res.Updated)
}
