package sol

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/solmev/coreengine/pkg/core"
	"github.com/solmev/coreengine/pkg/registry"
)

// RegistryFetcher adapts Client's rate-limited GetMultipleAccountsWithOpts
// into the registry.Fetcher interface the topology oracle bulk-fetches
// through, batching in chunks of 100 (the RPC method's own account-count
// ceiling).
type RegistryFetcher struct {
	client *Client
}

// NewRegistryFetcher wraps an existing Client as a registry.Fetcher.
func NewRegistryFetcher(client *Client) *RegistryFetcher {
	return &RegistryFetcher{client: client}
}

const fetchChunkSize = 100

// FetchMultiple implements registry.Fetcher.
func (f *RegistryFetcher) FetchMultiple(ctx context.Context, addrs []core.Address, minContextSlot uint64) ([]registry.FetchedAccount, error) {
	out := make([]registry.FetchedAccount, 0, len(addrs))
	for start := 0; start < len(addrs); start += fetchChunkSize {
		end := start + fetchChunkSize
		if end > len(addrs) {
			end = len(addrs)
		}
		chunk := addrs[start:end]

		pubkeys := make([]solana.PublicKey, len(chunk))
		for i, a := range chunk {
			pubkeys[i] = a.PublicKey()
		}

		res, err := f.client.GetMultipleAccountsWithOpts(ctx, pubkeys, minContextSlot)
		if err != nil {
			return nil, err
		}
		for i, acc := range res.Value {
			row := registry.FetchedAccount{Address: chunk[i], Slot: res.Context.Slot}
			if acc != nil {
				row.Data = acc.Data.GetBinary()
				row.Found = true
			}
			out = append(out, row)
		}
	}
	return out, nil
}
