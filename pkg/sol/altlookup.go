package sol

import (
	"context"
	"fmt"

	"github.com/solmev/coreengine/pkg/altcache"
	"github.com/solmev/coreengine/pkg/core"
)

// altTableHeaderSize is the fixed-size header preceding an address-lookup
// table's address list on-chain (deactivation slot, last-extended slot,
// last-extended-slot start index, authority option, padding).
const altTableHeaderSize = 56

// FetchAddressLookupTable implements altcache.Fetcher by reading the raw
// ALT account and slicing off 32-byte addresses past its fixed header,
// grounded on the teacher's pkg/sol/fetcher.go GetMultipleAccountsWithOpts
// pattern, generalized to a single-account fetch plus a fixed decode
// instead of chunked pool/vault decode.
func (c *Client) FetchAddressLookupTable(ctx context.Context, alt core.Address) (altcache.Entry, error) {
	res, err := c.GetAccountInfoWithOpts(ctx, alt.PublicKey())
	if err != nil {
		return altcache.Entry{}, fmt.Errorf("sol: fetch ALT %s: %w", alt, err)
	}
	data := res.Value.Data.GetBinary()
	if len(data) < altTableHeaderSize {
		return altcache.Entry{}, fmt.Errorf("sol: ALT %s data too short (%d bytes)", alt, len(data))
	}
	body := data[altTableHeaderSize:]
	if len(body)%32 != 0 {
		return altcache.Entry{}, fmt.Errorf("sol: ALT %s address list misaligned", alt)
	}
	addrs := make([]core.Address, len(body)/32)
	for i := range addrs {
		copy(addrs[i][:], body[i*32:(i+1)*32])
	}
	return altcache.Entry{Addresses: addrs, Version: res.Context.Slot}, nil
}
