package sol

import (
	"context"
	"log"

	"github.com/gagliardetto/solana-go/rpc"

	"github.com/solmev/coreengine/pkg/core"
)

// Client represents a Solana client that handles rate-limited RPC calls and,
// when configured, Jito block-engine submission
type Client struct {
	rpcClient   *rpc.Client
	jitoClient  *JitoClient
	rateLimiter *RateLimiter
}

// NewClient creates a new Solana client with custom rate limiting
func NewClient(ctx context.Context, endpoint, jitoEndpoint string, reqLimitPerSecond int) (*Client, error) {
	c := &Client{
		rpcClient:   rpc.New(endpoint),
		rateLimiter: NewRateLimiter(reqLimitPerSecond),
	}

	if jitoEndpoint != "" {
		jitoClient, err := NewJitoClient(ctx, jitoEndpoint)
		if err != nil {
			log.Printf("jito client unavailable, falling back to direct send: %v", err)
		} else {
			c.jitoClient = jitoClient
		}
	}
	return c, nil
}

// HasJito reports whether a Jito block-engine client was configured.
func (c *Client) HasJito() bool {
	return c.jitoClient != nil
}

// JitoTipAccount returns the block-engine's currently recommended tip
// account, used by the caller in place of a randomly picked entry from
// core.ValidatorTipAccounts whenever Jito submission is available.
func (c *Client) JitoTipAccount() (core.Address, bool) {
	if c.jitoClient == nil {
		return core.Address{}, false
	}
	return c.jitoClient.tipAccount, true
}
