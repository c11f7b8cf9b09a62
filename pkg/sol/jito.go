package sol

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/gagliardetto/solana-go"
	jitorpc "github.com/jito-labs/jito-go-rpc"

	"github.com/solmev/coreengine/pkg/core"
)

// JitoClient submits pre-built, pre-signed bundles to a Jito block-engine
// endpoint and polls for landing status — the bundle sink spec.md §6
// names ("submit(transaction_bytes, tip_lamports) -> {accepted,
// bundle_id?}"). Grounded on the teacher's pkg/sol/jito.go, adapted from a
// one-shot demo that built its own separate tip transaction into the
// engine's actual submit sink: pkg/bundle.Build already appends the tip
// transfer as the last instruction of the one atomic transaction
// (spec.md §4.8), so there is no second transaction to construct here —
// SubmitBundle only ever ships the single signed transaction the builder
// produced.
type JitoClient struct {
	rpcClient  *jitorpc.JitoJsonRpcClient
	tipAccount core.Address
}

// Jito endpoint refer to: https://docs.jito.wtf/lowlatencytxnsend/
func NewJitoClient(ctx context.Context, endpoint string) (*JitoClient, error) {
	rpcClient := jitorpc.NewJitoJsonRpcClient(endpoint, "")
	tipAccount, err := rpcClient.GetRandomTipAccount()
	if err != nil {
		return nil, fmt.Errorf("jito: get random tip account: %w", err)
	}
	tipAccountPublicKey, err := solana.PublicKeyFromBase58(tipAccount.Address)
	if err != nil {
		return nil, fmt.Errorf("jito: parse tip account: %w", err)
	}
	return &JitoClient{
		rpcClient:  rpcClient,
		tipAccount: core.AddressFromPublicKey(tipAccountPublicKey),
	}, nil
}

// SubmitBundle submits signedTx as a one-transaction Jito bundle and
// returns the block engine's assigned bundle id. It does not block on
// landing; callers that need confirmation should follow up with
// BundleStatus.
func (c *Client) SubmitBundle(ctx context.Context, signedTx *solana.Transaction) (string, error) {
	if c.jitoClient == nil {
		return "", fmt.Errorf("sol: no jito client configured")
	}
	encoded, err := encodeTransaction(signedTx)
	if err != nil {
		return "", fmt.Errorf("sol: encode bundle transaction: %w", err)
	}

	raw, err := c.jitoClient.rpcClient.SendBundle([][]string{{encoded}})
	if err != nil {
		return "", fmt.Errorf("sol: send bundle: %w", err)
	}
	var bundleID string
	if err := json.Unmarshal(raw, &bundleID); err != nil {
		return "", fmt.Errorf("sol: decode bundle id: %w", err)
	}
	return bundleID, nil
}

func encodeTransaction(tx *solana.Transaction) (string, error) {
	data, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("marshal transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// BundleStatus is one polled landing status for a submitted bundle.
type BundleStatus struct {
	ConfirmationStatus string
	Slot               uint64
	Landed             bool
	Err                error
}

// BundleStatus polls the block engine once for bundleID's current
// landing status. ok is false when the block engine has no record of the
// bundle yet; the caller owns any retry/poll-interval policy.
func (c *Client) BundleStatus(bundleID string) (status BundleStatus, ok bool, err error) {
	if c.jitoClient == nil {
		return BundleStatus{}, false, fmt.Errorf("sol: no jito client configured")
	}
	res, err := c.jitoClient.rpcClient.GetBundleStatuses([]string{bundleID})
	if err != nil {
		return BundleStatus{}, false, fmt.Errorf("sol: get bundle status: %w", err)
	}
	if len(res.Value) == 0 {
		return BundleStatus{}, false, nil
	}

	s := res.Value[0]
	status = BundleStatus{ConfirmationStatus: s.ConfirmationStatus, Slot: s.Slot}
	if s.ConfirmationStatus == "finalized" {
		status.Landed = true
		if s.Err.Ok != nil {
			status.Err = fmt.Errorf("bundle execution failed: %v", s.Err.Ok)
		}
	}
	return status, true, nil
}
