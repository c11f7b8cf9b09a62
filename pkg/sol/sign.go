package sol

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// SignTransaction fetches a fresh blockhash and returns instrs assembled
// and signed by signers, used by the capital-provisioning helpers
// (SelectOrCreateSPLTokenAccount, CoverWsol, CloseWsol) rather than the
// hot bundle-submit path, which signs inline against a blockhash it
// already fetched for the swap legs themselves.
func (c *Client) SignTransaction(ctx context.Context, signers []solana.PrivateKey, instrs ...solana.Instruction) (*solana.Transaction, error) {

	if len(signers) == 0 {
		return nil, fmt.Errorf("at least one signer is required")
	}

	res, err := c.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("failed to get blockhash: %w", err)
	}

	// Create new transaction with all instructions
	tx, err := solana.NewTransaction(
		instrs,
		res.Value.Blockhash,
		solana.TransactionPayer(signers[0].PublicKey()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	// Sign the transaction with all provided signers
	_, err = tx.Sign(
		func(key solana.PublicKey) *solana.PrivateKey {
			for _, payer := range signers {
				if payer.PublicKey().Equals(key) {
					return &payer
				}
			}
			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return tx, nil
}
