package sol

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// GetUserTokenBalance resolves userAddr's associated token account for
// tokenMint and returns its pubkey and raw (base-unit) balance. Used by
// ensureCapital in cmd/enginectl/main.go to decide how much native SOL to
// wrap into wSOL before trading starts; returns an error with message
// "no token account found" when the owner has no ATA for the mint yet.
func (t *Client) GetUserTokenBalance(ctx context.Context, userAddr solana.PublicKey, tokenMint solana.PublicKey) (solana.PublicKey, uint64, error) {
	acc, err := t.GetTokenAccountsByOwner(ctx, userAddr,
		&rpc.GetTokenAccountsConfig{Mint: tokenMint.ToPointer()},
		&rpc.GetTokenAccountsOpts{
			Encoding: "jsonParsed",
		},
	)
	if err != nil {
		return solana.PublicKey{}, 0, err
	}
	if len(acc.Value) == 0 {
		return solana.PublicKey{}, 0, errors.New("no token account found")
	}

	tokenAccount, err := t.GetTokenAccountBalance(ctx, acc.Value[0].Pubkey, rpc.CommitmentConfirmed)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("failed to get token account balance: %v", err)
	}
	tokenAmt, err := strconv.ParseUint(tokenAccount.Value.Amount, 10, 64)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("failed to parse token amount: %w", err)
	}

	return acc.Value[0].Pubkey, tokenAmt, nil
}
