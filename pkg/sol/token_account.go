package sol

import (
	"context"
	"log"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/rpc"
)

// SelectOrCreateSPLTokenAccount returns the owner's associated token
// account for tokenMint, creating it on-chain first if it doesn't exist
// yet. Called once at startup (cmd/enginectl/main.go) to pre-provision
// the wallet's wSOL ATA outside the hot path, since every bundle
// otherwise idempotent-creates its own ATAs inline (pkg/bundle.Build).
func (t *Client) SelectOrCreateSPLTokenAccount(ctx context.Context, privateKey solana.PrivateKey, tokenMint solana.PublicKey) (solana.PublicKey, error) {
	user := privateKey.PublicKey()
	acc, err := t.GetTokenAccountsByOwner(ctx, user,
		&rpc.GetTokenAccountsConfig{Mint: tokenMint.ToPointer()},
		&rpc.GetTokenAccountsOpts{
			Encoding: "jsonParsed",
		},
	)
	if err != nil {
		log.Printf("GetTokenAccountsByOwner err: %v", err)
		return solana.PublicKey{}, err
	}
	if len(acc.Value) > 0 {
		return acc.Value[0].Pubkey, nil
	}

	ataAddress, _, err := solana.FindAssociatedTokenAddress(user, tokenMint)
	if err != nil {
		log.Printf("FindAssociatedTokenAddress err: %v", err)
		return solana.PublicKey{}, err
	}
	createAtaInst, err := associatedtokenaccount.NewCreateInstruction(
		user,
		user,
		tokenMint,
	).ValidateAndBuild()
	if err != nil {
		return solana.PublicKey{}, err
	}

	signers := []solana.PrivateKey{privateKey}
	tx, err := t.SignTransaction(ctx, signers, createAtaInst)
	if err != nil {
		log.Printf("Failed to sign transaction: %v", err)
		return solana.PublicKey{}, err
	}
	if _, err := t.SendTx(ctx, tx); err != nil {
		log.Printf("Failed to send transaction: %v", err)
		return solana.PublicKey{}, err
	}
	return ataAddress, nil
}
