// Package bundle implements the execution-bundle builder of spec.md §4.8:
// assembling compute-budget, idempotent-ATA, two venue-specific swap
// instructions, and a validator-tip transfer into a single atomic
// transaction. Grounded on the teacher's pkg/pool/*/*.go BuildSwapInstructions
// methods (account-meta layout and borsh-style data encoding) and the
// teacher's own solana.Instruction pattern, generalized from "one pool
// type's own builder method" into a free function keyed on core.Venue so
// the builder can assemble two different venues' legs side by side.
package bundle

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/solmev/coreengine/pkg/core"
)

// rawInstruction is a minimal solana.Instruction implementation: a fixed
// program id, account list, and pre-encoded data. Every venue's swap
// instruction in this package is built through this single type instead of
// the teacher's one bin.BaseVariant wrapper type per venue, since each
// venue's data layout here is a small fixed-width struct spec.md §4.8
// specifies exactly, not a borsh-tagged Go struct worth round-tripping.
type rawInstruction struct {
	programID solana.PublicKey
	accounts  solana.AccountMetaSlice
	data      []byte
}

func (i *rawInstruction) ProgramID() solana.PublicKey      { return i.programID }
func (i *rawInstruction) Accounts() []*solana.AccountMeta   { return i.accounts }
func (i *rawInstruction) Data() ([]byte, error)             { return i.data, nil }

func meta(addr core.Address, writable, signer bool) *solana.AccountMeta {
	return solana.NewAccountMeta(addr.PublicKey(), writable, signer)
}

func solanaMetas(metas ...*solana.AccountMeta) solana.AccountMetaSlice {
	return solana.AccountMetaSlice(metas)
}

// solanaFindProgramAddress wraps solana.FindProgramAddress, converting the
// result back into this module's Address type.
func solanaFindProgramAddress(seeds [][]byte, program core.Address) (core.Address, uint8, error) {
	pk, bump, err := solana.FindProgramAddress(seeds, program.PublicKey())
	if err != nil {
		return core.Address{}, 0, err
	}
	return core.AddressFromPublicKey(pk), bump, nil
}

func putU64(b []byte, off int, v uint64) { binary.LittleEndian.PutUint64(b[off:off+8], v) }
