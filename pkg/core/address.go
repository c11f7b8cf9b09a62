// Package core holds the data model shared by every other package in the
// engine: addresses, slots, pool/vault/tick/bin state, and the lifecycle
// enum that gates quoting.
package core

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	bin58 "github.com/mr-tron/base58"
)

// Address is the engine's 32-byte account key. Hash maps key directly on
// this array type instead of a base58 string to avoid per-update string
// formatting on the hot path.
type Address [32]byte

// Signature is a 64-byte transaction identifier.
type Signature [64]byte

func AddressFromPublicKey(pk solana.PublicKey) Address {
	var a Address
	copy(a[:], pk[:])
	return a
}

func (a Address) PublicKey() solana.PublicKey {
	return solana.PublicKey(a)
}

func (a Address) String() string {
	return a.PublicKey().String()
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func AddressFromBase58(s string) (Address, error) {
	b, err := bin58.Decode(s)
	if err != nil {
		return Address{}, err
	}
	var a Address
	if len(b) != 32 {
		return Address{}, fmt.Errorf("core: invalid address length %d", len(b))
	}
	copy(a[:], b)
	return a, nil
}

func SignatureFromBytes(b []byte) Signature {
	var s Signature
	copy(s[:], b)
	return s
}
