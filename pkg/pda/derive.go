// Package pda computes the program derived addresses the marketplace
// program expects. Seed order and literal tag strings are part of the wire
// contract; any deviation produces an address the program will not accept.
package pda

import (
	"crypto/sha256"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"solmarket/pkg/core"
)

// Seed tags shared with the on-chain program.
const (
	listingSeed = "listing"
	vaultSeed   = "vault"
)

// Runtime limits on derivation seeds. The bump occupies one seed slot.
const (
	maxSeeds   = 16
	maxSeedLen = 32
)

var pdaMarker = []byte("ProgramDerivedAddress")

// Derive computes the derived address for the given seeds and program.
// It is pure and deterministic: identical input always yields the identical
// (address, bump) pair. The bump is searched from 255 downward, matching the
// runtime's search order, until the candidate hash falls off the ed25519
// curve; an off-curve address provably has no private key and can only be
// controlled by the program. Derivation fails with core.ErrNoBump if all 256
// candidates land on the curve, which is practically unreachable.
func Derive(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	if len(seeds) >= maxSeeds {
		return solana.PublicKey{}, 0, core.NewError(core.ErrorTypeInvalidInput, core.ErrCodeBadSeed,
			"derive", fmt.Sprintf("too many seeds: %d", len(seeds)))
	}
	for i, seed := range seeds {
		if len(seed) > maxSeedLen {
			return solana.PublicKey{}, 0, core.NewError(core.ErrorTypeInvalidInput, core.ErrCodeBadSeed,
				"derive", fmt.Sprintf("seed %d exceeds %d bytes", i, maxSeedLen))
		}
	}

	for bump := 255; bump >= 0; bump-- {
		candidate := programAddress(seeds, uint8(bump), programID)
		if !candidate.IsOnCurve() {
			return candidate, uint8(bump), nil
		}
	}
	return solana.PublicKey{}, 0, core.NewError(core.ErrorTypeDerivation, core.ErrCodeNoBump,
		"derive", core.ErrNoBump.Error())
}

func programAddress(seeds [][]byte, bump uint8, programID solana.PublicKey) solana.PublicKey {
	h := sha256.New()
	for _, seed := range seeds {
		h.Write(seed)
	}
	h.Write([]byte{bump})
	h.Write(programID[:])
	h.Write(pdaMarker)
	return solana.PublicKeyFromBytes(h.Sum(nil))
}

// ListingAddress derives the listing record address for a
// (market, nftMint, seller) triple. One triple maps to exactly one address,
// which is how the program enforces at most one concurrent listing per triple.
func ListingAddress(programID, market, nftMint, seller solana.PublicKey) (solana.PublicKey, uint8, error) {
	return Derive([][]byte{
		[]byte(listingSeed),
		market[:],
		nftMint[:],
		seller[:],
	}, programID)
}

// NFTVaultAddress derives the escrow vault that holds the listed token
// while its listing is active.
func NFTVaultAddress(programID, nftMint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return Derive([][]byte{
		[]byte(vaultSeed),
		nftMint[:],
	}, programID)
}

// MarketVaultAddress derives the market's proceeds vault, which holds
// payment currency in transit during a purchase.
func MarketVaultAddress(programID, market solana.PublicKey) (solana.PublicKey, uint8, error) {
	return Derive([][]byte{
		[]byte(vaultSeed),
		market[:],
		core.NativeMint[:],
	}, programID)
}
