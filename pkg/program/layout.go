// Package program is the typed binding to the on-chain marketplace program:
// the listing account layout and the four lifecycle instructions.
package program

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"solmarket/pkg/core"
)

// listingDataSize is the full account size:
// discriminator(8) + seller(32) + nftMint(32) + market(32) + ask(8) + bumps(2).
const listingDataSize = 8 + 32 + 32 + 32 + 8 + 1 + 1

var listingDiscriminator = accountDiscriminator("Listing")

// accountDiscriminator returns the 8-byte prefix that tags an account record
// type: sha256("account:<Name>")[:8].
func accountDiscriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("account:" + name))
	var disc [8]byte
	copy(disc[:], sum[:8])
	return disc
}

// methodDiscriminator returns the 8-byte prefix that selects a program
// method: sha256("global:<name>")[:8].
func methodDiscriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("global:" + name))
	var disc [8]byte
	copy(disc[:], sum[:8])
	return disc
}

// listingLayout is the borsh wire layout of a listing record after its
// discriminator. Field order matches the on-chain declaration.
type listingLayout struct {
	Seller       solana.PublicKey
	NFTMint      solana.PublicKey
	Market       solana.PublicKey
	Ask          uint64
	ListingBump  uint8
	NFTVaultBump uint8
}

// DecodeListing decodes account data into a listing. The program co-locates
// several record types under one owner, so data with the wrong length or
// discriminator returns core.ErrNotListing; scans use that to type-filter,
// everything else must treat it as a real failure.
func DecodeListing(address solana.PublicKey, data []byte) (*core.Listing, error) {
	if len(data) != listingDataSize || !bytes.Equal(data[:8], listingDiscriminator[:]) {
		return nil, core.ErrNotListing
	}

	var raw listingLayout
	if err := bin.NewBorshDecoder(data[8:]).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode listing %s: %w", address, err)
	}

	return &core.Listing{
		Address:      address,
		Seller:       raw.Seller,
		NFTMint:      raw.NFTMint,
		Market:       raw.Market,
		Ask:          raw.Ask,
		ListingBump:  raw.ListingBump,
		NFTVaultBump: raw.NFTVaultBump,
	}, nil
}

// EncodeListing renders a listing in its on-chain account layout.
func EncodeListing(l *core.Listing) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(listingDiscriminator[:])
	enc := bin.NewBorshEncoder(buf)
	if err := enc.Encode(listingLayout{
		Seller:       l.Seller,
		NFTMint:      l.NFTMint,
		Market:       l.Market,
		Ask:          l.Ask,
		ListingBump:  l.ListingBump,
		NFTVaultBump: l.NFTVaultBump,
	}); err != nil {
		return nil, fmt.Errorf("encode listing: %w", err)
	}
	return buf.Bytes(), nil
}
