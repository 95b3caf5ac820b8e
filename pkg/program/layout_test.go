package program

import (
	"crypto/sha256"
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solmarket/pkg/core"
)

var (
	testProgram = solana.MustPublicKeyFromBase58("Stake11111111111111111111111111111111111111")
	testMarket  = solana.MustPublicKeyFromBase58("BPFLoaderUpgradeab1e11111111111111111111111")
	testMint    = solana.MustPublicKeyFromBase58("Vote111111111111111111111111111111111111111")
	testSeller  = solana.MustPublicKeyFromBase58("SysvarC1ock11111111111111111111111111111111")
	testAddress = solana.MustPublicKeyFromBase58("SysvarRent111111111111111111111111111111111")
)

func testListing() *core.Listing {
	return &core.Listing{
		Address:      testAddress,
		Seller:       testSeller,
		NFTMint:      testMint,
		Market:       testMarket,
		Ask:          1_500_000_000,
		ListingBump:  254,
		NFTVaultBump: 251,
	}
}

func TestAccountDiscriminator(t *testing.T) {
	sum := sha256.Sum256([]byte("account:Listing"))
	assert.Equal(t, sum[:8], listingDiscriminator[:])
}

func TestEncodeListing_Layout(t *testing.T) {
	data, err := EncodeListing(testListing())
	require.NoError(t, err)
	require.Len(t, data, listingDataSize)

	assert.Equal(t, listingDiscriminator[:], data[:8])
	assert.Equal(t, testSeller[:], data[8:40])
	assert.Equal(t, testMint[:], data[40:72])
	assert.Equal(t, testMarket[:], data[72:104])
	assert.Equal(t, uint64(1_500_000_000), binary.LittleEndian.Uint64(data[104:112]))
	assert.Equal(t, byte(254), data[112])
	assert.Equal(t, byte(251), data[113])
}

func TestDecodeListing_RoundTrip(t *testing.T) {
	want := testListing()
	data, err := EncodeListing(want)
	require.NoError(t, err)

	got, err := DecodeListing(testAddress, data)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeListing_WrongLength(t *testing.T) {
	data, err := EncodeListing(testListing())
	require.NoError(t, err)

	_, err = DecodeListing(testAddress, data[:len(data)-1])
	assert.ErrorIs(t, err, core.ErrNotListing)

	_, err = DecodeListing(testAddress, append(data, 0))
	assert.ErrorIs(t, err, core.ErrNotListing)

	_, err = DecodeListing(testAddress, nil)
	assert.ErrorIs(t, err, core.ErrNotListing)
}

func TestDecodeListing_WrongDiscriminator(t *testing.T) {
	data, err := EncodeListing(testListing())
	require.NoError(t, err)
	data[0] ^= 0xFF

	_, err = DecodeListing(testAddress, data)
	assert.ErrorIs(t, err, core.ErrNotListing)
	assert.True(t, core.IsDecodeMismatch(err))
}

func TestDecodeListing_OtherRecordType(t *testing.T) {
	// A same-size record of a different type must not decode as a listing.
	other := accountDiscriminator("Market")
	data := make([]byte, listingDataSize)
	copy(data[:8], other[:])

	_, err := DecodeListing(testAddress, data)
	assert.ErrorIs(t, err, core.ErrNotListing)
}
