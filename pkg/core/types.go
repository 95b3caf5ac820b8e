package core

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// LamportsPerSOL is the number of base currency units in one display unit.
const LamportsPerSOL uint64 = 1_000_000_000

// NativeMint is the mint address of the wrapped native token. It is the
// third seed of the market proceeds vault derivation.
var NativeMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

// ListingState represents the lifecycle state of a listing.
type ListingState int

// Listing state constants define the lifecycle of a sale offer.
const (
	// ListingActive indicates the listing is open and can be bought, repriced, or closed.
	ListingActive ListingState = iota
	// ListingSold indicates the listing was bought. Terminal.
	ListingSold
	// ListingClosed indicates the seller withdrew the listing. Terminal.
	ListingClosed
)

// String returns the string representation of the listing state.
func (s ListingState) String() string {
	return [...]string{"ACTIVE", "SOLD", "CLOSED"}[s]
}

// IsTerminal returns true if the listing can no longer change state.
func (s ListingState) IsTerminal() bool {
	return s == ListingSold || s == ListingClosed
}

// MarshalJSON implements json.Marshaler for ListingState.
func (s ListingState) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for ListingState.
// It accepts both uppercase and lowercase forms.
func (s *ListingState) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"ACTIVE"`, `"active"`:
		*s = ListingActive
	case `"SOLD"`, `"sold"`:
		*s = ListingSold
	case `"CLOSED"`, `"closed"`:
		*s = ListingClosed
	}
	return nil
}

// Listing represents one active sale offer on the marketplace.
// At most one listing exists for a (market, nftMint, seller) triple; the
// program enforces this through address determinism, not uniqueness checks.
type Listing struct {
	// Address is the derived account address the listing record lives at.
	Address solana.PublicKey `json:"address"`
	// Seller is the account that created the listing and holds repricing
	// and closing rights.
	Seller solana.PublicKey `json:"seller"`
	// NFTMint is the token type being sold.
	NFTMint solana.PublicKey `json:"nft_mint"`
	// Market is the marketplace the listing is scoped to.
	Market solana.PublicKey `json:"market"`
	// Ask is the price in base currency units.
	Ask uint64 `json:"ask"`
	// ListingBump is the stored bump for the listing address derivation.
	ListingBump uint8 `json:"listing_bump"`
	// NFTVaultBump is the stored bump for the escrow vault derivation.
	NFTVaultBump uint8 `json:"nft_vault_bump"`
}

// TokenHolding represents a wallet's balance of a single mint.
// It is read-only input to classification; the ledger owns the data.
type TokenHolding struct {
	// Account is the token account address holding the balance.
	Account solana.PublicKey `json:"account"`
	// Mint identifies the token type.
	Mint solana.PublicKey `json:"mint"`
	// Balance is the raw amount held, in the mint's smallest unit.
	Balance uint64 `json:"balance"`
	// Decimals is the mint's display precision.
	Decimals uint8 `json:"decimals"`
}

// WalletProfile is the aggregated view of a connected wallet's holdings,
// partitioned into fungible and non-fungible sets. Profiles are rebuilt
// from scratch and replaced wholesale; they are never mutated in place.
type WalletProfile struct {
	// Owner is the wallet the profile was built for.
	Owner solana.PublicKey `json:"owner"`
	// Holdings is the full set of token holdings, in ledger return order.
	Holdings []TokenHolding `json:"holdings"`
	// Fungible holds everything that failed the non-fungible heuristic.
	Fungible []TokenHolding `json:"fungible"`
	// NonFungible holds holdings with mint supply 1 and balance 1.
	NonFungible []TokenHolding `json:"non_fungible"`
	// TakenAt is when the profile was built.
	TakenAt time.Time `json:"taken_at"`
}

// MarketplaceSnapshot is the aggregated view of program state at scan time.
// Snapshots are eventually consistent with the ledger and replaced wholesale;
// readers never observe a partially updated snapshot.
type MarketplaceSnapshot struct {
	// ActiveListings holds every decoded listing, in ledger return order.
	ActiveListings []Listing `json:"active_listings"`
	// UserListings is the subset of ActiveListings sold by the scanning wallet.
	UserListings []Listing `json:"user_listings"`
	// TakenAt is when the scan completed.
	TakenAt time.Time `json:"taken_at"`
}
