package core

// Operation represents a type of action the client performs against the
// marketplace program or the ledger.
type Operation int

// Operation constants define all supported client operations.
const (
	// OpCreateListing escrows an NFT and opens a listing.
	OpCreateListing Operation = iota
	// OpAsk changes the ask price of an active listing.
	OpAsk
	// OpBuy purchases a listing.
	OpBuy
	// OpCloseListing withdraws a listing and reclaims its escrow.
	OpCloseListing
	// OpScan rebuilds the marketplace snapshot from program accounts.
	OpScan
	// OpProfile rebuilds the wallet profile from token holdings.
	OpProfile
	// OpSubscribe maintains a live program account subscription.
	OpSubscribe
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	return [...]string{
		"CREATE_LISTING",
		"ASK",
		"BUY",
		"CLOSE_LISTING",
		"SCAN",
		"PROFILE",
		"SUBSCRIBE",
	}[o]
}
