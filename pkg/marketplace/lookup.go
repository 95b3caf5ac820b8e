package marketplace

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"solmarket/pkg/core"
	"solmarket/pkg/pda"
	"solmarket/pkg/program"
)

// GetListing reads a single listing record by its derived address. It
// returns nil with no error when no account exists there, which is how a
// sold or closed listing looks on chain.
func (c *Client) GetListing(ctx context.Context, nftMint, seller solana.PublicKey) (*core.Listing, error) {
	op := core.OpScan
	if err := c.throttle(ctx, op); err != nil {
		return nil, err
	}

	address, _, err := pda.ListingAddress(c.config.ProgramID, c.config.Market, nftMint, seller)
	if err != nil {
		return nil, err
	}

	account, err := c.ledger.GetAccountInfo(ctx, address)
	c.record(err)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, nil
	}
	return program.DecodeListing(address, account.Data)
}
