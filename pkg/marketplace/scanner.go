package marketplace

import (
	"context"
	"time"

	"solmarket/pkg/core"
	"solmarket/pkg/program"
)

// Scan fetches every account owned by the program in one bulk read and
// collects the decodable listing records for the configured market.
// UserListings is the subset sold by the connected wallet. Accounts that
// are not listing records are skipped, not errors: the program owns other
// account kinds (vaults, the market record) that share the same owner
// filter. Listings recorded against a different market are skipped too;
// the client is scoped to the one market named in its config, so
// snapshots from a shared program deployment stay per-market.
func (c *Client) Scan(ctx context.Context) (*core.MarketplaceSnapshot, error) {
	op := core.OpScan
	if err := c.throttle(ctx, op); err != nil {
		return nil, err
	}

	accounts, err := c.ledger.GetProgramAccounts(ctx, c.config.ProgramID)
	c.record(err)
	if err != nil {
		return nil, err
	}

	snapshot := &core.MarketplaceSnapshot{
		ActiveListings: make([]core.Listing, 0, len(accounts)),
		UserListings:   make([]core.Listing, 0),
		TakenAt:        time.Now(),
	}
	wallet := c.wallet.PublicKey()
	skipped := 0

	for _, account := range accounts {
		listing, err := program.DecodeListing(account.Pubkey, account.Data)
		if err != nil {
			skipped++
			c.logger.Debug().
				Stringer("account", account.Pubkey).
				Err(err).
				Msg("skipping non-listing account")
			continue
		}
		if !listing.Market.Equals(c.config.Market) {
			skipped++
			continue
		}
		snapshot.ActiveListings = append(snapshot.ActiveListings, *listing)
		if listing.Seller.Equals(wallet) {
			snapshot.UserListings = append(snapshot.UserListings, *listing)
		}
	}

	c.logger.Debug().
		Int("accounts", len(accounts)).
		Int("active", len(snapshot.ActiveListings)).
		Int("own", len(snapshot.UserListings)).
		Int("skipped", skipped).
		Msg("marketplace scan complete")

	return snapshot, nil
}
