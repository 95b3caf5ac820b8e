package marketplace

import (
	"context"
	"time"

	"solmarket/pkg/core"
)

// Profile fetches every token account owned by the wallet and classifies
// each holding. A holding is an NFT exactly when the mint's total supply
// is one unit and the account holds that one unit; everything else is
// fungible. Supply lookups go through the client's cache to keep the
// per-mint fan-out bounded.
//
// TODO: batch the supply lookups with getMultipleAccounts once the ledger
// interface grows a batch read.
func (c *Client) Profile(ctx context.Context) (*core.WalletProfile, error) {
	op := core.OpProfile
	if err := c.throttle(ctx, op); err != nil {
		return nil, err
	}

	owner := c.wallet.PublicKey()
	holdings, err := c.ledger.GetTokenAccountsByOwner(ctx, owner)
	c.record(err)
	if err != nil {
		return nil, err
	}

	profile := &core.WalletProfile{
		Owner:    owner,
		Holdings: holdings,
		TakenAt:  time.Now(),
	}

	// Mints that left the wallet never get their cache entries read
	// again; sweep expired ones so the cache tracks the live holdings.
	c.supplies.purge()

	for _, holding := range holdings {
		if holding.Balance != 1 {
			profile.Fungible = append(profile.Fungible, holding)
			continue
		}

		supply, ok := c.supplies.get(holding.Mint)
		if !ok {
			if err := c.throttle(ctx, op); err != nil {
				return nil, err
			}
			supply, err = c.ledger.GetTokenSupply(ctx, holding.Mint)
			c.record(err)
			if err != nil {
				return nil, err
			}
			c.supplies.put(holding.Mint, supply)
		}

		if supply == 1 {
			profile.NonFungible = append(profile.NonFungible, holding)
		} else {
			profile.Fungible = append(profile.Fungible, holding)
		}
	}

	c.logger.Debug().
		Stringer("owner", owner).
		Int("holdings", len(holdings)).
		Int("nfts", len(profile.NonFungible)).
		Msg("wallet profile complete")

	return profile, nil
}
