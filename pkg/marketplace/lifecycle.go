package marketplace

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"solmarket/pkg/core"
	"solmarket/pkg/pda"
	"solmarket/pkg/program"
)

// ListingReceipt is returned by CreateListing and Reprice.
type ListingReceipt struct {
	Signature solana.Signature
	Listing   solana.PublicKey
	NFTVault  solana.PublicKey
	Ask       uint64
}

// PurchaseReceipt is returned by Buy. NFTAccount is the freshly created
// account now holding the token; its private key is retained in the
// client's key store.
type PurchaseReceipt struct {
	Signature  solana.Signature
	Listing    solana.PublicKey
	NFTAccount solana.PublicKey
}

// CloseReceipt is returned by CloseListing. NFTAccount is the freshly
// created account the escrowed token was returned to.
type CloseReceipt struct {
	Signature  solana.Signature
	Listing    solana.PublicKey
	NFTAccount solana.PublicKey
}

// CreateListing escrows one unit of nftMint from nftAccount and opens a
// listing at the given ask, in lamports. The wallet is the seller.
func (c *Client) CreateListing(ctx context.Context, nftMint, nftAccount solana.PublicKey, ask uint64) (*ListingReceipt, error) {
	op := core.OpCreateListing
	if ask == 0 {
		return nil, core.NewError(core.ErrorTypeInvalidInput, core.ErrCodeInvalidAsk, op.String(),
			"ask must be at least one lamport")
	}

	seller := c.wallet.PublicKey()
	listing, listingBump, err := pda.ListingAddress(c.config.ProgramID, c.config.Market, nftMint, seller)
	if err != nil {
		return nil, err
	}
	nftVault, nftVaultBump, err := pda.NFTVaultAddress(c.config.ProgramID, nftMint)
	if err != nil {
		return nil, err
	}

	instr, err := program.CreateListing(c.config.ProgramID, program.CreateListingParams{
		Market:       c.config.Market,
		Seller:       seller,
		Listing:      listing,
		NFTVault:     nftVault,
		NFTAccount:   nftAccount,
		NFTMint:      nftMint,
		Ask:          ask,
		ListingBump:  listingBump,
		NFTVaultBump: nftVaultBump,
	})
	if err != nil {
		return nil, err
	}

	sig, err := c.send(ctx, op, instr)
	if err != nil {
		return nil, err
	}

	c.logger.Info().
		Stringer("listing", listing).
		Stringer("mint", nftMint).
		Uint64("ask", ask).
		Stringer("signature", sig).
		Msg("listing created")

	return &ListingReceipt{
		Signature: sig,
		Listing:   listing,
		NFTVault:  nftVault,
		Ask:       ask,
	}, nil
}

// Reprice changes the ask of the wallet's listing for nftMint. The listing
// record keeps its address; only the ask field changes on chain.
func (c *Client) Reprice(ctx context.Context, nftMint solana.PublicKey, newAsk uint64) (*ListingReceipt, error) {
	op := core.OpAsk
	if newAsk == 0 {
		return nil, core.NewError(core.ErrorTypeInvalidInput, core.ErrCodeInvalidAsk, op.String(),
			"ask must be at least one lamport")
	}

	seller := c.wallet.PublicKey()
	listing, listingBump, err := pda.ListingAddress(c.config.ProgramID, c.config.Market, nftMint, seller)
	if err != nil {
		return nil, err
	}

	instr, err := program.Ask(c.config.ProgramID, program.AskParams{
		Market:      c.config.Market,
		Seller:      seller,
		Listing:     listing,
		NFTMint:     nftMint,
		NewAsk:      newAsk,
		ListingBump: listingBump,
	})
	if err != nil {
		return nil, err
	}

	sig, err := c.send(ctx, op, instr)
	if err != nil {
		return nil, err
	}

	c.logger.Info().
		Stringer("listing", listing).
		Uint64("ask", newAsk).
		Stringer("signature", sig).
		Msg("listing repriced")

	return &ListingReceipt{
		Signature: sig,
		Listing:   listing,
		Ask:       newAsk,
	}, nil
}

// Buy purchases seller's listing for nftMint. A destination token account
// is generated for the buyer; its key is retained in the client's key
// store and its address is reported in the receipt.
func (c *Client) Buy(ctx context.Context, nftMint, seller solana.PublicKey) (*PurchaseReceipt, error) {
	op := core.OpBuy

	listing, listingBump, err := pda.ListingAddress(c.config.ProgramID, c.config.Market, nftMint, seller)
	if err != nil {
		return nil, err
	}
	nftVault, nftVaultBump, err := pda.NFTVaultAddress(c.config.ProgramID, nftMint)
	if err != nil {
		return nil, err
	}
	marketVault, marketVaultBump, err := pda.MarketVaultAddress(c.config.ProgramID, c.config.Market)
	if err != nil {
		return nil, err
	}

	destKey, err := c.keys.Generate()
	if err != nil {
		return nil, err
	}
	dest := destKey.PublicKey()

	instr, err := program.Buy(c.config.ProgramID, program.BuyParams{
		Market:          c.config.Market,
		Buyer:           c.wallet.PublicKey(),
		BuyerNFTAccount: dest,
		Listing:         listing,
		Seller:          seller,
		MarketVault:     marketVault,
		NFTVault:        nftVault,
		NFTMint:         nftMint,
		ListingBump:     listingBump,
		MarketVaultBump: marketVaultBump,
		NFTVaultBump:    nftVaultBump,
	})
	if err != nil {
		c.keys.Remove(dest)
		return nil, err
	}

	sig, err := c.send(ctx, op, instr, destKey)
	if err != nil {
		c.keys.Remove(dest)
		return nil, err
	}

	c.logger.Info().
		Stringer("listing", listing).
		Stringer("seller", seller).
		Stringer("destination", dest).
		Stringer("signature", sig).
		Msg("listing purchased")

	return &PurchaseReceipt{
		Signature:  sig,
		Listing:    listing,
		NFTAccount: dest,
	}, nil
}

// CloseListing withdraws the wallet's listing for nftMint, returning the
// escrowed token to a freshly generated account whose key is retained in
// the client's key store.
func (c *Client) CloseListing(ctx context.Context, nftMint solana.PublicKey) (*CloseReceipt, error) {
	op := core.OpCloseListing

	seller := c.wallet.PublicKey()
	listing, listingBump, err := pda.ListingAddress(c.config.ProgramID, c.config.Market, nftMint, seller)
	if err != nil {
		return nil, err
	}
	nftVault, nftVaultBump, err := pda.NFTVaultAddress(c.config.ProgramID, nftMint)
	if err != nil {
		return nil, err
	}

	destKey, err := c.keys.Generate()
	if err != nil {
		return nil, err
	}
	dest := destKey.PublicKey()

	instr, err := program.CloseListing(c.config.ProgramID, program.CloseListingParams{
		Market:           c.config.Market,
		Seller:           seller,
		SellerNFTAccount: dest,
		Listing:          listing,
		NFTVault:         nftVault,
		NFTMint:          nftMint,
		ListingBump:      listingBump,
		NFTVaultBump:     nftVaultBump,
	})
	if err != nil {
		c.keys.Remove(dest)
		return nil, err
	}

	sig, err := c.send(ctx, op, instr, destKey)
	if err != nil {
		c.keys.Remove(dest)
		return nil, err
	}

	c.logger.Info().
		Stringer("listing", listing).
		Stringer("destination", dest).
		Stringer("signature", sig).
		Msg("listing closed")

	return &CloseReceipt{
		Signature:  sig,
		Listing:    listing,
		NFTAccount: dest,
	}, nil
}

// send builds, signs, and submits a single-instruction transaction with the
// wallet as fee payer. Extra keys sign alongside the wallet.
func (c *Client) send(ctx context.Context, op core.Operation, instr solana.Instruction, extra ...solana.PrivateKey) (solana.Signature, error) {
	if err := c.throttle(ctx, op); err != nil {
		return solana.Signature{}, err
	}

	blockhash, err := c.ledger.GetLatestBlockhash(ctx)
	if err != nil {
		c.record(err)
		return solana.Signature{}, err
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{instr},
		blockhash,
		solana.TransactionPayer(c.wallet.PublicKey()),
	)
	if err != nil {
		return solana.Signature{}, core.NewError(core.ErrorTypeInvalidInput, core.ErrCodeRPC, op.String(),
			"build transaction: "+err.Error())
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(c.wallet.PublicKey()) {
			return &c.wallet
		}
		for i := range extra {
			if extra[i].PublicKey().Equals(key) {
				return &extra[i]
			}
		}
		return nil
	}); err != nil {
		return solana.Signature{}, core.NewError(core.ErrorTypeInvalidInput, core.ErrCodeRPC, op.String(),
			"sign transaction: "+err.Error())
	}

	sig, err := c.ledger.SendTransaction(ctx, tx)
	c.record(err)
	if err != nil {
		return solana.Signature{}, err
	}
	return sig, nil
}
